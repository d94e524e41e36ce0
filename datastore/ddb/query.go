/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
)

// maxInOperands is the DynamoDB limit on IN operands.
const maxInOperands = 100

// FilterExpression is a DynamoDB filter expression with its placeholders.
type FilterExpression struct {
	Expression string
	Names      map[string]string
	Values     map[string]types.AttributeValue
}

// IsEmpty reports whether the expression filters nothing.
func (f FilterExpression) IsEmpty() bool {
	return f.Expression == ""
}

// BuildFilter translates w into a filter expression that selects a superset of the
// documents w matches. Predicates DynamoDB cannot evaluate with the same semantics
// (case-insensitive text, negations, date-time strings, paths through unknown
// attributes) are left out; the caller re-applies w to the decoded items.
//
// Nested paths are pushed down only below the top-level attributes listed in maps.
func BuildFilter(w filter.Where, maps []string) (FilterExpression, error) {
	b := &expressionBuilder{
		names:  make(map[string]string),
		values: make(map[string]types.AttributeValue),
		maps:   maps,
	}

	expr, err := b.build(w)
	if err != nil {
		return FilterExpression{}, err
	}
	if expr == "" {
		return FilterExpression{}, nil
	}

	// Relaxed branches may have registered placeholders the expression no longer uses;
	// DynamoDB rejects those.
	for ph := range b.names {
		if !usesPlaceholder(expr, ph) {
			delete(b.names, ph)
		}
	}
	for ph := range b.values {
		if !usesPlaceholder(expr, ph) {
			delete(b.values, ph)
		}
	}

	return FilterExpression{Expression: expr, Names: b.names, Values: b.values}, nil
}

func usesPlaceholder(expr, ph string) bool {
	return regexp.MustCompile(regexp.QuoteMeta(ph) + `\b`).MatchString(expr)
}

type expressionBuilder struct {
	names  map[string]string
	values map[string]types.AttributeValue
	maps   []string
	byName map[string]string
}

func (b *expressionBuilder) build(w filter.Where) (string, error) {
	if w.IsEmpty() {
		return "", nil
	}

	if w.Op.Logical() {
		parts := make([]string, 0, len(w.Children))
		relaxed := false
		for _, c := range w.Children {
			if c.IsEmpty() {
				continue
			}
			p, err := b.build(c)
			if err != nil {
				return "", err
			}
			if p == "" {
				relaxed = true
				continue
			}
			parts = append(parts, p)
		}

		sep := " AND "
		if w.Op == filter.Or {
			// One unconstrained branch makes the whole disjunction unconstrained.
			if relaxed {
				return "", nil
			}
			sep = " OR "
		}

		switch len(parts) {
		case 0:
			return "", nil
		case 1:
			return parts[0], nil
		default:
			return "(" + strings.Join(parts, sep) + ")", nil
		}
	}

	if !w.Op.Comparison() {
		return "", errors.NewValidationError(w.Field, fmt.Sprintf("unsupported operator %q", w.Op))
	}
	if w.Field == "" {
		return "", errors.NewValidationError("where", "predicate without field")
	}

	return b.leaf(w)
}

func (b *expressionBuilder) leaf(w filter.Where) (string, error) {
	path, ok := b.path(w.Field)
	if !ok {
		return "", nil
	}

	switch w.Op {
	case filter.Equals:
		switch {
		case isText(w.Value) || isNumber(w.Value):
			v, err := b.value(w.Value)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s = %s OR contains(%s, %s))", path, v, path, v), nil
		case isBool(w.Value):
			v, err := b.value(w.Value)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("(%s = %s OR attribute_type(%s, %s))", path, v, path, b.listType()), nil
		default:
			return "", nil
		}

	case filter.In:
		values := w.Values()
		if len(values) == 0 || len(values) > maxInOperands {
			return "", nil
		}
		placeholders := make([]string, 0, len(values))
		for _, value := range values {
			if !isText(value) && !isNumber(value) {
				return "", nil
			}
			v, err := b.value(value)
			if err != nil {
				return "", err
			}
			placeholders = append(placeholders, v)
		}
		parts := []string{fmt.Sprintf("%s IN (%s)", path, strings.Join(placeholders, ", "))}
		for _, v := range placeholders {
			parts = append(parts, fmt.Sprintf("contains(%s, %s)", path, v))
		}
		return "(" + strings.Join(parts, " OR ") + ")", nil

	case filter.GreaterThan, filter.GreaterThanEqual, filter.LessThan, filter.LessThanEqual:
		if !isNumber(w.Value) {
			return "", nil
		}
		v, err := b.value(w.Value)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%s %s %s OR attribute_type(%s, %s))", path, comparators[w.Op], v, path, b.listType()), nil

	case filter.Exists:
		if w.Truthy() {
			return fmt.Sprintf("attribute_exists(%s)", path), nil
		}
		return "", nil

	default:
		return "", nil
	}
}

var comparators = map[filter.Operator]string{
	filter.GreaterThan:      ">",
	filter.GreaterThanEqual: ">=",
	filter.LessThan:         "<",
	filter.LessThanEqual:    "<=",
}

// path returns the placeholder path of field. ok is false for nested paths that may
// run through lists.
func (b *expressionBuilder) path(field string) (string, bool) {
	parts := strings.Split(field, ".")
	if len(parts) > 1 && !containsString(b.maps, parts[0]) {
		return "", false
	}

	if b.byName == nil {
		b.byName = make(map[string]string)
	}

	placeholders := make([]string, len(parts))
	for i, part := range parts {
		ph, ok := b.byName[part]
		if !ok {
			ph = fmt.Sprintf("#n%d", len(b.names))
			b.names[ph] = part
			b.byName[part] = ph
		}
		placeholders[i] = ph
	}
	return strings.Join(placeholders, "."), true
}

func (b *expressionBuilder) value(v any) (string, error) {
	av, err := attributevalue.Marshal(v)
	if err != nil {
		return "", errors.NewValidationError("where", fmt.Sprintf("failed to marshal value: %v", err))
	}
	ph := fmt.Sprintf(":v%d", len(b.values))
	b.values[ph] = av
	return ph, nil
}

// listType is the placeholder holding the DynamoDB list type name. Comparisons keep
// list attributes, since a filter on a list matches any of its elements.
func (b *expressionBuilder) listType() string {
	const ph = ":tL"
	b.values[ph] = &types.AttributeValueMemberS{Value: "L"}
	return ph
}

func isText(v any) bool {
	s, ok := v.(string)
	return ok && !strfmt.IsDateTime(s)
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isNumber(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
