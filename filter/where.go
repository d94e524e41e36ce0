/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filter

import (
	"slices"
)

// Operator is either a logical combinator (And, Or) or a field comparison.
type Operator string

const (
	And Operator = "and"
	Or  Operator = "or"

	Equals           Operator = "equals"
	NotEquals        Operator = "not_equals"
	GreaterThan      Operator = "greater_than"
	GreaterThanEqual Operator = "greater_than_equal"
	LessThan         Operator = "less_than"
	LessThanEqual    Operator = "less_than_equal"
	In               Operator = "in"
	NotIn            Operator = "not_in"
	Like             Operator = "like"
	Contains         Operator = "contains"
	Exists           Operator = "exists"
)

// Logical reports whether op combines child filters.
func (op Operator) Logical() bool {
	return op == And || op == Or
}

// Comparison reports whether op compares a field with a value.
func (op Operator) Comparison() bool {
	switch op {
	case Equals, NotEquals, GreaterThan, GreaterThanEqual, LessThan, LessThanEqual,
		In, NotIn, Like, Contains, Exists:
		return true
	default:
		return false
	}
}

// Where is a filter tree. A leaf compares Field with Value using Op;
// a logical node combines Children with And or Or.
// The zero value is the empty filter and matches every document.
type Where struct {
	Op       Operator
	Field    string
	Value    any
	Children []Where
}

// IsEmpty reports whether w constrains nothing.
func (w Where) IsEmpty() bool {
	if w.Op == "" {
		return true
	}
	if w.Op.Logical() {
		for _, c := range w.Children {
			if !c.IsEmpty() {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of the tree structure. Values are shared; slices of
// values used by In and NotIn are copied.
func (w Where) Clone() Where {
	c := Where{Op: w.Op, Field: w.Field, Value: cloneValue(w.Value)}
	if w.Children != nil {
		c.Children = make([]Where, len(w.Children))
		for i, child := range w.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Predicates returns every comparison leaf of the tree in depth-first order.
func (w Where) Predicates() []Where {
	var res []Where
	w.walk(func(leaf Where) {
		res = append(res, leaf)
	})
	return res
}

// Fields returns the distinct field paths referenced by the tree.
func (w Where) Fields() []string {
	var res []string
	w.walk(func(leaf Where) {
		if !slices.Contains(res, leaf.Field) {
			res = append(res, leaf.Field)
		}
	})
	return res
}

func (w Where) walk(fn func(Where)) {
	if w.Op.Logical() {
		for _, c := range w.Children {
			c.walk(fn)
		}
		return
	}
	if w.Op != "" {
		fn(w)
	}
}

// Map returns a copy of the tree with fn applied to every comparison leaf.
func (w Where) Map(fn func(Where) Where) Where {
	if w.Op.Logical() {
		c := Where{Op: w.Op, Children: make([]Where, len(w.Children))}
		for i, child := range w.Children {
			c.Children[i] = child.Map(fn)
		}
		return c
	}
	if w.Op == "" {
		return Where{}
	}
	return fn(w.Clone())
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case []any:
		return slices.Clone(tv)
	case []string:
		return slices.Clone(tv)
	default:
		return v
	}
}

// Eq builds a field == value predicate.
func Eq(field string, value any) Where {
	return Where{Op: Equals, Field: field, Value: value}
}

// Ne builds a field != value predicate.
func Ne(field string, value any) Where {
	return Where{Op: NotEquals, Field: field, Value: value}
}

// Gt builds a field > value predicate.
func Gt(field string, value any) Where {
	return Where{Op: GreaterThan, Field: field, Value: value}
}

// Gte builds a field >= value predicate.
func Gte(field string, value any) Where {
	return Where{Op: GreaterThanEqual, Field: field, Value: value}
}

// Lt builds a field < value predicate.
func Lt(field string, value any) Where {
	return Where{Op: LessThan, Field: field, Value: value}
}

// Lte builds a field <= value predicate.
func Lte(field string, value any) Where {
	return Where{Op: LessThanEqual, Field: field, Value: value}
}

// AnyOf builds a field IN values predicate.
func AnyOf(field string, values ...any) Where {
	return Where{Op: In, Field: field, Value: values}
}

// NoneOf builds a field NOT IN values predicate.
func NoneOf(field string, values ...any) Where {
	return Where{Op: NotIn, Field: field, Value: values}
}

// Matches builds a case-insensitive substring predicate.
func Matches(field, text string) Where {
	return Where{Op: Like, Field: field, Value: text}
}

// Has builds an existence predicate.
func Has(field string, exists bool) Where {
	return Where{Op: Exists, Field: field, Value: exists}
}

// All combines filters with AND, skipping empty ones.
func All(filters ...Where) Where {
	return combine(And, filters)
}

// Any combines filters with OR, skipping empty ones.
func Any(filters ...Where) Where {
	return combine(Or, filters)
}

func combine(op Operator, filters []Where) Where {
	children := make([]Where, 0, len(filters))
	for _, f := range filters {
		if !f.IsEmpty() {
			children = append(children, f.Clone())
		}
	}
	switch len(children) {
	case 0:
		return Where{}
	case 1:
		return children[0]
	default:
		return Where{Op: op, Children: children}
	}
}
