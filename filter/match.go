/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filter

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
)

// Match evaluates the tree against doc. Field paths use dots to reach nested maps;
// when a path crosses an array, the predicate matches if any element matches.
func (w Where) Match(doc map[string]any) bool {
	switch {
	case w.Op == "":
		return true
	case w.Op == And:
		for _, c := range w.Children {
			if !c.Match(doc) {
				return false
			}
		}
		return true
	case w.Op == Or:
		if len(w.Children) == 0 {
			return true
		}
		for _, c := range w.Children {
			if c.Match(doc) {
				return true
			}
		}
		return false
	}

	values, found := Lookup(doc, w.Field)
	return matchLeaf(w, values, found)
}

func matchLeaf(w Where, values []any, found bool) bool {
	switch w.Op {
	case Exists:
		want := truthy(w.Value)
		present := found && anyValue(values, func(v any) bool { return v != nil })
		return present == want
	case Equals:
		if w.Value == nil {
			return !found || anyValue(values, func(v any) bool { return v == nil })
		}
		return anyValue(values, func(v any) bool { return Equal(v, w.Value) })
	case NotEquals:
		return !matchLeaf(Where{Op: Equals, Field: w.Field, Value: w.Value}, values, found)
	case In:
		candidates := asSlice(w.Value)
		return anyValue(values, func(v any) bool {
			for _, c := range candidates {
				if Equal(v, c) {
					return true
				}
			}
			return false
		})
	case NotIn:
		return !matchLeaf(Where{Op: In, Field: w.Field, Value: w.Value}, values, found)
	case Like:
		words := strings.Fields(strings.ToLower(fmt.Sprint(w.Value)))
		return anyValue(values, func(v any) bool {
			s, ok := v.(string)
			if !ok {
				return false
			}
			s = strings.ToLower(s)
			for _, word := range words {
				if !strings.Contains(s, word) {
					return false
				}
			}
			return true
		})
	case Contains:
		needle := strings.ToLower(fmt.Sprint(w.Value))
		return anyValue(values, func(v any) bool {
			if s, ok := v.(string); ok {
				return strings.Contains(strings.ToLower(s), needle)
			}
			return Equal(v, w.Value)
		})
	case GreaterThan, GreaterThanEqual, LessThan, LessThanEqual:
		return anyValue(values, func(v any) bool {
			cmp, ok := Compare(v, w.Value)
			if !ok {
				return false
			}
			switch w.Op {
			case GreaterThan:
				return cmp > 0
			case GreaterThanEqual:
				return cmp >= 0
			case LessThan:
				return cmp < 0
			default:
				return cmp <= 0
			}
		})
	default:
		return false
	}
}

func anyValue(values []any, fn func(any) bool) bool {
	for _, v := range values {
		if fn(v) {
			return true
		}
	}
	return false
}

// Lookup resolves a dotted path in doc. Arrays along the path fan out, so the
// result may hold several values. found is false when no branch reaches the leaf.
func Lookup(doc map[string]any, path string) ([]any, bool) {
	return lookup(doc, strings.Split(path, "."))
}

func lookup(v any, parts []string) ([]any, bool) {
	if len(parts) == 0 {
		if arr, ok := v.([]any); ok {
			return arr, true
		}
		return []any{v}, true
	}

	switch tv := v.(type) {
	case map[string]any:
		next, ok := tv[parts[0]]
		if !ok {
			return nil, false
		}
		return lookup(next, parts[1:])
	case []any:
		var res []any
		found := false
		for _, el := range tv {
			vals, ok := lookup(el, parts)
			if ok {
				found = true
				res = append(res, vals...)
			}
		}
		return res, found
	default:
		return nil, false
	}
}

// Equal compares two scalar values, treating numbers of any Go type and
// date-times in any supported representation as equal when they denote the same value.
func Equal(a, b any) bool {
	if cmp, ok := Compare(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

// Compare orders two scalar values. ok is false when the values are not comparable.
// Strings holding RFC 3339 date-times compare chronologically.
func Compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return compareOrdered(fa, fb), true
		}
		return 0, false
	}

	if ta, ok := toTime(a); ok {
		if tb, ok := toTime(b); ok {
			return ta.Compare(tb), true
		}
	}

	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return strings.Compare(sa, sb), true
		}
		return 0, false
	}

	if ba, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ba == bb:
				return 0, true
			case !ba:
				return -1, true
			default:
				return 1, true
			}
		}
	}

	return 0, false
}

func compareOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) (float64, bool) {
	switch tv := v.(type) {
	case int:
		return float64(tv), true
	case int8:
		return float64(tv), true
	case int16:
		return float64(tv), true
	case int32:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case uint:
		return float64(tv), true
	case uint8:
		return float64(tv), true
	case uint16:
		return float64(tv), true
	case uint32:
		return float64(tv), true
	case uint64:
		return float64(tv), true
	case float32:
		return float64(tv), true
	case float64:
		return tv, true
	default:
		return 0, false
	}
}

func toTime(v any) (time.Time, bool) {
	switch tv := v.(type) {
	case time.Time:
		return tv, true
	case *time.Time:
		if tv == nil {
			return time.Time{}, false
		}
		return *tv, true
	case strfmt.DateTime:
		return time.Time(tv), true
	case *strfmt.DateTime:
		if tv == nil {
			return time.Time{}, false
		}
		return time.Time(*tv), true
	case string:
		if !strfmt.IsDateTime(tv) {
			return time.Time{}, false
		}
		dt, err := strfmt.ParseDateTime(tv)
		if err != nil {
			return time.Time{}, false
		}
		return time.Time(dt), true
	default:
		return time.Time{}, false
	}
}

func asSlice(v any) []any {
	switch tv := v.(type) {
	case []any:
		return tv
	case []string:
		res := make([]any, len(tv))
		for i, s := range tv {
			res[i] = s
		}
		return res
	case string:
		parts := strings.Split(tv, ",")
		res := make([]any, len(parts))
		for i, p := range parts {
			res[i] = strings.TrimSpace(p)
		}
		return res
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			res := make([]any, rv.Len())
			for i := range res {
				res[i] = rv.Index(i).Interface()
			}
			return res
		}
		return []any{v}
	}
}

// Values returns the value of an In or NotIn predicate as a slice.
func (w Where) Values() []any {
	return asSlice(w.Value)
}

func truthy(v any) bool {
	switch tv := v.(type) {
	case bool:
		return tv
	case string:
		return strings.EqualFold(tv, "true")
	case nil:
		return false
	default:
		return true
	}
}

// Truthy interprets the value of an Exists predicate.
func (w Where) Truthy() bool {
	return truthy(w.Value)
}
