/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filter

import (
	"fmt"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/suparena/contentstore/errors"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// FromMap parses the where-shape used by API callers:
//
//	{
//	  "status": {"equals": "published"},
//	  "or": [{"title": {"like": "launch"}}, {"featured": {"equals": true}}]
//	}
//
// Sibling keys are combined with AND. Keys are processed in sorted order so the
// resulting tree is deterministic.
func FromMap(m map[string]any) (Where, error) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	children := make([]Where, 0, len(keys))
	for _, key := range keys {
		raw := m[key]

		if op := Operator(key); op.Logical() {
			list, ok := raw.([]any)
			if !ok {
				return Where{}, errors.NewValidationError(key, "expected a list of conditions")
			}
			nested := make([]Where, 0, len(list))
			for _, item := range list {
				itemMap, ok := item.(map[string]any)
				if !ok {
					return Where{}, errors.NewValidationError(key, "expected an object per condition")
				}
				w, err := FromMap(itemMap)
				if err != nil {
					return Where{}, err
				}
				nested = append(nested, w)
			}
			children = append(children, combine(op, nested))
			continue
		}

		ops, ok := raw.(map[string]any)
		if !ok {
			return Where{}, errors.NewValidationError(key, "expected an object of operators")
		}
		opKeys := make([]string, 0, len(ops))
		for k := range ops {
			opKeys = append(opKeys, k)
		}
		sort.Strings(opKeys)

		for _, opKey := range opKeys {
			op := Operator(opKey)
			if !op.Comparison() {
				return Where{}, errors.NewValidationError(key, fmt.Sprintf("unknown operator %q", opKey))
			}
			children = append(children, Where{Op: op, Field: key, Value: ops[opKey]})
		}
	}

	return All(children...), nil
}

// ParseJSON parses a JSON encoded where-shape. Empty input is the empty filter.
func ParseJSON(data []byte) (Where, error) {
	if len(data) == 0 {
		return Where{}, nil
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Where{}, errors.NewValidationError("where", err.Error())
	}

	return FromMap(m)
}

// ToMap renders the tree back into the where-shape accepted by FromMap.
func (w Where) ToMap() map[string]any {
	switch {
	case w.Op == "":
		return map[string]any{}
	case w.Op.Logical():
		list := make([]any, len(w.Children))
		for i, c := range w.Children {
			list[i] = c.ToMap()
		}
		return map[string]any{string(w.Op): list}
	default:
		return map[string]any{w.Field: map[string]any{string(w.Op): w.Value}}
	}
}
