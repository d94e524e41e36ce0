/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sanitize

import (
	"slices"
	"time"
)

// IDField is the canonical identifier field of every result document.
const IDField = "id"

// InternalFields are removed from every result regardless of driver.
var InternalFields = []string{"__v", "salt", "hash"}

// Rules are the driver specific parts of sanitizing.
type Rules struct {
	// IDField is the driver's internal identifier field, e.g. "_id". Empty or "id" means
	// documents already carry the canonical id.
	IDField string
	// Internal lists further fields private to the driver.
	Internal []string
}

// Hidden reports whether field never appears in results under r.
func (r Rules) Hidden(field string) bool {
	return slices.Contains(InternalFields, field) || slices.Contains(r.Internal, field)
}

// Document returns a sanitized deep copy of doc. The driver's id field is renamed to
// "id", replacing any existing "id", and internal fields are dropped.
// A nil document stays nil. Applying Document twice yields the same result as once.
func Document(doc map[string]any, r Rules) map[string]any {
	if doc == nil {
		return nil
	}

	res := make(map[string]any, len(doc))
	for k, v := range doc {
		if r.Hidden(k) {
			continue
		}
		res[k] = DeepCopy(v)
	}

	if r.IDField != "" && r.IDField != IDField {
		if id, ok := res[r.IDField]; ok {
			res[IDField] = id
			delete(res, r.IDField)
		}
	}

	return res
}

// Documents sanitizes every document of docs. The result is never nil.
func Documents(docs []map[string]any, r Rules) []map[string]any {
	res := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		res = append(res, Document(d, r))
	}
	return res
}

// DeepCopy copies maps and slices recursively. Scalars are returned as is.
func DeepCopy(v any) any {
	switch tv := v.(type) {
	case map[string]any:
		res := make(map[string]any, len(tv))
		for k, val := range tv {
			res[k] = DeepCopy(val)
		}
		return res
	case []any:
		res := make([]any, len(tv))
		for i, val := range tv {
			res[i] = DeepCopy(val)
		}
		return res
	case []map[string]any:
		res := make([]map[string]any, len(tv))
		for i, val := range tv {
			res[i] = DeepCopy(val).(map[string]any)
		}
		return res
	case []string:
		return slices.Clone(tv)
	case []byte:
		return slices.Clone(tv)
	case *time.Time:
		if tv == nil {
			return tv
		}
		t := *tv
		return &t
	default:
		return v
	}
}
