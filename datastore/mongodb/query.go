/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-openapi/strfmt"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/storagemodels"
)

// BuildQuery translates a filter tree into a MongoDB query document.
func BuildQuery(w filter.Where) (bson.M, error) {
	switch {
	case w.IsEmpty():
		return bson.M{}, nil
	case w.Op.Logical():
		parts := bson.A{}
		for _, c := range w.Children {
			if c.IsEmpty() {
				continue
			}
			q, err := BuildQuery(c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, q)
		}
		if len(parts) == 1 {
			return parts[0].(bson.M), nil
		}
		return bson.M{"$" + string(w.Op): parts}, nil
	default:
		return buildLeaf(w)
	}
}

func buildLeaf(w filter.Where) (bson.M, error) {
	field := w.Field
	if field == "" {
		return nil, errors.NewValidationError("where", fmt.Sprintf("%s predicate without field", w.Op))
	}

	switch w.Op {
	case filter.Equals:
		if w.Value == nil {
			return bson.M{field: nil}, nil
		}
		return bson.M{field: bson.M{"$eq": idValue(field, w.Value)}}, nil
	case filter.NotEquals:
		return bson.M{field: bson.M{"$ne": idValue(field, w.Value)}}, nil
	case filter.GreaterThan:
		return bson.M{field: bson.M{"$gt": rangeValue(w.Value)}}, nil
	case filter.GreaterThanEqual:
		return bson.M{field: bson.M{"$gte": rangeValue(w.Value)}}, nil
	case filter.LessThan:
		return bson.M{field: bson.M{"$lt": rangeValue(w.Value)}}, nil
	case filter.LessThanEqual:
		return bson.M{field: bson.M{"$lte": rangeValue(w.Value)}}, nil
	case filter.In, filter.NotIn:
		values := bson.A{}
		for _, v := range w.Values() {
			values = append(values, idValue(field, v))
		}
		op := "$in"
		if w.Op == filter.NotIn {
			op = "$nin"
		}
		return bson.M{field: bson.M{op: values}}, nil
	case filter.Like:
		words := strings.Fields(fmt.Sprint(w.Value))
		if len(words) == 0 {
			return bson.M{}, nil
		}
		parts := bson.A{}
		for _, word := range words {
			parts = append(parts, bson.M{field: regex(word)})
		}
		if len(parts) == 1 {
			return parts[0].(bson.M), nil
		}
		return bson.M{"$and": parts}, nil
	case filter.Contains:
		return bson.M{field: regex(fmt.Sprint(w.Value))}, nil
	case filter.Exists:
		if w.Truthy() {
			return bson.M{field: bson.M{"$ne": nil}}, nil
		}
		return bson.M{field: nil}, nil
	default:
		return nil, errors.NewValidationError(field, fmt.Sprintf("unsupported operator %q", w.Op))
	}
}

func regex(text string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(text), "$options": "i"}
}

// idValue converts hex strings to ObjectIDs for identifier fields.
func idValue(field string, v any) any {
	if field != IDField && !strings.HasSuffix(field, "."+IDField) {
		return v
	}
	s, ok := v.(string)
	if !ok {
		return v
	}
	if oid, err := primitive.ObjectIDFromHex(s); err == nil {
		return oid
	}
	return v
}

// rangeValue converts date-time strings to times so they compare with stored dates.
func rangeValue(v any) any {
	switch tv := v.(type) {
	case string:
		if strfmt.IsDateTime(tv) {
			if dt, err := strfmt.ParseDateTime(tv); err == nil {
				return time.Time(dt)
			}
		}
	case strfmt.DateTime:
		return time.Time(tv)
	}
	return v
}

// BuildSort translates sort fields into a MongoDB sort document.
func BuildSort(fields []storagemodels.SortField) bson.D {
	res := bson.D{}
	for _, f := range fields {
		dir := 1
		if f.Desc {
			dir = -1
		}
		res = append(res, bson.E{Key: f.Field, Value: dir})
	}
	return res
}

// Normalize converts BSON specific values into plain Go values: documents become maps,
// arrays become slices, ObjectIDs become hex strings and dates become UTC times.
func Normalize(v any) any {
	switch tv := v.(type) {
	case bson.M:
		return normalizeMap(tv)
	case map[string]any:
		return normalizeMap(tv)
	case bson.D:
		res := make(map[string]any, len(tv))
		for _, e := range tv {
			res[e.Key] = Normalize(e.Value)
		}
		return res
	case bson.A:
		return normalizeSlice(tv)
	case []any:
		return normalizeSlice(tv)
	case primitive.ObjectID:
		return tv.Hex()
	case primitive.DateTime:
		return tv.Time().UTC()
	case primitive.Decimal128:
		return tv.String()
	case primitive.Timestamp:
		return time.Unix(int64(tv.T), 0).UTC()
	case primitive.Null, primitive.Undefined:
		return nil
	default:
		return v
	}
}

func normalizeMap(m map[string]any) map[string]any {
	res := make(map[string]any, len(m))
	for k, v := range m {
		res[k] = Normalize(v)
	}
	return res
}

func normalizeSlice(s []any) []any {
	res := make([]any, len(s))
	for i, v := range s {
		res[i] = Normalize(v)
	}
	return res
}
