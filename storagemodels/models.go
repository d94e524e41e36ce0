/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"sort"
	"strings"

	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
)

// Document is a stored document. Values are JSON-like: maps, slices, strings,
// numbers, booleans, times and nil.
type Document = map[string]any

// DefaultSort orders documents by descending creation time.
const DefaultSort = "-createdAt"

// SortField is one sort key.
type SortField struct {
	// Field is a dotted path into the document.
	Field string
	// Desc sorts descending when set.
	Desc bool
}

// String renders the field in sort-string syntax.
func (s SortField) String() string {
	if s.Desc {
		return "-" + s.Field
	}
	return s.Field
}

// ParseSort parses a comma separated sort string. A leading "-" sorts descending.
// An empty string yields DefaultSort.
func ParseSort(s string) ([]SortField, error) {
	if strings.TrimSpace(s) == "" {
		s = DefaultSort
	}

	var res []SortField
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		f := SortField{Field: part}
		switch {
		case strings.HasPrefix(part, "-"):
			f = SortField{Field: part[1:], Desc: true}
		case strings.HasPrefix(part, "+"):
			f = SortField{Field: part[1:]}
		}
		if f.Field == "" {
			return nil, invalidSort(s)
		}
		res = append(res, f)
	}

	if len(res) == 0 {
		return nil, invalidSort(s)
	}

	return res, nil
}

// SortDocuments orders docs in place. Missing and null values sort first in ascending
// order. Ties keep their relative order.
func SortDocuments(docs []Document, fields []SortField) {
	if len(fields) == 0 {
		return
	}

	sort.SliceStable(docs, func(i, j int) bool {
		for _, f := range fields {
			cmp := compareField(docs[i], docs[j], f.Field)
			if cmp == 0 {
				continue
			}
			if f.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func invalidSort(s string) error {
	return errors.NewValidationError("sort", fmt.Sprintf("invalid sort %q", s))
}

func compareField(a, b Document, field string) int {
	va := firstValue(a, field)
	vb := firstValue(b, field)

	switch {
	case va == nil && vb == nil:
		return 0
	case va == nil:
		return -1
	case vb == nil:
		return 1
	}

	if cmp, ok := filter.Compare(va, vb); ok {
		return cmp
	}
	return 0
}

func firstValue(doc Document, field string) any {
	values, ok := filter.Lookup(doc, field)
	if !ok || len(values) == 0 {
		return nil
	}
	return values[0]
}
