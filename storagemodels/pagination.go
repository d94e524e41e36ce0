/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"math"

	"github.com/suparena/contentstore/errors"
)

// DefaultLimit is the page size used when the caller does not supply one.
const DefaultLimit = 10

// maxSkip bounds the resolved skip so that skip+1 still fits in an int.
const maxSkip = math.MaxInt - 1

// PageRequest is the caller's pagination input.
type PageRequest struct {
	// Page is 1-based. Values below 1 are treated as 1.
	Page int
	// Limit is the page size. Zero means the default limit.
	Limit int
	// Skip, when positive, replaces the skip derived from Page.
	Skip int
	// DisablePagination returns every matching document in one page.
	DisablePagination bool
}

// Window is the resolved skip/limit pair passed to storage.
type Window struct {
	Skip  int
	Limit int
	Page  int
	// Unbounded is set when pagination is disabled; Skip and Limit are zero.
	Unbounded bool
}

// Window resolves the request against defaultLimit. skip is (page-1)*limit unless
// an explicit skip is supplied, in which case the page is derived from it.
func (r PageRequest) Window(defaultLimit int) (Window, error) {
	if r.Limit < 0 {
		return Window{}, errors.NewValidationError("limit", "must not be negative")
	}
	if r.Skip < 0 {
		return Window{}, errors.NewValidationError("skip", "must not be negative")
	}

	if r.DisablePagination {
		return Window{Page: 1, Unbounded: true}, nil
	}

	limit := r.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	if r.Skip > 0 {
		return Window{Skip: min(r.Skip, maxSkip), Limit: limit, Page: r.Skip/limit + 1}, nil
	}

	page := r.Page
	if page < 1 {
		page = 1
	}

	// Pages past the representable range resolve to a skip beyond any count.
	if page-1 > maxSkip/limit {
		return Window{Skip: maxSkip, Limit: limit, Page: page}, nil
	}
	return Window{Skip: (page - 1) * limit, Limit: limit, Page: page}, nil
}

// Page is a slice of documents with pagination metadata.
type Page struct {
	Docs          []Document `json:"docs"`
	TotalDocs     int64      `json:"totalDocs"`
	Limit         int        `json:"limit"`
	TotalPages    int        `json:"totalPages"`
	Page          int        `json:"page"`
	PagingCounter int        `json:"pagingCounter"`
	HasPrevPage   bool       `json:"hasPrevPage"`
	HasNextPage   bool       `json:"hasNextPage"`
	PrevPage      *int       `json:"prevPage"`
	NextPage      *int       `json:"nextPage"`
}

// BuildPage assembles a Page from the returned slice and the full match count.
// Docs is never nil so that an empty result encodes as an empty list.
func BuildPage(docs []Document, totalDocs int64, w Window) Page {
	if docs == nil {
		docs = []Document{}
	}

	if w.Unbounded {
		return Page{
			Docs:          docs,
			TotalDocs:     totalDocs,
			Limit:         len(docs),
			TotalPages:    1,
			Page:          1,
			PagingCounter: 1,
		}
	}

	totalPages := int((totalDocs + int64(w.Limit) - 1) / int64(w.Limit))
	if totalPages < 1 {
		totalPages = 1
	}

	p := Page{
		Docs:          docs,
		TotalDocs:     totalDocs,
		Limit:         w.Limit,
		TotalPages:    totalPages,
		Page:          w.Page,
		PagingCounter: w.Skip + 1,
		HasPrevPage:   w.Page > 1,
		HasNextPage:   w.Page < totalPages,
	}
	if p.HasPrevPage {
		prev := w.Page - 1
		p.PrevPage = &prev
	}
	if p.HasNextPage {
		next := w.Page + 1
		p.NextPage = &next
	}

	return p
}
