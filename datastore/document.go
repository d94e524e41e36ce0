/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/sanitize"
	"github.com/suparena/contentstore/storagemodels"
)

// DocumentQuery adapts a filter and sort for document stores: the canonical "id" is moved
// to idField and localized fields address the locale map entry for the query locale.
func DocumentQuery(where filter.Where, sort []storagemodels.SortField, idField string, l Localization) (filter.Where, []storagemodels.SortField) {
	if idField != "" && idField != sanitize.IDField {
		where = filter.Rename(where, sanitize.IDField, idField)
	}
	if l.Enabled() {
		where = filter.Localize(where, l.Fields, l.QueryLocale())
	}

	if len(sort) == 0 {
		return where, nil
	}

	fields := make([]storagemodels.SortField, len(sort))
	for i, s := range sort {
		if idField != "" {
			s.Field = filter.RenamePath(s.Field, sanitize.IDField, idField)
		}
		if l.Enabled() {
			s.Field = filter.LocalizeField(s.Field, l.Fields, l.QueryLocale())
		}
		fields[i] = s
	}

	return where, fields
}

// ResolveLocales flattens localized fields of docs in place of the slice.
func ResolveLocales(docs []storagemodels.Document, l Localization) []storagemodels.Document {
	if !l.Enabled() || l.Locale == storagemodels.AllLocales {
		return docs
	}
	for i, d := range docs {
		docs[i] = storagemodels.ResolveLocale(d, l.Fields, l.Locale, l.Fallback)
	}
	return docs
}
