/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package filter

import (
	"slices"
	"strings"
)

// Localize rewrites predicates on localized fields to address the value stored
// for locale, e.g. "title" becomes "title.en". Document stores keep localized
// fields as maps keyed by locale.
func Localize(w Where, localizedFields []string, locale string) Where {
	if locale == "" || len(localizedFields) == 0 {
		return w.Clone()
	}

	return w.Map(func(leaf Where) Where {
		leaf.Field = LocalizeField(leaf.Field, localizedFields, locale)
		return leaf
	})
}

// LocalizeField inserts locale after the first path segment when that segment is localized.
func LocalizeField(path string, localizedFields []string, locale string) string {
	if locale == "" {
		return path
	}
	head, rest, _ := strings.Cut(path, ".")
	if !slices.Contains(localizedFields, head) {
		return path
	}
	if rest == "" {
		return head + "." + locale
	}
	return head + "." + locale + "." + rest
}

// Rename returns a copy of w with every predicate on field from moved to field to.
// Nested paths below from are moved as well.
func Rename(w Where, from, to string) Where {
	return w.Map(func(leaf Where) Where {
		leaf.Field = RenamePath(leaf.Field, from, to)
		return leaf
	})
}

// RenamePath replaces the leading segment from of path with to.
func RenamePath(path, from, to string) string {
	if path == from {
		return to
	}
	if strings.HasPrefix(path, from+".") {
		return to + path[len(from):]
	}
	return path
}
