/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// AllLocales requests every locale of a localized field, unflattened.
const AllLocales = "all"

// ResolveLocale replaces each localized field, stored as a map keyed by locale, with the
// value for locale, falling back to fallback when that value is missing or null.
// The input document is not modified; the result shares nested values with it.
// locale "" or AllLocales returns a shallow copy of doc.
func ResolveLocale(doc Document, localizedFields []string, locale, fallback string) Document {
	res := make(Document, len(doc))
	for k, v := range doc {
		res[k] = v
	}

	if locale == "" || locale == AllLocales {
		return res
	}

	for _, field := range localizedFields {
		raw, ok := res[field]
		if !ok {
			continue
		}
		byLocale, ok := raw.(map[string]any)
		if !ok {
			continue
		}

		value, ok := byLocale[locale]
		if (!ok || value == nil) && fallback != "" {
			value = byLocale[fallback]
		}
		res[field] = value
	}

	return res
}

// QueryLocale is the locale used to address localized fields in filters and sorts.
// AllLocales queries against the fallback locale.
func QueryLocale(locale, fallback string) string {
	if locale == AllLocales {
		return fallback
	}
	return locale
}
