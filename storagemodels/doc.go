/*
Package storagemodels defines the data structures shared by the retriever and the storage drivers.

Key Types:

Document:
A stored document as a generic map. Drivers return raw documents; the sanitize package turns
them into results with a canonical "id" field.

SortField:
One sort key with direction. Sort strings use the framework syntax:

	sort, _ := ParseSort("-createdAt,title")
	// [{Field: createdAt, Desc: true}, {Field: title}]

PageRequest and Window:
Caller pagination input and the skip/limit window derived from it:

	w, err := PageRequest{Page: 3, Limit: 10}.Window(10)
	// w.Skip == 20, w.Limit == 10

Page:
Documents plus pagination metadata, JSON encoded with the framework's camelCase keys:

	page := BuildPage(docs, totalDocs, w)

ResolveLocale:
Flattens localized fields stored as locale maps into single values for document stores.
*/
package storagemodels
