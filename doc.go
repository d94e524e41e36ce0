/*
Package contentstore is the read path of a headless content store: it finds versioned,
localized documents of collections and globals across pluggable storage drivers.

A Retriever resolves a slug to the physical table of the entity's driver, ANDs the
caller's filter with the constraints the layout requires, counts and finds in one
transaction, and returns sanitized documents with pagination metadata:

	reg, _ := registry.NewBuilder().
	    Collection(registry.Entity{Slug: "posts", Versioned: true, Localized: true, LocalizedFields: []string{"title"}}).
	    Global(registry.Entity{Slug: "settings"}).
	    Build()

	storage, _ := contentstore.NewStorage(mongoDriver, postgresDriver)
	r, _ := contentstore.New(reg, storage, contentstore.WithFallbackLocale("en"))

	page, err := r.Find(ctx, contentstore.FindArgs{
	    Collection:  "posts",
	    Where:       filter.Eq("status", "published"),
	    Sort:        "-publishedAt",
	    Request:     contentstore.Request{Locale: "de"},
	    PageRequest: storagemodels.PageRequest{Page: 2, Limit: 20},
	})

Single document lookups return nil without error when nothing matches. Reads inside
a transaction see one snapshot:

	id, _ := r.BeginTransaction(ctx, "")
	defer r.CommitTransaction(ctx, id)
	doc, err := r.FindByID(ctx, contentstore.FindByIDArgs{
	    Collection: "posts",
	    ID:         "p1",
	    Request:    contentstore.Request{TransactionID: id},
	})

Typed decodes results into Go structs by their json tags:

	posts := contentstore.NewTyped[Post](r)
	p, err := posts.FindByID(ctx, contentstore.FindByIDArgs{Collection: "posts", ID: "p1"})
*/
package contentstore
