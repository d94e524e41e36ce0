/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package contentstore

import (
	"context"
	"time"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/sanitize"
	"github.com/suparena/contentstore/storagemodels"
)

const (
	opFind                  = "find"
	opFindOne               = "findOne"
	opFindByID              = "findByID"
	opCount                 = "count"
	opFindVersions          = "findVersions"
	opFindVersionByID       = "findVersionByID"
	opFindGlobal            = "findGlobal"
	opFindGlobalVersions    = "findGlobalVersions"
	opFindGlobalVersionByID = "findGlobalVersionByID"

	logMsgOperation       = "operation completed: "
	logMsgOperationFailed = "operation failed: "
	logAttrSlug           = "slug"
	logAttrTable          = "table"
	logAttrDriver         = "driver"
	logAttrReturned       = "returned"
	logAttrError          = "error"
	logAttrDurationMS     = "duration_ms"

	labelOperation = "operation"
	labelSlug      = "slug"
	labelStatus    = "status"
	statusSuccess  = "success"
	statusError    = "error"
)

// Find returns a page of collection documents.
func (r *Retriever) Find(ctx context.Context, args FindArgs) (storagemodels.Page, error) {
	t := target{op: opFind, slug: args.Collection, kind: registry.KindCollection}
	return r.page(ctx, t, args.Request, args.Where, args.Sort, args.PageRequest)
}

// FindOne returns the first matching collection document, or nil.
func (r *Retriever) FindOne(ctx context.Context, args FindOneArgs) (storagemodels.Document, error) {
	t := target{op: opFindOne, slug: args.Collection, kind: registry.KindCollection}
	return r.one(ctx, t, args.Request, args.Where, args.Sort)
}

// FindByID returns the collection document with id, or nil.
func (r *Retriever) FindByID(ctx context.Context, args FindByIDArgs) (storagemodels.Document, error) {
	t := target{op: opFindByID, slug: args.Collection, kind: registry.KindCollection}
	return r.one(ctx, t, args.Request, filter.Eq(sanitize.IDField, args.ID), "")
}

// Count returns the number of matching collection documents.
func (r *Retriever) Count(ctx context.Context, args CountArgs) (int64, error) {
	t := target{op: opCount, slug: args.Collection, kind: registry.KindCollection}

	var n int64
	err := r.observe(ctx, t, func(q *query) error {
		total, err := q.driver.Count(ctx, q.table, q.where(args.Where), q.countOptions(args.Request))
		n = total
		return err
	}, args.Request)
	return n, err
}

// FindVersions returns a page of versions of collection documents.
func (r *Retriever) FindVersions(ctx context.Context, args FindArgs) (storagemodels.Page, error) {
	t := target{op: opFindVersions, slug: args.Collection, kind: registry.KindCollection, versions: true}
	return r.page(ctx, t, args.Request, args.Where, args.Sort, args.PageRequest)
}

// FindVersionByID returns the collection version with id, or nil.
func (r *Retriever) FindVersionByID(ctx context.Context, args FindByIDArgs) (storagemodels.Document, error) {
	t := target{op: opFindVersionByID, slug: args.Collection, kind: registry.KindCollection, versions: true}
	return r.one(ctx, t, args.Request, filter.Eq(sanitize.IDField, args.ID), "")
}

// FindGlobal returns the document of a global, or nil.
func (r *Retriever) FindGlobal(ctx context.Context, args FindGlobalArgs) (storagemodels.Document, error) {
	t := target{op: opFindGlobal, slug: args.Global, kind: registry.KindGlobal}
	return r.one(ctx, t, args.Request, args.Where, "")
}

// FindGlobalVersions returns a page of versions of a global.
func (r *Retriever) FindGlobalVersions(ctx context.Context, args FindGlobalVersionsArgs) (storagemodels.Page, error) {
	t := target{op: opFindGlobalVersions, slug: args.Global, kind: registry.KindGlobal, versions: true}
	return r.page(ctx, t, args.Request, args.Where, args.Sort, args.PageRequest)
}

// FindGlobalVersionByID returns the global version with id, or nil.
func (r *Retriever) FindGlobalVersionByID(ctx context.Context, args FindGlobalVersionByIDArgs) (storagemodels.Document, error) {
	t := target{op: opFindGlobalVersionByID, slug: args.Global, kind: registry.KindGlobal, versions: true}
	return r.one(ctx, t, args.Request, filter.Eq(sanitize.IDField, args.ID), "")
}

// target names the entity an operation reads.
type target struct {
	op       string
	slug     string
	kind     registry.Kind
	versions bool
}

// query is one resolved retrieval: the entity, its driver and table, and the
// caller's transaction.
type query struct {
	entity   registry.Entity
	location registry.Location
	driver   datastore.Driver
	table    datastore.Table
	tx       datastore.Tx
	fallback string
	returned int
}

// where ANDs the system constraints onto the caller's filter.
func (q *query) where(caller filter.Where) filter.Where {
	if q.location.Shared() {
		return filter.Compose(caller, filter.Eq(q.location.Discriminator, q.entity.Slug))
	}
	return filter.Compose(caller)
}

func (q *query) localization(req Request) datastore.Localization {
	if !q.entity.Localized || req.Locale == "" {
		return datastore.Localization{}
	}
	fallback := req.FallbackLocale
	if fallback == "" {
		fallback = q.fallback
	}
	return datastore.Localization{Locale: req.Locale, Fallback: fallback, Fields: q.entity.LocalizedFields}
}

func (q *query) countOptions(req Request) datastore.CountOptions {
	return datastore.CountOptions{Localization: q.localization(req), Tx: q.tx}
}

func (q *query) findOptions(req Request, sort []storagemodels.SortField, skip, limit int) datastore.FindOptions {
	return datastore.FindOptions{
		Sort:         sort,
		Skip:         skip,
		Limit:        limit,
		Localization: q.localization(req),
		Tx:           q.tx,
	}
}

// resolve runs the identifier resolver and looks up the caller's transaction.
func (r *Retriever) resolve(ctx context.Context, t target, req Request) (*query, error) {
	if err := r.checkLocale("locale", req.Locale); err != nil {
		return nil, err
	}
	if err := r.checkLocale("fallbackLocale", req.FallbackLocale); err != nil {
		return nil, err
	}

	loc, e, err := r.resolver.Resolve(t.slug, t.kind, t.versions)
	if err != nil {
		return nil, err
	}

	driver, err := r.driverFor(e)
	if err != nil {
		return nil, err
	}

	table, err := driver.ResolveTable(ctx, loc.Table)
	if err != nil {
		return nil, err
	}

	tx, err := r.sessions.Lookup(req.TransactionID)
	if err != nil {
		return nil, err
	}

	return &query{
		entity:   e,
		location: loc,
		driver:   driver,
		table:    table,
		tx:       tx,
		fallback: r.fallbackLocale,
	}, nil
}

// page counts and finds in the same transaction and assembles a Page.
func (r *Retriever) page(ctx context.Context, t target, req Request, caller filter.Where, sortSpec string, pr storagemodels.PageRequest) (storagemodels.Page, error) {
	sort, err := storagemodels.ParseSort(sortSpec)
	if err != nil {
		return storagemodels.Page{}, err
	}
	w, err := pr.Window(r.defaultLimit)
	if err != nil {
		return storagemodels.Page{}, err
	}

	var page storagemodels.Page
	err = r.observe(ctx, t, func(q *query) error {
		where := q.where(caller)

		total, err := q.driver.Count(ctx, q.table, where, q.countOptions(req))
		if err != nil {
			return err
		}

		docs := []storagemodels.Document{}
		if w.Unbounded || int64(w.Skip) < total {
			raw, err := q.driver.Find(ctx, q.table, where, q.findOptions(req, sort, w.Skip, w.Limit))
			if err != nil {
				return err
			}
			docs = sanitize.Documents(raw, q.driver.Rules())
		}

		q.returned = len(docs)
		page = storagemodels.BuildPage(docs, total, w)
		return nil
	}, req)
	if err != nil {
		return storagemodels.Page{}, err
	}

	return page, nil
}

// one returns the first matching document. A miss is (nil, nil).
func (r *Retriever) one(ctx context.Context, t target, req Request, caller filter.Where, sortSpec string) (storagemodels.Document, error) {
	sort, err := storagemodels.ParseSort(sortSpec)
	if err != nil {
		return nil, err
	}

	var doc storagemodels.Document
	err = r.observe(ctx, t, func(q *query) error {
		raw, err := q.driver.Find(ctx, q.table, q.where(caller), q.findOptions(req, sort, 0, 1))
		if err != nil {
			return err
		}
		if len(raw) == 0 {
			return nil
		}

		q.returned = 1
		doc = sanitize.Document(raw[0], q.driver.Rules())
		return nil
	}, req)
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// observe resolves t, runs fn and reports the outcome to the logger and the metrics
// collector. Errors are returned unchanged.
func (r *Retriever) observe(ctx context.Context, t target, fn func(q *query) error, req Request) error {
	start := time.Now()

	q, err := r.resolve(ctx, t, req)
	if err == nil {
		err = fn(q)
	}

	duration := time.Since(start)
	r.record(t, q, duration, err)

	return err
}

func (r *Retriever) record(t target, q *query, duration time.Duration, err error) {
	status := statusSuccess
	if err != nil {
		status = statusError
	}

	if r.metrics != nil {
		labels := map[string]string{labelOperation: t.op, labelSlug: t.slug, labelStatus: status}
		r.metrics.RecordDuration(MetricOperationDuration, duration, labels)
		r.metrics.IncrementCounter(MetricOperations, labels)
		if err == nil && q != nil {
			r.metrics.RecordValue(MetricDocumentsReturned, float64(q.returned), labels)
		}
	}

	if r.logger == nil {
		return
	}
	if err != nil {
		r.logger.Error(logMsgOperationFailed+t.op, logAttrSlug, t.slug, logAttrError, err.Error())
		return
	}
	r.logger.Debug(logMsgOperation+t.op,
		logAttrSlug, t.slug,
		logAttrDriver, q.driver.Name(),
		logAttrTable, q.table.Name(),
		logAttrReturned, q.returned,
		logAttrDurationMS, float64(duration.Microseconds())/1000,
	)
}
