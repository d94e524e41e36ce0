/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process implementation of datastore.Driver for tests and local runs
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/sanitize"
	"github.com/suparena/contentstore/storagemodels"
)

// DriverName is the default name of the memory driver.
const DriverName = "memory"

// IDField is where documents keep their identifier, mirroring document stores.
const IDField = "_id"

// Driver is an in-memory document store. Documents are deep-copied on the way in and
// out, so callers never share state with the store.
type Driver struct {
	mu     sync.RWMutex
	name   string
	naming registry.Naming
	tables map[string][]storagemodels.Document
	logger datastore.Logger

	findError  error
	countError error
	beginError error
}

// Option configures a Driver.
type Option func(*Driver)

// WithName overrides the driver name used in transactions and logs.
func WithName(name string) Option {
	return func(d *Driver) {
		d.name = name
	}
}

// WithNaming overrides the physical naming convention.
func WithNaming(n registry.Naming) Option {
	return func(d *Driver) {
		d.naming = n
	}
}

// WithLogger sets the logger.
func WithLogger(l datastore.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// New creates an empty memory driver with document store naming.
func New(opts ...Option) *Driver {
	d := &Driver{
		name:   DriverName,
		naming: registry.DocumentNaming(),
		tables: make(map[string][]storagemodels.Document),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// WithFindError makes Find operations return an error
func (d *Driver) WithFindError(err error) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.findError = err
	return d
}

// WithCountError makes Count operations return an error
func (d *Driver) WithCountError(err error) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.countError = err
	return d
}

// WithBeginError makes Begin return an error
func (d *Driver) WithBeginError(err error) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.beginError = err
	return d
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return d.name
}

// Naming returns the physical naming convention.
func (d *Driver) Naming() registry.Naming {
	return d.naming
}

// Rules returns the sanitize rules for documents of this driver.
func (d *Driver) Rules() sanitize.Rules {
	return sanitize.Rules{IDField: IDField}
}

// ResolveTable returns a handle for name. Unknown tables are empty.
func (d *Driver) ResolveTable(ctx context.Context, name string) (datastore.Table, error) {
	if name == "" {
		return nil, errors.NewValidationError("table", "must not be empty")
	}
	return datastore.NamedTable(name), nil
}

// Find returns the matching documents.
func (d *Driver) Find(ctx context.Context, table datastore.Table, where filter.Where, opts datastore.FindOptions) ([]storagemodels.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := d.rows("find", table, opts.Tx, func() error { return d.findError })
	if err != nil {
		return nil, err
	}

	where, sort := datastore.DocumentQuery(where, opts.Sort, IDField, opts.Localization)

	matched := make([]storagemodels.Document, 0)
	for _, row := range rows {
		if where.Match(row) {
			matched = append(matched, copyDocument(row))
		}
	}

	storagemodels.SortDocuments(matched, sort)
	matched = datastore.Window(matched, opts.Skip, opts.Limit)

	if d.logger != nil {
		d.logger.Debug(logMsgFind, logAttrTable, table.Name(), logAttrMatched, len(matched))
	}

	return datastore.ResolveLocales(matched, opts.Localization), nil
}

// Count returns the number of matching documents.
func (d *Driver) Count(ctx context.Context, table datastore.Table, where filter.Where, opts datastore.CountOptions) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	rows, err := d.rows("count", table, opts.Tx, func() error { return d.countError })
	if err != nil {
		return 0, err
	}

	where, _ = datastore.DocumentQuery(where, nil, IDField, opts.Localization)

	var n int64
	for _, row := range rows {
		if where.Match(row) {
			n++
		}
	}
	return n, nil
}

// rows returns the live table, or the transaction snapshot when tx is set.
// The returned documents must not be modified.
func (d *Driver) rows(op string, table datastore.Table, tx datastore.Tx, injected func() error) ([]storagemodels.Document, error) {
	own, ok, err := datastore.OwnTx[*Tx](tx, d.name)
	if err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if err := injected(); err != nil {
		return nil, errors.NewStorageError(op, table.Name(), err)
	}

	if ok {
		return own.table(table.Name())
	}
	return d.tables[table.Name()], nil
}

// Begin takes a snapshot of every table. Reads through the transaction see the snapshot
// regardless of later inserts.
func (d *Driver) Begin(ctx context.Context) (datastore.Tx, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.beginError != nil {
		return nil, errors.NewStorageError("begin", "", d.beginError)
	}

	snapshot := make(map[string][]storagemodels.Document, len(d.tables))
	for name, rows := range d.tables {
		snapshot[name] = copyDocuments(rows)
	}

	if d.logger != nil {
		d.logger.Debug(logMsgBegin, logAttrTables, len(snapshot))
	}

	return &Tx{driver: d.name, tables: snapshot}, nil
}

// Insert appends a copy of doc to table.
func (d *Driver) Insert(ctx context.Context, table string, doc storagemodels.Document) error {
	if doc == nil {
		return errors.NewValidationError("doc", "must not be nil")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.tables[table] = append(d.tables[table], copyDocument(doc))
	return nil
}

// Seed appends copies of docs to table. It is meant for test setup.
func (d *Driver) Seed(table string, docs ...storagemodels.Document) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.tables[table] = append(d.tables[table], copyDocuments(docs)...)
	return d
}

// Rows returns a copy of the raw documents of table (for testing)
func (d *Driver) Rows(table string) []storagemodels.Document {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return copyDocuments(d.tables[table])
}

// Clear removes all data
func (d *Driver) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tables = make(map[string][]storagemodels.Document)
}

// Tx is a snapshot transaction of the memory driver.
type Tx struct {
	mu     sync.Mutex
	driver string
	tables map[string][]storagemodels.Document
	done   bool
}

// Driver returns the name of the driver that opened the transaction.
func (t *Tx) Driver() string {
	return t.driver
}

// Commit ends the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.finish()
}

// Rollback ends the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.finish()
}

func (t *Tx) finish() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("%w: already finished", errors.ErrTransactionNotFound)
	}
	t.done = true
	t.tables = nil
	return nil
}

func (t *Tx) table(name string) ([]storagemodels.Document, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return nil, fmt.Errorf("%w: already finished", errors.ErrTransactionNotFound)
	}
	return t.tables[name], nil
}

func copyDocument(doc storagemodels.Document) storagemodels.Document {
	return sanitize.DeepCopy(doc).(map[string]any)
}

func copyDocuments(docs []storagemodels.Document) []storagemodels.Document {
	res := make([]storagemodels.Document, len(docs))
	for i, d := range docs {
		res[i] = copyDocument(d)
	}
	return res
}
