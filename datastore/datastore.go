/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"
	"fmt"

	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/sanitize"
	"github.com/suparena/contentstore/storagemodels"
)

// Driver is the storage contract every backend implements.
type Driver interface {
	// Name identifies the driver instance, e.g. "mongodb" or "postgres".
	Name() string

	// Naming is the physical layout the driver uses for entities.
	Naming() registry.Naming

	// Rules tell the sanitizer which fields are private to this driver.
	Rules() sanitize.Rules

	// ResolveTable returns a handle for the physical table name.
	ResolveTable(ctx context.Context, name string) (Table, error)

	// Find returns the raw documents matching where, sorted and windowed by opts.
	Find(ctx context.Context, table Table, where filter.Where, opts FindOptions) ([]storagemodels.Document, error)

	// Count returns the number of documents matching where.
	Count(ctx context.Context, table Table, where filter.Where, opts CountOptions) (int64, error)

	// Begin opens a read transaction.
	Begin(ctx context.Context) (Tx, error)
}

// Table is a resolved physical table or collection.
type Table interface {
	Name() string
}

// NamedTable is a Table identified by its name only.
type NamedTable string

// Name returns the table name.
func (t NamedTable) Name() string {
	return string(t)
}

// Tx is a live transaction opened by a Driver.
type Tx interface {
	// Driver is the name of the driver that opened the transaction.
	Driver() string
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Localization selects the locale of localized fields.
type Localization struct {
	// Locale is the requested locale. storagemodels.AllLocales returns every locale.
	Locale string
	// Fallback is used when a field has no value for Locale.
	Fallback string
	// Fields are the entity's localized fields.
	Fields []string
}

// Enabled reports whether localized fields need resolving.
func (l Localization) Enabled() bool {
	return l.Locale != "" && len(l.Fields) > 0
}

// QueryLocale is the locale filters and sorts address.
func (l Localization) QueryLocale() string {
	return storagemodels.QueryLocale(l.Locale, l.Fallback)
}

// FindOptions control a Find call.
type FindOptions struct {
	// Sort is applied in order. Empty means storage order.
	Sort []storagemodels.SortField
	Skip int
	// Limit of zero returns every document after Skip.
	Limit int
	Localization
	// Tx, when set, must have been opened by the same driver.
	Tx Tx
}

// CountOptions control a Count call.
type CountOptions struct {
	Localization
	Tx Tx
}

// OwnTx returns tx as the driver's transaction type T. ok is false when tx is nil.
// A transaction opened by another driver fails with ErrForeignTransaction.
func OwnTx[T Tx](tx Tx, driver string) (own T, ok bool, err error) {
	if tx == nil {
		return own, false, nil
	}

	own, ok = tx.(T)
	if !ok || tx.Driver() != driver {
		return own, false, fmt.Errorf("%w: opened by %q, used with %q", errors.ErrForeignTransaction, tx.Driver(), driver)
	}

	return own, true, nil
}

// Window slices docs by skip and limit. Limit of zero keeps everything after skip.
// A negative skip selects nothing.
func Window(docs []storagemodels.Document, skip, limit int) []storagemodels.Document {
	if skip < 0 || skip >= len(docs) {
		return []storagemodels.Document{}
	}
	docs = docs[skip:]
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}

// Logger is the logging interface used by drivers. It is compatible with slog-style
// key/value loggers; the logger package provides a zerolog implementation.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}
