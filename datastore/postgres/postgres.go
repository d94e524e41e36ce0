/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/datastore/postgres/internal/adapters"
	storeerrors "github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/sanitize"
	"github.com/suparena/contentstore/storagemodels"
)

const (
	// DriverName is the default name of the postgres driver.
	DriverName = "postgres"

	defaultLocalesSuffix = "_locales"

	logMsgBuildQueryFailed = "failed to build select query"
	logMsgDBQueryFailed    = "database query execution failed"
	logMsgCloseRowsFailed  = "failed to close database rows"
	logMsgScanRowFailed    = "failed to scan database row"
	logMsgSQLExecuted      = "executed sql for: "
	logMsgQueryCompleted   = "query completed"
	logAttrError           = "error"
	logAttrQuery           = "query"
	logAttrTable           = "table"
	logAttrRowCount        = "row_count"
	logAttrDurationMS      = "duration_ms"
	logActionFind          = "find"
	logActionCount         = "count"
)

var (
	// ErrNilDatabaseConnection is returned when a constructor receives a nil connection.
	ErrNilDatabaseConnection = errors.New("database connection must not be nil")

	// ErrEmptyLocalesSuffix is returned by WithLocalesSuffix for an empty suffix.
	ErrEmptyLocalesSuffix = errors.New("locales table suffix must not be empty")
)

// Driver implements datastore.Driver on PostgreSQL. Entities live in snake_case tables;
// localized fields live in "<table>_locales" rows keyed by _parent_id and _locale.
type Driver struct {
	name          string
	db            adapters.DBAdapter
	naming        registry.Naming
	localesSuffix string
	logger        datastore.Logger
}

// Option defines a functional option for configuring Driver.
type Option func(*Driver) error

// WithName overrides the driver name.
func WithName(name string) Option {
	return func(d *Driver) error {
		if name == "" {
			return storeerrors.NewValidationError("name", "must not be empty")
		}
		d.name = name
		return nil
	}
}

// WithVersionsSuffix sets the suffix of version tables.
func WithVersionsSuffix(suffix string) Option {
	return func(d *Driver) error {
		d.naming = registry.RelationalNaming(suffix)
		return nil
	}
}

// WithLocalesSuffix sets the suffix of locale tables.
func WithLocalesSuffix(suffix string) Option {
	return func(d *Driver) error {
		if suffix == "" {
			return ErrEmptyLocalesSuffix
		}
		d.localesSuffix = suffix
		return nil
	}
}

// WithLogger sets the logger for the Driver.
// Debug level receives SQL with timing, Info level row counts, Warn level cleanup failures
// and Error level failed queries.
func WithLogger(logger datastore.Logger) Option {
	return func(d *Driver) error {
		d.logger = logger
		return nil
	}
}

// NewFromPGXPool creates a Driver using a pgx Pool.
func NewFromPGXPool(db *pgxpool.Pool, options ...Option) (*Driver, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newDriver(adapters.NewPGXAdapter(db), options...)
}

// NewFromPGXPoolWithReplica creates a Driver reading auto-commit queries from replica.
// Transactions always run on the primary pool.
func NewFromPGXPoolWithReplica(db, replica *pgxpool.Pool, options ...Option) (*Driver, error) {
	if db == nil || replica == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newDriver(adapters.NewPGXAdapterWithReplica(db, replica), options...)
}

// NewFromSQLDB creates a Driver using a sql.DB.
func NewFromSQLDB(db *sql.DB, options ...Option) (*Driver, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newDriver(adapters.NewSQLAdapter(db), options...)
}

// NewFromSQLX creates a Driver using a sqlx.DB.
func NewFromSQLX(db *sqlx.DB, options ...Option) (*Driver, error) {
	if db == nil {
		return nil, ErrNilDatabaseConnection
	}
	return newDriver(adapters.NewSQLXAdapter(db), options...)
}

func newDriver(db adapters.DBAdapter, options ...Option) (*Driver, error) {
	d := &Driver{
		name:          DriverName,
		db:            db,
		naming:        registry.RelationalNaming(registry.DefaultVersionsSuffix),
		localesSuffix: defaultLocalesSuffix,
	}

	for _, option := range options {
		if err := option(d); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return d.name
}

// Naming returns the relational naming convention.
func (d *Driver) Naming() registry.Naming {
	return d.naming
}

// Rules returns the sanitize rules for rows. Rows carry "id" natively.
func (d *Driver) Rules() sanitize.Rules {
	return sanitize.Rules{IDField: colID, Internal: []string{colParentID, colLocale}}
}

// ResolveTable returns a handle for the table called name.
func (d *Driver) ResolveTable(ctx context.Context, name string) (datastore.Table, error) {
	if name == "" {
		return nil, storeerrors.NewValidationError("table", "must not be empty")
	}
	return datastore.NamedTable(name), nil
}

// Find selects the matching rows and merges localized columns into them.
func (d *Driver) Find(ctx context.Context, table datastore.Table, where filter.Where, opts datastore.FindOptions) ([]storagemodels.Document, error) {
	q, err := d.querier(opts.Tx)
	if err != nil {
		return nil, err
	}

	b := newQueryBuilder(table.Name(), d.localesSuffix, opts.Localization)
	sqlQuery, args, err := b.selectSQL(where, opts)
	if err != nil {
		if d.logger != nil {
			d.logger.Error(logMsgBuildQueryFailed, logAttrError, err.Error(), logAttrTable, table.Name())
		}
		return nil, err
	}

	rows, err := d.executeQuery(ctx, q, logActionFind, table.Name(), sqlQuery, args)
	if err != nil {
		return nil, err
	}
	defer d.closeRows(rows)

	docs, err := d.processRows(rows, table.Name())
	if err != nil {
		return nil, err
	}

	if d.logger != nil {
		d.logger.Info(logMsgQueryCompleted, logAttrTable, table.Name(), logAttrRowCount, len(docs))
	}

	return docs, nil
}

// Count counts the matching rows.
func (d *Driver) Count(ctx context.Context, table datastore.Table, where filter.Where, opts datastore.CountOptions) (int64, error) {
	q, err := d.querier(opts.Tx)
	if err != nil {
		return 0, err
	}

	b := newQueryBuilder(table.Name(), d.localesSuffix, opts.Localization)
	sqlQuery, args, err := b.countSQL(where)
	if err != nil {
		if d.logger != nil {
			d.logger.Error(logMsgBuildQueryFailed, logAttrError, err.Error(), logAttrTable, table.Name())
		}
		return 0, err
	}

	rows, err := d.executeQuery(ctx, q, logActionCount, table.Name(), sqlQuery, args)
	if err != nil {
		return 0, err
	}
	defer d.closeRows(rows)

	var n int64
	if rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return 0, storeerrors.NewStorageError(logActionCount, table.Name(), err)
		}
		if len(values) > 0 {
			n = toInt64(values[0])
		}
	}
	if err := rows.Err(); err != nil {
		return 0, storeerrors.NewStorageError(logActionCount, table.Name(), err)
	}

	return n, nil
}

// Begin opens a read-only repeatable-read transaction.
func (d *Driver) Begin(ctx context.Context) (datastore.Tx, error) {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return nil, storeerrors.NewStorageError("begin", "", err)
	}
	return &Tx{driver: d.name, tx: tx}, nil
}

func (d *Driver) querier(tx datastore.Tx) (adapters.Querier, error) {
	own, ok, err := datastore.OwnTx[*Tx](tx, d.name)
	if err != nil {
		return nil, err
	}
	if ok {
		return own.tx, nil
	}
	return d.db, nil
}

// executeQuery executes the SQL query and logs it with timing information.
func (d *Driver) executeQuery(ctx context.Context, q adapters.Querier, action, table, sqlQuery string, args []any) (adapters.DBRows, error) {
	start := time.Now()
	rows, err := q.Query(ctx, sqlQuery, args...)
	duration := time.Since(start)

	if d.logger != nil {
		d.logger.Debug(logMsgSQLExecuted+action, logAttrDurationMS, durationToMilliseconds(duration), logAttrQuery, sqlQuery)
	}

	if err != nil {
		if d.logger != nil {
			d.logger.Error(logMsgDBQueryFailed, logAttrError, err.Error(), logAttrQuery, sqlQuery)
		}
		return nil, storeerrors.NewStorageError(action, table, err)
	}

	return rows, nil
}

// closeRows safely closes database rows and logs any errors.
func (d *Driver) closeRows(rows adapters.DBRows) {
	if err := rows.Close(); err != nil {
		if d.logger != nil {
			d.logger.Warn(logMsgCloseRowsFailed, logAttrError, err.Error())
		}
	}
}

// processRows maps every row onto a document keyed by camelCase field names.
func (d *Driver) processRows(rows adapters.DBRows, table string) ([]storagemodels.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, storeerrors.NewStorageError(logActionFind, table, err)
	}

	fields := make([]string, len(columns))
	for i, c := range columns {
		fields[i] = registry.ToCamel(c)
	}

	docs := make([]storagemodels.Document, 0)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			if d.logger != nil {
				d.logger.Error(logMsgScanRowFailed, logAttrError, err.Error())
			}
			return nil, storeerrors.NewStorageError(logActionFind, table, err)
		}

		doc := make(storagemodels.Document, len(fields))
		for i, f := range fields {
			if i < len(values) {
				doc[f] = values[i]
			}
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, storeerrors.NewStorageError(logActionFind, table, err)
	}

	return docs, nil
}

func toInt64(v any) int64 {
	switch tv := v.(type) {
	case int64:
		return tv
	case int32:
		return int64(tv)
	case int:
		return int64(tv)
	case float64:
		return int64(tv)
	default:
		return 0
	}
}

// durationToMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func durationToMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// Tx is a read transaction of the postgres driver.
type Tx struct {
	driver string
	tx     adapters.DBTx
}

// Driver returns the name of the driver that opened the transaction.
func (t *Tx) Driver() string {
	return t.driver
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return storeerrors.NewStorageError("commit", "", err)
	}
	return nil
}

// Rollback rolls the transaction back.
func (t *Tx) Rollback(ctx context.Context) error {
	if err := t.tx.Rollback(ctx); err != nil {
		return storeerrors.NewStorageError("rollback", "", err)
	}
	return nil
}
