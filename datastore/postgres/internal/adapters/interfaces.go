/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package adapters

import "context"

// Querier runs read queries with positional arguments.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (DBRows, error)
}

// DBAdapter defines the interface for database operations needed by the postgres driver
type DBAdapter interface {
	Querier
	// Begin opens a read-only repeatable-read transaction.
	Begin(ctx context.Context) (DBTx, error)
}

// DBTx is a transaction opened by a DBAdapter
type DBTx interface {
	Querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// DBRows defines the interface for query result rows
type DBRows interface {
	Next() bool
	Columns() ([]string, error)
	// Values returns the current row decoded into Go values. JSON columns are decoded
	// into maps and slices.
	Values() ([]any, error)
	Err() error
	Close() error
}
