/*
Package datastore defines the storage contract of contentstore.

The main interface is Driver, implemented once per backend:

	type Driver interface {
	    Name() string
	    Naming() registry.Naming
	    Rules() sanitize.Rules
	    ResolveTable(ctx context.Context, name string) (Table, error)
	    Find(ctx context.Context, table Table, where filter.Where, opts FindOptions) ([]storagemodels.Document, error)
	    Count(ctx context.Context, table Table, where filter.Where, opts CountOptions) (int64, error)
	    Begin(ctx context.Context) (Tx, error)
	}

Implementations:
  - mongodb: MongoDB document store, globals share one collection
  - postgres: relational store built with goqu, over pgx, database/sql or sqlx
  - ddb: DynamoDB single-table design, one partition per physical table
  - memory: in-process store for tests and local runs

Drivers return raw documents; callers sanitize them with the driver's Rules. A Tx passed
in FindOptions or CountOptions must come from the same driver's Begin, otherwise the call
fails with ErrForeignTransaction.
*/
package datastore
