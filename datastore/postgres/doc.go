/*
Package postgres implements datastore.Driver on PostgreSQL.

Tables and columns are snake_case; documents come back keyed by lowerCamel field names.
Localized fields are stored in a sibling "<table>_locales" table:

	posts(id, slug, created_at, ...)
	posts_locales(_parent_id, _locale, title, body)

A localized query left-joins the requested locale (and the fallback locale, combined with
COALESCE). The "all" locale returns every localized field as a jsonb object keyed by locale.

SQL is built with goqu and executed through pgx, database/sql or sqlx:

	pool, _ := pgxpool.New(ctx, dsn)
	driver, _ := postgres.NewFromPGXPool(pool, postgres.WithLogger(log))

Transactions are read-only and repeatable-read, so a find and its count share one snapshot.
*/
package postgres
