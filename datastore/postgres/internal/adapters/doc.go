// Package adapters provide database adapter implementations for the postgres driver.
//
// This package implements the adapter pattern to support multiple PostgreSQL database libraries:
// pgx.Pool, sql.DB, and sqlx.DB. All adapters provide equivalent functionality through
// a common DBAdapter interface, including read-only repeatable-read transactions.
package adapters
