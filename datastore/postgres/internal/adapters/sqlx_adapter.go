/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package adapters

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SQLXAdapter implements DBAdapter for sqlx.DB
type SQLXAdapter struct {
	db *sqlx.DB
}

// NewSQLXAdapter creates a new SQLX adapter
func NewSQLXAdapter(db *sqlx.DB) *SQLXAdapter {
	return &SQLXAdapter{db: db}
}

// Query executes a query using the sqlx.DB and returns wrapped rows.
func (s *SQLXAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newSQLXRows(rows)
}

// Begin opens a read-only repeatable-read transaction.
func (s *SQLXAdapter) Begin(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTxx(ctx, repeatableRead)
	if err != nil {
		return nil, err
	}
	return &sqlxTx{tx: tx}, nil
}

type sqlxTx struct {
	tx *sqlx.Tx
}

func (s *sqlxTx) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.tx.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newSQLXRows(rows)
}

func (s *sqlxTx) Commit(ctx context.Context) error {
	return s.tx.Commit()
}

func (s *sqlxTx) Rollback(ctx context.Context) error {
	return s.tx.Rollback()
}

// sqlxRows reads rows with sqlx's SliceScan.
type sqlxRows struct {
	rows    *sqlx.Rows
	jsonCol []bool
}

func newSQLXRows(rows *sqlx.Rows) (*sqlxRows, error) {
	types, err := rows.ColumnTypes()
	if err != nil {
		rows.Close()
		return nil, err
	}

	jsonCol := make([]bool, len(types))
	for i, t := range types {
		name := strings.ToUpper(t.DatabaseTypeName())
		jsonCol[i] = name == "JSON" || name == "JSONB"
	}

	return &sqlxRows{rows: rows, jsonCol: jsonCol}, nil
}

func (s *sqlxRows) Next() bool {
	return s.rows.Next()
}

func (s *sqlxRows) Columns() ([]string, error) {
	return s.rows.Columns()
}

func (s *sqlxRows) Values() ([]any, error) {
	values, err := s.rows.SliceScan()
	if err != nil {
		return nil, err
	}
	return decodeRow(values, s.jsonCol), nil
}

func (s *sqlxRows) Err() error {
	return s.rows.Err()
}

func (s *sqlxRows) Close() error {
	return s.rows.Close()
}
