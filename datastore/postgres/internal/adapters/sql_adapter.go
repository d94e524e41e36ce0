/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package adapters

import (
	"context"
	"database/sql"
)

// repeatableRead is the isolation used by read transactions of the database/sql adapters.
var repeatableRead = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}

// SQLAdapter implements DBAdapter for sql.DB
type SQLAdapter struct {
	db *sql.DB
}

// NewSQLAdapter creates a new SQL adapter
func NewSQLAdapter(db *sql.DB) *SQLAdapter {
	return &SQLAdapter{db: db}
}

func (s *SQLAdapter) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newStdRows(rows)
}

func (s *SQLAdapter) Begin(ctx context.Context) (DBTx, error) {
	tx, err := s.db.BeginTx(ctx, repeatableRead)
	if err != nil {
		return nil, err
	}
	return &sqlTx{tx: tx}, nil
}

type sqlTx struct {
	tx *sql.Tx
}

func (s *sqlTx) Query(ctx context.Context, query string, args ...any) (DBRows, error) {
	rows, err := s.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return newStdRows(rows)
}

func (s *sqlTx) Commit(ctx context.Context) error {
	return s.tx.Commit()
}

func (s *sqlTx) Rollback(ctx context.Context) error {
	return s.tx.Rollback()
}
