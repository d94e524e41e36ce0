/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package adapters

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// normalizeValue converts driver specific values into plain Go values.
func normalizeValue(v any) any {
	switch tv := v.(type) {
	case [16]byte:
		return uuid.UUID(tv).String()
	case []byte:
		return string(tv)
	default:
		return v
	}
}

// decodeJSON decodes a json or jsonb column. Invalid input is returned as a string.
func decodeJSON(raw []byte) any {
	if raw == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	return v
}

// stdRows wraps standard library sql.Rows to implement DBRows interface
type stdRows struct {
	rows    *sql.Rows
	jsonCol []bool
}

func newStdRows(rows *sql.Rows) (*stdRows, error) {
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

	return &stdRows{rows: rows, jsonCol: jsonCol}, nil
}

func (s *stdRows) Next() bool {
	return s.rows.Next()
}

func (s *stdRows) Columns() ([]string, error) {
	return s.rows.Columns()
}

func (s *stdRows) Values() ([]any, error) {
	values := make([]any, len(s.jsonCol))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}

	if err := s.rows.Scan(dest...); err != nil {
		return nil, err
	}

	return decodeRow(values, s.jsonCol), nil
}

func (s *stdRows) Err() error {
	return s.rows.Err()
}

func (s *stdRows) Close() error {
	return s.rows.Close()
}

func decodeRow(values []any, jsonCol []bool) []any {
	for i, v := range values {
		if raw, ok := v.([]byte); ok && i < len(jsonCol) && jsonCol[i] {
			values[i] = decodeJSON(raw)
			continue
		}
		values[i] = normalizeValue(v)
	}
	return values
}
