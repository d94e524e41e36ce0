/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/contentstore/datastore"
)

var _ datastore.Logger = (*Logger)(nil)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()

	var res []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		res = append(res, entry)
	}
	return res
}

func TestLogger(t *testing.T) {
	t.Run("KeyValueFields", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(Config{Level: "debug", Output: &buf})

		l.Debug("operation completed: find", "slug", "posts", "returned", 3)

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "debug", entries[0]["level"])
		assert.Equal(t, "operation completed: find", entries[0]["message"])
		assert.Equal(t, "posts", entries[0]["slug"])
		assert.Equal(t, float64(3), entries[0]["returned"])
		assert.Equal(t, "contentstore", entries[0]["service"])
	})

	t.Run("LevelFilters", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(Config{Level: "warn", Output: &buf})

		l.Debug("hidden")
		l.Info("hidden")
		l.Warn("shown")
		l.Error("shown too")

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 2)
		assert.Equal(t, "warn", entries[0]["level"])
		assert.Equal(t, "error", entries[1]["level"])
	})

	t.Run("MalformedPairs", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(Config{Output: &buf})

		l.Info("odd", 42, "table", "posts", "dangling")

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, float64(42), entries[0]["!BADKEY"])
		assert.Equal(t, "posts", entries[0]["table"])
		assert.Equal(t, "!MISSING", entries[0]["dangling"])
	})

	t.Run("With", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(Config{Output: &buf}).With("driver", "mongodb")

		l.Info("connected")

		entries := decodeLines(t, &buf)
		require.Len(t, entries, 1)
		assert.Equal(t, "mongodb", entries[0]["driver"])
	})

	t.Run("Pretty", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(Config{Pretty: true, Output: &buf})

		l.Info("ready", "port", 8080)

		assert.Contains(t, buf.String(), "ready")
		assert.Contains(t, buf.String(), "port=")
	})
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}
