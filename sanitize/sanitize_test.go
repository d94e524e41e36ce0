/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package sanitize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/suparena/contentstore/sanitize"
)

var mongoRules = Rules{IDField: "_id"}

func Test_Document_Renames_Id(t *testing.T) {
	got := Document(map[string]any{"_id": "abc", "title": "Hello"}, mongoRules)

	assert.Equal(t, map[string]any{"id": "abc", "title": "Hello"}, got)
}

func Test_Document_When_Both_Ids_Present_Driver_Id_Wins(t *testing.T) {
	got := Document(map[string]any{"_id": "abc", "id": "stale"}, mongoRules)

	assert.Equal(t, map[string]any{"id": "abc"}, got)
}

func Test_Document_Drops_Internal_Fields(t *testing.T) {
	raw := map[string]any{
		"_id":   "abc",
		"__v":   3,
		"salt":  "s",
		"hash":  "h",
		"PK":    "TABLE#posts",
		"title": "Hello",
	}

	got := Document(raw, Rules{IDField: "_id", Internal: []string{"PK"}})

	assert.Equal(t, map[string]any{"id": "abc", "title": "Hello"}, got)
	for _, k := range []string{"__v", "salt", "hash", "PK"} {
		assert.NotContains(t, got, k)
	}
}

func Test_Document_Is_Idempotent(t *testing.T) {
	raw := map[string]any{
		"_id":  "abc",
		"__v":  0,
		"tags": []any{"a", map[string]any{"b": 1}},
	}

	once := Document(raw, mongoRules)
	twice := Document(once, mongoRules)

	assert.Equal(t, once, twice)
}

func Test_Document_Does_Not_Alias_Input(t *testing.T) {
	raw := map[string]any{
		"_id":    "abc",
		"author": map[string]any{"name": "Ada"},
		"tags":   []any{"go"},
	}

	got := Document(raw, mongoRules)
	got["author"].(map[string]any)["name"] = "Grace"
	got["tags"].([]any)[0] = "rust"

	assert.Equal(t, "Ada", raw["author"].(map[string]any)["name"])
	assert.Equal(t, "go", raw["tags"].([]any)[0])
	assert.Contains(t, raw, "_id")
}

func Test_Document_With_Canonical_Id(t *testing.T) {
	got := Document(map[string]any{"id": 7, "salt": "x"}, Rules{})

	assert.Equal(t, map[string]any{"id": 7}, got)
}

func Test_Document_Nil(t *testing.T) {
	assert.Nil(t, Document(nil, mongoRules))
}

func Test_Documents(t *testing.T) {
	got := Documents(nil, mongoRules)
	require.NotNil(t, got)
	assert.Empty(t, got)

	got = Documents([]map[string]any{{"_id": 1}, {"_id": 2}}, mongoRules)
	assert.Equal(t, []map[string]any{{"id": 1}, {"id": 2}}, got)
}

func Test_DeepCopy_Nested_Document_Slices(t *testing.T) {
	in := []map[string]any{{"blocks": []any{map[string]any{"type": "hero"}}}}

	out := DeepCopy(in).([]map[string]any)
	out[0]["blocks"].([]any)[0].(map[string]any)["type"] = "cta"

	assert.Equal(t, "hero", in[0]["blocks"].([]any)[0].(map[string]any)["type"])
}
