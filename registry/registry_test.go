/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/registry"
)

func buildRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	reg, err := registry.NewBuilder().
		Collection(registry.Entity{Slug: "posts"}).
		Collection(registry.Entity{Slug: "blogPosts", Versioned: true, Localized: true, LocalizedFields: []string{"title"}}).
		Global(registry.Entity{Slug: "settings", Versioned: true}).
		Global(registry.Entity{Slug: "footer"}).
		Build()
	require.NoError(t, err)

	return reg
}

func Test_Lookup_Returns_Registered_Entity(t *testing.T) {
	reg := buildRegistry(t)

	e, err := reg.Lookup("blogPosts", registry.KindCollection)

	require.NoError(t, err)
	assert.True(t, e.Versioned)
	assert.True(t, e.IsLocalizedField("title"))
	assert.False(t, e.IsLocalizedField("body"))
	assert.Equal(t, 4, reg.Len())
}

func Test_Lookup_When_Slug_Unknown(t *testing.T) {
	reg := buildRegistry(t)

	_, err := reg.Lookup("pages", registry.KindCollection)
	assert.True(t, errors.IsConfiguration(err))

	_, err = reg.Lookup("posts", registry.KindGlobal)
	assert.True(t, errors.IsConfiguration(err), "kinds have separate namespaces")
}

func Test_Lookup_On_Nil_Registry(t *testing.T) {
	var reg *registry.Registry

	_, err := reg.Lookup("posts", registry.KindCollection)

	assert.True(t, errors.IsConfiguration(err))
}

func Test_Build_Rejects_Duplicates_And_Invalid_Entities(t *testing.T) {
	testCases := []struct {
		name    string
		builder *registry.Builder
	}{
		{
			name: "duplicate slug",
			builder: registry.NewBuilder().
				Collection(registry.Entity{Slug: "posts"}).
				Collection(registry.Entity{Slug: "posts"}),
		},
		{
			name:    "empty slug",
			builder: registry.NewBuilder().Collection(registry.Entity{}),
		},
		{
			name:    "unknown kind",
			builder: registry.NewBuilder().Register(registry.Entity{Slug: "x", Kind: "view"}),
		},
		{
			name: "localized fields without localization",
			builder: registry.NewBuilder().
				Collection(registry.Entity{Slug: "posts", LocalizedFields: []string{"title"}}),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.builder.Build()
			assert.Error(t, err)
		})
	}
}

func Test_Builder_Does_Not_Alias_Registered_Slices(t *testing.T) {
	fields := []string{"title"}
	reg, err := registry.NewBuilder().
		Collection(registry.Entity{Slug: "posts", Localized: true, LocalizedFields: fields}).
		Build()
	require.NoError(t, err)

	fields[0] = "body"

	e, err := reg.Lookup("posts", registry.KindCollection)
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, e.LocalizedFields)
}

func Test_Entities_Keeps_Registration_Order(t *testing.T) {
	reg := buildRegistry(t)

	globals := reg.Entities(registry.KindGlobal)

	require.Len(t, globals, 2)
	assert.Equal(t, "settings", globals[0].Slug)
	assert.Equal(t, "footer", globals[1].Slug)
}
