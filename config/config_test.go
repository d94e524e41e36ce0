/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/registry"
)

const sampleConfig = `
log:
  level: debug
  pretty: true
storage:
  default: main
  drivers:
    - name: main
      type: mongodb
      uri: mongodb://localhost:27017
      database: cms
    - name: reporting
      type: postgres
      client: sqlx
      dsn: postgres://localhost/cms
      versionsSuffix: _v
localization:
  locales: [en, de]
  fallbackLocale: en
pagination:
  defaultLimit: 25
collections:
  - slug: posts
    versioned: true
    localizedFields: [title, body]
  - slug: auditLogs
    driver: reporting
globals:
  - slug: settings
    versioned: true
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func emptyEnvFile(t *testing.T) string {
	return writeFile(t, "test.env", "")
}

func TestLoad(t *testing.T) {
	t.Run("File", func(t *testing.T) {
		cfg, err := Load(writeFile(t, "contentstore.yaml", sampleConfig), emptyEnvFile(t))
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Log.Level)
		assert.True(t, cfg.Log.Pretty)
		assert.Equal(t, "main", cfg.Storage.Default)
		require.Len(t, cfg.Storage.Drivers, 2)
		assert.Equal(t, TypePostgres, cfg.Storage.Drivers[1].Type)
		assert.Equal(t, ClientSQLX, cfg.Storage.Drivers[1].Client)
		assert.Equal(t, "_v", cfg.Storage.Drivers[1].VersionsSuffix)
		assert.Equal(t, 25, cfg.Pagination.DefaultLimit)
		assert.Equal(t, "en", cfg.Localization.FallbackLocale)
		assert.Equal(t, []string{"en", "de"}, cfg.Localization.Locales)
	})

	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load("", emptyEnvFile(t))
		require.NoError(t, err)

		assert.Equal(t, 10, cfg.Pagination.DefaultLimit)
		require.Len(t, cfg.Storage.Drivers, 1)
		assert.Equal(t, TypeMemory, cfg.Storage.Drivers[0].Type)
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("CONTENTSTORE_LOG_LEVEL", "error")
		t.Setenv("CONTENTSTORE_DEFAULT_LIMIT", "50")
		t.Setenv("CONTENTSTORE_MAIN_URI", "mongodb://db:27017")
		t.Setenv("CONTENTSTORE_LOCALES", "en, de,fr")

		cfg, err := Load(writeFile(t, "contentstore.yaml", sampleConfig), emptyEnvFile(t))
		require.NoError(t, err)

		assert.Equal(t, []string{"en", "de", "fr"}, cfg.Localization.Locales)
		assert.Equal(t, "error", cfg.Log.Level)
		assert.Equal(t, 50, cfg.Pagination.DefaultLimit)
		assert.Equal(t, "mongodb://db:27017", cfg.Storage.Drivers[0].URI)
	})

	t.Run("EnvFile", func(t *testing.T) {
		envFile := writeFile(t, "test.env", "CONTENTSTORE_REPORTING_DSN=postgres://replica/cms\n")
		t.Cleanup(func() { os.Unsetenv("CONTENTSTORE_REPORTING_DSN") })

		cfg, err := Load(writeFile(t, "contentstore.yaml", sampleConfig), envFile)
		require.NoError(t, err)

		assert.Equal(t, "postgres://replica/cms", cfg.Storage.Drivers[1].DSN)
	})

	t.Run("InvalidEnv", func(t *testing.T) {
		t.Setenv("CONTENTSTORE_DEFAULT_LIMIT", "many")

		_, err := Load("", emptyEnvFile(t))
		assert.True(t, errors.IsValidationError(err))
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), emptyEnvFile(t))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("MalformedFile", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.yaml", "storage: [unclosed"), emptyEnvFile(t))
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		check  func(error) bool
	}{
		{
			name:   "NoDrivers",
			mutate: func(c *Config) { c.Storage.Drivers = nil },
			check:  errors.IsValidationError,
		},
		{
			name: "DuplicateDriver",
			mutate: func(c *Config) {
				c.Storage.Drivers = append(c.Storage.Drivers, DriverConfig{Name: TypeMemory, Type: TypeMemory})
			},
			check: errors.IsValidationError,
		},
		{
			name:   "UnknownType",
			mutate: func(c *Config) { c.Storage.Drivers[0].Type = "redis" },
			check:  errors.IsValidationError,
		},
		{
			name: "PostgresWithoutDSN",
			mutate: func(c *Config) {
				c.Storage.Drivers = append(c.Storage.Drivers, DriverConfig{Name: "pg", Type: TypePostgres})
			},
			check: errors.IsValidationError,
		},
		{
			name: "UnknownPostgresClient",
			mutate: func(c *Config) {
				c.Storage.Drivers = append(c.Storage.Drivers, DriverConfig{Name: "pg", Type: TypePostgres, DSN: "x", Client: "gorm"})
			},
			check: errors.IsValidationError,
		},
		{
			name:   "DynamoDBWithoutTable",
			mutate: func(c *Config) { c.Storage.Drivers[0] = DriverConfig{Name: "d", Type: TypeDynamoDB} },
			check:  errors.IsValidationError,
		},
		{
			name:   "UnknownDefault",
			mutate: func(c *Config) { c.Storage.Default = "other" },
			check:  errors.IsValidationError,
		},
		{
			name:   "EntityOnUnknownDriver",
			mutate: func(c *Config) { c.Collections = []EntityConfig{{Slug: "posts", Driver: "other"}} },
			check:  errors.IsConfiguration,
		},
		{
			name:   "DuplicateEntity",
			mutate: func(c *Config) { c.Collections = []EntityConfig{{Slug: "posts"}, {Slug: "posts"}} },
			check:  errors.IsConfiguration,
		},
		{
			name: "FallbackOutsideLocales",
			mutate: func(c *Config) {
				c.Localization.Locales = []string{"de", "fr"}
				c.Localization.FallbackLocale = "en"
			},
			check: errors.IsValidationError,
		},
		{
			name:   "ZeroLimit",
			mutate: func(c *Config) { c.Pagination.DefaultLimit = 0 },
			check:  errors.IsValidationError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.True(t, tt.check(err), "unexpected error: %v", err)
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestRegistry(t *testing.T) {
	cfg, err := Load(writeFile(t, "contentstore.yaml", sampleConfig), emptyEnvFile(t))
	require.NoError(t, err)

	reg, err := cfg.Registry()
	require.NoError(t, err)
	assert.Equal(t, 3, reg.Len())

	posts, err := reg.Lookup("posts", registry.KindCollection)
	require.NoError(t, err)
	assert.True(t, posts.Versioned)
	assert.True(t, posts.Localized)
	assert.Equal(t, []string{"title", "body"}, posts.LocalizedFields)

	logs, err := reg.Lookup("auditLogs", registry.KindCollection)
	require.NoError(t, err)
	assert.Equal(t, "reporting", logs.Driver)

	settings, err := reg.Lookup("settings", registry.KindGlobal)
	require.NoError(t, err)
	assert.Equal(t, registry.KindGlobal, settings.Kind)
}

func TestLoggerConfig(t *testing.T) {
	cfg := Default()
	cfg.Log = LogConfig{Level: "warn", Pretty: true}

	l := cfg.Logger()
	assert.Equal(t, "warn", l.Level)
	assert.True(t, l.Pretty)
}
