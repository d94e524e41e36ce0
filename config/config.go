/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/logger"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/storagemodels"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "CONTENTSTORE"

// Driver types.
const (
	TypeMemory   = "memory"
	TypeMongoDB  = "mongodb"
	TypePostgres = "postgres"
	TypeDynamoDB = "ddb"
)

// Postgres client libraries.
const (
	ClientPGX  = "pgx"
	ClientSQL  = "sql"
	ClientSQLX = "sqlx"
)

// Config is the runtime configuration of a content store.
type Config struct {
	Log          LogConfig          `yaml:"log"`
	Storage      StorageConfig      `yaml:"storage"`
	Localization LocalizationConfig `yaml:"localization"`
	Pagination   PaginationConfig   `yaml:"pagination"`
	Collections  []EntityConfig     `yaml:"collections"`
	Globals      []EntityConfig     `yaml:"globals"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	Pretty     bool   `yaml:"pretty"`
	WithCaller bool   `yaml:"withCaller"`
}

// StorageConfig lists the drivers. Default names the driver of entities that name
// none; empty means the first driver.
type StorageConfig struct {
	Default string         `yaml:"default"`
	Drivers []DriverConfig `yaml:"drivers"`
}

// DriverConfig configures one storage driver. Which fields apply depends on Type.
type DriverConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	// mongodb
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`

	// postgres
	DSN            string `yaml:"dsn"`
	Client         string `yaml:"client"`
	ReplicaDSN     string `yaml:"replicaDsn"`
	VersionsSuffix string `yaml:"versionsSuffix"`
	LocalesSuffix  string `yaml:"localesSuffix"`

	// ddb
	Table     string `yaml:"table"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	PageSize  int32  `yaml:"pageSize"`
}

type LocalizationConfig struct {
	Locales        []string `yaml:"locales"`
	FallbackLocale string   `yaml:"fallbackLocale"`
}

type PaginationConfig struct {
	DefaultLimit int `yaml:"defaultLimit"`
}

// EntityConfig declares a collection or global.
type EntityConfig struct {
	Slug            string   `yaml:"slug"`
	Versioned       bool     `yaml:"versioned"`
	LocalizedFields []string `yaml:"localizedFields"`
	Driver          string   `yaml:"driver"`
}

// Default returns the configuration used when no file is given: one memory driver.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Storage: StorageConfig{
			Drivers: []DriverConfig{{Name: TypeMemory, Type: TypeMemory}},
		},
		Pagination: PaginationConfig{DefaultLimit: storagemodels.DefaultLimit},
	}
}

// Load reads the YAML file at path over the defaults, then applies environment
// overrides. envFiles are loaded into the environment first without replacing
// variables that are already set; with none given, ".env" is loaded if it exists.
func Load(path string, envFiles ...string) (*Config, error) {
	if err := loadEnv(envFiles); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadEnv(files []string) error {
	if len(files) == 0 {
		if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("failed to load env files: %w", err)
	}
	return nil
}

// applyEnvOverrides reads CONTENTSTORE_* variables. Driver settings use the upper-cased
// driver name, e.g. CONTENTSTORE_MONGODB_URI.
func (c *Config) applyEnvOverrides() error {
	if v, ok := lookup("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := lookup("LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.NewValidationError(EnvPrefix+"_LOG_PRETTY", err.Error())
		}
		c.Log.Pretty = b
	}
	if v, ok := lookup("DEFAULT_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewValidationError(EnvPrefix+"_DEFAULT_LIMIT", err.Error())
		}
		c.Pagination.DefaultLimit = n
	}
	if v, ok := lookup("FALLBACK_LOCALE"); ok {
		c.Localization.FallbackLocale = v
	}
	if v, ok := lookup("LOCALES"); ok {
		c.Localization.Locales = nil
		for _, l := range strings.Split(v, ",") {
			if l = strings.TrimSpace(l); l != "" {
				c.Localization.Locales = append(c.Localization.Locales, l)
			}
		}
	}
	if v, ok := lookup("STORAGE_DEFAULT"); ok {
		c.Storage.Default = v
	}

	for i := range c.Storage.Drivers {
		d := &c.Storage.Drivers[i]
		prefix := envName(d.Name) + "_"
		for key, field := range map[string]*string{
			"URI":         &d.URI,
			"DATABASE":    &d.Database,
			"DSN":         &d.DSN,
			"REPLICA_DSN": &d.ReplicaDSN,
			"TABLE":       &d.Table,
			"REGION":      &d.Region,
			"ENDPOINT":    &d.Endpoint,
			"ACCESS_KEY":  &d.AccessKey,
			"SECRET_KEY":  &d.SecretKey,
		} {
			if v, ok := lookup(prefix + key); ok {
				*field = v
			}
		}
	}

	return nil
}

func lookup(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + "_" + key)
}

func envName(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

// Validate checks the configuration. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Pagination.DefaultLimit <= 0 {
		errs = append(errs, errors.NewValidationError("pagination.defaultLimit", "must be positive"))
	}
	if len(c.Storage.Drivers) == 0 {
		errs = append(errs, errors.NewValidationError("storage.drivers", "at least one driver is required"))
	}

	names := make(map[string]bool, len(c.Storage.Drivers))
	for i, d := range c.Storage.Drivers {
		field := fmt.Sprintf("storage.drivers[%d]", i)
		if d.Name == "" {
			errs = append(errs, errors.NewValidationError(field+".name", "must not be empty"))
			continue
		}
		if names[d.Name] {
			errs = append(errs, errors.NewValidationError(field+".name", fmt.Sprintf("duplicate driver %q", d.Name)))
		}
		names[d.Name] = true
		if err := d.validate(field); err != nil {
			errs = append(errs, err)
		}
	}

	if l := c.Localization; len(l.Locales) > 0 && l.FallbackLocale != "" && !slices.Contains(l.Locales, l.FallbackLocale) {
		errs = append(errs, errors.NewValidationError("localization.fallbackLocale", fmt.Sprintf("%q is not one of the configured locales", l.FallbackLocale)))
	}

	if c.Storage.Default != "" && !names[c.Storage.Default] {
		errs = append(errs, errors.NewValidationError("storage.default", fmt.Sprintf("unknown driver %q", c.Storage.Default)))
	}

	for _, e := range c.entities() {
		if e.Driver != "" && !names[e.Driver] {
			errs = append(errs, errors.NewConfigurationError(e.Slug, e.Kind.String(), fmt.Sprintf("unknown driver %q", e.Driver)))
		}
	}
	if _, err := c.Registry(); err != nil {
		errs = append(errs, err)
	}

	return stderrors.Join(errs...)
}

func (d DriverConfig) validate(field string) error {
	switch d.Type {
	case TypeMemory:
		return nil
	case TypeMongoDB:
		if d.URI == "" || d.Database == "" {
			return errors.NewValidationError(field, "mongodb requires uri and database")
		}
	case TypePostgres:
		if d.DSN == "" {
			return errors.NewValidationError(field, "postgres requires dsn")
		}
		switch d.Client {
		case "", ClientPGX, ClientSQL, ClientSQLX:
		default:
			return errors.NewValidationError(field+".client", fmt.Sprintf("unknown client %q", d.Client))
		}
	case TypeDynamoDB:
		if d.Table == "" {
			return errors.NewValidationError(field, "ddb requires table")
		}
	default:
		return errors.NewValidationError(field+".type", fmt.Sprintf("unknown driver type %q", d.Type))
	}
	return nil
}

func (c *Config) entities() []registry.Entity {
	res := make([]registry.Entity, 0, len(c.Collections)+len(c.Globals))
	for _, e := range c.Collections {
		res = append(res, e.entity(registry.KindCollection))
	}
	for _, e := range c.Globals {
		res = append(res, e.entity(registry.KindGlobal))
	}
	return res
}

func (e EntityConfig) entity(kind registry.Kind) registry.Entity {
	return registry.Entity{
		Slug:            e.Slug,
		Kind:            kind,
		Versioned:       e.Versioned,
		Localized:       len(e.LocalizedFields) > 0,
		LocalizedFields: e.LocalizedFields,
		Driver:          e.Driver,
	}
}

// Registry builds the entity registry from the declared collections and globals.
func (c *Config) Registry() (*registry.Registry, error) {
	b := registry.NewBuilder()
	for _, e := range c.entities() {
		b.Register(e)
	}
	return b.Build()
}

// Logger returns the logger configuration.
func (c *Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.Log.Level,
		Pretty:     c.Log.Pretty,
		WithCaller: c.Log.WithCaller,
	}
}
