/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package contentstore

import (
	"fmt"
	"slices"
	"time"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/session"
	"github.com/suparena/contentstore/storagemodels"
)

// Metric names reported to the MetricsCollector.
const (
	MetricOperationDuration = "contentstore_operation_duration_seconds"
	MetricOperations        = "contentstore_operations_total"
	MetricDocumentsReturned = "contentstore_documents_returned"
)

// MetricsCollector receives operation metrics. The metrics package provides a
// Prometheus implementation.
type MetricsCollector interface {
	RecordDuration(metric string, duration time.Duration, labels map[string]string)
	IncrementCounter(metric string, labels map[string]string)
	RecordValue(metric string, value float64, labels map[string]string)
}

// Request carries the caller context shared by every retrieval.
type Request struct {
	// TransactionID selects a transaction opened with BeginTransaction. Empty means
	// every storage call auto-commits.
	TransactionID string
	// Locale of localized fields. storagemodels.AllLocales returns every locale.
	Locale string
	// FallbackLocale overrides the retriever's fallback locale.
	FallbackLocale string
}

// FindArgs select a page of collection documents or versions.
type FindArgs struct {
	Request
	Collection string
	Where      filter.Where
	// Sort is a comma separated list of fields, "-" prefixed for descending order.
	// Empty means "-createdAt".
	Sort string
	storagemodels.PageRequest
}

// FindOneArgs select the first matching collection document.
type FindOneArgs struct {
	Request
	Collection string
	Where      filter.Where
	Sort       string
}

// FindByIDArgs select one collection document or version by id.
type FindByIDArgs struct {
	Request
	Collection string
	ID         string
}

// CountArgs count collection documents.
type CountArgs struct {
	Request
	Collection string
	Where      filter.Where
}

// FindGlobalArgs select the document of a global.
type FindGlobalArgs struct {
	Request
	Global string
	Where  filter.Where
}

// FindGlobalVersionsArgs select a page of versions of a global.
type FindGlobalVersionsArgs struct {
	Request
	Global string
	Where  filter.Where
	Sort   string
	storagemodels.PageRequest
}

// FindGlobalVersionByIDArgs select one version of a global by id.
type FindGlobalVersionByIDArgs struct {
	Request
	Global string
	ID     string
}

// Retriever runs the read operations of collections and globals. It holds no
// per-request state; concurrent calls are independent unless they share a
// transaction id.
type Retriever struct {
	registry       *registry.Registry
	resolver       registry.Resolver
	storage        *Storage
	sessions       *session.Manager
	logger         datastore.Logger
	metrics        MetricsCollector
	defaultLimit   int
	fallbackLocale string
	locales        []string
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets the logger. Debug level receives every operation, Error level failures.
func WithLogger(logger datastore.Logger) Option {
	return func(r *Retriever) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m MetricsCollector) Option {
	return func(r *Retriever) {
		r.metrics = m
	}
}

// WithDefaultLimit sets the page size used when a request has none.
func WithDefaultLimit(limit int) Option {
	return func(r *Retriever) {
		r.defaultLimit = limit
	}
}

// WithFallbackLocale sets the locale used when a localized field has no value for the
// requested locale.
func WithFallbackLocale(locale string) Option {
	return func(r *Retriever) {
		r.fallbackLocale = locale
	}
}

// WithLocales restricts requested and fallback locales to locales. Without it any
// locale is accepted.
func WithLocales(locales ...string) Option {
	return func(r *Retriever) {
		r.locales = locales
	}
}

// WithSessions shares a transaction table with other components.
func WithSessions(m *session.Manager) Option {
	return func(r *Retriever) {
		r.sessions = m
	}
}

// New creates a Retriever over reg and storage. Every entity must name a driver
// registered in storage.
func New(reg *registry.Registry, storage *Storage, opts ...Option) (*Retriever, error) {
	if reg == nil {
		return nil, errors.NewValidationError("registry", "must not be nil")
	}
	if storage == nil {
		return nil, errors.NewValidationError("storage", "must not be nil")
	}

	r := &Retriever{
		registry:     reg,
		storage:      storage,
		defaultLimit: storagemodels.DefaultLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.sessions == nil {
		r.sessions = session.NewManager()
	}
	if r.defaultLimit <= 0 {
		return nil, errors.NewValidationError("defaultLimit", "must be positive")
	}
	if err := r.checkLocale("fallbackLocale", r.fallbackLocale); err != nil {
		return nil, err
	}

	for _, kind := range []registry.Kind{registry.KindCollection, registry.KindGlobal} {
		for _, e := range reg.Entities(kind) {
			if _, err := r.driverFor(e); err != nil {
				return nil, err
			}
		}
	}
	r.resolver = registry.NewResolver(reg, func(e registry.Entity) (registry.Naming, error) {
		d, err := r.driverFor(e)
		if err != nil {
			return registry.Naming{}, err
		}
		return d.Naming(), nil
	})

	return r, nil
}

// checkLocale rejects locales outside the configured set. Empty and "all" always pass.
func (r *Retriever) checkLocale(field, locale string) error {
	if len(r.locales) == 0 || locale == "" || locale == storagemodels.AllLocales {
		return nil
	}
	if !slices.Contains(r.locales, locale) {
		return errors.NewValidationError(field, fmt.Sprintf("unknown locale %q", locale))
	}
	return nil
}

// driverFor returns the driver storing e.
func (r *Retriever) driverFor(e registry.Entity) (datastore.Driver, error) {
	d, err := r.storage.Driver(e.Driver)
	if err != nil {
		return nil, errors.NewConfigurationError(e.Slug, e.Kind.String(), err.Error())
	}
	return d, nil
}

// Registry returns the entity registry.
func (r *Retriever) Registry() *registry.Registry {
	return r.registry
}

// Storage returns the driver set.
func (r *Retriever) Storage() *Storage {
	return r.storage
}
