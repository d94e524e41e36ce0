/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/suparena/contentstore/errors"
)

// Kind tells collections (many documents) apart from globals (at most one document).
type Kind string

const (
	KindCollection Kind = "collection"
	KindGlobal     Kind = "global"
)

func (k Kind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	return k == KindCollection || k == KindGlobal
}

// Entity is the configuration of one collection or global.
type Entity struct {
	// Slug is the stable logical identifier, unique per Kind.
	Slug string
	Kind Kind
	// Versioned entities keep historical snapshots under a separate physical name.
	Versioned bool
	// Localized entities store LocalizedFields once per locale.
	Localized       bool
	LocalizedFields []string
	// Driver names the storage driver holding this entity. Empty means the default driver.
	Driver string
}

// IsLocalizedField reports whether field is stored per locale.
func (e Entity) IsLocalizedField(field string) bool {
	return e.Localized && slices.Contains(e.LocalizedFields, field)
}

type entityKey struct {
	kind Kind
	slug string
}

// Registry is the read-only set of entities known to the application.
// It is produced by a Builder at startup and never changes afterwards.
type Registry struct {
	entities map[entityKey]Entity
	order    []entityKey
}

// Lookup returns the entity registered under slug and kind.
// Unknown slugs fail with a ConfigurationError.
func (r *Registry) Lookup(slug string, kind Kind) (Entity, error) {
	if r == nil {
		return Entity{}, errors.NewConfigurationError(slug, kind.String(), "no entity registry configured")
	}

	e, ok := r.entities[entityKey{kind: kind, slug: slug}]
	if !ok {
		return Entity{}, errors.NewConfigurationError(slug, kind.String(), "not registered")
	}

	return e, nil
}

// Entities returns every registered entity of the given kind in registration order.
func (r *Registry) Entities(kind Kind) []Entity {
	res := make([]Entity, 0, len(r.order))
	for _, k := range r.order {
		if k.kind == kind {
			res = append(res, r.entities[k])
		}
	}
	return res
}

// Len returns the number of registered entities.
func (r *Registry) Len() int {
	return len(r.order)
}

// Builder collects entity definitions and produces a Registry.
// It is safe for concurrent use so that init() functions in several packages can register.
type Builder struct {
	mu       sync.Mutex
	entities map[entityKey]Entity
	order    []entityKey
	err      error
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		entities: make(map[entityKey]Entity),
	}
}

// Register adds an entity. The first invalid or duplicate registration is reported by Build.
func (b *Builder) Register(e Entity) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return b
	}

	if err := validateEntity(e); err != nil {
		b.err = err
		return b
	}

	key := entityKey{kind: e.Kind, slug: e.Slug}
	if _, exists := b.entities[key]; exists {
		b.err = errors.NewConfigurationError(e.Slug, e.Kind.String(), "already registered")
		return b
	}

	e.LocalizedFields = slices.Clone(e.LocalizedFields)
	b.entities[key] = e
	b.order = append(b.order, key)
	return b
}

// Collection registers a collection entity.
func (b *Builder) Collection(e Entity) *Builder {
	e.Kind = KindCollection
	return b.Register(e)
}

// Global registers a global entity.
func (b *Builder) Global(e Entity) *Builder {
	e.Kind = KindGlobal
	return b.Register(e)
}

// Build returns the registry, or the first registration error.
func (b *Builder) Build() (*Registry, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return nil, b.err
	}

	entities := make(map[entityKey]Entity, len(b.entities))
	for k, v := range b.entities {
		entities[k] = v
	}

	return &Registry{
		entities: entities,
		order:    slices.Clone(b.order),
	}, nil
}

func validateEntity(e Entity) error {
	if e.Slug == "" {
		return errors.NewValidationError("slug", "must not be empty")
	}
	if !e.Kind.Valid() {
		return errors.NewConfigurationError(e.Slug, string(e.Kind), fmt.Sprintf("unknown kind %q", e.Kind))
	}
	if !e.Localized && len(e.LocalizedFields) > 0 {
		return errors.NewConfigurationError(e.Slug, e.Kind.String(), "localized fields declared on a non-localized entity")
	}
	return nil
}
