/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"strings"

	"github.com/ettle/strcase"

	"github.com/suparena/contentstore/errors"
)

// CaseStyle is the transform applied to a slug to derive its physical name.
type CaseStyle int

const (
	// CaseIdentity keeps the slug as is (document stores).
	CaseIdentity CaseStyle = iota
	// CaseSnake converts the slug to snake_case (relational stores).
	CaseSnake
)

// DefaultVersionsSuffix is appended to versioned physical names.
const DefaultVersionsSuffix = "_versions"

// Naming describes how a storage driver lays out entities physically.
type Naming struct {
	Case CaseStyle
	// VersionsSuffix is appended to "_" + base name for version tables.
	VersionsSuffix string
	// SharedGlobals, when set, is the single table holding every global document.
	SharedGlobals string
	// Discriminator is the field identifying the global inside SharedGlobals.
	Discriminator string
}

// DocumentNaming is the layout of document stores: slugs as is, globals in one shared table.
func DocumentNaming() Naming {
	return Naming{
		Case:           CaseIdentity,
		VersionsSuffix: DefaultVersionsSuffix,
		SharedGlobals:  "globals",
		Discriminator:  "globalType",
	}
}

// RelationalNaming is the layout of relational stores: snake_case tables, one per global.
func RelationalNaming(versionsSuffix string) Naming {
	if versionsSuffix == "" {
		versionsSuffix = DefaultVersionsSuffix
	}
	return Naming{
		Case:           CaseSnake,
		VersionsSuffix: versionsSuffix,
	}
}

// Base returns the physical base name of slug.
func (n Naming) Base(slug string) string {
	switch n.Case {
	case CaseSnake:
		return ToSnake(slug)
	default:
		return slug
	}
}

// Location is where an entity lives in the storage layer.
type Location struct {
	Table string
	// Discriminator is set when the table is shared; the caller must constrain
	// Discriminator == slug.
	Discriminator string
}

// Shared reports whether documents of other entities live in the same table.
func (l Location) Shared() bool {
	return l.Discriminator != ""
}

// NamingFunc selects the naming convention of an entity, usually from the driver
// that stores it.
type NamingFunc func(Entity) (Naming, error)

// Using returns a NamingFunc that selects n for every entity.
func Using(n Naming) NamingFunc {
	return func(Entity) (Naming, error) {
		return n, nil
	}
}

// Resolver maps slugs to physical locations.
type Resolver struct {
	registry *Registry
	naming   NamingFunc
}

// NewResolver creates a resolver backed by reg.
func NewResolver(reg *Registry, naming NamingFunc) Resolver {
	return Resolver{registry: reg, naming: naming}
}

// Resolve returns the physical location of the entity registered under slug and kind.
// When versions is true the version table is returned; the entity must be versioned.
func (r Resolver) Resolve(slug string, kind Kind, versions bool) (Location, Entity, error) {
	e, err := r.registry.Lookup(slug, kind)
	if err != nil {
		return Location{}, Entity{}, err
	}

	n, err := r.naming(e)
	if err != nil {
		return Location{}, Entity{}, err
	}

	loc, err := n.Locate(e, versions)
	if err != nil {
		return Location{}, Entity{}, err
	}

	return loc, e, nil
}

// Locate derives the location of e without consulting a registry.
func (n Naming) Locate(e Entity, versions bool) (Location, error) {
	if versions {
		if !e.Versioned {
			return Location{}, errors.NewConfigurationError(e.Slug, e.Kind.String(), "versions are not enabled")
		}
		return Location{Table: n.VersionsName(e.Slug)}, nil
	}

	if e.Kind == KindGlobal && n.SharedGlobals != "" {
		return Location{Table: n.SharedGlobals, Discriminator: n.Discriminator}, nil
	}

	return Location{Table: n.Base(e.Slug)}, nil
}

// VersionsName is "_" + base name + versions suffix.
func (n Naming) VersionsName(slug string) string {
	suffix := n.VersionsSuffix
	if suffix == "" {
		suffix = DefaultVersionsSuffix
	}
	return "_" + n.Base(slug) + suffix
}

// ToSnake converts a field or slug to snake_case, keeping leading underscores
// that mark internal columns.
func ToSnake(s string) string {
	trimmed := strings.TrimLeft(s, "_")
	prefix := s[:len(s)-len(trimmed)]
	if trimmed == "" {
		return s
	}
	return prefix + strcase.ToSnake(trimmed)
}

// ToCamel converts a snake_case column back to a lowerCamel field name.
// Internal columns with a leading underscore are returned unchanged.
func ToCamel(s string) string {
	if strings.HasPrefix(s, "_") || !strings.Contains(s, "_") {
		return s
	}
	return strcase.ToCamel(s)
}
