/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package contentstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/errors"
)

// Storage is the set of configured drivers, keyed by driver name.
// The first registered driver is the default for entities that name none.
type Storage struct {
	mu      sync.RWMutex
	drivers map[string]datastore.Driver
	def     string
}

// NewStorage creates a Storage holding drivers.
func NewStorage(drivers ...datastore.Driver) (*Storage, error) {
	s := &Storage{
		drivers: make(map[string]datastore.Driver),
	}
	for _, d := range drivers {
		if err := s.Register(d); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Register adds a driver under its name.
func (s *Storage) Register(d datastore.Driver) error {
	if d == nil {
		return errors.NewValidationError("driver", "must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := d.Name()
	if _, exists := s.drivers[name]; exists {
		return fmt.Errorf("driver %q already registered", name)
	}
	s.drivers[name] = d
	if s.def == "" {
		s.def = name
	}
	return nil
}

// SetDefault makes the named driver the default.
func (s *Storage) SetDefault(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.drivers[name]; !exists {
		return fmt.Errorf("%w: %q", errors.ErrDriverNotFound, name)
	}
	s.def = name
	return nil
}

// Driver returns the named driver. An empty name selects the default.
func (s *Storage) Driver(name string) (datastore.Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if name == "" {
		name = s.def
	}
	d, exists := s.drivers[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", errors.ErrDriverNotFound, name)
	}
	return d, nil
}

// Names returns the registered driver names in order.
func (s *Storage) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.drivers))
	for name := range s.drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
