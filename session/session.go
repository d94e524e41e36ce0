/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/errors"
)

// Opener opens transactions on a named driver.
type Opener interface {
	Begin(ctx context.Context) (datastore.Tx, error)
}

// Manager maps transaction ids to live transactions.
// It is the only shared mutable state of the retrieval path and is safe for concurrent use.
type Manager struct {
	mu  sync.RWMutex
	txs map[string]datastore.Tx
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		txs: make(map[string]datastore.Tx),
	}
}

// Begin opens a transaction on driver and returns its id.
func (m *Manager) Begin(ctx context.Context, driver Opener) (string, error) {
	tx, err := driver.Begin(ctx)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()

	m.mu.Lock()
	m.txs[id] = tx
	m.mu.Unlock()

	return id, nil
}

// Register adds an externally opened transaction and returns its id.
func (m *Manager) Register(tx datastore.Tx) (string, error) {
	if tx == nil {
		return "", errors.NewValidationError("tx", "must not be nil")
	}

	id := uuid.NewString()

	m.mu.Lock()
	m.txs[id] = tx
	m.mu.Unlock()

	return id, nil
}

// Lookup returns the transaction for id. An empty id means no transaction: the result is
// nil and reads auto-commit. A non-empty id without a live transaction fails with
// ErrTransactionNotFound.
func (m *Manager) Lookup(id string) (datastore.Tx, error) {
	if id == "" {
		return nil, nil
	}

	m.mu.RLock()
	tx, ok := m.txs[id]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrTransactionNotFound, id)
	}
	return tx, nil
}

// Commit commits and forgets the transaction.
func (m *Manager) Commit(ctx context.Context, id string) error {
	tx, err := m.take(id)
	if err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Rollback rolls back and forgets the transaction.
func (m *Manager) Rollback(ctx context.Context, id string) error {
	tx, err := m.take(id)
	if err != nil {
		return err
	}
	return tx.Rollback(ctx)
}

// Len returns the number of live transactions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.txs)
}

func (m *Manager) take(id string) (datastore.Tx, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.txs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errors.ErrTransactionNotFound, id)
	}
	delete(m.txs, id)
	return tx, nil
}
