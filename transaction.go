/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package contentstore

import (
	"context"
)

// BeginTransaction opens a read transaction on the named driver and returns its id.
// Pass the id in Request.TransactionID to read inside the transaction. An empty
// driver name selects the default driver.
func (r *Retriever) BeginTransaction(ctx context.Context, driver string) (string, error) {
	d, err := r.storage.Driver(driver)
	if err != nil {
		return "", err
	}

	id, err := r.sessions.Begin(ctx, d)
	if err != nil {
		if r.logger != nil {
			r.logger.Error("failed to begin transaction", logAttrDriver, d.Name(), logAttrError, err.Error())
		}
		return "", err
	}

	if r.logger != nil {
		r.logger.Debug("transaction started", logAttrDriver, d.Name(), "transaction_id", id)
	}
	return id, nil
}

// CommitTransaction commits and forgets the transaction.
func (r *Retriever) CommitTransaction(ctx context.Context, id string) error {
	return r.sessions.Commit(ctx, id)
}

// RollbackTransaction rolls back and forgets the transaction.
func (r *Retriever) RollbackTransaction(ctx context.Context, id string) error {
	return r.sessions.Rollback(ctx, id)
}
