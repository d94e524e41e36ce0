/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package session_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/contentstore/datastore/memory"
	"github.com/suparena/contentstore/errors"
	. "github.com/suparena/contentstore/session"
)

func Test_Lookup_When_Id_Is_Empty_Returns_No_Transaction(t *testing.T) {
	tx, err := NewManager().Lookup("")

	assert.NoError(t, err)
	assert.Nil(t, tx)
}

func Test_Lookup_When_Id_Is_Unknown(t *testing.T) {
	_, err := NewManager().Lookup(uuid.NewString())

	assert.ErrorIs(t, err, errors.ErrTransactionNotFound)
}

func Test_Begin_Lookup_Commit(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	id, err := m.Begin(ctx, memory.New())
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	tx, err := m.Lookup(id)
	require.NoError(t, err)
	assert.Equal(t, memory.DriverName, tx.Driver())
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Commit(ctx, id))
	assert.Equal(t, 0, m.Len())

	_, err = m.Lookup(id)
	assert.ErrorIs(t, err, errors.ErrTransactionNotFound)
	assert.ErrorIs(t, m.Commit(ctx, id), errors.ErrTransactionNotFound)
}

func Test_Rollback(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	id, err := m.Begin(ctx, memory.New())
	require.NoError(t, err)

	require.NoError(t, m.Rollback(ctx, id))
	assert.ErrorIs(t, m.Rollback(ctx, id), errors.ErrTransactionNotFound)
}

func Test_Begin_When_Driver_Fails(t *testing.T) {
	boom := stderrors.New("no replica set")
	m := NewManager()

	_, err := m.Begin(context.Background(), memory.New().WithBeginError(boom))

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, m.Len())
}

func Test_Register(t *testing.T) {
	m := NewManager()
	tx, err := memory.New().Begin(context.Background())
	require.NoError(t, err)

	id, err := m.Register(tx)
	require.NoError(t, err)

	got, err := m.Lookup(id)
	require.NoError(t, err)
	assert.Same(t, tx, got)

	_, err = m.Register(nil)
	assert.True(t, errors.IsValidationError(err))
}

func Test_Concurrent_Use(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	driver := memory.New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := m.Begin(ctx, driver)
			if !assert.NoError(t, err) {
				return
			}
			_, err = m.Lookup(id)
			assert.NoError(t, err)
			assert.NoError(t, m.Commit(ctx, id))
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, m.Len())
}
