/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/suparena/contentstore"
	"github.com/suparena/contentstore/config"
	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/datastore/ddb"
	"github.com/suparena/contentstore/datastore/memory"
	"github.com/suparena/contentstore/datastore/mongodb"
	"github.com/suparena/contentstore/datastore/postgres"
)

// openStorage connects every configured driver. The returned close function releases
// the connections.
func openStorage(ctx context.Context, cfg *config.Config, logger datastore.Logger) (*contentstore.Storage, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	storage, err := contentstore.NewStorage()
	if err != nil {
		return nil, nil, err
	}

	for _, dc := range cfg.Storage.Drivers {
		d, closer, err := openDriver(ctx, dc, logger)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("driver %q: %w", dc.Name, err)
		}
		if closer != nil {
			closers = append(closers, closer)
		}
		if err := storage.Register(d); err != nil {
			closeAll()
			return nil, nil, err
		}
	}

	if cfg.Storage.Default != "" {
		if err := storage.SetDefault(cfg.Storage.Default); err != nil {
			closeAll()
			return nil, nil, err
		}
	}

	return storage, closeAll, nil
}

func openDriver(ctx context.Context, dc config.DriverConfig, logger datastore.Logger) (datastore.Driver, func(), error) {
	switch dc.Type {
	case config.TypeMemory:
		return memory.New(memory.WithName(dc.Name), memory.WithLogger(logger)), nil, nil

	case config.TypeMongoDB:
		d, err := mongodb.Connect(ctx, dc.URI, dc.Database, mongodb.WithName(dc.Name), mongodb.WithLogger(logger))
		if err != nil {
			return nil, nil, err
		}
		return d, func() { _ = d.Close(context.Background()) }, nil

	case config.TypePostgres:
		return openPostgres(ctx, dc, logger)

	case config.TypeDynamoDB:
		opts := []ddb.Option{ddb.WithName(dc.Name), ddb.WithLogger(logger)}
		if dc.PageSize > 0 {
			opts = append(opts, ddb.WithPageSize(dc.PageSize))
		}
		d, err := ddb.NewFromConfig(ctx, ddb.Config{
			Region:    dc.Region,
			AccessKey: dc.AccessKey,
			SecretKey: dc.SecretKey,
			Table:     dc.Table,
			Endpoint:  dc.Endpoint,
		}, opts...)
		if err != nil {
			return nil, nil, err
		}
		return d, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown driver type %q", dc.Type)
	}
}

func openPostgres(ctx context.Context, dc config.DriverConfig, logger datastore.Logger) (datastore.Driver, func(), error) {
	opts := []postgres.Option{postgres.WithName(dc.Name), postgres.WithLogger(logger)}
	if dc.VersionsSuffix != "" {
		opts = append(opts, postgres.WithVersionsSuffix(dc.VersionsSuffix))
	}
	if dc.LocalesSuffix != "" {
		opts = append(opts, postgres.WithLocalesSuffix(dc.LocalesSuffix))
	}

	switch dc.Client {
	case config.ClientSQL:
		db, err := sql.Open("postgres", dc.DSN)
		if err != nil {
			return nil, nil, err
		}
		d, err := postgres.NewFromSQLDB(db, opts...)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return d, func() { db.Close() }, nil

	case config.ClientSQLX:
		db, err := sqlx.ConnectContext(ctx, "postgres", dc.DSN)
		if err != nil {
			return nil, nil, err
		}
		d, err := postgres.NewFromSQLX(db, opts...)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return d, func() { db.Close() }, nil

	default:
		pool, err := pgxpool.New(ctx, dc.DSN)
		if err != nil {
			return nil, nil, err
		}
		if dc.ReplicaDSN == "" {
			d, err := postgres.NewFromPGXPool(pool, opts...)
			if err != nil {
				pool.Close()
				return nil, nil, err
			}
			return d, pool.Close, nil
		}

		replica, err := pgxpool.New(ctx, dc.ReplicaDSN)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		closeBoth := func() {
			replica.Close()
			pool.Close()
		}
		d, err := postgres.NewFromPGXPoolWithReplica(pool, replica, opts...)
		if err != nil {
			closeBoth()
			return nil, nil, err
		}
		return d, closeBoth, nil
	}
}
