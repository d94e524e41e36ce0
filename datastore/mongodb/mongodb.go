/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/sanitize"
	"github.com/suparena/contentstore/storagemodels"
)

// DriverName is the default name of the MongoDB driver.
const DriverName = "mongodb"

// IDField is MongoDB's primary key field.
const IDField = "_id"

// Driver implements datastore.Driver on a MongoDB database.
type Driver struct {
	name   string
	client *mongo.Client
	db     *mongo.Database
	naming registry.Naming
	logger datastore.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithName overrides the driver name.
func WithName(name string) Option {
	return func(d *Driver) {
		d.name = name
	}
}

// WithNaming overrides the document store naming convention.
func WithNaming(n registry.Naming) Option {
	return func(d *Driver) {
		d.naming = n
	}
}

// WithLogger sets the logger.
func WithLogger(l datastore.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// New creates a driver on db.
func New(db *mongo.Database, opts ...Option) *Driver {
	d := &Driver{
		name:   DriverName,
		db:     db,
		naming: registry.DocumentNaming(),
	}
	if db != nil {
		d.client = db.Client()
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Connect connects to uri and creates a driver on database.
func Connect(ctx context.Context, uri, database string, opts ...Option) (*Driver, error) {
	if uri == "" {
		return nil, errors.NewValidationError("uri", "must not be empty")
	}
	if database == "" {
		return nil, errors.NewValidationError("database", "must not be empty")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.NewStorageError("connect", "", err)
	}

	return New(client.Database(database), opts...), nil
}

// Close disconnects the client.
func (d *Driver) Close(ctx context.Context) error {
	if d.client == nil {
		return nil
	}
	return d.client.Disconnect(ctx)
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return d.name
}

// Naming returns the physical naming convention.
func (d *Driver) Naming() registry.Naming {
	return d.naming
}

// Rules returns the sanitize rules for MongoDB documents.
func (d *Driver) Rules() sanitize.Rules {
	return sanitize.Rules{IDField: IDField}
}

// ResolveTable returns the collection called name.
func (d *Driver) ResolveTable(ctx context.Context, name string) (datastore.Table, error) {
	if name == "" {
		return nil, errors.NewValidationError("table", "must not be empty")
	}
	if d.db == nil {
		return nil, errors.NewConfigurationError(name, "collection", "mongodb driver has no database")
	}
	return d.db.Collection(name), nil
}

// Find runs a find on the collection.
func (d *Driver) Find(ctx context.Context, table datastore.Table, where filter.Where, opts datastore.FindOptions) ([]storagemodels.Document, error) {
	ctx, err := d.sessionContext(ctx, opts.Tx)
	if err != nil {
		return nil, err
	}

	coll, err := collection(table)
	if err != nil {
		return nil, err
	}

	where, sort := datastore.DocumentQuery(where, opts.Sort, IDField, opts.Localization)
	query, err := BuildQuery(where)
	if err != nil {
		return nil, err
	}

	findOpts := options.Find()
	if len(sort) > 0 {
		findOpts.SetSort(BuildSort(sort))
	}
	if opts.Skip > 0 {
		findOpts.SetSkip(int64(opts.Skip))
	}
	if opts.Limit > 0 {
		findOpts.SetLimit(int64(opts.Limit))
	}

	if d.logger != nil {
		d.logger.Debug(logMsgFind, logAttrCollection, coll.Name(), logAttrQuery, query)
	}

	cur, err := coll.Find(ctx, query, findOpts)
	if err != nil {
		return nil, errors.NewStorageError("find", coll.Name(), err)
	}

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, errors.NewStorageError("find", coll.Name(), err)
	}

	docs := make([]storagemodels.Document, 0, len(raw))
	for _, r := range raw {
		docs = append(docs, normalizeMap(r))
	}

	return datastore.ResolveLocales(docs, opts.Localization), nil
}

// Count counts the matching documents of the collection.
func (d *Driver) Count(ctx context.Context, table datastore.Table, where filter.Where, opts datastore.CountOptions) (int64, error) {
	ctx, err := d.sessionContext(ctx, opts.Tx)
	if err != nil {
		return 0, err
	}

	coll, err := collection(table)
	if err != nil {
		return 0, err
	}

	where, _ = datastore.DocumentQuery(where, nil, IDField, opts.Localization)
	query, err := BuildQuery(where)
	if err != nil {
		return 0, err
	}

	n, err := coll.CountDocuments(ctx, query)
	if err != nil {
		return 0, errors.NewStorageError("count", coll.Name(), err)
	}
	return n, nil
}

// Begin starts a session with a snapshot read transaction. Requires a replica set.
func (d *Driver) Begin(ctx context.Context) (datastore.Tx, error) {
	if d.client == nil {
		return nil, errors.NewConfigurationError(d.name, "driver", "mongodb driver has no client")
	}

	sess, err := d.client.StartSession()
	if err != nil {
		return nil, errors.NewStorageError("begin", "", err)
	}

	txOpts := options.Transaction().SetReadConcern(readconcern.Snapshot())
	if err := sess.StartTransaction(txOpts); err != nil {
		sess.EndSession(ctx)
		return nil, errors.NewStorageError("begin", "", err)
	}

	if d.logger != nil {
		d.logger.Debug(logMsgBegin, logAttrSession, fmt.Sprintf("%v", sess.ID()))
	}

	return &Tx{driver: d.name, session: sess}, nil
}

func (d *Driver) sessionContext(ctx context.Context, tx datastore.Tx) (context.Context, error) {
	own, ok, err := datastore.OwnTx[*Tx](tx, d.name)
	if err != nil || !ok {
		return ctx, err
	}
	return mongo.NewSessionContext(ctx, own.session), nil
}

func collection(table datastore.Table) (*mongo.Collection, error) {
	coll, ok := table.(*mongo.Collection)
	if !ok || coll == nil {
		return nil, errors.NewValidationError("table", fmt.Sprintf("%T is not a mongodb collection", table))
	}
	return coll, nil
}

// Tx is a MongoDB session running a transaction.
type Tx struct {
	driver  string
	session mongo.Session
}

// Driver returns the name of the driver that opened the transaction.
func (t *Tx) Driver() string {
	return t.driver
}

// Commit commits the transaction and ends the session.
func (t *Tx) Commit(ctx context.Context) error {
	defer t.session.EndSession(ctx)
	if err := t.session.CommitTransaction(ctx); err != nil {
		return errors.NewStorageError("commit", "", err)
	}
	return nil
}

// Rollback aborts the transaction and ends the session.
func (t *Tx) Rollback(ctx context.Context) error {
	defer t.session.EndSession(ctx)
	if err := t.session.AbortTransaction(ctx); err != nil {
		return errors.NewStorageError("rollback", "", err)
	}
	return nil
}
