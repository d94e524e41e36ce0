/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/sanitize"
	"github.com/suparena/contentstore/storagemodels"
)

const (
	// DriverName is the default name of the DynamoDB driver.
	DriverName = "ddb"

	// PartitionKey and SortKey are the key attributes of the single table.
	PartitionKey = "PK"
	SortKey      = "SK"

	// IDField is where items keep their identifier.
	IDField = "id"

	// tableAttr carries the logical table name into key templates.
	tableAttr = "_table"

	logMsgQueryPage  = "dynamodb query page"
	logMsgQueryDone  = "dynamodb query completed"
	logMsgQueryError = "dynamodb query failed"
	logAttrTable     = "table"
	logAttrPage      = "page"
	logAttrScanned   = "scanned"
	logAttrMatched   = "matched"
	logAttrError     = "error"
)

// DefaultKeys lays every logical table out as one partition ordered by creation time.
var DefaultKeys = map[string]string{
	PartitionKey: "TABLE#{" + tableAttr + "}",
	SortKey:      "{createdAt}#{id}",
}

// Client is the subset of the DynamoDB API the driver uses.
type Client interface {
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
}

// Driver implements datastore.Driver on a single DynamoDB table. Each logical table is
// one partition; filters that DynamoDB can evaluate are pushed down as a filter
// expression and the full filter is applied to the decoded items.
type Driver struct {
	name      string
	client    Client
	tableName string
	naming    registry.Naming
	keys      map[string]string
	pageSize  int32
	logger    datastore.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithName overrides the driver name.
func WithName(name string) Option {
	return func(d *Driver) {
		d.name = name
	}
}

// WithNaming overrides the physical naming convention.
func WithNaming(n registry.Naming) Option {
	return func(d *Driver) {
		d.naming = n
	}
}

// WithKeys overrides the key templates used by Insert. Templates reference document
// fields as "{field}"; "{_table}" is the logical table name.
func WithKeys(keys map[string]string) Option {
	return func(d *Driver) {
		d.keys = keys
	}
}

// WithPageSize limits the items DynamoDB evaluates per query page.
func WithPageSize(n int32) Option {
	return func(d *Driver) {
		d.pageSize = n
	}
}

// WithLogger sets the logger.
func WithLogger(l datastore.Logger) Option {
	return func(d *Driver) {
		d.logger = l
	}
}

// New creates a driver reading tableName through client.
func New(client Client, tableName string, opts ...Option) (*Driver, error) {
	if client == nil {
		return nil, errors.NewValidationError("client", "must not be nil")
	}
	if tableName == "" {
		return nil, errors.NewValidationError("tableName", "must not be empty")
	}

	d := &Driver{
		name:      DriverName,
		client:    client,
		tableName: tableName,
		naming:    registry.DocumentNaming(),
		keys:      DefaultKeys,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Config holds the connection settings of NewFromConfig.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
	Table     string
	// Endpoint overrides the service endpoint, e.g. for DynamoDB Local.
	Endpoint string
}

// NewDynamoDBClient initializes a DynamoDB client. Static credentials are used when
// both keys are set, the default credential chain otherwise.
func NewDynamoDBClient(ctx context.Context, cfg Config) (*sdk.Client, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return sdk.NewFromConfig(awsCfg, func(o *sdk.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// NewFromConfig creates a client from cfg and a driver on cfg.Table.
func NewFromConfig(ctx context.Context, cfg Config, opts ...Option) (*Driver, error) {
	client, err := NewDynamoDBClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return New(client, cfg.Table, opts...)
}

// Name returns the driver name.
func (d *Driver) Name() string {
	return d.name
}

// Naming returns the physical naming convention.
func (d *Driver) Naming() registry.Naming {
	return d.naming
}

// Rules returns the sanitize rules. The key attributes never leave the driver.
func (d *Driver) Rules() sanitize.Rules {
	internal := make([]string, 0, len(d.keys))
	for k := range d.keys {
		internal = append(internal, k)
	}
	return sanitize.Rules{IDField: IDField, Internal: internal}
}

// ResolveTable returns a handle for the logical table name.
func (d *Driver) ResolveTable(ctx context.Context, name string) (datastore.Table, error) {
	if name == "" {
		return nil, errors.NewValidationError("table", "must not be empty")
	}
	return datastore.NamedTable(name), nil
}

// Find queries the table's partition and returns the matching documents.
func (d *Driver) Find(ctx context.Context, table datastore.Table, where filter.Where, opts datastore.FindOptions) ([]storagemodels.Document, error) {
	where, sort := datastore.DocumentQuery(where, opts.Sort, IDField, opts.Localization)

	docs, err := d.query(ctx, "find", table, where, opts.Localization, opts.Tx)
	if err != nil {
		return nil, err
	}

	storagemodels.SortDocuments(docs, sort)
	docs = datastore.Window(docs, opts.Skip, opts.Limit)

	return datastore.ResolveLocales(docs, opts.Localization), nil
}

// Count returns the number of matching documents. Without a filter DynamoDB counts the
// partition itself.
func (d *Driver) Count(ctx context.Context, table datastore.Table, where filter.Where, opts datastore.CountOptions) (int64, error) {
	where, _ = datastore.DocumentQuery(where, nil, IDField, opts.Localization)

	if where.IsEmpty() {
		return d.count(ctx, table, opts.Tx)
	}

	docs, err := d.query(ctx, "count", table, where, opts.Localization, opts.Tx)
	if err != nil {
		return 0, err
	}
	return int64(len(docs)), nil
}

func (d *Driver) input(table datastore.Table, tx datastore.Tx) (*sdk.QueryInput, error) {
	own, ok, err := datastore.OwnTx[*Tx](tx, d.name)
	if err != nil {
		return nil, err
	}
	if ok {
		if err := own.check(); err != nil {
			return nil, err
		}
	}

	pk, err := d.partition(table.Name())
	if err != nil {
		return nil, err
	}

	input := &sdk.QueryInput{
		TableName:              aws.String(d.tableName),
		KeyConditionExpression: aws.String(PartitionKey + " = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: pk},
		},
		ConsistentRead: aws.Bool(ok),
	}
	if d.pageSize > 0 {
		input.Limit = aws.Int32(d.pageSize)
	}
	return input, nil
}

// query reads every page of the partition, keeping the items that match where.
func (d *Driver) query(ctx context.Context, op string, table datastore.Table, where filter.Where, l datastore.Localization, tx datastore.Tx) ([]storagemodels.Document, error) {
	input, err := d.input(table, tx)
	if err != nil {
		return nil, err
	}

	var nested []string
	if l.Enabled() {
		nested = l.Fields
	}
	expr, err := BuildFilter(where, nested)
	if err != nil {
		return nil, err
	}
	if !expr.IsEmpty() {
		input.FilterExpression = aws.String(expr.Expression)
		input.ExpressionAttributeNames = expr.Names
		for k, v := range expr.Values {
			input.ExpressionAttributeValues[k] = v
		}
	}

	docs := make([]storagemodels.Document, 0)
	page := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := d.client.Query(ctx, input)
		if err != nil {
			if d.logger != nil {
				d.logger.Error(logMsgQueryError, logAttrTable, table.Name(), logAttrError, err.Error())
			}
			return nil, errors.NewStorageError(op, table.Name(), err)
		}
		page++

		for _, item := range out.Items {
			var doc map[string]any
			if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
				return nil, errors.NewStorageError(op, table.Name(), fmt.Errorf("failed to unmarshal item: %w", err))
			}
			if where.Match(doc) {
				docs = append(docs, doc)
			}
		}

		if d.logger != nil {
			d.logger.Debug(logMsgQueryPage, logAttrTable, table.Name(), logAttrPage, page, logAttrScanned, out.ScannedCount)
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	if d.logger != nil {
		d.logger.Debug(logMsgQueryDone, logAttrTable, table.Name(), logAttrMatched, len(docs))
	}

	return docs, nil
}

func (d *Driver) count(ctx context.Context, table datastore.Table, tx datastore.Tx) (int64, error) {
	input, err := d.input(table, tx)
	if err != nil {
		return 0, err
	}
	input.Select = types.SelectCount

	var n int64
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		out, err := d.client.Query(ctx, input)
		if err != nil {
			return 0, errors.NewStorageError("count", table.Name(), err)
		}
		n += int64(out.Count)

		if len(out.LastEvaluatedKey) == 0 {
			return n, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func (d *Driver) partition(table string) (string, error) {
	expanded, err := expandMacros(map[string]string{PartitionKey: d.keys[PartitionKey]}, map[string]any{tableAttr: table})
	if err != nil {
		return "", err
	}
	return expanded[PartitionKey], nil
}

// Insert stores doc in table, deriving the key attributes from the key templates.
func (d *Driver) Insert(ctx context.Context, table string, doc storagemodels.Document) error {
	if doc == nil {
		return errors.NewValidationError("doc", "must not be nil")
	}

	av, err := attributevalue.MarshalMap(map[string]any(doc))
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	keysInput := make(map[string]any, len(doc)+1)
	for k, v := range doc {
		keysInput[k] = v
	}
	keysInput[tableAttr] = table

	expanded, err := expandMacros(d.keys, keysInput)
	if err != nil {
		return err
	}
	for k, v := range expanded {
		if v == "" {
			return errors.NewValidationError(k, "key template expanded to an empty value")
		}
		av[k] = &types.AttributeValueMemberS{Value: v}
	}

	_, err = d.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      av,
	})
	if err != nil {
		return errors.NewStorageError("insert", table, err)
	}
	return nil
}

// Begin opens a transaction. DynamoDB has no read snapshots; reads inside the
// transaction are strongly consistent.
func (d *Driver) Begin(ctx context.Context) (datastore.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Tx{driver: d.name}, nil
}

// Tx marks reads as strongly consistent.
type Tx struct {
	mu     sync.Mutex
	driver string
	done   bool
}

// Driver returns the name of the driver that opened the transaction.
func (t *Tx) Driver() string {
	return t.driver
}

// Commit ends the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.finish()
}

// Rollback ends the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.finish()
}

func (t *Tx) finish() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("%w: already finished", errors.ErrTransactionNotFound)
	}
	t.done = true
	return nil
}

func (t *Tx) check() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done {
		return fmt.Errorf("%w: already finished", errors.ErrTransactionNotFound)
	}
	return nil
}

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// expandMacros replaces "{field}" in every template with the field of keysInput.
// Missing fields and non-scalar values expand to "".
func expandMacros(templates map[string]string, keysInput any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(keysInput)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal keysInput: %w", err)
	}

	res := make(map[string]string, len(templates))

	for attr, template := range templates {
		res[attr] = macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
			key := strings.Trim(macro, "{}")

			switch tv := av[key].(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return fmt.Sprintf("%v", tv.Value)
			default:
				return ""
			}
		})
	}

	return res, nil
}
