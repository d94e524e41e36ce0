/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"strconv"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/datastore/memory"
	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/storagemodels"
)

// fakeClient serves one partition per PK. It ignores filter expressions, so tests see
// the driver's own filtering.
type fakeClient struct {
	mu       sync.Mutex
	items    []map[string]types.AttributeValue
	inputs   []*sdk.QueryInput
	queryErr error
}

func (f *fakeClient) Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := *params
	f.inputs = append(f.inputs, &snapshot)
	if f.queryErr != nil {
		return nil, f.queryErr
	}

	pk := params.ExpressionAttributeValues[":pk"].(*types.AttributeValueMemberS).Value
	var partition []map[string]types.AttributeValue
	for _, item := range f.items {
		if item[PartitionKey].(*types.AttributeValueMemberS).Value == pk {
			partition = append(partition, item)
		}
	}

	start := 0
	if params.ExclusiveStartKey != nil {
		start, _ = strconv.Atoi(params.ExclusiveStartKey["idx"].(*types.AttributeValueMemberN).Value)
	}
	end := len(partition)
	if params.Limit != nil && start+int(*params.Limit) < end {
		end = start + int(*params.Limit)
	}

	out := &sdk.QueryOutput{Count: int32(end - start), ScannedCount: int32(end - start)}
	if params.Select != types.SelectCount {
		out.Items = partition[start:end]
	}
	if end < len(partition) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"idx": &types.AttributeValueMemberN{Value: strconv.Itoa(end)},
		}
	}
	return out, nil
}

func (f *fakeClient) PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, params.Item)
	return &sdk.PutItemOutput{}, nil
}

func newTestDriver(t *testing.T, opts ...Option) (*Driver, *fakeClient) {
	t.Helper()

	client := &fakeClient{}
	d, err := New(client, "content", opts...)
	require.NoError(t, err)

	ctx := context.Background()
	docs := []storagemodels.Document{
		{"id": "p1", "title": "Hello", "status": "published", "views": 10, "createdAt": "2024-01-01T00:00:00Z"},
		{"id": "p2", "title": "World", "status": "draft", "views": 3, "createdAt": "2024-02-01T00:00:00Z"},
		{"id": "p3", "title": "Again", "status": "published", "views": 7, "createdAt": "2024-03-01T00:00:00Z"},
	}
	for _, doc := range docs {
		require.NoError(t, d.Insert(ctx, "posts", doc))
	}
	require.NoError(t, d.Insert(ctx, "pages", storagemodels.Document{"id": "home", "createdAt": "2024-01-01T00:00:00Z"}))

	return d, client
}

func Test_Insert_Derives_Keys(t *testing.T) {
	_, client := newTestDriver(t)

	item := client.items[0]
	assert.Equal(t, "TABLE#posts", item[PartitionKey].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "2024-01-01T00:00:00Z#p1", item[SortKey].(*types.AttributeValueMemberS).Value)
	assert.Equal(t, "Hello", item["title"].(*types.AttributeValueMemberS).Value)
}

func Test_Insert_Rejects_Empty_Key(t *testing.T) {
	d, err := New(&fakeClient{}, "content", WithKeys(map[string]string{PartitionKey: "{missing}"}))
	require.NoError(t, err)

	err = d.Insert(context.Background(), "posts", storagemodels.Document{"id": "x"})

	assert.True(t, errors.IsValidationError(err))
}

func Test_Find(t *testing.T) {
	d, client := newTestDriver(t)
	ctx := context.Background()

	docs, err := d.Find(ctx, datastore.NamedTable("posts"), filter.Eq("status", "published"), datastore.FindOptions{
		Sort: []storagemodels.SortField{{Field: "createdAt", Desc: true}},
	})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "p3", docs[0]["id"])
	assert.Equal(t, "p1", docs[1]["id"])
	assert.Equal(t, float64(7), docs[0]["views"])

	input := client.inputs[len(client.inputs)-1]
	assert.Equal(t, "PK = :pk", aws.ToString(input.KeyConditionExpression))
	assert.Equal(t, "(#n0 = :v0 OR contains(#n0, :v0))", aws.ToString(input.FilterExpression))
	assert.Equal(t, map[string]string{"#n0": "status"}, input.ExpressionAttributeNames)
	assert.False(t, aws.ToBool(input.ConsistentRead))
}

func Test_Find_Reads_Every_Page(t *testing.T) {
	d, client := newTestDriver(t, WithPageSize(1))

	docs, err := d.Find(context.Background(), datastore.NamedTable("posts"), filter.Where{}, datastore.FindOptions{Skip: 1, Limit: 1})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "p2", docs[0]["id"])
	assert.Len(t, client.inputs, 3)
}

func Test_Find_Applies_Relaxed_Predicates(t *testing.T) {
	d, client := newTestDriver(t)

	docs, err := d.Find(context.Background(), datastore.NamedTable("posts"), filter.Matches("title", "HELLO"), datastore.FindOptions{})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "p1", docs[0]["id"])
	assert.Nil(t, client.inputs[len(client.inputs)-1].FilterExpression)
}

func Test_Find_By_ID(t *testing.T) {
	d, _ := newTestDriver(t)

	docs, err := d.Find(context.Background(), datastore.NamedTable("posts"), filter.Eq("id", "p2"), datastore.FindOptions{})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "World", docs[0]["title"])
}

func Test_Find_Localized(t *testing.T) {
	client := &fakeClient{}
	d, err := New(client, "content")
	require.NoError(t, err)
	require.NoError(t, d.Insert(context.Background(), "posts", storagemodels.Document{
		"id": "p1", "createdAt": "2024-01-01T00:00:00Z",
		"title": map[string]any{"en": "Hello", "de": "Hallo"},
	}))

	l := datastore.Localization{Locale: "de", Fallback: "en", Fields: []string{"title"}}
	docs, err := d.Find(context.Background(), datastore.NamedTable("posts"), filter.Eq("title", "Hallo"), datastore.FindOptions{Localization: l})

	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Hallo", docs[0]["title"])
	assert.Equal(t, "(#n0.#n1 = :v0 OR contains(#n0.#n1, :v0))", aws.ToString(client.inputs[0].FilterExpression))
}

func Test_Count(t *testing.T) {
	d, client := newTestDriver(t, WithPageSize(2))
	ctx := context.Background()

	n, err := d.Count(ctx, datastore.NamedTable("posts"), filter.Where{}, datastore.CountOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, types.SelectCount, client.inputs[0].Select)

	n, err = d.Count(ctx, datastore.NamedTable("posts"), filter.Gt("views", 5), datastore.CountOptions{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func Test_Transactions(t *testing.T) {
	d, client := newTestDriver(t)
	ctx := context.Background()

	tx, err := d.Begin(ctx)
	require.NoError(t, err)

	_, err = d.Find(ctx, datastore.NamedTable("posts"), filter.Where{}, datastore.FindOptions{Tx: tx})
	require.NoError(t, err)
	assert.True(t, aws.ToBool(client.inputs[len(client.inputs)-1].ConsistentRead))

	require.NoError(t, tx.Commit(ctx))
	_, err = d.Find(ctx, datastore.NamedTable("posts"), filter.Where{}, datastore.FindOptions{Tx: tx})
	assert.ErrorIs(t, err, errors.ErrTransactionNotFound)

	foreign, err := memory.New().Begin(ctx)
	require.NoError(t, err)
	_, err = d.Count(ctx, datastore.NamedTable("posts"), filter.Where{}, datastore.CountOptions{Tx: foreign})
	assert.ErrorIs(t, err, errors.ErrForeignTransaction)
}

func Test_Query_Error(t *testing.T) {
	d, client := newTestDriver(t)
	boom := stderrors.New("throttled")
	client.queryErr = boom

	_, err := d.Find(context.Background(), datastore.NamedTable("posts"), filter.Where{}, datastore.FindOptions{})

	assert.True(t, errors.IsStorage(err))
	assert.ErrorIs(t, err, boom)
}

func Test_Rules_Hide_Keys(t *testing.T) {
	d, _ := newTestDriver(t)

	rules := d.Rules()

	assert.Equal(t, IDField, rules.IDField)
	assert.ElementsMatch(t, []string{PartitionKey, SortKey}, rules.Internal)
}

func Test_New_Validates(t *testing.T) {
	_, err := New(nil, "content")
	assert.True(t, errors.IsValidationError(err))

	_, err = New(&fakeClient{}, "")
	assert.True(t, errors.IsValidationError(err))
}
