/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/datastore/memory"
	"github.com/suparena/contentstore/datastore/postgres/internal/adapters"
	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/storagemodels"
)

type recordedQuery struct {
	sql  string
	args []any
}

type fakeAdapter struct {
	queries   []recordedQuery
	columns   []string
	rows      [][]any
	queryErr  error
	beginErr  error
	committed bool
}

func (f *fakeAdapter) Query(ctx context.Context, query string, args ...any) (adapters.DBRows, error) {
	f.queries = append(f.queries, recordedQuery{sql: query, args: args})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{columns: f.columns, rows: f.rows, pos: -1}, nil
}

func (f *fakeAdapter) Begin(ctx context.Context) (adapters.DBTx, error) {
	if f.beginErr != nil {
		return nil, f.beginErr
	}
	return &fakeTx{adapter: f}, nil
}

type fakeTx struct {
	adapter *fakeAdapter
}

func (f *fakeTx) Query(ctx context.Context, query string, args ...any) (adapters.DBRows, error) {
	return f.adapter.Query(ctx, query, args...)
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.adapter.committed = true
	return nil
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	return nil
}

type fakeRows struct {
	columns []string
	rows    [][]any
	pos     int
}

func (f *fakeRows) Next() bool {
	f.pos++
	return f.pos < len(f.rows)
}

func (f *fakeRows) Columns() ([]string, error) { return f.columns, nil }

func (f *fakeRows) Values() ([]any, error) { return f.rows[f.pos], nil }

func (f *fakeRows) Err() error { return nil }

func (f *fakeRows) Close() error { return nil }

func newTestDriver(t *testing.T, db *fakeAdapter, options ...Option) *Driver {
	t.Helper()
	d, err := newDriver(db, options...)
	require.NoError(t, err)
	return d
}

func Test_SelectSQL_Plain(t *testing.T) {
	b := newQueryBuilder("blog_posts", defaultLocalesSuffix, datastore.Localization{})

	sqlQuery, args, err := b.selectSQL(
		filter.Compose(filter.Eq("status", "published"), filter.Gt("viewCount", 10)),
		datastore.FindOptions{Sort: []storagemodels.SortField{{Field: "createdAt", Desc: true}}, Skip: 20, Limit: 10},
	)

	require.NoError(t, err)
	assert.Equal(t,
		`SELECT "t".* FROM "blog_posts" AS "t" WHERE (("t"."status" = $1) AND ("t"."view_count" > $2)) `+
			`ORDER BY "t"."created_at" DESC NULLS LAST LIMIT $3 OFFSET $4`,
		sqlQuery)
	assert.Equal(t, []any{"published", int64(10), int64(10), int64(20)}, args)
}

func Test_SelectSQL_Localized_With_Fallback(t *testing.T) {
	l := datastore.Localization{Locale: "de", Fallback: "en", Fields: []string{"title"}}
	b := newQueryBuilder("posts", defaultLocalesSuffix, l)

	sqlQuery, args, err := b.selectSQL(filter.Eq("title", "Hallo"), datastore.FindOptions{Localization: l})

	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `LEFT JOIN "posts_locales" AS "l" ON (("l"."_parent_id" = "t"."id") AND ("l"."_locale" = $`)
	assert.Contains(t, sqlQuery, `LEFT JOIN "posts_locales" AS "lf"`)
	assert.Contains(t, sqlQuery, `COALESCE("l"."title", "lf"."title") AS "title"`)
	assert.Contains(t, sqlQuery, `WHERE (COALESCE("l"."title", "lf"."title") = $`)
	assert.Contains(t, args, "de")
	assert.Contains(t, args, "en")
	assert.Contains(t, args, "Hallo")
}

func Test_SelectSQL_All_Locales(t *testing.T) {
	l := datastore.Localization{Locale: storagemodels.AllLocales, Fallback: "en", Fields: []string{"title"}}
	b := newQueryBuilder("posts", defaultLocalesSuffix, l)

	sqlQuery, _, err := b.selectSQL(filter.Where{}, datastore.FindOptions{Localization: l})

	require.NoError(t, err)
	assert.Contains(t, sqlQuery, `(SELECT jsonb_object_agg("x"."_locale", "x"."title") FROM "posts_locales" AS "x" WHERE "x"."_parent_id" = "t"."id") AS "title"`)
}

func Test_Where_Operators(t *testing.T) {
	b := newQueryBuilder("posts", defaultLocalesSuffix, datastore.Localization{})

	testCases := []struct {
		name  string
		where filter.Where
		want  string
	}{
		{name: "null", where: filter.Eq("deletedAt", nil), want: `("t"."deleted_at" IS NULL)`},
		{name: "not equals keeps nulls", where: filter.Ne("status", "draft"), want: `(("t"."status" != $1) OR ("t"."status" IS NULL))`},
		{name: "in", where: filter.AnyOf("status", "a", "b"), want: `("t"."status" IN ($1, $2))`},
		{name: "like", where: filter.Matches("title", "go db"), want: `(("t"."title" ILIKE $1) AND ("t"."title" ILIKE $2))`},
		{name: "exists", where: filter.Has("image", true), want: `("t"."image" IS NOT NULL)`},
		{name: "nested", where: filter.Eq("meta.seo.title", "x"), want: `("t"."meta" #>> $1 = $2)`},
		{name: "or", where: filter.Any(filter.Eq("a", 1), filter.Eq("b", 2)), want: `(("t"."a" = $1) OR ("t"."b" = $2))`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sqlQuery, _, err := b.countSQL(tc.where)
			require.NoError(t, err)
			assert.Contains(t, sqlQuery, "WHERE "+tc.want)
		})
	}
}

func Test_Where_Escapes_Like_Patterns(t *testing.T) {
	b := newQueryBuilder("posts", defaultLocalesSuffix, datastore.Localization{})

	_, args, err := b.countSQL(filter.Where{Op: filter.Contains, Field: "title", Value: "50%_off"})

	require.NoError(t, err)
	assert.Equal(t, []any{`%50\%\_off%`}, args)
}

func Test_Where_Rejects_Unknown_Operator(t *testing.T) {
	b := newQueryBuilder("posts", defaultLocalesSuffix, datastore.Localization{})

	_, _, err := b.countSQL(filter.Where{Op: "near", Field: "location"})

	assert.True(t, errors.IsValidationError(err))
}

func Test_Find_Maps_Columns_To_Fields(t *testing.T) {
	db := &fakeAdapter{
		columns: []string{"id", "blog_title", "created_at", "_parent_id"},
		rows: [][]any{
			{"1", "Hello", "2024-01-01T00:00:00Z", nil},
			{"2", "World", "2024-02-01T00:00:00Z", nil},
		},
	}
	d := newTestDriver(t, db)

	docs, err := d.Find(context.Background(), datastore.NamedTable("blog_posts"), filter.Where{}, datastore.FindOptions{})

	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, storagemodels.Document{"id": "1", "blogTitle": "Hello", "createdAt": "2024-01-01T00:00:00Z", "_parent_id": nil}, docs[0])
	require.Len(t, db.queries, 1)
	assert.Equal(t, `SELECT "t".* FROM "blog_posts" AS "t"`, db.queries[0].sql)
}

func Test_Count(t *testing.T) {
	db := &fakeAdapter{columns: []string{"count"}, rows: [][]any{{int64(42)}}}
	d := newTestDriver(t, db)

	n, err := d.Count(context.Background(), datastore.NamedTable("posts"), filter.Eq("status", "published"), datastore.CountOptions{})

	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	assert.Equal(t, `SELECT COUNT(*) FROM "posts" AS "t" WHERE ("t"."status" = $1)`, db.queries[0].sql)
}

func Test_Find_When_Query_Fails(t *testing.T) {
	boom := stderrors.New("relation does not exist")
	d := newTestDriver(t, &fakeAdapter{queryErr: boom})

	_, err := d.Find(context.Background(), datastore.NamedTable("posts"), filter.Where{}, datastore.FindOptions{})

	assert.True(t, errors.IsStorage(err))
	assert.ErrorIs(t, err, boom)
}

func Test_Transactions(t *testing.T) {
	ctx := context.Background()
	db := &fakeAdapter{columns: []string{"count"}, rows: [][]any{{int64(1)}}}
	d := newTestDriver(t, db)

	tx, err := d.Begin(ctx)
	require.NoError(t, err)

	_, err = d.Count(ctx, datastore.NamedTable("posts"), filter.Where{}, datastore.CountOptions{Tx: tx})
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.True(t, db.committed)

	foreign, err := memory.New().Begin(ctx)
	require.NoError(t, err)
	_, err = d.Count(ctx, datastore.NamedTable("posts"), filter.Where{}, datastore.CountOptions{Tx: foreign})
	assert.ErrorIs(t, err, errors.ErrForeignTransaction)
}

func Test_Begin_When_Adapter_Fails(t *testing.T) {
	boom := stderrors.New("too many connections")
	d := newTestDriver(t, &fakeAdapter{beginErr: boom})

	_, err := d.Begin(context.Background())

	assert.ErrorIs(t, err, boom)
}

func Test_Options(t *testing.T) {
	d := newTestDriver(t, &fakeAdapter{}, WithName("cms"), WithVersionsSuffix("_v"), WithLocalesSuffix("_i18n"))

	assert.Equal(t, "cms", d.Name())
	assert.Equal(t, "_v", d.Naming().VersionsSuffix)
	assert.Equal(t, "_i18n", d.localesSuffix)

	_, err := newDriver(&fakeAdapter{}, WithLocalesSuffix(""))
	assert.ErrorIs(t, err, ErrEmptyLocalesSuffix)
}

func Test_Constructors_Reject_Nil(t *testing.T) {
	_, err := NewFromSQLDB(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = NewFromSQLX(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)

	_, err = NewFromPGXPool(nil)
	assert.ErrorIs(t, err, ErrNilDatabaseConnection)
}
