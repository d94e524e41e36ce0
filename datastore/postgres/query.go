/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/go-openapi/strfmt"

	"github.com/suparena/contentstore/datastore"
	"github.com/suparena/contentstore/errors"
	"github.com/suparena/contentstore/filter"
	"github.com/suparena/contentstore/registry"
	"github.com/suparena/contentstore/storagemodels"
)

const (
	dialectPostgres = "postgres"
	aliasMain       = "t"
	aliasLocale     = "l"
	aliasFallback   = "lf"
	aliasAgg        = "x"
	colID           = "id"
	colParentID     = "_parent_id"
	colLocale       = "_locale"
)

// column is what a filter field resolves to: a plain column, a jsonb path or a
// COALESCE over locale rows.
type column interface {
	exp.Comparable
	exp.Inable
	exp.Isable
	exp.Likeable
	exp.Orderable
}

// queryBuilder builds SQL for one table and localization.
type queryBuilder struct {
	table        string
	localesTable string
	l            datastore.Localization
}

func newQueryBuilder(table, localesSuffix string, l datastore.Localization) queryBuilder {
	return queryBuilder{table: table, localesTable: table + localesSuffix, l: l}
}

// joined reports whether locale rows are joined in.
func (b queryBuilder) joined() bool {
	return b.l.Enabled()
}

func (b queryBuilder) from() *goqu.SelectDataset {
	ds := goqu.Dialect(dialectPostgres).From(goqu.T(b.table).As(aliasMain))
	if !b.joined() {
		return ds
	}

	locale := b.l.QueryLocale()
	ds = ds.LeftJoin(
		goqu.T(b.localesTable).As(aliasLocale),
		goqu.On(
			goqu.I(aliasLocale+"."+colParentID).Eq(goqu.I(aliasMain+"."+colID)),
			goqu.I(aliasLocale+"."+colLocale).Eq(locale),
		),
	)
	if b.withFallback() {
		ds = ds.LeftJoin(
			goqu.T(b.localesTable).As(aliasFallback),
			goqu.On(
				goqu.I(aliasFallback+"."+colParentID).Eq(goqu.I(aliasMain+"."+colID)),
				goqu.I(aliasFallback+"."+colLocale).Eq(b.l.Fallback),
			),
		)
	}
	return ds
}

func (b queryBuilder) withFallback() bool {
	return b.l.Fallback != "" && b.l.Fallback != b.l.QueryLocale()
}

// selectColumns returns t.* plus one column per localized field.
func (b queryBuilder) selectColumns() []any {
	cols := []any{goqu.I(aliasMain + ".*")}
	if !b.joined() {
		return cols
	}

	for _, field := range b.l.Fields {
		col := registry.ToSnake(field)
		if b.l.Locale == storagemodels.AllLocales {
			cols = append(cols, goqu.L(
				"(SELECT jsonb_object_agg(?, ?) FROM ? WHERE ? = ?)",
				goqu.I(aliasAgg+"."+colLocale),
				goqu.I(aliasAgg+"."+col),
				goqu.T(b.localesTable).As(aliasAgg),
				goqu.I(aliasAgg+"."+colParentID),
				goqu.I(aliasMain+"."+colID),
			).As(col))
			continue
		}
		cols = append(cols, b.localized(col).(exp.Aliaseable).As(col))
	}
	return cols
}

func (b queryBuilder) localized(col string) column {
	if b.withFallback() {
		return goqu.COALESCE(goqu.I(aliasLocale+"."+col), goqu.I(aliasFallback+"."+col))
	}
	return goqu.I(aliasLocale + "." + col)
}

// column resolves a filter or sort field. Nested paths read from jsonb columns as text.
func (b queryBuilder) column(field string) (column, error) {
	if field == "" {
		return nil, errors.NewValidationError("where", "predicate without field")
	}

	head, rest, nested := strings.Cut(field, ".")
	col := registry.ToSnake(head)

	var base column
	if b.joined() && contains(b.l.Fields, head) {
		base = b.localized(col)
	} else {
		base = goqu.I(aliasMain + "." + col)
	}

	if !nested {
		return base, nil
	}

	return goqu.L("? #>> ?", base, "{"+strings.ReplaceAll(rest, ".", ",")+"}"), nil
}

// where translates a filter tree into a goqu expression.
func (b queryBuilder) where(w filter.Where) (exp.Expression, error) {
	if w.Op.Logical() {
		parts := make([]exp.Expression, 0, len(w.Children))
		for _, c := range w.Children {
			if c.IsEmpty() {
				continue
			}
			e, err := b.where(c)
			if err != nil {
				return nil, err
			}
			parts = append(parts, e)
		}
		if w.Op == filter.Or {
			return goqu.Or(parts...), nil
		}
		return goqu.And(parts...), nil
	}

	col, err := b.column(w.Field)
	if err != nil {
		return nil, err
	}

	switch w.Op {
	case filter.Equals:
		if w.Value == nil {
			return col.IsNull(), nil
		}
		return col.Eq(sqlValue(w.Value)), nil
	case filter.NotEquals:
		if w.Value == nil {
			return col.IsNotNull(), nil
		}
		return goqu.Or(col.Neq(sqlValue(w.Value)), col.IsNull()), nil
	case filter.GreaterThan:
		return col.Gt(sqlValue(w.Value)), nil
	case filter.GreaterThanEqual:
		return col.Gte(sqlValue(w.Value)), nil
	case filter.LessThan:
		return col.Lt(sqlValue(w.Value)), nil
	case filter.LessThanEqual:
		return col.Lte(sqlValue(w.Value)), nil
	case filter.In:
		return col.In(w.Values()...), nil
	case filter.NotIn:
		return goqu.Or(col.NotIn(w.Values()...), col.IsNull()), nil
	case filter.Like:
		words := strings.Fields(fmt.Sprint(w.Value))
		parts := make([]exp.Expression, 0, len(words))
		for _, word := range words {
			parts = append(parts, col.ILike("%"+escapeLike(word)+"%"))
		}
		return goqu.And(parts...), nil
	case filter.Contains:
		return col.ILike("%" + escapeLike(fmt.Sprint(w.Value)) + "%"), nil
	case filter.Exists:
		if w.Truthy() {
			return col.IsNotNull(), nil
		}
		return col.IsNull(), nil
	default:
		return nil, errors.NewValidationError(w.Field, fmt.Sprintf("unsupported operator %q", w.Op))
	}
}

// order translates sort fields. Nulls sort first ascending, last descending.
func (b queryBuilder) order(fields []storagemodels.SortField) ([]exp.OrderedExpression, error) {
	res := make([]exp.OrderedExpression, 0, len(fields))
	for _, f := range fields {
		col, err := b.column(f.Field)
		if err != nil {
			return nil, err
		}
		if f.Desc {
			res = append(res, col.Desc().NullsLast())
		} else {
			res = append(res, col.Asc().NullsFirst())
		}
	}
	return res, nil
}

func (b queryBuilder) selectSQL(w filter.Where, opts datastore.FindOptions) (string, []any, error) {
	ds := b.from().Select(b.selectColumns()...)

	if !w.IsEmpty() {
		cond, err := b.where(w)
		if err != nil {
			return "", nil, err
		}
		ds = ds.Where(cond)
	}

	order, err := b.order(opts.Sort)
	if err != nil {
		return "", nil, err
	}
	if len(order) > 0 {
		ds = ds.Order(order...)
	}
	if opts.Skip > 0 {
		ds = ds.Offset(uint(opts.Skip))
	}
	if opts.Limit > 0 {
		ds = ds.Limit(uint(opts.Limit))
	}

	return ds.Prepared(true).ToSQL()
}

func (b queryBuilder) countSQL(w filter.Where) (string, []any, error) {
	ds := b.from().Select(goqu.COUNT(goqu.Star()))

	if !w.IsEmpty() {
		cond, err := b.where(w)
		if err != nil {
			return "", nil, err
		}
		ds = ds.Where(cond)
	}

	return ds.Prepared(true).ToSQL()
}

func sqlValue(v any) any {
	switch tv := v.(type) {
	case strfmt.DateTime:
		return time.Time(tv)
	case *strfmt.DateTime:
		if tv == nil {
			return nil
		}
		return time.Time(*tv)
	default:
		return v
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
