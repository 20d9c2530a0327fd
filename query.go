package tidyduck

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/zoobzio/tidyduck/internal/scanner"
)

const (
	// DefaultHeadSize is the number of rows Head returns when n <= 0.
	DefaultHeadSize = 6

	// DefaultSampleSize is the number of sample rows Glimpse shows when n <= 0.
	DefaultSampleSize = 5
)

// Agg is one aggregate of a Summarize call, rendered as "Expr as Alias".
type Agg struct {
	Alias string `json:"alias" yaml:"alias" toml:"alias"`
	Expr  string `json:"expr" yaml:"expr" toml:"expr"`
}

// Statement renderers. Each reads the filter slots afresh.

// RowsSQL renders SELECT * FROM t <where>.
func (q *Query) RowsSQL() string {
	return fmt.Sprintf("SELECT * FROM %s %s", q.table, q.where())
}

// HeadSQL renders RowsSQL limited to n rows (DefaultHeadSize when n <= 0).
func (q *Query) HeadSQL(n int) string {
	return fmt.Sprintf("SELECT * FROM %s %s LIMIT %d", q.table, q.where(), sizeOr(n, DefaultHeadSize))
}

// DescribeSQL renders the SUMMARIZE statement for the filtered rows.
func (q *Query) DescribeSQL() string {
	return fmt.Sprintf("SUMMARIZE SELECT * FROM %s %s", q.table, q.where())
}

// ColumnsSQL renders the DESCRIBE statement listing the table's columns.
// It ignores filters.
func (q *Query) ColumnsSQL() string {
	return fmt.Sprintf("DESCRIBE SELECT * FROM %s", q.table)
}

// CountSQL renders SELECT COUNT(*) FROM t <where>.
func (q *Query) CountSQL() string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s %s", q.table, q.where())
}

// CountBySQL renders a grouped count ordered by descending frequency.
// With no columns it renders a single ungrouped count aliased n.
func (q *Query) CountBySQL(cols ...string) string {
	if len(cols) == 0 {
		return fmt.Sprintf("SELECT COUNT(*) as n FROM %s %s", q.table, q.where())
	}
	group := strings.Join(cols, ", ")
	return fmt.Sprintf("SELECT %s, COUNT(*) as n FROM %s %s GROUP BY %s ORDER BY n DESC",
		group, q.table, q.where(), group)
}

// DistinctSQL renders the sorted distinct non-null values of col.
func (q *Query) DistinctSQL(col string) string {
	return fmt.Sprintf("SELECT DISTINCT %s FROM %s %s ORDER BY %s",
		col, q.table, q.where(notNull(col)), col)
}

// MinSQL renders SELECT MIN(col) over the filtered non-null values.
func (q *Query) MinSQL(col string) string {
	return fmt.Sprintf("SELECT MIN(%s) FROM %s %s", col, q.table, q.where(notNull(col)))
}

// MaxSQL renders SELECT MAX(col) over the filtered non-null values.
func (q *Query) MaxSQL(col string) string {
	return fmt.Sprintf("SELECT MAX(%s) FROM %s %s", col, q.table, q.where(notNull(col)))
}

// SummarizeSQL renders SELECT e1 as a1, e2 as a2, ... FROM t <where> in argument order.
func (q *Query) SummarizeSQL(aggs ...Agg) string {
	parts := make([]string, len(aggs))
	for i, a := range aggs {
		parts[i] = fmt.Sprintf("%s as %s", a.Expr, a.Alias)
	}
	return fmt.Sprintf("SELECT %s FROM %s %s", strings.Join(parts, ", "), q.table, q.where())
}

// Aggs converts an alias to expression map into aggregates sorted by alias.
func Aggs(m map[string]string) []Agg {
	aliases := make([]string, 0, len(m))
	for alias := range m {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)

	out := make([]Agg, len(aliases))
	for i, alias := range aliases {
		out[i] = Agg{Alias: alias, Expr: m[alias]}
	}
	return out
}

// Terminal operations. Each returns a live handle; nothing runs until Refresh.

// Rows returns every filtered row.
func (q *Query) Rows() *Rows[Row] {
	return newRows(q, "ROWS", q.RowsSQL, q.loadMaps("ROWS"))
}

// Head returns the first n filtered rows (DefaultHeadSize when n <= 0).
func (q *Query) Head(n int) *Rows[Row] {
	return newRows(q, "HEAD", func() string { return q.HeadSQL(n) }, q.loadMaps("HEAD"))
}

// Describe returns per-column statistics of the filtered rows.
// SUMMARIZE is DuckDB specific.
func (q *Query) Describe() *Rows[ColumnSummary] {
	return newRows[ColumnSummary](q, "DESCRIBE", q.DescribeSQL, func(ctx context.Context, e *Engine, sql string) ([]ColumnSummary, error) {
		return queryStructs[ColumnSummary](ctx, e, sql, q.table, "DESCRIBE")
	})
}

// Count returns the number of filtered rows. The value is 0 until loaded.
func (q *Query) Count() *Value[int64] {
	return newValue(q, "COUNT", q.CountSQL, 0, scalarLoader[int64](q.table, "COUNT", 0))
}

// CountBy returns the frequency of each combination of cols among the filtered
// rows, most frequent first. Each row carries the group columns and n.
//
// Example:
//
//	by := papers.In("college", colleges.Get).CountBy("college", "year")
//	// SELECT college, year, COUNT(*) as n FROM ... GROUP BY college, year ORDER BY n DESC
func (q *Query) CountBy(cols ...string) *Rows[Row] {
	return newRows(q, "COUNT", func() string { return q.CountBySQL(cols...) }, q.loadMaps("COUNT"))
}

// Distinct returns the sorted distinct non-null values of col.
func (q *Query) Distinct(col string) *Column[any] {
	return DistinctOf[any](q, col)
}

// Min returns the smallest non-null value of col, or def (nil if omitted)
// while unloaded and when no row matches.
func (q *Query) Min(col string, def ...any) *Value[any] {
	return MinOf(q, col, first(def))
}

// Max returns the largest non-null value of col, or def (nil if omitted)
// while unloaded and when no row matches.
func (q *Query) Max(col string, def ...any) *Value[any] {
	return MaxOf(q, col, first(def))
}

// Summarize computes the given aggregates over the filtered rows.
//
// Example:
//
//	stats := q.Summarize(
//	    tidyduck.Agg{Alias: "n", Expr: "COUNT(*)"},
//	    tidyduck.Agg{Alias: "avg_pages", Expr: "AVG(pages)"},
//	)
func (q *Query) Summarize(aggs ...Agg) *Rows[Row] {
	return newRows(q, "SUMMARIZE", func() string { return q.SummarizeSQL(aggs...) }, q.loadMaps("SUMMARIZE"))
}

// SummarizeMap is Summarize for an alias to expression map; aggregates are
// rendered in alias order.
func (q *Query) SummarizeMap(aggs map[string]string) *Rows[Row] {
	return q.Summarize(Aggs(aggs)...)
}

// SQL runs a caller-built statement. build receives the current WHERE clause
// ("" when unfiltered) on every refresh.
//
// Example:
//
//	top := q.SQL(func(where string) string {
//	    return "SELECT author, COUNT(*) AS n FROM papers " + where + " GROUP BY author LIMIT 10"
//	})
func (q *Query) SQL(build func(where string) string) *Rows[Row] {
	return newRows(q, "SQL", func() string { return build(q.where()) }, q.loadMaps("SQL"))
}

// Fetch returns every filtered row scanned into T by db struct tags.
// Columns without a matching field are ignored. T must be a struct.
func Fetch[T any](q *Query) *Rows[T] {
	return newRows(q, "ROWS", q.RowsSQL, structLoader[T](q.table, "ROWS"))
}

// FetchHead is Head scanning into T.
func FetchHead[T any](q *Query, n int) *Rows[T] {
	return newRows(q, "HEAD", func() string { return q.HeadSQL(n) }, structLoader[T](q.table, "HEAD"))
}

// DistinctOf is Distinct with values converted to T.
func DistinctOf[T any](q *Query, col string) *Column[T] {
	return newColumn[T](q, "DISTINCT", func() string { return q.DistinctSQL(col) },
		func(ctx context.Context, e *Engine, sql string) ([]T, error) {
			items, err := queryColumn(ctx, e, sql, q.table, "DISTINCT")
			if err != nil {
				return nil, err
			}
			out := make([]T, 0, len(items))
			for _, item := range items {
				v, ok, err := scanner.Convert[T](item)
				if err != nil {
					return nil, newQueryError("DISTINCT", sql, err)
				}
				if ok {
					out = append(out, v)
				}
			}
			return out, nil
		})
}

// MinOf is Min with the value converted to T.
func MinOf[T any](q *Query, col string, def T) *Value[T] {
	return newValue(q, "MIN", func() string { return q.MinSQL(col) }, def, scalarLoader(q.table, "MIN", def))
}

// MaxOf is Max with the value converted to T.
func MaxOf[T any](q *Query, col string, def T) *Value[T] {
	return newValue(q, "MAX", func() string { return q.MaxSQL(col) }, def, scalarLoader(q.table, "MAX", def))
}

func (q *Query) loadMaps(op string) loader[[]Row] {
	return func(ctx context.Context, e *Engine, sql string) ([]Row, error) {
		return queryMaps(ctx, e, sql, q.table, op)
	}
}

func structLoader[T any](table, op string) loader[[]T] {
	return func(ctx context.Context, e *Engine, sql string) ([]T, error) {
		return queryStructs[T](ctx, e, sql, table, op)
	}
}

// scalarLoader reads the first column of the first row; NULL yields def.
func scalarLoader[T any](table, op string, def T) loader[T] {
	return func(ctx context.Context, e *Engine, sql string) (T, error) {
		raw, err := queryScalar(ctx, e, sql, table, op)
		if err != nil {
			return def, err
		}
		v, ok, err := scanner.Convert[T](raw)
		if err != nil {
			return def, newQueryError(op, sql, err)
		}
		if !ok {
			return def, nil
		}
		return v, nil
	}
}

func notNull(col string) string {
	return col + " IS NOT NULL"
}

func sizeOr(n, def int) int {
	if n <= 0 {
		return def
	}
	return n
}

func first(vals []any) any {
	if len(vals) == 0 {
		return nil
	}
	return vals[0]
}
