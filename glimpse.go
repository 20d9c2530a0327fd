package tidyduck

import (
	"context"
	"sync"
	"time"
)

// GlimpseColumn is one column of a Glimpse: its name, its type and the values
// it takes in the sample rows.
type GlimpseColumn struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Sample []any  `json:"sample" yaml:"sample"`
}

// Glimpse is a compact overview of a relation: every column with its type,
// the number of filtered rows and a few sample values per column.
//
// It combines three statements. The column list comes from DESCRIBE and
// ignores filters; the row count and the sample honor them.
type Glimpse struct {
	size     int
	describe *Rows[ColumnInfo]
	total    *Value[int64]
	sample   *Rows[Row]
}

// Glimpse returns a glimpse showing n sample rows (DefaultSampleSize when n <= 0).
func (q *Query) Glimpse(n int) *Glimpse {
	size := sizeOr(n, DefaultSampleSize)
	return &Glimpse{
		size: size,
		describe: newRows[ColumnInfo](q, "GLIMPSE", q.ColumnsSQL, func(ctx context.Context, e *Engine, sql string) ([]ColumnInfo, error) {
			return queryStructs[ColumnInfo](ctx, e, sql, q.table, "GLIMPSE")
		}),
		total:  newValue(q, "COUNT", q.CountSQL, 0, scalarLoader[int64](q.table, "COUNT", 0)),
		sample: newRows(q, "HEAD", func() string { return q.HeadSQL(size) }, q.loadMaps("HEAD")),
	}
}

// Refresh runs the three statements concurrently and waits for all of them.
// It returns the first error in the order describe, count, sample.
func (g *Glimpse) Refresh(ctx context.Context) error {
	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i, r := range []interface{ Refresh(context.Context) error }{g.describe, g.total, g.sample} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = r.Refresh(ctx)
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Columns pairs each described column with its sample values.
// A column missing from the sample rows gets nil samples.
func (g *Glimpse) Columns() []GlimpseColumn {
	cols := g.describe.Rows()
	rows := g.sample.Rows()

	out := make([]GlimpseColumn, len(cols))
	for i, c := range cols {
		sample := make([]any, len(rows))
		for j, row := range rows {
			sample[j] = row[c.ColumnName]
		}
		out[i] = GlimpseColumn{Name: c.ColumnName, Type: c.ColumnType, Sample: sample}
	}
	return out
}

// Schema returns the raw DESCRIBE rows.
func (g *Glimpse) Schema() []ColumnInfo {
	return g.describe.Rows()
}

// NRows returns the number of filtered rows.
func (g *Glimpse) NRows() int64 {
	return g.total.Value()
}

// NCols returns the number of columns of the relation.
func (g *Glimpse) NCols() int {
	return len(g.describe.Rows())
}

// SampleSize returns the number of sample rows requested.
func (g *Glimpse) SampleSize() int {
	return g.size
}

// Loading reports whether any of the statements is in flight.
func (g *Glimpse) Loading() bool {
	return g.describe.Loading() || g.total.Loading() || g.sample.Loading()
}

// Err returns the first error in the order describe, count, sample.
func (g *Glimpse) Err() error {
	if err := g.describe.Err(); err != nil {
		return err
	}
	if err := g.total.Err(); err != nil {
		return err
	}
	return g.sample.Err()
}

// QueryTime returns the duration of the slowest statement.
func (g *Glimpse) QueryTime() time.Duration {
	return max(g.describe.QueryTime(), g.total.QueryTime(), g.sample.QueryTime())
}

// SQL returns the three statements of the latest refresh, one per line.
func (g *Glimpse) SQL() string {
	return g.describe.SQL() + "\n" + g.total.SQL() + "\n" + g.sample.SQL()
}
