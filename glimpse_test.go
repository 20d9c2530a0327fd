package tidyduck

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeGlimpse returns a glimpse whose statements are answered by stubs.
func fakeGlimpse(t *testing.T, describeErr, countErr, sampleErr error) *Glimpse {
	t.Helper()

	g := From("papers").Bind(&Engine{}).In("college", func() []string { return []string{"CAS"} }).Glimpse(2)
	g.describe.load = func(context.Context, *Engine, string) ([]ColumnInfo, error) {
		return []ColumnInfo{
			{ColumnName: "title", ColumnType: "VARCHAR"},
			{ColumnName: "year", ColumnType: "BIGINT"},
			{ColumnName: "missing", ColumnType: "VARCHAR"},
		}, describeErr
	}
	g.total.load = func(context.Context, *Engine, string) (int64, error) {
		return 2, countErr
	}
	g.sample.load = func(context.Context, *Engine, string) ([]Row, error) {
		return []Row{
			{"title": "Tidy Data", "year": int64(2014)},
			{"title": "Dplyr", "year": int64(2016)},
		}, sampleErr
	}
	return g
}

func TestGlimpse(t *testing.T) {
	g := fakeGlimpse(t, nil, nil, nil)
	refresh(t, g)

	if g.SampleSize() != 2 {
		t.Errorf("expected sample size 2, got %d", g.SampleSize())
	}
	if g.NRows() != 2 || g.NCols() != 3 {
		t.Errorf("expected 2 rows and 3 columns, got %d and %d", g.NRows(), g.NCols())
	}
	if g.Loading() || g.Err() != nil {
		t.Errorf("unexpected state: loading=%v err=%v", g.Loading(), g.Err())
	}

	cols := g.Columns()
	if len(cols) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(cols))
	}
	if cols[0].Name != "title" || cols[0].Sample[0] != "Tidy Data" || cols[0].Sample[1] != "Dplyr" {
		t.Errorf("unexpected title column %+v", cols[0])
	}
	if cols[1].Type != "BIGINT" || cols[1].Sample[1] != int64(2016) {
		t.Errorf("unexpected year column %+v", cols[1])
	}
	if cols[2].Sample[0] != nil || cols[2].Sample[1] != nil {
		t.Errorf("expected nil samples for a column absent from the sample, got %v", cols[2].Sample)
	}

	lines := strings.Split(g.SQL(), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 statements, got %q", g.SQL())
	}
	if lines[0] != "DESCRIBE SELECT * FROM papers" {
		t.Errorf("unexpected describe statement %q", lines[0])
	}
	if !strings.Contains(lines[1], "WHERE college IN ('CAS')") || !strings.HasSuffix(lines[2], "LIMIT 2") {
		t.Errorf("unexpected count or sample statement %q", lines[1:])
	}
}

func TestGlimpse_ErrorPrecedence(t *testing.T) {
	errDescribe := errors.New("describe")
	errCount := errors.New("count")
	errSample := errors.New("sample")

	tests := []struct {
		name                 string
		describe, count, smp error
		want                 error
	}{
		{"all fail", errDescribe, errCount, errSample, errDescribe},
		{"count and sample", nil, errCount, errSample, errCount},
		{"sample only", nil, nil, errSample, errSample},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := fakeGlimpse(t, tt.describe, tt.count, tt.smp)
			if err := g.Refresh(context.Background()); !errors.Is(err, tt.want) {
				t.Errorf("Refresh(): expected %v, got %v", tt.want, err)
			}
			if !errors.Is(g.Err(), tt.want) {
				t.Errorf("Err(): expected %v, got %v", tt.want, g.Err())
			}
		})
	}
}

func TestGlimpse_Unbound(t *testing.T) {
	g := From("papers").Glimpse(0)
	if g.SampleSize() != DefaultSampleSize {
		t.Errorf("expected default sample size, got %d", g.SampleSize())
	}
	if err := g.Refresh(context.Background()); !errors.Is(err, ErrNoEngine) {
		t.Errorf("expected ErrNoEngine, got %v", err)
	}
}
