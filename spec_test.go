package tidyduck

import (
	"errors"
	"testing"
)

func TestFilterSpec_Fragment(t *testing.T) {
	checkFragments(t, []fragCase{
		{"between", FilterSpec{Between: &RangeSpec{Column: "year", Value: []float64{2000, 2020}}}.Fragment(), "year BETWEEN 2000 AND 2020"},
		{"between full", FilterSpec{Between: &RangeSpec{Column: "year", Value: []float64{1, 9}, Full: []float64{1, 9}}}.Fragment(), ""},
		{"between malformed", FilterSpec{Between: &RangeSpec{Column: "year", Value: []float64{1}}}.Fragment(), ""},
		{"in", FilterSpec{In: &ListSpec{Column: "college", Values: []string{"CAS", "CEMS"}}}.Fragment(), "college IN ('CAS', 'CEMS')"},
		{"ilike", FilterSpec{ILike: &MatchSpec{Column: "title", Value: " duck "}}.Fragment(), "title ILIKE '%duck%'"},
		{"eq", FilterSpec{Eq: &EqSpec{Column: "year", Value: float64(2020)}}.Fragment(), "year = 2020"},
		{"eq null", FilterSpec{Eq: &EqSpec{Column: "year"}}.Fragment(), ""},
		{"raw", FilterSpec{Raw: "pages > 10"}.Fragment(), "pages > 10"},
		{"empty", FilterSpec{}.Fragment(), ""},
		{
			"or",
			FilterSpec{Or: []FilterSpec{
				{ILike: &MatchSpec{Column: "title", Value: "test"}},
				{ILike: &MatchSpec{Column: "author", Value: ""}},
			}}.Fragment(),
			"title ILIKE '%test%'",
		},
		{
			"and",
			FilterSpec{And: []FilterSpec{
				{Raw: "a = 1"},
				{Or: []FilterSpec{{Raw: "b = 2"}, {Raw: "c = 3"}}},
			}}.Fragment(),
			"(a = 1 AND (b = 2 OR c = 3))",
		},
	})
}

func TestFilterSpec_Validate(t *testing.T) {
	tests := []struct {
		name    string
		spec    FilterSpec
		wantErr bool
	}{
		{"between", FilterSpec{Between: &RangeSpec{Column: "year"}}, false},
		{"raw", FilterSpec{Raw: "a = 1"}, false},
		{"no kind", FilterSpec{}, true},
		{"two kinds", FilterSpec{Raw: "a = 1", In: &ListSpec{Column: "c"}}, true},
		{"missing column", FilterSpec{ILike: &MatchSpec{Value: "x"}}, true},
		{"invalid nested", FilterSpec{Or: []FilterSpec{{Raw: "a = 1"}, {}}}, true},
		{"empty group", FilterSpec{And: []FilterSpec{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSpec) {
					t.Errorf("expected ErrInvalidSpec, got %v", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestQuerySpec_Validate(t *testing.T) {
	if err := (QuerySpec{}).Validate(); !errors.Is(err, ErrEmptyTable) {
		t.Errorf("expected ErrEmptyTable, got %v", err)
	}

	spec := QuerySpec{From: "papers", Filters: []FilterSpec{{}, {Raw: "a = 1"}, {Raw: "b", Eq: &EqSpec{Column: "c"}}}}
	err := spec.Validate()
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestQuerySpec_Build(t *testing.T) {
	spec := QuerySpec{
		From:   "test",
		Tables: map[string]string{"test": "test.parquet"},
		Filters: []FilterSpec{
			{Between: &RangeSpec{Column: "year", Value: []float64{2000, 2020}}},
			{In: &ListSpec{Column: "college", Values: []string{"CAS"}}},
			{ILike: &MatchSpec{Column: "title", Value: "test"}},
		},
	}

	q, err := spec.Build(nil)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if q.Table() != "'test.parquet'" {
		t.Errorf("expected resolved relation, got %s", q.Table())
	}
	want := "WHERE year BETWEEN 2000 AND 2020 AND college IN ('CAS') AND title ILIKE '%test%'"
	if q.WhereSQL() != want {
		t.Errorf("expected %q, got %q", want, q.WhereSQL())
	}

	if _, err := (QuerySpec{From: "x", Filters: []FilterSpec{{}}}).Build(nil); !errors.Is(err, ErrInvalidSpec) {
		t.Errorf("expected ErrInvalidSpec, got %v", err)
	}
}

func TestBuildQuery_Execution(t *testing.T) {
	e := newPapersEngine(t)

	q, err := BuildQuery(e.From("papers"), QuerySpec{
		From: "papers",
		Filters: []FilterSpec{
			{Eq: &EqSpec{Column: "author", Value: "Wickham"}},
			{Raw: "pages IS NOT NULL"},
		},
	})
	if err != nil {
		t.Fatalf("BuildQuery() failed: %v", err)
	}

	h := q.Count()
	refresh(t, h)
	if h.Value() != 1 {
		t.Errorf("expected 1, got %d", h.Value())
	}
}
