package tidyduck

import (
	"math"
	"math/big"
	"testing"
	"time"
)

type fragCase struct {
	name string
	got  Fragment
	want string // "" means None
}

func checkFragments(t *testing.T, cases []fragCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.want == "" {
				if !tc.got.IsNone() {
					t.Errorf("expected None, got %q", tc.got.SQL())
				}
				return
			}
			if tc.got.IsNone() {
				t.Fatalf("expected %q, got None", tc.want)
			}
			if tc.got.SQL() != tc.want {
				t.Errorf("expected %q, got %q", tc.want, tc.got.SQL())
			}
		})
	}
}

func TestNone(t *testing.T) {
	if !None.IsNone() {
		t.Error("None should be None")
	}
	var zero Fragment
	if !zero.IsNone() {
		t.Error("zero Fragment should be None")
	}
	empty := Clause("")
	if empty.IsNone() {
		t.Error("an empty clause is not None")
	}
	if None.String() != "<none>" {
		t.Errorf("unexpected None.String(): %q", None.String())
	}
	if Clause("a = 1").String() != "a = 1" {
		t.Error("String should return the clause text")
	}
}

func TestQuote(t *testing.T) {
	tests := map[string]string{
		"CAS":     "'CAS'",
		"O'Brien": "'O''Brien'",
		"''":      "''''''",
		"":        "''",
	}
	for in, want := range tests {
		if got := Quote(in); got != want {
			t.Errorf("Quote(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestILike(t *testing.T) {
	checkFragments(t, []fragCase{
		{"non-empty", ILike("title", "hello"), "title ILIKE '%hello%'"},
		{"trims whitespace", ILike("title", "  hello  "), "title ILIKE '%hello%'"},
		{"empty", ILike("title", ""), ""},
		{"whitespace only", ILike("title", "   "), ""},
		{"escapes quotes", ILike("title", "it's"), "title ILIKE '%it''s%'"},
	})
}

func TestBetween(t *testing.T) {
	checkFragments(t, []fragCase{
		{"range", Between("year", []float64{2000, 2020}), "year BETWEEN 2000 AND 2020"},
		{"collapses equal bounds", Between("year", []float64{2015, 2015}), "year = 2015"},
		{"empty", Between("year", []float64{}), ""},
		{"nil", Between("year", nil), ""},
		{"wrong length", Between("year", []float64{2000}), ""},
		{"three elements", Between("year", []float64{1, 2, 3}), ""},
		{"matches full range", Between("year", []float64{2000, 2025}, []float64{2000, 2025}), ""},
		{"differs from full range", Between("year", []float64{2005, 2020}, []float64{2000, 2025}), "year BETWEEN 2005 AND 2020"},
		{"partial overlap with full range", Between("year", []float64{2000, 2020}, []float64{2000, 2025}), "year BETWEEN 2000 AND 2020"},
		{"malformed full range ignored", Between("year", []float64{2000, 2020}, []float64{2000}), "year BETWEEN 2000 AND 2020"},
		{"fractional", Between("score", []float64{0.5, 2.25}), "score BETWEEN 0.5 AND 2.25"},
		{"negative", Between("t", []float64{-10, 0}), "t BETWEEN -10 AND 0"},
		{"NaN bound", Between("year", []float64{math.NaN(), 2020}), ""},
		{"infinite bound", Between("year", []float64{2000, math.Inf(1)}), ""},
		{"infinite equal bounds", Between("year", []float64{math.Inf(-1), math.Inf(-1)}), ""},
	})
}

func TestIn(t *testing.T) {
	checkFragments(t, []fragCase{
		{"strings", InStrings("college", []string{"CAS", "CEMS"}), "college IN ('CAS', 'CEMS')"},
		{"empty", InStrings("college", []string{}), ""},
		{"nil", InStrings("college", nil), ""},
		{"escapes quotes", InStrings("name", []string{"O'Brien"}), "name IN ('O''Brien')"},
		{"preserves order and duplicates", InStrings("c", []string{"b", "a", "b"}), "c IN ('b', 'a', 'b')"},
		{"mixed values quoted", In("c", "x", 1, 2.5, true), "c IN ('x', '1', '2.5', 'true')"},
		{"no values", In("c"), ""},
		{"big int", In("n", big.NewInt(7)), "n IN ('7')"},
		{"stringer pointer", In("c", &label{"CAS"}), "c IN ('CAS')"},
	})
}

type college string

type paperID int

// label has a pointer-receiver String method.
type label struct{ name string }

func (l *label) String() string { return l.name }

func TestEq(t *testing.T) {
	year := 2020
	var nilPtr *int
	name := "O'Brien"

	checkFragments(t, []fragCase{
		{"string", Eq("college", "CAS"), "college = 'CAS'"},
		{"int", Eq("year", 2020), "year = 2020"},
		{"float", Eq("score", 2.5), "score = 2.5"},
		{"whole float", Eq("year", float64(2020)), "year = 2020"},
		{"bool", Eq("open", true), "open = true"},
		{"nil", Eq("year", nil), ""},
		{"nil pointer", Eq("year", nilPtr), ""},
		{"pointer", Eq("year", &year), "year = 2020"},
		{"string pointer", Eq("name", &name), "name = 'O''Brien'"},
		{"escapes quotes", Eq("name", "O'Brien"), "name = 'O''Brien'"},
		{"named string", Eq("college", college("CAS")), "college = 'CAS'"},
		{"named int", Eq("id", paperID(7)), "id = 7"},
		{"empty string is a value", Eq("college", ""), "college = ''"},
		{"big int bare", Eq("n", big.NewInt(123)), "n = 123"},
		{"big float bare", Eq("score", big.NewFloat(2.5)), "score = 2.5"},
		{"nil big int", Eq("n", (*big.Int)(nil)), ""},
		{"stringer pointer receiver", Eq("college", &label{"O'Brien"}), "college = 'O''Brien'"},
		{"stringer value", Eq("d", time.Duration(90)*time.Second), "d = '1m30s'"},
		{"NaN", Eq("score", math.NaN()), ""},
		{"infinity", Eq("score", math.Inf(1)), ""},
	})
}

func TestOr(t *testing.T) {
	checkFragments(t, []fragCase{
		{"two", Or(Clause("a = 1"), Clause("b = 2")), "(a = 1 OR b = 2)"},
		{"single unwrapped", Or(Clause("a = 1")), "a = 1"},
		{"drops None", Or(None, Clause("a = 1"), None), "a = 1"},
		{"all None", Or(None, None), ""},
		{"no arguments", Or(), ""},
	})
}

func TestAnd(t *testing.T) {
	checkFragments(t, []fragCase{
		{"two", And(Clause("a = 1"), Clause("b = 2")), "(a = 1 AND b = 2)"},
		{"single unwrapped", And(Clause("a = 1")), "a = 1"},
		{"drops None", And(None, Clause("a = 1"), None), "a = 1"},
		{"all None", And(None, None), ""},
	})
}

func TestComposition(t *testing.T) {
	checkFragments(t, []fragCase{
		{
			"search across columns",
			Or(ILike("title", "test"), ILike("author", "test")),
			"(title ILIKE '%test%' OR author ILIKE '%test%')",
		},
		{
			"one empty search",
			Or(ILike("title", "test"), ILike("author", "")),
			"title ILIKE '%test%'",
		},
		{
			"all empty searches",
			Or(ILike("title", ""), ILike("author", "")),
			"",
		},
		{
			"range and list",
			And(Between("year", []float64{2000, 2020}), InStrings("college", []string{"CAS", "CEMS"})),
			"(year BETWEEN 2000 AND 2020 AND college IN ('CAS', 'CEMS'))",
		},
		{
			"nested groups",
			And(Or(Clause("a = 1"), Clause("b = 2")), Clause("c = 3")),
			"((a = 1 OR b = 2) AND c = 3)",
		},
	})
}
