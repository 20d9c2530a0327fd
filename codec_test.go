package tidyduck

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func sampleSpec() QuerySpec {
	return QuerySpec{
		From:   "papers",
		Tables: map[string]string{"papers": "data/papers.parquet"},
		Filters: []FilterSpec{
			{Between: &RangeSpec{Column: "year", Value: []float64{2000, 2020}, Full: []float64{1990, 2025}}},
			{In: &ListSpec{Column: "college", Values: []string{"CAS", "CEMS"}}},
			{Eq: &EqSpec{Column: "type", Value: "article"}},
			{Or: []FilterSpec{
				{ILike: &MatchSpec{Column: "title", Value: "duck"}},
				{ILike: &MatchSpec{Column: "author", Value: "duck"}},
			}},
		},
		Limit: 10,
	}
}

func TestCodecs_PreserveQuery(t *testing.T) {
	want, err := sampleSpec().Build(nil)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	codecs := map[string]Codec{
		"json":    JSONCodec,
		"yaml":    YAMLCodec,
		"toml":    TOMLCodec,
		"msgpack": MsgPackCodec,
	}

	for name, codec := range codecs {
		t.Run(name, func(t *testing.T) {
			data, err := codec.Marshal(sampleSpec())
			if err != nil {
				t.Fatalf("Marshal() failed: %v", err)
			}

			spec, err := DecodeQuerySpec(data, codec)
			if err != nil {
				t.Fatalf("DecodeQuerySpec() failed: %v", err)
			}
			if spec.Limit != 10 {
				t.Errorf("expected limit 10, got %d", spec.Limit)
			}

			got, err := spec.Build(nil)
			if err != nil {
				t.Fatalf("Build() failed: %v", err)
			}
			if got.Table() != want.Table() {
				t.Errorf("expected table %s, got %s", want.Table(), got.Table())
			}
			if got.WhereSQL() != want.WhereSQL() {
				t.Errorf("expected %q, got %q", want.WhereSQL(), got.WhereSQL())
			}
		})
	}
}

func TestCodecFor(t *testing.T) {
	tests := map[string]Codec{
		"spec.json":     JSONCodec,
		"spec.yaml":     YAMLCodec,
		"spec.YML":      YAMLCodec,
		"a/b/spec.toml": TOMLCodec,
		"spec.msgpack":  MsgPackCodec,
		"spec.cue":      CUECodec,
	}
	for path, want := range tests {
		got, err := CodecFor(path)
		if err != nil {
			t.Errorf("CodecFor(%q) failed: %v", path, err)
			continue
		}
		if got != want {
			t.Errorf("CodecFor(%q) = %T, want %T", path, got, want)
		}
	}

	for _, path := range []string{"spec", "spec.xml"} {
		if _, err := CodecFor(path); !errors.Is(err, ErrUnknownCodec) {
			t.Errorf("CodecFor(%q): expected ErrUnknownCodec, got %v", path, err)
		}
	}
}

func TestLoadQuerySpec(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "papers.yaml")
		content := `from: papers
filters:
  - between: {column: year, value: [2000, 2020]}
  - in: {column: college, values: [CAS]}
  - eq: {column: year, value: 2020}
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		spec, err := LoadQuerySpec(path)
		if err != nil {
			t.Fatalf("LoadQuerySpec() failed: %v", err)
		}
		q, err := spec.Build(nil)
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		want := "WHERE year BETWEEN 2000 AND 2020 AND college IN ('CAS') AND year = 2020"
		if q.WhereSQL() != want {
			t.Errorf("expected %q, got %q", want, q.WhereSQL())
		}
	})

	t.Run("cue", func(t *testing.T) {
		path := filepath.Join(dir, "papers.cue")
		content := `#range: [2000.0, 2020.0]

from: "papers"
filters: [
	{between: {column: "year", value: #range}},
	{ilike: {column: "title", value: "duck"}},
]
limit: 5
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		spec, err := LoadQuerySpec(path)
		if err != nil {
			t.Fatalf("LoadQuerySpec() failed: %v", err)
		}
		if spec.Limit != 5 {
			t.Errorf("expected limit 5, got %d", spec.Limit)
		}
		q, err := spec.Build(nil)
		if err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
		want := "WHERE year BETWEEN 2000 AND 2020 AND title ILIKE '%duck%'"
		if q.WhereSQL() != want {
			t.Errorf("expected %q, got %q", want, q.WhereSQL())
		}
	})

	t.Run("cue not concrete", func(t *testing.T) {
		path := filepath.Join(dir, "open.cue")
		if err := os.WriteFile(path, []byte("from: string\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadQuerySpec(path); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("expected ErrInvalidSpec, got %v", err)
		}
	})

	t.Run("invalid spec", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		if err := os.WriteFile(path, []byte(`{"from": "papers", "filters": [{}]}`), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadQuerySpec(path); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("expected ErrInvalidSpec, got %v", err)
		}
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		if err := os.WriteFile(path, []byte(`{"from": `), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadQuerySpec(path); !errors.Is(err, ErrInvalidSpec) {
			t.Errorf("expected ErrInvalidSpec, got %v", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadQuerySpec(filepath.Join(dir, "nope.json")); err == nil {
			t.Error("expected error")
		}
	})
}
