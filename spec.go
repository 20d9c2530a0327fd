package tidyduck

import (
	"errors"
	"fmt"
)

// FilterSpec is a filter in serializable form, for queries read from files or
// passed in by other programs. Exactly one kind must be set.
//
// Example JSON:
//
//	{"between": {"column": "year", "value": [2000, 2020]}}
//	{"in": {"column": "college", "values": ["CAS", "CEMS"]}}
//	{"or": [
//	  {"ilike": {"column": "title", "value": "tidy"}},
//	  {"ilike": {"column": "author", "value": "tidy"}}
//	]}
type FilterSpec struct {
	Between *RangeSpec   `json:"between,omitempty" yaml:"between,omitempty" toml:"between,omitempty"`
	In      *ListSpec    `json:"in,omitempty" yaml:"in,omitempty" toml:"in,omitempty"`
	ILike   *MatchSpec   `json:"ilike,omitempty" yaml:"ilike,omitempty" toml:"ilike,omitempty"`
	Eq      *EqSpec      `json:"eq,omitempty" yaml:"eq,omitempty" toml:"eq,omitempty"`
	Raw     string       `json:"raw,omitempty" yaml:"raw,omitempty" toml:"raw,omitempty"` // used verbatim
	Or      []FilterSpec `json:"or,omitempty" yaml:"or,omitempty" toml:"or,omitempty"`
	And     []FilterSpec `json:"and,omitempty" yaml:"and,omitempty" toml:"and,omitempty"`
}

// RangeSpec is a BETWEEN filter. Full, when set, is the range that counts as unfiltered.
type RangeSpec struct {
	Column string    `json:"column" yaml:"column" toml:"column"`
	Value  []float64 `json:"value" yaml:"value" toml:"value"`
	Full   []float64 `json:"full,omitempty" yaml:"full,omitempty" toml:"full,omitempty"`
}

// ListSpec is an IN filter.
type ListSpec struct {
	Column string   `json:"column" yaml:"column" toml:"column"`
	Values []string `json:"values" yaml:"values" toml:"values"`
}

// MatchSpec is an ILIKE filter.
type MatchSpec struct {
	Column string `json:"column" yaml:"column" toml:"column"`
	Value  string `json:"value" yaml:"value" toml:"value"`
}

// EqSpec is an equality filter. A missing or null value imposes no constraint.
type EqSpec struct {
	Column string `json:"column" yaml:"column" toml:"column"`
	Value  any    `json:"value,omitempty" yaml:"value,omitempty" toml:"value,omitempty"`
}

// QuerySpec describes a relation and the filters applied to it.
//
// Example YAML:
//
//	from: papers
//	tables:
//	  papers: data/papers.parquet
//	filters:
//	  - between: {column: year, value: [2000, 2020]}
//	  - in: {column: college, values: [CAS]}
//	limit: 10
type QuerySpec struct {
	From    string            `json:"from" yaml:"from" toml:"from"`
	Tables  map[string]string `json:"tables,omitempty" yaml:"tables,omitempty" toml:"tables,omitempty"`
	Filters []FilterSpec      `json:"filters,omitempty" yaml:"filters,omitempty" toml:"filters,omitempty"`
	Limit   int               `json:"limit,omitempty" yaml:"limit,omitempty" toml:"limit,omitempty"`
}

// kinds returns the names of the filter kinds that are set.
func (f FilterSpec) kinds() []string {
	var set []string
	if f.Between != nil {
		set = append(set, "between")
	}
	if f.In != nil {
		set = append(set, "in")
	}
	if f.ILike != nil {
		set = append(set, "ilike")
	}
	if f.Eq != nil {
		set = append(set, "eq")
	}
	if f.Raw != "" {
		set = append(set, "raw")
	}
	if f.Or != nil {
		set = append(set, "or")
	}
	if f.And != nil {
		set = append(set, "and")
	}
	return set
}

// Validate checks that exactly one kind is set, that leaf filters name a
// column, and that groups hold valid filters.
func (f FilterSpec) Validate() error {
	kinds := f.kinds()
	switch len(kinds) {
	case 0:
		return fmt.Errorf("%w: filter sets no kind", ErrInvalidSpec)
	case 1:
	default:
		return fmt.Errorf("%w: filter sets several kinds %v", ErrInvalidSpec, kinds)
	}

	var column string
	switch {
	case f.Between != nil:
		column = f.Between.Column
	case f.In != nil:
		column = f.In.Column
	case f.ILike != nil:
		column = f.ILike.Column
	case f.Eq != nil:
		column = f.Eq.Column
	case f.Or != nil:
		return validateGroup("or", f.Or)
	case f.And != nil:
		return validateGroup("and", f.And)
	default:
		return nil
	}
	if column == "" {
		return fmt.Errorf("%w: %s filter has no column", ErrInvalidSpec, kinds[0])
	}
	return nil
}

func validateGroup(kind string, group []FilterSpec) error {
	for i, f := range group {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", kind, i, err)
		}
	}
	return nil
}

// Fragment renders the filter. Malformed values degrade to None the same way
// the fragment helpers do.
func (f FilterSpec) Fragment() Fragment {
	switch {
	case f.Between != nil:
		if f.Between.Full != nil {
			return Between(f.Between.Column, f.Between.Value, f.Between.Full)
		}
		return Between(f.Between.Column, f.Between.Value)
	case f.In != nil:
		return InStrings(f.In.Column, f.In.Values)
	case f.ILike != nil:
		return ILike(f.ILike.Column, f.ILike.Value)
	case f.Eq != nil:
		return Eq(f.Eq.Column, f.Eq.Value)
	case f.Raw != "":
		return Clause(f.Raw)
	case f.Or != nil:
		return Or(fragments(f.Or)...)
	case f.And != nil:
		return And(fragments(f.And)...)
	default:
		return None
	}
}

// Filter returns the filter as a builder slot.
func (f FilterSpec) Filter() Filter {
	return f.Fragment
}

func fragments(specs []FilterSpec) []Fragment {
	out := make([]Fragment, len(specs))
	for i, s := range specs {
		out[i] = s.Fragment()
	}
	return out
}

// Validate checks the relation name and every filter.
func (s QuerySpec) Validate() error {
	if s.From == "" {
		return ErrEmptyTable
	}
	var errs []error
	for i, f := range s.Filters {
		if err := f.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("filters[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// Build validates the spec and returns a builder bound to e (which may be
// nil), with From resolved through Tables.
func (s QuerySpec) Build(e *Engine) (*Query, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return BuildQuery(NewDatabase(e, s.Tables).From(s.From), s)
}

// BuildQuery appends the spec's filters to from, one slot per filter.
func BuildQuery(from *Query, s QuerySpec) (*Query, error) {
	q := from
	for i, f := range s.Filters {
		if err := f.Validate(); err != nil {
			return nil, fmt.Errorf("filters[%d]: %w", i, err)
		}
		q = q.Where(f.Filter())
	}
	return q, nil
}
