package tidyduck

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
)

// Fragment is a SQL boolean expression, or None when a filter imposes no constraint.
// None is distinct from an empty clause: it is dropped before clauses are joined.
type Fragment struct {
	sql string
	ok  bool
}

// None is the "no constraint" fragment. It is also the zero value.
var None = Fragment{}

// Clause wraps raw SQL text as a fragment.
// The text is used verbatim; callers are responsible for escaping any literals in it.
func Clause(sql string) Fragment {
	return Fragment{sql: sql, ok: true}
}

// IsNone reports whether the fragment imposes no constraint.
func (f Fragment) IsNone() bool {
	return !f.ok
}

// SQL returns the clause text, or "" for None.
func (f Fragment) SQL() string {
	return f.sql
}

// String implements fmt.Stringer. None renders as "<none>" so it can't be
// mistaken for an empty clause in logs.
func (f Fragment) String() string {
	if !f.ok {
		return "<none>"
	}
	return f.sql
}

// Quote renders s as a single-quoted SQL string literal, doubling every embedded quote.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// ILike builds col ILIKE '%term%' from the trimmed value.
// Returns None when the value is empty or whitespace only.
func ILike(col, value string) Fragment {
	term := strings.TrimSpace(value)
	if term == "" {
		return None
	}
	return Clause(fmt.Sprintf("%s ILIKE '%%%s%%'", col, strings.ReplaceAll(term, "'", "''")))
}

// Between builds col BETWEEN lo AND hi from a two-element range.
//
// Returns None when the range does not have exactly two elements, or when it
// equals the optional full range (the filter would cover the whole domain).
// A degenerate range where lo == hi collapses to col = lo. A NaN or infinite
// bound has no SQL literal, so it also gives None.
func Between(col string, value []float64, full ...[]float64) Fragment {
	if len(value) != 2 || !finite(value[0]) || !finite(value[1]) {
		return None
	}
	if len(full) > 0 && len(full[0]) == 2 && value[0] == full[0][0] && value[1] == full[0][1] {
		return None
	}
	if value[0] == value[1] {
		return Clause(fmt.Sprintf("%s = %s", col, formatNumber(value[0])))
	}
	return Clause(fmt.Sprintf("%s BETWEEN %s AND %s", col, formatNumber(value[0]), formatNumber(value[1])))
}

// In builds col IN ('a', 'b', ...) preserving input order.
// Every value is rendered as a quoted string literal. Returns None for an empty list.
func In(col string, values ...any) Fragment {
	if len(values) == 0 {
		return None
	}
	list := make([]string, len(values))
	for i, v := range values {
		list[i] = Quote(literalText(v))
	}
	return Clause(fmt.Sprintf("%s IN (%s)", col, strings.Join(list, ", ")))
}

// InStrings is In for a string slice.
func InStrings(col string, values []string) Fragment {
	if len(values) == 0 {
		return None
	}
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return In(col, vals...)
}

// Eq builds col = value. Text is quoted and escaped, numbers and booleans are
// rendered bare. Returns None when value is nil, a nil pointer, or a
// non-finite float.
func Eq(col string, value any) Fragment {
	v, ok := deref(value)
	if !ok {
		return None
	}
	if n, ok := bigText(value); ok {
		if n == "" {
			return None
		}
		return Clause(fmt.Sprintf("%s = %s", col, n))
	}
	if x, ok := value.(fmt.Stringer); ok {
		return Clause(fmt.Sprintf("%s = %s", col, Quote(x.String())))
	}
	switch x := v.(type) {
	case string:
		return Clause(fmt.Sprintf("%s = %s", col, Quote(x)))
	case fmt.Stringer:
		return Clause(fmt.Sprintf("%s = %s", col, Quote(x.String())))
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		if !finite(rv.Float()) {
			return None
		}
		return Clause(fmt.Sprintf("%s = %s", col, formatNumber(rv.Float())))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Clause(fmt.Sprintf("%s = %d", col, rv.Int()))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Clause(fmt.Sprintf("%s = %d", col, rv.Uint()))
	case reflect.Bool:
		return Clause(fmt.Sprintf("%s = %t", col, rv.Bool()))
	case reflect.String:
		return Clause(fmt.Sprintf("%s = %s", col, Quote(rv.String())))
	default:
		return Clause(fmt.Sprintf("%s = %s", col, Quote(fmt.Sprint(v))))
	}
}

// Or joins the non-None fragments with OR.
// Zero survivors give None, one is returned unwrapped, more are parenthesized.
func Or(frags ...Fragment) Fragment {
	return combine(" OR ", frags)
}

// And joins the non-None fragments with AND, with the same policy as Or.
func And(frags ...Fragment) Fragment {
	return combine(" AND ", frags)
}

func combine(sep string, frags []Fragment) Fragment {
	valid := active(frags)
	switch len(valid) {
	case 0:
		return None
	case 1:
		return Clause(valid[0])
	default:
		return Clause("(" + strings.Join(valid, sep) + ")")
	}
}

// active returns the SQL of every non-None fragment, in order.
func active(frags []Fragment) []string {
	out := make([]string, 0, len(frags))
	for _, f := range frags {
		if f.ok {
			out = append(out, f.sql)
		}
	}
	return out
}

// formatNumber renders a float the shortest way that round-trips, so whole
// numbers carry no decimal point.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// literalText renders a value as the text that goes inside a quoted literal.
func literalText(value any) string {
	v, ok := deref(value)
	if !ok {
		return ""
	}
	if n, ok := bigText(value); ok {
		return n
	}
	if x, ok := value.(fmt.Stringer); ok {
		return x.String()
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	default:
		return fmt.Sprint(x)
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// bigText renders arbitrary-precision numbers as plain decimal text, and
// reports false for anything else. Their String methods have pointer
// receivers, so they must be matched before deref. An infinite *big.Float has
// no literal and renders as "".
func bigText(v any) (string, bool) {
	switch x := v.(type) {
	case *big.Int:
		return x.String(), true
	case big.Int:
		return x.String(), true
	case *big.Float:
		if x.IsInf() {
			return "", true
		}
		return x.Text('f', -1), true
	}
	return "", false
}

// deref unwraps pointers and reports false for nil or a nil pointer.
func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	return rv.Interface(), true
}
