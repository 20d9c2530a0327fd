// Package scanner reads database rows into column maps or into structs planned
// from sentinel metadata.
package scanner

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/zoobzio/sentinel"
)

// ColScanner is the interface for database row scanning.
// Satisfied by sqlx.Rows and other database libraries.
type ColScanner interface {
	Columns() ([]string, error)
	Scan(dest ...any) error
	Err() error
}

// Scanner scans rows into structs, matching columns to fields by db tag.
type Scanner struct {
	byColumn map[string]*scanFieldPlan
	spec     sentinel.Metadata
}

// scanFieldPlan describes where a single column lands in the target struct.
type scanFieldPlan struct {
	fieldName string
	column    string
	typ       reflect.Type
}

// New creates a Scanner from sentinel metadata.
// Fields without a db tag, or tagged "-", are not scanned.
func New(metadata sentinel.Metadata) (*Scanner, error) {
	s := &Scanner{
		spec:     metadata,
		byColumn: make(map[string]*scanFieldPlan),
	}

	for _, field := range metadata.Fields {
		dbTag, hasDB := field.Tags["db"]
		if !hasDB || dbTag == "" || dbTag == "-" {
			continue
		}

		if existing, ok := s.byColumn[dbTag]; ok {
			return nil, fmt.Errorf("column %q maps to multiple fields: %s and %s",
				dbTag, existing.fieldName, field.Name)
		}

		s.byColumn[dbTag] = &scanFieldPlan{
			fieldName: field.Name,
			column:    dbTag,
			typ:       field.ReflectType,
		}
	}

	return s, nil
}

// Columns returns the number of planned columns.
func (s *Scanner) Columns() int {
	return len(s.byColumn)
}

// ScanAll reads all rows into values of T, which must be the struct type the
// Scanner was planned from. Columns without a matching field are discarded.
// The next function should return true while there are more rows (typically rows.Next).
func ScanAll[T any](s *Scanner, cs ColScanner, next func() bool) ([]T, error) {
	cols, err := cs.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns: %w", err)
	}

	plans := make([]*scanFieldPlan, len(cols))
	for i, col := range cols {
		plans[i] = s.byColumn[col]
	}

	var out []T
	for next() {
		dests := makeDests(len(cols))
		if err := cs.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		var record T
		rv := reflect.ValueOf(&record).Elem()
		for i, plan := range plans {
			if plan == nil {
				continue
			}
			field := rv.FieldByName(plan.fieldName)
			if !field.IsValid() || !field.CanSet() {
				continue
			}
			if err := assign(field, *(dests[i].(*any))); err != nil {
				return nil, fmt.Errorf("column %q: %w", plan.column, err)
			}
		}
		out = append(out, record)
	}

	if err := cs.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return out, nil
}

// ScanMaps reads all rows into column-name keyed maps with normalized values.
func ScanMaps(cs ColScanner, next func() bool) ([]map[string]any, error) {
	cols, err := cs.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns: %w", err)
	}

	var out []map[string]any
	for next() {
		dests := makeDests(len(cols))
		if err := cs.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = Normalize(*(dests[i].(*any)))
		}
		out = append(out, row)
	}

	if err := cs.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return out, nil
}

// ScanColumn reads the first column of every row.
func ScanColumn(cs ColScanner, next func() bool) ([]any, error) {
	cols, err := cs.Columns()
	if err != nil {
		return nil, fmt.Errorf("getting columns: %w", err)
	}
	if len(cols) == 0 {
		return nil, nil
	}

	var out []any
	for next() {
		dests := makeDests(len(cols))
		if err := cs.Scan(dests...); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, Normalize(*(dests[0].(*any))))
	}

	if err := cs.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return out, nil
}

// Normalize converts driver values into plain Go values: text arrives as
// []byte from some drivers and big integers as *big.Int.
func Normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case *big.Int:
		if x != nil && x.IsInt64() {
			return x.Int64()
		}
		if x != nil {
			return x.String()
		}
		return nil
	default:
		return v
	}
}

// Convert converts a scanned value into T using the same rules as struct fields.
// A nil value yields the zero T and false.
func Convert[T any](v any) (T, bool, error) {
	var out T
	if v == nil {
		return out, false, nil
	}
	if err := assign(reflect.ValueOf(&out).Elem(), v); err != nil {
		return out, false, err
	}
	return out, true, nil
}

func makeDests(n int) []any {
	dests := make([]any, n)
	for i := range dests {
		dests[i] = new(any)
	}
	return dests
}

var timeType = reflect.TypeFor[time.Time]()

// assign stores v into field, converting between the common driver
// representations. NULL leaves the field at its zero value.
func assign(field reflect.Value, v any) error {
	v = Normalize(v)
	if v == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	if field.Kind() == reflect.Pointer {
		elem := reflect.New(field.Type().Elem())
		if err := assign(elem.Elem(), v); err != nil {
			return err
		}
		field.Set(elem)
		return nil
	}

	if field.Kind() == reflect.Interface {
		field.Set(reflect.ValueOf(v))
		return nil
	}

	src := reflect.ValueOf(v)
	if src.Type().AssignableTo(field.Type()) {
		field.Set(src)
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(fmt.Sprint(v))
		return nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if src.CanInt() {
			field.SetInt(src.Int())
			return nil
		}
		n := 0.0
		if src.CanFloat() {
			n = src.Float()
		} else {
			parsed, err := strconv.ParseFloat(fmt.Sprint(v), 64)
			if err != nil {
				return fmt.Errorf("cannot convert %T to %s", v, field.Type())
			}
			n = parsed
		}
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return fmt.Errorf("cannot convert %v to %s without losing its fraction", v, field.Type())
		}
		field.SetInt(int64(n))
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if src.CanUint() {
			field.SetUint(src.Uint())
			return nil
		}
		if src.CanInt() && src.Int() >= 0 {
			field.SetUint(uint64(src.Int()))
			return nil
		}
		n, err := strconv.ParseUint(fmt.Sprint(v), 10, 64)
		if err != nil {
			return fmt.Errorf("cannot convert %T to %s", v, field.Type())
		}
		field.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		if src.CanFloat() {
			field.SetFloat(src.Float())
			return nil
		}
		if src.CanInt() {
			field.SetFloat(float64(src.Int()))
			return nil
		}
		if d, ok := v.(interface{ Float64() float64 }); ok {
			field.SetFloat(d.Float64())
			return nil
		}
		n, err := strconv.ParseFloat(fmt.Sprint(v), 64)
		if err != nil {
			return fmt.Errorf("cannot convert %T to %s", v, field.Type())
		}
		field.SetFloat(n)
		return nil
	case reflect.Bool:
		switch b := v.(type) {
		case int64:
			field.SetBool(b != 0)
			return nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return fmt.Errorf("cannot convert %q to bool", b)
			}
			field.SetBool(parsed)
			return nil
		}
	}

	if field.Type() == timeType {
		if s, ok := v.(string); ok {
			for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"} {
				if ts, err := time.Parse(layout, s); err == nil {
					field.Set(reflect.ValueOf(ts))
					return nil
				}
			}
		}
	}

	if src.Type().ConvertibleTo(field.Type()) {
		field.Set(src.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot convert %T to %s", v, field.Type())
}
