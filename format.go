package tidyduck

import (
	"fmt"
	"io"
	"math/big"
	"regexp"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var typeLabels = map[string]string{
	"INTEGER":                  "int",
	"BIGINT":                   "int",
	"SMALLINT":                 "int",
	"TINYINT":                  "int",
	"DOUBLE":                   "dbl",
	"FLOAT":                    "dbl",
	"DECIMAL":                  "dbl",
	"VARCHAR":                  "chr",
	"TEXT":                     "chr",
	"BOOLEAN":                  "lgl",
	"DATE":                     "date",
	"TIMESTAMP":                "dttm",
	"TIMESTAMP WITH TIME ZONE": "dttm",
}

var numericType = regexp.MustCompile(`(?i)^(INTEGER|BIGINT|SMALLINT|TINYINT|DOUBLE|FLOAT|DECIMAL|HUGEINT|UBIGINT|UINTEGER|USMALLINT|UTINYINT)`)

// TypeLabel maps a DuckDB column type to a short label in the style of R's
// glimpse: int, dbl, chr, lgl, date, dttm. Precision suffixes are ignored, so
// DECIMAL(9,2) is dbl. Unknown types are lowercased.
func TypeLabel(t string) string {
	base := strings.ToUpper(strings.TrimSpace(t))
	if i := strings.IndexByte(base, '('); i > 0 {
		base = strings.TrimSpace(base[:i])
	}
	if label, ok := typeLabels[base]; ok {
		return label
	}
	return strings.ToLower(t)
}

// IsNumericType reports whether a DuckDB column type is numeric.
func IsNumericType(t string) bool {
	return numericType.MatchString(t)
}

// FormatSample renders a sample value: NA for NULL, text in double quotes,
// everything else in its plain form.
func FormatSample(v any) string {
	if b, ok := v.(*big.Int); ok && b != nil {
		return b.String()
	}
	v, ok := deref(v)
	if !ok {
		return "NA"
	}
	switch x := v.(type) {
	case string:
		return `"` + x + `"`
	case []byte:
		return `"` + string(x) + `"`
	case float64:
		return formatNumber(x)
	case float32:
		return formatNumber(float64(x))
	default:
		return fmt.Sprint(x)
	}
}

var numberPrinter = message.NewPrinter(language.English)

// FormatNum renders a number with thousands separators and at most three
// fraction digits. A nil value, typically a count that has not loaded yet,
// renders as an ellipsis.
func FormatNum(v any) string {
	v, ok := deref(v)
	if !ok {
		return "…"
	}
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return numberPrinter.Sprint(number.Decimal(v, number.MaxFractionDigits(3)))
	default:
		return fmt.Sprint(v)
	}
}

// WriteGlimpse writes a glimpse in the layout of R's glimpse():
//
//	Rows: 1,204
//	Columns: 3
//	$ title  <chr> "Tidy Data", "Dplyr", ...
func WriteGlimpse(w io.Writer, nrows int64, cols []GlimpseColumn) error {
	if _, err := fmt.Fprintf(w, "Rows: %s\nColumns: %s\n", FormatNum(nrows), FormatNum(len(cols))); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, c := range cols {
		samples := make([]string, len(c.Sample))
		for i, s := range c.Sample {
			samples[i] = FormatSample(s)
		}
		fmt.Fprintf(tw, "$ %s\t<%s>\t%s\n", c.Name, TypeLabel(c.Type), strings.Join(samples, ", "))
	}
	return tw.Flush()
}
