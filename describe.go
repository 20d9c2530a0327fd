package tidyduck

// ColumnSummary is one row of a SUMMARIZE result.
// Min, Max and the statistics are rendered by DuckDB as text and are nil
// where a statistic does not apply to the column type.
type ColumnSummary struct {
	ColumnName     string   `db:"column_name" json:"column_name" yaml:"column_name"`
	ColumnType     string   `db:"column_type" json:"column_type" yaml:"column_type"`
	Min            *string  `db:"min" json:"min" yaml:"min"`
	Max            *string  `db:"max" json:"max" yaml:"max"`
	ApproxUnique   int64    `db:"approx_unique" json:"approx_unique" yaml:"approx_unique"`
	Avg            *string  `db:"avg" json:"avg" yaml:"avg"`
	Std            *string  `db:"std" json:"std" yaml:"std"`
	Q25            *string  `db:"q25" json:"q25" yaml:"q25"`
	Q50            *string  `db:"q50" json:"q50" yaml:"q50"`
	Q75            *string  `db:"q75" json:"q75" yaml:"q75"`
	Count          int64    `db:"count" json:"count" yaml:"count"`
	NullPercentage *float64 `db:"null_percentage" json:"null_percentage" yaml:"null_percentage"`
}

// ColumnInfo is one row of a DESCRIBE result.
type ColumnInfo struct {
	ColumnName string  `db:"column_name" json:"column_name" yaml:"column_name"`
	ColumnType string  `db:"column_type" json:"column_type" yaml:"column_type"`
	Null       *string `db:"null" json:"null,omitempty" yaml:"null,omitempty"`
}

// Nullable reports whether DESCRIBE marked the column as nullable.
// Columns of a derived relation are always reported nullable.
func (c ColumnInfo) Nullable() bool {
	return c.Null == nil || *c.Null != "NO"
}
