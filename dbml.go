package tidyduck

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/zoobzio/dbml"
	"github.com/zoobzio/sentinel"
)

const dbmlSchema = "main"

// SchemaDBML builds a DBML project describing a relation from its DESCRIBE rows.
// File relations such as 'data/papers.parquet' are named after the file, so
// the table is main.papers.
func SchemaDBML(relation string, columns []ColumnInfo) (*dbml.Project, error) {
	name := TableName(relation)
	if name == "" {
		return nil, ErrEmptyTable
	}

	project := dbml.NewProject(name).
		WithDatabaseType("DuckDB")

	table := dbml.NewTable(name).
		WithSchema(dbmlSchema)

	for _, c := range columns {
		col := dbml.NewColumn(c.ColumnName, c.ColumnType)
		if c.Nullable() {
			col.WithNull()
		}
		table.AddColumn(col)
	}

	project.AddTable(table)

	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("generated DBML is invalid: %w", err)
	}

	return project, nil
}

// StructDBML builds a DBML project for the struct T that Fetch scans into.
// Column names come from db tags; types come from a type tag or are inferred
// from the Go type. Pointer fields are nullable.
func StructDBML[T any](relation string) (*dbml.Project, error) {
	name := TableName(relation)
	if name == "" {
		return nil, ErrEmptyTable
	}

	sentinel.Tag("db")
	sentinel.Tag("type")
	metadata := sentinel.Inspect[T]()

	project := dbml.NewProject(name).
		WithDatabaseType("DuckDB")

	table := dbml.NewTable(name).
		WithSchema(dbmlSchema)

	for _, field := range metadata.Fields {
		dbTag, ok := field.Tags["db"]
		if !ok || dbTag == "" || dbTag == "-" {
			continue
		}

		sqlType := field.Tags["type"]
		if sqlType == "" {
			sqlType = inferDuckType(field.Type)
		}

		col := dbml.NewColumn(dbTag, sqlType)
		if strings.HasPrefix(field.Type, "*") {
			col.WithNull()
		}
		table.AddColumn(col)
	}

	project.AddTable(table)

	if err := project.Validate(); err != nil {
		return nil, fmt.Errorf("generated DBML is invalid: %w", err)
	}

	return project, nil
}

// TableName derives an identifier from a relation: quotes are dropped, file
// relations lose their directory and extension, and any character that is not
// a letter, digit or underscore becomes an underscore.
func TableName(relation string) string {
	name := strings.TrimSpace(relation)
	name = strings.Trim(name, `'"`)
	if strings.ContainsAny(name, "/\\.") {
		name = filepath.Base(name)
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			return r
		}
		return '_'
	}, name)
}

// inferDuckType maps Go types to default DuckDB types.
func inferDuckType(goType string) string {
	goType = strings.TrimPrefix(goType, "*")

	if strings.HasPrefix(goType, "[]") {
		elementType := strings.TrimPrefix(goType, "[]")
		if elementType == "byte" || elementType == "uint8" {
			return "BLOB"
		}
		return inferDuckType(elementType) + "[]"
	}

	switch goType {
	case "string":
		return "VARCHAR"
	case "int", "int64":
		return "BIGINT"
	case "int32":
		return "INTEGER"
	case "int16":
		return "SMALLINT"
	case "int8":
		return "TINYINT"
	case "uint", "uint64":
		return "UBIGINT"
	case "uint32":
		return "UINTEGER"
	case "uint16":
		return "USMALLINT"
	case "uint8":
		return "UTINYINT"
	case "float32":
		return "FLOAT"
	case "float64":
		return "DOUBLE"
	case "bool":
		return "BOOLEAN"
	case "time.Time":
		return "TIMESTAMP"
	default:
		return "JSON"
	}
}
