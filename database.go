package tidyduck

import (
	"sort"
)

// Database maps short relation names to the files or tables behind them.
//
//	db := tidyduck.NewDatabase(engine, map[string]string{"papers": "data/papers.parquet"})
//	db.From("papers").RowsSQL() // SELECT * FROM 'data/papers.parquet'
type Database struct {
	engine *Engine
	tables map[string]string
}

// NewDatabase registers tables by name. Each path becomes a quoted relation
// literal, so DuckDB reads the file directly. The map is copied.
func NewDatabase(engine *Engine, tables map[string]string) *Database {
	copied := make(map[string]string, len(tables))
	for name, path := range tables {
		copied[name] = path
	}
	return &Database{engine: engine, tables: copied}
}

// From returns a builder bound to the database engine. A registered name is
// resolved to its quoted path; any other name is used verbatim.
func (d *Database) From(name string) *Query {
	return &Query{table: d.Relation(name), engine: d.engine}
}

// Relation returns the SQL relation for name.
func (d *Database) Relation(name string) string {
	if path, ok := d.tables[name]; ok {
		return Quote(path)
	}
	return name
}

// Tables returns the registered names in sorted order.
func (d *Database) Tables() []string {
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Engine returns the engine queries are bound to. It may be nil.
func (d *Database) Engine() *Engine {
	return d.engine
}
