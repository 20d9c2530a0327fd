package tidyduck

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/zoobzio/capitan"
	"github.com/zoobzio/sentinel"
	"github.com/zoobzio/tidyduck/internal/scanner"
)

// Row is a result row keyed by column name.
type Row = map[string]any

// Engine executes rendered statements against a database.
//
// Any sqlx.QueryerContext works: *sqlx.DB, *sqlx.Tx, or a connection opened with
// Open. DuckDB is the intended engine; DESCRIBE and SUMMARIZE are DuckDB
// statements, everything else is plain SQL.
type Engine struct {
	db     sqlx.QueryerContext
	closer func() error
}

// New creates an engine over an existing connection. The engine does not own
// the connection; Close is a no-op.
func New(db sqlx.QueryerContext) (*Engine, error) {
	if db == nil {
		return nil, ErrNilDB
	}
	return &Engine{db: db}, nil
}

// Open connects with the named driver and returns an engine that owns the
// connection. The driver must be registered by the caller, e.g. by importing
// github.com/marcboeker/go-duckdb.
func Open(driver, dsn string) (*Engine, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, err
	}
	return &Engine{db: db, closer: db.Close}, nil
}

// Close releases the connection when the engine owns it.
func (e *Engine) Close() error {
	if e == nil || e.closer == nil {
		return nil
	}
	return e.closer()
}

// DB returns the underlying connection.
func (e *Engine) DB() sqlx.QueryerContext {
	return e.db
}

// From creates a query builder bound to this engine.
func (e *Engine) From(table string) *Query {
	return &Query{table: table, engine: e}
}

// QueryRows executes a statement and returns its rows as maps.
func (e *Engine) QueryRows(ctx context.Context, sql string) ([]Row, error) {
	return queryMaps(ctx, e, sql, "", "SQL")
}

func queryMaps(ctx context.Context, e *Engine, sql, table, op string) ([]Row, error) {
	return execRows(ctx, e, sql, table, op, func(rows *sqlx.Rows) ([]Row, error) {
		return scanner.ScanMaps(rows, rows.Next)
	})
}

func queryColumn(ctx context.Context, e *Engine, sql, table, op string) ([]any, error) {
	return execRows(ctx, e, sql, table, op, func(rows *sqlx.Rows) ([]any, error) {
		return scanner.ScanColumn(rows, rows.Next)
	})
}

// queryScalar returns the first column of the first row. A NULL result is
// returned as nil; a statement with no row at all is ErrNoRows.
func queryScalar(ctx context.Context, e *Engine, sql, table, op string) (any, error) {
	items, err := queryColumn(ctx, e, sql, table, op)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, newQueryError(op, sql, ErrNoRows)
	}
	return items[0], nil
}

func queryStructs[T any](ctx context.Context, e *Engine, sql, table, op string) ([]T, error) {
	sc, err := scannerFor[T]()
	if err != nil {
		return nil, newQueryError(op, sql, err)
	}
	return execRows(ctx, e, sql, table, op, func(rows *sqlx.Rows) ([]T, error) {
		return scanner.ScanAll[T](sc, rows, rows.Next)
	})
}

// execRows runs sql and hands the open rows to scan, emitting QueryStarted,
// then QueryCompleted or QueryFailed.
func execRows[T any](
	ctx context.Context,
	e *Engine,
	sql string,
	table string,
	op string,
	scan func(rows *sqlx.Rows) ([]T, error),
) ([]T, error) {
	capitan.Debug(ctx, QueryStarted,
		TableKey.Field(table),
		OperationKey.Field(op),
		SQLKey.Field(sql),
	)

	startTime := time.Now()

	rows, err := e.db.QueryxContext(ctx, sql)
	if err != nil {
		emitFailed(ctx, table, op, startTime, err)
		return nil, newQueryError(op, sql, err)
	}
	defer func() { _ = rows.Close() }()

	records, err := scan(rows)
	if err != nil {
		emitFailed(ctx, table, op, startTime, err)
		return nil, newQueryError(op, sql, err)
	}

	durationMs := time.Since(startTime).Milliseconds()
	capitan.Info(ctx, QueryCompleted,
		TableKey.Field(table),
		OperationKey.Field(op),
		DurationMsKey.Field(durationMs),
		RowsReturnedKey.Field(len(records)),
	)

	return records, nil
}

func emitFailed(ctx context.Context, table, op string, startTime time.Time, err error) {
	durationMs := time.Since(startTime).Milliseconds()
	capitan.Error(ctx, QueryFailed,
		TableKey.Field(table),
		OperationKey.Field(op),
		DurationMsKey.Field(durationMs),
		ErrorKey.Field(err.Error()),
	)
}

var scanners sync.Map // reflect.Type -> *scanner.Scanner

// scannerFor returns the scan plan for struct type T, built once per type.
func scannerFor[T any]() (*scanner.Scanner, error) {
	typ := reflect.TypeFor[T]()
	if sc, ok := scanners.Load(typ); ok {
		return sc.(*scanner.Scanner), nil
	}

	sentinel.Tag("db")
	sc, err := scanner.New(sentinel.Inspect[T]())
	if err != nil {
		return nil, err
	}
	actual, _ := scanners.LoadOrStore(typ, sc)
	return actual.(*scanner.Scanner), nil
}
