package tidyduck

import (
	"errors"
	"fmt"
)

// Common errors returned by tidyduck.
var (
	// ErrNoEngine is reported by a handle whose query was never bound to an engine.
	ErrNoEngine = errors.New("tidyduck: query is not bound to an engine")

	// ErrNilDB is returned when an engine is created without a database connection.
	ErrNilDB = errors.New("tidyduck: nil database connection")

	// ErrNoRows is returned when a scalar query produces no row at all.
	ErrNoRows = errors.New("tidyduck: query returned no rows")

	// ErrSuperseded is returned by Refresh when a newer refresh replaced it.
	// The handle state is left to the newer refresh.
	ErrSuperseded = errors.New("tidyduck: refresh superseded")

	// ErrInvalidSpec is returned when a filter or query spec is malformed.
	ErrInvalidSpec = errors.New("tidyduck: invalid spec")

	// ErrUnknownCodec is returned when no codec matches a file extension or name.
	ErrUnknownCodec = errors.New("tidyduck: unknown codec")

	// ErrEmptyTable is returned when a spec names no table.
	ErrEmptyTable = errors.New("tidyduck: empty table name")
)

// QueryError wraps a failure raised while executing or scanning a statement.
// The driver error is preserved and reachable with errors.Is and errors.As.
type QueryError struct {
	Op  string // operation label, e.g. ROWS, COUNT, DISTINCT
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s query failed: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

func newQueryError(op, sql string, err error) error {
	return &QueryError{Op: op, SQL: sql, Err: err}
}
