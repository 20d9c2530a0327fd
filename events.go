package tidyduck

import "github.com/zoobzio/capitan"

// Query execution signals.
var (
	// QueryStarted is emitted when a statement is handed to the database.
	// Fields: TableKey, OperationKey, SQLKey.
	QueryStarted = capitan.NewSignal("duck.query.started", "Query execution started")

	// QueryCompleted is emitted when a statement completes and its rows are scanned.
	// Fields: TableKey, OperationKey, DurationMsKey, RowsReturnedKey.
	QueryCompleted = capitan.NewSignal("duck.query.completed", "Query completed successfully")

	// QueryFailed is emitted when execution or scanning fails.
	// Fields: TableKey, OperationKey, DurationMsKey, ErrorKey.
	QueryFailed = capitan.NewSignal("duck.query.failed", "Query failed with error")

	// RefreshSuperseded is emitted when a live handle drops the result of a
	// refresh because a newer one started.
	// Fields: HandleKey, OperationKey, SQLKey.
	RefreshSuperseded = capitan.NewSignal("duck.refresh.superseded", "Live query refresh superseded")
)

// Event field keys for query operations.
var (
	// TableKey identifies the table or relation being queried.
	TableKey = capitan.NewStringKey("table")

	// HandleKey identifies the live handle that emitted a refresh event.
	HandleKey = capitan.NewStringKey("handle")

	// OperationKey identifies the terminal operation (ROWS, HEAD, COUNT, DISTINCT, ...).
	OperationKey = capitan.NewStringKey("operation")

	// SQLKey contains the rendered statement.
	SQLKey = capitan.NewStringKey("sql")

	// DurationMsKey contains the execution duration in milliseconds.
	DurationMsKey = capitan.NewInt64Key("duration_ms")

	// RowsReturnedKey contains the number of rows scanned.
	RowsReturnedKey = capitan.NewIntKey("rows_returned")

	// ErrorKey contains the error message when a query fails.
	ErrorKey = capitan.NewStringKey("error")
)
