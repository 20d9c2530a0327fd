// Package tidyduck builds filtered SQL over DuckDB relations and keeps query
// results live.
//
// A Query holds filter slots: functions that read caller state and return a
// Fragment. Slots are evaluated every time SQL is rendered, so the WHERE
// clause always reflects the current state. A slot whose input is empty or
// degenerate yields None and drops out of the clause.
//
// # Quick Start
//
// Open an engine and register the files you want to query:
//
//	engine, err := tidyduck.Open("duckdb", "")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db := tidyduck.NewDatabase(engine, map[string]string{
//	    "papers": "data/papers.parquet",
//	})
//
// Bind filters to state held in cells:
//
//	search := tidyduck.NewCell("")
//	years := tidyduck.NewCell([]float64{2000, 2020})
//
//	papers := db.From("papers").
//	    Between("year", years.Get).
//	    ILike("title", search.Get)
//
// Terminal operations return handles. Refresh runs the statement; Watch
// refreshes whenever a cell changes:
//
//	count := papers.Count()
//	go tidyduck.Watch(ctx, count, search, years)
//
//	search.Set("duck")
//	// count.Value() follows once the refresh completes
//
// A refresh started while another is in flight cancels it. The older call
// returns ErrSuperseded and its result is dropped.
//
// # Events
//
// Every statement emits capitan events: QueryStarted, then QueryCompleted or
// QueryFailed. A dropped refresh emits RefreshSuperseded. The field keys in
// events.go carry the table, operation, statement and timing.
package tidyduck
