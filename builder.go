package tidyduck

import (
	"strings"
)

// Filter is a filter slot: a deferred read of caller state that yields a Fragment.
// Slots are invoked afresh every time the WHERE clause is derived; nothing is cached.
type Filter func() Fragment

// Query is an immutable query builder bound to a single table or relation.
//
// Every filter verb returns a new Query with one more slot; the receiver is never
// modified, so a Query can be shared freely between goroutines and used as the
// base of several independent chains.
//
//	papers := tidyduck.From(`'papers.parquet'`)
//
//	q := papers.
//	    Between("year", years.Get).
//	    In("college", colleges.Get).
//	    Where(func() tidyduck.Fragment {
//	        return tidyduck.Or(
//	            tidyduck.ILike("title", search.Get()),
//	            tidyduck.ILike("author", search.Get()),
//	        )
//	    })
//
//	q.WhereSQL() // WHERE year BETWEEN 2000 AND 2020 AND college IN ('CAS') AND ...
type Query struct {
	table   string
	filters []Filter
	engine  *Engine
}

// From creates a query builder for a table name or relation literal such as
// 'data.parquet'. The builder is unbound: it renders SQL but its terminal
// operations report ErrNoEngine until bound with Bind or created via Engine.From.
func From(table string) *Query {
	return &Query{table: table}
}

// Table returns the table or relation the query reads from.
func (q *Query) Table() string {
	return q.table
}

// Len returns the number of filter slots, active or not.
func (q *Query) Len() int {
	return len(q.filters)
}

// Engine returns the engine the query is bound to, or nil.
func (q *Query) Engine() *Engine {
	return q.engine
}

// Bind returns a copy of the query that executes against e.
func (q *Query) Bind(e *Engine) *Query {
	return &Query{table: q.table, filters: q.filters, engine: e}
}

// Between adds col BETWEEN lo AND hi. The slot is skipped when the range is not
// a pair or, if full is given, when it equals the full range.
func (q *Query) Between(col string, value func() []float64, full ...func() []float64) *Query {
	var fullFn func() []float64
	if len(full) > 0 {
		fullFn = full[0]
	}
	return q.add(func() Fragment {
		if value == nil {
			return None
		}
		if fullFn == nil {
			return Between(col, value())
		}
		return Between(col, value(), fullFn())
	})
}

// In adds col IN (...). The slot is skipped when the list is empty.
func (q *Query) In(col string, values func() []string) *Query {
	return q.add(func() Fragment {
		if values == nil {
			return None
		}
		return InStrings(col, values())
	})
}

// InAny is In for lists of mixed or non-string values.
func (q *Query) InAny(col string, values func() []any) *Query {
	return q.add(func() Fragment {
		if values == nil {
			return None
		}
		return In(col, values()...)
	})
}

// ILike adds col ILIKE '%term%'. The slot is skipped when the term is blank.
func (q *Query) ILike(col string, value func() string) *Query {
	return q.add(func() Fragment {
		if value == nil {
			return None
		}
		return ILike(col, value())
	})
}

// Eq adds col = value. The slot is skipped when the value is nil.
func (q *Query) Eq(col string, value func() any) *Query {
	return q.add(func() Fragment {
		if value == nil {
			return None
		}
		return Eq(col, value())
	})
}

// Where adds an arbitrary slot. Return None from it to skip the clause.
// This is how Or and And groups are injected as a single filter.
func (q *Query) Where(filter Filter) *Query {
	return q.add(filter)
}

// IsFiltered reports whether any slot currently yields a clause.
func (q *Query) IsFiltered() bool {
	return len(q.clauses()) > 0
}

// WhereSQL returns the current WHERE clause, or "" when no slot is active.
func (q *Query) WhereSQL() string {
	return q.where()
}

// Clauses returns the currently active clauses in chain order.
func (q *Query) Clauses() []string {
	return q.clauses()
}

// add returns a new Query with filter appended. The new slice never shares
// spare capacity with the receiver, so sibling chains can't overwrite each other.
func (q *Query) add(filter Filter) *Query {
	filters := make([]Filter, len(q.filters), len(q.filters)+1)
	copy(filters, q.filters)
	filters = append(filters, filter)
	return &Query{table: q.table, filters: filters, engine: q.engine}
}

// clauses evaluates every slot and drops None results.
func (q *Query) clauses() []string {
	out := make([]string, 0, len(q.filters))
	for _, f := range q.filters {
		if f == nil {
			continue
		}
		if frag := f(); !frag.IsNone() {
			out = append(out, frag.SQL())
		}
	}
	return out
}

// where joins the active clauses and extra with AND. extra holds raw clauses
// that are always included, such as the not-null guards of Distinct, Min and Max.
func (q *Query) where(extra ...string) string {
	all := append(q.clauses(), extra...)
	if len(all) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(all, " AND ")
}
