package tidyduck

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/capitan"
)

// loader executes a rendered statement and produces a handle's data.
type loader[T any] func(ctx context.Context, e *Engine, sql string) (T, error)

// live is the state shared by every query handle.
//
// The statement text is re-rendered from the builder on every Refresh, so a
// handle always reflects the filter values current at the time it runs.
// A Refresh cancels the one in flight; the generation counter makes sure a
// result that arrives late is dropped even if the driver ignores cancellation.
type live[T any] struct {
	mu sync.RWMutex

	id     string
	op     string
	table  string
	engine *Engine
	source func() string
	load   loader[T]

	data      T
	loading   bool
	err       error
	queryTime time.Duration
	sql       string

	gen    uint64
	cancel context.CancelFunc
}

func (l *live[T]) init(q *Query, op string, source func() string, initial T, load loader[T]) {
	l.id = uuid.NewString()
	l.op = op
	l.table = q.table
	l.engine = q.engine
	l.source = source
	l.load = load
	l.data = initial
}

// Refresh renders the statement and executes it, replacing the handle's data on
// success. On failure the previous data is kept and the error is exposed by Err.
// It returns ErrSuperseded when a newer Refresh started before this one finished.
func (l *live[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.gen++
	gen := l.gen
	l.mu.Unlock()

	// Filters are read only after the generation is taken.
	sql := l.source()

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.superseded(ctx, sql)
		return ErrSuperseded
	}
	l.sql = sql

	if l.engine == nil {
		l.loading = false
		l.err = ErrNoEngine
		l.mu.Unlock()
		return ErrNoEngine
	}

	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.loading = true
	l.mu.Unlock()
	defer cancel()

	start := time.Now()
	data, err := l.load(runCtx, l.engine, sql)
	elapsed := time.Since(start)

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		l.superseded(ctx, sql)
		return ErrSuperseded
	}
	defer l.mu.Unlock()

	l.cancel = nil
	l.loading = false
	l.queryTime = elapsed
	if err != nil {
		l.err = err
		return err
	}
	l.err = nil
	l.data = data
	return nil
}

func (l *live[T]) superseded(ctx context.Context, sql string) {
	capitan.Debug(ctx, RefreshSuperseded,
		HandleKey.Field(l.id),
		OperationKey.Field(l.op),
		SQLKey.Field(sql),
	)
}

// Loading reports whether a refresh is in flight.
func (l *live[T]) Loading() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loading
}

// Err returns the error of the latest completed refresh, or nil.
func (l *live[T]) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// QueryTime returns how long the latest completed refresh took.
func (l *live[T]) QueryTime() time.Duration {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.queryTime
}

// SQL returns the statement text of the latest refresh.
func (l *live[T]) SQL() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sql
}

// ID identifies the handle in events.
func (l *live[T]) ID() string {
	return l.id
}

// Operation returns the operation label used in events and errors.
func (l *live[T]) Operation() string {
	return l.op
}

func (l *live[T]) get() T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.data
}

// Rows is a live result set.
type Rows[T any] struct {
	live[[]T]
}

// Rows returns the rows of the latest successful refresh.
func (r *Rows[T]) Rows() []T {
	return r.get()
}

// Value is a live scalar result. Until the first successful refresh, and
// whenever the database returns NULL, it holds the default value.
type Value[T any] struct {
	live[T]
}

// Value returns the current value.
func (v *Value[T]) Value() T {
	return v.get()
}

// Column is a live list of the values of a single column.
type Column[T any] struct {
	live[[]T]
}

// Items returns the values of the latest successful refresh.
func (c *Column[T]) Items() []T {
	return c.get()
}

func newRows[T any](q *Query, op string, source func() string, load loader[[]T]) *Rows[T] {
	h := &Rows[T]{}
	h.init(q, op, source, nil, load)
	return h
}

func newValue[T any](q *Query, op string, source func() string, def T, load loader[T]) *Value[T] {
	h := &Value[T]{}
	h.init(q, op, source, def, load)
	return h
}

func newColumn[T any](q *Query, op string, source func() string, load loader[[]T]) *Column[T] {
	h := &Column[T]{}
	h.init(q, op, source, nil, load)
	return h
}
