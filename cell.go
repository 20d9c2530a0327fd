package tidyduck

import (
	"context"
	"sync"
)

// Cell holds a value that filter slots read and that callers can watch.
//
//	years := tidyduck.NewCell([]float64{2000, 2020})
//	q := papers.Between("year", years.Get)
//	years.Set([]float64{2010, 2020}) // watchers of years refresh
type Cell[T any] struct {
	mu     sync.RWMutex
	value  T
	nextID int
	subs   map[int]func()
}

// NewCell creates a cell holding v.
func NewCell[T any](v T) *Cell[T] {
	return &Cell[T]{value: v, subs: make(map[int]func())}
}

// Get returns the current value. Its signature fits the builder's accessors.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Set stores v and notifies every subscriber.
func (c *Cell[T]) Set(v T) {
	c.mu.Lock()
	c.value = v
	subs := make([]func(), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.Unlock()

	for _, fn := range subs {
		fn()
	}
}

// Subscribe registers fn to run after every Set. The returned function
// removes the subscription.
func (c *Cell[T]) Subscribe(fn func()) (cancel func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Subscribable is anything that reports changes, such as a Cell.
type Subscribable interface {
	Subscribe(fn func()) (cancel func())
}

// Refresher is anything that can be refreshed: every live handle and Glimpse.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Watch refreshes r once, then again whenever one of cells changes, until ctx
// is done. Changes that arrive while a refresh is pending are coalesced; a
// refresh that starts while another is running supersedes it. Watch waits for
// running refreshes before returning ctx.Err().
func Watch(ctx context.Context, r Refresher, cells ...Subscribable) error {
	changed := make(chan struct{}, 1)
	notify := func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	for _, c := range cells {
		cancel := c.Subscribe(notify)
		defer cancel()
	}

	var wg sync.WaitGroup
	defer wg.Wait()

	refresh := func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = r.Refresh(ctx)
		}()
	}

	refresh()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-changed:
			refresh()
		}
	}
}
