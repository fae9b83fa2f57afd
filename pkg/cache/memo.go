package cache

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/mro/pkg/c3"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/observability"
)

// Memo is the linearization cache of one hierarchy session. Entries are
// keyed by class within the session; a new hierarchy gets a new Memo.
//
// Each class is linearized at most once. Concurrent requests for a class
// that is still being computed wait for that computation instead of
// starting their own. Failures are memoized too, so asking again for an
// inconsistent class returns the same error without re-merging.
//
// A Memo is safe for concurrent use.
type Memo struct {
	graph   *hierarchy.Graph
	session string

	mu      sync.RWMutex
	entries map[hierarchy.ClassID]memoEntry
	closed  bool

	group    singleflight.Group
	computed atomic.Int64
}

type memoEntry struct {
	lin c3.Linearization
	err error
}

// NewMemo creates an empty memo for g.
func NewMemo(g *hierarchy.Graph, session string) *Memo {
	return &Memo{
		graph:   g,
		session: session,
		entries: make(map[hierarchy.ClassID]memoEntry),
	}
}

// Session returns the session id the memo was created for.
func (m *Memo) Session() string { return m.session }

// Graph returns the hierarchy the memo linearizes.
func (m *Memo) Graph() *hierarchy.Graph { return m.graph }

// GetOrCompute returns the memoized linearization of id, computing it (and
// any missing ancestors) on first request. The returned slice is a copy.
//
// Unknown classes fail with UNKNOWN_CLASS and are not memoized. A cancelled
// ctx aborts the computation without memoizing anything for the classes it
// interrupted.
func (m *Memo) GetOrCompute(ctx context.Context, id hierarchy.ClassID) (c3.Linearization, error) {
	lin, err := m.get(ctx, id)
	return slices.Clone(lin), err
}

// Source returns a [c3.Source] that reads through the memo with ctx.
func (m *Memo) Source(ctx context.Context) c3.Source {
	return c3.SourceFunc(func(id hierarchy.ClassID) (c3.Linearization, error) {
		return m.get(ctx, id)
	})
}

// Linearization implements [c3.Source] with a background context.
func (m *Memo) Linearization(id hierarchy.ClassID) (c3.Linearization, error) {
	return m.get(context.Background(), id)
}

// Peek returns the memoized result for id without computing anything.
// ok is false when id has not been computed yet; err is the memoized
// failure, if any.
func (m *Memo) Peek(id hierarchy.ClassID) (lin c3.Linearization, ok bool, err error) {
	e, ok := m.lookup(id)
	return slices.Clone(e.lin), ok, e.err
}

// Len returns the number of memoized classes, failures included.
func (m *Memo) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Computed returns how many merges the memo has run.
func (m *Memo) Computed() int64 { return m.computed.Load() }

// Close drops every entry. Later lookups fail with SESSION_CLOSED.
func (m *Memo) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.entries = nil
}

func (m *Memo) get(ctx context.Context, id hierarchy.ClassID) (c3.Linearization, error) {
	if err := m.checkOpen(); err != nil {
		return nil, err
	}
	if e, ok := m.lookup(id); ok {
		observability.Cache().OnCacheHit(ctx, "memo")
		return e.lin, e.err
	}
	if !m.graph.Has(id) {
		_, err := m.graph.BasesOf(id)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	observability.Cache().OnCacheMiss(ctx, "memo")

	for {
		e := m.compute(ctx, id)
		// The flight may have belonged to a caller whose context was
		// cancelled; ours is still live, so try again.
		if isContextErr(e.err) && ctx.Err() == nil {
			continue
		}
		return e.lin, e.err
	}
}

func (m *Memo) compute(ctx context.Context, id hierarchy.ClassID) memoEntry {
	v, _, _ := m.group.Do(string(id), func() (any, error) {
		// A caller that lost the race to the map may arrive after the
		// winner has already stored the entry and left the group.
		if e, ok := m.lookup(id); ok {
			return e, nil
		}

		hooks := observability.Engine()
		hooks.OnLinearizeStart(ctx, string(id))
		start := time.Now()

		lin, err := c3.Linearize(m.graph, id, m.Source(ctx))
		hooks.OnLinearizeComplete(ctx, string(id), len(lin), time.Since(start), err)

		e := memoEntry{lin: lin, err: err}
		if isContextErr(err) {
			return e, nil
		}
		m.computed.Add(1)
		m.store(id, e)
		return e, nil
	})

	return v.(memoEntry)
}

func (m *Memo) checkOpen() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return errs.New(errs.ErrCodeSessionClosed, "session %s is closed", m.session)
	}
	return nil
}

func (m *Memo) lookup(id hierarchy.ClassID) (memoEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *Memo) store(id hierarchy.ClassID, e memoEntry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.entries[id] = e
	observability.Cache().OnCacheSet(context.Background(), "memo", len(e.lin))
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
