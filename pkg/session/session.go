// Package session scopes one class hierarchy and everything derived from it.
//
// A [Session] owns an immutable [hierarchy.Graph], the [cache.Memo] of its
// linearizations and the member tables used for resolution. Nothing is
// shared between sessions, so independent hierarchies never interfere, and
// closing a session invalidates every linearization and resolution derived
// from it.
//
// # Usage
//
//	sess, err := session.New(decls, session.Options{Tables: tables})
//	if err != nil {
//	    return err // graph construction failed; see package diag
//	}
//	defer sess.Close()
//
//	lin, err := sess.Linearize(ctx, "D")
//	res, err := sess.Resolve(ctx, "D", "m")
//
// The HTTP server keeps sessions in a [Store] keyed by [Session.ID].
package session

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mro/pkg/c3"
	"github.com/matzehuels/mro/pkg/cache"
	errs "github.com/matzehuels/mro/pkg/errors"
	"github.com/matzehuels/mro/pkg/hierarchy"
	"github.com/matzehuels/mro/pkg/resolve"
)

// DefaultTTL is how long a stored session lives without being closed.
const DefaultTTL = time.Hour

// Options configures a session.
type Options struct {
	// ID overrides the generated session id.
	ID string
	// Tables are the member tables for resolution. May be nil.
	Tables resolve.Tables
	// Workers bounds concurrent linearizations per depth batch in
	// LinearizeAll. Zero means GOMAXPROCS.
	Workers int
	// TTL sets ExpiresAt. Zero means DefaultTTL.
	TTL time.Duration
	// Logger receives debug output. Nil means log.Default().
	Logger *log.Logger
}

// Session is one hierarchy with its linearization cache.
type Session struct {
	id        string
	graph     *hierarchy.Graph
	memo      *cache.Memo
	tables    resolve.Tables
	workers   int
	logger    *log.Logger
	createdAt time.Time
	expiresAt time.Time
	closed    atomic.Bool
}

// New builds the graph for decls and opens a session on it. Graph
// construction errors are returned unchanged.
func New(decls []hierarchy.ClassDecl, opts Options) (*Session, error) {
	g, err := hierarchy.Build(decls)
	if err != nil {
		return nil, err
	}
	return FromGraph(g, opts), nil
}

// FromGraph opens a session on an already built graph.
func FromGraph(g *hierarchy.Graph, opts Options) *Session {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	tables := opts.Tables
	if tables == nil {
		tables = resolve.Tables{}
	}

	now := time.Now()
	return &Session{
		id:        id,
		graph:     g,
		memo:      cache.NewMemo(g, id),
		tables:    tables,
		workers:   workers,
		logger:    logger.With("session", id),
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Graph returns the session's hierarchy.
func (s *Session) Graph() *hierarchy.Graph { return s.graph }

// Tables returns the member tables.
func (s *Session) Tables() resolve.Tables { return s.tables }

// Memo returns the linearization cache.
func (s *Session) Memo() *cache.Memo { return s.memo }

// CreatedAt returns when the session was opened.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// ExpiresAt returns when a store may discard the session.
func (s *Session) ExpiresAt() time.Time { return s.expiresAt }

// IsExpired reports whether the session is past its expiry.
func (s *Session) IsExpired() bool { return time.Now().After(s.expiresAt) }

// Closed reports whether Close has been called.
func (s *Session) Closed() bool { return s.closed.Load() }

// Linearize returns the memoized linearization of id.
func (s *Session) Linearize(ctx context.Context, id hierarchy.ClassID) (c3.Linearization, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return s.memo.GetOrCompute(ctx, id)
}

// DepthFirst returns the naive depth-first order of id for comparison.
func (s *Session) DepthFirst(id hierarchy.ClassID) (c3.Linearization, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return c3.DepthFirst(s.graph, id)
}

// Resolve finds the class that supplies member for id.
func (s *Session) Resolve(ctx context.Context, id hierarchy.ClassID, member string) (resolve.Resolution, error) {
	if err := s.checkOpen(); err != nil {
		return resolve.Resolution{}, err
	}
	return resolve.Resolve(ctx, s.memo.Source(ctx), id, member, s.tables)
}

// Super finds member after class after in the linearization of id.
func (s *Session) Super(ctx context.Context, id, after hierarchy.ClassID, member string) (resolve.Resolution, error) {
	if err := s.checkOpen(); err != nil {
		return resolve.Resolution{}, err
	}
	return resolve.Next(ctx, s.memo.Source(ctx), id, after, member, s.tables)
}

// Definers lists every class in the linearization of id that defines member.
func (s *Session) Definers(ctx context.Context, id hierarchy.ClassID, member string) ([]resolve.Resolution, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return resolve.Definers(s.memo.Source(ctx), id, member, s.tables)
}

// Close invalidates the session. Later calls fail with SESSION_CLOSED.
// Close is idempotent.
func (s *Session) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	s.memo.Close()
	s.logger.Debug("session closed")
	return nil
}

func (s *Session) checkOpen() error {
	if s.closed.Load() {
		return errs.New(errs.ErrCodeSessionClosed, "session %s is closed", s.id)
	}
	return nil
}
