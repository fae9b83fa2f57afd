package session

import (
	"context"
	"sync"
	"time"

	errs "github.com/matzehuels/mro/pkg/errors"
)

// Store keeps open sessions by id.
type Store interface {
	// Get returns the session, or nil if it does not exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)
	// Set stores a session under its id.
	Set(ctx context.Context, sess *Session) error
	// Delete closes and removes a session. Deleting a missing id is not an
	// error.
	Delete(ctx context.Context, id string) error
	// Cleanup closes and removes expired sessions.
	Cleanup(ctx context.Context) (int, error)
	// Close closes every session.
	Close() error
}

// MemoryStore is an in-process Store. Sessions hold live memos, so they
// cannot be shared between server instances.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Get returns the session with id. Expired sessions are closed and removed.
func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	sess, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if sess.IsExpired() || sess.Closed() {
		_ = m.Delete(ctx, id)
		return nil, nil
	}
	return sess, nil
}

// Set stores sess.
func (m *MemoryStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil {
		return errs.New(errs.ErrCodeInvalidInput, "nil session")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.sessions[sess.ID()]; ok && old != sess {
		_ = old.Close()
	}
	m.sessions[sess.ID()] = sess
	return nil
}

// Delete closes and removes the session with id.
func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		return sess.Close()
	}
	return nil
}

// Cleanup closes and removes expired sessions and reports how many.
func (m *MemoryStore) Cleanup(ctx context.Context) (int, error) {
	m.mu.Lock()
	var expired []*Session
	for id, sess := range m.sessions {
		if sess.IsExpired() || sess.Closed() {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		_ = sess.Close()
	}
	return len(expired), nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes and removes every session.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, sess := range sessions {
		_ = sess.Close()
	}
	return nil
}

// RunJanitor calls Cleanup every interval until ctx is done.
func RunJanitor(ctx context.Context, store Store, interval time.Duration, onCleanup func(n int)) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Cleanup(ctx)
			if err == nil && n > 0 && onCleanup != nil {
				onCleanup(n)
			}
		}
	}
}

var _ Store = (*MemoryStore)(nil)
