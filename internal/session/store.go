package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/JonMunkholm/exposure/internal/category"
)

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Editor is the server-side state of one browser session.
type Editor struct {
	mu sync.Mutex

	id            string
	state         State
	table         []category.Row
	exposureInput []category.Entry
	calculated    bool
	touched       time.Time
}

// Store is an in-memory map of session ID to editor. Idle editors are removed
// by Sweep once they are older than the TTL.
type Store struct {
	mu      sync.RWMutex
	editors map[string]*Editor
	ttl     time.Duration
	now     func() time.Time
}

// NewStore creates an empty store whose editors expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		editors: make(map[string]*Editor),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the live editor for id, or nil.
func (s *Store) get(id string) *Editor {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.editors[id]
	if !ok || s.expired(e) {
		return nil
	}
	return e
}

// getOrCreate returns the editor for id, creating an uninitialized one when
// it does not exist or has expired.
func (s *Store) getOrCreate(id string) *Editor {
	if e := s.get(id); e != nil {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.editors[id]; ok && !s.expired(e) {
		return e
	}
	e := &Editor{id: id, state: Uninitialized, touched: s.now()}
	s.editors[id] = e
	return e
}

// touch records activity on e. The caller holds e.mu.
func (s *Store) touch(e *Editor) {
	e.touched = s.now()
}

func (s *Store) expired(e *Editor) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return s.now().Sub(e.touched) > s.ttl
}

// Delete removes the editor for id.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.editors, id)
	s.mu.Unlock()
}

// Len returns the number of editors held, expired or not.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.editors)
}

// Sweep removes expired editors and returns how many were removed.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.editors {
		if s.expired(e) {
			delete(s.editors, id)
			removed++
		}
	}
	return removed
}

// StartSweeper removes expired editors every interval until ctx is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started", "ttl", s.ttl, "interval", interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if removed := s.Sweep(); removed > 0 {
				slog.Info("expired sessions removed",
					"removed", removed,
					"remaining", s.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}
