package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/opscore/support-sim/internal/models"
)

type sessionEntry struct {
	session  models.TestSession
	cancel   context.CancelFunc
	finished time.Time
}

// SessionStore is the explicit registry of test runs, created once at
// process start and injected where needed. Sessions themselves are owned by
// exactly one orchestrator goroutine; only the registry map is shared.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]*sessionEntry
	now     func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		entries: make(map[string]*sessionEntry),
		now:     time.Now,
	}
}

// Register adds a running session with its cancellation hook.
func (s *SessionStore) Register(session models.TestSession, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.TestID] = &sessionEntry{session: session, cancel: cancel}
}

// Get returns a copy of the session, if known.
func (s *SessionStore) Get(testID string) (models.TestSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[testID]
	if !ok {
		return models.TestSession{}, false
	}
	return entry.session, true
}

// List returns all sessions ordered by start time.
func (s *SessionStore) List() []models.TestSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := make([]models.TestSession, 0, len(s.entries))
	for _, entry := range s.entries {
		sessions = append(sessions, entry.session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})
	return sessions
}

// UpdateProgress bumps the completed-conversation counter.
func (s *SessionStore) UpdateProgress(testID string, completed int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[testID]; ok {
		entry.session.Completed = completed
	}
}

// SetStatus transitions a session's lifecycle status.
func (s *SessionStore) SetStatus(testID string, status models.TestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[testID]; ok {
		entry.session.Status = status
		if status != models.TestStatusRunning {
			entry.finished = s.now()
		}
	}
}

// Cancel requests early termination of a running test. The orchestrator
// observes the cancellation between turns; in-flight collaborator calls are
// allowed to finish first.
func (s *SessionStore) Cancel(testID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[testID]
	if !ok || entry.cancel == nil {
		return false
	}
	entry.cancel()
	entry.session.Status = models.TestStatusCancelled
	entry.finished = s.now()
	return true
}

// Prune drops finished sessions older than maxAge and reports how many were
// removed. Running sessions are never touched.
func (s *SessionStore) Prune(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-maxAge)
	removed := 0
	for testID, entry := range s.entries {
		if entry.session.Status == models.TestStatusRunning || entry.finished.IsZero() {
			continue
		}
		if entry.finished.Before(cutoff) {
			delete(s.entries, testID)
			removed++
		}
	}
	return removed
}
