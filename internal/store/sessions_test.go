package store

import (
	"context"
	"testing"
	"time"

	"github.com/opscore/support-sim/internal/models"
)

func TestSessionStore_RegisterAndGet(t *testing.T) {
	s := NewSessionStore()

	s.Register(models.TestSession{TestID: "t1", Status: models.TestStatusRunning}, nil)

	session, ok := s.Get("t1")
	if !ok {
		t.Fatal("expected session to be found")
	}
	if session.Status != models.TestStatusRunning {
		t.Errorf("unexpected status %s", session.Status)
	}

	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for unknown test id")
	}
}

func TestSessionStore_ListOrderedByStart(t *testing.T) {
	s := NewSessionStore()
	base := time.Now()

	s.Register(models.TestSession{TestID: "later", StartTime: base.Add(time.Minute)}, nil)
	s.Register(models.TestSession{TestID: "earlier", StartTime: base}, nil)

	sessions := s.List()
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	if sessions[0].TestID != "earlier" {
		t.Errorf("expected start-time ordering, got %s first", sessions[0].TestID)
	}
}

func TestSessionStore_Cancel(t *testing.T) {
	s := NewSessionStore()

	ctx, cancel := context.WithCancel(context.Background())
	s.Register(models.TestSession{TestID: "t1", Status: models.TestStatusRunning}, cancel)

	if !s.Cancel("t1") {
		t.Fatal("expected cancel to succeed")
	}

	select {
	case <-ctx.Done():
	default:
		t.Error("expected the session context to be cancelled")
	}

	session, _ := s.Get("t1")
	if session.Status != models.TestStatusCancelled {
		t.Errorf("expected cancelled status, got %s", session.Status)
	}

	if s.Cancel("missing") {
		t.Error("cancel of unknown test must report false")
	}
}

func TestSessionStore_UpdateProgress(t *testing.T) {
	s := NewSessionStore()
	s.Register(models.TestSession{TestID: "t1"}, nil)

	s.UpdateProgress("t1", 3)
	session, _ := s.Get("t1")
	if session.Completed != 3 {
		t.Errorf("expected 3 completed, got %d", session.Completed)
	}

	s.UpdateProgress("unknown", 1)
	if _, ok := s.Get("unknown"); ok {
		t.Error("progress update must not create sessions")
	}
}

func TestSessionStore_PruneSweepsFinishedSessions(t *testing.T) {
	s := NewSessionStore()

	current := time.Now()
	s.now = func() time.Time { return current }

	s.Register(models.TestSession{TestID: "finished", Status: models.TestStatusRunning}, nil)
	s.Register(models.TestSession{TestID: "active", Status: models.TestStatusRunning}, nil)
	s.SetStatus("finished", models.TestStatusCompleted)

	if removed := s.Prune(time.Hour); removed != 0 {
		t.Errorf("expected nothing pruned within retention, removed %d", removed)
	}

	current = current.Add(2 * time.Hour)
	if removed := s.Prune(time.Hour); removed != 1 {
		t.Errorf("expected 1 session pruned, removed %d", removed)
	}

	if _, ok := s.Get("finished"); ok {
		t.Error("expected finished session to be swept")
	}
	if _, ok := s.Get("active"); !ok {
		t.Error("running session must survive the sweep")
	}
}

func TestMemoryReportStore_RoundTrip(t *testing.T) {
	m := NewMemoryReportStore()
	ctx := context.Background()

	report := &models.TestReport{TestID: "t1", TotalConversations: 4}
	if err := m.Save(ctx, report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := m.Get(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.TotalConversations != 4 {
		t.Errorf("unexpected report: %+v", got)
	}

	missing, err := m.Get(ctx, "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown report")
	}
}
