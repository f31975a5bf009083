package audit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"clipflow/internal/audit"
)

func TestNewAssignsCorrelationID(t *testing.T) {
	now := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

	first := audit.New(7, audit.EventClaimed, "alice", now)
	second := audit.New(7, audit.EventClaimed, "alice", now)

	if first.CorrelationID == "" || second.CorrelationID == "" {
		t.Fatal("expected correlation ids")
	}
	if first.CorrelationID == second.CorrelationID {
		t.Fatal("expected distinct correlation ids per event")
	}
	if !first.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", first.CreatedAt, now)
	}
	if first.ItemID != 7 || first.EventType != audit.EventClaimed || first.Actor != "alice" {
		t.Fatalf("unexpected event: %+v", first)
	}
}

type stubPublisher struct {
	events []audit.Event
	err    error
}

func (s *stubPublisher) Publish(_ context.Context, event audit.Event) error {
	s.events = append(s.events, event)
	return s.err
}

func TestFanoutDeliversToAllPublishers(t *testing.T) {
	failure := errors.New("sink down")
	broken := &stubPublisher{err: failure}
	working := &stubPublisher{}

	fanout := audit.Fanout{broken, working}
	event := audit.New(1, audit.EventReleased, "bob", time.Now())

	if err := fanout.Publish(context.Background(), event); !errors.Is(err, failure) {
		t.Fatalf("expected first error propagated, got %v", err)
	}
	if len(broken.events) != 1 || len(working.events) != 1 {
		t.Fatalf("expected both publishers attempted: %d/%d", len(broken.events), len(working.events))
	}
}
