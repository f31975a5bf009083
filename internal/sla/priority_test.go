package sla_test

import (
	"testing"
	"time"

	"clipflow/internal/queue"
	"clipflow/internal/sla"
	"clipflow/internal/testsupport"
)

var slaStart = time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)

func testPolicy(t testing.TB) sla.Policy {
	t.Helper()
	cfg := testsupport.NewConfig(t,
		testsupport.WithStageHours(string(queue.StageNotRecorded), 4),
	)
	cfg.SLA.WarnWindowMinutes = 5
	return sla.FromConfig(cfg)
}

func itemInStage(s queue.Stage, enteredAt time.Time) *queue.Item {
	return &queue.Item{
		ID:               1,
		Title:            "Morning Clip",
		Stage:            s,
		StageEnteredAt:   enteredAt,
		CreatedAt:        enteredAt,
		ExplicitPriority: queue.PriorityNormal,
	}
}

func TestStatusAgainstDeadline(t *testing.T) {
	policy := testPolicy(t)
	item := itemInStage(queue.StageNotRecorded, slaStart)

	// 4h SLA with a 5m warning window.
	cases := []struct {
		name string
		at   time.Time
		want sla.Status
	}{
		{"fresh item", slaStart, sla.StatusOnTrack},
		{"just before warning window", slaStart.Add(4*time.Hour - 5*time.Minute - time.Second), sla.StatusOnTrack},
		{"warning window opens", slaStart.Add(4*time.Hour - 5*time.Minute), sla.StatusDueSoon},
		{"just before deadline", slaStart.Add(4*time.Hour - time.Second), sla.StatusDueSoon},
		{"exactly at deadline", slaStart.Add(4 * time.Hour), sla.StatusOverdue},
		{"past deadline", slaStart.Add(5 * time.Hour), sla.StatusOverdue},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := policy.Status(item, tc.at); got != tc.want {
				t.Fatalf("Status at %v = %s, want %s", tc.at, got, tc.want)
			}
		})
	}
}

func TestStatusOnlyMovesForward(t *testing.T) {
	policy := testPolicy(t)
	item := itemInStage(queue.StageNotRecorded, slaStart)

	rank := map[sla.Status]int{
		sla.StatusOnTrack: 0,
		sla.StatusDueSoon: 1,
		sla.StatusOverdue: 2,
	}

	previous := policy.Status(item, slaStart)
	for minute := 1; minute <= 6*60; minute++ {
		current := policy.Status(item, slaStart.Add(time.Duration(minute)*time.Minute))
		if rank[current] < rank[previous] {
			t.Fatalf("status regressed from %s to %s at minute %d", previous, current, minute)
		}
		previous = current
	}
}

func TestStatusNoneForTerminalStage(t *testing.T) {
	policy := testPolicy(t)
	item := itemInStage(queue.StagePosted, slaStart)

	if got := policy.Status(item, slaStart.Add(48*time.Hour)); got != sla.StatusNone {
		t.Fatalf("expected none for posted, got %s", got)
	}
	if _, ok := policy.Deadline(item); ok {
		t.Fatal("expected no deadline for posted")
	}
}

func TestScoreIsMonotoneInAge(t *testing.T) {
	policy := testPolicy(t)
	item := itemInStage(queue.StageNotRecorded, slaStart)

	previous := policy.Score(item, slaStart)
	for minute := 1; minute <= 6*60; minute++ {
		current := policy.Score(item, slaStart.Add(time.Duration(minute)*time.Minute))
		if current < previous {
			t.Fatalf("score dropped from %f to %f at minute %d", previous, current, minute)
		}
		previous = current
	}
}

func TestScoreBumps(t *testing.T) {
	policy := testPolicy(t)

	onTrack := itemInStage(queue.StageNotRecorded, slaStart)
	overdue := itemInStage(queue.StageNotRecorded, slaStart.Add(-5*time.Hour))

	if policy.Score(overdue, slaStart) <= policy.Score(onTrack, slaStart) {
		t.Fatal("expected overdue item to outrank fresh item")
	}

	urgent := itemInStage(queue.StageNotRecorded, slaStart)
	urgent.ExplicitPriority = queue.PriorityUrgent
	high := itemInStage(queue.StageNotRecorded, slaStart)
	high.ExplicitPriority = queue.PriorityHigh

	base := policy.Score(onTrack, slaStart)
	if got := policy.Score(high, slaStart); got != base+policy.HighBump {
		t.Fatalf("high bump = %f, want %f", got-base, policy.HighBump)
	}
	if got := policy.Score(urgent, slaStart); got != base+policy.UrgentBump {
		t.Fatalf("urgent bump = %f, want %f", got-base, policy.UrgentBump)
	}
	if policy.UrgentBump <= policy.HighBump {
		t.Fatal("urgent bump should exceed high bump")
	}
}

func TestAgeMinutes(t *testing.T) {
	item := itemInStage(queue.StageNotRecorded, slaStart)

	if got := sla.AgeMinutes(item, slaStart.Add(90*time.Minute)); got != 90 {
		t.Fatalf("AgeMinutes = %f, want 90", got)
	}
	// Clock skew never produces a negative age.
	if got := sla.AgeMinutes(item, slaStart.Add(-time.Minute)); got != 0 {
		t.Fatalf("AgeMinutes before entry = %f, want 0", got)
	}
	if got := sla.AgeMinutes(nil, slaStart); got != 0 {
		t.Fatalf("AgeMinutes(nil) = %f, want 0", got)
	}
}
