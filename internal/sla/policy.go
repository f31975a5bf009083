// Package sla computes deadline status and priority scores for queue
// ordering. Everything is a pure function over (item, now, policy) so the
// same inputs always produce the same ordering across polls.
package sla

import (
	"time"

	"clipflow/internal/config"
	"clipflow/internal/queue"
)

// Policy holds per-stage deadlines, the due-soon warning window, and the
// score coefficients.
type Policy struct {
	StageDurations map[queue.Stage]time.Duration
	WarnWindow     time.Duration

	AgeWeight   float64
	DueSoonBump float64
	OverdueBump float64
	HighBump    float64
	UrgentBump  float64
}

// FromConfig builds a Policy from configuration.
func FromConfig(cfg *config.Config) Policy {
	durations := make(map[queue.Stage]time.Duration, len(cfg.SLA.StageHours))
	for name, hours := range cfg.SLA.StageHours {
		if stage, ok := queue.ParseStage(name); ok {
			durations[stage] = time.Duration(hours) * time.Hour
		}
	}
	return Policy{
		StageDurations: durations,
		WarnWindow:     time.Duration(cfg.SLA.WarnWindowMinutes) * time.Minute,
		AgeWeight:      cfg.Priority.AgeWeight,
		DueSoonBump:    cfg.Priority.DueSoonBump,
		OverdueBump:    cfg.Priority.OverdueBump,
		HighBump:       cfg.Priority.HighBump,
		UrgentBump:     cfg.Priority.UrgentBump,
	}
}

// DurationFor returns the deadline duration for a stage, or false when the
// stage carries no SLA (terminal stages).
func (p Policy) DurationFor(stage queue.Stage) (time.Duration, bool) {
	d, ok := p.StageDurations[stage]
	return d, ok && d > 0
}
