// Package stage decides whether a status change is legal. The guard is one
// pure function evaluated per request; nothing here caches per-role booleans
// that could drift from the rule table.
package stage

import (
	"time"

	"clipflow/internal/queue"
)

// Reason classifies why a transition is blocked.
type Reason string

const (
	ReasonInvalidTransition Reason = "invalid_transition"
	ReasonWrongRole         Reason = "wrong_role"
	ReasonNotClaimed        Reason = "not_claimed"
	ReasonMissingFields     Reason = "missing_required_fields"
)

// Decision is the tagged result of a guard evaluation.
type Decision struct {
	Allowed       bool
	Reason        Reason
	MissingFields []string
}

func allowed() Decision { return Decision{Allowed: true} }

func blocked(reason Reason) Decision { return Decision{Reason: reason} }

// CanTransition reports whether actor may move item to target at now.
// Admins bypass role and claim-holder checks but never the required-field
// check: a transition with missing data is wrong no matter who asks.
func CanTransition(item *queue.Item, target queue.Stage, actor queue.Actor, now time.Time) Decision {
	if item == nil {
		return blocked(ReasonInvalidTransition)
	}
	rule, ok := queue.RuleFor(item.Stage)
	if !ok || !rule.AllowsTarget(target) {
		return blocked(ReasonInvalidTransition)
	}

	if !actor.Admin {
		if rule.RequiredRole == "" || actor.Role != rule.RequiredRole {
			return blocked(ReasonWrongRole)
		}
		if item.ClaimActive(now) && item.ClaimedBy != actor.Worker {
			return blocked(ReasonNotClaimed)
		}
	}

	if missing := queue.MissingFields(item, target); len(missing) > 0 {
		d := blocked(ReasonMissingFields)
		d.MissingFields = missing
		return d
	}

	return allowed()
}

// Action describes the single next step that moves an item forward, used for
// queue ordering and UI labels. It checks the stage mapping and field
// completeness only; claim and role legality stay with CanTransition.
type Action struct {
	Label          string
	TargetStage    queue.Stage
	RequiredFields []string
}

// NextAction derives the next actionable step for an item. Terminal items
// return a zero Action with TargetStage "".
func NextAction(item *queue.Item) Action {
	if item == nil {
		return Action{}
	}
	rule, ok := queue.RuleFor(item.Stage)
	if !ok {
		return Action{}
	}
	target := rule.PrimaryTarget()
	if target == "" {
		return Action{}
	}
	return Action{
		Label:          rule.ActionLabel,
		TargetStage:    target,
		RequiredFields: queue.MissingFields(item, target),
	}
}
