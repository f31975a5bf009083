package queue

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for every claim and transition failure. Callers match with
// errors.Is; the CLI and API map them to machine-readable kinds via KindOf.
var (
	ErrNotFound              = errors.New("work item not found")
	ErrAlreadyClaimed        = errors.New("already claimed")
	ErrRoleMismatch          = errors.New("role mismatch")
	ErrNotClaimHolder        = errors.New("not claim holder")
	ErrInvalidTransition     = errors.New("invalid transition")
	ErrMissingRequiredFields = errors.New("missing required fields")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotClaimable          = errors.New("stage is not claimable")
)

// Kind is the machine-readable classification surfaced to UI consumers.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindAlreadyClaimed        Kind = "already_claimed"
	KindRoleMismatch          Kind = "role_mismatch"
	KindNotClaimHolder        Kind = "not_claim_holder"
	KindInvalidTransition     Kind = "invalid_transition"
	KindMissingRequiredFields Kind = "missing_required_fields"
	KindUnauthorized          Kind = "unauthorized"
	KindNotClaimable          Kind = "not_claimable"
	KindInternal              Kind = "internal"
)

// KindOf classifies an error for transport. Unrecognized errors are internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrAlreadyClaimed):
		return KindAlreadyClaimed
	case errors.Is(err, ErrRoleMismatch):
		return KindRoleMismatch
	case errors.Is(err, ErrNotClaimHolder):
		return KindNotClaimHolder
	case errors.Is(err, ErrInvalidTransition):
		return KindInvalidTransition
	case errors.Is(err, ErrMissingRequiredFields):
		return KindMissingRequiredFields
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	case errors.Is(err, ErrNotClaimable):
		return KindNotClaimable
	default:
		return KindInternal
	}
}

// MissingFieldsError carries the specific fields blocking a transition so the
// UI can show a remediation message instead of a generic failure.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error { return ErrMissingRequiredFields }

// NewMissingFields wraps a field list in a MissingFieldsError.
func NewMissingFields(fields []string) error {
	return &MissingFieldsError{Fields: fields}
}

// MissingFieldsFrom extracts the blocked field list when err is a
// MissingFieldsError.
func MissingFieldsFrom(err error) []string {
	var mf *MissingFieldsError
	if errors.As(err, &mf) {
		return mf.Fields
	}
	return nil
}
