// Package domain defines the typed business-rule errors services return.
// Handlers map kinds onto HTTP statuses; callers match with errors.As or
// KindOf instead of string comparison. These errors are deterministic and
// are never retried.
package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a business-rule violation.
type Kind string

const (
	KindNotFound              Kind = "not_found"
	KindDuplicateRegistration Kind = "duplicate_registration"
	KindScheduleConflict      Kind = "schedule_conflict"
	KindCapacityExceeded      Kind = "capacity_exceeded"
	KindSelfEnrollment        Kind = "self_enrollment_forbidden"
	KindUserCannotBeDisabled  Kind = "user_cannot_be_disabled"
	KindInvalid               Kind = "invalid"
)

// Error is a business-rule violation. Entity carries the offending entity
// name or id when one is known, so callers can render a specific message
// (e.g. which commitment clashed).
type Error struct {
	Kind    Kind
	Message string
	Entity  string
}

func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Entity)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// E creates a domain error.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// EEntity creates a domain error tied to a named entity.
func EEntity(kind Kind, message, entity string) *Error {
	return &Error{Kind: kind, Message: message, Entity: entity}
}

// KindOf returns the kind of err, or "" when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// IsKind reports whether err is a domain error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

// ErrTransient marks a storage-level conflict lost to a concurrent writer
// (e.g. a capacity race at commit time). Unlike domain errors it may be
// retried once by the owning service before a domain error is surfaced.
var ErrTransient = errors.New("transient storage conflict")
