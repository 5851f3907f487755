// Package certificates derives certificate-readiness flags from recorded
// attendance and activity workload.
package certificates

import (
	"github.com/google/uuid"

	"github.com/atena-events/backend/internal/models"
)

// Policy decides readiness. The attendance threshold is an institutional
// decision injected from configuration, never hard-coded here.
type Policy interface {
	// RegistrationReady reports whether attendedMinutes out of
	// requiredMinutes earns a certificate.
	RegistrationReady(attendedMinutes, requiredMinutes int) bool
	// ActivityReady reports whether an activity with readyCount ready
	// registrations out of total counts as ready.
	ActivityReady(readyCount, total int) bool
}

// MinimumAttendance is the default policy: attended minutes must reach
// Ratio of the required minutes, and an activity is ready only when every
// registration is ready.
type MinimumAttendance struct {
	Ratio float64
}

func (p MinimumAttendance) RegistrationReady(attendedMinutes, requiredMinutes int) bool {
	if requiredMinutes <= 0 {
		return false
	}
	return float64(attendedMinutes) >= p.Ratio*float64(requiredMinutes)
}

func (p MinimumAttendance) ActivityReady(readyCount, total int) bool {
	return total > 0 && readyCount == total
}

// Evaluator computes readiness flags under an injected policy.
type Evaluator struct {
	policy Policy
}

// NewEvaluator creates an evaluator.
func NewEvaluator(policy Policy) *Evaluator {
	return &Evaluator{policy: policy}
}

// Evaluate derives the readiness flag for one registration. It is a pure
// function of the presence rows and the activity's workload: attended
// minutes are summed over the schedule occurrences with a presence row,
// measured against the activity workload (falling back to total scheduled
// minutes when no workload is declared).
func (e *Evaluator) Evaluate(activity models.Activity, schedules []models.Schedule, presences []models.Presence) bool {
	attended := make(map[uuid.UUID]bool, len(presences))
	for _, p := range presences {
		attended[p.ScheduleID] = true
	}

	attendedMinutes := 0
	scheduledMinutes := 0
	for _, s := range schedules {
		scheduledMinutes += s.DurationInMinutes
		if attended[s.ID] {
			attendedMinutes += s.DurationInMinutes
		}
	}

	required := activity.WorkloadInMinutes
	if required <= 0 {
		required = scheduledMinutes
	}
	return e.policy.RegistrationReady(attendedMinutes, required)
}

// ActivityReady aggregates registration flags upward.
func (e *Evaluator) ActivityReady(registrationFlags []bool) bool {
	ready := 0
	for _, f := range registrationFlags {
		if f {
			ready++
		}
	}
	return e.policy.ActivityReady(ready, len(registrationFlags))
}

// EventReady aggregates activity flags upward: an event is ready only when
// every activity is.
func (e *Evaluator) EventReady(activityFlags []bool) bool {
	if len(activityFlags) == 0 {
		return false
	}
	for _, f := range activityFlags {
		if !f {
			return false
		}
	}
	return true
}
