package certificates

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/atena-events/backend/internal/models"
)

func makeSchedules(durations ...int) []models.Schedule {
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	out := make([]models.Schedule, 0, len(durations))
	for i, d := range durations {
		out = append(out, models.Schedule{
			ID:                uuid.New(),
			StartDate:         base.Add(time.Duration(i) * 24 * time.Hour),
			DurationInMinutes: d,
		})
	}
	return out
}

func presencesFor(schedules []models.Schedule, idx ...int) []models.Presence {
	var out []models.Presence
	for _, i := range idx {
		out = append(out, models.Presence{
			ID:         uuid.New(),
			ScheduleID: schedules[i].ID,
		})
	}
	return out
}

func TestEvaluateAgainstWorkload(t *testing.T) {
	eval := NewEvaluator(MinimumAttendance{Ratio: 0.75})
	activity := models.Activity{WorkloadInMinutes: 240}
	schedules := makeSchedules(60, 60, 60, 60)

	// 3 of 4 hour-long sessions attended = 180/240 = exactly 0.75.
	assert.True(t, eval.Evaluate(activity, schedules, presencesFor(schedules, 0, 1, 2)))

	// 2 of 4 = 0.5, below threshold.
	assert.False(t, eval.Evaluate(activity, schedules, presencesFor(schedules, 0, 1)))

	// No presences at all.
	assert.False(t, eval.Evaluate(activity, schedules, nil))
}

func TestEvaluateFallsBackToScheduledMinutes(t *testing.T) {
	eval := NewEvaluator(MinimumAttendance{Ratio: 0.5})
	activity := models.Activity{WorkloadInMinutes: 0}
	schedules := makeSchedules(90, 30)

	// 90 of 120 scheduled minutes attended.
	assert.True(t, eval.Evaluate(activity, schedules, presencesFor(schedules, 0)))
	// 30 of 120.
	assert.False(t, eval.Evaluate(activity, schedules, presencesFor(schedules, 1)))
}

func TestEvaluateIgnoresForeignPresences(t *testing.T) {
	eval := NewEvaluator(MinimumAttendance{Ratio: 0.1})
	activity := models.Activity{WorkloadInMinutes: 60}
	schedules := makeSchedules(60)

	// A presence row for a schedule outside this activity contributes nothing.
	foreign := []models.Presence{{ID: uuid.New(), ScheduleID: uuid.New()}}
	assert.False(t, eval.Evaluate(activity, schedules, foreign))
}

func TestPolicyIsInjectable(t *testing.T) {
	// A stricter quorum policy can replace the default without touching
	// the evaluator.
	eval := NewEvaluator(MinimumAttendance{Ratio: 1.0})
	activity := models.Activity{WorkloadInMinutes: 120}
	schedules := makeSchedules(60, 60)

	assert.False(t, eval.Evaluate(activity, schedules, presencesFor(schedules, 0)))
	assert.True(t, eval.Evaluate(activity, schedules, presencesFor(schedules, 0, 1)))
}

func TestActivityAndEventAggregation(t *testing.T) {
	eval := NewEvaluator(MinimumAttendance{Ratio: 0.75})

	assert.True(t, eval.ActivityReady([]bool{true, true}))
	assert.False(t, eval.ActivityReady([]bool{true, false}))
	assert.False(t, eval.ActivityReady(nil), "no registrations means not ready")

	assert.True(t, eval.EventReady([]bool{true, true}))
	assert.False(t, eval.EventReady([]bool{true, false}))
	assert.False(t, eval.EventReady(nil))
}
