package presence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atena-events/backend/internal/certificates"
	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
	"github.com/atena-events/backend/pkg/queue"
)

var testNow = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

type fakeQueue struct {
	mu       sync.Mutex
	payloads []queue.ReadinessPayload
}

func (q *fakeQueue) EnqueueReadiness(_ context.Context, p queue.ReadinessPayload) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, p)
	return nil
}

type fixture struct {
	store    *Memory
	queue    *fakeQueue
	tracker  *Tracker
	activity models.Activity
	sessions []models.Schedule
	reg      models.ActivityRegistration
}

func newFixture(workload int, sessionMinutes ...int) *fixture {
	store := NewMemory()
	q := &fakeQueue{}
	eval := certificates.NewEvaluator(certificates.MinimumAttendance{Ratio: 0.75})

	activity := models.Activity{ID: uuid.New(), EventID: uuid.New(), Name: "Go Workshop", WorkloadInMinutes: workload}
	var sessions []models.Schedule
	for i, minutes := range sessionMinutes {
		sessions = append(sessions, models.Schedule{
			ID:                uuid.New(),
			StartDate:         testNow.Add(time.Duration(i) * 24 * time.Hour),
			DurationInMinutes: minutes,
		})
	}
	store.AddActivity(activity, sessions...)

	reg := models.ActivityRegistration{ID: uuid.New(), ActivityID: activity.ID, UserID: uuid.New()}
	store.AddRegistration(reg)

	return &fixture{
		store:    store,
		queue:    q,
		tracker:  NewTracker(store, eval, q, nil),
		activity: activity,
		sessions: sessions,
		reg:      reg,
	}
}

func TestRecordUpsertsOneRowPerPair(t *testing.T) {
	f := newFixture(120, 60, 60)

	first, err := f.tracker.Record(context.Background(), f.reg.ID, f.sessions[0].ID, testNow)
	require.NoError(t, err)

	// Recording the same pair again refreshes, never duplicates.
	second, err := f.tracker.Record(context.Background(), f.reg.ID, f.sessions[0].ID, testNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	list, err := f.tracker.List(context.Background(), f.reg.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, testNow.Add(time.Minute), list[0].CheckedInAt)
}

func TestRecordRecomputesReadiness(t *testing.T) {
	f := newFixture(120, 60, 60)

	_, err := f.tracker.Record(context.Background(), f.reg.ID, f.sessions[0].ID, testNow)
	require.NoError(t, err)
	assert.False(t, f.store.Readiness(f.reg.ID), "60 of 120 minutes is below the 0.75 threshold")

	_, err = f.tracker.Record(context.Background(), f.reg.ID, f.sessions[1].ID, testNow)
	require.NoError(t, err)
	assert.True(t, f.store.Readiness(f.reg.ID))
}

func TestRecordEnqueuesAggregation(t *testing.T) {
	f := newFixture(60, 60)

	_, err := f.tracker.Record(context.Background(), f.reg.ID, f.sessions[0].ID, testNow)
	require.NoError(t, err)

	require.Len(t, f.queue.payloads, 1)
	assert.Equal(t, f.activity.ID, f.queue.payloads[0].ActivityID)
	assert.Equal(t, f.activity.EventID, f.queue.payloads[0].EventID)
}

func TestRecordRejectsForeignSchedule(t *testing.T) {
	f := newFixture(60, 60)

	other := models.Activity{ID: uuid.New(), EventID: uuid.New(), Name: "Other"}
	otherSession := models.Schedule{ID: uuid.New(), StartDate: testNow, DurationInMinutes: 30}
	f.store.AddActivity(other, otherSession)

	_, err := f.tracker.Record(context.Background(), f.reg.ID, otherSession.ID, testNow)
	assert.True(t, domain.IsKind(err, domain.KindInvalid))
}

func TestRecordUnknownIDs(t *testing.T) {
	f := newFixture(60, 60)

	_, err := f.tracker.Record(context.Background(), uuid.New(), f.sessions[0].ID, testNow)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	_, err = f.tracker.Record(context.Background(), f.reg.ID, uuid.New(), testNow)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	_, err = f.tracker.List(context.Background(), uuid.New())
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}
