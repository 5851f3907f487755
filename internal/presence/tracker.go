// Package presence records per-occurrence attendance for registrations
// and keeps the cached certificate-readiness flag in sync.
package presence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atena-events/backend/internal/certificates"
	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
	"github.com/atena-events/backend/pkg/queue"
)

// Store is the persistence surface the tracker needs.
type Store interface {
	GetRegistration(ctx context.Context, id uuid.UUID) (*models.ActivityRegistration, error)
	GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	GetSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error)
	ListSchedules(ctx context.Context, activityID uuid.UUID) ([]models.Schedule, error)
	// Upsert guarantees one presence row per (registration, schedule).
	Upsert(ctx context.Context, registrationID, scheduleID uuid.UUID, now time.Time) (*models.Presence, error)
	List(ctx context.Context, registrationID uuid.UUID) ([]models.Presence, error)
	SetReadiness(ctx context.Context, registrationID uuid.UUID, ready bool) error
}

// ReadinessQueue enqueues aggregate recomputation after presence changes.
type ReadinessQueue interface {
	EnqueueReadiness(ctx context.Context, payload queue.ReadinessPayload) error
}

// Tracker records presences and recomputes readiness on every change.
type Tracker struct {
	store  Store
	eval   *certificates.Evaluator
	queue  ReadinessQueue
	logger *zap.Logger
}

// NewTracker creates a presence tracker. queue may be nil.
func NewTracker(store Store, eval *certificates.Evaluator, q ReadinessQueue, logger *zap.Logger) *Tracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tracker{store: store, eval: eval, queue: q, logger: logger}
}

// Record upserts the presence row for (registration, schedule), then
// recomputes and persists the registration's readiness flag. The
// activity/event aggregates are recomputed out of band by the worker.
func (t *Tracker) Record(ctx context.Context, registrationID, scheduleID uuid.UUID, now time.Time) (*models.Presence, error) {
	reg, err := t.store.GetRegistration(ctx, registrationID)
	if err != nil {
		return nil, err
	}
	sched, err := t.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if sched.ActivityID != reg.ActivityID {
		return nil, domain.E(domain.KindInvalid, "schedule does not belong to the registered activity")
	}

	p, err := t.store.Upsert(ctx, registrationID, scheduleID, now)
	if err != nil {
		return nil, err
	}

	if err := t.refreshReadiness(ctx, reg); err != nil {
		return nil, err
	}
	return p, nil
}

// List returns the presence rows of a registration.
func (t *Tracker) List(ctx context.Context, registrationID uuid.UUID) ([]models.Presence, error) {
	if _, err := t.store.GetRegistration(ctx, registrationID); err != nil {
		return nil, err
	}
	return t.store.List(ctx, registrationID)
}

func (t *Tracker) refreshReadiness(ctx context.Context, reg *models.ActivityRegistration) error {
	activity, err := t.store.GetActivity(ctx, reg.ActivityID)
	if err != nil {
		return err
	}
	schedules, err := t.store.ListSchedules(ctx, reg.ActivityID)
	if err != nil {
		return err
	}
	presences, err := t.store.List(ctx, reg.ID)
	if err != nil {
		return err
	}

	ready := t.eval.Evaluate(*activity, schedules, presences)
	if err := t.store.SetReadiness(ctx, reg.ID, ready); err != nil {
		return err
	}

	if t.queue != nil {
		payload := queue.ReadinessPayload{ActivityID: activity.ID, EventID: activity.EventID}
		if err := t.queue.EnqueueReadiness(ctx, payload); err != nil {
			// Aggregates lag until the next presence change; the
			// per-registration flag above is already persisted.
			t.logger.Warn("enqueue readiness job failed", zap.Error(err),
				zap.String("activity_id", activity.ID.String()))
		}
	}
	return nil
}
