// Package enrollments owns enrollment admission: duplicate and
// self-enrollment rejection, cross-activity schedule conflicts, and the
// capacity check that must hold under concurrent attempts.
package enrollments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/internal/schedule"
	"github.com/atena-events/backend/pkg/domain"
)

// Commitment is one activity a user is already registered in, with enough
// identity to tell the user which commitment clashed.
type Commitment struct {
	ActivityID   uuid.UUID
	ActivityName string
	EventName    string
	Schedules    []models.Schedule
}

// Store is the persistence surface the admission service needs. Admit must
// be atomic: the capacity check and the insert happen under a lock on the
// activity row (or equivalent), and a race lost at commit time surfaces
// domain.ErrTransient.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error)
	// GetRegistration returns (nil, nil) when no registration exists.
	GetRegistration(ctx context.Context, userID, activityID uuid.UUID) (*models.ActivityRegistration, error)
	// IsActivityStaff reports whether the user teaches or is responsible
	// for the activity.
	IsActivityStaff(ctx context.Context, activityID, userID uuid.UUID) (bool, error)
	ListSchedules(ctx context.Context, activityID uuid.UUID) ([]models.Schedule, error)
	// ListCommitments returns the user's registered activities across all
	// events, excluding the given activity, with their schedules.
	ListCommitments(ctx context.Context, userID, excludeActivityID uuid.UUID) ([]Commitment, error)
	Admit(ctx context.Context, activityID, userID uuid.UUID, now time.Time) (*models.ActivityRegistration, error)
	// Remove deletes the registration and returns how many rows went away.
	Remove(ctx context.Context, userID, activityID uuid.UUID) (int64, error)
	Rate(ctx context.Context, userID, activityID uuid.UUID, rating int) (int64, error)
	CountByActivity(ctx context.Context, activityID uuid.UUID) (int, error)
}

// SeatNotifier receives seat-availability changes after a successful
// enroll or cancel.
type SeatNotifier interface {
	SeatsChanged(activityID uuid.UUID, remaining int)
}

// Service is the enrollment admission controller.
type Service struct {
	store    Store
	notifier SeatNotifier
	logger   *zap.Logger
}

// NewService creates the admission service. notifier may be nil.
func NewService(store Store, notifier SeatNotifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, notifier: notifier, logger: logger}
}

// Enroll admits a user into an activity. Preconditions are checked in
// order: existence, duplicate, self-enrollment, schedule conflict,
// capacity. The first failing condition determines the returned error.
func (s *Service) Enroll(ctx context.Context, userID, activityID uuid.UUID, now time.Time) (*models.ActivityRegistration, error) {
	if _, err := s.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	activity, err := s.store.GetActivity(ctx, activityID)
	if err != nil {
		return nil, err
	}

	existing, err := s.store.GetRegistration(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.EEntity(domain.KindDuplicateRegistration, "already registered", activity.Name)
	}

	staff, err := s.store.IsActivityStaff(ctx, activityID, userID)
	if err != nil {
		return nil, err
	}
	if staff {
		return nil, domain.EEntity(domain.KindSelfEnrollment, "cannot enroll in own activity", activity.Name)
	}

	candidate, err := s.store.ListSchedules(ctx, activityID)
	if err != nil {
		return nil, err
	}
	commitments, err := s.store.ListCommitments(ctx, userID, activityID)
	if err != nil {
		return nil, err
	}
	candidateIvs := schedule.Intervals(candidate)
	for _, cm := range commitments {
		if schedule.Conflicts(candidateIvs, schedule.Intervals(cm.Schedules)) {
			return nil, domain.EEntity(domain.KindScheduleConflict,
				"schedule conflicts with an existing commitment",
				cm.EventName+" / "+cm.ActivityName)
		}
	}

	reg, err := s.store.Admit(ctx, activityID, userID, now)
	if errors.Is(err, domain.ErrTransient) {
		// One retry for a capacity race lost at commit time; a second
		// loss means the seat is genuinely gone.
		s.logger.Debug("admission retry after transient conflict",
			zap.String("activity_id", activityID.String()))
		reg, err = s.store.Admit(ctx, activityID, userID, now)
		if errors.Is(err, domain.ErrTransient) {
			return nil, domain.EEntity(domain.KindCapacityExceeded, "activity full", activity.Name)
		}
	}
	if err != nil {
		return nil, err
	}

	s.notifySeats(ctx, activity)
	return reg, nil
}

// Cancel removes the registration. Cancelling an absent registration is a
// no-op, not an error; the returned count tells callers which happened.
func (s *Service) Cancel(ctx context.Context, userID, activityID uuid.UUID) (int64, error) {
	count, err := s.store.Remove(ctx, userID, activityID)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		if activity, err := s.store.GetActivity(ctx, activityID); err == nil {
			s.notifySeats(ctx, activity)
		}
	}
	return count, nil
}

// Rate updates the rating on an existing registration.
func (s *Service) Rate(ctx context.Context, userID, activityID uuid.UUID, rating int) error {
	if rating < 1 || rating > 5 {
		return domain.E(domain.KindInvalid, "rating must be between 1 and 5")
	}
	count, err := s.store.Rate(ctx, userID, activityID, rating)
	if err != nil {
		return err
	}
	if count == 0 {
		return domain.E(domain.KindNotFound, "registration not found")
	}
	return nil
}

func (s *Service) notifySeats(ctx context.Context, activity *models.Activity) {
	if s.notifier == nil {
		return
	}
	count, err := s.store.CountByActivity(ctx, activity.ID)
	if err != nil {
		s.logger.Warn("seat count failed", zap.Error(err), zap.String("activity_id", activity.ID.String()))
		return
	}
	remaining := activity.Vacancy - count
	if remaining < 0 {
		remaining = 0
	}
	s.notifier.SeatsChanged(activity.ID, remaining)
}
