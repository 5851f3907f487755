// Package users covers user listing projections and the deactivation
// guard: a user with unfinished organizing or responsibility duties
// cannot be disabled.
package users

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atena-events/backend/internal/models"
)

// Store is the persistence surface the user service needs.
type Store interface {
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	// Deactivate flips active to false and reports how many rows
	// changed. The duty check and the write must be one atomic unit:
	// a commitment committed concurrently with the call still blocks.
	// Blocked users yield a KindUserCannotBeDisabled error naming the
	// event; an already-inactive or missing user changes zero rows.
	Deactivate(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error)
	List(ctx context.Context) ([]models.User, error)
}

// Service implements user operations.
type Service struct {
	store Store
}

// NewService creates the user service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Deactivate disables a user unless they still organize an unfinished
// event or answer for an activity in one. Deactivating an absent or
// already-inactive user is a no-op and returns zero.
func (s *Service) Deactivate(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return s.store.Deactivate(ctx, userID, now)
}

// Get returns a user by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.store.GetUser(ctx, id)
}

// ListProfiles returns the full projection for admin callers.
func (s *Service) ListProfiles(ctx context.Context) ([]models.UserProfile, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	profiles := make([]models.UserProfile, 0, len(users))
	for i := range users {
		profiles = append(profiles, users[i].ToProfile())
	}
	return profiles, nil
}

// ListSummaries returns the minimal projection for non-admin staff.
func (s *Service) ListSummaries(ctx context.Context) ([]models.UserSummary, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].ToSummary())
	}
	return summaries, nil
}
