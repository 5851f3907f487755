// Package responsibilities builds role-scoped, time-windowed, paginated
// views of the events a user organizes and the activities they answer for.
package responsibilities

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/atena-events/backend/internal/models"
)

// Window selects exactly one time partition. An explicit enum instead of
// a boolean so adding a third partition later cannot double-count.
type Window int

const (
	// WindowCurrent selects events whose end date (or start date when no
	// end is set) has not passed.
	WindowCurrent Window = iota
	// WindowPast selects the complement.
	WindowPast
)

// WindowFromOld maps the legacy ?old=bool query flag onto the enum.
func WindowFromOld(old bool) Window {
	if old {
		return WindowPast
	}
	return WindowCurrent
}

// InWindow reports whether an event falls in the window at the given
// instant. Events without an end date are partitioned by start date.
func InWindow(e models.Event, w Window, now time.Time) bool {
	edge := e.StartDate
	if e.EndDate != nil {
		edge = *e.EndDate
	}
	if w == WindowCurrent {
		return !edge.Before(now)
	}
	return edge.Before(now)
}

// Page is 1-indexed pagination input.
type Page struct {
	Page  int
	Limit int
}

const (
	defaultLimit = 10
	maxLimit     = 100
)

// Normalize clamps page/limit to sane values.
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Summary is the combined responsibility view.
type Summary struct {
	Events          []models.Event    `json:"events"`
	Activities      []models.Activity `json:"activities"`
	TotalEvents     int               `json:"total_events"`
	TotalActivities int               `json:"total_activities"`
	TotalCount      int               `json:"total_count"`
}

// Store is the persistence surface the aggregator needs. Each method
// returns the page slice plus the total independent of slicing.
type Store interface {
	OrganizedEvents(ctx context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Event, int, error)
	// ResponsibleActivities counts only the responsible role; teaching
	// alone does not make a user answerable for the activity.
	ResponsibleActivities(ctx context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Activity, int, error)
	// TeachingActivities is the broader listing used outside the
	// responsibility summary: teaching or responsible.
	TeachingActivities(ctx context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Activity, int, error)
}

// Service aggregates responsibilities.
type Service struct {
	store Store
}

// NewService creates the aggregator.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Find returns the combined view: organized events plus responsible
// activities, each sliced by the same page, with totals computed before
// slicing.
func (s *Service) Find(ctx context.Context, userID uuid.UUID, w Window, page Page, now time.Time) (*Summary, error) {
	page = page.Normalize()
	events, totalEvents, err := s.store.OrganizedEvents(ctx, userID, w, now, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	activities, totalActivities, err := s.store.ResponsibleActivities(ctx, userID, w, now, page.Offset(), page.Limit)
	if err != nil {
		return nil, err
	}
	return &Summary{
		Events:          events,
		Activities:      activities,
		TotalEvents:     totalEvents,
		TotalActivities: totalActivities,
		TotalCount:      totalEvents + totalActivities,
	}, nil
}

// FindEvents returns only the organized-events partition.
func (s *Service) FindEvents(ctx context.Context, userID uuid.UUID, w Window, page Page, now time.Time) ([]models.Event, int, error) {
	page = page.Normalize()
	return s.store.OrganizedEvents(ctx, userID, w, now, page.Offset(), page.Limit)
}

// FindActivities returns only the responsible-activities partition.
func (s *Service) FindActivities(ctx context.Context, userID uuid.UUID, w Window, page Page, now time.Time) ([]models.Activity, int, error) {
	page = page.Normalize()
	return s.store.ResponsibleActivities(ctx, userID, w, now, page.Offset(), page.Limit)
}

// FindTeaching returns the plain activity listing (teaching or
// responsible).
func (s *Service) FindTeaching(ctx context.Context, userID uuid.UUID, w Window, page Page, now time.Time) ([]models.Activity, int, error) {
	page = page.Normalize()
	return s.store.TeachingActivities(ctx, userID, w, now, page.Offset(), page.Limit)
}
