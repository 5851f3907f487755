package responsibilities

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atena-events/backend/internal/models"
)

// Memory implements Store in memory for tests.
type Memory struct {
	mu         sync.Mutex
	events     map[uuid.UUID]models.Event
	activities map[uuid.UUID]models.Activity
	organizers map[uuid.UUID][]uuid.UUID                    // event -> users
	staff      map[uuid.UUID]map[uuid.UUID]models.ActivityUserRole // activity -> user -> role
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		events:     make(map[uuid.UUID]models.Event),
		activities: make(map[uuid.UUID]models.Activity),
		organizers: make(map[uuid.UUID][]uuid.UUID),
		staff:      make(map[uuid.UUID]map[uuid.UUID]models.ActivityUserRole),
	}
}

// AddEvent seeds an event with its organizers.
func (m *Memory) AddEvent(e models.Event, organizers ...uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e
	m.organizers[e.ID] = append(m.organizers[e.ID], organizers...)
}

// AddActivity seeds an activity.
func (m *Memory) AddActivity(a models.Activity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[a.ID] = a
}

// SetStaff assigns a user to an activity with a role.
func (m *Memory) SetStaff(activityID, userID uuid.UUID, role models.ActivityUserRole) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staff[activityID] == nil {
		m.staff[activityID] = make(map[uuid.UUID]models.ActivityUserRole)
	}
	m.staff[activityID][userID] = role
}

func (m *Memory) OrganizedEvents(_ context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Event, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.Event
	for eventID, users := range m.organizers {
		e, ok := m.events[eventID]
		if !ok || !InWindow(e, w, now) {
			continue
		}
		for _, u := range users {
			if u == userID {
				matched = append(matched, e)
				break
			}
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].StartDate.Before(matched[j].StartDate) })
	return sliceEvents(matched, offset, limit), len(matched), nil
}

func (m *Memory) ResponsibleActivities(_ context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Activity, int, error) {
	return m.matchActivities(userID, w, now, offset, limit, func(role models.ActivityUserRole) bool {
		return role == models.ActivityUserResponsible
	})
}

func (m *Memory) TeachingActivities(_ context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Activity, int, error) {
	return m.matchActivities(userID, w, now, offset, limit, func(role models.ActivityUserRole) bool {
		return role == models.ActivityUserTeaching || role == models.ActivityUserResponsible
	})
}

func (m *Memory) matchActivities(userID uuid.UUID, w Window, now time.Time, offset, limit int, roleOK func(models.ActivityUserRole) bool) ([]models.Activity, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var matched []models.Activity
	for activityID, users := range m.staff {
		role, ok := users[userID]
		if !ok || !roleOK(role) {
			continue
		}
		a, ok := m.activities[activityID]
		if !ok {
			continue
		}
		e, ok := m.events[a.EventID]
		if !ok || !InWindow(e, w, now) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })
	return sliceActivities(matched, offset, limit), len(matched), nil
}

func sliceEvents(list []models.Event, offset, limit int) []models.Event {
	if offset >= len(list) {
		return []models.Event{}
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}

func sliceActivities(list []models.Activity, offset, limit int) []models.Activity {
	if offset >= len(list) {
		return []models.Activity{}
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
