package enrollments

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
)

// Memory implements Store in memory. It backs the service tests and local
// runs without PostgreSQL; Admit holds the mutex across the capacity check
// and the insert, mirroring the row lock the SQL implementation takes.
type Memory struct {
	mu            sync.Mutex
	users         map[uuid.UUID]models.User
	events        map[uuid.UUID]models.Event
	activities    map[uuid.UUID]models.Activity
	schedules     map[uuid.UUID][]models.Schedule
	staff         map[uuid.UUID]map[uuid.UUID]bool
	registrations map[uuid.UUID]models.ActivityRegistration
	regByPair     map[[2]uuid.UUID]uuid.UUID // (user, activity) -> registration id
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:         make(map[uuid.UUID]models.User),
		events:        make(map[uuid.UUID]models.Event),
		activities:    make(map[uuid.UUID]models.Activity),
		schedules:     make(map[uuid.UUID][]models.Schedule),
		staff:         make(map[uuid.UUID]map[uuid.UUID]bool),
		registrations: make(map[uuid.UUID]models.ActivityRegistration),
		regByPair:     make(map[[2]uuid.UUID]uuid.UUID),
	}
}

// AddUser seeds a user.
func (m *Memory) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// AddEvent seeds an event.
func (m *Memory) AddEvent(e models.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[e.ID] = e
}

// AddActivity seeds an activity with its schedule occurrences.
func (m *Memory) AddActivity(a models.Activity, schedules ...models.Schedule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[a.ID] = a
	m.schedules[a.ID] = append([]models.Schedule(nil), schedules...)
}

// SetStaff marks a user as teaching/responsible staff of an activity.
func (m *Memory) SetStaff(activityID, userID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.staff[activityID] == nil {
		m.staff[activityID] = make(map[uuid.UUID]bool)
	}
	m.staff[activityID][userID] = true
}

func (m *Memory) GetUser(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	return &u, nil
}

func (m *Memory) GetActivity(_ context.Context, id uuid.UUID) (*models.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.activities[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "activity not found")
	}
	return &a, nil
}

func (m *Memory) GetRegistration(_ context.Context, userID, activityID uuid.UUID) (*models.ActivityRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.regByPair[[2]uuid.UUID{userID, activityID}]
	if !ok {
		return nil, nil
	}
	reg := m.registrations[id]
	return &reg, nil
}

func (m *Memory) IsActivityStaff(_ context.Context, activityID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.staff[activityID][userID], nil
}

func (m *Memory) ListSchedules(_ context.Context, activityID uuid.UUID) ([]models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Schedule(nil), m.schedules[activityID]...), nil
}

func (m *Memory) ListCommitments(_ context.Context, userID, excludeActivityID uuid.UUID) ([]Commitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []Commitment
	for _, reg := range m.registrations {
		if reg.UserID != userID || reg.ActivityID == excludeActivityID {
			continue
		}
		a := m.activities[reg.ActivityID]
		list = append(list, Commitment{
			ActivityID:   a.ID,
			ActivityName: a.Name,
			EventName:    m.events[a.EventID].Name,
			Schedules:    append([]models.Schedule(nil), m.schedules[a.ID]...),
		})
	}
	return list, nil
}

func (m *Memory) Admit(_ context.Context, activityID, userID uuid.UUID, now time.Time) (*models.ActivityRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.activities[activityID]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "activity not found")
	}
	pair := [2]uuid.UUID{userID, activityID}
	if _, dup := m.regByPair[pair]; dup {
		return nil, domain.E(domain.KindDuplicateRegistration, "already registered")
	}
	count := 0
	for _, reg := range m.registrations {
		if reg.ActivityID == activityID {
			count++
		}
	}
	if count >= a.Vacancy {
		return nil, domain.E(domain.KindCapacityExceeded, "activity full")
	}

	reg := models.ActivityRegistration{
		ID:           uuid.New(),
		ActivityID:   activityID,
		UserID:       userID,
		RegistryDate: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	m.registrations[reg.ID] = reg
	m.regByPair[pair] = reg.ID
	return &reg, nil
}

func (m *Memory) Remove(_ context.Context, userID, activityID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pair := [2]uuid.UUID{userID, activityID}
	id, ok := m.regByPair[pair]
	if !ok {
		return 0, nil
	}
	delete(m.registrations, id)
	delete(m.regByPair, pair)
	return 1, nil
}

func (m *Memory) Rate(_ context.Context, userID, activityID uuid.UUID, rating int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.regByPair[[2]uuid.UUID{userID, activityID}]
	if !ok {
		return 0, nil
	}
	reg := m.registrations[id]
	reg.Rating = rating
	m.registrations[id] = reg
	return 1, nil
}

func (m *Memory) CountByActivity(_ context.Context, activityID uuid.UUID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, reg := range m.registrations {
		if reg.ActivityID == activityID {
			count++
		}
	}
	return count, nil
}
