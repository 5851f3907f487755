package presence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
)

// Memory implements Store in memory for tests.
type Memory struct {
	mu            sync.Mutex
	registrations map[uuid.UUID]models.ActivityRegistration
	activities    map[uuid.UUID]models.Activity
	schedules     map[uuid.UUID]models.Schedule
	presences     map[[2]uuid.UUID]models.Presence // (registration, schedule)
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		registrations: make(map[uuid.UUID]models.ActivityRegistration),
		activities:    make(map[uuid.UUID]models.Activity),
		schedules:     make(map[uuid.UUID]models.Schedule),
		presences:     make(map[[2]uuid.UUID]models.Presence),
	}
}

// AddActivity seeds an activity with its schedules.
func (m *Memory) AddActivity(a models.Activity, schedules ...models.Schedule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activities[a.ID] = a
	for _, s := range schedules {
		s.ActivityID = a.ID
		m.schedules[s.ID] = s
	}
}

// AddRegistration seeds a registration.
func (m *Memory) AddRegistration(reg models.ActivityRegistration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.registrations[reg.ID] = reg
}

// Readiness returns the current readiness flag of a registration.
func (m *Memory) Readiness(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registrations[id].ReadyForCertificate
}

func (m *Memory) GetRegistration(_ context.Context, id uuid.UUID) (*models.ActivityRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "registration not found")
	}
	return &reg, nil
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

func (m *Memory) GetSchedule(_ context.Context, id uuid.UUID) (*models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.schedules[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "schedule not found")
	}
	return &s, nil
}

func (m *Memory) ListSchedules(_ context.Context, activityID uuid.UUID) ([]models.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.Schedule
	for _, s := range m.schedules {
		if s.ActivityID == activityID {
			list = append(list, s)
		}
	}
	return list, nil
}

func (m *Memory) Upsert(_ context.Context, registrationID, scheduleID uuid.UUID, now time.Time) (*models.Presence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pair := [2]uuid.UUID{registrationID, scheduleID}
	p, ok := m.presences[pair]
	if !ok {
		p = models.Presence{ID: uuid.New(), RegistrationID: registrationID, ScheduleID: scheduleID}
	}
	p.CheckedInAt = now
	m.presences[pair] = p
	return &p, nil
}

func (m *Memory) List(_ context.Context, registrationID uuid.UUID) ([]models.Presence, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []models.Presence
	for _, p := range m.presences {
		if p.RegistrationID == registrationID {
			list = append(list, p)
		}
	}
	return list, nil
}

func (m *Memory) SetReadiness(_ context.Context, registrationID uuid.UUID, ready bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	reg, ok := m.registrations[registrationID]
	if !ok {
		return domain.E(domain.KindNotFound, "registration not found")
	}
	reg.ReadyForCertificate = ready
	m.registrations[registrationID] = reg
	return nil
}
