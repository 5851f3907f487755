package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
)

type duty struct {
	eventName string
	eventEnd  time.Time
}

// Memory implements Store in memory for tests. Deactivate checks duties
// and flips the flag under one mutex hold, mirroring the single-snapshot
// guarantee of the SQL store.
type Memory struct {
	mu     sync.Mutex
	users  map[uuid.UUID]models.User
	duties map[uuid.UUID][]duty
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[uuid.UUID]models.User),
		duties: make(map[uuid.UUID][]duty),
	}
}

// AddUser seeds a user.
func (m *Memory) AddUser(u models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

// AddDuty records the user as organizer or responsible staff in an
// event ending at the given time.
func (m *Memory) AddDuty(userID uuid.UUID, eventName string, eventEnd time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.duties[userID] = append(m.duties[userID], duty{eventName: eventName, eventEnd: eventEnd})
}

// Active returns the current active flag of a user.
func (m *Memory) Active(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id].Active
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

func (m *Memory) Deactivate(_ context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.duties[userID] {
		if !d.eventEnd.Before(now) {
			return 0, domain.EEntity(domain.KindUserCannotBeDisabled,
				"user has unfinished responsibilities", d.eventName)
		}
	}
	u, ok := m.users[userID]
	if !ok || !u.Active {
		return 0, nil
	}
	u.Active = false
	m.users[userID] = u
	return 1, nil
}

func (m *Memory) List(_ context.Context) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list, nil
}
