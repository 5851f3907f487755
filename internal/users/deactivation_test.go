package users

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
)

var testNow = time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)

func activeUser(name string) models.User {
	return models.User{ID: uuid.New(), Name: name, Role: models.RoleDefault, Active: true}
}

func TestDeactivateWithOnlyPastDuties(t *testing.T) {
	store := NewMemory()
	u := activeUser("Ana")
	store.AddUser(u)
	store.AddDuty(u.ID, "Last Year Symposium", testNow.Add(-30*24*time.Hour))

	svc := NewService(store)
	count, err := svc.Deactivate(context.Background(), u.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.False(t, store.Active(u.ID))
}

func TestDeactivateBlockedByUnfinishedEvent(t *testing.T) {
	store := NewMemory()
	u := activeUser("Bruno")
	store.AddUser(u)
	store.AddDuty(u.ID, "Tech Week", testNow.Add(48*time.Hour))

	svc := NewService(store)
	count, err := svc.Deactivate(context.Background(), u.ID, testNow)
	assert.Zero(t, count)
	require.True(t, domain.IsKind(err, domain.KindUserCannotBeDisabled))

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Tech Week", de.Entity, "conflict names the blocking event")

	// The guard must leave the account untouched.
	assert.True(t, store.Active(u.ID))
}

func TestDeactivateBlockedByOngoingEvent(t *testing.T) {
	store := NewMemory()
	u := activeUser("Carla")
	store.AddUser(u)
	// Started in the past, ends in the future: still unfinished.
	store.AddDuty(u.ID, "Research Fair", testNow.Add(2*time.Hour))

	svc := NewService(store)
	_, err := svc.Deactivate(context.Background(), u.ID, testNow)
	assert.True(t, domain.IsKind(err, domain.KindUserCannotBeDisabled))
}

// lateDutyStore simulates an organizer assignment committing while the
// deactivation is in flight: the duty appears only at write time.
type lateDutyStore struct {
	*Memory
	once sync.Once
}

func (s *lateDutyStore) Deactivate(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	s.once.Do(func() { s.AddDuty(userID, "Tech Week", now.Add(72*time.Hour)) })
	return s.Memory.Deactivate(ctx, userID, now)
}

func TestDeactivateSeesConcurrentlyAddedDuty(t *testing.T) {
	mem := NewMemory()
	u := activeUser("Gustavo")
	mem.AddUser(u)
	store := &lateDutyStore{Memory: mem}

	// No duty is visible before the call; the write itself must still
	// observe the one that lands concurrently and refuse to flip.
	svc := NewService(store)
	count, err := svc.Deactivate(context.Background(), u.ID, testNow)
	assert.Zero(t, count)
	require.True(t, domain.IsKind(err, domain.KindUserCannotBeDisabled))
	assert.True(t, mem.Active(u.ID))
}

func TestDeactivateMissingOrInactiveIsNoOp(t *testing.T) {
	store := NewMemory()
	svc := NewService(store)

	count, err := svc.Deactivate(context.Background(), uuid.New(), testNow)
	require.NoError(t, err)
	assert.Zero(t, count)

	inactive := activeUser("Davi")
	inactive.Active = false
	store.AddUser(inactive)

	count, err = svc.Deactivate(context.Background(), inactive.ID, testNow)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeactivateIdempotent(t *testing.T) {
	store := NewMemory()
	u := activeUser("Elisa")
	store.AddUser(u)
	svc := NewService(store)

	count, err := svc.Deactivate(context.Background(), u.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = svc.Deactivate(context.Background(), u.ID, testNow)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListProjections(t *testing.T) {
	store := NewMemory()
	u := activeUser("Fábio")
	u.Email = "fabio@example.com"
	u.Cpf = "12345678900"
	store.AddUser(u)
	svc := NewService(store)

	profiles, err := svc.ListProfiles(context.Background())
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "fabio@example.com", profiles[0].Email)

	summaries, err := svc.ListSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Fábio", summaries[0].Name)
	assert.Equal(t, "12345678900", summaries[0].Cpf)
}
