package enrollments

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

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *Memory
	service *Service
	event   models.Event
}

func newFixture() *fixture {
	store := NewMemory()
	event := models.Event{ID: uuid.New(), Name: "Tech Week", StartDate: testNow, StatusActive: true}
	store.AddEvent(event)
	return &fixture{store: store, service: NewService(store, nil, nil), event: event}
}

func (f *fixture) addUser() models.User {
	u := models.User{ID: uuid.New(), Name: "Student", Active: true, Role: models.RoleDefault}
	f.store.AddUser(u)
	return u
}

func (f *fixture) addActivity(name string, vacancy int, occurrences ...models.Schedule) models.Activity {
	a := models.Activity{ID: uuid.New(), EventID: f.event.ID, Name: name, Vacancy: vacancy}
	for i := range occurrences {
		occurrences[i].ActivityID = a.ID
	}
	f.store.AddActivity(a, occurrences...)
	return a
}

func occurrence(startOffset time.Duration, minutes int) models.Schedule {
	return models.Schedule{ID: uuid.New(), StartDate: testNow.Add(startOffset), DurationInMinutes: minutes}
}

func TestEnrollSuccess(t *testing.T) {
	f := newFixture()
	user := f.addUser()
	activity := f.addActivity("Go Workshop", 10, occurrence(24*time.Hour, 120))

	reg, err := f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	require.NoError(t, err)
	assert.Equal(t, user.ID, reg.UserID)
	assert.Equal(t, activity.ID, reg.ActivityID)
	assert.Equal(t, testNow, reg.RegistryDate)
	assert.Equal(t, 0, reg.Rating, "new registrations start unrated")
	assert.False(t, reg.ReadyForCertificate)
}

func TestEnrollUnknownUserAndActivity(t *testing.T) {
	f := newFixture()
	activity := f.addActivity("Go Workshop", 10)

	_, err := f.service.Enroll(context.Background(), uuid.New(), activity.ID, testNow)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))

	user := f.addUser()
	_, err = f.service.Enroll(context.Background(), user.ID, uuid.New(), testNow)
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestEnrollDuplicateIsRejectedOnce(t *testing.T) {
	f := newFixture()
	user := f.addUser()
	activity := f.addActivity("Go Workshop", 10, occurrence(24*time.Hour, 60))

	_, err := f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	require.NoError(t, err)

	_, err = f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	assert.True(t, domain.IsKind(err, domain.KindDuplicateRegistration))

	count, err := f.store.CountByActivity(context.Background(), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "exactly one registration persists")
}

func TestEnrollOwnActivityForbidden(t *testing.T) {
	f := newFixture()
	user := f.addUser()
	activity := f.addActivity("Go Workshop", 10)
	f.store.SetStaff(activity.ID, user.ID)

	_, err := f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	assert.True(t, domain.IsKind(err, domain.KindSelfEnrollment))
}

func TestEnrollScheduleConflictNamesTheCommitment(t *testing.T) {
	f := newFixture()
	user := f.addUser()

	taken := f.addActivity("Morning Lecture", 10, occurrence(0, 120))
	_, err := f.service.Enroll(context.Background(), user.ID, taken.ID, testNow)
	require.NoError(t, err)

	overlapping := f.addActivity("Parallel Panel", 10, occurrence(time.Hour, 60))
	_, err = f.service.Enroll(context.Background(), user.ID, overlapping.ID, testNow)
	require.True(t, domain.IsKind(err, domain.KindScheduleConflict))

	var de *domain.Error
	require.ErrorAs(t, err, &de)
	assert.Contains(t, de.Entity, "Morning Lecture")
	assert.Contains(t, de.Entity, "Tech Week")
}

func TestEnrollBackToBackDoesNotConflict(t *testing.T) {
	f := newFixture()
	user := f.addUser()

	first := f.addActivity("First Slot", 10, occurrence(0, 60))
	_, err := f.service.Enroll(context.Background(), user.ID, first.ID, testNow)
	require.NoError(t, err)

	// Starts exactly when the first ends: half-open intervals, no clash.
	second := f.addActivity("Second Slot", 10, occurrence(time.Hour, 60))
	_, err = f.service.Enroll(context.Background(), user.ID, second.ID, testNow)
	assert.NoError(t, err)
}

func TestEnrollDoesNotConflictWithItself(t *testing.T) {
	f := newFixture()
	user := f.addUser()
	activity := f.addActivity("Go Workshop", 10, occurrence(0, 120))

	_, err := f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	require.NoError(t, err)

	// The user's own registration in this activity must not be treated as
	// a clashing commitment on re-evaluation; the duplicate rule fires
	// first instead.
	_, err = f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	assert.True(t, domain.IsKind(err, domain.KindDuplicateRegistration))
}

func TestEnrollCapacityFull(t *testing.T) {
	f := newFixture()
	activity := f.addActivity("Tiny Room", 1)

	first := f.addUser()
	_, err := f.service.Enroll(context.Background(), first.ID, activity.ID, testNow)
	require.NoError(t, err)

	second := f.addUser()
	_, err = f.service.Enroll(context.Background(), second.ID, activity.ID, testNow)
	assert.True(t, domain.IsKind(err, domain.KindCapacityExceeded))
}

func TestConcurrentEnrollNeverExceedsVacancy(t *testing.T) {
	const vacancy = 3
	const attempts = 24

	f := newFixture()
	activity := f.addActivity("Contested", vacancy)

	var users []models.User
	for i := 0; i < attempts; i++ {
		users = append(users, f.addUser())
	}

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.service.Enroll(context.Background(), users[i].ID, activity.ID, testNow)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, domain.IsKind(err, domain.KindCapacityExceeded))
		}
	}
	assert.Equal(t, vacancy, succeeded)

	count, err := f.store.CountByActivity(context.Background(), activity.ID)
	require.NoError(t, err)
	assert.Equal(t, vacancy, count)
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newFixture()
	user := f.addUser()
	activity := f.addActivity("Go Workshop", 10)

	_, err := f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	require.NoError(t, err)

	count, err := f.service.Cancel(context.Background(), user.ID, activity.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = f.service.Cancel(context.Background(), user.ID, activity.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count, "cancelling an absent registration is a no-op")
}

func TestCancelFreesTheSeat(t *testing.T) {
	f := newFixture()
	activity := f.addActivity("Tiny Room", 1)

	first := f.addUser()
	_, err := f.service.Enroll(context.Background(), first.ID, activity.ID, testNow)
	require.NoError(t, err)

	second := f.addUser()
	_, err = f.service.Enroll(context.Background(), second.ID, activity.ID, testNow)
	require.True(t, domain.IsKind(err, domain.KindCapacityExceeded))

	_, err = f.service.Cancel(context.Background(), first.ID, activity.ID)
	require.NoError(t, err)

	_, err = f.service.Enroll(context.Background(), second.ID, activity.ID, testNow)
	assert.NoError(t, err)
}

func TestRate(t *testing.T) {
	f := newFixture()
	user := f.addUser()
	activity := f.addActivity("Go Workshop", 10)

	err := f.service.Rate(context.Background(), user.ID, activity.ID, 4)
	assert.True(t, domain.IsKind(err, domain.KindNotFound), "cannot rate without a registration")

	_, err = f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	require.NoError(t, err)

	assert.True(t, domain.IsKind(f.service.Rate(context.Background(), user.ID, activity.ID, 0), domain.KindInvalid))
	assert.True(t, domain.IsKind(f.service.Rate(context.Background(), user.ID, activity.ID, 6), domain.KindInvalid))
	assert.NoError(t, f.service.Rate(context.Background(), user.ID, activity.ID, 5))
}

type recordingNotifier struct {
	mu      sync.Mutex
	updates []int
}

func (n *recordingNotifier) SeatsChanged(_ uuid.UUID, remaining int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.updates = append(n.updates, remaining)
}

func TestSeatNotifications(t *testing.T) {
	f := newFixture()
	notifier := &recordingNotifier{}
	f.service = NewService(f.store, notifier, nil)

	user := f.addUser()
	activity := f.addActivity("Go Workshop", 5)

	_, err := f.service.Enroll(context.Background(), user.ID, activity.ID, testNow)
	require.NoError(t, err)
	_, err = f.service.Cancel(context.Background(), user.ID, activity.ID)
	require.NoError(t, err)

	assert.Equal(t, []int{4, 5}, notifier.updates)
}
