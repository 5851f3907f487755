package responsibilities

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atena-events/backend/internal/models"
)

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func eventAt(name string, start time.Time, end *time.Time) models.Event {
	return models.Event{ID: uuid.New(), Name: name, StartDate: start, EndDate: end}
}

func ptr(t time.Time) *time.Time { return &t }

// Seeds a user who organizes three events (two not yet finished, one
// finished) and staffs three activities (responsible for one current and
// two past, plus teaching-only on another current one).
func seed(t *testing.T) (*Memory, uuid.UUID) {
	t.Helper()
	store := NewMemory()
	userID := uuid.New()

	current1 := eventAt("Tech Week", testNow.Add(24*time.Hour), nil)
	current2 := eventAt("Research Fair", testNow.Add(-48*time.Hour), ptr(testNow.Add(48*time.Hour)))
	past := eventAt("Last Year Symposium", testNow.Add(-30*24*time.Hour), ptr(testNow.Add(-29*24*time.Hour)))
	store.AddEvent(current1, userID)
	store.AddEvent(current2, userID)
	store.AddEvent(past, userID)

	// Someone else's event never shows up.
	store.AddEvent(eventAt("Other Event", testNow.Add(time.Hour), nil), uuid.New())

	respCurrent := models.Activity{ID: uuid.New(), EventID: current1.ID, Name: "Opening Talk"}
	respPast1 := models.Activity{ID: uuid.New(), EventID: past.ID, Name: "Closing Panel"}
	respPast2 := models.Activity{ID: uuid.New(), EventID: past.ID, Name: "Go Workshop"}
	teachOnly := models.Activity{ID: uuid.New(), EventID: current2.ID, Name: "Lab Session"}
	for _, a := range []models.Activity{respCurrent, respPast1, respPast2, teachOnly} {
		store.AddActivity(a)
	}
	store.SetStaff(respCurrent.ID, userID, models.ActivityUserResponsible)
	store.SetStaff(respPast1.ID, userID, models.ActivityUserResponsible)
	store.SetStaff(respPast2.ID, userID, models.ActivityUserResponsible)
	store.SetStaff(teachOnly.ID, userID, models.ActivityUserTeaching)

	return store, userID
}

func TestFindPartitionsByWindow(t *testing.T) {
	store, userID := seed(t)
	svc := NewService(store)

	current, err := svc.Find(context.Background(), userID, WindowCurrent, Page{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, current.TotalEvents)
	assert.Equal(t, 1, current.TotalActivities, "teaching-only staff must not count as responsible")
	assert.Equal(t, 3, current.TotalCount)

	past, err := svc.Find(context.Background(), userID, WindowPast, Page{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, past.TotalEvents)
	assert.Equal(t, 2, past.TotalActivities)
	assert.Equal(t, 3, past.TotalCount)
}

func TestFindSubListsAgreeWithCombined(t *testing.T) {
	store, userID := seed(t)
	svc := NewService(store)

	combined, err := svc.Find(context.Background(), userID, WindowCurrent, Page{}, testNow)
	require.NoError(t, err)

	events, totalEvents, err := svc.FindEvents(context.Background(), userID, WindowCurrent, Page{}, testNow)
	require.NoError(t, err)
	activities, totalActivities, err2 := svc.FindActivities(context.Background(), userID, WindowCurrent, Page{}, testNow)
	require.NoError(t, err2)

	assert.Equal(t, combined.TotalEvents, totalEvents)
	assert.Equal(t, combined.TotalActivities, totalActivities)
	assert.Len(t, events, combined.TotalEvents)
	assert.Len(t, activities, combined.TotalActivities)
}

func TestEventWithoutEndDateUsesStartDate(t *testing.T) {
	store := NewMemory()
	userID := uuid.New()
	store.AddEvent(eventAt("One Day Meetup", testNow.Add(-time.Hour), nil), userID)
	svc := NewService(store)

	_, total, err := svc.FindEvents(context.Background(), userID, WindowPast, Page{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = svc.FindEvents(context.Background(), userID, WindowCurrent, Page{}, testNow)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestTeachingListingIncludesBothRoles(t *testing.T) {
	store, userID := seed(t)
	svc := NewService(store)

	_, total, err := svc.FindTeaching(context.Background(), userID, WindowCurrent, Page{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, total, "responsible and teaching-only current activities")
}

func TestRoleReassignmentNeverDoubleCounts(t *testing.T) {
	store := NewMemory()
	userID := uuid.New()
	event := eventAt("Tech Week", testNow.Add(24*time.Hour), nil)
	store.AddEvent(event)
	activity := models.Activity{ID: uuid.New(), EventID: event.ID, Name: "Opening Talk"}
	store.AddActivity(activity)

	// Reassignment replaces the role; the pair stays unique.
	store.SetStaff(activity.ID, userID, models.ActivityUserTeaching)
	store.SetStaff(activity.ID, userID, models.ActivityUserResponsible)

	svc := NewService(store)
	_, total, err := svc.FindTeaching(context.Background(), userID, WindowCurrent, Page{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = svc.FindActivities(context.Background(), userID, WindowCurrent, Page{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestPaginationExhaustion(t *testing.T) {
	store := NewMemory()
	userID := uuid.New()
	for i := 0; i < 5; i++ {
		store.AddEvent(eventAt("Event", testNow.Add(time.Duration(i)*time.Hour), nil), userID)
	}
	svc := NewService(store)

	page1, total, err := svc.FindEvents(context.Background(), userID, WindowCurrent, Page{Page: 1, Limit: 2}, testNow)
	require.NoError(t, err)
	assert.Len(t, page1, 2)
	assert.Equal(t, 5, total)

	page3, total, err := svc.FindEvents(context.Background(), userID, WindowCurrent, Page{Page: 3, Limit: 2}, testNow)
	require.NoError(t, err)
	assert.Len(t, page3, 1)
	assert.Equal(t, 5, total)

	// Past the last page: empty slice, total unchanged.
	page4, total, err := svc.FindEvents(context.Background(), userID, WindowCurrent, Page{Page: 4, Limit: 2}, testNow)
	require.NoError(t, err)
	assert.Empty(t, page4)
	assert.Equal(t, 5, total)
}

func TestPageNormalize(t *testing.T) {
	p := Page{Page: 0, Limit: -3}.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, defaultLimit, p.Limit)
	assert.Zero(t, p.Offset())

	p = Page{Page: 3, Limit: 500}.Normalize()
	assert.Equal(t, maxLimit, p.Limit)
	assert.Equal(t, 2*maxLimit, p.Offset())
}

func TestWindowFromOld(t *testing.T) {
	assert.Equal(t, WindowPast, WindowFromOld(true))
	assert.Equal(t, WindowCurrent, WindowFromOld(false))
}
