package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityCategory groups activities (talk, workshop, minicourse...).
type ActivityCategory struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

// Room is a physical location for schedule occurrences.
type Room struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Location string    `json:"location"`
	Seats    int       `json:"seats"`
}

// Activity is a scheduled session within an event with limited capacity.
type Activity struct {
	ID                uuid.UUID `json:"id"`
	EventID           uuid.UUID `json:"event_id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Vacancy           int       `json:"vacancy"`
	WorkloadInMinutes int       `json:"workload_in_minutes"`
	CategoryID        uuid.UUID `json:"category_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// ActivityUserRole discriminates the activity staff join rows.
type ActivityUserRole string

const (
	ActivityUserTeaching    ActivityUserRole = "teaching"
	ActivityUserResponsible ActivityUserRole = "responsible"
)

// ActivityUser links a user to an activity as teaching or responsible staff.
type ActivityUser struct {
	ActivityID uuid.UUID        `json:"activity_id"`
	UserID     uuid.UUID        `json:"user_id"`
	Role       ActivityUserRole `json:"role"`
	AddedAt    time.Time        `json:"added_at"`
}

// Schedule is one time+place occurrence of an activity. The effective
// interval is [StartDate, StartDate + DurationInMinutes).
type Schedule struct {
	ID                uuid.UUID  `json:"id"`
	ActivityID        uuid.UUID  `json:"activity_id"`
	StartDate         time.Time  `json:"start_date"`
	DurationInMinutes int        `json:"duration_in_minutes"`
	RoomID            *uuid.UUID `json:"room_id,omitempty"`
	URL               *string    `json:"url,omitempty"`
}

// EndDate returns the exclusive end of the occurrence.
func (s Schedule) EndDate() time.Time {
	return s.StartDate.Add(time.Duration(s.DurationInMinutes) * time.Minute)
}
