package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityRegistration is a user's enrollment in one activity,
// unique per (user, activity).
type ActivityRegistration struct {
	ID                  uuid.UUID `json:"id"`
	ActivityID          uuid.UUID `json:"activity_id"`
	UserID              uuid.UUID `json:"user_id"`
	RegistryDate        time.Time `json:"registry_date"`
	Rating              int       `json:"rating"` // 0 = unrated
	ReadyForCertificate bool      `json:"ready_for_certificate"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// Presence is the attendance marker for one registration at one
// schedule occurrence, unique per (registration, schedule).
type Presence struct {
	ID             uuid.UUID `json:"id"`
	RegistrationID uuid.UUID `json:"registration_id"`
	ScheduleID     uuid.UUID `json:"schedule_id"`
	CheckedInAt    time.Time `json:"checked_in_at"`
}
