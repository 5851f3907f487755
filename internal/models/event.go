package models

import (
	"time"

	"github.com/google/uuid"
)

// Event is a published academic event holding scheduled activities.
type Event struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Description       string     `json:"description"`
	StartDate         time.Time  `json:"start_date"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	RegistryStartDate time.Time  `json:"registry_start_date"`
	RegistryEndDate   time.Time  `json:"registry_end_date"`
	StatusActive      bool       `json:"status_active"`
	StatusVisible     bool       `json:"status_visible"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// EventOrganizer links a user as organizer of an event.
type EventOrganizer struct {
	EventID uuid.UUID `json:"event_id"`
	UserID  uuid.UUID `json:"user_id"`
	AddedAt time.Time `json:"added_at"`
}
