package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the platform.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDefault Role = "default"
)

// User represents a platform user.
type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Cpf       string    `json:"cpf"`
	CellPhone string    `json:"cell_phone"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserProfile is the full projection served to admin callers (no credentials).
type UserProfile struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Cpf       string    `json:"cpf"`
	CellPhone string    `json:"cell_phone"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserSummary is the minimal projection served to organizer and
// responsible-user callers.
type UserSummary struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Cpf  string    `json:"cpf"`
}

// ToProfile converts User to the admin projection.
func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Cpf:       u.Cpf,
		CellPhone: u.CellPhone,
		Role:      u.Role,
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}

// ToSummary converts User to the minimal projection.
func (u *User) ToSummary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Cpf: u.Cpf}
}
