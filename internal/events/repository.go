// Package events covers event CRUD and organizer assignment.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
)

// Repository persists events and their organizer links.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an event repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const eventColumns = `id, name, description, start_date, end_date,
	registry_start_date, registry_end_date, status_active, status_visible,
	created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate,
		&e.RegistryStartDate, &e.RegistryEndDate, &e.StatusActive, &e.StatusVisible,
		&e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "event not found")
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new event.
func (r *Repository) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	const q = `INSERT INTO events
			(name, description, start_date, end_date, registry_start_date, registry_end_date, status_active, status_visible)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, e.Name, e.Description, e.StartDate, e.EndDate,
		e.RegistryStartDate, e.RegistryEndDate, e.StatusActive, e.StatusVisible))
}

// Get returns an event by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// List returns visible events, newest first. Admin callers see hidden
// ones too.
func (r *Repository) List(ctx context.Context, includeHidden bool) ([]models.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	if !includeHidden {
		q += ` WHERE status_visible = true`
	}
	q += ` ORDER BY start_date DESC, id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Event
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate,
			&e.RegistryStartDate, &e.RegistryEndDate, &e.StatusActive, &e.StatusVisible,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// Update rewrites the mutable fields of an event.
func (r *Repository) Update(ctx context.Context, e *models.Event) (*models.Event, error) {
	const q = `UPDATE events SET
			name = $2, description = $3, start_date = $4, end_date = $5,
			registry_start_date = $6, registry_end_date = $7,
			status_active = $8, status_visible = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + eventColumns
	return scanEvent(r.pool.QueryRow(ctx, q, e.ID, e.Name, e.Description, e.StartDate, e.EndDate,
		e.RegistryStartDate, e.RegistryEndDate, e.StatusActive, e.StatusVisible))
}

// Delete removes an event.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "event not found")
	}
	return nil
}

// AddOrganizer links a user as organizer; re-adding is a no-op.
func (r *Repository) AddOrganizer(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO event_organizers (event_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		eventID, userID)
	return err
}

// RemoveOrganizer unlinks an organizer.
func (r *Repository) RemoveOrganizer(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM event_organizers WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	return err
}

// Organizers lists the organizer users of an event.
func (r *Repository) Organizers(ctx context.Context, eventID uuid.UUID) ([]models.UserSummary, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.name, u.cpf FROM users u
		 JOIN event_organizers eo ON eo.user_id = u.id
		 WHERE eo.event_id = $1 ORDER BY u.name`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserSummary
	for rows.Next() {
		var u models.UserSummary
		if err := rows.Scan(&u.ID, &u.Name, &u.Cpf); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// RegistrationOpen reports whether enrollment is inside the event's
// registry window at the given instant.
func (r *Repository) RegistrationOpen(ctx context.Context, eventID uuid.UUID, now time.Time) (bool, error) {
	const q = `SELECT registry_start_date <= $2 AND registry_end_date >= $2 AND status_active
		FROM events WHERE id = $1`
	var open bool
	err := r.pool.QueryRow(ctx, q, eventID, now).Scan(&open)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, domain.E(domain.KindNotFound, "event not found")
	}
	return open, err
}
