package presence

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

// Repository implements Store over PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a presence repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetRegistration returns a registration by ID.
func (r *Repository) GetRegistration(ctx context.Context, id uuid.UUID) (*models.ActivityRegistration, error) {
	const q = `SELECT id, activity_id, user_id, registry_date, rating, ready_for_certificate, created_at, updated_at
		FROM activity_registrations WHERE id = $1`
	var reg models.ActivityRegistration
	err := r.pool.QueryRow(ctx, q, id).Scan(&reg.ID, &reg.ActivityID, &reg.UserID,
		&reg.RegistryDate, &reg.Rating, &reg.ReadyForCertificate, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "registration not found")
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// GetActivity returns an activity by ID.
func (r *Repository) GetActivity(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	const q = `SELECT id, event_id, name, description, vacancy, workload_in_minutes, category_id, created_at, updated_at
		FROM activities WHERE id = $1`
	var a models.Activity
	err := r.pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.EventID, &a.Name, &a.Description,
		&a.Vacancy, &a.WorkloadInMinutes, &a.CategoryID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "activity not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// GetSchedule returns a schedule occurrence by ID.
func (r *Repository) GetSchedule(ctx context.Context, id uuid.UUID) (*models.Schedule, error) {
	const q = `SELECT id, activity_id, start_date, duration_in_minutes, room_id, url FROM schedules WHERE id = $1`
	var s models.Schedule
	err := r.pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.ActivityID, &s.StartDate, &s.DurationInMinutes, &s.RoomID, &s.URL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "schedule not found")
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSchedules returns the schedule occurrences of an activity.
func (r *Repository) ListSchedules(ctx context.Context, activityID uuid.UUID) ([]models.Schedule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, activity_id, start_date, duration_in_minutes, room_id, url
		 FROM schedules WHERE activity_id = $1 ORDER BY start_date`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Schedule
	for rows.Next() {
		var s models.Schedule
		if err := rows.Scan(&s.ID, &s.ActivityID, &s.StartDate, &s.DurationInMinutes, &s.RoomID, &s.URL); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Upsert creates the presence row for (registration, schedule) or
// refreshes its check-in time, never duplicating the pair.
func (r *Repository) Upsert(ctx context.Context, registrationID, scheduleID uuid.UUID, now time.Time) (*models.Presence, error) {
	const q = `INSERT INTO presences (registration_id, schedule_id, checked_in_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (registration_id, schedule_id) DO UPDATE SET checked_in_at = EXCLUDED.checked_in_at
		RETURNING id, registration_id, schedule_id, checked_in_at`
	var p models.Presence
	err := r.pool.QueryRow(ctx, q, registrationID, scheduleID, now).
		Scan(&p.ID, &p.RegistrationID, &p.ScheduleID, &p.CheckedInAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns the presence rows of a registration.
func (r *Repository) List(ctx context.Context, registrationID uuid.UUID) ([]models.Presence, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, registration_id, schedule_id, checked_in_at
		 FROM presences WHERE registration_id = $1 ORDER BY checked_in_at`, registrationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Presence
	for rows.Next() {
		var p models.Presence
		if err := rows.Scan(&p.ID, &p.RegistrationID, &p.ScheduleID, &p.CheckedInAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// SetReadiness persists the derived readiness flag on the registration.
func (r *Repository) SetReadiness(ctx context.Context, registrationID uuid.UUID, ready bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE activity_registrations SET ready_for_certificate = $1, updated_at = NOW() WHERE id = $2`,
		ready, registrationID)
	return err
}
