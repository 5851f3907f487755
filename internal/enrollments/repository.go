package enrollments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
)

// Repository implements Store over PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an enrollments repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const (
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// GetUser returns a user by ID.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const q = `SELECT id, name, email, password, cpf, cell_phone, role, active, created_at, updated_at
		FROM users WHERE id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, id).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Cpf,
		&u.CellPhone, &u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
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

// GetRegistration returns the registration for (user, activity), or
// (nil, nil) when absent.
func (r *Repository) GetRegistration(ctx context.Context, userID, activityID uuid.UUID) (*models.ActivityRegistration, error) {
	const q = `SELECT id, activity_id, user_id, registry_date, rating, ready_for_certificate, created_at, updated_at
		FROM activity_registrations WHERE user_id = $1 AND activity_id = $2`
	var reg models.ActivityRegistration
	err := r.pool.QueryRow(ctx, q, userID, activityID).Scan(&reg.ID, &reg.ActivityID, &reg.UserID,
		&reg.RegistryDate, &reg.Rating, &reg.ReadyForCertificate, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// IsActivityStaff reports whether the user is a teaching or responsible
// user of the activity.
func (r *Repository) IsActivityStaff(ctx context.Context, activityID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM activity_users WHERE activity_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.pool.QueryRow(ctx, q, activityID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
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

// ListCommitments returns the user's registered activities across all
// events, excluding one activity, each with its schedules.
func (r *Repository) ListCommitments(ctx context.Context, userID, excludeActivityID uuid.UUID) ([]Commitment, error) {
	const q = `SELECT a.id, a.name, e.name, s.id, s.activity_id, s.start_date, s.duration_in_minutes, s.room_id, s.url
		FROM activity_registrations r
		JOIN activities a ON a.id = r.activity_id
		JOIN events e ON e.id = a.event_id
		JOIN schedules s ON s.activity_id = a.id
		WHERE r.user_id = $1 AND a.id <> $2
		ORDER BY a.id, s.start_date`
	rows, err := r.pool.Query(ctx, q, userID, excludeActivityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Commitment
	for rows.Next() {
		var (
			activityID   uuid.UUID
			activityName string
			eventName    string
			s            models.Schedule
		)
		if err := rows.Scan(&activityID, &activityName, &eventName,
			&s.ID, &s.ActivityID, &s.StartDate, &s.DurationInMinutes, &s.RoomID, &s.URL); err != nil {
			return nil, err
		}
		if len(list) == 0 || list[len(list)-1].ActivityID != activityID {
			list = append(list, Commitment{
				ActivityID:   activityID,
				ActivityName: activityName,
				EventName:    eventName,
			})
		}
		last := &list[len(list)-1]
		last.Schedules = append(last.Schedules, s)
	}
	return list, rows.Err()
}

// Admit checks capacity and inserts the registration inside one
// transaction. The activity row is locked so concurrent attempts on the
// last seat serialize; the unique (user_id, activity_id) constraint is the
// backstop against duplicate inserts racing the precondition check.
func (r *Repository) Admit(ctx context.Context, activityID, userID uuid.UUID, now time.Time) (*models.ActivityRegistration, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var vacancy int
	err = tx.QueryRow(ctx, `SELECT vacancy FROM activities WHERE id = $1 FOR UPDATE`, activityID).Scan(&vacancy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "activity not found")
	}
	if err != nil {
		return nil, translatePgErr(err)
	}

	var count int
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM activity_registrations WHERE activity_id = $1`, activityID).Scan(&count); err != nil {
		return nil, translatePgErr(err)
	}
	if count >= vacancy {
		return nil, domain.E(domain.KindCapacityExceeded, "activity full")
	}

	const ins = `INSERT INTO activity_registrations (activity_id, user_id, registry_date)
		VALUES ($1, $2, $3)
		RETURNING id, activity_id, user_id, registry_date, rating, ready_for_certificate, created_at, updated_at`
	var reg models.ActivityRegistration
	err = tx.QueryRow(ctx, ins, activityID, userID, now).Scan(&reg.ID, &reg.ActivityID, &reg.UserID,
		&reg.RegistryDate, &reg.Rating, &reg.ReadyForCertificate, &reg.CreatedAt, &reg.UpdatedAt)
	if err != nil {
		return nil, translatePgErr(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, translatePgErr(err)
	}
	return &reg, nil
}

// Remove deletes a registration; returns rows affected (0 when absent).
func (r *Repository) Remove(ctx context.Context, userID, activityID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM activity_registrations WHERE user_id = $1 AND activity_id = $2`, userID, activityID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Rate updates the rating on an existing registration.
func (r *Repository) Rate(ctx context.Context, userID, activityID uuid.UUID, rating int) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE activity_registrations SET rating = $1, updated_at = NOW() WHERE user_id = $2 AND activity_id = $3`,
		rating, userID, activityID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// CountByActivity returns the number of registrations for an activity.
func (r *Repository) CountByActivity(ctx context.Context, activityID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM activity_registrations WHERE activity_id = $1`, activityID).Scan(&count)
	return count, err
}

// translatePgErr maps constraint and concurrency failures onto the error
// vocabulary the service understands.
func translatePgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return domain.E(domain.KindDuplicateRegistration, "already registered")
		case pgSerializationFailure, pgDeadlockDetected:
			return domain.ErrTransient
		}
	}
	return err
}
