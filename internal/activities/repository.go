// Package activities covers activity CRUD, schedule occurrences, rooms,
// categories and staff assignment.
package activities

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atena-events/backend/internal/models"
	"github.com/atena-events/backend/pkg/domain"
)

// Repository persists activities and their satellites.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an activity repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const activityColumns = `id, event_id, name, description, vacancy, workload_in_minutes, category_id, created_at, updated_at`

func scanActivity(row pgx.Row) (*models.Activity, error) {
	var a models.Activity
	err := row.Scan(&a.ID, &a.EventID, &a.Name, &a.Description, &a.Vacancy,
		&a.WorkloadInMinutes, &a.CategoryID, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "activity not found")
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts an activity under an event.
func (r *Repository) Create(ctx context.Context, a *models.Activity) (*models.Activity, error) {
	const q = `INSERT INTO activities (event_id, name, description, vacancy, workload_in_minutes, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + activityColumns
	return scanActivity(r.pool.QueryRow(ctx, q, a.EventID, a.Name, a.Description,
		a.Vacancy, a.WorkloadInMinutes, a.CategoryID))
}

// Get returns an activity by ID.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*models.Activity, error) {
	return scanActivity(r.pool.QueryRow(ctx, `SELECT `+activityColumns+` FROM activities WHERE id = $1`, id))
}

// ListByEvent returns the activities of an event.
func (r *Repository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]models.Activity, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+activityColumns+` FROM activities WHERE event_id = $1 ORDER BY created_at, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Activity
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Description, &a.Vacancy,
			&a.WorkloadInMinutes, &a.CategoryID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

// Update rewrites the mutable fields of an activity. Vacancy can only
// grow or match the current registration count, enforced by the caller.
func (r *Repository) Update(ctx context.Context, a *models.Activity) (*models.Activity, error) {
	const q = `UPDATE activities SET
			name = $2, description = $3, vacancy = $4, workload_in_minutes = $5,
			category_id = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + activityColumns
	return scanActivity(r.pool.QueryRow(ctx, q, a.ID, a.Name, a.Description,
		a.Vacancy, a.WorkloadInMinutes, a.CategoryID))
}

// Delete removes an activity.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "activity not found")
	}
	return nil
}

// AddSchedule inserts a schedule occurrence.
func (r *Repository) AddSchedule(ctx context.Context, s *models.Schedule) (*models.Schedule, error) {
	const q = `INSERT INTO schedules (activity_id, start_date, duration_in_minutes, room_id, url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, activity_id, start_date, duration_in_minutes, room_id, url`
	var out models.Schedule
	err := r.pool.QueryRow(ctx, q, s.ActivityID, s.StartDate, s.DurationInMinutes, s.RoomID, s.URL).
		Scan(&out.ID, &out.ActivityID, &out.StartDate, &out.DurationInMinutes, &out.RoomID, &out.URL)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveSchedule deletes a schedule occurrence.
func (r *Repository) RemoveSchedule(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.E(domain.KindNotFound, "schedule not found")
	}
	return nil
}

// ListSchedules returns the occurrences of an activity in time order.
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

// SetStaff links a user to an activity with a role. A single upsert on
// the (activity_id, user_id) key replaces any previous role atomically,
// so a user never holds two roles on one activity.
func (r *Repository) SetStaff(ctx context.Context, activityID, userID uuid.UUID, role models.ActivityUserRole) error {
	if role != models.ActivityUserTeaching && role != models.ActivityUserResponsible {
		return domain.E(domain.KindInvalid, "unknown staff role")
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO activity_users (activity_id, user_id, role) VALUES ($1, $2, $3)
		 ON CONFLICT (activity_id, user_id) DO UPDATE SET role = EXCLUDED.role`,
		activityID, userID, role)
	return err
}

// RemoveStaff unlinks a user from an activity.
func (r *Repository) RemoveStaff(ctx context.Context, activityID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM activity_users WHERE activity_id = $1 AND user_id = $2`, activityID, userID)
	return err
}

// Staff lists the users assigned to an activity with their roles.
func (r *Repository) Staff(ctx context.Context, activityID uuid.UUID) ([]models.ActivityUser, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT activity_id, user_id, role, added_at FROM activity_users WHERE activity_id = $1`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ActivityUser
	for rows.Next() {
		var au models.ActivityUser
		if err := rows.Scan(&au.ActivityID, &au.UserID, &au.Role, &au.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, au)
	}
	return list, rows.Err()
}

// CreateCategory inserts an activity category.
func (r *Repository) CreateCategory(ctx context.Context, cat *models.ActivityCategory) (*models.ActivityCategory, error) {
	var out models.ActivityCategory
	err := r.pool.QueryRow(ctx,
		`INSERT INTO activity_categories (name, description) VALUES ($1, $2) RETURNING id, name, description`,
		cat.Name, cat.Description).Scan(&out.ID, &out.Name, &out.Description)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListCategories returns all activity categories.
func (r *Repository) ListCategories(ctx context.Context) ([]models.ActivityCategory, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM activity_categories ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.ActivityCategory
	for rows.Next() {
		var cat models.ActivityCategory
		if err := rows.Scan(&cat.ID, &cat.Name, &cat.Description); err != nil {
			return nil, err
		}
		list = append(list, cat)
	}
	return list, rows.Err()
}

// CreateRoom inserts a room.
func (r *Repository) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	var out models.Room
	err := r.pool.QueryRow(ctx,
		`INSERT INTO rooms (name, location, seats) VALUES ($1, $2, $3) RETURNING id, name, location, seats`,
		room.Name, room.Location, room.Seats).Scan(&out.ID, &out.Name, &out.Location, &out.Seats)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ListRooms returns all rooms.
func (r *Repository) ListRooms(ctx context.Context) ([]models.Room, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, location, seats FROM rooms ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Location, &room.Seats); err != nil {
			return nil, err
		}
		list = append(list, room)
	}
	return list, rows.Err()
}
