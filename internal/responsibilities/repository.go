package responsibilities

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atena-events/backend/internal/models"
)

// Repository implements Store over PostgreSQL. Window partitioning is
// done in SQL so totals stay correct regardless of page slicing; events
// without an end date fall back to their start date via COALESCE.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a responsibilities repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func windowPredicate(w Window) string {
	if w == WindowCurrent {
		return "COALESCE(e.end_date, e.start_date) >= $2"
	}
	return "COALESCE(e.end_date, e.start_date) < $2"
}

const eventColumns = `e.id, e.name, e.description, e.start_date, e.end_date,
	e.registry_start_date, e.registry_end_date, e.status_active, e.status_visible,
	e.created_at, e.updated_at`

// OrganizedEvents returns one page of events the user organizes in the
// window, plus the window total.
func (r *Repository) OrganizedEvents(ctx context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Event, int, error) {
	pred := windowPredicate(w)

	var total int
	countQ := `SELECT COUNT(*) FROM events e
		JOIN event_organizers eo ON eo.event_id = e.id
		WHERE eo.user_id = $1 AND ` + pred
	if err := r.pool.QueryRow(ctx, countQ, userID, now).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQ := `SELECT ` + eventColumns + ` FROM events e
		JOIN event_organizers eo ON eo.event_id = e.id
		WHERE eo.user_id = $1 AND ` + pred + `
		ORDER BY e.start_date, e.id
		OFFSET $3 LIMIT $4`
	rows, err := r.pool.Query(ctx, pageQ, userID, now, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &e.StartDate, &e.EndDate,
			&e.RegistryStartDate, &e.RegistryEndDate, &e.StatusActive, &e.StatusVisible,
			&e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// ResponsibleActivities returns one page of activities the user is
// responsible for, windowed by the parent event.
func (r *Repository) ResponsibleActivities(ctx context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Activity, int, error) {
	return r.activities(ctx, userID, w, now, offset, limit, "au.role = 'responsible'")
}

// TeachingActivities returns one page of activities the user teaches or
// is responsible for.
func (r *Repository) TeachingActivities(ctx context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int) ([]models.Activity, int, error) {
	return r.activities(ctx, userID, w, now, offset, limit, "au.role IN ('teaching', 'responsible')")
}

func (r *Repository) activities(ctx context.Context, userID uuid.UUID, w Window, now time.Time, offset, limit int, rolePred string) ([]models.Activity, int, error) {
	pred := windowPredicate(w)

	var total int
	countQ := `SELECT COUNT(*) FROM activities a
		JOIN events e ON e.id = a.event_id
		JOIN activity_users au ON au.activity_id = a.id
		WHERE au.user_id = $1 AND ` + rolePred + ` AND ` + pred
	if err := r.pool.QueryRow(ctx, countQ, userID, now).Scan(&total); err != nil {
		return nil, 0, err
	}

	pageQ := `SELECT a.id, a.event_id, a.name, a.description, a.vacancy,
			a.workload_in_minutes, a.category_id, a.created_at, a.updated_at
		FROM activities a
		JOIN events e ON e.id = a.event_id
		JOIN activity_users au ON au.activity_id = a.id
		WHERE au.user_id = $1 AND ` + rolePred + ` AND ` + pred + `
		ORDER BY a.created_at, a.id
		OFFSET $3 LIMIT $4`
	rows, err := r.pool.Query(ctx, pageQ, userID, now, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.EventID, &a.Name, &a.Description, &a.Vacancy,
			&a.WorkloadInMinutes, &a.CategoryID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		activities = append(activities, a)
	}
	return activities, total, rows.Err()
}
