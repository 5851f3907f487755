package users

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

// NewRepository creates a user repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, name, email, password, cpf, cell_phone, role, active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Cpf, &u.CellPhone,
		&u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.E(domain.KindNotFound, "user not found")
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUser returns a user by ID.
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// Unfinished duty as organizer or responsible staff. Events without an
// end date count as unfinished until their start date passes.
const blockingEventQuery = `
	SELECT e.name FROM events e
	JOIN event_organizers eo ON eo.event_id = e.id
	WHERE eo.user_id = $1 AND COALESCE(e.end_date, e.start_date) >= $2
	UNION
	SELECT e.name FROM events e
	JOIN activities a ON a.event_id = e.id
	JOIN activity_users au ON au.activity_id = a.id
	WHERE au.user_id = $1 AND au.role = 'responsible'
	  AND COALESCE(e.end_date, e.start_date) >= $2
	LIMIT 1`

// Deactivate disables an active user unless a duty blocks it. The duty
// check is a predicate of the UPDATE itself so the guard and the write
// see one snapshot: a duty visible to the statement blocks the flip, no
// matter when it was committed relative to any earlier read.
func (r *Repository) Deactivate(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	const q = `
		UPDATE users SET active = false, updated_at = NOW()
		WHERE id = $1 AND active = true
		  AND NOT EXISTS (
			SELECT 1 FROM event_organizers eo
			JOIN events e ON e.id = eo.event_id
			WHERE eo.user_id = $1 AND COALESCE(e.end_date, e.start_date) >= $2
		  )
		  AND NOT EXISTS (
			SELECT 1 FROM activity_users au
			JOIN activities a ON a.id = au.activity_id
			JOIN events e ON e.id = a.event_id
			WHERE au.user_id = $1 AND au.role = 'responsible'
			  AND COALESCE(e.end_date, e.start_date) >= $2
		  )`
	tag, err := r.pool.Exec(ctx, q, userID, now)
	if err != nil {
		return 0, err
	}
	if tag.RowsAffected() > 0 {
		return tag.RowsAffected(), nil
	}

	// Nothing changed: either a duty blocked it, or the user is absent
	// or already inactive. Name the blocking event when there is one.
	var name string
	err = r.pool.QueryRow(ctx, blockingEventQuery, userID, now).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return 0, domain.EEntity(domain.KindUserCannotBeDisabled,
		"user has unfinished responsibilities", name)
}

// List returns all users ordered by name.
func (r *Repository) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Cpf, &u.CellPhone,
			&u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, u)
	}
	return list, rows.Err()
}
