package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulso-hq/pulso/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListMembers returns the users holding at least one role in the
// organization, with their role names aggregated. Global assignments
// do not make someone a member of every organization.
func (r *Repository) ListMembers(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]Member, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `
		SELECT count(DISTINCT u.id)
		FROM users u
		JOIN role_assignments ra ON ra.user_id = u.id
		WHERE ra.organization_id = $1`, orgID).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.email, u.name, u.is_active, u.created_at, u.updated_at,
		       array_agg(ro.name ORDER BY ro.hierarchy_level) AS roles
		FROM users u
		JOIN role_assignments ra ON ra.user_id = u.id
		JOIN roles ro ON ro.id = ra.role_id
		WHERE ra.organization_id = $1
		GROUP BY u.id
		ORDER BY u.name, u.id
		LIMIT $2 OFFSET $3`, orgID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var members []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Email, &m.Name, &m.IsActive, &m.CreatedAt, &m.UpdatedAt, &m.Roles); err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return members, total, nil
}

// IsMember reports whether the user holds at least one role assignment
// in the organization.
func (r *Repository) IsMember(ctx context.Context, userID, orgID uuid.UUID) (bool, error) {
	var member bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM role_assignments
			WHERE user_id = $1 AND organization_id = $2
		)`, userID, orgID).Scan(&member)
	return member, err
}

// GetByID fetches one account.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (User, error) {
	var user User
	err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, is_active, created_at, updated_at FROM users WHERE id = $1`, id).
		Scan(&user.ID, &user.Email, &user.Name, &user.IsActive, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

// SetActive flips the account's active flag.
func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
