package roles

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
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

// ListRoles returns the whole catalog ordered by privilege.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, hierarchy_level, scope, created_at FROM roles ORDER BY hierarchy_level`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Level, &role.Scope, &role.CreatedAt); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return roles, nil
}

// GetByName fetches one catalog row.
func (r *Repository) GetByName(ctx context.Context, name string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT id, name, hierarchy_level, scope, created_at FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.Level, &role.Scope, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, shared.ErrNotFound
		}
		return Role{}, err
	}
	return role, nil
}

// CreateRole inserts a provisioning-time catalog row. Name and level
// collisions surface as ErrDuplicate from the unique constraints.
func (r *Repository) CreateRole(ctx context.Context, name string, level int, scope string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx,
		`INSERT INTO roles (name, hierarchy_level, scope) VALUES ($1, $2, $3) RETURNING id, name, hierarchy_level, scope, created_at`,
		name, level, scope).
		Scan(&role.ID, &role.Name, &role.Level, &role.Scope, &role.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Role{}, ErrDuplicateRole
		}
		return Role{}, err
	}
	return role, nil
}
