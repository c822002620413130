package assignments

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/shared"
)

// Repository provides PostgreSQL backed persistence. It is the single
// store both enforcement points read: the application resolver through
// FindAssignments, the storage policy functions directly against the
// same rows.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindAssignments returns the assignments applicable to the user in
// the given organization context: global rows always, scoped rows only
// for the matching organization. The WHERE clause is NULL-strict on
// purpose; a nil orgID returns global rows only.
func (r *Repository) FindAssignments(ctx context.Context, userID uuid.UUID, orgID *uuid.UUID) ([]authz.Assignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ra.user_id, ro.name, ra.organization_id, ra.granted_by, ra.created_at
		FROM role_assignments ra
		JOIN roles ro ON ro.id = ra.role_id
		WHERE ra.user_id = $1
		  AND (ra.organization_id IS NULL OR ra.organization_id = $2)`,
		userID, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var assignments []authz.Assignment
	for rows.Next() {
		var a authz.Assignment
		if err := rows.Scan(&a.UserID, &a.RoleName, &a.OrganizationID, &a.GrantedBy, &a.CreatedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// ListByOrganization returns the assignments inside one organization,
// for administration views.
func (r *Repository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ra.user_id, ro.name, ra.organization_id, ra.granted_by, ra.created_at
		FROM role_assignments ra
		JOIN roles ro ON ro.id = ra.role_id
		WHERE ra.organization_id = $1
		ORDER BY ra.created_at DESC`,
		orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.UserID, &rec.RoleName, &rec.OrganizationID, &rec.GrantedBy, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Insert creates the assignment row. The partial unique indexes give
// the at-most-one-writer guarantee: a concurrent duplicate grant loses
// the race and surfaces as ErrDuplicateAssignment, which the service
// folds into idempotent success.
func (r *Repository) Insert(ctx context.Context, g Grant) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO role_assignments (user_id, role_id, organization_id, granted_by)
		SELECT $1, ro.id, $2, $3 FROM roles ro WHERE ro.name = $4
		ON CONFLICT DO NOTHING`,
		g.UserID, g.OrganizationID, g.GrantedBy, g.RoleName)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return authz.ErrDuplicateAssignment
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return authz.ErrDuplicateAssignment
	}
	return nil
}

// Delete removes the assignment row. NULL organization is matched
// explicitly so a global revocation cannot touch scoped rows.
func (r *Repository) Delete(ctx context.Context, rev Revocation) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM role_assignments ra
		USING roles ro
		WHERE ro.id = ra.role_id
		  AND ra.user_id = $1
		  AND ro.name = $2
		  AND ra.organization_id IS NOT DISTINCT FROM $3`,
		rev.UserID, rev.RoleName, rev.OrganizationID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ authz.AssignmentReader = (*Repository)(nil)
