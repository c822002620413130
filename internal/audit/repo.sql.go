package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed access to audit_logs.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Timeline returns audit entries newest first. A non-nil org confines
// the page to that tenant's trail; entity and action narrow further.
// Limit and offset come clamped from the service.
func (r *Repository) Timeline(ctx context.Context, org *uuid.UUID, entity, action string, limit, offset int) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, actor_id, organization_id, action, entity, entity_id, meta, occurred_at
		FROM audit_logs
		WHERE ($1::uuid IS NULL OR organization_id = $1)
		  AND ($2 = '' OR entity = $2)
		  AND ($3 = '' OR action = $3)
		ORDER BY occurred_at DESC, id DESC
		LIMIT $4 OFFSET $5`, org, entity, action, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.OrganizationID, &e.Action, &e.Entity, &e.EntityID, &e.Meta, &e.OccurredAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
