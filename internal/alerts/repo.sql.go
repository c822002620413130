package alerts

import (
	"context"
	"time"

	"github.com/google/uuid"
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

// Insert stores a new alert.
func (r *Repository) Insert(ctx context.Context, alert Alert) (Alert, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO alerts (organization_id, user_id, severity, kind, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		alert.OrganizationID, alert.UserID, alert.Severity, alert.Kind, alert.Message).
		Scan(&alert.ID, &alert.CreatedAt)
	return alert, err
}

// ListOpen returns unacknowledged alerts for an organization, newest
// first.
func (r *Repository) ListOpen(ctx context.Context, orgID uuid.UUID, limit int) ([]Alert, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, user_id, severity, kind, message, created_at, acknowledged_at
		FROM alerts
		WHERE organization_id = $1 AND acknowledged_at IS NULL
		ORDER BY created_at DESC
		LIMIT $2`, orgID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var alerts []Alert
	for rows.Next() {
		var a Alert
		if err := rows.Scan(&a.ID, &a.OrganizationID, &a.UserID, &a.Severity, &a.Kind, &a.Message, &a.CreatedAt, &a.AcknowledgedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return alerts, nil
}

// Acknowledge marks an alert as handled.
func (r *Repository) Acknowledge(ctx context.Context, orgID, alertID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE alerts SET acknowledged_at = now()
		WHERE id = $1 AND organization_id = $2 AND acknowledged_at IS NULL`,
		alertID, orgID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// HasOpenAlert reports whether the user already has an open alert of
// the given kind, to keep the scan from stacking duplicates.
func (r *Repository) HasOpenAlert(ctx context.Context, orgID, userID uuid.UUID, kind string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM alerts
			WHERE organization_id = $1 AND user_id = $2 AND kind = $3
			  AND acknowledged_at IS NULL
		)`, orgID, userID, kind).Scan(&exists)
	return exists, err
}

// FindLowMoodUsers flags users whose average mood over the window fell
// to the threshold or below, given a minimum number of check-ins.
func (r *Repository) FindLowMoodUsers(ctx context.Context, since time.Time, threshold float64, minCheckIns int) ([]LowMoodFinding, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT organization_id, user_id, avg(mood), count(*)
		FROM check_ins
		WHERE created_at >= $1
		GROUP BY organization_id, user_id
		HAVING avg(mood) <= $2 AND count(*) >= $3`,
		since, threshold, minCheckIns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var findings []LowMoodFinding
	for rows.Next() {
		var f LowMoodFinding
		if err := rows.Scan(&f.OrganizationID, &f.UserID, &f.AverageMood, &f.CheckIns); err != nil {
			return nil, err
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return findings, nil
}
