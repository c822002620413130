package checkins

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert stores a new check-in.
func (r *Repository) Insert(ctx context.Context, sub Submission) (CheckIn, error) {
	var ci CheckIn
	err := r.pool.QueryRow(ctx, `
		INSERT INTO check_ins (user_id, organization_id, mood, emotion, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, organization_id, mood, emotion, note, created_at`,
		sub.UserID, sub.OrganizationID, sub.Mood, sub.Emotion, sub.Note).
		Scan(&ci.ID, &ci.UserID, &ci.OrganizationID, &ci.Mood, &ci.Emotion, &ci.Note, &ci.CreatedAt)
	return ci, err
}

// ListRecent returns check-ins for an organization since the given
// time, newest first.
func (r *Repository) ListRecent(ctx context.Context, orgID uuid.UUID, since time.Time, limit int) ([]CheckIn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, organization_id, mood, emotion, note, created_at
		FROM check_ins
		WHERE organization_id = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3`, orgID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var checkIns []CheckIn
	for rows.Next() {
		var ci CheckIn
		if err := rows.Scan(&ci.ID, &ci.UserID, &ci.OrganizationID, &ci.Mood, &ci.Emotion, &ci.Note, &ci.CreatedAt); err != nil {
			return nil, err
		}
		checkIns = append(checkIns, ci)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return checkIns, nil
}

// MoodSummary aggregates moods for an organization since the given
// time.
func (r *Repository) MoodSummary(ctx context.Context, orgID uuid.UUID, since time.Time) (MoodSummary, error) {
	var summary MoodSummary
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(avg(mood), 0), count(*)
		FROM check_ins
		WHERE organization_id = $1 AND created_at >= $2`, orgID, since).
		Scan(&summary.Average, &summary.Count)
	return summary, err
}

// MoodTrend buckets moods by day.
func (r *Repository) MoodTrend(ctx context.Context, orgID uuid.UUID, since time.Time) ([]TrendPoint, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date_trunc('day', created_at) AS day, avg(mood), count(*)
		FROM check_ins
		WHERE organization_id = $1 AND created_at >= $2
		GROUP BY day
		ORDER BY day`, orgID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var trend []TrendPoint
	for rows.Next() {
		var point TrendPoint
		if err := rows.Scan(&point.Day, &point.Average, &point.Count); err != nil {
			return nil, err
		}
		trend = append(trend, point)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return trend, nil
}

// TopEmotions counts the most reported emotions.
func (r *Repository) TopEmotions(ctx context.Context, orgID uuid.UUID, since time.Time, limit int) ([]EmotionCount, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT emotion, count(*)
		FROM check_ins
		WHERE organization_id = $1 AND created_at >= $2 AND emotion <> ''
		GROUP BY emotion
		ORDER BY count(*) DESC, emotion
		LIMIT $3`, orgID, since, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emotions []EmotionCount
	for rows.Next() {
		var ec EmotionCount
		if err := rows.Scan(&ec.Emotion, &ec.Count); err != nil {
			return nil, err
		}
		emotions = append(emotions, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return emotions, nil
}
