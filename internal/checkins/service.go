package checkins

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pulso-hq/pulso/internal/shared"
)

const idempotencyModule = "checkins"

// RepositoryPort defines data access methods for check-ins.
type RepositoryPort interface {
	Insert(ctx context.Context, sub Submission) (CheckIn, error)
	ListRecent(ctx context.Context, orgID uuid.UUID, since time.Time, limit int) ([]CheckIn, error)
	MoodSummary(ctx context.Context, orgID uuid.UUID, since time.Time) (MoodSummary, error)
	MoodTrend(ctx context.Context, orgID uuid.UUID, since time.Time) ([]TrendPoint, error)
	TopEmotions(ctx context.Context, orgID uuid.UUID, since time.Time, limit int) ([]EmotionCount, error)
}

// IdempotencyPort deduplicates client retries.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
}

// ErrDuplicateSubmission indicates the idempotency key was already
// used.
var ErrDuplicateSubmission = errors.New("check-in already submitted")

// Service handles check-in business logic.
type Service struct {
	repo        RepositoryPort
	idempotency IdempotencyPort
	validator   *validator.Validate
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, idempotency IdempotencyPort) *Service {
	return &Service{repo: repo, idempotency: idempotency, validator: validator.New()}
}

// Submit stores a new check-in. A repeated idempotency key returns
// ErrDuplicateSubmission instead of a second row.
func (s *Service) Submit(ctx context.Context, sub Submission) (CheckIn, error) {
	if err := s.validator.Struct(sub); err != nil {
		return CheckIn{}, err
	}
	if sub.IdempotencyKey != "" && s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, sub.IdempotencyKey, idempotencyModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				return CheckIn{}, ErrDuplicateSubmission
			}
			return CheckIn{}, err
		}
	}
	return s.repo.Insert(ctx, sub)
}

// Recent returns the organization's check-ins from the last window for
// review.
func (s *Service) Recent(ctx context.Context, orgID uuid.UUID, window time.Duration, limit int) ([]CheckIn, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListRecent(ctx, orgID, time.Now().Add(-window), limit)
}

// OrganizationInsights gathers the dashboard aggregates. The three
// queries are independent, so they fan out concurrently.
func (s *Service) OrganizationInsights(ctx context.Context, orgID uuid.UUID, window time.Duration) (Insights, error) {
	since := time.Now().Add(-window)

	var insights Insights
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		summary, err := s.repo.MoodSummary(gctx, orgID, since)
		if err == nil {
			insights.Summary = summary
		}
		return err
	})
	g.Go(func() error {
		trend, err := s.repo.MoodTrend(gctx, orgID, since)
		if err == nil {
			insights.Trend = trend
		}
		return err
	})
	g.Go(func() error {
		emotions, err := s.repo.TopEmotions(gctx, orgID, since, 10)
		if err == nil {
			insights.Emotions = emotions
		}
		return err
	})
	if err := g.Wait(); err != nil {
		return Insights{}, err
	}
	return insights, nil
}
