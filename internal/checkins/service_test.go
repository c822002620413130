package checkins

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulso-hq/pulso/internal/shared"
)

type stubRepo struct {
	inserted []Submission
	recent   []CheckIn
	summary  MoodSummary
	trend    []TrendPoint
	emotions []EmotionCount
}

func (s *stubRepo) Insert(ctx context.Context, sub Submission) (CheckIn, error) {
	s.inserted = append(s.inserted, sub)
	return CheckIn{
		ID:             uuid.New(),
		UserID:         sub.UserID,
		OrganizationID: sub.OrganizationID,
		Mood:           sub.Mood,
		Emotion:        sub.Emotion,
		Note:           sub.Note,
		CreatedAt:      time.Now(),
	}, nil
}

func (s *stubRepo) ListRecent(ctx context.Context, orgID uuid.UUID, since time.Time, limit int) ([]CheckIn, error) {
	return s.recent, nil
}

func (s *stubRepo) MoodSummary(ctx context.Context, orgID uuid.UUID, since time.Time) (MoodSummary, error) {
	return s.summary, nil
}

func (s *stubRepo) MoodTrend(ctx context.Context, orgID uuid.UUID, since time.Time) ([]TrendPoint, error) {
	return s.trend, nil
}

func (s *stubRepo) TopEmotions(ctx context.Context, orgID uuid.UUID, since time.Time, limit int) ([]EmotionCount, error) {
	return s.emotions, nil
}

type stubIdempotency struct {
	seen map[string]bool
}

func (s *stubIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[module+"/"+key] {
		return shared.ErrIdempotencyConflict
	}
	s.seen[module+"/"+key] = true
	return nil
}

func validSubmission() Submission {
	return Submission{
		UserID:         uuid.New(),
		OrganizationID: uuid.New(),
		Mood:           4,
		Emotion:        "tranquilo",
	}
}

func TestSubmitStoresCheckIn(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubIdempotency{})

	ci, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Equal(t, 4, ci.Mood)
	assert.Len(t, repo.inserted, 1)
}

func TestSubmitRejectsMoodOutOfRange(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubIdempotency{})

	for _, mood := range []int{0, 6, -1} {
		sub := validSubmission()
		sub.Mood = mood
		_, err := svc.Submit(context.Background(), sub)
		assert.Error(t, err, "mood %d must be rejected", mood)
	}
	assert.Empty(t, repo.inserted)
}

func TestSubmitIdempotencyKeyDeduplicates(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubIdempotency{})

	sub := validSubmission()
	sub.IdempotencyKey = "retry-abc"

	_, err := svc.Submit(context.Background(), sub)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), sub)
	assert.ErrorIs(t, err, ErrDuplicateSubmission)
	assert.Len(t, repo.inserted, 1)
}

func TestSubmitWithoutKeySkipsIdempotency(t *testing.T) {
	repo := &stubRepo{}
	svc := NewService(repo, &stubIdempotency{})

	_, err := svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), validSubmission())
	require.NoError(t, err)
	assert.Len(t, repo.inserted, 2)
}

func TestOrganizationInsightsFanOut(t *testing.T) {
	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{
		summary:  MoodSummary{Average: 3.4, Count: 12},
		trend:    []TrendPoint{{Day: day, Average: 3.4, Count: 12}},
		emotions: []EmotionCount{{Emotion: "tranquilo", Count: 7}},
	}
	svc := NewService(repo, nil)

	insights, err := svc.OrganizationInsights(context.Background(), uuid.New(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 12, insights.Summary.Count)
	require.Len(t, insights.Trend, 1)
	assert.Equal(t, day, insights.Trend[0].Day)
	require.Len(t, insights.Emotions, 1)
	assert.Equal(t, "tranquilo", insights.Emotions[0].Emotion)
}
