package checkins

import (
	"time"

	"github.com/google/uuid"
)

// CheckIn is one emotional check-in submitted by a user inside an
// organization.
type CheckIn struct {
	ID             uuid.UUID
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Mood           int
	Emotion        string
	Note           string
	CreatedAt      time.Time
}

// Submission is the input for a new check-in.
type Submission struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Mood           int    `validate:"required,min=1,max=5"`
	Emotion        string `validate:"max=40"`
	Note           string `validate:"max=2000"`
	IdempotencyKey string
}

// MoodSummary aggregates moods over a window.
type MoodSummary struct {
	Average float64
	Count   int
}

// TrendPoint is one day of the mood trend.
type TrendPoint struct {
	Day     time.Time
	Average float64
	Count   int
}

// EmotionCount counts occurrences of one reported emotion.
type EmotionCount struct {
	Emotion string
	Count   int
}

// Insights bundles the review dashboard aggregates.
type Insights struct {
	Summary  MoodSummary
	Trend    []TrendPoint
	Emotions []EmotionCount
}
