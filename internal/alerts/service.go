package alerts

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Scan thresholds. A user is flagged when their average mood over the
// window sits at or below the threshold with enough data points to
// mean something.
const (
	lowMoodThreshold   = 2.0
	lowMoodMinCheckIns = 3
	lowMoodWindow      = 7 * 24 * time.Hour
)

// RepositoryPort defines data access methods for alerts.
type RepositoryPort interface {
	Insert(ctx context.Context, alert Alert) (Alert, error)
	ListOpen(ctx context.Context, orgID uuid.UUID, limit int) ([]Alert, error)
	Acknowledge(ctx context.Context, orgID, alertID uuid.UUID) error
	HasOpenAlert(ctx context.Context, orgID, userID uuid.UUID, kind string) (bool, error)
	FindLowMoodUsers(ctx context.Context, since time.Time, threshold float64, minCheckIns int) ([]LowMoodFinding, error)
}

// Notifier pushes a created alert to reviewers out of band.
type Notifier interface {
	NotifyAlert(ctx context.Context, alert Alert) error
}

// Service handles alert business logic.
type Service struct {
	repo     RepositoryPort
	notifier Notifier
	logger   *slog.Logger
}

// NewService builds Service instance. A nil notifier disables
// notifications.
func NewService(repo RepositoryPort, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{repo: repo, notifier: notifier, logger: logger}
}

// ListOpen returns unacknowledged alerts for review.
func (s *Service) ListOpen(ctx context.Context, orgID uuid.UUID, limit int) ([]Alert, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListOpen(ctx, orgID, limit)
}

// Acknowledge marks an alert as handled.
func (s *Service) Acknowledge(ctx context.Context, orgID, alertID uuid.UUID) error {
	return s.repo.Acknowledge(ctx, orgID, alertID)
}

// ScanLowMood flags users whose recent average mood dropped to the
// threshold. Users with an open low-mood alert are skipped so a
// reviewer sees each situation once. Returns the number of alerts
// created.
func (s *Service) ScanLowMood(ctx context.Context) (int, error) {
	findings, err := s.repo.FindLowMoodUsers(ctx, time.Now().Add(-lowMoodWindow), lowMoodThreshold, lowMoodMinCheckIns)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, f := range findings {
		open, err := s.repo.HasOpenAlert(ctx, f.OrganizationID, f.UserID, KindLowMood)
		if err != nil {
			return created, err
		}
		if open {
			continue
		}

		severity := SeverityWarning
		if f.AverageMood <= 1.5 {
			severity = SeverityCritical
		}
		userID := f.UserID
		alert, err := s.repo.Insert(ctx, Alert{
			OrganizationID: f.OrganizationID,
			UserID:         &userID,
			Severity:       severity,
			Kind:           KindLowMood,
			Message:        fmt.Sprintf("average mood %.1f over %d check-ins in the last week", f.AverageMood, f.CheckIns),
		})
		if err != nil {
			return created, err
		}
		created++

		if s.notifier != nil {
			if err := s.notifier.NotifyAlert(ctx, alert); err != nil {
				s.logger.Warn("notify alert",
					slog.String("alert_id", alert.ID.String()),
					slog.Any("error", err))
			}
		}
	}
	return created, nil
}
