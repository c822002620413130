package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/pulso-hq/pulso/internal/alerts"
	jobmetrics "github.com/pulso-hq/pulso/internal/jobs"
)

// AlertScanJob runs the low mood scan and records alerts for reviewers.
type AlertScanJob struct {
	Service *alerts.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewAlertScanJob initialises the alert scan handler.
func NewAlertScanJob(service *alerts.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *AlertScanJob {
	return &AlertScanJob{Service: service, Logger: logger, Metrics: metrics}
}

// Handle executes the scan.
func (j *AlertScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("alert scan: handler not configured")
	}

	tracker := j.Metrics.Track(TaskTypeAlertScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	logger.Info("starting low mood scan")

	created, err := j.Service.ScanLowMood(ctx)
	if err != nil {
		resultErr = err
		logger.Error("low mood scan failed", slog.Any("error", err))
		return resultErr
	}

	j.Metrics.AddAlerts(alerts.KindLowMood, created)
	logger.Info("low mood scan finished", slog.Int("alerts_created", created))
	return nil
}

func (j *AlertScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
