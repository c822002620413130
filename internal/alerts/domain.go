package alerts

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels for alerts.
const (
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// KindLowMood marks alerts raised by the low mood scan.
const KindLowMood = "low_mood"

// Alert is a reviewable signal about a user or an organization.
type Alert struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	UserID         *uuid.UUID
	Severity       string
	Kind           string
	Message        string
	CreatedAt      time.Time
	AcknowledgedAt *time.Time
}

// LowMoodFinding is one user flagged by the scan.
type LowMoodFinding struct {
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	AverageMood    float64
	CheckIns       int
}
