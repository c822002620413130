// Package audit exposes the read side of the audit trail written by
// role grants, revocations, alert acknowledgements and session events.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one audit_logs row.
type Entry struct {
	ID             int64
	ActorID        *uuid.UUID
	OrganizationID *uuid.UUID
	Action         string
	Entity         string
	EntityID       string
	Meta           map[string]any
	OccurredAt     time.Time
}

// Filters narrows the timeline query. Zero values mean no filter.
type Filters struct {
	Entity   string
	Action   string
	Page     int
	PageSize int
}

// Paging carries cursorless page information. HasNext is derived from
// fetching one row past the page boundary.
type Paging struct {
	Page     int
	PageSize int
	HasNext  bool
}
