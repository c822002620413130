package organizations

import (
	"time"

	"github.com/google/uuid"
)

// Organization is a tenant. Every scoped role assignment and every
// check-in references exactly one of these.
type Organization struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
