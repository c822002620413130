package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Role assignments live in the
// authorization engine, not here; a freshly registered user holds no
// roles at all.
type User struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
