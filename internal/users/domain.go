package users

import (
	"time"

	"github.com/google/uuid"
)

// User is an account as seen by management endpoints. Password hashes
// never leave the auth module.
type User struct {
	ID        uuid.UUID
	Email     string
	Name      string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member is a user together with the roles they hold in one
// organization.
type Member struct {
	User
	Roles []string
}
