// Package assignments persists the user-role-organization relation and
// applies the assignment guard to every grant and revoke.
package assignments

import (
	"time"

	"github.com/google/uuid"
)

// Grant describes a requested role grant.
type Grant struct {
	UserID         uuid.UUID
	RoleName       string
	OrganizationID *uuid.UUID
	GrantedBy      uuid.UUID
}

// Revocation describes a requested role revocation. The same guard
// rule applies: what the actor could not grant, they may not revoke.
type Revocation struct {
	UserID         uuid.UUID
	RoleName       string
	OrganizationID *uuid.UUID
	RevokedBy      uuid.UUID
}

// Record is a stored assignment row joined with its role name.
type Record struct {
	UserID         uuid.UUID
	RoleName       string
	OrganizationID *uuid.UUID
	GrantedBy      *uuid.UUID
	CreatedAt      time.Time
}
