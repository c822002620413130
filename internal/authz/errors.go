package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientPrivilege indicates the guard rejected a grant or
	// revoke because the target role is at least as privileged as the
	// assigner's best role.
	ErrInsufficientPrivilege = errors.New("authz: insufficient privilege")
	// ErrDuplicateAssignment indicates the assignment already exists.
	// Callers treat it as idempotent success when the existing row is
	// semantically identical.
	ErrDuplicateAssignment = errors.New("authz: assignment already exists")
)

// UnknownRoleError is returned when a role name is not registered in
// the hierarchy. It points at a configuration defect, not user input.
type UnknownRoleError struct {
	Name string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("authz: unknown role %q", e.Name)
}

// ResolutionError wraps a storage failure during effective-role
// resolution. Callers must treat it as Deny, never as "no roles
// required".
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("authz: resolve roles: %v", e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
