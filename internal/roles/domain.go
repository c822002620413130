// Package roles manages the persistent role catalog the hierarchy
// model is loaded from. The catalog is written at provisioning time and
// read once at startup; the engine never mutates it.
package roles

import "time"

// Role is a catalog row. Level is the hierarchy level (lower = more
// privileged); Scope is either "global" or "organization".
type Role struct {
	ID        int64
	Name      string
	Level     int
	Scope     string
	CreatedAt time.Time
}
