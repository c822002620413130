package authz

import (
	"fmt"
	"sort"
)

// Operation identifiers for every protected surface. Required roles
// are attached here, statically, instead of via handler metadata; the
// registry is validated against the hierarchy at startup so a typo in a
// role name is fatal before the first request.
const (
	OpUsersList   = "users.list"
	OpUsersView   = "users.view"
	OpOrgsManage  = "organizations.manage"
	OpOrgsView    = "organizations.view"
	OpRolesView   = "roles.view"
	OpGrantsEdit  = "assignments.edit"
	OpGrantsView  = "assignments.view"
	OpCheckinSend = "checkins.submit"
	OpCheckinRead = "checkins.review"
	OpAlertsRead  = "alerts.review"
	OpAuditRead   = "audit.review"
)

// Registry maps operation identifiers to their required role sets.
type Registry struct {
	requirements map[string][]string
}

// NewRegistry builds the default operation registry against the given
// hierarchy, failing on any registration that references a role the
// catalog does not know.
func NewRegistry(h *Hierarchy, requirements map[string][]string) (*Registry, error) {
	reg := &Registry{requirements: make(map[string][]string, len(requirements))}
	for op, roles := range requirements {
		if op == "" {
			return nil, fmt.Errorf("authz: registration with empty operation")
		}
		if err := h.Validate(roles...); err != nil {
			return nil, fmt.Errorf("authz: operation %s: %w", op, err)
		}
		copied := make([]string, len(roles))
		copy(copied, roles)
		sort.Strings(copied)
		reg.requirements[op] = copied
	}
	return reg, nil
}

// DefaultRequirements is the platform's operation table. Role names
// reference the seeded catalog; deployments that provision extra roles
// extend this at wiring time.
func DefaultRequirements() map[string][]string {
	return map[string][]string{
		OpUsersList:   {"admin"},
		OpUsersView:   {"gestor"},
		OpOrgsManage:  {"admin"},
		OpOrgsView:    {"gestor"},
		OpRolesView:   {"admin"},
		OpGrantsEdit:  {"admin"},
		OpGrantsView:  {"admin"},
		OpCheckinSend: {"colaborador"},
		OpCheckinRead: {"gestor"},
		OpAlertsRead:  {"gestor"},
		OpAuditRead:   {"admin"},
	}
}

// Required returns the required role set for an operation. Unregistered
// operations return ok=false; the middleware treats that as a wiring
// defect and denies.
func (r *Registry) Required(op string) ([]string, bool) {
	roles, ok := r.requirements[op]
	return roles, ok
}

// Operations lists the registered operation identifiers, sorted.
func (r *Registry) Operations() []string {
	ops := make([]string, 0, len(r.requirements))
	for op := range r.requirements {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
