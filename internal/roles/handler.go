package roles

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/platform/httpx"
)

// Handler exposes the role catalog over HTTP. The catalog is read-only
// at runtime; provisioning writes go through the seed tooling.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpRolesView))
		r.Get("/", h.listRoles)
	})
}

type roleView struct {
	Name  string `json:"name"`
	Level int    `json:"hierarchy_level"`
	Scope string `json:"scope"`
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.ListRoles(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]roleView, len(roles))
	for i, role := range roles {
		views[i] = roleView{Name: role.Name, Level: role.Level, Scope: role.Scope}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": views})
}
