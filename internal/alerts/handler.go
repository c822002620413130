package alerts

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/platform/httpx"
	"github.com/pulso-hq/pulso/internal/shared"
)

// Handler manages alert review endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers alert routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpAlertsRead))
		r.Get("/", h.listOpen)
		r.Post("/{alertID}/ack", h.acknowledge)
	})
}

type alertView struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id,omitempty"`
	Severity  string `json:"severity"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	CreatedAt string `json:"created_at"`
}

func (h *Handler) listOpen(w http.ResponseWriter, r *http.Request) {
	org := authz.OrganizationFromContext(r.Context())
	if org == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organization context required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	alerts, err := h.service.ListOpen(r.Context(), *org, limit)
	if err != nil {
		h.logger.Error("list alerts", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	views := make([]alertView, len(alerts))
	for i, a := range alerts {
		views[i] = alertView{
			ID:        a.ID.String(),
			Severity:  a.Severity,
			Kind:      a.Kind,
			Message:   a.Message,
			CreatedAt: a.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if a.UserID != nil {
			views[i].UserID = a.UserID.String()
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"alerts": views})
}

func (h *Handler) acknowledge(w http.ResponseWriter, r *http.Request) {
	org := authz.OrganizationFromContext(r.Context())
	if org == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organization context required")
		return
	}
	alertID, err := uuid.Parse(chi.URLParam(r, "alertID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid alert id")
		return
	}
	if err := h.service.Acknowledge(r.Context(), *org, alertID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("acknowledge alert", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
