package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/platform/httpx"
)

// Handler exposes the audit timeline.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpAuditRead))
		r.Get("/", h.timeline)
	})
}

type entryView struct {
	ID         int64          `json:"id"`
	ActorID    string         `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entity_id"`
	Meta       map[string]any `json:"meta,omitempty"`
	OccurredAt string         `json:"occurred_at"`
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	entries, paging, err := h.service.Timeline(r.Context(), authz.OrganizationFromContext(r.Context()), Filters{
		Entity:   q.Get("entity"),
		Action:   q.Get("action"),
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	views := make([]entryView, len(entries))
	for i, e := range entries {
		views[i] = entryView{
			ID:         e.ID,
			Action:     e.Action,
			Entity:     e.Entity,
			EntityID:   e.EntityID,
			Meta:       e.Meta,
			OccurredAt: e.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if e.ActorID != nil {
			views[i].ActorID = e.ActorID.String()
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"entries": views,
		"paging": map[string]any{
			"page":      paging.Page,
			"page_size": paging.PageSize,
			"has_next":  paging.HasNext,
		},
	})
}
