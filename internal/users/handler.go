package users

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

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpUsersList))
		r.Get("/", h.listMembers)
		r.Post("/{userID}/deactivate", h.deactivate)
		r.Post("/{userID}/activate", h.activate)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpUsersView))
		r.Get("/{userID}", h.getUser)
	})
}

type userView struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	Name      string   `json:"name"`
	IsActive  bool     `json:"is_active"`
	Roles     []string `json:"roles,omitempty"`
	CreatedAt string   `json:"created_at"`
}

func (h *Handler) listMembers(w http.ResponseWriter, r *http.Request) {
	org := authz.OrganizationFromContext(r.Context())
	if org == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organization context required")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	members, pagination, err := h.service.ListMembers(r.Context(), *org, page, perPage)
	if err != nil {
		h.logger.Error("list members", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	views := make([]userView, len(members))
	for i, m := range members {
		views[i] = userView{
			ID:        m.ID.String(),
			Email:     m.Email,
			Name:      m.Name,
			IsActive:  m.IsActive,
			Roles:     m.Roles,
			CreatedAt: m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"members": views,
		"page":    pagination.Page,
		"pages":   pagination.TotalPages,
		"total":   pagination.Total,
	})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	user, err := h.service.GetUser(r.Context(), authz.OrganizationFromContext(r.Context()), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("get user", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, userView{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	})
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid user id")
		return
	}
	org := authz.OrganizationFromContext(r.Context())
	if active {
		err = h.service.Activate(r.Context(), org, id)
	} else {
		err = h.service.Deactivate(r.Context(), org, id)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.RespondError(w, httpx.ErrNotFound)
			return
		}
		h.logger.Error("set user active", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.NoContent(w)
}
