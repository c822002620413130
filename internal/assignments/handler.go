package assignments

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/platform/httpx"
	"github.com/pulso-hq/pulso/internal/shared"
)

// Handler exposes grant/revoke and listing endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      authz.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, validator: validator.New()}
}

// MountRoutes registers assignment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpGrantsView))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpGrantsEdit))
		r.Post("/", h.grant)
		r.Delete("/", h.revoke)
	})
}

type grantRequest struct {
	UserID         string  `json:"user_id" validate:"required,uuid"`
	Role           string  `json:"role" validate:"required"`
	OrganizationID *string `json:"organization_id" validate:"omitempty,uuid"`
}

type assignmentView struct {
	UserID         string  `json:"user_id"`
	Role           string  `json:"role"`
	OrganizationID *string `json:"organization_id,omitempty"`
	GrantedBy      *string `json:"granted_by,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	org := authz.OrganizationFromContext(r.Context())
	if org == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organization context required")
		return
	}
	records, err := h.service.ListByOrganization(r.Context(), *org)
	if err != nil {
		h.logger.Error("list assignments", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]assignmentView, len(records))
	for i, rec := range records {
		views[i] = assignmentView{
			UserID:    rec.UserID.String(),
			Role:      rec.RoleName,
			CreatedAt: rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if rec.OrganizationID != nil {
			s := rec.OrganizationID.String()
			views[i].OrganizationID = &s
		}
		if rec.GrantedBy != nil {
			s := rec.GrantedBy.String()
			views[i].GrantedBy = &s
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"assignments": views})
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	caller, ok := authz.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	req, err := h.decode(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	grant := Grant{
		UserID:         req.userID,
		RoleName:       req.role,
		OrganizationID: req.orgID,
		GrantedBy:      caller,
	}
	if err := h.service.Grant(r.Context(), grant); err != nil {
		h.respondMutationError(w, "grant role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]string{"status": "granted"})
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	caller, ok := authz.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	req, err := h.decode(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rev := Revocation{
		UserID:         req.userID,
		RoleName:       req.role,
		OrganizationID: req.orgID,
		RevokedBy:      caller,
	}
	if err := h.service.Revoke(r.Context(), rev); err != nil {
		h.respondMutationError(w, "revoke role", err)
		return
	}
	httpx.NoContent(w)
}

type parsedGrant struct {
	userID uuid.UUID
	role   string
	orgID  *uuid.UUID
}

func (h *Handler) decode(r *http.Request) (parsedGrant, error) {
	var req grantRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return parsedGrant{}, err
	}
	if err := h.validator.Struct(req); err != nil {
		return parsedGrant{}, err
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return parsedGrant{}, err
	}
	parsed := parsedGrant{userID: userID, role: req.Role}
	if req.OrganizationID != nil {
		orgID, err := uuid.Parse(*req.OrganizationID)
		if err != nil {
			return parsedGrant{}, err
		}
		parsed.orgID = &orgID
	}
	return parsed, nil
}

func (h *Handler) respondMutationError(w http.ResponseWriter, op string, err error) {
	var unknown *authz.UnknownRoleError
	switch {
	case errors.Is(err, authz.ErrInsufficientPrivilege):
		httpx.RespondError(w, httpx.ErrForbidden)
	case errors.As(err, &unknown):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", unknown.Error())
	case errors.Is(err, shared.ErrNotFound):
		httpx.RespondError(w, httpx.ErrNotFound)
	default:
		var resolution *authz.ResolutionError
		if errors.As(err, &resolution) {
			// Fail closed: a resolver failure during a mutation is a
			// permission failure to the caller.
			h.logger.Error(op, slog.Any("error", err))
			httpx.RespondError(w, httpx.ErrForbidden)
			return
		}
		h.logger.Error(op, slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
