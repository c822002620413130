package checkins

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/platform/httpx"
)

const defaultInsightsWindow = 30 * 24 * time.Hour

// Handler manages check-in endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	gate    authz.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, gate authz.Middleware) *Handler {
	return &Handler{logger: logger, service: service, gate: gate}
}

// MountRoutes registers check-in routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpCheckinSend))
		r.Post("/", h.submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.gate.RequireOperation(authz.OpCheckinRead))
		r.Get("/", h.listRecent)
		r.Get("/insights", h.insights)
	})
}

type submitRequest struct {
	Mood    int    `json:"mood"`
	Emotion string `json:"emotion"`
	Note    string `json:"note"`
}

type checkInView struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Mood      int    `json:"mood"`
	Emotion   string `json:"emotion,omitempty"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at"`
}

func toView(ci CheckIn) checkInView {
	return checkInView{
		ID:        ci.ID.String(),
		UserID:    ci.UserID.String(),
		Mood:      ci.Mood,
		Emotion:   ci.Emotion,
		Note:      ci.Note,
		CreatedAt: ci.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	caller, ok := authz.CallerFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	org := authz.OrganizationFromContext(r.Context())
	if org == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organization context required")
		return
	}

	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	ci, err := h.service.Submit(r.Context(), Submission{
		UserID:         caller,
		OrganizationID: *org,
		Mood:           req.Mood,
		Emotion:        req.Emotion,
		Note:           req.Note,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		if errors.Is(err, ErrDuplicateSubmission) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", "this check-in was already submitted")
			return
		}
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		h.logger.Error("submit check-in", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toView(ci))
}

func (h *Handler) listRecent(w http.ResponseWriter, r *http.Request) {
	org := authz.OrganizationFromContext(r.Context())
	if org == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organization context required")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	checkIns, err := h.service.Recent(r.Context(), *org, defaultInsightsWindow, limit)
	if err != nil {
		h.logger.Error("list check-ins", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]checkInView, len(checkIns))
	for i, ci := range checkIns {
		views[i] = toView(ci)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"check_ins": views})
}

type insightsView struct {
	AverageMood float64            `json:"average_mood"`
	Count       int                `json:"count"`
	Trend       []trendPointView   `json:"trend"`
	Emotions    []emotionCountView `json:"emotions"`
}

type trendPointView struct {
	Day     string  `json:"day"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type emotionCountView struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

func (h *Handler) insights(w http.ResponseWriter, r *http.Request) {
	org := authz.OrganizationFromContext(r.Context())
	if org == nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "organization context required")
		return
	}

	insights, err := h.service.OrganizationInsights(r.Context(), *org, defaultInsightsWindow)
	if err != nil {
		h.logger.Error("organization insights", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	view := insightsView{
		AverageMood: insights.Summary.Average,
		Count:       insights.Summary.Count,
		Trend:       make([]trendPointView, len(insights.Trend)),
		Emotions:    make([]emotionCountView, len(insights.Emotions)),
	}
	for i, point := range insights.Trend {
		view.Trend[i] = trendPointView{
			Day:     point.Day.Format("2006-01-02"),
			Average: point.Average,
			Count:   point.Count,
		}
	}
	for i, ec := range insights.Emotions {
		view.Emotions[i] = emotionCountView{Emotion: ec.Emotion, Count: ec.Count}
	}
	httpx.JSON(w, http.StatusOK, view)
}
