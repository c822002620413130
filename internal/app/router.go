package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/pulso-hq/pulso/internal/alerts"
	"github.com/pulso-hq/pulso/internal/assignments"
	"github.com/pulso-hq/pulso/internal/audit"
	"github.com/pulso-hq/pulso/internal/auth"
	"github.com/pulso-hq/pulso/internal/authz"
	"github.com/pulso-hq/pulso/internal/checkins"
	"github.com/pulso-hq/pulso/internal/observability"
	"github.com/pulso-hq/pulso/internal/organizations"
	"github.com/pulso-hq/pulso/internal/roles"
	"github.com/pulso-hq/pulso/internal/shared"
	"github.com/pulso-hq/pulso/internal/users"
	"github.com/pulso-hq/pulso/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Gate           authz.Middleware

	AuthHandler          *auth.Handler
	RolesHandler         *roles.Handler
	UsersHandler         *users.Handler
	OrganizationsHandler *organizations.Handler
	AssignmentsHandler   *assignments.Handler
	CheckinsHandler      *checkins.Handler
	AlertsHandler        *alerts.Handler
	AuditHandler         *audit.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with Pulso defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	r.Use(params.Gate.WithRequestCache)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.OrganizationsHandler != nil {
		r.Route("/organizations", params.OrganizationsHandler.MountRoutes)
	}
	if params.AssignmentsHandler != nil {
		r.Route("/assignments", params.AssignmentsHandler.MountRoutes)
	}
	if params.CheckinsHandler != nil {
		r.Route("/checkins", params.CheckinsHandler.MountRoutes)
	}
	if params.AlertsHandler != nil {
		r.Route("/alerts", params.AlertsHandler.MountRoutes)
	}
	if params.AuditHandler != nil {
		r.Route("/audit", params.AuditHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
