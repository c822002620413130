package authz

import (
	"context"
	"net/http"
	"strings"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulso-hq/pulso/internal/platform/httpx"
	"github.com/pulso-hq/pulso/internal/shared"
)

// OrganizationHeader carries the tenant selector chosen by the client.
// Absence is meaningful: operations without it run with no tenant
// scope, which only the global super-role can satisfy.
const OrganizationHeader = "X-Organization-ID"

// DecisionRecorder receives the outcome of every gate evaluation.
type DecisionRecorder interface {
	RecordDecision(operation string, allowed bool)
}

// Middleware wires the decision engine in front of protected handlers.
type Middleware struct {
	Engine   *Engine
	Registry *Registry
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

type callerKey struct{}
type orgKey struct{}

// CallerFromContext returns the authenticated caller placed by the
// gate.
func CallerFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(callerKey{}).(uuid.UUID)
	return id, ok
}

// OrganizationFromContext returns the tenant context placed by the
// gate, or nil when the request carried none.
func OrganizationFromContext(ctx context.Context) *uuid.UUID {
	id, ok := ctx.Value(orgKey{}).(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// RequireOperation gates a handler behind the registered requirement
// for the named operation. An operation missing from the registry is a
// wiring defect and denies.
func (m Middleware) RequireOperation(operation string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			required, ok := m.Registry.Required(operation)
			if !ok {
				m.logf(r, "operation not registered", operation, nil)
				m.deny(w)
				return
			}

			ctx := r.Context()
			caller := m.currentCaller(r)
			org := organizationID(r)

			req := Request{CallerID: caller, OrganizationID: org, RequiredRoles: required}
			decision, err := m.Engine.Decide(ctx, req)
			if err != nil {
				m.logf(r, "authorization error", operation, err)
			}
			if m.Recorder != nil {
				m.Recorder.RecordDecision(operation, decision.Allowed())
			}
			if !decision.Allowed() {
				m.deny(w)
				return
			}

			if caller != nil {
				ctx = context.WithValue(ctx, callerKey{}, *caller)
			}
			if org != nil {
				ctx = context.WithValue(ctx, orgKey{}, *org)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithRequestCache installs the request-scoped resolution cache.
// Mounted once, ahead of every gate.
func (m Middleware) WithRequestCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithResolutionCache(r.Context())))
	})
}

func (m Middleware) currentCaller(r *http.Request) *uuid.UUID {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return nil
	}
	raw := strings.TrimSpace(sess.User())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		if m.Logger != nil {
			m.Logger.Error("malformed caller id in session", slog.String("value", raw))
		}
		return nil
	}
	return &id
}

func organizationID(r *http.Request) *uuid.UUID {
	// A route that names its organization is authorized against that
	// organization, not against whatever the header claims; otherwise
	// the caller could pass the gate in one tenant and act in another.
	raw := strings.TrimSpace(chi.URLParam(r, "orgID"))
	if raw == "" {
		raw = strings.TrimSpace(r.Header.Get(OrganizationHeader))
	}
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		// A malformed tenant selector is treated as no context at
		// all; it must not degrade to "match any organization".
		return nil
	}
	return &id
}

func (m Middleware) deny(w http.ResponseWriter) {
	httpx.Problem(w, http.StatusForbidden, "Forbidden", "you do not have permission to perform this operation")
}

func (m Middleware) logf(r *http.Request, msg, operation string, err error) {
	if m.Logger == nil {
		return
	}
	attrs := []any{
		slog.String("operation", operation),
		slog.String("path", r.URL.Path),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	m.Logger.Warn(msg, attrs...)
}
