package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ekid-reports/ekid/internal/auth"
	"github.com/ekid-reports/ekid/internal/branches"
	"github.com/ekid-reports/ekid/internal/observability"
	"github.com/ekid-reports/ekid/internal/plans"
	"github.com/ekid-reports/ekid/internal/reports"
	"github.com/ekid-reports/ekid/internal/shared"
	"github.com/ekid-reports/ekid/internal/users"
	"github.com/ekid-reports/ekid/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	AuthHandler     *auth.Handler
	UsersHandler    *users.Handler
	BranchesHandler *branches.Handler
	PlansHandler    *plans.Handler
	ReportsHandler  *reports.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with all application routes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser)

		r.Route("/plans", func(r chi.Router) {
			params.PlansHandler.MountRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(string(users.RoleAdmin)))
				params.ReportsHandler.MountPlanRoutes(r)
			})
		})
		r.Route("/reports", params.ReportsHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(string(users.RoleAdmin)))
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/branches", params.BranchesHandler.MountRoutes)
		})
	})

	return r
}
