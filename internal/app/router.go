package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aquapoint/aquapoint/internal/auth"
	"github.com/aquapoint/aquapoint/internal/catalog"
	"github.com/aquapoint/aquapoint/internal/customers"
	"github.com/aquapoint/aquapoint/internal/sales"
	"github.com/aquapoint/aquapoint/internal/shared"
	"github.com/aquapoint/aquapoint/internal/stock"
	"github.com/aquapoint/aquapoint/internal/users"
	"github.com/aquapoint/aquapoint/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	AuthMiddleware auth.Middleware

	AuthHandler     *auth.Handler
	CatalogHandler  *catalog.Handler
	StockHandler    *stock.Handler
	SalesHandler    *sales.Handler
	CustomerHandler *customers.Handler
	UsersHandler    *users.Handler
	JobHandler      *jobs.Handler
}

// NewRouter constructs the chi.Router with Aquapoint defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
	}) {
		r.Use(mw)
	}
	r.Use(params.AuthMiddleware.ResolveActor)
	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/items", func(r chi.Router) {
		params.CatalogHandler.MountRoutes(r)
		params.StockHandler.MountRoutes(r)
	})
	r.Route("/sales", params.SalesHandler.MountRoutes)
	r.Route("/customers", params.CustomerHandler.MountRoutes)
	r.Route("/users", params.UsersHandler.MountRoutes)
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}
