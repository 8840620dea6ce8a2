// Package router arma el handler HTTP de la API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	healthctrl "github.com/dropDatabas3/userdash/internal/http/controllers/health"
	usersctrl "github.com/dropDatabas3/userdash/internal/http/controllers/users"
	httperrors "github.com/dropDatabas3/userdash/internal/http/errors"
	mw "github.com/dropDatabas3/userdash/internal/http/middlewares"
)

// Deps contiene todo lo necesario para montar las rutas.
type Deps struct {
	Users  *usersctrl.UsersController
	Health *healthctrl.HealthController

	// Metrics es el handler de /metrics; nil = no se expone.
	Metrics http.Handler

	CORSOrigins []string

	// AuthMiddleware protege las rutas de escritura; nil = abiertas.
	AuthMiddleware mw.Middleware

	// RateLimit se aplica a las rutas de escritura antes de auth; nil = sin límite.
	RateLimit mw.Middleware
}

// New devuelve el handler raíz con la cadena de middlewares base aplicada.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	RegisterHealthRoutes(r, deps)
	RegisterUserRoutes(r, deps)

	return mw.Chain(r,
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithCORS(deps.CORSOrigins),
		mw.WithSecurityHeaders(),
		mw.WithMetrics(),
		mw.WithLogging(),
	)
}

// RegisterHealthRoutes registra /healthz, /readyz y /metrics. Son públicos.
func RegisterHealthRoutes(r chi.Router, deps Deps) {
	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Healthz)
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
}

// RegisterUserRoutes registra /v1/users. Las lecturas son públicas.
func RegisterUserRoutes(r chi.Router, deps Deps) {
	c := deps.Users
	if c == nil {
		return
	}

	r.Route("/v1/users", func(r chi.Router) {
		r.Get("/", c.List)
		r.Get("/{id}", c.Get)

		r.Group(func(r chi.Router) {
			if deps.RateLimit != nil {
				r.Use(deps.RateLimit)
			}
			if deps.AuthMiddleware != nil {
				r.Use(deps.AuthMiddleware)
			}
			r.Post("/", c.Create)
			r.Post("/reload", c.Reload)
			r.Put("/{id}", c.Update)
			r.Delete("/{id}", c.Delete)
		})
	})
}
