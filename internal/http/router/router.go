// Package router define las rutas HTTP del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/centinela/internal/auth"
	"github.com/dropDatabas3/centinela/internal/cache"
	"github.com/dropDatabas3/centinela/internal/config"
	healthctrl "github.com/dropDatabas3/centinela/internal/http/controllers/health"
	mw "github.com/dropDatabas3/centinela/internal/http/middlewares"
	"github.com/dropDatabas3/centinela/internal/rate"
	"github.com/dropDatabas3/centinela/internal/store"
)

// Deps contiene las dependencias ya construidas para armar el router.
type Deps struct {
	Config      *config.Config
	Cache       cache.Client
	Sessions    *auth.Store
	Directory   *auth.Directory
	Credentials store.CredentialRepository
	Limiter     rate.Limiter
	Metrics     http.Handler
}

// New arma el router completo: middlewares globales y todas las rutas.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithSecurityHeaders(),
		mw.ResolvePrincipal(deps.Sessions, deps.Config.Auth.JWTSecret),
		mw.WithTenantResolution(mw.TenantResolutionConfig{
			Header:    deps.Config.Tenant.Header,
			Allowlist: deps.Config.Tenant.Allowlist,
		}),
		mw.WithLogging(),
	)

	r.Get("/healthz", healthctrl.NewHealthController(deps.Cache).Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	registerSessionRoutes(r, deps)
	registerAdminRoutes(r, deps)

	return r
}

// rateRule devuelve el middleware de rate limiting para una operación, o un
// passthrough si el limiter está apagado o la operación no tiene regla.
func rateRule(deps Deps, operation string) mw.Middleware {
	if !deps.Config.Rate.Enabled || deps.Limiter == nil {
		return passthrough
	}
	for _, rc := range deps.Config.Rate.Rules {
		if rc.Operation != operation {
			continue
		}
		return mw.WithRateRule(deps.Limiter, rate.Rule{
			Operation: rc.Operation,
			KeyPrefix: rc.KeyPrefix,
			Window:    rc.WindowDuration(),
			Max:       rc.Max,
			Dimension: rate.Dimension(rc.Dimension),
		})
	}
	return passthrough
}

func passthrough(next http.Handler) http.Handler { return next }
