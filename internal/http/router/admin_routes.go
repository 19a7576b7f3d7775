package router

import (
	"github.com/go-chi/chi/v5"

	adminctrl "github.com/dropDatabas3/centinela/internal/http/controllers/admin"
	mw "github.com/dropDatabas3/centinela/internal/http/middlewares"
	adminsvc "github.com/dropDatabas3/centinela/internal/http/services/admin"
)

// registerAdminRoutes registra el directorio de sesiones online y los
// kickouts administrativos. Todas exigen sesión; el scoping por tenant
// (super ve todo, el resto solo su tenant) se decide en el service.
func registerAdminRoutes(r chi.Router, deps Deps) {
	online := adminctrl.NewOnlineController(adminsvc.NewOnlineService(adminsvc.OnlineDeps{
		Directory: deps.Directory,
		Sessions:  deps.Sessions,
	}))

	r.Route("/v1/admin/online", func(ar chi.Router) {
		ar.Use(mw.RequireSession(), mw.WithNoStore())

		ar.With(rateRule(deps, "online_list")).Get("/", online.List)
		ar.With(rateRule(deps, "kickout")).Delete("/users/{tenantID}/{userID}", online.KickUser)
		ar.With(rateRule(deps, "kickout")).Delete("/{token}", online.Kick)
	})
}
