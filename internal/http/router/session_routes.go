package router

import (
	"github.com/go-chi/chi/v5"

	authctrl "github.com/dropDatabas3/centinela/internal/http/controllers/auth"
	sessionctrl "github.com/dropDatabas3/centinela/internal/http/controllers/session"
	mw "github.com/dropDatabas3/centinela/internal/http/middlewares"
	sessionsvc "github.com/dropDatabas3/centinela/internal/http/services/session"
)

// registerSessionRoutes registra login, logout y /auth/me.
func registerSessionRoutes(r chi.Router, deps Deps) {
	login := sessionctrl.NewLoginController(sessionsvc.NewLoginService(sessionsvc.LoginDeps{
		Credentials: deps.Credentials,
		Sessions:    deps.Sessions,
	}))
	logout := sessionctrl.NewLogoutController(sessionsvc.NewLogoutService(deps.Sessions))
	me := authctrl.NewMeController()

	r.With(rateRule(deps, "login"), mw.WithNoStore()).
		Post("/v1/session/login", login.Login)

	// Logout no exige sesión resuelta: un token ya expirado igual responde 204.
	r.With(mw.WithNoStore()).
		Post("/v1/session/logout", logout.Logout)

	r.With(mw.RequireSession(), mw.WithNoStore()).
		Get("/v1/auth/me", me.Me)
}
