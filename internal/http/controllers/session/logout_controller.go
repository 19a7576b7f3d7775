package session

import (
	"net/http"

	httperrors "github.com/dropDatabas3/centinela/internal/http/errors"
	"github.com/dropDatabas3/centinela/internal/http/helpers"
	svc "github.com/dropDatabas3/centinela/internal/http/services/session"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
)

// LogoutController handles POST /v1/session/logout.
type LogoutController struct {
	service svc.LogoutService
}

// NewLogoutController creates a new session logout controller.
func NewLogoutController(service svc.LogoutService) *LogoutController {
	return &LogoutController{service: service}
}

// Logout terminates the caller's session. Idempotent: an already-expired
// token still yields 204.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	token := helpers.BearerToken(r)
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrUnauthorized.WithDetail("falta el bearer token"))
		return
	}

	if err := c.service.Logout(ctx, token); err != nil {
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusNoContent)
	log.Debug("session logout successful")
}
