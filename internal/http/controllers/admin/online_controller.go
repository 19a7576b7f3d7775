package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dto "github.com/dropDatabas3/centinela/internal/http/dto/admin"
	httperrors "github.com/dropDatabas3/centinela/internal/http/errors"
	"github.com/dropDatabas3/centinela/internal/http/helpers"
	svc "github.com/dropDatabas3/centinela/internal/http/services/admin"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
)

// OnlineController handles the /v1/admin/online routes.
type OnlineController struct {
	service svc.OnlineService
}

// NewOnlineController creates a new online directory controller.
func NewOnlineController(service svc.OnlineService) *OnlineController {
	return &OnlineController{service: service}
}

// List handles GET /v1/admin/online.
func (c *OnlineController) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("OnlineController.List"))

	resp, err := c.service.List(ctx)
	if err != nil {
		log.Error("online list failed", logger.Err(err))
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, resp)
}

// Kick handles DELETE /v1/admin/online/{token}.
func (c *OnlineController) Kick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token := chi.URLParam(r, "token")
	if token == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("falta el token"))
		return
	}

	n, err := c.service.Kick(ctx, token)
	if err != nil {
		c.writeKickError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.KickoutResponse{Removed: n})
}

// KickUser handles DELETE /v1/admin/online/users/{tenantID}/{userID}.
func (c *OnlineController) KickUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	tenantID := chi.URLParam(r, "tenantID")
	userID := chi.URLParam(r, "userID")
	if tenantID == "" || userID == "" {
		httperrors.WriteError(w, httperrors.ErrBadRequest.WithDetail("faltan tenantID o userID"))
		return
	}

	n, err := c.service.KickUser(ctx, tenantID, userID)
	if err != nil {
		c.writeKickError(w, err)
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.KickoutResponse{Removed: n})
}

func (c *OnlineController) writeKickError(w http.ResponseWriter, err error) {
	switch err {
	case svc.ErrOnlineForbidden:
		httperrors.WriteError(w, httperrors.ErrForbidden)
	default:
		httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
	}
}
