package session

import (
	"net/http"

	dto "github.com/dropDatabas3/centinela/internal/http/dto/session"
	httperrors "github.com/dropDatabas3/centinela/internal/http/errors"
	"github.com/dropDatabas3/centinela/internal/http/helpers"
	svc "github.com/dropDatabas3/centinela/internal/http/services/session"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
	"github.com/dropDatabas3/centinela/internal/tenant"
)

// LoginController handles POST /v1/session/login.
type LoginController struct {
	service svc.LoginService
}

// NewLoginController creates a new session login controller.
func NewLoginController(service svc.LoginService) *LoginController {
	return &LoginController{service: service}
}

// Login authenticates a user and returns the opaque session token.
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	// El tenant puede venir en el body o haber sido resuelto por header.
	if req.TenantID == "" {
		req.TenantID = tenant.ID(ctx)
	}

	ip := helpers.ClientIP(r)
	browser := r.UserAgent()

	result, err := c.service.Login(ctx, req, ip, browser)
	if err != nil {
		switch err {
		case svc.ErrLoginMissingTenant:
			httperrors.WriteError(w, httperrors.ErrTenantUnresolved)
		case svc.ErrLoginMissingUsername, svc.ErrLoginMissingPassword:
			httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail(err.Error()))
		case svc.ErrLoginInvalidCredentials:
			httperrors.WriteError(w, httperrors.ErrInvalidCredentials)
		case svc.ErrLoginNoDatabase:
			httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
		case svc.ErrLoginSessionFailed:
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		default:
			log.Error("login error", logger.Err(err))
			httperrors.WriteError(w, httperrors.ErrInternalServerError)
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.LoginResponse{
		Token:     result.Token,
		TenantID:  result.TenantID,
		Username:  result.Username,
		UserID:    result.Principal.UserID,
		RoleIDs:   result.Principal.RoleIDs,
		ExpiresIn: result.ExpiresIn,
	})

	log.Debug("session login successful")
}
