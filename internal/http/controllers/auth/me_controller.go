package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/centinela/internal/http/dto/session"
	httperrors "github.com/dropDatabas3/centinela/internal/http/errors"
	"github.com/dropDatabas3/centinela/internal/http/helpers"
	mw "github.com/dropDatabas3/centinela/internal/http/middlewares"
	"github.com/dropDatabas3/centinela/internal/tenant"
)

// MeController handles GET /v1/auth/me.
type MeController struct{}

// NewMeController creates a new me controller.
func NewMeController() *MeController {
	return &MeController{}
}

// Me describes the authenticated caller. Works for both credential forms:
// session-token callers also get the session metadata (IP, browser, login
// time), JWT callers only what the claims carry.
func (c *MeController) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	principal, ok := mw.GetPrincipal(ctx)
	if !ok {
		httperrors.WriteError(w, httperrors.ErrUnauthorized)
		return
	}

	tc, _ := tenant.From(ctx)
	resp := dto.MeResponse{
		TenantID:     tc.TenantID,
		Username:     tc.Username,
		UserID:       principal.UserID,
		RoleIDs:      principal.RoleIDs,
		IsSuperAdmin: principal.IsSuperAdmin,
	}

	if sess := mw.GetSession(ctx); sess != nil {
		resp.IP = sess.IP
		resp.Browser = sess.Browser
		resp.LoginTime = sess.LoginTime
	}

	helpers.WriteJSON(w, http.StatusOK, resp)
}
