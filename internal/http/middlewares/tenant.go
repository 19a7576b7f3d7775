package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/centinela/internal/http/errors"
	"github.com/dropDatabas3/centinela/internal/http/helpers"
	"github.com/dropDatabas3/centinela/internal/metrics"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
	"github.com/dropDatabas3/centinela/internal/tenant"
)

// ===== MIDDLEWARE: RESOLUCIÓN DE TENANT =====

// TenantResolutionConfig configura la propagación de contexto de tenant.
type TenantResolutionConfig struct {
	// Header del que se lee el tenant cuando el request no trae sesión.
	Header string
	// Allowlist de prefijos de path que pueden pasar sin tenant.
	Allowlist []string
}

// WithTenantResolution garantiza que todo request que llega a un handler
// protegido tiene un contexto de tenant enlazado. El orden de resolución:
//
//   1. Si ResolvePrincipal ya enlazó tenant (sesión o JWT), se respeta.
//   2. Si el request trae un bearer que no resolvió identidad (token
//      revocado, expirado o cache caído), pasa sin tenant: el fallo es
//      de credencial y RequireSession responde 401, no 400.
//   3. Si el path está en la allowlist, pasa sin tenant.
//   4. Si el header de tenant trae un valor no vacío, se enlaza.
//   5. En cualquier otro caso el request se rechaza ANTES del handler:
//      ningún handler protegido corre con tenant ambiguo.
func WithTenantResolution(cfg TenantResolutionConfig) Middleware {
	header := cfg.Header
	if header == "" {
		header = "X-Tenant-Id"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if tc, ok := tenant.From(ctx); ok && tc.TenantID != "" {
				next.ServeHTTP(w, r)
				return
			}

			if helpers.BearerToken(r) != "" {
				next.ServeHTTP(w, r)
				return
			}

			for _, prefix := range cfg.Allowlist {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			id := strings.TrimSpace(r.Header.Get(header))
			if id == "" {
				metrics.RecordTenantReject()
				logger.From(ctx).Warn("request sin tenant resoluble",
					logger.Component("middleware"),
					logger.Op("tenant_resolution"),
					logger.Path(r.URL.Path),
				)
				httperrors.WriteError(w, httperrors.ErrTenantUnresolved)
				return
			}

			ctx = tenant.With(ctx, tenant.Context{TenantID: id})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
