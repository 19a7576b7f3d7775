package middlewares

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/centinela/internal/auth"
	httperrors "github.com/dropDatabas3/centinela/internal/http/errors"
	"github.com/dropDatabas3/centinela/internal/http/helpers"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
	"github.com/dropDatabas3/centinela/internal/tenant"
)

// ===== MIDDLEWARE: RESOLUCIÓN DE PRINCIPAL =====
//
// ResolvePrincipal resuelve la identidad del request a partir del header
// Authorization. Acepta dos formas de credencial:
//
//   1. JWT firmado (HMAC): identidad pre-verificada por un gateway upstream.
//      Se extraen los claims y se enlaza el contexto de tenant sin ir al cache.
//   2. Token opaco de sesión: se busca en el cache distribuido vía auth.Store.
//
// Si el cache no responde, el request continúa SIN identidad: cualquier
// handler protegido lo rechazará con 401. Nunca se concede acceso por
// imposibilidad de verificar.
func ResolvePrincipal(store *auth.Store, jwtSecret string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := helpers.BearerToken(r)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			// Un JWT tiene siempre tres segmentos; un token de sesión es un UUID.
			if jwtSecret != "" && strings.Count(raw, ".") == 2 {
				if tc, p, ok := parseJWTIdentity(raw, jwtSecret); ok {
					ctx = tenant.With(ctx, tc)
					ctx = WithPrincipal(ctx, p)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				// JWT malformado o firma inválida: sigue sin identidad.
				next.ServeHTTP(w, r)
				return
			}

			sess, err := store.Get(ctx, raw)
			if err != nil {
				logger.From(ctx).Warn("cache no disponible al resolver sesión, request sigue sin identidad",
					logger.Component("middleware"),
					logger.Op("resolve_principal"),
					logger.Err(err),
				)
				next.ServeHTTP(w, r)
				return
			}
			if sess == nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx = WithSession(ctx, sess)
			ctx = WithPrincipal(ctx, sess.Principal)
			ctx = tenant.With(ctx, tenant.Context{
				TenantID: sess.TenantID,
				Username: sess.Username,
				UserID:   sess.Principal.UserID,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// parseJWTIdentity valida el JWT y extrae tenant y principal de sus claims.
func parseJWTIdentity(raw, secret string) (tenant.Context, auth.Principal, bool) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return tenant.Context{}, auth.Principal{}, false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return tenant.Context{}, auth.Principal{}, false
	}

	tc := tenant.Context{
		TenantID: claimString(claims, "tid"),
		Username: claimString(claims, "preferred_username"),
		UserID:   claimString(claims, "sub"),
	}
	p := auth.Principal{
		UserID:       tc.UserID,
		IsSuperAdmin: claimBool(claims, "super"),
	}
	if roles, ok := claims["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				p.RoleIDs = append(p.RoleIDs, s)
			}
		}
	}
	return tc, p, true
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

func claimBool(claims jwt.MapClaims, key string) bool {
	v, ok := claims[key].(bool)
	return ok && v
}

// RequireSession corta con 401 los requests que llegan sin identidad resuelta.
func RequireSession() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := GetPrincipal(r.Context()); !ok {
				httperrors.WriteError(w, httperrors.ErrUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
