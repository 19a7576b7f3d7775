package middlewares

import (
	"context"

	"github.com/dropDatabas3/centinela/internal/auth"
)

type ctxKey string

const (
	// ctxSessionKey guarda la sesión resuelta del bearer token
	ctxSessionKey ctxKey = "session"
	// ctxPrincipalKey guarda el principal autenticado (sesión o JWT)
	ctxPrincipalKey ctxKey = "principal"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// WithPrincipal inyecta el principal autenticado en el contexto.
func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipalKey, p)
}

// GetPrincipal obtiene el principal autenticado del contexto.
// El segundo retorno es false si el request no está autenticado.
func GetPrincipal(ctx context.Context) (auth.Principal, bool) {
	if v := ctx.Value(ctxPrincipalKey); v != nil {
		if p, ok := v.(auth.Principal); ok {
			return p, true
		}
	}
	return auth.Principal{}, false
}

// WithSession inyecta la sesión resuelta en el contexto.
func WithSession(ctx context.Context, sess *auth.Session) context.Context {
	return context.WithValue(ctx, ctxSessionKey, sess)
}

// GetSession obtiene la sesión del contexto.
// Retorna nil si el request no está autenticado.
func GetSession(ctx context.Context) *auth.Session {
	if v := ctx.Value(ctxSessionKey); v != nil {
		if s, ok := v.(*auth.Session); ok {
			return s
		}
	}
	return nil
}

// setRequestID inyecta el request ID en el contexto (interno)
func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetRequestID obtiene el request ID del contexto.
// Retorna cadena vacía si no hay request ID.
func GetRequestID(ctx context.Context) string {
	if v := ctx.Value(ctxRequestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
