package logger

import (
	"time"

	"go.uber.org/zap"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

// RequestID crea un campo para el ID del request.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

// Method crea un campo para el método HTTP.
func Method(v string) zap.Field {
	return zap.String("method", v)
}

// Path crea un campo para el path del request.
func Path(v string) zap.Field {
	return zap.String("path", v)
}

// Status crea un campo para el status code HTTP.
func Status(v int) zap.Field {
	return zap.Int("status", v)
}

// DurationMs crea un campo para la duración en milisegundos.
func DurationMs(v int64) zap.Field {
	return zap.Int64("duration_ms", v)
}

// Bytes crea un campo para los bytes de respuesta.
func Bytes(v int) zap.Field {
	return zap.Int("bytes", v)
}

// ClientIP crea un campo para la IP del cliente.
func ClientIP(v string) zap.Field {
	return zap.String("client_ip", v)
}

// =================================================================================
// CAMPOS ESTÁNDAR - DOMINIO
// =================================================================================

// TenantID crea un campo para el tenant.
func TenantID(v string) zap.Field {
	return zap.String("tenant_id", v)
}

// Username crea un campo para el username.
func Username(v string) zap.Field {
	return zap.String("username", v)
}

// UserID crea un campo para el user ID.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Token crea un campo para un token de sesión, truncado.
// Nunca logueamos el token completo.
func Token(v string) zap.Field {
	if len(v) > 8 {
		v = v[:8] + "…"
	}
	return zap.String("token", v)
}

// =================================================================================
// CAMPOS GENÉRICOS
// =================================================================================

// Layer crea un campo para la capa (controller, service, middleware).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Component crea un campo para el componente que emite el log.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación en curso.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

// Count crea un campo numérico genérico.
func Count(v int) zap.Field {
	return zap.Int("count", v)
}

// Key crea un campo para una key de cache.
func Key(v string) zap.Field {
	return zap.String("key", v)
}

// Duration crea un campo para una duración.
func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Any crea un campo de tipo arbitrario.
func Any(key string, v any) zap.Field {
	return zap.Any(key, v)
}
