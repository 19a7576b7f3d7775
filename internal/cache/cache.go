// Package cache provee el cliente de cache compartido del servicio.
//
// Soporta:
//   - Memory (in-process, para desarrollo/testing)
//   - Redis (distribuido, para producción)
//
// Todo el estado mutable compartido del servicio vive aquí: registros de
// sesión, índices usuario→tokens y contadores de rate limiting. El proceso
// en sí es stateless y puede escalar horizontalmente.
package cache

import (
	"context"
	"time"
)

// Client define las operaciones de cache que usa el servicio.
//
// Los errores de conectividad se propagan tal cual; "key ausente" se señala
// siempre con ErrNotFound. Los callers dependen de esa distinción para poder
// fallar cerrado ante un outage del cache.
type Client interface {
	// Get obtiene un valor. Retorna ErrNotFound si no existe.
	Get(ctx context.Context, key string) (string, error)

	// Set guarda un valor con TTL. Si ttl es 0, no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete elimina una key. Borrar una key inexistente no es error.
	Delete(ctx context.Context, key string) error

	// TTL retorna el tiempo de vida restante de una key.
	// Retorna ErrNotFound si la key no existe.
	TTL(ctx context.Context, key string) (time.Duration, error)

	// Expire fija el TTL de una key existente.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// SAdd agrega un miembro a un set.
	SAdd(ctx context.Context, key, member string) error

	// SRem remueve un miembro de un set.
	SRem(ctx context.Context, key, member string) error

	// SMembers retorna los miembros de un set. Set inexistente => slice vacío.
	SMembers(ctx context.Context, key string) ([]string, error)

	// Scan itera las keys que matchean el patrón usando un cursor con lotes
	// acotados (nunca una lectura bloqueante del keyspace completo).
	// fn se invoca por cada key; si retorna error, la iteración se corta.
	Scan(ctx context.Context, match string, count int64, fn func(key string) error) error

	// IncrWindow ejecuta el check-and-increment atómico del rate limiter:
	// si el contador actual ya superó max, retorna el valor sin incrementar;
	// si no, incrementa y, cuando el resultado es 1 (ventana nueva), fija el
	// TTL de la key a window. El caller decide con el valor retornado
	// (permitido ⇔ n <= max).
	IncrWindow(ctx context.Context, key string, max int64, window time.Duration) (int64, error)

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close() error
}

// Config configuración para crear un cliente de cache.
type Config struct {
	Driver   string // "memory" | "redis"
	Addr     string
	Password string
	DB       int
	Prefix   string // Prefijo para todas las keys (vacío en producción: el keyspace es contractual)
}

// Errores de cache.
var (
	ErrNotFound = errNotFound{}
)

type errNotFound struct{}

func (e errNotFound) Error() string { return "cache: key not found" }

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	_, ok := err.(errNotFound)
	return ok
}

// New crea un cliente de cache según la configuración.
func New(cfg Config) (Client, error) {
	switch cfg.Driver {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg.Prefix), nil
	default:
		return NewMemory(cfg.Prefix), nil
	}
}
