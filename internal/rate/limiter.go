// Package rate implementa el rate limiting declarativo por operación.
//
// Es un contador fixed-window: el contador nace lazy con el primer hit de la
// ventana, expira solo por TTL y nunca se borra explícitamente. En el borde
// de ventana puede pasar hasta ~2x la tasa nominal; ese tradeoff es
// intencional y se preserva (no upgradearlo a sliding window ni token bucket
// sin un requerimiento explícito).
package rate

import (
	"context"
	"strings"
	"time"

	"github.com/dropDatabas3/centinela/internal/cache"
)

// DefaultKeyPrefix es el prefijo de las keys de contador.
const DefaultKeyPrefix = "rate_limit:"

// Dimension define cómo se particiona el contador de una regla.
type Dimension string

const (
	// DimensionGlobal: un contador único para la operación.
	DimensionGlobal Dimension = "global"

	// DimensionPerIP: un contador por IP de origen.
	DimensionPerIP Dimension = "ip"
)

// Rule es la configuración declarativa de throttling de una operación.
type Rule struct {
	// Operation identifica la operación protegida (parte de la key).
	Operation string

	// KeyPrefix del contador. Default: DefaultKeyPrefix.
	KeyPrefix string

	// Window es la ventana fija; el TTL del contador.
	Window time.Duration

	// Max es la cantidad máxima de hits permitidos por ventana.
	Max int64

	// Dimension del contador. Default: DimensionGlobal.
	Dimension Dimension
}

// Key construye la key efectiva: prefijo + sufijo de dimensión + operación.
func (r Rule) Key(sourceIP string) string {
	prefix := r.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	var b strings.Builder
	b.WriteString(prefix)
	if r.Dimension == DimensionPerIP {
		b.WriteString(sourceIP)
		b.WriteString(":")
	}
	b.WriteString(r.Operation)
	return b.String()
}

// Result es el veredicto de una consulta al limiter.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	CurrentHits int64
}

// Limiter decide si un hit de una operación pasa o se rechaza.
type Limiter interface {
	Allow(ctx context.Context, rule Rule, sourceIP string) (Result, error)
}

// CacheLimiter implementa Limiter sobre el cache compartido. El
// check-and-increment corre como una sola unidad atómica server-side
// (script), que es el único punto donde una race sería un bug de
// correctitud y no una molestia de consistencia eventual.
type CacheLimiter struct {
	cache cache.Client

	// failOpen define la política ante un outage del cache: true deja pasar
	// el tráfico, false lo rechaza. Es una decisión operativa explícita; no
	// hay default implícito razonable, por eso viene de configuración.
	failOpen bool
}

// NewCacheLimiter crea el limiter.
func NewCacheLimiter(c cache.Client, failOpen bool) *CacheLimiter {
	return &CacheLimiter{cache: c, failOpen: failOpen}
}

// Allow ejecuta el check-and-increment atómico de la regla.
//
// Si el contador ya superó Max, rechaza sin incrementar más. Si el cache es
// inalcanzable retorna el error junto con el veredicto que dicta la política
// fail-open/fail-closed configurada.
func (l *CacheLimiter) Allow(ctx context.Context, rule Rule, sourceIP string) (Result, error) {
	key := rule.Key(sourceIP)

	n, err := l.cache.IncrWindow(ctx, key, rule.Max, rule.Window)
	if err != nil {
		return Result{Allowed: l.failOpen}, err
	}

	res := Result{
		Allowed:     n <= rule.Max,
		CurrentHits: n,
		Remaining:   rule.Max - n,
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		// Retry after: resto de la ventana. Best-effort, no atómico con el
		// incremento.
		if ttl, terr := l.cache.TTL(ctx, key); terr == nil && ttl > 0 {
			res.RetryAfter = ttl
		} else {
			res.RetryAfter = rule.Window
		}
	}
	return res, nil
}
