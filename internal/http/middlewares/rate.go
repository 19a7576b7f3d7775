package middlewares

import (
	"net/http"
	"strconv"

	httperrors "github.com/dropDatabas3/centinela/internal/http/errors"
	"github.com/dropDatabas3/centinela/internal/http/helpers"
	"github.com/dropDatabas3/centinela/internal/metrics"
	"github.com/dropDatabas3/centinela/internal/observability/logger"
	"github.com/dropDatabas3/centinela/internal/rate"
)

// ===== MIDDLEWARE: RATE LIMITING =====

// WithRateRule aplica una regla declarativa de rate limiting sobre la ruta.
// La dimensión de la regla decide la clave del contador: global o por IP
// de origen. Cuando el backend de conteo falla, la política de la instancia
// del limiter (fail open / fail closed) decide si el request pasa.
func WithRateRule(limiter rate.Limiter, rule rate.Rule) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			sourceIP := ""
			if rule.Dimension == rate.DimensionPerIP {
				sourceIP = helpers.ClientIP(r)
			}

			res, err := limiter.Allow(ctx, rule, sourceIP)
			if err != nil {
				logger.From(ctx).Warn("backend de rate limiting no disponible",
					logger.Component("middleware"),
					logger.Op(rule.Operation),
					logger.Err(err),
				)
				if !res.Allowed {
					// Fail closed: indisponibilidad, no agotamiento de cuota.
					httperrors.WriteError(w, httperrors.ErrServiceUnavailable)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !res.Allowed {
				retryAfter := int(res.RetryAfter.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				w.Header().Set("X-RateLimit-Reset", strconv.Itoa(retryAfter))
				metrics.RecordRateLimited(rule.Operation)
				logger.From(ctx).Warn("request rechazado por rate limit",
					logger.Component("middleware"),
					logger.Op(rule.Operation),
					logger.ClientIP(sourceIP),
					logger.Count(int(res.CurrentHits)),
				)
				httperrors.WriteError(w, httperrors.ErrRateLimited)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}
