// Package metrics expone las métricas Prometheus del servicio.
package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	once sync.Once

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	loginsTotal       *prometheus.CounterVec
	logoutsTotal      prometheus.Counter
	kickoutsTotal     prometheus.Counter
	rateLimitedTotal  *prometheus.CounterVec
	tenantRejectTotal prometheus.Counter
	liveSessions      prometheus.Gauge
)

// Register inicializa y registra las métricas. Idempotente.
// Devuelve el handler para /metrics.
func Register(reg prometheus.Registerer) http.Handler {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	once.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		loginsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "auth_logins_total",
			Help: "Logins por resultado",
		}, []string{"result"}) // result: success|failure

		logoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_logouts_total",
			Help: "Logouts voluntarios",
		})

		kickoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "auth_kickouts_total",
			Help: "Sesiones removidas por logout forzado",
		})

		rateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_total",
			Help: "Requests rechazadas por rate limiting",
		}, []string{"operation"})

		tenantRejectTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tenant_resolution_rejects_total",
			Help: "Requests rechazadas por tenant irresoluble",
		})

		liveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "auth_live_sessions",
			Help: "Sesiones vivas observadas por el último listado del directorio",
		})

		for _, c := range []prometheus.Collector{
			httpRequestsTotal, httpRequestDuration,
			loginsTotal, logoutsTotal, kickoutsTotal,
			rateLimitedTotal, tenantRejectTotal, liveSessions,
		} {
			if err := reg.Register(c); err != nil {
				if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
					panic(err)
				}
			}
		}
	})
	return promhttp.Handler()
}

// RecordHTTP registra un request terminado.
// El path se normaliza (tokens/uuids → :param) para acotar la cardinalidad.
func RecordHTTP(method, path string, status int, dur time.Duration) {
	if httpRequestsTotal == nil {
		return
	}
	p := normalizePath(path)
	httpRequestsTotal.WithLabelValues(method, p, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, p).Observe(dur.Seconds())
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

func normalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	segments := strings.Split(clean, "/")
	var out []string
	for _, seg := range segments {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	if _, err := strconv.Atoi(seg); err == nil {
		return true
	}
	return false
}

// RecordLogin registra un intento de login.
func RecordLogin(success bool) {
	if loginsTotal == nil {
		return
	}
	result := "failure"
	if success {
		result = "success"
	}
	loginsTotal.WithLabelValues(result).Inc()
}

// RecordLogout registra un logout voluntario.
func RecordLogout() {
	if logoutsTotal != nil {
		logoutsTotal.Inc()
	}
}

// RecordKickout registra n sesiones removidas por kickout.
func RecordKickout(n int) {
	if kickoutsTotal != nil {
		kickoutsTotal.Add(float64(n))
	}
}

// RecordRateLimited registra un rechazo del rate limiter.
func RecordRateLimited(operation string) {
	if rateLimitedTotal != nil {
		rateLimitedTotal.WithLabelValues(operation).Inc()
	}
}

// ObserveLiveSessions fija el gauge de sesiones vivas. Lo alimenta el
// directorio online en cada scan; entre scans el valor puede quedar stale
// (las sesiones también mueren por TTL sin pasar por acá).
func ObserveLiveSessions(n int) {
	if liveSessions != nil {
		liveSessions.Set(float64(n))
	}
}

// RecordTenantReject registra un rechazo por tenant irresoluble.
func RecordTenantReject() {
	if tenantRejectTotal != nil {
		tenantRejectTotal.Inc()
	}
}
