// Package health contiene el controller de health check.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/centinela/internal/cache"
	"github.com/dropDatabas3/centinela/internal/http/helpers"
)

// HealthController handles GET /healthz.
type HealthController struct {
	cache cache.Client
}

// NewHealthController creates a new health controller.
func NewHealthController(c cache.Client) *HealthController {
	return &HealthController{cache: c}
}

type healthResponse struct {
	Status string `json:"status"`
	Cache  string `json:"cache"`
}

// Health reports liveness plus the reachability of the shared cache.
// A degraded cache still returns 200: the process is alive, and session
// verification fails closed on its own.
func (c *HealthController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok", Cache: "ok"}
	if err := c.cache.Ping(ctx); err != nil {
		resp.Cache = "unreachable"
	}

	helpers.WriteJSON(w, http.StatusOK, resp)
}
