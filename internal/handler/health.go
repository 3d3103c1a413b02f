package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightlookup/internal/cache"
	"github.com/dharmasatrya/flightlookup/internal/lookup"
)

const healthPingTimeout = 500 * time.Millisecond

type pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	service *lookup.Service
	cache   cache.Cache
}

func NewHealthHandler(service *lookup.Service, c cache.Cache) *HealthHandler {
	return &HealthHandler{
		service: service,
		cache:   c,
	}
}

// Health reports degraded, not down, when the cache is unreachable: lookups
// still answer from the upstream or the fallback schedule.
func (h *HealthHandler) Health(c echo.Context) error {
	body := map[string]string{
		"status":   "ok",
		"cache":    "ok",
		"upstream": "configured",
	}
	if !h.service.HasUpstream() {
		body["upstream"] = "not_configured"
	}

	if p, ok := h.cache.(pinger); ok {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthPingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			body["status"] = "degraded"
			body["cache"] = "unreachable"
		}
	}

	return c.JSON(http.StatusOK, body)
}
