package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and the state of the backing services.
// Nil dependencies are reported as "disabled".
type HealthHandler struct {
	DB    Pinger
	Redis *redis.Client
}

// Health always answers 200 while the process is serving; a failing
// dependency only shows up in the body.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := echo.Map{"status": "ok", "database": "disabled", "redis": "disabled"}
	if h.DB != nil {
		status["database"] = "up"
		if err := h.DB.PingContext(ctx); err != nil {
			status["database"] = "down"
		}
	}
	if h.Redis != nil {
		status["redis"] = "up"
		if err := h.Redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
		}
	}
	return c.JSON(http.StatusOK, status)
}
