package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vysogota0399/fintech_dashboard/internal/logging"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db Pinger
	lg *logging.ZapLogger
}

func NewHealthHandler(db Pinger, lg *logging.ZapLogger) *HealthHandler {
	return &HealthHandler{db: db, lg: lg}
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	if err := h.db.Ping(c.UserContext()); err != nil {
		h.lg.ErrorCtx(c.UserContext(), "database ping failed", zap.Error(err))

		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "unavailable",
			"database": "disconnected",
		})
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": "connected",
	})
}
