package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/vysogota0399/fintech_dashboard/internal/controls"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/repositories"
)

// APIHandler serves every analytics operation as JSON. Each request runs its
// query again.
type APIHandler struct {
	analytics AnalyticsRepository
	lg        *logging.ZapLogger
}

func NewAPIHandler(analytics AnalyticsRepository, lg *logging.ZapLogger) *APIHandler {
	return &APIHandler{analytics: analytics, lg: lg}
}

func (h *APIHandler) Register(r fiber.Router) {
	r.Get("/kpis", h.KPIs)
	r.Get("/daily-summary", h.DailySummary)
	r.Get("/payment-methods", h.PaymentMethods)
	r.Get("/merchants/top", h.TopMerchants)
	r.Get("/merchants/performance", h.MerchantPerformance)
	r.Get("/categories", h.Categories)
	r.Get("/hourly", h.Hourly)
	r.Get("/statuses", h.Statuses)
	r.Get("/anomalies/high-value", h.HighValueAnomalies)
	r.Get("/anomalies/high-frequency", h.HighFrequencyAnomalies)
	r.Get("/transactions", h.Transactions)
}

func (h *APIHandler) internal(c *fiber.Ctx, msg string, err error) error {
	h.lg.ErrorCtx(c.UserContext(), msg, zap.Error(err), zap.String("path", c.Path()))
	return failure(c, fiber.StatusInternalServerError, msg)
}

func (h *APIHandler) KPIs(c *fiber.Ctx) error {
	k, err := h.analytics.KPIs(c.UserContext())
	if err != nil {
		return h.internal(c, "fetch kpis failed", err)
	}

	return success(c, "kpis", k)
}

func (h *APIHandler) DailySummary(c *fiber.Ctx) error {
	days, err := controls.ParsePeriod(c.Query("days"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.analytics.DailySummary(c.UserContext(), days)
	if err != nil {
		return h.internal(c, "fetch daily summary failed", err)
	}

	return success(c, "daily summary", rows)
}

func (h *APIHandler) PaymentMethods(c *fiber.Ctx) error {
	rows, err := h.analytics.PaymentMethodStats(c.UserContext())
	if err != nil {
		return h.internal(c, "fetch payment method stats failed", err)
	}

	return success(c, "payment method stats", rows)
}

func (h *APIHandler) TopMerchants(c *fiber.Ctx) error {
	limit, err := controls.ParseTop(c.Query("limit"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.analytics.TopMerchants(c.UserContext(), limit)
	if err != nil {
		return h.internal(c, "fetch top merchants failed", err)
	}

	return success(c, "top merchants", rows)
}

func (h *APIHandler) MerchantPerformance(c *fiber.Ctx) error {
	rows, err := h.analytics.MerchantPerformance(c.UserContext())
	if err != nil {
		return h.internal(c, "fetch merchant performance failed", err)
	}

	return success(c, "merchant performance", rows)
}

func (h *APIHandler) Categories(c *fiber.Ctx) error {
	rows, err := h.analytics.CategoryPerformance(c.UserContext())
	if err != nil {
		return h.internal(c, "fetch category performance failed", err)
	}

	return success(c, "category performance", rows)
}

func (h *APIHandler) Hourly(c *fiber.Ctx) error {
	rows, err := h.analytics.HourlyDistribution(c.UserContext())
	if err != nil {
		return h.internal(c, "fetch hourly distribution failed", err)
	}

	return success(c, "hourly distribution", rows)
}

func (h *APIHandler) Statuses(c *fiber.Ctx) error {
	rows, err := h.analytics.StatusDistribution(c.UserContext())
	if err != nil {
		return h.internal(c, "fetch status distribution failed", err)
	}

	return success(c, "status distribution", rows)
}

func (h *APIHandler) HighValueAnomalies(c *fiber.Ctx) error {
	threshold, err := controls.ParseHighValue(c.Query("threshold"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.analytics.HighValueAnomalies(c.UserContext(), threshold)
	if err != nil {
		return h.internal(c, "fetch high value anomalies failed", err)
	}

	return success(c, "high value anomalies", rows)
}

func (h *APIHandler) HighFrequencyAnomalies(c *fiber.Ctx) error {
	threshold, err := controls.ParseFrequency(c.Query("threshold"))
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.analytics.HighFrequencyAnomalies(c.UserContext(), threshold)
	if err != nil {
		return h.internal(c, "fetch high frequency anomalies failed", err)
	}

	return success(c, "high frequency anomalies", rows)
}

func (h *APIHandler) Transactions(c *fiber.Ctx) error {
	f, err := controls.ParseFilter(func(k string) string { return c.Query(k) })
	if err != nil {
		return failure(c, fiber.StatusBadRequest, err.Error())
	}

	rows, err := h.analytics.Transactions(c.UserContext(), f)
	if err != nil {
		if errors.Is(err, repositories.ErrInvalidFilter) {
			return failure(c, fiber.StatusBadRequest, err.Error())
		}

		return h.internal(c, "fetch transactions failed", err)
	}

	return success(c, "transactions", rows)
}
