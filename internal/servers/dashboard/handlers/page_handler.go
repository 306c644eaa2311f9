package handlers

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vysogota0399/fintech_dashboard/internal/controls"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
)

//go:embed templates/*.html
var templatesFS embed.FS

var dashboardTemplate = template.Must(
	template.New("dashboard.html").Funcs(templateFuncs).ParseFS(templatesFS, "templates/dashboard.html"),
)

// PageHandler renders the HTML dashboard. Every request reads the controls
// from the query string, runs all queries and renders the result.
type PageHandler struct {
	analytics AnalyticsRepository
	lg        *logging.ZapLogger
}

func NewPageHandler(analytics AnalyticsRepository, lg *logging.ZapLogger) *PageHandler {
	return &PageHandler{analytics: analytics, lg: lg}
}

func (h *PageHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()

	values, err := controls.Parse(func(k string) string { return c.Query(k) })
	notices := controls.Messages(err)
	if err != nil {
		h.lg.WarnCtx(ctx, "invalid dashboard controls, defaults used", zap.Error(err))
	}

	view := newPageView(values, notices)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		view.KPIs, err = h.analytics.KPIs(gctx)
		return wrap("kpis", err)
	})
	g.Go(func() (err error) {
		view.Daily, err = h.analytics.DailySummary(gctx, values.Days)
		return wrap("daily summary", err)
	})
	g.Go(func() (err error) {
		view.MethodStats, err = h.analytics.PaymentMethodStats(gctx)
		return wrap("payment method stats", err)
	})
	g.Go(func() (err error) {
		view.TopMerchants, err = h.analytics.TopMerchants(gctx, values.Top)
		return wrap("top merchants", err)
	})
	g.Go(func() (err error) {
		view.Performance, err = h.analytics.MerchantPerformance(gctx)
		return wrap("merchant performance", err)
	})
	g.Go(func() (err error) {
		view.Categories, err = h.analytics.CategoryPerformance(gctx)
		return wrap("category performance", err)
	})
	g.Go(func() (err error) {
		view.Hourly, err = h.analytics.HourlyDistribution(gctx)
		return wrap("hourly distribution", err)
	})
	g.Go(func() (err error) {
		view.StatusDist, err = h.analytics.StatusDistribution(gctx)
		return wrap("status distribution", err)
	})
	g.Go(func() (err error) {
		view.HighValue, err = h.analytics.HighValueAnomalies(gctx, values.MinAmount)
		return wrap("high value anomalies", err)
	})
	g.Go(func() (err error) {
		view.HighFrequency, err = h.analytics.HighFrequencyAnomalies(gctx, values.MinCount)
		return wrap("high frequency anomalies", err)
	})
	g.Go(func() (err error) {
		view.Transactions, err = h.analytics.Transactions(gctx, values.Filter)
		return wrap("transactions", err)
	})

	if err := g.Wait(); err != nil {
		h.lg.ErrorCtx(ctx, "dashboard queries failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).SendString("dashboard data is unavailable, try again later")
	}

	view.fill()

	buf := &bytes.Buffer{}
	if err := dashboardTemplate.Execute(buf, view); err != nil {
		h.lg.ErrorCtx(ctx, "render dashboard failed", zap.Error(err))

		return c.Status(fiber.StatusInternalServerError).SendString("dashboard rendering failed")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}

func wrap(query string, err error) error {
	if err != nil {
		return fmt.Errorf("page_handler: %s error %w", query, err)
	}

	return nil
}
