package handlers

import (
	"context"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

type AnalyticsRepository interface {
	DailySummary(ctx context.Context, days int) ([]models.DailySummary, error)
	PaymentMethodStats(ctx context.Context) ([]models.PaymentMethodStats, error)
	TopMerchants(ctx context.Context, limit int) ([]models.TopMerchant, error)
	MerchantPerformance(ctx context.Context) ([]models.MerchantPerformance, error)
	CategoryPerformance(ctx context.Context) ([]models.CategoryPerformance, error)
	HourlyDistribution(ctx context.Context) ([]models.HourlyDistribution, error)
	StatusDistribution(ctx context.Context) ([]models.StatusDistribution, error)
	HighValueAnomalies(ctx context.Context, threshold float64) ([]models.HighValueAnomaly, error)
	HighFrequencyAnomalies(ctx context.Context, threshold int) ([]models.HighFrequencyAnomaly, error)
	KPIs(ctx context.Context) (*models.KPIs, error)
	Transactions(ctx context.Context, f models.TransactionFilter) ([]models.TransactionListing, error)
}
