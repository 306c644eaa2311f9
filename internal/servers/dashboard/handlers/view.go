package handlers

import (
	"slices"

	"github.com/vysogota0399/fintech_dashboard/internal/controls"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

type pageView struct {
	Controls controls.Values
	Notices  []string

	PeriodOptions []int
	MinTop        int
	MaxTop        int
	MinHighValue  int
	MaxHighValue  int
	MinFrequency  int
	MaxFrequency  int
	Methods       []models.PaymentMethod
	Statuses      []models.TransactionStatus
	AllOption     string

	KPIs          *models.KPIs
	Daily         []models.DailySummary
	MethodStats   []models.PaymentMethodStats
	TopMerchants  []models.TopMerchant
	Performance   []models.MerchantPerformance
	Categories    []models.CategoryPerformance
	Hourly        []models.HourlyDistribution
	StatusDist    []models.StatusDistribution
	HighValue     []models.HighValueAnomaly
	HighFrequency []models.HighFrequencyAnomaly
	Transactions  []models.TransactionListing

	Insights *hourlyInsights
	Charts   charts
}

// hourlyInsights is derived from the hourly distribution. It is nil when
// there are no transactions.
type hourlyInsights struct {
	PeakHour       int
	PeakCount      int64
	BestTicketHour int
	BestTicket     string
}

// charts holds chart series as plain numbers; the template writes them into
// a script block as JSON.
type charts struct {
	Daily struct {
		Labels       []string  `json:"labels"`
		Volume       []float64 `json:"volume"`
		Approved     []int64   `json:"approved"`
		Declined     []int64   `json:"declined"`
		ApprovalRate []float64 `json:"approval_rate"`
	} `json:"daily"`
	Methods struct {
		Labels []string  `json:"labels"`
		Counts []int64   `json:"counts"`
		Volume []float64 `json:"volume"`
	} `json:"methods"`
	TopMerchants struct {
		Labels []string  `json:"labels"`
		Volume []float64 `json:"volume"`
	} `json:"top_merchants"`
	Categories struct {
		Labels         []string  `json:"labels"`
		Volume         []float64 `json:"volume"`
		ApprovedVolume []float64 `json:"approved_volume"`
	} `json:"categories"`
	Hourly struct {
		Labels    []int     `json:"labels"`
		Counts    []int64   `json:"counts"`
		AvgAmount []float64 `json:"avg_amount"`
	} `json:"hourly"`
}

func newPageView(v controls.Values, notices []string) *pageView {
	return &pageView{
		Controls:      v,
		Notices:       notices,
		PeriodOptions: controls.PeriodOptions,
		MinTop:        controls.MinTop,
		MaxTop:        controls.MaxTop,
		MinHighValue:  controls.MinHighValue,
		MaxHighValue:  controls.MaxHighValue,
		MinFrequency:  controls.MinFrequency,
		MaxFrequency:  controls.MaxFrequency,
		Methods:       models.PaymentMethods,
		Statuses:      models.TransactionStatuses,
		AllOption:     controls.AllOption,
	}
}

// fill derives insights and chart series once every query has returned.
func (v *pageView) fill() {
	// chart the trend oldest first
	daily := slices.Clone(v.Daily)
	slices.Reverse(daily)
	for _, d := range daily {
		v.Charts.Daily.Labels = append(v.Charts.Daily.Labels, d.Date.Format(controls.DateLayout))
		v.Charts.Daily.Volume = append(v.Charts.Daily.Volume, d.TotalVolume.InexactFloat64())
		v.Charts.Daily.Approved = append(v.Charts.Daily.Approved, d.Approved)
		v.Charts.Daily.Declined = append(v.Charts.Daily.Declined, d.Declined)
		v.Charts.Daily.ApprovalRate = append(v.Charts.Daily.ApprovalRate, d.ApprovalRate)
	}

	for _, m := range v.MethodStats {
		v.Charts.Methods.Labels = append(v.Charts.Methods.Labels, string(m.PaymentMethod))
		v.Charts.Methods.Counts = append(v.Charts.Methods.Counts, m.TotalTransactions)
		v.Charts.Methods.Volume = append(v.Charts.Methods.Volume, m.TotalVolume.InexactFloat64())
	}

	for _, m := range v.TopMerchants {
		v.Charts.TopMerchants.Labels = append(v.Charts.TopMerchants.Labels, m.Name)
		v.Charts.TopMerchants.Volume = append(v.Charts.TopMerchants.Volume, m.TotalVolume.InexactFloat64())
	}

	for _, c := range v.Categories {
		v.Charts.Categories.Labels = append(v.Charts.Categories.Labels, c.Category)
		v.Charts.Categories.Volume = append(v.Charts.Categories.Volume, c.TotalVolume.InexactFloat64())
		v.Charts.Categories.ApprovedVolume = append(v.Charts.Categories.ApprovedVolume, c.ApprovedVolume.InexactFloat64())
	}

	for _, h := range v.Hourly {
		v.Charts.Hourly.Labels = append(v.Charts.Hourly.Labels, h.Hour)
		v.Charts.Hourly.Counts = append(v.Charts.Hourly.Counts, h.TotalTransactions)
		v.Charts.Hourly.AvgAmount = append(v.Charts.Hourly.AvgAmount, h.AvgAmount.InexactFloat64())
	}

	v.Insights = insightsOf(v.Hourly)
}

func insightsOf(hourly []models.HourlyDistribution) *hourlyInsights {
	if len(hourly) == 0 {
		return nil
	}

	peak, best := hourly[0], hourly[0]
	for _, h := range hourly[1:] {
		if h.TotalTransactions > peak.TotalTransactions {
			peak = h
		}
		if h.AvgAmount.GreaterThan(best.AvgAmount) {
			best = h
		}
	}

	return &hourlyInsights{
		PeakHour:       peak.Hour,
		PeakCount:      peak.TotalTransactions,
		BestTicketHour: best.Hour,
		BestTicket:     money(best.AvgAmount),
	}
}
