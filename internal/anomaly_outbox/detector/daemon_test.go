package detector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vysogota0399/fintech_dashboard/internal/anomaly_outbox"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

type fakeAnalytics struct {
	err           error
	highValue     []models.HighValueAnomaly
	highFrequency []models.HighFrequencyAnomaly

	gotAmount float64
	gotCount  int
}

func (f *fakeAnalytics) HighValueAnomalies(_ context.Context, threshold float64) ([]models.HighValueAnomaly, error) {
	f.gotAmount = threshold
	return f.highValue, f.err
}

func (f *fakeAnalytics) HighFrequencyAnomalies(_ context.Context, threshold int) ([]models.HighFrequencyAnomaly, error) {
	f.gotCount = threshold
	return f.highFrequency, f.err
}

type fakeAlerts struct {
	saved map[string]*models.AnomalyAlert
	err   error
}

func (f *fakeAlerts) Save(_ context.Context, in *models.AnomalyAlert) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.saved[in.UUID]; ok {
		return false, nil
	}

	f.saved[in.UUID] = in
	return true, nil
}

var detectedAt = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func newDaemon(t *testing.T, analytics *fakeAnalytics, alerts *fakeAlerts) *Daemon {
	t.Helper()

	return &Daemon{
		lg:        logging.NewFromZap(zaptest.NewLogger(t)),
		cfg:       &anomaly_outbox.Config{HighValueThreshold: 10000, HighFrequencyThreshold: 5},
		now:       func() time.Time { return detectedAt },
		analytics: analytics,
		alerts:    alerts,
	}
}

func fixtures() *fakeAnalytics {
	window := time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC)

	return &fakeAnalytics{
		highValue: []models.HighValueAnomaly{
			{
				TransactionID:   101,
				TransactionDate: window.Add(30 * time.Minute),
				CustomerID:      7,
				CustomerName:    "Ana Souza",
				MerchantName:    "Loja Alfa",
				Amount:          decimal.RequireFromString("25000.00"),
				PaymentMethod:   models.PaymentMethodCreditCard,
				Status:          models.TransactionStatusApproved,
			},
		},
		highFrequency: []models.HighFrequencyAnomaly{
			{CustomerID: 8, CustomerName: "Bruno Lima", HourWindow: window, TransactionsCount: 10},
		},
	}
}

func TestDaemon_Detect(t *testing.T) {
	analytics := fixtures()
	alerts := &fakeAlerts{saved: map[string]*models.AnomalyAlert{}}
	dmn := newDaemon(t, analytics, alerts)

	require.NoError(t, dmn.detect(context.Background()))

	assert.Equal(t, 10000.0, analytics.gotAmount)
	assert.Equal(t, 5, analytics.gotCount)
	require.Len(t, alerts.saved, 2)

	hv := alerts.saved[uuid.NewSHA1(uuid.NameSpaceOID, []byte("high_value:101")).String()]
	require.NotNil(t, hv)
	assert.Equal(t, models.AnomalyKindHighValue, hv.Kind)
	assert.Equal(t, models.AnomalyAlertNewState, hv.State)
	assert.Equal(t, int64(101), hv.Meta.TransactionID)
	assert.Equal(t, "10000", hv.Meta.Threshold)
	assert.Equal(t, detectedAt, hv.Meta.DetectedAt)

	hf := alerts.saved[uuid.NewSHA1(uuid.NameSpaceOID, []byte("high_frequency:8:2024-03-15 13:00:00")).String()]
	require.NotNil(t, hf)
	assert.Equal(t, models.AnomalyKindHighFrequency, hf.Kind)
	assert.Equal(t, int64(10), hf.Meta.TransactionsCount)
	assert.Equal(t, "5", hf.Meta.Threshold)
}

func TestDaemon_DetectTwiceStoresOnce(t *testing.T) {
	alerts := &fakeAlerts{saved: map[string]*models.AnomalyAlert{}}
	dmn := newDaemon(t, fixtures(), alerts)

	require.NoError(t, dmn.detect(context.Background()))
	require.NoError(t, dmn.detect(context.Background()))

	assert.Len(t, alerts.saved, 2)
}

func TestDaemon_DetectErrors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		analytics := fixtures()
		analytics.err = errors.New("connection reset")
		dmn := newDaemon(t, analytics, &fakeAlerts{saved: map[string]*models.AnomalyAlert{}})

		assert.ErrorContains(t, dmn.detect(context.Background()), "high value anomalies")
	})

	t.Run("save", func(t *testing.T) {
		dmn := newDaemon(t, fixtures(), &fakeAlerts{err: errors.New("disk full")})

		assert.ErrorContains(t, dmn.detect(context.Background()), "save alert")
	})
}
