package detector

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/vysogota0399/fintech_dashboard/internal/anomaly_outbox"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

// Daemon periodically runs both anomaly detectors and stores one outbox alert
// per finding. Alert UUIDs are derived from the finding, so a finding seen on
// every poll is stored once.
type Daemon struct {
	lg           *logging.ZapLogger
	pollInterval time.Duration
	cfg          *anomaly_outbox.Config
	now          func() time.Time

	cancaller context.CancelFunc
	analytics AnalyticsRepository
	alerts    AlertsRepository
}

type AnalyticsRepository interface {
	HighValueAnomalies(ctx context.Context, threshold float64) ([]models.HighValueAnomaly, error)
	HighFrequencyAnomalies(ctx context.Context, threshold int) ([]models.HighFrequencyAnomaly, error)
}

type AlertsRepository interface {
	Save(ctx context.Context, in *models.AnomalyAlert) (bool, error)
}

func NewDaemon(
	lc fx.Lifecycle,
	analytics AnalyticsRepository,
	alerts AlertsRepository,
	lg *logging.ZapLogger,
	cfg *anomaly_outbox.Config,
) *Daemon {
	dmn := &Daemon{
		lg:           lg,
		pollInterval: time.Duration(cfg.DetectorPollInterval) * time.Millisecond,
		cfg:          cfg,
		now:          time.Now,
		analytics:    analytics,
		alerts:       alerts,
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				dmn.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				dmn.cancaller()
				return nil
			},
		},
	)

	return dmn
}

func (dmn *Daemon) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	dmn.cancaller = cancel
	ctx = dmn.lg.WithContextFields(ctx, zap.String("name", "anomaly_detector_daemon"))

	dmn.lg.DebugCtx(ctx, "start detecting anomalies", zap.Any("config", dmn.cfg))

	go func() {
		ticker := time.NewTicker(dmn.pollInterval)
		defer ticker.Stop()

		for {
			if err := dmn.detect(ctx); err != nil {
				dmn.lg.ErrorCtx(ctx, "detect anomalies finished error", zap.Error(err))
			}

			select {
			case <-ctx.Done():
				dmn.lg.DebugCtx(ctx, "daemon graceful shutdown")
				return
			case <-ticker.C:
			}
		}
	}()
}

// detect returns after both detectors ran; it reports how many new alerts were
// stored through the log.
func (dmn *Daemon) detect(ctx context.Context) error {
	detectedAt := dmn.now()

	highValue, err := dmn.analytics.HighValueAnomalies(ctx, dmn.cfg.HighValueThreshold)
	if err != nil {
		return fmt.Errorf("detector/daemon: high value anomalies error %w", err)
	}

	highFrequency, err := dmn.analytics.HighFrequencyAnomalies(ctx, dmn.cfg.HighFrequencyThreshold)
	if err != nil {
		return fmt.Errorf("detector/daemon: high frequency anomalies error %w", err)
	}

	alerts := make([]*models.AnomalyAlert, 0, len(highValue)+len(highFrequency))
	for _, a := range highValue {
		alerts = append(alerts, dmn.highValueAlert(a, detectedAt))
	}
	for _, a := range highFrequency {
		alerts = append(alerts, dmn.highFrequencyAlert(a, detectedAt))
	}

	created := 0
	for _, alert := range alerts {
		ok, err := dmn.alerts.Save(ctx, alert)
		if err != nil {
			return fmt.Errorf("detector/daemon: save alert %s error %w", alert.UUID, err)
		}

		if ok {
			created++
		}
	}

	dmn.lg.DebugCtx(
		ctx,
		"anomalies detected",
		zap.Int("high_value", len(highValue)),
		zap.Int("high_frequency", len(highFrequency)),
		zap.Int("new_alerts", created),
	)

	return nil
}

func alertUUID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

func (dmn *Daemon) highValueAlert(a models.HighValueAnomaly, detectedAt time.Time) *models.AnomalyAlert {
	date := a.TransactionDate

	return &models.AnomalyAlert{
		UUID:  alertUUID(fmt.Sprintf("%s:%d", models.AnomalyKindHighValue, a.TransactionID)),
		Kind:  models.AnomalyKindHighValue,
		State: models.AnomalyAlertNewState,
		Meta: &models.AnomalyAlertMeta{
			TransactionID:   a.TransactionID,
			TransactionDate: &date,
			MerchantName:    a.MerchantName,
			Amount:          a.Amount,
			PaymentMethod:   string(a.PaymentMethod),
			Status:          string(a.Status),
			CustomerID:      a.CustomerID,
			CustomerName:    a.CustomerName,
			Threshold:       strconv.FormatFloat(dmn.cfg.HighValueThreshold, 'f', -1, 64),
			DetectedAt:      detectedAt,
		},
	}
}

func (dmn *Daemon) highFrequencyAlert(a models.HighFrequencyAnomaly, detectedAt time.Time) *models.AnomalyAlert {
	window := a.HourWindow

	return &models.AnomalyAlert{
		UUID: alertUUID(fmt.Sprintf(
			"%s:%d:%s",
			models.AnomalyKindHighFrequency,
			a.CustomerID,
			window.Format(time.DateTime),
		)),
		Kind:  models.AnomalyKindHighFrequency,
		State: models.AnomalyAlertNewState,
		Meta: &models.AnomalyAlertMeta{
			CustomerID:        a.CustomerID,
			CustomerName:      a.CustomerName,
			HourWindow:        &window,
			TransactionsCount: a.TransactionsCount,
			Threshold:         strconv.Itoa(dmn.cfg.HighFrequencyThreshold),
			DetectedAt:        detectedAt,
		},
	}
}
