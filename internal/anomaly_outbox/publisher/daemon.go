package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/vysogota0399/fintech_dashboard/internal/anomaly_outbox"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

type Daemon struct {
	lg           *logging.ZapLogger
	pollInterval time.Duration
	workersCount int64
	cfg          *anomaly_outbox.Config

	cancaller context.CancelFunc
	alerts    AlertsRepository
	writer    MessageWriter
}

type AlertsRepository interface {
	ReserveNew(ctx context.Context) (*models.AnomalyAlert, error)
	SetState(ctx context.Context, uuid string, newState string) error
}

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

func NewDaemon(
	lc fx.Lifecycle,
	alerts AlertsRepository,
	writer MessageWriter,
	lg *logging.ZapLogger,
	cfg *anomaly_outbox.Config,
) *Daemon {
	dmn := &Daemon{
		lg:           lg,
		pollInterval: time.Duration(cfg.PublisherPollInterval) * time.Millisecond,
		workersCount: cfg.WorkersCount,
		cfg:          cfg,
		alerts:       alerts,
		writer:       writer,
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
	ctx = dmn.lg.WithContextFields(ctx, zap.String("name", "anomaly_publisher_daemon"))

	dmn.lg.DebugCtx(ctx, "start publishing anomaly alerts", zap.Any("config", dmn.cfg))

	for i := 0; i < int(dmn.workersCount); i++ {
		wctx := dmn.lg.WithContextFields(ctx, zap.Int("worker_id", i))
		go func() {
			ticker := time.NewTicker(dmn.pollInterval)
			defer ticker.Stop()

			for {
				select {
				case <-wctx.Done():
					dmn.lg.DebugCtx(wctx, "daemon worker graceful shutdown")
					return
				case <-ticker.C:
					if err := dmn.processAlert(wctx); err != nil {
						dmn.lg.ErrorCtx(wctx, "process alert finished error", zap.Error(err))
					}
				}
			}
		}()
	}
}

func (dmn *Daemon) processAlert(ctx context.Context) error {
	a, err := dmn.alerts.ReserveNew(ctx)
	if err != nil {
		return fmt.Errorf("publisher/daemon: reserve alert error %w", err)
	}

	if a == nil {
		return nil
	}

	ctx = dmn.lg.WithContextFields(ctx, zap.String("alert_uuid", a.UUID), zap.String("kind", a.Kind))

	value, err := encode(a)
	if err == nil {
		err = dmn.writer.WriteMessages(ctx, kafka.Message{Key: []byte(a.UUID), Value: value})
	}

	if err != nil {
		if serr := dmn.alerts.SetState(ctx, a.UUID, models.AnomalyAlertFailedState); serr != nil {
			return fmt.Errorf("publisher/daemon: set failed state error %w", serr)
		}

		return fmt.Errorf("publisher/daemon: publish alert error %w", err)
	}

	if err := dmn.alerts.SetState(ctx, a.UUID, models.AnomalyAlertFinishedState); err != nil {
		return fmt.Errorf("publisher/daemon: set finished state error %w", err)
	}

	dmn.lg.InfoCtx(ctx, "anomaly alert published")
	return nil
}

// encode serializes the alert as a protobuf google.protobuf.Struct.
func encode(a *models.AnomalyAlert) ([]byte, error) {
	b, err := json.Marshal(map[string]any{
		"uuid":       a.UUID,
		"kind":       a.Kind,
		"created_at": a.CreatedAt,
		"message":    a.Meta,
	})
	if err != nil {
		return nil, fmt.Errorf("publisher/daemon: marshal alert error %w", err)
	}

	payload := &structpb.Struct{}
	if err := protojson.Unmarshal(b, payload); err != nil {
		return nil, fmt.Errorf("publisher/daemon: decode alert error %w", err)
	}

	return proto.Marshal(payload)
}
