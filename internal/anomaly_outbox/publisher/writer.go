package publisher

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/fx"

	"github.com/vysogota0399/fintech_dashboard/internal/anomaly_outbox"
	"github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
)

func NewKafkaWriter(
	lc fx.Lifecycle,
	cfg *anomaly_outbox.Config,
	globalCFG *config.Config,
	errLogger *logging.KafkaErrorLogger,
	logger *logging.KafkaLogger,
) *kafka.Writer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(globalCFG.KafkaBrokers...),
		Topic:                  cfg.KafkaAnomalyAlertsTopic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           time.Duration(cfg.KafkaBatchTimeout) * time.Millisecond,
		AllowAutoTopicCreation: true,
		Logger:                 logger,
		ErrorLogger:            errLogger,
	}

	lc.Append(
		fx.Hook{
			OnStop: func(ctx context.Context) error {
				return w.Close()
			},
		},
	)

	return w
}
