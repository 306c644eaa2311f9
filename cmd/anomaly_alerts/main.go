package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/vysogota0399/fintech_dashboard/internal/anomaly_outbox"
	"github.com/vysogota0399/fintech_dashboard/internal/anomaly_outbox/detector"
	"github.com/vysogota0399/fintech_dashboard/internal/anomaly_outbox/publisher"
	main_config "github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/repositories"
	"github.com/vysogota0399/fintech_dashboard/internal/storage"
)

func main() {
	fx.New(CreateApp()).Run()
}

func CreateApp() fx.Option {
	return fx.Options(
		fx.WithLogger(func(lg *logging.ZapLogger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: lg.Logger()}
		}),
		fx.Provide(
			logging.NewZapLogger,
			logging.NewKafkaErrorLogger,
			logging.NewKafkaLogger,
			storage.NewStorage,

			detector.NewDaemon,
			fx.Annotate(repositories.NewAnalyticsRepository, fx.As(new(detector.AnalyticsRepository))),
			fx.Annotate(repositories.NewAnomalyAlertsRepository, fx.As(new(detector.AlertsRepository))),

			publisher.NewDaemon,
			fx.Annotate(publisher.NewKafkaWriter, fx.As(new(publisher.MessageWriter))),
			fx.Annotate(repositories.NewAnomalyAlertsRepository, fx.As(new(publisher.AlertsRepository))),
		),
		fx.Supply(main_config.MustNewConfig(), anomaly_outbox.MustNewConfig()),
		fx.Invoke(startDetector, startPublisher),
	)
}

func startDetector(*detector.Daemon)   {}
func startPublisher(*publisher.Daemon) {}
