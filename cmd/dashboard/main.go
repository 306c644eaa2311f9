package main

import (
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	main_config "github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/repositories"
	"github.com/vysogota0399/fintech_dashboard/internal/servers/analytics"
	"github.com/vysogota0399/fintech_dashboard/internal/servers/dashboard"
	"github.com/vysogota0399/fintech_dashboard/internal/servers/dashboard/handlers"
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
			storage.NewStorage,

			// HTTP dashboard
			dashboard.NewServer,
			dashboard.NewApp,
			handlers.NewPageHandler,
			handlers.NewAPIHandler,
			handlers.NewHealthHandler,
			fx.Annotate(repositories.NewAnalyticsRepository, fx.As(new(handlers.AnalyticsRepository))),
			func(s *storage.Storage) handlers.Pinger { return s },

			// GRPC query service
			analytics.NewServer,
			fx.Annotate(analytics.NewHandler, fx.As(new(analytics.QueryServer))),
			fx.Annotate(repositories.NewAnalyticsRepository, fx.As(new(analytics.AnalyticsRepository))),
		),
		fx.Supply(main_config.MustNewConfig()),
		fx.Invoke(
			startDashboardServer,
			startAnalyticsServer,
		),
	)
}

func startDashboardServer(*dashboard.Server) {}
func startAnalyticsServer(*analytics.Server) {}
