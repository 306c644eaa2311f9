package main

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	main_config "github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
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
			storage.NewProvisioningStorage,
		),
		fx.Supply(main_config.MustNewConfig()),
		fx.Invoke(provision),
	)
}

// provision resets the schema once the storage is up and stops the app.
func provision(lc fx.Lifecycle, sh fx.Shutdowner, strg *storage.Storage, lg *logging.ZapLogger) {
	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					ctx := lg.WithContextFields(context.Background(), zap.String("name", "setup_database"))

					if err := strg.Provision(ctx); err != nil {
						lg.ErrorCtx(ctx, "database setup failed", zap.Error(err))
						_ = sh.Shutdown(fx.ExitCode(1))
						return
					}

					lg.InfoCtx(ctx, "database is ready")
					_ = sh.Shutdown(fx.ExitCode(0))
				}()

				return nil
			},
		},
	)
}
