package main

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	main_config "github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/generator"
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
			storage.NewStorage,

			generator.NewGenerator,
			fx.Annotate(repositories.NewTransactionsRepository, fx.As(new(generator.TransactionsRepository))),
			fx.Annotate(repositories.NewCustomersRepository, fx.As(new(generator.CustomersRepository))),
			fx.Annotate(repositories.NewMerchantsRepository, fx.As(new(generator.MerchantsRepository))),
			fx.Annotate(repositories.NewAnomalyAlertsRepository, fx.As(new(generator.AlertsRepository))),
		),
		fx.Supply(main_config.MustNewConfig(), generator.MustNewConfig()),
		fx.Invoke(generate),
	)
}

// generate runs the generator once, prints the summary and stops the app.
func generate(lc fx.Lifecycle, sh fx.Shutdowner, gen *generator.Generator, lg *logging.ZapLogger) {
	lc.Append(
		fx.Hook{
			OnStart: func(context.Context) error {
				go func() {
					ctx := lg.WithContextFields(context.Background(), zap.String("name", "generate_data"))

					summary, err := gen.Run(ctx)
					if err != nil {
						lg.ErrorCtx(ctx, "data generation failed", zap.Error(err))
						_ = sh.Shutdown(fx.ExitCode(1))
						return
					}

					if err := summary.Print(os.Stdout); err != nil {
						lg.ErrorCtx(ctx, "print summary failed", zap.Error(err))
						_ = sh.Shutdown(fx.ExitCode(1))
						return
					}

					_ = sh.Shutdown(fx.ExitCode(0))
				}()

				return nil
			},
		},
	)
}
