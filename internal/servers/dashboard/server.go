package dashboard

import (
	"context"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/servers/dashboard/handlers"
)

type Server struct {
	app *fiber.App
	cfg *config.Config
	lg  *logging.ZapLogger
}

// NewApp builds the fiber application with every route registered.
func NewApp(
	page *handlers.PageHandler,
	api *handlers.APIHandler,
	health *handlers.HealthHandler,
	lg *logging.ZapLogger,
) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "fintech_dashboard",
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} ${method} ${path} ${latency}\n",
		Output: zap.NewStdLog(lg.Logger().Named("http")).Writer(),
	}))

	app.Get("/", page.Dashboard)
	app.Get("/health", health.Health)
	api.Register(app.Group("/api"))

	return app
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.cfg.DashboardHTTPAddress)
	if err != nil {
		return err
	}

	go func() {
		if err := s.app.Listener(lis); err != nil {
			s.lg.ErrorCtx(context.Background(), "dashboard server stopped", zap.Error(err))
		}
	}()

	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func NewServer(app *fiber.App, lc fx.Lifecycle, cfg *config.Config, lg *logging.ZapLogger) *Server {
	srv := &Server{app: app, cfg: cfg, lg: lg}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				lg.InfoCtx(ctx, "start dashboard HTTP server", zap.String("address", cfg.DashboardHTTPAddress))

				return srv.Start()
			},
			OnStop: func(ctx context.Context) error {
				return srv.Stop(ctx)
			},
		},
	)

	return srv
}
