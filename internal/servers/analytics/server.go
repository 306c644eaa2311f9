package analytics

import (
	"context"
	"net"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
)

type Server struct {
	handler QueryServer
	cfg     *config.Config
	srv     *grpc.Server
}

func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.cfg.AnalyticsGRPCAddress)
	if err != nil {
		return err
	}

	RegisterQueryServer(s.srv, s.handler)
	go s.srv.Serve(lis)

	return nil
}

func (s *Server) Stop() {
	s.srv.GracefulStop()
}

func NewServer(h QueryServer, lc fx.Lifecycle, cfg *config.Config, lg *logging.ZapLogger) *Server {
	srv := &Server{cfg: cfg, srv: grpc.NewServer(), handler: h}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				lg.InfoCtx(ctx, "start analytics GRPC server", zap.String("address", cfg.AnalyticsGRPCAddress))

				return srv.Start()
			},
			OnStop: func(ctx context.Context) error {
				srv.Stop()
				return nil
			},
		},
	)

	return srv
}
