package storage

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
)

type Storage struct {
	DB *pgxpool.Pool
	lg *logging.ZapLogger
}

func NewStorage(lc fx.Lifecycle, cfg *config.Config, lg *logging.ZapLogger) (*Storage, error) {
	strg, err := Open(context.Background(), cfg, lg)
	if err != nil {
		return nil, err
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := strg.DB.Ping(ctx); err != nil {
					return fmt.Errorf("storage: ping error %w", err)
				}

				return strg.RunMigration()
			},
			OnStop: func(ctx context.Context) error {
				strg.DB.Close()
				return nil
			},
		},
	)

	return strg, nil
}

// NewProvisioningStorage pings on start but never migrates: Provision is the
// only step that touches the schema, so a store with tables but no goose
// version table can still be reset.
func NewProvisioningStorage(lc fx.Lifecycle, cfg *config.Config, lg *logging.ZapLogger) (*Storage, error) {
	strg, err := Open(context.Background(), cfg, lg)
	if err != nil {
		return nil, err
	}

	lc.Append(
		fx.Hook{
			OnStart: func(ctx context.Context) error {
				if err := strg.DB.Ping(ctx); err != nil {
					return fmt.Errorf("storage: ping error %w", err)
				}

				return nil
			},
			OnStop: func(ctx context.Context) error {
				strg.DB.Close()
				return nil
			},
		},
	)

	return strg, nil
}

// Open creates the pool without lifecycle hooks. Callers own Close.
func Open(ctx context.Context, cfg *config.Config, lg *logging.ZapLogger) (*Storage, error) {
	dbcfg, err := pgxpool.ParseConfig(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("storage: parse dsn error %w", err)
	}

	if cfg.DatabaseMaxConns > 0 {
		dbcfg.MaxConns = int32(cfg.DatabaseMaxConns)
	}

	dbpool, err := pgxpool.NewWithConfig(ctx, dbcfg)
	if err != nil {
		return nil, fmt.Errorf("storage: create pool error %w", err)
	}

	return &Storage{DB: dbpool, lg: lg}, nil
}

func (s *Storage) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

func (s *Storage) Close() {
	s.DB.Close()
}

//go:embed migrations/*.sql
var embedMigrations embed.FS

func (s *Storage) RunMigration() error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{lg: s.lg})

	if err := goose.SetDialect(string(goose.DialectPostgres)); err != nil {
		return err
	}

	return goose.Up(stdlib.OpenDBFromPool(s.DB), "migrations")
}

type gooseLogger struct {
	lg *logging.ZapLogger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.lg.DebugCtx(
		l.lg.WithContextFields(context.Background(), zap.String("name", "goose")),
		fmt.Sprintf(format, v...),
	)
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.lg.ErrorCtx(
		l.lg.WithContextFields(context.Background(), zap.String("name", "goose")),
		fmt.Sprintf(format, v...),
	)
}
