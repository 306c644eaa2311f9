package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// resetStatements drop every object the migrations create, including goose's
// version table, so the following migration run starts from an empty schema.
var resetStatements = []string{
	`DROP VIEW IF EXISTS merchant_performance`,
	`DROP VIEW IF EXISTS daily_summary`,
	`DROP TABLE IF EXISTS anomaly_alerts`,
	`DROP TABLE IF EXISTS transactions`,
	`DROP TABLE IF EXISTS merchants`,
	`DROP TABLE IF EXISTS customers`,
	`DROP TABLE IF EXISTS goose_db_version`,
}

// Provision destroys the reporting schema with all of its rows and creates it
// again. Any failing statement aborts the whole step; the store must then be
// provisioned again.
func (s *Storage) Provision(ctx context.Context) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return fmt.Errorf("storage: begin reset tx error %w", err)
	}
	defer tx.Rollback(ctx)

	for _, stmt := range resetStatements {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("storage: reset statement %q error %w", stmt, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("storage: commit reset tx error %w", err)
	}

	s.lg.InfoCtx(ctx, "previous schema removed", zap.Int("statements", len(resetStatements)))

	if err := s.RunMigration(); err != nil {
		return fmt.Errorf("storage: create schema error %w", err)
	}

	s.lg.InfoCtx(ctx, "schema provisioned")

	return nil
}
