package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
	"github.com/vysogota0399/fintech_dashboard/internal/storage"
)

// AnomalyAlertsRepository is the outbox of detected anomalies waiting to be
// published.
type AnomalyAlertsRepository struct {
	strg AnomalyAlertsStorage
	lg   *logging.ZapLogger
}

type AnomalyAlertsStorage interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
}

func NewAnomalyAlertsRepository(strg *storage.Storage, lg *logging.ZapLogger) *AnomalyAlertsRepository {
	return &AnomalyAlertsRepository{strg: strg.DB, lg: lg}
}

// Save stores the alert unless one with the same uuid exists. It reports
// whether a row was written.
func (rep *AnomalyAlertsRepository) Save(ctx context.Context, in *models.AnomalyAlert) (bool, error) {
	tag, err := rep.strg.Exec(
		ctx,
		`
			INSERT INTO anomaly_alerts(uuid, kind, state, message)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING
		`,
		in.UUID, in.Kind, in.State, in.Meta,
	)
	if err != nil {
		return false, fmt.Errorf("anomaly_alerts_repository: save alert error %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

// ReserveNew moves the oldest new alert to processing and returns it. Rows
// locked by other workers are skipped. It returns nil when nothing is waiting.
func (rep *AnomalyAlertsRepository) ReserveNew(ctx context.Context) (*models.AnomalyAlert, error) {
	tx, err := rep.strg.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("anomaly_alerts_repository: create tx error %w", err)
	}
	defer tx.Rollback(ctx)

	a := &models.AnomalyAlert{Meta: &models.AnomalyAlertMeta{}}
	row := tx.QueryRow(
		ctx,
		`
			SELECT uuid::text, kind, message, created_at
			FROM anomaly_alerts
			WHERE state = $1
			ORDER BY created_at ASC
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		`,
		models.AnomalyAlertNewState,
	)

	if err := row.Scan(&a.UUID, &a.Kind, a.Meta, &a.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("anomaly_alerts_repository: scan alert error %w", err)
	}

	if err := rep.setStateTX(ctx, tx, a.UUID, models.AnomalyAlertProcessingState); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("anomaly_alerts_repository: commit tx error %w", err)
	}
	a.State = models.AnomalyAlertProcessingState

	return a, nil
}

func (rep *AnomalyAlertsRepository) DeleteAllTX(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `DELETE FROM anomaly_alerts`); err != nil {
		return fmt.Errorf("anomaly_alerts_repository: delete alerts error %w", err)
	}

	return nil
}

func (rep *AnomalyAlertsRepository) SetState(ctx context.Context, uuid string, newState string) error {
	tx, err := rep.strg.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("anomaly_alerts_repository: create tx error %w", err)
	}
	defer tx.Rollback(ctx)

	if err := rep.setStateTX(ctx, tx, uuid, newState); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (rep *AnomalyAlertsRepository) setStateTX(ctx context.Context, tx pgx.Tx, uuid string, newState string) error {
	if _, err := tx.Exec(
		ctx,
		`
			UPDATE anomaly_alerts
			SET state = $1
			WHERE uuid = $2
		`,
		newState, uuid,
	); err != nil {
		return fmt.Errorf("anomaly_alerts_repository: set state error %w", err)
	}

	return nil
}
