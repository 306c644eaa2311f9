package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
	"github.com/vysogota0399/fintech_dashboard/internal/storage"
)

type MerchantsRepository struct {
	strg MerchantsStorage
	lg   *logging.ZapLogger
}

type MerchantsStorage interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

func NewMerchantsRepository(strg *storage.Storage, lg *logging.ZapLogger) *MerchantsRepository {
	return &MerchantsRepository{strg: strg.DB, lg: lg}
}

// CreateTX inserts the merchant and fills its ID. A taken document yields
// false and no error.
func (rep *MerchantsRepository) CreateTX(ctx context.Context, tx pgx.Tx, in *models.Merchant) (bool, error) {
	row := tx.QueryRow(
		ctx,
		`
			INSERT INTO merchants(name, category, document)
			VALUES ($1, $2, $3)
			ON CONFLICT DO NOTHING
			RETURNING id, created_at
		`,
		in.Name, in.Category, in.Document,
	)

	if err := row.Scan(&in.ID, &in.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("merchants_repository: create merchant error %w", err)
	}

	return true, nil
}

func (rep *MerchantsRepository) DeleteAllTX(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `DELETE FROM merchants`); err != nil {
		return fmt.Errorf("merchants_repository: delete merchants error %w", err)
	}

	return nil
}
