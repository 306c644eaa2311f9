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

type CustomersRepository struct {
	strg CustomersStorage
	lg   *logging.ZapLogger
}

type CustomersStorage interface {
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

func NewCustomersRepository(strg *storage.Storage, lg *logging.ZapLogger) *CustomersRepository {
	return &CustomersRepository{strg: strg.DB, lg: lg}
}

// CreateTX inserts the customer and fills its ID. It returns false without an
// error when the email or document is already taken.
func (rep *CustomersRepository) CreateTX(ctx context.Context, tx pgx.Tx, in *models.Customer) (bool, error) {
	row := tx.QueryRow(
		ctx,
		`
			INSERT INTO customers(name, email, phone, document)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT DO NOTHING
			RETURNING id, created_at
		`,
		in.Name, in.Email, in.Phone, in.Document,
	)

	if err := row.Scan(&in.ID, &in.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}

		return false, fmt.Errorf("customers_repository: create customer error %w", err)
	}

	return true, nil
}

func (rep *CustomersRepository) DeleteAllTX(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `DELETE FROM customers`); err != nil {
		return fmt.Errorf("customers_repository: delete customers error %w", err)
	}

	return nil
}
