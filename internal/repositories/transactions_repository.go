package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"go.uber.org/zap"

	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
	"github.com/vysogota0399/fintech_dashboard/internal/storage"
)

type TransactionsRepository struct {
	strg TransactionsStorage
	lg   *logging.ZapLogger
}

type TransactionsStorage interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
	Exec(context.Context, string, ...any) (pgconn.CommandTag, error)
}

func NewTransactionsRepository(strg *storage.Storage, lg *logging.ZapLogger) *TransactionsRepository {
	return &TransactionsRepository{strg: strg.DB, lg: lg}
}

func (rep *TransactionsRepository) BeginTX(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	return rep.strg.BeginTx(ctx, opts)
}

var transactionColumns = []string{
	"customer_id",
	"merchant_id",
	"amount",
	"payment_method",
	"status",
	"transaction_date",
	"description",
}

// CopyTX bulk loads the transactions with the COPY protocol and returns the
// number of written rows. Generated ids are not read back.
func (rep *TransactionsRepository) CopyTX(ctx context.Context, tx pgx.Tx, in []*models.Transaction) (int64, error) {
	rows := make([][]any, 0, len(in))
	for _, t := range in {
		rows = append(rows, []any{
			t.CustomerID,
			t.MerchantID,
			toNumeric(t.Amount),
			string(t.PaymentMethod),
			string(t.Status),
			t.TransactionDate,
			t.Description,
		})
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"transactions"}, transactionColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, fmt.Errorf("transactions_repository: copy transactions error %w", err)
	}

	rep.lg.DebugCtx(ctx, "transactions copied", zap.Int64("rows", n))

	return n, nil
}

func (rep *TransactionsRepository) DeleteAllTX(ctx context.Context, tx pgx.Tx) error {
	if _, err := tx.Exec(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("transactions_repository: delete transactions error %w", err)
	}

	return nil
}

// Stats summarises what the store holds after a generation run.
func (rep *TransactionsRepository) Stats(ctx context.Context) (*models.GenerationStats, error) {
	stats := &models.GenerationStats{}

	var approved pgtype.Numeric
	row := rep.strg.QueryRow(
		ctx,
		`
			SELECT
				(SELECT COUNT(*) FROM customers),
				(SELECT COUNT(*) FROM merchants),
				(SELECT COUNT(*) FROM transactions),
				(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE status = 'approved')
		`,
	)
	if err := row.Scan(&stats.Customers, &stats.Merchants, &stats.Transactions, &approved); err != nil {
		return nil, fmt.Errorf("transactions_repository: fetch totals error %w", err)
	}
	stats.ApprovedVolume = fromNumeric(approved)

	var err error
	if stats.ByPaymentMethod, err = rep.shares(ctx, "payment_method"); err != nil {
		return nil, err
	}

	if stats.ByStatus, err = rep.shares(ctx, "status"); err != nil {
		return nil, err
	}

	return stats, nil
}

// shares counts rows per value of column. column is never user input.
func (rep *TransactionsRepository) shares(ctx context.Context, column string) ([]models.Share, error) {
	rows, err := rep.strg.Query(
		ctx,
		fmt.Sprintf(
			`
				SELECT
					%[1]s,
					COUNT(*),
					COALESCE(ROUND(100.0 * COUNT(*) / NULLIF((SELECT COUNT(*) FROM transactions), 0), 2), 0)::float8
				FROM transactions
				GROUP BY %[1]s
				ORDER BY COUNT(*) DESC, %[1]s
			`,
			column,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("transactions_repository: fetch %s shares error %w", column, err)
	}
	defer rows.Close()

	shares := []models.Share{}
	for rows.Next() {
		var s models.Share
		if err := rows.Scan(&s.Name, &s.Count, &s.Percentage); err != nil {
			return nil, fmt.Errorf("transactions_repository: scan %s share error %w", column, err)
		}

		shares = append(shares, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("transactions_repository: iterate %s shares error %w", column, err)
	}

	return shares, nil
}
