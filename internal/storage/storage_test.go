package storage_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/vysogota0399/fintech_dashboard/internal/config"
	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/storage"
	"github.com/vysogota0399/fintech_dashboard/internal/storage/storagetest"
)

func TestProvision_isIdempotentAndClearsRows(t *testing.T) {
	strg := storagetest.New(t)
	ctx := context.Background()

	_, err := strg.DB.Exec(ctx, `INSERT INTO customers(name, email, phone, document) VALUES ('A', 'a@example.com', '1', '52998224725')`)
	require.NoError(t, err)

	require.NoError(t, strg.Provision(ctx))
	require.NoError(t, strg.Provision(ctx))

	for _, table := range []string{"customers", "merchants", "transactions", "anomaly_alerts"} {
		var count int64
		require.NoError(t, strg.DB.QueryRow(ctx, "SELECT COUNT(*) FROM "+table).Scan(&count))
		assert.Zero(t, count, table)
	}

	var indexes []string
	rows, err := strg.DB.Query(ctx, `SELECT indexname FROM pg_indexes WHERE tablename = 'transactions' AND indexname LIKE 'idx_%' ORDER BY indexname`)
	require.NoError(t, err)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		indexes = append(indexes, name)
	}
	rows.Close()

	assert.Equal(t, []string{
		"idx_customer_id",
		"idx_merchant_id",
		"idx_transaction_date",
		"idx_transaction_method",
		"idx_transaction_status",
	}, indexes)

	var views int64
	require.NoError(t, strg.DB.QueryRow(ctx, `SELECT COUNT(*) FROM pg_views WHERE viewname IN ('daily_summary', 'merchant_performance')`).Scan(&views))
	assert.Equal(t, int64(2), views)
}

func TestProvision_rejectsInvalidRows(t *testing.T) {
	strg := storagetest.New(t)
	ctx := context.Background()

	_, err := strg.DB.Exec(ctx, `INSERT INTO transactions(customer_id, merchant_id, amount, payment_method, status, transaction_date) VALUES (1, 1, 10, 'pix', 'approved', now())`)
	assert.Error(t, err, "foreign keys must be enforced")

	var customerID, merchantID int64
	require.NoError(t, strg.DB.QueryRow(ctx, `INSERT INTO customers(name, email, phone, document) VALUES ('A', 'a@example.com', '1', '52998224725') RETURNING id`).Scan(&customerID))
	require.NoError(t, strg.DB.QueryRow(ctx, `INSERT INTO merchants(name, category, document) VALUES ('M', 'Gym', '11222333000181') RETURNING id`).Scan(&merchantID))

	_, err = strg.DB.Exec(ctx, `INSERT INTO transactions(customer_id, merchant_id, amount, payment_method, status, transaction_date) VALUES ($1, $2, 0, 'pix', 'approved', now())`, customerID, merchantID)
	assert.Error(t, err, "amount must be positive")

	_, err = strg.DB.Exec(ctx, `INSERT INTO transactions(customer_id, merchant_id, amount, payment_method, status, transaction_date) VALUES ($1, $2, 10, 'cash', 'approved', now())`, customerID, merchantID)
	assert.Error(t, err, "payment method is a closed set")

	_, err = strg.DB.Exec(ctx, `INSERT INTO transactions(customer_id, merchant_id, amount, payment_method, status, transaction_date) VALUES ($1, $2, 10, 'pix', 'lost', now())`, customerID, merchantID)
	assert.Error(t, err, "status is a closed set")
}

func TestProvision_recoversUnversionedSchema(t *testing.T) {
	seeded := storagetest.New(t)
	ctx := context.Background()

	_, err := seeded.DB.Exec(ctx, `DROP TABLE goose_db_version`)
	require.NoError(t, err)

	lc := fxtest.NewLifecycle(t)
	strg, err := storage.NewProvisioningStorage(
		lc,
		&config.Config{DatabaseDSN: os.Getenv(storagetest.DSNEnv), DatabaseMaxConns: 2},
		logging.NewFromZap(zaptest.NewLogger(t)),
	)
	require.NoError(t, err)

	lc.RequireStart()
	defer lc.RequireStop()

	var tables int64
	require.NoError(t, strg.DB.QueryRow(ctx, `SELECT COUNT(*) FROM pg_tables WHERE tablename = 'goose_db_version'`).Scan(&tables))
	assert.Zero(t, tables, "starting must not migrate")

	require.NoError(t, strg.Provision(ctx))

	require.NoError(t, strg.DB.QueryRow(ctx, `SELECT COUNT(*) FROM pg_tables WHERE tablename IN ('customers', 'merchants', 'transactions', 'anomaly_alerts', 'goose_db_version')`).Scan(&tables))
	assert.Equal(t, int64(5), tables)
}
