package generator

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

type generatorSuite struct {
	gen          *Generator
	transactions *fakeTransactions
	customers    *fakeCustomers
	merchants    *fakeMerchants
	alerts       *fakeAlerts
}

func newGeneratorSuite(t *testing.T, cfg *Config) *generatorSuite {
	s := &generatorSuite{
		transactions: &fakeTransactions{},
		customers:    &fakeCustomers{},
		merchants:    &fakeMerchants{},
		alerts:       &fakeAlerts{},
	}

	s.gen = NewGenerator(cfg, logging.NewFromZap(zaptest.NewLogger(t)), s.transactions, s.customers, s.merchants, s.alerts)
	s.gen.now = func() time.Time { return fixedNow }

	return s
}

func smallConfig() *Config {
	cfg := DefaultConfig()
	cfg.Customers = 20
	cfg.Merchants = 5
	cfg.Transactions = 2500
	cfg.Seed = 42

	return cfg
}

func TestGenerator_Run(t *testing.T) {
	s := newGeneratorSuite(t, smallConfig())

	sum, err := s.gen.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, s.transactions.deleted)
	assert.True(t, s.alerts.deleted)
	assert.True(t, s.transactions.tx.committed)
	assert.False(t, s.transactions.tx.rolledBack)

	assert.Equal(t, 20, sum.CustomersCreated)
	assert.Equal(t, 5, sum.MerchantsCreated)
	assert.Equal(t, BurstSize+1, sum.AnomaliesInjected)
	assert.Equal(t, int64(2500+BurstSize+1), sum.TransactionsCreated)
	assert.Zero(t, sum.SkippedCustomers)
	require.NotNil(t, sum.Stats)

	// batches of 1000, 1000 and 500 rows, then the anomalies
	assert.Equal(t, 4, s.transactions.copies)

	customers := map[int64]bool{}
	for _, c := range s.customers.created {
		customers[c.ID] = true
	}
	merchants := map[int64]bool{}
	for _, m := range s.merchants.created {
		merchants[m.ID] = true
	}

	windowStart := fixedNow.AddDate(0, 0, -smallConfig().WindowDays-1)
	for _, tr := range s.transactions.rows {
		assert.True(t, customers[tr.CustomerID], "unknown customer %d", tr.CustomerID)
		assert.True(t, merchants[tr.MerchantID], "unknown merchant %d", tr.MerchantID)
		assert.True(t, tr.Amount.IsPositive())
		assert.True(t, tr.PaymentMethod.Valid())
		assert.True(t, tr.Status.Valid())
		assert.False(t, tr.TransactionDate.After(fixedNow))
		assert.True(t, tr.TransactionDate.After(windowStart))
		assert.NotEmpty(t, tr.Description)
	}
}

func TestGenerator_RunInjectsAnomalies(t *testing.T) {
	s := newGeneratorSuite(t, smallConfig())

	_, err := s.gen.Run(context.Background())
	require.NoError(t, err)

	var high []*models.Transaction
	var burst []*models.Transaction
	for _, tr := range s.transactions.rows {
		switch tr.Description {
		case HighValueDescription:
			high = append(high, tr)
		case BurstDescription:
			burst = append(burst, tr)
		}
	}

	require.Len(t, high, 1)
	assert.True(t, high[0].Amount.Equal(HighValueAmount))
	assert.Equal(t, models.PaymentMethodCreditCard, high[0].PaymentMethod)
	assert.Equal(t, models.TransactionStatusApproved, high[0].Status)
	assert.Equal(t, fixedNow.Add(-2*time.Hour), high[0].TransactionDate)

	require.Len(t, burst, BurstSize)
	windows := map[time.Time]int{}
	for i, tr := range burst {
		assert.Equal(t, burst[0].CustomerID, tr.CustomerID)
		assert.Equal(t, models.TransactionStatusApproved, tr.Status)
		assert.True(t, tr.Amount.GreaterThanOrEqual(decimal.NewFromInt(100)))
		assert.True(t, tr.Amount.LessThanOrEqual(decimal.NewFromInt(500)))
		assert.Equal(t, fixedNow.Add(-time.Hour).Add(time.Duration(i)*BurstSpacing), tr.TransactionDate)
		windows[tr.TransactionDate.Truncate(time.Hour)]++
	}

	best := 0
	for _, n := range windows {
		best = max(best, n)
	}
	assert.GreaterOrEqual(t, best, 5, "one hour window must reach the default frequency threshold")
}

func TestGenerator_RunIsDeterministicForSeed(t *testing.T) {
	a := newGeneratorSuite(t, smallConfig())
	b := newGeneratorSuite(t, smallConfig())

	_, err := a.gen.Run(context.Background())
	require.NoError(t, err)
	_, err = b.gen.Run(context.Background())
	require.NoError(t, err)

	require.Equal(t, len(a.transactions.rows), len(b.transactions.rows))
	for i := range a.transactions.rows {
		assert.Equal(t, *a.transactions.rows[i], *b.transactions.rows[i])
	}
	assert.Equal(t, a.customers.created[0].Document, b.customers.created[0].Document)
}

func TestGenerator_RunRetriesDuplicates(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxAttempts = 3
	s := newGeneratorSuite(t, cfg)

	// every second insert is a duplicate
	s.customers.accept = func(call int) bool { return call%2 == 0 }

	sum, err := s.gen.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, cfg.Customers, sum.CustomersCreated)
	assert.Zero(t, sum.SkippedCustomers)
	assert.Equal(t, 2*cfg.Customers, s.customers.calls)
}

func TestGenerator_RunCountsUnresolvedDuplicates(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxAttempts = 2
	s := newGeneratorSuite(t, cfg)

	// the first five rows never get through
	s.customers.accept = func(call int) bool { return call > 10 }

	sum, err := s.gen.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, sum.SkippedCustomers)
	assert.Equal(t, cfg.Customers-5, sum.CustomersCreated)
	assert.LessOrEqual(t, sum.CustomersCreated, cfg.Customers)
}

func TestGenerator_RunFailures(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(s *generatorSuite)
		wantErr error
	}{
		{
			name:    "no customers",
			setup:   func(s *generatorSuite) { s.customers.accept = func(int) bool { return false } },
			wantErr: ErrNoCustomers,
		},
		{
			name:    "no merchants",
			setup:   func(s *generatorSuite) { s.merchants.accept = func(int) bool { return false } },
			wantErr: ErrNoMerchants,
		},
		{
			name:    "customer insert error",
			setup:   func(s *generatorSuite) { s.customers.err = errBoom },
			wantErr: errBoom,
		},
		{
			name:    "copy error",
			setup:   func(s *generatorSuite) { s.transactions.copyErr = errBoom },
			wantErr: errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newGeneratorSuite(t, smallConfig())
			tt.setup(s)

			sum, err := s.gen.Run(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, sum)
			assert.False(t, s.transactions.tx.committed)
			assert.True(t, s.transactions.tx.rolledBack)
		})
	}
}
