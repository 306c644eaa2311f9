package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

var (
	ErrNoCustomers = errors.New("generator: no customers were created")
	ErrNoMerchants = errors.New("generator: no merchants were created")
)

// Injected anomalies.
const (
	HighValueDescription = "High value purchase"
	BurstDescription     = "Suspicious purchase - multiple transactions"
	BurstSize            = 10
	BurstSpacing         = 2 * time.Minute
)

var HighValueAmount = decimal.NewFromInt(25000)

type Generator struct {
	cfg          *Config
	lg           *logging.ZapLogger
	transactions TransactionsRepository
	customers    CustomersRepository
	merchants    MerchantsRepository
	alerts       AlertsRepository
	now          func() time.Time
}

type TransactionsRepository interface {
	BeginTX(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
	CopyTX(ctx context.Context, tx pgx.Tx, in []*models.Transaction) (int64, error)
	DeleteAllTX(ctx context.Context, tx pgx.Tx) error
	Stats(ctx context.Context) (*models.GenerationStats, error)
}

type CustomersRepository interface {
	CreateTX(ctx context.Context, tx pgx.Tx, in *models.Customer) (bool, error)
	DeleteAllTX(ctx context.Context, tx pgx.Tx) error
}

type MerchantsRepository interface {
	CreateTX(ctx context.Context, tx pgx.Tx, in *models.Merchant) (bool, error)
	DeleteAllTX(ctx context.Context, tx pgx.Tx) error
}

// AlertsRepository clears the anomaly outbox, whose alerts point at the
// transactions being replaced.
type AlertsRepository interface {
	DeleteAllTX(ctx context.Context, tx pgx.Tx) error
}

func NewGenerator(
	cfg *Config,
	lg *logging.ZapLogger,
	transactions TransactionsRepository,
	customers CustomersRepository,
	merchants MerchantsRepository,
	alerts AlertsRepository,
) *Generator {
	return &Generator{
		cfg:          cfg,
		lg:           lg,
		transactions: transactions,
		customers:    customers,
		merchants:    merchants,
		alerts:       alerts,
		now:          time.Now,
	}
}

// Summary reports one generation run. Skipped counts are rows that stayed
// duplicates after MaxAttempts tries.
type Summary struct {
	RequestedCustomers    int
	RequestedMerchants    int
	RequestedTransactions int

	CustomersCreated    int
	MerchantsCreated    int
	TransactionsCreated int64
	AnomaliesInjected   int

	SkippedCustomers int
	SkippedMerchants int

	Stats *models.GenerationStats
}

// Run replaces the stored data with a fresh synthetic data set. Everything
// happens in one database transaction: on any error nothing is committed and
// the previous rows stay in place.
func (g *Generator) Run(ctx context.Context) (*Summary, error) {
	now := g.now()
	seed := uint64(g.cfg.Seed)
	if seed == 0 {
		seed = uint64(now.UnixNano())
	}

	rnd := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	smp := newSampler(rnd, g.cfg)
	ids := newIdentities(seed, rnd, smp)

	ctx = g.lg.WithContextFields(ctx, zap.String("name", "generator"), zap.Uint64("seed", seed))
	g.lg.InfoCtx(ctx, "generation started", zap.Any("config", g.cfg))

	sum := &Summary{
		RequestedCustomers:    g.cfg.Customers,
		RequestedMerchants:    g.cfg.Merchants,
		RequestedTransactions: g.cfg.Transactions,
	}

	tx, err := g.transactions.BeginTX(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("generator: begin tx error %w", err)
	}
	defer tx.Rollback(ctx)

	if err := g.clear(ctx, tx); err != nil {
		return nil, err
	}

	customerIDs, err := g.createCustomers(ctx, tx, ids, sum)
	if err != nil {
		return nil, err
	}

	merchantIDs, err := g.createMerchants(ctx, tx, ids, sum)
	if err != nil {
		return nil, err
	}

	if err := g.createTransactions(ctx, tx, smp, now, customerIDs, merchantIDs, sum); err != nil {
		return nil, err
	}

	anomalies := g.anomalies(smp, now, customerIDs, merchantIDs)
	n, err := g.transactions.CopyTX(ctx, tx, anomalies)
	if err != nil {
		return nil, fmt.Errorf("generator: inject anomalies error %w", err)
	}
	sum.AnomaliesInjected = int(n)
	sum.TransactionsCreated += n

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("generator: commit tx error %w", err)
	}

	g.lg.InfoCtx(
		ctx,
		"generation finished",
		zap.Int("customers", sum.CustomersCreated),
		zap.Int("merchants", sum.MerchantsCreated),
		zap.Int64("transactions", sum.TransactionsCreated),
	)

	stats, err := g.transactions.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("generator: collect stats error %w", err)
	}
	sum.Stats = stats

	return sum, nil
}

func (g *Generator) clear(ctx context.Context, tx pgx.Tx) error {
	if err := g.alerts.DeleteAllTX(ctx, tx); err != nil {
		return fmt.Errorf("generator: clear error %w", err)
	}

	if err := g.transactions.DeleteAllTX(ctx, tx); err != nil {
		return fmt.Errorf("generator: clear error %w", err)
	}

	if err := g.merchants.DeleteAllTX(ctx, tx); err != nil {
		return fmt.Errorf("generator: clear error %w", err)
	}

	if err := g.customers.DeleteAllTX(ctx, tx); err != nil {
		return fmt.Errorf("generator: clear error %w", err)
	}

	g.lg.DebugCtx(ctx, "previous data removed")

	return nil
}

func (g *Generator) createCustomers(ctx context.Context, tx pgx.Tx, ids *identities, sum *Summary) ([]int64, error) {
	res := make([]int64, 0, g.cfg.Customers)

	for i := 0; i < g.cfg.Customers; i++ {
		created := false
		for attempt := 0; attempt < g.cfg.MaxAttempts && !created; attempt++ {
			c := ids.customer()

			ok, err := g.customers.CreateTX(ctx, tx, c)
			if err != nil {
				return nil, fmt.Errorf("generator: create customer error %w", err)
			}

			if ok {
				res = append(res, c.ID)
				created = true
			}
		}

		if !created {
			sum.SkippedCustomers++
		}
	}

	sum.CustomersCreated = len(res)
	if sum.SkippedCustomers > 0 {
		g.lg.WarnCtx(ctx, "customers skipped after duplicate retries", zap.Int("skipped", sum.SkippedCustomers))
	}

	if len(res) == 0 {
		return nil, ErrNoCustomers
	}

	g.lg.InfoCtx(ctx, "customers created", zap.Int("count", len(res)))

	return res, nil
}

func (g *Generator) createMerchants(ctx context.Context, tx pgx.Tx, ids *identities, sum *Summary) ([]int64, error) {
	res := make([]int64, 0, g.cfg.Merchants)

	for i := 0; i < g.cfg.Merchants; i++ {
		created := false
		for attempt := 0; attempt < g.cfg.MaxAttempts && !created; attempt++ {
			m := ids.merchant()

			ok, err := g.merchants.CreateTX(ctx, tx, m)
			if err != nil {
				return nil, fmt.Errorf("generator: create merchant error %w", err)
			}

			if ok {
				res = append(res, m.ID)
				created = true
			}
		}

		if !created {
			sum.SkippedMerchants++
		}
	}

	sum.MerchantsCreated = len(res)
	if sum.SkippedMerchants > 0 {
		g.lg.WarnCtx(ctx, "merchants skipped after duplicate retries", zap.Int("skipped", sum.SkippedMerchants))
	}

	if len(res) == 0 {
		return nil, ErrNoMerchants
	}

	g.lg.InfoCtx(ctx, "merchants created", zap.Int("count", len(res)))

	return res, nil
}

func (g *Generator) createTransactions(
	ctx context.Context,
	tx pgx.Tx,
	smp *sampler,
	now time.Time,
	customerIDs, merchantIDs []int64,
	sum *Summary,
) error {
	batchSize := g.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 1000
	}

	batch := make([]*models.Transaction, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		n, err := g.transactions.CopyTX(ctx, tx, batch)
		if err != nil {
			return fmt.Errorf("generator: copy transactions error %w", err)
		}
		sum.TransactionsCreated += n
		batch = batch[:0]

		g.lg.InfoCtx(
			ctx,
			"transactions progress",
			zap.Int64("created", sum.TransactionsCreated),
			zap.Int("requested", g.cfg.Transactions),
		)

		return nil
	}

	for i := 0; i < g.cfg.Transactions; i++ {
		batch = append(batch, &models.Transaction{
			CustomerID:      smp.id(customerIDs),
			MerchantID:      smp.id(merchantIDs),
			Amount:          smp.amount(),
			PaymentMethod:   smp.paymentMethod(),
			Status:          smp.status(),
			TransactionDate: smp.eventTime(now),
			Description:     smp.oneOf(g.cfg.Descriptions),
		})

		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}

	return flush()
}

// anomalies returns one high value purchase two hours ago and a burst of
// BurstSize approved purchases by one customer starting an hour ago.
func (g *Generator) anomalies(smp *sampler, now time.Time, customerIDs, merchantIDs []int64) []*models.Transaction {
	res := make([]*models.Transaction, 0, BurstSize+1)

	res = append(res, &models.Transaction{
		CustomerID:      smp.id(customerIDs),
		MerchantID:      smp.id(merchantIDs),
		Amount:          HighValueAmount,
		PaymentMethod:   models.PaymentMethodCreditCard,
		Status:          models.TransactionStatusApproved,
		TransactionDate: now.Add(-2 * time.Hour),
		Description:     HighValueDescription,
	})

	customerID := smp.id(customerIDs)
	start := now.Add(-time.Hour)
	for i := 0; i < BurstSize; i++ {
		res = append(res, &models.Transaction{
			CustomerID:      customerID,
			MerchantID:      smp.id(merchantIDs),
			Amount:          smp.uniformAmount(100, 500),
			PaymentMethod:   models.PaymentMethods[smp.rnd.IntN(len(models.PaymentMethods))],
			Status:          models.TransactionStatusApproved,
			TransactionDate: start.Add(time.Duration(i) * BurstSpacing),
			Description:     BurstDescription,
		})
	}

	return res
}
