package generator

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/jackc/pgx/v5"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

var errBoom = errors.New("boom")

// fakeTx records commit and rollback; every other pgx.Tx method panics.
type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeTransactions struct {
	tx       *fakeTx
	rows     []*models.Transaction
	copyErr  error
	copies   int
	deleted  bool
	statsErr error
}

func (f *fakeTransactions) BeginTX(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

func (f *fakeTransactions) CopyTX(ctx context.Context, tx pgx.Tx, in []*models.Transaction) (int64, error) {
	f.copies++
	if f.copyErr != nil {
		return 0, f.copyErr
	}

	f.rows = append(f.rows, in...)
	return int64(len(in)), nil
}

func (f *fakeTransactions) DeleteAllTX(ctx context.Context, tx pgx.Tx) error {
	f.deleted = true
	return nil
}

type fakeAlerts struct {
	deleted bool
}

func (f *fakeAlerts) DeleteAllTX(ctx context.Context, tx pgx.Tx) error {
	f.deleted = true
	return nil
}

func (f *fakeTransactions) Stats(ctx context.Context) (*models.GenerationStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}

	return &models.GenerationStats{Transactions: int64(len(f.rows))}, nil
}

// fakeCustomers accepts a row when accept returns true for the call number.
type fakeCustomers struct {
	calls   int
	seq     atomic.Int64
	accept  func(call int) bool
	created []*models.Customer
	err     error
}

func (f *fakeCustomers) CreateTX(ctx context.Context, tx pgx.Tx, in *models.Customer) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}

	if f.accept != nil && !f.accept(f.calls) {
		return false, nil
	}

	in.ID = f.seq.Add(1)
	f.created = append(f.created, in)
	return true, nil
}

func (f *fakeCustomers) DeleteAllTX(ctx context.Context, tx pgx.Tx) error { return nil }

type fakeMerchants struct {
	calls   int
	seq     atomic.Int64
	accept  func(call int) bool
	created []*models.Merchant
}

func (f *fakeMerchants) CreateTX(ctx context.Context, tx pgx.Tx, in *models.Merchant) (bool, error) {
	f.calls++
	if f.accept != nil && !f.accept(f.calls) {
		return false, nil
	}

	in.ID = 1000 + f.seq.Add(1)
	f.created = append(f.created, in)
	return true, nil
}

func (f *fakeMerchants) DeleteAllTX(ctx context.Context, tx pgx.Tx) error { return nil }
