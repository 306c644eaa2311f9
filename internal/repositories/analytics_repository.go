package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/vysogota0399/fintech_dashboard/internal/logging"
	"github.com/vysogota0399/fintech_dashboard/internal/models"
	"github.com/vysogota0399/fintech_dashboard/internal/storage"
)

// Anomaly listings are capped.
const AnomaliesLimit = 50

// AnalyticsRepository runs the read-only dashboard aggregations. Every call
// hits the database, nothing is cached.
type AnalyticsRepository struct {
	strg AnalyticsStorage
	lg   *logging.ZapLogger
	now  func() time.Time
}

type AnalyticsStorage interface {
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

func NewAnalyticsRepository(strg *storage.Storage, lg *logging.ZapLogger) *AnalyticsRepository {
	return &AnalyticsRepository{strg: strg.DB, lg: lg, now: time.Now}
}

// DailySummary returns one row per calendar day, starting at midnight `days`
// days before today, newest day first. TotalVolume counts approved amounts only.
func (rep *AnalyticsRepository) DailySummary(ctx context.Context, days int) ([]models.DailySummary, error) {
	now := rep.now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -days)

	rows, err := rep.strg.Query(
		ctx,
		`
			SELECT
				transaction_date::date AS date,
				COUNT(*),
				SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END),
				SUM(CASE WHEN status = 'declined' THEN 1 ELSE 0 END),
				SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END),
				SUM(CASE WHEN status = 'refunded' THEN 1 ELSE 0 END),
				ROUND(SUM(CASE WHEN status = 'approved' THEN amount ELSE 0 END), 2),
				ROUND(AVG(amount), 2),
				COALESCE(ROUND(100.0 * SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0), 2), 0)::float8
			FROM transactions
			WHERE transaction_date >= $1
			GROUP BY transaction_date::date
			ORDER BY date DESC
		`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch daily summary error %w", err)
	}
	defer rows.Close()

	res := []models.DailySummary{}
	for rows.Next() {
		var (
			r           models.DailySummary
			volume, avg pgtype.Numeric
		)
		if err := rows.Scan(
			&r.Date,
			&r.TotalTransactions,
			&r.Approved,
			&r.Declined,
			&r.Pending,
			&r.Refunded,
			&volume,
			&avg,
			&r.ApprovalRate,
		); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan daily summary error %w", err)
		}
		r.TotalVolume = fromNumeric(volume)
		r.AvgAmount = fromNumeric(avg)

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate daily summary error %w", err)
	}

	return res, nil
}

// PaymentMethodStats orders methods by transaction count. TotalVolume counts
// approved amounts only.
func (rep *AnalyticsRepository) PaymentMethodStats(ctx context.Context) ([]models.PaymentMethodStats, error) {
	rows, err := rep.strg.Query(
		ctx,
		`
			SELECT
				payment_method,
				COUNT(*),
				SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END),
				ROUND(SUM(CASE WHEN status = 'approved' THEN amount ELSE 0 END), 2),
				ROUND(AVG(amount), 2),
				COALESCE(ROUND(100.0 * SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0), 2), 0)::float8
			FROM transactions
			GROUP BY payment_method
			ORDER BY COUNT(*) DESC, payment_method
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch payment method stats error %w", err)
	}
	defer rows.Close()

	res := []models.PaymentMethodStats{}
	for rows.Next() {
		var (
			r           models.PaymentMethodStats
			volume, avg pgtype.Numeric
		)
		if err := rows.Scan(&r.PaymentMethod, &r.TotalTransactions, &r.Approved, &volume, &avg, &r.ApprovalRate); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan payment method stats error %w", err)
		}
		r.TotalVolume = fromNumeric(volume)
		r.AvgAmount = fromNumeric(avg)

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate payment method stats error %w", err)
	}

	return res, nil
}

// TopMerchants ranks merchants by approved volume. Only approved transactions
// are aggregated, so ApprovalRate is always 100 for returned rows.
func (rep *AnalyticsRepository) TopMerchants(ctx context.Context, limit int) ([]models.TopMerchant, error) {
	rows, err := rep.strg.Query(
		ctx,
		`
			SELECT
				m.id,
				m.name,
				m.category,
				COUNT(t.id),
				ROUND(SUM(t.amount), 2) AS total_volume,
				ROUND(AVG(t.amount), 2),
				COALESCE(ROUND(100.0 * SUM(CASE WHEN t.status = 'approved' THEN 1 ELSE 0 END) / NULLIF(COUNT(t.id), 0), 2), 0)::float8
			FROM merchants m
			JOIN transactions t ON t.merchant_id = m.id
			WHERE t.status = 'approved'
			GROUP BY m.id, m.name, m.category
			ORDER BY total_volume DESC, m.id
			LIMIT $1
		`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch top merchants error %w", err)
	}
	defer rows.Close()

	res := []models.TopMerchant{}
	for rows.Next() {
		var (
			r           models.TopMerchant
			volume, avg pgtype.Numeric
		)
		if err := rows.Scan(&r.MerchantID, &r.Name, &r.Category, &r.TotalTransactions, &volume, &avg, &r.ApprovalRate); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan top merchant error %w", err)
		}
		r.TotalVolume = fromNumeric(volume)
		r.AvgTicket = fromNumeric(avg)

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate top merchants error %w", err)
	}

	return res, nil
}

// MerchantPerformance reads the merchant_performance view, merchants without
// transactions included.
func (rep *AnalyticsRepository) MerchantPerformance(ctx context.Context) ([]models.MerchantPerformance, error) {
	rows, err := rep.strg.Query(
		ctx,
		`
			SELECT
				id,
				name,
				category,
				total_transactions,
				ROUND(total_volume, 2),
				avg_ticket,
				COALESCE(approved_count, 0),
				approval_rate::float8
			FROM merchant_performance
			ORDER BY total_volume DESC NULLS LAST, id
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch merchant performance error %w", err)
	}
	defer rows.Close()

	res := []models.MerchantPerformance{}
	for rows.Next() {
		var (
			r           models.MerchantPerformance
			volume, avg pgtype.Numeric
		)
		if err := rows.Scan(
			&r.MerchantID,
			&r.Name,
			&r.Category,
			&r.TotalTransactions,
			&volume,
			&avg,
			&r.ApprovedCount,
			&r.ApprovalRate,
		); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan merchant performance error %w", err)
		}
		r.TotalVolume = fromNullNumeric(volume)
		r.AvgTicket = fromNullNumeric(avg)

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate merchant performance error %w", err)
	}

	return res, nil
}

// CategoryPerformance aggregates every status into total volume, unlike
// TopMerchants.
func (rep *AnalyticsRepository) CategoryPerformance(ctx context.Context) ([]models.CategoryPerformance, error) {
	rows, err := rep.strg.Query(
		ctx,
		`
			SELECT
				m.category,
				COUNT(t.id),
				ROUND(SUM(t.amount), 2) AS total_volume,
				ROUND(COALESCE(SUM(CASE WHEN t.status = 'approved' THEN t.amount ELSE 0 END), 0), 2),
				ROUND(AVG(t.amount), 2)
			FROM transactions t
			JOIN merchants m ON m.id = t.merchant_id
			GROUP BY m.category
			ORDER BY total_volume DESC, m.category
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch category performance error %w", err)
	}
	defer rows.Close()

	res := []models.CategoryPerformance{}
	for rows.Next() {
		var (
			r                     models.CategoryPerformance
			volume, approved, avg pgtype.Numeric
		)
		if err := rows.Scan(&r.Category, &r.TotalTransactions, &volume, &approved, &avg); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan category performance error %w", err)
		}
		r.TotalVolume = fromNumeric(volume)
		r.ApprovedVolume = fromNumeric(approved)
		r.AvgTicket = fromNumeric(avg)

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate category performance error %w", err)
	}

	return res, nil
}

// HourlyDistribution returns only the hours of day that have transactions,
// ordered by hour.
func (rep *AnalyticsRepository) HourlyDistribution(ctx context.Context) ([]models.HourlyDistribution, error) {
	rows, err := rep.strg.Query(
		ctx,
		`
			SELECT
				EXTRACT(HOUR FROM transaction_date)::int AS hour,
				COUNT(*),
				ROUND(AVG(amount), 2)
			FROM transactions
			GROUP BY hour
			ORDER BY hour
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch hourly distribution error %w", err)
	}
	defer rows.Close()

	res := []models.HourlyDistribution{}
	for rows.Next() {
		var (
			r   models.HourlyDistribution
			avg pgtype.Numeric
		)
		if err := rows.Scan(&r.Hour, &r.TotalTransactions, &avg); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan hourly distribution error %w", err)
		}
		r.AvgAmount = fromNumeric(avg)

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate hourly distribution error %w", err)
	}

	return res, nil
}

func (rep *AnalyticsRepository) StatusDistribution(ctx context.Context) ([]models.StatusDistribution, error) {
	rows, err := rep.strg.Query(
		ctx,
		`
			SELECT
				status,
				COUNT(*),
				COALESCE(ROUND(100.0 * COUNT(*) / NULLIF((SELECT COUNT(*) FROM transactions), 0), 2), 0)::float8
			FROM transactions
			GROUP BY status
			ORDER BY COUNT(*) DESC, status
		`,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch status distribution error %w", err)
	}
	defer rows.Close()

	res := []models.StatusDistribution{}
	for rows.Next() {
		var r models.StatusDistribution
		if err := rows.Scan(&r.Status, &r.Count, &r.Percentage); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan status distribution error %w", err)
		}

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate status distribution error %w", err)
	}

	return res, nil
}

// HighValueAnomalies lists transactions with amount strictly above threshold,
// largest first.
func (rep *AnalyticsRepository) HighValueAnomalies(ctx context.Context, threshold float64) ([]models.HighValueAnomaly, error) {
	rows, err := rep.strg.Query(
		ctx,
		`
			SELECT
				t.id,
				t.transaction_date,
				c.id,
				c.name,
				m.name,
				t.amount,
				t.payment_method,
				t.status
			FROM transactions t
			JOIN customers c ON c.id = t.customer_id
			JOIN merchants m ON m.id = t.merchant_id
			WHERE t.amount > $1
			ORDER BY t.amount DESC, t.id
			LIMIT $2
		`,
		threshold, AnomaliesLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch high value anomalies error %w", err)
	}
	defer rows.Close()

	res := []models.HighValueAnomaly{}
	for rows.Next() {
		var (
			r      models.HighValueAnomaly
			amount pgtype.Numeric
		)
		if err := rows.Scan(
			&r.TransactionID,
			&r.TransactionDate,
			&r.CustomerID,
			&r.CustomerName,
			&r.MerchantName,
			&amount,
			&r.PaymentMethod,
			&r.Status,
		); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan high value anomaly error %w", err)
		}
		r.Amount = fromNumeric(amount)

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate high value anomalies error %w", err)
	}

	return res, nil
}

// HighFrequencyAnomalies lists (customer, hour window) pairs with at least
// threshold transactions. A window is a calendar date plus hour of day.
func (rep *AnalyticsRepository) HighFrequencyAnomalies(ctx context.Context, threshold int) ([]models.HighFrequencyAnomaly, error) {
	rows, err := rep.strg.Query(
		ctx,
		`
			WITH customer_hourly AS (
				SELECT
					customer_id,
					date_trunc('hour', transaction_date) AS hour_window,
					COUNT(*) AS transactions_count
				FROM transactions
				GROUP BY customer_id, date_trunc('hour', transaction_date)
				HAVING COUNT(*) >= $1
			)
			SELECT ch.customer_id, c.name, ch.hour_window, ch.transactions_count
			FROM customer_hourly ch
			JOIN customers c ON c.id = ch.customer_id
			ORDER BY ch.transactions_count DESC, ch.hour_window DESC, ch.customer_id
			LIMIT $2
		`,
		threshold, AnomaliesLimit,
	)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch high frequency anomalies error %w", err)
	}
	defer rows.Close()

	res := []models.HighFrequencyAnomaly{}
	for rows.Next() {
		var r models.HighFrequencyAnomaly
		if err := rows.Scan(&r.CustomerID, &r.CustomerName, &r.HourWindow, &r.TransactionsCount); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan high frequency anomaly error %w", err)
		}

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate high frequency anomalies error %w", err)
	}

	return res, nil
}

// KPIs always returns one row. On an empty store every figure is zero.
func (rep *AnalyticsRepository) KPIs(ctx context.Context) (*models.KPIs, error) {
	var (
		k           models.KPIs
		volume, avg pgtype.Numeric
	)

	row := rep.strg.QueryRow(
		ctx,
		`
			SELECT
				COUNT(*),
				COALESCE(ROUND(SUM(CASE WHEN status = 'approved' THEN amount ELSE 0 END), 2), 0),
				COALESCE(ROUND(AVG(amount), 2), 0),
				COALESCE(ROUND(100.0 * SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END) / NULLIF(COUNT(*), 0), 2), 0)::float8,
				(SELECT COUNT(*) FROM customers),
				(SELECT COUNT(*) FROM merchants)
			FROM transactions
		`,
	)
	if err := row.Scan(&k.TotalTransactions, &volume, &avg, &k.ApprovalRate, &k.TotalCustomers, &k.TotalMerchants); err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch kpis error %w", err)
	}
	k.TotalVolume = fromNumeric(volume)
	k.AvgTicket = fromNumeric(avg)

	return &k, nil
}

// Transactions lists transactions matching the filter, newest first. An
// invalid filter yields ErrInvalidFilter without touching the database.
func (rep *AnalyticsRepository) Transactions(ctx context.Context, f models.TransactionFilter) ([]models.TransactionListing, error) {
	preds, err := buildTransactionPredicates(f)
	if err != nil {
		return nil, err
	}

	where, args := preds.where()
	query := fmt.Sprintf(
		`
			SELECT
				t.id,
				t.transaction_date,
				c.name,
				m.name,
				m.category,
				t.amount,
				t.payment_method,
				t.status,
				COALESCE(t.description, '')
			FROM transactions t
			JOIN customers c ON c.id = t.customer_id
			JOIN merchants m ON m.id = t.merchant_id
			%s
			ORDER BY t.transaction_date DESC, t.id DESC
			LIMIT %s
		`,
		where, preds.limitPlaceholder(),
	)

	rows, err := rep.strg.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("analytics_repository: fetch transactions error %w", err)
	}
	defer rows.Close()

	res := []models.TransactionListing{}
	for rows.Next() {
		var (
			r      models.TransactionListing
			amount pgtype.Numeric
		)
		if err := rows.Scan(
			&r.ID,
			&r.TransactionDate,
			&r.CustomerName,
			&r.MerchantName,
			&r.Category,
			&amount,
			&r.PaymentMethod,
			&r.Status,
			&r.Description,
		); err != nil {
			return nil, fmt.Errorf("analytics_repository: scan transaction error %w", err)
		}
		r.Amount = fromNumeric(amount)

		res = append(res, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("analytics_repository: iterate transactions error %w", err)
	}

	return res, nil
}
