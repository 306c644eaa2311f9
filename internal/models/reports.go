package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rows returned by the analytics queries. Volumes and averages are rounded to
// two places by the database; rates and percentages are in the 0..100 range.

type DailySummary struct {
	Date              time.Time       `json:"date"`
	TotalTransactions int64           `json:"total_transactions"`
	Approved          int64           `json:"approved"`
	Declined          int64           `json:"declined"`
	Pending           int64           `json:"pending"`
	Refunded          int64           `json:"refunded"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	AvgAmount         decimal.Decimal `json:"avg_amount"`
	ApprovalRate      float64         `json:"approval_rate"`
}

type PaymentMethodStats struct {
	PaymentMethod     PaymentMethod   `json:"payment_method"`
	TotalTransactions int64           `json:"total_transactions"`
	Approved          int64           `json:"approved"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	AvgAmount         decimal.Decimal `json:"avg_amount"`
	ApprovalRate      float64         `json:"approval_rate"`
}

// TopMerchant aggregates approved transactions only.
type TopMerchant struct {
	MerchantID        int64           `json:"merchant_id"`
	Name              string          `json:"name"`
	Category          string          `json:"category"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	AvgTicket         decimal.Decimal `json:"avg_ticket"`
	ApprovalRate      float64         `json:"approval_rate"`
}

// MerchantPerformance mirrors the merchant_performance view. Merchants without
// transactions have null volume, ticket and rate.
type MerchantPerformance struct {
	MerchantID        int64               `json:"merchant_id"`
	Name              string              `json:"name"`
	Category          string              `json:"category"`
	TotalTransactions int64               `json:"total_transactions"`
	TotalVolume       decimal.NullDecimal `json:"total_volume"`
	AvgTicket         decimal.NullDecimal `json:"avg_ticket"`
	ApprovedCount     int64               `json:"approved_count"`
	ApprovalRate      *float64            `json:"approval_rate"`
}

// CategoryPerformance sums every status into TotalVolume, unlike TopMerchant.
// ApprovedVolume carries the approved-only figure.
type CategoryPerformance struct {
	Category          string          `json:"category"`
	TotalTransactions int64           `json:"total_transactions"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	ApprovedVolume    decimal.Decimal `json:"approved_volume"`
	AvgTicket         decimal.Decimal `json:"avg_ticket"`
}

type HourlyDistribution struct {
	Hour              int             `json:"hour"`
	TotalTransactions int64           `json:"total_transactions"`
	AvgAmount         decimal.Decimal `json:"avg_amount"`
}

type StatusDistribution struct {
	Status     TransactionStatus `json:"status"`
	Count      int64             `json:"count"`
	Percentage float64           `json:"percentage"`
}

type HighValueAnomaly struct {
	TransactionID   int64             `json:"transaction_id"`
	TransactionDate time.Time         `json:"transaction_date"`
	CustomerID      int64             `json:"customer_id"`
	CustomerName    string            `json:"customer_name"`
	MerchantName    string            `json:"merchant_name"`
	Amount          decimal.Decimal   `json:"amount"`
	PaymentMethod   PaymentMethod     `json:"payment_method"`
	Status          TransactionStatus `json:"status"`
}

// HighFrequencyAnomaly is one customer inside one hour window (calendar date
// plus hour, HourWindow is truncated to the hour).
type HighFrequencyAnomaly struct {
	CustomerID        int64     `json:"customer_id"`
	CustomerName      string    `json:"customer_name"`
	HourWindow        time.Time `json:"hour_window"`
	TransactionsCount int64     `json:"transactions_count"`
}

type KPIs struct {
	TotalTransactions int64           `json:"total_transactions"`
	TotalVolume       decimal.Decimal `json:"total_volume"`
	AvgTicket         decimal.Decimal `json:"avg_ticket"`
	ApprovalRate      float64         `json:"approval_rate"`
	TotalCustomers    int64           `json:"total_customers"`
	TotalMerchants    int64           `json:"total_merchants"`
}

type TransactionListing struct {
	ID              int64             `json:"id"`
	TransactionDate time.Time         `json:"transaction_date"`
	CustomerName    string            `json:"customer_name"`
	MerchantName    string            `json:"merchant_name"`
	Category        string            `json:"category"`
	Amount          decimal.Decimal   `json:"amount"`
	PaymentMethod   PaymentMethod     `json:"payment_method"`
	Status          TransactionStatus `json:"status"`
	Description     string            `json:"description"`
}

// TransactionFilter holds the optional listing predicates. Zero values mean
// "no filter" for every field except Limit.
type TransactionFilter struct {
	StartDate     *time.Time        `json:"start_date,omitempty"`
	EndDate       *time.Time        `json:"end_date,omitempty"`
	PaymentMethod PaymentMethod     `json:"payment_method,omitempty"`
	Status        TransactionStatus `json:"status,omitempty"`
	Limit         int               `json:"limit"`
}
