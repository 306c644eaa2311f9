package models

import "github.com/shopspring/decimal"

// Share is a category count with its percentage of the whole table.
type Share struct {
	Name       string  `json:"name"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// GenerationStats describes the store contents after a generation run.
type GenerationStats struct {
	Customers       int64           `json:"customers"`
	Merchants       int64           `json:"merchants"`
	Transactions    int64           `json:"transactions"`
	ApprovedVolume  decimal.Decimal `json:"approved_volume"`
	ByPaymentMethod []Share         `json:"by_payment_method"`
	ByStatus        []Share         `json:"by_status"`
}
