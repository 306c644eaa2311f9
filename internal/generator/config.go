package generator

import (
	"github.com/caarlos0/env"

	"github.com/vysogota0399/fintech_dashboard/internal/models"
)

type MethodWeight struct {
	Method models.PaymentMethod `json:"method"`
	Weight float64              `json:"weight"`
}

type StatusWeight struct {
	Status models.TransactionStatus `json:"status"`
	Weight float64                  `json:"weight"`
}

// AmountTier is picked when an independent uniform draw falls below
// Probability. Tiers are checked in order and the last one always matches.
type AmountTier struct {
	Probability float64 `json:"probability"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

type Config struct {
	Customers    int `json:"customers" env:"GENERATOR_CUSTOMERS" envDefault:"500"`
	Merchants    int `json:"merchants" env:"GENERATOR_MERCHANTS" envDefault:"50"`
	Transactions int `json:"transactions" env:"GENERATOR_TRANSACTIONS" envDefault:"10000"`
	// Seed 0 seeds from the clock.
	Seed        int `json:"seed" env:"GENERATOR_SEED" envDefault:"0"`
	MaxAttempts int `json:"max_attempts" env:"GENERATOR_MAX_ATTEMPTS" envDefault:"5"`
	WindowDays  int `json:"window_days" env:"GENERATOR_WINDOW_DAYS" envDefault:"90"`
	BatchSize   int `json:"batch_size" env:"GENERATOR_BATCH_SIZE" envDefault:"1000"`

	Categories    []string       `json:"categories"`
	Descriptions  []string       `json:"descriptions"`
	MethodWeights []MethodWeight `json:"method_weights"`
	StatusWeights []StatusWeight `json:"status_weights"`
	AmountTiers   []AmountTier   `json:"amount_tiers"`
}

// DefaultConfig returns the stock generation profile without reading the
// environment.
func DefaultConfig() *Config {
	return &Config{
		Customers:    500,
		Merchants:    50,
		Transactions: 10000,
		MaxAttempts:  5,
		WindowDays:   90,
		BatchSize:    1000,

		Categories: append([]string(nil), models.MerchantCategories...),
		Descriptions: []string{
			"In-store purchase",
			"Service payment",
			"Online purchase",
			"Monthly subscription",
			"Top-up",
			"Transfer",
		},
		MethodWeights: []MethodWeight{
			{Method: models.PaymentMethodPix, Weight: 0.40},
			{Method: models.PaymentMethodCreditCard, Weight: 0.35},
			{Method: models.PaymentMethodDebitCard, Weight: 0.20},
			{Method: models.PaymentMethodBoleto, Weight: 0.05},
		},
		StatusWeights: []StatusWeight{
			{Status: models.TransactionStatusApproved, Weight: 0.85},
			{Status: models.TransactionStatusDeclined, Weight: 0.10},
			{Status: models.TransactionStatusPending, Weight: 0.03},
			{Status: models.TransactionStatusRefunded, Weight: 0.02},
		},
		AmountTiers: []AmountTier{
			{Probability: 0.7, Min: 10, Max: 200},
			{Probability: 0.9, Min: 200, Max: 1000},
			{Probability: 1, Min: 1000, Max: 5000},
		},
	}
}

func MustNewConfig() *Config {
	c := DefaultConfig()
	if err := env.Parse(c); err != nil {
		panic(err)
	}

	return c
}
