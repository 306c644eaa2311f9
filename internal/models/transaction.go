package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodPix        PaymentMethod = "pix"
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodDebitCard  PaymentMethod = "debit_card"
	PaymentMethodBoleto     PaymentMethod = "boleto"
)

var PaymentMethods = []PaymentMethod{
	PaymentMethodPix,
	PaymentMethodCreditCard,
	PaymentMethodDebitCard,
	PaymentMethodBoleto,
}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}

	return false
}

type TransactionStatus string

const (
	TransactionStatusApproved TransactionStatus = "approved"
	TransactionStatusDeclined TransactionStatus = "declined"
	TransactionStatusPending  TransactionStatus = "pending"
	TransactionStatusRefunded TransactionStatus = "refunded"
)

var TransactionStatuses = []TransactionStatus{
	TransactionStatusApproved,
	TransactionStatusDeclined,
	TransactionStatusPending,
	TransactionStatusRefunded,
}

func (s TransactionStatus) Valid() bool {
	for _, st := range TransactionStatuses {
		if st == s {
			return true
		}
	}

	return false
}

// Transaction is a generated payment fact. TransactionDate is the business
// event time, CreatedAt is when the row was written.
type Transaction struct {
	ID              int64
	CustomerID      int64
	MerchantID      int64
	Amount          decimal.Decimal
	PaymentMethod   PaymentMethod
	Status          TransactionStatus
	TransactionDate time.Time
	Description     string
	CreatedAt       time.Time
}
