package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AnomalyAlertNewState        = "new"
	AnomalyAlertProcessingState = "processing"
	AnomalyAlertFinishedState   = "finished"
	AnomalyAlertFailedState     = "failed"
)

const (
	AnomalyKindHighValue     = "high_value"
	AnomalyKindHighFrequency = "high_frequency"
)

type AnomalyAlert struct {
	UUID      string
	Kind      string
	State     string
	Meta      *AnomalyAlertMeta
	CreatedAt time.Time
}

// AnomalyAlertMeta is stored as the JSON message of an outbox row. High value
// alerts fill the transaction fields, high frequency alerts the window fields.
type AnomalyAlertMeta struct {
	TransactionID     int64           `json:"transaction_id,omitempty"`
	TransactionDate   *time.Time      `json:"transaction_date,omitempty"`
	MerchantName      string          `json:"merchant_name,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	PaymentMethod     string          `json:"payment_method,omitempty"`
	Status            string          `json:"status,omitempty"`
	CustomerID        int64           `json:"customer_id"`
	CustomerName      string          `json:"customer_name"`
	HourWindow        *time.Time      `json:"hour_window,omitempty"`
	TransactionsCount int64           `json:"transactions_count,omitempty"`
	Threshold         string          `json:"threshold"`
	DetectedAt        time.Time       `json:"detected_at"`
}

func (m *AnomalyAlertMeta) Scan(value interface{}) error {
	if value == nil {
		*m = AnomalyAlertMeta{}
		return nil
	}

	var b []byte
	switch v := value.(type) {
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("models/anomaly_alert: meta invalid format error, expected json")
	}

	return json.Unmarshal(b, m)
}

func (m AnomalyAlertMeta) Value() (driver.Value, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("models/anomaly_alert: meta json marshal error %w", err)
	}

	return string(b), nil
}
