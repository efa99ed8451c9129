package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types published after a terminal charge outcome.
const (
	EventPaymentSucceeded = "payment_succeeded"
	EventPaymentFailed    = "payment_failed"
)

type PaymentEvent struct {
	EventID   string          `json:"event_id"`
	Type      string          `json:"type"`
	PaymentID int64           `json:"payment_id"`
	BillID    int64           `json:"bill_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	Timestamp time.Time       `json:"timestamp"`
}
