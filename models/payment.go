package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment statuses. A payment is created as SUCCEEDED and flipped to
// FAILED only when the billing service rejects the mark-paid call.
const (
	PaymentStatusSucceeded = "SUCCEEDED"
	PaymentStatusFailed    = "FAILED"
)

type Payment struct {
	PaymentID int64           `gorm:"primaryKey" json:"paymentId"`
	BillID    int64           `gorm:"index;not null" json:"billId"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"amount"`
	Method    string          `gorm:"type:varchar(20);not null" json:"method"`
	Reference string          `gorm:"type:varchar(255)" json:"reference"`
	PaidAt    time.Time       `json:"paidAt"`
	Status    string          `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"createdAt"`
}

// WithStatus returns a copy of the payment with the given status. Status
// changes go through here so the only legal mutation path is explicit.
func (p Payment) WithStatus(status string) Payment {
	p.Status = status
	return p
}
