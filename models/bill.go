package models

import "github.com/shopspring/decimal"

const BillStatusOpen = "OPEN"

// BillSnapshot is the billing service's view of a bill. It is fetched
// fresh for every non-replayed charge and never persisted here.
type BillSnapshot struct {
	BillID         int64           `json:"billId"`
	PatientID      int64           `json:"patientId"`
	AppointmentID  int64           `json:"appointmentId"`
	AmountSubtotal decimal.Decimal `json:"amountSubtotal"`
	TaxPercent     decimal.Decimal `json:"taxPercent"`
	TaxAmount      decimal.Decimal `json:"taxAmount"`
	AmountTotal    decimal.Decimal `json:"amountTotal"`
	Status         string          `json:"status"`
}
