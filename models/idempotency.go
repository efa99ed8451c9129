package models

import "time"

// IdempotencyRecord stores the serialized response for a client-supplied
// idempotency key. Rows are write-once: once present they are only read,
// and replays return ResponseBody/StatusCode verbatim.
type IdempotencyRecord struct {
	Key          string    `gorm:"primaryKey;type:varchar(255)" json:"key"`
	RequestHash  string    `gorm:"type:varchar(64);not null" json:"requestHash"`
	ResponseBody string    `gorm:"type:text;not null" json:"responseBody"`
	StatusCode   int       `gorm:"not null" json:"statusCode"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (IdempotencyRecord) TableName() string {
	return "idempotency_keys"
}
