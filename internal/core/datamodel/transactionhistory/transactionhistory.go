package transactionhistory

import (
	"encoding/json"
	"time"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Record is the append-only audit row written once per card/wallet charge
// attempt. TransactionID is nullable: the gateway may reject a charge before
// issuing one. Payload carries the serialized authorize response, capture
// response and error detail, each independently nullable, so a partially
// completed charge stays legible for manual reconciliation.
type Record struct {
	ID                string          `gorm:"primaryKey"`
	TransactionID     *string         `gorm:"column:transaction_id"`
	LocationID        *int64          `gorm:"column:location_id"`
	UserID            int64           `gorm:"column:user_id;not null;index"`
	PaymentOptionID   int64           `gorm:"column:payment_option_id;not null"`
	PaymentOptionType string          `gorm:"column:payment_option_type;not null"`
	Status            Status          `gorm:"column:status;not null"`
	Payload           json.RawMessage `gorm:"column:payload;type:jsonb"`
	CreatedAt         time.Time       `gorm:"column:created_at;default:now()"`
}

func (Record) TableName() string {
	return "transaction_history"
}
