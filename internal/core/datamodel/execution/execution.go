package execution

import (
	"encoding/json"
	"time"
)

// InvoiceState is the terminal status reported back to the invoicing system.
type InvoiceState string

const (
	StateUnprocessed   InvoiceState = "UNPROCESSED"
	StatePaymentIssued InvoiceState = "PAYMENT_ISSUED"
	StatePaymentFailed InvoiceState = "PAYMENT_FAILED"
)

// Record is the audit row written for every payment execution attempt,
// including attempts that terminate before any provider call. Append-only.
type Record struct {
	ID              string       `gorm:"primaryKey"`
	RequestID       string       `gorm:"column:request_id;not null;index"`
	InvoiceID       string       `gorm:"column:invoice_id;not null;index"`
	InvoiceType     string       `gorm:"column:invoice_type;not null"`
	InvoiceState    InvoiceState `gorm:"column:invoice_state;not null"`
	TransactionID   *string      `gorm:"column:transaction_id"`
	Message         string       `gorm:"column:message"`
	PaymentOptionID *int64       `gorm:"column:payment_option_id"`
	CreatedAt       time.Time    `gorm:"column:created_at;default:now()"`
}

func (Record) TableName() string {
	return "execution_records"
}

// ProviderResponse stores the raw direct-debit provider exchange for audit,
// with signing credentials redacted before persisting.
type ProviderResponse struct {
	ID        string          `gorm:"primaryKey"`
	RequestID string          `gorm:"column:request_id;not null;index"`
	Provider  string          `gorm:"column:provider;not null"`
	Payload   json.RawMessage `gorm:"column:payload;type:jsonb"`
	CreatedAt time.Time       `gorm:"column:created_at;default:now()"`
}

func (ProviderResponse) TableName() string {
	return "provider_responses"
}
