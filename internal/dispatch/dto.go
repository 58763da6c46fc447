package dispatch

import (
	"github.com/shopspring/decimal"

	errors "github.com/frahmantamala/invoice-payments/internal"
	"github.com/frahmantamala/invoice-payments/internal/core/common/validation"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
)

// ProcessInvoiceRequest is the inbound invoice-processing message.
type ProcessInvoiceRequest struct {
	RequestID   string          `json:"request_id"`
	InvoiceID   string          `json:"invoice_id"`
	InvoiceType string          `json:"invoice_type"`
	UserID      int64           `json:"user_id"`
	LocationID  int64           `json:"location_id"`
	Month       string          `json:"month"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

func (r *ProcessInvoiceRequest) Validate() error {
	validator := validation.NewValidator()

	validator.Field("request_id", r.RequestID).Required().MaxLength(64)
	validator.Field("invoice_id", r.InvoiceID).Required()
	validator.Field("invoice_type", r.InvoiceType).Required()
	validator.Field("user_id", r.UserID).Required()
	validator.Field("month", r.Month).Required().MaxLength(7)
	validator.Field("amount", r.Amount).PositiveAmount(errors.ErrCodeInvalidAmount)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

func (r *ProcessInvoiceRequest) ToProcessRequest() *invoice.ProcessRequest {
	return &invoice.ProcessRequest{
		InvoiceID:   r.InvoiceID,
		InvoiceType: r.InvoiceType,
		UserID:      r.UserID,
		LocationID:  r.LocationID,
		Month:       r.Month,
		Amount:      r.Amount,
		Currency:    r.Currency,
	}
}
