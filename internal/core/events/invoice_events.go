package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/execution"
)

const (
	EventTypeInvoiceReceived      = "invoice.received"
	EventTypeInvoiceStateChanged  = "invoice.state_changed"
	EventTypeScheduleUserInvoices = "invoice.schedule_user"
)

// InvoiceReceivedEvent is the inbound invoice-processing order.
type InvoiceReceivedEvent struct {
	BaseEvent
	RequestID   string          `json:"request_id"`
	InvoiceID   string          `json:"invoice_id"`
	InvoiceType string          `json:"invoice_type"`
	UserID      int64           `json:"user_id"`
	LocationID  int64           `json:"location_id"`
	Month       string          `json:"month"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

func NewInvoiceReceivedEvent(requestID, invoiceID, invoiceType string, userID, locationID int64, month string, amount decimal.Decimal, currency string) *InvoiceReceivedEvent {
	return &InvoiceReceivedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeInvoiceReceived,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"request_id":   requestID,
				"invoice_id":   invoiceID,
				"invoice_type": invoiceType,
				"user_id":      userID,
				"location_id":  locationID,
				"month":        month,
				"amount":       amount.String(),
				"currency":     currency,
			},
		},
		RequestID:   requestID,
		InvoiceID:   invoiceID,
		InvoiceType: invoiceType,
		UserID:      userID,
		LocationID:  locationID,
		Month:       month,
		Amount:      amount,
		Currency:    currency,
	}
}

// InvoiceStateChangedEvent is the single terminal notification emitted per
// processed invoice.
type InvoiceStateChangedEvent struct {
	BaseEvent
	InvoiceID     string                 `json:"invoice_id"`
	InvoiceType   string                 `json:"invoice_type"`
	InvoiceState  execution.InvoiceState `json:"invoice_state"`
	TransactionID *string                `json:"transaction_id"`
}

func NewInvoiceStateChangedEvent(invoiceID, invoiceType string, state execution.InvoiceState, transactionID *string) *InvoiceStateChangedEvent {
	data := map[string]interface{}{
		"invoice_id":    invoiceID,
		"invoice_type":  invoiceType,
		"invoice_state": string(state),
	}
	if transactionID != nil {
		data["transaction_id"] = *transactionID
	}
	return &InvoiceStateChangedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeInvoiceStateChanged,
			Timestamp: time.Now(),
			Data:      data,
		},
		InvoiceID:     invoiceID,
		InvoiceType:   invoiceType,
		InvoiceState:  state,
		TransactionID: transactionID,
	}
}

// ScheduleUserInvoicesEvent asks the invoicing system to re-invoice a user,
// emitted once per handled user deletion.
type ScheduleUserInvoicesEvent struct {
	BaseEvent
	UserID int64 `json:"user_id"`
}

func NewScheduleUserInvoicesEvent(userID int64) *ScheduleUserInvoicesEvent {
	return &ScheduleUserInvoicesEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeScheduleUserInvoices,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
			},
		},
		UserID: userID,
	}
}
