package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-payments/internal/core/events"
)

type EventHandler struct {
	service ServiceAPI
	logger  *slog.Logger
}

func NewEventHandler(service ServiceAPI, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) HandleInvoiceReceived(ctx context.Context, event events.Event) error {
	received, ok := event.(*events.InvoiceReceivedEvent)
	if !ok {
		h.logger.Error("invalid event type for invoice received handler", "event_type", event.EventType())
		return fmt.Errorf("expected InvoiceReceivedEvent, got %T", event)
	}

	h.logger.Info("handling invoice received event",
		"request_id", received.RequestID,
		"invoice_id", received.InvoiceID,
		"user_id", received.UserID,
		"event_id", received.EventID())

	req := &invoice.ProcessRequest{
		InvoiceID:   received.InvoiceID,
		InvoiceType: received.InvoiceType,
		UserID:      received.UserID,
		LocationID:  received.LocationID,
		Month:       received.Month,
		Amount:      received.Amount,
		Currency:    received.Currency,
	}

	if err := h.service.ProcessInvoice(ctx, received.RequestID, req); err != nil {
		h.logger.Error("failed to process invoice from event",
			"error", err,
			"request_id", received.RequestID,
			"invoice_id", received.InvoiceID,
			"event_id", received.EventID())
		return fmt.Errorf("invoice processing failed for %s: %w", received.InvoiceID, err)
	}

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeInvoiceReceived, h.HandleInvoiceReceived)

	h.logger.Info("invoice dispatch event handlers registered",
		"handlers", []string{events.EventTypeInvoiceReceived})
}
