package paymentoption

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/invoice-payments/internal/core/events"
)

type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) HandleUserDeleted(ctx context.Context, event events.Event) error {
	deleted, ok := event.(*events.UserDeletedEvent)
	if !ok {
		h.logger.Error("invalid event type for user deleted handler", "event_type", event.EventType())
		return fmt.Errorf("expected UserDeletedEvent, got %T", event)
	}

	h.logger.Info("handling user deleted event",
		"user_id", deleted.UserID,
		"event_id", deleted.EventID())

	if err := h.service.OnUserDeleted(ctx, deleted.UserID, deleted.DeletedAt, deleted.RemovedAt); err != nil {
		h.logger.Error("failed to handle user deletion",
			"error", err,
			"user_id", deleted.UserID,
			"event_id", deleted.EventID())
		return fmt.Errorf("payment option cleanup failed for user %d: %w", deleted.UserID, err)
	}

	return nil
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeUserDeleted, h.HandleUserDeleted)

	h.logger.Info("payment option event handlers registered",
		"handlers", []string{events.EventTypeUserDeleted})
}
