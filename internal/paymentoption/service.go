package paymentoption

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentoption"
	"github.com/frahmantamala/invoice-payments/internal/core/events"
)

// RepositoryAPI is the payment-option store contract. GetActive returns
// (nil, nil) when the user has no active option.
type RepositoryAPI interface {
	GetActive(userID int64) (*paymentoption.PaymentOption, error)
	GetAll(userID int64) ([]*paymentoption.PaymentOption, error)
	Delete(id int64, deletedAt, removedAt time.Time) error
	SetRemovalTimestamp(id int64, removedAt time.Time) error
}

type Notifier interface {
	PublishSync(ctx context.Context, event events.Event) error
}

type Service struct {
	repo     RepositoryAPI
	notifier Notifier
	logger   *slog.Logger
}

func NewService(repo RepositoryAPI, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
	}
}

func (s *Service) GetActive(userID int64) (*paymentoption.PaymentOption, error) {
	return s.repo.GetActive(userID)
}

// OnUserDeleted reacts to a user deletion: dormant options are soft-deleted,
// the active option only gets the removal timestamp stamped so in-flight
// invoices can still be paid through the removal period. When both writes
// completed, exactly one re-invoicing notification is emitted.
func (s *Service) OnUserDeleted(ctx context.Context, userID int64, deletedAt, removedAt time.Time) error {
	options, err := s.repo.GetAll(userID)
	if err != nil {
		return fmt.Errorf("failed to load payment options for user %d: %w", userID, err)
	}

	for _, opt := range options {
		if opt.IsActive {
			if err := s.repo.SetRemovalTimestamp(opt.ID, removedAt); err != nil {
				return fmt.Errorf("failed to stamp removal timestamp on option %d: %w", opt.ID, err)
			}
			s.logger.Info("stamped removal timestamp on active payment option",
				"user_id", userID,
				"payment_option_id", opt.ID,
				"removed_at", removedAt)
			continue
		}

		if err := s.repo.Delete(opt.ID, deletedAt, removedAt); err != nil {
			return fmt.Errorf("failed to delete payment option %d: %w", opt.ID, err)
		}
		s.logger.Info("soft-deleted inactive payment option",
			"user_id", userID,
			"payment_option_id", opt.ID)
	}

	if err := s.notifier.PublishSync(ctx, events.NewScheduleUserInvoicesEvent(userID)); err != nil {
		return fmt.Errorf("failed to emit schedule-invoices notification for user %d: %w", userID, err)
	}

	s.logger.Info("schedule-invoices notification emitted", "user_id", userID)
	return nil
}
