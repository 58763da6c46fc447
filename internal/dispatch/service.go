package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	errors "github.com/frahmantamala/invoice-payments/internal"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/execution"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentoption"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/transactionhistory"
	"github.com/frahmantamala/invoice-payments/internal/core/events"
)

type OptionStore interface {
	GetActive(userID int64) (*paymentoption.PaymentOption, error)
}

type DirectDebitFlow interface {
	Execute(ctx context.Context, requestID string, req *invoice.ProcessRequest) *execution.Record
}

type CardFlow interface {
	Charge(ctx context.Context, requestID string, req *invoice.ProcessRequest, opt *paymentoption.PaymentOption) (*transactionhistory.Record, error)
}

type Notifier interface {
	PublishSync(ctx context.Context, event events.Event) error
}

// Service is the invoice dispatcher: it resolves the user's active payment
// option, routes to the matching execution flow and emits exactly one
// invoice-state notification per invocation. A returned error means a fatal
// per-request fault; in that case no notification was emitted.
type Service struct {
	options     OptionStore
	directDebit DirectDebitFlow
	cards       CardFlow
	notifier    Notifier
	logger      *slog.Logger
}

func NewService(options OptionStore, directDebit DirectDebitFlow, cards CardFlow, notifier Notifier, logger *slog.Logger) *Service {
	return &Service{
		options:     options,
		directDebit: directDebit,
		cards:       cards,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *Service) ProcessInvoice(ctx context.Context, requestID string, req *invoice.ProcessRequest) error {
	opt, err := s.options.GetActive(req.UserID)
	if err != nil {
		return fmt.Errorf("failed to look up active payment option for user %d: %w", req.UserID, err)
	}

	if opt == nil {
		// no payment method is an expected business state, not a fault
		s.logger.Info("no active payment option, invoice left unprocessed",
			"request_id", requestID,
			"invoice_id", req.InvoiceID,
			"user_id", req.UserID)
		return s.notify(ctx, req, execution.StateUnprocessed, nil)
	}

	switch {
	case opt.Type == paymentoption.TypeDirectDebit:
		rec := s.directDebit.Execute(ctx, requestID, req)
		return s.notify(ctx, req, rec.InvoiceState, rec.TransactionID)

	case opt.Type.UsesCardGateway():
		rec, err := s.cards.Charge(ctx, requestID, req, opt)
		if err != nil {
			return err
		}
		state := execution.StatePaymentFailed
		if rec.Status == transactionhistory.StatusSuccess {
			state = execution.StatePaymentIssued
		}
		return s.notify(ctx, req, state, rec.TransactionID)

	default:
		return errors.NewConfigurationError(
			fmt.Sprintf("payment option %d has unknown type %q", opt.ID, opt.Type),
			errors.ErrCodeUnknownOptionType)
	}
}

func (s *Service) notify(ctx context.Context, req *invoice.ProcessRequest, state execution.InvoiceState, transactionID *string) error {
	event := events.NewInvoiceStateChangedEvent(req.InvoiceID, req.InvoiceType, state, transactionID)
	if err := s.notifier.PublishSync(ctx, event); err != nil {
		return fmt.Errorf("failed to emit invoice state notification for invoice %s: %w", req.InvoiceID, err)
	}

	s.logger.Info("invoice state notification emitted",
		"invoice_id", req.InvoiceID,
		"invoice_state", state)
	return nil
}
