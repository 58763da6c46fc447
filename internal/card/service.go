package card

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	internalerrors "github.com/frahmantamala/invoice-payments/internal"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/location"
	gwtypes "github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentoption"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/transactionhistory"
	userdm "github.com/frahmantamala/invoice-payments/internal/core/datamodel/user"
)

type Gateway interface {
	AuthorizeTransaction(ctx context.Context, sub *location.Subsidiary, opt *paymentoption.PaymentOption, amountMinor int64, currency string) (*gwtypes.AuthorizeResponse, error)
	CaptureTransaction(ctx context.Context, sub *location.Subsidiary, auth *gwtypes.AuthorizeResponse) (*gwtypes.CaptureResponse, error)
}

type UserDirectory interface {
	Load(ctx context.Context, locationID, userID int64, includeDeleted bool) (*userdm.User, error)
}

type LocationConfigs interface {
	LoadByID(ctx context.Context, locationID int64) (*location.Config, error)
}

type HistoryRepository interface {
	Insert(record *transactionhistory.Record) error
}

// Service charges an invoice through the card gateway's authorize+capture
// protocol. Missing reference data (user, location, subsidiary, gateway
// config) aborts the request as a configuration fault; everything past that
// point is folded into the transaction-history record.
type Service struct {
	users     UserDirectory
	locations LocationConfigs
	gateway   Gateway
	history   HistoryRepository
	logger    *slog.Logger
}

func NewService(users UserDirectory, locations LocationConfigs, gateway Gateway, history HistoryRepository, logger *slog.Logger) *Service {
	return &Service{
		users:     users,
		locations: locations,
		gateway:   gateway,
		history:   history,
		logger:    logger,
	}
}

// historyPayload is the combined audit payload. Each part is independently
// nullable so a partially completed charge (authorized but not captured)
// stays legible for manual reconciliation.
type historyPayload struct {
	AuthorizeResponse *gwtypes.AuthorizeResponse `json:"authorize_response"`
	CaptureResponse   *gwtypes.CaptureResponse   `json:"capture_response"`
	Error             *string                    `json:"error"`
}

// Charge runs authorize then capture for one invoice and writes exactly one
// transaction-history record. The returned error is non-nil only for
// configuration faults, in which case no record was written.
func (s *Service) Charge(ctx context.Context, requestID string, req *invoice.ProcessRequest, opt *paymentoption.PaymentOption) (*transactionhistory.Record, error) {
	sub, err := s.resolveGatewayConfig(ctx, req)
	if err != nil {
		return nil, err
	}

	currency := sub.Currency
	if currency == "" {
		currency = req.Currency
	}
	// gateway expects the amount in minor units, two fractional digits
	amountMinor := req.Amount.Shift(2).Round(0).IntPart()

	// authorize and capture form one failure boundary: whichever call fails,
	// the exception is captured and the attempt still produces an audit row.
	var (
		authResp *gwtypes.AuthorizeResponse
		capResp  *gwtypes.CaptureResponse
		execErr  error
	)

	authResp, execErr = s.gateway.AuthorizeTransaction(ctx, sub, opt, amountMinor, currency)
	if execErr == nil {
		capResp, execErr = s.gateway.CaptureTransaction(ctx, sub, authResp)
	}

	if execErr != nil {
		s.logger.Error("card charge failed",
			"error", execErr,
			"request_id", requestID,
			"invoice_id", req.InvoiceID,
			"payment_option_id", opt.ID)
	}

	record := s.buildRecord(req, opt, authResp, capResp, execErr)

	if err := s.history.Insert(record); err != nil {
		s.logger.Error("failed to persist transaction history record",
			"error", err,
			"request_id", requestID,
			"invoice_id", req.InvoiceID)
	}

	s.logger.Info("card charge recorded",
		"request_id", requestID,
		"invoice_id", req.InvoiceID,
		"status", record.Status,
		"transaction_id", record.TransactionID)

	return record, nil
}

func (s *Service) resolveGatewayConfig(ctx context.Context, req *invoice.ProcessRequest) (*location.Subsidiary, error) {
	usr, err := s.users.Load(ctx, req.LocationID, req.UserID, true)
	if err != nil {
		return nil, fmt.Errorf("user lookup failed: %w", err)
	}
	if usr == nil {
		return nil, internalerrors.NewConfigurationError(
			fmt.Sprintf("user %d not found at location %d", req.UserID, req.LocationID),
			internalerrors.ErrCodeUserNotFound)
	}
	if usr.SubsidiaryID == nil {
		return nil, internalerrors.NewConfigurationError(
			fmt.Sprintf("user %d has no subsidiary assigned", req.UserID),
			internalerrors.ErrCodeSubsidiaryNotFound)
	}

	loc, err := s.locations.LoadByID(ctx, usr.LocationID)
	if err != nil {
		return nil, fmt.Errorf("location config lookup failed: %w", err)
	}
	if loc == nil {
		return nil, internalerrors.NewConfigurationError(
			fmt.Sprintf("location %d not found", usr.LocationID),
			internalerrors.ErrCodeLocationNotFound)
	}

	sub := loc.SubsidiaryByID(*usr.SubsidiaryID)
	if sub == nil {
		return nil, internalerrors.NewConfigurationError(
			fmt.Sprintf("subsidiary %d not configured for location %d", *usr.SubsidiaryID, loc.ID),
			internalerrors.ErrCodeSubsidiaryNotFound)
	}
	if sub.Provider != location.ProviderCardGateway || sub.MerchantID == "" {
		return nil, internalerrors.NewConfigurationError(
			fmt.Sprintf("subsidiary %d has no card gateway configuration", sub.ID),
			internalerrors.ErrCodeProviderNotConfig)
	}

	return sub, nil
}

func (s *Service) buildRecord(req *invoice.ProcessRequest, opt *paymentoption.PaymentOption, authResp *gwtypes.AuthorizeResponse, capResp *gwtypes.CaptureResponse, execErr error) *transactionhistory.Record {
	status := transactionhistory.StatusFailed
	if capResp != nil && capResp.Status == gwtypes.CaptureStatusCaptured {
		status = transactionhistory.StatusSuccess
	}

	payload := historyPayload{
		AuthorizeResponse: authResp,
		CaptureResponse:   capResp,
	}
	if execErr != nil {
		msg := execErr.Error()
		payload.Error = &msg
	}

	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("failed to marshal transaction history payload", "error", err)
	}

	locationID := req.LocationID
	return &transactionhistory.Record{
		ID:                uuid.New().String(),
		TransactionID:     transactionID(authResp, execErr),
		LocationID:        &locationID,
		UserID:            req.UserID,
		PaymentOptionID:   opt.ID,
		PaymentOptionType: string(opt.Type),
		Status:            status,
		Payload:           payloadJSON,
		CreatedAt:         time.Now(),
	}
}

// transactionID prefers the id from a successful authorize; failing that it
// recovers the id from a structured gateway error, since the gateway may
// have created a transaction before rejecting the charge.
func transactionID(authResp *gwtypes.AuthorizeResponse, execErr error) *string {
	if authResp != nil && authResp.TransactionID != "" {
		return &authResp.TransactionID
	}

	var gwErr *gwtypes.GatewayError
	if errors.As(execErr, &gwErr) && gwErr.TransactionID != "" {
		return &gwErr.TransactionID
	}

	return nil
}
