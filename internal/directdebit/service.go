package directdebit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/execution"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/location"
	gwtypes "github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentoption"
	userdm "github.com/frahmantamala/invoice-payments/internal/core/datamodel/user"
)

type UserDirectory interface {
	Load(ctx context.Context, locationID, userID int64, includeDeleted bool) (*userdm.User, error)
}

type LocationConfigs interface {
	LoadByID(ctx context.Context, locationID int64) (*location.Config, error)
}

type OptionStore interface {
	GetActive(userID int64) (*paymentoption.PaymentOption, error)
}

type Provider interface {
	RunAuthorization(ctx context.Context, req *gwtypes.AuthorizationRequest) (*gwtypes.AuthorizationResponse, error)
}

// AuditRepository is the append-only store for execution outcomes and raw
// provider responses.
type AuditRepository interface {
	InsertExecution(record *execution.Record) error
	InsertProviderResponse(resp *execution.ProviderResponse) error
}

// Service drives one direct-debit authorization per invoice. It never returns
// an error: every path, including provider transport failures, terminates in
// a recorded execution outcome.
type Service struct {
	users     UserDirectory
	locations LocationConfigs
	options   OptionStore
	provider  Provider
	audit     AuditRepository
	logger    *slog.Logger
}

func NewService(users UserDirectory, locations LocationConfigs, options OptionStore, provider Provider, audit AuditRepository, logger *slog.Logger) *Service {
	return &Service{
		users:     users,
		locations: locations,
		options:   options,
		provider:  provider,
		audit:     audit,
		logger:    logger,
	}
}

// Execute attempts the direct-debit payment for one invoice and returns the
// terminal outcome. The outcome is persisted as an audit record before
// returning, including early terminations that never reach the provider.
func (s *Service) Execute(ctx context.Context, requestID string, req *invoice.ProcessRequest) *execution.Record {
	usr, err := s.users.Load(ctx, req.LocationID, req.UserID, true)
	if err != nil {
		return s.record(requestID, req, execution.StatePaymentFailed,
			fmt.Sprintf("user lookup failed: %v", err), nil, nil)
	}
	if usr == nil {
		return s.record(requestID, req, execution.StatePaymentFailed,
			"user record could not be located", nil, nil)
	}

	sub := s.resolveSubsidiary(ctx, usr)
	if sub == nil {
		return s.record(requestID, req, execution.StateUnprocessed,
			"user has no resolvable subsidiary", nil, nil)
	}

	if !SubsidiaryEligible(sub) {
		return s.record(requestID, req, execution.StateUnprocessed,
			"subsidiary is not eligible for direct debit", nil, nil)
	}

	opt, err := s.options.GetActive(req.UserID)
	if err != nil {
		return s.record(requestID, req, execution.StatePaymentFailed,
			fmt.Sprintf("payment option lookup failed: %v", err), nil, nil)
	}
	if opt == nil {
		return s.record(requestID, req, execution.StateUnprocessed,
			"no active payment option for user", nil, nil)
	}

	if opt.ProviderUserID == nil || *opt.ProviderUserID == "" {
		return s.record(requestID, req, execution.StateUnprocessed,
			"active payment option has no provider user id", nil, nil)
	}

	authReq := &gwtypes.AuthorizationRequest{
		MerchantID:        sub.MerchantID,
		PortalID:          sub.PortalID,
		Key:               sub.Key,
		SubAccountID:      sub.SubAccountID,
		ProviderUserID:    *opt.ProviderUserID,
		AmountMinor:       MinorUnits(req.Amount),
		Currency:          sub.Currency,
		MerchantReference: MerchantReference(requestID),
		Narrative:         Narrative(req.InvoiceType, req.Month),
	}

	resp, err := s.provider.RunAuthorization(ctx, authReq)
	if err != nil {
		s.logger.Error("direct-debit authorization call failed",
			"error", err,
			"request_id", requestID,
			"invoice_id", req.InvoiceID)
		return s.record(requestID, req, execution.StatePaymentFailed,
			fmt.Sprintf("authorization call failed: %v", err), &opt.ID, nil)
	}

	s.persistProviderResponse(requestID, authReq, resp)

	if !resp.IsApproved() {
		return s.record(requestID, req, execution.StatePaymentFailed,
			resp.DeclineMessage(), &opt.ID, nil)
	}

	txID := resp.TxID
	return s.record(requestID, req, execution.StatePaymentIssued,
		"authorization approved", &opt.ID, &txID)
}

func (s *Service) resolveSubsidiary(ctx context.Context, usr *userdm.User) *location.Subsidiary {
	if usr.SubsidiaryID == nil {
		return nil
	}

	loc, err := s.locations.LoadByID(ctx, usr.LocationID)
	if err != nil {
		s.logger.Error("location config lookup failed",
			"error", err,
			"location_id", usr.LocationID,
			"user_id", usr.ID)
		return nil
	}
	if loc == nil {
		return nil
	}

	return loc.SubsidiaryByID(*usr.SubsidiaryID)
}

// record builds the execution outcome and persists it as the authoritative
// audit row before handing it back.
func (s *Service) record(requestID string, req *invoice.ProcessRequest, state execution.InvoiceState, message string, optionID *int64, txID *string) *execution.Record {
	rec := &execution.Record{
		ID:              uuid.New().String(),
		RequestID:       requestID,
		InvoiceID:       req.InvoiceID,
		InvoiceType:     req.InvoiceType,
		InvoiceState:    state,
		TransactionID:   txID,
		Message:         message,
		PaymentOptionID: optionID,
		CreatedAt:       time.Now(),
	}

	if err := s.audit.InsertExecution(rec); err != nil {
		s.logger.Error("failed to persist execution record",
			"error", err,
			"request_id", requestID,
			"invoice_id", req.InvoiceID,
			"invoice_state", state)
	}

	s.logger.Info("direct-debit execution recorded",
		"request_id", requestID,
		"invoice_id", req.InvoiceID,
		"invoice_state", state,
		"message", message)

	return rec
}

type providerExchange struct {
	Request  *gwtypes.AuthorizationRequest  `json:"request"`
	Response *gwtypes.AuthorizationResponse `json:"response"`
}

func (s *Service) persistProviderResponse(requestID string, authReq *gwtypes.AuthorizationRequest, resp *gwtypes.AuthorizationResponse) {
	// the signing key must never land in the audit table
	redacted := *authReq
	redacted.Key = "[REDACTED]"

	payload, err := json.Marshal(providerExchange{Request: &redacted, Response: resp})
	if err != nil {
		s.logger.Error("failed to marshal provider response payload",
			"error", err,
			"request_id", requestID)
		return
	}

	row := &execution.ProviderResponse{
		ID:        uuid.New().String(),
		RequestID: requestID,
		Provider:  location.ProviderDirectDebit,
		Payload:   payload,
		CreatedAt: time.Now(),
	}

	if err := s.audit.InsertProviderResponse(row); err != nil {
		s.logger.Error("failed to persist raw provider response",
			"error", err,
			"request_id", requestID)
	}
}
