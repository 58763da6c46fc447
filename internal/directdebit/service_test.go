package directdebit_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/execution"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/location"
	gwtypes "github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentoption"
	userdm "github.com/frahmantamala/invoice-payments/internal/core/datamodel/user"
	"github.com/frahmantamala/invoice-payments/internal/directdebit"
)

func TestDirectDebit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "DirectDebit Service Suite")
}

type mockUserDirectory struct {
	user *userdm.User
	err  error
}

func (m *mockUserDirectory) Load(ctx context.Context, locationID, userID int64, includeDeleted bool) (*userdm.User, error) {
	return m.user, m.err
}

type mockLocationConfigs struct {
	config *location.Config
	err    error
}

func (m *mockLocationConfigs) LoadByID(ctx context.Context, locationID int64) (*location.Config, error) {
	return m.config, m.err
}

type mockOptionStore struct {
	option *paymentoption.PaymentOption
	err    error
}

func (m *mockOptionStore) GetActive(userID int64) (*paymentoption.PaymentOption, error) {
	return m.option, m.err
}

type mockProvider struct {
	response *gwtypes.AuthorizationResponse
	err      error
	requests []*gwtypes.AuthorizationRequest
}

func (m *mockProvider) RunAuthorization(ctx context.Context, req *gwtypes.AuthorizationRequest) (*gwtypes.AuthorizationResponse, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

type mockAuditRepository struct {
	executions        []*execution.Record
	providerResponses []*execution.ProviderResponse
	executionErr      error
}

func (m *mockAuditRepository) InsertExecution(record *execution.Record) error {
	if m.executionErr != nil {
		return m.executionErr
	}
	m.executions = append(m.executions, record)
	return nil
}

func (m *mockAuditRepository) InsertProviderResponse(resp *execution.ProviderResponse) error {
	m.providerResponses = append(m.providerResponses, resp)
	return nil
}

var _ = Describe("DirectDebit Service", func() {
	var (
		service   *directdebit.Service
		users     *mockUserDirectory
		locations *mockLocationConfigs
		options   *mockOptionStore
		provider  *mockProvider
		audit     *mockAuditRepository
		req       *invoice.ProcessRequest
	)

	subsidiaryID := int64(11)
	providerUserID := "PU-77"

	BeforeEach(func() {
		users = &mockUserDirectory{
			user: &userdm.User{ID: 42, LocationID: 7, SubsidiaryID: &subsidiaryID},
		}
		locations = &mockLocationConfigs{
			config: &location.Config{
				ID: 7,
				Subsidiaries: []location.Subsidiary{{
					ID:           subsidiaryID,
					Provider:     location.ProviderDirectDebit,
					Currency:     "EUR",
					MerchantID:   "M-1",
					PortalID:     "P-1",
					Key:          "secret-signing-key",
					SubAccountID: "S-1",
				}},
			},
		}
		options = &mockOptionStore{
			option: &paymentoption.PaymentOption{
				ID:             5,
				UserID:         42,
				Type:           paymentoption.TypeDirectDebit,
				ProviderUserID: &providerUserID,
				IsActive:       true,
			},
		}
		provider = &mockProvider{
			response: &gwtypes.AuthorizationResponse{Status: gwtypes.AuthorizationStatusApproved, TxID: "T1"},
		}
		audit = &mockAuditRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = directdebit.NewService(users, locations, options, provider, audit, logger)

		req = &invoice.ProcessRequest{
			InvoiceID:   "inv-1001",
			InvoiceType: "membership",
			UserID:      42,
			LocationID:  7,
			Month:       "2026-08",
			Amount:      decimal.RequireFromString("49.90"),
			Currency:    "EUR",
		}
	})

	Context("when the authorization is approved", func() {
		It("terminates in PAYMENT_ISSUED with the provider transaction id", func() {
			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StatePaymentIssued))
			Expect(rec.TransactionID).To(HaveValue(Equal("T1")))
			Expect(rec.PaymentOptionID).To(HaveValue(Equal(int64(5))))
			Expect(audit.executions).To(HaveLen(1))
			Expect(audit.executions[0]).To(Equal(rec))
		})

		It("sends the amount in minor units with a deterministic reference", func() {
			service.Execute(context.Background(), "req-abc-123", req)

			Expect(provider.requests).To(HaveLen(1))
			sent := provider.requests[0]
			Expect(sent.AmountMinor).To(Equal(int64(4990)))
			Expect(sent.MerchantReference).To(Equal("INVREQABC123"))
			Expect(sent.ProviderUserID).To(Equal("PU-77"))
			Expect(sent.Narrative).To(Equal("MEMBERSHIP INVOICE 2026-08"))
		})

		It("persists the raw provider exchange with the signing key redacted", func() {
			service.Execute(context.Background(), "req-1", req)

			Expect(audit.providerResponses).To(HaveLen(1))
			row := audit.providerResponses[0]
			Expect(row.Provider).To(Equal(location.ProviderDirectDebit))
			Expect(string(row.Payload)).To(ContainSubstring("[REDACTED]"))
			Expect(string(row.Payload)).NotTo(ContainSubstring("secret-signing-key"))
			Expect(string(row.Payload)).To(ContainSubstring(`"tx_id":"T1"`))
		})
	})

	Context("when the provider declines", func() {
		It("records PAYMENT_FAILED with the provider's message", func() {
			provider.response = &gwtypes.AuthorizationResponse{
				Status: gwtypes.AuthorizationStatusDeclined,
				Error:  &gwtypes.AuthorizationError{ErrorCode: "51", ErrorMessage: "insufficient funds"},
			}

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StatePaymentFailed))
			Expect(rec.Message).To(Equal("insufficient funds"))
			Expect(rec.TransactionID).To(BeNil())
			Expect(rec.PaymentOptionID).To(HaveValue(Equal(int64(5))))
			Expect(audit.providerResponses).To(HaveLen(1))
		})

		It("handles a decline without an error body", func() {
			provider.response = &gwtypes.AuthorizationResponse{Status: gwtypes.AuthorizationStatusDeclined}

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StatePaymentFailed))
			Expect(rec.Message).To(ContainSubstring("declined without provider error detail"))
		})
	})

	Context("when the provider call fails", func() {
		It("records PAYMENT_FAILED and skips the provider-response row", func() {
			provider.err = errors.New("timeout")

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StatePaymentFailed))
			Expect(rec.Message).To(ContainSubstring("timeout"))
			Expect(rec.PaymentOptionID).To(HaveValue(Equal(int64(5))))
			Expect(audit.executions).To(HaveLen(1))
			Expect(audit.providerResponses).To(BeEmpty())
		})
	})

	Context("when the user cannot be resolved", func() {
		It("records PAYMENT_FAILED on a lookup error", func() {
			users.err = errors.New("directory unavailable")

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StatePaymentFailed))
			Expect(audit.executions).To(HaveLen(1))
			Expect(provider.requests).To(BeEmpty())
		})

		It("records PAYMENT_FAILED when the user does not exist", func() {
			users.user = nil

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StatePaymentFailed))
			Expect(rec.Message).To(ContainSubstring("could not be located"))
		})
	})

	Context("when the subsidiary cannot be resolved", func() {
		It("records UNPROCESSED when the user has no subsidiary assigned", func() {
			users.user = &userdm.User{ID: 42, LocationID: 7}

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StateUnprocessed))
			Expect(rec.Message).To(ContainSubstring("no resolvable subsidiary"))
		})

		It("records UNPROCESSED when the location lookup fails", func() {
			locations.err = errors.New("service down")

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StateUnprocessed))
		})

		It("records UNPROCESSED when the subsidiary is missing from the location", func() {
			locations.config = &location.Config{ID: 7}

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StateUnprocessed))
		})
	})

	Context("when the subsidiary is not eligible", func() {
		It("records UNPROCESSED for a subsidiary on another provider", func() {
			locations.config.Subsidiaries[0].Provider = location.ProviderCardGateway

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StateUnprocessed))
			Expect(rec.Message).To(ContainSubstring("not eligible"))
		})

		It("records UNPROCESSED when merchant credentials are incomplete", func() {
			locations.config.Subsidiaries[0].Key = ""

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StateUnprocessed))
			Expect(provider.requests).To(BeEmpty())
		})
	})

	Context("when the payment option cannot be used", func() {
		It("records PAYMENT_FAILED on a lookup error", func() {
			options.err = errors.New("db down")

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StatePaymentFailed))
		})

		It("records UNPROCESSED when no option is active", func() {
			options.option = nil

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StateUnprocessed))
			Expect(rec.Message).To(ContainSubstring("no active payment option"))
		})

		It("records UNPROCESSED when the option has no provider user id", func() {
			options.option.ProviderUserID = nil

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec.InvoiceState).To(Equal(execution.StateUnprocessed))
			Expect(provider.requests).To(BeEmpty())
		})
	})

	Context("when the audit write fails", func() {
		It("still returns the outcome", func() {
			audit.executionErr = errors.New("insert failed")

			rec := service.Execute(context.Background(), "req-1", req)

			Expect(rec).NotTo(BeNil())
			Expect(rec.InvoiceState).To(Equal(execution.StatePaymentIssued))
		})
	})
})
