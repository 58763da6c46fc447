package card_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	internalerrors "github.com/frahmantamala/invoice-payments/internal"
	"github.com/frahmantamala/invoice-payments/internal/card"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/location"
	gwtypes "github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentgateway"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/paymentoption"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/transactionhistory"
	userdm "github.com/frahmantamala/invoice-payments/internal/core/datamodel/user"
)

func TestCard(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Card Service Suite")
}

type mockGateway struct {
	authResponse *gwtypes.AuthorizeResponse
	authErr      error
	capResponse  *gwtypes.CaptureResponse
	capErr       error
	authCalls    int
	capCalls     int
}

func (m *mockGateway) AuthorizeTransaction(ctx context.Context, sub *location.Subsidiary, opt *paymentoption.PaymentOption, amountMinor int64, currency string) (*gwtypes.AuthorizeResponse, error) {
	m.authCalls++
	return m.authResponse, m.authErr
}

func (m *mockGateway) CaptureTransaction(ctx context.Context, sub *location.Subsidiary, auth *gwtypes.AuthorizeResponse) (*gwtypes.CaptureResponse, error) {
	m.capCalls++
	return m.capResponse, m.capErr
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

type mockHistoryRepository struct {
	records []*transactionhistory.Record
	err     error
}

func (m *mockHistoryRepository) Insert(record *transactionhistory.Record) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, record)
	return nil
}

type recordedPayload struct {
	AuthorizeResponse *gwtypes.AuthorizeResponse `json:"authorize_response"`
	CaptureResponse   *gwtypes.CaptureResponse   `json:"capture_response"`
	Error             *string                    `json:"error"`
}

var _ = Describe("Card Service", func() {
	var (
		service   *card.Service
		gateway   *mockGateway
		users     *mockUserDirectory
		locations *mockLocationConfigs
		history   *mockHistoryRepository
		req       *invoice.ProcessRequest
		opt       *paymentoption.PaymentOption
	)

	subsidiaryID := int64(11)
	token := "tok-1"

	BeforeEach(func() {
		gateway = &mockGateway{
			authResponse: &gwtypes.AuthorizeResponse{TransactionID: "TX-1", Status: "AUTHORIZED"},
			capResponse:  &gwtypes.CaptureResponse{TransactionID: "TX-1", Status: gwtypes.CaptureStatusCaptured},
		}
		users = &mockUserDirectory{
			user: &userdm.User{ID: 42, LocationID: 7, SubsidiaryID: &subsidiaryID},
		}
		locations = &mockLocationConfigs{
			config: &location.Config{
				ID: 7,
				Subsidiaries: []location.Subsidiary{{
					ID:         subsidiaryID,
					Provider:   location.ProviderCardGateway,
					Currency:   "EUR",
					MerchantID: "M-2",
				}},
			},
		}
		history = &mockHistoryRepository{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = card.NewService(users, locations, gateway, history, logger)

		req = &invoice.ProcessRequest{
			InvoiceID:   "inv-1001",
			InvoiceType: "membership",
			UserID:      42,
			LocationID:  7,
			Month:       "2026-08",
			Amount:      decimal.RequireFromString("49.90"),
			Currency:    "EUR",
		}
		opt = &paymentoption.PaymentOption{
			ID:           5,
			UserID:       42,
			Type:         paymentoption.TypeCard,
			GatewayToken: &token,
			IsActive:     true,
		}
	})

	parsePayload := func(rec *transactionhistory.Record) recordedPayload {
		var payload recordedPayload
		Expect(json.Unmarshal(rec.Payload, &payload)).To(Succeed())
		return payload
	}

	Context("when authorize and capture both succeed", func() {
		It("records SUCCESS with the authorize transaction id", func() {
			rec, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.Status).To(Equal(transactionhistory.StatusSuccess))
			Expect(rec.TransactionID).To(HaveValue(Equal("TX-1")))
			Expect(rec.PaymentOptionID).To(Equal(int64(5)))
			Expect(history.records).To(HaveLen(1))

			payload := parsePayload(rec)
			Expect(payload.AuthorizeResponse).NotTo(BeNil())
			Expect(payload.CaptureResponse).NotTo(BeNil())
			Expect(payload.Error).To(BeNil())
		})
	})

	Context("when the capture does not reach CAPTURED", func() {
		It("records FAILED for a pending capture", func() {
			gateway.capResponse = &gwtypes.CaptureResponse{TransactionID: "TX-1", Status: gwtypes.CaptureStatusPending}

			rec, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.Status).To(Equal(transactionhistory.StatusFailed))
		})

		It("records FAILED with the authorize id when the capture call fails", func() {
			gateway.capResponse = nil
			gateway.capErr = errors.New("capture rejected")

			rec, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.Status).To(Equal(transactionhistory.StatusFailed))
			Expect(rec.TransactionID).To(HaveValue(Equal("TX-1")))

			payload := parsePayload(rec)
			Expect(payload.AuthorizeResponse).NotTo(BeNil())
			Expect(payload.CaptureResponse).To(BeNil())
			Expect(payload.Error).To(HaveValue(ContainSubstring("capture rejected")))
		})
	})

	Context("when the authorize call fails", func() {
		It("recovers the transaction id from a structured gateway error", func() {
			gateway.authResponse = nil
			gateway.authErr = &gwtypes.GatewayError{Code: "card_declined", Message: "do not honor", TransactionID: "TX-9"}

			rec, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(err).NotTo(HaveOccurred())

			Expect(rec.Status).To(Equal(transactionhistory.StatusFailed))
			Expect(rec.TransactionID).To(HaveValue(Equal("TX-9")))
			Expect(gateway.capCalls).To(BeZero())

			payload := parsePayload(rec)
			Expect(payload.Error).To(HaveValue(ContainSubstring("do not honor")))
		})

		It("leaves the transaction id empty for an unstructured failure", func() {
			gateway.authResponse = nil
			gateway.authErr = errors.New("connection reset")

			rec, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.TransactionID).To(BeNil())
			Expect(rec.Status).To(Equal(transactionhistory.StatusFailed))
		})
	})

	Context("when reference data is missing", func() {
		It("aborts without an audit row when the user does not exist", func() {
			users.user = nil

			rec, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(rec).To(BeNil())
			Expect(internalerrors.IsConfigurationError(err)).To(BeTrue())
			Expect(history.records).To(BeEmpty())
			Expect(gateway.authCalls).To(BeZero())
		})

		It("aborts when the user has no subsidiary", func() {
			users.user = &userdm.User{ID: 42, LocationID: 7}

			_, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(internalerrors.IsConfigurationError(err)).To(BeTrue())
		})

		It("aborts when the location is unknown", func() {
			locations.config = nil

			_, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(internalerrors.IsConfigurationError(err)).To(BeTrue())
			Expect(history.records).To(BeEmpty())
		})

		It("aborts when the subsidiary is not wired to the card gateway", func() {
			locations.config.Subsidiaries[0].Provider = location.ProviderDirectDebit

			_, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(internalerrors.IsConfigurationError(err)).To(BeTrue())
			Expect(gateway.authCalls).To(BeZero())
		})
	})

	Context("when the history write fails", func() {
		It("still returns the outcome", func() {
			history.err = errors.New("insert failed")

			rec, err := service.Charge(context.Background(), "req-1", req, opt)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec).NotTo(BeNil())
			Expect(rec.Status).To(Equal(transactionhistory.StatusSuccess))
		})
	})
})
