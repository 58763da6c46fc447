package dispatch_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-payments/internal/dispatch"
)

type mockService struct {
	requestID string
	req       *invoice.ProcessRequest
	err       error
	calls     int
}

func (m *mockService) ProcessInvoice(ctx context.Context, requestID string, req *invoice.ProcessRequest) error {
	m.calls++
	m.requestID = requestID
	m.req = req
	return m.err
}

var _ = Describe("Dispatch Handler", func() {
	var (
		handler *dispatch.Handler
		service *mockService
	)

	BeforeEach(func() {
		service = &mockService{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		handler = dispatch.NewHandler(service, logger)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/process", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		handler.ProcessInvoice(w, req)
		return w
	}

	validBody := `{
		"request_id": "req-1",
		"invoice_id": "inv-1001",
		"invoice_type": "membership",
		"user_id": 42,
		"location_id": 7,
		"month": "2026-08",
		"amount": "49.90",
		"currency": "EUR"
	}`

	Context("with a valid request", func() {
		It("processes the invoice and returns 200", func() {
			w := post(validBody)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(service.calls).To(Equal(1))
			Expect(service.requestID).To(Equal("req-1"))
			Expect(service.req.InvoiceID).To(Equal("inv-1001"))
			Expect(service.req.Amount.String()).To(Equal("49.9"))

			var resp map[string]interface{}
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp["status"]).To(Equal("processed"))
		})
	})

	Context("with a malformed body", func() {
		It("rejects the request without calling the service", func() {
			w := post(`{not json`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(service.calls).To(BeZero())
		})
	})

	Context("with missing fields", func() {
		It("rejects a request without an invoice id", func() {
			w := post(`{"request_id": "req-1", "user_id": 42, "month": "2026-08", "amount": "10"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(service.calls).To(BeZero())
		})

		It("rejects a non-positive amount", func() {
			w := post(`{
				"request_id": "req-1",
				"invoice_id": "inv-1001",
				"invoice_type": "membership",
				"user_id": 42,
				"month": "2026-08",
				"amount": "0"
			}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(service.calls).To(BeZero())
		})
	})

	Context("when the service fails", func() {
		It("maps the error onto the HTTP response", func() {
			service.err = context.DeadlineExceeded

			w := post(validBody)
			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})
