package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	errors "github.com/frahmantamala/invoice-payments/internal"
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/invoice"
	"github.com/frahmantamala/invoice-payments/internal/transport"
)

type ServiceAPI interface {
	ProcessInvoice(ctx context.Context, requestID string, req *invoice.ProcessRequest) error
}

type Handler struct {
	transport.BaseHandler
	Service ServiceAPI
	Logger  *slog.Logger
}

func NewHandler(service ServiceAPI, logger *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.BaseHandler{Logger: logger},
		Service:     service,
		Logger:      logger,
	}
}

// ProcessInvoice handles POST /api/v1/invoices/process
func (h *Handler) ProcessInvoice(w http.ResponseWriter, r *http.Request) {
	var req ProcessInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("ProcessInvoice: failed to parse request body", "error", err)
		h.HandleError(w, errors.NewValidationError("invalid request body", errors.ErrCodeValidationFailed))
		return
	}

	if err := req.Validate(); err != nil {
		h.Logger.Error("ProcessInvoice: validation error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	if err := h.Service.ProcessInvoice(r.Context(), req.RequestID, req.ToProcessRequest()); err != nil {
		h.Logger.Error("ProcessInvoice: service error",
			"error", err,
			"request_id", req.RequestID,
			"invoice_id", req.InvoiceID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("ProcessInvoice: invoice processed",
		"request_id", req.RequestID,
		"invoice_id", req.InvoiceID)

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":     "processed",
		"request_id": req.RequestID,
		"invoice_id": req.InvoiceID,
	})
}
