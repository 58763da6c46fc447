package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/invoice-payments/internal/dispatch"
	"github.com/frahmantamala/invoice-payments/internal/paymentoption"
	"github.com/frahmantamala/invoice-payments/internal/transport/middleware"
)

// RegisterAllRoutes wires the inbound surface: invoice processing, the user
// deletion hook and health probes. There is no public API here, callers are
// trusted internal systems.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, dispatchHandler *dispatch.Handler, optionHandler *paymentoption.Handler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.RequestID)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if dispatchHandler != nil {
			r.Post("/invoices/process", dispatchHandler.ProcessInvoice)
		}

		if optionHandler != nil {
			r.Post("/users/{id}/deleted", optionHandler.HandleUserDeleted)
		}
	})
}
