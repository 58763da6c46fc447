package invoice

import "github.com/shopspring/decimal"

// ProcessRequest is one invoice payment order. Immutable once built from the
// inbound message; consumed exactly once by the dispatcher.
type ProcessRequest struct {
	InvoiceID   string          `json:"invoice_id"`
	InvoiceType string          `json:"invoice_type"`
	UserID      int64           `json:"user_id"`
	LocationID  int64           `json:"location_id"`
	Month       string          `json:"month"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}
