package paymentgateway

import "fmt"

// ---------- direct debit ----------

const (
	AuthorizationStatusApproved = "APPROVED"
	AuthorizationStatusDeclined = "DECLINED"
)

// AuthorizationRequest is one mandate pull against the direct-debit provider.
// Key is the merchant signing key and must never be persisted unredacted.
type AuthorizationRequest struct {
	MerchantID        string `json:"merchant_id"`
	PortalID          string `json:"portal_id"`
	Key               string `json:"key"`
	SubAccountID      string `json:"sub_account_id"`
	ProviderUserID    string `json:"provider_user_id"`
	AmountMinor       int64  `json:"amount"`
	Currency          string `json:"currency"`
	MerchantReference string `json:"merchant_reference"`
	Narrative         string `json:"narrative"`
}

type AuthorizationError struct {
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

type AuthorizationResponse struct {
	Status string              `json:"status"`
	TxID   string              `json:"tx_id"`
	Error  *AuthorizationError `json:"error,omitempty"`
}

func (r *AuthorizationResponse) IsApproved() bool {
	return r.Status == AuthorizationStatusApproved
}

// DeclineMessage returns the provider's error message for a not-approved
// response. The provider has been seen to decline with an empty error body,
// so this is nil-safe with a generic fallback.
func (r *AuthorizationResponse) DeclineMessage() string {
	if r.Error == nil || r.Error.ErrorMessage == "" {
		return "authorization declined without provider error detail"
	}
	return r.Error.ErrorMessage
}

// ---------- card gateway ----------

type CaptureStatus string

const (
	CaptureStatusCaptured CaptureStatus = "CAPTURED"
	CaptureStatusPending  CaptureStatus = "PENDING"
	CaptureStatusRefused  CaptureStatus = "REFUSED"
)

type AuthorizeResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

type CaptureResponse struct {
	TransactionID string        `json:"transaction_id"`
	Status        CaptureStatus `json:"status"`
}

// GatewayError is a structured rejection body from the card gateway. The
// gateway may create a transaction before refusing it, in which case
// TransactionID identifies that orphaned transaction.
type GatewayError struct {
	Code          string `json:"code"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
}

func (e *GatewayError) Error() string {
	if e.TransactionID != "" {
		return fmt.Sprintf("gateway error %s: %s (transaction %s)", e.Code, e.Message, e.TransactionID)
	}
	return fmt.Sprintf("gateway error %s: %s", e.Code, e.Message)
}
