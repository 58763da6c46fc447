package directdebit

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// maxReferenceLen is the provider's end-to-end reference limit.
const maxReferenceLen = 35

// MerchantReference derives the provider-facing reference from the request
// id. It is deterministic: resubmitting the same request produces the same
// reference, which lets the provider detect duplicate submissions.
func MerchantReference(requestID string) string {
	cleaned := strings.ToUpper(strings.NewReplacer("-", "", "_", "").Replace(requestID))
	ref := "INV" + cleaned
	if len(ref) > maxReferenceLen {
		ref = ref[:maxReferenceLen]
	}
	return ref
}

// Narrative builds the statement text shown on the debtor's bank statement.
func Narrative(invoiceType, month string) string {
	return fmt.Sprintf("%s INVOICE %s", strings.ToUpper(invoiceType), month)
}

// MinorUnits converts a decimal amount to the provider's minor-unit integer
// encoding (two fractional digits, e.g. cents). The scaling rule follows the
// provider documentation; swap this function if a provider with a different
// exponent is onboarded.
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
