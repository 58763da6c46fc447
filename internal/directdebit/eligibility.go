package directdebit

import (
	"github.com/frahmantamala/invoice-payments/internal/core/datamodel/location"
)

// SubsidiaryEligible reports whether a subsidiary can run direct-debit
// authorizations: it must be assigned to the direct-debit provider and carry
// a complete credential set.
func SubsidiaryEligible(sub *location.Subsidiary) bool {
	if sub == nil {
		return false
	}
	if sub.Provider != location.ProviderDirectDebit {
		return false
	}
	return sub.MerchantID != "" &&
		sub.PortalID != "" &&
		sub.Key != "" &&
		sub.SubAccountID != ""
}
