package directdebit_test

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/frahmantamala/invoice-payments/internal/directdebit"
)

var _ = Describe("MerchantReference", func() {
	It("is deterministic for the same request id", func() {
		first := directdebit.MerchantReference("4f9d2c7a-1b3e-4d5f-8a6b-9c0d1e2f3a4b")
		second := directdebit.MerchantReference("4f9d2c7a-1b3e-4d5f-8a6b-9c0d1e2f3a4b")
		Expect(first).To(Equal(second))
	})

	It("uppercases and strips separators", func() {
		Expect(directdebit.MerchantReference("req_ab-cd")).To(Equal("INVREQABCD"))
	})

	It("truncates to the provider limit", func() {
		ref := directdebit.MerchantReference(strings.Repeat("a", 50))
		Expect(ref).To(HaveLen(35))
		Expect(ref).To(HavePrefix("INV"))
	})
})

var _ = Describe("Narrative", func() {
	It("combines invoice type and month in uppercase", func() {
		Expect(directdebit.Narrative("membership", "2026-08")).To(Equal("MEMBERSHIP INVOICE 2026-08"))
	})
})

var _ = Describe("MinorUnits", func() {
	It("scales to two fractional digits", func() {
		Expect(directdebit.MinorUnits(decimal.RequireFromString("49.90"))).To(Equal(int64(4990)))
		Expect(directdebit.MinorUnits(decimal.RequireFromString("100"))).To(Equal(int64(10000)))
	})

	It("rounds sub-cent amounts", func() {
		Expect(directdebit.MinorUnits(decimal.RequireFromString("0.005"))).To(Equal(int64(1)))
	})
})
