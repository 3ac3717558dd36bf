package split

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
)

// Distribute populates each group's shipping and tax share in proportion to
// its subtotal against the order's own pre-allocation subtotal. Items a
// by_category split left unallocated still count against the denominator, so
// their shipping/tax burden is spread across the allocated groups. Rounding
// is half-to-even per share; residual pennies across many-vendor splits are
// left unreconciled, bounded at one cent per extra vendor.
func Distribute(order *models.Order, groups map[uuid.UUID]*VendorGroup) map[uuid.UUID]*VendorGroup {
	denominator := decimal.NewFromInt(int64(order.SubtotalCents))
	shipping := decimal.NewFromInt(int64(order.ShippingTotalCents))
	tax := decimal.NewFromInt(int64(order.TaxTotalCents))

	for _, group := range groups {
		if order.SubtotalCents == 0 {
			group.ShippingCents = 0
			group.TaxCents = 0
			group.GrandTotalCents = group.TotalCents
			continue
		}
		proportion := decimal.NewFromInt(int64(group.SubtotalCents)).Div(denominator)
		group.ShippingCents = int(shipping.Mul(proportion).RoundBank(0).IntPart())
		group.TaxCents = int(tax.Mul(proportion).RoundBank(0).IntPart())
		// Item-level discounts live in TotalCents; the grand total builds on
		// it rather than on the pre-discount subtotal.
		group.GrandTotalCents = group.TotalCents + group.ShippingCents + group.TaxCents
	}
	return groups
}
