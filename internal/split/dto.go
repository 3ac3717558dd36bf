package split

import (
	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/pkg/types"
)

// AllocatedItem is one line-item portion routed to a vendor. Quantity and
// money may be a slice of the source item under by_quantity.
type AllocatedItem struct {
	LineItemID    uuid.UUID
	ProductID     uuid.UUID
	Name          string
	Category      string
	Qty           int
	SubtotalCents int
	TotalCents    int
	Metadata      types.JSONMap
}

// VendorGroup accumulates one vendor's allocation during a single
// allocation/preview/execution pass. It is never persisted. SubtotalCents
// and TotalCents track the items' pre-discount and discounted sums
// separately; they diverge whenever an item's total is below its subtotal.
type VendorGroup struct {
	VendorID        uuid.UUID
	Items           []AllocatedItem
	SubtotalCents   int
	TotalCents      int
	ShippingCents   int
	TaxCents        int
	GrandTotalCents int
}

// Warning reports a non-fatal allocation outcome, currently only items left
// unallocated by a by_category split.
type Warning struct {
	LineItemID uuid.UUID
	Message    string
}

// PreviewVendor is the per-vendor section of a preview report.
type PreviewVendor struct {
	VendorID        uuid.UUID
	VendorName      string
	Items           []AllocatedItem
	SubtotalCents   int
	TotalCents      int
	ShippingCents   int
	TaxCents        int
	GrandTotalCents int
}

// PreviewReport is the read-only projection of what Execute would produce.
type PreviewReport struct {
	ParentOrderID uuid.UUID
	Vendors       []PreviewVendor
	Warnings      []Warning
}
