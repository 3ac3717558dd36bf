package split

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
)

func testOrder(items ...models.OrderLineItem) *models.Order {
	subtotal, total := 0, 0
	for _, item := range items {
		subtotal += item.SubtotalCents
		total += item.TotalCents
	}
	return &models.Order{
		ID:            uuid.New(),
		OrderNumber:   1001,
		CustomerID:    uuid.New(),
		Status:        enums.OrderStatusProcessing,
		SubtotalCents: subtotal,
		TotalCents:    total,
		Items:         items,
	}
}

func lineItem(name, category string, qty, cents int) models.OrderLineItem {
	return models.OrderLineItem{
		ID:            uuid.New(),
		ProductID:     uuid.New(),
		Name:          name,
		Category:      category,
		Qty:           qty,
		SubtotalCents: cents,
		TotalCents:    cents,
	}
}

func allocationKind(t *testing.T, err error) AllocationErrorKind {
	t.Helper()
	var allocErr *AllocationError
	if !errors.As(err, &allocErr) {
		t.Fatalf("expected AllocationError, got %v", err)
	}
	return allocErr.Kind
}

func TestAllocateByProduct(t *testing.T) {
	itemA := lineItem("Widget", "tools", 2, 2000)
	itemB := lineItem("Gadget", "tools", 1, 1500)
	order := testOrder(itemA, itemB)
	vendorA, vendorB := uuid.New(), uuid.New()

	groups, warnings, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodByProduct,
		Products: []ProductAssignment{
			{LineItemID: itemA.ID, VendorID: vendorA},
			{LineItemID: itemB.ID, VendorID: vendorB},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[vendorA].SubtotalCents != 2000 || groups[vendorB].SubtotalCents != 1500 {
		t.Fatalf("subtotals wrong: %d / %d", groups[vendorA].SubtotalCents, groups[vendorB].SubtotalCents)
	}
	if got := groups[vendorA].Items[0].Qty; got != 2 {
		t.Fatalf("whole item must keep its quantity, got %d", got)
	}
}

func TestAllocateByProductDuplicate(t *testing.T) {
	item := lineItem("Widget", "", 1, 1000)
	order := testOrder(item)

	_, _, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodByProduct,
		Products: []ProductAssignment{
			{LineItemID: item.ID, VendorID: uuid.New()},
			{LineItemID: item.ID, VendorID: uuid.New()},
		},
	}, nil)
	if kind := allocationKind(t, err); kind != KindDuplicateAllocation {
		t.Fatalf("expected duplicate allocation, got %s", kind)
	}
}

func TestAllocateUnknownLineItem(t *testing.T) {
	order := testOrder(lineItem("Widget", "", 1, 1000))

	_, _, err := Allocate(order, &Assignment{
		Method:   enums.SplitMethodByProduct,
		Products: []ProductAssignment{{LineItemID: uuid.New(), VendorID: uuid.New()}},
	}, nil)
	if kind := allocationKind(t, err); kind != KindUnknownLineItem {
		t.Fatalf("expected unknown line item, got %s", kind)
	}
}

func TestAllocateEmptyAssignment(t *testing.T) {
	order := testOrder(lineItem("Widget", "", 1, 1000))

	_, _, err := Allocate(order, &Assignment{Method: enums.SplitMethodByProduct}, nil)
	if kind := allocationKind(t, err); kind != KindNoAssignments {
		t.Fatalf("expected no assignments, got %s", kind)
	}
}

func TestAllocateByQuantitySplitsProportionally(t *testing.T) {
	item := lineItem("Widget", "", 5, 1000) // 200 per unit
	order := testOrder(item)
	vendorA, vendorB := uuid.New(), uuid.New()

	groups, _, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodByQuantity,
		Quantities: []QuantityAssignment{
			{LineItemID: item.ID, VendorID: vendorA, Qty: 3},
			{LineItemID: item.ID, VendorID: vendorB, Qty: 2},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if groups[vendorA].SubtotalCents != 600 || groups[vendorB].SubtotalCents != 400 {
		t.Fatalf("quantity shares wrong: %d / %d", groups[vendorA].SubtotalCents, groups[vendorB].SubtotalCents)
	}
	if groups[vendorA].Items[0].Qty != 3 || groups[vendorB].Items[0].Qty != 2 {
		t.Fatal("split quantities not carried onto the allocated items")
	}
}

func TestAllocateByQuantityRoundsHalfToEven(t *testing.T) {
	// 1002 cents over 4 units: 250.5 per unit, banker's rounding gives 250
	// for the early shares rather than 251, and the final share absorbs the
	// 502-cent remainder.
	item := lineItem("Widget", "", 4, 1002)
	order := testOrder(item)
	vendorA, vendorB, vendorC := uuid.New(), uuid.New(), uuid.New()

	groups, _, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodByQuantity,
		Quantities: []QuantityAssignment{
			{LineItemID: item.ID, VendorID: vendorA, Qty: 1},
			{LineItemID: item.ID, VendorID: vendorB, Qty: 1},
			{LineItemID: item.ID, VendorID: vendorC, Qty: 2},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if groups[vendorA].SubtotalCents != 250 || groups[vendorB].SubtotalCents != 250 {
		t.Fatalf("expected 250/250, got %d/%d", groups[vendorA].SubtotalCents, groups[vendorB].SubtotalCents)
	}
	if groups[vendorC].SubtotalCents != 502 {
		t.Fatalf("final share must absorb the remainder, got %d", groups[vendorC].SubtotalCents)
	}
}

func TestAllocateByQuantitySharesSumToItemTotal(t *testing.T) {
	// 50 cents over 3 units split one apiece rounds each share to 17; the
	// final share takes 16 so the item never over-allocates a cent.
	item := lineItem("Widget", "", 3, 50)
	order := testOrder(item)
	vendors := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}

	groups, _, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodByQuantity,
		Quantities: []QuantityAssignment{
			{LineItemID: item.ID, VendorID: vendors[0], Qty: 1},
			{LineItemID: item.ID, VendorID: vendors[1], Qty: 1},
			{LineItemID: item.ID, VendorID: vendors[2], Qty: 1},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	var subtotal, total int
	for _, id := range vendors {
		subtotal += groups[id].SubtotalCents
		total += groups[id].TotalCents
	}
	if subtotal != item.SubtotalCents || total != item.TotalCents {
		t.Fatalf("shares sum to %d/%d cents, want %d/%d", subtotal, total, item.SubtotalCents, item.TotalCents)
	}
	if groups[vendors[2]].SubtotalCents != 16 {
		t.Fatalf("final share %d, want 16", groups[vendors[2]].SubtotalCents)
	}
}

func TestAllocateDiscountedItemKeepsBothSums(t *testing.T) {
	item := lineItem("Widget", "", 1, 2000)
	item.TotalCents = 1800 // line-level discount
	order := testOrder(item)
	vendor := uuid.New()

	groups, _, err := Allocate(order, &Assignment{
		Method:   enums.SplitMethodByProduct,
		Products: []ProductAssignment{{LineItemID: item.ID, VendorID: vendor}},
	}, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	group := groups[vendor]
	if group.SubtotalCents != 2000 || group.TotalCents != 1800 {
		t.Fatalf("group sums %d/%d, want 2000/1800", group.SubtotalCents, group.TotalCents)
	}
}

func TestAllocateByQuantityDiscountedSharesReconcile(t *testing.T) {
	item := lineItem("Widget", "", 2, 2000)
	item.TotalCents = 1800
	order := testOrder(item)
	vendorA, vendorB := uuid.New(), uuid.New()

	groups, _, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodByQuantity,
		Quantities: []QuantityAssignment{
			{LineItemID: item.ID, VendorID: vendorA, Qty: 1},
			{LineItemID: item.ID, VendorID: vendorB, Qty: 1},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if groups[vendorA].SubtotalCents != 1000 || groups[vendorA].TotalCents != 900 {
		t.Fatalf("vendor A %d/%d, want 1000/900", groups[vendorA].SubtotalCents, groups[vendorA].TotalCents)
	}
	if groups[vendorB].SubtotalCents != 1000 || groups[vendorB].TotalCents != 900 {
		t.Fatalf("vendor B %d/%d, want 1000/900", groups[vendorB].SubtotalCents, groups[vendorB].TotalCents)
	}
}

func TestAllocateByQuantityOverflow(t *testing.T) {
	item := lineItem("Widget", "", 2, 1000)
	order := testOrder(item)

	_, _, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodByQuantity,
		Quantities: []QuantityAssignment{
			{LineItemID: item.ID, VendorID: uuid.New(), Qty: 2},
			{LineItemID: item.ID, VendorID: uuid.New(), Qty: 1},
		},
	}, nil)
	if kind := allocationKind(t, err); kind != KindQuantityOverflow {
		t.Fatalf("expected quantity overflow, got %s", kind)
	}
}

func TestAllocateByQuantityRejectsLeftover(t *testing.T) {
	item := lineItem("Widget", "", 3, 900)
	order := testOrder(item)

	_, _, err := Allocate(order, &Assignment{
		Method:     enums.SplitMethodByQuantity,
		Quantities: []QuantityAssignment{{LineItemID: item.ID, VendorID: uuid.New(), Qty: 2}},
	}, nil)
	if kind := allocationKind(t, err); kind != KindQuantityOverflow {
		t.Fatalf("expected leftover units to fail allocation, got %s", kind)
	}
}

func TestAllocateByCategory(t *testing.T) {
	flower := lineItem("Rose Bundle", "flower", 1, 3000)
	edible := lineItem("Gummies", "edible", 2, 2000)
	other := lineItem("Lighter", "accessory", 1, 500)
	order := testOrder(flower, edible, other)
	vendorA, vendorB := uuid.New(), uuid.New()

	groups, warnings, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodByCategory,
		Categories: []CategoryAssignment{
			{Category: "flower", VendorID: vendorA},
			{Category: "edible", VendorID: vendorB},
		},
	}, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(warnings) != 1 || warnings[0].LineItemID != other.ID {
		t.Fatalf("expected one warning for the unmatched item, got %v", warnings)
	}
}

func TestAllocateByCategoryUsesCatalogOverride(t *testing.T) {
	item := lineItem("Rose Bundle", "", 1, 3000)
	order := testOrder(item)
	vendor := uuid.New()

	groups, warnings, err := Allocate(order, &Assignment{
		Method:     enums.SplitMethodByCategory,
		Categories: []CategoryAssignment{{Category: "flower", VendorID: vendor}},
	}, map[uuid.UUID]string{item.ProductID: "flower"})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("catalog category should match, got warnings %v", warnings)
	}
	if groups[vendor].SubtotalCents != 3000 {
		t.Fatalf("expected 3000, got %d", groups[vendor].SubtotalCents)
	}
}

func TestAllocateManual(t *testing.T) {
	itemA := lineItem("Widget", "", 1, 1000)
	itemB := lineItem("Gadget", "", 1, 2000)
	order := testOrder(itemA, itemB)
	vendor := uuid.New()

	groups, _, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodManual,
		Manual: []ManualAssignment{{VendorID: vendor, LineItemIDs: []uuid.UUID{itemA.ID, itemB.ID}}},
	}, nil)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if groups[vendor].SubtotalCents != 3000 {
		t.Fatalf("expected 3000, got %d", groups[vendor].SubtotalCents)
	}
}

func TestAllocateManualDuplicateAcrossVendors(t *testing.T) {
	item := lineItem("Widget", "", 1, 1000)
	order := testOrder(item)

	_, _, err := Allocate(order, &Assignment{
		Method: enums.SplitMethodManual,
		Manual: []ManualAssignment{
			{VendorID: uuid.New(), LineItemIDs: []uuid.UUID{item.ID}},
			{VendorID: uuid.New(), LineItemIDs: []uuid.UUID{item.ID}},
		},
	}, nil)
	if kind := allocationKind(t, err); kind != KindDuplicateAllocation {
		t.Fatalf("expected duplicate allocation, got %s", kind)
	}
}

func TestSortedGroupsIsDeterministic(t *testing.T) {
	groups := map[uuid.UUID]*VendorGroup{}
	for i := 0; i < 8; i++ {
		id := uuid.New()
		groups[id] = &VendorGroup{VendorID: id}
	}
	first := SortedGroups(groups)
	for i := 1; i < len(first); i++ {
		if first[i-1].VendorID.String() >= first[i].VendorID.String() {
			t.Fatal("SortedGroups not sorted by vendor id")
		}
	}
	again := SortedGroups(groups)
	for j := range first {
		if first[j].VendorID != again[j].VendorID {
			t.Fatal("SortedGroups order is not stable")
		}
	}
}
