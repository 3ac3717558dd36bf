package split

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
)

// Allocate groups the order's line items into per-vendor groups according to
// the assignment. It is pure: the categories map is the only collaborator
// input, consumed by the by_category path. Warnings carry items a
// by_category split left unallocated.
func Allocate(order *models.Order, assignment *Assignment, categories map[uuid.UUID]string) (map[uuid.UUID]*VendorGroup, []Warning, error) {
	if assignment == nil || assignment.isEmpty() {
		return nil, nil, newAllocationError(KindNoAssignments, "assignment list is empty")
	}

	itemsByID := make(map[uuid.UUID]*models.OrderLineItem, len(order.Items))
	for i := range order.Items {
		itemsByID[order.Items[i].ID] = &order.Items[i]
	}

	switch assignment.Method {
	case enums.SplitMethodByProduct:
		return allocateByProduct(itemsByID, assignment.Products)
	case enums.SplitMethodByQuantity:
		return allocateByQuantity(itemsByID, assignment.Quantities)
	case enums.SplitMethodByCategory:
		return allocateByCategory(order.Items, assignment.Categories, categories)
	case enums.SplitMethodManual:
		return allocateManual(itemsByID, assignment.Manual)
	}
	return nil, nil, newAllocationError(KindUnknownMethod, fmt.Sprintf("method %q", assignment.Method))
}

func allocateByProduct(items map[uuid.UUID]*models.OrderLineItem, records []ProductAssignment) (map[uuid.UUID]*VendorGroup, []Warning, error) {
	groups := map[uuid.UUID]*VendorGroup{}
	claimed := map[uuid.UUID]bool{}

	for _, rec := range records {
		item, ok := items[rec.LineItemID]
		if !ok {
			return nil, nil, &AllocationError{Kind: KindUnknownLineItem, LineItemID: rec.LineItemID, VendorID: rec.VendorID}
		}
		if claimed[rec.LineItemID] {
			return nil, nil, &AllocationError{Kind: KindDuplicateAllocation, LineItemID: rec.LineItemID, VendorID: rec.VendorID}
		}
		claimed[rec.LineItemID] = true
		addWholeItem(groups, rec.VendorID, item)
	}
	return groups, nil, nil
}

func allocateByQuantity(items map[uuid.UUID]*models.OrderLineItem, records []QuantityAssignment) (map[uuid.UUID]*VendorGroup, []Warning, error) {
	groups := map[uuid.UUID]*VendorGroup{}
	assignedQty := map[uuid.UUID]int{}
	allocatedSubtotal := map[uuid.UUID]int{}
	allocatedTotal := map[uuid.UUID]int{}

	for _, rec := range records {
		item, ok := items[rec.LineItemID]
		if !ok {
			return nil, nil, &AllocationError{Kind: KindUnknownLineItem, LineItemID: rec.LineItemID, VendorID: rec.VendorID}
		}
		assignedQty[rec.LineItemID] += rec.Qty
		if assignedQty[rec.LineItemID] > item.Qty {
			return nil, nil, &AllocationError{
				Kind:       KindQuantityOverflow,
				LineItemID: rec.LineItemID,
				VendorID:   rec.VendorID,
				Detail:     fmt.Sprintf("assigned %d of %d", assignedQty[rec.LineItemID], item.Qty),
			}
		}

		// The share consuming an item's final units takes whatever the
		// earlier rounded shares left, so the shares always reconcile to the
		// item's own amounts exactly.
		var subtotalShare, totalShare int
		if assignedQty[rec.LineItemID] == item.Qty {
			subtotalShare = item.SubtotalCents - allocatedSubtotal[rec.LineItemID]
			totalShare = item.TotalCents - allocatedTotal[rec.LineItemID]
		} else {
			subtotalShare = quantityShare(item.SubtotalCents, item.Qty, rec.Qty)
			totalShare = quantityShare(item.TotalCents, item.Qty, rec.Qty)
		}
		allocatedSubtotal[rec.LineItemID] += subtotalShare
		allocatedTotal[rec.LineItemID] += totalShare

		group := groupFor(groups, rec.VendorID)
		allocated := AllocatedItem{
			LineItemID:    item.ID,
			ProductID:     item.ProductID,
			Name:          item.Name,
			Category:      item.Category,
			Qty:           rec.Qty,
			SubtotalCents: subtotalShare,
			TotalCents:    totalShare,
			Metadata:      item.Metadata,
		}
		group.Items = append(group.Items, allocated)
		group.SubtotalCents += allocated.SubtotalCents
		group.TotalCents += allocated.TotalCents
	}

	// No silent leftover: every unit of every referenced item must be routed.
	for id, qty := range assignedQty {
		if item := items[id]; item != nil && qty < item.Qty {
			return nil, nil, &AllocationError{
				Kind:       KindQuantityOverflow,
				LineItemID: id,
				Detail:     fmt.Sprintf("only %d of %d units assigned", qty, item.Qty),
			}
		}
	}
	return groups, nil, nil
}

func allocateByCategory(items []models.OrderLineItem, records []CategoryAssignment, categories map[uuid.UUID]string) (map[uuid.UUID]*VendorGroup, []Warning, error) {
	groups := map[uuid.UUID]*VendorGroup{}
	vendorByCategory := map[string]uuid.UUID{}
	for _, rec := range records {
		vendorByCategory[rec.Category] = rec.VendorID
	}

	var warnings []Warning
	for i := range items {
		item := &items[i]
		category := item.Category
		if resolved, ok := categories[item.ProductID]; ok && resolved != "" {
			category = resolved
		}
		vendorID, ok := vendorByCategory[category]
		if !ok {
			warnings = append(warnings, Warning{
				LineItemID: item.ID,
				Message:    fmt.Sprintf("item %q matches no assigned category and was left unallocated", item.Name),
			})
			continue
		}
		addWholeItem(groups, vendorID, item)
	}
	return groups, warnings, nil
}

func allocateManual(items map[uuid.UUID]*models.OrderLineItem, records []ManualAssignment) (map[uuid.UUID]*VendorGroup, []Warning, error) {
	groups := map[uuid.UUID]*VendorGroup{}
	claimed := map[uuid.UUID]bool{}

	for _, rec := range records {
		for _, itemID := range rec.LineItemIDs {
			item, ok := items[itemID]
			if !ok {
				return nil, nil, &AllocationError{Kind: KindUnknownLineItem, LineItemID: itemID, VendorID: rec.VendorID}
			}
			if claimed[itemID] {
				return nil, nil, &AllocationError{Kind: KindDuplicateAllocation, LineItemID: itemID, VendorID: rec.VendorID}
			}
			claimed[itemID] = true
			addWholeItem(groups, rec.VendorID, item)
		}
	}
	return groups, nil, nil
}

func groupFor(groups map[uuid.UUID]*VendorGroup, vendorID uuid.UUID) *VendorGroup {
	group, ok := groups[vendorID]
	if !ok {
		group = &VendorGroup{VendorID: vendorID}
		groups[vendorID] = group
	}
	return group
}

func addWholeItem(groups map[uuid.UUID]*VendorGroup, vendorID uuid.UUID, item *models.OrderLineItem) {
	group := groupFor(groups, vendorID)
	group.Items = append(group.Items, AllocatedItem{
		LineItemID:    item.ID,
		ProductID:     item.ProductID,
		Name:          item.Name,
		Category:      item.Category,
		Qty:           item.Qty,
		SubtotalCents: item.SubtotalCents,
		TotalCents:    item.TotalCents,
		Metadata:      item.Metadata,
	})
	group.SubtotalCents += item.SubtotalCents
	group.TotalCents += item.TotalCents
}

// quantityShare computes (total / quantity) * qty in cents, rounded
// half-to-even. Callers hand the final share of an item the exact remainder
// instead.
func quantityShare(totalCents, itemQty, qty int) int {
	if itemQty <= 0 {
		return 0
	}
	if qty == itemQty {
		return totalCents
	}
	share := decimal.NewFromInt(int64(totalCents)).
		Mul(decimal.NewFromInt(int64(qty))).
		Div(decimal.NewFromInt(int64(itemQty)))
	return int(share.RoundBank(0).IntPart())
}

// SortedGroups returns the groups in a stable vendor-id order so previews,
// child creation and event payloads are deterministic.
func SortedGroups(groups map[uuid.UUID]*VendorGroup) []*VendorGroup {
	out := make([]*VendorGroup, 0, len(groups))
	for _, group := range groups {
		out = append(out, group)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].VendorID.String() < out[j].VendorID.String()
	})
	return out
}
