package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
)

// OrderSplitEvent is emitted once when a parent order is divided into
// per-vendor child orders.
type OrderSplitEvent struct {
	ParentOrderID uuid.UUID         `json:"parent_order_id"`
	ChildOrderIDs []uuid.UUID       `json:"child_order_ids"`
	Method        enums.SplitMethod `json:"method"`
	VendorIDs     []uuid.UUID       `json:"vendor_ids"`
	SplitAt       time.Time         `json:"split_at"`
}

// OrderStatusChangedEvent reports every accepted status transition on a
// parent or child order.
type OrderStatusChangedEvent struct {
	OrderID       uuid.UUID         `json:"order_id"`
	ParentOrderID *uuid.UUID        `json:"parent_order_id,omitempty"`
	VendorID      *uuid.UUID        `json:"vendor_id,omitempty"`
	From          enums.OrderStatus `json:"from"`
	To            enums.OrderStatus `json:"to"`
	ChangedAt     time.Time         `json:"changed_at"`
}

// OrderAutoCompletedEvent signals that a parent order was completed because
// its last outstanding child reached completed.
type OrderAutoCompletedEvent struct {
	ParentOrderID uuid.UUID `json:"parent_order_id"`
	CompletedAt   time.Time `json:"completed_at"`
}
