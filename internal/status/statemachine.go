package status

import "github.com/vendorsuite/ordersplit-backend/pkg/enums"

// transitions is the standard order lifecycle. on_hold is entered by the
// split executor directly, never by a caller-requested transition; it exits
// to completed (synchronizer only) or cancelled.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusOnHold:     {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
}

// CanTransition reports whether the standard machine permits moving from one status to another.
func CanTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
