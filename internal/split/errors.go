package split

import (
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/vendorsuite/ordersplit-backend/pkg/errors"
)

// AllocationErrorKind enumerates the validation failures an assignment can
// produce. None of them mutate state.
type AllocationErrorKind string

const (
	KindNoAssignments       AllocationErrorKind = "no_assignments"
	KindUnknownLineItem     AllocationErrorKind = "unknown_line_item"
	KindDuplicateAllocation AllocationErrorKind = "duplicate_allocation"
	KindQuantityOverflow    AllocationErrorKind = "quantity_overflow"
	KindUnknownMethod       AllocationErrorKind = "unknown_method"
)

// AllocationError reports a rejected assignment with the offending
// identifiers so callers can render a specific message.
type AllocationError struct {
	Kind       AllocationErrorKind
	LineItemID uuid.UUID
	VendorID   uuid.UUID
	Detail     string
}

func (e *AllocationError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("allocation rejected: %s", e.Kind)
	if e.LineItemID != uuid.Nil {
		msg += fmt.Sprintf(" (line item %s)", e.LineItemID)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func newAllocationError(kind AllocationErrorKind, detail string) *AllocationError {
	return &AllocationError{Kind: kind, Detail: detail}
}

// Precondition errors. State guards, checked before any mutation.
var (
	ErrAlreadySplit  = pkgerrors.New(pkgerrors.CodeStateConflict, "order already split")
	ErrIsChildOrder  = pkgerrors.New(pkgerrors.CodeStateConflict, "cannot split a split child order")
	ErrOrderNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
)

// splitFailed wraps a storage error after rollback. The cause stays available
// through Unwrap for diagnostics but is not part of the public message.
func splitFailed(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "split failed")
}
