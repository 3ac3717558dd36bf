package split

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
	pkgerrors "github.com/vendorsuite/ordersplit-backend/pkg/errors"
)

var validate = validator.New()

// ProductAssignment routes one whole line item to one vendor.
type ProductAssignment struct {
	LineItemID uuid.UUID `json:"line_item_id" validate:"required"`
	VendorID   uuid.UUID `json:"vendor_id" validate:"required"`
}

// QuantityAssignment routes a sub-quantity of a line item to a vendor.
type QuantityAssignment struct {
	LineItemID uuid.UUID `json:"line_item_id" validate:"required"`
	VendorID   uuid.UUID `json:"vendor_id" validate:"required"`
	Qty        int       `json:"qty" validate:"required,gt=0"`
}

// CategoryAssignment routes every line item in a category to a vendor.
type CategoryAssignment struct {
	Category string    `json:"category" validate:"required"`
	VendorID uuid.UUID `json:"vendor_id" validate:"required"`
}

// ManualAssignment routes an explicit set of line items to a vendor.
type ManualAssignment struct {
	VendorID    uuid.UUID   `json:"vendor_id" validate:"required"`
	LineItemIDs []uuid.UUID `json:"line_item_ids" validate:"required,min=1,dive,required"`
}

// Assignment is the tagged union of split instructions. Exactly one variant
// slice is populated, matching Method. Malformed payloads are rejected at
// parse time, not during allocation.
type Assignment struct {
	Method     enums.SplitMethod    `json:"method"`
	Products   []ProductAssignment  `json:"products,omitempty"`
	Quantities []QuantityAssignment `json:"quantities,omitempty"`
	Categories []CategoryAssignment `json:"categories,omitempty"`
	Manual     []ManualAssignment   `json:"manual,omitempty"`
}

// ParseAssignment decodes and validates a raw assignment payload.
func ParseAssignment(raw []byte) (*Assignment, error) {
	var a Assignment
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed assignment payload")
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks the union shape: a known method, a populated matching
// variant, and no stray variants from other methods.
func (a *Assignment) Validate() error {
	if a == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment is required")
	}
	if !a.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown split method %q", a.Method))
	}

	populated := 0
	for _, n := range []int{len(a.Products), len(a.Quantities), len(a.Categories), len(a.Manual)} {
		if n > 0 {
			populated++
		}
	}
	if populated > 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "assignment mixes multiple variants")
	}

	var mismatch bool
	switch a.Method {
	case enums.SplitMethodByProduct:
		mismatch = len(a.Products) == 0 && populated > 0
	case enums.SplitMethodByQuantity:
		mismatch = len(a.Quantities) == 0 && populated > 0
	case enums.SplitMethodByCategory:
		mismatch = len(a.Categories) == 0 && populated > 0
	case enums.SplitMethodManual:
		mismatch = len(a.Manual) == 0 && populated > 0
	}
	if mismatch {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("assignment variant does not match method %q", a.Method))
	}

	if err := validate.Struct(a); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assignment").WithDetails(err.Error())
	}
	return nil
}

// isEmpty reports whether no records are present for the declared method.
func (a *Assignment) isEmpty() bool {
	switch a.Method {
	case enums.SplitMethodByProduct:
		return len(a.Products) == 0
	case enums.SplitMethodByQuantity:
		return len(a.Quantities) == 0
	case enums.SplitMethodByCategory:
		return len(a.Categories) == 0
	case enums.SplitMethodManual:
		return len(a.Manual) == 0
	}
	return true
}
