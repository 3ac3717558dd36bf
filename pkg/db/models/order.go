package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
	"github.com/vendorsuite/ordersplit-backend/pkg/types"
)

// Order represents a customer order. A root order has no parent; a split
// child carries its parent's id and the vendor fulfilling it. Splitting is
// single-level: a child never has children of its own.
type Order struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber        int64               `gorm:"column:order_number;not null"`
	CustomerID         uuid.UUID           `gorm:"column:customer_id;type:uuid;not null"`
	BillingAddress     *types.Address      `gorm:"column:billing_address;type:jsonb"`
	ShippingAddress    *types.Address      `gorm:"column:shipping_address;type:jsonb"`
	PaymentMethod      string              `gorm:"column:payment_method;not null"`
	PaymentMethodTitle string              `gorm:"column:payment_method_title;not null;default:''"`
	Currency           enums.Currency      `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status             enums.OrderStatus   `gorm:"column:status;type:order_status;not null;default:'pending'"`
	SubtotalCents      int                 `gorm:"column:subtotal_cents;not null"`
	ShippingTotalCents int                 `gorm:"column:shipping_total_cents;not null;default:0"`
	TaxTotalCents      int                 `gorm:"column:tax_total_cents;not null;default:0"`
	TotalCents         int                 `gorm:"column:total_cents;not null"`
	VendorID           *uuid.UUID          `gorm:"column:vendor_id;type:uuid"`
	ParentOrderID      *uuid.UUID          `gorm:"column:parent_order_id;type:uuid"`
	CreatedVia         string              `gorm:"column:created_via;not null;default:'checkout'"`
	ShippingLine       *types.ShippingLine `gorm:"column:shipping_line;type:jsonb;serializer:json"`
	Items              []OrderLineItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	SplitRecord        *SplitRecord        `gorm:"foreignKey:ParentOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsSplitChild reports whether the order was produced by a split.
func (o *Order) IsSplitChild() bool {
	return o.ParentOrderID != nil
}
