package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/pkg/types"
)

// OrderLineItem captures the snapshot of each item within an order. Subtotal
// and total are tracked independently because discounts may make them differ.
type OrderLineItem struct {
	ID            uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID     `gorm:"column:order_id;type:uuid;not null"`
	ProductID     uuid.UUID     `gorm:"column:product_id;type:uuid;not null"`
	Name          string        `gorm:"column:name;not null"`
	Category      string        `gorm:"column:category;not null;default:''"`
	Qty           int           `gorm:"column:qty;not null"`
	SubtotalCents int           `gorm:"column:subtotal_cents;not null"`
	TotalCents    int           `gorm:"column:total_cents;not null"`
	ParentItemID  *uuid.UUID    `gorm:"column:parent_item_id;type:uuid"`
	Metadata      types.JSONMap `gorm:"column:metadata;type:jsonb;serializer:json"`
	CreatedAt     time.Time     `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
