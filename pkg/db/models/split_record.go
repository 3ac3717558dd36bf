package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/vendorsuite/ordersplit-backend/pkg/db/types"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
)

// SplitRecord is the durable link between a split parent and its children.
// The unique index on parent_order_id enforces the single-split invariant at
// the storage layer; the raw assignment payload is retained for audit.
type SplitRecord struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ParentOrderID uuid.UUID         `gorm:"column:parent_order_id;type:uuid;not null;uniqueIndex:ux_split_records_parent"`
	Method        enums.SplitMethod `gorm:"column:method;type:split_method;not null"`
	ChildOrderIDs dbtypes.UUIDArray `gorm:"column:child_order_ids;type:uuid[];not null"`
	Assignment    json.RawMessage   `gorm:"column:assignment;type:jsonb;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
