package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderNote is an append-only audit line attached to an order. The split
// executor records one on the parent and each child it creates.
type OrderNote struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	Note         string     `gorm:"column:note;not null"`
	AuthorUserID *uuid.UUID `gorm:"column:author_user_id;type:uuid"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}
