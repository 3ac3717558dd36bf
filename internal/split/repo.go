package split

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
)

// Repository is the order store surface the split engine needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderForSplit(ctx context.Context, id uuid.UUID) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateSplitRecord(ctx context.Context, record *models.SplitRecord) error
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	CreateOrderNotes(ctx context.Context, notes []models.OrderNote) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a split repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("SplitRecord").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindOrderForSplit loads the order with its row locked for the calling
// transaction, serializing concurrent split attempts on the same parent.
func (r *repository) FindOrderForSplit(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := r.db.WithContext(ctx)
	// sqlite (tests) has no row locks; single-writer semantics cover it.
	if r.db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "orders"}})
	}
	var order models.Order
	err := query.
		Preload("Items").
		Preload("SplitRecord").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateSplitRecord(ctx context.Context, record *models.SplitRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) CreateOrderNotes(ctx context.Context, notes []models.OrderNote) error {
	if len(notes) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notes).Error
}
