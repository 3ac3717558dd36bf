package split

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
	dbtypes "github.com/vendorsuite/ordersplit-backend/pkg/db/types"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
)

func setupSplitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL,
  customer_id TEXT NOT NULL,
  billing_address TEXT,
  shipping_address TEXT,
  payment_method TEXT NOT NULL DEFAULT '',
  payment_method_title TEXT NOT NULL DEFAULT '',
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'pending',
  subtotal_cents INTEGER NOT NULL,
  shipping_total_cents INTEGER NOT NULL DEFAULT 0,
  tax_total_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  vendor_id TEXT,
  parent_order_id TEXT,
  created_via TEXT NOT NULL DEFAULT 'checkout',
  shipping_line TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  category TEXT NOT NULL DEFAULT '',
  qty INTEGER NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  parent_item_id TEXT,
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	splitRecords := `
CREATE TABLE IF NOT EXISTS split_records (
  id TEXT PRIMARY KEY,
  parent_order_id TEXT NOT NULL UNIQUE,
  method TEXT NOT NULL,
  child_order_ids TEXT NOT NULL,
  assignment TEXT NOT NULL,
  created_at DATETIME
);`
	orderNotes := `
CREATE TABLE IF NOT EXISTS order_notes (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  note TEXT NOT NULL,
  author_user_id TEXT,
  created_at DATETIME
);`
	for _, ddl := range []string{orders, orderLineItems, splitRecords, orderNotes} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, order *models.Order) {
	t.Helper()
	require.NoError(t, db.Create(order).Error)
}

func TestRepositoryFindOrderPreloadsItems(t *testing.T) {
	db := setupSplitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := testOrder(
		lineItem("Widget", "tools", 2, 2000),
		lineItem("Gadget", "tools", 1, 1500),
	)
	seedOrder(t, db, order)

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)
	assert.Len(t, found.Items, 2)
	assert.Nil(t, found.SplitRecord)
}

func TestRepositoryFindOrderNotFound(t *testing.T) {
	db := setupSplitTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindOrder(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreateOrderWithItems(t *testing.T) {
	db := setupSplitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	parentID := uuid.New()
	vendorID := uuid.New()
	child := testOrder(lineItem("Widget", "", 1, 1000))
	child.ParentOrderID = &parentID
	child.VendorID = &vendorID
	child.CreatedVia = CreatedViaSplit
	for i := range child.Items {
		child.Items[i].OrderID = child.ID
	}

	require.NoError(t, repo.CreateOrder(ctx, child))

	found, err := repo.FindOrder(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, CreatedViaSplit, found.CreatedVia)
	require.NotNil(t, found.ParentOrderID)
	assert.Equal(t, parentID, *found.ParentOrderID)
	assert.Len(t, found.Items, 1)
}

func TestRepositorySplitRecordRoundTrip(t *testing.T) {
	db := setupSplitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	parent := testOrder(lineItem("Widget", "", 1, 1000))
	seedOrder(t, db, parent)

	children := dbtypes.UUIDArray{uuid.New(), uuid.New()}
	record := &models.SplitRecord{
		ID:            uuid.New(),
		ParentOrderID: parent.ID,
		Method:        enums.SplitMethodByProduct,
		ChildOrderIDs: children,
		Assignment:    json.RawMessage(`{"method":"by_product"}`),
	}
	require.NoError(t, repo.CreateSplitRecord(ctx, record))

	found, err := repo.FindOrderForSplit(ctx, parent.ID)
	require.NoError(t, err)
	require.NotNil(t, found.SplitRecord)
	assert.Equal(t, record.ID, found.SplitRecord.ID)
	assert.Equal(t, children, found.SplitRecord.ChildOrderIDs)
}

func TestRepositorySecondSplitRecordRejected(t *testing.T) {
	db := setupSplitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	parent := testOrder(lineItem("Widget", "", 1, 1000))
	seedOrder(t, db, parent)

	first := &models.SplitRecord{
		ID:            uuid.New(),
		ParentOrderID: parent.ID,
		Method:        enums.SplitMethodByProduct,
		ChildOrderIDs: dbtypes.UUIDArray{uuid.New()},
		Assignment:    json.RawMessage(`{}`),
	}
	require.NoError(t, repo.CreateSplitRecord(ctx, first))

	second := &models.SplitRecord{
		ID:            uuid.New(),
		ParentOrderID: parent.ID,
		Method:        enums.SplitMethodManual,
		ChildOrderIDs: dbtypes.UUIDArray{uuid.New()},
		Assignment:    json.RawMessage(`{}`),
	}
	assert.Error(t, repo.CreateSplitRecord(ctx, second))
}

func TestRepositoryUpdateOrderStatus(t *testing.T) {
	db := setupSplitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := testOrder(lineItem("Widget", "", 1, 1000))
	seedOrder(t, db, order)

	require.NoError(t, repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusOnHold))

	found, err := repo.FindOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusOnHold, found.Status)
}

func TestRepositoryCreateOrderNotes(t *testing.T) {
	db := setupSplitTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := testOrder(lineItem("Widget", "", 1, 1000))
	seedOrder(t, db, order)

	author := uuid.New()
	notes := []models.OrderNote{
		{ID: uuid.New(), OrderID: order.ID, Note: "Order split into 2 vendor orders.", AuthorUserID: &author},
		{ID: uuid.New(), OrderID: order.ID, Note: "manual follow-up"},
	}
	require.NoError(t, repo.CreateOrderNotes(ctx, notes))

	var count int64
	require.NoError(t, db.Model(&models.OrderNote{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
