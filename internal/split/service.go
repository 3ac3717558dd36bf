package split

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorsuite/ordersplit-backend/internal/catalog"
	"github.com/vendorsuite/ordersplit-backend/internal/vendors"
	dbpkg "github.com/vendorsuite/ordersplit-backend/pkg/db"
	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
	dbtypes "github.com/vendorsuite/ordersplit-backend/pkg/db/types"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
	pkgerrors "github.com/vendorsuite/ordersplit-backend/pkg/errors"
	"github.com/vendorsuite/ordersplit-backend/pkg/logger"
	"github.com/vendorsuite/ordersplit-backend/pkg/metrics"
	"github.com/vendorsuite/ordersplit-backend/pkg/outbox"
	"github.com/vendorsuite/ordersplit-backend/pkg/outbox/payloads"
	"github.com/vendorsuite/ordersplit-backend/pkg/types"
)

// CreatedViaSplit marks child orders produced by the executor.
const CreatedViaSplit = "order_split"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// PreviewInput identifies the order and assignment to project.
type PreviewInput struct {
	OrderID    uuid.UUID
	Assignment *Assignment
}

// ExecuteInput identifies the order, assignment and acting identity for a
// committed split.
type ExecuteInput struct {
	OrderID     uuid.UUID
	Assignment  *Assignment
	ActorUserID uuid.UUID
	ActorRole   string
}

// Service divides a multi-vendor order into per-vendor child orders.
type Service interface {
	Preview(ctx context.Context, input PreviewInput) (*PreviewReport, error)
	Execute(ctx context.Context, input ExecuteInput) ([]uuid.UUID, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	vendors vendors.Directory
	catalog catalog.Service
	logg    *logger.Logger
	metrics *metrics.SplitMetrics
}

// NewService builds the split service with its collaborators. Metrics may be
// nil; everything else is required.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, directory vendors.Directory, catalogSvc catalog.Service, logg *logger.Logger, splitMetrics *metrics.SplitMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("split repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if directory == nil {
		return nil, fmt.Errorf("vendor directory required")
	}
	if catalogSvc == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outboxSvc,
		vendors: directory,
		catalog: catalogSvc,
		logg:    logg,
		metrics: splitMetrics,
	}, nil
}

// Preview projects the split without touching persisted state. It shares the
// allocation and distribution code path with Execute so the two never
// disagree on amounts.
func (s *service) Preview(ctx context.Context, input PreviewInput) (*PreviewReport, error) {
	order, err := s.repo.FindOrder(ctx, input.OrderID)
	if err != nil {
		return nil, orderLoadError(err)
	}

	groups, warnings, err := s.allocateAndDistribute(ctx, order, input.Assignment)
	if err != nil {
		return nil, err
	}

	sorted := SortedGroups(groups)
	vendorIDs := make([]uuid.UUID, 0, len(sorted))
	for _, group := range sorted {
		vendorIDs = append(vendorIDs, group.VendorID)
	}
	names, err := s.vendors.DisplayNames(ctx, vendorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving vendor names")
	}

	report := &PreviewReport{ParentOrderID: order.ID, Warnings: warnings}
	for _, group := range sorted {
		report.Vendors = append(report.Vendors, PreviewVendor{
			VendorID:        group.VendorID,
			VendorName:      names[group.VendorID],
			Items:           group.Items,
			SubtotalCents:   group.SubtotalCents,
			TotalCents:      group.TotalCents,
			ShippingCents:   group.ShippingCents,
			TaxCents:        group.TaxCents,
			GrandTotalCents: group.GrandTotalCents,
		})
	}
	s.metrics.IncPreview()
	return report, nil
}

// Execute performs the split as one atomic unit: child orders, split record,
// parent hold and the outbox notification all commit together or not at all.
func (s *service) Execute(ctx context.Context, input ExecuteInput) ([]uuid.UUID, error) {
	started := time.Now()
	method := ""
	if input.Assignment != nil {
		method = input.Assignment.Method.String()
	}

	childIDs, err := s.execute(ctx, input)
	if err != nil {
		s.metrics.IncSplitFailure(method)
		return nil, err
	}
	s.metrics.IncSplit(method)
	s.metrics.ObserveSplitDuration(method, time.Since(started))
	return childIDs, nil
}

func (s *service) execute(ctx context.Context, input ExecuteInput) ([]uuid.UUID, error) {
	// Validation failures must not open a transaction at all.
	if input.Assignment == nil {
		return nil, newAllocationError(KindNoAssignments, "assignment is required")
	}
	if err := input.Assignment.Validate(); err != nil {
		return nil, err
	}

	var childIDs []uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderForSplit(ctx, input.OrderID)
		if err != nil {
			return orderLoadError(err)
		}
		if order.SplitRecord != nil {
			return ErrAlreadySplit
		}
		if order.IsSplitChild() {
			return ErrIsChildOrder
		}

		groups, _, err := s.allocateAndDistribute(ctx, order, input.Assignment)
		if err != nil {
			return err
		}
		if len(groups) == 0 {
			return newAllocationError(KindNoAssignments, "assignment produced no vendor groups")
		}

		sorted := SortedGroups(groups)
		children := make([]*models.Order, 0, len(sorted))
		for _, group := range sorted {
			child := buildChildOrder(order, group)
			if err := repo.CreateOrder(ctx, child); err != nil {
				return splitFailed(err)
			}
			children = append(children, child)
			childIDs = append(childIDs, child.ID)

			childCtx := s.logg.WithVendorID(s.logg.WithOrderID(ctx, child.ID.String()), group.VendorID.String())
			s.logg.Info(childCtx, "child order created")
		}

		rawAssignment, err := json.Marshal(input.Assignment)
		if err != nil {
			return splitFailed(err)
		}
		record := &models.SplitRecord{
			ID:            uuid.New(),
			ParentOrderID: order.ID,
			Method:        input.Assignment.Method,
			ChildOrderIDs: dbtypes.UUIDArray(childIDs),
			Assignment:    rawAssignment,
		}
		if err := repo.CreateSplitRecord(ctx, record); err != nil {
			if dbpkg.IsUniqueViolation(err, "ux_split_records_parent") {
				return ErrAlreadySplit
			}
			return splitFailed(err)
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusOnHold); err != nil {
			return splitFailed(err)
		}

		if err := repo.CreateOrderNotes(ctx, splitNotes(order, children, input.ActorUserID)); err != nil {
			return splitFailed(err)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderSplit,
			AggregateType: enums.AggregateSplitRecord,
			AggregateID:   record.ID,
			Actor:         actorRef(input.ActorUserID, input.ActorRole),
			Version:       1,
			Data: payloads.OrderSplitEvent{
				ParentOrderID: order.ID,
				ChildOrderIDs: childIDs,
				Method:        input.Assignment.Method,
				VendorIDs:     vendorIDsOf(sorted),
				SplitAt:       time.Now().UTC(),
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return splitFailed(err)
		}

		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":    order.ID.String(),
			"method":      input.Assignment.Method,
			"child_count": len(childIDs),
		})
		s.logg.Info(logCtx, "order split committed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return childIDs, nil
}

// allocateAndDistribute is the single code path behind Preview and Execute.
func (s *service) allocateAndDistribute(ctx context.Context, order *models.Order, assignment *Assignment) (map[uuid.UUID]*VendorGroup, []Warning, error) {
	if assignment == nil {
		return nil, nil, newAllocationError(KindNoAssignments, "assignment is required")
	}
	if err := assignment.Validate(); err != nil {
		return nil, nil, err
	}

	var categories map[uuid.UUID]string
	if assignment.Method == enums.SplitMethodByCategory {
		productIDs := make([]uuid.UUID, 0, len(order.Items))
		for _, item := range order.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		resolved, err := s.catalog.CategoriesByProduct(ctx, productIDs)
		if err != nil {
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving product categories")
		}
		categories = resolved
	}

	groups, warnings, err := Allocate(order, assignment, categories)
	if err != nil {
		return nil, nil, err
	}
	return Distribute(order, groups), warnings, nil
}

func buildChildOrder(parent *models.Order, group *VendorGroup) *models.Order {
	vendorID := group.VendorID
	parentID := parent.ID
	child := &models.Order{
		ID:                 uuid.New(),
		OrderNumber:        parent.OrderNumber,
		CustomerID:         parent.CustomerID,
		BillingAddress:     parent.BillingAddress,
		ShippingAddress:    parent.ShippingAddress,
		PaymentMethod:      parent.PaymentMethod,
		PaymentMethodTitle: parent.PaymentMethodTitle,
		Currency:           parent.Currency,
		Status:             enums.OrderStatusProcessing,
		SubtotalCents:      group.SubtotalCents,
		ShippingTotalCents: group.ShippingCents,
		TaxTotalCents:      group.TaxCents,
		TotalCents:         group.GrandTotalCents,
		VendorID:           &vendorID,
		ParentOrderID:      &parentID,
		CreatedVia:         CreatedViaSplit,
		ShippingLine: &types.ShippingLine{
			Code:       "split_share",
			Title:      "Shipping (split share)",
			PriceCents: group.ShippingCents,
		},
	}
	for _, allocated := range group.Items {
		sourceID := allocated.LineItemID
		child.Items = append(child.Items, models.OrderLineItem{
			ID:            uuid.New(),
			OrderID:       child.ID,
			ProductID:     allocated.ProductID,
			Name:          allocated.Name,
			Category:      allocated.Category,
			Qty:           allocated.Qty,
			SubtotalCents: allocated.SubtotalCents,
			TotalCents:    allocated.TotalCents,
			ParentItemID:  &sourceID,
			Metadata:      allocated.Metadata,
		})
	}
	return child
}

func splitNotes(parent *models.Order, children []*models.Order, actorUserID uuid.UUID) []models.OrderNote {
	var author *uuid.UUID
	if actorUserID != uuid.Nil {
		author = &actorUserID
	}
	notes := []models.OrderNote{{
		ID:           uuid.New(),
		OrderID:      parent.ID,
		Note:         fmt.Sprintf("Order split into %d vendor orders.", len(children)),
		AuthorUserID: author,
	}}
	for _, child := range children {
		notes = append(notes, models.OrderNote{
			ID:           uuid.New(),
			OrderID:      child.ID,
			Note:         fmt.Sprintf("Created via order split from order #%d.", parent.OrderNumber),
			AuthorUserID: author,
		})
	}
	return notes
}

func actorRef(userID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}

func vendorIDsOf(groups []*VendorGroup) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(groups))
	for _, group := range groups {
		ids = append(ids, group.VendorID)
	}
	return ids
}

func orderLoadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
}
