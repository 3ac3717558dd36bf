package status

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vendorsuite/ordersplit-backend/pkg/db/models"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
	pkgerrors "github.com/vendorsuite/ordersplit-backend/pkg/errors"
	"github.com/vendorsuite/ordersplit-backend/pkg/logger"
	"github.com/vendorsuite/ordersplit-backend/pkg/metrics"
	"github.com/vendorsuite/ordersplit-backend/pkg/outbox"
	"github.com/vendorsuite/ordersplit-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ErrOrderNotFound reports an unknown order id.
var ErrOrderNotFound = pkgerrors.New(pkgerrors.CodeNotFound, "order not found")

// ErrSyncContended reports that another synchronizer currently holds the
// per-parent lock. Callers may retry.
var ErrSyncContended = pkgerrors.New(pkgerrors.CodeConflict, "concurrent status update in progress")

// TransitionInput carries a requested status change with the acting identity.
type TransitionInput struct {
	OrderID     uuid.UUID
	To          enums.OrderStatus
	ActorUserID uuid.UUID
	ActorRole   string
}

// TransitionResult reports the outcome. A denied transition is a normal
// result, not an error: Applied is false and DeniedReason names the rule.
type TransitionResult struct {
	OrderID         uuid.UUID
	From            enums.OrderStatus
	To              enums.OrderStatus
	Applied         bool
	DeniedReason    string
	ParentCompleted bool
	ParentOrderID   *uuid.UUID
}

// Service applies status transitions and keeps split parents and children
// consistent. It must be the single entry point for status writes.
type Service interface {
	Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	locker  Locker
	logg    *logger.Logger
	metrics *metrics.SplitMetrics
}

// NewService builds the synchronizer. Locker and metrics may be nil; a nil
// locker relies on the parent row lock taken ahead of the sibling check in
// the roll-up, which serializes racing child completions by itself.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher, locker Locker, logg *logger.Logger, splitMetrics *metrics.SplitMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("status repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outboxSvc,
		locker:  locker,
		logg:    logg,
		metrics: splitMetrics,
	}, nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*TransitionResult, error) {
	if !input.To.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown order status %q", input.To))
	}

	// Resolve the lock scope before opening the transaction: siblings racing
	// to complete must serialize on their shared parent, not on themselves.
	scopeID, err := s.lockScopeID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if s.locker != nil {
		release, ok, err := s.locker.Acquire(ctx, scopeID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring status lock")
		}
		if !ok {
			return nil, ErrSyncContended
		}
		defer func() {
			if releaseErr := release(ctx); releaseErr != nil {
				s.logg.Warn(s.logg.WithField(ctx, "error", releaseErr.Error()), "releasing status lock failed")
			}
		}()
	}

	var result *TransitionResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindOrderForUpdate(ctx, input.OrderID)
		if err != nil {
			return loadError(err)
		}

		result = &TransitionResult{OrderID: order.ID, From: order.Status, To: input.To, ParentOrderID: order.ParentOrderID}

		if order.Status == input.To {
			result.DeniedReason = "status unchanged"
			return nil
		}

		// A split parent only ever completes through the child roll-up below.
		if order.SplitRecord != nil && input.To == enums.OrderStatusCompleted {
			result.DeniedReason = "split parent completes automatically when all children are completed"
			return nil
		}

		if !CanTransition(order.Status, input.To) {
			result.DeniedReason = fmt.Sprintf("transition %s -> %s not allowed", order.Status, input.To)
			return nil
		}

		if err := s.applyTransition(ctx, tx, repo, order, input.To, input.ActorUserID, input.ActorRole); err != nil {
			return err
		}
		result.Applied = true

		if order.ParentOrderID != nil && input.To == enums.OrderStatusCompleted {
			completed, err := s.rollUpToParent(ctx, tx, repo, *order.ParentOrderID, input.ActorUserID, input.ActorRole)
			if err != nil {
				return err
			}
			result.ParentCompleted = completed
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// lockScopeID picks the id the per-parent lock is keyed on: the parent for a
// split child, the order itself otherwise.
func (s *service) lockScopeID(ctx context.Context, orderID uuid.UUID) (uuid.UUID, error) {
	order, err := s.repo.FindOrder(ctx, orderID)
	if err != nil {
		return uuid.Nil, loadError(err)
	}
	if order.ParentOrderID != nil {
		return *order.ParentOrderID, nil
	}
	return order.ID, nil
}

func (s *service) applyTransition(ctx context.Context, tx *gorm.DB, repo Repository, order *models.Order, to enums.OrderStatus, actorUserID uuid.UUID, actorRole string) error {
	if err := repo.UpdateStatus(ctx, order.ID, to); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating order status")
	}

	event := outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Actor:         actorRef(actorUserID, actorRole),
		Version:       1,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:       order.ID,
			ParentOrderID: order.ParentOrderID,
			VendorID:      order.VendorID,
			From:          order.Status,
			To:            to,
			ChangedAt:     time.Now().UTC(),
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emitting status event")
	}
	s.metrics.IncTransition(to.String())
	return nil
}

// rollUpToParent completes the parent when the last outstanding child has
// completed. The parent row is locked before the sibling statuses are read:
// concurrent sibling completions serialize on that lock, so whichever
// transaction commits last observes the full completed set and performs the
// roll-up exactly once.
func (s *service) rollUpToParent(ctx context.Context, tx *gorm.DB, repo Repository, parentID uuid.UUID, actorUserID uuid.UUID, actorRole string) (bool, error) {
	parent, err := repo.FindOrderForUpdate(ctx, parentID)
	if err != nil {
		return false, loadError(err)
	}
	if parent.Status == enums.OrderStatusCompleted {
		return false, nil
	}

	statuses, err := repo.ChildStatuses(ctx, parentID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading sibling statuses")
	}
	for _, status := range statuses {
		if status != enums.OrderStatusCompleted {
			return false, nil
		}
	}

	if !CanTransition(parent.Status, enums.OrderStatusCompleted) {
		return false, nil
	}

	if err := repo.UpdateStatus(ctx, parent.ID, enums.OrderStatusCompleted); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "completing parent order")
	}

	statusEvent := outbox.DomainEvent{
		EventType:     enums.EventOrderStatusChanged,
		AggregateType: enums.AggregateOrder,
		AggregateID:   parent.ID,
		Actor:         actorRef(actorUserID, actorRole),
		Version:       1,
		Data: payloads.OrderStatusChangedEvent{
			OrderID:   parent.ID,
			From:      parent.Status,
			To:        enums.OrderStatusCompleted,
			ChangedAt: time.Now().UTC(),
		},
	}
	if err := s.outbox.Emit(ctx, tx, statusEvent); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emitting parent status event")
	}

	autoEvent := outbox.DomainEvent{
		EventType:     enums.EventOrderAutoCompleted,
		AggregateType: enums.AggregateOrder,
		AggregateID:   parent.ID,
		Version:       1,
		Data: payloads.OrderAutoCompletedEvent{
			ParentOrderID: parent.ID,
			CompletedAt:   time.Now().UTC(),
		},
	}
	if err := s.outbox.EmitIfNotExists(ctx, tx, autoEvent); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emitting auto-complete event")
	}

	s.metrics.IncTransition(enums.OrderStatusCompleted.String())
	logCtx := s.logg.WithOrderID(ctx, parent.ID.String())
	s.logg.Info(logCtx, "split parent auto-completed")
	return true, nil
}

func actorRef(userID uuid.UUID, role string) *outbox.ActorRef {
	if userID == uuid.Nil {
		return nil
	}
	return &outbox.ActorRef{UserID: userID, Role: role}
}

func loadError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrOrderNotFound
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
}
