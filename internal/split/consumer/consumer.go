package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/vendorsuite/ordersplit-backend/internal/split"
	"github.com/vendorsuite/ordersplit-backend/internal/status"
	"github.com/vendorsuite/ordersplit-backend/pkg/enums"
	pkgerrors "github.com/vendorsuite/ordersplit-backend/pkg/errors"
	"github.com/vendorsuite/ordersplit-backend/pkg/logger"
	"github.com/vendorsuite/ordersplit-backend/pkg/outbox/idempotency"
)

const splitCommandConsumer = "split-commands"

// Command attribute values routed by the worker.
const (
	CommandExecuteSplit     = "execute_split"
	CommandTransitionStatus = "transition_status"
)

// ExecuteSplitCommand asks the engine to divide an order across vendors.
type ExecuteSplitCommand struct {
	CommandID   uuid.UUID       `json:"command_id"`
	OrderID     uuid.UUID       `json:"order_id"`
	Assignment  json.RawMessage `json:"assignment"`
	ActorUserID uuid.UUID       `json:"actor_user_id,omitempty"`
	ActorRole   string          `json:"actor_role,omitempty"`
}

// TransitionStatusCommand asks the engine to move an order to a new status.
type TransitionStatusCommand struct {
	CommandID   uuid.UUID         `json:"command_id"`
	OrderID     uuid.UUID         `json:"order_id"`
	To          enums.OrderStatus `json:"to"`
	ActorUserID uuid.UUID         `json:"actor_user_id,omitempty"`
	ActorRole   string            `json:"actor_role,omitempty"`
}

// Consumer drives the split engine from command messages. Commands carry
// their own id so redeliveries are absorbed by the idempotency manager.
type Consumer struct {
	splits       split.Service
	statuses     status.Service
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a split command consumer.
func NewConsumer(splits split.Service, statuses status.Service, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if splits == nil {
		return nil, fmt.Errorf("split service required")
	}
	if statuses == nil {
		return nil, fmt.Errorf("status service required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("commands subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		splits:       splits,
		statuses:     statuses,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	command := msg.Attributes["command"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"command":    command,
	})

	switch command {
	case CommandExecuteSplit:
		return c.processExecuteSplit(ctx, logCtx, msg.Data)
	case CommandTransitionStatus:
		return c.processTransitionStatus(ctx, logCtx, msg.Data)
	default:
		c.logg.Info(logCtx, "skipping unknown command")
		return processResult{ack: true}
	}
}

func (c *Consumer) processExecuteSplit(ctx context.Context, logCtx context.Context, data []byte) processResult {
	var cmd ExecuteSplitCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.logg.Error(logCtx, "failed to decode split command", err)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithOrderID(logCtx, cmd.OrderID.String())

	already, result := c.markProcessed(ctx, logCtx, cmd.CommandID)
	if already || result.nack {
		return result
	}

	assignment, err := split.ParseAssignment(cmd.Assignment)
	if err != nil {
		c.logg.Error(logCtx, "rejecting malformed assignment", err)
		return processResult{ack: true}
	}

	childIDs, err := c.splits.Execute(ctx, split.ExecuteInput{
		OrderID:     cmd.OrderID,
		Assignment:  assignment,
		ActorUserID: cmd.ActorUserID,
		ActorRole:   cmd.ActorRole,
	})
	if err != nil {
		return c.commandFailed(ctx, logCtx, cmd.CommandID, "split command failed", err)
	}

	c.logg.Info(c.logg.WithField(logCtx, "child_count", len(childIDs)), "split command applied")
	return processResult{ack: true}
}

func (c *Consumer) processTransitionStatus(ctx context.Context, logCtx context.Context, data []byte) processResult {
	var cmd TransitionStatusCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.logg.Error(logCtx, "failed to decode transition command", err)
		return processResult{ack: true}
	}
	logCtx = c.logg.WithOrderID(logCtx, cmd.OrderID.String())

	already, result := c.markProcessed(ctx, logCtx, cmd.CommandID)
	if already || result.nack {
		return result
	}

	transition, err := c.statuses.Transition(ctx, status.TransitionInput{
		OrderID:     cmd.OrderID,
		To:          cmd.To,
		ActorUserID: cmd.ActorUserID,
		ActorRole:   cmd.ActorRole,
	})
	if err != nil {
		return c.commandFailed(ctx, logCtx, cmd.CommandID, "transition command failed", err)
	}

	if !transition.Applied {
		c.logg.Warn(c.logg.WithField(logCtx, "denied_reason", transition.DeniedReason), "transition command denied")
		return processResult{ack: true}
	}
	if transition.ParentCompleted {
		c.logg.Info(logCtx, "parent order auto-completed")
	}
	return processResult{ack: true}
}

// markProcessed claims the command id. Redelivered commands ack without
// reprocessing; idempotency store failures nack for retry.
func (c *Consumer) markProcessed(ctx context.Context, logCtx context.Context, commandID uuid.UUID) (bool, processResult) {
	if commandID == uuid.Nil {
		c.logg.Warn(logCtx, "command missing id, processing without dedup")
		return false, processResult{}
	}
	already, err := c.idempotency.CheckAndMarkProcessed(ctx, splitCommandConsumer, commandID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return false, processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "command already processed")
		return true, processResult{ack: true}
	}
	return false, processResult{}
}

// commandFailed decides retryability from the error code. Transient
// dependency and contention failures retry; everything else is final.
func (c *Consumer) commandFailed(ctx context.Context, logCtx context.Context, commandID uuid.UUID, msg string, err error) processResult {
	c.logg.Error(logCtx, msg, err)
	if retryable(err) {
		if commandID != uuid.Nil {
			_ = c.idempotency.Delete(ctx, splitCommandConsumer, commandID)
		}
		return processResult{nack: true}
	}
	return processResult{ack: true}
}

func retryable(err error) bool {
	appErr := pkgerrors.As(err)
	if appErr == nil {
		// Untyped errors are infrastructure surprises; let them retry.
		return true
	}
	return appErr.Code().Retryable()
}
