package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder       OutboxAggregateType = "order"
	AggregateSplitRecord OutboxAggregateType = "split_record"
)

func (a OutboxAggregateType) IsValid() bool {
	switch a {
	case AggregateOrder, AggregateSplitRecord:
		return true
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	parsed := OutboxAggregateType(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid aggregate type %q", value)
	}
	return parsed, nil
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderSplit         OutboxEventType = "order_split"
	EventOrderAutoCompleted OutboxEventType = "order_auto_completed"
	EventOrderStatusChanged OutboxEventType = "order_status_changed"
)

func (e OutboxEventType) IsValid() bool {
	switch e {
	case EventOrderSplit, EventOrderAutoCompleted, EventOrderStatusChanged:
		return true
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	parsed := OutboxEventType(value)
	if !parsed.IsValid() {
		return "", fmt.Errorf("invalid event type %q", value)
	}
	return parsed, nil
}
