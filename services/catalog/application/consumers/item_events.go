// Package consumers turns catalog domain events into an audit stream: one
// structured log line and one counter increment per item change.
package consumers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ghuser/catalog/pkg/logger"
	domainevents "github.com/ghuser/catalog/services/catalog/domain/events"
)

const meterName = "github.com/ghuser/catalog/services/catalog/application/consumers"

// Handler processes one message. It must be idempotent; the bus redelivers on error.
type Handler func(context.Context, *message.Message) error

// ItemEvents consumes item.created, item.updated and item.deleted.
type ItemEvents struct {
	log     logger.Logger
	changes metric.Int64Counter
}

// NewItemEvents registers the catalog.item.changes counter on mp.
func NewItemEvents(log logger.Logger, mp metric.MeterProvider) (*ItemEvents, error) {
	changes, err := mp.Meter(meterName).Int64Counter(
		"catalog.item.changes",
		metric.WithDescription("Item changes observed on the event bus, by event type"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("consumers: create counter: %w", err)
	}
	return &ItemEvents{log: log, changes: changes}, nil
}

// Handlers maps every item topic to its handler.
func (c *ItemEvents) Handlers() map[string]Handler {
	return map[string]Handler{
		domainevents.TopicItemCreated: c.handleCreated,
		domainevents.TopicItemUpdated: c.handleUpdated,
		domainevents.TopicItemDeleted: c.handleDeleted,
	}
}

func (c *ItemEvents) handleCreated(ctx context.Context, msg *message.Message) error {
	var evt domainevents.ItemCreatedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("decode %s: %w", domainevents.TopicItemCreated, err)
	}
	c.record(ctx, domainevents.TopicItemCreated)
	c.log.InfoContext(ctx, "item created",
		"event_id", evt.EventID,
		"item_id", evt.ItemID,
		"name", evt.Name,
		"price", evt.Price.String(),
		"amount", evt.Amount,
		"occurred_at", evt.OccurredAt,
	)
	return nil
}

func (c *ItemEvents) handleUpdated(ctx context.Context, msg *message.Message) error {
	var evt domainevents.ItemUpdatedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("decode %s: %w", domainevents.TopicItemUpdated, err)
	}
	c.record(ctx, domainevents.TopicItemUpdated)
	c.log.InfoContext(ctx, "item updated",
		"event_id", evt.EventID,
		"item_id", evt.ItemID,
		"name", evt.Name,
		"price", evt.Price.String(),
		"amount", evt.Amount,
		"occurred_at", evt.OccurredAt,
	)
	return nil
}

func (c *ItemEvents) handleDeleted(ctx context.Context, msg *message.Message) error {
	var evt domainevents.ItemDeletedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		return fmt.Errorf("decode %s: %w", domainevents.TopicItemDeleted, err)
	}
	c.record(ctx, domainevents.TopicItemDeleted)
	c.log.InfoContext(ctx, "item deleted",
		"event_id", evt.EventID,
		"item_id", evt.ItemID,
		"occurred_at", evt.OccurredAt,
	)
	return nil
}

func (c *ItemEvents) record(ctx context.Context, topic string) {
	c.changes.Add(ctx, 1, metric.WithAttributes(attribute.String("event", topic)))
}
