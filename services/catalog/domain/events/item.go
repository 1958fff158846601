package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// Watermill topics published by the catalog store.
const (
	TopicItemCreated = "item.created"
	TopicItemUpdated = "item.updated"
	TopicItemDeleted = "item.deleted"
)

// SchemaVersion is stamped on every event; increment on breaking changes.
const SchemaVersion = 1

// ItemCreatedEvent is published after a new Item is persisted.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicItemCreated).
type ItemCreatedEvent struct {
	EventID     uuid.UUID       `json:"event_id"` // Unique publish-time identifier for deduplication
	Version     int             `json:"version"`
	ItemID      int64           `json:"item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Amount      int             `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ItemUpdatedEvent carries the full state of an Item after an update.
type ItemUpdatedEvent struct {
	EventID     uuid.UUID       `json:"event_id"`
	Version     int             `json:"version"`
	ItemID      int64           `json:"item_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Amount      int             `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ItemDeletedEvent is published only when a delete actually removed a row.
type ItemDeletedEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Version    int       `json:"version"`
	ItemID     int64     `json:"item_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewItemCreated snapshots a persisted item.
func NewItemCreated(item *models.Item) ItemCreatedEvent {
	return ItemCreatedEvent{
		EventID:     uuid.New(),
		Version:     SchemaVersion,
		ItemID:      item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		Price:       item.Price,
		Amount:      item.Amount,
		OccurredAt:  time.Now().UTC(),
	}
}

// NewItemUpdated snapshots an updated item.
func NewItemUpdated(item *models.Item) ItemUpdatedEvent {
	return ItemUpdatedEvent{
		EventID:     uuid.New(),
		Version:     SchemaVersion,
		ItemID:      item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		Price:       item.Price,
		Amount:      item.Amount,
		OccurredAt:  time.Now().UTC(),
	}
}

func NewItemDeleted(id int64) ItemDeletedEvent {
	return ItemDeletedEvent{
		EventID:    uuid.New(),
		Version:    SchemaVersion,
		ItemID:     id,
		OccurredAt: time.Now().UTC(),
	}
}
