package repositories

import (
	"context"

	"github.com/ghuser/catalog/services/catalog/domain/models"
)

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
//
// Implementations list items in ascending id order, which is insertion order
// because ids are assigned monotonically and never reused.
type ItemRepository interface {
	// Save persists a new Item and sets item.ID to the store-assigned id.
	Save(ctx context.Context, item *models.Item) error

	// GetByID returns ErrItemNotFound when no item has the given id.
	GetByID(ctx context.Context, id int64) (*models.Item, error)

	// FindAll returns the requested window and the total item count.
	FindAll(ctx context.Context, page models.PageRequest) ([]*models.Item, int64, error)

	// Update replaces every field but the id. Returns ErrItemNotFound when
	// the id does not exist.
	Update(ctx context.Context, item *models.Item) error

	// Delete removes an item. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id int64) error
}
