// Package sqlstore implements the catalog repositories on a relational store
// (PostgreSQL, MySQL or SQLite) through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/database"
	"github.com/ghuser/catalog/pkg/events"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	domainevents "github.com/ghuser/catalog/services/catalog/domain/events"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

const (
	insertItemSQL  = `INSERT INTO items (name, description, price, amount) VALUES (?, ?, ?, ?)`
	selectItemSQL  = `SELECT id, name, description, price, amount FROM items WHERE id = ?`
	selectPageSQL  = `SELECT id, name, description, price, amount FROM items ORDER BY id ASC LIMIT ? OFFSET ?`
	countItemsSQL  = `SELECT COUNT(*) FROM items`
	updateItemSQL  = `UPDATE items SET name = ?, description = ?, price = ?, amount = ? WHERE id = ?`
	deleteItemSQL  = `DELETE FROM items WHERE id = ?`
	returningIDSQL = ` RETURNING id`
)

// itemRow is the stored shape of an Item.
type itemRow struct {
	ID          int64           `db:"id"`
	Name        string          `db:"name"`
	Description string          `db:"description"`
	Price       decimal.Decimal `db:"price"`
	Amount      int             `db:"amount"`
}

// ItemRepository implements repositories.ItemRepository on a SQL database.
type ItemRepository struct {
	db  *database.Database
	bus *events.EventBus
}

// NewItemRepository returns an ItemRepository backed by the given database.
// When bus is non-nil every mutation also writes its event to the outbox in
// the same transaction.
func NewItemRepository(db *database.Database, bus *events.EventBus) *ItemRepository {
	return &ItemRepository{db: db, bus: bus}
}

// Save inserts item and sets item.ID to the id assigned by the database.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		id, err := r.insert(ctx, tx, item)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		item.ID = id

		if r.bus != nil {
			if err := r.publish(ctx, tx, domainevents.TopicItemCreated, domainevents.NewItemCreated(item)); err != nil {
				return fmt.Errorf("publish item created: %w", err)
			}
		}
		return nil
	})
}

// insert runs the INSERT and reads back the generated id. MySQL has no
// RETURNING clause, so it falls back to LastInsertId.
func (r *ItemRepository) insert(ctx context.Context, tx *sqlx.Tx, item *models.Item) (int64, error) {
	args := []any{item.Name.String(), item.Description, item.Price, item.Amount}

	if r.db.Driver() == config.DriverMySQL {
		res, err := tx.ExecContext(ctx, tx.Rebind(insertItemSQL), args...)
		if err != nil {
			return 0, err
		}
		return res.LastInsertId()
	}

	var id int64
	if err := tx.QueryRowxContext(ctx, tx.Rebind(insertItemSQL+returningIDSQL), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// GetByID retrieves an Item by id. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	db := r.db.DB()
	var row itemRow
	if err := db.GetContext(ctx, &row, db.Rebind(selectItemSQL), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, catalogdomain.ErrItemNotFound
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return rowToItem(row), nil
}

// FindAll returns one window of items in ascending id order plus the total
// number of items.
func (r *ItemRepository) FindAll(ctx context.Context, page models.PageRequest) ([]*models.Item, int64, error) {
	db := r.db.DB()

	var total int64
	if err := db.GetContext(ctx, &total, countItemsSQL); err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	items := make([]*models.Item, 0, page.Limit())
	if total == 0 || page.Offset() >= total {
		return items, total, nil
	}

	var rows []itemRow
	if err := db.SelectContext(ctx, &rows, db.Rebind(selectPageSQL), page.Limit(), page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}
	for _, row := range rows {
		items = append(items, rowToItem(row))
	}
	return items, total, nil
}

// Update replaces every field of the item stored under item.ID.
// Returns ErrItemNotFound if no such item exists.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(updateItemSQL),
			item.Name.String(), item.Description, item.Price, item.Amount, item.ID)
		if err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update item: rows affected: %w", err)
		}
		if n == 0 {
			return catalogdomain.ErrItemNotFound
		}

		if r.bus != nil {
			if err := r.publish(ctx, tx, domainevents.TopicItemUpdated, domainevents.NewItemUpdated(item)); err != nil {
				return fmt.Errorf("publish item updated: %w", err)
			}
		}
		return nil
	})
}

// Delete removes the item with the given id. Deleting an unknown id is a no-op.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(deleteItemSQL), id)
		if err != nil {
			return fmt.Errorf("delete item: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete item: rows affected: %w", err)
		}

		if n > 0 && r.bus != nil {
			if err := r.publish(ctx, tx, domainevents.TopicItemDeleted, domainevents.NewItemDeleted(id)); err != nil {
				return fmt.Errorf("publish item deleted: %w", err)
			}
		}
		return nil
	})
}

func (r *ItemRepository) publish(ctx context.Context, tx *sqlx.Tx, topic string, event any) error {
	var (
		eventID string
		version int
	)
	switch e := event.(type) {
	case domainevents.ItemCreatedEvent:
		eventID, version = e.EventID.String(), e.Version
	case domainevents.ItemUpdatedEvent:
		eventID, version = e.EventID.String(), e.Version
	case domainevents.ItemDeletedEvent:
		eventID, version = e.EventID.String(), e.Version
	default:
		return fmt.Errorf("unknown event type %T", event)
	}

	msg, err := events.NewJSONMessage(eventID, version, event)
	if err != nil {
		return err
	}
	return r.bus.PublishTx(ctx, tx.Tx, topic, msg)
}

// rowToItem maps an itemRow to a domain models.Item.
func rowToItem(row itemRow) *models.Item {
	return &models.Item{
		ID:          row.ID,
		Name:        models.ItemName(row.Name),
		Description: row.Description,
		Price:       row.Price,
		Amount:      row.Amount,
	}
}
