// Package redisstore implements the catalog repositories on Redis.
//
// Layout:
//   - catalog:items:seq  counter handing out item ids via INCR
//   - catalog:item:<id>  hash with name, description, price and amount
//   - catalog:items      sorted set of ids scored by id, used for ordered scans
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/ghuser/catalog/pkg/kv"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

const (
	seqKey   = "catalog:items:seq"
	indexKey = "catalog:items"

	maxWatchRetries = 5
)

// ErrConcurrentUpdate is returned when an optimistic update keeps losing the
// WATCH race.
var ErrConcurrentUpdate = errors.New("redisstore: concurrent modification")

func itemKey(id int64) string {
	return "catalog:item:" + strconv.FormatInt(id, 10)
}

// ItemRepository implements repositories.ItemRepository on Redis.
type ItemRepository struct {
	rdb *redis.Client
}

// NewItemRepository returns an ItemRepository using the given Redis connection.
func NewItemRepository(rc *kv.RedisClient) *ItemRepository {
	return &ItemRepository{rdb: rc.Client()}
}

// Save allocates an id from the sequence and writes the hash and index entry
// atomically.
func (r *ItemRepository) Save(ctx context.Context, item *models.Item) error {
	id, err := r.rdb.Incr(ctx, seqKey).Result()
	if err != nil {
		return fmt.Errorf("allocate item id: %w", err)
	}

	_, err = r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, itemKey(id), itemToHash(item))
		pipe.ZAdd(ctx, indexKey, redis.Z{Score: float64(id), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save item: %w", err)
	}

	item.ID = id
	return nil
}

// GetByID retrieves an Item by id. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	fields, err := r.rdb.HGetAll(ctx, itemKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	if len(fields) == 0 {
		return nil, catalogdomain.ErrItemNotFound
	}
	return hashToItem(id, fields)
}

// FindAll returns one window of items in ascending id order plus the total
// number of items.
func (r *ItemRepository) FindAll(ctx context.Context, page models.PageRequest) ([]*models.Item, int64, error) {
	total, err := r.rdb.ZCard(ctx, indexKey).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	items := make([]*models.Item, 0, page.Limit())
	start := page.Offset()
	if total == 0 || start >= total {
		return items, total, nil
	}

	members, err := r.rdb.ZRange(ctx, indexKey, start, start+int64(page.Limit())-1).Result()
	if err != nil {
		return nil, 0, fmt.Errorf("scan items: %w", err)
	}

	ids := make([]int64, len(members))
	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err = r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, m := range members {
			id, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				return fmt.Errorf("parse item id %q: %w", m, err)
			}
			ids[i] = id
			cmds[i] = pipe.HGetAll(ctx, itemKey(id))
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("load items: %w", err)
	}

	for i, cmd := range cmds {
		fields := cmd.Val()
		// Deleted between ZRANGE and HGETALL.
		if len(fields) == 0 {
			continue
		}
		item, err := hashToItem(ids[i], fields)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, nil
}

// Update replaces every field of the item stored under item.ID.
// Returns ErrItemNotFound if no such item exists. The key is watched so an
// update racing a delete cannot bring the item back.
func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	key := itemKey(item.ID)

	txf := func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("check item: %w", err)
		}
		if n == 0 {
			return catalogdomain.ErrItemNotFound
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, key, itemToHash(item))
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := r.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, catalogdomain.ErrItemNotFound) {
			return fmt.Errorf("update item: %w", err)
		}
		return err
	}
	return ErrConcurrentUpdate
}

// Delete removes the item with the given id. Deleting an unknown id is a no-op.
func (r *ItemRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, itemKey(id))
		pipe.ZRem(ctx, indexKey, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// itemToHash maps a domain Item to its hash fields.
func itemToHash(item *models.Item) map[string]any {
	return map[string]any{
		"name":        item.Name.String(),
		"description": item.Description,
		"price":       item.Price.String(),
		"amount":      item.Amount,
	}
}

// hashToItem maps stored hash fields back to a domain Item.
func hashToItem(id int64, fields map[string]string) (*models.Item, error) {
	price, err := decimal.NewFromString(fields["price"])
	if err != nil {
		return nil, fmt.Errorf("item %d: parse price: %w", id, err)
	}
	amount, err := strconv.Atoi(fields["amount"])
	if err != nil {
		return nil, fmt.Errorf("item %d: parse amount: %w", id, err)
	}
	return &models.Item{
		ID:          id,
		Name:        models.ItemName(fields["name"]),
		Description: fields["description"],
		Price:       price,
		Amount:      amount,
	}, nil
}
