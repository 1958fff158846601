package redisstore

import (
	"context"
	"fmt"
	"net"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/catalog/pkg/kv"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

func newRepository(t *testing.T) (*ItemRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	rc, err := kv.NewRedisClient(context.Background(), "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = rc.Close() })

	return NewItemRepository(rc), mr
}

func newItem(name string, price string, amount int) *models.Item {
	return models.NewItem(models.ItemName(name), name+" description", decimal.RequireFromString(price), amount)
}

func TestItemRepository_SaveLayout(t *testing.T) {
	repo, mr := newRepository(t)

	item := newItem("Soccer Ball", "10.5", 25)
	require.NoError(t, repo.Save(context.Background(), item))
	assert.EqualValues(t, 1, item.ID)

	seq, err := mr.Get(seqKey)
	require.NoError(t, err)
	assert.Equal(t, "1", seq)

	assert.Equal(t, "Soccer Ball", mr.HGet("catalog:item:1", "name"))
	assert.Equal(t, "10.5", mr.HGet("catalog:item:1", "price"))
	assert.Equal(t, "25", mr.HGet("catalog:item:1", "amount"))

	members, err := mr.ZMembers(indexKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, members)
}

func TestItemRepository_GetByID(t *testing.T) {
	repo, _ := newRepository(t)
	ctx := context.Background()

	item := newItem("Soccer Ball", "10.5", 25)
	require.NoError(t, repo.Save(ctx, item))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, got.ID)
	assert.Equal(t, "Soccer Ball", got.Name.String())
	assert.Equal(t, "Soccer Ball description", got.Description)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("10.5")))
	assert.Equal(t, 25, got.Amount)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, catalogdomain.ErrItemNotFound)
}

func TestItemRepository_GetByIDCorruptHash(t *testing.T) {
	repo, mr := newRepository(t)

	mr.HSet("catalog:item:7", "name", "broken", "description", "d", "price", "ten", "amount", "1")
	_, err := repo.GetByID(context.Background(), 7)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, catalogdomain.ErrItemNotFound)
}

func TestItemRepository_FindAll(t *testing.T) {
	repo, _ := newRepository(t)
	ctx := context.Background()

	for i := 1; i <= 30; i++ {
		require.NoError(t, repo.Save(ctx, newItem(fmt.Sprintf("item-%d", i), "1", i)))
	}

	items, total, err := repo.FindAll(ctx, models.PageRequest{Number: 2, Size: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 30, total)
	require.Len(t, items, 5)
	for i, item := range items {
		assert.EqualValues(t, 11+i, item.ID)
	}

	items, total, err = repo.FindAll(ctx, models.PageRequest{Number: 6, Size: 5})
	require.NoError(t, err)
	assert.EqualValues(t, 30, total)
	assert.Empty(t, items)
}

func TestItemRepository_FindAllOrdersNumerically(t *testing.T) {
	repo, _ := newRepository(t)
	ctx := context.Background()

	for i := 1; i <= 12; i++ {
		require.NoError(t, repo.Save(ctx, newItem(fmt.Sprintf("item-%d", i), "1", i)))
	}

	items, _, err := repo.FindAll(ctx, models.PageRequest{Number: 1, Size: 5})
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.EqualValues(t, 6, items[0].ID)
	assert.EqualValues(t, 10, items[4].ID)
}

func TestItemRepository_Update(t *testing.T) {
	repo, _ := newRepository(t)
	ctx := context.Background()

	item := newItem("Soccer Ball", "10.5", 25)
	require.NoError(t, repo.Save(ctx, item))

	replacement := newItem("Basketball", "19.99", 3)
	replacement.ID = item.ID
	require.NoError(t, repo.Update(ctx, replacement))

	got, err := repo.GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Basketball", got.Name.String())
	assert.Equal(t, "19.99", got.Price.String())
	assert.Equal(t, 3, got.Amount)
}

func TestItemRepository_UpdateNotFound(t *testing.T) {
	repo, mr := newRepository(t)

	item := newItem("ghost", "1", 1)
	item.ID = 42
	assert.ErrorIs(t, repo.Update(context.Background(), item), catalogdomain.ErrItemNotFound)
	assert.False(t, mr.Exists("catalog:item:42"))
}

func TestItemRepository_Delete(t *testing.T) {
	repo, mr := newRepository(t)
	ctx := context.Background()

	item := newItem("Soccer Ball", "10.5", 25)
	require.NoError(t, repo.Save(ctx, item))

	require.NoError(t, repo.Delete(ctx, item.ID))
	assert.False(t, mr.Exists(itemKey(item.ID)))

	_, total, err := repo.FindAll(ctx, models.PageRequest{Number: 0, Size: 5})
	require.NoError(t, err)
	assert.Zero(t, total)

	assert.NoError(t, repo.Delete(ctx, item.ID))
	assert.NoError(t, repo.Delete(ctx, 12345))

	next := newItem("next", "1", 1)
	require.NoError(t, repo.Save(ctx, next))
	assert.Greater(t, next.ID, item.ID)
}

// deleteAfterExists deletes the item through another connection right after the
// first EXISTS, i.e. between WATCH and EXEC of the update transaction.
type deleteAfterExists struct {
	once  sync.Once
	other *ItemRepository
	id    int64
	err   error
}

func (h *deleteAfterExists) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

func (h *deleteAfterExists) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if cmd.Name() == "exists" {
			h.once.Do(func() { h.err = h.other.Delete(ctx, h.id) })
		}
		return err
	}
}

func (h *deleteAfterExists) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func TestItemRepository_UpdateRacingDeleteDoesNotResurrect(t *testing.T) {
	repo, mr := newRepository(t)
	ctx := context.Background()

	item := newItem("Soccer Ball", "10.5", 25)
	require.NoError(t, repo.Save(ctx, item))

	otherClient, err := kv.NewRedisClient(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = otherClient.Close() })

	hook := &deleteAfterExists{other: NewItemRepository(otherClient), id: item.ID}
	repo.rdb.AddHook(hook)

	replacement := newItem("Basketball", "20", 3)
	replacement.ID = item.ID
	err = repo.Update(ctx, replacement)

	require.NoError(t, hook.err)
	assert.ErrorIs(t, err, catalogdomain.ErrItemNotFound)
	assert.False(t, mr.Exists(itemKey(item.ID)), "update must not recreate a deleted item")
	members, err := mr.ZMembers(indexKey)
	if err == nil {
		assert.Empty(t, members)
	}
}
