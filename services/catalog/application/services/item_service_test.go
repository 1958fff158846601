package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/catalog/pkg/config"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

type mockItemRepository struct {
	mock.Mock
}

func (m *mockItemRepository) Save(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.Item)
	return item, args.Error(1)
}

func (m *mockItemRepository) FindAll(ctx context.Context, page models.PageRequest) ([]*models.Item, int64, error) {
	args := m.Called(ctx, page)
	items, _ := args.Get(0).([]*models.Item)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *mockItemRepository) Update(ctx context.Context, item *models.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockItemRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func soccerBall() ItemInput {
	return ItemInput{
		Name:        "Soccer Ball",
		Description: "Ball for playing soccer",
		Price:       decimal.RequireFromString("10.5"),
		Amount:      25,
	}
}

func TestItemService_Create(t *testing.T) {
	repo := new(mockItemRepository)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*models.Item")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.Item).ID = 1
		}).
		Return(nil)

	item, err := NewItemService(repo).Create(context.Background(), soccerBall())
	require.NoError(t, err)
	assert.EqualValues(t, 1, item.ID)
	assert.Equal(t, "Soccer Ball", item.Name.String())
	assert.Equal(t, "10.5", item.Price.String())
	assert.Equal(t, 25, item.Amount)
	repo.AssertExpectations(t)
}

func TestItemService_CreateRejectsInvalidItems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ItemInput)
	}{
		{"empty name", func(in *ItemInput) { in.Name = "" }},
		{"name too long", func(in *ItemInput) { in.Name = strings.Repeat("x", 256) }},
		{"whitespace name", func(in *ItemInput) { in.Name = "   " }},
		{"blank description", func(in *ItemInput) { in.Description = "" }},
		{"negative price", func(in *ItemInput) { in.Price = decimal.RequireFromString("-1") }},
		{"negative amount", func(in *ItemInput) { in.Amount = -5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockItemRepository)
			in := soccerBall()
			tt.mutate(&in)

			_, err := NewItemService(repo).Create(context.Background(), in)
			assert.ErrorIs(t, err, catalogdomain.ErrInvalidItem)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		})
	}
}

func TestItemService_CreateWrapsStoreErrors(t *testing.T) {
	repo := new(mockItemRepository)
	storeErr := errors.New("connection reset")
	repo.On("Save", mock.Anything, mock.Anything).Return(storeErr)

	_, err := NewItemService(repo).Create(context.Background(), soccerBall())
	assert.ErrorIs(t, err, storeErr)
}

func TestItemService_Get(t *testing.T) {
	repo := new(mockItemRepository)
	stored := &models.Item{ID: 3, Name: "Soccer Ball", Description: "d", Price: decimal.NewFromInt(1), Amount: 1}
	repo.On("GetByID", mock.Anything, int64(3)).Return(stored, nil)
	repo.On("GetByID", mock.Anything, int64(4)).Return(nil, catalogdomain.ErrItemNotFound)

	svc := NewItemService(repo)

	got, err := svc.Get(context.Background(), 3)
	require.NoError(t, err)
	assert.Same(t, stored, got)

	_, err = svc.Get(context.Background(), 4)
	assert.ErrorIs(t, err, catalogdomain.ErrItemNotFound)
}

func TestItemService_List(t *testing.T) {
	repo := new(mockItemRepository)
	window := []*models.Item{{ID: 11}, {ID: 12}, {ID: 13}, {ID: 14}, {ID: 15}}
	repo.On("FindAll", mock.Anything, models.PageRequest{Number: 2, Size: 5}).Return(window, int64(30), nil)

	page, err := NewItemService(repo).List(context.Background(), 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 5, page.Size)
	assert.Equal(t, 6, page.TotalPages)
	assert.EqualValues(t, 30, page.TotalItems)
	assert.Equal(t, window, page.Items)
}

func TestItemService_ListPastTheEnd(t *testing.T) {
	repo := new(mockItemRepository)
	repo.On("FindAll", mock.Anything, models.PageRequest{Number: 9, Size: 5}).Return(nil, int64(30), nil)

	page, err := NewItemService(repo).List(context.Background(), 9, 5)
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 6, page.TotalPages)
}

func TestItemService_ListRejectsInvalidPages(t *testing.T) {
	tests := []struct {
		name       string
		pageNumber int
		pageSize   int
	}{
		{"negative page", -1, 5},
		{"zero page size", 0, 0},
		{"negative page size", 0, -3},
		{"page size above max", 0, config.MaxPageSize + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockItemRepository)
			_, err := NewItemService(repo).List(context.Background(), tt.pageNumber, tt.pageSize)
			assert.ErrorIs(t, err, catalogdomain.ErrInvalidPageRequest)
			repo.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything)
		})
	}
}

func TestItemService_Update(t *testing.T) {
	repo := new(mockItemRepository)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(item *models.Item) bool {
		return item.ID == 7 && item.Name == "Soccer Ball" && item.Amount == 25
	})).Return(nil)

	require.NoError(t, NewItemService(repo).Update(context.Background(), 7, soccerBall()))
	repo.AssertExpectations(t)
}

func TestItemService_UpdateNotFound(t *testing.T) {
	repo := new(mockItemRepository)
	repo.On("Update", mock.Anything, mock.Anything).Return(catalogdomain.ErrItemNotFound)

	err := NewItemService(repo).Update(context.Background(), 7, soccerBall())
	assert.ErrorIs(t, err, catalogdomain.ErrItemNotFound)
}

func TestItemService_UpdateRejectsInvalidItem(t *testing.T) {
	repo := new(mockItemRepository)
	in := soccerBall()
	in.Price = decimal.RequireFromString("-0.5")

	err := NewItemService(repo).Update(context.Background(), 7, in)
	assert.ErrorIs(t, err, catalogdomain.ErrInvalidItem)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestItemService_Delete(t *testing.T) {
	repo := new(mockItemRepository)
	repo.On("Delete", mock.Anything, int64(7)).Return(nil)

	require.NoError(t, NewItemService(repo).Delete(context.Background(), 7))
	repo.AssertExpectations(t)
}

func TestNewPageRequest(t *testing.T) {
	req, err := NewPageRequest(0, config.MaxPageSize)
	require.NoError(t, err)
	assert.Equal(t, models.PageRequest{Number: 0, Size: config.MaxPageSize}, req)
}
