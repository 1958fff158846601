package services

import (
	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/redisstore"
	"github.com/ghuser/catalog/services/catalog/infrastructure/persistence/sqlstore"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Item *ItemService
}

// New wires all catalog application services with infrastructure from the
// Application container. The Redis store is used when the application was
// started with STORE_DRIVER=redis, the SQL store otherwise.
func New(a *app.Application) *Services {
	var repo repositories.ItemRepository
	if a.Redis != nil {
		repo = redisstore.NewItemRepository(a.Redis)
	} else {
		repo = sqlstore.NewItemRepository(a.Db, a.EventBus)
	}
	return &Services{
		Item: NewItemService(repo),
	}
}
