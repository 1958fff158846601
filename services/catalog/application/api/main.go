package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/catalog/pkg/app"
	"github.com/ghuser/catalog/pkg/config"
	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/services/catalog/application/handlers"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// CatalogRoutes registers the item endpoints on the provided chi router.
func CatalogRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	errs := errhttp.New(a.Logger, a.Config.Environment == config.EnvProduction)

	update := handlers.NewUpdateItemHandler(svcs, errs).Execute

	r.Route("/items", func(r chi.Router) {
		r.Get("/", handlers.NewListItemsHandler(svcs, errs, a.Config.ItemsPageSize).Execute)
		r.Post("/", handlers.NewCreateItemHandler(svcs, errs).Execute)
		r.Get("/{id}", handlers.NewGetItemHandler(svcs, errs).Execute)
		r.Post("/{id}", update)
		r.Put("/{id}", update)
		r.Delete("/{id}", handlers.NewDeleteItemHandler(svcs, errs).Execute)
	})
}
