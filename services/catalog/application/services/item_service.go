package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/catalog/pkg/config"
	catalogdomain "github.com/ghuser/catalog/services/catalog/domain"
	"github.com/ghuser/catalog/services/catalog/domain/models"
	"github.com/ghuser/catalog/services/catalog/domain/repositories"
	domainsvcs "github.com/ghuser/catalog/services/catalog/domain/services"
)

const tracerName = "github.com/ghuser/catalog/services/catalog/application/services"

// ItemInput carries the caller-supplied fields of an Item. The id is never
// part of the input; the store assigns it.
type ItemInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Amount      int
}

// ItemService orchestrates the catalog use cases on top of an ItemRepository.
// Event publishing, where enabled, is handled by the repository layer (outbox pattern).
type ItemService struct {
	repo   repositories.ItemRepository
	tracer trace.Tracer
}

// NewItemService returns an ItemService wired with the given repository.
func NewItemService(repo repositories.ItemRepository) *ItemService {
	return &ItemService{repo: repo, tracer: otel.Tracer(tracerName)}
}

// Create validates and persists a new Item and returns it with its assigned id.
// Duplicate names are allowed.
func (s *ItemService) Create(ctx context.Context, in ItemInput) (item *models.Item, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ItemService/Create")
	defer func() { endSpan(span, err) }()

	item, err = buildItem(in)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, item); err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	span.SetAttributes(attribute.Int64("item.id", item.ID))
	return item, nil
}

// Get returns the Item with the given id or ErrItemNotFound.
func (s *ItemService) Get(ctx context.Context, id int64) (item *models.Item, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ItemService/Get",
		trace.WithAttributes(attribute.Int64("item.id", id)))
	defer func() { endSpan(span, err) }()

	item, err = s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// List returns page pageNumber (zero-based) of pageSize items in ascending id
// order. A page past the end is empty but still carries the metadata.
func (s *ItemService) List(ctx context.Context, pageNumber, pageSize int) (page *models.Page, err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ItemService/List",
		trace.WithAttributes(
			attribute.Int("page.number", pageNumber),
			attribute.Int("page.size", pageSize),
		))
	defer func() { endSpan(span, err) }()

	req, err := NewPageRequest(pageNumber, pageSize)
	if err != nil {
		return nil, err
	}

	items, total, err := s.repo.FindAll(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	span.SetAttributes(attribute.Int64("page.total_items", total))
	return models.NewPage(req, items, total), nil
}

// Update replaces every field of the Item at id. Returns ErrItemNotFound if
// there is no such item; it never creates one.
func (s *ItemService) Update(ctx context.Context, id int64, in ItemInput) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ItemService/Update",
		trace.WithAttributes(attribute.Int64("item.id", id)))
	defer func() { endSpan(span, err) }()

	item, err := buildItem(in)
	if err != nil {
		return err
	}
	item.ID = id

	if err := s.repo.Update(ctx, item); err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

// Delete removes the Item at id. Unknown ids are a no-op.
func (s *ItemService) Delete(ctx context.Context, id int64) (err error) {
	ctx, span := s.tracer.Start(ctx, "catalog.ItemService/Delete",
		trace.WithAttributes(attribute.Int64("item.id", id)))
	defer func() { endSpan(span, err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// NewPageRequest checks the requested window and returns it as a domain PageRequest.
func NewPageRequest(pageNumber, pageSize int) (models.PageRequest, error) {
	if pageNumber < 0 {
		return models.PageRequest{}, fmt.Errorf("%w: page must not be negative (got %d)",
			catalogdomain.ErrInvalidPageRequest, pageNumber)
	}
	if pageSize < 1 || pageSize > config.MaxPageSize {
		return models.PageRequest{}, fmt.Errorf("%w: pageSize must be between 1 and %d (got %d)",
			catalogdomain.ErrInvalidPageRequest, config.MaxPageSize, pageSize)
	}
	return models.PageRequest{Number: pageNumber, Size: pageSize}, nil
}

func buildItem(in ItemInput) (*models.Item, error) {
	name, err := models.NewItemName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidItem, err)
	}

	item := models.NewItem(name, in.Description, in.Price, in.Amount)
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, fmt.Errorf("%w: %w", catalogdomain.ErrInvalidItem, err)
	}
	return item, nil
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
