package handlers

import (
	"github.com/shopspring/decimal"

	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
	"github.com/ghuser/catalog/services/catalog/domain/models"
)

func init() {
	// Prices go over the wire as JSON numbers (10.5), not strings ("10.5").
	decimal.MarshalJSONWithoutQuotes = true
}

// ItemRequest is the request body for creating or replacing an item.
// Price accepts a JSON number or a numeric string. Any id in the body is ignored.
type ItemRequest struct {
	Name        string           `json:"name"        validate:"required,min=1,max=255" example:"Soccer Ball"`
	Description string           `json:"description" validate:"required"               example:"Ball for playing soccer"`
	Price       *decimal.Decimal `json:"price"       validate:"required,gte=0"         example:"10.5" swaggertype:"number"`
	Amount      *int             `json:"amount"      validate:"required,gte=0,lte=2147483647" example:"25"`
} // @name ItemRequest

// ItemResponse is the public representation of a stored item.
type ItemResponse struct {
	ID          int64           `json:"id"          example:"1"`
	Name        string          `json:"name"        example:"Soccer Ball"`
	Description string          `json:"description" example:"Ball for playing soccer"`
	Price       decimal.Decimal `json:"price"       example:"10.5" swaggertype:"number"`
	Amount      int             `json:"amount"      example:"25"`
} // @name ItemResponse

// ItemsResponse is one page of items plus its pagination metadata.
type ItemsResponse struct {
	Items      []ItemResponse `json:"items"`
	PageNumber int            `json:"pageNumber" example:"0"`
	PageSize   int            `json:"pageSize"   example:"5"`
	TotalPages int            `json:"totalPages" example:"6"`
} // @name ItemsResponse

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error string `json:"error" example:"item not found"`
} // @name ErrorResponse

// ValidationErrorResponse is returned when the request body fails validation.
type ValidationErrorResponse struct {
	Error  string            `json:"error"  example:"Validation failed"`
	Fields map[string]string `json:"fields"`
} // @name ValidationErrorResponse

func (req *ItemRequest) toInput() appsvcs.ItemInput {
	return appsvcs.ItemInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       *req.Price,
		Amount:      *req.Amount,
	}
}

func toItemResponse(item *models.Item) ItemResponse {
	return ItemResponse{
		ID:          item.ID,
		Name:        item.Name.String(),
		Description: item.Description,
		Price:       item.Price,
		Amount:      item.Amount,
	}
}

func toItemsResponse(page *models.Page) ItemsResponse {
	items := make([]ItemResponse, len(page.Items))
	for i, item := range page.Items {
		items[i] = toItemResponse(item)
	}
	return ItemsResponse{
		Items:      items,
		PageNumber: page.Number,
		PageSize:   page.Size,
		TotalPages: page.TotalPages,
	}
}
