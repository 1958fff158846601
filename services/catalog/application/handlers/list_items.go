package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// ListItemsHandler handles GET /items requests.
type ListItemsHandler struct {
	svc             *appsvcs.Services
	errs            *errhttp.Writer
	defaultPageSize int
}

// NewListItemsHandler returns a ListItemsHandler. defaultPageSize applies when
// the request has no pageSize parameter.
func NewListItemsHandler(svc *appsvcs.Services, errs *errhttp.Writer, defaultPageSize int) *ListItemsHandler {
	return &ListItemsHandler{svc: svc, errs: errs, defaultPageSize: defaultPageSize}
}

// Execute returns one page of items in ascending id order.
//
//	@Summary		List items
//	@Description	Zero-based pagination; a page past the end returns no items
//	@Tags			items
//	@Produce		json
//	@Param			page		query		int	false	"Page number (zero-based)"	default(0)
//	@Param			pageSize	query		int	false	"Items per page (max 1000)"	default(5)
//	@Success		200			{object}	ItemsResponse
//	@Failure		400			{object}	ErrorResponse
//	@Router			/items [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	pageNumber, ok := queryInt(w, r, "page", 0)
	if !ok {
		return
	}
	pageSize, ok := queryInt(w, r, "pageSize", h.defaultPageSize)
	if !ok {
		return
	}

	page, err := h.svc.Item.List(r.Context(), pageNumber, pageSize)
	if err != nil {
		h.errs.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toItemsResponse(page))
}
