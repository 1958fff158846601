package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// GetItemHandler handles GET /items/{id} requests.
type GetItemHandler struct {
	svc  *appsvcs.Services
	errs *errhttp.Writer
}

// NewGetItemHandler returns a GetItemHandler backed by the given services.
func NewGetItemHandler(svc *appsvcs.Services, errs *errhttp.Writer) *GetItemHandler {
	return &GetItemHandler{svc: svc, errs: errs}
}

// Execute returns a single item.
//
//	@Summary	Get item
//	@Tags		items
//	@Produce	json
//	@Param		id	path		int	true	"Item id"
//	@Success	200	{object}	ItemResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Get(r.Context(), id)
	if err != nil {
		h.errs.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
