package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// DeleteItemHandler handles DELETE /items/{id} requests.
type DeleteItemHandler struct {
	svc  *appsvcs.Services
	errs *errhttp.Writer
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services, errs *errhttp.Writer) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc, errs: errs}
}

// Execute deletes an item. Unknown ids succeed.
//
//	@Summary	Delete item
//	@Tags		items
//	@Param		id	path	int	true	"Item id"
//	@Success	200
//	@Failure	400	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Item.Delete(r.Context(), id); err != nil {
		h.errs.WriteError(w, r, err)
		return
	}

	httpx.Empty(w, http.StatusOK)
}
