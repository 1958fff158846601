package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// UpdateItemHandler handles POST and PUT /items/{id} requests.
type UpdateItemHandler struct {
	svc  *appsvcs.Services
	errs *errhttp.Writer
}

// NewUpdateItemHandler returns an UpdateItemHandler backed by the given services.
func NewUpdateItemHandler(svc *appsvcs.Services, errs *errhttp.Writer) *UpdateItemHandler {
	return &UpdateItemHandler{svc: svc, errs: errs}
}

// Execute replaces every field of an existing item.
//
//	@Summary		Update item
//	@Description	Full replacement; the item must already exist
//	@Tags			items
//	@Accept			json
//	@Param			id		path	int			true	"Item id"
//	@Param			request	body	ItemRequest	true	"Replacement fields"
//	@Success		200
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ValidationErrorResponse
//	@Router			/items/{id} [put]
//	@Router			/items/{id} [post]
func (h *UpdateItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	id, ok := itemID(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}

	if err := h.svc.Item.Update(r.Context(), id, req.toInput()); err != nil {
		h.errs.WriteError(w, r, err)
		return
	}

	httpx.Empty(w, http.StatusOK)
}
