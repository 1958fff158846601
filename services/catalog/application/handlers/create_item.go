package handlers

import (
	"net/http"

	"github.com/ghuser/catalog/pkg/errhttp"
	"github.com/ghuser/catalog/pkg/httpx"
	pkgvalidator "github.com/ghuser/catalog/pkg/validator"
	appsvcs "github.com/ghuser/catalog/services/catalog/application/services"
)

// CreateItemHandler handles POST /items requests.
type CreateItemHandler struct {
	svc  *appsvcs.Services
	errs *errhttp.Writer
}

// NewCreateItemHandler returns a CreateItemHandler backed by the given services.
func NewCreateItemHandler(svc *appsvcs.Services, errs *errhttp.Writer) *CreateItemHandler {
	return &CreateItemHandler{svc: svc, errs: errs}
}

// Execute creates a new item.
//
//	@Summary		Create item
//	@Description	Stores a new item; the id is assigned by the store
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ItemRequest	true	"Item to create"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		422		{object}	ValidationErrorResponse
//	@Router			/items [post]
func (h *CreateItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Item.Create(r.Context(), req.toInput())
	if err != nil {
		h.errs.WriteError(w, r, err)
		return
	}

	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
