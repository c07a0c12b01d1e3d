package product

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/designxcel/storefront/internal/transport"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	GetCatalog() ([]ProductResponse, error)
	GetAllProducts() ([]*Product, error)
	GetBySlug(slug string) (*ProductResponse, error)
	GetByID(id int64) (*Product, error)
	Create(dto CreateProductDTO) (*Product, error)
	Update(id int64, dto UpdateProductDTO) (*Product, error)
	Delete(id int64) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// GetCatalog serves the public storefront listing. No authentication needed.
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.GetCatalog()
	if err != nil {
		h.Logger.Error("GetCatalog: failed to get products", "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to get products", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, CatalogResponse{Products: products})
}

func (h *Handler) GetProductBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	response, err := h.Service.GetBySlug(slug)
	if err != nil {
		h.Logger.Error("GetProductBySlug: failed to get product", "slug", slug, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to get product", "INTERNAL_ERROR", nil)
		return
	}
	if response == nil {
		h.WriteFailure(w, http.StatusNotFound, "product not found", "PRODUCT_NOT_FOUND", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, response)
}

// ListAll is the admin view: every product, inactive included. The route is
// behind the products.canView permission gate.
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	products, err := h.Service.GetAllProducts()
	if err != nil {
		h.Logger.Error("ListAll: failed to get products", "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to get products", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var dto CreateProductDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR", nil)
		return
	}

	created, err := h.Service.Create(dto)
	if err != nil {
		var vErr ValidationError
		if errors.As(err, &vErr) {
			h.WriteFailure(w, http.StatusBadRequest, vErr.Msg, "VALIDATION_ERROR", nil)
			return
		}
		h.Logger.Error("CreateProduct: failed to create product", "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to create product", "INTERNAL_ERROR", nil)
		return
	}

	h.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := h.productIDParam(r)
	if err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid product id", "VALIDATION_ERROR", nil)
		return
	}

	var dto UpdateProductDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid request body", "VALIDATION_ERROR", nil)
		return
	}

	updated, err := h.Service.Update(id, dto)
	if err != nil {
		var vErr ValidationError
		if errors.As(err, &vErr) {
			h.WriteFailure(w, http.StatusBadRequest, vErr.Msg, "VALIDATION_ERROR", nil)
			return
		}
		h.Logger.Error("UpdateProduct: failed to update product", "product_id", id, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to update product", "INTERNAL_ERROR", nil)
		return
	}
	if updated == nil {
		h.WriteFailure(w, http.StatusNotFound, "product not found", "PRODUCT_NOT_FOUND", nil)
		return
	}

	h.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := h.productIDParam(r)
	if err != nil {
		h.WriteFailure(w, http.StatusBadRequest, "invalid product id", "VALIDATION_ERROR", nil)
		return
	}

	if err := h.Service.Delete(id); err != nil {
		h.Logger.Error("DeleteProduct: failed to delete product", "product_id", id, "error", err)
		h.WriteFailure(w, http.StatusInternalServerError, "failed to delete product", "INTERNAL_ERROR", nil)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) productIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}
