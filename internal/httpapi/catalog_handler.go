package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type updatePriceRequest struct {
	Price string `json:"price"`
}

func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "product_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be a UUID")
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func (h *CatalogHandler) UpdateVariantPrice(w http.ResponseWriter, r *http.Request) {
	variantID, err := uuid.Parse(chi.URLParam(r, "variant_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_variant_id", "variant_id must be a UUID")
		return
	}

	var req updatePriceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_price", "price must be a decimal string")
		return
	}

	variant, err := h.catalog.UpdateVariantPrice(r.Context(), variantID, price)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPrice) {
			respondError(w, http.StatusBadRequest, "invalid_price", err.Error())
			return
		}
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, variant)
}
