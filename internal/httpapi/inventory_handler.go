package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/store"
	"github.com/google/uuid"
)

type InventoryHandler struct {
	ledger store.StockLedger
}

func NewInventoryHandler(ledger store.StockLedger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger}
}

type setStockRequest struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
}

type stockQueryRequest struct {
	Items []setStockRequest `json:"items"`
}

func parseItemRef(productID, variantID string) (domain.ItemRef, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return domain.ItemRef{}, err
	}
	ref := domain.ItemRef{ProductID: pid}
	if variantID != "" {
		vid, err := uuid.Parse(variantID)
		if err != nil {
			return domain.ItemRef{}, err
		}
		ref.VariantID = &vid
	}
	return ref, nil
}

// SetStock is the back-office restock endpoint.
func (h *InventoryHandler) SetStock(w http.ResponseWriter, r *http.Request) {
	var req setStockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity < 0 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must not be negative")
		return
	}

	ref, err := parseItemRef(req.ProductID, req.VariantID)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "ids must be UUIDs")
		return
	}

	if err := h.ledger.SetStock(r.Context(), ref, req.Quantity); err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (h *InventoryHandler) GetStock(w http.ResponseWriter, r *http.Request) {
	var req stockQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	refs := make([]domain.ItemRef, 0, len(req.Items))
	for _, item := range req.Items {
		ref, err := parseItemRef(item.ProductID, item.VariantID)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_request", "ids must be UUIDs")
			return
		}
		refs = append(refs, ref)
	}

	stocks, err := h.ledger.GetStock(r.Context(), refs)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stocks)
}
