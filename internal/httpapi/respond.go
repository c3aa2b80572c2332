package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	cartrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/repository"
	cartservice "github.com/ainan-ahmed/EcommForAll-sub001/internal/cart/service"
	catalogrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/repository"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/store"
	orderrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/order/repository"
	orderservice "github.com/ainan-ahmed/EcommForAll-sub001/internal/order/service"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			zap.L().Error("failed to encode response", zap.Error(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleServiceError maps domain errors onto HTTP statuses. Anything not
// recognized is a 500 with a generic message; the real error goes to the log.
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalogrepo.ErrProductNotFound),
		errors.Is(err, catalogrepo.ErrVariantNotFound),
		errors.Is(err, cartrepo.ErrItemNotFound),
		errors.Is(err, orderrepo.ErrOrderNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())

	case errors.Is(err, cartservice.ErrInvalidQuantity),
		errors.Is(err, cartservice.ErrVariantMismatch),
		errors.Is(err, orderservice.ErrInvalidQuantity),
		errors.Is(err, orderservice.ErrEmptyCart),
		errors.Is(err, orderservice.ErrEmptyOrder),
		errors.Is(err, orderservice.ErrMissingAddress),
		errors.Is(err, orderservice.ErrMissingPaymentMethod),
		errors.Is(err, orderservice.ErrMissingTracking),
		errors.Is(err, orderservice.ErrMissingReason):
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())

	case errors.Is(err, orderservice.ErrForbidden):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())

	case errors.Is(err, orderservice.ErrInvalidTransition):
		respondError(w, http.StatusUnprocessableEntity, "invalid_transition", err.Error())

	case errors.Is(err, orderservice.ErrConcurrentModification),
		errors.Is(err, orderrepo.ErrCartModified):
		respondError(w, http.StatusConflict, "conflict", err.Error())

	case errors.Is(err, store.ErrInsufficientStock):
		respondError(w, http.StatusConflict, "insufficient_stock", err.Error())

	case errors.Is(err, orderservice.ErrCollaboratorUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "a dependency is unavailable, retry later")

	default:
		zap.L().Error("unhandled service error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
