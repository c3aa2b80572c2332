package service

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/domain"
	catalogrepo "github.com/ainan-ahmed/EcommForAll-sub001/internal/catalog/repository"
	inventorydomain "github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/domain"
	"github.com/ainan-ahmed/EcommForAll-sub001/internal/inventory/store"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// Catalog is the external catalog lookup contract.
type Catalog interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*catalogdomain.Product, error)
	GetVariant(ctx context.Context, id uuid.UUID) (*catalogdomain.Variant, error)
}

// CatalogHandler wraps the catalog collaborator with per-call timeouts and a
// circuit breaker. Business errors (not found) do not count against the
// breaker; only transport-level failures trip it.
type CatalogHandler struct {
	catalog   Catalog
	timeout   time.Duration
	productCB *gobreaker.CircuitBreaker[*catalogdomain.Product]
	variantCB *gobreaker.CircuitBreaker[*catalogdomain.Variant]
}

func NewCatalogHandler(catalog Catalog, timeout time.Duration) *CatalogHandler {
	isSuccessful := func(err error) bool {
		return err == nil ||
			errors.Is(err, catalogrepo.ErrProductNotFound) ||
			errors.Is(err, catalogrepo.ErrVariantNotFound)
	}
	return &CatalogHandler{
		catalog: catalog,
		timeout: timeout,
		productCB: gobreaker.NewCircuitBreaker[*catalogdomain.Product](gobreaker.Settings{
			Name:         "catalog-product",
			IsSuccessful: isSuccessful,
		}),
		variantCB: gobreaker.NewCircuitBreaker[*catalogdomain.Variant](gobreaker.Settings{
			Name:         "catalog-variant",
			IsSuccessful: isSuccessful,
		}),
	}
}

func (h *CatalogHandler) GetProduct(ctx context.Context, id uuid.UUID) (*catalogdomain.Product, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	product, err := h.productCB.Execute(func() (*catalogdomain.Product, error) {
		return h.catalog.GetProduct(callCtx, id)
	})
	return product, mapUnavailable(err)
}

func (h *CatalogHandler) GetVariant(ctx context.Context, id uuid.UUID) (*catalogdomain.Variant, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	variant, err := h.variantCB.Execute(func() (*catalogdomain.Variant, error) {
		return h.catalog.GetVariant(callCtx, id)
	})
	return variant, mapUnavailable(err)
}

// StockHandler wraps the stock ledger collaborator with per-call timeouts
// and a circuit breaker around the reserve path.
type StockHandler struct {
	ledger    store.StockLedger
	timeout   time.Duration
	reserveCB *gobreaker.CircuitBreaker[*inventorydomain.Reservation]
}

func NewStockHandler(ledger store.StockLedger, timeout time.Duration) *StockHandler {
	return &StockHandler{
		ledger:  ledger,
		timeout: timeout,
		reserveCB: gobreaker.NewCircuitBreaker[*inventorydomain.Reservation](gobreaker.Settings{
			Name: "stock-ledger",
			IsSuccessful: func(err error) bool {
				return err == nil ||
					errors.Is(err, store.ErrInsufficientStock) ||
					errors.Is(err, store.ErrStockNotFound)
			},
		}),
	}
}

func (h *StockHandler) Reserve(ctx context.Context, orderRef string, items []inventorydomain.ReservationItem) (*inventorydomain.Reservation, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	reservation, err := h.reserveCB.Execute(func() (*inventorydomain.Reservation, error) {
		return h.ledger.Reserve(callCtx, orderRef, items)
	})
	return reservation, mapUnavailable(err)
}

func (h *StockHandler) Confirm(ctx context.Context, reservationID string) error {
	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.ledger.Confirm(callCtx, reservationID)
}

func (h *StockHandler) Release(ctx context.Context, reservationID string) error {
	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()
	return h.ledger.Release(callCtx, reservationID)
}

// mapUnavailable converts breaker and timeout failures into the retryable
// sentinel so callers can distinguish them from hard validation errors.
func mapUnavailable(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) ||
		errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(ErrCollaboratorUnavailable, err)
	}
	return err
}
