package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter wires the HTTP surface. All routes require authentication except
// the health check.
func NewRouter(users UserDirectory, carts *CartHandler, orders *OrderHandler, catalog *CatalogHandler, inventory *InventoryHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(users))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Get("/totals", carts.GetTotals)
			r.Post("/items", carts.AddItem)
			r.Put("/items/{item_id}", carts.UpdateQuantity)
			r.Delete("/items/{item_id}", carts.RemoveItem)
			r.Delete("/", carts.ClearCart)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orders.CreateOrder)
			r.Get("/", orders.ListOrders)
			r.Get("/active", orders.HasActiveOrder)
			r.Get("/{order_id}", orders.GetOrder)
			r.Post("/{order_id}/cancel", orders.CancelOrder)
			r.Put("/{order_id}/status", orders.UpdateStatus)
			r.Put("/{order_id}/payment-status", orders.UpdatePaymentStatus)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/{product_id}", catalog.GetProduct)
			r.Put("/variants/{variant_id}/price", catalog.UpdateVariantPrice)
		})

		r.Route("/stock", func(r chi.Router) {
			r.Put("/", inventory.SetStock)
			r.Post("/query", inventory.GetStock)
		})
	})

	return r
}
