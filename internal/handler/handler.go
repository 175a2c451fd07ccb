// Package handler exposes the order commands over HTTP.
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/salescore/internal/domain/auth"
	"github.com/xenking/salescore/internal/domain/order"
)

// Handler holds the HTTP endpoints for the order API.
type Handler struct {
	orders *order.Service
}

// NewHandler constructs a Handler over the order service.
func NewHandler(orders *order.Service) *Handler {
	return &Handler{orders: orders}
}

// Routes mounts the versioned API routes. Every route requires an API key;
// auth is skipped when apikeys is nil (tests).
func (h *Handler) Routes(apikeys auth.Repository, pepper []byte) http.Handler {
	r := chi.NewRouter()
	if apikeys != nil {
		r.Use(APIKeyAuth(apikeys, pepper))
	}

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.CreateOrder)
		r.Get("/{orderID}", h.GetOrder)
		r.Put("/{orderID}", h.UpdateOrder)
		r.Delete("/{orderID}", h.DeleteOrder)
	})
	return r
}
