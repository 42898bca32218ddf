package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/viralforge/order-gateway/internal/application"
)

// Handler is the HTTP adapter entrypoint for the receive use-case.
// Keeping only the application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

// NewRouter registers the gateway's HTTP routes and middleware stack.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)

	r.Route("/orders/v1", func(r chi.Router) {
		r.Post("/receive", handler.receiveOrder)
	})

	return r
}
