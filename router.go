package main

import (
	"log/slog"
	"net/http"

	"github.com/flashbots/go-utils/httplogger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// newRouter wires the route table. GET /items and POST /jwt are public;
// everything else sits behind the bearer-token guard.
func newRouter(h *Handler, auth *TokenService, log *slog.Logger) http.Handler {
	mux := chi.NewRouter()
	mux.Use(func(next http.Handler) http.Handler {
		return httplogger.LoggingMiddlewareSlog(log, next)
	})
	mux.Use(middleware.Recoverer)
	mux.Use(corsMiddleware)

	mux.Get("/", h.handleRoot)
	mux.Post("/jwt", h.handleIssueToken)
	mux.Get("/items", h.handleListItems)

	mux.Group(func(r chi.Router) {
		r.Use(requireAuth(auth))
		r.Get("/items/{id}", h.handleGetItem)
		r.Post("/addItems", h.handleAddItem)
		r.Put("/updateItems/{id}", h.handleUpdateItem)
		r.Patch("/items/{id}", h.handlePatchStatus)
		r.Delete("/items/{id}", h.handleDeleteItem)
		r.Get("/allItems", h.handleAllItems)
		r.Get("/recoveredItems", h.handleListRecovered)
		r.Post("/recoveredItems", h.handleAddRecovered)
	})

	return mux
}
