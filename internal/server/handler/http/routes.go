// Package http provides HTTP routing and middleware configuration
// for the mailkeep document server.
package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/ogrebenko/mailkeep/internal/middleware"
)

// NewRouter constructs the HTTP handler serving the keyed-document
// API.
//
// Routes:
//
//	PUT    /api/collections/{collection}/{key} → DocumentsHandler.Put
//	GET    /api/collections/{collection}/{key} → DocumentsHandler.Get
//	GET    /api/collections/{collection}       → DocumentsHandler.List
//	DELETE /api/collections/{collection}/{key} → DocumentsHandler.Delete
//
// PUT bodies must carry Content-Type: application/json; all requests
// are logged through the zap middleware.
func NewRouter(docs *DocumentsHandler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.WithRequestLogging(logger))

	r.Route("/api/collections", func(r chi.Router) {
		r.Get("/{collection}", docs.List)
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Put("/{collection}/{key}", docs.Put)
		})
		r.Get("/{collection}/{key}", docs.Get)
		r.Delete("/{collection}/{key}", docs.Delete)
	})

	return r
}
