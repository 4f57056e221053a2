// Package http provides HTTP handlers for the keyed-document API.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ogrebenko/mailkeep/internal/docstore"
)

// DocumentsHandler serves the keyed-document endpoints over a
// docstore.Store.
type DocumentsHandler struct {
	// Store performs the underlying document operations.
	Store docstore.Store
}

// Put handles PUT /api/collections/{collection}/{key}.
// The body is the complete field set; any existing document at the
// key is overwritten.
func (h *DocumentsHandler) Put(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	key := chi.URLParam(r, "key")

	var fields docstore.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if err := h.Store.PutKeyed(r.Context(), collection, key, fields); err != nil {
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// Get handles GET /api/collections/{collection}/{key}.
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	key := chi.URLParam(r, "key")

	fields, err := h.Store.GetKeyed(r.Context(), collection, key)
	if errors.Is(err, docstore.ErrNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(fields)
}

// List handles GET /api/collections/{collection}. It always returns
// a JSON array, empty for an unknown collection.
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")

	docs, err := h.Store.ListAll(r.Context(), collection)
	if err != nil {
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []docstore.Keyed{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(docs)
}

// Delete handles DELETE /api/collections/{collection}/{key}.
// Deleting an absent key succeeds.
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	key := chi.URLParam(r, "key")

	if err := h.Store.DeleteKeyed(r.Context(), collection, key); err != nil {
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
