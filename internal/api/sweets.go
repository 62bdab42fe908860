package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/erazemk/sweetshop/internal/model"
	"github.com/erazemk/sweetshop/internal/store"
)

// SweetsHandler handles sweet CRUD endpoints.
type SweetsHandler struct {
	DB *sql.DB
}

type sweetsResponse struct {
	Sweets []model.Item `json:"sweets"`
}

type sweetResponse struct {
	Sweet *model.Item `json:"sweet"`
}

// List handles GET /api/sweets.
func (h *SweetsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListSweets(r.Context(), h.DB)
	if err != nil {
		slog.Error("failed to list sweets", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list sweets")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, sweetsResponse{Sweets: items})
}

// Create handles POST /api/sweets.
func (h *SweetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.ItemInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		validationError(w, err)
		return
	}

	item, err := store.CreateSweet(r.Context(), h.DB, req)
	if err != nil {
		slog.Error("failed to create sweet", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create sweet")
		return
	}

	slog.Info("sweet created", "user", GetClaims(r.Context()).Email, "sweet", item.Name)
	jsonResponse(w, http.StatusCreated, sweetResponse{Sweet: item})
}

// Update handles PUT /api/sweets/{id}.
func (h *SweetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ItemInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		validationError(w, err)
		return
	}

	item, err := store.UpdateSweet(r.Context(), h.DB, r.PathValue("id"), req)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "sweet not found")
		return
	}
	if err != nil {
		slog.Error("failed to update sweet", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update sweet")
		return
	}

	slog.Info("sweet updated", "user", GetClaims(r.Context()).Email, "sweet", item.Name)
	jsonResponse(w, http.StatusOK, sweetResponse{Sweet: item})
}

// Delete handles DELETE /api/sweets/{id}.
func (h *SweetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := store.DeleteSweet(r.Context(), h.DB, r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "sweet not found")
		return
	}
	if err != nil {
		slog.Error("failed to delete sweet", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete sweet")
		return
	}

	slog.Info("sweet deleted", "user", GetClaims(r.Context()).Email, "id", r.PathValue("id"))
	jsonResponse(w, http.StatusOK, map[string]string{"message": "sweet deleted"})
}

// Restock handles POST /api/sweets/{id}/restock.
func (h *SweetsHandler) Restock(w http.ResponseWriter, r *http.Request) {
	var req model.RestockInput
	if err := decodeJSON(w, r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		jsonError(w, http.StatusBadRequest, "quantity must be positive")
		return
	}

	item, err := store.RestockSweet(r.Context(), h.DB, r.PathValue("id"), req.Quantity)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, "sweet not found")
		return
	}
	if err != nil {
		slog.Error("failed to restock sweet", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to restock sweet")
		return
	}

	slog.Info("sweet restocked", "user", GetClaims(r.Context()).Email, "sweet", item.Name, "quantity", req.Quantity)
	jsonResponse(w, http.StatusOK, sweetResponse{Sweet: item})
}
