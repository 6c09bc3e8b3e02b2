package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-marketplace/internal/auth"
	"ms-marketplace/internal/cart"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *cart.Service
	Handoff *cart.Handoff
	Logger  *logger.Logger
}

func NewHandler(service *cart.Service, handoff *cart.Handoff, log *logger.Logger) *Handler {
	return &Handler{Service: service, Handoff: handoff, Logger: log}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, cart.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	userCart, err := h.Service.GetCart(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetCart: %v", err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(userCart)
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req models.AddToCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.AddItem(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.UpdateItem(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "itemId"), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.RemoveItem(r.Context(), auth.UserID(r.Context()), chi.URLParam(r, "itemId")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConsumeRepayCart drains the staged repay lines. A second call returns 404;
// the handoff is single use.
func (h *Handler) ConsumeRepayCart(w http.ResponseWriter, r *http.Request) {
	items, err := h.Handoff.Consume(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, cart.ErrHandoffEmpty) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ConsumeRepayCart: %v", err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}
