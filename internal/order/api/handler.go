package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-marketplace/internal/auth"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/order"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	OrderService *order.OrderService
	Logger       *logger.Logger
}

func NewHandler(orderService *order.OrderService, log *logger.Logger) *Handler {
	return &Handler{OrderService: orderService, Logger: log}
}

// writeServiceError maps service sentinels onto HTTP status categories.
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound):
		http.Error(w, "Order not found", http.StatusNotFound)
	case errors.Is(err, order.ErrInvalidStatus), errors.Is(err, order.ErrIllegalTransition),
		errors.Is(err, order.ErrEmptyCart), errors.Is(err, order.ErrInsufficientStock),
		errors.Is(err, order.ErrNotRepayable):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "server error", http.StatusInternalServerError)
	}
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	buyerID := auth.UserID(r.Context())
	orders, err := h.OrderService.Checkout(r.Context(), buyerID, req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Checkout failed for buyer %s: %v", buyerID, err))
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.ListBuyerOrders(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListMyOrders: %v", err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	orderData, err := h.OrderService.GetBuyerOrder(r.Context(), auth.UserID(r.Context()), orderID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orderData)
}

// RepayOrder stages a pending unpaid order's lines for the one-shot repay
// pickup on the cart surface.
func (h *Handler) RepayOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if err := h.OrderService.RepayOrder(r.Context(), auth.UserID(r.Context()), orderID); err != nil {
		h.Logger.Error("API", fmt.Sprintf("RepayOrder: order=%s: %v", orderID, err))
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"message":"repay cart staged"}`))
}

// ListSellerOrders supports an optional ?status= filter, validated against the
// closed status set.
func (h *Handler) ListSellerOrders(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	orders, err := h.OrderService.ListSellerOrders(r.Context(), auth.UserID(r.Context()), statusFilter)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) GetSellerOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	orderData, err := h.OrderService.GetSellerOrder(r.Context(), auth.UserID(r.Context()), orderID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orderData)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.OrderService.UpdateStatus(r.Context(), auth.UserID(r.Context()), orderID, req, false)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdateOrderStatus: order=%s: %v", orderID, err))
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}

// AdminListOrders and AdminOverrideStatus back the admin order surface; the
// override skips the ownership check but still honors the state machine.
func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.OrderService.ListAllOrders(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(orders)
}

func (h *Handler) AdminOverrideStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	var req models.StatusUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.OrderService.UpdateStatus(r.Context(), auth.UserID(r.Context()), orderID, req, true)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AdminOverrideStatus: order=%s: %v", orderID, err))
		h.writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)
}
