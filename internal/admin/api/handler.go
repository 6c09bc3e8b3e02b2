package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"ms-marketplace/internal/admin"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *admin.Service
	Logger  *logger.Logger
}

func NewHandler(service *admin.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, admin.ErrUserNotFound), errors.Is(err, admin.ErrPromotionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, admin.ErrCodeTaken):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context(), r.URL.Query().Get("role"))
	if err != nil {
		if errors.Is(err, admin.ErrInvalidRole) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("ListUsers: %v", err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(users)
}

func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.Service.UpdateUserRole(r.Context(), chi.URLParam(r, "userId"), req.Role)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteUser(r.Context(), chi.URLParam(r, "userId")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	promos, err := h.Service.ListPromotions(r.Context())
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListPromotions: %v", err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(promos)
}

func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req models.PromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	promo, err := h.Service.CreatePromotion(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(promo)
}

func (h *Handler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	var req models.PromotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	promo, err := h.Service.UpdatePromotion(r.Context(), chi.URLParam(r, "promotionId"), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(promo)
}

func (h *Handler) TogglePromotion(w http.ResponseWriter, r *http.Request) {
	promo, err := h.Service.TogglePromotion(r.Context(), chi.URLParam(r, "promotionId"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(promo)
}

func (h *Handler) DeletePromotion(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeletePromotion(r.Context(), chi.URLParam(r, "promotionId")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
