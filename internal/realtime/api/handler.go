package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"ms-marketplace/internal/auth"
	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"
	"ms-marketplace/internal/realtime"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service *realtime.Service
	Hub     *realtime.Hub
	Logger  *logger.Logger
}

func NewHandler(service *realtime.Service, hub *realtime.Hub, log *logger.Logger) *Handler {
	return &Handler{Service: service, Hub: hub, Logger: log}
}

// streamRoom runs the SSE flusher loop for one room until the client hangs up.
func (h *Handler) streamRoom(w http.ResponseWriter, r *http.Request, roomKey string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := h.Hub.Join(roomKey)
	defer h.Hub.Leave(roomKey, sub)

	fmt.Fprintf(w, "event: connected\ndata: {\"room\":\"%s\"}\n\n", roomKey)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-sub.Events:
			payload, err := json.Marshal(event)
			if err != nil {
				h.Logger.Error("REALTIME", fmt.Sprintf("Failed to encode event: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Kind, payload)
			flusher.Flush()
		}
	}
}

// StreamChat subscribes the caller to their conversation with ?peer=.
func (h *Handler) StreamChat(w http.ResponseWriter, r *http.Request) {
	peerID := r.URL.Query().Get("peer")
	if peerID == "" {
		http.Error(w, "peer query parameter is required", http.StatusBadRequest)
		return
	}
	h.streamRoom(w, r, realtime.ChatRoomKey(auth.UserID(r.Context()), peerID))
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := h.Service.SendMessage(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		if errors.Is(err, realtime.ErrEmptyMessage) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.Logger.Error("API", fmt.Sprintf("SendMessage: %v", err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	peerID := r.URL.Query().Get("peer")
	if peerID == "" {
		http.Error(w, "peer query parameter is required", http.StatusBadRequest)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.Service.History(r.Context(), auth.UserID(r.Context()), peerID, limit)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("History: %v", err))
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}

// WatchStream subscribes a viewer to a livestream channel. Joining bumps the
// viewer count; the deferred leave drops it when the connection closes.
func (h *Handler) WatchStream(w http.ResponseWriter, r *http.Request) {
	channelID := chi.URLParam(r, "channelId")

	if _, err := h.Service.JoinStream(r.Context(), channelID); err != nil {
		h.Logger.Error("REALTIME", fmt.Sprintf("JoinStream %s: %v", channelID, err))
	}
	// The request context is already cancelled by the time the viewer
	// disconnects, so the count decrement gets its own context.
	defer func() {
		if _, err := h.Service.LeaveStream(context.Background(), channelID); err != nil {
			h.Logger.Error("REALTIME", fmt.Sprintf("LeaveStream %s: %v", channelID, err))
		}
	}()

	h.streamRoom(w, r, realtime.LiveRoomKey(channelID))
}

func (h *Handler) StartStream(w http.ResponseWriter, r *http.Request) {
	h.Service.StartStream(r.Context(), chi.URLParam(r, "channelId"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) EndStream(w http.ResponseWriter, r *http.Request) {
	h.Service.EndStream(r.Context(), chi.URLParam(r, "channelId"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SendHeart(w http.ResponseWriter, r *http.Request) {
	h.Service.SendHeart(chi.URLParam(r, "channelId"), auth.UserID(r.Context()))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PinProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID string `json:"product_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	h.Service.PinProduct(chi.URLParam(r, "channelId"), req.ProductID)
	w.WriteHeader(http.StatusNoContent)
}
