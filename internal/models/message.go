package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Message is an append-only chat record. RoomKey is derived from the two
// participant IDs and is independent of who initiated the conversation.
type Message struct {
	bun.BaseModel `bun:"table:messages"`

	MessageID string    `bun:"message_id,pk" json:"message_id"`
	RoomKey   string    `bun:"room_key" json:"room_key"`
	SenderID  string    `bun:"sender_id" json:"sender_id"`
	Body      string    `bun:"body" json:"body"`
	CreatedAt time.Time `bun:"created_at" json:"created_at"`
}

type SendMessageRequest struct {
	PeerID string `json:"peer_id"`
	Body   string `json:"body"`
}

// RealtimeEvent is the envelope fanned out to room members. Chat messages and
// livestream signals share it; Kind discriminates.
type RealtimeEvent struct {
	Kind      string    `json:"kind"`
	RoomKey   string    `json:"room_key"`
	SenderID  string    `json:"sender_id,omitempty"`
	Body      string    `json:"body,omitempty"`
	ProductID string    `json:"product_id,omitempty"`
	Viewers   int64     `json:"viewers,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Livestream event kinds.
const (
	EventChatMessage   = "chat.message"
	EventStreamStarted = "stream.started"
	EventStreamEnded   = "stream.ended"
	EventViewerCount   = "stream.viewers"
	EventHeart         = "stream.heart"
	EventPinProduct    = "stream.pin_product"
)
