package realtime

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ms-marketplace/internal/logger"
	"ms-marketplace/internal/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("message body is empty")

type DBLayer interface {
	AppendMessage(ctx context.Context, msg models.Message) error
	ListMessagesByRoom(ctx context.Context, roomKey string, limit int) ([]models.Message, error)
}

// Service drives chat and livestream fan-out. The hub delivers to connected
// members only; chat history persists separately and the client merges the two.
type Service struct {
	Hub    *Hub
	DB     DBLayer
	Redis  *redis.Client
	Logger *logger.Logger
}

func NewService(hub *Hub, db DBLayer, rdb *redis.Client, log *logger.Logger) *Service {
	return &Service{Hub: hub, DB: db, Redis: rdb, Logger: log}
}

// SendMessage appends the message to the room's history and fans it out.
// Persistence failures are surfaced; fan-out never fails.
func (s *Service) SendMessage(ctx context.Context, senderID string, req models.SendMessageRequest) (*models.Message, error) {
	if req.Body == "" {
		return nil, ErrEmptyMessage
	}
	if req.PeerID == "" {
		return nil, errors.New("peer_id is required")
	}

	msg := models.Message{
		MessageID: uuid.NewString(),
		RoomKey:   ChatRoomKey(senderID, req.PeerID),
		SenderID:  senderID,
		Body:      req.Body,
		CreatedAt: time.Now(),
	}
	if err := s.DB.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	s.Hub.Publish(msg.RoomKey, models.RealtimeEvent{
		Kind:      models.EventChatMessage,
		RoomKey:   msg.RoomKey,
		SenderID:  senderID,
		Body:      req.Body,
		Timestamp: msg.CreatedAt,
	})
	s.Logger.LogRealtime(models.EventChatMessage, msg.RoomKey, "message delivered")
	return &msg, nil
}

func (s *Service) History(ctx context.Context, userID, peerID string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.DB.ListMessagesByRoom(ctx, ChatRoomKey(userID, peerID), limit)
}

func viewerKey(channelID string) string {
	return "live_viewers:" + channelID
}

// JoinStream registers a viewer and broadcasts the new count.
func (s *Service) JoinStream(ctx context.Context, channelID string) (int64, error) {
	count, err := s.Redis.Incr(ctx, viewerKey(channelID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to bump viewer count: %w", err)
	}
	s.publishViewerCount(channelID, count)
	return count, nil
}

func (s *Service) LeaveStream(ctx context.Context, channelID string) (int64, error) {
	count, err := s.Redis.Decr(ctx, viewerKey(channelID)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to drop viewer count: %w", err)
	}
	if count < 0 {
		s.Redis.Set(ctx, viewerKey(channelID), 0, 0)
		count = 0
	}
	s.publishViewerCount(channelID, count)
	return count, nil
}

func (s *Service) publishViewerCount(channelID string, count int64) {
	s.Hub.Publish(LiveRoomKey(channelID), models.RealtimeEvent{
		Kind:      models.EventViewerCount,
		RoomKey:   LiveRoomKey(channelID),
		Viewers:   count,
		Timestamp: time.Now(),
	})
}

// StartStream and EndStream reset the viewer counter around the broadcast.
func (s *Service) StartStream(ctx context.Context, channelID string) {
	if err := s.Redis.Set(ctx, viewerKey(channelID), 0, 0).Err(); err != nil {
		s.Logger.Warn("REALTIME", fmt.Sprintf("Failed to reset viewers for %s: %v", channelID, err))
	}
	s.emitStreamEvent(channelID, models.RealtimeEvent{Kind: models.EventStreamStarted})
}

func (s *Service) EndStream(ctx context.Context, channelID string) {
	if err := s.Redis.Del(ctx, viewerKey(channelID)).Err(); err != nil {
		s.Logger.Warn("REALTIME", fmt.Sprintf("Failed to clear viewers for %s: %v", channelID, err))
	}
	s.emitStreamEvent(channelID, models.RealtimeEvent{Kind: models.EventStreamEnded})
}

func (s *Service) SendHeart(channelID, senderID string) {
	s.emitStreamEvent(channelID, models.RealtimeEvent{Kind: models.EventHeart, SenderID: senderID})
}

func (s *Service) PinProduct(channelID, productID string) {
	s.emitStreamEvent(channelID, models.RealtimeEvent{Kind: models.EventPinProduct, ProductID: productID})
}

func (s *Service) emitStreamEvent(channelID string, event models.RealtimeEvent) {
	event.RoomKey = LiveRoomKey(channelID)
	event.Timestamp = time.Now()
	s.Hub.Publish(event.RoomKey, event)
	s.Logger.LogRealtime(event.Kind, event.RoomKey, "event fanned out")
}
