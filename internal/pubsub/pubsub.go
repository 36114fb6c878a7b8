package pubsub

import (
	"context"
	"fmt"

	"debate_room/internal/models"
)

// RoomChannelPattern 訂閱所有房間事件
const RoomChannelPattern = "debate:room:*:events"

// RoomChannel 單一房間的事件頻道
func RoomChannel(roomID uint) string {
	return fmt.Sprintf("debate:room:%d:events", roomID)
}

// Publisher 發布房間事件
type Publisher interface {
	Publish(ctx context.Context, channel string, event *models.RoomEvent) error
}

// Subscriber 以頻道模式訂閱房間事件
type Subscriber interface {
	SubscribePattern(ctx context.Context, pattern string) (<-chan *models.RoomEvent, error)
}

type PubSub interface {
	Publisher
	Subscriber
	Close() error
}
