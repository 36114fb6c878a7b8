package pubsub

import (
	"context"
	"fmt"
	"sync"

	"debate_room/internal/models"
	"debate_room/pkg/config"
	"debate_room/pkg/log"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

// 與 encoding/json 相容的編解碼器
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisPubSub 以 Redis 實作 PubSub
type RedisPubSub struct {
	client        *redis.Client
	subscriptions map[string]*redis.PubSub
	mu            sync.Mutex
}

// NewRedisPubSub 連線並 ping Redis
func NewRedisPubSub(cfg config.RedisConfig) (*RedisPubSub, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisPubSub{
		client:        client,
		subscriptions: make(map[string]*redis.PubSub),
	}, nil
}

// Publish 發布到指定頻道
func (r *RedisPubSub) Publish(ctx context.Context, channel string, event *models.RoomEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return r.client.Publish(ctx, channel, data).Err()
}

// SubscribePattern 等到 Redis 確認訂閱後才回傳，之後發布的事件不會遺失
func (r *RedisPubSub) SubscribePattern(ctx context.Context, pattern string) (<-chan *models.RoomEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub := r.client.PSubscribe(ctx, pattern)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe %s: %w", pattern, err)
	}
	r.subscriptions[pattern] = sub

	eventCh := make(chan *models.RoomEvent, 100)

	go r.processMessages(ctx, sub, eventCh)

	return eventCh, nil
}

// Close 關閉所有訂閱與 Redis 連線
func (r *RedisPubSub) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sub := range r.subscriptions {
		_ = sub.Close()
	}
	r.subscriptions = make(map[string]*redis.PubSub)

	return r.client.Close()
}

func (r *RedisPubSub) processMessages(ctx context.Context, sub *redis.PubSub, eventCh chan<- *models.RoomEvent) {
	defer close(eventCh)

	ch := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event models.RoomEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.L().Warn().Err(err).Str("channel", msg.Channel).Msg("drop malformed room event")
				continue
			}

			select {
			case eventCh <- &event:
			case <-ctx.Done():
				return
			default:
				log.L().Warn().Str("channel", msg.Channel).Msg("room event buffer full, dropping event")
			}
		}
	}
}
