package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"debate_room/internal/models"
	"debate_room/pkg/config"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
)

// 與 encoding/json 相容的編解碼器
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// snapshotVersion 快照結構改變時遞增，舊版本的快取視為 miss
const snapshotVersion = 1

// cachedSnapshot 寫入 Redis 的快照外框
type cachedSnapshot struct {
	Version  int                  `json:"v"`
	StoredAt time.Time            `json:"storedAt"`
	Snapshot *models.RoomSnapshot `json:"snapshot"`
}

// RedisRoomCache 鍵格式：
//
//	{prefix}:snapshot:{roomID} 快照本體
//	{prefix}:code:{CODE}       房間 ID
type RedisRoomCache struct {
	client *redis.Client
	prefix string
}

func NewRedisRoomCache(cfg config.RedisConfig, prefix string) (*RedisRoomCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisRoomCache{
		client: client,
		prefix: prefix,
	}, nil
}

func (c *RedisRoomCache) SnapshotKey(roomID uint) string {
	return fmt.Sprintf("%s:snapshot:%d", c.prefix, roomID)
}

// CodeKey 房間代碼不分大小寫
func (c *RedisRoomCache) CodeKey(code string) string {
	return fmt.Sprintf("%s:code:%s", c.prefix, normalizeCode(code))
}

func (c *RedisRoomCache) GetByID(ctx context.Context, roomID uint) (*models.RoomSnapshot, error) {
	data, err := c.client.Get(ctx, c.SnapshotKey(roomID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get snapshot from redis: %w", err)
	}

	var cached cachedSnapshot
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	if cached.Version != snapshotVersion || cached.Snapshot == nil || cached.Snapshot.Room.ID != roomID {
		return nil, ErrCacheMiss
	}

	return cached.Snapshot, nil
}

// GetByCode 先解析別名再讀快照；別名指向的快照代碼不符時視為 miss
func (c *RedisRoomCache) GetByCode(ctx context.Context, code string) (*models.RoomSnapshot, error) {
	raw, err := c.client.Get(ctx, c.CodeKey(code)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get room code alias from redis: %w", err)
	}

	roomID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil, ErrCacheMiss
	}

	snapshot, err := c.GetByID(ctx, uint(roomID))
	if err != nil {
		return nil, err
	}
	if normalizeCode(snapshot.Room.RoomCode) != normalizeCode(code) {
		return nil, ErrCacheMiss
	}
	return snapshot, nil
}

// Set 快照與代碼別名以同一個 MULTI 寫入，兩者的 TTL 相同
func (c *RedisRoomCache) Set(ctx context.Context, snapshot *models.RoomSnapshot, ttl time.Duration) error {
	data, err := json.Marshal(cachedSnapshot{
		Version:  snapshotVersion,
		StoredAt: time.Now(),
		Snapshot: snapshot,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	room := snapshot.Room
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.SnapshotKey(room.ID), data, ttl)
		if room.RoomCode != "" {
			pipe.Set(ctx, c.CodeKey(room.RoomCode), strconv.FormatUint(uint64(room.ID), 10), ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set snapshot in redis: %w", err)
	}

	return nil
}

func (c *RedisRoomCache) Invalidate(ctx context.Context, roomID uint, code string) error {
	keys := []string{c.SnapshotKey(roomID)}
	if code != "" {
		keys = append(keys, c.CodeKey(code))
	}

	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot from redis: %w", err)
	}

	return nil
}

func (c *RedisRoomCache) Close() error {
	return c.client.Close()
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
