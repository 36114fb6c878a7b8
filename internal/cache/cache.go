package cache

import (
	"context"
	"errors"
	"time"

	"debate_room/internal/models"
)

var ErrCacheMiss = errors.New("cache miss")

// RoomCache 房間快照快取；快照依房間 ID 存放，房間代碼只是指向 ID 的別名。
// 狀態轉換後由服務層呼叫 Invalidate
type RoomCache interface {
	GetByID(ctx context.Context, roomID uint) (*models.RoomSnapshot, error)
	GetByCode(ctx context.Context, code string) (*models.RoomSnapshot, error)
	Set(ctx context.Context, snapshot *models.RoomSnapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, roomID uint, code string) error
	Close() error
}

// NopRoomCache 未啟用 Redis 時使用，永遠 cache miss
type NopRoomCache struct{}

func (NopRoomCache) GetByID(context.Context, uint) (*models.RoomSnapshot, error) {
	return nil, ErrCacheMiss
}

func (NopRoomCache) GetByCode(context.Context, string) (*models.RoomSnapshot, error) {
	return nil, ErrCacheMiss
}

func (NopRoomCache) Set(context.Context, *models.RoomSnapshot, time.Duration) error {
	return nil
}

func (NopRoomCache) Invalidate(context.Context, uint, string) error { return nil }

func (NopRoomCache) Close() error { return nil }
