package service

import (
	"context"
	"errors"
	"time"

	"debate_room/internal/ai"
	"debate_room/internal/cache"
	"debate_room/internal/format"
	"debate_room/internal/models"
	"debate_room/internal/repository"
	"debate_room/pkg/log"
)

// Options 建立服務所需的外部協作者；nil 的欄位會使用不做事的預設值
type Options struct {
	Cache        cache.RoomCache
	CacheTTL     time.Duration
	Notifier     Notifier
	Motions      ai.MotionGenerator
	Feedback     ai.FeedbackGenerator
	Transcriber  ai.Transcriber
	GraceSeconds int
	StaleAfter   time.Duration
}

type Services struct {
	User     *UserService
	Room     *RoomService
	Speech   *SpeechService
	Motion   *MotionService
	Feedback *FeedbackService
}

func NewServices(repos *repository.Repositories, opts Options) *Services {
	if opts.Cache == nil {
		opts.Cache = cache.NopRoomCache{}
	}
	if opts.Notifier == nil {
		opts.Notifier = NopNotifier{}
	}

	snapshots := NewSnapshotCache(opts.Cache, opts.CacheTTL)
	feedbackService := NewFeedbackService(repos, snapshots, opts.Notifier, opts.Feedback)

	return &Services{
		User:     NewUserService(repos),
		Room:     NewRoomService(repos, snapshots, opts.Notifier, feedbackService),
		Speech:   NewSpeechService(repos, snapshots, opts.Notifier, opts.Transcriber, opts.GraceSeconds, opts.StaleAfter),
		Motion:   NewMotionService(repos, snapshots, opts.Notifier, opts.Motions),
		Feedback: feedbackService,
	}
}

// SnapshotCache 房間快照的快取；讀寫失敗只記錄日誌，一律退回資料庫
type SnapshotCache struct {
	cache cache.RoomCache
	ttl   time.Duration
}

func NewSnapshotCache(c cache.RoomCache, ttl time.Duration) *SnapshotCache {
	if c == nil {
		c = cache.NopRoomCache{}
	}
	return &SnapshotCache{cache: c, ttl: ttl}
}

func (s *SnapshotCache) byID(ctx context.Context, roomID uint) (*models.RoomSnapshot, bool) {
	snapshot, err := s.cache.GetByID(ctx, roomID)
	return s.hit(ctx, snapshot, err)
}

func (s *SnapshotCache) byCode(ctx context.Context, code string) (*models.RoomSnapshot, bool) {
	snapshot, err := s.cache.GetByCode(ctx, code)
	return s.hit(ctx, snapshot, err)
}

func (s *SnapshotCache) hit(ctx context.Context, snapshot *models.RoomSnapshot, err error) (*models.RoomSnapshot, bool) {
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Ctx(ctx).Warn().Err(err).Msg("room cache get failed")
		}
		return nil, false
	}
	return snapshot, true
}

func (s *SnapshotCache) set(ctx context.Context, snapshot *models.RoomSnapshot) {
	if s.ttl <= 0 {
		return
	}
	if err := s.cache.Set(ctx, snapshot, s.ttl); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint(log.FieldRoomID, snapshot.Room.ID).Msg("room cache set failed")
	}
}

// invalidate 每次狀態轉換提交後呼叫
func (s *SnapshotCache) invalidate(ctx context.Context, room *models.Room) {
	if err := s.cache.Invalidate(ctx, room.ID, room.RoomCode); err != nil {
		log.Ctx(ctx).Warn().Err(err).Uint(log.FieldRoomID, room.ID).Msg("room cache invalidate failed")
	}
}

// formatOf 取得房間使用的賽制
func formatOf(room *models.Room) (*format.Format, error) {
	f, ok := format.Lookup(room.Format)
	if !ok {
		return nil, ErrUnsupportedFormat
	}
	return f, nil
}

// notFoundAs 將 repository.ErrRecordNotFound 轉成指定的服務錯誤
func notFoundAs(err error, sentinel *Error) error {
	if errors.Is(err, repository.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// currentSpeaker 依目前發言格找出實際發言的參與者；結辯對應到 PM 或 LO 的席位
func currentSpeaker(ctx context.Context, repos *repository.Repositories, room *models.Room, f *format.Format) (format.Slot, *models.Participant, error) {
	slot, ok := f.SlotAt(room.CurrentSpeakerIndex)
	if !ok {
		return format.Slot{}, nil, nil
	}
	seat := f.SeatFor(slot.Role)
	participant, err := repos.Participant.FindByRoomAndRole(ctx, room.ID, string(seat))
	if errors.Is(err, repository.ErrRecordNotFound) {
		return slot, nil, nil
	}
	if err != nil {
		return slot, nil, err
	}
	return slot, participant, nil
}
