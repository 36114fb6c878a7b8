package repository

import (
	"context"
	"time"

	"debate_room/internal/models"
	"debate_room/internal/storage"

	"gorm.io/gorm"
)

type SpeechRepository interface {
	Create(ctx context.Context, speech *models.Speech) error
	FindByID(ctx context.Context, id uint) (*models.Speech, error)
	Update(ctx context.Context, speech *models.Speech) error
	// FindOpenByRoom 房間中尚未結束的發言，沒有則回傳 ErrRecordNotFound
	FindOpenByRoom(ctx context.Context, roomID uint) (*models.Speech, error)
	ExistsForSlot(ctx context.Context, roomID uint, speakerRole string) (bool, error)
	// ListByRoom 依開始時間排序，並帶出逐字稿
	ListByRoom(ctx context.Context, roomID uint) ([]models.Speech, error)
	// ListOpenStartedBefore 供逾時清理使用
	ListOpenStartedBefore(ctx context.Context, before time.Time) ([]models.Speech, error)
	AppendSegment(ctx context.Context, segment *models.TranscriptSegment) error
}

type speechRepository struct {
	baseRepository[models.Speech]
}

func NewSpeechRepository(db *storage.DB) SpeechRepository {
	return &speechRepository{baseRepository[models.Speech]{db: db}}
}

func (r *speechRepository) FindOpenByRoom(ctx context.Context, roomID uint) (*models.Speech, error) {
	var speech models.Speech
	err := r.conn(ctx).
		Where("room_id = ? AND ended_at IS NULL", roomID).
		Order("started_at DESC").
		First(&speech).Error
	if err != nil {
		return nil, translate(err)
	}
	return &speech, nil
}

func (r *speechRepository) ExistsForSlot(ctx context.Context, roomID uint, speakerRole string) (bool, error) {
	var count int64
	err := r.conn(ctx).Model(&models.Speech{}).
		Where("room_id = ? AND speaker_role = ?", roomID, speakerRole).
		Count(&count).Error
	return count > 0, translate(err)
}

func (r *speechRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Speech, error) {
	var speeches []models.Speech
	err := r.conn(ctx).
		Preload("Segments", func(db *gorm.DB) *gorm.DB {
			return db.Order("offset_seconds ASC, id ASC")
		}).
		Where("room_id = ?", roomID).
		Order("started_at ASC, id ASC").
		Find(&speeches).Error
	return speeches, translate(err)
}

func (r *speechRepository) ListOpenStartedBefore(ctx context.Context, before time.Time) ([]models.Speech, error) {
	var speeches []models.Speech
	err := r.conn(ctx).
		Where("ended_at IS NULL AND started_at < ?", before).
		Find(&speeches).Error
	return speeches, translate(err)
}

func (r *speechRepository) AppendSegment(ctx context.Context, segment *models.TranscriptSegment) error {
	return translate(r.conn(ctx).Create(segment).Error)
}
