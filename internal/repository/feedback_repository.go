package repository

import (
	"context"

	"debate_room/internal/models"
	"debate_room/internal/storage"
)

type FeedbackRepository interface {
	CreateBatch(ctx context.Context, entries []models.Feedback) error
	ListByRoom(ctx context.Context, roomID uint) ([]models.Feedback, error)
}

type feedbackRepository struct {
	baseRepository[models.Feedback]
}

func NewFeedbackRepository(db *storage.DB) FeedbackRepository {
	return &feedbackRepository{baseRepository[models.Feedback]{db: db}}
}

func (r *feedbackRepository) CreateBatch(ctx context.Context, entries []models.Feedback) error {
	if len(entries) == 0 {
		return nil
	}
	return translate(r.conn(ctx).Create(&entries).Error)
}

func (r *feedbackRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Feedback, error) {
	var entries []models.Feedback
	err := r.conn(ctx).Where("room_id = ?", roomID).Order("id ASC").Find(&entries).Error
	return entries, translate(err)
}
