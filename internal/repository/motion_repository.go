package repository

import (
	"context"

	"debate_room/internal/models"
	"debate_room/internal/storage"
)

type MotionRepository interface {
	Create(ctx context.Context, motion *models.Motion) error
	FindByID(ctx context.Context, id uint) (*models.Motion, error)
}

type motionRepository struct {
	baseRepository[models.Motion]
}

func NewMotionRepository(db *storage.DB) MotionRepository {
	return &motionRepository{baseRepository[models.Motion]{db: db}}
}
