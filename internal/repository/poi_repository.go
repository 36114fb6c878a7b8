package repository

import (
	"context"

	"debate_room/internal/models"
	"debate_room/internal/storage"
)

type POIRepository interface {
	Create(ctx context.Context, poi *models.POI) error
	ListByRoom(ctx context.Context, roomID uint) ([]models.POI, error)
}

type poiRepository struct {
	baseRepository[models.POI]
}

func NewPOIRepository(db *storage.DB) POIRepository {
	return &poiRepository{baseRepository[models.POI]{db: db}}
}

func (r *poiRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.POI, error) {
	var pois []models.POI
	err := r.conn(ctx).Where("room_id = ?", roomID).Order("created_at ASC, id ASC").Find(&pois).Error
	return pois, translate(err)
}
