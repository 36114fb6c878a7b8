package repository

import (
	"context"

	"debate_room/internal/models"
	"debate_room/internal/storage"
)

type ArgumentRepository interface {
	Create(ctx context.Context, node *models.ArgumentNode) error
	// ListByRoom 依建立順序，父節點一定排在子節點之前
	ListByRoom(ctx context.Context, roomID uint) ([]models.ArgumentNode, error)
}

type argumentRepository struct {
	baseRepository[models.ArgumentNode]
}

func NewArgumentRepository(db *storage.DB) ArgumentRepository {
	return &argumentRepository{baseRepository[models.ArgumentNode]{db: db}}
}

func (r *argumentRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.ArgumentNode, error) {
	var nodes []models.ArgumentNode
	err := r.conn(ctx).Where("room_id = ?", roomID).Order("id ASC").Find(&nodes).Error
	return nodes, translate(err)
}
