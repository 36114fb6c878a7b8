package repository

import (
	"context"

	"debate_room/internal/models"
	"debate_room/internal/storage"
)

type ParticipantRepository interface {
	Create(ctx context.Context, participant *models.Participant) error
	Update(ctx context.Context, participant *models.Participant) error
	Delete(ctx context.Context, participant *models.Participant) error
	// ListByRoom 依加入時間排序，並帶出用戶資料
	ListByRoom(ctx context.Context, roomID uint) ([]models.Participant, error)
	FindByRoomAndUser(ctx context.Context, roomID, userID uint) (*models.Participant, error)
	FindByRoomAndRole(ctx context.Context, roomID uint, role string) (*models.Participant, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Participant, error)
}

type participantRepository struct {
	baseRepository[models.Participant]
}

func NewParticipantRepository(db *storage.DB) ParticipantRepository {
	return &participantRepository{baseRepository[models.Participant]{db: db}}
}

func (r *participantRepository) ListByRoom(ctx context.Context, roomID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.conn(ctx).
		Preload("User").
		Where("room_id = ?", roomID).
		Order("joined_at ASC, id ASC").
		Find(&participants).Error
	return participants, translate(err)
}

func (r *participantRepository) FindByRoomAndUser(ctx context.Context, roomID, userID uint) (*models.Participant, error) {
	var participant models.Participant
	err := r.conn(ctx).
		Preload("User").
		Where("room_id = ? AND user_id = ?", roomID, userID).
		First(&participant).Error
	if err != nil {
		return nil, translate(err)
	}
	return &participant, nil
}

func (r *participantRepository) FindByRoomAndRole(ctx context.Context, roomID uint, role string) (*models.Participant, error) {
	var participant models.Participant
	err := r.conn(ctx).
		Preload("User").
		Where("room_id = ? AND speaker_role = ?", roomID, role).
		First(&participant).Error
	if err != nil {
		return nil, translate(err)
	}
	return &participant, nil
}

func (r *participantRepository) ListByUser(ctx context.Context, userID uint) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.conn(ctx).Where("user_id = ?", userID).Find(&participants).Error
	return participants, translate(err)
}
