package repository

import (
	"context"

	"debate_room/internal/models"
	"debate_room/internal/storage"

	"gorm.io/gorm/clause"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, id uint) (*models.Room, error)
	FindByCode(ctx context.Context, code string) (*models.Room, error)
	// FindByIDForUpdate 必須在交易內呼叫，用來序列化同一房間的狀態轉換
	FindByIDForUpdate(ctx context.Context, id uint) (*models.Room, error)
	FindByCodeForUpdate(ctx context.Context, code string) (*models.Room, error)
	Update(ctx context.Context, room *models.Room) error
	ListByStatus(ctx context.Context, status models.RoomStatus) ([]models.Room, error)
	// ListForUser 用戶建立或參與過的房間，新的在前
	ListForUser(ctx context.Context, userID uint) ([]models.Room, error)
}

type roomRepository struct {
	baseRepository[models.Room]
}

func NewRoomRepository(db *storage.DB) RoomRepository {
	return &roomRepository{baseRepository[models.Room]{db: db}}
}

func (r *roomRepository) FindByCode(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	if err := r.conn(ctx).Where("room_code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) FindByIDForUpdate(ctx context.Context, id uint) (*models.Room, error) {
	return r.findByIDForUpdate(ctx, id)
}

func (r *roomRepository) FindByCodeForUpdate(ctx context.Context, code string) (*models.Room, error) {
	var room models.Room
	err := r.conn(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("room_code = ?", code).
		First(&room).Error
	if err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *roomRepository) ListByStatus(ctx context.Context, status models.RoomStatus) ([]models.Room, error) {
	var rooms []models.Room
	err := r.conn(ctx).Where("status = ?", status).Order("created_at DESC").Find(&rooms).Error
	return rooms, translate(err)
}

func (r *roomRepository) ListForUser(ctx context.Context, userID uint) ([]models.Room, error) {
	var rooms []models.Room
	seated := r.conn(ctx).Model(&models.Participant{}).Select("room_id").Where("user_id = ?", userID)
	err := r.conn(ctx).
		Where("creator_id = ?", userID).
		Or("id IN (?)", seated).
		Order("created_at DESC").
		Find(&rooms).Error
	return rooms, translate(err)
}
