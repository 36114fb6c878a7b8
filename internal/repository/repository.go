package repository

import (
	"context"

	"debate_room/internal/storage"

	"gorm.io/gorm"
)

type Repositories struct {
	db          *storage.DB
	User        UserRepository
	Room        RoomRepository
	Participant ParticipantRepository
	Motion      MotionRepository
	Speech      SpeechRepository
	POI         POIRepository
	Feedback    FeedbackRepository
	Argument    ArgumentRepository
}

func NewRepositories(db *storage.DB) *Repositories {
	return &Repositories{
		db:          db,
		User:        NewUserRepository(db),
		Room:        NewRoomRepository(db),
		Participant: NewParticipantRepository(db),
		Motion:      NewMotionRepository(db),
		Speech:      NewSpeechRepository(db),
		POI:         NewPOIRepository(db),
		Feedback:    NewFeedbackRepository(db),
		Argument:    NewArgumentRepository(db),
	}
}

// Transaction 在單一交易中執行 fn；fn 只能使用傳入的 tx，回傳錯誤時整筆回滾
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(&storage.DB{DB: tx}))
	})
}
