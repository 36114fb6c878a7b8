package models

import (
	"time"

	"gorm.io/gorm"
)

// Room 表示一個辯論房間
type Room struct {
	gorm.Model
	RoomCode            string     `gorm:"type:varchar(6);uniqueIndex;not null" json:"roomCode"`
	CreatorID           uint       `gorm:"index;not null" json:"creatorId"`
	Format              string     `gorm:"type:varchar(50);not null" json:"format"`
	Status              RoomStatus `gorm:"type:varchar(20);index;not null" json:"status"`
	CurrentPhase        RoomPhase  `gorm:"type:varchar(20);not null" json:"currentPhase"`
	CurrentSpeakerIndex int        `gorm:"not null;default:0" json:"currentSpeakerIndex"`
	MotionID            *uint      `json:"motionId"`
	StartedAt           *time.Time `json:"startedAt"`
	EndedAt             *time.Time `json:"endedAt"`
}

// RoomStatus 定義房間狀態的類型
type RoomStatus string

const (
	RoomStatusWaiting    RoomStatus = "waiting"
	RoomStatusInProgress RoomStatus = "in_progress"
	RoomStatusCompleted  RoomStatus = "completed"
	RoomStatusCancelled  RoomStatus = "cancelled"
)

// RoomPhase 與 RoomStatus 一起移動
type RoomPhase string

const (
	RoomPhaseSetup     RoomPhase = "setup"
	RoomPhaseDebate    RoomPhase = "debate"
	RoomPhaseFeedback  RoomPhase = "feedback"
	RoomPhaseCompleted RoomPhase = "completed"
)

// Participant 佔據房間中的一個席位
type Participant struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	RoomID      uint      `gorm:"not null;uniqueIndex:idx_participant_seat;uniqueIndex:idx_participant_user" json:"roomId"`
	UserID      uint      `gorm:"not null;uniqueIndex:idx_participant_user" json:"userId"`
	Team        string    `gorm:"type:varchar(20);not null" json:"team"`
	SpeakerRole string    `gorm:"type:varchar(40);not null;uniqueIndex:idx_participant_seat" json:"speakerRole"`
	IsReady     bool      `gorm:"not null;default:false" json:"isReady"`
	JoinedAt    time.Time `json:"joinedAt"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
