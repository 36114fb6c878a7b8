package models

import (
	"time"

	"debate_room/internal/storage"
)

// FeedbackCategory 整體評語或個別發言評語
type FeedbackCategory string

const (
	FeedbackOverall FeedbackCategory = "overall"
	FeedbackSpeech  FeedbackCategory = "speech"
)

type Feedback struct {
	ID           uint                `gorm:"primarykey" json:"id"`
	RoomID       uint                `gorm:"index;not null" json:"roomId"`
	UserID       *uint               `json:"userId"`
	SpeakerRole  string              `gorm:"type:varchar(40)" json:"speakerRole,omitempty"`
	Category     FeedbackCategory    `gorm:"type:varchar(20);not null" json:"category"`
	Score        int                 `json:"score"`
	Summary      string              `gorm:"type:text" json:"summary"`
	Strengths    storage.StringArray `json:"strengths"`
	Improvements storage.StringArray `json:"improvements"`
	CreatedAt    time.Time           `json:"createdAt"`
}
