package models

import (
	"time"

	"debate_room/internal/storage"
)

// Motion 由 AI 產生，建立後不可修改
type Motion struct {
	ID                uint                `gorm:"primarykey" json:"id"`
	RoomID            uint                `gorm:"index;not null" json:"roomId"`
	Motion            string              `gorm:"type:text;not null" json:"motion"`
	BackgroundContext string              `gorm:"type:text" json:"backgroundContext"`
	KeyStakeholders   storage.StringArray `json:"keyStakeholders"`
	TopicArea         string              `gorm:"type:varchar(30)" json:"topicArea"`
	Difficulty        string              `gorm:"type:varchar(20)" json:"difficulty"`
	CreatedAt         time.Time           `json:"createdAt"`
}
