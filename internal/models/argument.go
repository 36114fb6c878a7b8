package models

import "time"

// ArgumentKind 論點圖上的節點類型
type ArgumentKind string

const (
	ArgumentKindArgument ArgumentKind = "argument"
	ArgumentKindRebuttal ArgumentKind = "rebuttal"
	ArgumentKindClash    ArgumentKind = "clash"
)

// ParseArgumentKind 未知類型回傳 false
func ParseArgumentKind(s string) (ArgumentKind, bool) {
	switch ArgumentKind(s) {
	case ArgumentKindArgument, ArgumentKindRebuttal, ArgumentKindClash:
		return ArgumentKind(s), true
	}
	return "", false
}

// ArgumentNode 評語產生時一併抽出的論點；ParentID 指向被回應的節點
type ArgumentNode struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	RoomID      uint         `gorm:"index;not null" json:"roomId"`
	SpeechID    *uint        `gorm:"index" json:"speechId"`
	ParentID    *uint        `gorm:"index" json:"parentId"`
	SpeakerRole string       `gorm:"type:varchar(40)" json:"speakerRole,omitempty"`
	Team        string       `gorm:"type:varchar(20)" json:"team,omitempty"`
	Kind        ArgumentKind `gorm:"type:varchar(20);not null" json:"kind"`
	Summary     string       `gorm:"type:text;not null" json:"summary"`
	CreatedAt   time.Time    `json:"createdAt"`
}
