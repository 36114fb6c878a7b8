package models

import "debate_room/internal/format"

// RoomSnapshot 客戶端輪詢取得的房間完整狀態
type RoomSnapshot struct {
	Room                Room          `json:"room"`
	Participants        []Participant `json:"participants"`
	Motion              *Motion       `json:"motion"`
	CurrentSlot         *format.Slot  `json:"currentSlot"`
	CurrentSpeaker      *Participant  `json:"currentSpeaker"`
	ActiveSpeakingOrder []format.Slot `json:"activeSpeakingOrder"`
	OpenSpeech          *Speech       `json:"openSpeech"`
}

// AllModels 需要自動遷移的 GORM 模型
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Room{},
		&Participant{},
		&Motion{},
		&Speech{},
		&TranscriptSegment{},
		&POI{},
		&Feedback{},
		&ArgumentNode{},
	}
}
