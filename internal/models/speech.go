package models

import "time"

// Speech 一次發言，每個房間同時最多一個未結束的發言；每個發言格只能發言一次
type Speech struct {
	ID           uint                `gorm:"primarykey" json:"id"`
	RoomID       uint                `gorm:"uniqueIndex:idx_speech_slot,priority:1;not null" json:"roomId"`
	SpeakerRole  string              `gorm:"type:varchar(40);uniqueIndex:idx_speech_slot,priority:2;not null" json:"speakerRole"`
	UserID       uint                `gorm:"not null" json:"userId"`
	SpeechType   string              `gorm:"type:varchar(20);not null" json:"speechType"`
	AllottedTime int                 `gorm:"not null" json:"allottedTime"` // 秒
	Duration     *int                `json:"duration"`
	StartedAt    time.Time           `gorm:"not null" json:"startedAt"`
	EndedAt      *time.Time          `gorm:"index" json:"endedAt"`
	Segments     []TranscriptSegment `gorm:"foreignKey:SpeechID" json:"segments,omitempty"`
}

// IsOpen 尚未記錄結束時間
func (s *Speech) IsOpen() bool {
	return s.EndedAt == nil
}

// Elapsed 以伺服器時間計算已經過的秒數
func (s *Speech) Elapsed(now time.Time) int {
	return int(now.Sub(s.StartedAt) / time.Second)
}

// TranscriptSegment 逐段附加的逐字稿
type TranscriptSegment struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	SpeechID      uint      `gorm:"index;not null" json:"speechId"`
	Offset        int       `gorm:"column:offset_seconds;not null" json:"offset"` // 發言開始後的秒數
	Text          string    `gorm:"type:text;not null" json:"text"`
	Language      string    `gorm:"type:varchar(16)" json:"language"`
	AudioDuration float64   `json:"audioDuration"`
	CreatedAt     time.Time `json:"createdAt"`
}

// POI 資訊點
type POI struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	RoomID    uint      `gorm:"index;not null" json:"roomId"`
	SpeechID  uint      `gorm:"index;not null" json:"speechId"`
	OffererID uint      `gorm:"not null" json:"offererId"`
	Team      string    `gorm:"type:varchar(20);not null" json:"team"`
	Timestamp int       `gorm:"not null" json:"timestamp"` // 發言開始後的秒數
	CreatedAt time.Time `json:"createdAt"`
}

func (POI) TableName() string {
	return "pois"
}
