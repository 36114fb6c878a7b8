package models

import (
	"encoding/json"
	"time"
)

// EventType 房間事件類型
type EventType string

const (
	EventParticipantJoined  EventType = "participant_joined"
	EventParticipantLeft    EventType = "participant_left"
	EventParticipantReady   EventType = "participant_ready"
	EventMotionSet          EventType = "motion_set"
	EventDebateStarted      EventType = "debate_started"
	EventSpeakerAdvanced    EventType = "speaker_advanced"
	EventDebateCompleted    EventType = "debate_completed"
	EventDebateCancelled    EventType = "debate_cancelled"
	EventSpeechStarted      EventType = "speech_started"
	EventSpeechEnded        EventType = "speech_ended"
	EventPOIOffered         EventType = "poi_offered"
	EventTranscriptAppended EventType = "transcript_appended"
	EventFeedbackReady      EventType = "feedback_ready"
	EventAnnouncement       EventType = "announcement"
)

// RoomEvent 代表一個統一的消息結構，同時用於 WebSocket 推送與 Redis 廣播
type RoomEvent struct {
	Type      EventType       `json:"type"`
	RoomID    uint            `json:"roomId"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewRoomEvent 建立事件，payload 會先編碼成 JSON
func NewRoomEvent(eventType EventType, roomID uint, payload interface{}) (*RoomEvent, error) {
	event := &RoomEvent{
		Type:      eventType,
		RoomID:    roomID,
		Timestamp: time.Now(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		event.Payload = data
	}
	return event, nil
}

// UnmarshalPayload 解碼 payload
func (e *RoomEvent) UnmarshalPayload(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// Announcement 語音播報內容
type Announcement struct {
	Text string `json:"text"`
}
