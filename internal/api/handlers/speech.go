package handlers

import (
	"github.com/gin-gonic/gin"

	"debate_room/internal/service"
)

// SpeechHandler 處理發言計時、質詢與逐字稿
type SpeechHandler struct {
	speechService *service.SpeechService
}

func NewSpeechHandler(speechService *service.SpeechService) *SpeechHandler {
	return &SpeechHandler{speechService: speechService}
}

type StartSpeechInput struct {
	SpeakerRole string `json:"speakerRole"`
}

type EndSpeechInput struct {
	Duration *int `json:"duration" binding:"required"`
}

type POIInput struct {
	SpeechID  uint `json:"speechId" binding:"required"`
	Timestamp *int `json:"timestamp" binding:"required"`
}

type TranscribeInput struct {
	Audio     string `json:"audio" binding:"required,base64"`
	MimeType  string `json:"mimeType"`
	Language  string `json:"language" binding:"omitempty,max=16"`
	Timestamp *int   `json:"timestamp" binding:"omitempty,min=0"`
}

func (h *SpeechHandler) ListSpeeches(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}

	speeches, err := h.speechService.ListSpeeches(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, speeches)
}

func (h *SpeechHandler) StartSpeech(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}
	var input StartSpeechInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
	}

	speech, err := h.speechService.StartSpeech(c.Request.Context(), currentUserID(c), roomID, input.SpeakerRole)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, speech)
}

func (h *SpeechHandler) EndSpeech(c *gin.Context) {
	speechID, ok := paramID(c, "id", service.ErrSpeechNotFound)
	if !ok {
		return
	}
	var input EndSpeechInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	speech, err := h.speechService.EndSpeech(c.Request.Context(), currentUserID(c), speechID, *input.Duration)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, speech)
}

func (h *SpeechHandler) OfferPOI(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}
	var input POIInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	poi, err := h.speechService.OfferPOI(c.Request.Context(), currentUserID(c), roomID, input.SpeechID, *input.Timestamp)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, poi)
}

// Transcribe 轉錄失敗的片段回傳 dropped，仍為 200
func (h *SpeechHandler) Transcribe(c *gin.Context) {
	speechID, ok := paramID(c, "id", service.ErrSpeechNotFound)
	if !ok {
		return
	}
	var input TranscribeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.speechService.Transcribe(c.Request.Context(), currentUserID(c), speechID, service.TranscribeInput{
		Audio:     input.Audio,
		MimeType:  input.MimeType,
		Language:  input.Language,
		Timestamp: input.Timestamp,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, result)
}
