package handlers

import (
	"github.com/gin-gonic/gin"

	"debate_room/internal/format"
	"debate_room/internal/service"
)

// RoomHandler 處理房間生命週期、辯題與評語的請求
type RoomHandler struct {
	roomService     *service.RoomService
	motionService   *service.MotionService
	feedbackService *service.FeedbackService
}

func NewRoomHandler(roomService *service.RoomService, motionService *service.MotionService, feedbackService *service.FeedbackService) *RoomHandler {
	return &RoomHandler{
		roomService:     roomService,
		motionService:   motionService,
		feedbackService: feedbackService,
	}
}

type CreateRoomInput struct {
	Format string `json:"format"`
}

type JoinRoomInput struct {
	RoomCode    string `json:"roomCode" binding:"required,roomcode"`
	Team        string `json:"team" binding:"required"`
	SpeakerRole string `json:"speakerRole" binding:"required"`
}

type ReadyInput struct {
	Ready *bool `json:"ready" binding:"required"`
}

type MotionInput struct {
	TopicArea  string `json:"topicArea" binding:"required"`
	Difficulty string `json:"difficulty" binding:"required"`
}

// GetFormat 回傳賽制定義供前端顯示
func (h *RoomHandler) GetFormat(c *gin.Context) {
	success(c, format.AsianParliamentary())
}

// ListRooms 大廳中等待開始的房間
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.roomService.ListWaitingRooms(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, rooms)
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var input CreateRoomInput
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), currentUserID(c), input.Format)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, room)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}

	snapshot, err := h.roomService.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, snapshot)
}

func (h *RoomHandler) GetRoomByCode(c *gin.Context) {
	snapshot, err := h.roomService.GetRoomByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, snapshot)
}

func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var input JoinRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	participant, err := h.roomService.JoinRoom(c.Request.Context(), currentUserID(c), input.RoomCode, input.Team, input.SpeakerRole)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, participant)
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}

	if err := h.roomService.LeaveRoom(c.Request.Context(), currentUserID(c), roomID); err != nil {
		respondError(c, err)
		return
	}
	success(c, gin.H{"roomId": roomID})
}

func (h *RoomHandler) SetReady(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}
	var input ReadyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	participant, err := h.roomService.SetReady(c.Request.Context(), currentUserID(c), roomID, *input.Ready)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, participant)
}

func (h *RoomHandler) StartDebate(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}

	room, err := h.roomService.StartDebate(c.Request.Context(), currentUserID(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, room)
}

func (h *RoomHandler) AdvanceSpeaker(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}

	result, err := h.roomService.AdvanceSpeaker(c.Request.Context(), currentUserID(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, result)
}

func (h *RoomHandler) CancelRoom(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}

	room, err := h.roomService.CancelRoom(c.Request.Context(), currentUserID(c), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, room)
}

// GenerateMotion 呼叫 AI 產生辯題，可能需要數秒
func (h *RoomHandler) GenerateMotion(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}
	var input MotionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	motion, err := h.motionService.GenerateMotion(c.Request.Context(), currentUserID(c), roomID, input.TopicArea, input.Difficulty)
	if err != nil {
		respondError(c, err)
		return
	}
	created(c, motion)
}

func (h *RoomHandler) ListFeedback(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}

	entries, err := h.feedbackService.ListFeedback(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, entries)
}

func (h *RoomHandler) ListArguments(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}

	nodes, err := h.feedbackService.ListArguments(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, nodes)
}
