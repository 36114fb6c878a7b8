package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"debate_room/internal/models"
	"debate_room/internal/service"
	"debate_room/pkg/log"
)

// 定義 WebSocket 升級器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler 把房間參與者與房主接上房間事件推播
type WebSocketHandler struct {
	hub         *service.RoomHub
	roomService *service.RoomService
}

func NewWebSocketHandler(hub *service.RoomHub, roomService *service.RoomService) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		roomService: roomService,
	}
}

// HandleWebSocket 升級前先確認用戶屬於該房間
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	roomID, ok := paramID(c, "id", service.ErrRoomNotFound)
	if !ok {
		return
	}
	userID := currentUserID(c)

	snapshot, err := h.roomService.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !memberOf(snapshot.Room.CreatorID, snapshot.Participants, userID) {
		respondError(c, service.ErrNotParticipant)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Ctx(c.Request.Context()).Warn().Err(err).Uint(log.FieldRoomID, roomID).Msg("websocket upgrade failed")
		return
	}

	log.Ctx(c.Request.Context()).Info().Uint(log.FieldRoomID, roomID).Uint(log.FieldUserID, userID).Msg("websocket connected")
	h.hub.HandleConnection(conn, roomID, userID)
}

func memberOf(creatorID uint, participants []models.Participant, userID uint) bool {
	if creatorID == userID {
		return true
	}
	for _, p := range participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
