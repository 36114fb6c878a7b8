package service

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"debate_room/internal/models"
	"debate_room/internal/pubsub"
	"debate_room/pkg/log"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
	sendBufferSize = 256

	resubscribeDelay = 2 * time.Second
)

// EventPublisher 發布房間事件
type EventPublisher interface {
	Publish(ctx context.Context, event *models.RoomEvent)
}

// AnnouncementSink 語音播報的出口，客戶端收到後以語音合成念出
type AnnouncementSink interface {
	Announce(ctx context.Context, roomID uint, text string)
}

// Notifier 服務層推送狀態變化的介面
type Notifier interface {
	EventPublisher
	AnnouncementSink
}

// NopNotifier 不推送任何事件
type NopNotifier struct{}

func (NopNotifier) Publish(context.Context, *models.RoomEvent) {}

func (NopNotifier) Announce(context.Context, uint, string) {}

// Client 代表一個 WebSocket 客戶端連接
type Client struct {
	Conn   *websocket.Conn // WebSocket 連接
	UserID uint            // 用戶 ID
	RoomID uint            // 房間 ID
	send   chan []byte     // 已編碼的事件，由 writePump 送出
	done   chan struct{}
	once   sync.Once
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		c.Conn.Close()
	})
}

// RoomHub 管理各房間的 WebSocket 連接；設定 bus 時事件經由 Redis 廣播到所有實例
type RoomHub struct {
	clients    map[uint]map[*Client]bool // 兩層 map: roomID -> client -> bool
	clientsMux sync.RWMutex              // 用於保護 clients map 的讀寫鎖
	bus        pubsub.PubSub
	subscribed atomic.Bool // Run 正在接收 bus 上的事件
	retryDelay time.Duration
}

// NewRoomHub bus 可以為 nil，此時只在本機廣播
func NewRoomHub(bus pubsub.PubSub) *RoomHub {
	return &RoomHub{
		clients:    make(map[uint]map[*Client]bool),
		bus:        bus,
		retryDelay: resubscribeDelay,
	}
}

// Run 訂閱 Redis 上所有房間的事件並轉送給本機連接，直到 ctx 結束；
// 訂閱失敗或中斷時會重新訂閱，期間 Publish 改為本機廣播
func (h *RoomHub) Run(ctx context.Context) error {
	if h.bus == nil {
		<-ctx.Done()
		return nil
	}

	for {
		events, err := h.bus.SubscribePattern(ctx, pubsub.RoomChannelPattern)
		if err != nil {
			log.L().Warn().Err(err).Msg("subscribe room events failed, broadcasting locally")
		} else {
			h.subscribed.Store(true)
			for event := range events {
				h.BroadcastToRoom(event)
			}
			h.subscribed.Store(false)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(h.retryDelay):
		}
	}
}

// Publish 訂閱中時發布到 Redis，由 Run 轉送；未訂閱或發布失敗則退回本機廣播
func (h *RoomHub) Publish(ctx context.Context, event *models.RoomEvent) {
	if h.bus != nil && h.subscribed.Load() {
		err := h.bus.Publish(ctx, pubsub.RoomChannel(event.RoomID), event)
		if err == nil {
			return
		}
		log.Ctx(ctx).Warn().Err(err).Uint(log.FieldRoomID, event.RoomID).Msg("publish room event to redis failed")
	}
	h.BroadcastToRoom(event)
}

// Announce 以 announcement 事件送出播報文字
func (h *RoomHub) Announce(ctx context.Context, roomID uint, text string) {
	event, err := models.NewRoomEvent(models.EventAnnouncement, roomID, models.Announcement{Text: text})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("build announcement failed")
		return
	}
	h.Publish(ctx, event)
}

// HandleConnection 處理新的 WebSocket 連接，阻塞到連接關閉
func (h *RoomHub) HandleConnection(conn *websocket.Conn, roomID, userID uint) {
	client := &Client{
		Conn:   conn,
		UserID: userID,
		RoomID: roomID,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
	}

	h.addClient(client)

	// 確保連接關閉時清理資源
	defer func() {
		h.removeClient(client)
		client.close()
	}()

	go h.writePump(client)
	h.readPump(client)
}

// readPump 客戶端不會送出指令，只處理 pong 與關閉
func (h *RoomHub) readPump(client *Client) {
	client.Conn.SetReadLimit(maxMessageSize)
	client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				l := log.L().With().Uint(log.FieldRoomID, client.RoomID).Uint(log.FieldUserID, client.UserID).Logger()
				l.Warn().Err(err).Msg("websocket unexpected close")
			}
			return
		}
	}
}

// writePump 處理向客戶端發送消息的邏輯
func (h *RoomHub) writePump(client *Client) {
	// 設置心跳檢查計時器
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-client.done:
			return

		case message := <-client.send:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				client.close()
				return
			}

		case <-ticker.C:
			// 發送心跳包
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				client.close()
				return
			}
		}
	}
}

// BroadcastToRoom 向房間內的所有本機客戶端廣播事件
func (h *RoomHub) BroadcastToRoom(event *models.RoomEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.L().Error().Err(err).Msg("room event encoding error")
		return
	}

	var slow []*Client

	h.clientsMux.RLock()
	for client := range h.clients[event.RoomID] {
		select {
		case client.send <- data:
		default:
			// 客戶端消息隊列已滿
			slow = append(slow, client)
		}
	}
	h.clientsMux.RUnlock()

	for _, client := range slow {
		h.removeClient(client)
		client.close()
	}
}

// addClient 安全地添加新的客戶端連接
func (h *RoomHub) addClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if h.clients[client.RoomID] == nil {
		h.clients[client.RoomID] = make(map[*Client]bool)
	}
	h.clients[client.RoomID][client] = true
}

// removeClient 安全地移除客戶端連接
func (h *RoomHub) removeClient(client *Client) {
	h.clientsMux.Lock()
	defer h.clientsMux.Unlock()

	if clients, ok := h.clients[client.RoomID]; ok {
		delete(clients, client)
		// 如果房間空了，刪除房間
		if len(clients) == 0 {
			delete(h.clients, client.RoomID)
		}
	}
}

// RoomClients 獲取指定房間的在線客戶端數量
func (h *RoomHub) RoomClients(roomID uint) int {
	h.clientsMux.RLock()
	defer h.clientsMux.RUnlock()

	return len(h.clients[roomID])
}

// emit 建立並發布事件；編碼失敗只記錄日誌
func emit(ctx context.Context, n EventPublisher, eventType models.EventType, roomID uint, payload interface{}) {
	event, err := models.NewRoomEvent(eventType, roomID, payload)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("event", string(eventType)).Msg("build room event failed")
		return
	}
	n.Publish(ctx, event)
}
