package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"debate_room/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyBus 前 failures 次訂閱失敗，之後把發布的事件直接送回訂閱頻道
type flakyBus struct {
	mu        sync.Mutex
	failures  int
	attempts  int
	published []string
	events    chan *models.RoomEvent
}

func newFlakyBus(failures int) *flakyBus {
	return &flakyBus{failures: failures, events: make(chan *models.RoomEvent, 16)}
}

func (b *flakyBus) Publish(_ context.Context, channel string, event *models.RoomEvent) error {
	b.mu.Lock()
	b.published = append(b.published, channel)
	b.mu.Unlock()
	b.events <- event
	return nil
}

func (b *flakyBus) SubscribePattern(ctx context.Context, _ string) (<-chan *models.RoomEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attempts++
	if b.attempts <= b.failures {
		return nil, errors.New("redis unavailable")
	}

	out := make(chan *models.RoomEvent)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-b.events:
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *flakyBus) Close() error { return nil }

func (b *flakyBus) publishedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func startHub(t *testing.T, hub *RoomHub) {
	t.Helper()
	hub.retryDelay = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func dialRoom(t *testing.T, hub *RoomHub, roomID uint) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.HandleConnection(conn, roomID, 7)
	}))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.RoomClients(roomID) == 1 }, time.Second, 5*time.Millisecond)
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) models.RoomEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var event models.RoomEvent
	require.NoError(t, json.Unmarshal(data, &event))
	return event
}

func TestRoomHub_LocalOnly(t *testing.T) {
	hub := NewRoomHub(nil)
	startHub(t, hub)
	conn := dialRoom(t, hub, 1)

	hub.Announce(context.Background(), 1, "Your time begins now.")

	event := readEvent(t, conn)
	assert.Equal(t, models.EventAnnouncement, event.Type)
	assert.JSONEq(t, `{"text":"Your time begins now."}`, string(event.Payload))
}

func TestRoomHub_BroadcastsLocallyWhileSubscriptionDown(t *testing.T) {
	bus := newFlakyBus(1 << 30)
	hub := NewRoomHub(bus)
	startHub(t, hub)
	conn := dialRoom(t, hub, 1)

	event, err := models.NewRoomEvent(models.EventSpeakerAdvanced, 1, nil)
	require.NoError(t, err)
	hub.Publish(context.Background(), event)

	got := readEvent(t, conn)
	assert.Equal(t, models.EventSpeakerAdvanced, got.Type)
	assert.Zero(t, bus.publishedCount())
}

func TestRoomHub_ResubscribesAndUsesBus(t *testing.T) {
	bus := newFlakyBus(2)
	hub := NewRoomHub(bus)
	startHub(t, hub)
	conn := dialRoom(t, hub, 3)

	require.Eventually(t, hub.subscribed.Load, time.Second, 5*time.Millisecond)

	event, err := models.NewRoomEvent(models.EventDebateStarted, 3, nil)
	require.NoError(t, err)
	hub.Publish(context.Background(), event)

	got := readEvent(t, conn)
	assert.Equal(t, models.EventDebateStarted, got.Type)
	assert.Equal(t, 1, bus.publishedCount())
}
