package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arleytruth/Magicwraptool-sub001/internal/middleware"
)

func startHub(t *testing.T, instanceID string) *Hub {
	t.Helper()
	h := NewHubWithInstanceID(nil, instanceID)
	go h.Run()
	t.Cleanup(h.Shutdown)
	return h
}

func waitFrame(t *testing.T, ch <-chan []byte) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestPublishReachesOnlyTargetUser(t *testing.T) {
	h := startHub(t, "a")
	alice := &Connection{UserID: uuid.New(), Send: make(chan []byte, 4)}
	bob := &Connection{UserID: uuid.New(), Send: make(chan []byte, 4)}
	h.Register(alice)
	h.Register(bob)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 2 }, time.Second, 5*time.Millisecond)

	h.Publish(context.Background(), alice.UserID, "balance_updated", map[string]int64{"credits": 9})

	ev := waitFrame(t, alice.Send)
	assert.Equal(t, "balance_updated", ev.Type)
	assert.JSONEq(t, `{"credits":9}`, string(ev.Data))
	assert.Empty(t, bob.Send)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	h := startHub(t, "a")
	c := &Connection{UserID: uuid.New(), Send: make(chan []byte, 1)}
	h.Register(c)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Publish(context.Background(), c.UserID, "job_updated", map[string]string{"status": "processing"})
	h.Publish(context.Background(), c.UserID, "job_updated", map[string]string{"status": "completed"})

	ev := waitFrame(t, c.Send)
	assert.JSONEq(t, `{"status":"processing"}`, string(ev.Data))
	assert.Empty(t, c.Send)
}

func TestUnregisterClosesSend(t *testing.T) {
	h := startHub(t, "a")
	c := &Connection{UserID: uuid.New(), Send: make(chan []byte, 1)}
	h.Register(c)
	h.Unregister(c)
	require.Eventually(t, func() bool { return h.ConnectionCount() == 0 }, time.Second, 5*time.Millisecond)

	_, ok := <-c.Send
	assert.False(t, ok)
}

func TestRelayedEventsFromOtherInstances(t *testing.T) {
	var mu sync.Mutex
	var published []string

	sender := startHub(t, "sender")
	sender.publishFn = func(ctx context.Context, channel string, payload []byte) error {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, UserEventsChannel, channel)
		published = append(published, string(payload))
		return nil
	}
	receiver := startHub(t, "receiver")

	c := &Connection{UserID: uuid.New(), Send: make(chan []byte, 4)}
	receiver.Register(c)
	require.Eventually(t, func() bool { return receiver.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	sender.Publish(context.Background(), c.UserID, "job_updated", map[string]string{"status": "failed"})
	mu.Lock()
	require.Len(t, published, 1)
	payload := published[0]
	mu.Unlock()

	// the sender ignores its own echo
	sender.handleUserEventPayload(payload)

	receiver.handleUserEventPayload(payload)
	ev := waitFrame(t, c.Send)
	assert.Equal(t, "job_updated", ev.Type)
	assert.JSONEq(t, `{"status":"failed"}`, string(ev.Data))
}

func TestWebSocketEndToEnd(t *testing.T) {
	h := startHub(t, "a")
	userID := uuid.New()

	handler := NewHandler(h, nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handler.WebSocket(w, r.WithContext(middleware.WithUser(r.Context(), userID, "user")))
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	h.Publish(context.Background(), userID, "balance_updated", map[string]int64{"credits": 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "balance_updated", ev.Type)
	assert.JSONEq(t, `{"credits":3}`, string(ev.Data))
}

func TestWebSocketRequiresUser(t *testing.T) {
	handler := NewHandler(startHub(t, "a"), nil)
	w := httptest.NewRecorder()
	handler.WebSocket(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
