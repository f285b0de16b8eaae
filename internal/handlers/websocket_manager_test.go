package handlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func TestManagerSubscribeUnsubscribe(t *testing.T) {
	m := NewWebSocketManager(slog.Default())
	address := "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

	require.Zero(t, m.SubscriberCount(address))

	first := m.Subscribe(address, nil)
	second := m.Subscribe(address, nil)
	require.Equal(t, 2, m.SubscriberCount(address))
	require.NotEqual(t, first, second)

	m.Unsubscribe(address, first)
	require.Equal(t, 1, m.SubscriberCount(address))

	m.Unsubscribe(address, second)
	require.Zero(t, m.SubscriberCount(address))

	// Unsubscribing an unknown client is a no-op.
	m.Unsubscribe(address, first)
	require.Zero(t, m.SubscriberCount(address))
}

// The websocket protocol allows a single concurrent writer per connection.
// A targeted Send racing a Broadcast to the same subscriber must serialize
// through the client's write lock instead of panicking.
func TestManagerSendAndBroadcastShareWriteLock(t *testing.T) {
	m := NewWebSocketManager(slog.Default())
	address := "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	defer conn.Close()

	id := m.Subscribe(address, conn)
	defer m.Unsubscribe(address, id)

	var wg sync.WaitGroup
	for g := 0; g < 2; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m.Broadcast(address, map[string]int{"seq": i})
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			_ = m.Send(address, id, map[string]int{"seq": i})
		}
	}()
	wg.Wait()
}

func TestManagerSendUnknownClientIsNoop(t *testing.T) {
	m := NewWebSocketManager(slog.Default())

	require.NoError(t, m.Send("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T", uuid.New(), "payload"))
}
