package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// mockLogger is a simple mock for the logger interface
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...slog.Attr)                                 {}
func (m *mockLogger) Info(msg string, args ...slog.Attr)                                  {}
func (m *mockLogger) Warn(msg string, args ...slog.Attr)                                  {}
func (m *mockLogger) Error(msg string, args ...slog.Attr)                                 {}
func (m *mockLogger) DebugWithContext(ctx context.Context, msg string, args ...slog.Attr) {}
func (m *mockLogger) InfoWithContext(ctx context.Context, msg string, args ...slog.Attr)  {}
func (m *mockLogger) WarnWithContext(ctx context.Context, msg string, args ...slog.Attr)  {}
func (m *mockLogger) ErrorWithContext(ctx context.Context, msg string, args ...slog.Attr) {}
func (m *mockLogger) Close() error                                                        { return nil }

func dialHub(t *testing.T, hub *Hub, key string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, hub.Subscribe(key, w, r))
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func TestHub_BroadcastReachesSubscriber(t *testing.T) {
	hub := New(&mockLogger{})

	conn := dialHub(t, hub, "shipment-1")

	// Subscription registration races the dial return; broadcast until the
	// message lands or the read deadline trips.
	done := make(chan struct{})

	go func() {
		defer close(done)

		require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

		_, data, err := conn.ReadMessage()
		require.NoError(t, err)

		var env ports.PushEnvelope

		require.NoError(t, json.Unmarshal(data, &env))
		require.Equal(t, "shipment:status", env.Event)
	}()

	deadline := time.After(5 * time.Second)

	for {
		hub.Broadcast(context.Background(), "shipment-1", ports.PushEnvelope{Event: "shipment:status", Payload: "delivered"})

		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("subscriber never received broadcast")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestHub_BroadcastToOtherKeyNotDelivered(t *testing.T) {
	hub := New(&mockLogger{})

	conn := dialHub(t, hub, "shipment-1")

	hub.Broadcast(context.Background(), "shipment-2", ports.PushEnvelope{Event: "shipment:status"})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))

	_, _, err := conn.ReadMessage()
	require.Error(t, err)
}
