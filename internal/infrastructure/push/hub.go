// Package push implements ports.PushChannel over gorilla/websocket: many
// subscribers per entity key (shipper-location, shipment-status and
// order-status broadcast) with a bounded queue per subscriber. A subscriber
// whose queue fills is disconnected, not blocked.
package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	logger "github.com/shortlink-org/go-sdk/logger"

	"github.com/shortlink-org/shop/oms/internal/domain/ports"
)

// subscriberQueueSize is the bounded per-subscriber queue depth: the
// slowest consumer is disconnected, never blocked.
const subscriberQueueSize = 64

// Hub implements ports.PushChannel: an in-process broadcast map keyed by
// entity id, each key fanning out to zero or more live websocket
// connections.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[uuid.UUID]*subscriber
	log         logger.Logger
	upgrader    websocket.Upgrader
}

type subscriber struct {
	conn     *websocket.Conn
	queue    chan ports.PushEnvelope
	done     chan struct{}
	closeErr sync.Once
}

func (s *subscriber) close() {
	s.closeErr.Do(func() { close(s.done) })
}

// New creates a Hub.
func New(log logger.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]map[uuid.UUID]*subscriber),
		log:         log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
	}
}

// Subscribe upgrades r to a websocket connection and registers it under key
// (e.g. a shipment id, an order id). The connection is unregistered and
// closed automatically once its read loop ends.
func (h *Hub) Subscribe(key string, w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	sub := &subscriber{
		conn:  conn,
		queue: make(chan ports.PushEnvelope, subscriberQueueSize),
		done:  make(chan struct{}),
	}

	id := uuid.New()

	h.mu.Lock()
	if h.subscribers[key] == nil {
		h.subscribers[key] = make(map[uuid.UUID]*subscriber)
	}
	h.subscribers[key][id] = sub
	h.mu.Unlock()

	go h.writeLoop(key, id, sub)
	go h.readLoop(key, id, sub)

	return nil
}

func (h *Hub) writeLoop(key string, id uuid.UUID, sub *subscriber) {
	defer h.unregister(key, id, sub)

	for {
		select {
		case <-sub.done:
			return
		case env := <-sub.queue:
			data, err := json.Marshal(env)
			if err != nil {
				h.log.Error("marshal push envelope failed", slog.Any("error", err))

				continue
			}

			if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

func (h *Hub) readLoop(key string, id uuid.UUID, sub *subscriber) {
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			break
		}
	}

	sub.close()
}

func (h *Hub) unregister(key string, id uuid.UUID, sub *subscriber) {
	h.mu.Lock()
	if subs, ok := h.subscribers[key]; ok {
		delete(subs, id)
		if len(subs) == 0 {
			delete(h.subscribers, key)
		}
	}
	h.mu.Unlock()

	_ = sub.conn.Close()
}

// Broadcast fans env out to every live subscriber under key. A subscriber
// whose queue is full is disconnected rather than blocking the broadcast.
func (h *Hub) Broadcast(_ context.Context, key string, env ports.PushEnvelope) {
	h.mu.RLock()
	subs := make([]*subscriber, 0, len(h.subscribers[key]))
	for _, sub := range h.subscribers[key] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		select {
		case sub.queue <- env:
		default:
			h.log.Warn("push subscriber backpressure, disconnecting", slog.String("key", key))
			sub.close()
		}
	}
}

var _ ports.PushChannel = (*Hub)(nil)
