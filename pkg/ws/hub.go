package ws

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Subscriber is one live feed attached to a topic. Closing it stops
// delivery to this subscriber only.
type Subscriber struct {
	Topic string
	Send  chan []byte
}

// Hub fans change events out to websocket subscribers. Topics are either a
// session id (chat feed) or the lobby topic (stream discovery). Delivery is
// best effort: a subscriber whose buffer is full misses the event, there is
// no sequence-number catch-up.
type Hub struct {
	mu       sync.RWMutex
	subs     map[string]map[*Subscriber]struct{}
	upgrader websocket.Upgrader
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscriber]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024 * 4,
			WriteBufferSize: 1024 * 4,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *Hub) Upgrader() *websocket.Upgrader {
	return &h.upgrader
}

// Subscribe registers a feed on a topic and returns it with a cleanup
// function. The cleanup is idempotent per subscriber.
func (h *Hub) Subscribe(topic string) (*Subscriber, func()) {
	sub := &Subscriber{
		Topic: topic,
		Send:  make(chan []byte, 256),
	}
	h.mu.Lock()
	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscriber]struct{})
	}
	h.subs[topic][sub] = struct{}{}
	h.mu.Unlock()

	cleanup := func() {
		h.unsubscribe(topic, sub)
	}
	return sub, cleanup
}

func (h *Hub) unsubscribe(topic string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	m, ok := h.subs[topic]
	if !ok {
		return
	}
	if _, ok := m[sub]; !ok {
		return
	}
	delete(m, sub)
	if len(m) == 0 {
		delete(h.subs, topic)
	}
	close(sub.Send)
}

// Publish delivers data to every current subscriber of the topic without
// blocking on slow consumers.
func (h *Hub) Publish(topic string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[topic] {
		select {
		case sub.Send <- data:
		default:
		}
	}
}

// SubscriberCount reports how many feeds are attached to a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
