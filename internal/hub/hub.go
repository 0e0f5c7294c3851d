package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// KitchenTopic is the single shared topic consumed by staff connections.
const KitchenTopic = "kitchen"

// TableTopic names the per-table topic for customer connections.
func TableTopic(tableNumber int) string {
	return fmt.Sprintf("table:%d", tableNumber)
}

// envelope is the frame pushed to realtime clients.
type envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

const defaultSendBuffer = 64

// Hub is the pub/sub switchboard between the order service and live
// client connections. Membership is guarded by one mutex; delivery to
// each connection goes through its own buffered channel so one slow
// consumer never holds up another.
type Hub struct {
	mu         sync.Mutex
	topics     map[string]map[*Conn]struct{}
	membership map[*Conn]map[string]struct{}
	buffer     int
}

// NewHub creates a hub. buffer is the per-connection outbound queue
// size; a connection that falls that far behind is torn down.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = defaultSendBuffer
	}

	return &Hub{
		topics:     make(map[string]map[*Conn]struct{}),
		membership: make(map[*Conn]map[string]struct{}),
		buffer:     buffer,
	}
}

// Register adds a new live connection with no subscriptions yet.
func (h *Hub) Register() *Conn {
	c := newConn(h.buffer)

	h.mu.Lock()
	h.membership[c] = make(map[string]struct{})
	h.mu.Unlock()

	return c
}

// Subscribe adds the connection to a topic. Idempotent; a connection
// may belong to multiple topics.
func (h *Hub) Subscribe(c *Conn, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.membership[c]; !ok {
		// Connection already torn down.
		return
	}

	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[*Conn]struct{})
		h.topics[topic] = subs
	}
	subs[c] = struct{}{}
	h.membership[c][topic] = struct{}{}
}

// Unsubscribe removes the connection from one topic.
func (h *Hub) Unsubscribe(c *Conn, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dropFromTopicLocked(c, topic)
	if topics, ok := h.membership[c]; ok {
		delete(topics, topic)
	}
}

// Remove drops all topic memberships for the connection and closes it.
// Called on disconnect; no dangling subscriptions survive it.
func (h *Hub) Remove(c *Conn) {
	h.mu.Lock()
	h.removeLocked(c)
	h.mu.Unlock()
}

// SubscriberCount reports current subscribers on a topic. Diagnostics
// only; membership can change the moment the lock is released.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.topics[topic])
}

// Publish delivers the event to every connection subscribed to the
// topic at publish time, in publish order. Connections that cannot
// keep up are torn down rather than blocking the publisher or losing
// events silently.
func (h *Hub) Publish(topic string, eventName string, data any) {
	payload, err := json.Marshal(envelope{Event: eventName, Data: data})
	if err != nil {
		slog.Error("Failed to marshal event", "topic", topic, "event", eventName, "error", err)

		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var stale []*Conn
	for c := range h.topics[topic] {
		select {
		case c.send <- payload:
		default:
			stale = append(stale, c)
		}
	}

	for _, c := range stale {
		slog.Warn("Dropping slow subscriber", "topic", topic, "event", eventName)
		h.removeLocked(c)
	}
}

func (h *Hub) removeLocked(c *Conn) {
	for topic := range h.membership[c] {
		h.dropFromTopicLocked(c, topic)
	}
	delete(h.membership, c)
	c.close()
}

func (h *Hub) dropFromTopicLocked(c *Conn, topic string) {
	if subs, ok := h.topics[topic]; ok {
		delete(subs, c)
		if len(subs) == 0 {
			delete(h.topics, topic)
		}
	}
}
