// Package realtime pushes live seat-availability updates for activities
// over WebSocket, with Redis pub/sub for cross-instance fan-out.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// PingInterval and PongWait are used for heartbeat, in seconds.
	PingInterval = 30
	PongWait     = 60
)

// SeatUpdate is the payload broadcast whenever an activity's enrollment
// count changes.
type SeatUpdate struct {
	ActivityID     uuid.UUID `json:"activity_id"`
	RemainingSeats int       `json:"remaining_seats"`
}

// RedisPublisher publishes to Redis for cross-instance broadcast.
type RedisPublisher interface {
	PublishActivityEvent(activityID uuid.UUID, event string, payload []byte) error
}

// RedisSubscriber subscribes to activity channels and invokes handler for
// incoming events.
type RedisSubscriber interface {
	SubscribeActivity(activityID uuid.UUID, handler func(event string, payload []byte)) (cancel func(), err error)
}

// Hub maintains activity_id -> set of connections and broadcasts seat
// updates. Local broadcast plus publish to Redis so every instance's
// clients see the change.
type Hub struct {
	activities map[uuid.UUID]map[string]*Client
	subs       map[uuid.UUID]func() // cancel Redis subscription per activity
	mu         sync.RWMutex
	logger     *zap.Logger
	redis      RedisPublisher
	redisSub   RedisSubscriber
}

// NewHub creates a new WebSocket hub.
func NewHub(logger *zap.Logger, redisPub RedisPublisher, redisSub RedisSubscriber) *Hub {
	return &Hub{
		activities: make(map[uuid.UUID]map[string]*Client),
		subs:       make(map[uuid.UUID]func()),
		logger:     logger,
		redis:      redisPub,
		redisSub:   redisSub,
	}
}

// Register adds a client to an activity room. Starts the Redis
// subscription for the activity when the first client arrives.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	if h.activities[c.ActivityID] == nil {
		h.activities[c.ActivityID] = make(map[string]*Client)
		if h.redisSub != nil {
			cancel, err := h.redisSub.SubscribeActivity(c.ActivityID, func(event string, payload []byte) {
				h.Broadcast(c.ActivityID, event, json.RawMessage(payload))
			})
			if err == nil {
				h.subs[c.ActivityID] = cancel
			}
		}
	}
	h.activities[c.ActivityID][c.ID] = c
	h.mu.Unlock()
	h.logger.Debug("client watching activity",
		zap.String("client_id", c.ID), zap.String("activity_id", c.ActivityID.String()))
}

// Unregister removes a client from an activity room. Cancels the Redis
// subscription when the last client leaves.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if m, ok := h.activities[c.ActivityID]; ok {
		delete(m, c.ID)
		if len(m) == 0 {
			delete(h.activities, c.ActivityID)
			if cancel, ok := h.subs[c.ActivityID]; ok {
				cancel()
				delete(h.subs, c.ActivityID)
			}
		}
	}
	h.mu.Unlock()
}

// Broadcast sends a message to all local clients watching an activity.
func (h *Hub) Broadcast(activityID uuid.UUID, event string, payload interface{}) {
	var data []byte
	switch v := payload.(type) {
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	default:
		data, _ = json.Marshal(payload)
	}
	msg := WSMessage{Event: event, Data: data}

	// Copy under the lock; ranging over the live map would race a
	// concurrent Unregister.
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.activities[activityID]))
	for _, c := range h.activities[activityID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- msg:
		default:
			// buffer full, skip
		}
	}
}

// SeatsChanged publishes the new remaining-seat count for an activity.
// With Redis wired, publish only: the hub's own subscription delivers
// the single local broadcast, so clients never see the update twice.
// Without Redis the broadcast happens directly.
func (h *Hub) SeatsChanged(activityID uuid.UUID, remaining int) {
	update := SeatUpdate{ActivityID: activityID, RemainingSeats: remaining}
	data, err := json.Marshal(update)
	if err != nil {
		return
	}
	if h.redis != nil {
		_ = h.redis.PublishActivityEvent(activityID, "seats_changed", data)
		return
	}
	h.Broadcast(activityID, "seats_changed", json.RawMessage(data))
}

// WatcherCount returns the number of connected clients for an activity.
func (h *Hub) WatcherCount(activityID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.activities[activityID])
}
