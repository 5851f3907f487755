package realtime

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakePubSub delivers published messages straight back through the
// registered subscription handler, like a single-instance Redis loop.
type fakePubSub struct {
	mu       sync.Mutex
	handlers map[uuid.UUID]func(event string, payload []byte)
}

func (f *fakePubSub) PublishActivityEvent(activityID uuid.UUID, event string, payload []byte) error {
	f.mu.Lock()
	h := f.handlers[activityID]
	f.mu.Unlock()
	if h != nil {
		h(event, payload)
	}
	return nil
}

func (f *fakePubSub) SubscribeActivity(activityID uuid.UUID, handler func(event string, payload []byte)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[uuid.UUID]func(string, []byte))
	}
	f.handlers[activityID] = handler
	return func() {
		f.mu.Lock()
		delete(f.handlers, activityID)
		f.mu.Unlock()
	}, nil
}

func newWatcher(activityID uuid.UUID) *Client {
	return &Client{
		ID:         uuid.New().String(),
		ActivityID: activityID,
		send:       make(chan WSMessage, 8),
	}
}

func TestSeatsChangedDeliversExactlyOnce(t *testing.T) {
	pubsub := &fakePubSub{}
	hub := NewHub(zap.NewNop(), pubsub, pubsub)
	activityID := uuid.New()

	watcher := newWatcher(activityID)
	hub.Register(watcher)

	// The published update comes back through the subscription; the
	// watcher must not also get a direct local copy.
	hub.SeatsChanged(activityID, 5)

	require.Len(t, watcher.send, 1)
	msg := <-watcher.send
	assert.Equal(t, "seats_changed", msg.Event)

	var update SeatUpdate
	require.NoError(t, json.Unmarshal(msg.Data, &update))
	assert.Equal(t, activityID, update.ActivityID)
	assert.Equal(t, 5, update.RemainingSeats)
}

func TestSeatsChangedWithoutRedisBroadcastsLocally(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	activityID := uuid.New()

	watcher := newWatcher(activityID)
	hub.Register(watcher)

	hub.SeatsChanged(activityID, 3)

	require.Len(t, watcher.send, 1)
	msg := <-watcher.send
	assert.Equal(t, "seats_changed", msg.Event)
}

func TestBroadcastDuringUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	activityID := uuid.New()

	watchers := make([]*Client, 32)
	for i := range watchers {
		watchers[i] = newWatcher(activityID)
		hub.Register(watchers[i])
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			hub.SeatsChanged(activityID, i)
		}
	}()
	go func() {
		defer wg.Done()
		for _, w := range watchers {
			hub.Unregister(w)
		}
	}()
	wg.Wait()

	assert.Zero(t, hub.WatcherCount(activityID))
}
