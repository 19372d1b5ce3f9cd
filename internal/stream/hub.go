// Package stream distributes session snapshots to live subscribers.
package stream

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"luxury-tycoon/internal/models"
)

// HubConfig holds configuration for the Stream Hub.
type HubConfig struct {
	// BufferSize is the size of the internal snapshot channel buffer.
	BufferSize int
	// SubscriberBufferSize is the size of each subscriber's channel buffer.
	SubscriberBufferSize int
}

// DefaultHubConfig returns the default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		BufferSize:           256,
		SubscriberBufferSize: 32,
	}
}

// Hub fans snapshots from the session out to subscribers by topic.
// Subscribers of models.TopicAll receive every snapshot. Sends never block:
// a full subscriber buffer drops the snapshot for that subscriber only.
type Hub struct {
	config      HubConfig
	mu          sync.RWMutex
	subscribers map[models.Topic][]*Subscriber
	snapChan    chan models.Snapshot
	done        chan struct{}
	started     bool
	consumers   []Consumer
	consumersMu sync.RWMutex

	// Metrics
	received  uint64
	broadcast uint64
	dropped   uint64
	metricsMu sync.RWMutex
}

// Subscriber represents a channel subscriber with metadata.
type Subscriber struct {
	ID           string
	Topic        models.Topic
	Channel      chan models.Snapshot
	DroppedCount int
	CreatedAt    time.Time
}

// NewHub creates a new stream hub with default configuration.
func NewHub() *Hub {
	return NewHubWithConfig(DefaultHubConfig())
}

// NewHubWithConfig creates a new stream hub with custom configuration.
func NewHubWithConfig(config HubConfig) *Hub {
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultHubConfig().BufferSize
	}
	if config.SubscriberBufferSize <= 0 {
		config.SubscriberBufferSize = DefaultHubConfig().SubscriberBufferSize
	}
	return &Hub{
		config:      config,
		subscribers: make(map[models.Topic][]*Subscriber),
		snapChan:    make(chan models.Snapshot, config.BufferSize),
	}
}

// Start begins the hub's distribution loop. It returns immediately; the
// loop ends when ctx is cancelled or Stop is called.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	if h.started {
		h.mu.Unlock()
		return
	}
	h.started = true
	h.done = make(chan struct{})
	done := h.done
	h.mu.Unlock()

	go h.broadcastLoop(ctx, done)
}

func (h *Hub) broadcastLoop(ctx context.Context, done chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case snap := <-h.snapChan:
			h.metricsMu.Lock()
			h.received++
			h.metricsMu.Unlock()

			h.deliver(snap)
			h.notifyConsumers(snap)
		}
	}
}

// Stop stops the hub and closes all subscriber channels.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.started {
		return
	}

	close(h.done)
	h.started = false

	for topic, subs := range h.subscribers {
		for _, sub := range subs {
			close(sub.Channel)
		}
		delete(h.subscribers, topic)
	}
}

// Subscribe adds a subscriber for a topic and returns a channel to
// receive snapshots.
func (h *Hub) Subscribe(topic models.Topic) <-chan models.Snapshot {
	return h.SubscribeWithID(topic, uuid.NewString())
}

// SubscribeWithID adds a subscriber with a specific ID for a topic.
func (h *Hub) SubscribeWithID(topic models.Topic, id string) <-chan models.Snapshot {
	ch := make(chan models.Snapshot, h.config.SubscriberBufferSize)
	sub := &Subscriber{
		ID:        id,
		Topic:     topic,
		Channel:   ch,
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	h.subscribers[topic] = append(h.subscribers[topic], sub)
	h.mu.Unlock()

	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (h *Hub) Unsubscribe(topic models.Topic, ch <-chan models.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subscribers[topic]
	for i, sub := range subs {
		if sub.Channel == ch {
			close(sub.Channel)
			h.subscribers[topic] = append(subs[:i], subs[i+1:]...)
			break
		}
	}

	if len(h.subscribers[topic]) == 0 {
		delete(h.subscribers, topic)
	}
}

// Publish queues a snapshot for distribution. It never blocks; when the
// internal buffer is full the snapshot is dropped and counted.
func (h *Hub) Publish(snap models.Snapshot) {
	select {
	case h.snapChan <- snap:
	default:
		h.metricsMu.Lock()
		h.dropped++
		h.metricsMu.Unlock()
	}
}

// deliver sends a snapshot to the subscribers of its topic and of
// TopicAll. The read lock is held across the sends so Stop and
// Unsubscribe cannot close a channel mid-send.
func (h *Hub) deliver(snap models.Snapshot) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	targets := h.subscribers[snap.Topic]
	if snap.Topic != models.TopicAll {
		targets = append(targets[:len(targets):len(targets)], h.subscribers[models.TopicAll]...)
	}

	var sent, dropped uint64
	for _, sub := range targets {
		select {
		case sub.Channel <- snap:
			sent++
		default:
			sub.DroppedCount++
			dropped++
		}
	}

	h.metricsMu.Lock()
	h.broadcast += sent
	h.dropped += dropped
	h.metricsMu.Unlock()
}

// TotalSubscriberCount returns the number of subscribers across all topics.
func (h *Hub) TotalSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, subs := range h.subscribers {
		count += len(subs)
	}
	return count
}

// Metrics returns hub metrics.
func (h *Hub) Metrics() HubMetrics {
	h.metricsMu.RLock()
	m := HubMetrics{
		Received:  h.received,
		Broadcast: h.broadcast,
		Dropped:   h.dropped,
	}
	h.metricsMu.RUnlock()

	m.Subscribers = h.TotalSubscriberCount()
	return m
}

// HubMetrics contains hub delivery counters.
type HubMetrics struct {
	Received    uint64 `json:"received"`
	Broadcast   uint64 `json:"broadcast"`
	Dropped     uint64 `json:"dropped"`
	Subscribers int    `json:"subscribers"`
}

// IsStarted returns whether the hub is running.
func (h *Hub) IsStarted() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.started
}

// Consumer processes snapshots outside the subscriber channels.
type Consumer interface {
	// OnSnapshot is called for each snapshot on a matching topic.
	OnSnapshot(snap models.Snapshot)
	// Topics returns the topics this consumer is interested in.
	// Return nil or empty slice to receive everything.
	Topics() []models.Topic
}

// RegisterConsumer adds a consumer to receive snapshots.
func (h *Hub) RegisterConsumer(consumer Consumer) {
	h.consumersMu.Lock()
	h.consumers = append(h.consumers, consumer)
	h.consumersMu.Unlock()
}

// UnregisterConsumer removes a consumer.
func (h *Hub) UnregisterConsumer(consumer Consumer) {
	h.consumersMu.Lock()
	defer h.consumersMu.Unlock()

	for i, c := range h.consumers {
		if c == consumer {
			h.consumers = append(h.consumers[:i], h.consumers[i+1:]...)
			break
		}
	}
}

// notifyConsumers calls each matching consumer in its own goroutine.
func (h *Hub) notifyConsumers(snap models.Snapshot) {
	h.consumersMu.RLock()
	consumers := make([]Consumer, len(h.consumers))
	copy(consumers, h.consumers)
	h.consumersMu.RUnlock()

	for _, consumer := range consumers {
		topics := consumer.Topics()
		if len(topics) == 0 || containsTopic(topics, snap.Topic) {
			go consumer.OnSnapshot(snap)
		}
	}
}

func containsTopic(topics []models.Topic, topic models.Topic) bool {
	for _, t := range topics {
		if t == topic {
			return true
		}
	}
	return false
}
