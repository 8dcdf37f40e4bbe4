// Package broadcast fans committed leaderboard and chat changes out to
// connected viewers.
//
// A Hub keeps a registry of subscriber connections tagged with a tournament
// key and a Topic. Publish queues an event to every matching subscriber;
// each subscriber has its own writer goroutine, so events reach a given
// subscriber in publish order while a slow or dead connection never holds up
// the publisher. There is no replay: a viewer that connects late reads the
// current state from the API and then follows the deltas.
package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/rrazong/leaderz-backend/internal/metrics"
)

// Topic is a broadcast category a subscriber filters on.
type Topic string

const (
	TopicLeaderboard Topic = "leaderboard"
	TopicChat        Topic = "chat"

	// TopicUnified receives every topic.
	TopicUnified Topic = "unified"
)

// ParseTopic validates a topic name taken from a request.
func ParseTopic(s string) (Topic, error) {
	switch t := Topic(s); t {
	case TopicLeaderboard, TopicChat, TopicUnified:
		return t, nil
	}
	return "", fmt.Errorf("unknown topic %q", s)
}

func (t Topic) matches(published Topic) bool {
	return t == published || t == TopicUnified
}

const (
	// DefaultKeepAlive is the ping interval used unless WithKeepAlive is given.
	DefaultKeepAlive = 30 * time.Second

	// DefaultQueueDepth is the per-subscriber queue length used unless
	// WithQueueDepth is given.
	DefaultQueueDepth = 64
)

// ErrHubClosed is returned by Subscribe after Close.
var ErrHubClosed = errors.New("broadcast hub is closed")

// Conn pushes one serialized event to an open connection.
type Conn interface {
	Send(data []byte) error
}

// Hub is the subscriber registry. The zero value is not usable; create one
// with NewHub and release it with Close.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool

	queueDepth int
	keepAlive  time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Option configures a Hub.
type Option func(*Hub)

// WithKeepAlive sets the ping interval. Zero or negative disables pings.
func WithKeepAlive(d time.Duration) Option {
	return func(h *Hub) { h.keepAlive = d }
}

// WithQueueDepth sets how many events may wait for a subscriber before it
// is considered dead and dropped.
func WithQueueDepth(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.queueDepth = n
		}
	}
}

// WithLogger sets the logger used by the hub and its transports.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics records subscriber counts in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Hub) { h.metrics = m }
}

// NewHub creates a hub and starts its keep-alive loop.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subs:       make(map[*Subscription]struct{}),
		queueDepth: DefaultQueueDepth,
		keepAlive:  DefaultKeepAlive,
		logger:     slog.Default(),
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}

	if h.keepAlive > 0 {
		h.wg.Add(1)
		go h.keepAliveLoop()
	}
	return h
}

// Subscription is one registered connection.
type Subscription struct {
	tournament string
	topic      Topic
	conn       Conn

	queue    chan []byte
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// Done is closed once the subscription has been removed from the hub and
// its writer has stopped touching the connection.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Subscribe registers conn for events of topic in the given tournament.
// The subscription is removed automatically when ctx is done, when a push
// to conn fails, or when the hub closes. A "connected" event is queued
// before any published event.
func (h *Hub) Subscribe(ctx context.Context, tournament string, topic Topic, conn Conn) (*Subscription, error) {
	sub := &Subscription{
		tournament: tournament,
		topic:      topic,
		conn:       conn,
		queue:      make(chan []byte, h.queueDepth),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}

	connected, err := json.Marshal(ConnectedEvent{
		Type:          EventConnected,
		TournamentKey: tournament,
		Topic:         topic,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode connected event: %w", err)
	}
	sub.queue <- connected

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	h.metrics.SubscriberAdded()
	h.logger.Debug("Subscriber connected", "tournament_key", tournament, "topic", topic)

	go h.run(ctx, sub)
	return sub, nil
}

// run is the subscription's single writer.
func (h *Hub) run(ctx context.Context, sub *Subscription) {
	defer close(sub.done)
	for {
		select {
		case <-ctx.Done():
			h.remove(sub)
			return
		case <-sub.stop:
			return
		case data := <-sub.queue:
			if err := sub.conn.Send(data); err != nil {
				h.logger.Debug("Dropping subscriber after failed push",
					"tournament_key", sub.tournament,
					"topic", sub.topic,
					"error", err,
				)
				h.remove(sub)
				return
			}
		}
	}
}

// Publish serializes payload and queues it for every subscriber of the
// tournament whose topic matches. It never blocks on a connection and never
// fails the caller; subscribers that cannot keep up are dropped. It returns
// the number of subscribers the event was queued for.
func (h *Hub) Publish(tournament string, topic Topic, payload any) int {
	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to encode broadcast payload", "tournament_key", tournament, "topic", topic, "error", err)
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for sub := range h.subs {
		if sub.tournament != tournament || !sub.topic.matches(topic) {
			continue
		}
		if h.enqueueLocked(sub, data) {
			delivered++
		}
	}
	return delivered
}

// enqueueLocked queues data for sub, dropping the subscriber if its queue is
// full. h.mu must be held; holding it while queueing keeps every
// subscriber's queue in the same order as Publish calls.
func (h *Hub) enqueueLocked(sub *Subscription, data []byte) bool {
	select {
	case sub.queue <- data:
		return true
	default:
		h.logger.Warn("Dropping slow subscriber", "tournament_key", sub.tournament, "topic", sub.topic)
		h.removeLocked(sub)
		return false
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	h.removeLocked(sub)
	h.mu.Unlock()
}

func (h *Hub) removeLocked(sub *Subscription) {
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	sub.stopOnce.Do(func() { close(sub.stop) })
	h.metrics.SubscriberRemoved()
}

// Count returns the number of subscribers that would receive an event
// published to topic for the tournament.
func (h *Hub) Count(tournament string, topic Topic) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for sub := range h.subs {
		if sub.tournament == tournament && sub.topic.matches(topic) {
			n++
		}
	}
	return n
}

// Len returns the total number of subscribers.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) keepAliveLoop() {
	defer h.wg.Done()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-h.stop:
			return
		case now := <-ticker.C:
			h.ping(now)
		}
	}
}

func (h *Hub) ping(now time.Time) {
	data, err := json.Marshal(PingEvent{Type: EventPing, Timestamp: now.UTC().Format(time.RFC3339)})
	if err != nil {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		h.enqueueLocked(sub, data)
	}
}

// Close stops the keep-alive loop and removes every subscriber. Subscribe
// fails with ErrHubClosed afterwards. Close is safe to call more than once.
func (h *Hub) Close() {
	h.stopOnce.Do(func() { close(h.stop) })
	h.wg.Wait()

	h.mu.Lock()
	h.closed = true
	for sub := range h.subs {
		h.removeLocked(sub)
	}
	h.mu.Unlock()
}
