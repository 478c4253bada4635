package hub

import (
	"log/slog"
	"sync"

	"factstream/internal/model"
)

const defaultBuffer = 16

// Hub maps observer keys (typically a session id) to live delivery channels
// and fans produced results out to them. Delivery is best effort: an
// observer that cannot keep up is pruned rather than allowed to block the
// producer. Results from one producer arrive in production order.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan *model.VerificationResult
	buffer      int
	logger      *slog.Logger
}

// New creates an empty hub
func New(logger *slog.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]chan *model.VerificationResult),
		buffer:      defaultBuffer,
		logger:      logger,
	}
}

// Subscribe registers an observer and returns its delivery channel. A second
// subscription under the same key replaces the first, whose channel is
// closed.
func (h *Hub) Subscribe(observerKey string) <-chan *model.VerificationResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.subscribers[observerKey]; ok {
		close(old)
	}
	ch := make(chan *model.VerificationResult, h.buffer)
	h.subscribers[observerKey] = ch
	return ch
}

// Unsubscribe removes an observer and closes its channel. Unknown keys are a
// no-op.
func (h *Hub) Unsubscribe(observerKey string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(observerKey)
}

// Publish delivers a result to the observer registered under key. It never
// blocks: an observer with a full buffer is treated as dead and pruned.
// Publishing with no matching observer is a no-op.
func (h *Hub) Publish(observerKey string, result *model.VerificationResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.subscribers[observerKey]
	if !ok {
		return
	}

	select {
	case ch <- result:
	default:
		h.logger.Warn("pruning unresponsive observer", "observer", observerKey)
		h.drop(observerKey)
	}
}

// Subscribers returns the number of live observers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Close drops every observer.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key := range h.subscribers {
		h.drop(key)
	}
}

// drop must be called with the lock held.
func (h *Hub) drop(observerKey string) {
	if ch, ok := h.subscribers[observerKey]; ok {
		delete(h.subscribers, observerKey)
		close(ch)
	}
}
