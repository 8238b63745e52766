package desktop

import "sync"

// Hub fans values out to subscribers. Each subscriber holds at most one
// pending value; a slow reader sees the newest one and skips the rest.
type Hub[T any] struct {
	mu     sync.Mutex
	subs   map[*chan T]struct{}
	closed bool
}

// NewHub creates an empty hub
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[*chan T]struct{})}
}

// Broadcast hands v to every subscriber without blocking
func (h *Hub[T]) Broadcast(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs {
		c := *sub
		select {
		case c <- v:
			continue
		default:
		}
		// Drop the stale value and retry; only Broadcast writes under mu.
		select {
		case <-c:
		default:
		}
		select {
		case c <- v:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned func unsubscribes and
// closes the channel.
func (h *Hub[T]) Subscribe() (<-chan T, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := make(chan T, 1)
	if h.closed {
		close(c)
		return c, func() {}
	}

	key := &c
	h.subs[key] = struct{}{}

	var once sync.Once
	return c, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[key]; ok {
				delete(h.subs, key)
				close(c)
			}
		})
	}
}

// Len returns the number of subscribers
func (h *Hub[T]) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close closes every subscriber channel and refuses new subscribers
func (h *Hub[T]) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for sub := range h.subs {
		close(*sub)
		delete(h.subs, sub)
	}
}
