// Package event is the observer plumbing the stores use to announce changes.
package event

import (
	"context"
	"sync"
)

// Listener receives one change event. It runs synchronously on the
// goroutine that performed the mutation, after the store lock is released.
type Listener[E any] func(ctx context.Context, e E)

// Hub fans events out to subscribers in subscription order.
type Hub[E any] struct {
	mu        sync.Mutex
	next      int
	listeners []subscription[E]
}

type subscription[E any] struct {
	id int
	fn Listener[E]
}

// Subscribe registers fn and returns a function that removes it again.
func (h *Hub[E]) Subscribe(fn Listener[E]) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	h.listeners = append(h.listeners, subscription[E]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			for i, s := range h.listeners {
				if s.id == id {
					h.listeners = append(h.listeners[:i:i], h.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish delivers e to every current listener. Listeners may subscribe,
// unsubscribe or mutate the owning store while being called.
func (h *Hub[E]) Publish(ctx context.Context, e E) {
	h.mu.Lock()
	ls := make([]Listener[E], len(h.listeners))
	for i, s := range h.listeners {
		ls[i] = s.fn
	}
	h.mu.Unlock()

	for _, fn := range ls {
		fn(ctx, e)
	}
}

// size reports the number of subscribers.
func (h *Hub[E]) size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.listeners)
}
