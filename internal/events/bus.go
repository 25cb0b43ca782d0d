package events

import (
	"log/slog"
	"sync"
)

// Listener receives published events. Listeners run synchronously on the
// publisher's goroutine and must not block.
type Listener func(Event)

// Bus fans events out to subscribers.
type Bus struct {
	mu        sync.RWMutex
	next      int
	listeners map[int]subscription
	logger    *slog.Logger
}

type subscription struct {
	kinds    map[Kind]bool
	listener Listener
}

// NewBus creates an empty bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		listeners: make(map[int]subscription),
		logger:    logger,
	}
}

// Subscribe registers l for the given kinds, or for every kind when none are
// given. The returned function removes the subscription.
func (b *Bus) Subscribe(l Listener, kinds ...Kind) func() {
	sub := subscription{listener: l}
	if len(kinds) > 0 {
		sub.kinds = make(map[Kind]bool, len(kinds))
		for _, k := range kinds {
			sub.kinds[k] = true
		}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = sub
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Publish delivers e to every matching subscriber. A panicking listener is
// logged and does not stop delivery to the others.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	subs := make([]subscription, 0, len(b.listeners))
	for _, s := range b.listeners {
		if s.kinds == nil || s.kinds[e.Kind()] {
			subs = append(subs, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range subs {
		b.deliver(s.listener, e)
	}
}

func (b *Bus) deliver(l Listener, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event listener panicked",
				"kind", e.Kind(),
				"player_id", e.Player(),
				"panic", r,
			)
		}
	}()
	l(e)
}

// Len returns the number of active subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners)
}
