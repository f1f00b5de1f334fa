package tally

import (
	"log/slog"
	"sync"

	"github.com/aretw0/tally/pkg/core"
)

type subscriber struct {
	id int
	fn func(core.Event)
}

// broker fans store events out to callbacks and channels.
// Events are queued and delivered in publish order by whichever goroutine
// started draining, so callbacks may call back into the store.
type broker struct {
	mu          sync.Mutex
	nextID      int
	subs        []subscriber
	chans       []chan core.Event
	queue       []core.Event
	dispatching bool
	closed      bool
	logger      *slog.Logger
}

func newBroker(logger *slog.Logger) *broker {
	return &broker{logger: logger}
}

func (b *broker) subscribe(fn func(core.Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber{id: id, fn: fn})

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *broker) channel(size int) <-chan core.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan core.Event, size)
	if b.closed {
		close(ch)
		return ch
	}
	b.chans = append(b.chans, ch)
	return ch
}

func (b *broker) publish(events ...core.Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.queue = append(b.queue, events...)
	if b.dispatching {
		b.mu.Unlock()
		return
	}
	b.dispatching = true

	for len(b.queue) > 0 {
		e := b.queue[0]
		b.queue = b.queue[1:]

		// Channel sends happen under the lock so close cannot race them.
		for _, ch := range b.chans {
			select {
			case ch <- e:
			default:
				if b.logger != nil {
					b.logger.Warn("event channel full, dropping event", "event", e.String())
				}
			}
		}

		subs := make([]subscriber, len(b.subs))
		copy(subs, b.subs)

		b.mu.Unlock()
		for _, s := range subs {
			s.fn(e)
		}
		b.mu.Lock()
	}

	b.dispatching = false
	b.mu.Unlock()
}

func (b *broker) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs) + len(b.chans)
}

func (b *broker) close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.chans {
		close(ch)
	}
	b.chans = nil
	b.subs = nil
	b.queue = nil
}
