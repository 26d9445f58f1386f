package auth

import (
	"sync"

	"github.com/Adda-Baaj/arogya-feed/internal/domain"
)

// Signal delivers identity changes to subscribers. The returned func
// stops delivery.
type Signal interface {
	Subscribe(fn func(*domain.Identity)) (unsubscribe func())
}

// Broadcaster is an in-process Signal. New subscribers receive the
// latest identity change immediately, then every later one.
type Broadcaster struct {
	mu      sync.Mutex
	current *domain.Identity
	nextID  int
	subs    map[int]func(*domain.Identity)
}

// NewBroadcaster starts with no identity.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]func(*domain.Identity))}
}

// Subscribe registers fn. Calling the returned func more than once is safe.
func (b *Broadcaster) Subscribe(fn func(*domain.Identity)) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	current := clone(b.current)
	b.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

// Publish records id and notifies subscribers. nil reports a sign-out.
func (b *Broadcaster) Publish(id *domain.Identity) {
	b.mu.Lock()
	b.current = clone(id)
	fns := make([]func(*domain.Identity), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(clone(id))
	}
}

func clone(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
