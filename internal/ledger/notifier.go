package ledger

import (
	"sync"

	"certledger/internal/domain"
)

// EventKind names a certificate lifecycle event.
type EventKind string

const (
	EventIssued   EventKind = "issued"
	EventReviewed EventKind = "reviewed"
)

// Event is delivered to subscribers after the corresponding mutation has
// committed, so a subscriber reading back through the service sees the new
// state.
type Event struct {
	Kind        EventKind
	Certificate domain.Certificate
}

// Notifier is an explicit in-process subscription surface over certificate
// lifecycle events. Dashboards either subscribe here or poll the pending
// query; there is no implicit broadcast channel.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]chan Event)}
}

// Subscribe returns a receive channel with the given buffer and a cancel
// function that closes it. A subscriber that falls behind its buffer misses
// events rather than blocking publishers.
func (n *Notifier) Subscribe(buffer int) (<-chan Event, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	ch := make(chan Event, buffer)
	n.subs[id] = ch
	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if sub, ok := n.subs[id]; ok {
			delete(n.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish fans the event out to every live subscriber without blocking.
func (n *Notifier) Publish(event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs {
		select {
		case sub <- event:
		default:
		}
	}
}
