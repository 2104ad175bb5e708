package events

import (
	"sync"

	"campaignd/pkg/logging"
)

// Bus is the append-only domain event stream. Publish makes an event
// visible to every current subscriber of its campaign, in publish order
// per campaign; there is no historical replay for late subscribers.
//
// Delivery is decoupled from publishers: each subscription drains an
// internal ordered queue on its own goroutine, so a slow consumer never
// blocks Publish or other subscribers.
type Bus struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[*Subscription]struct{})}
}

// Publish appends an event to the stream. The event must be immutable
// once published.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if sub.campaignID != "" && sub.campaignID != event.CampaignID() {
			continue
		}
		sub.enqueue(event)
	}
}

// Subscribe returns a subscription delivering events for one campaign
// from this point onward.
func (b *Bus) Subscribe(campaignID string) *Subscription {
	return b.subscribe(campaignID)
}

// SubscribeAll returns a subscription delivering events for every
// campaign, in global publish order. The projector manager uses this to
// route events to per-campaign fold workers.
func (b *Bus) SubscribeAll() *Subscription {
	return b.subscribe("")
}

func (b *Bus) subscribe(campaignID string) *Subscription {
	sub := &Subscription{
		bus:        b,
		campaignID: campaignID,
		ch:         make(chan Event),
		done:       make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go sub.drain()
	return sub
}

func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	delete(b.subs, sub)
	b.mu.Unlock()
}

// Subscription is a lazy, ordered sequence of events starting at
// subscription time. Close is idempotent and releases resources
// immediately.
type Subscription struct {
	bus        *Bus
	campaignID string

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Event
	closed bool

	ch        chan Event
	done      chan struct{}
	closeOnce sync.Once
}

// Events returns the delivery channel. It is closed when the
// subscription is closed.
func (s *Subscription) Events() <-chan Event {
	return s.ch
}

// Close detaches the subscription from the bus. Safe to call multiple
// times and concurrently with in-flight delivery.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.bus.unsubscribe(s)
		close(s.done)
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		s.cond.Signal()
	})
}

func (s *Subscription) enqueue(event Event) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, event)
	s.mu.Unlock()
	s.cond.Signal()
}

// drain forwards queued events to the delivery channel in order.
func (s *Subscription) drain() {
	defer close(s.ch)
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed && len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		event := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.ch <- event:
		case <-s.done:
			logging.Debug("EventBus", "Subscription closed with undelivered events")
			return
		}
	}
}
