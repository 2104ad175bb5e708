package syncfeed

import (
	"sync"

	"campaignd/internal/projector"
	"campaignd/pkg/logging"
)

// Update is one sync feed entry: a full campaign snapshot plus any
// projection diagnostics raised while folding the event that produced
// it. Consumers always receive the complete state, never a delta.
type Update struct {
	Campaign    projector.CampaignState `json:"campaign"`
	Diagnostics []string                `json:"diagnostics,omitempty"`

	// seq orders updates across the whole feed. Assigned by the
	// broadcaster, checked by observers before delivery.
	seq uint64
}

// Broadcaster fans campaign snapshots out to observers. Publishing
// never blocks: each observer holds a latest-wins slot per campaign, so
// a slow consumer only delays itself and only ever skips intermediate
// snapshots, never reorders them.
type Broadcaster struct {
	mu        sync.Mutex
	seq       uint64
	latest    map[string]Update
	observers map[*Observer]struct{}
}

// Observer is one sync feed consumer, optionally filtered to a single
// campaign. Pull updates with Next; call Close when done.
//
// Updates are pulled, not pushed: a snapshot stays in the observer's
// slot until Next collects it, and newer snapshots for the same
// campaign overwrite it there. A reader that falls behind therefore
// resumes at the current state instead of replaying stale ones.
type Observer struct {
	broadcaster *Broadcaster
	campaignID  string

	mu       sync.Mutex
	cond     *sync.Cond
	pending  map[string]Update
	order    []string
	lastSeen map[string]uint64
	closed   bool

	closeOnce sync.Once
}

// NewBroadcaster creates an empty broadcaster with no observers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		latest:    make(map[string]Update),
		observers: make(map[*Observer]struct{}),
	}
}

// PublishState satisfies projector.Sink.
func (b *Broadcaster) PublishState(state projector.CampaignState, diagnostics []string) {
	b.Publish(Update{Campaign: state, Diagnostics: diagnostics})
}

// Publish records the snapshot as the campaign's latest and offers it to
// every matching observer. It never blocks on observers.
func (b *Broadcaster) Publish(update Update) {
	b.mu.Lock()
	b.seq++
	update.seq = b.seq
	b.latest[update.Campaign.CampaignID] = update

	observers := make([]*Observer, 0, len(b.observers))
	for o := range b.observers {
		if o.campaignID == "" || o.campaignID == update.Campaign.CampaignID {
			observers = append(observers, o)
		}
	}
	b.mu.Unlock()

	for _, o := range observers {
		o.offer(update)
	}
}

// Latest returns the most recent snapshot published for a campaign.
func (b *Broadcaster) Latest(campaignID string) (Update, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	update, ok := b.latest[campaignID]
	return update, ok
}

// Forget drops the retained snapshot for a deleted campaign so new
// observers no longer see it. Existing observers are unaffected.
func (b *Broadcaster) Forget(campaignID string) {
	b.mu.Lock()
	delete(b.latest, campaignID)
	b.mu.Unlock()
}

// Subscribe registers an observer for one campaign, or for all
// campaigns when campaignID is empty. If a snapshot for the campaign
// already exists it is queued immediately, so late subscribers start
// from current state.
func (b *Broadcaster) Subscribe(campaignID string) *Observer {
	o := &Observer{
		broadcaster: b,
		campaignID:  campaignID,
		pending:     make(map[string]Update),
		lastSeen:    make(map[string]uint64),
	}
	o.cond = sync.NewCond(&o.mu)

	b.mu.Lock()
	b.observers[o] = struct{}{}
	var seed []Update
	if campaignID == "" {
		for _, update := range b.latest {
			seed = append(seed, update)
		}
	} else if update, ok := b.latest[campaignID]; ok {
		seed = append(seed, update)
	}
	b.mu.Unlock()

	for _, update := range seed {
		o.offer(update)
	}

	logging.Debug("SyncFeed", "Observer subscribed (campaign=%q)", campaignID)
	return o
}

// Next blocks until a snapshot is available or the observer is closed.
// It returns false after Close. Snapshots for one campaign always come
// back in publish order.
func (o *Observer) Next() (Update, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for {
		for len(o.order) == 0 && !o.closed {
			o.cond.Wait()
		}
		if o.closed {
			return Update{}, false
		}

		campaignID := o.order[0]
		o.order = o.order[1:]
		update := o.pending[campaignID]
		delete(o.pending, campaignID)

		// The slot only ever moves forward, but verify: anything at or
		// behind what this observer already delivered is dropped.
		if update.seq <= o.lastSeen[campaignID] {
			continue
		}
		o.lastSeen[campaignID] = update.seq
		return update, true
	}
}

// Close detaches the observer and unblocks any pending Next. Safe to
// call more than once and concurrently with delivery.
func (o *Observer) Close() {
	o.closeOnce.Do(func() {
		o.broadcaster.mu.Lock()
		delete(o.broadcaster.observers, o)
		o.broadcaster.mu.Unlock()

		o.mu.Lock()
		o.closed = true
		o.mu.Unlock()
		o.cond.Broadcast()
	})
}

// offer replaces any pending snapshot for the same campaign. A campaign
// keeps a single position in the delivery order, so coalescing never
// reorders across campaigns.
func (o *Observer) offer(update Update) {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	if _, queued := o.pending[update.Campaign.CampaignID]; !queued {
		o.order = append(o.order, update.Campaign.CampaignID)
	}
	o.pending[update.Campaign.CampaignID] = update
	o.mu.Unlock()
	o.cond.Signal()
}
