package projector

import (
	"context"
	"sync"

	"campaignd/internal/events"
	"campaignd/pkg/logging"
)

// Sink receives every folded snapshot, plus any inconsistency
// diagnostics raised by the fold. Implementations must not block; the
// sync broadcaster satisfies this with its latest-wins buffers.
type Sink interface {
	PublishState(state CampaignState, diagnostics []string)
}

// Manager routes the event stream into per-campaign fold workers.
//
// Each campaign has exactly one writer: a worker created on the
// campaign's first event, applying events in arrival order and pushing
// every resulting snapshot to the sink. Workers are torn down by Remove
// when the owning campaign is deleted upstream.
type Manager struct {
	bus  *events.Bus
	sink Sink

	mu      sync.Mutex
	workers map[string]*worker

	wg sync.WaitGroup
}

// worker serializes the fold for one campaign. Events are buffered in an
// ordered queue so the router never blocks on a single campaign.
type worker struct {
	campaignID string

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []events.Event
	closed bool
	state  CampaignState
}

// NewManager creates a projector manager over the bus. Call Run to start
// consuming.
func NewManager(bus *events.Bus, sink Sink) *Manager {
	return &Manager{
		bus:     bus,
		sink:    sink,
		workers: make(map[string]*worker),
	}
}

// Run consumes the full event stream until ctx is cancelled, routing
// each event to its campaign's fold worker. It returns after all workers
// have drained.
func (m *Manager) Run(ctx context.Context) {
	sub := m.bus.SubscribeAll()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			m.stopAll()
			return
		case event, ok := <-sub.Events():
			if !ok {
				m.stopAll()
				return
			}
			m.dispatch(event)
		}
	}
}

func (m *Manager) dispatch(event events.Event) {
	m.mu.Lock()
	w, ok := m.workers[event.CampaignID()]
	if !ok {
		w = &worker{
			campaignID: event.CampaignID(),
			state:      NewCampaignState(event.CampaignID()),
		}
		w.cond = sync.NewCond(&w.mu)
		m.workers[event.CampaignID()] = w
		m.wg.Add(1)
		go m.runWorker(w)
		logging.Debug("Projector", "Created fold worker for campaign %s", event.CampaignID())
	}
	m.mu.Unlock()

	w.enqueue(event)
}

func (w *worker) enqueue(event events.Event) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.queue = append(w.queue, event)
	w.mu.Unlock()
	w.cond.Signal()
}

func (m *Manager) runWorker(w *worker) {
	defer m.wg.Done()
	for {
		w.mu.Lock()
		for len(w.queue) == 0 && !w.closed {
			w.cond.Wait()
		}
		if w.closed {
			w.mu.Unlock()
			return
		}
		event := w.queue[0]
		w.queue = w.queue[1:]
		state := w.state.Clone()
		w.mu.Unlock()

		next, inconsistency := Apply(state, event)

		var diagnostics []string
		if inconsistency != nil {
			logging.Warn("Projector", "%s", inconsistency.Error())
			diagnostics = append(diagnostics, inconsistency.Error())
		}

		w.mu.Lock()
		w.state = next
		w.mu.Unlock()

		m.sink.PublishState(next.Clone(), diagnostics)
	}
}

func (w *worker) snapshot() CampaignState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Clone()
}

func (w *worker) stop() {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.cond.Signal()
}

// Snapshot returns the current folded state for a campaign, if one
// exists. The returned value is a copy.
func (m *Manager) Snapshot(campaignID string) (CampaignState, bool) {
	m.mu.Lock()
	w, ok := m.workers[campaignID]
	m.mu.Unlock()
	if !ok {
		return CampaignState{}, false
	}
	return w.snapshot(), true
}

// Remove tears down the fold worker for a deleted campaign. Events for
// the campaign arriving afterwards recreate a fresh worker from zero
// state, which matches the upstream contract that deletion is terminal.
func (m *Manager) Remove(campaignID string) {
	m.mu.Lock()
	w, ok := m.workers[campaignID]
	if ok {
		delete(m.workers, campaignID)
	}
	m.mu.Unlock()
	if ok {
		w.stop()
		logging.Debug("Projector", "Removed fold worker for campaign %s", campaignID)
	}
}

func (m *Manager) stopAll() {
	m.mu.Lock()
	workers := make([]*worker, 0, len(m.workers))
	for id, w := range m.workers {
		workers = append(workers, w)
		delete(m.workers, id)
	}
	m.mu.Unlock()
	for _, w := range workers {
		w.stop()
	}
	m.wg.Wait()
}
