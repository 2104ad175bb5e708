package syncfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"campaignd/pkg/logging"
)

// Server exposes the sync feed over HTTP as Server-Sent Events. Each
// connected UI gets the campaign's current snapshot immediately and
// every coalesced snapshot after that.
type Server struct {
	broadcaster *Broadcaster
	httpServer  *http.Server

	keepaliveInterval time.Duration
}

// NewServer builds the sync feed HTTP server bound to addr.
func NewServer(broadcaster *Broadcaster, addr string) *Server {
	s := &Server{
		broadcaster:       broadcaster,
		keepaliveInterval: 30 * time.Second,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /campaigns/{id}/state", s.handleCampaignState)
	mux.HandleFunc("GET /campaigns/{id}/state/snapshot", s.handleSnapshot)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// Start serves until Stop is called. It blocks, so run it from a
// goroutine; http.ErrServerClosed is swallowed as a clean exit.
func (s *Server) Start() error {
	logging.Info("SyncFeed", "Serving sync feed on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the HTTP server down, waiting up to the context deadline
// for in-flight streams to finish.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the underlying mux, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// handleCampaignState streams snapshots for one campaign as SSE until
// the client disconnects.
func (s *Server) handleCampaignState(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	observer := s.broadcaster.Subscribe(campaignID)
	defer observer.Close()

	// Close unblocks the pull loop when the client goes away.
	go func() {
		<-r.Context().Done()
		observer.Close()
	}()

	logging.Debug("SyncFeed", "SSE stream opened for campaign %s", campaignID)
	defer logging.Debug("SyncFeed", "SSE stream closed for campaign %s", campaignID)

	// The pump holds at most the one snapshot being written; everything
	// behind it keeps coalescing in the observer slot.
	updates := make(chan Update)
	go func() {
		defer close(updates)
		for {
			update, ok := observer.Next()
			if !ok {
				return
			}
			select {
			case updates <- update:
			case <-r.Context().Done():
				return
			}
		}
	}()

	keepalive := time.NewTicker(s.keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case update, ok := <-updates:
			if !ok {
				return
			}
			payload, err := json.Marshal(update)
			if err != nil {
				logging.Error("SyncFeed", err, "Failed to encode snapshot for campaign %s", campaignID)
				continue
			}
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

// handleSnapshot returns the campaign's latest snapshot as plain JSON,
// for clients that poll instead of streaming.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	campaignID := r.PathValue("id")

	update, ok := s.broadcaster.Latest(campaignID)
	if !ok {
		http.Error(w, "campaign not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(update); err != nil {
		logging.Error("SyncFeed", err, "Failed to write snapshot for campaign %s", campaignID)
	}
}
