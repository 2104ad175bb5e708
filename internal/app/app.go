package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"campaignd/internal/approval"
	"campaignd/internal/config"
	"campaignd/internal/events"
	"campaignd/internal/inputs"
	"campaignd/internal/projector"
	"campaignd/internal/registry"
	"campaignd/internal/syncfeed"
	"campaignd/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// Application wires the daemon together: tool server registry, domain
// event bus, state projector and sync feed. One Application runs one
// daemon process.
//
// Bootstrap happens in NewApplication (load configuration, validate the
// manifest, build all components); Run then drives everything until the
// context is cancelled.
type Application struct {
	cfg    *Config
	store  inputs.ValueStore
	bus    *events.Bus
	caster *syncfeed.Broadcaster
	folds  *projector.Manager
	feed   *syncfeed.Server

	// The registry and approval policy belong to a configuration
	// generation and are swapped wholesale on manifest reload.
	mu        sync.RWMutex
	reg       *registry.Registry
	policy    *approval.Policy
	cancelGen context.CancelFunc
}

// NewApplication bootstraps the daemon: logging, manifest load and
// validation, and construction of every component. Servers are not
// launched until Run.
//
// The value store decides where ${input:...} placeholders get their
// values; pass inputs.EnvStore{} for a non-interactive daemon or chain
// it with prompted values collected by the CLI.
func NewApplication(cfg *Config, store inputs.ValueStore) (*Application, error) {
	level := logging.LevelInfo
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logging.Init(level, os.Stderr)

	manifest, diagnostics, err := config.LoadManifest(cfg.ManifestPath)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to load manifest from %s", cfg.ManifestPath)
		return nil, fmt.Errorf("failed to load manifest from %s: %w", cfg.ManifestPath, err)
	}
	logDiagnostics(diagnostics)

	a := &Application{
		cfg:    cfg,
		store:  store,
		bus:    events.NewBus(),
		caster: syncfeed.NewBroadcaster(),
		reg:    registry.New(manifest, store, cfg.Registry.Options()),
		policy: approval.NewPolicy(manifest),
	}
	a.folds = projector.NewManager(a.bus, a.caster)
	a.feed = syncfeed.NewServer(a.caster, cfg.ListenAddr)

	logging.Info("Bootstrap", "Loaded manifest with %d servers, %d inputs",
		len(manifest.Servers), len(manifest.Inputs))
	return a, nil
}

// Bus is the domain event bus; the campaign engine publishes into it.
func (a *Application) Bus() *events.Bus {
	return a.bus
}

// Broadcaster is the sync feed fan-out, for in-process observers.
func (a *Application) Broadcaster() *syncfeed.Broadcaster {
	return a.caster
}

// Registry returns the current configuration generation's registry.
func (a *Application) Registry() *registry.Registry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.reg
}

// Snapshot returns the current folded state for a campaign.
func (a *Application) Snapshot(campaignID string) (projector.CampaignState, bool) {
	return a.folds.Snapshot(campaignID)
}

// RemoveCampaign tears down projection and feed state for a deleted
// campaign. Deletion is terminal: later events for the same id start a
// fresh projection from zero.
func (a *Application) RemoveCampaign(campaignID string) {
	a.folds.Remove(campaignID)
	a.caster.Forget(campaignID)
}

// InvokeTool calls a tool, enforcing the approval policy first. Tools
// outside the server's allow-list need approved set, which the caller
// obtains by confirming with a human.
func (a *Application) InvokeTool(ctx context.Context, server, tool string, args map[string]interface{}, approved bool) (*mcp.CallToolResult, error) {
	a.mu.RLock()
	reg, policy := a.reg, a.policy
	a.mu.RUnlock()

	if !approved && !policy.IsAutoApproved(server, tool) {
		return nil, &approval.NotApprovedError{Server: server, Tool: tool}
	}
	return reg.Invoke(ctx, server, tool, args)
}

// Run launches all tool servers and serves the sync feed until ctx is
// cancelled, then shuts everything down gracefully.
func (a *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.folds.Run(gctx)
		return nil
	})

	g.Go(func() error {
		return a.feed.Start()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return a.feed.Stop(shutdownCtx)
	})

	a.startGeneration(gctx)

	if a.cfg.WatchManifest {
		watcher, err := newManifestWatcher(a.cfg.ManifestPath, func() {
			a.reloadManifest(gctx)
		})
		if err != nil {
			logging.Warn("App", "Manifest watching disabled: %v", err)
		} else if err := watcher.Start(); err != nil {
			logging.Warn("App", "Manifest watching disabled: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	g.Go(func() error {
		<-gctx.Done()
		a.stopGeneration()
		return nil
	})

	logging.Info("App", "campaignd is running")
	return g.Wait()
}

// startGeneration launches the current registry's servers and its
// health check loop under a per-generation context.
func (a *Application) startGeneration(ctx context.Context) {
	a.mu.Lock()
	reg := a.reg
	genCtx, cancel := context.WithCancel(ctx)
	a.cancelGen = cancel
	a.mu.Unlock()

	reg.StartAll(genCtx)
	go reg.RunHealthChecks(genCtx)
}

// stopGeneration stops the health loop and shuts all servers down.
func (a *Application) stopGeneration() {
	a.mu.Lock()
	reg := a.reg
	cancel := a.cancelGen
	a.cancelGen = nil
	a.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	reg.ShutdownAll()
}

// reloadManifest builds a new registry generation from the manifest on
// disk and swaps it in. The old generation keeps serving until the new
// one has started, then shuts down. A manifest that fails to load keeps
// the running generation untouched.
func (a *Application) reloadManifest(ctx context.Context) {
	manifest, diagnostics, err := config.LoadManifest(a.cfg.ManifestPath)
	if err != nil {
		logging.Error("App", err, "Manifest reload failed, keeping current generation")
		return
	}
	logDiagnostics(diagnostics)

	next := registry.New(manifest, a.store, a.cfg.Registry.Options())
	genCtx, cancel := context.WithCancel(ctx)
	next.StartAll(genCtx)
	go next.RunHealthChecks(genCtx)

	a.mu.Lock()
	old := a.reg
	oldCancel := a.cancelGen
	a.reg = next
	a.policy = approval.NewPolicy(manifest)
	a.cancelGen = cancel
	a.mu.Unlock()

	if oldCancel != nil {
		oldCancel()
	}
	old.ShutdownAll()
	logging.Info("App", "Manifest reloaded, new generation with %d servers active", len(manifest.Servers))
}

func logDiagnostics(diagnostics []config.ServerDiagnostic) {
	for _, d := range diagnostics {
		logging.Warn("Bootstrap", "Server %s excluded from manifest: %v", d.Server, d.Err)
	}
}
