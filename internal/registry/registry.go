package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"campaignd/internal/config"
	"campaignd/internal/inputs"
	"campaignd/internal/toolserver"
	"campaignd/pkg/logging"

	"github.com/mark3labs/mcp-go/mcp"
	"golang.org/x/sync/errgroup"
)

// Options are the registry's tunables. The zero value is usable; every
// field falls back to its default. These are deliberately configuration
// knobs rather than fixed constants.
type Options struct {
	// StartTimeout bounds launch plus protocol handshake per server.
	StartTimeout time.Duration
	// InvokeTimeout bounds a single tool invocation.
	InvokeTimeout time.Duration
	// ShutdownGrace is how long a graceful shutdown may take before the
	// registry stops waiting on it.
	ShutdownGrace time.Duration
	// HealthInterval is the pause between health-check sweeps.
	HealthInterval time.Duration
	// FailureThreshold is the number of consecutive health-check or
	// invocation failures after which a degraded server is stopped.
	FailureThreshold int
}

const (
	DefaultStartTimeout     = 30 * time.Second
	DefaultInvokeTimeout    = 60 * time.Second
	DefaultShutdownGrace    = 5 * time.Second
	DefaultHealthInterval   = 30 * time.Second
	DefaultFailureThreshold = 3
)

func (o Options) withDefaults() Options {
	if o.StartTimeout <= 0 {
		o.StartTimeout = DefaultStartTimeout
	}
	if o.InvokeTimeout <= 0 {
		o.InvokeTimeout = DefaultInvokeTimeout
	}
	if o.ShutdownGrace <= 0 {
		o.ShutdownGrace = DefaultShutdownGrace
	}
	if o.HealthInterval <= 0 {
		o.HealthInterval = DefaultHealthInterval
	}
	if o.FailureThreshold <= 0 {
		o.FailureThreshold = DefaultFailureThreshold
	}
	return o
}

// Registry owns the lifecycle of every non-disabled tool server in one
// configuration generation. The manifest it was built from is immutable;
// a manifest reload builds a new Registry rather than mutating this one.
type Registry struct {
	manifest     config.Manifest
	declarations map[string]config.InputDeclaration
	store        inputs.ValueStore
	opts         Options

	// handles is populated once at construction and read-only after, so
	// no lock is needed; all mutable state lives on the handles.
	handles map[string]*Handle

	// newClient is the transport client factory, replaceable in tests.
	newClient func(inputs.ResolvedServer) (toolserver.Client, error)
}

// New builds a registry generation over the validated manifest. Handles
// are created for every non-disabled server in the Stopped state; nothing
// is launched until Start or StartAll.
func New(manifest config.Manifest, store inputs.ValueStore, opts Options) *Registry {
	r := &Registry{
		manifest:     manifest,
		declarations: manifest.InputsByID(),
		store:        store,
		opts:         opts.withDefaults(),
		handles:      make(map[string]*Handle),
		newClient:    toolserver.NewClient,
	}
	for name, server := range manifest.Servers {
		if server.Disabled {
			logging.Debug("ToolRegistry", "Server %s is disabled, not registering", name)
			continue
		}
		r.handles[name] = newHandle(name, server)
	}
	return r
}

// Handle returns the handle for a server, if registered.
func (r *Registry) Handle(name string) (*Handle, bool) {
	handle, ok := r.handles[name]
	return handle, ok
}

// Start launches one server: resolves its inputs, creates the transport
// client, and performs the handshake. It returns once the server is Ready
// or the start timeout elapses. Failures leave the server in StoppedError
// and never affect other servers.
func (r *Registry) Start(ctx context.Context, name string) error {
	handle, ok := r.handles[name]
	if !ok {
		if server, exists := r.manifest.Servers[name]; exists && server.Disabled {
			return fmt.Errorf("tool server %s is disabled", name)
		}
		return &ServerUnavailableError{Server: name, State: StateStopped}
	}

	switch handle.State() {
	case StateStarting:
		return fmt.Errorf("tool server %s is already starting", name)
	case StateReady, StateDegraded:
		return fmt.Errorf("tool server %s is already running", name)
	}

	handle.setState(StateStarting, nil)
	logging.Info("ToolRegistry", "Starting tool server %s (%s)", name, handle.config.Type)

	resolved, err := inputs.Resolve(name, handle.config, r.declarations, r.store)
	if err != nil {
		handle.setState(StateStoppedError, err)
		logging.Error("ToolRegistry", err, "Input resolution failed for server %s", name)
		return err
	}

	client, err := r.newClient(resolved)
	if err != nil {
		handle.setState(StateStoppedError, err)
		return fmt.Errorf("creating client for server %s: %w", name, err)
	}

	startCtx, cancel := context.WithTimeout(ctx, r.opts.StartTimeout)
	defer cancel()

	if err := client.Initialize(startCtx); err != nil {
		handle.setState(StateStoppedError, err)
		if closeErr := client.Close(); closeErr != nil {
			logging.Debug("ToolRegistry", "Cleanup after failed start of %s: %v", name, closeErr)
		}
		return fmt.Errorf("starting server %s: %w", name, err)
	}

	// The advertised tool list is cached at startup so Invoke can reject
	// unknown tools without a round trip.
	tools, err := client.ListTools(startCtx)
	if err != nil {
		handle.setState(StateStoppedError, err)
		if closeErr := client.Close(); closeErr != nil {
			logging.Debug("ToolRegistry", "Cleanup after failed start of %s: %v", name, closeErr)
		}
		return fmt.Errorf("listing tools for server %s: %w", name, err)
	}

	handle.markReady(client, tools)
	logging.Info("ToolRegistry", "Tool server %s ready with %d tools", name, len(tools))
	return nil
}

// StartAll launches every registered server concurrently. Individual
// launch failures are logged and reflected in Status; they do not abort
// the registry or each other.
func (r *Registry) StartAll(ctx context.Context) {
	g, ctx := errgroup.WithContext(ctx)
	for name := range r.handles {
		g.Go(func() error {
			if err := r.Start(ctx, name); err != nil {
				logging.Warn("ToolRegistry", "Server %s failed to start: %v", name, err)
			}
			return nil
		})
	}
	// Errors are swallowed per server above.
	_ = g.Wait()
}

// ListTools returns the tools advertised by a Ready server.
func (r *Registry) ListTools(ctx context.Context, name string) ([]mcp.Tool, error) {
	handle, ok := r.handles[name]
	if !ok {
		return nil, &ServerUnavailableError{Server: name, State: StateStopped}
	}
	client, unavailable := handle.readyClient()
	if unavailable != nil {
		return nil, unavailable
	}

	tools, err := client.ListTools(ctx)
	if err != nil {
		r.noteFailure(handle, err)
		return nil, fmt.Errorf("listing tools on server %s: %w", name, err)
	}
	handle.recordSuccess(time.Now())
	return tools, nil
}

// Invoke calls a tool on a server. The call is synchronous from the
// caller's view and bounded by the invocation timeout. Error values map
// to the caller-facing taxonomy: ServerUnavailable, ToolNotFound,
// InvocationTimeout.
func (r *Registry) Invoke(ctx context.Context, name, tool string, args map[string]interface{}) (*mcp.CallToolResult, error) {
	handle, ok := r.handles[name]
	if !ok {
		return nil, &ServerUnavailableError{Server: name, State: StateStopped}
	}
	client, unavailable := handle.readyClient()
	if unavailable != nil {
		return nil, unavailable
	}
	if !handle.hasTool(tool) {
		return nil, &ToolNotFoundError{Server: name, Tool: tool}
	}

	invokeCtx, cancel := context.WithTimeout(ctx, r.opts.InvokeTimeout)
	defer cancel()

	result, err := client.CallTool(invokeCtx, tool, args)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || invokeCtx.Err() == context.DeadlineExceeded {
			r.noteFailure(handle, err)
			return nil, &InvocationTimeoutError{Server: name, Tool: tool, Timeout: r.opts.InvokeTimeout}
		}
		r.noteFailure(handle, err)
		return nil, fmt.Errorf("invoking %s on server %s: %w", tool, name, err)
	}

	handle.recordSuccess(time.Now())
	return result, nil
}

// Shutdown stops one server. Stdio servers get a graceful terminate with
// the configured grace period; HTTP clients are simply closed. Safe to
// call from a failure path and when already stopped.
func (r *Registry) Shutdown(name string) error {
	handle, ok := r.handles[name]
	if !ok {
		return nil
	}
	client := handle.takeClient(StateStopped, nil)
	if client == nil {
		return nil
	}

	logging.Info("ToolRegistry", "Shutting down tool server %s", name)

	// Close tears down the protocol and, for stdio, terminates the
	// subprocess. Bound it so a wedged server cannot stall shutdown.
	done := make(chan error, 1)
	go func() { done <- client.Close() }()
	select {
	case err := <-done:
		if err != nil {
			logging.Warn("ToolRegistry", "Error closing server %s: %v", name, err)
			return err
		}
	case <-time.After(r.opts.ShutdownGrace):
		logging.Warn("ToolRegistry", "Server %s did not shut down within %s", name, r.opts.ShutdownGrace)
	}
	return nil
}

// ShutdownAll stops every server concurrently and returns after all have
// stopped or exhausted their grace period.
func (r *Registry) ShutdownAll() {
	var g errgroup.Group
	for name := range r.handles {
		g.Go(func() error {
			_ = r.Shutdown(name)
			return nil
		})
	}
	_ = g.Wait()
}

// RunHealthChecks pings Ready and Degraded servers on the configured
// interval until ctx is cancelled. A server whose consecutive failures
// reach the threshold is stopped with StoppedError; it is not restarted
// automatically.
func (r *Registry) RunHealthChecks(ctx context.Context) {
	ticker := time.NewTicker(r.opts.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweepHealth(ctx)
		}
	}
}

func (r *Registry) sweepHealth(ctx context.Context) {
	for name, handle := range r.handles {
		client, unavailable := handle.readyClient()
		if unavailable != nil {
			continue
		}
		pingCtx, cancel := context.WithTimeout(ctx, r.opts.StartTimeout)
		err := client.Ping(pingCtx)
		cancel()
		if err != nil {
			logging.Warn("ToolRegistry", "Health check failed for server %s: %v", name, err)
			r.noteFailure(handle, err)
			continue
		}
		handle.recordSuccess(time.Now())
	}
}

// noteFailure records a failure and escalates Degraded to StoppedError
// once the threshold is crossed.
func (r *Registry) noteFailure(handle *Handle, err error) {
	failures := handle.recordFailure(time.Now(), err)
	if failures < r.opts.FailureThreshold {
		return
	}
	logging.Error("ToolRegistry", err, "Server %s crossed failure threshold (%d), stopping",
		handle.Name(), failures)
	stopped := fmt.Errorf("stopped after %d consecutive failures: %w", failures, err)
	if client := handle.takeClient(StateStoppedError, stopped); client != nil {
		if closeErr := client.Close(); closeErr != nil {
			logging.Debug("ToolRegistry", "Error closing failed server %s: %v", handle.Name(), closeErr)
		}
	}
}

// Statuses returns a snapshot of every server in the generation,
// including disabled entries, sorted by name.
func (r *Registry) Statuses() []Status {
	statuses := make([]Status, 0, len(r.manifest.Servers))
	for name, server := range r.manifest.Servers {
		if handle, ok := r.handles[name]; ok {
			statuses = append(statuses, handle.Status())
			continue
		}
		statuses = append(statuses, Status{
			Name:      name,
			Transport: server.Type,
			State:     StateStopped,
			Disabled:  true,
		})
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
