package registry

import (
	"sync"
	"time"

	"campaignd/internal/config"
	"campaignd/internal/toolserver"

	"github.com/mark3labs/mcp-go/mcp"
)

// LifecycleState tracks where a tool server is in its lifecycle.
type LifecycleState string

const (
	// StateStopped is the initial state and the state after a clean
	// shutdown. An explicit Start is required to leave it.
	StateStopped LifecycleState = "stopped"
	// StateStarting covers launch and protocol handshake.
	StateStarting LifecycleState = "starting"
	// StateReady means the server answers list-tools and invocations.
	StateReady LifecycleState = "ready"
	// StateDegraded means recent health checks or invocations failed but
	// the failure threshold has not been reached yet.
	StateDegraded LifecycleState = "degraded"
	// StateStoppedError means launch failed, inputs were unresolvable,
	// or repeated failures crossed the threshold. The registry does not
	// auto-restart; an explicit Start is required.
	StateStoppedError LifecycleState = "stopped-error"
)

// Handle is the registry-owned runtime record for one tool server. The
// configuration it references is immutable; all mutable fields are
// guarded by mu.
type Handle struct {
	name   string
	config config.ServerConfig

	mu                  sync.RWMutex
	state               LifecycleState
	lastErr             error
	client              toolserver.Client
	tools               []mcp.Tool
	lastHealthCheck     time.Time
	consecutiveFailures int
}

func newHandle(name string, cfg config.ServerConfig) *Handle {
	return &Handle{
		name:   name,
		config: cfg,
		state:  StateStopped,
	}
}

// Name returns the server name.
func (h *Handle) Name() string {
	return h.name
}

// Config returns the immutable server configuration.
func (h *Handle) Config() config.ServerConfig {
	return h.config
}

// State returns the current lifecycle state.
func (h *Handle) State() LifecycleState {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// LastError returns the error that accompanied the last state change.
func (h *Handle) LastError() error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lastErr
}

// Tools returns the tool list advertised by the server at startup.
func (h *Handle) Tools() []mcp.Tool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	tools := make([]mcp.Tool, len(h.tools))
	copy(tools, h.tools)
	return tools
}

// hasTool reports whether the server advertised the named tool.
func (h *Handle) hasTool(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, tool := range h.tools {
		if tool.Name == name {
			return true
		}
	}
	return false
}

// readyClient returns the client if the handle is Ready or Degraded
// (degraded servers still take invocations; a success recovers them).
func (h *Handle) readyClient() (toolserver.Client, *ServerUnavailableError) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.state != StateReady && h.state != StateDegraded {
		return nil, &ServerUnavailableError{Server: h.name, State: h.state}
	}
	return h.client, nil
}

func (h *Handle) setState(state LifecycleState, err error) {
	h.mu.Lock()
	h.state = state
	h.lastErr = err
	h.mu.Unlock()
}

// markReady transitions into Ready with a fresh tool list and clears the
// failure counter.
func (h *Handle) markReady(client toolserver.Client, tools []mcp.Tool) {
	h.mu.Lock()
	h.state = StateReady
	h.lastErr = nil
	h.client = client
	h.tools = tools
	h.consecutiveFailures = 0
	h.mu.Unlock()
}

// takeClient detaches the client for shutdown and moves the handle into
// the given terminal state. Returns nil if there is no live client.
func (h *Handle) takeClient(state LifecycleState, err error) toolserver.Client {
	h.mu.Lock()
	client := h.client
	h.client = nil
	h.tools = nil
	h.state = state
	h.lastErr = err
	h.mu.Unlock()
	return client
}

// recordSuccess notes a successful health check or invocation. A degraded
// server recovers to Ready.
func (h *Handle) recordSuccess(now time.Time) {
	h.mu.Lock()
	h.consecutiveFailures = 0
	h.lastHealthCheck = now
	if h.state == StateDegraded {
		h.state = StateReady
		h.lastErr = nil
	}
	h.mu.Unlock()
}

// recordFailure notes a failed health check or invocation and returns the
// new consecutive failure count. Ready degrades on the first failure; the
// registry escalates to StoppedError once the threshold is crossed.
func (h *Handle) recordFailure(now time.Time, err error) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.consecutiveFailures++
	h.lastHealthCheck = now
	h.lastErr = err
	if h.state == StateReady {
		h.state = StateDegraded
	}
	return h.consecutiveFailures
}

// Status is a point-in-time snapshot of a handle for diagnostics.
type Status struct {
	Name                string
	Transport           config.TransportType
	State               LifecycleState
	Disabled            bool
	Err                 string
	ToolCount           int
	LastHealthCheck     time.Time
	ConsecutiveFailures int
}

// Status returns a snapshot of the handle.
func (h *Handle) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	status := Status{
		Name:                h.name,
		Transport:           h.config.Type,
		State:               h.state,
		ToolCount:           len(h.tools),
		LastHealthCheck:     h.lastHealthCheck,
		ConsecutiveFailures: h.consecutiveFailures,
	}
	if h.lastErr != nil {
		status.Err = h.lastErr.Error()
	}
	return status
}
