package registry

import (
	"errors"
	"fmt"
	"time"
)

// ServerUnavailableError indicates an operation was attempted against a
// server that is not in the Ready state. Callers may retry after a
// backoff; the registry never retries internally.
type ServerUnavailableError struct {
	Server string
	State  LifecycleState
}

func (e *ServerUnavailableError) Error() string {
	return fmt.Sprintf("tool server %s unavailable (state %s)", e.Server, e.State)
}

// IsServerUnavailable checks for ServerUnavailableError, supporting
// wrapped errors.
func IsServerUnavailable(err error) bool {
	var unavailable *ServerUnavailableError
	return errors.As(err, &unavailable)
}

// ToolNotFoundError indicates the named tool is not advertised by the
// server. This is a caller error and is never retried.
type ToolNotFoundError struct {
	Server string
	Tool   string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("tool %s not found on server %s", e.Tool, e.Server)
}

// IsToolNotFound checks for ToolNotFoundError, supporting wrapped errors.
func IsToolNotFound(err error) bool {
	var notFound *ToolNotFoundError
	return errors.As(err, &notFound)
}

// InvocationTimeoutError indicates a tool call exceeded the configured
// invocation timeout. Retry policy is the caller's decision.
type InvocationTimeoutError struct {
	Server  string
	Tool    string
	Timeout time.Duration
}

func (e *InvocationTimeoutError) Error() string {
	return fmt.Sprintf("invocation of %s on server %s timed out after %s", e.Tool, e.Server, e.Timeout)
}

// IsInvocationTimeout checks for InvocationTimeoutError, supporting
// wrapped errors.
func IsInvocationTimeout(err error) bool {
	var timeout *InvocationTimeoutError
	return errors.As(err, &timeout)
}
