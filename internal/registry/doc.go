// Package registry owns the lifecycle of every configured tool server.
//
// Each non-disabled server in the manifest gets a Handle moving through
// the state machine
//
//	Stopped -> Starting -> Ready
//	Starting -> StoppedError            (launch failure, unresolved input)
//	Ready -> Degraded -> StoppedError   (repeated health/invocation failure)
//
// Start resolves the server's inputs, creates a transport client (stdio
// subprocess or HTTP), performs the handshake, and caches the advertised
// tool list. Invoke and ListTools operate only on Ready (or recovering
// Degraded) servers and map failures onto the caller-facing error
// taxonomy: ServerUnavailable, ToolNotFound, InvocationTimeout.
//
// A server crash or threshold breach leaves the server in StoppedError;
// the registry never restarts it automatically. Tool servers are
// user-configured and may depend on external state a blind restart would
// not fix, so recovery is an explicit Start.
//
// A Registry is one configuration generation: its manifest is immutable,
// and a manifest reload builds a fresh Registry while the old one is
// shut down.
package registry
