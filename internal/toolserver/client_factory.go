package toolserver

import (
	"fmt"

	"campaignd/internal/config"
	"campaignd/internal/inputs"
)

// NewClient creates the appropriate transport client for a resolved
// server configuration.
//
// Supported transports:
//   - stdio: local subprocess reached over standard streams
//   - http: remote server reached over streamable HTTP
//
// The resolved config is expected to have passed manifest validation, but
// the transport invariant is re-checked here as a guard for callers
// constructing configs programmatically.
func NewClient(server inputs.ResolvedServer) (Client, error) {
	switch server.Type {
	case config.TransportStdio:
		if server.Command == "" {
			return nil, fmt.Errorf("command is required for stdio transport")
		}
		return NewStdioClient(server.Command, server.Args, server.Env), nil

	case config.TransportHTTP:
		if server.URL == "" {
			return nil, fmt.Errorf("url is required for http transport")
		}
		return NewHTTPClient(server.URL), nil

	default:
		return nil, fmt.Errorf("unsupported transport %q (supported: %s, %s)",
			server.Type, config.TransportStdio, config.TransportHTTP)
	}
}
