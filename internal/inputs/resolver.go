package inputs

import (
	"errors"
	"fmt"

	"campaignd/internal/config"
)

// UnresolvedInputError reports that a server references an input with no
// available value. It is fatal to the one affected server only.
type UnresolvedInputError struct {
	Server string
	Input  string
}

func (e *UnresolvedInputError) Error() string {
	return fmt.Sprintf("server %s: no value for input %q", e.Server, e.Input)
}

// IsInputUnresolved checks for UnresolvedInputError, supporting wrapping.
func IsInputUnresolved(err error) bool {
	var unresolved *UnresolvedInputError
	return errors.As(err, &unresolved)
}

// ResolvedServer is a server configuration with every placeholder
// substituted. Values are plain strings ready for the process or HTTP
// boundary; resolution is the point past which secrecy tagging ends, so a
// ResolvedServer must never be logged wholesale.
type ResolvedServer struct {
	Name    string
	Type    config.TransportType
	Command string
	Args    []string
	Env     map[string]string
	URL     string
}

// Resolve substitutes every ${input:<id>} placeholder in the server's
// command, args, env values, and URL against the value store.
//
// Validation already guaranteed that each referenced id is declared, so
// the only failure mode here is a declared input with no value, reported
// as UnresolvedInputError.
func Resolve(name string, server config.ServerConfig, declarations map[string]config.InputDeclaration, store ValueStore) (ResolvedServer, error) {
	values := make(map[string]Secret)
	for _, id := range serverInputIDs(server) {
		if _, done := values[id]; done {
			continue
		}
		decl, declared := declarations[id]
		if !declared {
			// Load-time validation rejects this; kept as a guard for
			// callers constructing configs programmatically.
			return ResolvedServer{}, &UnresolvedInputError{Server: name, Input: id}
		}
		value, ok := store.Lookup(decl)
		if !ok {
			return ResolvedServer{}, &UnresolvedInputError{Server: name, Input: id}
		}
		values[id] = value
	}

	expand := func(s string) string {
		return config.ExpandPlaceholders(s, func(id string) string {
			return values[id].Reveal()
		})
	}

	resolved := ResolvedServer{
		Name:    name,
		Type:    server.Type,
		Command: expand(server.Command),
		URL:     expand(server.URL),
	}
	if len(server.Args) > 0 {
		resolved.Args = make([]string, len(server.Args))
		for i, arg := range server.Args {
			resolved.Args[i] = expand(arg)
		}
	}
	if len(server.Env) > 0 {
		resolved.Env = make(map[string]string, len(server.Env))
		for k, v := range server.Env {
			resolved.Env[k] = expand(v)
		}
	}
	return resolved, nil
}

func serverInputIDs(server config.ServerConfig) []string {
	var ids []string
	ids = append(ids, config.Placeholders(server.Command)...)
	for _, arg := range server.Args {
		ids = append(ids, config.Placeholders(arg)...)
	}
	for _, v := range server.Env {
		ids = append(ids, config.Placeholders(v)...)
	}
	ids = append(ids, config.Placeholders(server.URL)...)
	return ids
}
