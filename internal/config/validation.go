package config

import (
	"fmt"
	"net/url"
	"strings"

	"campaignd/pkg/logging"
)

// ValidateManifest validates a parsed manifest. Input declaration problems
// (duplicate ids) are manifest-level and returned as an error. Server entry
// problems are server-level: the offending entry is pruned from the
// returned manifest and recorded as a diagnostic, and the remaining valid
// servers survive.
func ValidateManifest(manifest Manifest) (Manifest, []ServerDiagnostic, error) {
	var errs ValidationErrors

	seen := make(map[string]bool, len(manifest.Inputs))
	for _, input := range manifest.Inputs {
		if strings.TrimSpace(input.ID) == "" {
			errs.Add("inputs.id", "is required")
			continue
		}
		if seen[input.ID] {
			errs.Add("inputs.id", fmt.Sprintf("duplicate input id %q", input.ID), input.ID)
		}
		seen[input.ID] = true
		if input.Type != InputTypePromptString {
			errs.Add(fmt.Sprintf("inputs[%s].type", input.ID),
				fmt.Sprintf("unsupported input type %q (supported: %s)", input.Type, InputTypePromptString), input.Type)
		}
	}
	if errs.HasErrors() {
		return Manifest{}, nil, errs
	}

	valid := Manifest{
		Servers: make(map[string]ServerConfig, len(manifest.Servers)),
		Inputs:  manifest.Inputs,
	}
	var diagnostics []ServerDiagnostic
	for name, server := range manifest.Servers {
		if err := validateServer(name, server, seen); err != nil {
			logging.Warn("ConfigLoader", "Skipping server %s: %v", name, err)
			diagnostics = append(diagnostics, ServerDiagnostic{Server: name, Err: err})
			continue
		}
		valid.Servers[name] = server
	}

	return valid, diagnostics, nil
}

// validateServer checks one server entry against the transport invariant
// and verifies that every placeholder references a declared input.
func validateServer(name string, server ServerConfig, declaredInputs map[string]bool) error {
	var errs ValidationErrors

	switch server.Type {
	case TransportStdio:
		if strings.TrimSpace(server.Command) == "" {
			errs.Add("command", "is required for stdio transport")
		}
		if server.URL != "" {
			errs.Add("url", "must not be set for stdio transport", server.URL)
		}
	case TransportHTTP:
		if strings.TrimSpace(server.URL) == "" {
			errs.Add("url", "is required for http transport")
		} else if !isWellFormedURL(server.URL) {
			errs.Add("url", fmt.Sprintf("malformed url %q", server.URL), server.URL)
		}
		if server.Command != "" || len(server.Args) > 0 {
			errs.Add("command", "command/args must not be set for http transport")
		}
	default:
		errs.Add("type", fmt.Sprintf("unsupported transport %q (supported: %s, %s)",
			server.Type, TransportStdio, TransportHTTP), server.Type)
	}

	for _, id := range serverPlaceholders(server) {
		if !declaredInputs[id] {
			errs.Add("inputs", fmt.Sprintf("placeholder references undeclared input %q", id), id)
		}
	}

	if errs.HasErrors() {
		return fmt.Errorf("server %s: %w", name, errs)
	}
	return nil
}

// isWellFormedURL accepts absolute http(s) URLs. Placeholders inside the
// URL resolve later, so a URL containing one is only checked for scheme.
func isWellFormedURL(raw string) bool {
	if len(Placeholders(raw)) > 0 {
		return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
