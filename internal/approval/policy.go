// Package approval answers whether a tool call may proceed without
// interactive confirmation. The agent layer consults it before prompting
// a human; the prompt itself happens elsewhere.
package approval

import (
	"errors"
	"fmt"

	"campaignd/internal/config"
)

// NotApprovedError indicates a tool call was attempted without
// confirmation for a tool that is not on the server's allow-list.
type NotApprovedError struct {
	Server string
	Tool   string
}

func (e *NotApprovedError) Error() string {
	return fmt.Sprintf("tool %s on server %s requires confirmation and none was given", e.Tool, e.Server)
}

// IsNotApproved returns true if err is a NotApprovedError.
func IsNotApproved(err error) bool {
	var notApproved *NotApprovedError
	return errors.As(err, &notApproved)
}

// Policy is a pure lookup over the manifest's per-server allow-lists.
// It is built once per configuration generation and never mutated.
type Policy struct {
	allowed map[string]map[string]bool
}

// NewPolicy builds the policy from a validated manifest.
func NewPolicy(manifest config.Manifest) *Policy {
	allowed := make(map[string]map[string]bool, len(manifest.Servers))
	for name, server := range manifest.Servers {
		if len(server.AutoApprove) == 0 {
			continue
		}
		tools := make(map[string]bool, len(server.AutoApprove))
		for _, tool := range server.AutoApprove {
			tools[tool] = true
		}
		allowed[name] = tools
	}
	return &Policy{allowed: allowed}
}

// IsAutoApproved reports whether toolName is on the server's allow-list.
// Unknown servers and tools default to requiring confirmation.
func (p *Policy) IsAutoApproved(serverName, toolName string) bool {
	return p.allowed[serverName][toolName]
}
