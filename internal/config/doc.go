// Package config loads and validates the tool-server manifest.
//
// The manifest is user-editable configuration describing every external
// tool server the agent may reach (transport, launch parameters, allow
// lists) plus the inputs its string fields may reference via the
// ${input:<id>} placeholder syntax.
//
// Validation is strict about manifest-level problems (duplicate input
// ids, unparseable documents) but lenient about individual server
// entries: a malformed entry is pruned with a recorded diagnostic so the
// remaining valid servers still load. Placeholder references to
// undeclared inputs are caught here, at load time, never at invocation
// time.
package config
