package config

// TransportType defines how a tool server is reached.
type TransportType string

const (
	// TransportStdio runs the tool server as a local subprocess and
	// speaks the tool protocol over its standard streams.
	TransportStdio TransportType = "stdio"
	// TransportHTTP connects to a remote tool server over HTTP.
	TransportHTTP TransportType = "http"
)

// InputType defines how an input value is obtained.
type InputType string

const (
	// InputTypePromptString is a string value prompted from the user and
	// cached for the lifetime of the configuration generation.
	InputTypePromptString InputType = "promptString"
)

// ServerConfig describes one tool server entry in the manifest.
type ServerConfig struct {
	// Type selects the transport. Exactly one transport's required
	// fields must be present: stdio requires Command, http requires URL.
	Type TransportType `json:"type"`

	// Command is the executable path for stdio servers.
	Command string `json:"command,omitempty"`
	// Args are the command line arguments for stdio servers.
	Args []string `json:"args,omitempty"`
	// Env contains environment variables for stdio servers.
	Env map[string]string `json:"env,omitempty"`

	// URL is the endpoint for http servers.
	URL string `json:"url,omitempty"`

	// Disabled excludes the server from startup entirely.
	Disabled bool `json:"disabled,omitempty"`

	// AutoApprove lists tool names that may be invoked without
	// interactive confirmation.
	AutoApprove []string `json:"autoApprove,omitempty"`
}

// InputDeclaration declares a value that server fields may reference with
// the ${input:<id>} placeholder syntax.
type InputDeclaration struct {
	ID          string    `json:"id"`
	Type        InputType `json:"type"`
	Description string    `json:"description,omitempty"`
	// Password marks the input as secret. Secret values are never logged
	// or surfaced in diagnostics.
	Password bool `json:"password,omitempty"`
}

// Manifest is the validated in-memory form of the tool-server manifest.
// It is loaded once and treated as immutable; a reload produces a new
// registry generation rather than mutating live handles.
type Manifest struct {
	Servers map[string]ServerConfig `json:"servers"`
	Inputs  []InputDeclaration      `json:"inputs,omitempty"`
}

// InputsByID returns the declared inputs keyed by id.
func (m *Manifest) InputsByID() map[string]InputDeclaration {
	inputs := make(map[string]InputDeclaration, len(m.Inputs))
	for _, input := range m.Inputs {
		inputs[input.ID] = input
	}
	return inputs
}

// ServerDiagnostic records why a server entry was rejected during
// validation. Rejection is fatal to the one offending server only; the
// remaining valid servers still load.
type ServerDiagnostic struct {
	Server string
	Err    error
}
