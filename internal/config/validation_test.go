package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateManifestDuplicateInputID(t *testing.T) {
	_, _, err := ValidateManifest(Manifest{
		Inputs: []InputDeclaration{
			{ID: "api_key", Type: InputTypePromptString},
			{ID: "api_key", Type: InputTypePromptString},
		},
	})
	require.Error(t, err)
	assert.True(t, IsConfigInvalid(err))
	assert.Contains(t, err.Error(), "duplicate input id")
}

func TestValidateManifestUnsupportedInputType(t *testing.T) {
	_, _, err := ValidateManifest(Manifest{
		Inputs: []InputDeclaration{{ID: "pick", Type: "pickString"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported input type")
}

func TestValidateServerTransportInvariant(t *testing.T) {
	tests := []struct {
		name    string
		server  ServerConfig
		wantErr string
	}{
		{
			name:    "stdio without command",
			server:  ServerConfig{Type: TransportStdio},
			wantErr: "command",
		},
		{
			name:    "stdio with url",
			server:  ServerConfig{Type: TransportStdio, Command: "tool", URL: "https://x"},
			wantErr: "url",
		},
		{
			name:    "http without url",
			server:  ServerConfig{Type: TransportHTTP},
			wantErr: "url",
		},
		{
			name:    "http with malformed url",
			server:  ServerConfig{Type: TransportHTTP, URL: "not-a-url"},
			wantErr: "malformed url",
		},
		{
			name:    "http with command",
			server:  ServerConfig{Type: TransportHTTP, URL: "https://x.example.com", Command: "tool"},
			wantErr: "command/args must not be set",
		},
		{
			name:    "unknown transport",
			server:  ServerConfig{Type: "websocket", URL: "wss://x"},
			wantErr: "unsupported transport",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manifest, diagnostics, err := ValidateManifest(Manifest{
				Servers: map[string]ServerConfig{"bad": tt.server},
			})
			require.NoError(t, err)
			require.Len(t, diagnostics, 1)
			assert.Contains(t, diagnostics[0].Err.Error(), tt.wantErr)
			assert.Empty(t, manifest.Servers)
		})
	}
}

func TestValidateServerUndeclaredPlaceholder(t *testing.T) {
	manifest, diagnostics, err := ValidateManifest(Manifest{
		Servers: map[string]ServerConfig{
			"scraper": {
				Type:    TransportStdio,
				Command: "scraper",
				Env:     map[string]string{"KEY": "${input:missing}"},
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Err.Error(), `undeclared input "missing"`)
	assert.Empty(t, manifest.Servers)
}

func TestValidateServerDeclaredPlaceholderInEveryField(t *testing.T) {
	manifest, diagnostics, err := ValidateManifest(Manifest{
		Servers: map[string]ServerConfig{
			"scraper": {
				Type:    TransportStdio,
				Command: "${input:bin}",
				Args:    []string{"--key", "${input:key}"},
				Env:     map[string]string{"KEY": "${input:key}"},
			},
			"search": {
				Type: TransportHTTP,
				URL:  "https://search.example.com/${input:tenant}/mcp",
			},
		},
		Inputs: []InputDeclaration{
			{ID: "bin", Type: InputTypePromptString},
			{ID: "key", Type: InputTypePromptString, Password: true},
			{ID: "tenant", Type: InputTypePromptString},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Len(t, manifest.Servers, 2)
}

func TestPlaceholders(t *testing.T) {
	assert.Nil(t, Placeholders("no placeholders here"))
	assert.Equal(t, []string{"a", "b"}, Placeholders("${input:a} and ${input:b}"))
	assert.Equal(t, []string{"key", "key"}, Placeholders("${input:key}${input:key}"))
}

func TestExpandPlaceholders(t *testing.T) {
	got := ExpandPlaceholders("token=${input:key}", func(id string) string {
		return "secret-" + id
	})
	assert.Equal(t, "token=secret-key", got)
}

func TestValidationErrorsMessage(t *testing.T) {
	var errs ValidationErrors
	assert.False(t, errs.HasErrors())

	errs.Add("command", "is required for stdio transport")
	assert.Equal(t, "field 'command': is required for stdio transport", errs.Error())

	errs.Add("url", "must not be set")
	assert.Contains(t, errs.Error(), "validation failed:")
}
