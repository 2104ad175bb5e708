package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `{
  "servers": {
    "search": {
      "type": "http",
      "url": "https://search.example.com/mcp",
      "autoApprove": ["web_search"]
    },
    "scraper": {
      "type": "stdio",
      "command": "npx",
      "args": ["-y", "scraper-server"],
      "env": {"SCRAPER_API_KEY": "${input:scraper_key}"}
    },
    "legacy": {
      "type": "stdio",
      "disabled": true,
      "command": "legacy-tool"
    }
  },
  "inputs": [
    {"id": "scraper_key", "type": "promptString", "description": "Scraper API key", "password": true}
  ]
}`

func TestParseManifest(t *testing.T) {
	manifest, diagnostics, err := ParseManifest([]byte(sampleManifest))
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Len(t, manifest.Servers, 3)

	search := manifest.Servers["search"]
	assert.Equal(t, TransportHTTP, search.Type)
	assert.Equal(t, "https://search.example.com/mcp", search.URL)
	assert.Equal(t, []string{"web_search"}, search.AutoApprove)

	scraper := manifest.Servers["scraper"]
	assert.Equal(t, TransportStdio, scraper.Type)
	assert.Equal(t, "npx", scraper.Command)
	assert.Equal(t, "${input:scraper_key}", scraper.Env["SCRAPER_API_KEY"])

	assert.True(t, manifest.Servers["legacy"].Disabled)

	require.Len(t, manifest.Inputs, 1)
	assert.True(t, manifest.Inputs[0].Password)
}

func TestParseManifestYAML(t *testing.T) {
	manifest, diagnostics, err := ParseManifest([]byte(`
servers:
  enrich:
    type: stdio
    command: enrich-server
`))
	require.NoError(t, err)
	assert.Empty(t, diagnostics)
	assert.Contains(t, manifest.Servers, "enrich")
}

func TestParseManifestMalformed(t *testing.T) {
	_, _, err := ParseManifest([]byte(`{"servers": [`))
	require.Error(t, err)
}

func TestParseManifestInvalidServerIsSkippedNotFatal(t *testing.T) {
	manifest, diagnostics, err := ParseManifest([]byte(`{
  "servers": {
    "broken": {"type": "stdio"},
    "good": {"type": "http", "url": "https://x.example.com"}
  }
}`))
	require.NoError(t, err)
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "broken", diagnostics[0].Server)
	assert.True(t, IsConfigInvalid(diagnostics[0].Err))

	assert.NotContains(t, manifest.Servers, "broken")
	assert.Contains(t, manifest.Servers, "good")
}

func TestLoadManifestMissingFileIsFatal(t *testing.T) {
	_, _, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestLoadManifestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleManifest), 0o600))

	manifest, _, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Len(t, manifest.Servers, 3)
}
