package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCheckManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runCheckCommand(t *testing.T, manifestPath string) (string, error) {
	t.Helper()
	previous := checkManifestPath
	checkManifestPath = manifestPath
	defer func() { checkManifestPath = previous }()

	var out bytes.Buffer
	cmd := checkCmd
	cmd.SetOut(&out)
	err := runCheck(cmd, nil)
	return out.String(), err
}

func TestCheckValidManifest(t *testing.T) {
	path := writeCheckManifest(t, `
servers:
  crm:
    type: stdio
    command: crm-tools
  enrichment:
    type: http
    url: http://localhost:9100/mcp
inputs:
  - id: crm-api-key
    type: promptString
    description: CRM API key
    password: true
`)
	out, err := runCheckCommand(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "crm")
	assert.Contains(t, out, "enrichment")
	assert.Contains(t, out, "crm-api-key")
}

func TestCheckReportsRejectedServers(t *testing.T) {
	path := writeCheckManifest(t, `
servers:
  good:
    type: stdio
    command: good-tools
  bad:
    type: http
    command: should-not-have-a-command
`)
	out, err := runCheckCommand(t, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 servers rejected")
	assert.Contains(t, out, "rejected")
}

func TestCheckInputResolvedFromEnvironment(t *testing.T) {
	t.Setenv("CAMPAIGND_INPUT_CRM_API_KEY", "sk-test")
	path := writeCheckManifest(t, `
servers:
  crm:
    type: stdio
    command: crm-tools
inputs:
  - id: crm-api-key
    type: promptString
`)
	out, err := runCheckCommand(t, path)
	require.NoError(t, err)
	assert.Contains(t, out, "env")
}

func TestCheckMissingManifest(t *testing.T) {
	_, err := runCheckCommand(t, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
