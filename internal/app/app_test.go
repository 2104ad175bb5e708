package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"campaignd/internal/approval"
	"campaignd/internal/events"
	"campaignd/internal/inputs"
	"campaignd/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
servers:
  crm:
    type: stdio
    command: crm-tools
    autoApprove:
      - search_contacts
  enrichment:
    type: http
    url: http://localhost:9100/mcp
    disabled: true
inputs:
  - id: crm-api-key
    type: promptString
    description: CRM API key
    password: true
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestApplication(t *testing.T) *Application {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ManifestPath = writeManifest(t, testManifest)
	cfg.WatchManifest = false
	cfg.ListenAddr = "127.0.0.1:0"

	a, err := NewApplication(cfg, inputs.NewStaticStore(map[string]string{
		"crm-api-key": "sk-test",
	}))
	require.NoError(t, err)
	return a
}

func TestNewApplicationBuildsPipeline(t *testing.T) {
	a := newTestApplication(t)

	require.NotNil(t, a.Bus())
	require.NotNil(t, a.Broadcaster())
	require.NotNil(t, a.Registry())

	statuses := a.Registry().Statuses()
	require.Len(t, statuses, 2)
	byName := map[string]registry.Status{}
	for _, s := range statuses {
		byName[s.Name] = s
	}
	assert.Equal(t, registry.StateStopped, byName["crm"].State)
	assert.True(t, byName["enrichment"].Disabled)
}

func TestNewApplicationRejectsBrokenManifest(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ManifestPath = writeManifest(t, "servers: [not, a, map]")

	_, err := NewApplication(cfg, inputs.EnvStore{})
	require.Error(t, err)
}

func TestInvokeToolRequiresApprovalOffAllowList(t *testing.T) {
	a := newTestApplication(t)

	_, err := a.InvokeTool(context.Background(), "crm", "delete_contact", nil, false)
	require.Error(t, err)
	assert.True(t, approval.IsNotApproved(err))
}

func TestInvokeToolAllowListedSkipsApproval(t *testing.T) {
	a := newTestApplication(t)

	// The allow-listed tool passes the approval gate; the server is not
	// running, so the registry rejects it further down.
	_, err := a.InvokeTool(context.Background(), "crm", "search_contacts", nil, false)
	require.Error(t, err)
	assert.False(t, approval.IsNotApproved(err))
	assert.True(t, registry.IsServerUnavailable(err))
}

func TestInvokeToolExplicitApprovalOverrides(t *testing.T) {
	a := newTestApplication(t)

	_, err := a.InvokeTool(context.Background(), "crm", "delete_contact", nil, true)
	require.Error(t, err)
	assert.False(t, approval.IsNotApproved(err))
}

func TestSnapshotReflectsPublishedEvents(t *testing.T) {
	a := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.folds.Run(ctx)

	a.Bus().Publish(events.CampaignCreated{Meta: events.NewMeta("C1"), Name: "Q1 outreach"})
	a.Bus().Publish(events.LeadsDiscovered{Meta: events.NewMeta("C1"), Count: 12})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if state, ok := a.Snapshot("C1"); ok && state.LeadsDiscovered == 12 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("snapshot never reflected the published events")
}

func TestRemoveCampaignForgetsProjectionAndFeed(t *testing.T) {
	a := newTestApplication(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go a.folds.Run(ctx)

	a.Bus().Publish(events.CampaignCreated{Meta: events.NewMeta("C1"), Name: "doomed"})
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := a.Snapshot("C1"); ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	a.RemoveCampaign("C1")
	_, ok := a.Snapshot("C1")
	assert.False(t, ok)
	_, ok = a.Broadcaster().Latest("C1")
	assert.False(t, ok)
}

func TestManifestWatcherFiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("servers: {}\n"), 0o644))

	fired := make(chan struct{}, 1)
	watcher, err := newManifestWatcher(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(path, []byte("servers: {}\n# edited\n"), 0o644))

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not fire on manifest write")
	}
}

func TestManifestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "manifest.yaml")
	require.NoError(t, os.WriteFile(path, []byte("servers: {}\n"), 0o644))

	fired := make(chan struct{}, 1)
	watcher, err := newManifestWatcher(path, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1\n"), 0o644))

	select {
	case <-fired:
		t.Fatal("watcher fired for an unrelated file")
	case <-time.After(time.Second):
	}
}
