package syncfeed

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotEndpointReturnsLatestState(t *testing.T) {
	b := NewBroadcaster()
	state := snapshotWith("C1", 42)
	state.CompletedTasks = 1
	state.TotalTasks = 3
	b.PublishState(state, nil)

	server := NewServer(b, "127.0.0.1:0")
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/campaigns/C1/state/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var update Update
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&update))
	assert.Equal(t, "C1", update.Campaign.CampaignID)
	assert.Equal(t, 42, update.Campaign.LeadsDiscovered)
	assert.Equal(t, 1, update.Campaign.CompletedTasks)
}

func TestSnapshotEndpointUnknownCampaign(t *testing.T) {
	server := NewServer(NewBroadcaster(), "127.0.0.1:0")
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/campaigns/nope/state/snapshot")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStateStreamDeliversSnapshotsAsSSE(t *testing.T) {
	b := NewBroadcaster()
	b.PublishState(snapshotWith("C1", 10), nil)

	server := NewServer(b, "127.0.0.1:0")
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/campaigns/C1/state", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	readEvent := func() Update {
		t.Helper()
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var update Update
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &update))
			return update
		}
		t.Fatalf("stream ended without an event: %v", scanner.Err())
		return Update{}
	}

	// The retained snapshot arrives first, then live publishes.
	first := readEvent()
	assert.Equal(t, 10, first.Campaign.LeadsDiscovered)

	b.PublishState(snapshotWith("C1", 20), []string{"projection inconsistency in campaign C1"})
	second := readEvent()
	assert.Equal(t, 20, second.Campaign.LeadsDiscovered)
	require.Len(t, second.Diagnostics, 1)

	// The wire format uses the documented field names.
	payload, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"campaignId":"C1"`)
	assert.Contains(t, string(payload), `"leadsDiscovered":20`)
}

func TestStateStreamEndsWhenClientDisconnects(t *testing.T) {
	b := NewBroadcaster()
	server := NewServer(b, "127.0.0.1:0")
	ts := httptest.NewServer(server.Handler())
	defer ts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+"/campaigns/C1/state", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	cancel()

	// The server side notices the disconnect and detaches its observer.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		b.mu.Lock()
		remaining := len(b.observers)
		b.mu.Unlock()
		if remaining == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("observer was not cleaned up after client disconnect")
}
