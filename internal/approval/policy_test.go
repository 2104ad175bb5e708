package approval

import (
	"testing"

	"campaignd/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestIsAutoApproved(t *testing.T) {
	policy := NewPolicy(config.Manifest{
		Servers: map[string]config.ServerConfig{
			"search": {
				Type:        config.TransportHTTP,
				URL:         "https://x",
				AutoApprove: []string{"web_search", "news_search"},
			},
			"scraper": {
				Type:    config.TransportStdio,
				Command: "scraper-server",
			},
		},
	})

	assert.True(t, policy.IsAutoApproved("search", "web_search"))
	assert.True(t, policy.IsAutoApproved("search", "news_search"))
	assert.False(t, policy.IsAutoApproved("search", "delete_index"))
	assert.False(t, policy.IsAutoApproved("scraper", "scrape_profile"))
	assert.False(t, policy.IsAutoApproved("unknown", "web_search"))
}
