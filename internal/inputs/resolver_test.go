package inputs

import (
	"encoding/json"
	"fmt"
	"testing"

	"campaignd/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declarations(decls ...config.InputDeclaration) map[string]config.InputDeclaration {
	m := make(map[string]config.InputDeclaration, len(decls))
	for _, d := range decls {
		m[d.ID] = d
	}
	return m
}

func TestResolveSubstitutesAllFields(t *testing.T) {
	server := config.ServerConfig{
		Type:    config.TransportStdio,
		Command: "${input:bin}",
		Args:    []string{"--key", "${input:api_key}"},
		Env:     map[string]string{"API_KEY": "${input:api_key}", "MODE": "fast"},
	}
	decls := declarations(
		config.InputDeclaration{ID: "bin", Type: config.InputTypePromptString},
		config.InputDeclaration{ID: "api_key", Type: config.InputTypePromptString, Password: true},
	)
	store := NewStaticStore(map[string]string{"bin": "/usr/bin/scraper", "api_key": "abc"})

	resolved, err := Resolve("scraper", server, decls, store)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/scraper", resolved.Command)
	assert.Equal(t, []string{"--key", "abc"}, resolved.Args)
	assert.Equal(t, "abc", resolved.Env["API_KEY"])
	assert.Equal(t, "fast", resolved.Env["MODE"])
}

func TestResolveURL(t *testing.T) {
	server := config.ServerConfig{
		Type: config.TransportHTTP,
		URL:  "https://search.example.com/${input:tenant}/mcp",
	}
	decls := declarations(config.InputDeclaration{ID: "tenant", Type: config.InputTypePromptString})

	resolved, err := Resolve("search", server, decls, NewStaticStore(map[string]string{"tenant": "acme"}))
	require.NoError(t, err)
	assert.Equal(t, "https://search.example.com/acme/mcp", resolved.URL)
}

func TestResolveMissingValue(t *testing.T) {
	server := config.ServerConfig{
		Type:    config.TransportStdio,
		Command: "scraper",
		Env:     map[string]string{"KEY": "${input:api_key}"},
	}
	decls := declarations(config.InputDeclaration{ID: "api_key", Type: config.InputTypePromptString})

	_, err := Resolve("scraper", server, decls, NewStaticStore(nil))
	require.Error(t, err)
	assert.True(t, IsInputUnresolved(err))
	assert.Contains(t, err.Error(), `no value for input "api_key"`)
}

func TestEnvStore(t *testing.T) {
	t.Setenv("CAMPAIGND_INPUT_API_KEY", "from-env")

	value, ok := EnvStore{}.Lookup(config.InputDeclaration{ID: "api-key", Password: true})
	require.True(t, ok)
	assert.Equal(t, "from-env", value.Reveal())
	assert.True(t, value.IsRedacted())

	_, ok = EnvStore{}.Lookup(config.InputDeclaration{ID: "nope"})
	assert.False(t, ok)
}

func TestChainStoreFirstHitWins(t *testing.T) {
	chain := ChainStore{
		NewStaticStore(map[string]string{"a": "first"}),
		NewStaticStore(map[string]string{"a": "second", "b": "fallback"}),
	}

	a, ok := chain.Lookup(config.InputDeclaration{ID: "a"})
	require.True(t, ok)
	assert.Equal(t, "first", a.Reveal())

	b, ok := chain.Lookup(config.InputDeclaration{ID: "b"})
	require.True(t, ok)
	assert.Equal(t, "fallback", b.Reveal())

	_, ok = chain.Lookup(config.InputDeclaration{ID: "c"})
	assert.False(t, ok)
}

func TestSecretNeverLeaksThroughFormatting(t *testing.T) {
	secret := NewSecret("hunter2")

	assert.Equal(t, "***", secret.String())
	assert.Equal(t, "***", fmt.Sprintf("%v", secret))
	assert.Equal(t, "***", fmt.Sprintf("%s", secret))
	assert.Equal(t, "***", fmt.Sprintf("%#v", secret))

	data, err := json.Marshal(secret)
	require.NoError(t, err)
	assert.Equal(t, `"***"`, string(data))

	assert.Equal(t, "hunter2", secret.Reveal())
}

func TestPlainValueFormatsAsItself(t *testing.T) {
	plain := NewPlainValue("tenant-a")
	assert.Equal(t, "tenant-a", plain.String())
	assert.False(t, plain.IsRedacted())
}
