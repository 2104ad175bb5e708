package inputs

import (
	"os"
	"strings"

	"campaignd/internal/config"
)

// ValueStore supplies values for declared inputs. Lookup returns the value
// for an input id, already tagged with the declaration's secrecy.
type ValueStore interface {
	Lookup(decl config.InputDeclaration) (Secret, bool)
}

// StaticStore serves values from a fixed map, e.g. prompts cached earlier
// in the session.
type StaticStore struct {
	values map[string]string
}

// NewStaticStore creates a store over the given id -> value map.
func NewStaticStore(values map[string]string) *StaticStore {
	return &StaticStore{values: values}
}

func (s *StaticStore) Lookup(decl config.InputDeclaration) (Secret, bool) {
	value, ok := s.values[decl.ID]
	if !ok {
		return Secret{}, false
	}
	return wrap(decl, value), true
}

// envPrefix namespaces input ids in the process environment, so an input
// "api_key" resolves from CAMPAIGND_INPUT_API_KEY in non-interactive runs.
const envPrefix = "CAMPAIGND_INPUT_"

// EnvStore resolves inputs from process environment variables.
type EnvStore struct{}

func (EnvStore) Lookup(decl config.InputDeclaration) (Secret, bool) {
	key := envPrefix + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(decl.ID))
	value, ok := os.LookupEnv(key)
	if !ok {
		return Secret{}, false
	}
	return wrap(decl, value), true
}

// ChainStore consults stores in order and returns the first hit.
type ChainStore []ValueStore

func (c ChainStore) Lookup(decl config.InputDeclaration) (Secret, bool) {
	for _, store := range c {
		if value, ok := store.Lookup(decl); ok {
			return value, ok
		}
	}
	return Secret{}, false
}

func wrap(decl config.InputDeclaration, value string) Secret {
	if decl.Password {
		return NewSecret(value)
	}
	return NewPlainValue(value)
}
