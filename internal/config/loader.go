package config

import (
	"fmt"
	"os"

	"campaignd/pkg/logging"

	"sigs.k8s.io/yaml"
)

// LoadManifest reads and parses the tool-server manifest from path and
// validates it. The manifest is JSON-shaped; YAML is accepted as well
// since the parser treats JSON as a subset.
//
// An unreadable or unparseable manifest is a total load failure. Invalid
// individual server entries are pruned and reported as diagnostics, never
// failing the load as a whole.
func LoadManifest(path string) (Manifest, []ServerDiagnostic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data)
}

// ParseManifest parses and validates manifest bytes. See LoadManifest.
func ParseManifest(data []byte) (Manifest, []ServerDiagnostic, error) {
	var manifest Manifest
	if err := yaml.UnmarshalStrict(data, &manifest); err != nil {
		return Manifest{}, nil, fmt.Errorf("parsing manifest: %w", err)
	}

	valid, diagnostics, err := ValidateManifest(manifest)
	if err != nil {
		return Manifest{}, nil, err
	}

	logging.Info("ConfigLoader", "Loaded manifest: %d servers (%d skipped), %d inputs",
		len(valid.Servers), len(diagnostics), len(valid.Inputs))
	return valid, diagnostics, nil
}
