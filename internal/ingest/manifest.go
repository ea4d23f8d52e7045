package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes the repositories to ingest in one batch.
type Manifest struct {
	Repositories []ManifestRepo `yaml:"repositories"`
}

// ManifestRepo is one repository entry in a manifest.
type ManifestRepo struct {
	ID   string `yaml:"id"`
	Root string `yaml:"root"`
}

// LoadManifest reads and validates a YAML repository manifest.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}

	if len(m.Repositories) == 0 {
		return nil, fmt.Errorf("manifest %s lists no repositories", path)
	}
	seen := make(map[string]bool)
	for i, r := range m.Repositories {
		if r.ID == "" || r.Root == "" {
			return nil, fmt.Errorf("manifest entry %d: id and root are required", i)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("manifest repeats repository id %q", r.ID)
		}
		seen[r.ID] = true
	}

	return &m, nil
}
