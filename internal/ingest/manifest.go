package ingest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"spendboard/internal/core"
)

// Manifest describes an ingestion run: which vendor exports to read, where
// the snapshot artifact goes, and any alias-table overrides. Everything is
// optional; omitted fields fall back to the defaults below.
type Manifest struct {
	Sources []Source            `yaml:"sources"`
	Aliases map[string][]string `yaml:"aliases"`
	Output  string              `yaml:"output"`
}

// DefaultManifest matches the two known vendor exports.
func DefaultManifest() Manifest {
	return Manifest{
		Sources: []Source{
			{Provider: core.ProviderAWS, Path: "data/aws_line_items_12mo.csv"},
			{Provider: core.ProviderGCP, Path: "data/gcp_billing_12mo.csv"},
		},
		Output: "data/combined.json",
	}
}

// LoadManifest reads a YAML manifest from path, filling defaults for any
// omitted fields. An empty path returns the defaults outright.
func LoadManifest(path string) (Manifest, error) {
	if path == "" {
		return DefaultManifest(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse manifest: %w", err)
	}
	def := DefaultManifest()
	if len(m.Sources) == 0 {
		m.Sources = def.Sources
	}
	if m.Output == "" {
		m.Output = def.Output
	}
	for i, src := range m.Sources {
		if src.Provider == "" || src.Path == "" {
			return Manifest{}, fmt.Errorf("manifest source %d: provider and path are required", i)
		}
	}
	return m, nil
}

// AliasTable returns the default alias table with the manifest's overrides
// applied.
func (m Manifest) AliasTable() AliasTable {
	return DefaultAliases().Merge(m.Aliases)
}
