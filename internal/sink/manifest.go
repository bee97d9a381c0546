// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sink

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"
)

// Manifest records what one harvest run produced, written alongside the
// output files.
type Manifest struct {
	Source    string    `yaml:"source"`
	Query     string    `yaml:"query"`
	StartedAt time.Time `yaml:"started_at"`
	Records   int       `yaml:"records"`
	Skipped   int       `yaml:"skipped"`
	Requests  int       `yaml:"requests"`
	Outputs   []string  `yaml:"outputs"`
}

// WriteManifest writes the manifest as YAML to path.
func WriteManifest(m Manifest, path string) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshaling manifest: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
