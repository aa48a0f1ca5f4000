// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LoadEnvOverrides reads a flat TOML file of environment variable overrides:
//
//	APACHE_PORT = "8080"
//	TZ = "Europe/Berlin"
//
// An empty path returns nil without error. Values must be strings; numeric or
// table values are rejected so a typo'd file fails loudly.
func LoadEnvOverrides(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read env overrides at %s: %w", path, err)
	}

	var overrides map[string]string
	if err := toml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse env overrides at %s: %w", path, err)
	}
	return overrides, nil
}
