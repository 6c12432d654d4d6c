package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadJSON reads a JSON file into target.
func LoadJSON(path string, target any) error {
	// #nosec G304 -- path comes from the caller's flags or config.
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// SaveJSON writes cfg to a JSON file with restrictive permissions.
func SaveJSON(path string, cfg any) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
