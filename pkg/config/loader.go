package config

import (
	"fmt"
	"os"
)

// LoadParameters loads and parses a simulation parameters file
func LoadParameters(path string) (*SimulationParameters, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file %s: %w", path, err)
	}
	params, err := ParseParametersYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse parameters file %s: %w", path, err)
	}
	return params, nil
}
