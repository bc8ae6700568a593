package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseParametersYAML parses SimulationParameters from YAML bytes and
// validates them. This is used for APIs where parameters are provided as
// payload (not via filesystem).
func ParseParametersYAML(data []byte) (*SimulationParameters, error) {
	var params SimulationParameters
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to parse parameters yaml: %w", err)
	}

	if err := ValidateParameters(&params); err != nil {
		return nil, fmt.Errorf("invalid parameters: %w", err)
	}

	return &params, nil
}

// ParseParametersYAMLString parses SimulationParameters from a YAML string.
func ParseParametersYAMLString(yamlText string) (*SimulationParameters, error) {
	return ParseParametersYAML([]byte(yamlText))
}

// ValidateParameters performs validation on simulation parameters.
func ValidateParameters(params *SimulationParameters) error {
	if params == nil {
		return fmt.Errorf("parameters are required")
	}
	if params.Years < 1 {
		return fmt.Errorf("years must be at least 1, got %d", params.Years)
	}
	if params.Iterations < 1 {
		return fmt.Errorf("iterations must be at least 1, got %d", params.Iterations)
	}
	if len(params.Variables) == 0 {
		return fmt.Errorf("at least one variable must be defined")
	}

	varNames := make(map[string]bool)
	for _, name := range params.Variables {
		if name == "" {
			return fmt.Errorf("variable name cannot be empty")
		}
		if varNames[name] {
			return fmt.Errorf("duplicate variable name: %s", name)
		}
		varNames[name] = true
	}

	for _, bound := range params.UncertaintyBounds {
		if !varNames[bound.Variable] {
			return fmt.Errorf("uncertainty bound references unknown variable: %s", bound.Variable)
		}
		if bound.Lower > bound.Upper {
			return fmt.Errorf("variable %s: lower bound %f exceeds upper bound %f", bound.Variable, bound.Lower, bound.Upper)
		}
	}

	if params.Engine != nil && params.Engine.WorkgroupSize < 0 {
		return fmt.Errorf("workgroup_size cannot be negative, got %d", params.Engine.WorkgroupSize)
	}

	return nil
}

// ValidateSelectionCriteria performs validation on selection criteria.
func ValidateSelectionCriteria(criteria *SelectionCriteria) error {
	if criteria == nil {
		return fmt.Errorf("selection criteria are required")
	}
	if criteria.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be at least 1, got %d", criteria.MaxIterations)
	}
	if criteria.SuccessProbability < 0 || criteria.SuccessProbability > 1 {
		return fmt.Errorf("success_probability must be between 0 and 1, got %f", criteria.SuccessProbability)
	}

	switch criteria.Criteria {
	case "", CriterionDefault, CriterionExtremeWeather, CriterionTemperatureVariance, CriterionPrecipitationExtremes:
		return nil
	default:
		return fmt.Errorf("unknown selection criterion: %s", criteria.Criteria)
	}
}
