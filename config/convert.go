package config

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConvertTOML reads a .treefill.toml file and returns the equivalent YAML.
// Paths are kept exactly as written so the result can sit next to the input.
func ConvertTOML(inputPath string) ([]byte, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var config Config
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", inputPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config in %s: %w", inputPath, err)
	}

	yamlData, err := yaml.Marshal(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	return yamlData, nil
}

// Sample returns a starter YAML config for the given input and output.
func Sample(input, output string) ([]byte, error) {
	config := Config{
		Settings: Settings{
			PrefixLogs:      true,
			PrefixMaxLength: 10,
			ColorLogs:       true,
			ColorScheme:     "auto",
			DebounceMs:      200,
		},
		Jobs: []Job{
			{Name: "tree", Input: input, Output: output},
			{Name: "trees", Input: "trees/**/*.txt", OutputSuffix: DefaultOutputSuffix},
		},
	}
	return yaml.Marshal(&config)
}
