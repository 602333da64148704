package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type sourcesFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

// LoadSources загружает список источников из отдельного YAML файла
func LoadSources(filePath string) ([]SourceConfig, error) {
	if filePath == "" {
		return nil, fmt.Errorf("sources file path is empty")
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", filePath, err)
	}

	var parsed sourcesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse sources YAML: %w", err)
	}

	if len(parsed.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s has no sources", filePath)
	}

	for i := range parsed.Sources {
		if err := validateSource(&parsed.Sources[i]); err != nil {
			return nil, fmt.Errorf("%s: sources[%d]: %w", filePath, i, err)
		}
	}

	return parsed.Sources, nil
}
