package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the optional YAML engine configuration. Flags override
// whatever the file provides.
type fileConfig struct {
	DB             string        `yaml:"db"`
	EmbeddingHost  string        `yaml:"embeddingHost"`
	EmbeddingModel string        `yaml:"embeddingModel"`
	PageSize       int           `yaml:"pageSize"`
	PersistDelay   time.Duration `yaml:"persistDelay"`
	MinCosine      float64       `yaml:"minCosine"`
	Semantic       bool          `yaml:"semantic"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}
