package commons

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"foodfacts/internal/config"
)

// LoadConfig starts from the environment defaults and overlays the YAML file
// at path. Keys missing from the file keep their default.
func LoadConfig(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return cfg, nil
}

// Load reads the YAML file named by CONFIG_FILE when set and falls back to
// the environment otherwise. Every binary loads its config through here.
func Load() (*config.Config, error) {
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		return LoadConfig(path)
	}
	return config.Load()
}
