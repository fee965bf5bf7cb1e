package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Example is a commented config file holding the default values.
//
//go:embed example.yaml
var Example []byte

// Marshal renders c as YAML in the same layout as the config files.
func (c *Config) Marshal() ([]byte, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return out, nil
}
