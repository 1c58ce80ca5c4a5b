package config

import (
	"fmt"
	"os"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename  string
	overrides []Override
}

// Override adjusts a configuration after defaults and before validation.
type Override func(*RunConfig)

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string, overrides ...Override) *YAMLProvider {
	return &YAMLProvider{
		filename:  filename,
		overrides: overrides,
	}
}

// LoadConfig reads the file, fills defaults and validates the result
func (y *YAMLProvider) LoadConfig() (*RunConfig, error) {
	b, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b, y.overrides...)
}

// IsReadOnly returns true since YAML files are treated as read-only
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// Parse decodes a YAML document into a defaulted, validated RunConfig.
// Overrides run in order between defaulting and validation.
func Parse(b []byte, overrides ...Override) (*RunConfig, error) {
	var c RunConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	for _, o := range overrides {
		o(&c)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
