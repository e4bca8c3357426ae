package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up in the project root.
const DefaultConfigFile = "quack.yaml"

// Config is the top-level quack configuration.
type Config struct {
	Name      string             `yaml:"name"`
	Modules   Modules            `yaml:"modules"`
	Profiles  map[string]Profile `yaml:"profiles"`
	Gitignore bool               `yaml:"gitignore"`
}

// Load reads configuration from a YAML or TOML file.
// If path is empty, it tries the default file.
// Returns nil and no error when the file doesn't exist.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	return Parse(data, formatOf(path))
}

// Format identifies a configuration file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// Parse decodes a configuration document.
// An empty document yields an empty, non-nil Config.
func Parse(data []byte, format Format) (*Config, error) {
	if format == FormatTOML {
		return parseTOML(data)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Profile returns the named profile and whether it is defined.
func (c *Config) Profile(name string) (Profile, bool) {
	if c == nil || c.Profiles == nil {
		return Profile{}, false
	}
	p, ok := c.Profiles[name]
	return p, ok
}

func formatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}
