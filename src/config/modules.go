package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ModuleConfig holds the fetch parameters of one module as written in the
// configuration file. Defaults are applied by the module package.
type ModuleConfig struct {
	Repository string `yaml:"repository" toml:"repository"`
	Path       string `yaml:"path" toml:"path"`
	Branch     string `yaml:"branch" toml:"branch"`
	Hexsha     string `yaml:"hexsha" toml:"hexsha"`
	Tag        string `yaml:"tag" toml:"tag"`
	IsFile     bool   `yaml:"isfile" toml:"isfile"`
}

// NamedModule pairs a module name with its configuration.
type NamedModule struct {
	Name   string
	Config ModuleConfig
}

// Modules is the `modules` mapping in declaration order.
type Modules []NamedModule

// UnmarshalYAML keeps mapping order; a null value decodes to no modules.
func (m *Modules) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*m = nil
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: modules must be a mapping", node.Line)
	}

	out := make(Modules, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]

		var mc ModuleConfig
		if !(value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
			if err := value.Decode(&mc); err != nil {
				return fmt.Errorf("modules.%s: %w", key.Value, err)
			}
		}
		out = append(out, NamedModule{Name: key.Value, Config: mc})
	}
	*m = out
	return nil
}

// Names returns module names in declaration order.
func (m Modules) Names() []string {
	names := make([]string, len(m))
	for i, nm := range m {
		names[i] = nm.Name
	}
	return names
}

// Lookup returns the configuration of the named module.
func (m Modules) Lookup(name string) (ModuleConfig, bool) {
	for _, nm := range m {
		if nm.Name == name {
			return nm.Config, true
		}
	}
	return ModuleConfig{}, false
}
