package config

import (
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// TOML tables decode into Go maps, so declaration order is lost; modules and
// dependencies are ordered by name instead.
type tomlConfig struct {
	Name      string                  `toml:"name"`
	Modules   map[string]ModuleConfig `toml:"modules"`
	Profiles  map[string]tomlProfile  `toml:"profiles"`
	Gitignore bool                    `toml:"gitignore"`
}

type tomlProfile struct {
	Dependencies map[string]string `toml:"dependencies"`
	Tasks        []string          `toml:"tasks"`
}

func parseTOML(data []byte) (*Config, error) {
	var raw tomlConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg := &Config{
		Name:      raw.Name,
		Gitignore: raw.Gitignore,
	}

	for _, name := range sortedKeys(raw.Modules) {
		cfg.Modules = append(cfg.Modules, NamedModule{Name: name, Config: raw.Modules[name]})
	}

	if raw.Profiles != nil {
		cfg.Profiles = make(map[string]Profile, len(raw.Profiles))
	}
	for name, tp := range raw.Profiles {
		p := Profile{Tasks: tp.Tasks}
		for _, kind := range sortedKeys(tp.Dependencies) {
			p.Dependencies = append(p.Dependencies, Dependency{Kind: kind, Reference: tp.Dependencies[kind]})
		}
		cfg.Profiles[name] = p
	}

	return cfg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
