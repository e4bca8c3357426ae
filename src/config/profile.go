package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Dependency is one `kind: reference` entry of a profile's dependencies.
type Dependency struct {
	Kind      string
	Reference string
}

// Profile is a named execution unit: dependencies first, then tasks in order.
type Profile struct {
	Dependencies []Dependency
	Tasks        []string

	// dependenciesIgnored is set when `dependencies` was present but not a
	// mapping. Such a value is skipped at run time and reported by Validate.
	dependenciesIgnored bool
}

type rawProfile struct {
	Dependencies yaml.Node `yaml:"dependencies"`
	Tasks        []string  `yaml:"tasks"`
}

// UnmarshalYAML decodes a profile, keeping dependency order.
func (p *Profile) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*p = Profile{}
		return nil
	}

	var raw rawProfile
	if err := node.Decode(&raw); err != nil {
		return err
	}

	out := Profile{Tasks: raw.Tasks}
	deps := raw.Dependencies
	switch {
	case deps.Kind == 0:
		// absent
	case deps.Kind == yaml.ScalarNode && deps.Tag == "!!null":
		// `dependencies:` with no value
	case deps.Kind == yaml.MappingNode:
		for i := 0; i+1 < len(deps.Content); i += 2 {
			key, value := deps.Content[i], deps.Content[i+1]
			var ref string
			if err := value.Decode(&ref); err != nil {
				return fmt.Errorf("dependencies.%s: %w", key.Value, err)
			}
			out.Dependencies = append(out.Dependencies, Dependency{Kind: key.Value, Reference: ref})
		}
	default:
		out.dependenciesIgnored = true
	}

	*p = out
	return nil
}

// DependenciesIgnored reports whether the profile declared dependencies in a
// shape other than a mapping.
func (p Profile) DependenciesIgnored() bool {
	return p.dependenciesIgnored
}
