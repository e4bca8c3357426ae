package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sofmeright/quack/src/task"
)

// DependencyKindQuack is the only dependency kind that triggers work.
const DependencyKindQuack = "quack"

// Validate checks structural invariants of a loaded Config.
// Returns warnings (soft issues) and a hard error if the config is invalid.
func Validate(cfg *Config) (warnings []string, err error) {
	var errs []string

	// ── Modules ───────────────────────────────────────────────────────────

	for _, m := range cfg.Modules {
		mpath := "modules." + m.Name

		if m.Config.Repository == "" {
			errs = append(errs, fmt.Sprintf("%s: repository is required", mpath))
		}
		if m.Config.Tag != "" && m.Config.Hexsha != "" {
			warnings = append(warnings, fmt.Sprintf("%s: tag and hexsha are mutually exclusive, module will be skipped", mpath))
		}
	}

	// ── Profiles ──────────────────────────────────────────────────────────

	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		p := cfg.Profiles[name]
		ppath := "profiles." + name

		if p.DependenciesIgnored() {
			warnings = append(warnings, fmt.Sprintf("%s.dependencies: not a mapping, ignored", ppath))
		}
		for _, dep := range p.Dependencies {
			if dep.Kind != DependencyKindQuack {
				warnings = append(warnings, fmt.Sprintf("%s.dependencies: kind %q has no effect (supported: %s)", ppath, dep.Kind, DependencyKindQuack))
			}
		}

		for i, line := range p.Tasks {
			t := task.Parse(line)
			tpath := fmt.Sprintf("%s.tasks[%d]", ppath, i)
			switch t.Kind {
			case task.KindUnknown:
				warnings = append(warnings, fmt.Sprintf("%s: %q does not match modules, quack: or cmd:, it will do nothing", tpath, line))
			case task.KindModules:
				if t.Arg != "" {
					if _, ok := cfg.Modules.Lookup(t.Arg); !ok {
						warnings = append(warnings, fmt.Sprintf("%s: references unknown module %q", tpath, t.Arg))
					}
				}
			}
		}
	}

	if len(errs) > 0 {
		return warnings, fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return warnings, nil
}
