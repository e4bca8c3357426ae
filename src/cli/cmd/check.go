package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sofmeright/quack/src/config"
	"github.com/sofmeright/quack/src/module"
	"github.com/sofmeright/quack/src/output"
	"github.com/sofmeright/quack/src/task"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	Long: `Load and validate the configuration, then show its modules and profiles.

Exits non-zero when the configuration has errors. Warnings are shown but do
not fail the check.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return &ExitError{Code: exitConfigFail, Err: fmt.Errorf("loading config: %w", err)}
	}
	if cfg == nil {
		return &ExitError{Code: exitConfigFail, Err: fmt.Errorf("%s not found", cfgFile)}
	}

	warnings, verr := config.Validate(cfg)
	w := cmd.OutOrStdout()
	color := output.UseColor()

	// ── Modules ───────────────────────────────────────────────────────────

	sec := output.NewSection(w, "Modules", color)
	if len(cfg.Modules) == 0 {
		sec.Row("%s", output.Dimmed("none", color))
	}
	for _, nm := range cfg.Modules {
		m, err := module.FromConfig(nm.Name, nm.Config)
		if err != nil {
			output.RowStatus(sec, nm.Name, err.Error(), "failed", color)
			continue
		}
		status := "success"
		if m.Validate() != nil {
			status = "skipped"
		}
		output.RowStatus(sec, m.Name, describeModule(m), status, color)
	}
	sec.Close()

	// ── Profiles ──────────────────────────────────────────────────────────

	sec = output.NewSection(w, "Profiles", color)
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if i > 0 {
			sec.Separator()
		}
		p := cfg.Profiles[name]
		sec.Row("%-16s%d dependencies, %d task(s)", name, len(p.Dependencies), len(p.Tasks))
		for _, dep := range p.Dependencies {
			sec.Row("  %s", output.Dimmed(dep.Kind+": "+dep.Reference, color))
		}
		for _, line := range p.Tasks {
			t := task.Parse(line)
			sec.Row("  %-8s%s", t.Kind, t.String())
		}
	}
	if len(names) == 0 {
		sec.Row("%s", output.Dimmed("none", color))
	}
	sec.Close()

	if len(warnings) > 0 {
		sec = output.NewSection(w, "Warnings", color)
		for _, warning := range warnings {
			sec.Row("%s %s", output.StatusIcon("warning", color), warning)
		}
		sec.Close()
	}

	if verr != nil {
		return &ExitError{Code: exitConfigFail, Err: fmt.Errorf("invalid config %s: %w", cfgFile, verr)}
	}
	fmt.Fprintf(w, "\n    %s %s is valid\n", output.StatusIcon("success", color), cfgFile)
	return nil
}

func describeModule(m *module.Module) string {
	var pin string
	switch m.Pin() {
	case module.PinTag:
		pin = "tag " + m.Tag
	case module.PinCommit:
		pin = "commit " + m.Hexsha
	default:
		pin = "branch " + m.Branch
	}
	if m.Validate() != nil {
		pin = "tag " + m.Tag + " + commit " + m.Hexsha
	}

	src := m.Repository
	if m.Path != "" {
		src += "//" + m.Path
	}
	return fmt.Sprintf("%s @ %s", src, pin)
}
