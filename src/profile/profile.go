// Package profile executes a named profile: its dependencies first, then its
// tasks, strictly in order.
package profile

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/sofmeright/quack/src/config"
	"github.com/sofmeright/quack/src/output"
	"github.com/sofmeright/quack/src/runner"
	"github.com/sofmeright/quack/src/task"
)

// Stats counts what a run went through.
type Stats struct {
	Tasks        int
	Dependencies int
}

// Vendoring fetches and cleans modules.
type Vendoring interface {
	Fetch(ctx context.Context, cfg *config.Config, only string) error
	Clean(cfg *config.Config, only string) error
}

// Nested launches nested invocations.
type Nested interface {
	Dispatch(ctx context.Context, kind, ref string) (bool, error)
}

// Executor runs profiles against one project root.
type Executor struct {
	Root      string
	Vendoring Vendoring
	Nested    Nested
	Runner    runner.Runner
	Printer   *output.Printer
	Logger    *log.Logger
}

// Run executes the named profile. Every dependency entry and every task is
// counted whether or not it did anything. The first failure stops the run
// and is returned with the stats gathered so far.
func (e *Executor) Run(ctx context.Context, cfg *config.Config, name string) (Stats, error) {
	var stats Stats

	p, ok := cfg.Profile(name)
	if !ok {
		e.Logger.Warn("profile not defined, nothing to run", "profile", name)
	}
	if p.DependenciesIgnored() {
		e.Logger.Warn("dependencies is not a mapping, ignored", "profile", name)
	}

	for _, dep := range p.Dependencies {
		stats.Dependencies++
		if _, err := e.Nested.Dispatch(ctx, dep.Kind, dep.Reference); err != nil {
			return stats, err
		}
	}

	if len(p.Tasks) == 0 {
		e.Printer.Line("No tasks found.")
		return stats, nil
	}

	for _, line := range p.Tasks {
		stats.Tasks++
		if err := e.runTask(ctx, cfg, task.Parse(line)); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func (e *Executor) runTask(ctx context.Context, cfg *config.Config, t task.Task) error {
	e.Logger.Debug("task", "kind", t.Kind, "arg", t.Arg, "negated", t.Negated)

	switch t.Kind {
	case task.KindModules:
		if t.Clean() {
			return e.Vendoring.Clean(cfg, t.Arg)
		}
		return e.Vendoring.Fetch(ctx, cfg, t.Arg)
	case task.KindQuack:
		_, err := e.Nested.Dispatch(ctx, config.DependencyKindQuack, t.Arg)
		return err
	case task.KindCmd:
		_, err := e.Runner.Shell(ctx, e.Root, t.Arg)
		return err
	default:
		e.Logger.Debug("unrecognized task, skipped", "task", t.Arg)
		return nil
	}
}
