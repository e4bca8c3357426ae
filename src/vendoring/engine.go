// Package vendoring fetches configured modules into the project tree and
// removes them again.
//
// A module is cloned as a transient checkout under the private area
// (.quack/modules/<name>), moved to its tag or commit, and its selected
// sub-path is copied to the destination. The checkout and every trace of its
// registration in the host repository are removed afterwards, so the host
// only ever sees plain files.
package vendoring

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/sofmeright/quack/src/config"
	"github.com/sofmeright/quack/src/module"
	"github.com/sofmeright/quack/src/output"
	"github.com/sofmeright/quack/src/vcs"
)

// PrivateDir is the project-relative directory holding transient checkouts.
const PrivateDir = ".quack/modules"

// VCS is the subset of version-control operations the engine drives.
type VCS interface {
	ClearStaleModules(root string) error
	AddSubmodule(ctx context.Context, name, dest, url, branch string) (vcs.Checkout, error)
	RemoveSubmodule(root string, co vcs.Checkout) error
	Untrack(root, path string) error
}

// Engine vendors modules into Root.
type Engine struct {
	Root    string
	VCS     VCS
	Printer *output.Printer
	Logger  *log.Logger
}

// New creates an engine rooted at root.
func New(root string, v VCS, p *output.Printer, logger *log.Logger) *Engine {
	return &Engine{Root: root, VCS: v, Printer: p, Logger: logger}
}

// Fetch vendors every configured module, or only the one named by only.
// A module pinning both a tag and a commit is reported and skipped; a module
// without a repository aborts the whole fetch.
func (e *Engine) Fetch(ctx context.Context, cfg *config.Config, only string) error {
	if len(cfg.Modules) == 0 {
		e.Printer.Line("No modules found.")
		return nil
	}

	if err := e.VCS.ClearStaleModules(e.Root); err != nil {
		return err
	}
	private := filepath.Join(e.Root, PrivateDir)
	if err := os.MkdirAll(private, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", PrivateDir, err)
	}

	var ignore *ignoreFile
	if cfg.Gitignore {
		var err error
		if ignore, err = loadIgnoreFile(filepath.Join(e.Root, ".gitignore")); err != nil {
			return err
		}
	}

	matched := false
	for _, nm := range cfg.Modules {
		if only != "" && nm.Name != only {
			continue
		}
		matched = true

		m, err := module.FromConfig(nm.Name, nm.Config)
		if err != nil {
			return err
		}
		vendored, err := e.fetchOne(ctx, m)
		if err != nil {
			return err
		}
		if vendored && ignore != nil {
			if err := ignore.Add(m.Destination()); err != nil {
				return err
			}
		}
	}

	if only != "" && !matched {
		e.Logger.Warn("module not found in configuration", "module", only)
	}
	return nil
}

// fetchOne vendors a single module. It reports whether the module went
// through the full fetch; skipped modules return false and no error.
func (e *Engine) fetchOne(ctx context.Context, m *module.Module) (bool, error) {
	if err := m.Validate(); err != nil {
		e.Printer.Skipped("%s: Cannot be both tag & hexsha.", m.Name)
		return false, nil
	}

	e.Printer.Cloning(m.Repository)
	e.Logger.Debug("cloning module", "module", m.Name, "branch", m.Branch, "tag", m.Tag, "hexsha", m.Hexsha)

	checkoutDir := filepath.Join(e.Root, PrivateDir, m.Name)
	co, err := e.VCS.AddSubmodule(ctx, m.Name, checkoutDir, m.Repository, m.Branch)
	if err != nil {
		return false, fmt.Errorf("%s: %w", m.Name, err)
	}

	target, err := e.pin(co, m)
	if err == nil {
		err = e.materialize(m, filepath.Join(co.Dir(), m.Path))
	}
	if detachErr := e.detach(co); err == nil {
		err = detachErr
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", m.Name, err)
	}

	e.Printer.Cloned(m.Name, target)
	return true, nil
}

// pin moves the checkout to the module's tag or commit and returns what it
// landed on.
func (e *Engine) pin(co vcs.Checkout, m *module.Module) (string, error) {
	switch m.Pin() {
	case module.PinTag:
		if err := co.CheckoutTag(m.Tag); err != nil {
			return "", err
		}
		return m.Tag, nil
	case module.PinCommit:
		if err := co.CheckoutCommit(m.Hexsha); err != nil {
			return "", err
		}
		return m.Hexsha, nil
	default:
		rev, err := co.Revision()
		if err != nil {
			return "", err
		}
		return rev, nil
	}
}

// materialize copies from to the module destination, replacing whatever was
// there. A missing sub-path is reported and skipped.
func (e *Engine) materialize(m *module.Module, from string) error {
	info, err := os.Stat(from)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.Printer.Skipped("%s folder does not exist. Skipped.", m.Path)
			return nil
		}
		return err
	}

	dest := filepath.Join(e.Root, m.Destination())
	if m.IsFile && info.IsDir() {
		return fmt.Errorf("isfile is set but %s is a directory", m.Path)
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("clearing %s: %w", m.Destination(), err)
	}

	if !info.IsDir() {
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}
		return copyFile(from, dest, info.Mode().Perm())
	}
	return copyTree(from, dest)
}

// detach removes the checkout and any submodule registration left in the
// host repository.
func (e *Engine) detach(co vcs.Checkout) error {
	if err := e.VCS.RemoveSubmodule(e.Root, co); err != nil {
		return err
	}

	path := filepath.Join(e.Root, vcs.ModulesFile)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("removing %s: %w", vcs.ModulesFile, err)
	}
	return e.VCS.Untrack(e.Root, vcs.ModulesFile)
}

// Clean removes the destination of every configured module, or only the one
// named by only. Missing destinations are ignored.
func (e *Engine) Clean(cfg *config.Config, only string) error {
	if len(cfg.Modules) == 0 {
		e.Printer.Line("No modules found.")
		return nil
	}

	for _, name := range cfg.Modules.Names() {
		if only != "" && name != only {
			continue
		}
		if err := module.CheckName(name); err != nil {
			return err
		}

		dest := filepath.Join(e.Root, name)
		if _, err := os.Lstat(dest); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		if err := os.RemoveAll(dest); err != nil {
			return fmt.Errorf("removing %s: %w", name, err)
		}
		e.Printer.Cleaned(name)
	}
	return nil
}
