// Package nested runs quack itself in a sub-project.
//
// A reference has the form [<dir>/]<config>:<profile> or is a plain profile
// name. The keyword "quack" in the config position selects the default
// configuration file. Without a colon the whole reference is the profile;
// the directory part still selects where the child runs.
//
//	sub/quack:build     profile "build" in sub, default config
//	sub/ci.yaml:build   profile "build" in sub, config ci.yaml
//	quack:build         profile "build" in the root
//	sub/build           profile "sub/build" in sub
//	build               profile "build" in the root
package nested

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/sofmeright/quack/src/config"
	"github.com/sofmeright/quack/src/output"
	"github.com/sofmeright/quack/src/runner"
)

const keyword = "quack"

// Invocation is a parsed nested reference.
type Invocation struct {
	Dir        string // relative to the invoking project root; "" is the root
	Profile    string // "" leaves the child's default
	ConfigFile string // "" leaves the child's default
}

// ParseReference splits a nested reference into its parts.
func ParseReference(ref string) Invocation {
	var inv Invocation

	remainder := ref
	if i := strings.LastIndex(ref, "/"); i > 0 {
		inv.Dir = ref[:i]
		remainder = ref[i+1:]
	}

	cfg, profile, ok := strings.Cut(remainder, ":")
	if !ok {
		inv.Profile = ref
		return inv
	}
	inv.Profile = profile
	if cfg != keyword {
		inv.ConfigFile = cfg
	}
	return inv
}

// Args returns the command-line flags selecting the invocation's profile
// and configuration.
func (inv Invocation) Args() []string {
	var args []string
	if inv.Profile != "" {
		args = append(args, "-p", inv.Profile)
	}
	if inv.ConfigFile != "" && inv.ConfigFile != config.DefaultConfigFile {
		args = append(args, "-y", inv.ConfigFile)
	}
	return args
}

// VCS is the subset of version-control operations a nested run needs.
type VCS interface {
	Init(dir string) error
	IsRepository(dir string) bool
	RemoveMetadata(dir string) error
	SetAsideMetadata(dir string) (restore func() error, err error)
}

// Dispatcher launches nested invocations.
type Dispatcher struct {
	Root       string
	Executable string
	Runner     runner.Runner
	VCS        VCS
	Printer    *output.Printer
	Logger     *log.Logger
}

// Dispatch runs the nested invocation ref when kind is "quack" and reports
// whether anything ran. Other kinds are accepted and ignored.
//
// A sub-project always runs inside a freshly initialized repository that is
// removed again afterwards, also when the child fails. Metadata already in
// the sub-project is set aside for the run and put back. The project root
// itself is never re-initialized: it only gets a temporary repository when
// it has none.
func (d *Dispatcher) Dispatch(ctx context.Context, kind, ref string) (bool, error) {
	if kind != config.DependencyKindQuack {
		d.Logger.Debug("ignoring dependency", "kind", kind, "reference", ref)
		return false, nil
	}

	inv := ParseReference(ref)
	dir := filepath.Clean(d.Root)
	if inv.Dir != "" {
		dir = filepath.Join(d.Root, inv.Dir)
	}

	teardown, err := d.prepare(dir, dir == filepath.Clean(d.Root))
	if err != nil {
		return false, err
	}

	display := inv.Dir
	if display == "" {
		display = "."
	}
	d.Printer.Quack(display)
	d.Logger.Debug("nested invocation", "dir", dir, "profile", inv.Profile, "config", inv.ConfigFile)

	argv := append([]string{d.Executable}, inv.Args()...)
	endFold := d.Printer.Fold("quack " + display)
	_, err = d.Runner.Exec(ctx, dir, argv...)
	endFold()

	if tdErr := teardown(); tdErr != nil {
		if err == nil {
			err = tdErr
		} else {
			d.Logger.Warn("could not restore repository metadata", "dir", dir, "err", tdErr)
		}
	}
	return true, err
}

// prepare gives dir a fresh repository and returns the function undoing it.
func (d *Dispatcher) prepare(dir string, isRoot bool) (func() error, error) {
	noop := func() error { return nil }

	var restore func() error
	if d.VCS.IsRepository(dir) {
		if isRoot {
			return noop, nil
		}
		var err error
		if restore, err = d.VCS.SetAsideMetadata(dir); err != nil {
			return nil, err
		}
	}

	teardown := func() error {
		err := d.VCS.RemoveMetadata(dir)
		if restore != nil {
			if rErr := restore(); err == nil {
				err = rErr
			}
		}
		return err
	}

	if err := d.VCS.Init(dir); err != nil {
		_ = teardown()
		return nil, err
	}
	return teardown, nil
}

// SelfExecutable returns the path the running binary was invoked as, so a
// nested run re-enters the same program.
func SelfExecutable() (string, error) {
	name := os.Args[0]
	if strings.ContainsRune(name, filepath.Separator) {
		return filepath.Abs(name)
	}
	return exec.LookPath(name)
}
