// Package runner executes external commands for quack: subprocesses for
// nested invocations and shell text for cmd: tasks. Every call blocks until
// the command exits. A non-zero status is returned as *CommandError and is
// treated as fatal by callers.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/sofmeright/quack/src/output"
)

// Runner runs commands in a working directory.
type Runner interface {
	// Exec runs argv as a subprocess.
	Exec(ctx context.Context, dir string, argv ...string) (*Result, error)
	// Shell interprets script as POSIX shell text.
	Shell(ctx context.Context, dir, script string) (*Result, error)
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandError reports a command that exited with a non-zero status.
type CommandError struct {
	Command  string
	Dir      string
	ExitCode int
	Stderr   string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command %q failed with status %d", e.Command, e.ExitCode)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ", stderr=\n" + stderr
	}
	return msg
}

// Local runs commands on the host. Stdout is streamed to the printer while
// it is captured; stderr is captured for diagnostics.
type Local struct {
	Printer *output.Printer
	Env     []string // nil inherits the process environment
}

// NewLocal creates a host runner reporting through p.
func NewLocal(p *output.Printer) *Local {
	return &Local{Printer: p}
}

// Exec runs argv as a subprocess in dir.
func (l *Local) Exec(ctx context.Context, dir string, argv ...string) (*Result, error) {
	if len(argv) == 0 {
		return nil, errors.New("runner: empty command")
	}
	command := strings.Join(argv, " ")
	l.printer().Executing(command, displayDir(dir))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Env = l.environ()
	cmd.Stdout = io.MultiWriter(&stdout, l.printer().Writer)
	cmd.Stderr = &stderr

	res := &Result{}
	err := cmd.Run()
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, &CommandError{Command: command, Dir: dir, ExitCode: res.ExitCode, Stderr: res.Stderr}
		}
		return res, fmt.Errorf("running %q: %w", command, err)
	}
	return res, nil
}

// Shell interprets script with mvdan.cc/sh in dir. Programs that are not
// shell builtins are looked up on PATH and executed.
func (l *Local) Shell(ctx context.Context, dir, script string) (*Result, error) {
	l.printer().Executing(script, displayDir(dir))

	prog, err := syntax.NewParser().Parse(strings.NewReader(script), "cmd")
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", script, err)
	}

	var stdout, stderr bytes.Buffer
	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(l.environ()...)),
		interp.StdIO(nil, io.MultiWriter(&stdout, l.printer().Writer), &stderr),
	)
	if err != nil {
		return nil, fmt.Errorf("creating interpreter: %w", err)
	}

	res := &Result{}
	err = runner.Run(ctx, prog)
	res.Stdout = stdout.String()
	res.Stderr = stderr.String()
	if err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			res.ExitCode = int(exitStatus)
			return res, &CommandError{Command: script, Dir: dir, ExitCode: res.ExitCode, Stderr: res.Stderr}
		}
		return res, fmt.Errorf("running %q: %w", script, err)
	}
	return res, nil
}

func (l *Local) printer() *output.Printer {
	if l.Printer == nil {
		return output.Discard()
	}
	return l.Printer
}

func (l *Local) environ() []string {
	if l.Env != nil {
		return l.Env
	}
	return os.Environ()
}

func displayDir(dir string) string {
	if dir != "" {
		return dir
	}
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}
