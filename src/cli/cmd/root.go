package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sofmeright/quack/src/config"
	"github.com/sofmeright/quack/src/module"
	"github.com/sofmeright/quack/src/nested"
	"github.com/sofmeright/quack/src/output"
	"github.com/sofmeright/quack/src/profile"
	"github.com/sofmeright/quack/src/runner"
	"github.com/sofmeright/quack/src/vcs"
	"github.com/sofmeright/quack/src/vendoring"
)

// ExitError wraps an error with a process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// Exit codes.
const (
	exitOK         = 0
	exitRunFail    = 1
	exitConfigFail = 2
)

// DefaultProfile is run when no profile is selected.
const DefaultProfile = "init"

var (
	cfgFile     string
	profileName string
	verbose     bool
	logger      *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "quack",
	Short: "Vendor git dependencies and run project tasks",
	Long: `quack vendors modules from git repositories into the project as plain files
and runs the tasks of a profile defined in quack.yaml.`,
	Args: cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := bindEnv(cmd); err != nil {
			return &ExitError{Code: exitConfigFail, Err: err}
		}
		logger = output.NewLogger(cmd.ErrOrStderr(), verbose)
		return nil
	},
	RunE:          runRoot,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "yaml", "y", config.DefaultConfigFile, "configuration file")
	rootCmd.PersistentFlags().StringVarP(&profileName, "profile", "p", DefaultProfile, "profile to run")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// bindEnv lets QUACK_YAML, QUACK_PROFILE and QUACK_VERBOSE stand in for
// flags that were not given on the command line.
func bindEnv(cmd *cobra.Command) error {
	v := viper.New()
	v.SetEnvPrefix("quack")
	v.AutomaticEnv()

	flags := cmd.Flags()
	for _, name := range []string{"yaml", "profile", "verbose"} {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}

	cfgFile = v.GetString("yaml")
	profileName = v.GetString("profile")
	verbose = v.GetBool("verbose")
	return nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	rootDir, err := os.Getwd()
	if err != nil {
		return &ExitError{Code: exitRunFail, Err: fmt.Errorf("getting working directory: %w", err)}
	}

	cfg, err := loadOrCreate(cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if cfg == nil {
		return nil
	}

	printer := output.NewPrinter(cmd.OutOrStdout())
	executor, err := newExecutor(rootDir, printer)
	if err != nil {
		return &ExitError{Code: exitRunFail, Err: err}
	}

	logger.Debug("running profile", "profile", profileName, "config", cfgFile, "root", rootDir)
	stats, err := executor.Run(ctx, cfg, profileName)
	if err != nil {
		return &ExitError{Code: exitCode(err), Err: err}
	}

	printer.Summary(stats.Tasks, stats.Dependencies)
	return nil
}

// loadOrCreate loads and validates the configuration. When the file does not
// exist the user is offered a starter configuration; a nil Config with no
// error means they declined.
func loadOrCreate(in io.Reader, out io.Writer) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, &ExitError{Code: exitConfigFail, Err: fmt.Errorf("loading config: %w", err)}
	}

	if cfg == nil {
		created, err := promptStarter(in, out, cfgFile)
		if err != nil {
			return nil, &ExitError{Code: exitConfigFail, Err: err}
		}
		if !created {
			return nil, nil
		}
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, &ExitError{Code: exitConfigFail, Err: fmt.Errorf("loading config: %w", err)}
		}
		if cfg == nil {
			return nil, &ExitError{Code: exitConfigFail, Err: fmt.Errorf("%s was not created", cfgFile)}
		}
	}

	// Module errors only abort the run once a task constructs that module;
	// `quack check` is where they fail up front.
	warnings, err := config.Validate(cfg)
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		logger.Warn(err.Error())
	}
	return cfg, nil
}

// promptStarter asks whether to create a starter configuration at path and
// writes it on confirmation.
func promptStarter(in io.Reader, out io.Writer, path string) (bool, error) {
	reader := bufio.NewReader(in)

	fmt.Fprint(out, "No quack configuration found, do you want to create one? (y/N): ")
	answer, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if !strings.EqualFold(strings.TrimSpace(answer), "y") {
		return false, nil
	}

	fmt.Fprint(out, "Provide project name: ")
	name, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if err := config.WriteStarter(path, strings.TrimSpace(name)); err != nil {
		return false, err
	}
	return true, nil
}

func newExecutor(rootDir string, printer *output.Printer) (*profile.Executor, error) {
	self, err := nested.SelfExecutable()
	if err != nil {
		return nil, fmt.Errorf("locating quack executable: %w", err)
	}

	git := vcs.New()
	local := runner.NewLocal(printer)

	return &profile.Executor{
		Root:      rootDir,
		Vendoring: vendoring.New(rootDir, git, printer, logger),
		Nested: &nested.Dispatcher{
			Root:       rootDir,
			Executable: self,
			Runner:     local,
			VCS:        git,
			Printer:    printer,
			Logger:     logger,
		},
		Runner:  local,
		Printer: printer,
		Logger:  logger,
	}, nil
}

func exitCode(err error) int {
	if errors.Is(err, module.ErrMissingRepository) || errors.Is(err, module.ErrInvalidName) {
		return exitConfigFail
	}
	return exitRunFail
}

// Main runs the CLI and returns the process exit code.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), err)
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		return exitRunFail
	}
	return exitOK
}
