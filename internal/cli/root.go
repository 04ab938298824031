package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/idilsaglam/taskday/internal/app"
	"github.com/idilsaglam/taskday/internal/config"
	"github.com/idilsaglam/taskday/internal/exitcode"
	"github.com/idilsaglam/taskday/internal/logger"
	"github.com/idilsaglam/taskday/internal/suggest"
	"github.com/idilsaglam/taskday/internal/ui"
)

// Version is the CLI version.
var Version = "0.1.0"

// Options inject I/O and collaborators; zero values use the real ones.
type Options struct {
	Out io.Writer
	Err io.Writer
	In  io.Reader

	// LoadConfig defaults to config.Load.
	LoadConfig func(path string) (*config.Config, error)

	// OpenApp defaults to app.Open.
	OpenApp func(ctx context.Context, cfg *config.Config) (*app.App, error)

	// Now defaults to time.Now.
	Now func() time.Time
}

func (o *Options) defaults() {
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.LoadConfig == nil {
		o.LoadConfig = config.Load
	}
	if o.OpenApp == nil {
		o.OpenApp = app.Open
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// codedError carries an explicit exit code.
type codedError struct {
	code int
	err  error
}

func (e *codedError) Error() string { return e.err.Error() }
func (e *codedError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &codedError{code: code, err: err}
}

func usageError(format string, args ...any) error {
	return withCode(exitcode.UserError, fmt.Errorf(format, args...))
}

// exitCode maps an error to the process exit code.
func exitCode(err error) int {
	var ce *codedError
	switch {
	case err == nil:
		return exitcode.Success
	case errors.As(err, &ce):
		return ce.code
	case errors.Is(err, suggest.ErrUnavailable):
		return exitcode.BackendError
	default:
		// bad arguments, unknown references and validation failures
		return exitcode.UserError
	}
}

// env is the per-invocation state shared by subcommands.
type env struct {
	opt Options

	configPath string
	dataDir    string
	backend    string
	verbose    bool
	theme      string

	cfg *config.Config
	app *app.App
}

func (e *env) now() time.Time { return e.opt.Now() }

// config loads configuration once and applies flag overrides.
func (e *env) config() (*config.Config, error) {
	if e.cfg != nil {
		return e.cfg, nil
	}
	cfg, err := e.opt.LoadConfig(e.configPath)
	if err != nil {
		return nil, withCode(exitcode.ConfigError, err)
	}
	if e.dataDir != "" {
		cfg.DataDir = e.dataDir
	}
	if e.backend != "" {
		cfg.Storage.Backend = strings.ToLower(e.backend)
	}
	if err := cfg.Validate(); err != nil {
		return nil, withCode(exitcode.ConfigError, err)
	}
	level := cfg.Log.Level
	if e.verbose {
		level = "debug"
	}
	logger.InitWriter(e.opt.Err, level, cfg.Log.JSON)
	e.cfg = cfg
	return cfg, nil
}

// session opens the store once per invocation.
func (e *env) session(ctx context.Context) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	cfg, err := e.config()
	if err != nil {
		return nil, err
	}
	a, err := e.opt.OpenApp(ctx, cfg)
	if err != nil {
		return nil, withCode(exitcode.BackendError, err)
	}
	if a.Now == nil {
		a.Now = e.opt.Now
	}
	e.app = a
	return a, nil
}

func (e *env) close() {
	if e.app != nil {
		if err := e.app.Close(); err != nil {
			logger.Warn("close storage", "err", err)
		}
	}
}

func newRootCmd(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "taskday",
		Short: "taskday - tasks sorted into Overdue, Today, Upcoming and Completed",
		Long: `taskday keeps a local task list with due dates and can suggest task
descriptions with a generative model.

Tasks are referenced by list position (as shown by "taskday ls"), by id,
or by a unique id prefix of at least 4 characters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.SetTheme(e.theme)
		},
	}
	root.SetOut(e.opt.Out)
	root.SetErr(e.opt.Err)
	root.SetIn(e.opt.In)

	// Global flags
	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/taskday/config.yaml)")
	pf.StringVar(&e.dataDir, "data-dir", "", "directory holding task data")
	pf.StringVar(&e.backend, "backend", "", "storage backend: file, sqlite or redis")
	pf.StringVar(&e.theme, "theme", "classic", "output theme: classic or mono")
	pf.BoolVarP(&e.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newAddCmd(e),
		newListCmd(e),
		newShowCmd(e),
		newEditCmd(e),
		newDoneCmd(e),
		newRemoveCmd(e),
		newSuggestCmd(e),
		newTUICmd(e),
		newServeCmd(e),
		newAuthCmd(e),
		newVersionCmd(e),
	)
	return root
}

// Run executes the CLI with args and returns the exit code.
func Run(ctx context.Context, args []string, opt Options) int {
	opt.defaults()
	e := &env{opt: opt}
	defer e.close()

	root := newRootCmd(e)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		ui.Fail(opt.Err, err.Error())
		return exitCode(err)
	}
	return exitcode.Success
}

func newVersionCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(e.opt.Out, "taskday %s\n", Version)
		},
	}
}
