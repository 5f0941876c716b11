package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sghaida/stubgen/config"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// errDrift is returned by generate --check when the file on disk is stale.
var errDrift = errors.New("generated file is out of date")

// errStrict is returned by generate --strict when a contract could not be stubbed.
var errStrict = errors.New("some contracts could not be stubbed")

// usageError marks errors caused by invalid flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// app holds the state shared by all subcommands of one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger

	// debounce delays regeneration in watch mode.
	debounce time.Duration

	// watching is called once the watcher is set up. Tests hook it.
	watching func()
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		logger:   zap.NewNop(),
		debounce: 200 * time.Millisecond,
		watching: func() {},
	}
}

// run executes the CLI and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := newApp(stdout, stderr)

	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	_ = a.logger.Sync()

	switch {
	case err == nil:
		return exitOK
	case errors.As(err, new(usageError)):
		_, _ = fmt.Fprintf(stderr, "stubgen: %v\n", err)
		_, _ = fmt.Fprintln(stderr, "Run 'stubgen --help' for usage.")
		return exitUsage
	default:
		_, _ = color.New(color.FgRed).Fprintf(stderr, "stubgen: %v\n", err)
		return exitError
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stubgen",
		Short: "Generate stub implementations for the interfaces of a Go project",
		Long: `stubgen loads the packages of a Go project, finds every interface that
qualifies under the configured policy and writes one Go file holding a stub
implementation for each of them.

Configuration is read from stubgen.yaml and STUBGEN_* environment variables.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "init" {
				return nil
			}
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return usageError{err: err}
			}
			a.cfg = cfg
			logger, err := newLogger(a.stderr, cfg.Logging, a.verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error { return usageError{err: err} })

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the configuration file (default ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.generateCmd(), a.listCmd(), a.initCmd())
	return root
}

// newLogger builds a logger writing to w. verbose forces the debug level.
func newLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var enc zapcore.Encoder
	if cfg.Format == "json" {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level)), nil
}
