package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jslice/internal/config"
	jerrors "jslice/internal/errors"
	"jslice/internal/slogutil"
	"jslice/internal/version"
)

var (
	// verbosity is the number of -v flags
	verbosity int
	quiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "jslice",
	Short: "jslice - Java program slicer",
	Long: `jslice extracts the part of a Java program that a set of target members
depends on and synthesizes declarations for everything the slice references
but the source root does not define, so the result compiles on its own.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate("jslice version {{.Version}}\n")
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
}

// loadConfig reads <root>/.jslice/config.json, falling back to defaults.
func loadConfig(root string) (*config.Config, error) {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		return nil, jerrors.New(jerrors.ConfigInvalid, "failed to load config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, jerrors.New(jerrors.ConfigInvalid, "invalid config", err)
	}
	return cfg, nil
}

// newLoggerFactory builds loggers honoring -v/--quiet over config.
func newLoggerFactory(cmd *cobra.Command, root string, cfg *config.Config) *slogutil.LoggerFactory {
	cliSet := cmd.Flags().Changed("verbose") || cmd.Flags().Changed("quiet")
	return slogutil.NewLoggerFactory(root, cfg, slogutil.LevelFromVerbosity(verbosity, quiet), cliSet)
}

// newContext returns a context cancelled on interrupt.
func newContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// mustGetWorkingDir returns the working directory or exits on error.
func mustGetWorkingDir() string {
	wd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return wd
}

// exitWithError prints err in the requested format and exits. Coded
// errors carry their suggested fixes.
func exitWithError(err error, format OutputFormat) {
	out, ferr := FormatError(err, format)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	} else {
		fmt.Fprintln(os.Stderr, out)
	}
	os.Exit(exitCode(err))
}

// exitCode maps error codes to process exit codes: 2 for bad input,
// 3 for environment problems, 1 for everything else.
func exitCode(err error) int {
	switch jerrors.CodeOf(err) {
	case jerrors.TargetInvalid, jerrors.TargetNotFound, jerrors.ConfigInvalid:
		return 2
	case jerrors.ParserUnavailable, jerrors.CheckerFailed, jerrors.CheckerTimeout, jerrors.StorageFailed:
		return 3
	}
	return 1
}
