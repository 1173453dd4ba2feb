package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"jslice/internal/engine"
	jerrors "jslice/internal/errors"
)

var (
	checkOut    string
	checkFormat string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Type-check a written slice",
	Long: `Run javac over an existing output directory and report the type
diagnostics left in it. The slice is not changed.

Exits with status 1 when any file fails to compile.`,
	Run: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkOut, "out", "o", "", "Output directory to check (default: output.dir under the working directory)")
	checkCmd.Flags().StringVar(&checkFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	format := OutputFormat(checkFormat)
	wd := mustGetWorkingDir()
	cfg, err := loadConfig(wd)
	if err != nil {
		exitWithError(err, format)
	}
	dir := checkOut
	if dir == "" {
		dir = cfg.OutputDir(wd)
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		exitWithError(jerrors.New(jerrors.ConfigInvalid, "invalid output directory", err), format)
	}

	logs := newLoggerFactory(cmd, wd, cfg)
	e := engine.New(engine.Options{Config: cfg, Logger: logs.CLILogger()})

	ctx, cancel := newContext()
	rep, err := e.Check(ctx, dir)
	cancel()
	logs.Close()
	if err != nil {
		exitWithError(err, format)
	}

	output, err := FormatResponse(rep, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
	if !rep.Clean() {
		os.Exit(1)
	}
}
