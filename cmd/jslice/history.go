package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	jerrors "jslice/internal/errors"
	"jslice/internal/slogutil"
	"jslice/internal/storage"
)

var (
	historyLimit       int
	historyFormat      string
	historyTranscripts bool
	historyPrune       int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List journaled slice runs",
	Long: `List the slice runs recorded in .jslice/journal.db, newest first.

Examples:
  jslice history                   # last 20 runs
  jslice history show 3f2a         # one run by id prefix
  jslice history show 3f2a --transcripts
  jslice history prune --keep 50`,
	Run: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its oracle iterations",
	Args:  cobra.ExactArgs(1),
	Run:   runHistoryShow,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete all but the newest runs",
	Run:   runHistoryPrune,
}

func init() {
	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", "human", "Output format (json, human)")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of runs to list")
	historyShowCmd.Flags().BoolVar(&historyTranscripts, "transcripts", false, "Print the javac output of every iteration")
	historyPruneCmd.Flags().IntVar(&historyPrune, "keep", 50, "Number of runs to keep")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
	rootCmd.AddCommand(historyCmd)
}

// RunDetail is the response of history show
type RunDetail struct {
	Run         *storage.Run        `json:"run"`
	Iterations  []storage.Iteration `json:"iterations"`
	Transcripts bool                `json:"-"`
}

// mustOpenJournal opens the journal of the working directory or exits.
func mustOpenJournal(format OutputFormat) *storage.Journal {
	wd := mustGetWorkingDir()
	db, err := storage.Open(wd, slogutil.NewDiscardLogger())
	if err != nil {
		exitWithError(jerrors.New(jerrors.StorageFailed, "failed to open journal", err), format)
	}
	journal, err := storage.NewJournal(db)
	if err != nil {
		db.Close()
		exitWithError(jerrors.New(jerrors.StorageFailed, "failed to open journal", err), format)
	}
	return journal
}

func runHistory(cmd *cobra.Command, args []string) {
	format := OutputFormat(historyFormat)
	journal := mustOpenJournal(format)
	ctx, cancel := newContext()
	runs, err := journal.ListRuns(ctx, historyLimit)
	cancel()
	journal.Close()
	if err != nil {
		exitWithError(jerrors.New(jerrors.StorageFailed, "failed to list runs", err), format)
	}
	printResponse(runs, format)
}

func runHistoryShow(cmd *cobra.Command, args []string) {
	format := OutputFormat(historyFormat)
	journal := mustOpenJournal(format)
	defer journal.Close()

	ctx, cancel := newContext()
	defer cancel()
	run, err := journal.GetRun(ctx, args[0])
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			exitWithError(jerrors.Newf(jerrors.ConfigInvalid, "no run matches %q", args[0]), format)
		}
		exitWithError(jerrors.New(jerrors.StorageFailed, "failed to read run", err), format)
	}
	its, err := journal.Iterations(ctx, run.ID)
	if err != nil {
		exitWithError(jerrors.New(jerrors.StorageFailed, "failed to read iterations", err), format)
	}
	printResponse(&RunDetail{Run: run, Iterations: its, Transcripts: historyTranscripts}, format)
}

func runHistoryPrune(cmd *cobra.Command, args []string) {
	format := OutputFormat(historyFormat)
	journal := mustOpenJournal(format)
	defer journal.Close()

	ctx, cancel := newContext()
	defer cancel()
	n, err := journal.PruneRuns(ctx, historyPrune)
	if err != nil {
		exitWithError(jerrors.New(jerrors.StorageFailed, "failed to prune runs", err), format)
	}
	fmt.Printf("Deleted %d run(s)\n", n)
}

func printResponse(resp interface{}, format OutputFormat) {
	output, err := FormatResponse(resp, format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error formatting output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(output)
}
