package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jslice/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-slice whenever the sources change",
	Long: `Slice once, then watch the source root and the targets file and slice
again after every debounced batch of changes. The output directory is
never watched. Stop with Ctrl-C.`,
	Run: runWatch,
}

func init() {
	addSliceFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	format := FormatHuman
	// overwriting the previous slice is the point of watching
	sliceOverwrite = true

	s, err := newSliceSetup(cmd)
	if err != nil {
		exitWithError(err, format)
	}
	wcfg := watcher.DefaultConfig()
	wcfg.Debounce = s.cfg.WatchDebounce()
	wcfg.IgnoreDirs = []string{s.request.OutDir}
	if sliceTargetsFile != "" {
		if abs, err := filepath.Abs(sliceTargetsFile); err == nil {
			wcfg.ExtraFiles = []string{abs}
		}
	}
	root := s.root
	logger := s.logs.WatchLogger()
	// every batch opens its own journal
	if s.journal != nil {
		s.journal.Close()
		s.journal = nil
	}
	defer s.Close()

	changed := make(chan struct{}, 1)
	w, err := watcher.New(root, wcfg, logger, func(_ string, events []watcher.Event) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		exitWithError(err, format)
	}

	ctx, cancel := newContext()
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.Run(ctx) })
	g.Go(func() error {
		sliceOnce(ctx, cmd)
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changed:
				sliceOnce(ctx, cmd)
			}
		}
	})
	if err := g.Wait(); err != nil {
		exitWithError(err, format)
	}
}

// sliceOnce runs one slice with freshly loaded config and targets and
// prints a one-line summary. Failures are reported and watching goes on.
func sliceOnce(ctx context.Context, cmd *cobra.Command) {
	start := time.Now()
	s, err := newSliceSetup(cmd)
	if err != nil {
		out, _ := FormatError(err, FormatHuman)
		fmt.Fprintln(os.Stderr, out)
		return
	}
	defer s.Close()

	rep, err := s.engine.Run(ctx, s.request)
	stamp := start.Format("15:04:05")
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		out, _ := FormatError(err, FormatHuman)
		fmt.Fprintf(os.Stderr, "[%s] %s\n", stamp, out)
		return
	}
	fmt.Printf("[%s] %d file(s) -> %s (oracle %s, %s, digest %s)\n",
		stamp, len(rep.Files), rep.OutDir, rep.Oracle,
		time.Since(start).Round(time.Millisecond), shortID(rep.Digest))
}
