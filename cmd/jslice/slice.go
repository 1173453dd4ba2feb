package main

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"jslice/internal/config"
	"jslice/internal/engine"
	"jslice/internal/enumerate"
	jerrors "jslice/internal/errors"
	"jslice/internal/slogutil"
	"jslice/internal/storage"
	"jslice/internal/targets"
	"jslice/internal/telemetry"
)

var (
	sliceRoot        string
	sliceTargets     []string
	sliceTargetsFile string
	sliceOut         string
	slicePolicy      string
	sliceChoose      []string
	sliceNoOracle    bool
	sliceOverwrite   bool
	sliceFormat      string
)

var sliceCmd = &cobra.Command{
	Use:   "slice",
	Short: "Slice a source root down to a set of targets",
	Long: `Compute the dependency closure of the target members, synthesize the
declarations the source root does not provide, refine them against javac
and write the result to the output directory.

Targets name a method, constructor or field:
  com.example.Main#run(String, int)
  com.example.Main#<init>()
  com.example.Main#count

Examples:
  jslice slice --root src --target 'com.example.Main#run(Foo)'
  jslice slice --targets-file targets.yaml --out /tmp/slice
  jslice slice --policy all --format json`,
	Run: runSlice,
}

func init() {
	addSliceFlags(sliceCmd)
	sliceCmd.Flags().StringVar(&sliceFormat, "format", "human", "Output format (json, human)")
	rootCmd.AddCommand(sliceCmd)
}

// addSliceFlags registers the flags slice and watch share.
func addSliceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&sliceRoot, "root", "", "Source root (default: working directory)")
	cmd.Flags().StringArrayVarP(&sliceTargets, "target", "t", nil, "Target member, repeatable")
	cmd.Flags().StringVar(&sliceTargetsFile, "targets-file", "", "Target manifest (.yaml, .toml or one target per line)")
	cmd.Flags().StringVarP(&sliceOut, "out", "o", "", "Output directory (default: output.dir under the root)")
	cmd.Flags().StringVar(&slicePolicy, "policy", "", "Ambiguity policy: best-effort, all, input-condition")
	cmd.Flags().StringSliceVar(&sliceChoose, "choose", nil, "Alternatives to keep under input-condition, e.g. com.example.Base#x")
	cmd.Flags().BoolVar(&sliceNoOracle, "no-oracle", false, "Skip the javac correction loop")
	cmd.Flags().BoolVar(&sliceOverwrite, "overwrite", false, "Replace an earlier slice in the output directory")
}

// sliceSetup is everything a slice run needs, resolved from flags, the
// targets file and config.
type sliceSetup struct {
	root    string
	cfg     *config.Config
	logs    *slogutil.LoggerFactory
	logger  *slog.Logger
	journal *storage.Journal
	engine  *engine.Engine
	request engine.Request
}

func (s *sliceSetup) Close() {
	if s.journal != nil {
		if err := s.journal.Close(); err != nil {
			s.logger.Warn("Failed to close journal", "error", err.Error())
		}
	}
	s.logs.Close()
}

func newSliceSetup(cmd *cobra.Command) (*sliceSetup, error) {
	var manifest *targets.Manifest
	if sliceTargetsFile != "" {
		m, err := targets.Load(sliceTargetsFile)
		if err != nil {
			return nil, err
		}
		manifest = m
	}

	root := sliceRoot
	if root == "" && manifest != nil {
		root = manifest.Root
	}
	if root == "" {
		root = mustGetWorkingDir()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, jerrors.New(jerrors.ConfigInvalid, "invalid source root", err)
	}

	cfg, err := loadConfig(root)
	if err != nil {
		return nil, err
	}
	logs := newLoggerFactory(cmd, root, cfg)
	logger := logs.CLILogger()

	s := &sliceSetup{root: root, cfg: cfg, logs: logs, logger: logger}

	list := sliceTargets
	if manifest != nil {
		list = targets.Merge(manifest.Targets, sliceTargets)
	}

	out := sliceOut
	if out == "" && manifest != nil {
		out = manifest.Out
	}
	if out == "" {
		out = cfg.OutputDir(root)
	}

	policyName := slicePolicy
	if policyName == "" && manifest != nil {
		policyName = manifest.Policy
	}
	if policyName == "" {
		policyName = cfg.Enumerate.Policy
	}
	policy, err := enumerate.ParsePolicy(policyName)
	if err != nil {
		s.Close()
		return nil, jerrors.New(jerrors.ConfigInvalid, "invalid policy", err)
	}
	var chooser enumerate.Chooser
	if len(sliceChoose) > 0 {
		chooser = enumerate.IdentityChooser(sliceChoose)
	}
	if policy == enumerate.InputCondition && chooser == nil {
		s.Close()
		return nil, jerrors.Newf(jerrors.ConfigInvalid, "the input-condition policy needs --choose")
	}

	if cfg.Journal.Enabled {
		s.journal = openJournal(root, logger)
	}
	var metrics *telemetry.Metrics
	if cfg.Telemetry.Enabled {
		metrics = telemetry.NewMetrics()
	}

	s.engine = engine.New(engine.Options{
		Config:  cfg,
		Logger:  logger,
		Journal: s.journal,
		Metrics: metrics,
	})
	s.request = engine.Request{
		Root:      root,
		Targets:   list,
		OutDir:    out,
		Policy:    policy,
		Chooser:   chooser,
		Oracle:    cfg.Oracle.Enabled && !sliceNoOracle,
		Overwrite: sliceOverwrite || cfg.Output.Overwrite,
	}
	return s, nil
}

// openJournal opens the run journal, returning nil when it cannot be
// used. A slice never fails because of its journal.
func openJournal(root string, logger *slog.Logger) *storage.Journal {
	db, err := storage.Open(root, logger)
	if err != nil {
		logger.Warn("Run journal unavailable", "error", err.Error())
		return nil
	}
	journal, err := storage.NewJournal(db)
	if err != nil {
		db.Close()
		logger.Warn("Run journal unavailable", "error", err.Error())
		return nil
	}
	return journal
}

func runSlice(cmd *cobra.Command, args []string) {
	format := OutputFormat(sliceFormat)
	s, err := newSliceSetup(cmd)
	if err != nil {
		exitWithError(err, format)
	}

	ctx, cancel := newContext()
	rep, err := s.engine.Run(ctx, s.request)
	cancel()
	s.Close()
	if err != nil {
		exitWithError(err, format)
	}

	printResponse(rep, format)
}
