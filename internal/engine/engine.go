// Package engine runs a slice end to end: it loads and indexes a source
// root, computes the closure of the targets, collapses the synthetic
// symbols into one program, refines it against the type checker, prunes
// the originals and writes the result.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"jslice/internal/ast"
	"jslice/internal/config"
	"jslice/internal/enumerate"
	jerrors "jslice/internal/errors"
	"jslice/internal/javasrc"
	"jslice/internal/paths"
	"jslice/internal/resolve"
	"jslice/internal/slicer"
	"jslice/internal/slogutil"
	"jslice/internal/storage"
	"jslice/internal/telemetry"
	"jslice/internal/typecorrect"
	"jslice/internal/unsolved"
)

// Oracle outcomes reported besides typecorrect's done and exhausted.
const (
	OracleDisabled = "disabled"
	OracleSkipped  = "skipped"
)

// Request is one slice run.
type Request struct {
	Root    string
	Targets []string
	OutDir  string
	Policy  enumerate.Policy
	// Chooser answers the input-condition policy.
	Chooser enumerate.Chooser
	// Oracle runs the type-correction loop when a checker is available.
	Oracle bool
	// Overwrite allows replacing an earlier slice in OutDir.
	Overwrite bool
}

// Options wires an Engine. Only Config is required.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Checker defaults to javac as configured.
	Checker typecorrect.Checker
	Journal *storage.Journal
	Metrics *telemetry.Metrics
	// Passes default to DefaultPasses.
	Passes []CorrectionPass
}

// Engine runs slices. It is safe for sequential reuse; concurrent runs
// need separate engines when a journal is attached.
type Engine struct {
	cfg     *config.Config
	logger  *slog.Logger
	checker typecorrect.Checker
	journal *storage.Journal
	metrics *telemetry.Metrics
	passes  []CorrectionPass
}

// New creates an engine.
func New(opts Options) *Engine {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	checker := opts.Checker
	if checker == nil {
		checker = &typecorrect.JavacChecker{
			Javac:     cfg.Oracle.Javac,
			Timeout:   cfg.OracleTimeout(),
			ExtraArgs: cfg.Oracle.ExtraArgs,
			Logger:    logger,
		}
	}
	passes := opts.Passes
	if passes == nil {
		passes = DefaultPasses()
	}
	return &Engine{
		cfg:     cfg,
		logger:  logger,
		checker: checker,
		journal: opts.Journal,
		metrics: opts.Metrics,
		passes:  passes,
	}
}

// FileSummary describes one written file.
type FileSummary struct {
	Path      string `json:"path"`
	Synthetic bool   `json:"synthetic"`
	Bytes     int    `json:"bytes"`
	Digest    string `json:"digest"`
}

// Report summarizes a run. It is partial when Run returns an error.
type Report struct {
	RunID      string            `json:"runId,omitempty"`
	Root       string            `json:"root"`
	OutDir     string            `json:"outDir"`
	Targets    []string          `json:"targets"`
	Policy     string            `json:"policy"`
	KeptNodes  int               `json:"keptNodes"`
	Generated  int               `json:"generated"`
	Choices    []string          `json:"choices,omitempty"`
	Files      []FileSummary     `json:"files"`
	Skipped    []javasrc.Skipped `json:"skipped,omitempty"`
	Oracle     string            `json:"oracle"`
	Iterations int               `json:"iterations"`
	Remaining  int               `json:"remainingDiagnostics"`
	Digest     string            `json:"digest"`
	Duration   time.Duration     `json:"duration"`

	oracle *typecorrect.Report
}

// Corrections returns what the oracle learned, nil when it did not run.
func (r *Report) Corrections() *typecorrect.Corrections {
	if r.oracle == nil {
		return nil
	}
	return r.oracle.Corrections
}

// Run executes req. Structural invariant violations raised while slicing
// are returned as INVARIANT_VIOLATION errors.
func (e *Engine) Run(ctx context.Context, req Request) (rep *Report, err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, "run",
		attribute.String("jslice.root", req.Root),
		attribute.Int("jslice.targets", len(req.Targets)),
	)
	defer func() { telemetry.EndSpan(span, err) }()

	rep = &Report{
		Root:    req.Root,
		OutDir:  req.OutDir,
		Targets: req.Targets,
		Policy:  req.Policy.String(),
		Oracle:  OracleDisabled,
	}
	run := e.beginRun(ctx, rep)
	defer func() {
		if r := recover(); r != nil {
			ie, ok := unsolved.IsInvariant(r)
			if !ok {
				panic(r)
			}
			err = jerrors.New(jerrors.InvariantViolation, ie.Error(), ie)
		}
		rep.Duration = time.Since(start)
		e.finishRun(run, rep, err)
	}()

	if err := e.validate(&req); err != nil {
		return rep, err
	}
	rep.Root, rep.OutDir = req.Root, req.OutDir
	targets, err := slicer.ParseTargets(req.Targets)
	if err != nil {
		return rep, err
	}

	var arena *ast.Arena
	err = e.stage(ctx, telemetry.StageLoad, func(ctx context.Context) error {
		loader := javasrc.NewLoader(javasrc.LoaderOptions{
			Workers:      e.cfg.Parse.Workers,
			MaxFileBytes: e.cfg.Parse.MaxFileBytes,
			Exclude:      excludeOutput(e.cfg.Parse.Exclude, req.Root, req.OutDir),
		}, e.logger)
		res, err := loader.LoadRoot(ctx, req.Root)
		if err != nil {
			return err
		}
		arena, rep.Skipped = res.Arena, res.Skipped
		return nil
	})
	if err != nil {
		return rep, err
	}

	var idx *resolve.Index
	err = e.stage(ctx, telemetry.StageIndex, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx = resolve.NewIndex(arena)
		return nil
	})
	if err != nil {
		return rep, err
	}

	reg := unsolved.NewRegistry()
	var closure *slicer.Result
	err = e.stage(ctx, telemetry.StageSlice, func(ctx context.Context) error {
		gen := unsolved.NewGenerator(idx, reg, e.logger)
		res, err := slicer.New(idx, gen, e.logger).Run(ctx, targets)
		if err != nil {
			return err
		}
		closure = res
		return nil
	})
	if err != nil {
		if !jerrors.Is(err, jerrors.TargetNotFound) && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = jerrors.New(jerrors.InternalError, "slicing failed", err)
		}
		return rep, err
	}
	rep.KeptNodes = closure.Keep.Len()
	rep.Generated = len(closure.Generated)

	prog := &program{
		arena:   arena,
		reg:     reg,
		closure: closure,
		passes:  e.passes,
		opts: enumerate.Options{
			Policy:          req.Policy,
			Chooser:         req.Chooser,
			MaxCombinations: e.cfg.Enumerate.MaxCombinations,
			IsProgramType:   idx.IsProgramType,
			Logger:          e.logger,
		},
	}

	opts := prog.opts
	var corrections *typecorrect.Corrections
	if req.Oracle {
		err = e.stage(ctx, telemetry.StageOracle, func(ctx context.Context) error {
			o, report, err := e.refine(ctx, prog, idx, run)
			if err != nil {
				return err
			}
			opts = o
			if report == nil {
				rep.Oracle = OracleSkipped
				return nil
			}
			rep.oracle = report
			rep.Oracle = report.Outcome.String()
			rep.Iterations = report.Iterations
			rep.Remaining = report.Remaining
			corrections = report.Corrections
			return nil
		})
		if err != nil {
			return rep, err
		}
	}

	var files []File
	err = e.stage(ctx, telemetry.StagePrune, func(context.Context) error {
		var choices []enumerate.Choice
		var err error
		files, choices, err = prog.render(opts, corrections)
		for _, c := range choices {
			rep.Choices = append(rep.Choices, c.Identity)
		}
		return err
	})
	if err != nil {
		return rep, err
	}

	err = e.stage(ctx, telemetry.StageWrite, func(context.Context) error {
		return e.write(req, rep, files)
	})
	if err != nil {
		return rep, err
	}

	e.logger.Info("Slice written",
		"out", req.OutDir,
		"files", len(rep.Files),
		"kept", rep.KeptNodes,
		"generated", rep.Generated,
		"oracle", rep.Oracle,
		"duration", time.Since(start),
	)
	return rep, nil
}

// validate checks req and makes its directories absolute.
func (e *Engine) validate(req *Request) error {
	if len(req.Targets) == 0 {
		return jerrors.Newf(jerrors.TargetInvalid, "no targets given")
	}
	if req.OutDir == "" {
		return jerrors.Newf(jerrors.ConfigInvalid, "no output directory given")
	}
	root, err := filepath.Abs(req.Root)
	if err != nil {
		return jerrors.New(jerrors.ConfigInvalid, "invalid source root", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return jerrors.Newf(jerrors.ConfigInvalid, "source root %s is not a directory", req.Root)
	}
	out, err := filepath.Abs(req.OutDir)
	if err != nil {
		return jerrors.New(jerrors.ConfigInvalid, "invalid output directory", err)
	}
	if root == out || paths.IsWithinRoot(root, out) {
		return jerrors.Newf(jerrors.OutputFailed, "output directory %s would contain the source root", req.OutDir)
	}
	req.Root, req.OutDir = root, out
	return nil
}

// excludeOutput keeps an output directory nested in the root out of the
// next load.
func excludeOutput(exclude []string, root, out string) []string {
	rel, err := filepath.Rel(root, out)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return exclude
	}
	return append(append([]string(nil), exclude...), filepath.ToSlash(rel)+"/**")
}

// stage runs fn under a span and records its duration.
func (e *Engine) stage(ctx context.Context, name string, fn func(context.Context) error) (err error) {
	start := time.Now()
	ctx, span := telemetry.StartSpan(ctx, name)
	defer func() {
		telemetry.EndSpan(span, err)
		if e.metrics != nil {
			e.metrics.ObserveStage(name, time.Since(start))
		}
		e.logger.Debug("Stage finished", "stage", name, "duration", time.Since(start))
	}()
	return fn(ctx)
}

// refine runs the oracle loop and returns the enumeration options of the
// program it settled on. A nil report means no checker was available.
func (e *Engine) refine(ctx context.Context, prog *program, idx *resolve.Index, run *journalRun) (enumerate.Options, *typecorrect.Report, error) {
	if j, ok := e.checker.(*typecorrect.JavacChecker); ok && !j.Available() {
		e.logger.Warn("Type checker not found, skipping oracle", "javac", j.Javac)
		return prog.opts, nil, nil
	}

	candidates, err := prog.candidates()
	if err != nil {
		return prog.opts, nil, err
	}

	qualify := typecorrect.ProgramQualifier(idx.ProgramTypes())
	var first *typecorrect.Report
	firstOpts := prog.opts
	for i, opts := range candidates {
		report, err := e.oracle(ctx, prog, opts, qualify, run)
		if err != nil {
			return prog.opts, nil, err
		}
		if i == 0 {
			first, firstOpts = report, opts
		}
		if report.Outcome == typecorrect.Done && report.Remaining == 0 {
			if i > 0 {
				e.logger.Info("Picked alternative program", "combination", i+1, "of", len(candidates))
			}
			return opts, report, nil
		}
		if report.Err != nil {
			// the checker is unusable; other combinations cannot do better
			break
		}
	}
	return firstOpts, first, nil
}

// oracle runs one loop over a staging copy of the program.
func (e *Engine) oracle(ctx context.Context, prog *program, opts enumerate.Options, qualify func(string) string, run *journalRun) (*typecorrect.Report, error) {
	staging, err := os.MkdirTemp("", "jslice-stage-")
	if err != nil {
		return nil, jerrors.New(jerrors.OutputFailed, "failed to create staging directory", err)
	}
	defer os.RemoveAll(staging)

	loop := &typecorrect.Loop{
		Checker:       e.checker,
		Root:          staging,
		MaxIterations: e.cfg.Oracle.MaxIterations,
		Qualify:       qualify,
		Observer:      e.observer(run),
		Logger:        e.logger,
		Drafter: typecorrect.DraftFunc(func(ctx context.Context, c *typecorrect.Corrections) ([]string, error) {
			files, _, err := prog.render(opts, c)
			if err != nil {
				return nil, err
			}
			if err := os.RemoveAll(staging); err != nil {
				return nil, err
			}
			if err := materialize(staging, files); err != nil {
				return nil, err
			}
			var check []string
			for _, f := range files {
				if !f.Synthetic {
					check = append(check, f.Path)
				}
			}
			return check, nil
		}),
	}
	report, err := loop.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("oracle loop: %w", err)
	}
	if report.Err != nil {
		e.logger.Warn("Oracle ended early", "error", report.Err.Error(), "code", string(checkerCode(report.Err)))
	}
	if e.metrics != nil {
		e.metrics.RecordOutcome(report.Outcome.String())
	}
	return report, nil
}

func checkerCode(err error) jerrors.ErrorCode {
	if errors.Is(err, typecorrect.ErrCheckerTimeout) {
		return jerrors.CheckerTimeout
	}
	return jerrors.CheckerFailed
}
