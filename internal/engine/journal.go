package engine

import (
	"context"
	"errors"
	"time"

	jerrors "jslice/internal/errors"
	"jslice/internal/storage"
	"jslice/internal/typecorrect"
)

// journalRun is the journal row of the current run. Iterations of every
// oracle loop of the run are numbered in one sequence.
type journalRun struct {
	ctx  context.Context
	run  *storage.Run
	next int
}

func (e *Engine) beginRun(ctx context.Context, rep *Report) *journalRun {
	jr := &journalRun{ctx: context.WithoutCancel(ctx)}
	if e.journal == nil {
		return jr
	}
	run := &storage.Run{
		Root:    rep.Root,
		OutDir:  rep.OutDir,
		Targets: rep.Targets,
		Policy:  rep.Policy,
	}
	if err := e.journal.BeginRun(jr.ctx, run); err != nil {
		e.logger.Warn("Failed to journal run", "error", err.Error())
		return jr
	}
	jr.run = run
	rep.RunID = run.ID
	return jr
}

func (e *Engine) finishRun(jr *journalRun, rep *Report, runErr error) {
	status := storage.RunSucceeded
	if runErr != nil {
		status = storage.RunFailed
	}
	if e.metrics != nil {
		e.metrics.RecordRun(string(status), rep.KeptNodes, rep.Generated, len(rep.Files))
		if path := e.cfg.Telemetry.MetricsFile; path != "" {
			if err := e.metrics.WriteTextfile(path); err != nil {
				e.logger.Warn("Failed to write metrics", "path", path, "error", err.Error())
			}
		}
	}
	if jr == nil || jr.run == nil {
		return
	}

	run := jr.run
	run.Status = status
	if rep.Oracle != OracleDisabled {
		run.Outcome = rep.Oracle
	}
	run.KeptNodes = rep.KeptNodes
	run.Generated = rep.Generated
	run.FilesWritten = len(rep.Files)
	run.Digest = rep.Digest
	if runErr != nil {
		run.ErrorCode = string(runErrorCode(runErr))
		run.ErrorMessage = runErr.Error()
	}
	if err := e.journal.FinishRun(jr.ctx, run); err != nil {
		e.logger.Warn("Failed to journal run result", "run", run.ID, "error", err.Error())
		return
	}
	if keep := e.cfg.Journal.KeepRuns; keep > 0 {
		if n, err := e.journal.PruneRuns(jr.ctx, keep); err != nil {
			e.logger.Warn("Failed to prune journal", "error", err.Error())
		} else if n > 0 {
			e.logger.Debug("Pruned journal", "runs", n)
		}
	}
}

// runErrorCode is the stable code of a failed run. Cancellation is not a
// SliceError but still gets a code of its own kind.
func runErrorCode(err error) jerrors.ErrorCode {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return jerrors.Cancelled
	}
	return jerrors.CodeOf(err)
}

// observer journals and counts oracle iterations.
func (e *Engine) observer(jr *journalRun) typecorrect.Observer {
	return typecorrect.ObserverFunc(func(it typecorrect.Iteration) {
		if e.metrics != nil {
			e.metrics.RecordIteration(len(it.Diagnostics), it.Applied)
		}
		if jr == nil || jr.run == nil {
			return
		}
		jr.next++
		rec := storage.Iteration{
			RunID:       jr.run.ID,
			N:           jr.next,
			Files:       it.Files,
			Diagnostics: len(it.Diagnostics),
			Applied:     it.Applied,
			Duration:    it.Duration.Round(time.Millisecond),
			Transcript:  it.Transcript,
		}
		if it.Err != nil {
			rec.Error = it.Err.Error()
		}
		if err := e.journal.RecordIteration(jr.ctx, rec); err != nil {
			e.logger.Warn("Failed to journal iteration", "run", jr.run.ID, "n", jr.next, "error", err.Error())
		}
	})
}
