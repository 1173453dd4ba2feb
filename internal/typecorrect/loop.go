package typecorrect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"jslice/internal/javalang"
	"jslice/internal/slogutil"
)

// DefaultMaxIterations is the loop budget when none is configured.
const DefaultMaxIterations = 10

// Outcome is how a loop run ended.
type Outcome uint8

const (
	// Done means the last pass taught the loop nothing new.
	Done Outcome = iota
	// Exhausted means the budget ran out or the checker could not be
	// used. The last drafted program is still the result.
	Exhausted
)

func (o Outcome) String() string {
	if o == Done {
		return "done"
	}
	return "exhausted"
}

// Drafter writes the program for the current corrections under the loop
// root and returns the files to check, relative to the root.
type Drafter interface {
	Draft(ctx context.Context, c *Corrections) ([]string, error)
}

// DraftFunc adapts a function to Drafter.
type DraftFunc func(ctx context.Context, c *Corrections) ([]string, error)

func (f DraftFunc) Draft(ctx context.Context, c *Corrections) ([]string, error) { return f(ctx, c) }

// Iteration is the record of one Draft, Invoke, Parse and Patch pass.
type Iteration struct {
	N           int
	Files       int
	Diagnostics []Diagnostic
	Applied     int
	// Transcript is the merged checker output of every file.
	Transcript string
	Duration   time.Duration
	Err        error
}

// Observer is told about every iteration as it completes.
type Observer interface {
	Iteration(it Iteration)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(it Iteration)

func (f ObserverFunc) Iteration(it Iteration) { f(it) }

// Report summarizes a loop run.
type Report struct {
	Outcome     Outcome
	Iterations  int
	Corrections *Corrections
	// Remaining is the number of type diagnostics of the last checked
	// draft.
	Remaining int
	// Reason says why the loop stopped.
	Reason string
	// Err is the checker failure that ended the loop, if any.
	Err error
}

// Loop corrects synthetic types from checker diagnostics.
type Loop struct {
	Checker Checker
	Drafter Drafter
	// Root is the source root handed to the checker.
	Root          string
	MaxIterations int
	// Qualify spells a type learned from a diagnostic for use in a
	// synthetic file; see ProgramQualifier.
	Qualify  func(string) string
	Observer Observer
	Logger   *slog.Logger
}

// Run drafts and checks until a pass changes nothing or the budget is
// spent. Checker failures end the loop as Exhausted with a nil error; only
// drafting failures and cancellation are returned as errors.
func (l *Loop) Run(ctx context.Context) (*Report, error) {
	logger := l.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	budget := l.MaxIterations
	if budget <= 0 {
		budget = DefaultMaxIterations
	}

	c := NewCorrections()
	seen := map[string]bool{c.Key(): true}
	report := &Report{Corrections: c}

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		start := time.Now()
		files, err := l.Drafter.Draft(ctx, c)
		if err != nil {
			return report, fmt.Errorf("drafting iteration %d: %w", n, err)
		}
		if n > budget {
			report.Outcome = Exhausted
			report.Reason = fmt.Sprintf("budget of %d iterations spent", budget)
			break
		}
		report.Iterations = n

		it := Iteration{N: n, Files: len(files)}
		var transcript strings.Builder
		for _, f := range files {
			out, err := l.Checker.Check(ctx, l.Root, f)
			transcript.WriteString(out.Text)
			if err != nil {
				it.Err = err
				break
			}
			diags, err := ParseDiagnostics(strings.NewReader(out.Text))
			if err != nil {
				it.Err = fmt.Errorf("%w: reading output for %s: %v", ErrCheckerFailed, f, err)
				break
			}
			it.Diagnostics = append(it.Diagnostics, diags...)
		}
		it.Transcript = transcript.String()

		if it.Err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(it.Err, ErrCheckerTimeout) {
				return report, ctxErr
			}
			it.Duration = time.Since(start)
			l.observe(it)
			logger.Warn("Type checker unusable, keeping current draft",
				"iteration", n,
				"error", it.Err.Error(),
			)
			report.Outcome = Exhausted
			report.Reason = "checker failed"
			report.Err = it.Err
			return report, nil
		}

		for _, d := range it.Diagnostics {
			if c.Apply(d, l.Qualify) {
				it.Applied++
			}
		}
		it.Duration = time.Since(start)
		report.Remaining = len(it.Diagnostics)
		l.observe(it)
		logger.Debug("Oracle iteration",
			"iteration", n,
			"files", it.Files,
			"diagnostics", len(it.Diagnostics),
			"applied", it.Applied,
		)

		key := c.Key()
		switch {
		case len(it.Diagnostics) == 0:
			report.Outcome, report.Reason = Done, "no type diagnostics"
		case it.Applied == 0:
			report.Outcome, report.Reason = Done, "no new corrections"
		case seen[key]:
			report.Outcome, report.Reason = Done, "corrections repeated"
			// leave the tree drafted with what was learned
			if _, err := l.Drafter.Draft(ctx, c); err != nil {
				return report, fmt.Errorf("drafting final iteration: %w", err)
			}
		default:
			seen[key] = true
			continue
		}
		break
	}

	logger.Info("Oracle loop finished",
		"outcome", report.Outcome.String(),
		"iterations", report.Iterations,
		"corrections", c.Len(),
		"reason", report.Reason,
	)
	return report, nil
}

func (l *Loop) observe(it Iteration) {
	if l.Observer != nil {
		l.Observer.Iteration(it)
	}
}

// ProgramQualifier returns a Qualify function that spells the simple names
// of program types by their qualified names. Names shared by two program
// types, java.lang types, primitives and names already qualified are left
// alone.
func ProgramQualifier(qualified []string) func(string) string {
	bySimple := make(map[string]string)
	ambiguous := make(map[string]bool)
	for _, q := range qualified {
		s := javalang.SimpleName(q)
		if prev, ok := bySimple[s]; ok && prev != q {
			ambiguous[s] = true
			continue
		}
		bySimple[s] = q
	}
	return func(t string) string {
		base, dims := t, ""
		if i := strings.IndexByte(t, '['); i >= 0 {
			base, dims = t[:i], t[i:]
		}
		if strings.ContainsAny(base, ".<") || javalang.IsJavaLangOrPrimitive(base) || ambiguous[base] {
			return t
		}
		if q, ok := bySimple[base]; ok {
			return q + dims
		}
		return t
	}
}
