package typecorrect

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

var (
	// ErrCheckerFailed reports a checker that could not run or stopped
	// without printing diagnostics.
	ErrCheckerFailed = errors.New("type checker failed")
	// ErrCheckerTimeout reports a checker that exceeded its deadline.
	ErrCheckerTimeout = errors.New("type checker timed out")
)

// Output is the merged stdout and stderr of one checker run.
type Output struct {
	Text     string
	ExitCode int
	Duration time.Duration
}

// Clean reports a run that compiled without errors.
func (o Output) Clean() bool { return o.ExitCode == 0 }

// Checker compiles one file of a source tree.
type Checker interface {
	Check(ctx context.Context, sourceRoot, file string) (Output, error)
}

// DefaultTimeout bounds a checker run when none is configured.
const DefaultTimeout = 2 * time.Minute

// JavacChecker runs javac with the tree as its source path. Class files
// go to a temporary directory that is removed afterwards.
type JavacChecker struct {
	// Javac is the compiler binary, "javac" when empty.
	Javac     string
	Timeout   time.Duration
	ExtraArgs []string
	Logger    *slog.Logger
}

// Available reports whether the compiler binary can be found.
func (j *JavacChecker) Available() bool {
	_, err := exec.LookPath(j.binary())
	return err == nil
}

func (j *JavacChecker) binary() string {
	if j.Javac == "" {
		return "javac"
	}
	return j.Javac
}

// Check compiles file, relative to sourceRoot.
func (j *JavacChecker) Check(ctx context.Context, sourceRoot, file string) (Output, error) {
	classes, err := os.MkdirTemp("", "jslice-javac-")
	if err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrCheckerFailed, err)
	}
	defer os.RemoveAll(classes)

	timeout := j.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{
		"-d", classes,
		"-sourcepath", sourceRoot,
		filepath.Join(sourceRoot, filepath.FromSlash(file)),
		"-Xmaxerrs", "0",
	}
	args = append(args, j.ExtraArgs...)

	cmd := exec.CommandContext(ctx, j.binary(), args...)
	cmd.Dir = sourceRoot

	start := time.Now()
	// javac reports diagnostics on stderr; both streams are read as one
	output, err := cmd.CombinedOutput()
	out := Output{Text: string(output), Duration: time.Since(start)}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return out, fmt.Errorf("%w: %s after %s", ErrCheckerTimeout, file, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, fmt.Errorf("%w: %v", ErrCheckerFailed, err)
		}
		out.ExitCode = exitErr.ExitCode()
		// exit code 1 with diagnostics means the file does not compile yet
		if out.ExitCode != 1 || !strings.Contains(out.Text, "error:") {
			return out, fmt.Errorf("%w: %s exited with code %d: %s", ErrCheckerFailed, j.binary(), out.ExitCode, firstLine(out.Text))
		}
	}

	if j.Logger != nil {
		j.Logger.Debug("Checked file",
			"file", file,
			"exitCode", out.ExitCode,
			"duration", out.Duration,
		)
	}
	return out, nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
