package engine

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	jerrors "jslice/internal/errors"
	"jslice/internal/paths"
	"jslice/internal/telemetry"
	"jslice/internal/typecorrect"
)

// FileCheck is the checker verdict on one file.
type FileCheck struct {
	Path        string                   `json:"path"`
	ExitCode    int                      `json:"exitCode"`
	Diagnostics []typecorrect.Diagnostic `json:"diagnostics,omitempty"`
	Duration    time.Duration            `json:"duration"`
}

// CheckReport is the result of checking an output directory.
type CheckReport struct {
	Dir   string      `json:"dir"`
	Files []FileCheck `json:"files"`
	// Diagnostics counts the type diagnostics of all files.
	Diagnostics int `json:"diagnostics"`
}

// Clean reports that every file compiled.
func (r *CheckReport) Clean() bool {
	for _, f := range r.Files {
		if f.ExitCode != 0 {
			return false
		}
	}
	return true
}

// Check runs the type checker over a written slice without changing it.
// With a manifest only the files pruned from the input are checked; the
// checker reaches synthetic files through the source path.
func (e *Engine) Check(ctx context.Context, dir string) (rep *CheckReport, err error) {
	ctx, span := telemetry.StartSpan(ctx, telemetry.StageOracle, attribute.String("jslice.out", dir))
	defer func() { telemetry.EndSpan(span, err) }()

	files, err := checkTargets(dir)
	if err != nil {
		return nil, err
	}
	rep = &CheckReport{Dir: dir}
	for _, file := range files {
		out, err := e.checker.Check(ctx, dir, file)
		if err != nil {
			if ctx.Err() != nil && !errors.Is(err, typecorrect.ErrCheckerTimeout) {
				return rep, ctx.Err()
			}
			return rep, jerrors.New(checkerCode(err), "type checker failed on "+file, err)
		}
		diags, _ := typecorrect.ParseDiagnostics(strings.NewReader(out.Text))
		rep.Files = append(rep.Files, FileCheck{
			Path:        file,
			ExitCode:    out.ExitCode,
			Diagnostics: diags,
			Duration:    out.Duration,
		})
		rep.Diagnostics += len(diags)
	}
	e.logger.Info("Checked slice", "dir", dir, "files", len(rep.Files), "diagnostics", rep.Diagnostics, "clean", rep.Clean())
	return rep, nil
}

func checkTargets(dir string) ([]string, error) {
	if m, err := ReadManifest(dir); err == nil {
		var out []string
		for _, f := range m.Files {
			if !f.Synthetic {
				out = append(out, f.Path)
			}
		}
		return out, nil
	}
	var out []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), paths.JavaExt) {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		out = append(out, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, jerrors.New(jerrors.OutputFailed, "failed to list "+dir, err)
	}
	sort.Strings(out)
	return out, nil
}
