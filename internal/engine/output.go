package engine

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	jerrors "jslice/internal/errors"
	"jslice/internal/paths"
)

// write replaces the output directory with files and fills in the file
// summaries and digest of rep.
func (e *Engine) write(req Request, rep *Report, files []File) error {
	if err := e.prepareOutput(req.OutDir, req.Overwrite); err != nil {
		return err
	}
	if err := materialize(req.OutDir, files); err != nil {
		return err
	}
	rep.Files = rep.Files[:0]
	for _, f := range files {
		rep.Files = append(rep.Files, FileSummary{
			Path:      f.Path,
			Synthetic: f.Synthetic,
			Bytes:     len(f.Content),
			Digest:    fileDigest(f.Content),
		})
	}
	rep.Digest = sliceDigest(files)
	if e.cfg.Output.Manifest {
		return writeManifest(req.OutDir, newManifest(rep))
	}
	return nil
}

// prepareOutput makes dir an empty directory. An existing non-empty
// directory is only cleared when overwriting and when it holds an earlier
// slice.
func (e *Engine) prepareOutput(dir string, overwrite bool) error {
	entries, err := os.ReadDir(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(dir, 0755); err != nil {
			return jerrors.New(jerrors.OutputFailed, "failed to create output directory", err)
		}
		return nil
	case err != nil:
		return jerrors.New(jerrors.OutputFailed, "failed to read output directory", err)
	case len(entries) == 0:
		return nil
	case !overwrite:
		return jerrors.Newf(jerrors.OutputFailed, "output directory %s is not empty", dir)
	}

	ok, err := previousSlice(dir)
	if err != nil {
		return jerrors.New(jerrors.OutputFailed, "failed to inspect output directory", err)
	}
	if !ok {
		return jerrors.Newf(jerrors.OutputFailed, "output directory %s holds files that are not a slice, refusing to clear it", dir)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return jerrors.New(jerrors.OutputFailed, "failed to clear output directory", err)
		}
	}
	e.logger.Debug("Cleared previous slice", "dir", dir, "entries", len(entries))
	return nil
}

// previousSlice reports whether dir carries a manifest or nothing but
// Java sources.
func previousSlice(dir string) (bool, error) {
	if _, err := os.Stat(filepath.Join(dir, ManifestFileName)); err == nil {
		return true, nil
	}
	only := true
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && !strings.HasSuffix(d.Name(), paths.JavaExt) {
			only = false
			return filepath.SkipAll
		}
		return nil
	})
	return only, err
}
