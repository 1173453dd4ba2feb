package engine

import (
	"os"
	"path/filepath"
	"sort"

	"jslice/internal/ast"
	"jslice/internal/enumerate"
	jerrors "jslice/internal/errors"
	"jslice/internal/slicer"
	"jslice/internal/typecorrect"
	"jslice/internal/unsolved"
)

// File is one compilation unit of the slice, relative to the output root.
type File struct {
	Path    string
	Content []byte
	// Synthetic files were generated rather than pruned from the input.
	Synthetic bool
}

// program is everything needed to render the slice again under different
// choices and corrections.
type program struct {
	arena   *ast.Arena
	reg     *unsolved.Registry
	closure *slicer.Result
	passes  []CorrectionPass
	opts    enumerate.Options
}

// render collapses the synthetic symbols, prunes the input and runs the
// correction passes. Files are sorted by path.
func (p *program) render(opts enumerate.Options, c *typecorrect.Corrections) ([]File, []enumerate.Choice, error) {
	if c != nil {
		opts.Corrections = c
	}
	res, err := enumerate.Collapse(p.reg, p.closure.Liveness, opts)
	if err != nil {
		return nil, nil, jerrors.New(jerrors.ConfigInvalid, "cannot collapse synthetic symbols", err)
	}

	discard := make([]ast.NodeID, 0, len(res.Discard)+len(p.closure.Dropped))
	discard = append(discard, res.Discard...)
	discard = append(discard, p.closure.Dropped...)

	byPath := make(map[string]int)
	var files []File
	for _, u := range slicer.Prune(p.arena, p.closure.Keep, discard, p.arena.SortedUnits()) {
		byPath[u.Path] = len(files)
		files = append(files, File{Path: u.Path, Content: u.Content})
	}
	for _, f := range res.Files {
		if _, ok := byPath[f.Path]; ok {
			opts.Logger.Warn("Synthetic type collides with an input file, keeping the input",
				"path", f.Path,
				"type", f.Qualified,
			)
			continue
		}
		files = append(files, File{Path: f.Path, Content: f.Content, Synthetic: true})
	}

	for i := range files {
		for _, pass := range p.passes {
			out, err := pass.Correct(files[i])
			if err != nil {
				return nil, nil, jerrors.New(jerrors.InternalError, "correction pass "+pass.Name()+" failed on "+files[i].Path, err)
			}
			files[i] = out
		}
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, res.Choices, nil
}

// candidates lists the enumeration options the oracle should try. Under
// the all policy every combination becomes one input-condition program,
// the first of them the best-effort one.
func (p *program) candidates() ([]enumerate.Options, error) {
	if p.opts.Policy != enumerate.All {
		return []enumerate.Options{p.opts}, nil
	}
	en, err := enumerate.New(p.reg, p.opts)
	if err != nil {
		return nil, jerrors.New(jerrors.ConfigInvalid, "cannot enumerate synthetic symbols", err)
	}
	var out []enumerate.Options
	en.Each(p.closure.Liveness, func(res enumerate.Result) bool {
		ids := make(enumerate.IdentityChooser, 0, len(res.Choices))
		for _, c := range res.Choices {
			ids = append(ids, c.Identity)
		}
		o := p.opts
		o.Policy = enumerate.InputCondition
		o.Chooser = ids
		out = append(out, o)
		return true
	})
	return out, nil
}

// materialize writes files under dir.
func materialize(dir string, files []File) error {
	for _, f := range files {
		path := filepath.Join(dir, filepath.FromSlash(f.Path))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return jerrors.New(jerrors.OutputFailed, "failed to create "+filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.Content, 0644); err != nil {
			return jerrors.New(jerrors.OutputFailed, "failed to write "+path, err)
		}
	}
	return nil
}
