// Package javasrc parses Java source roots into an ast.Arena.
package javasrc

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"jslice/internal/ast"
	slerrors "jslice/internal/errors"
	"jslice/internal/paths"
)

// LoaderOptions configures a Loader.
type LoaderOptions struct {
	Workers      int
	MaxFileBytes int64
	// Exclude holds slash-separated glob patterns matched against
	// root-relative paths.
	Exclude []string
}

// Loader discovers and parses every .java file under a root.
type Loader struct {
	opts   LoaderOptions
	logger *slog.Logger
}

// Skipped records a file the loader did not place in the arena.
type Skipped struct {
	Path   string
	Reason string
}

// LoadResult is the outcome of LoadRoot.
type LoadResult struct {
	Arena   *ast.Arena
	Skipped []Skipped
}

// NewLoader creates a loader.
func NewLoader(opts LoaderOptions, logger *slog.Logger) *Loader {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Loader{opts: opts, logger: logger}
}

// LoadRoot parses the source root concurrently and appends the units to a
// fresh arena in sorted path order, so node ids do not depend on worker
// scheduling. Files that fail to parse are skipped with a warning; a build
// without a parser fails immediately.
func (l *Loader) LoadRoot(ctx context.Context, root string) (*LoadResult, error) {
	if !Available() {
		return nil, slerrors.New(slerrors.ParserUnavailable, "Java parsing requires a cgo build (tree-sitter)", nil)
	}

	files, skipped, err := l.discover(root)
	if err != nil {
		return nil, err
	}

	parsed := make([]*ast.File, len(files))
	reasons := make([]string, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)
	jobs := make(chan int)

	for w := 0; w < l.opts.Workers; w++ {
		g.Go(func() error {
			p := NewParser()
			defer p.Close()
			for i := range jobs {
				src, err := os.ReadFile(paths.JoinRootPath(root, files[i]))
				if err != nil {
					return slerrors.New(slerrors.ParseFailed, files[i], err)
				}
				f, err := p.Parse(gctx, files[i], src)
				if err != nil {
					if slerrors.Is(err, slerrors.ParseFailed) {
						reasons[i] = err.Error()
						continue
					}
					return err
				}
				parsed[i] = f
			}
			return nil
		})
	}

	go func() {
		defer close(jobs)
		for i := range files {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return
			}
		}
	}()

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	arena := ast.NewArena()
	for i, f := range parsed {
		if f == nil {
			if reasons[i] != "" {
				l.logger.Warn("Skipping unparsable source file", "path", files[i], "error", reasons[i])
				skipped = append(skipped, Skipped{Path: files[i], Reason: reasons[i]})
			}
			continue
		}
		arena.Append(f)
	}

	l.logger.Debug("Loaded source root",
		"root", root,
		"units", len(arena.Units()),
		"nodes", arena.Len(),
		"skipped", len(skipped),
	)
	return &LoadResult{Arena: arena, Skipped: skipped}, nil
}

// discover lists .java files under root as sorted canonical paths.
func (l *Loader) discover(root string) ([]string, []Skipped, error) {
	var files []string
	var skipped []Skipped
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && paths.IsHiddenOrBuildDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), paths.JavaExt) {
			return nil
		}
		rel, err := paths.CanonicalizePath(path, root)
		if err != nil {
			return err
		}
		if l.excluded(rel) {
			return nil
		}
		if l.opts.MaxFileBytes > 0 {
			info, err := d.Info()
			if err != nil {
				return err
			}
			if info.Size() > l.opts.MaxFileBytes {
				l.logger.Warn("Skipping oversized source file", "path", rel, "bytes", info.Size())
				skipped = append(skipped, Skipped{Path: rel, Reason: "exceeds parse.maxFileBytes"})
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, nil, slerrors.New(slerrors.ParseFailed, "walking source root "+root, err)
	}
	sort.Strings(files)
	return files, skipped, nil
}

func (l *Loader) excluded(rel string) bool {
	for _, pattern := range l.opts.Exclude {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if strings.HasSuffix(pattern, "/**") && strings.HasPrefix(rel, strings.TrimSuffix(pattern, "**")) {
			return true
		}
	}
	return false
}

// ParseSource parses a single in-memory unit into a one-unit arena. It is
// used by tests and by the check command for synthetic files.
func ParseSource(ctx context.Context, path, source string) (*ast.Arena, error) {
	p := NewParser()
	defer p.Close()
	f, err := p.Parse(ctx, path, []byte(source))
	if err != nil {
		return nil, err
	}
	a := ast.NewArena()
	a.Append(f)
	return a, nil
}

// ParseSources parses several in-memory units, keyed by canonical path,
// into one arena in sorted path order.
func ParseSources(ctx context.Context, sources map[string]string) (*ast.Arena, error) {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	p := NewParser()
	defer p.Close()
	a := ast.NewArena()
	for _, name := range names {
		f, err := p.Parse(ctx, name, []byte(sources[name]))
		if err != nil {
			return nil, err
		}
		a.Append(f)
	}
	return a, nil
}
