// Package enumerate collapses the ambiguous synthetic symbols of a run
// into one concrete synthetic program and renders it as Java sources.
package enumerate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"jslice/internal/ast"
	"jslice/internal/slogutil"
	"jslice/internal/unsolved"
)

// DefaultMaxCombinations bounds the All policy when Options leaves it zero.
const DefaultMaxCombinations = 64

// ErrNoChooser is returned for the input-condition policy without a
// Chooser.
var ErrNoChooser = errors.New("enumerate: input-condition policy needs a chooser")

// Corrections rewrites synthetic types while rendering. The oracle loop
// implements it from checker diagnostics.
type Corrections interface {
	// Replacement returns the type to declare wherever the synthetic type
	// spelled simple was declared.
	Replacement(simple string) (string, bool)
	// Supertype returns a type the synthetic type spelled simple must
	// extend.
	Supertype(simple string) (string, bool)
}

// Options configures a collapse.
type Options struct {
	Policy  Policy
	Chooser Chooser
	// MaxCombinations bounds Each under the All policy.
	MaxCombinations int
	Corrections     Corrections
	// IsProgramType reports names declared by the input program. Nested
	// synthetic types whose outer type is a program type are skipped.
	IsProgramType func(qualified string) bool
	Logger        *slog.Logger
}

// File is one rendered synthetic compilation unit.
type File struct {
	// Path is relative to the output root: com/example/Foo.java.
	Path      string
	Qualified string
	Content   []byte
}

// Choice records the alternative taken for one group.
type Choice struct {
	Group    unsolved.Alternates
	Index    int
	Identity string
}

// Result is one concrete synthetic program.
type Result struct {
	// Files are sorted by path.
	Files []File
	// Discard lists liveness nodes no chosen alternative preserves.
	Discard []ast.NodeID
	// Choices follow registry insertion order.
	Choices []Choice
}

// Collapse freezes reg and renders one concrete program chosen by
// opts.Policy. liveness holds the nodes kept only because some
// alternative may need them.
func Collapse(reg *unsolved.Registry, liveness []ast.NodeID, opts Options) (Result, error) {
	e, err := New(reg, opts)
	if err != nil {
		return Result{}, err
	}
	return e.Collapse(liveness)
}

// Enumerator renders choices over a frozen registry.
type Enumerator struct {
	reg    *unsolved.Registry
	groups []unsolved.Alternates
	opts   Options
	logger *slog.Logger
}

// New freezes reg and returns an enumerator over its groups.
func New(reg *unsolved.Registry, opts Options) (*Enumerator, error) {
	if opts.Policy == InputCondition && opts.Chooser == nil {
		return nil, ErrNoChooser
	}
	if opts.MaxCombinations <= 0 {
		opts.MaxCombinations = DefaultMaxCombinations
	}
	logger := opts.Logger
	if logger == nil {
		logger = slogutil.NewDiscardLogger()
	}
	reg.Freeze()
	return &Enumerator{reg: reg, groups: reg.Groups(), opts: opts, logger: logger}, nil
}

// Collapse renders the program the policy selects. Under All it is the
// first combination of Each.
func (e *Enumerator) Collapse(liveness []ast.NodeID) (Result, error) {
	idx := make([]int, len(e.groups))
	if e.opts.Policy == InputCondition {
		for i, g := range e.groups {
			n, ok := e.opts.Chooser.Choose(g)
			if !ok {
				continue
			}
			if n < 0 || n >= g.Len() {
				return Result{}, fmt.Errorf("enumerate: chooser picked alternative %d of %d for %s", n, g.Len(), Identity(g, 0))
			}
			idx[i] = n
		}
	}
	res := e.render(idx, liveness)
	e.logger.Debug("Collapsed synthetic symbols",
		"policy", e.opts.Policy.String(),
		"groups", len(e.groups),
		"files", len(res.Files),
		"discard", len(res.Discard),
	)
	return res, nil
}

// Combinations returns the size of the cross product of all groups, or
// -1 when it exceeds limit.
func (e *Enumerator) Combinations(limit int) int {
	total := 1
	for _, g := range e.groups {
		total *= g.Len()
		if total > limit {
			return -1
		}
	}
	return total
}

// Each renders combinations of alternatives in odometer order, the last
// group varying fastest, until fn returns false or MaxCombinations
// programs were rendered. The first combination is the best-effort one.
func (e *Enumerator) Each(liveness []ast.NodeID, fn func(Result) bool) int {
	idx := make([]int, len(e.groups))
	n := 0
	for n < e.opts.MaxCombinations {
		n++
		if !fn(e.render(idx, liveness)) {
			return n
		}
		if !e.advance(idx) {
			return n
		}
	}
	e.logger.Warn("Stopped enumerating synthetic programs",
		"rendered", n,
		"maxCombinations", e.opts.MaxCombinations,
	)
	return n
}

func (e *Enumerator) advance(idx []int) bool {
	for i := len(idx) - 1; i >= 0; i-- {
		idx[i]++
		if idx[i] < e.groups[i].Len() {
			return true
		}
		idx[i] = 0
	}
	return false
}

// selection is one alternative per group, resolved to declarations.
type selection struct {
	typeFQN map[*unsolved.TypeGroup]string
	fields  map[*unsolved.TypeGroup][]chosenField
	methods map[*unsolved.TypeGroup][]chosenMethod
	choices []Choice
	keep    map[ast.NodeID]bool
}

type chosenField struct {
	group   *unsolved.FieldGroup
	variant unsolved.FieldVariant
}

type chosenMethod struct {
	group   *unsolved.MethodGroup
	variant unsolved.MethodVariant
}

func (e *Enumerator) selectAll(idx []int) *selection {
	s := &selection{
		typeFQN: make(map[*unsolved.TypeGroup]string),
		fields:  make(map[*unsolved.TypeGroup][]chosenField),
		methods: make(map[*unsolved.TypeGroup][]chosenMethod),
		keep:    make(map[ast.NodeID]bool),
	}
	// types first: member identities spell the chosen declaring name
	for i, g := range e.groups {
		if tg, ok := g.(*unsolved.TypeGroup); ok {
			s.typeFQN[tg] = tg.FQNs()[idx[i]]
		}
	}
	for i, g := range e.groups {
		switch v := g.(type) {
		case *unsolved.TypeGroup:
			s.choices = append(s.choices, Choice{Group: v, Index: idx[i], Identity: s.typeFQN[v]})
		case *unsolved.FieldGroup:
			decl, fv := split(v.Declaring(), v.Variants(), idx[i])
			s.fields[decl] = append(s.fields[decl], chosenField{group: v, variant: fv})
			for _, id := range fv.MustPreserve {
				s.keep[id] = true
			}
			s.choices = append(s.choices, Choice{Group: v, Index: idx[i], Identity: s.name(decl) + "#" + v.Name})
		case *unsolved.MethodGroup:
			decl, mv := split(v.Declaring(), v.Variants(), idx[i])
			s.methods[decl] = append(s.methods[decl], chosenMethod{group: v, variant: mv})
			for _, id := range mv.MustPreserve {
				s.keep[id] = true
			}
			s.choices = append(s.choices, Choice{Group: v, Index: idx[i], Identity: s.name(decl) + "#" + v.Signature(mv)})
		}
	}
	return s
}

// name is the chosen name of a type group. Groups removed from the
// registry keep their first candidate.
func (s *selection) name(tg *unsolved.TypeGroup) string {
	if n, ok := s.typeFQN[tg]; ok {
		return n
	}
	return tg.FQNs()[0]
}

// split maps a member alternative index to its declaring type and
// variant: declaring types vary slowest.
func split[V any](decl []*unsolved.TypeGroup, variants []V, i int) (*unsolved.TypeGroup, V) {
	n := len(variants)
	return decl[i/n], variants[i%n]
}

// Identity spells alternative i of g. Member identities use the first
// candidate name of the declaring type.
func Identity(g unsolved.Alternates, i int) string {
	switch v := g.(type) {
	case *unsolved.TypeGroup:
		return v.FQNs()[i]
	case *unsolved.FieldGroup:
		decl, _ := split(v.Declaring(), v.Variants(), i)
		return decl.FQNs()[0] + "#" + v.Name
	case *unsolved.MethodGroup:
		decl, mv := split(v.Declaring(), v.Variants(), i)
		return decl.FQNs()[0] + "#" + v.Signature(mv)
	}
	return ""
}

func (e *Enumerator) render(idx []int, liveness []ast.NodeID) Result {
	s := e.selectAll(idx)
	r := newRenderer(s, e.reg, e.opts, e.logger)
	files := r.files()
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var discard []ast.NodeID
	seen := make(map[ast.NodeID]bool, len(liveness))
	for _, id := range liveness {
		if !s.keep[id] && !seen[id] {
			seen[id] = true
			discard = append(discard, id)
		}
	}
	sort.Slice(discard, func(i, j int) bool { return discard[i] < discard[j] })
	return Result{Files: files, Discard: discard, Choices: s.choices}
}
