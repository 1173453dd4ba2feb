// Package slicer computes the dependency closure of a set of target
// members and prunes the program down to it.
//
// The closure is a worklist fixpoint over the rule table: every kept node
// pulls in the nodes it structurally depends on, every resolvable node
// pulls in the declaration it resolves to, and every node the resolver
// cannot explain is handed to the synthetic symbol generator.
package slicer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"jslice/internal/ast"
	"jslice/internal/resolve"
	"jslice/internal/rules"
	"jslice/internal/unsolved"
)

// checkEvery is how many worklist pops pass between context checks.
const checkEvery = 1024

// Result is the closure of one run.
type Result struct {
	Keep *KeepSet
	// Targets are the declaration nodes the targets named, in target order.
	Targets []ast.NodeID
	// Generated lists the synthetic groups of the run in registry order.
	Generated []unsolved.Alternates
	// PostProcess lists the kept nodes revisited for reconciliation.
	PostProcess []ast.NodeID
	// Liveness lists nodes kept only because some alternative may need
	// them.
	Liveness []ast.NodeID
	// UsedUnits are the units touched by the targets or by a successful
	// resolution, sorted by path.
	UsedUnits []*ast.Unit
	// Dropped lists annotations left out because their arguments cannot
	// be synthesized.
	Dropped []ast.NodeID
}

// Slicer runs the closure over one indexed program.
type Slicer struct {
	idx    *resolve.Index
	a      *ast.Arena
	gen    *unsolved.Generator
	logger *slog.Logger

	keep        *KeepSet
	work        worklist
	postProcess []ast.NodeID
	inPost      map[ast.NodeID]bool
	used        map[ast.UnitID]bool
	dropped     map[ast.NodeID]bool
}

// New returns a slicer that generates into gen's registry.
func New(idx *resolve.Index, gen *unsolved.Generator, logger *slog.Logger) *Slicer {
	return &Slicer{
		idx:     idx,
		a:       idx.Arena(),
		gen:     gen,
		logger:  logger,
		keep:    NewKeepSet(),
		inPost:  make(map[ast.NodeID]bool),
		used:    make(map[ast.UnitID]bool),
		dropped: make(map[ast.NodeID]bool),
	}
}

// Run computes the closure of targets. A target that names nothing fails
// the run with TARGET_NOT_FOUND listing every such target.
func (s *Slicer) Run(ctx context.Context, targets []Target) (*Result, error) {
	var seeds, decls []ast.NodeID
	var missing []Target
	for _, t := range targets {
		id, ok := locate(s.idx, t)
		if !ok {
			missing = append(missing, t)
			continue
		}
		decls = append(decls, id)
		seeds = append(seeds, s.seed(id)...)
		s.used[s.a.Node(id).Unit] = true
	}
	if len(missing) > 0 {
		return nil, notFound(missing)
	}

	s.work.pushFront(seeds...)
	if err := s.drain(ctx); err != nil {
		return nil, err
	}

	if s.gen.Registry().Len() > 0 {
		if err := s.reconcile(ctx); err != nil {
			return nil, err
		}
	}

	reg := s.gen.Registry()
	res := &Result{
		Keep:        s.keep,
		Targets:     decls,
		Generated:   reg.Groups(),
		PostProcess: append([]ast.NodeID(nil), s.postProcess...),
		Liveness:    reg.DependentNodes(),
		UsedUnits:   s.usedUnits(),
		Dropped:     sortedIDs(s.dropped),
	}
	s.logger.Debug("Computed slice closure",
		"targets", len(decls),
		"kept", res.Keep.Len(),
		"generated", len(res.Generated),
		"postProcess", len(res.PostProcess),
		"units", len(res.UsedUnits),
	)
	return res, nil
}

// seed returns the nodes a target starts the closure with: the
// declaration and, whole, its body or initializer.
func (s *Slicer) seed(decl ast.NodeID) []ast.NodeID {
	out := []ast.NodeID{decl}
	switch s.a.Kind(decl) {
	case ast.KindVarDeclarator:
		out = append(out, s.a.Parent(decl))
		if v := s.a.Child(decl, ast.RoleValue); v != ast.NoNode {
			out = append(out, v)
		}
	case ast.KindEnumConstant:
		if body := s.a.ChildOfKind(decl, ast.KindClassBody); body != ast.NoNode {
			out = append(out, body)
		}
	default:
		if body := s.a.Child(decl, ast.RoleBody); body != ast.NoNode {
			out = append(out, body)
		}
	}
	return out
}

// drain runs the worklist to its fixpoint.
func (s *Slicer) drain(ctx context.Context) error {
	pops := 0
	for {
		id, ok := s.work.pop()
		if !ok {
			return nil
		}
		if pops++; pops%checkEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if err := s.visit(id); err != nil {
			return err
		}
	}
}

func (s *Slicer) visit(id ast.NodeID) error {
	if s.keep.Contains(id) || s.dropped[id] {
		return nil
	}
	n := s.a.Node(id)

	if resolve.Resolvable(n.Kind) {
		d, err := s.idx.Resolve(id)
		switch {
		case err == nil:
			s.work.pushFront(rules.RelevantDecl(s.a, d)...)
			if !d.External() {
				s.used[s.a.Node(d.Node).Unit] = true
			}
		case errors.Is(err, resolve.ErrUnsolved):
			if err := s.infer(id); err != nil {
				return err
			}
		default:
			return fmt.Errorf("resolving node %d: %w", id, err)
		}
	} else if unsolved.Synthesizes(n.Kind) {
		if err := s.infer(id); err != nil {
			return err
		}
	}
	if s.dropped[id] {
		return nil
	}

	s.keep.Add(id)
	s.work.pushFront(rules.Relevant(s.a, id)...)
	s.keepSpine(id)
	if n.Kind == ast.KindConstructorDecl {
		if call := superCall(s.a, id); call != ast.NoNode {
			s.work.pushFront(call)
		}
	}
	if n.Kind.IsCallableDecl() && s.nestedInCode(id) {
		if body := s.a.Child(id, ast.RoleBody); body != ast.NoNode {
			s.work.pushFront(body)
		}
	}
	if unsolved.NeedsReconcile(n.Kind) && !s.inPost[id] {
		s.inPost[id] = true
		s.postProcess = append(s.postProcess, id)
	}
	return nil
}

// nestedInCode reports whether a member belongs to a local or anonymous
// class, whose members keep their bodies.
func (s *Slicer) nestedInCode(id ast.NodeID) bool {
	return s.a.EnclosingCallable(id) != ast.NoNode || s.a.Ancestor(id, ast.KindObjectCreation) != ast.NoNode
}

// keepSpine keeps the ancestors of id so pruning can reach it. Declaring
// ancestors go through the worklist for their own signatures; statements
// and bodies on the way are kept without their other children.
func (s *Slicer) keepSpine(id ast.NodeID) {
	for p := s.a.Parent(id); p != ast.NoNode && !s.keep.Contains(p); p = s.a.Parent(p) {
		if declaring(s.a.Kind(p)) {
			s.work.pushFront(p)
			return
		}
		s.keep.Add(p)
	}
}

func declaring(k ast.Kind) bool {
	if k.IsTypeDecl() {
		return true
	}
	switch k {
	case ast.KindCompilationUnit, ast.KindClassBody, ast.KindFieldDecl, ast.KindVarDeclarator,
		ast.KindMethodDecl, ast.KindConstructorDecl, ast.KindAnnotationMember, ast.KindEnumConstant,
		ast.KindInitializer:
		return true
	}
	return false
}

// infer hands id to the generator and queues what the generated groups
// make live.
func (s *Slicer) infer(id ast.NodeID) error {
	res, err := s.gen.Infer(id)
	if err != nil {
		return fmt.Errorf("generating for node %d: %w", id, err)
	}
	s.merge(res)
	return nil
}

func (s *Slicer) merge(res unsolved.Result) {
	for _, ann := range res.DropAnnotations {
		s.dropped[ann] = true
	}
	for _, g := range res.Added {
		s.work.pushBack(g.DependentNodes()...)
	}
}

// reconcile revisits the post-process nodes once every first-pass symbol
// exists, then closes over anything the reconciliation made live.
func (s *Slicer) reconcile(ctx context.Context) error {
	for _, id := range s.postProcess {
		res, err := s.gen.Reconcile(id)
		if err != nil {
			return fmt.Errorf("reconciling node %d: %w", id, err)
		}
		s.merge(res)
	}
	s.work.pushBack(s.gen.Registry().DependentNodes()...)
	return s.drain(ctx)
}

// superCall returns the explicit super(...) call opening a constructor
// body when it passes arguments. The call survives pruning so the
// constructor still compiles against a superclass without a nullary
// constructor.
func superCall(a *ast.Arena, ctor ast.NodeID) ast.NodeID {
	body := a.Child(ctor, ast.RoleBody)
	if body == ast.NoNode {
		return ast.NoNode
	}
	for _, c := range a.Children(body) {
		switch a.Kind(c) {
		case ast.KindComment:
			continue
		case ast.KindExplicitCtorCall:
			n := a.Node(c)
			args := a.ChildOfKind(c, ast.KindArguments)
			if n.Text == "super" && args != ast.NoNode && len(a.Children(args)) > 0 {
				return c
			}
		}
		return ast.NoNode
	}
	return ast.NoNode
}

func (s *Slicer) usedUnits() []*ast.Unit {
	out := make([]*ast.Unit, 0, len(s.used))
	for id := range s.used {
		out = append(out, s.a.Unit(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func sortedIDs(set map[ast.NodeID]bool) []ast.NodeID {
	out := make([]ast.NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
