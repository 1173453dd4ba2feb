// Package unsolved invents stand-in declarations for symbols the resolver
// cannot find. Ambiguity is kept as Alternates groups in a per-run
// Registry until the enumerator collapses it.
package unsolved

import (
	"errors"
	"fmt"
	"log/slog"

	"jslice/internal/ast"
	"jslice/internal/javalang"
	"jslice/internal/resolve"
)

// Index is the resolver surface the generator consults. *resolve.Index
// implements it.
type Index interface {
	Resolve(id ast.NodeID) (resolve.Declaration, error)
	LookupType(name string, ctx ast.NodeID) (resolve.Type, error)
	TypeOf(id ast.NodeID) resolve.Type
	TypeFromNodeErr(id ast.NodeID) (resolve.Type, error)
	Supertypes(decl ast.NodeID) []resolve.Super
	Superclass(decl ast.NodeID) (resolve.Super, bool)
	Overloads(call ast.NodeID) []resolve.Declaration
	IsProgramType(qualified string) bool
	TypeDecl(qualified string) (ast.NodeID, bool)
	Arena() *ast.Arena
}

var _ Index = (*resolve.Index)(nil)

// Result reports what one Infer or Reconcile call changed.
type Result struct {
	Added   []Alternates
	Removed []Alternates
	// DropAnnotations lists annotations whose arguments cannot be given a
	// synthetic declaration. They are left out of the slice.
	DropAnnotations []ast.NodeID
}

// Empty reports a result without changes.
func (r Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.DropAnnotations) == 0
}

// InvariantError reports a tree shape the generator relies on not holding.
// It is raised with panic: it indicates a bug, not a property of the input.
type InvariantError struct {
	Node ast.NodeID
	Msg  string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated at node %d: %s", e.Node, e.Msg)
}

func invariant(id ast.NodeID, format string, args ...interface{}) {
	panic(&InvariantError{Node: id, Msg: fmt.Sprintf(format, args...)})
}

// abort unwinds a handler when the registry refuses a change.
type abort struct{ err error }

// Generator turns unresolvable nodes into synthetic groups.
type Generator struct {
	idx    Index
	a      *ast.Arena
	reg    *Registry
	logger *slog.Logger

	// symbols maps use sites to the member group they produced, so that
	// later expressions can be typed by what was generated for them.
	symbols map[ast.NodeID]Alternates
	// typing guards expression typing against cycles through context.
	typing map[ast.NodeID]bool
	// traversing guards supertype walks.
	traversing map[ast.NodeID]bool

	res *Result
}

// NewGenerator creates a generator that records into reg.
func NewGenerator(idx Index, reg *Registry, logger *slog.Logger) *Generator {
	return &Generator{
		idx:        idx,
		a:          idx.Arena(),
		reg:        reg,
		logger:     logger,
		symbols:    make(map[ast.NodeID]Alternates),
		typing:     make(map[ast.NodeID]bool),
		traversing: make(map[ast.NodeID]bool),
	}
}

// Registry returns the registry the generator records into.
func (g *Generator) Registry() *Registry { return g.reg }

// Synthesizes reports the node kinds Infer handles: everything the
// resolver is asked about, plus lambdas and overriding methods.
func Synthesizes(k ast.Kind) bool {
	return resolve.Resolvable(k) || k == ast.KindLambda || k == ast.KindMethodDecl
}

// Infer generates or narrows the synthetic declarations id needs. A node
// that resolves yields an empty result.
func (g *Generator) Infer(id ast.NodeID) (res Result, err error) {
	k := g.a.Kind(id)
	if !Synthesizes(k) {
		return Result{}, nil
	}
	if resolve.Resolvable(k) {
		if _, rerr := g.idx.Resolve(id); rerr == nil {
			return Result{}, nil
		}
	}
	err = g.run(&res, func() { g.infer(id) })
	if err == nil && !res.Empty() {
		g.logger.Debug("Generated synthetic symbols",
			"node", id,
			"kind", k.String(),
			"added", len(res.Added),
			"dropped_annotations", len(res.DropAnnotations),
		)
	}
	return res, err
}

// run executes fn with res as the current result and converts registry
// refusals into errors.
func (g *Generator) run(res *Result, fn func()) (err error) {
	prev := g.res
	g.res = res
	defer func() {
		g.res = prev
		if r := recover(); r != nil {
			a, ok := r.(abort)
			if !ok {
				panic(r)
			}
			err = a.err
		}
	}()
	fn()
	return nil
}

func (g *Generator) check(err error) {
	if err != nil {
		panic(abort{err})
	}
}

// infer dispatches on the node kind. It is also used for scopes and
// arguments that must be generated before their use site.
func (g *Generator) infer(id ast.NodeID) {
	switch g.a.Kind(id) {
	case ast.KindClassType:
		g.inferClassType(id)
	case ast.KindAnnotation:
		g.inferAnnotation(id)
	case ast.KindNameExpr:
		g.inferName(id)
	case ast.KindFieldAccess:
		g.inferFieldAccess(id)
	case ast.KindMethodCall:
		g.inferMethodCall(id)
	case ast.KindObjectCreation:
		g.inferCreation(id)
	case ast.KindExplicitCtorCall:
		g.inferExplicitCtor(id)
	case ast.KindMethodRef:
		g.inferMethodRef(id)
	case ast.KindLambda:
		g.inferLambda(id)
	case ast.KindMethodDecl:
		g.inferOverride(id)
	}
}

// inferNested generates what a sub-expression needs, unless it resolves.
func (g *Generator) inferNested(id ast.NodeID) {
	if id == ast.NoNode {
		return
	}
	k := g.a.Kind(id)
	switch {
	case k == ast.KindParen:
		for _, c := range g.a.Children(id) {
			g.inferNested(c)
		}
		return
	case k == ast.KindLambda:
		g.inferLambda(id)
		return
	case k == ast.KindBinary || k == ast.KindUnary || k == ast.KindConditional || k == ast.KindCast ||
		k == ast.KindArrayAccess || k == ast.KindInstanceOf:
		for _, c := range g.a.Children(id) {
			g.inferNested(c)
		}
		return
	case !resolve.Resolvable(k):
		return
	}
	if _, ok := g.symbols[id]; ok {
		return
	}
	if _, err := g.idx.Resolve(id); err == nil {
		return
	}
	g.infer(id)
}

// findType returns the registered type group claiming any of fqns,
// narrowed to them, or nil.
func (g *Generator) findType(fqns []string) *TypeGroup {
	found, err := g.reg.FindAndNarrow(fqns)
	g.check(err)
	if found == nil {
		return nil
	}
	tg, ok := found.(*TypeGroup)
	if !ok {
		invariant(ast.NoNode, "identity %s claimed by a %s group", fqns[0], found.Kind())
	}
	return tg
}

// findOrCreateType returns the type group for fqns, creating it when no
// group claims any of them.
func (g *Generator) findOrCreateType(fqns []string) *TypeGroup {
	fqns = stripAllDims(fqns)
	if len(fqns) == 0 {
		invariant(ast.NoNode, "type group without candidates")
	}
	if tg := g.findType(fqns); tg != nil {
		return tg
	}
	tg := NewTypeGroup(fqns)
	g.add(tg)
	return tg
}

func (g *Generator) add(grp Alternates) {
	g.check(g.reg.Add(grp))
	if g.res != nil {
		g.res.Added = append(g.res.Added, grp)
	}
}

func (g *Generator) remove(grp Alternates) {
	g.check(g.reg.Remove(grp))
	if g.res != nil {
		g.res.Removed = append(g.res.Removed, grp)
	}
}

// overlapsKnown reports whether any candidate names a program or JDK
// type, in which case nothing is synthesized for the set.
func (g *Generator) overlapsKnown(fqns []string) bool {
	for _, f := range fqns {
		f, _ = splitDims(f)
		if g.idx.IsProgramType(f) || javalang.InJDKPackage(f) || javalang.IsJavaLangOrPrimitive(javalang.SimpleName(f)) {
			return true
		}
	}
	return false
}

// memberType converts a candidate set to a member type, creating the
// synthetic types it needs.
func (g *Generator) memberType(s FQNSet) MemberType {
	switch s.Wildcard {
	case "?":
		if len(s.Erased) == 0 {
			return Wildcard{}
		}
	case "? extends", "? super":
		inner := g.memberType(FQNSet{Erased: s.Erased, TypeArgs: s.TypeArgs})
		return Wildcard{Bound: s.Wildcard[2:], Inner: inner}
	}
	if len(s.Erased) == 0 {
		return SolvedName("java.lang.Object")
	}

	var args []MemberType
	for _, ta := range s.TypeArgs {
		args = append(args, g.memberType(ta))
	}
	for _, f := range s.Erased {
		name, dims := splitDims(f)
		if g.idx.IsProgramType(name) || javalang.InJDKPackage(name) ||
			javalang.IsJavaLangOrPrimitive(javalang.SimpleName(name)) || name == "void" {
			return Solved{Name: name, Dims: dims, Args: args}
		}
	}
	if s.TypeVar {
		t := SolvedName(s.Erased[0])
		t.Args = args
		t.TypeVar = true
		return t
	}
	_, dims := splitDims(s.Erased[0])
	return Unsolved{Group: g.findOrCreateType(s.Erased), Dims: dims, Args: args}
}

// existingMemberType is memberType for sets whose synthetic part must
// already exist. It returns nil otherwise.
func (g *Generator) existingMemberType(s FQNSet) MemberType {
	if s.Empty() || s.Wildcard != "" {
		return nil
	}
	for _, f := range s.Erased {
		name, dims := splitDims(f)
		if g.idx.IsProgramType(name) || javalang.InJDKPackage(name) ||
			javalang.IsJavaLangOrPrimitive(javalang.SimpleName(name)) {
			return Solved{Name: name, Dims: dims}
		}
	}
	tg := g.findType(stripAllDims(s.Erased))
	if tg == nil {
		return nil
	}
	_, dims := splitDims(s.Erased[0])
	return Unsolved{Group: tg, Dims: dims}
}

func stripAllDims(fqns []string) []string {
	out := make([]string, 0, len(fqns))
	for _, f := range fqns {
		name, _ := splitDims(f)
		out = append(out, name)
	}
	return dedup(out)
}

// IsInvariant reports whether err, or a recovered panic value, is an
// InvariantError.
func IsInvariant(v interface{}) (*InvariantError, bool) {
	switch e := v.(type) {
	case *InvariantError:
		return e, true
	case error:
		var ie *InvariantError
		if errors.As(e, &ie) {
			return ie, true
		}
	}
	return nil, false
}
