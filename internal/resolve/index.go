package resolve

import (
	"strings"

	"jslice/internal/ast"
	"jslice/internal/javalang"
)

// Index resolves names against the types declared in an arena. It is
// built once per run and is not safe for concurrent use: supertype
// lookups are memoized as they are first requested.
type Index struct {
	arena *ast.Arena
	// types maps qualified names of top-level and member types to their
	// declarations. Local and anonymous classes are found through scope.
	types    map[string]ast.NodeID
	packages map[string]bool

	supers    map[ast.NodeID][]Super
	computing map[ast.NodeID]bool
}

// Super is one declared supertype of a type declaration.
type Super struct {
	// Ref is the type reference node in the extends or implements clause.
	Ref ast.NodeID
	// Extends is true for a class's superclass and for the types an
	// interface extends.
	Extends bool
	Type    Type
	// Err is non-nil when the supertype could not be resolved.
	Err error
}

// NewIndex indexes every type declared in the arena.
func NewIndex(a *ast.Arena) *Index {
	idx := &Index{
		arena:     a,
		types:     make(map[string]ast.NodeID),
		packages:  make(map[string]bool),
		supers:    make(map[ast.NodeID][]Super),
		computing: make(map[ast.NodeID]bool),
	}
	for _, u := range a.Units() {
		for pkg := u.Package; pkg != ""; {
			idx.packages[pkg] = true
			i := strings.LastIndexByte(pkg, '.')
			if i < 0 {
				break
			}
			pkg = pkg[:i]
		}
		for _, td := range a.TypeDecls(u) {
			if !idx.isMemberOrTopLevel(td) {
				continue
			}
			qn := a.QualifiedName(td)
			if _, dup := idx.types[qn]; !dup {
				idx.types[qn] = td
			}
		}
	}
	return idx
}

func (i *Index) isMemberOrTopLevel(td ast.NodeID) bool {
	p := i.arena.Parent(td)
	switch i.arena.Kind(p) {
	case ast.KindCompilationUnit:
		return true
	case ast.KindClassBody:
		return i.arena.Kind(i.arena.Parent(p)).IsTypeDecl()
	}
	return false
}

// Arena returns the indexed arena.
func (i *Index) Arena() *ast.Arena { return i.arena }

// TypeDecl returns the declaration of a program type by qualified name.
func (i *Index) TypeDecl(qualified string) (ast.NodeID, bool) {
	id, ok := i.types[qualified]
	return id, ok
}

// IsProgramType reports whether qualified names a type declared in the
// program.
func (i *Index) IsProgramType(qualified string) bool {
	_, ok := i.types[javalang.Erase(qualified)]
	return ok
}

// ProgramTypes returns the qualified names of all indexed types.
func (i *Index) ProgramTypes() []string {
	out := make([]string, 0, len(i.types))
	for qn := range i.types {
		out = append(out, qn)
	}
	return out
}

// IsPackage reports whether name is a program package or a prefix of
// one, or a JDK package.
func (i *Index) IsPackage(name string) bool {
	if i.packages[name] {
		return true
	}
	switch name {
	case "java", "javax", "jdk", "com", "com.sun":
		return true
	}
	return javalang.InJDKPackage(name+".") && !javalang.IsCapitalized(lastSegment(name))
}

func (i *Index) programType(decl ast.NodeID) Type {
	return Type{Name: i.arena.QualifiedName(decl), Decl: decl, Param: ast.NoNode}
}

// LookupType resolves a possibly dotted type name as written at ctx.
// Names are tried as type variables and local classes, member types of
// the enclosing types and their supertypes, single-type imports, the
// current package, on-demand program imports, java.lang, on-demand JDK
// imports, and finally as fully qualified names.
func (i *Index) LookupType(name string, ctx ast.NodeID) (Type, error) {
	name = javalang.Erase(name)
	if name == "" {
		return unknownType, unsolved("empty type name")
	}
	if javalang.IsPrimitive(name) || name == "void" {
		return named(name), nil
	}
	if name == "var" {
		return unknownType, nil
	}

	first, rest := name, ""
	if j := strings.IndexByte(name, '.'); j >= 0 {
		first, rest = name[:j], name[j+1:]
	}

	t, err := i.lookupSimple(first, ctx)
	if err == nil {
		if rest == "" {
			return t, nil
		}
		return i.lookupNested(t, rest)
	}
	if rest != "" {
		if qt, qerr := i.lookupQualified(name); qerr == nil {
			return qt, nil
		}
	}
	return unknownType, err
}

// lookupNested resolves the dotted member-type path rest inside t.
func (i *Index) lookupNested(t Type, rest string) (Type, error) {
	if t.TypeVar {
		return unknownType, unsolved("member type %s of type variable %s", rest, t.Name)
	}
	if t.Decl == ast.NoNode {
		return named(t.Name + "." + rest), nil
	}
	decl := t.Decl
	for _, seg := range strings.Split(rest, ".") {
		next, _ := i.memberType(decl, seg, map[ast.NodeID]bool{})
		if next == ast.NoNode {
			return unknownType, unsolved("%s.%s", i.arena.QualifiedName(decl), seg)
		}
		decl = next
	}
	return i.programType(decl), nil
}

// lookupQualified resolves a fully qualified name.
func (i *Index) lookupQualified(name string) (Type, error) {
	segs := strings.Split(name, ".")
	for n := len(segs); n >= 1; n-- {
		prefix := strings.Join(segs[:n], ".")
		if decl, ok := i.types[prefix]; ok {
			if n == len(segs) {
				return i.programType(decl), nil
			}
			return i.lookupNested(i.programType(decl), strings.Join(segs[n:], "."))
		}
	}
	if javalang.InJDKPackage(name) {
		return named(name), nil
	}
	return unknownType, unsolved("%s", name)
}

func (i *Index) lookupSimple(simple string, ctx ast.NodeID) (Type, error) {
	a := i.arena
	if ctx != ast.NoNode {
		if tp := i.lookupTypeVar(simple, ctx); tp != ast.NoNode {
			return Type{Name: simple, Decl: ast.NoNode, TypeVar: true, Param: tp}, nil
		}
		if lc := i.lookupLocalClass(simple, ctx); lc != ast.NoNode {
			return Type{Name: a.Node(lc).Name, Decl: lc, Param: ast.NoNode}, nil
		}
	}

	uncertain := false
	if ctx != ast.NoNode {
		for t := i.enclosingTypeOrSelf(ctx); t != ast.NoNode; t = a.EnclosingType(t) {
			if a.Node(t).Name == simple {
				return i.programType(t), nil
			}
			m, unc := i.memberType(t, simple, map[ast.NodeID]bool{})
			if m != ast.NoNode {
				return i.programType(m), nil
			}
			uncertain = uncertain || unc
		}
	}

	var u *ast.Unit
	if ctx != ast.NoNode {
		u = a.UnitOf(ctx)
	}

	if u != nil {
		for _, imp := range u.Imports {
			if imp.Asterisk || imp.Identifier() != simple {
				continue
			}
			if imp.Static && !javalang.IsCapitalized(simple) {
				continue
			}
			if t, err := i.lookupQualified(imp.Name); err == nil {
				return t, nil
			}
			return unknownType, unsolved("%s imported from %s", simple, imp.Qualifier())
		}

		local := simple
		if u.Package != "" {
			local = u.Package + "." + simple
		}
		if decl, ok := i.types[local]; ok {
			return i.programType(decl), nil
		}

		for _, imp := range u.Imports {
			if !imp.Asterisk {
				continue
			}
			if decl, ok := i.types[imp.Name+"."+simple]; ok {
				return i.programType(decl), nil
			}
			if owner, ok := i.types[imp.Name]; ok {
				if m, _ := i.memberType(owner, simple, map[ast.NodeID]bool{}); m != ast.NoNode {
					return i.programType(m), nil
				}
			}
		}
	}

	if javalang.IsJavaLangName(simple) {
		return named("java.lang." + simple), nil
	}

	if u != nil {
		foreignAsterisk := false
		var jdkGuess string
		for _, imp := range u.Imports {
			if !imp.Asterisk || imp.Static {
				continue
			}
			if !javalang.InJDKPackage(imp.Name) {
				if !i.IsPackage(imp.Name) {
					foreignAsterisk = true
				}
				continue
			}
			member, known := javalang.JDKPackageMember(imp.Name, simple)
			if member {
				return named(imp.Name + "." + simple), nil
			}
			if !known && jdkGuess == "" {
				jdkGuess = imp.Name + "." + simple
			}
		}
		if jdkGuess != "" && !foreignAsterisk {
			return named(jdkGuess), nil
		}
	}

	if uncertain {
		return unknownType, unsolved("%s may be inherited from an unresolved supertype", simple)
	}
	return unknownType, unsolved("%s", simple)
}

// enclosingTypeOrSelf returns ctx when it is a type declaration and its
// enclosing type otherwise.
func (i *Index) enclosingTypeOrSelf(ctx ast.NodeID) ast.NodeID {
	if i.arena.Kind(ctx).IsTypeDecl() {
		return ctx
	}
	return i.arena.EnclosingType(ctx)
}

// lookupTypeVar finds a type parameter named simple declared by ctx or
// one of its ancestors.
func (i *Index) lookupTypeVar(simple string, ctx ast.NodeID) ast.NodeID {
	a := i.arena
	for p := ctx; p != ast.NoNode; p = a.Parent(p) {
		k := a.Kind(p)
		if !k.IsTypeDecl() && !k.IsCallableDecl() {
			continue
		}
		tps := a.Child(p, ast.RoleTypeParameters)
		if tps == ast.NoNode {
			continue
		}
		for _, tp := range a.ChildrenOfKind(tps, ast.KindTypeParameter) {
			if a.Node(tp).Name == simple {
				return tp
			}
		}
	}
	return ast.NoNode
}

// lookupLocalClass finds a class declared in an enclosing block.
func (i *Index) lookupLocalClass(simple string, ctx ast.NodeID) ast.NodeID {
	a := i.arena
	for p := a.Parent(ctx); p != ast.NoNode; p = a.Parent(p) {
		if a.Kind(p) != ast.KindBlock {
			continue
		}
		for _, c := range a.Children(p) {
			if a.Kind(c).IsTypeDecl() && a.Node(c).Name == simple {
				return c
			}
		}
	}
	return ast.NoNode
}

// memberType finds a member type named simple declared in or inherited by
// decl. uncertain reports that some supertype on the way could not be
// resolved and might declare it.
func (i *Index) memberType(decl ast.NodeID, simple string, visited map[ast.NodeID]bool) (ast.NodeID, bool) {
	if visited[decl] {
		return ast.NoNode, false
	}
	visited[decl] = true
	a := i.arena
	if body := a.Child(decl, ast.RoleBody); body != ast.NoNode {
		for _, c := range a.Children(body) {
			if a.Kind(c).IsTypeDecl() && a.Node(c).Name == simple {
				return c, false
			}
		}
	}
	uncertain := false
	for _, s := range i.Supertypes(decl) {
		if s.Err != nil {
			uncertain = true
			continue
		}
		if s.Type.Decl == ast.NoNode {
			continue
		}
		if m, unc := i.memberType(s.Type.Decl, simple, visited); m != ast.NoNode {
			return m, false
		} else if unc {
			uncertain = true
		}
	}
	return ast.NoNode, uncertain
}

// SupertypeRefs returns the type references in the extends and implements
// clauses of a type declaration.
func SupertypeRefs(a *ast.Arena, decl ast.NodeID) (extends, implements []ast.NodeID) {
	for _, c := range a.Children(decl) {
		switch a.Kind(c) {
		case ast.KindSuperclass:
			extends = append(extends, typeRefs(a, c)...)
		case ast.KindSuperInterfaces:
			implements = append(implements, typeRefs(a, c)...)
		}
	}
	return extends, implements
}

func typeRefs(a *ast.Arena, clause ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, c := range a.Children(clause) {
		if a.Kind(c) == ast.KindClassType {
			out = append(out, c)
		}
	}
	return out
}

// Supertypes resolves the declared supertypes of a type declaration,
// superclass first. Results are memoized.
func (i *Index) Supertypes(decl ast.NodeID) []Super {
	if s, ok := i.supers[decl]; ok {
		return s
	}
	if i.computing[decl] {
		return nil
	}
	i.computing[decl] = true
	defer delete(i.computing, decl)

	extends, implements := SupertypeRefs(i.arena, decl)
	var out []Super
	for _, ref := range extends {
		t, err := i.TypeFromNodeErr(ref)
		out = append(out, Super{Ref: ref, Extends: true, Type: t, Err: err})
	}
	for _, ref := range implements {
		t, err := i.TypeFromNodeErr(ref)
		out = append(out, Super{Ref: ref, Type: t, Err: err})
	}
	i.supers[decl] = out
	return out
}

// Superclass returns the resolved superclass of a class declaration.
// ok is false when the class has no extends clause.
func (i *Index) Superclass(decl ast.NodeID) (Super, bool) {
	if i.arena.IsInterfaceLike(decl) {
		return Super{}, false
	}
	for _, s := range i.Supertypes(decl) {
		if s.Extends {
			return s, true
		}
	}
	return Super{}, false
}

// HasUnresolvedSupertype reports whether decl or one of its program
// supertypes has a supertype that does not resolve.
func (i *Index) HasUnresolvedSupertype(decl ast.NodeID) bool {
	return i.hasUnresolvedSuper(decl, map[ast.NodeID]bool{})
}

func (i *Index) hasUnresolvedSuper(decl ast.NodeID, visited map[ast.NodeID]bool) bool {
	if visited[decl] {
		return false
	}
	visited[decl] = true
	for _, s := range i.Supertypes(decl) {
		if s.Err != nil {
			return true
		}
		if s.Type.Decl != ast.NoNode && i.hasUnresolvedSuper(s.Type.Decl, visited) {
			return true
		}
	}
	return false
}

// TypeFromNode converts a type reference node to a Type. Unresolvable
// class types keep their written name and are marked Unresolved.
func (i *Index) TypeFromNode(id ast.NodeID) Type {
	t, _ := i.TypeFromNodeErr(id)
	return t
}

// TypeFromNodeErr is TypeFromNode that also reports resolution failure of
// the outermost class type.
func (i *Index) TypeFromNodeErr(id ast.NodeID) (Type, error) {
	if id == ast.NoNode {
		return unknownType, nil
	}
	a := i.arena
	n := a.Node(id)
	switch n.Kind {
	case ast.KindPrimitiveType:
		t := named(n.Name)
		t.Dims = n.Dims
		return t, nil
	case ast.KindArrayType:
		elem := a.Child(id, ast.RoleElement)
		if elem == ast.NoNode {
			for _, c := range a.Children(id) {
				if a.Kind(c).IsTypeRef() {
					elem = c
					break
				}
			}
		}
		t, err := i.TypeFromNodeErr(elem)
		t.Dims += n.Dims
		return t, err
	case ast.KindClassType:
		if n.Name == "var" {
			return unknownType, nil
		}
		t, err := i.LookupType(n.Name, id)
		if err != nil {
			t = Type{Name: n.Name, Decl: ast.NoNode, Param: ast.NoNode, Unresolved: true}
		}
		t.Dims += n.Dims
		if targs := a.Child(id, ast.RoleTypeArguments); targs != ast.NoNode {
			for _, c := range a.Children(targs) {
				if a.Kind(c) == ast.KindComment {
					continue
				}
				t.Args = append(t.Args, i.TypeFromNode(c))
			}
		}
		return t, err
	case ast.KindUnionType:
		for _, c := range a.Children(id) {
			if a.Kind(c).IsTypeRef() {
				return i.TypeFromNodeErr(c)
			}
		}
	}
	return unknownType, nil
}

func lastSegment(name string) string {
	if j := strings.LastIndexByte(name, '.'); j >= 0 {
		return name[j+1:]
	}
	return name
}
