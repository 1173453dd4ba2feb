package unsolved

import (
	"strings"

	"jslice/internal/ast"
	"jslice/internal/javalang"
	"jslice/internal/resolve"
)

// classCandidates computes the Candidate Identity Set of a class name as
// written at ctx. Candidates come from single-type imports (which settle
// the question), program on-demand imports, the current package, and the
// unresolvable supertypes of the type the name is written in, of which
// the name may be a member type.
func (g *Generator) classCandidates(name string, ctx ast.NodeID) []string {
	return g.candidatesFor(name, ctx, true)
}

// candidatesFor is classCandidates with the supertype-member candidates
// optional. Invented type names are never members of a supertype.
func (g *Generator) candidatesFor(name string, ctx ast.NodeID, members bool) []string {
	name, _ = splitDims(javalang.Erase(name))
	if name == "" {
		invariant(ctx, "empty class name")
	}
	head := name
	if i := strings.IndexByte(name, '.'); i >= 0 {
		head = name[:i]
	}
	qualified := javalang.IsClassPath(name) && !javalang.IsCapitalized(head)
	if qualified {
		return []string{name}
	}

	var out []string
	u := g.a.UnitOf(ctx)
	pkg := ""
	if u != nil {
		pkg = u.Package
		for _, imp := range u.Imports {
			if imp.Static {
				continue
			}
			if !imp.Asterisk && imp.Identifier() == head {
				if q := imp.Qualifier(); q != "" {
					return []string{q + "." + name}
				}
				return []string{name}
			}
			if imp.Asterisk && !javalang.InJDKPackage(imp.Name+".") {
				out = append(out, imp.Name+"."+name)
			}
		}
	}

	if pkg != "" {
		out = append(out, pkg+"."+name)
	}
	if pkg == "" || strings.Contains(name, ".") {
		// Outer.Inner may also be written relative to the default package
		out = append(out, name)
	}

	if !members {
		return dedup(out)
	}
	if scope := g.lexicalType(ctx); scope != ast.NoNode && !g.traversing[scope] {
		for _, parent := range g.unresolvableParents(scope) {
			for _, p := range parent {
				out = append(out, p+"."+name)
			}
		}
	}
	return dedup(out)
}

// lexicalType returns the type declaration whose body a name at ctx is
// written in. Names in a type's own header belong to the enclosing type.
func (g *Generator) lexicalType(ctx ast.NodeID) ast.NodeID {
	a := g.a
	for p := a.Parent(ctx); p != ast.NoNode; p = a.Parent(p) {
		switch a.Kind(p) {
		case ast.KindSuperclass, ast.KindSuperInterfaces, ast.KindTypeParameters:
			if decl := a.Parent(p); a.Kind(decl).IsTypeDecl() {
				return a.EnclosingType(decl)
			}
		}
		if a.Kind(p).IsTypeDecl() {
			return p
		}
	}
	return ast.NoNode
}

// unresolvableParents lists, for a type declaration, one candidate set per
// distinct unresolvable supertype reachable through program supertypes.
// Implemented types come before the superclass.
func (g *Generator) unresolvableParents(decl ast.NodeID) [][]string {
	var out [][]string
	seen := make(map[string]bool)
	visited := make(map[ast.NodeID]bool)

	var walk func(d ast.NodeID)
	walk = func(d ast.NodeID) {
		if visited[d] || g.traversing[d] {
			return
		}
		visited[d] = true
		g.traversing[d] = true
		defer delete(g.traversing, d)

		extends, implements := resolve.SupertypeRefs(g.a, d)
		for _, ref := range append(implements, extends...) {
			t, err := g.idx.TypeFromNodeErr(ref)
			if err == nil {
				if t.Decl != ast.NoNode {
					walk(t.Decl)
				}
				continue
			}
			name := g.a.Node(ref).Name
			if seen[name] {
				continue
			}
			seen[name] = true
			out = append(out, g.classCandidates(name, ref))
		}
	}
	walk(decl)
	return out
}

// anonymousScopes returns the candidate sets of the unresolvable types
// instantiated by anonymous classes enclosing id, innermost first.
func (g *Generator) anonymousScopes(id ast.NodeID) [][]string {
	a := g.a
	var out [][]string
	for p := a.Parent(id); p != ast.NoNode; p = a.Parent(p) {
		if a.Kind(p).IsTypeDecl() {
			break
		}
		if a.Kind(p) != ast.KindClassBody || a.Kind(a.Parent(p)) != ast.KindObjectCreation {
			continue
		}
		ref := a.Child(a.Parent(p), ast.RoleType)
		if _, err := g.idx.TypeFromNodeErr(ref); err != nil {
			out = append(out, g.classCandidates(a.Node(ref).Name, ref))
		}
	}
	return out
}

// staticImportOwner returns the class a single static import of name
// comes from.
func (g *Generator) staticImportOwner(id ast.NodeID, name string) (string, bool) {
	u := g.a.UnitOf(id)
	if u == nil {
		return "", false
	}
	for _, imp := range u.Imports {
		if imp.Static && !imp.Asterisk && imp.Identifier() == name {
			return imp.Qualifier(), true
		}
	}
	return "", false
}

// typeImport returns the single-type import of a simple name.
func (g *Generator) typeImport(id ast.NodeID, name string) (string, bool) {
	u := g.a.UnitOf(id)
	if u == nil {
		return "", false
	}
	for _, imp := range u.Imports {
		if !imp.Static && !imp.Asterisk && imp.Identifier() == name {
			return imp.Name, true
		}
	}
	return "", false
}

// locations computes where a member referenced at expr may be declared:
// one candidate set per distinct possible declaring type.
func (g *Generator) locations(expr ast.NodeID) [][]string {
	a := g.a
	n := a.Node(expr)
	obj := a.Child(expr, ast.RoleObject)

	switch {
	case n.Kind == ast.KindObjectCreation:
		ref := a.Child(expr, ast.RoleType)
		return [][]string{g.classCandidates(a.Node(ref).Name, ref)}

	case n.Kind == ast.KindNameExpr || (n.Kind == ast.KindMethodCall && obj == ast.NoNode):
		if owner, ok := g.staticImportOwner(expr, n.Name); ok {
			return [][]string{{owner}}
		}
		out := g.anonymousScopes(expr)
		if decl := a.EnclosingType(expr); decl != ast.NoNode {
			out = append(out, g.unresolvableParents(decl)...)
		}
		if len(out) == 0 && n.Kind == ast.KindNameExpr && javalang.IsClassName(n.Name) && !isConstantName(n.Name) {
			out = append(out, g.classCandidates(n.Name, expr))
		}
		return out
	}

	if obj == ast.NoNode {
		return nil
	}
	switch a.Kind(obj) {
	case ast.KindThis, ast.KindSuper:
		out := g.anonymousScopes(expr)
		if decl := a.EnclosingType(expr); decl != ast.NoNode {
			out = append(out, g.unresolvableParents(decl)...)
		}
		return out
	case ast.KindClassType:
		return g.ownerLocations(g.classCandidates(a.Node(obj).Name, obj))
	case ast.KindNameExpr:
		d, err := g.idx.Resolve(obj)
		if err == nil && d.Kind == resolve.DeclTypeVar {
			return g.typeVarLocations(d.Node)
		}
		if err == nil && d.Kind == resolve.DeclLocal && a.Kind(d.Node) == ast.KindCatchParam {
			if locs, ok := g.catchLocations(d.Node); ok {
				return locs
			}
			return nil
		}
	}
	if t := g.idx.TypeOf(obj); t.TypeVar {
		if t.Dims > 0 {
			return nil
		}
		return g.typeVarLocations(t.Param)
	}
	s := g.exprType(obj, true)
	if s.Empty() || s.Wildcard != "" || s.TypeVar {
		return nil
	}
	return g.ownerLocations(stripAllDims(s.Erased))
}

// ownerLocations turns the candidates of a receiver type into member
// locations. A program type cannot gain members; its unresolvable
// supertypes may declare them instead.
func (g *Generator) ownerLocations(fqns []string) [][]string {
	for _, f := range fqns {
		if decl, ok := g.idx.TypeDecl(f); ok {
			return g.unresolvableParents(decl)
		}
	}
	return [][]string{fqns}
}

// typeVarLocations returns the members' possible owners for a receiver
// whose type is a type variable: its bounds.
func (g *Generator) typeVarLocations(param ast.NodeID) [][]string {
	a := g.a
	if param == ast.NoNode {
		return nil
	}
	var out [][]string
	for _, bound := range a.ChildrenOfKind(param, ast.KindTypeBound) {
		for _, ref := range a.Children(bound) {
			if a.Kind(ref) != ast.KindClassType {
				continue
			}
			t, err := g.idx.TypeFromNodeErr(ref)
			switch {
			case err != nil:
				out = append(out, g.classCandidates(a.Node(ref).Name, ref))
			case t.Decl != ast.NoNode:
				out = append(out, g.unresolvableParents(t.Decl)...)
			}
		}
	}
	return out
}

// catchLocations returns the unresolvable alternatives of a union-typed
// catch parameter. ok is false when any alternative resolves: the member
// is then assumed to be declared by it.
func (g *Generator) catchLocations(param ast.NodeID) ([][]string, bool) {
	a := g.a
	union := a.ChildOfKind(param, ast.KindUnionType)
	if union == ast.NoNode {
		ref := a.Child(param, ast.RoleType)
		if ref == ast.NoNode {
			return nil, false
		}
		if _, err := g.idx.TypeFromNodeErr(ref); err == nil {
			return nil, false
		}
		return [][]string{g.classCandidates(a.Node(ref).Name, ref)}, true
	}
	var out [][]string
	for _, ref := range a.Children(union) {
		if a.Kind(ref) != ast.KindClassType {
			continue
		}
		if _, err := g.idx.TypeFromNodeErr(ref); err == nil {
			return nil, false
		}
		out = append(out, g.classCandidates(a.Node(ref).Name, ref))
	}
	return out, true
}

// isConstantName reports SCREAMING_CASE names, which are fields rather
// than classes even though they are capitalized.
func isConstantName(name string) bool {
	if len(name) < 2 {
		return false
	}
	for _, r := range name {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '_' {
			return false
		}
	}
	return true
}

// isStaticAccess reports whether a member access goes through a type
// name rather than a value.
func (g *Generator) isStaticAccess(expr ast.NodeID) bool {
	a := g.a
	obj := a.Child(expr, ast.RoleObject)
	if obj == ast.NoNode {
		_, ok := g.staticImportOwner(expr, a.Node(expr).Name)
		return ok
	}
	switch a.Kind(obj) {
	case ast.KindClassType:
		return true
	case ast.KindNameExpr, ast.KindFieldAccess:
		if d, err := g.idx.Resolve(obj); err == nil {
			return d.Kind == resolve.DeclType
		}
		chain := resolve.NameChain(a, obj)
		return chain != "" && javalang.IsClassName(chain) && !isConstantName(javalang.SimpleName(chain))
	}
	return false
}
