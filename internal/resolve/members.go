package resolve

import (
	"jslice/internal/ast"
)

// lookup is the outcome of searching a type hierarchy for a member.
type lookup struct {
	found []Declaration
	// uncertain is set when an unresolved supertype might declare the
	// member.
	uncertain bool
	// external is set when a library supertype might declare the member.
	external bool
}

func (l *lookup) merge(o lookup) {
	l.uncertain = l.uncertain || o.uncertain
	l.external = l.external || o.external
}

// anyArity matches callables regardless of their parameter count.
const anyArity = -1

// fieldIn searches decl and its supertypes for a field or enum constant.
func (i *Index) fieldIn(decl ast.NodeID, name string, visited map[ast.NodeID]bool) lookup {
	if visited[decl] {
		return lookup{}
	}
	visited[decl] = true
	a := i.arena
	owner := a.QualifiedName(decl)

	if a.Kind(decl) == ast.KindRecordDecl {
		if params := a.Child(decl, ast.RoleParameters); params != ast.NoNode {
			for _, prm := range a.ChildrenOfKind(params, ast.KindParameter) {
				if a.Node(prm).Name == name {
					return lookup{found: []Declaration{{
						Kind: DeclField, QualifiedName: owner + "#" + name,
						Node: prm, Owner: decl, Type: i.paramType(prm),
					}}}
				}
			}
		}
	}

	if body := a.Child(decl, ast.RoleBody); body != ast.NoNode {
		for _, m := range a.Children(body) {
			switch a.Kind(m) {
			case ast.KindFieldDecl:
				typeNode := a.Child(m, ast.RoleType)
				for _, d := range a.ChildrenOfKind(m, ast.KindVarDeclarator) {
					if a.Node(d).Name == name {
						return lookup{found: []Declaration{{
							Kind: DeclField, QualifiedName: owner + "#" + name,
							Node: d, Owner: decl, Type: i.varType(d, typeNode, ast.NoNode),
						}}}
					}
				}
			case ast.KindEnumConstant:
				if a.Node(m).Name == name {
					return lookup{found: []Declaration{{
						Kind: DeclField, QualifiedName: owner + "#" + name,
						Node: m, Owner: decl, Type: i.programType(decl),
					}}}
				}
			}
		}
	}

	var res lookup
	for _, s := range i.Supertypes(decl) {
		switch {
		case s.Err != nil:
			res.uncertain = true
		case s.Type.Decl != ast.NoNode:
			sub := i.fieldIn(s.Type.Decl, name, visited)
			if len(sub.found) > 0 {
				return sub
			}
			res.merge(sub)
		default:
			res.external = true
		}
	}
	return res
}

// paramCount returns the number of declared parameters and whether the
// last one is variadic.
func (i *Index) paramCount(callable ast.NodeID) (int, bool) {
	a := i.arena
	var params []ast.NodeID
	if a.Kind(callable).IsTypeDecl() {
		// record canonical constructor
		if p := a.Child(callable, ast.RoleParameters); p != ast.NoNode {
			params = a.ChildrenOfKind(p, ast.KindParameter)
		}
	} else if p := a.Child(callable, ast.RoleParameters); p != ast.NoNode {
		params = a.ChildrenOfKind(p, ast.KindParameter)
	} else if a.Kind(callable) == ast.KindConstructorDecl {
		// compact constructor
		if rec := a.EnclosingType(callable); a.Kind(rec) == ast.KindRecordDecl {
			return i.paramCount(rec)
		}
	}
	n := len(params)
	return n, n > 0 && a.Node(params[n-1]).Text == "..."
}

func (i *Index) arityMatches(callable ast.NodeID, arity int) bool {
	if arity == anyArity {
		return true
	}
	n, varargs := i.paramCount(callable)
	return n == arity || (varargs && arity >= n-1)
}

// methodsIn collects the methods named name accepting arity arguments,
// from the first type in the hierarchy that declares any.
func (i *Index) methodsIn(decl ast.NodeID, name string, arity int, visited map[ast.NodeID]bool) lookup {
	if visited[decl] {
		return lookup{}
	}
	visited[decl] = true
	a := i.arena
	owner := a.QualifiedName(decl)

	var res lookup
	if body := a.Child(decl, ast.RoleBody); body != ast.NoNode {
		for _, m := range a.Children(body) {
			k := a.Kind(m)
			if k != ast.KindMethodDecl && k != ast.KindAnnotationMember {
				continue
			}
			if a.Node(m).Name != name || !i.arityMatches(m, arity) {
				continue
			}
			res.found = append(res.found, Declaration{
				Kind: DeclMethod, QualifiedName: owner + "#" + name,
				Node: m, Owner: decl, Type: i.returnType(m),
			})
		}
	}
	if len(res.found) > 0 {
		return res
	}

	switch a.Kind(decl) {
	case ast.KindRecordDecl:
		if arity == 0 || arity == anyArity {
			if params := a.Child(decl, ast.RoleParameters); params != ast.NoNode {
				for _, prm := range a.ChildrenOfKind(params, ast.KindParameter) {
					if a.Node(prm).Name == name {
						return lookup{found: []Declaration{{
							Kind: DeclMethod, QualifiedName: owner + "#" + name,
							Node: prm, Owner: decl, Type: i.paramType(prm),
						}}}
					}
				}
			}
		}
		res.external = true
	case ast.KindEnumDecl:
		// values, valueOf, ordinal and the rest of java.lang.Enum
		res.external = true
	}

	for _, s := range i.Supertypes(decl) {
		switch {
		case s.Err != nil:
			res.uncertain = true
		case s.Type.Decl != ast.NoNode:
			sub := i.methodsIn(s.Type.Decl, name, arity, visited)
			if len(sub.found) > 0 {
				return sub
			}
			res.merge(sub)
		default:
			res.external = true
		}
	}
	return res
}

// ctorsIn returns the constructors of a program type accepting arity
// arguments. A class without constructors has an implicit default one,
// reported with the type declaration as its node.
func (i *Index) ctorsIn(decl ast.NodeID, arity int) []Declaration {
	a := i.arena
	owner := a.QualifiedName(decl)
	var all, out []Declaration
	if body := a.Child(decl, ast.RoleBody); body != ast.NoNode {
		for _, m := range a.ChildrenOfKind(body, ast.KindConstructorDecl) {
			d := Declaration{
				Kind: DeclConstructor, QualifiedName: owner + "#<init>",
				Node: m, Owner: decl, Type: i.programType(decl),
			}
			all = append(all, d)
			if i.arityMatches(m, arity) {
				out = append(out, d)
			}
		}
	}
	if len(out) > 0 {
		return out
	}
	implicit := Declaration{
		Kind: DeclConstructor, QualifiedName: owner + "#<init>",
		Node: decl, Owner: decl, Type: i.programType(decl),
	}
	if len(all) == 0 || a.Kind(decl) == ast.KindRecordDecl {
		return []Declaration{implicit}
	}
	// no arity match: keep the declared constructors reachable
	return all
}

// returnType is the declared return type of a method.
func (i *Index) returnType(m ast.NodeID) Type {
	a := i.arena
	t := i.TypeFromNode(a.Child(m, ast.RoleType))
	if t.Known() {
		t.Dims += a.Node(m).Dims
	}
	return t
}

// Overloads returns the program callables a call, object creation or
// explicit constructor call may invoke, matching on name and arity.
func (i *Index) Overloads(call ast.NodeID) []Declaration {
	d, err := i.Resolve(call)
	if err != nil || d.External() || d.Owner == ast.NoNode {
		return nil
	}
	a := i.arena
	arity := ArgCount(a, call)
	switch d.Kind {
	case DeclMethod:
		return i.methodsIn(d.Owner, a.Node(call).Name, arity, map[ast.NodeID]bool{}).found
	case DeclConstructor:
		return i.ctorsIn(d.Owner, arity)
	}
	return nil
}

// ArgCount returns the number of arguments of a call-like node.
func ArgCount(a *ast.Arena, call ast.NodeID) int {
	args := a.Child(call, ast.RoleArguments)
	if args == ast.NoNode {
		args = a.ChildOfKind(call, ast.KindArguments)
	}
	if args == ast.NoNode {
		return 0
	}
	n := 0
	for _, c := range a.Children(args) {
		if a.Kind(c) != ast.KindComment {
			n++
		}
	}
	return n
}

// externalMember is the declaration reported for members of library
// types.
func externalMember(kind DeclKind, owner, name string, t Type) Declaration {
	return Declaration{Kind: kind, QualifiedName: owner + "#" + name, Node: ast.NoNode, Owner: ast.NoNode, Type: t}
}

// libraryReturn guesses the return type of a few well-known library
// methods, enough to type common receiver chains.
func libraryReturn(owner, name string) Type {
	switch name {
	case "toString", "getMessage", "substring", "trim", "toUpperCase", "toLowerCase":
		return named("java.lang.String")
	case "name", "getName":
		if owner == "java.lang.Enum" || owner == "java.lang.Class" || owner == "java.lang.Thread" {
			return named("java.lang.String")
		}
	case "equals", "isEmpty", "contains", "startsWith", "endsWith", "hasNext":
		return named("boolean")
	case "hashCode", "length", "size", "ordinal", "compareTo", "indexOf":
		return named("int")
	case "getClass":
		return named("java.lang.Class")
	}
	return unknownType
}
