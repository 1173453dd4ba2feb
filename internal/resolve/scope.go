package resolve

import (
	"jslice/internal/ast"
)

// lookupLocal finds the local variable, parameter or pattern binding
// named name that is visible at id.
func (i *Index) lookupLocal(id ast.NodeID, name string) (Declaration, bool) {
	a := i.arena
	child := id
	for p := a.Parent(id); p != ast.NoNode; child, p = p, a.Parent(p) {
		switch a.Kind(p) {
		case ast.KindForEach:
			if a.Node(p).Name == name && a.Node(child).Role != ast.RoleValue {
				return i.forEachVar(p), true
			}

		case ast.KindFor:
			for _, init := range a.ChildrenWithRole(p, ast.RoleInit) {
				if d, ok := i.declaratorIn(init, name); ok {
					return d, true
				}
			}

		case ast.KindCatch:
			if cp := a.ChildOfKind(p, ast.KindCatchParam); cp != ast.NoNode && a.Node(cp).Name == name {
				return i.local(cp, name, i.TypeFromNode(a.ChildOfKind(cp, ast.KindUnionType, ast.KindClassType))), true
			}

		case ast.KindTry:
			res := a.ChildOfKind(p, ast.KindResources)
			if res == ast.NoNode || child == res {
				break
			}
			for _, r := range a.ChildrenOfKind(res, ast.KindResource) {
				if a.Node(r).Name == name {
					return i.local(r, name, i.varType(r, a.Child(r, ast.RoleType), a.Child(r, ast.RoleValue))), true
				}
			}

		case ast.KindResources:
			// earlier resources are in scope of later ones
			for _, r := range a.Children(p) {
				if r == child {
					break
				}
				if a.Kind(r) == ast.KindResource && a.Node(r).Name == name {
					return i.local(r, name, i.varType(r, a.Child(r, ast.RoleType), a.Child(r, ast.RoleValue))), true
				}
			}

		case ast.KindLambda:
			if prm := i.lambdaParam(p, name); prm != ast.NoNode {
				return i.local(prm, name, i.TypeFromNode(a.Child(prm, ast.RoleType))), true
			}

		case ast.KindMethodDecl, ast.KindConstructorDecl:
			if params := a.Child(p, ast.RoleParameters); params != ast.NoNode {
				for _, prm := range a.ChildrenOfKind(params, ast.KindParameter) {
					if a.Node(prm).Name == name {
						return i.local(prm, name, i.paramType(prm)), true
					}
				}
			}

		case ast.KindIf, ast.KindWhile, ast.KindConditional:
			if cond := a.Child(p, ast.RoleCondition); cond != ast.NoNode && cond != child {
				if d, ok := i.patternBinding(cond, name); ok {
					return d, true
				}
			}

		case ast.KindBinary:
			if a.Node(p).Text == "&&" {
				if left := a.Child(p, ast.RoleLeft); left != ast.NoNode && left != child {
					if d, ok := i.patternBinding(left, name); ok {
						return d, true
					}
				}
			}

		case ast.KindRecordDecl:
			// compact constructors see the components as parameters
			if a.Kind(a.EnclosingCallable(id)) == ast.KindConstructorDecl {
				if params := a.Child(p, ast.RoleParameters); params != ast.NoNode {
					for _, prm := range a.ChildrenOfKind(params, ast.KindParameter) {
						if a.Node(prm).Name == name {
							return i.local(prm, name, i.paramType(prm)), true
						}
					}
				}
			}

		case ast.KindClassBody, ast.KindCompilationUnit:
			// statements are not declared directly in these

		default:
			// blocks, constructor bodies and switch groups
			for _, s := range a.Children(p) {
				if s == child {
					break
				}
				if a.Kind(s) != ast.KindLocalVarDecl {
					continue
				}
				if d, ok := i.declaratorIn(s, name); ok {
					return d, true
				}
			}
		}
	}
	return Declaration{}, false
}

func (i *Index) local(node ast.NodeID, name string, t Type) Declaration {
	return Declaration{Kind: DeclLocal, QualifiedName: name, Node: node, Owner: ast.NoNode, Type: t}
}

// declaratorIn looks for a declarator called name in a local variable
// declaration.
func (i *Index) declaratorIn(decl ast.NodeID, name string) (Declaration, bool) {
	a := i.arena
	if a.Kind(decl) != ast.KindLocalVarDecl {
		return Declaration{}, false
	}
	typeNode := a.Child(decl, ast.RoleType)
	for _, d := range a.ChildrenOfKind(decl, ast.KindVarDeclarator) {
		if a.Node(d).Name == name {
			return i.local(d, name, i.varType(d, typeNode, a.Child(d, ast.RoleValue))), true
		}
	}
	return Declaration{}, false
}

// varType is the type of a variable with the given declared type node,
// falling back to the initializer's type for var.
func (i *Index) varType(declarator, typeNode, value ast.NodeID) Type {
	a := i.arena
	if typeNode == ast.NoNode || a.Node(typeNode).Name == "var" {
		if value == ast.NoNode {
			return unknownType
		}
		return i.TypeOf(value)
	}
	t := i.TypeFromNode(typeNode)
	if t.Known() {
		t.Dims += a.Node(declarator).Dims
	}
	return t
}

func (i *Index) paramType(prm ast.NodeID) Type {
	a := i.arena
	t := i.TypeFromNode(a.Child(prm, ast.RoleType))
	if !t.Known() {
		return t
	}
	t.Dims += a.Node(prm).Dims
	if a.Node(prm).Text == "..." {
		t.Dims++
	}
	return t
}

func (i *Index) forEachVar(fe ast.NodeID) Declaration {
	a := i.arena
	typeNode := a.Child(fe, ast.RoleType)
	var t Type
	if typeNode == ast.NoNode || a.Node(typeNode).Name == "var" {
		it := i.TypeOf(a.Child(fe, ast.RoleValue))
		switch {
		case it.IsArray():
			t = it.Element()
		case len(it.Args) == 1:
			t = it.Args[0]
		default:
			t = unknownType
		}
	} else {
		t = i.TypeFromNode(typeNode)
		if t.Known() {
			t.Dims += a.Node(fe).Dims
		}
	}
	return i.local(fe, a.Node(fe).Name, t)
}

// lambdaParam returns the parameter of a lambda named name.
func (i *Index) lambdaParam(lambda ast.NodeID, name string) ast.NodeID {
	for _, prm := range LambdaParams(i.arena, lambda) {
		if i.arena.Node(prm).Name == name {
			return prm
		}
	}
	return ast.NoNode
}

// LambdaParams returns the parameter nodes of a lambda expression in
// order, whichever syntax declared them.
func LambdaParams(a *ast.Arena, lambda ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, c := range a.Children(lambda) {
		switch a.Kind(c) {
		case ast.KindParameter:
			out = append(out, c)
		case ast.KindParameters:
			out = append(out, a.ChildrenOfKind(c, ast.KindParameter)...)
		}
	}
	return out
}

// patternBinding finds an instanceof pattern variable declared in cond.
func (i *Index) patternBinding(cond ast.NodeID, name string) (Declaration, bool) {
	a := i.arena
	found := ast.NoNode
	a.Walk(cond, func(id ast.NodeID) bool {
		if found != ast.NoNode {
			return false
		}
		switch a.Kind(id) {
		case ast.KindLambda, ast.KindClassBody:
			return false
		case ast.KindInstanceOf:
			if a.Node(id).Name == name {
				found = id
				return false
			}
		}
		return true
	})
	if found == ast.NoNode {
		return Declaration{}, false
	}
	return i.local(found, name, i.TypeFromNode(instanceOfType(a, found))), true
}

// instanceOfType returns the tested type node of an instanceof expression.
func instanceOfType(a *ast.Arena, io ast.NodeID) ast.NodeID {
	if t := a.Child(io, ast.RoleRight); t != ast.NoNode {
		return t
	}
	for _, c := range a.Children(io) {
		if a.Kind(c).IsTypeRef() {
			return c
		}
	}
	return ast.NoNode
}
