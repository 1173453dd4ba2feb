// Package rules is the dependency rule table: given a node, or a resolved
// declaration, it lists the nodes that must be kept along with it. The
// rules are purely structural and never consult resolver state.
package rules

import (
	"fmt"

	"jslice/internal/ast"
	"jslice/internal/resolve"
)

// Relevant returns the nodes id structurally depends on, in source order.
// Declarations contribute their signature parts only: type declarations
// stop at their supertypes and callables stop at their parameters and
// thrown types. Statements and expressions depend on all their children
// because reaching one means it sits inside a kept body.
func Relevant(a *ast.Arena, id ast.NodeID) []ast.NodeID {
	n := a.Node(id)
	switch n.Kind {
	case ast.KindCompilationUnit, ast.KindPackageDecl, ast.KindImportDecl, ast.KindComment:
		return nil

	case ast.KindClassDecl, ast.KindInterfaceDecl, ast.KindAnnotationDecl:
		return pick(a, id, func(c *ast.Node) bool {
			return isSignaturePart(c.Kind)
		})

	case ast.KindEnumDecl:
		out := pick(a, id, func(c *ast.Node) bool { return isSignaturePart(c.Kind) })
		if body := a.Child(id, ast.RoleBody); body != ast.NoNode {
			out = append(out, a.ChildrenOfKind(body, ast.KindEnumConstant)...)
		}
		return out

	case ast.KindRecordDecl:
		return pick(a, id, func(c *ast.Node) bool {
			return isSignaturePart(c.Kind) || c.Kind == ast.KindParameters
		})

	case ast.KindClassBody:
		switch a.Kind(n.Parent) {
		case ast.KindObjectCreation, ast.KindEnumConstant:
			return all(a, id)
		}
		// members of named types are pulled in one by one
		return nil

	case ast.KindEnumConstant:
		return pick(a, id, func(c *ast.Node) bool {
			return c.Kind == ast.KindModifiers || c.Kind == ast.KindAnnotation || c.Kind == ast.KindArguments
		})

	case ast.KindMethodDecl, ast.KindConstructorDecl, ast.KindAnnotationMember:
		return pick(a, id, func(c *ast.Node) bool {
			switch c.Kind {
			case ast.KindModifiers, ast.KindTypeParameters, ast.KindParameters, ast.KindThrows:
				return true
			}
			if c.Role == ast.RoleType {
				return true
			}
			// an annotation element's default value
			return n.Kind == ast.KindAnnotationMember && c.Role == ast.RoleValue
		})

	case ast.KindFieldDecl:
		return pick(a, id, func(c *ast.Node) bool {
			return c.Kind == ast.KindModifiers || c.Role == ast.RoleType
		})

	case ast.KindVarDeclarator:
		if a.Kind(n.Parent) == ast.KindFieldDecl {
			// the initializer is seeded only for target fields
			return nil
		}
		return all(a, id)

	case ast.KindInitializer:
		return all(a, id)

	case ast.KindModifiers, ast.KindAnnotation, ast.KindAnnotationArgs, ast.KindElementValuePair,
		ast.KindParameters, ast.KindParameter, ast.KindTypeParameters, ast.KindTypeParameter,
		ast.KindTypeBound, ast.KindSuperclass, ast.KindSuperInterfaces, ast.KindThrows:
		return all(a, id)

	case ast.KindClassType, ast.KindArrayType, ast.KindTypeArguments, ast.KindWildcard, ast.KindUnionType:
		return all(a, id)

	case ast.KindPrimitiveType:
		return nil

	case ast.KindBlock, ast.KindLocalVarDecl, ast.KindExprStmt, ast.KindIf, ast.KindWhile, ast.KindDo,
		ast.KindFor, ast.KindForEach, ast.KindReturn, ast.KindThrow, ast.KindTry, ast.KindResources,
		ast.KindResource, ast.KindCatch, ast.KindCatchParam, ast.KindFinally, ast.KindSwitch,
		ast.KindExplicitCtorCall:
		return all(a, id)

	case ast.KindNameExpr, ast.KindFieldAccess, ast.KindMethodCall, ast.KindArguments,
		ast.KindObjectCreation, ast.KindLambda, ast.KindMethodRef, ast.KindLiteral, ast.KindBinary,
		ast.KindUnary, ast.KindAssign, ast.KindConditional, ast.KindInstanceOf, ast.KindCast,
		ast.KindThis, ast.KindSuper, ast.KindClassLiteral, ast.KindArrayAccess, ast.KindArrayCreation,
		ast.KindArrayInit, ast.KindParen:
		return all(a, id)

	case ast.KindOther:
		return all(a, id)
	}
	panic(fmt.Sprintf("rules: unhandled node kind %s", n.Kind))
}

// RelevantDecl returns the nodes a successful resolution pulls in. Types
// contribute their declaration, members their declaration and declaring
// type. Library declarations, locals and packages contribute nothing:
// locals live inside a body that is already kept.
func RelevantDecl(a *ast.Arena, d resolve.Declaration) []ast.NodeID {
	if d.External() {
		return nil
	}
	switch d.Kind {
	case resolve.DeclType, resolve.DeclTypeVar:
		return []ast.NodeID{d.Node}

	case resolve.DeclMethod:
		return withOwner(d.Owner, d.Node)

	case resolve.DeclConstructor:
		if d.Node == d.Owner {
			// implicit default constructor
			return withOwner(d.Owner)
		}
		return withOwner(d.Owner, d.Node)

	case resolve.DeclField:
		if a.Kind(d.Node) == ast.KindVarDeclarator {
			return withOwner(d.Owner, d.Node, a.Parent(d.Node))
		}
		return withOwner(d.Owner, d.Node)

	case resolve.DeclLocal, resolve.DeclPackage:
		return nil
	}
	panic(fmt.Sprintf("rules: unhandled declaration kind %s", d.Kind))
}

func withOwner(owner ast.NodeID, nodes ...ast.NodeID) []ast.NodeID {
	if owner != ast.NoNode {
		nodes = append(nodes, owner)
	}
	return nodes
}

// isSignaturePart reports the children of a type declaration that belong
// to its header.
func isSignaturePart(k ast.Kind) bool {
	switch k {
	case ast.KindModifiers, ast.KindTypeParameters, ast.KindSuperclass, ast.KindSuperInterfaces:
		return true
	}
	return false
}

func pick(a *ast.Arena, id ast.NodeID, keep func(*ast.Node) bool) []ast.NodeID {
	var out []ast.NodeID
	for _, c := range a.Children(id) {
		if keep(a.Node(c)) {
			out = append(out, c)
		}
	}
	return out
}

func all(a *ast.Arena, id ast.NodeID) []ast.NodeID {
	var out []ast.NodeID
	for _, c := range a.Children(id) {
		if a.Kind(c) != ast.KindComment {
			out = append(out, c)
		}
	}
	return out
}
