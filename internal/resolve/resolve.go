// Package resolve answers "what does this name refer to" for nodes of an
// ast.Arena. The Index implementation knows every type declared in the
// parsed program and treats JDK names as external declarations; anything
// else fails with ErrUnsolved, which callers route to synthetic
// generation.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"jslice/internal/ast"
)

// ErrUnsolved is returned when a node refers to a declaration outside the
// known universe.
var ErrUnsolved = errors.New("unsolved symbol")

// unsolved wraps ErrUnsolved with the symbol text.
func unsolved(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUnsolved, fmt.Sprintf(format, args...))
}

// DeclKind classifies a Declaration.
type DeclKind uint8

const (
	DeclType DeclKind = iota
	DeclField
	DeclMethod
	DeclConstructor
	DeclTypeVar
	DeclLocal
	DeclPackage
)

func (k DeclKind) String() string {
	switch k {
	case DeclType:
		return "type"
	case DeclField:
		return "field"
	case DeclMethod:
		return "method"
	case DeclConstructor:
		return "constructor"
	case DeclTypeVar:
		return "type-variable"
	case DeclLocal:
		return "local"
	case DeclPackage:
		return "package"
	}
	return "unknown"
}

// Declaration is the target of a successful resolution.
type Declaration struct {
	Kind DeclKind
	// QualifiedName is the type name for types, Owner#member for members
	// and the simple name for locals and type variables.
	QualifiedName string
	// Node is the declaring node: a type declaration, variable declarator,
	// enum constant, method, constructor, parameter or type parameter.
	// It is NoNode for library and JDK declarations.
	Node ast.NodeID
	// Owner is the declaring type of a member, or NoNode.
	Owner ast.NodeID
	// Type is the declared type of fields, locals and parameters and the
	// return type of methods, when known.
	Type Type
}

// External reports declarations that live outside the program.
func (d Declaration) External() bool { return d.Node == ast.NoNode }

// Type is a best-effort static type.
type Type struct {
	// Name is a primitive, "void", "null", or an erased qualified class
	// name. The empty name means unknown.
	Name string
	// Decl is the program declaration of Name, or NoNode.
	Decl ast.NodeID
	Dims int
	Args []Type
	// TypeVar marks a type variable; Param is its declaring type parameter.
	TypeVar bool
	Param   ast.NodeID
	// Unresolved marks a class type that was written in the program but
	// does not resolve. Name is then the name as written.
	Unresolved bool
}

// Known reports whether anything is known about the type.
func (t Type) Known() bool { return t.Name != "" }

// Resolved reports a known type that is neither unresolved nor a type
// variable.
func (t Type) Resolved() bool { return t.Known() && !t.Unresolved && !t.TypeVar }

// IsArray reports array types.
func (t Type) IsArray() bool { return t.Dims > 0 }

// Element returns the component type of an array type.
func (t Type) Element() Type {
	if t.Dims == 0 {
		return unknownType
	}
	e := t
	e.Dims--
	return e
}

// String spells the type as Java source.
func (t Type) String() string {
	if t.Name == "" {
		return ""
	}
	var b strings.Builder
	b.WriteString(t.Name)
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			if a.Known() {
				b.WriteString(a.String())
			} else {
				b.WriteByte('?')
			}
		}
		b.WriteByte('>')
	}
	for i := 0; i < t.Dims; i++ {
		b.WriteString("[]")
	}
	return b.String()
}

func named(name string) Type { return Type{Name: name, Decl: ast.NoNode, Param: ast.NoNode} }

// Named returns the type with the given name and no program declaration.
func Named(name string) Type { return named(name) }

var unknownType = Type{Decl: ast.NoNode, Param: ast.NoNode}

// Unknown is the type nothing is known about.
func Unknown() Type { return unknownType }

// Resolver is the capability the slicer consumes.
type Resolver interface {
	Resolve(id ast.NodeID) (Declaration, error)
}

// Resolvable reports the node kinds a Resolver is asked about. Other nodes
// are kept or expanded purely structurally.
func Resolvable(k ast.Kind) bool {
	switch k {
	case ast.KindClassType, ast.KindAnnotation, ast.KindNameExpr, ast.KindFieldAccess,
		ast.KindMethodCall, ast.KindObjectCreation, ast.KindExplicitCtorCall, ast.KindMethodRef:
		return true
	}
	return false
}
