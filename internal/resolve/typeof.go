package resolve

import (
	"jslice/internal/ast"
	"jslice/internal/javalang"
)

// TypeOf returns the best-effort static type of an expression. The result
// is unknown when the expression involves unresolved symbols or constructs
// the index does not type, such as lambdas.
func (i *Index) TypeOf(id ast.NodeID) Type {
	t, err := i.typeOf(id)
	if err != nil {
		return unknownType
	}
	return t
}

// typeOf is TypeOf that reports unresolved symbols on the way.
func (i *Index) typeOf(id ast.NodeID) (Type, error) {
	if id == ast.NoNode {
		return unknownType, nil
	}
	a := i.arena
	n := a.Node(id)
	switch n.Kind {
	case ast.KindLiteral:
		switch n.Name {
		case "String":
			return named("java.lang.String"), nil
		case "null":
			return named("null"), nil
		}
		return named(n.Name), nil

	case ast.KindNameExpr, ast.KindFieldAccess, ast.KindMethodCall:
		d, err := i.Resolve(id)
		if err != nil {
			return unknownType, err
		}
		if d.Kind == DeclPackage {
			return unknownType, nil
		}
		return d.Type, nil

	case ast.KindObjectCreation:
		return i.TypeFromNodeErr(a.Child(id, ast.RoleType))

	case ast.KindThis:
		if s := i.scopeTypes(id); len(s) > 0 {
			return i.entryType(s[0]), nil
		}
		return unknownType, nil

	case ast.KindSuper:
		t, _, err := i.scopeOf(id)
		return t, err

	case ast.KindParen:
		for _, c := range a.Children(id) {
			if a.Kind(c) != ast.KindComment {
				return i.typeOf(c)
			}
		}

	case ast.KindCast:
		return i.TypeFromNodeErr(a.Child(id, ast.RoleType))

	case ast.KindConditional:
		t, err := i.typeOf(a.Child(id, ast.RoleConsequence))
		if err != nil || !t.Known() || t.Name == "null" {
			return i.typeOf(a.Child(id, ast.RoleAlternative))
		}
		return t, nil

	case ast.KindBinary:
		return i.binaryType(id)

	case ast.KindUnary:
		if n.Text == "!" {
			return named("boolean"), nil
		}
		for _, c := range a.Children(id) {
			if a.Kind(c) != ast.KindComment {
				return i.typeOf(c)
			}
		}

	case ast.KindAssign:
		return i.typeOf(a.Child(id, ast.RoleLeft))

	case ast.KindInstanceOf:
		return named("boolean"), nil

	case ast.KindArrayAccess:
		t, err := i.typeOf(a.Child(id, ast.RoleArray))
		return t.Element(), err

	case ast.KindArrayCreation:
		t, err := i.TypeFromNodeErr(a.Child(id, ast.RoleType))
		if !t.Known() {
			return t, err
		}
		t.Dims += n.Dims
		for _, c := range a.Children(id) {
			if a.Kind(c) == ast.KindOther {
				t.Dims++
			}
		}
		return t, err

	case ast.KindClassLiteral:
		for _, c := range a.Children(id) {
			if a.Kind(c).IsTypeRef() {
				arg := i.TypeFromNode(c)
				return Type{Name: "java.lang.Class", Decl: ast.NoNode, Param: ast.NoNode, Args: []Type{javaBox(arg)}}, nil
			}
		}
		return named("java.lang.Class"), nil
	}
	return unknownType, nil
}

func javaBox(t Type) Type {
	if t.Dims == 0 && javalang.IsPrimitive(t.Name) {
		return named("java.lang." + javalang.Box(t.Name))
	}
	return t
}

var booleanOps = map[string]bool{
	"&&": true, "||": true, "==": true, "!=": true,
	"<": true, ">": true, "<=": true, ">=": true,
}

var numericRank = map[string]int{
	"byte": 1, "short": 2, "char": 2, "int": 3, "long": 4, "float": 5, "double": 6,
}

func (i *Index) binaryType(id ast.NodeID) (Type, error) {
	a := i.arena
	op := a.Node(id).Text
	if booleanOps[op] {
		return named("boolean"), nil
	}
	l, lerr := i.typeOf(a.Child(id, ast.RoleLeft))
	r, rerr := i.typeOf(a.Child(id, ast.RoleRight))
	if op == "+" && (l.Name == "java.lang.String" || r.Name == "java.lang.String") {
		return named("java.lang.String"), nil
	}
	if lerr != nil {
		return unknownType, lerr
	}
	if rerr != nil {
		return unknownType, rerr
	}
	if op == "<<" || op == ">>" || op == ">>>" {
		return promote(unbox(l), named("int")), nil
	}
	if unbox(l).Name == "boolean" && unbox(r).Name == "boolean" {
		return named("boolean"), nil
	}
	return promote(unbox(l), unbox(r)), nil
}

func unbox(t Type) Type {
	if t.Dims != 0 || t.Decl != ast.NoNode {
		return t
	}
	for _, p := range []string{"int", "long", "double", "float", "short", "byte", "char", "boolean"} {
		if t.Name == "java.lang."+javalang.Box(p) {
			return named(p)
		}
	}
	return t
}

// promote applies binary numeric promotion.
func promote(l, r Type) Type {
	lr, lok := numericRank[l.Name]
	rr, rok := numericRank[r.Name]
	switch {
	case lok && rok:
		if lr < 3 && rr < 3 {
			return named("int")
		}
		if lr >= rr {
			return l
		}
		return r
	case lok:
		return l
	case rok:
		return r
	}
	return unknownType
}
