package resolve

import (
	"fmt"
	"strings"

	"jslice/internal/ast"
	"jslice/internal/javalang"
)

// Resolve finds the declaration a reference node refers to. It fails with
// ErrUnsolved when the declaration lies outside the program and is not
// a JDK declaration.
func (i *Index) Resolve(id ast.NodeID) (Declaration, error) {
	a := i.arena
	switch a.Kind(id) {
	case ast.KindClassType:
		return i.resolveTypeName(a.Node(id).Name, id)
	case ast.KindAnnotation:
		return i.resolveTypeName(a.Node(id).Name, id)
	case ast.KindNameExpr:
		return i.resolveName(id)
	case ast.KindFieldAccess:
		return i.resolveFieldAccess(id)
	case ast.KindMethodCall:
		return i.resolveCall(id)
	case ast.KindObjectCreation:
		return i.resolveCreation(id)
	case ast.KindExplicitCtorCall:
		return i.resolveExplicitCtor(id)
	case ast.KindMethodRef:
		return i.resolveMethodRef(id)
	}
	return Declaration{}, fmt.Errorf("resolve: %s nodes do not refer to declarations", a.Kind(id))
}

func (i *Index) resolveTypeName(name string, ctx ast.NodeID) (Declaration, error) {
	name = javalang.Erase(name)
	if name == "var" {
		return Declaration{Kind: DeclType, QualifiedName: name, Node: ast.NoNode, Owner: ast.NoNode}, nil
	}
	t, err := i.LookupType(name, ctx)
	if err != nil {
		return Declaration{}, err
	}
	return typeDecl(t), nil
}

func typeDecl(t Type) Declaration {
	if t.TypeVar {
		return Declaration{Kind: DeclTypeVar, QualifiedName: t.Name, Node: t.Param, Owner: ast.NoNode, Type: t}
	}
	return Declaration{Kind: DeclType, QualifiedName: t.Name, Node: t.Decl, Owner: ast.NoNode, Type: t}
}

// scopeEntry is one type whose members are in scope at a node, innermost
// first.
type scopeEntry struct {
	decl       ast.NodeID
	name       string
	unresolved bool
}

// scopeTypes lists the named and anonymous classes enclosing id.
func (i *Index) scopeTypes(id ast.NodeID) []scopeEntry {
	a := i.arena
	var out []scopeEntry
	for p := a.Parent(id); p != ast.NoNode; p = a.Parent(p) {
		k := a.Kind(p)
		switch {
		case k.IsTypeDecl():
			out = append(out, scopeEntry{decl: p, name: a.QualifiedName(p)})
		case k == ast.KindClassBody && a.Kind(a.Parent(p)) == ast.KindObjectCreation:
			ref := a.Child(a.Parent(p), ast.RoleType)
			t, err := i.TypeFromNodeErr(ref)
			out = append(out, scopeEntry{decl: t.Decl, name: t.Name, unresolved: err != nil})
		case k == ast.KindClassBody && a.Kind(a.Parent(p)) == ast.KindEnumConstant:
			// constant bodies extend the enum, which comes next anyway
		}
	}
	return out
}

// staticImportOwners returns the owners of single static imports of name
// and of all static on-demand imports, in declaration order.
func staticImportOwners(u *ast.Unit, name string) (single, onDemand []string) {
	if u == nil {
		return nil, nil
	}
	for _, imp := range u.Imports {
		if !imp.Static {
			continue
		}
		if imp.Asterisk {
			onDemand = append(onDemand, imp.Name)
		} else if imp.Identifier() == name {
			single = append(single, imp.Qualifier())
		}
	}
	return single, onDemand
}

func (i *Index) resolveName(id ast.NodeID) (Declaration, error) {
	a := i.arena
	name := a.Node(id).Name

	if d, ok := i.lookupLocal(id, name); ok {
		return d, nil
	}

	uncertain, external := false, false
	for _, s := range i.scopeTypes(id) {
		switch {
		case s.unresolved:
			uncertain = true
		case s.decl == ast.NoNode:
			external = true
		default:
			l := i.fieldIn(s.decl, name, map[ast.NodeID]bool{})
			if len(l.found) > 0 {
				return l.found[0], nil
			}
			uncertain = uncertain || l.uncertain
			external = external || l.external
		}
	}

	u := a.UnitOf(id)
	single, onDemand := staticImportOwners(u, name)
	for _, owner := range single {
		if d, ok, err := i.staticField(owner, name); ok || err != nil {
			return d, err
		}
	}

	if uncertain && !javalang.IsCapitalized(name) {
		return Declaration{}, unsolved("%s may be inherited from an unresolved supertype", name)
	}

	if t, err := i.LookupType(name, id); err == nil {
		return typeDecl(t), nil
	} else if uncertain {
		return Declaration{}, err
	}

	for _, owner := range onDemand {
		if decl, ok := i.types[owner]; ok {
			if l := i.fieldIn(decl, name, map[ast.NodeID]bool{}); len(l.found) > 0 {
				return l.found[0], nil
			}
		}
	}

	if i.isPackageHead(id) {
		return Declaration{Kind: DeclPackage, QualifiedName: name, Node: ast.NoNode, Owner: ast.NoNode}, nil
	}

	if external {
		return externalMember(DeclField, "", name, unknownType), nil
	}
	for _, owner := range onDemand {
		if _, ok := i.types[owner]; !ok && javalang.InJDKPackage(owner) {
			return externalMember(DeclField, owner, name, unknownType), nil
		}
	}
	return Declaration{}, unsolved("%s", name)
}

// staticField resolves a statically imported field. ok is false when the
// owner is a program type that does not declare the field.
func (i *Index) staticField(owner, name string) (Declaration, bool, error) {
	t, err := i.lookupQualified(owner)
	if err != nil {
		return Declaration{}, false, unsolved("%s.%s", owner, name)
	}
	if t.Decl == ast.NoNode {
		return externalMember(DeclField, t.Name, name, unknownType), true, nil
	}
	l := i.fieldIn(t.Decl, name, map[ast.NodeID]bool{})
	if len(l.found) > 0 {
		return l.found[0], true, nil
	}
	return Declaration{}, false, nil
}

// NameChain spells a chain of simple names and field accesses such as
// a.b.C as a dotted string, or returns "" for any other expression.
func NameChain(a *ast.Arena, id ast.NodeID) string {
	switch a.Kind(id) {
	case ast.KindNameExpr:
		return a.Node(id).Name
	case ast.KindFieldAccess:
		obj := NameChain(a, a.Child(id, ast.RoleObject))
		if obj == "" {
			return ""
		}
		return obj + "." + a.Node(id).Name
	}
	return ""
}

// isPackageHead reports whether a lowercase name starts a qualified type
// name such as java.util.List or com.example.Foo.
func (i *Index) isPackageHead(id ast.NodeID) bool {
	a := i.arena
	name := NameChain(a, id)
	if name == "" || javalang.IsCapitalized(javalang.SimpleName(name)) {
		return false
	}
	if i.IsPackage(name) {
		return true
	}
	// the chain continues into a capitalized segment
	p := a.Parent(id)
	return a.Kind(p) == ast.KindFieldAccess && a.Child(p, ast.RoleObject) == id &&
		(javalang.IsCapitalized(a.Node(p).Name) || i.isPackageHead(p))
}

// scopeOf types the object of a member access. static is true when the
// object names a type rather than a value.
func (i *Index) scopeOf(obj ast.NodeID) (t Type, static bool, err error) {
	a := i.arena
	switch a.Kind(obj) {
	case ast.KindNameExpr, ast.KindFieldAccess, ast.KindClassType:
		d, err := i.Resolve(obj)
		if err != nil {
			return unknownType, false, err
		}
		switch d.Kind {
		case DeclType, DeclTypeVar:
			return d.Type, true, nil
		case DeclPackage:
			return unknownType, false, unsolved("%s is a package", NameChain(a, obj))
		}
		return d.Type, false, nil
	case ast.KindThis:
		if s := i.scopeTypes(obj); len(s) > 0 {
			return i.entryType(s[0]), false, nil
		}
	case ast.KindSuper:
		if s := i.scopeTypes(obj); len(s) > 0 && s[0].decl != ast.NoNode {
			if sup, ok := i.Superclass(s[0].decl); ok {
				return sup.Type, false, sup.Err
			}
			return named("java.lang.Object"), false, nil
		}
	}
	t, err = i.typeOf(obj)
	return t, false, err
}

func (i *Index) entryType(s scopeEntry) Type {
	if s.unresolved {
		return Type{Name: s.name, Decl: ast.NoNode, Param: ast.NoNode, Unresolved: true}
	}
	if s.decl == ast.NoNode {
		return named(s.name)
	}
	return i.programType(s.decl)
}

// memberField resolves a field of a receiver type.
func (i *Index) memberField(t Type, name string) (Declaration, error) {
	switch {
	case t.IsArray():
		if name == "length" {
			return externalMember(DeclField, "array", name, named("int")), nil
		}
		return Declaration{}, unsolved("%s.%s", t, name)
	case t.Unresolved:
		return Declaration{}, unsolved("%s.%s", t.Name, name)
	case t.TypeVar:
		return i.boundMember(t, name, func(b Type) (Declaration, error) { return i.memberField(b, name) },
			func() Declaration { return externalMember(DeclField, t.Name, name, unknownType) })
	case t.Decl != ast.NoNode:
		l := i.fieldIn(t.Decl, name, map[ast.NodeID]bool{})
		switch {
		case len(l.found) > 0:
			return l.found[0], nil
		case l.uncertain:
			return Declaration{}, unsolved("%s.%s", t.Name, name)
		case l.external:
			return externalMember(DeclField, t.Name, name, unknownType), nil
		}
		// a member type used as a qualifier
		if m, _ := i.memberType(t.Decl, name, map[ast.NodeID]bool{}); m != ast.NoNode {
			return typeDecl(i.programType(m)), nil
		}
		return Declaration{}, unsolved("%s.%s", t.Name, name)
	case t.Known():
		return externalMember(DeclField, t.Name, name, libraryField(t.Name, name)), nil
	}
	return Declaration{}, unsolved("%s", name)
}

func libraryField(owner, name string) Type {
	if owner == "java.lang.System" && (name == "out" || name == "err") {
		return named("java.io.PrintStream")
	}
	return unknownType
}

func (i *Index) resolveFieldAccess(id ast.NodeID) (Declaration, error) {
	a := i.arena
	name := a.Node(id).Name
	obj := a.Child(id, ast.RoleObject)

	if chain := NameChain(a, id); chain != "" {
		root := chain[:strings.IndexByte(chain, '.')]
		if _, local := i.lookupLocal(id, root); !local && !javalang.IsCapitalized(root) {
			if javalang.IsCapitalized(name) {
				if t, err := i.lookupQualified(chain); err == nil {
					return typeDecl(t), nil
				}
			} else if i.isPackageHead(id) {
				return Declaration{Kind: DeclPackage, QualifiedName: chain, Node: ast.NoNode, Owner: ast.NoNode}, nil
			}
		}
	}

	t, _, err := i.scopeOf(obj)
	if err != nil {
		return Declaration{}, err
	}
	if t.Name == "" && !t.Unresolved {
		// an external value of unknown type
		return externalMember(DeclField, "", name, unknownType), nil
	}
	return i.memberField(t, name)
}

// memberMethod resolves a method of a receiver type.
func (i *Index) memberMethod(t Type, name string, arity int) (Declaration, error) {
	switch {
	case t.IsArray():
		return externalMember(DeclMethod, "array", name, libraryReturn("", name)), nil
	case t.Unresolved:
		return Declaration{}, unsolved("%s.%s()", t.Name, name)
	case t.TypeVar:
		return i.boundMember(t, name, func(b Type) (Declaration, error) { return i.memberMethod(b, name, arity) },
			func() Declaration { return externalMember(DeclMethod, t.Name, name, libraryReturn("", name)) })
	case t.Decl != ast.NoNode:
		l := i.methodsIn(t.Decl, name, arity, map[ast.NodeID]bool{})
		switch {
		case len(l.found) > 0:
			return l.found[0], nil
		case l.uncertain:
			return Declaration{}, unsolved("%s.%s()", t.Name, name)
		case l.external, javalang.IsObjectMethod(name):
			return externalMember(DeclMethod, t.Name, name, libraryReturn(t.Name, name)), nil
		}
		return Declaration{}, unsolved("%s.%s()", t.Name, name)
	case t.Known():
		return externalMember(DeclMethod, t.Name, name, libraryReturn(t.Name, name)), nil
	}
	return Declaration{}, unsolved("%s()", name)
}

// boundMember looks a member up on the bounds of a type variable. A
// member no bound declares is unsolved while any bound is unresolvable;
// without bounds it is one of Object's.
func (i *Index) boundMember(t Type, name string, lookup func(Type) (Declaration, error), object func() Declaration) (Declaration, error) {
	bounds := i.typeVarBounds(t)
	if len(bounds) == 0 {
		return object(), nil
	}
	for _, b := range bounds {
		if b.Unresolved {
			continue
		}
		if d, err := lookup(b); err == nil {
			return d, nil
		}
	}
	return Declaration{}, unsolved("%s.%s", t.Name, name)
}

// typeVarBounds returns the class-type bounds of a type variable.
func (i *Index) typeVarBounds(t Type) []Type {
	a := i.arena
	if t.Param == ast.NoNode {
		return nil
	}
	var out []Type
	for _, bound := range a.ChildrenOfKind(t.Param, ast.KindTypeBound) {
		for _, c := range a.Children(bound) {
			if a.Kind(c).IsTypeRef() {
				out = append(out, i.TypeFromNode(c))
			}
		}
	}
	return out
}

func (i *Index) resolveCall(id ast.NodeID) (Declaration, error) {
	a := i.arena
	name := a.Node(id).Name
	arity := ArgCount(a, id)
	obj := a.Child(id, ast.RoleObject)

	if obj != ast.NoNode {
		t, _, err := i.scopeOf(obj)
		if err != nil {
			return Declaration{}, err
		}
		if t.Name == "" && !t.Unresolved {
			return externalMember(DeclMethod, "", name, libraryReturn("", name)), nil
		}
		return i.memberMethod(t, name, arity)
	}

	uncertain, external := false, false
	for _, s := range i.scopeTypes(id) {
		switch {
		case s.unresolved:
			uncertain = true
		case s.decl == ast.NoNode:
			external = true
		default:
			l := i.methodsIn(s.decl, name, arity, map[ast.NodeID]bool{})
			if len(l.found) > 0 {
				return l.found[0], nil
			}
			uncertain = uncertain || l.uncertain
			external = external || l.external
		}
	}

	u := a.UnitOf(id)
	single, onDemand := staticImportOwners(u, name)
	for _, owner := range single {
		t, err := i.lookupQualified(owner)
		if err != nil {
			return Declaration{}, unsolved("%s.%s()", owner, name)
		}
		if t.Decl == ast.NoNode {
			return externalMember(DeclMethod, t.Name, name, libraryReturn(t.Name, name)), nil
		}
		if l := i.methodsIn(t.Decl, name, arity, map[ast.NodeID]bool{}); len(l.found) > 0 {
			return l.found[0], nil
		}
	}

	if uncertain {
		return Declaration{}, unsolved("%s() may be inherited from an unresolved supertype", name)
	}

	for _, owner := range onDemand {
		if decl, ok := i.types[owner]; ok {
			if l := i.methodsIn(decl, name, arity, map[ast.NodeID]bool{}); len(l.found) > 0 {
				return l.found[0], nil
			}
		}
	}

	if external || javalang.IsObjectMethod(name) {
		return externalMember(DeclMethod, "", name, libraryReturn("", name)), nil
	}
	for _, owner := range onDemand {
		if _, ok := i.types[owner]; !ok && javalang.InJDKPackage(owner) {
			return externalMember(DeclMethod, owner, name, libraryReturn(owner, name)), nil
		}
	}
	return Declaration{}, unsolved("%s()", name)
}

func (i *Index) resolveCreation(id ast.NodeID) (Declaration, error) {
	a := i.arena
	ref := a.Child(id, ast.RoleType)
	t, err := i.TypeFromNodeErr(ref)
	if err != nil {
		return Declaration{}, err
	}
	if t.Decl == ast.NoNode {
		return externalMember(DeclConstructor, t.Name, "<init>", t), nil
	}
	return i.ctorsIn(t.Decl, ArgCount(a, id))[0], nil
}

func (i *Index) resolveExplicitCtor(id ast.NodeID) (Declaration, error) {
	a := i.arena
	owner := a.EnclosingType(id)
	if owner == ast.NoNode {
		return Declaration{}, unsolved("constructor call outside a type")
	}
	arity := ArgCount(a, id)
	if a.Node(id).Text == "this" {
		return i.ctorsIn(owner, arity)[0], nil
	}
	sup, ok := i.Superclass(owner)
	if !ok {
		if a.Kind(owner) == ast.KindEnumDecl {
			return externalMember(DeclConstructor, "java.lang.Enum", "<init>", named("java.lang.Enum")), nil
		}
		return externalMember(DeclConstructor, "java.lang.Object", "<init>", named("java.lang.Object")), nil
	}
	if sup.Err != nil {
		return Declaration{}, sup.Err
	}
	if sup.Type.Decl == ast.NoNode {
		return externalMember(DeclConstructor, sup.Type.Name, "<init>", sup.Type), nil
	}
	return i.ctorsIn(sup.Type.Decl, arity)[0], nil
}

func (i *Index) resolveMethodRef(id ast.NodeID) (Declaration, error) {
	a := i.arena
	name := a.Node(id).Name
	obj := a.Child(id, ast.RoleObject)
	if obj == ast.NoNode {
		return Declaration{}, unsolved("::%s", name)
	}

	t, _, err := i.scopeOf(obj)
	if err != nil {
		return Declaration{}, err
	}
	if name == "new" {
		switch {
		case t.IsArray() || (t.Known() && t.Decl == ast.NoNode && !t.Unresolved):
			return externalMember(DeclConstructor, t.Name, "<init>", t), nil
		case t.Decl != ast.NoNode:
			return i.ctorsIn(t.Decl, anyArity)[0], nil
		}
		return Declaration{}, unsolved("%s::new", t.Name)
	}
	if t.Name == "" && !t.Unresolved {
		return externalMember(DeclMethod, "", name, unknownType), nil
	}
	return i.memberMethod(t, name, anyArity)
}
