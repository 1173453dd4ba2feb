package unsolved

import (
	"jslice/internal/ast"
	"jslice/internal/javalang"
	"jslice/internal/resolve"
)

// maxSignatures bounds the argument type combinations tried for one call.
const maxSignatures = 16

// mutate changes a registered group through the registry.
func (g *Generator) mutate(grp Alternates, fn func()) { g.check(g.reg.Update(grp, fn)) }

func (g *Generator) inferClassType(id ast.NodeID) {
	a := g.a
	n := a.Node(id)
	if n.Name == "var" {
		return
	}
	cands := g.classCandidates(n.Name, id)
	if g.overlapsKnown(cands) {
		return
	}
	tg := g.findOrCreateType(cands)
	targs := 0
	if ta := a.Child(id, ast.RoleTypeArguments); ta != ast.NoNode {
		for _, c := range a.Children(ta) {
			if a.Kind(c).IsTypeRef() {
				targs++
			}
		}
	}
	iface := g.namesInterface(id)
	g.mutate(tg, func() {
		tg.SetTypeParams(targs)
		if iface {
			tg.SetDeclKind(KindInterface)
		}
	})
	g.symbols[id] = tg
}

// namesInterface reports type references only an interface can fill:
// implemented types, types an interface extends, and additional bounds.
func (g *Generator) namesInterface(ref ast.NodeID) bool {
	a := g.a
	p := a.Parent(ref)
	switch a.Kind(p) {
	case ast.KindSuperInterfaces:
		return true
	case ast.KindSuperclass:
		return a.IsInterfaceLike(a.Parent(p))
	case ast.KindTypeBound:
		first := a.ChildOfKind(p, ast.KindClassType)
		return first != ast.NoNode && first != ref
	}
	return false
}

// inferTypeName makes a type group for a name used as a member's scope.
func (g *Generator) inferTypeName(name string, id ast.NodeID) {
	cands := g.classCandidates(name, id)
	if g.overlapsKnown(cands) {
		return
	}
	g.symbols[id] = g.findOrCreateType(cands)
}

type elementValue struct {
	key   string
	value ast.NodeID
}

func (g *Generator) inferAnnotation(id ast.NodeID) {
	a := g.a
	pairs := g.elementValues(id)
	for _, p := range pairs {
		if !g.validElementValue(p.value) {
			if g.res != nil {
				g.res.DropAnnotations = append(g.res.DropAnnotations, id)
			}
			return
		}
	}
	cands := g.classCandidates(a.Node(id).Name, id)
	if g.overlapsKnown(cands) {
		return
	}
	tg := g.findOrCreateType(cands)
	g.mutate(tg, func() { tg.SetDeclKind(KindAnnotation) })
	g.symbols[id] = tg
	for _, p := range pairs {
		g.annotationElement(tg, p.key, p.value)
	}
}

func (g *Generator) elementValues(id ast.NodeID) []elementValue {
	a := g.a
	args := a.Child(id, ast.RoleArguments)
	if args == ast.NoNode {
		return nil
	}
	var out []elementValue
	for _, c := range a.Children(args) {
		switch a.Kind(c) {
		case ast.KindComment:
		case ast.KindElementValuePair:
			out = append(out, elementValue{key: a.Node(c).Name, value: a.Child(c, ast.RoleValue)})
		default:
			out = append(out, elementValue{key: "value", value: c})
		}
	}
	return out
}

// validElementValue reports element values a synthetic annotation can
// declare an element for. It creates nothing.
func (g *Generator) validElementValue(v ast.NodeID) bool {
	a := g.a
	if v == ast.NoNode {
		return false
	}
	n := a.Node(v)
	switch n.Kind {
	case ast.KindLiteral:
		return n.Name != "null"
	case ast.KindClassLiteral, ast.KindAnnotation:
		return true
	case ast.KindArrayInit, ast.KindParen, ast.KindUnary, ast.KindBinary:
		for _, c := range a.Children(v) {
			if a.Kind(c) != ast.KindComment && !g.validElementValue(c) {
				return false
			}
		}
		return true
	case ast.KindNameExpr, ast.KindFieldAccess:
		if _, err := g.idx.Resolve(v); err == nil {
			return true
		}
		return g.enumOwnerCandidates(v) != nil
	}
	return false
}

// enumOwnerCandidates returns the candidates of the unknown enum an
// unresolved element value such as Color.RED or a statically imported RED
// names.
func (g *Generator) enumOwnerCandidates(v ast.NodeID) []string {
	a := g.a
	n := a.Node(v)
	var cands []string
	switch n.Kind {
	case ast.KindFieldAccess:
		obj := a.Child(v, ast.RoleObject)
		chain := resolve.NameChain(a, obj)
		if a.Kind(obj) == ast.KindClassType {
			chain = a.Node(obj).Name
		}
		if !g.namesClass(chain) {
			return nil
		}
		cands = g.classCandidates(chain, obj)
	case ast.KindNameExpr:
		owner, ok := g.staticImportOwner(v, n.Name)
		if !ok {
			return nil
		}
		cands = []string{owner}
	default:
		return nil
	}
	if len(cands) == 0 || g.overlapsKnown(cands) {
		return nil
	}
	return cands
}

// annotationElement declares element key of a synthetic annotation with
// the type of its value.
func (g *Generator) annotationElement(tg *TypeGroup, key string, value ast.NodeID) {
	t := g.elementType(value)
	var ids []string
	for _, f := range tg.fqns {
		ids = append(ids, f+"#"+key+"()")
	}
	if found := g.reg.Lookup(ids); found != nil {
		mg, ok := found.(*MethodGroup)
		if !ok {
			invariant(value, "annotation element %s claimed by a %s group", key, found.Kind())
		}
		// an empty array only guessed String[]
		if rets := mg.ReturnTypes(); len(rets) == 1 && isEmptyArrayDefault(rets[0]) && !SameType(rets[0], t) {
			g.mutate(mg, func() { mg.variants = []MethodVariant{{Return: t}} })
		}
		return
	}
	g.add(NewMethodGroup(key, []*TypeGroup{tg}, []MethodVariant{{Return: t}}))
}

func isEmptyArrayDefault(t MemberType) bool {
	s, ok := t.(Solved)
	return ok && s.Name == "java.lang.String" && s.Dims == 1
}

func (g *Generator) elementType(v ast.NodeID) MemberType {
	a := g.a
	n := a.Node(v)
	switch n.Kind {
	case ast.KindLiteral:
		if n.Name == "String" {
			return SolvedName("java.lang.String")
		}
		return SolvedName(n.Name)
	case ast.KindClassLiteral:
		return Solved{Name: "java.lang.Class", Args: []MemberType{Wildcard{}}}
	case ast.KindArrayInit:
		for _, c := range a.Children(v) {
			if a.Kind(c) != ast.KindComment {
				return addDims(g.elementType(c), 1)
			}
		}
		return Solved{Name: "java.lang.String", Dims: 1}
	case ast.KindAnnotation:
		g.inferNested(v)
	case ast.KindNameExpr, ast.KindFieldAccess:
		if _, err := g.idx.Resolve(v); err != nil {
			if cands := g.enumOwnerCandidates(v); cands != nil {
				tg := g.findOrCreateType(cands)
				g.mutate(tg, func() { tg.SetDeclKind(KindEnum) })
				g.enumConstant(tg, n.Name, v)
				return Unsolved{Group: tg}
			}
		}
	}
	s := g.exprType(v, false)
	if s.Empty() {
		return SolvedName("java.lang.String")
	}
	return g.memberType(s)
}

// enumConstant declares constant name in an enum group.
func (g *Generator) enumConstant(tg *TypeGroup, name string, use ast.NodeID) {
	var ids []string
	for _, f := range tg.fqns {
		ids = append(ids, f+"#"+name)
	}
	found, err := g.reg.FindAndNarrow(ids)
	g.check(err)
	if fg, ok := found.(*FieldGroup); ok {
		g.symbols[use] = fg
		return
	}
	if found != nil {
		invariant(use, "enum constant %s claimed by a %s group", name, found.Kind())
	}
	fg := NewFieldGroup(name, []*TypeGroup{tg}, []FieldVariant{{Type: Solved{}}})
	fg.Static = true
	fg.Final = true
	g.add(fg)
	g.symbols[use] = fg
}

func (g *Generator) inferName(id ast.NodeID) {
	n := g.a.Node(id)
	if n.Role == ast.RoleObject && g.namesClass(n.Name) {
		g.inferTypeName(n.Name, id)
		return
	}
	_, imported := g.staticImportOwner(id, n.Name)
	static := imported || g.inStaticContext(id)
	g.inferField(id, n.Name, g.locations(id), static, imported)
}

func (g *Generator) inferFieldAccess(id ast.NodeID) {
	a := g.a
	n := a.Node(id)
	if chain := resolve.NameChain(a, id); n.Role == ast.RoleObject && g.namesClass(chain) {
		g.inferTypeName(chain, id)
		return
	}
	obj := a.Child(id, ast.RoleObject)
	if k := a.Kind(obj); k != ast.KindThis && k != ast.KindSuper {
		g.inferNested(obj)
	}
	g.inferField(id, n.Name, g.locations(id), g.isStaticAccess(id), false)
}

// inferField generates or narrows the field a name or field access
// refers to.
func (g *Generator) inferField(id ast.NodeID, name string, locs [][]string, static, final bool) {
	if len(locs) == 0 {
		return
	}
	for _, loc := range locs {
		if g.overlapsKnown(loc) {
			return
		}
	}
	var ids []string
	for _, loc := range locs {
		for _, f := range loc {
			ids = append(ids, f+"#"+name)
		}
	}
	preserved := g.preservedTypes(id)

	found, err := g.reg.FindAndNarrow(ids)
	g.check(err)
	if found != nil {
		fg, ok := found.(*FieldGroup)
		if !ok {
			invariant(id, "field identity %s claimed by a %s group", ids[0], found.Kind())
		}
		if len(preserved) > 0 {
			vs := g.fieldVariants(preserved)
			g.mutate(fg, func() { fg.addVariants(vs) })
		}
		if static && !fg.Static {
			g.mutate(fg, func() { fg.Static = true })
		}
		g.symbols[id] = fg
		return
	}

	declaring := make([]*TypeGroup, 0, len(locs))
	for _, loc := range locs {
		declaring = append(declaring, g.findOrCreateType(loc))
	}
	var variants []FieldVariant
	switch {
	case g.a.Ancestor(id, ast.KindAnnotation) != ast.NoNode:
		// only enum constants are usable in annotations
		for _, d := range declaring {
			d := d
			g.mutate(d, func() { d.SetDeclKind(KindEnum) })
		}
		variants = []FieldVariant{{Type: Solved{}}}
		static, final = true, true
	case len(preserved) > 0:
		variants = g.fieldVariants(preserved)
	default:
		for _, s := range g.exprTypes(id, true) {
			if s.Wildcard != "" || s.First() == "void" {
				continue
			}
			variants = append(variants, FieldVariant{Type: g.memberType(s)})
		}
	}
	if len(variants) == 0 {
		variants = []FieldVariant{{Type: SolvedName("java.lang.Object")}}
	}
	fg := NewFieldGroup(name, declaring, variants)
	fg.dedup()
	fg.Static = static
	fg.Final = final
	g.add(fg)
	g.symbols[id] = fg
}

func (g *Generator) fieldVariants(ps []overloadParam) []FieldVariant {
	out := make([]FieldVariant, 0, len(ps))
	for _, p := range ps {
		out = append(out, FieldVariant{Type: g.memberType(p.typ), MustPreserve: []ast.NodeID{p.callable}})
	}
	return out
}

func (g *Generator) inferMethodCall(id ast.NodeID) {
	a := g.a
	n := a.Node(id)
	obj := a.Child(id, ast.RoleObject)
	if k := a.Kind(obj); obj != ast.NoNode && k != ast.KindThis && k != ast.KindSuper {
		g.inferNested(obj)
	}
	g.inferArgs(id)

	locs := g.locations(id)
	if len(locs) == 0 {
		return
	}
	for _, loc := range locs {
		if g.overlapsKnown(loc) {
			return
		}
	}
	if javalang.IsThrowableMethod(n.Name) && g.throwableOwner(locs) {
		return
	}

	combos := combinations(g.argumentAlternatives(id), maxSignatures)
	var ids []string
	for _, loc := range locs {
		for _, f := range loc {
			for _, c := range combos {
				ids = append(ids, f+"#"+n.Name+"("+simpleNames(c)+")")
			}
		}
	}
	preserved := g.preservedTypes(id)

	found, err := g.reg.FindAndNarrow(ids)
	g.check(err)
	if found != nil {
		mg, ok := found.(*MethodGroup)
		if !ok {
			invariant(id, "method identity %s claimed by a %s group", ids[0], found.Kind())
		}
		if len(preserved) > 0 {
			var vs []MethodVariant
			for _, v := range mg.Variants() {
				for _, r := range g.preservedReturns(preserved) {
					vs = append(vs, MethodVariant{Return: r.Return, Params: v.Params, MustPreserve: r.MustPreserve})
				}
			}
			g.mutate(mg, func() { mg.addVariants(vs) })
		}
		g.symbols[id] = mg
		return
	}

	declaring := make([]*TypeGroup, 0, len(locs))
	for _, loc := range locs {
		declaring = append(declaring, g.findOrCreateType(loc))
	}
	var returns []MethodVariant
	if len(preserved) > 0 {
		returns = g.preservedReturns(preserved)
	} else {
		for _, s := range g.exprTypes(id, true) {
			if s.Wildcard != "" {
				continue
			}
			returns = append(returns, MethodVariant{Return: g.memberType(s)})
		}
	}
	if len(returns) == 0 {
		returns = []MethodVariant{{Return: SolvedName("java.lang.Object")}}
	}
	var variants []MethodVariant
	for _, c := range combos {
		params := make([]MemberType, len(c))
		for i, s := range c {
			params[i] = g.memberType(s)
		}
		for _, r := range returns {
			variants = append(variants, MethodVariant{Return: r.Return, Params: params, MustPreserve: r.MustPreserve})
		}
	}
	mg := NewMethodGroup(n.Name, declaring, variants)
	mg.dedup()
	mg.Static = g.isStaticAccess(id) || (obj == ast.NoNode && g.inStaticContext(id))
	if ta := a.Child(id, ast.RoleTypeArguments); ta != ast.NoNode {
		k := 0
		for _, c := range a.Children(ta) {
			if a.Kind(c).IsTypeRef() {
				k++
			}
		}
		mg.SetTypeParams(k)
	}
	g.add(mg)
	g.symbols[id] = mg
}

func (g *Generator) preservedReturns(ps []overloadParam) []MethodVariant {
	out := make([]MethodVariant, 0, len(ps))
	for _, p := range ps {
		out = append(out, MethodVariant{Return: g.memberType(p.typ), MustPreserve: []ast.NodeID{p.callable}})
	}
	return out
}

// throwableOwner reports whether a member location is a synthetic
// exception, which inherits the method from Throwable.
func (g *Generator) throwableOwner(locs [][]string) bool {
	for _, loc := range locs {
		tg, ok := g.reg.Lookup(loc).(*TypeGroup)
		if !ok {
			continue
		}
		for _, t := range []string{"java.lang.Throwable", "java.lang.Exception", "java.lang.RuntimeException", "java.lang.Error"} {
			if tg.DoesExtend(t) {
				return true
			}
		}
	}
	return false
}

func (g *Generator) inferArgs(call ast.NodeID) {
	args := g.a.Child(call, ast.RoleArguments)
	if args == ast.NoNode {
		return
	}
	for _, c := range g.a.Children(args) {
		g.inferNested(c)
	}
}

// argumentAlternatives returns, per argument, its possible types with
// distinct simple names. A null argument is an Object.
func (g *Generator) argumentAlternatives(call ast.NodeID) [][]FQNSet {
	a := g.a
	args := a.Child(call, ast.RoleArguments)
	if args == ast.NoNode {
		return nil
	}
	var out [][]FQNSet
	for _, c := range a.Children(args) {
		if a.Kind(c) == ast.KindComment {
			continue
		}
		var alts []FQNSet
		seen := make(map[string]bool)
		if !(a.Kind(c) == ast.KindLiteral && a.Node(c).Name == "null") {
			for _, s := range g.exprTypes(c, true) {
				s.Wildcard = ""
				if len(s.Erased) == 0 || s.First() == "void" {
					continue
				}
				if k := simpleOf(s.First()); !seen[k] {
					seen[k] = true
					alts = append(alts, s)
				}
			}
		}
		if len(alts) == 0 {
			alts = []FQNSet{Single("java.lang.Object")}
		}
		out = append(out, alts)
	}
	return out
}

// combinations returns up to max ways of picking one alternative per
// position, in order.
func combinations(alts [][]FQNSet, max int) [][]FQNSet {
	out := [][]FQNSet{{}}
	for _, as := range alts {
		var next [][]FQNSet
		for _, prefix := range out {
			for _, s := range as {
				if len(next) == max {
					break
				}
				c := make([]FQNSet, len(prefix), len(prefix)+1)
				copy(c, prefix)
				next = append(next, append(c, s))
			}
		}
		out = next
	}
	return out
}

func simpleNames(c []FQNSet) string {
	out := ""
	for i, s := range c {
		if i > 0 {
			out += ", "
		}
		out += simpleOf(s.First())
	}
	return out
}

func (g *Generator) inferCreation(id ast.NodeID) {
	a := g.a
	ref := a.Child(id, ast.RoleType)
	g.inferNested(ref)
	g.inferArgs(id)
	if ref == ast.NoNode {
		return
	}
	if _, err := g.idx.TypeFromNodeErr(ref); err == nil {
		return
	}
	cands := g.classCandidates(a.Node(ref).Name, ref)
	if g.overlapsKnown(cands) {
		return
	}
	tg := g.findOrCreateType(cands)
	if tg.DeclKind == KindInterface && a.ChildOfKind(id, ast.KindClassBody) != ast.NoNode {
		return
	}
	g.constructor(tg, id)
}

func (g *Generator) inferExplicitCtor(id ast.NodeID) {
	a := g.a
	g.inferArgs(id)
	if a.Node(id).Text != "super" {
		return
	}
	decl := a.EnclosingType(id)
	if decl == ast.NoNode {
		return
	}
	ext, _ := resolve.SupertypeRefs(a, decl)
	if len(ext) == 0 {
		return
	}
	ref := ext[0]
	if _, err := g.idx.TypeFromNodeErr(ref); err == nil {
		return
	}
	cands := g.classCandidates(a.Node(ref).Name, ref)
	if g.overlapsKnown(cands) {
		return
	}
	g.constructor(g.findOrCreateType(cands), id)
}

// constructor generates the constructor of tg a creation or super call
// invokes. Only the most likely type of each argument is used.
func (g *Generator) constructor(tg *TypeGroup, call ast.NodeID) {
	var params []MemberType
	for _, alts := range g.argumentAlternatives(call) {
		params = append(params, g.memberType(alts[0]))
	}
	sig := signature(tg.Simple(), params)
	var ids []string
	for _, f := range tg.fqns {
		ids = append(ids, f+"#"+sig)
	}
	found, err := g.reg.FindAndNarrow(ids)
	g.check(err)
	if mg, ok := found.(*MethodGroup); ok && mg.Constructor {
		g.symbols[call] = mg
		return
	}
	if found != nil {
		invariant(call, "constructor %s claimed by a %s group", ids[0], found.Kind())
	}
	mg := NewConstructorGroup([]*TypeGroup{tg}, params)
	g.add(mg)
	g.symbols[call] = mg
}

func (g *Generator) inferMethodRef(id ast.NodeID) {
	a := g.a
	n := a.Node(id)
	obj := a.Child(id, ast.RoleObject)
	if k := a.Kind(obj); obj != ast.NoNode && k != ast.KindThis && k != ast.KindSuper {
		g.inferNested(obj)
	}

	if n.Name == "new" {
		name := resolve.NameChain(a, obj)
		if a.Kind(obj) == ast.KindClassType {
			name = a.Node(obj).Name
		}
		if name == "" {
			return
		}
		if _, err := g.idx.LookupType(name, obj); err == nil {
			return
		}
		cands := g.classCandidates(name, obj)
		if g.overlapsKnown(cands) {
			return
		}
		g.constructor(g.findOrCreateType(cands), id)
		return
	}

	locs := g.locations(id)
	if len(locs) == 0 {
		return
	}
	for _, loc := range locs {
		if g.overlapsKnown(loc) {
			return
		}
	}
	var ids []string
	for _, loc := range locs {
		for _, f := range loc {
			ids = append(ids, f+"#"+n.Name+"()")
		}
	}
	found, err := g.reg.FindAndNarrow(ids)
	g.check(err)
	if found != nil {
		if _, ok := found.(*MethodGroup); !ok {
			invariant(id, "method identity %s claimed by a %s group", ids[0], found.Kind())
		}
		g.symbols[id] = found
		return
	}
	declaring := make([]*TypeGroup, 0, len(locs))
	for _, loc := range locs {
		declaring = append(declaring, g.findOrCreateType(loc))
	}
	// an unknown target is taken to be a Runnable-shaped method
	mg := NewMethodGroup(n.Name, declaring, []MethodVariant{{Return: SolvedName("void")}})
	mg.Static = g.isTypeScope(obj)
	g.add(mg)
	g.symbols[id] = mg
}

// inferLambda declares the functional interface of a lambda with more
// parameters than the JDK interfaces take.
func (g *Generator) inferLambda(id ast.NodeID) {
	n := len(resolve.LambdaParams(g.a, id))
	if n <= 2 || len(g.contextTypes(id)) > 0 {
		return
	}
	void := g.lambdaIsVoid(id)
	tg := g.findOrCreateType(g.candidatesFor(functionalName(n, void), id, false))
	arity := n
	if !void {
		arity++
	}
	g.mutate(tg, func() {
		tg.SetDeclKind(KindInterface)
		tg.SetTypeParams(arity)
		tg.Annotate("@java.lang.FunctionalInterface")
	})

	params := make([]MemberType, n)
	for i := range params {
		params[i] = Solved{Name: typeVarName(i), TypeVar: true}
	}
	ret := SolvedName("void")
	if !void {
		ret = Solved{Name: typeVarName(n), TypeVar: true}
	}
	var ids []string
	for _, f := range tg.fqns {
		ids = append(ids, f+"#"+signature("apply", params))
	}
	if g.reg.Lookup(ids) != nil {
		return
	}
	g.add(NewMethodGroup("apply", []*TypeGroup{tg}, []MethodVariant{{Return: ret, Params: params}}))
}

// inferOverride declares an @Override method in the unresolvable
// supertypes it may override.
func (g *Generator) inferOverride(id ast.NodeID) {
	a := g.a
	n := a.Node(id)
	if !hasAnnotation(a, id, "Override") || javalang.IsObjectMethod(n.Name) {
		return
	}
	var locs [][]string
	if body := a.Parent(id); a.Kind(body) == ast.KindClassBody && a.Kind(a.Parent(body)) == ast.KindObjectCreation {
		ref := a.Child(a.Parent(body), ast.RoleType)
		if _, err := g.idx.TypeFromNodeErr(ref); err != nil {
			locs = append(locs, g.classCandidates(a.Node(ref).Name, ref))
		}
	} else if decl := a.EnclosingType(id); decl != ast.NoNode {
		locs = g.unresolvableParents(decl)
	}
	if len(locs) == 0 {
		return
	}
	for _, loc := range locs {
		if g.overlapsKnown(loc) {
			return
		}
	}

	var params []MemberType
	for _, prm := range paramNodes(a, id) {
		s := withDims(g.fromTypeNode(a.Child(prm, ast.RoleType)), a.Node(prm).Dims)
		if a.Node(prm).Text == "..." {
			s = withDims(s, 1)
		}
		params = append(params, g.memberType(s))
	}
	sig := signature(n.Name, params)
	var ids []string
	for _, loc := range locs {
		for _, f := range loc {
			ids = append(ids, f+"#"+sig)
		}
	}
	found, err := g.reg.FindAndNarrow(ids)
	g.check(err)
	if found != nil {
		if _, ok := found.(*MethodGroup); !ok {
			invariant(id, "method identity %s claimed by a %s group", ids[0], found.Kind())
		}
		g.symbols[id] = found
		return
	}

	declaring := make([]*TypeGroup, 0, len(locs))
	for _, loc := range locs {
		declaring = append(declaring, g.findOrCreateType(loc))
	}
	mg := NewMethodGroup(n.Name, declaring, []MethodVariant{{Return: g.memberType(g.returnType(id)), Params: params}})
	if n.Mods.Has(ast.ModProtected) {
		mg.Access = "protected"
	}
	if th := a.ChildOfKind(id, ast.KindThrows); th != ast.NoNode {
		for _, ref := range a.ChildrenOfKind(th, ast.KindClassType) {
			mg.AddThrows(g.memberType(g.fromTypeNode(ref)))
		}
	}
	if tps := a.ChildOfKind(id, ast.KindTypeParameters); tps != ast.NoNode {
		mg.SetTypeParams(len(a.ChildrenOfKind(tps, ast.KindTypeParameter)))
	}
	g.add(mg)
	g.symbols[id] = mg
}

func hasAnnotation(a *ast.Arena, decl ast.NodeID, simple string) bool {
	mods := a.ChildOfKind(decl, ast.KindModifiers)
	if mods == ast.NoNode {
		return false
	}
	for _, ann := range a.ChildrenOfKind(mods, ast.KindAnnotation) {
		if javalang.SimpleName(a.Node(ann).Name) == simple {
			return true
		}
	}
	return false
}

// inStaticContext reports whether id is evaluated without an enclosing
// instance.
func (g *Generator) inStaticContext(id ast.NodeID) bool {
	a := g.a
	for p := a.Parent(id); p != ast.NoNode; p = a.Parent(p) {
		switch k := a.Kind(p); {
		case k == ast.KindMethodDecl || k == ast.KindFieldDecl || k == ast.KindInitializer:
			return a.Node(p).Mods.Has(ast.ModStatic)
		case k == ast.KindClassBody && a.Kind(a.Parent(p)) == ast.KindObjectCreation:
			return false
		case k.IsTypeDecl():
			return false
		}
	}
	return false
}
