package unsolved

import (
	"strconv"
	"strings"

	"jslice/internal/ast"
	"jslice/internal/javalang"
	"jslice/internal/resolve"
)

func one(s FQNSet) []FQNSet {
	if s.Empty() {
		return nil
	}
	return []FQNSet{s}
}

var booleanType = []FQNSet{Single("boolean")}

// exprType returns the most likely type of an expression, or the empty
// set.
func (g *Generator) exprType(id ast.NodeID, withContext bool) FQNSet {
	ts := g.exprTypes(id, withContext)
	if len(ts) == 0 {
		return FQNSet{}
	}
	return ts[0]
}

// exprTypes returns the possible types of an expression, most likely
// first. With withContext set, the expression's surroundings may decide
// the type before its own shape does.
func (g *Generator) exprTypes(id ast.NodeID, withContext bool) []FQNSet {
	if id == ast.NoNode || g.typing[id] {
		return nil
	}
	g.typing[id] = true
	defer delete(g.typing, id)

	a := g.a
	n := a.Node(id)
	switch n.Kind {
	case ast.KindParen:
		return g.exprTypes(operand(a, id), withContext)
	case ast.KindAnnotation:
		return one(NewFQNSet(g.classCandidates(n.Name, id)...))
	case ast.KindClassLiteral:
		arg := FQNSet{Wildcard: "? extends"}
		if ref := typeRefChild(a, id); ref != ast.NoNode {
			s := g.fromTypeNode(ref)
			arg.Erased = boxAll(s.Erased)
			arg.TypeArgs = s.TypeArgs
		}
		if len(arg.Erased) == 0 {
			arg = UnboundedWildcard
		}
		return one(Single("java.lang.Class").WithTypeArgs([]FQNSet{arg}))
	case ast.KindLiteral:
		if n.Name == "null" {
			return nil
		}
	}

	if t := g.idx.TypeOf(id); t.Known() && t.Name != "null" {
		return one(g.fromType(t, g.declSite(id)))
	}
	if grp, ok := g.symbols[id]; ok {
		if ts := groupTypes(grp); len(ts) > 0 {
			return ts
		}
	}

	switch n.Kind {
	case ast.KindSuper:
		if decl := a.EnclosingType(id); decl != ast.NoNode {
			if ext, _ := resolve.SupertypeRefs(a, decl); len(ext) > 0 {
				return one(g.fromTypeNode(ext[0]))
			}
		}
		return one(Single("java.lang.Object"))

	case ast.KindNameExpr, ast.KindFieldAccess:
		// only a qualifier can name a class; elsewhere it is a value
		if chain := resolve.NameChain(a, id); n.Role == ast.RoleObject && g.namesClass(chain) {
			return one(NewFQNSet(g.classCandidates(chain, id)...))
		}
		if d, err := g.idx.Resolve(id); err == nil && d.Kind == resolve.DeclLocal {
			return g.localTypes(d)
		}

	case ast.KindLambda:
		return g.lambdaTypes(id, withContext)
	case ast.KindMethodRef:
		return g.methodRefTypes(id, withContext)
	case ast.KindCast:
		return one(g.fromTypeNode(a.Child(id, ast.RoleType)))

	case ast.KindArrayAccess:
		var out []FQNSet
		for _, s := range g.exprTypes(a.Child(id, ast.RoleArray), withContext) {
			var elems []string
			for _, f := range s.Erased {
				if strings.HasSuffix(f, "[]") {
					elems = append(elems, strings.TrimSuffix(f, "[]"))
				}
			}
			if len(elems) > 0 {
				out = append(out, FQNSet{Erased: elems, TypeArgs: s.TypeArgs, TypeVar: s.TypeVar})
			}
		}
		return out

	case ast.KindObjectCreation:
		return one(g.fromTypeNode(a.Child(id, ast.RoleType)))
	case ast.KindArrayCreation:
		dims := n.Dims
		for _, c := range a.Children(id) {
			if a.Kind(c) == ast.KindOther {
				dims++
			}
		}
		return one(withDims(g.fromTypeNode(a.Child(id, ast.RoleType)), dims))
	case ast.KindConditional:
		return append(g.exprTypes(a.Child(id, ast.RoleConsequence), withContext),
			g.exprTypes(a.Child(id, ast.RoleAlternative), withContext)...)
	}

	if withContext {
		if ts := g.contextTypes(id); len(ts) > 0 {
			return ts
		}
	}

	switch n.Kind {
	case ast.KindBinary:
		return g.binaryTypes(id, withContext)
	case ast.KindUnary:
		if n.Text == "!" {
			return booleanType
		}
		return g.exprTypes(operand(a, id), withContext)
	case ast.KindAssign:
		return g.exprTypes(a.Child(id, ast.RoleLeft), false)
	case ast.KindInstanceOf:
		return booleanType
	}

	method := n.Kind == ast.KindMethodCall
	if member, ok := g.staticMember(id); ok {
		if name, ok := StaticMemberTypeName(member, method); ok {
			return one(Single(name))
		}
	}

	switch n.Kind {
	case ast.KindNameExpr:
		if imp, ok := g.typeImport(id, n.Name); ok {
			return one(Single(imp))
		}
		return one(NewFQNSet(g.candidatesFor(variableTypeName(n.Name), id, false)...))

	case ast.KindFieldAccess:
		obj := a.Child(id, ast.RoleObject)
		if k := a.Kind(obj); k == ast.KindThis || k == ast.KindSuper {
			var names []string
			for _, f := range g.exprType(obj, false).Erased {
				f, _ = splitDims(f)
				names = append(names, sibling(f, variableTypeName(n.Name)))
			}
			if len(names) == 0 {
				names = g.candidatesFor(variableTypeName(n.Name), id, false)
			}
			return one(NewFQNSet(names...))
		}
		scope, _ := splitDims(g.exprType(obj, true).First())
		if scope == "" {
			return one(NewFQNSet(g.candidatesFor(variableTypeName(n.Name), id, false)...))
		}
		if name, ok := StaticMemberTypeName(scope+"."+n.Name, false); ok {
			return one(Single(name))
		}
		return one(Single(sibling(scope, variableTypeName(n.Name))))

	case ast.KindMethodCall:
		ret := returnTypeName(n.Name)
		locs := g.locations(id)
		if len(locs) == 0 || len(locs[0]) == 0 {
			return one(NewFQNSet(g.candidatesFor(ret, id, false)...))
		}
		var names []string
		for _, f := range locs[0] {
			names = append(names, sibling(f, ret))
		}
		return one(NewFQNSet(names...))
	}
	return nil
}

// namesClass reports whether a name chain spells a class rather than a
// variable: a capitalized segment that is not a constant.
func (g *Generator) namesClass(chain string) bool {
	if chain == "" {
		return false
	}
	simple := javalang.SimpleName(chain)
	return javalang.IsCapitalized(simple) && !isConstantName(simple)
}

// localTypes types a resolved variable whose declared type is unknown,
// such as var declarations and untyped lambda parameters.
func (g *Generator) localTypes(d resolve.Declaration) []FQNSet {
	a := g.a
	if d.Node == ast.NoNode {
		return nil
	}
	switch a.Kind(d.Node) {
	case ast.KindVarDeclarator, ast.KindResource:
		if v := a.Child(d.Node, ast.RoleValue); v != ast.NoNode {
			return g.exprTypes(v, false)
		}
	case ast.KindParameter:
		p := a.Parent(d.Node)
		if a.Kind(p) == ast.KindParameters {
			p = a.Parent(p)
		}
		if a.Kind(p) == ast.KindLambda && a.Child(d.Node, ast.RoleType) == ast.NoNode {
			return one(Single("java.lang.Object"))
		}
	}
	return nil
}

// declSite returns the declaration a reference resolves to, whose unit's
// imports govern the names in its declared type. Other nodes are their own
// site.
func (g *Generator) declSite(id ast.NodeID) ast.NodeID {
	if !resolve.Resolvable(g.a.Kind(id)) {
		return id
	}
	if d, err := g.idx.Resolve(id); err == nil && d.Node != ast.NoNode {
		return d.Node
	}
	return id
}

// staticMember returns owner.member for a reference to a static member:
// a static import, or a member selected through a type name.
func (g *Generator) staticMember(id ast.NodeID) (string, bool) {
	a := g.a
	n := a.Node(id)
	if n.Kind != ast.KindNameExpr && n.Kind != ast.KindFieldAccess && n.Kind != ast.KindMethodCall {
		return "", false
	}
	obj := a.Child(id, ast.RoleObject)
	if obj == ast.NoNode {
		if owner, ok := g.staticImportOwner(id, n.Name); ok {
			return owner + "." + n.Name, true
		}
		return "", false
	}
	if !g.isStaticAccess(id) {
		return "", false
	}
	if d, err := g.idx.Resolve(obj); err == nil && d.Kind == resolve.DeclType {
		return d.QualifiedName + "." + n.Name, true
	}
	name := resolve.NameChain(a, obj)
	if a.Kind(obj) == ast.KindClassType {
		name = a.Node(obj).Name
	}
	if name == "" {
		return "", false
	}
	cands := g.classCandidates(name, obj)
	if len(cands) == 0 {
		return "", false
	}
	return cands[0] + "." + n.Name, true
}

// contextTypes infers an expression's type from where it is used.
func (g *Generator) contextTypes(id ast.NodeID) []FQNSet {
	a := g.a
	child, p := id, a.Parent(id)
	for p != ast.NoNode && a.Kind(p) == ast.KindParen {
		child, p = p, a.Parent(p)
	}
	if p == ast.NoNode {
		return nil
	}
	role := a.Node(child).Role

	switch a.Kind(p) {
	case ast.KindExprStmt:
		return one(Single("void"))

	case ast.KindArguments:
		return g.paramTypes(a.Parent(p), argIndex(a, p, child))

	case ast.KindVarDeclarator:
		if role != ast.RoleValue {
			return nil
		}
		typeNode := a.Child(a.Parent(p), ast.RoleType)
		if typeNode == ast.NoNode || a.Node(typeNode).Name == "var" {
			return nil
		}
		return one(withDims(g.fromTypeNode(typeNode), a.Node(p).Dims))

	case ast.KindResource:
		if role != ast.RoleValue {
			return nil
		}
		typeNode := a.Child(p, ast.RoleType)
		if typeNode == ast.NoNode || a.Node(typeNode).Name == "var" {
			return nil
		}
		return one(g.fromTypeNode(typeNode))

	case ast.KindAssign:
		other := a.Child(p, ast.RoleRight)
		if other == child {
			other = a.Child(p, ast.RoleLeft)
		}
		if a.Kind(other) == ast.KindLiteral && a.Node(other).Name == "null" {
			return nil
		}
		return g.exprTypes(other, false)

	case ast.KindIf, ast.KindWhile, ast.KindDo, ast.KindFor:
		if role == ast.RoleCondition {
			return booleanType
		}

	case ast.KindConditional:
		switch role {
		case ast.RoleCondition:
			return booleanType
		case ast.RoleConsequence:
			return g.exprTypes(a.Child(p, ast.RoleAlternative), false)
		case ast.RoleAlternative:
			return g.exprTypes(a.Child(p, ast.RoleConsequence), false)
		}

	case ast.KindUnary:
		if a.Node(p).Text == "!" {
			return booleanType
		}

	case ast.KindBinary:
		return g.binaryContext(p, child)

	case ast.KindReturn:
		if c := a.EnclosingCallable(p); c != ast.NoNode && a.Kind(c) == ast.KindMethodDecl {
			return one(g.returnType(c))
		}

	case ast.KindForEach:
		if role == ast.RoleValue {
			elem := g.fromTypeNode(a.Child(p, ast.RoleType))
			return one(withDims(elem, a.Node(p).Dims+1))
		}
	}
	return nil
}

// binaryContext types one operand of a binary expression.
func (g *Generator) binaryContext(bin, operand ast.NodeID) []FQNSet {
	a := g.a
	op := a.Node(bin).Text
	if op == "&&" || op == "||" {
		return booleanType
	}
	other := a.Child(bin, ast.RoleLeft)
	if other == operand {
		other = a.Child(bin, ast.RoleRight)
	}
	ot := g.exprTypes(other, false)
	if singleLang(ot) {
		return ot
	}
	if op == "==" || op == "!=" {
		return ot
	}
	whole := g.exprTypes(bin, false)
	if len(whole) != 1 || len(whole[0].Erased) != 1 {
		return opTypes(op)
	}
	return whole
}

// binaryTypes types a binary expression from its operator and operands.
func (g *Generator) binaryTypes(id ast.NodeID, withContext bool) []FQNSet {
	a := g.a
	op := a.Node(id).Text
	switch op {
	case "&&", "||", "==", "!=", "<", ">", "<=", ">=":
		return booleanType
	}
	left := g.exprTypes(a.Child(id, ast.RoleLeft), withContext)
	if singleLang(left) {
		return left
	}
	right := g.exprTypes(a.Child(id, ast.RoleRight), withContext)
	if singleLang(right) {
		return right
	}
	return opTypes(op)
}

func opTypes(op string) []FQNSet {
	var out []FQNSet
	for _, t := range javalang.TypesForOp(op) {
		if javalang.IsClassName(t) {
			t = "java.lang." + t
		}
		out = append(out, Single(t))
	}
	return out
}

// singleLang reports a single known primitive or java.lang type.
func singleLang(ts []FQNSet) bool {
	return len(ts) == 1 && ts[0].IsSingle() && isLangOrPrimitive(ts[0].First())
}

func isLangOrPrimitive(name string) bool {
	name, _ = splitDims(name)
	if strings.HasPrefix(name, "java.lang.") {
		name = strings.TrimPrefix(name, "java.lang.")
	}
	return javalang.IsJavaLangOrPrimitive(name)
}

// paramTypes returns the declared types of parameter i across the
// program callables a call may invoke.
func (g *Generator) paramTypes(call ast.NodeID, i int) []FQNSet {
	if i < 0 {
		return nil
	}
	var out []FQNSet
	seen := make(map[string]bool)
	for _, pt := range g.overloadParams(call, i) {
		if k := pt.typ.String(); !seen[k] {
			seen[k] = true
			out = append(out, pt.typ)
		}
	}
	return out
}

// overloadParam is the type parameter i has in one candidate callable.
type overloadParam struct {
	typ      FQNSet
	callable ast.NodeID
}

func (g *Generator) overloadParams(call ast.NodeID, i int) []overloadParam {
	a := g.a
	if !resolve.Resolvable(a.Kind(call)) {
		return nil
	}
	var out []overloadParam
	for _, d := range g.idx.Overloads(call) {
		params := paramNodes(a, d.Node)
		if len(params) == 0 {
			continue
		}
		j := i
		prm := params[len(params)-1]
		variadic := a.Node(prm).Text == "..."
		if j < len(params) {
			prm = params[j]
		} else if !variadic {
			continue
		}
		s := g.fromTypeNode(a.Child(prm, ast.RoleType))
		if !variadic || prm != params[len(params)-1] {
			s = withDims(s, a.Node(prm).Dims)
		}
		if s.Empty() {
			continue
		}
		out = append(out, overloadParam{typ: s, callable: d.Node})
	}
	return out
}

// preservedTypes pairs each candidate type of an argument with the
// callable that requires it, when the argument is passed to a program
// method with several applicable overloads.
func (g *Generator) preservedTypes(expr ast.NodeID) []overloadParam {
	a := g.a
	child, p := expr, a.Parent(expr)
	for p != ast.NoNode && a.Kind(p) == ast.KindParen {
		child, p = p, a.Parent(p)
	}
	if p == ast.NoNode || a.Kind(p) != ast.KindArguments {
		return nil
	}
	return g.overloadParams(a.Parent(p), argIndex(a, p, child))
}

// returnType is the declared return type of a method declaration.
func (g *Generator) returnType(method ast.NodeID) FQNSet {
	return withDims(g.fromTypeNode(g.a.Child(method, ast.RoleType)), g.a.Node(method).Dims)
}

// fromType converts a resolver type. Unresolved class names become their
// candidates as seen from ctx.
func (g *Generator) fromType(t resolve.Type, ctx ast.NodeID) FQNSet {
	if !t.Known() || t.Name == "null" {
		return FQNSet{}
	}
	var args []FQNSet
	for _, x := range t.Args {
		if s := g.fromType(x, ctx); !s.Empty() {
			args = append(args, s)
		} else {
			args = append(args, UnboundedWildcard)
		}
	}
	var s FQNSet
	switch {
	case t.TypeVar:
		s = FQNSet{Erased: []string{t.Name}, TypeVar: true}
	case t.Unresolved:
		s = FQNSet{Erased: g.classCandidates(t.Name, ctx)}
	default:
		s = Single(t.Name)
	}
	s.TypeArgs = args
	return withDims(s, t.Dims)
}

// fromTypeNode converts a written type.
func (g *Generator) fromTypeNode(ref ast.NodeID) FQNSet {
	if ref == ast.NoNode {
		return FQNSet{}
	}
	a := g.a
	n := a.Node(ref)
	switch n.Kind {
	case ast.KindPrimitiveType:
		return withDims(Single(n.Name), n.Dims)

	case ast.KindArrayType:
		elem := a.Child(ref, ast.RoleElement)
		if elem == ast.NoNode {
			elem = typeRefChild(a, ref)
		}
		return withDims(g.fromTypeNode(elem), n.Dims)

	case ast.KindWildcard:
		bound := a.Child(ref, ast.RoleBound)
		if bound == ast.NoNode {
			return UnboundedWildcard
		}
		s := g.fromTypeNode(bound)
		if n.Text == "super" {
			s.Wildcard = "? super"
		} else {
			s.Wildcard = "? extends"
		}
		return s

	case ast.KindUnionType:
		return g.fromTypeNode(typeRefChild(a, ref))

	case ast.KindClassType:
		if n.Name == "var" {
			return FQNSet{}
		}
		var args []FQNSet
		if targs := a.Child(ref, ast.RoleTypeArguments); targs != ast.NoNode {
			for _, c := range a.Children(targs) {
				if a.Kind(c).IsTypeRef() {
					args = append(args, g.fromTypeNode(c))
				}
			}
		}
		var s FQNSet
		t, err := g.idx.LookupType(n.Name, ref)
		switch {
		case err != nil:
			s = FQNSet{Erased: g.classCandidates(n.Name, ref)}
		case t.TypeVar:
			s = FQNSet{Erased: []string{t.Name}, TypeVar: true}
		default:
			s = Single(t.Name)
		}
		s.TypeArgs = args
		return withDims(s, n.Dims)
	}
	return FQNSet{}
}

// lambdaTypes returns the functional interface a lambda implements.
func (g *Generator) lambdaTypes(id ast.NodeID, withContext bool) []FQNSet {
	if withContext {
		if ts := g.contextTypes(id); len(ts) > 0 {
			return ts
		}
	}
	a := g.a
	params := resolve.LambdaParams(a, id)
	types := make([]FQNSet, len(params))
	for i, p := range params {
		if ref := a.Child(p, ast.RoleType); ref != ast.NoNode {
			types[i] = g.fromTypeNode(ref)
		}
		if types[i].Empty() {
			types[i] = UnboundedWildcard
		}
	}
	return one(g.functionalType(types, g.lambdaIsVoid(id), id))
}

// lambdaIsVoid reports lambdas that return nothing: an expression body
// typed void, or a block without a value-returning statement.
func (g *Generator) lambdaIsVoid(id ast.NodeID) bool {
	a := g.a
	body := a.Child(id, ast.RoleBody)
	if body == ast.NoNode {
		return true
	}
	if a.Kind(body) != ast.KindBlock {
		s := g.exprType(body, false)
		return s.IsSingle() && s.First() == "void"
	}
	void := true
	a.Walk(body, func(n ast.NodeID) bool {
		switch a.Kind(n) {
		case ast.KindLambda, ast.KindClassBody:
			return false
		case ast.KindReturn:
			if len(a.Children(n)) > 0 {
				void = false
			}
		}
		return void
	})
	return void
}

// functionalType names the functional interface of the given parameter
// types: a JDK interface up to two parameters, otherwise an invented
// SyntheticFunctionN or SyntheticConsumerN.
func (g *Generator) functionalType(params []FQNSet, void bool, ctx ast.NodeID) FQNSet {
	n := len(params)
	if n <= 2 {
		placeholder := make([]string, n)
		name := javalang.Erase(javalang.FunctionalInterface(placeholder, void))
		args := make([]FQNSet, 0, n+1)
		for _, p := range params {
			args = append(args, boxSet(p))
		}
		if !void {
			args = append(args, UnboundedWildcard)
		}
		return Single(name).WithTypeArgs(args)
	}

	args := make([]FQNSet, 0, n+1)
	for _, p := range params {
		if p.IsSingle() && p.Wildcard == "" {
			args = append(args, boxSet(p))
		} else {
			args = append(args, Single("java.lang.Object"))
		}
	}
	if !void {
		args = append(args, UnboundedWildcard)
	}
	return NewFQNSet(g.candidatesFor(functionalName(n, void), ctx, false)...).WithTypeArgs(args)
}

func functionalName(arity int, void bool) string {
	if void {
		return SyntheticConsumer + strconv.Itoa(arity)
	}
	return SyntheticFunction + strconv.Itoa(arity)
}

// methodRefTypes returns the functional interface a method reference
// implements.
func (g *Generator) methodRefTypes(id ast.NodeID, withContext bool) []FQNSet {
	if withContext {
		if ts := g.contextTypes(id); len(ts) > 0 {
			return ts
		}
	}
	a := g.a
	n := a.Node(id)
	d, err := g.idx.Resolve(id)
	if err != nil || d.Node == ast.NoNode || !a.Kind(d.Node).IsCallableDecl() {
		// pretend an unknown target takes nothing
		return one(g.functionalType(nil, n.Name != "new", id))
	}

	var params []FQNSet
	obj := a.Child(id, ast.RoleObject)
	if a.Kind(d.Node) == ast.KindMethodDecl && !a.Node(d.Node).Mods.Has(ast.ModStatic) && g.isTypeScope(obj) {
		recv := g.exprType(obj, false)
		recv.Wildcard = "? extends"
		params = append(params, recv)
	}
	for _, prm := range paramNodes(a, d.Node) {
		s := withDims(g.fromTypeNode(a.Child(prm, ast.RoleType)), a.Node(prm).Dims)
		if s.Empty() || (s.IsSingle() && s.First() == "java.lang.Object") {
			params = append(params, UnboundedWildcard)
			continue
		}
		if s.Wildcard == "" && !s.TypeVar {
			s.Wildcard = "? extends"
		}
		params = append(params, s)
	}
	void := false
	if a.Kind(d.Node) == ast.KindMethodDecl {
		rt := g.returnType(d.Node)
		void = rt.IsSingle() && rt.First() == "void"
	}
	return one(g.functionalType(params, void, id))
}

// isTypeScope reports whether the scope of a method reference names a
// type.
func (g *Generator) isTypeScope(obj ast.NodeID) bool {
	switch g.a.Kind(obj) {
	case ast.KindClassType:
		return true
	case ast.KindNameExpr, ast.KindFieldAccess:
		d, err := g.idx.Resolve(obj)
		if err == nil {
			return d.Kind == resolve.DeclType
		}
		return g.namesClass(resolve.NameChain(g.a, obj))
	}
	return false
}

// groupTypes returns the types a generated member may have.
func groupTypes(grp Alternates) []FQNSet {
	var types []MemberType
	switch v := grp.(type) {
	case *FieldGroup:
		for _, fv := range v.variants {
			types = append(types, fv.Type)
		}
	case *MethodGroup:
		if v.Constructor {
			return nil
		}
		types = v.ReturnTypes()
	}
	var out []FQNSet
	for _, t := range types {
		if s := toFQNSet(t); !s.Empty() {
			out = append(out, s)
		}
	}
	return out
}

// toFQNSet converts a member type back to candidate names.
func toFQNSet(t MemberType) FQNSet {
	var args []FQNSet
	switch v := t.(type) {
	case Solved:
		if v.Name == "" {
			return FQNSet{}
		}
		for _, x := range v.Args {
			args = append(args, toFQNSet(x))
		}
		return FQNSet{Erased: []string{v.Name + brackets(v.Dims)}, TypeArgs: args, TypeVar: v.TypeVar}
	case Unsolved:
		for _, x := range v.Args {
			args = append(args, toFQNSet(x))
		}
		return withDims(FQNSet{Erased: v.Group.FQNs(), TypeArgs: args}, v.Dims)
	case Wildcard:
		if v.Inner == nil {
			return UnboundedWildcard
		}
		s := toFQNSet(v.Inner)
		s.Wildcard = "? " + v.Bound
		return s
	}
	return FQNSet{}
}

func withDims(s FQNSet, dims int) FQNSet {
	if dims == 0 || len(s.Erased) == 0 {
		return s
	}
	suffix := brackets(dims)
	names := make([]string, len(s.Erased))
	for i, f := range s.Erased {
		names[i] = f + suffix
	}
	s.Erased = names
	return s
}

func boxSet(s FQNSet) FQNSet {
	s.Erased = boxAll(s.Erased)
	return s
}

func boxAll(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		if javalang.IsPrimitive(n) {
			n = "java.lang." + javalang.Box(n)
		}
		out[i] = n
	}
	return out
}

// sibling places simple next to fqn: in the same package, or nested in
// the same outer type.
func sibling(fqn, simple string) string {
	if p := parentOf(fqn); p != "" {
		return p + "." + simple
	}
	return simple
}

// operand returns the first non-comment child of a wrapper expression.
func operand(a *ast.Arena, id ast.NodeID) ast.NodeID {
	for _, c := range a.Children(id) {
		if a.Kind(c) != ast.KindComment {
			return c
		}
	}
	return ast.NoNode
}

func typeRefChild(a *ast.Arena, id ast.NodeID) ast.NodeID {
	for _, c := range a.Children(id) {
		if a.Kind(c).IsTypeRef() {
			return c
		}
	}
	return ast.NoNode
}

// argIndex returns the position of arg in an argument list, or -1.
func argIndex(a *ast.Arena, args, arg ast.NodeID) int {
	i := 0
	for _, c := range a.Children(args) {
		if a.Kind(c) == ast.KindComment {
			continue
		}
		if c == arg {
			return i
		}
		i++
	}
	return -1
}

// paramNodes returns the declared parameters of a callable.
func paramNodes(a *ast.Arena, callable ast.NodeID) []ast.NodeID {
	if callable == ast.NoNode {
		return nil
	}
	ps := a.ChildOfKind(callable, ast.KindParameters)
	if ps == ast.NoNode {
		return nil
	}
	return a.ChildrenOfKind(ps, ast.KindParameter)
}
