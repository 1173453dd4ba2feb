package unsolved

import (
	"jslice/internal/ast"
	"jslice/internal/javalang"
	"jslice/internal/resolve"
)

// NeedsReconcile reports the node kinds Reconcile learns from. They are
// revisited once every symbol of the first pass exists.
func NeedsReconcile(k ast.Kind) bool {
	switch k {
	case ast.KindClassDecl, ast.KindInterfaceDecl, ast.KindEnumDecl, ast.KindRecordDecl,
		ast.KindMethodDecl, ast.KindConstructorDecl, ast.KindTry, ast.KindThrow,
		ast.KindInstanceOf, ast.KindMethodCall, ast.KindTypeParameter:
		return true
	}
	return false
}

// Reconcile refines existing synthetic declarations with what a
// declaration or statement implies about them: which types are
// interfaces, exceptions or AutoCloseable, and which supertypes a type
// must have. It never creates a type.
func (g *Generator) Reconcile(id ast.NodeID) (res Result, err error) {
	k := g.a.Kind(id)
	if !NeedsReconcile(k) {
		return Result{}, nil
	}
	err = g.run(&res, func() { g.reconcile(id) })
	if err == nil && !res.Empty() {
		g.logger.Debug("Reconciled synthetic symbols",
			"node", id,
			"kind", k.String(),
			"added", len(res.Added),
			"removed", len(res.Removed),
		)
	}
	return res, err
}

func (g *Generator) reconcile(id ast.NodeID) {
	a := g.a
	switch a.Kind(id) {
	case ast.KindClassDecl, ast.KindInterfaceDecl, ast.KindEnumDecl, ast.KindRecordDecl:
		extends, implements := resolve.SupertypeRefs(a, id)
		for _, ref := range implements {
			g.makeInterface(ref)
		}
		if a.IsInterfaceLike(id) {
			for _, ref := range extends {
				g.makeInterface(ref)
			}
		}

	case ast.KindMethodDecl, ast.KindConstructorDecl:
		th := a.ChildOfKind(id, ast.KindThrows)
		if th == ast.NoNode {
			return
		}
		for _, ref := range a.ChildrenOfKind(th, ast.KindClassType) {
			tg := g.existingType(ref)
			if tg == nil || (tg.HasExtends() && !tg.DoesExtend("java.lang.RuntimeException")) {
				continue
			}
			first := !tg.HasExtends()
			g.mutate(tg, func() { tg.Extend(SolvedName("java.lang.Throwable")) })
			if first {
				g.extendThrowable(tg)
			}
		}

	case ast.KindThrow:
		tg := g.existingTypeOf(operand(a, id))
		// declarations are visited first, so an extends clause here came
		// from a throws clause or a catch
		if tg != nil && !tg.HasExtends() {
			g.mutate(tg, func() { tg.Extend(SolvedName("java.lang.RuntimeException")) })
			g.extendThrowable(tg)
		}

	case ast.KindTry:
		g.reconcileTry(id)

	case ast.KindInstanceOf:
		ref := a.Child(id, ast.RoleRight)
		if ref == ast.NoNode {
			ref = typeRefChild(a, id)
		}
		tg := g.existingType(ref)
		if tg == nil {
			return
		}
		rel := g.existingMemberType(g.exprType(a.Child(id, ast.RoleLeft), false))
		if rel == nil || SameType(rel, Unsolved{Group: tg}) {
			return
		}
		if s, ok := rel.(Solved); ok && (s.Name == "java.lang.Object" || s.Dims > 0 || javalang.IsPrimitive(s.Name)) {
			return
		}
		g.mutate(tg, func() { tg.Extend(rel) })

	case ast.KindMethodCall:
		g.refineReturn(id)

	case ast.KindTypeParameter:
		for _, bound := range a.ChildrenOfKind(id, ast.KindTypeBound) {
			for i, ref := range a.ChildrenOfKind(bound, ast.KindClassType) {
				if i > 0 {
					g.makeInterface(ref)
				}
			}
		}
	}
}

func (g *Generator) reconcileTry(id ast.NodeID) {
	a := g.a
	var closeable []*TypeGroup
	if rs := a.ChildOfKind(id, ast.KindResources); rs != ast.NoNode {
		for _, r := range a.ChildrenOfKind(rs, ast.KindResource) {
			if ref := a.Child(r, ast.RoleType); ref != ast.NoNode {
				closeable = append(closeable, g.existingType(ref), g.existingTypeOf(a.Child(r, ast.RoleValue)))
				continue
			}
			closeable = append(closeable, g.existingTypeOf(operand(a, r)))
		}
	}

	for _, c := range a.ChildrenOfKind(id, ast.KindCatch) {
		param := a.ChildOfKind(c, ast.KindCatchParam)
		if param == ast.NoNode {
			continue
		}
		refs := a.ChildrenOfKind(param, ast.KindClassType)
		if u := a.ChildOfKind(param, ast.KindUnionType); u != ast.NoNode {
			refs = a.ChildrenOfKind(u, ast.KindClassType)
		}
		for _, ref := range refs {
			tg := g.existingType(ref)
			if tg == nil || tg.DoesExtend("java.lang.Exception") {
				continue
			}
			g.mutate(tg, func() { tg.Extend(SolvedName("java.lang.Exception")) })
			g.extendThrowable(tg)
		}
	}

	for _, tg := range uniqueGroups(closeable) {
		if tg.DoesImplement("java.lang.AutoCloseable") {
			continue
		}
		tg := tg
		g.mutate(tg, func() { tg.Implement(SolvedName("java.lang.AutoCloseable")) })
		var ids []string
		for _, f := range tg.fqns {
			ids = append(ids, f+"#close()")
		}
		if g.reg.Lookup(ids) != nil {
			continue
		}
		mg := NewMethodGroup("close", []*TypeGroup{tg}, []MethodVariant{{Return: SolvedName("void")}})
		mg.AddThrows(SolvedName("java.lang.Exception"))
		g.add(mg)
	}
}

// makeInterface marks the synthetic type a reference names as an
// interface.
func (g *Generator) makeInterface(ref ast.NodeID) {
	if tg := g.existingType(ref); tg != nil {
		g.mutate(tg, func() { tg.SetDeclKind(KindInterface) })
	}
}

// existingType returns the synthetic type a type reference names, if one
// was generated.
func (g *Generator) existingType(ref ast.NodeID) *TypeGroup {
	if ref == ast.NoNode || g.a.Kind(ref) != ast.KindClassType {
		return nil
	}
	if _, err := g.idx.TypeFromNodeErr(ref); err == nil {
		return nil
	}
	cands := g.classCandidates(g.a.Node(ref).Name, ref)
	if g.overlapsKnown(cands) {
		return nil
	}
	return g.findType(cands)
}

// existingTypeOf returns the synthetic type of an expression, if one was
// generated.
func (g *Generator) existingTypeOf(expr ast.NodeID) *TypeGroup {
	if expr == ast.NoNode {
		return nil
	}
	s := g.exprType(expr, false)
	if s.Empty() || s.Wildcard != "" || s.TypeVar || g.overlapsKnown(s.Erased) {
		return nil
	}
	for _, f := range s.Erased {
		if _, dims := splitDims(f); dims > 0 {
			return nil
		}
	}
	return g.findType(s.Erased)
}

// extendThrowable drops the methods a type that became an exception now
// inherits from Throwable, and replaces the synthetic return types they
// introduced with the inherited ones.
func (g *Generator) extendThrowable(tg *TypeGroup) {
	type correction struct {
		old  *TypeGroup
		with MemberType
	}
	var inherited []correction
	var drop []*MethodGroup
	for _, m := range g.reg.Methods() {
		if m.Constructor || !declares(m.declaring, tg) || !javalang.IsThrowableMethod(m.Name) {
			continue
		}
		if len(m.variants) > 0 && len(m.variants[0].Params) > 0 && !throwableTakesArgs(m.Name) {
			continue
		}
		drop = append(drop, m)
		for _, r := range m.ReturnTypes() {
			if u, ok := r.(Unsolved); ok && u.Dims == 0 && u.Group != tg {
				inherited = append(inherited, correction{u.Group, SolvedName(javalang.ThrowableReturn(m.Name))})
			}
		}
	}
	for _, m := range drop {
		g.remove(m)
	}
	done := make(map[*TypeGroup]bool)
	for _, c := range inherited {
		if done[c.old] {
			continue
		}
		done[c.old] = true
		g.check(g.reg.Replace(c.old, c.with))
		if g.res != nil {
			g.res.Removed = append(g.res.Removed, c.old)
		}
	}
}

func throwableTakesArgs(name string) bool {
	switch name {
	case "addSuppressed", "initCause", "setStackTrace", "printStackTrace":
		return true
	}
	return false
}

// refineReturn replaces the invented return type of a call when the
// receiver variable is assigned a program type that declares the method.
func (g *Generator) refineReturn(call ast.NodeID) {
	a := g.a
	mg, ok := g.symbols[call].(*MethodGroup)
	if !ok || mg.Constructor {
		return
	}
	rets := mg.ReturnTypes()
	if len(rets) != 1 {
		return
	}
	old, ok := rets[0].(Unsolved)
	if !ok || old.Dims > 0 {
		return
	}
	obj := a.Child(call, ast.RoleObject)
	if k := a.Kind(obj); k != ast.KindNameExpr && k != ast.KindFieldAccess {
		return
	}
	d, err := g.idx.Resolve(obj)
	if err != nil || d.Node == ast.NoNode {
		return
	}

	var values []ast.NodeID
	if a.Kind(d.Node) == ast.KindVarDeclarator {
		if v := a.Child(d.Node, ast.RoleValue); v != ast.NoNode {
			values = append(values, v)
		}
	}
	target := a.Text(obj)
	if decl := a.EnclosingType(call); decl != ast.NoNode {
		a.Walk(decl, func(n ast.NodeID) bool {
			if a.Kind(n) == ast.KindAssign && a.Node(n).Text == "=" && a.Text(a.Child(n, ast.RoleLeft)) == target {
				values = append(values, a.Child(n, ast.RoleRight))
			}
			return true
		})
	}

	sig := mg.Signature(mg.variants[0])
	for _, v := range values {
		t := g.idx.TypeOf(v)
		if !t.Resolved() || t.Decl == ast.NoNode {
			continue
		}
		body := a.ChildOfKind(t.Decl, ast.KindClassBody)
		if body == ast.NoNode {
			continue
		}
		for _, m := range a.ChildrenOfKind(body, ast.KindMethodDecl) {
			if declaredSignature(a, m) != sig {
				continue
			}
			with := g.memberType(g.returnType(m))
			if SameType(with, old) {
				return
			}
			g.check(g.reg.Replace(old.Group, with))
			if g.res != nil {
				g.res.Removed = append(g.res.Removed, old.Group)
			}
			return
		}
	}
}

// declaredSignature spells a method declaration the way method
// identities spell it.
func declaredSignature(a *ast.Arena, m ast.NodeID) string {
	out := a.Node(m).Name + "("
	for i, p := range paramNodes(a, m) {
		if i > 0 {
			out += ", "
		}
		name, dims := writtenType(a, a.Child(p, ast.RoleType))
		dims += a.Node(p).Dims
		if a.Node(p).Text == "..." {
			dims++
		}
		out += name + brackets(dims)
	}
	return out + ")"
}

// writtenType returns the simple element name and dimensions of a type
// reference.
func writtenType(a *ast.Arena, ref ast.NodeID) (string, int) {
	if ref == ast.NoNode {
		return "", 0
	}
	n := a.Node(ref)
	if n.Kind == ast.KindArrayType {
		elem := a.Child(ref, ast.RoleElement)
		if elem == ast.NoNode {
			elem = typeRefChild(a, ref)
		}
		name, dims := writtenType(a, elem)
		return name, dims + n.Dims
	}
	return javalang.SimpleName(javalang.Erase(n.Name)), n.Dims
}
