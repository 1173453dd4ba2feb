package enumerate

import (
	"log/slog"
	"strconv"
	"strings"

	"jslice/internal/javalang"
	"jslice/internal/paths"
	"jslice/internal/unsolved"
)

const indentUnit = "    "

// decl is a type to render: a synthetic type group, or a shell class
// that only exists to hold nested synthetic types.
type decl struct {
	fqn   string
	group *unsolved.TypeGroup
}

type renderer struct {
	s      *selection
	reg    *unsolved.Registry
	opts   Options
	logger *slog.Logger

	outer  []decl
	inner  map[string][]decl
	byName map[string]*unsolved.TypeGroup
	shells map[string]bool
}

func newRenderer(s *selection, reg *unsolved.Registry, opts Options, logger *slog.Logger) *renderer {
	return &renderer{
		s:      s,
		reg:    reg,
		opts:   opts,
		logger: logger,
		inner:  make(map[string][]decl),
		byName: make(map[string]*unsolved.TypeGroup),
		shells: make(map[string]bool),
	}
}

// files partitions the chosen types into outer types and nested ones and
// renders one file per outer type.
func (r *renderer) files() []File {
	var types []*unsolved.TypeGroup
	for _, tg := range r.reg.Types() {
		if r.replaced(tg) {
			continue
		}
		types = append(types, tg)
		r.byName[r.s.name(tg)] = tg
	}
	for _, tg := range types {
		r.place(decl{fqn: r.s.name(tg), group: tg})
	}

	out := make([]File, 0, len(r.outer))
	for _, d := range r.outer {
		pkg, simple := splitClass(d.fqn)
		var b strings.Builder
		if pkg != "" {
			b.WriteString("package " + pkg + ";\n\n")
		}
		r.typeDecl(&b, d, 0)
		out = append(out, File{
			Path:      paths.QualifiedToFile(pkg, simple),
			Qualified: d.fqn,
			Content:   []byte(b.String()),
		})
	}
	return out
}

// place records d as an outer type or as nested in its parent, creating
// shell parents that no synthetic type provides.
func (r *renderer) place(d decl) {
	parent := parentClass(d.fqn)
	switch {
	case parent == "":
		r.outer = append(r.outer, d)
	case r.byName[parent] != nil:
		r.inner[parent] = append(r.inner[parent], d)
	case r.opts.IsProgramType != nil && r.opts.IsProgramType(parent):
		r.logger.Warn("Skipping synthetic type nested in a program type",
			"type", d.fqn,
			"outer", parent,
		)
	default:
		r.inner[parent] = append(r.inner[parent], d)
		if !r.shells[parent] {
			r.shells[parent] = true
			r.place(decl{fqn: parent})
		}
	}
}

// replaced reports synthetic types a correction substituted everywhere.
func (r *renderer) replaced(tg *unsolved.TypeGroup) bool {
	if r.opts.Corrections == nil {
		return false
	}
	simple := javalang.SimpleName(r.s.name(tg))
	if !unsolved.IsSynthetic(simple) {
		return false
	}
	_, ok := r.opts.Corrections.Replacement(simple)
	return ok
}

func (r *renderer) typeDecl(b *strings.Builder, d decl, depth int) {
	ind := strings.Repeat(indentUnit, depth)
	_, simple := splitClass(d.fqn)
	tg := d.group
	if tg == nil {
		tg = &unsolved.TypeGroup{}
	}

	for _, a := range tg.Annotations {
		b.WriteString(ind + a + "\n")
	}
	b.WriteString(ind + "public ")
	if depth > 0 {
		b.WriteString("static ")
	}
	b.WriteString(tg.DeclKind.String() + " " + simple)
	if tvs := tg.TypeVariables(); len(tvs) > 0 && (tg.DeclKind == unsolved.KindClass || tg.DeclKind == unsolved.KindInterface) {
		b.WriteString("<" + strings.Join(tvs, ", ") + ">")
	}
	b.WriteString(r.supertypes(tg, simple))
	b.WriteString(" {\n")

	body := ind + indentUnit
	var constants []string
	var fields []chosenField
	seenField := make(map[string]bool)
	for _, f := range r.s.fields[d.group] {
		if seenField[f.group.Name] {
			continue
		}
		seenField[f.group.Name] = true
		if f.group.IsEnumConstant() && tg.DeclKind == unsolved.KindEnum {
			constants = append(constants, f.group.Name)
			continue
		}
		fields = append(fields, f)
	}
	methods := r.methodsOf(d.group)

	if tg.DeclKind == unsolved.KindEnum {
		line := strings.Join(constants, ", ")
		if len(fields)+len(methods)+len(r.inner[d.fqn]) > 0 {
			line += ";"
		}
		if line != "" {
			b.WriteString(body + line + "\n")
		}
	}
	for _, in := range r.inner[d.fqn] {
		r.typeDecl(b, in, depth+1)
	}
	for _, f := range fields {
		b.WriteString(body + r.field(tg, d.fqn, f) + "\n")
	}
	for _, m := range methods {
		b.WriteString("\n")
		r.method(b, tg, simple, m, body)
	}
	b.WriteString(ind + "}\n")
}

// supertypes spells the extends and implements clauses, applying
// supertype corrections.
func (r *renderer) supertypes(tg *unsolved.TypeGroup, simple string) string {
	var extends string
	if tg.Extends != nil {
		extends = r.spell(tg.Extends)
	}
	var impls []string
	for _, t := range tg.Implements {
		impls = append(impls, r.spell(t))
	}
	if r.opts.Corrections != nil {
		if sup, ok := r.opts.Corrections.Supertype(simple); ok && sup != simple {
			if tg.DeclKind == unsolved.KindInterface {
				impls = appendOnce(impls, sup)
			} else {
				extends = sup
			}
		}
	}

	switch tg.DeclKind {
	case unsolved.KindAnnotation:
		return ""
	case unsolved.KindInterface:
		if extends != "" {
			impls = append([]string{extends}, impls...)
		}
		if len(impls) == 0 {
			return ""
		}
		return " extends " + strings.Join(impls, ", ")
	case unsolved.KindEnum:
		extends = ""
	}
	out := ""
	if extends != "" {
		out += " extends " + extends
	}
	if len(impls) > 0 {
		out += " implements " + strings.Join(impls, ", ")
	}
	return out
}

func (r *renderer) field(tg *unsolved.TypeGroup, self string, f chosenField) string {
	typ := r.spell(f.variant.Type)
	if f.group.IsEnumConstant() {
		typ = self
	}
	static, final := f.group.Static, f.group.Final
	switch {
	case f.group.IsEnumConstant():
		static, final = true, true
	case tg.DeclKind == unsolved.KindInterface || tg.DeclKind == unsolved.KindAnnotation:
		static, final = true, true
	}
	var b strings.Builder
	b.WriteString("public ")
	if static {
		b.WriteString("static ")
	}
	if final {
		b.WriteString("final ")
	}
	b.WriteString(typ + " " + f.group.Name)
	if final {
		b.WriteString(" = " + javalang.DefaultValue(typ))
	}
	b.WriteString(";")
	return b.String()
}

// methodsOf returns the chosen methods of a type, plus stubs for the
// abstract methods of synthetic interfaces a class implements.
func (r *renderer) methodsOf(tg *unsolved.TypeGroup) []chosenMethod {
	var out []chosenMethod
	seen := make(map[string]bool)
	add := func(m chosenMethod) {
		sig := m.group.Signature(m.variant)
		if m.group.Constructor {
			sig = "<init>" + sig[strings.IndexByte(sig, '('):]
		}
		if seen[sig] {
			return
		}
		seen[sig] = true
		out = append(out, m)
	}
	for _, m := range r.s.methods[tg] {
		add(m)
	}
	if tg == nil || tg.DeclKind == unsolved.KindInterface || tg.DeclKind == unsolved.KindAnnotation {
		return out
	}
	for _, iface := range r.interfaces(tg) {
		for _, m := range r.s.methods[iface] {
			if m.group.Static || m.group.Constructor || usesTypeVar(m.variant) {
				continue
			}
			add(m)
		}
	}
	return out
}

// interfaces lists the synthetic interfaces tg implements, directly or
// through other synthetic interfaces.
func (r *renderer) interfaces(tg *unsolved.TypeGroup) []*unsolved.TypeGroup {
	var out []*unsolved.TypeGroup
	seen := map[*unsolved.TypeGroup]bool{tg: true}
	queue := append([]unsolved.MemberType(nil), tg.Implements...)
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		u, ok := t.(unsolved.Unsolved)
		if !ok || u.Dims > 0 || seen[u.Group] || u.Group.DeclKind != unsolved.KindInterface {
			continue
		}
		seen[u.Group] = true
		out = append(out, u.Group)
		queue = append(queue, u.Group.Implements...)
	}
	return out
}

func (r *renderer) method(b *strings.Builder, tg *unsolved.TypeGroup, simple string, m chosenMethod, ind string) {
	g := m.group
	kind := tg.DeclKind
	if g.Constructor && (kind == unsolved.KindInterface || kind == unsolved.KindAnnotation) {
		return
	}

	var sig strings.Builder
	if kind == unsolved.KindAnnotation {
		sig.WriteString(r.spell(m.variant.Return) + " " + g.Name + "()")
		b.WriteString(ind + sig.String() + ";\n")
		return
	}

	access := g.Access
	switch {
	case kind == unsolved.KindInterface:
		access = "public"
	case g.Constructor && kind == unsolved.KindEnum:
		access = ""
	case access == "":
		access = "public"
	}
	if access != "" {
		sig.WriteString(access + " ")
	}
	if g.Static && !g.Constructor {
		sig.WriteString("static ")
	}
	var ret string
	var tvars []string
	if g.TypeParams > 0 {
		tvars = (&unsolved.TypeGroup{TypeParams: g.TypeParams}).TypeVariables()
	}
	if !g.Constructor {
		ret = r.spell(m.variant.Return)
		if strings.TrimRight(ret, "[]") == unsolved.SyntheticUnconstrainedType {
			// a return type used where unrelated types are required
			tvars = append(tvars, unsolved.SyntheticUnconstrainedType)
		}
	}
	if len(tvars) > 0 {
		sig.WriteString("<" + strings.Join(tvars, ", ") + "> ")
	}
	if g.Constructor {
		sig.WriteString(simple)
	} else {
		sig.WriteString(ret + " " + g.Name)
	}
	sig.WriteString("(")
	for i, p := range m.variant.Params {
		if i > 0 {
			sig.WriteString(", ")
		}
		sig.WriteString(r.spell(p) + " parameter" + strconv.Itoa(i))
	}
	sig.WriteString(")")
	if len(g.Throws) > 0 {
		var ts []string
		for _, t := range g.Throws {
			ts = append(ts, r.spell(t))
		}
		sig.WriteString(" throws " + strings.Join(ts, ", "))
	}

	if kind == unsolved.KindInterface && !g.Static {
		b.WriteString(ind + sig.String() + ";\n")
		return
	}
	b.WriteString(ind + sig.String() + " {\n")
	b.WriteString(ind + indentUnit + "throw new java.lang.Error();\n")
	b.WriteString(ind + "}\n")
}

// spell writes a member type as Java source, using the chosen name of
// synthetic types and applying type replacements.
func (r *renderer) spell(t unsolved.MemberType) string {
	switch v := t.(type) {
	case unsolved.Solved:
		if v.Name == "" {
			return ""
		}
		return v.Name + r.args(v.Args) + strings.Repeat("[]", v.Dims)
	case unsolved.Unsolved:
		name := r.s.name(v.Group)
		if r.opts.Corrections != nil {
			simple := javalang.SimpleName(name)
			if rep, ok := r.opts.Corrections.Replacement(simple); ok && unsolved.IsSynthetic(simple) {
				return rep + strings.Repeat("[]", v.Dims)
			}
		}
		return name + r.args(v.Args) + strings.Repeat("[]", v.Dims)
	case unsolved.Wildcard:
		if v.Inner == nil {
			return "?"
		}
		return "? " + v.Bound + " " + r.spell(v.Inner)
	}
	return "java.lang.Object"
}

func (r *renderer) args(args []unsolved.MemberType) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = r.spell(a)
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

func usesTypeVar(v unsolved.MethodVariant) bool {
	var uses func(t unsolved.MemberType) bool
	uses = func(t unsolved.MemberType) bool {
		switch x := t.(type) {
		case unsolved.Solved:
			if x.TypeVar {
				return true
			}
			for _, a := range x.Args {
				if uses(a) {
					return true
				}
			}
		case unsolved.Unsolved:
			for _, a := range x.Args {
				if uses(a) {
					return true
				}
			}
		case unsolved.Wildcard:
			return x.Inner != nil && uses(x.Inner)
		}
		return false
	}
	if v.Return != nil && uses(v.Return) {
		return true
	}
	for _, p := range v.Params {
		if uses(p) {
			return true
		}
	}
	return false
}

// splitClass splits a qualified class name into its package and simple
// name.
func splitClass(fqn string) (pkg, simple string) {
	v := unsolved.ClassVariant{FQN: fqn}
	return v.Package(), javalang.SimpleName(fqn)
}

// parentClass returns the enclosing class of a nested class name, or ""
// for a top-level one.
func parentClass(fqn string) string {
	v := unsolved.ClassVariant{FQN: fqn}
	cp := v.ClassPath()
	i := strings.LastIndexByte(cp, '.')
	if i < 0 {
		return ""
	}
	if pkg := v.Package(); pkg != "" {
		return pkg + "." + cp[:i]
	}
	return cp[:i]
}

func appendOnce(list []string, s string) []string {
	for _, x := range list {
		if x == s {
			return list
		}
	}
	return append(list, s)
}
