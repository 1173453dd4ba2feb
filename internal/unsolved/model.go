package unsolved

import (
	"sort"
	"strconv"
	"strings"

	"jslice/internal/ast"
	"jslice/internal/javalang"
)

// MemberType is the declared type of a synthetic field, parameter or
// return value. It is one of Solved, Unsolved or Wildcard.
type MemberType interface {
	// Simple is the simple spelling used in method identities.
	Simple() string
	key() string
}

// Solved is a type that needs no synthesis: a primitive, void, a JDK or
// program type, or a type variable. The empty name stands for the missing
// return type of constructors and enum constants.
type Solved struct {
	Name    string
	Dims    int
	Args    []MemberType
	TypeVar bool
}

// SolvedName parses a spelled name such as "int[][]".
func SolvedName(spelled string) Solved {
	name, dims := splitDims(spelled)
	return Solved{Name: name, Dims: dims}
}

func (s Solved) Simple() string {
	if s.Name == "" {
		return ""
	}
	return javalang.SimpleName(s.Name) + brackets(s.Dims)
}

func (s Solved) key() string { return "s:" + s.Name + argsKey(s.Args) + brackets(s.Dims) }

// Unsolved refers to a synthetic type.
type Unsolved struct {
	Group *TypeGroup
	Dims  int
	Args  []MemberType
}

func (u Unsolved) Simple() string { return u.Group.Simple() + brackets(u.Dims) }

func (u Unsolved) key() string {
	return "u:" + strconv.Itoa(u.Group.seq) + argsKey(u.Args) + brackets(u.Dims)
}

// Wildcard is a type argument "?", "? extends Inner" or "? super Inner".
type Wildcard struct {
	Bound string
	Inner MemberType
}

func (w Wildcard) Simple() string { return "?" }

func (w Wildcard) key() string {
	if w.Inner == nil {
		return "?"
	}
	return "? " + w.Bound + " " + w.Inner.key()
}

// SameType reports whether two member types spell the same type.
func SameType(a, b MemberType) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.key() == b.key()
}

func argsKey(args []MemberType) string {
	if len(args) == 0 {
		return ""
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.key()
	}
	return "<" + strings.Join(parts, ",") + ">"
}

func brackets(dims int) string { return strings.Repeat("[]", dims) }

func splitDims(name string) (string, int) {
	dims := 0
	for strings.HasSuffix(name, "[]") {
		name = name[:len(name)-2]
		dims++
	}
	return name, dims
}

// replaceGroup substitutes with for every use of old inside t.
func replaceGroup(t MemberType, old *TypeGroup, with MemberType) MemberType {
	switch v := t.(type) {
	case Unsolved:
		if v.Group == old {
			return addDims(with, v.Dims)
		}
		v.Args = replaceAll(v.Args, old, with)
		return v
	case Solved:
		v.Args = replaceAll(v.Args, old, with)
		return v
	case Wildcard:
		if v.Inner != nil {
			v.Inner = replaceGroup(v.Inner, old, with)
		}
		return v
	}
	return t
}

func replaceAll(ts []MemberType, old *TypeGroup, with MemberType) []MemberType {
	if len(ts) == 0 {
		return ts
	}
	out := make([]MemberType, len(ts))
	for i, t := range ts {
		out[i] = replaceGroup(t, old, with)
	}
	return out
}

func addDims(t MemberType, dims int) MemberType {
	switch v := t.(type) {
	case Solved:
		v.Dims += dims
		return v
	case Unsolved:
		v.Dims += dims
		return v
	}
	return t
}

// TypeKind is the declaration form of a synthetic type.
type TypeKind uint8

const (
	KindClass TypeKind = iota
	KindInterface
	KindAnnotation
	KindEnum
)

func (k TypeKind) String() string {
	switch k {
	case KindInterface:
		return "interface"
	case KindAnnotation:
		return "@interface"
	case KindEnum:
		return "enum"
	}
	return "class"
}

// GroupKind tells the three Alternates implementations apart.
type GroupKind uint8

const (
	GroupType GroupKind = iota
	GroupField
	GroupMethod
)

func (k GroupKind) String() string {
	switch k {
	case GroupField:
		return "field"
	case GroupMethod:
		return "method"
	}
	return "type"
}

// Alternates is one ambiguous synthetic symbol.
type Alternates interface {
	Kind() GroupKind
	// Identities lists every identity string the group may currently
	// stand for, in candidate order.
	Identities() []string
	// Narrow restricts the group to the given identities. It never
	// empties a group and reports whether anything changed.
	Narrow(ids []string) bool
	// Len is the number of concrete alternatives the group offers.
	Len() int
	// DependentNodes are the program nodes some alternative preserves.
	DependentNodes() []ast.NodeID
	seqNo() int
}

// targetAllElements is attached to every synthetic annotation so it can
// be applied anywhere the input applies it.
const targetAllElements = "@java.lang.annotation.Target({java.lang.annotation.ElementType.TYPE, " +
	"java.lang.annotation.ElementType.FIELD, java.lang.annotation.ElementType.METHOD, " +
	"java.lang.annotation.ElementType.PARAMETER, java.lang.annotation.ElementType.CONSTRUCTOR, " +
	"java.lang.annotation.ElementType.LOCAL_VARIABLE, java.lang.annotation.ElementType.ANNOTATION_TYPE, " +
	"java.lang.annotation.ElementType.PACKAGE, java.lang.annotation.ElementType.TYPE_PARAMETER, " +
	"java.lang.annotation.ElementType.TYPE_USE})"

// TypeGroup is a synthetic class, interface, annotation or enum whose
// fully-qualified name is one of several candidates. Everything except
// the name is shared by all candidates.
type TypeGroup struct {
	seq  int
	fqns []string

	DeclKind    TypeKind
	TypeParams  int
	Extends     MemberType
	Implements  []MemberType
	Annotations []string
}

// NewTypeGroup returns a class group over the candidate names.
func NewTypeGroup(fqns []string) *TypeGroup {
	return &TypeGroup{fqns: dedup(fqns)}
}

func (g *TypeGroup) Kind() GroupKind { return GroupType }
func (g *TypeGroup) seqNo() int      { return g.seq }
func (g *TypeGroup) Len() int        { return len(g.fqns) }

// FQNs returns the candidate names in order.
func (g *TypeGroup) FQNs() []string { return append([]string(nil), g.fqns...) }

func (g *TypeGroup) Identities() []string { return g.FQNs() }

func (g *TypeGroup) Narrow(ids []string) bool {
	kept := intersect(g.fqns, ids)
	if len(kept) == 0 || len(kept) == len(g.fqns) {
		return false
	}
	g.fqns = kept
	return true
}

func (g *TypeGroup) DependentNodes() []ast.NodeID { return nil }

// Simple returns the simple class name shared by every candidate.
func (g *TypeGroup) Simple() string { return simpleOf(g.fqns[0]) }

// Variant returns candidate i as a concrete declaration.
func (g *TypeGroup) Variant(i int) ClassVariant {
	return ClassVariant{FQN: g.fqns[i], Group: g}
}

// SetDeclKind promotes the declaration form. Annotations and enums are
// never demoted, and an interface never becomes a class again.
func (g *TypeGroup) SetDeclKind(k TypeKind) {
	switch {
	case g.DeclKind == k:
		return
	case g.DeclKind == KindAnnotation || g.DeclKind == KindEnum:
		return
	case g.DeclKind == KindInterface && k == KindClass:
		return
	}
	g.DeclKind = k
	if k == KindAnnotation {
		g.Annotate(targetAllElements)
	}
}

// SetTypeParams records the generic arity. It only grows.
func (g *TypeGroup) SetTypeParams(n int) {
	if n > g.TypeParams {
		g.TypeParams = n
	}
}

// Extend sets the superclass, or adds a superinterface when g is an
// interface. Extending java.lang.annotation.Annotation makes g an
// annotation type.
func (g *TypeGroup) Extend(t MemberType) {
	if s, ok := t.(Solved); ok && (s.Name == "java.lang.annotation.Annotation" || s.Name == "Annotation") {
		g.SetDeclKind(KindAnnotation)
		return
	}
	if g.DeclKind == KindInterface {
		g.Implement(t)
		return
	}
	g.Extends = t
}

// Implement adds a superinterface once.
func (g *TypeGroup) Implement(t MemberType) {
	for _, i := range g.Implements {
		if SameType(i, t) {
			return
		}
	}
	g.Implements = append(g.Implements, t)
}

// HasExtends reports whether a superclass was recorded.
func (g *TypeGroup) HasExtends() bool { return g.Extends != nil }

// DoesExtend reports whether the superclass is spelled name.
func (g *TypeGroup) DoesExtend(name string) bool { return spells(g.Extends, name) }

// DoesImplement reports whether a superinterface is spelled name.
func (g *TypeGroup) DoesImplement(name string) bool {
	for _, t := range g.Implements {
		if spells(t, name) {
			return true
		}
	}
	return false
}

// Annotate attaches an annotation once.
func (g *TypeGroup) Annotate(a string) {
	for _, x := range g.Annotations {
		if x == a {
			return
		}
	}
	g.Annotations = append(g.Annotations, a)
}

// TypeVariables names the type parameters T, T1, T2 and so on.
func (g *TypeGroup) TypeVariables() []string {
	out := make([]string, g.TypeParams)
	for i := range out {
		out[i] = typeVarName(i)
	}
	return out
}

func (g *TypeGroup) replace(old *TypeGroup, with MemberType) {
	if g.Extends != nil {
		g.Extends = replaceGroup(g.Extends, old, with)
	}
	g.Implements = replaceAll(g.Implements, old, with)
}

func spells(t MemberType, name string) bool {
	switch v := t.(type) {
	case Solved:
		return v.Name == name || javalang.SimpleName(v.Name) == name
	case Unsolved:
		return v.Group.fqns[0] == name || v.Group.Simple() == name
	}
	return false
}

// ClassVariant is one concrete choice of a TypeGroup.
type ClassVariant struct {
	FQN   string
	Group *TypeGroup
}

// Package returns the package part of the name: the leading segments
// that do not start with an upper-case letter.
func (v ClassVariant) Package() string { return packageOf(v.FQN) }

// ClassPath returns the name below the package, e.g. Outer.Inner.
func (v ClassVariant) ClassPath() string {
	if p := v.Package(); p != "" {
		return v.FQN[len(p)+1:]
	}
	return v.FQN
}

func packageOf(fqn string) string {
	parts := strings.Split(fqn, ".")
	n := 0
	for n < len(parts)-1 && !javalang.IsCapitalized(parts[n]) {
		n++
	}
	return strings.Join(parts[:n], ".")
}

// FieldVariant is one possible type of a synthetic field.
type FieldVariant struct {
	Type         MemberType
	MustPreserve []ast.NodeID
}

// FieldGroup is a synthetic field whose declaring type and type may be
// ambiguous.
type FieldGroup struct {
	seq       int
	Name      string
	declaring []*TypeGroup
	variants  []FieldVariant

	Static bool
	Final  bool
}

// NewFieldGroup returns a field declared in one of declaring.
func NewFieldGroup(name string, declaring []*TypeGroup, variants []FieldVariant) *FieldGroup {
	return &FieldGroup{Name: name, declaring: uniqueGroups(declaring), variants: variants}
}

func (f *FieldGroup) Kind() GroupKind { return GroupField }
func (f *FieldGroup) seqNo() int      { return f.seq }
func (f *FieldGroup) Len() int        { return len(f.declaring) * len(f.variants) }

// Declaring returns the candidate declaring types.
func (f *FieldGroup) Declaring() []*TypeGroup { return append([]*TypeGroup(nil), f.declaring...) }

// Variants returns the candidate types.
func (f *FieldGroup) Variants() []FieldVariant { return append([]FieldVariant(nil), f.variants...) }

func (f *FieldGroup) Identities() []string {
	var out []string
	for _, d := range f.declaring {
		for _, fqn := range d.fqns {
			out = append(out, fqn+"#"+f.Name)
		}
	}
	return out
}

func (f *FieldGroup) Narrow(ids []string) bool {
	owners, _ := splitIdentities(ids)
	kept := filterDeclaring(f.declaring, owners)
	if len(kept) == 0 || len(kept) == len(f.declaring) {
		return false
	}
	f.declaring = kept
	return true
}

func (f *FieldGroup) DependentNodes() []ast.NodeID {
	var out []ast.NodeID
	for _, v := range f.variants {
		out = append(out, v.MustPreserve...)
	}
	return out
}

// IsEnumConstant reports fields that render as enum constants.
func (f *FieldGroup) IsEnumConstant() bool {
	if len(f.variants) == 0 {
		return false
	}
	s, ok := f.variants[0].Type.(Solved)
	return ok && s.Name == ""
}

// NarrowTypes keeps the variants whose type satisfies keep. Nothing
// changes when no variant would remain.
func (f *FieldGroup) NarrowTypes(keep func(MemberType) bool) bool {
	var kept []FieldVariant
	for _, v := range f.variants {
		if keep(v.Type) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 || len(kept) == len(f.variants) {
		return false
	}
	f.variants = kept
	return true
}

// addVariants merges further candidate types. A type already present
// gains the new variant's must-preserve nodes.
func (f *FieldGroup) addVariants(vs []FieldVariant) {
	for _, v := range vs {
		merged := false
		for i := range f.variants {
			if SameType(f.variants[i].Type, v.Type) {
				f.variants[i].MustPreserve = mergeNodes(f.variants[i].MustPreserve, v.MustPreserve)
				merged = true
				break
			}
		}
		if !merged {
			f.variants = append(f.variants, v)
		}
	}
}

func (f *FieldGroup) replace(old *TypeGroup, with MemberType) {
	for i := range f.variants {
		f.variants[i].Type = replaceGroup(f.variants[i].Type, old, with)
	}
	f.dedup()
}

func (f *FieldGroup) dedup() {
	seen := make(map[string]bool)
	out := f.variants[:0]
	for _, v := range f.variants {
		k := v.Type.key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	f.variants = out
}

// MethodVariant is one possible signature of a synthetic method.
type MethodVariant struct {
	// Return is nil for constructors.
	Return       MemberType
	Params       []MemberType
	MustPreserve []ast.NodeID
}

// MethodGroup is a synthetic method or constructor whose declaring type
// and signature may be ambiguous.
type MethodGroup struct {
	seq       int
	Name      string
	declaring []*TypeGroup
	variants  []MethodVariant

	Constructor bool
	Static      bool
	TypeParams  int
	Throws      []MemberType
	// Access is "public" unless an overriding declaration narrows it.
	Access string
}

// NewMethodGroup returns a method declared in one of declaring.
func NewMethodGroup(name string, declaring []*TypeGroup, variants []MethodVariant) *MethodGroup {
	return &MethodGroup{Name: name, declaring: uniqueGroups(declaring), variants: variants, Access: "public"}
}

// NewConstructorGroup returns a constructor of one of declaring.
func NewConstructorGroup(declaring []*TypeGroup, params []MemberType) *MethodGroup {
	m := NewMethodGroup("", declaring, []MethodVariant{{Params: params}})
	m.Constructor = true
	return m
}

func (m *MethodGroup) Kind() GroupKind { return GroupMethod }
func (m *MethodGroup) seqNo() int      { return m.seq }
func (m *MethodGroup) Len() int        { return len(m.declaring) * len(m.variants) }

// Declaring returns the candidate declaring types.
func (m *MethodGroup) Declaring() []*TypeGroup { return append([]*TypeGroup(nil), m.declaring...) }

// Variants returns the candidate signatures.
func (m *MethodGroup) Variants() []MethodVariant { return append([]MethodVariant(nil), m.variants...) }

// Signature spells variant v as name(Simple, Simple). Constructors use the
// declaring type's simple name.
func (m *MethodGroup) Signature(v MethodVariant) string {
	name := m.Name
	if m.Constructor && len(m.declaring) > 0 {
		name = m.declaring[0].Simple()
	}
	return signature(name, v.Params)
}

func signature(name string, params []MemberType) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Simple()
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func (m *MethodGroup) Identities() []string {
	var sigs []string
	seen := make(map[string]bool)
	for _, v := range m.variants {
		s := m.Signature(v)
		if !seen[s] {
			seen[s] = true
			sigs = append(sigs, s)
		}
	}
	var out []string
	for _, d := range m.declaring {
		for _, fqn := range d.fqns {
			for _, s := range sigs {
				out = append(out, fqn+"#"+s)
			}
		}
	}
	return out
}

func (m *MethodGroup) Narrow(ids []string) bool {
	owners, sigs := splitIdentities(ids)
	changed := false
	if kept := filterDeclaring(m.declaring, owners); len(kept) > 0 && len(kept) < len(m.declaring) {
		m.declaring = kept
		changed = true
	}
	var kept []MethodVariant
	for _, v := range m.variants {
		if sigs[m.Signature(v)] {
			kept = append(kept, v)
		}
	}
	if len(kept) > 0 && len(kept) < len(m.variants) {
		m.variants = kept
		changed = true
	}
	return changed
}

func (m *MethodGroup) DependentNodes() []ast.NodeID {
	var out []ast.NodeID
	for _, v := range m.variants {
		out = append(out, v.MustPreserve...)
	}
	return out
}

// SetTypeParams records the generic arity of the method. It only grows.
func (m *MethodGroup) SetTypeParams(n int) {
	if n > m.TypeParams {
		m.TypeParams = n
	}
}

// AddThrows records a thrown type once.
func (m *MethodGroup) AddThrows(t MemberType) {
	for _, x := range m.Throws {
		if SameType(x, t) {
			return
		}
	}
	m.Throws = append(m.Throws, t)
}

// ReturnTypes lists the distinct return types of all variants.
func (m *MethodGroup) ReturnTypes() []MemberType {
	var out []MemberType
	seen := make(map[string]bool)
	for _, v := range m.variants {
		if v.Return == nil || seen[v.Return.key()] {
			continue
		}
		seen[v.Return.key()] = true
		out = append(out, v.Return)
	}
	return out
}

// NarrowReturns keeps the variants whose return type satisfies keep.
// Nothing changes when no variant would remain.
func (m *MethodGroup) NarrowReturns(keep func(MemberType) bool) bool {
	var kept []MethodVariant
	for _, v := range m.variants {
		if v.Return != nil && keep(v.Return) {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 || len(kept) == len(m.variants) {
		return false
	}
	m.variants = kept
	return true
}

// addVariants merges further candidate signatures. A signature with the
// same return type gains the new variant's must-preserve nodes.
func (m *MethodGroup) addVariants(vs []MethodVariant) {
	for _, v := range vs {
		merged := false
		for i := range m.variants {
			if m.Signature(m.variants[i]) == m.Signature(v) && SameType(m.variants[i].Return, v.Return) {
				m.variants[i].MustPreserve = mergeNodes(m.variants[i].MustPreserve, v.MustPreserve)
				merged = true
				break
			}
		}
		if !merged {
			m.variants = append(m.variants, v)
		}
	}
}

func (m *MethodGroup) replace(old *TypeGroup, with MemberType) {
	for i := range m.variants {
		if m.variants[i].Return != nil {
			m.variants[i].Return = replaceGroup(m.variants[i].Return, old, with)
		}
		m.variants[i].Params = replaceAll(m.variants[i].Params, old, with)
	}
	m.Throws = replaceAll(m.Throws, old, with)
	m.dedup()
}

func (m *MethodGroup) dedup() {
	seen := make(map[string]bool)
	out := m.variants[:0]
	for _, v := range m.variants {
		k := m.Signature(v)
		if v.Return != nil {
			k += v.Return.key()
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, v)
	}
	m.variants = out
}

// declares reports whether g is a candidate declaring type.
func declares(decl []*TypeGroup, g *TypeGroup) bool {
	for _, d := range decl {
		if d == g {
			return true
		}
	}
	return false
}

func uniqueGroups(gs []*TypeGroup) []*TypeGroup {
	var out []*TypeGroup
	for _, g := range gs {
		if g != nil && !declares(out, g) {
			out = append(out, g)
		}
	}
	return out
}

func filterDeclaring(decl []*TypeGroup, owners map[string]bool) []*TypeGroup {
	var kept []*TypeGroup
	for _, d := range decl {
		for _, fqn := range d.fqns {
			if owners[fqn] {
				kept = append(kept, d)
				break
			}
		}
	}
	return kept
}

// splitIdentities separates member identities into their owner and member
// parts.
func splitIdentities(ids []string) (owners, members map[string]bool) {
	owners = make(map[string]bool, len(ids))
	members = make(map[string]bool, len(ids))
	for _, id := range ids {
		i := strings.IndexByte(id, '#')
		if i < 0 {
			continue
		}
		owners[id[:i]] = true
		members[id[i+1:]] = true
	}
	return owners, members
}

func mergeNodes(a, b []ast.NodeID) []ast.NodeID {
	set := make(map[ast.NodeID]bool, len(a)+len(b))
	for _, id := range a {
		set[id] = true
	}
	for _, id := range b {
		set[id] = true
	}
	return sortedNodes(set)
}

func sortedNodes(set map[ast.NodeID]bool) []ast.NodeID {
	out := make([]ast.NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
