package ast

import (
	"strings"
	"testing"
)

const sampleSource = `package p;

class A {
  // counter
  int x = 1;
  void m() {}
}
`

// buildSample builds the node tree of sampleSource by hand.
func buildSample(t *testing.T, path string) *File {
	t.Helper()
	src := sampleSource
	at := func(s string) (int, int) {
		i := strings.Index(src, s)
		if i < 0 {
			t.Fatalf("%q not in source", s)
		}
		return i, i + len(s)
	}
	f := &File{Path: path, Source: []byte(src), Package: "p"}
	root := f.Add(NoNode, Node{Kind: KindCompilationUnit, Start: 0, End: len(src)})
	s, e := at("package p;")
	f.Add(root, Node{Kind: KindPackageDecl, Name: "p", Start: s, End: e})
	s, e = at("class A {\n  // counter\n  int x = 1;\n  void m() {}\n}")
	cls := f.Add(root, Node{Kind: KindClassDecl, Name: "A", Start: s, End: e})
	s, e = at("{\n  // counter")
	body := f.Add(cls, Node{Kind: KindClassBody, Role: RoleBody, Start: s, End: len(src) - 1})
	s, e = at("// counter")
	f.Add(body, Node{Kind: KindComment, Start: s, End: e})
	s, e = at("int x = 1;")
	fld := f.Add(body, Node{Kind: KindFieldDecl, Start: s, End: e})
	s, e = at("int")
	f.Add(fld, Node{Kind: KindPrimitiveType, Role: RoleType, Name: "int", Start: s, End: e})
	s, e = at("x = 1")
	decl := f.Add(fld, Node{Kind: KindVarDeclarator, Name: "x", Start: s, End: e})
	vs, ve := at("1;")
	f.Add(decl, Node{Kind: KindLiteral, Role: RoleValue, Name: "int", Start: vs, End: ve - 1, Lead: s + 1})
	s, e = at("void m() {}")
	m := f.Add(body, Node{Kind: KindMethodDecl, Name: "m", Start: s, End: e})
	ps, pe := at("()")
	f.Add(m, Node{Kind: KindParameters, Role: RoleParameters, Start: ps, End: pe})
	bs, be := at("{}")
	f.Add(m, Node{Kind: KindBlock, Role: RoleBody, Start: bs, End: be})
	return f
}

func TestArena_AppendRebasesIDs(t *testing.T) {
	a := NewArena()
	u1 := a.Append(buildSample(t, "p/A.java"))
	n := a.Len()
	u2 := a.Append(buildSample(t, "q/A.java"))

	if u1.Root != 0 {
		t.Errorf("first root = %d, want 0", u1.Root)
	}
	if u2.Root != NodeID(n) {
		t.Errorf("second root = %d, want %d", u2.Root, n)
	}
	for id := u2.Root; int(id) < a.Len(); id++ {
		node := a.Node(id)
		if node.ID != id {
			t.Fatalf("node %d has ID %d", id, node.ID)
		}
		if node.Unit != u2.ID {
			t.Fatalf("node %d unit = %d, want %d", id, node.Unit, u2.ID)
		}
		for _, c := range node.Children {
			if a.Parent(c) != id {
				t.Fatalf("child %d parent = %d, want %d", c, a.Parent(c), id)
			}
		}
	}
	if got, ok := a.UnitByPath("q/A.java"); !ok || got != u2 {
		t.Error("UnitByPath should find the second unit")
	}
}

func TestArena_Queries(t *testing.T) {
	a := NewArena()
	u := a.Append(buildSample(t, "p/A.java"))

	types := a.TypeDecls(u)
	if len(types) != 1 {
		t.Fatalf("TypeDecls = %v, want one", types)
	}
	cls := types[0]
	if got := a.QualifiedName(cls); got != "p.A" {
		t.Errorf("QualifiedName = %q, want p.A", got)
	}

	body := a.Child(cls, RoleBody)
	method := a.ChildOfKind(body, KindMethodDecl)
	if method == NoNode {
		t.Fatal("method not found")
	}
	if got := a.EnclosingType(method); got != cls {
		t.Errorf("EnclosingType = %d, want %d", got, cls)
	}
	block := a.Child(method, RoleBody)
	if got := a.EnclosingCallable(block); got != method {
		t.Errorf("EnclosingCallable = %d, want %d", got, method)
	}
	if got := a.Text(block); got != "{}" {
		t.Errorf("Text = %q", got)
	}

	comment := a.ChildOfKind(body, KindComment)
	field := a.ChildOfKind(body, KindFieldDecl)
	if got := a.NextSibling(comment); got != field {
		t.Errorf("NextSibling(comment) = %d, want field %d", got, field)
	}
	if !a.IsAncestor(cls, block) {
		t.Error("class should be an ancestor of the method body")
	}
}

func TestRender_KeepAllIsIdentity(t *testing.T) {
	a := NewArena()
	u := a.Append(buildSample(t, "p/A.java"))

	got := string(a.Render(u, Edit{}))
	if got != sampleSource {
		t.Errorf("Render() changed an untouched unit:\n%s", got)
	}
}

func TestRender_DropAndReplace(t *testing.T) {
	a := NewArena()
	u := a.Append(buildSample(t, "p/A.java"))
	body := a.Child(a.TypeDecls(u)[0], RoleBody)
	field := a.ChildOfKind(body, KindFieldDecl)
	comment := a.ChildOfKind(body, KindComment)
	method := a.ChildOfKind(body, KindMethodDecl)
	block := a.Child(method, RoleBody)

	got := string(a.Render(u, Edit{
		Keep: func(id NodeID) bool { return id != field && id != comment },
		Replace: map[NodeID]string{
			block: "{ throw new Error(); }",
		},
	}))
	want := "package p;\n\nclass A {\n  void m() { throw new Error(); }\n}\n"
	if got != want {
		t.Errorf("Render() =\n%q\nwant\n%q", got, want)
	}
}

func TestRender_DropValueTakesLead(t *testing.T) {
	a := NewArena()
	u := a.Append(buildSample(t, "p/A.java"))
	body := a.Child(a.TypeDecls(u)[0], RoleBody)
	decl := a.ChildOfKind(a.ChildOfKind(body, KindFieldDecl), KindVarDeclarator)
	value := a.Child(decl, RoleValue)

	got := string(a.Render(u, Edit{Keep: func(id NodeID) bool { return id != value }}))
	if !strings.Contains(got, "  int x;\n") {
		t.Errorf("initializer should be removed with its '=', got:\n%s", got)
	}
}

func TestRender_SemicolonReplacementHugsHeader(t *testing.T) {
	a := NewArena()
	u := a.Append(buildSample(t, "p/A.java"))
	body := a.Child(a.TypeDecls(u)[0], RoleBody)
	block := a.Child(a.ChildOfKind(body, KindMethodDecl), RoleBody)

	got := string(a.Render(u, Edit{Replace: map[NodeID]string{block: ";"}}))
	if !strings.Contains(got, "  void m();\n") {
		t.Errorf("Render() =\n%s", got)
	}
}

func TestRender_EmptyReplacementTakesTrailingSpace(t *testing.T) {
	a := NewArena()
	u := a.Append(buildSample(t, "p/A.java"))
	body := a.Child(a.TypeDecls(u)[0], RoleBody)
	typ := a.Child(a.ChildOfKind(body, KindFieldDecl), RoleType)

	got := string(a.Render(u, Edit{Replace: map[NodeID]string{typ: ""}}))
	if !strings.Contains(got, "\n  x = 1;\n") {
		t.Errorf("Render() =\n%q", got)
	}
}

func TestModifier(t *testing.T) {
	m := ModifierFromWord("public") | ModifierFromWord("static") | ModifierFromWord("final")
	if !m.Has(ModStatic | ModFinal) {
		t.Error("Has(static|final) = false")
	}
	if m.Has(ModAbstract) {
		t.Error("Has(abstract) = true")
	}
	if got := m.String(); got != "public static final" {
		t.Errorf("String() = %q", got)
	}
	if ModifierFromWord("class") != 0 {
		t.Error("non-modifier word should map to 0")
	}
}

func TestImport_Parts(t *testing.T) {
	imp := Import{Name: "java.util.Map.Entry"}
	if imp.Identifier() != "Entry" || imp.Qualifier() != "java.util.Map" {
		t.Errorf("Identifier/Qualifier = %q/%q", imp.Identifier(), imp.Qualifier())
	}
}

func TestRoleFromField(t *testing.T) {
	if RoleFromField("type_parameters") != RoleTypeParameters {
		t.Error("type_parameters should map to RoleTypeParameters")
	}
	if RoleFromField("nope") != RoleNone {
		t.Error("unknown field should map to RoleNone")
	}
}
