//go:build cgo

package rules

import (
	"context"
	"testing"

	"jslice/internal/ast"
	"jslice/internal/javasrc"
	"jslice/internal/resolve"
)

const source = `package p;

@Marker
public class A<T> extends B implements C {
  private final int count = compute();
  static { init(); }

  @Override
  public <R> R apply(T in, int n) throws E {
    return convert(in);
  }

  class Inner {}
}

enum Color { RED(1), GREEN(2); Color(int v) {} }
`

func parse(t *testing.T) *ast.Arena {
	t.Helper()
	a, err := javasrc.ParseSource(context.Background(), "p/A.java", source)
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	return a
}

func first(a *ast.Arena, kind ast.Kind) ast.NodeID {
	found := ast.NoNode
	a.Walk(a.Units()[0].Root, func(id ast.NodeID) bool {
		if found == ast.NoNode && a.Kind(id) == kind {
			found = id
		}
		return found == ast.NoNode
	})
	return found
}

func kinds(a *ast.Arena, ids []ast.NodeID) []ast.Kind {
	out := make([]ast.Kind, len(ids))
	for i, id := range ids {
		out[i] = a.Kind(id)
	}
	return out
}

func equalKinds(got, want []ast.Kind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestRelevant_TypeDeclStopsAtHeader(t *testing.T) {
	a := parse(t)
	cls := first(a, ast.KindClassDecl)

	got := kinds(a, Relevant(a, cls))
	want := []ast.Kind{ast.KindModifiers, ast.KindTypeParameters, ast.KindSuperclass, ast.KindSuperInterfaces}
	if !equalKinds(got, want) {
		t.Errorf("Relevant(class) = %v, want %v", got, want)
	}
	if r := Relevant(a, a.Child(cls, ast.RoleBody)); len(r) != 0 {
		t.Errorf("Relevant(class body) = %v, want nothing", kinds(a, r))
	}
}

func TestRelevant_CallableExcludesBody(t *testing.T) {
	a := parse(t)
	m := first(a, ast.KindMethodDecl)

	got := kinds(a, Relevant(a, m))
	want := []ast.Kind{ast.KindModifiers, ast.KindTypeParameters, ast.KindClassType, ast.KindParameters, ast.KindThrows}
	if !equalKinds(got, want) {
		t.Errorf("Relevant(method) = %v, want %v", got, want)
	}
	for _, id := range Relevant(a, m) {
		if a.Kind(id) == ast.KindBlock {
			t.Error("method body must not be relevant")
		}
	}
}

func TestRelevant_FieldSkipsInitializer(t *testing.T) {
	a := parse(t)
	f := first(a, ast.KindFieldDecl)

	got := kinds(a, Relevant(a, f))
	want := []ast.Kind{ast.KindModifiers, ast.KindPrimitiveType}
	if !equalKinds(got, want) {
		t.Errorf("Relevant(field) = %v, want %v", got, want)
	}
	if r := Relevant(a, first(a, ast.KindVarDeclarator)); len(r) != 0 {
		t.Errorf("Relevant(field declarator) = %v, want nothing", kinds(a, r))
	}
}

func TestRelevant_StatementsTakeEverything(t *testing.T) {
	a := parse(t)
	ret := first(a, ast.KindReturn)
	r := Relevant(a, ret)
	if len(r) != 1 || a.Kind(r[0]) != ast.KindMethodCall {
		t.Errorf("Relevant(return) = %v", kinds(a, r))
	}
	if r := Relevant(a, first(a, ast.KindPackageDecl)); r != nil {
		t.Errorf("Relevant(package) = %v", kinds(a, r))
	}
}

func TestRelevant_EnumKeepsConstants(t *testing.T) {
	a := parse(t)
	e := first(a, ast.KindEnumDecl)
	var constants int
	for _, id := range Relevant(a, e) {
		if a.Kind(id) == ast.KindEnumConstant {
			constants++
		}
	}
	if constants != 2 {
		t.Errorf("enum constants relevant = %d, want 2", constants)
	}
	c := first(a, ast.KindEnumConstant)
	if got := kinds(a, Relevant(a, c)); !equalKinds(got, []ast.Kind{ast.KindArguments}) {
		t.Errorf("Relevant(constant) = %v", got)
	}
}

func TestRelevant_Deterministic(t *testing.T) {
	a := parse(t)
	a.Walk(a.Units()[0].Root, func(id ast.NodeID) bool {
		x, y := Relevant(a, id), Relevant(a, id)
		if len(x) != len(y) {
			t.Fatalf("Relevant(%d) not deterministic", id)
		}
		for i := range x {
			if x[i] != y[i] {
				t.Fatalf("Relevant(%d) not deterministic", id)
			}
		}
		return true
	})
}

func TestRelevantDecl(t *testing.T) {
	a := parse(t)
	cls := first(a, ast.KindClassDecl)
	m := first(a, ast.KindMethodDecl)
	decl := first(a, ast.KindVarDeclarator)

	tests := []struct {
		name string
		d    resolve.Declaration
		want []ast.NodeID
	}{
		{"type", resolve.Declaration{Kind: resolve.DeclType, Node: cls, Owner: ast.NoNode}, []ast.NodeID{cls}},
		{"method", resolve.Declaration{Kind: resolve.DeclMethod, Node: m, Owner: cls}, []ast.NodeID{m, cls}},
		{"field", resolve.Declaration{Kind: resolve.DeclField, Node: decl, Owner: cls}, []ast.NodeID{decl, a.Parent(decl), cls}},
		{"implicit constructor", resolve.Declaration{Kind: resolve.DeclConstructor, Node: cls, Owner: cls}, []ast.NodeID{cls}},
		{"external", resolve.Declaration{Kind: resolve.DeclMethod, Node: ast.NoNode, Owner: ast.NoNode}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RelevantDecl(a, tt.d)
			if len(got) != len(tt.want) {
				t.Fatalf("RelevantDecl() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("RelevantDecl()[%d] = %d, want %d", i, got[i], tt.want[i])
				}
			}
		})
	}
}
