//go:build cgo

package javasrc

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"jslice/internal/ast"
)

const fooSource = `package com.example;

import java.util.List;
import static org.junit.Assert.*;

@Deprecated
public class Foo<T extends Comparable<T>> extends Base implements Runnable, Cloneable {
  private static final int LIMIT = 10, OTHER;
  String[] names;

  public Foo(int x) throws java.io.IOException {
    super(x);
  }

  @Override
  public void run() {
    List<String> items = helper.items(LIMIT, "a");
    for (String s : items) {
      if (s != null && count > 2L) {
        Runnable r = () -> System.out.println(s);
        Function<String, Integer> f = String::length;
      }
    }
  }

  interface Inner { default void m() {} }
}
`

func parseFoo(t *testing.T) (*ast.Arena, *ast.Unit) {
	t.Helper()
	a, err := ParseSource(context.Background(), "com/example/Foo.java", fooSource)
	if err != nil {
		t.Fatalf("ParseSource() error = %v", err)
	}
	return a, a.Units()[0]
}

func findAll(a *ast.Arena, root ast.NodeID, kind ast.Kind) []ast.NodeID {
	var out []ast.NodeID
	a.Walk(root, func(id ast.NodeID) bool {
		if a.Node(id).Kind == kind {
			out = append(out, id)
		}
		return true
	})
	return out
}

func TestParse_UnitHeader(t *testing.T) {
	a, u := parseFoo(t)

	if u.Package != "com.example" {
		t.Errorf("Package = %q", u.Package)
	}
	if len(u.Imports) != 2 {
		t.Fatalf("Imports = %v", u.Imports)
	}
	if u.Imports[0].Name != "java.util.List" || u.Imports[0].Static {
		t.Errorf("first import = %+v", u.Imports[0])
	}
	if !u.Imports[1].Static || !u.Imports[1].Asterisk || u.Imports[1].Name != "org.junit.Assert" {
		t.Errorf("second import = %+v", u.Imports[1])
	}
	if got := string(a.Render(u, ast.Edit{})); got != fooSource {
		t.Error("rendering an unedited unit should reproduce the source")
	}
}

func TestParse_TypeDeclaration(t *testing.T) {
	a, u := parseFoo(t)

	types := a.TypeDecls(u)
	if len(types) != 2 {
		t.Fatalf("TypeDecls = %d, want 2", len(types))
	}
	foo := a.Node(types[0])
	if foo.Kind != ast.KindClassDecl || foo.Name != "Foo" {
		t.Fatalf("first type = %s %q", foo.Kind, foo.Name)
	}
	if !foo.Mods.Has(ast.ModPublic) {
		t.Error("Foo should be public")
	}
	if a.QualifiedName(types[1]) != "com.example.Foo.Inner" {
		t.Errorf("nested name = %q", a.QualifiedName(types[1]))
	}

	sc := a.ChildOfKind(types[0], ast.KindSuperclass)
	if sc == ast.NoNode {
		t.Fatal("superclass missing")
	}
	if base := a.ChildOfKind(sc, ast.KindClassType); a.Node(base).Name != "Base" {
		t.Errorf("superclass type = %q", a.Node(base).Name)
	}
	si := a.ChildOfKind(types[0], ast.KindSuperInterfaces)
	if n := len(a.ChildrenOfKind(si, ast.KindClassType)); n != 2 {
		t.Errorf("interfaces = %d, want 2", n)
	}

	tps := a.Child(types[0], ast.RoleTypeParameters)
	tp := a.ChildOfKind(tps, ast.KindTypeParameter)
	if a.Node(tp).Name != "T" {
		t.Errorf("type parameter name = %q", a.Node(tp).Name)
	}
	if a.ChildOfKind(tp, ast.KindTypeBound) == ast.NoNode {
		t.Error("type bound missing")
	}

	mods := a.ChildOfKind(types[0], ast.KindModifiers)
	ann := a.ChildOfKind(mods, ast.KindAnnotation)
	if a.Node(ann).Name != "Deprecated" {
		t.Errorf("annotation = %q", a.Node(ann).Name)
	}
}

func TestParse_Members(t *testing.T) {
	a, u := parseFoo(t)
	foo := a.TypeDecls(u)[0]
	body := a.Child(foo, ast.RoleBody)

	fields := a.ChildrenOfKind(body, ast.KindFieldDecl)
	if len(fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(fields))
	}
	if !a.Node(fields[0]).Mods.Has(ast.ModStatic | ast.ModFinal | ast.ModPrivate) {
		t.Errorf("LIMIT mods = %s", a.Node(fields[0]).Mods)
	}
	decls := a.ChildrenOfKind(fields[0], ast.KindVarDeclarator)
	if len(decls) != 2 || a.Node(decls[0]).Name != "LIMIT" || a.Node(decls[1]).Name != "OTHER" {
		t.Fatalf("declarators = %v", decls)
	}
	value := a.Child(decls[0], ast.RoleValue)
	if a.Node(value).Kind != ast.KindLiteral || a.Node(value).Name != "int" {
		t.Errorf("LIMIT value = %s %q", a.Node(value).Kind, a.Node(value).Name)
	}
	if a.Node(value).Lead >= a.Node(value).Start {
		t.Error("initializer lead should cover the '='")
	}
	names := a.ChildOfKind(fields[1], ast.KindArrayType)
	if names == ast.NoNode || a.Node(names).Dims != 1 {
		t.Error("names should have an array type with one dimension")
	}

	ctor := a.ChildOfKind(body, ast.KindConstructorDecl)
	if a.Node(ctor).Name != "Foo" {
		t.Errorf("constructor name = %q", a.Node(ctor).Name)
	}
	throws := a.ChildOfKind(ctor, ast.KindThrows)
	if ct := a.ChildOfKind(throws, ast.KindClassType); a.Node(ct).Name != "java.io.IOException" {
		t.Errorf("thrown type = %q", a.Node(ct).Name)
	}
	params := a.Child(ctor, ast.RoleParameters)
	p := a.ChildOfKind(params, ast.KindParameter)
	if a.Node(p).Name != "x" || a.Node(a.Child(p, ast.RoleType)).Name != "int" {
		t.Error("parameter should be int x")
	}
	superCall := findAll(a, ctor, ast.KindExplicitCtorCall)
	if len(superCall) != 1 || a.Node(superCall[0]).Text != "super" {
		t.Errorf("explicit constructor call = %v", superCall)
	}
}

func TestParse_Expressions(t *testing.T) {
	a, u := parseFoo(t)

	calls := findAll(a, u.Root, ast.KindMethodCall)
	var items ast.NodeID = ast.NoNode
	for _, c := range calls {
		if a.Node(c).Name == "items" {
			items = c
		}
	}
	if items == ast.NoNode {
		t.Fatal("helper.items call missing")
	}
	obj := a.Child(items, ast.RoleObject)
	if a.Node(obj).Kind != ast.KindNameExpr || a.Node(obj).Name != "helper" {
		t.Errorf("call object = %s %q", a.Node(obj).Kind, a.Node(obj).Name)
	}
	args := a.Child(items, ast.RoleArguments)
	if len(a.Children(args)) != 2 {
		t.Errorf("arguments = %d", len(a.Children(args)))
	}

	bins := findAll(a, u.Root, ast.KindBinary)
	ops := map[string]bool{}
	for _, b := range bins {
		ops[a.Node(b).Text] = true
	}
	for _, op := range []string{"!=", "&&", ">"} {
		if !ops[op] {
			t.Errorf("binary operator %q missing (have %v)", op, ops)
		}
	}
	for _, lit := range findAll(a, u.Root, ast.KindLiteral) {
		if a.Text(lit) == "2L" && a.Node(lit).Name != "long" {
			t.Errorf("2L literal type = %q", a.Node(lit).Name)
		}
	}

	lambdas := findAll(a, u.Root, ast.KindLambda)
	if len(lambdas) != 1 {
		t.Fatalf("lambdas = %d", len(lambdas))
	}
	if len(findAll(a, lambdas[0], ast.KindParameter)) != 0 {
		t.Error("zero-arg lambda should have no parameters")
	}
	refs := findAll(a, u.Root, ast.KindMethodRef)
	if len(refs) != 1 || a.Node(refs[0]).Name != "length" {
		t.Errorf("method refs = %v", refs)
	}
	fe := findAll(a, u.Root, ast.KindForEach)
	if len(fe) != 1 || a.Node(fe[0]).Name != "s" {
		t.Error("for-each should bind s")
	}
}

func TestParse_SyntaxError(t *testing.T) {
	_, err := ParseSource(context.Background(), "Bad.java", "class Bad { void m( }")
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestLoader_LoadRoot(t *testing.T) {
	root := t.TempDir()
	write := func(rel, content string) {
		p := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	write("b/B.java", "package b; class B {}")
	write("a/A.java", "package a; class A {}")
	write("a/Broken.java", "package a; class {")
	write(".hidden/H.java", "class H {}")
	write("gen/G.java", "class G {}")

	l := NewLoader(LoaderOptions{Workers: 3, Exclude: []string{"gen/**"}}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	res, err := l.LoadRoot(context.Background(), root)
	if err != nil {
		t.Fatalf("LoadRoot() error = %v", err)
	}

	units := res.Arena.Units()
	if len(units) != 2 {
		t.Fatalf("units = %d, want 2", len(units))
	}
	if units[0].Path != "a/A.java" || units[1].Path != "b/B.java" {
		t.Errorf("units not in path order: %s, %s", units[0].Path, units[1].Path)
	}
	if len(res.Skipped) != 1 || res.Skipped[0].Path != "a/Broken.java" {
		t.Errorf("Skipped = %+v", res.Skipped)
	}
}
