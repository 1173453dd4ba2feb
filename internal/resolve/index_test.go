//go:build cgo

package resolve

import (
	"context"
	"errors"
	"testing"

	"jslice/internal/ast"
	"jslice/internal/javasrc"
)

var program = map[string]string{
	"com/example/Shape.java": `package com.example;

import java.util.List;
import java.util.*;
import org.lib.Widget;

public abstract class Shape extends Base implements Comparable<Shape> {
  static final int SIDES = 3;
  protected List<String> tags;
  Map<String, Integer> counts;

  public Shape(int n) { super(n); }
  public Shape() { this(SIDES); }

  abstract double area();

  int compare(Shape other) {
    double mine = area();
    for (String t : tags) {
      if (t.length() > SIDES) { return 1; }
    }
    Widget w = new Widget();
    return helper(w.size(), mine);
  }

  int helper(int a, double b) { return a; }

  static class Nested {
    Shape owner;
    int peek() { return owner.compare(owner); }
  }
}
`,
	"com/example/Base.java": `package com.example;

public class Base {
  protected int id;
  public Base(int id) { this.id = id; }
  public String describe() { return "base" + id; }
}
`,
	"com/example/Square.java": `package com.example;

import static com.example.Util.twice;

public class Square extends Shape implements Unknown {
  double side;
  double area() { return twice(side) * side; }
  void probe() { String d = describe(); int x = id; mystery(); }
}
`,
	"com/example/Util.java": `package com.example;

public final class Util {
  public static double twice(double v) { return v * 2; }
}
`,
}

func loadProgram(t *testing.T) (*Index, *ast.Arena) {
	t.Helper()
	a, err := javasrc.ParseSources(context.Background(), program)
	if err != nil {
		t.Fatalf("ParseSources() error = %v", err)
	}
	return NewIndex(a), a
}

// find returns the first node of kind in the unit at path whose Name is
// name.
func find(t *testing.T, a *ast.Arena, path string, kind ast.Kind, name string) ast.NodeID {
	t.Helper()
	u, ok := a.UnitByPath(path)
	if !ok {
		t.Fatalf("unit %s missing", path)
	}
	found := ast.NoNode
	a.Walk(u.Root, func(id ast.NodeID) bool {
		if found != ast.NoNode {
			return false
		}
		if a.Kind(id) == kind && a.Node(id).Name == name {
			found = id
			return false
		}
		return true
	})
	if found == ast.NoNode {
		t.Fatalf("%s %q not found in %s", kind, name, path)
	}
	return found
}

func TestIndex_ProgramTypes(t *testing.T) {
	idx, _ := loadProgram(t)
	for _, qn := range []string{"com.example.Shape", "com.example.Shape.Nested", "com.example.Base", "com.example.Util"} {
		if !idx.IsProgramType(qn) {
			t.Errorf("IsProgramType(%q) = false", qn)
		}
	}
	if idx.IsProgramType("com.example.Widget") {
		t.Error("Widget is not declared in the program")
	}
}

func TestLookupType(t *testing.T) {
	idx, a := loadProgram(t)
	ctx := find(t, a, "com/example/Shape.java", ast.KindMethodDecl, "compare")

	tests := []struct {
		name     string
		want     string
		program  bool
		unsolved bool
	}{
		{name: "int", want: "int"},
		{name: "List", want: "java.util.List"},
		{name: "Map", want: "java.util.Map"},
		{name: "String", want: "java.lang.String"},
		{name: "Base", want: "com.example.Base", program: true},
		{name: "Nested", want: "com.example.Shape.Nested", program: true},
		{name: "Shape.Nested", want: "com.example.Shape.Nested", program: true},
		{name: "com.example.Util", want: "com.example.Util", program: true},
		{name: "java.io.File", want: "java.io.File"},
		{name: "Widget", unsolved: true},
		{name: "Gadget", unsolved: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := idx.LookupType(tt.name, ctx)
			if tt.unsolved {
				if !errors.Is(err, ErrUnsolved) {
					t.Fatalf("LookupType(%q) error = %v, want ErrUnsolved", tt.name, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LookupType(%q) error = %v", tt.name, err)
			}
			if got.Name != tt.want {
				t.Errorf("LookupType(%q) = %q, want %q", tt.name, got.Name, tt.want)
			}
			if (got.Decl != ast.NoNode) != tt.program {
				t.Errorf("LookupType(%q) program = %v, want %v", tt.name, got.Decl != ast.NoNode, tt.program)
			}
		})
	}
}

func TestSupertypes(t *testing.T) {
	idx, a := loadProgram(t)
	square := find(t, a, "com/example/Square.java", ast.KindClassDecl, "Square")

	supers := idx.Supertypes(square)
	if len(supers) != 2 {
		t.Fatalf("Supertypes() = %d entries, want 2", len(supers))
	}
	if !supers[0].Extends || supers[0].Type.Name != "com.example.Shape" || supers[0].Err != nil {
		t.Errorf("superclass = %+v", supers[0])
	}
	if !errors.Is(supers[1].Err, ErrUnsolved) {
		t.Errorf("Unknown interface should not resolve, got %v", supers[1].Err)
	}
	if !idx.HasUnresolvedSupertype(square) {
		t.Error("Square has an unresolved supertype")
	}
	shape := find(t, a, "com/example/Shape.java", ast.KindClassDecl, "Shape")
	if idx.HasUnresolvedSupertype(shape) {
		t.Error("Shape's supertypes all resolve")
	}
}

func TestResolve_Names(t *testing.T) {
	idx, a := loadProgram(t)
	const shape = "com/example/Shape.java"

	compare := find(t, a, shape, ast.KindMethodDecl, "compare")
	var sides, mine, tagsRef ast.NodeID = ast.NoNode, ast.NoNode, ast.NoNode
	a.Walk(compare, func(id ast.NodeID) bool {
		if a.Kind(id) != ast.KindNameExpr {
			return true
		}
		switch a.Node(id).Name {
		case "SIDES":
			sides = id
		case "mine":
			mine = id
		case "tags":
			tagsRef = id
		}
		return true
	})

	d, err := idx.Resolve(sides)
	if err != nil || d.Kind != DeclField || d.QualifiedName != "com.example.Shape#SIDES" {
		t.Errorf("SIDES resolved to %+v, %v", d, err)
	}
	if d.Type.Name != "int" {
		t.Errorf("SIDES type = %q", d.Type.Name)
	}

	d, err = idx.Resolve(mine)
	if err != nil || d.Kind != DeclLocal || d.Type.Name != "double" {
		t.Errorf("mine resolved to %+v, %v", d, err)
	}

	d, err = idx.Resolve(tagsRef)
	if err != nil || d.Type.Name != "java.util.List" || len(d.Type.Args) != 1 {
		t.Errorf("tags resolved to %+v, %v", d, err)
	}
}

func TestResolve_Calls(t *testing.T) {
	idx, a := loadProgram(t)
	const shape = "com/example/Shape.java"
	const square = "com/example/Square.java"

	tests := []struct {
		name     string
		path     string
		kind     ast.Kind
		call     string
		want     string
		external bool
		unsolved bool
	}{
		{name: "own method", path: shape, kind: ast.KindMethodCall, call: "area", want: "com.example.Shape#area"},
		{name: "overload by arity", path: shape, kind: ast.KindMethodCall, call: "helper", want: "com.example.Shape#helper"},
		{name: "jdk receiver", path: shape, kind: ast.KindMethodCall, call: "length", external: true},
		{name: "unresolved receiver", path: shape, kind: ast.KindMethodCall, call: "size", unsolved: true},
		{name: "field receiver", path: shape, kind: ast.KindMethodCall, call: "compare", want: "com.example.Shape#compare"},
		{name: "inherited method", path: square, kind: ast.KindMethodCall, call: "describe", want: "com.example.Base#describe"},
		{name: "static import", path: square, kind: ast.KindMethodCall, call: "twice", want: "com.example.Util#twice"},
		{name: "unknown with unresolved super", path: square, kind: ast.KindMethodCall, call: "mystery", unsolved: true},
		{name: "inherited field", path: square, kind: ast.KindNameExpr, call: "id", want: "com.example.Base#id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := find(t, a, tt.path, tt.kind, tt.call)
			d, err := idx.Resolve(id)
			switch {
			case tt.unsolved:
				if !errors.Is(err, ErrUnsolved) {
					t.Fatalf("Resolve() = %+v, %v; want ErrUnsolved", d, err)
				}
			case err != nil:
				t.Fatalf("Resolve() error = %v", err)
			case tt.external:
				if !d.External() {
					t.Errorf("Resolve() = %+v, want an external declaration", d)
				}
			default:
				if d.QualifiedName != tt.want || d.External() {
					t.Errorf("Resolve() = %q (external %v), want %q", d.QualifiedName, d.External(), tt.want)
				}
			}
		})
	}
}

func TestResolve_TypeVariableMembers(t *testing.T) {
	const box = "com/example/Box.java"
	a, err := javasrc.ParseSources(context.Background(), map[string]string{
		"com/example/Base.java": program["com/example/Base.java"],
		box: `package com.example;

public class Box<T extends Base, U extends Missing, V> {
  int use(T t, U u, V v) {
    String a = t.describe();
    int b = t.id;
    u.grow();
    int c = u.size;
    return v.hashCode() + a.length() + b + c;
  }
}
`,
	})
	if err != nil {
		t.Fatalf("ParseSources() error = %v", err)
	}
	idx := NewIndex(a)

	tests := []struct {
		name     string
		kind     ast.Kind
		member   string
		want     string
		external bool
		unsolved bool
	}{
		{name: "method of program bound", kind: ast.KindMethodCall, member: "describe", want: "com.example.Base#describe"},
		{name: "field of program bound", kind: ast.KindFieldAccess, member: "id", want: "com.example.Base#id"},
		{name: "method of unresolved bound", kind: ast.KindMethodCall, member: "grow", unsolved: true},
		{name: "field of unresolved bound", kind: ast.KindFieldAccess, member: "size", unsolved: true},
		{name: "unbounded", kind: ast.KindMethodCall, member: "hashCode", external: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := idx.Resolve(find(t, a, box, tt.kind, tt.member))
			switch {
			case tt.unsolved:
				if !errors.Is(err, ErrUnsolved) {
					t.Fatalf("Resolve() = %+v, %v; want ErrUnsolved", d, err)
				}
			case err != nil:
				t.Fatalf("Resolve() error = %v", err)
			case tt.external:
				if !d.External() {
					t.Errorf("Resolve() = %+v, want an external declaration", d)
				}
			default:
				if d.QualifiedName != tt.want || d.External() {
					t.Errorf("Resolve() = %q (external %v), want %q", d.QualifiedName, d.External(), tt.want)
				}
			}
		})
	}
}

func TestResolve_Constructors(t *testing.T) {
	idx, a := loadProgram(t)
	const shape = "com/example/Shape.java"

	var superCall, thisCall ast.NodeID = ast.NoNode, ast.NoNode
	u, _ := a.UnitByPath(shape)
	a.Walk(u.Root, func(id ast.NodeID) bool {
		if a.Kind(id) == ast.KindExplicitCtorCall {
			if a.Node(id).Text == "super" {
				superCall = id
			} else {
				thisCall = id
			}
		}
		return true
	})

	d, err := idx.Resolve(superCall)
	if err != nil || d.Kind != DeclConstructor || d.QualifiedName != "com.example.Base#<init>" {
		t.Errorf("super(n) resolved to %+v, %v", d, err)
	}
	d, err = idx.Resolve(thisCall)
	if err != nil || d.Kind != DeclConstructor || a.Kind(d.Node) != ast.KindConstructorDecl {
		t.Fatalf("this(SIDES) resolved to %+v, %v", d, err)
	}
	if n, _ := idx.paramCount(d.Node); n != 1 {
		t.Errorf("this(SIDES) picked a constructor with %d parameters", n)
	}

	creation := ast.NoNode
	a.Walk(u.Root, func(id ast.NodeID) bool {
		if a.Kind(id) == ast.KindObjectCreation {
			creation = id
		}
		return true
	})
	if _, err := idx.Resolve(creation); !errors.Is(err, ErrUnsolved) {
		t.Errorf("new Widget() error = %v, want ErrUnsolved", err)
	}
}

func TestTypeOf(t *testing.T) {
	idx, a := loadProgram(t)
	u, _ := a.UnitByPath("com/example/Util.java")

	var bin ast.NodeID = ast.NoNode
	a.Walk(u.Root, func(id ast.NodeID) bool {
		if a.Kind(id) == ast.KindBinary {
			bin = id
		}
		return true
	})
	if got := idx.TypeOf(bin).Name; got != "double" {
		t.Errorf("TypeOf(v * 2) = %q, want double", got)
	}

	base, _ := a.UnitByPath("com/example/Base.java")
	a.Walk(base.Root, func(id ast.NodeID) bool {
		if a.Kind(id) == ast.KindBinary {
			bin = id
		}
		return true
	})
	if got := idx.TypeOf(bin).Name; got != "java.lang.String" {
		t.Errorf("TypeOf(\"base\" + id) = %q, want java.lang.String", got)
	}
}

func TestType_String(t *testing.T) {
	tp := Type{Name: "java.util.Map", Decl: ast.NoNode, Args: []Type{Named("java.lang.String"), Unknown()}, Dims: 1}
	if got := tp.String(); got != "java.util.Map<java.lang.String, ?>[]" {
		t.Errorf("String() = %q", got)
	}
	if tp.Element().Dims != 0 || !tp.IsArray() {
		t.Error("Element() should strip one dimension")
	}
}
