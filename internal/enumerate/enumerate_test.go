package enumerate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jslice/internal/ast"
	"jslice/internal/unsolved"
)

func fileNamed(t *testing.T, res Result, path string) string {
	t.Helper()
	for _, f := range res.Files {
		if f.Path == path {
			return string(f.Content)
		}
	}
	var got []string
	for _, f := range res.Files {
		got = append(got, f.Path)
	}
	t.Fatalf("no file %s in %v", path, got)
	return ""
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"best-effort", BestEffort, false},
		{"", BestEffort, false},
		{"ALL", All, false},
		{"Input-Condition", InputCondition, false},
		{"random", BestEffort, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Policy {
	t.Helper()
	p, err := ParsePolicy(s)
	require.NoError(t, err)
	return p
}

func TestCollapse_StubMethod(t *testing.T) {
	reg := unsolved.NewRegistry()
	foo := unsolved.NewTypeGroup([]string{"com.example.Foo"})
	require.NoError(t, reg.Add(foo))
	require.NoError(t, reg.Add(unsolved.NewMethodGroup("bar", []*unsolved.TypeGroup{foo},
		[]unsolved.MethodVariant{{Return: unsolved.SolvedName("void")}})))

	res, err := Collapse(reg, nil, Options{})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "com.example.Foo", res.Files[0].Qualified)
	assert.Equal(t, `package com.example;

public class Foo {

    public void bar() {
        throw new java.lang.Error();
    }
}
`, fileNamed(t, res, "com/example/Foo.java"))
	assert.True(t, reg.Frozen())
}

func TestCollapse_FirstDeclaringCandidate(t *testing.T) {
	build := func() (*unsolved.Registry, *unsolved.FieldGroup) {
		reg := unsolved.NewRegistry()
		mixin := unsolved.NewTypeGroup([]string{"com.example.Mixin"})
		base := unsolved.NewTypeGroup([]string{"com.example.Base"})
		require.NoError(t, reg.Add(mixin))
		require.NoError(t, reg.Add(base))
		x := unsolved.NewFieldGroup("x", []*unsolved.TypeGroup{mixin, base},
			[]unsolved.FieldVariant{{Type: unsolved.SolvedName("int")}})
		require.NoError(t, reg.Add(x))
		return reg, x
	}

	reg, _ := build()
	res, err := Collapse(reg, nil, Options{})
	require.NoError(t, err)
	assert.Contains(t, fileNamed(t, res, "com/example/Mixin.java"), "public int x;")
	assert.NotContains(t, fileNamed(t, res, "com/example/Base.java"), " x;")

	reg, _ = build()
	_, err = reg.FindAndNarrow([]string{"com.example.Base#x"})
	require.NoError(t, err)
	res, err = Collapse(reg, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "package com.example;\n\npublic class Base {\n    public int x;\n}\n",
		fileNamed(t, res, "com/example/Base.java"))
	assert.NotContains(t, fileNamed(t, res, "com/example/Mixin.java"), " x;")
}

func TestCollapse_NestedTypes(t *testing.T) {
	reg := unsolved.NewRegistry()
	outer := unsolved.NewTypeGroup([]string{"com.example.Outer"})
	inner := unsolved.NewTypeGroup([]string{"com.example.Outer.Inner"})
	lone := unsolved.NewTypeGroup([]string{"org.lib.Holder.Entry"})
	require.NoError(t, reg.Add(inner))
	require.NoError(t, reg.Add(outer))
	require.NoError(t, reg.Add(lone))
	require.NoError(t, reg.Add(unsolved.NewFieldGroup("size", []*unsolved.TypeGroup{inner},
		[]unsolved.FieldVariant{{Type: unsolved.SolvedName("long")}})))

	res, err := Collapse(reg, nil, Options{})
	require.NoError(t, err)
	require.Len(t, res.Files, 2, "nested types never get their own file")
	assert.Equal(t, "com/example/Outer.java", res.Files[0].Path)
	assert.Equal(t, `package com.example;

public class Outer {
    public static class Inner {
        public long size;
    }
}
`, string(res.Files[0].Content))
	assert.Equal(t, `package org.lib;

public class Holder {
    public static class Entry {
    }
}
`, fileNamed(t, res, "org/lib/Holder.java"))
}

func TestCollapse_ProgramOuterTypeSkipped(t *testing.T) {
	reg := unsolved.NewRegistry()
	require.NoError(t, reg.Add(unsolved.NewTypeGroup([]string{"com.example.Main.Missing"})))
	res, err := Collapse(reg, nil, Options{
		IsProgramType: func(q string) bool { return q == "com.example.Main" },
	})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
}

func TestCollapse_Discard(t *testing.T) {
	reg := unsolved.NewRegistry()
	foo := unsolved.NewTypeGroup([]string{"Foo"})
	require.NoError(t, reg.Add(foo))
	require.NoError(t, reg.Add(unsolved.NewFieldGroup("x", []*unsolved.TypeGroup{foo}, []unsolved.FieldVariant{
		{Type: unsolved.SolvedName("int"), MustPreserve: []ast.NodeID{3}},
		{Type: unsolved.SolvedName("java.lang.String"), MustPreserve: []ast.NodeID{9}},
	})))
	liveness := reg.DependentNodes()

	res, err := Collapse(reg, liveness, Options{})
	require.NoError(t, err)
	assert.Equal(t, []ast.NodeID{9}, res.Discard)
	assert.Equal(t, "public class Foo {\n    public int x;\n}\n", fileNamed(t, res, "Foo.java"))
}

func TestEach_All(t *testing.T) {
	reg := unsolved.NewRegistry()
	foo := unsolved.NewTypeGroup([]string{"a.Foo", "b.Foo"})
	require.NoError(t, reg.Add(foo))
	require.NoError(t, reg.Add(unsolved.NewMethodGroup("get", []*unsolved.TypeGroup{foo}, []unsolved.MethodVariant{
		{Return: unsolved.SolvedName("int")},
		{Return: unsolved.SolvedName("long")},
		{Return: unsolved.SolvedName("boolean")},
	})))

	e, err := New(reg, Options{Policy: All})
	require.NoError(t, err)
	assert.Equal(t, 6, e.Combinations(100))
	assert.Equal(t, -1, e.Combinations(5))

	first, err := e.Collapse(nil)
	require.NoError(t, err)

	var seen []string
	n := e.Each(nil, func(r Result) bool {
		var ids []string
		for _, c := range r.Choices {
			ids = append(ids, c.Identity)
		}
		seen = append(seen, strings.Join(ids, " "))
		return true
	})
	assert.Equal(t, 6, n)
	require.Len(t, seen, 6)
	assert.Equal(t, "a.Foo a.Foo#get()", seen[0])
	assert.Equal(t, "b.Foo b.Foo#get()", seen[5])
	assert.Equal(t, "a.Foo a.Foo#get()", first.Choices[0].Identity+" "+first.Choices[1].Identity)

	capped, err := New(reg, Options{Policy: All, MaxCombinations: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, capped.Each(nil, func(Result) bool { return true }))
	assert.Equal(t, 1, capped.Each(nil, func(Result) bool { return false }))
}

func TestCollapse_InputCondition(t *testing.T) {
	reg := unsolved.NewRegistry()
	require.NoError(t, reg.Add(unsolved.NewTypeGroup([]string{"a.Foo", "b.Foo"})))

	_, err := Collapse(reg, nil, Options{Policy: InputCondition})
	assert.ErrorIs(t, err, ErrNoChooser)

	res, err := Collapse(reg, nil, Options{Policy: InputCondition, Chooser: IdentityChooser{"b.Foo"}})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, "b/Foo.java", res.Files[0].Path)

	_, err = Collapse(reg, nil, Options{
		Policy:  InputCondition,
		Chooser: ChooserFunc(func(unsolved.Alternates) (int, bool) { return 7, true }),
	})
	assert.Error(t, err)
}

type fixedCorrections struct {
	replace map[string]string
	extend  map[string]string
}

func (c fixedCorrections) Replacement(s string) (string, bool) {
	r, ok := c.replace[s]
	return r, ok
}

func (c fixedCorrections) Supertype(s string) (string, bool) {
	r, ok := c.extend[s]
	return r, ok
}

func TestCollapse_Corrections(t *testing.T) {
	reg := unsolved.NewRegistry()
	foo := unsolved.NewTypeGroup([]string{"com.example.Foo"})
	ret := unsolved.NewTypeGroup([]string{"com.example.GetCountReturnType"})
	require.NoError(t, reg.Add(foo))
	require.NoError(t, reg.Add(ret))
	require.NoError(t, reg.Add(unsolved.NewMethodGroup("getCount", []*unsolved.TypeGroup{foo},
		[]unsolved.MethodVariant{{Return: unsolved.Unsolved{Group: ret}}})))

	res, err := Collapse(reg, nil, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Files, 2)
	assert.Contains(t, fileNamed(t, res, "com/example/Foo.java"), "public com.example.GetCountReturnType getCount()")

	res, err = Collapse(reg, nil, Options{Corrections: fixedCorrections{
		replace: map[string]string{"GetCountReturnType": "int"},
		extend:  map[string]string{"Foo": "java.lang.RuntimeException"},
	}})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	foo1 := fileNamed(t, res, "com/example/Foo.java")
	assert.Contains(t, foo1, "public class Foo extends java.lang.RuntimeException {")
	assert.Contains(t, foo1, "public int getCount()")
}

func TestCollapse_DeclarationForms(t *testing.T) {
	reg := unsolved.NewRegistry()
	color := unsolved.NewTypeGroup([]string{"org.lib.Color"})
	color.SetDeclKind(unsolved.KindEnum)
	shape := unsolved.NewTypeGroup([]string{"org.lib.Shape"})
	shape.SetDeclKind(unsolved.KindInterface)
	shape.TypeParams = 1
	square := unsolved.NewTypeGroup([]string{"org.lib.Square"})
	square.Implement(unsolved.Unsolved{Group: shape})
	for _, g := range []*unsolved.TypeGroup{color, shape, square} {
		require.NoError(t, reg.Add(g))
	}

	red := unsolved.NewFieldGroup("RED", []*unsolved.TypeGroup{color}, []unsolved.FieldVariant{{Type: unsolved.Solved{}}})
	red.Static, red.Final = true, true
	require.NoError(t, reg.Add(red))
	require.NoError(t, reg.Add(unsolved.NewFieldGroup("SIDES", []*unsolved.TypeGroup{shape},
		[]unsolved.FieldVariant{{Type: unsolved.SolvedName("int")}})))
	area := unsolved.NewMethodGroup("area", []*unsolved.TypeGroup{shape},
		[]unsolved.MethodVariant{{Return: unsolved.SolvedName("double"), Params: []unsolved.MemberType{unsolved.SolvedName("int")}}})
	require.NoError(t, reg.Add(area))
	require.NoError(t, reg.Add(unsolved.NewConstructorGroup([]*unsolved.TypeGroup{square},
		[]unsolved.MemberType{unsolved.SolvedName("java.lang.String")})))

	res, err := Collapse(reg, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "package org.lib;\n\npublic enum Color {\n    RED\n}\n", fileNamed(t, res, "org/lib/Color.java"))
	assert.Equal(t, `package org.lib;

public interface Shape<T> {
    public static final int SIDES = 0;

    public double area(int parameter0);
}
`, fileNamed(t, res, "org/lib/Shape.java"))
	assert.Equal(t, `package org.lib;

public class Square implements org.lib.Shape {

    public Square(java.lang.String parameter0) {
        throw new java.lang.Error();
    }

    public double area(int parameter0) {
        throw new java.lang.Error();
    }
}
`, fileNamed(t, res, "org/lib/Square.java"))
}

func TestCollapse_Idempotent(t *testing.T) {
	build := func() *unsolved.Registry {
		reg := unsolved.NewRegistry()
		foo := unsolved.NewTypeGroup([]string{"com.example.Foo", "com.other.Foo"})
		require.NoError(t, reg.Add(foo))
		require.NoError(t, reg.Add(unsolved.NewMethodGroup("run", []*unsolved.TypeGroup{foo}, []unsolved.MethodVariant{
			{Return: unsolved.SolvedName("void"), Params: []unsolved.MemberType{unsolved.SolvedName("int")}},
			{Return: unsolved.SolvedName("void"), Params: []unsolved.MemberType{unsolved.SolvedName("long")}},
		})))
		return reg
	}
	a, err := Collapse(build(), nil, Options{})
	require.NoError(t, err)
	b, err := Collapse(build(), nil, Options{})
	require.NoError(t, err)
	require.Equal(t, len(a.Files), len(b.Files))
	for i := range a.Files {
		assert.Equal(t, a.Files[i].Path, b.Files[i].Path)
		assert.Equal(t, a.Files[i].Content, b.Files[i].Content)
	}
	assert.Equal(t, "com.example.Foo#run(int)", a.Choices[1].Identity)
}
