//go:build cgo

package slicer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jslice/internal/ast"
	"jslice/internal/enumerate"
	jerrors "jslice/internal/errors"
	"jslice/internal/javasrc"
	"jslice/internal/resolve"
	"jslice/internal/slogutil"
	"jslice/internal/unsolved"
)

type fixture struct {
	a   *ast.Arena
	idx *resolve.Index
	reg *unsolved.Registry
	res *Result
}

func run(t *testing.T, sources map[string]string, targets ...string) *fixture {
	t.Helper()
	a, err := javasrc.ParseSources(context.Background(), sources)
	require.NoError(t, err)
	idx := resolve.NewIndex(a)
	reg := unsolved.NewRegistry()
	logger := slogutil.NewDiscardLogger()
	ts, err := ParseTargets(targets)
	require.NoError(t, err)
	res, err := New(idx, unsolved.NewGenerator(idx, reg, logger), logger).Run(context.Background(), ts)
	require.NoError(t, err)
	return &fixture{a: a, idx: idx, reg: reg, res: res}
}

// pruned renders the slice and returns it by path.
func (f *fixture) pruned(discard ...ast.NodeID) map[string]string {
	out := make(map[string]string)
	for _, u := range Prune(f.a, f.res.Keep, append(discard, f.res.Dropped...), f.a.SortedUnits()) {
		out[u.Path] = string(u.Content)
	}
	return out
}

func (f *fixture) collapse(t *testing.T) enumerate.Result {
	t.Helper()
	res, err := enumerate.Collapse(f.reg, f.res.Liveness, enumerate.Options{IsProgramType: f.idx.IsProgramType})
	require.NoError(t, err)
	return res
}

func file(files []enumerate.File, path string) (string, bool) {
	for _, f := range files {
		if f.Path == path {
			return string(f.Content), true
		}
	}
	return "", false
}

func TestRun_SelfContainedTargetIsUnchanged(t *testing.T) {
	const path = "com/example/Calc.java"
	const src = `package com.example;

import java.util.List;

/** Adds things. */
public class Calc {
    // the answer
    public int add(int a, int b) {
        int sum = a + b; // plain
        return sum;
    }
}
`
	f := run(t, map[string]string{path: src}, "com.example.Calc#add(int, int)")

	assert.Equal(t, 0, f.reg.Len())
	assert.Equal(t, map[string]string{path: src}, f.pruned())
	require.Len(t, f.res.UsedUnits, 1)
	assert.Equal(t, path, f.res.UsedUnits[0].Path)
}

func TestRun_UnresolvedReceiverGetsStub(t *testing.T) {
	const path = "com/example/Main.java"
	const src = `package com.example;

public class Main {
    public void run(Foo foo) {
        foo.bar();
    }
}
`
	f := run(t, map[string]string{path: src}, "com.example.Main#run(Foo)")

	assert.Equal(t, map[string]string{path: src}, f.pruned())

	res := f.collapse(t)
	foo, ok := file(res.Files, "com/example/Foo.java")
	require.True(t, ok, "files = %v", res.Files)
	assert.Contains(t, foo, "public class Foo {")
	assert.Contains(t, foo, "public void bar() {")
	assert.Contains(t, foo, "throw new java.lang.Error();")
}

func TestRun_UnrelatedTypesAreAbsent(t *testing.T) {
	f := run(t, map[string]string{
		"com/example/Main.java": `package com.example;

public class Main {
    int one() {
        return 1;
    }
}

class Sidecar {
    int two() {
        return 2;
    }
}
`,
		"com/example/Other.java": `package com.example;

public class Other {
    Main main;

    int three() {
        return main.one() + 2;
    }
}
`,
	}, "com.example.Main#one()")

	out := f.pruned()
	require.Len(t, out, 1)
	main := out["com/example/Main.java"]
	assert.Contains(t, main, "int one() {\n        return 1;\n    }")
	assert.NotContains(t, main, "Sidecar")
	assert.NotContains(t, main, "two")
	assert.Equal(t, 0, f.reg.Len())
}

func TestRun_AmbiguousFieldNarrowedByImport(t *testing.T) {
	widget := map[string]string{
		"com/example/Widget.java": `package com.example;

public class Widget extends Base implements Mixin {
    int read() {
        return x;
    }
}
`,
	}
	f := run(t, widget, "com.example.Widget#read()")
	fields := f.reg.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, []string{"com.example.Mixin#x", "com.example.Base#x"}, fields[0].Identities())

	gadget := map[string]string{
		"com/example/Widget.java": widget["com/example/Widget.java"],
		"other/Gadget.java": `package other;

import com.example.Base;

public class Gadget extends Base {
    int peek() {
        return x;
    }
}
`,
	}
	f = run(t, gadget, "com.example.Widget#read()", "other.Gadget#peek()")
	fields = f.reg.Fields()
	require.Len(t, fields, 1)
	assert.Equal(t, []string{"com.example.Base#x"}, fields[0].Identities())

	res := f.collapse(t)
	base, ok := file(res.Files, "com/example/Base.java")
	require.True(t, ok)
	assert.Contains(t, base, " x;")
	if mixin, ok := file(res.Files, "com/example/Mixin.java"); ok {
		assert.NotContains(t, mixin, " x;")
	}
}

func TestRun_TargetNotFound(t *testing.T) {
	a, err := javasrc.ParseSources(context.Background(), map[string]string{
		"com/example/Main.java": "package com.example;\n\npublic class Main {\n    void run() {}\n}\n",
	})
	require.NoError(t, err)
	idx := resolve.NewIndex(a)
	logger := slogutil.NewDiscardLogger()
	ts, err := ParseTargets([]string{
		"com.example.Main#run()",
		"com.example.Main#walk()",
		"com.example.Missing#run()",
	})
	require.NoError(t, err)

	_, err = New(idx, unsolved.NewGenerator(idx, unsolved.NewRegistry(), logger), logger).Run(context.Background(), ts)
	require.Error(t, err)
	assert.True(t, jerrors.Is(err, jerrors.TargetNotFound))
	assert.Contains(t, err.Error(), "com.example.Main#walk()")
	assert.Contains(t, err.Error(), "com.example.Missing#run()")
	assert.NotContains(t, err.Error(), "com.example.Main#run()")
}

func TestPrune_Placeholders(t *testing.T) {
	const path = "com/example/Main.java"
	f := run(t, map[string]string{path: `package com.example;

public class Main {
    private int count = 3;
    private final int limit = 10;
    private final String label = "main";
    private String name;

    public int run() {
        return helper(limit);
    }

    String tag() {
        return label;
    }

    int helper(int n) {
        return n * 2;
    }

    void unused() {
        System.out.println("x");
    }
}
`}, "com.example.Main#run()", "com.example.Main#tag()")

	out := f.pruned()[path]
	assert.Contains(t, out, "private final int limit = 0;")
	assert.Contains(t, out, "private final String label = null;")
	assert.Contains(t, out, "int helper(int n) { throw new Error(); }")
	assert.Contains(t, out, "return helper(limit);")
	assert.NotContains(t, out, "count")
	assert.NotContains(t, out, "name")
	assert.NotContains(t, out, "unused")
}

func TestPrune_InterfaceDefaultMethodLosesBody(t *testing.T) {
	f := run(t, map[string]string{
		"com/example/Shape.java": `package com.example;

public interface Shape {
    double area();

    default String describe() {
        return "shape " + area();
    }
}
`,
		"com/example/Main.java": `package com.example;

public class Main {
    String show(Shape s) {
        return s.describe();
    }
}
`,
	}, "com.example.Main#show(Shape)")

	shape, ok := f.pruned()["com/example/Shape.java"]
	require.True(t, ok)
	assert.Contains(t, shape, "\n    String describe();\n")
	assert.NotContains(t, shape, "default")
	assert.NotContains(t, shape, "area")
}

func TestPrune_SuperCallSurvives(t *testing.T) {
	f := run(t, map[string]string{
		"com/example/Base.java": `package com.example;

public class Base {
    public Base(int x) {
        System.out.println(x);
    }
}
`,
		"com/example/Child.java": `package com.example;

public class Child extends Base {
    public Child(int x) {
        super(x);
        System.out.println("child");
    }
}
`,
		"com/example/Main.java": `package com.example;

public class Main {
    Object make() {
        return new Child(1);
    }
}
`,
	}, "com.example.Main#make()")

	out := f.pruned()
	assert.Contains(t, out["com/example/Child.java"], "public Child(int x) { super(x); throw new Error(); }")
	assert.Contains(t, out["com/example/Base.java"], "public Base(int x) { throw new Error(); }")
	assert.Len(t, out, 3)
}

func TestPrune_DiscardDropsLivenessNodes(t *testing.T) {
	const path = "com/example/Main.java"
	f := run(t, map[string]string{path: `package com.example;

public class Main {
    int run() {
        return helper();
    }

    int helper() {
        return 1;
    }
}
`}, "com.example.Main#run()")

	var helper ast.NodeID = ast.NoNode
	f.a.Walk(f.a.Units()[0].Root, func(id ast.NodeID) bool {
		if f.a.Kind(id) == ast.KindMethodDecl && f.a.Node(id).Name == "helper" {
			helper = id
		}
		return true
	})
	require.NotEqual(t, ast.NoNode, helper)
	require.True(t, f.res.Keep.Contains(helper))

	assert.NotContains(t, f.pruned(helper)[path], "int helper()")
}

func TestRun_TypeVariableMembersGoToUnresolvedBound(t *testing.T) {
	for name, src := range map[string]string{
		"class": `package com.example;

public class Main<T extends Shape> {
    int use(T shape) {
        return shape.area() + shape.sides;
    }
}
`,
		"method": `package com.example;

public class Main {
    <T extends Shape> int use(T shape) {
        return shape.area() + shape.sides;
    }
}
`,
	} {
		t.Run(name, func(t *testing.T) {
			const path = "com/example/Main.java"
			f := run(t, map[string]string{path: src}, "com.example.Main#use(T)")

			assert.Contains(t, f.pruned()[path], "return shape.area() + shape.sides;")
			shape, ok := file(f.collapse(t).Files, "com/example/Shape.java")
			require.True(t, ok)
			assert.Contains(t, shape, " area()")
			assert.Contains(t, shape, " sides")
		})
	}
}

func TestRun_LocalAndAnonymousClassBodiesSurvive(t *testing.T) {
	const path = "com/example/Main.java"
	const src = `package com.example;

public class Main {
    public int run() {
        class Local {
            int f() {
                return 2;
            }
        }
        Runnable r = new Runnable() {
            public void run() {
                System.out.println("x");
            }
        };
        r.run();
        return new Local().f();
    }
}
`
	f := run(t, map[string]string{path: src}, "com.example.Main#run()")

	assert.Equal(t, map[string]string{path: src}, f.pruned())
	assert.Equal(t, 0, f.reg.Len())
}

func TestRun_ResourceTypesFactoryReturn(t *testing.T) {
	const path = "com/example/Main.java"
	const src = `package com.example;

public class Main {
    void run() throws Exception {
        try (Res r = Factory.open()) {
        }
    }
}
`
	f := run(t, map[string]string{path: src}, "com.example.Main#run()")

	factory, ok := file(f.collapse(t).Files, "com/example/Factory.java")
	require.True(t, ok)
	assert.Contains(t, factory, "public static com.example.Res open()")
}

func TestRun_QualifiedConstantArgumentIsOnlyAField(t *testing.T) {
	const path = "com/example/Main.java"
	const src = `package com.example;

public class Main {
    void run() {
        consume(Bar.X);
    }

    void consume(int v) {
    }
}
`
	f := run(t, map[string]string{path: src}, "com.example.Main#run()")

	types := f.reg.Types()
	require.Len(t, types, 1)
	assert.Equal(t, []string{"com.example.Bar"}, types[0].FQNs())

	bar, ok := file(f.collapse(t).Files, "com/example/Bar.java")
	require.True(t, ok)
	assert.Contains(t, bar, "public static int X;")
	assert.NotContains(t, bar, "class X")
}
