package unsolved

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jslice/internal/ast"
)

func TestRegistry_FindAndNarrow(t *testing.T) {
	reg := NewRegistry()
	foo := NewTypeGroup([]string{"a.Foo", "b.Foo", "Foo"})
	require.NoError(t, reg.Add(foo))

	got, err := reg.FindAndNarrow([]string{"b.Foo", "c.Foo"})
	require.NoError(t, err)
	assert.Same(t, foo, got)
	assert.Equal(t, []string{"b.Foo"}, foo.FQNs())
	assert.Nil(t, reg.Lookup([]string{"a.Foo"}), "released identity still claimed")
	assert.Same(t, foo, reg.Lookup([]string{"b.Foo"}))

	got, err = reg.FindAndNarrow([]string{"c.Foo"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRegistry_NarrowRekeysMembers(t *testing.T) {
	reg := NewRegistry()
	foo := NewTypeGroup([]string{"a.Foo", "b.Foo"})
	require.NoError(t, reg.Add(foo))
	x := NewFieldGroup("x", []*TypeGroup{foo}, []FieldVariant{{Type: SolvedName("int")}})
	require.NoError(t, reg.Add(x))
	assert.Same(t, x, reg.Lookup([]string{"a.Foo#x"}))

	_, err := reg.FindAndNarrow([]string{"b.Foo"})
	require.NoError(t, err)
	assert.Nil(t, reg.Lookup([]string{"a.Foo#x"}))
	assert.Same(t, x, reg.Lookup([]string{"b.Foo#x"}))
	assert.Equal(t, []string{"b.Foo#x"}, x.Identities())
}

func TestRegistry_MemberNarrowing(t *testing.T) {
	reg := NewRegistry()
	mixin := NewTypeGroup([]string{"com.example.Mixin"})
	base := NewTypeGroup([]string{"com.example.Base"})
	require.NoError(t, reg.Add(mixin))
	require.NoError(t, reg.Add(base))
	x := NewFieldGroup("x", []*TypeGroup{mixin, base}, []FieldVariant{{Type: SolvedName("int")}})
	require.NoError(t, reg.Add(x))
	assert.Equal(t, 2, x.Len())

	got, err := reg.FindAndNarrow([]string{"com.example.Base#x"})
	require.NoError(t, err)
	assert.Same(t, x, got)
	require.Len(t, x.Declaring(), 1)
	assert.Same(t, base, x.Declaring()[0])
	assert.Len(t, reg.MembersOf(mixin), 0)
	assert.Len(t, reg.MembersOf(base), 1)
}

func TestRegistry_NarrowingNeverEmpties(t *testing.T) {
	foo := NewTypeGroup([]string{"a.Foo", "b.Foo"})
	assert.False(t, foo.Narrow([]string{"c.Foo"}))
	assert.Equal(t, []string{"a.Foo", "b.Foo"}, foo.FQNs())

	f := NewFieldGroup("x", []*TypeGroup{foo}, []FieldVariant{{Type: SolvedName("int")}, {Type: SolvedName("long")}})
	assert.False(t, f.NarrowTypes(func(MemberType) bool { return false }))
	assert.Len(t, f.Variants(), 2)
	assert.True(t, f.NarrowTypes(func(t MemberType) bool { return t.Simple() == "long" }))
	assert.Len(t, f.Variants(), 1)
}

func TestRegistry_Frozen(t *testing.T) {
	reg := NewRegistry()
	foo := NewTypeGroup([]string{"a.Foo", "b.Foo"})
	require.NoError(t, reg.Add(foo))
	reg.Freeze()
	assert.True(t, reg.Frozen())

	err := reg.Add(NewTypeGroup([]string{"Bar"}))
	assert.True(t, errors.Is(err, ErrFrozen))

	_, err = reg.FindAndNarrow([]string{"a.Foo"})
	assert.True(t, errors.Is(err, ErrFrozen))
	assert.Equal(t, []string{"a.Foo", "b.Foo"}, foo.FQNs(), "frozen group changed")

	got, err := reg.FindAndNarrow([]string{"a.Foo", "b.Foo"})
	require.NoError(t, err, "a lookup that narrows nothing is allowed")
	assert.Same(t, foo, got)

	assert.True(t, errors.Is(reg.Update(foo, func() {}), ErrFrozen))
	assert.True(t, errors.Is(reg.Remove(foo), ErrFrozen))
}

func TestRegistry_Replace(t *testing.T) {
	reg := NewRegistry()
	foo := NewTypeGroup([]string{"com.example.Foo"})
	ret := NewTypeGroup([]string{"com.example.GetMessageReturnType"})
	require.NoError(t, reg.Add(foo))
	require.NoError(t, reg.Add(ret))
	m := NewMethodGroup("getMessage", []*TypeGroup{foo}, []MethodVariant{{Return: Unsolved{Group: ret}}})
	require.NoError(t, reg.Add(m))
	f := NewFieldGroup("last", []*TypeGroup{foo}, []FieldVariant{{Type: Unsolved{Group: ret, Dims: 1}}})
	require.NoError(t, reg.Add(f))

	require.NoError(t, reg.Replace(ret, SolvedName("java.lang.String")))
	assert.True(t, SameType(SolvedName("java.lang.String"), m.ReturnTypes()[0]))
	assert.True(t, SameType(SolvedName("java.lang.String[]"), f.Variants()[0].Type))
	assert.Nil(t, reg.Lookup([]string{"com.example.GetMessageReturnType"}))
	assert.Equal(t, 3, reg.Len())
}

func TestRegistry_DependentNodes(t *testing.T) {
	reg := NewRegistry()
	foo := NewTypeGroup([]string{"Foo"})
	require.NoError(t, reg.Add(foo))
	require.NoError(t, reg.Add(NewFieldGroup("x", []*TypeGroup{foo}, []FieldVariant{
		{Type: SolvedName("int"), MustPreserve: []ast.NodeID{9}},
		{Type: SolvedName("long"), MustPreserve: []ast.NodeID{3}},
	})))
	require.NoError(t, reg.Add(NewMethodGroup("m", []*TypeGroup{foo}, []MethodVariant{
		{Return: SolvedName("void"), MustPreserve: []ast.NodeID{3, 5}},
	})))
	assert.Equal(t, []ast.NodeID{3, 5, 9}, reg.DependentNodes())
}

func TestMethodGroup_Identities(t *testing.T) {
	foo := NewTypeGroup([]string{"a.Foo", "b.Foo"})
	bar := NewTypeGroup([]string{"a.Bar"})
	m := NewMethodGroup("run", []*TypeGroup{foo}, []MethodVariant{
		{Return: SolvedName("void"), Params: []MemberType{SolvedName("int"), Unsolved{Group: bar, Dims: 1}}},
		{Return: SolvedName("int"), Params: []MemberType{SolvedName("int"), Unsolved{Group: bar, Dims: 1}}},
	})
	assert.Equal(t, []string{"a.Foo#run(int, Bar[])", "b.Foo#run(int, Bar[])"}, m.Identities())
	assert.Equal(t, 2, m.Len())

	ctor := NewConstructorGroup([]*TypeGroup{foo}, []MemberType{SolvedName("java.lang.String")})
	assert.Equal(t, []string{"a.Foo#Foo(String)", "b.Foo#Foo(String)"}, ctor.Identities())
}

func TestMethodGroup_AddVariantsMergesPreserved(t *testing.T) {
	foo := NewTypeGroup([]string{"Foo"})
	m := NewMethodGroup("get", []*TypeGroup{foo}, []MethodVariant{
		{Return: SolvedName("int"), MustPreserve: []ast.NodeID{4}},
	})
	m.addVariants([]MethodVariant{
		{Return: SolvedName("int"), MustPreserve: []ast.NodeID{2}},
		{Return: SolvedName("long"), MustPreserve: []ast.NodeID{7}},
	})
	vs := m.Variants()
	require.Len(t, vs, 2)
	assert.Equal(t, []ast.NodeID{2, 4}, vs[0].MustPreserve)
	assert.Equal(t, []ast.NodeID{7}, vs[1].MustPreserve)
}

func TestTypeGroup_SetDeclKind(t *testing.T) {
	tg := NewTypeGroup([]string{"Foo"})
	tg.SetDeclKind(KindInterface)
	tg.SetDeclKind(KindClass)
	assert.Equal(t, KindInterface, tg.DeclKind, "an interface never becomes a class")

	tg.SetDeclKind(KindAnnotation)
	tg.SetDeclKind(KindEnum)
	assert.Equal(t, KindAnnotation, tg.DeclKind)
	assert.Contains(t, tg.Annotations[0], "java.lang.annotation.Target")

	ex := NewTypeGroup([]string{"Oops"})
	ex.Extend(SolvedName("java.lang.annotation.Annotation"))
	assert.Equal(t, KindAnnotation, ex.DeclKind)
	assert.False(t, ex.HasExtends())
}

func TestClassVariant_Package(t *testing.T) {
	v := NewTypeGroup([]string{"com.example.Outer.Inner"}).Variant(0)
	assert.Equal(t, "com.example", v.Package())
	assert.Equal(t, "Outer.Inner", v.ClassPath())

	v = NewTypeGroup([]string{"Foo"}).Variant(0)
	assert.Equal(t, "", v.Package())
	assert.Equal(t, "Foo", v.ClassPath())
}

func TestNaming(t *testing.T) {
	name, ok := StaticMemberTypeName("com.example.Util.count", false)
	require.True(t, ok)
	assert.Equal(t, "com.example.ComExampleUtilCountSyntheticType", name)

	name, ok = StaticMemberTypeName("com.example.Util.size", true)
	require.True(t, ok)
	assert.Equal(t, "com.example.ComExampleUtilSizeReturnType", name)

	_, ok = StaticMemberTypeName("Util.count", false)
	assert.False(t, ok)

	for _, s := range []string{"SyntheticTypeForCount", "GetCountReturnType", "SyntheticFunction3", "SyntheticConsumer4[]", "SyntheticUnconstrainedType"} {
		assert.True(t, IsSynthetic(s), s)
	}
	assert.False(t, IsSynthetic("Widget"))
	assert.Equal(t, "SyntheticTypeForCount", variableTypeName("count"))
	assert.Equal(t, "GetCountReturnType", returnTypeName("getCount"))
	assert.Equal(t, []string{"T", "T1", "T2"}, (&TypeGroup{TypeParams: 3}).TypeVariables())
}

func TestCombinations(t *testing.T) {
	alts := [][]FQNSet{
		{Single("int"), Single("long")},
		{Single("java.lang.String")},
		{Single("double"), Single("float"), Single("int")},
	}
	got := combinations(alts, 16)
	require.Len(t, got, 6)
	assert.Equal(t, "int, String, double", simpleNames(got[0]))
	assert.Equal(t, "long, String, int", simpleNames(got[5]))

	assert.Len(t, combinations(alts, 4), 4)
	assert.Equal(t, [][]FQNSet{{}}, combinations(nil, 16))
}

func TestIsConstantName(t *testing.T) {
	assert.True(t, isConstantName("MAX_VALUE"))
	assert.True(t, isConstantName("V2"))
	assert.False(t, isConstantName("Max"))
	assert.False(t, isConstantName("X"))
}
