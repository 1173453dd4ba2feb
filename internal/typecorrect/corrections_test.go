package typecorrect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"jslice/internal/unsolved"
)

func incompatible(found, required string) Diagnostic {
	return Diagnostic{Kind: Incompatible, Found: found, Required: required}
}

func TestApply_ReplacesSyntheticFound(t *testing.T) {
	c := NewCorrections()
	assert.True(t, c.Apply(incompatible("GetCountReturnType", "int"), nil))

	got, ok := c.Replacement("GetCountReturnType")
	assert.True(t, ok)
	assert.Equal(t, "int", got)

	assert.False(t, c.Apply(incompatible("GetCountReturnType", "int"), nil), "same fact twice")
}

func TestApply_ReplacesSyntheticRequired(t *testing.T) {
	c := NewCorrections()
	c.Apply(incompatible("java.lang.String", "SyntheticTypeForName"), nil)

	got, ok := c.Replacement("SyntheticTypeForName")
	assert.True(t, ok)
	assert.Equal(t, "java.lang.String", got)
}

func TestApply_QualifiesCorrectType(t *testing.T) {
	c := NewCorrections()
	qualify := ProgramQualifier([]string{"com.example.Widget"})
	c.Apply(incompatible("MakeReturnType", "Widget"), qualify)

	got, _ := c.Replacement("MakeReturnType")
	assert.Equal(t, "com.example.Widget", got)
}

func TestApply_ConflictingReturnTypeBecomesUnconstrained(t *testing.T) {
	c := NewCorrections()
	c.Apply(incompatible("GetReturnType", "int"), nil)
	assert.True(t, c.Apply(incompatible("GetReturnType", "String"), nil))

	got, ok := c.Replacement("GetReturnType")
	assert.True(t, ok)
	assert.Equal(t, unsolved.SyntheticUnconstrainedType, got)

	assert.False(t, c.Apply(incompatible("GetReturnType", "long"), nil))
	assert.False(t, c.Apply(incompatible(unsolved.SyntheticUnconstrainedType, "long"), nil))
}

func TestApply_ConflictingTypeBecomesCommonSupertype(t *testing.T) {
	c := NewCorrections()
	c.Apply(incompatible("SyntheticTypeForItem", "Apple"), nil)
	c.Apply(incompatible("SyntheticTypeForItem", "Pear"), nil)

	_, ok := c.Replacement("SyntheticTypeForItem")
	assert.False(t, ok)

	sup, ok := c.Supertype("Apple")
	assert.True(t, ok)
	assert.Equal(t, "SyntheticTypeForItem", sup)
	sup, ok = c.Supertype("Pear")
	assert.True(t, ok)
	assert.Equal(t, "SyntheticTypeForItem", sup)
}

func TestApply_ThrowableBecomesRuntimeException(t *testing.T) {
	c := NewCorrections()
	c.Apply(incompatible("com.example.Oops", "java.lang.Throwable"), nil)

	sup, ok := c.Supertype("Oops")
	assert.True(t, ok)
	assert.Equal(t, "RuntimeException", sup)
}

func TestApply_ProgramPairRecordsSupertypeOnce(t *testing.T) {
	c := NewCorrections()
	c.Apply(incompatible("Handler", "Listener"), nil)
	c.Apply(incompatible("Handler", "Runnable"), nil)

	sup, ok := c.Supertype("Handler")
	assert.True(t, ok)
	assert.Equal(t, "Listener", sup)
}

func TestSupertype_SkipsFinalJDKClasses(t *testing.T) {
	c := NewCorrections()
	c.Apply(incompatible("Label", "String"), nil)

	_, ok := c.Supertype("Label")
	assert.False(t, ok)
	assert.Equal(t, map[string]string{"Label": "String"}, c.Supertypes())
}

func TestApply_ForEach(t *testing.T) {
	c := NewCorrections()
	assert.True(t, c.Apply(Diagnostic{Kind: ForEach, Found: "ItemsReturnType", Required: "Item[]"}, nil))
	got, _ := c.Replacement("ItemsReturnType")
	assert.Equal(t, "Item[]", got)

	assert.False(t, c.Apply(Diagnostic{Kind: ForEach, Found: "java.util.List", Required: "Item[]"}, nil))
}

func TestApply_BinaryOperator(t *testing.T) {
	tests := []struct {
		name string
		d    Diagnostic
		want map[string]string
	}{
		{
			name: "first operand admitted",
			d:    Diagnostic{Kind: BinaryOperator, Op: "*", Found: "int", Required: "SizeReturnType"},
			want: map[string]string{"SizeReturnType": "int"},
		},
		{
			name: "second operand admitted",
			d:    Diagnostic{Kind: BinaryOperator, Op: "+", Found: "NameReturnType", Required: "String"},
			want: map[string]string{"NameReturnType": "String"},
		},
		{
			name: "neither admitted",
			d:    Diagnostic{Kind: BinaryOperator, Op: "&&", Found: "OkReturnType", Required: "SyntheticTypeForReady"},
			want: map[string]string{"OkReturnType": "boolean", "SyntheticTypeForReady": "boolean"},
		},
		{
			name: "unknown operator",
			d:    Diagnostic{Kind: BinaryOperator, Op: "instanceof", Found: "OkReturnType", Required: "int"},
			want: map[string]string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCorrections()
			c.Apply(tt.d, nil)
			assert.Equal(t, tt.want, c.Replacements())
		})
	}
}

func TestKey_IsOrderIndependent(t *testing.T) {
	a, b := NewCorrections(), NewCorrections()
	a.Apply(incompatible("FooReturnType", "int"), nil)
	a.Apply(incompatible("BarReturnType", "long"), nil)
	b.Apply(incompatible("BarReturnType", "long"), nil)
	b.Apply(incompatible("FooReturnType", "int"), nil)

	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, 2, a.Len())
	assert.NotEqual(t, NewCorrections().Key(), a.Key())
}

func TestProgramQualifier(t *testing.T) {
	q := ProgramQualifier([]string{"com.example.Widget", "com.example.Node", "org.other.Node"})

	assert.Equal(t, "com.example.Widget", q("Widget"))
	assert.Equal(t, "com.example.Widget[]", q("Widget[]"))
	assert.Equal(t, "Node", q("Node"), "ambiguous")
	assert.Equal(t, "String", q("String"))
	assert.Equal(t, "int", q("int"))
	assert.Equal(t, "java.util.List<Widget>", q("java.util.List<Widget>"))
	assert.Equal(t, "Unknown", q("Unknown"))
}
