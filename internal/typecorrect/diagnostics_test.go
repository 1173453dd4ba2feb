package typecorrect

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiagnostics(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   []Diagnostic
	}{
		{
			name:   "cannot be converted",
			output: "com/example/Main.java:5: error: incompatible types: GetCountReturnType cannot be converted to int\n        int n = x.getCount();\n                          ^\n1 error\n",
			want: []Diagnostic{{
				Kind: Incompatible, Found: "GetCountReturnType", Required: "int",
				Line: "com/example/Main.java:5: error: incompatible types: GetCountReturnType cannot be converted to int",
			}},
		},
		{
			name: "found and required lines",
			output: "Main.java:7: error: incompatible types\n" +
				"        String s = foo.name();\n" +
				"  found   : NameReturnType\n" +
				"  required: java.lang.String\n",
			want: []Diagnostic{{
				Kind: Incompatible, Found: "NameReturnType", Required: "java.lang.String",
				Line: "Main.java:7: error: incompatible types",
			}},
		},
		{
			name:   "annotations dropped",
			output: "Main.java:3: error: incompatible types: @Nullable SyntheticTypeForX cannot be converted to java.util.@NonNull List<String>\n",
			want: []Diagnostic{{
				Kind: Incompatible, Found: "SyntheticTypeForX", Required: "java.util.List<String>",
				Line: "Main.java:3: error: incompatible types: @Nullable SyntheticTypeForX cannot be converted to java.util.@NonNull List<String>",
			}},
		},
		{
			name:   "incomparable",
			output: "Main.java:9: error: incomparable types: SizeReturnType and int\n",
			want: []Diagnostic{{
				Kind: Incomparable, Found: "SizeReturnType", Required: "int",
				Line: "Main.java:9: error: incomparable types: SizeReturnType and int",
			}},
		},
		{
			name:   "not compatible",
			output: "Main.java:4: error: get() in Child cannot implement get() in Parent\n  return type GetReturnType is not compatible with String\n",
			want: []Diagnostic{{
				Kind: NotCompatible, Found: "GetReturnType", Required: "String",
				Line: "  return type GetReturnType is not compatible with String",
			}},
		},
		{
			name: "binary operator",
			output: "Main.java:6: error: bad operand types for binary operator '*'\n" +
				"        return a.size() * 2;\n" +
				"                        ^\n" +
				"  first type:  SizeReturnType\n" +
				"  second type: int\n",
			want: []Diagnostic{{
				Kind: BinaryOperator, Op: "*", Found: "SizeReturnType", Required: "int",
				Line: "Main.java:6: error: bad operand types for binary operator '*'",
			}},
		},
		{
			name: "for-each",
			output: "Main.java:8: error: for-each not applicable to expression type\n" +
				"        for (Item item : box.items()) {\n" +
				"                                  ^\n" +
				"  required: array or java.lang.Iterable\n" +
				"  found:    ItemsReturnType\n",
			want: []Diagnostic{{
				Kind: ForEach, Found: "ItemsReturnType", Required: "Item[]",
				Line: "  found:    ItemsReturnType",
			}},
		},
		{
			name: "two-type constraints",
			output: "Main.java:2: error: incompatible types: inference variable T has incompatible bounds\n" +
				"    equality constraints: String\n" +
				"    lower bounds: ValueReturnType\n",
			want: []Diagnostic{{
				Kind: Constraints, Found: "String", Required: "ValueReturnType",
				Line: "    lower bounds: ValueReturnType",
			}},
		},
		{
			name: "three-type constraints ignored",
			output: "    equality constraints: String,Integer\n" +
				"    lower bounds: ValueReturnType\n",
		},
		{
			name:   "unrelated errors ignored",
			output: "Main.java:2: error: cannot find symbol\n  symbol:   class Foo\n  location: class Main\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDiagnostics(strings.NewReader(tt.output))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDiagnostics_SeveralErrors(t *testing.T) {
	output := strings.Join([]string{
		"A.java:1: error: incompatible types: FooReturnType cannot be converted to int",
		"A.java:2: error: incompatible types",
		"  found   : BarReturnType",
		"  required: long",
		"A.java:3: error: incomparable types: BazReturnType and boolean",
		"3 errors",
	}, "\n")

	got, err := ParseDiagnostics(strings.NewReader(output))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "FooReturnType", got[0].Found)
	assert.Equal(t, "BarReturnType", got[1].Found)
	assert.Equal(t, "long", got[1].Required)
	assert.Equal(t, Incomparable, got[2].Kind)
}

func TestSimpleName(t *testing.T) {
	tests := map[string]string{
		"int":                      "int",
		"java.lang.String":         "String",
		"java.util.List<String>":   "List",
		"java.util.List<String>[]": "List[]",
		"com.example.Foo[][]":      "Foo[][]",
		"GetCountReturnType":       "GetCountReturnType",
	}
	for in, want := range tests {
		assert.Equal(t, want, SimpleName(in), in)
	}
}

func TestDiagnosticKind_String(t *testing.T) {
	assert.Equal(t, "incompatible", Incompatible.String())
	assert.Equal(t, "binary-operator", BinaryOperator.String())
	assert.Equal(t, "unknown", DiagnosticKind(99).String())
}
