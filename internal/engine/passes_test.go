package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnusedImports(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "drops unused single-type import",
			in:   "package a;\n\nimport java.util.List;\nimport java.util.Map;\n\nclass A {\n    Map<String, String> m;\n}\n",
			want: "package a;\n\nimport java.util.Map;\n\nclass A {\n    Map<String, String> m;\n}\n",
		},
		{
			name: "keeps on-demand imports",
			in:   "package a;\n\nimport java.util.*;\n\nclass A {\n}\n",
			want: "package a;\n\nimport java.util.*;\n\nclass A {\n}\n",
		},
		{
			name: "static import used as call",
			in:   "package a;\n\nimport static java.lang.Math.max;\nimport static java.lang.Math.min;\n\nclass A {\n    int f() { return max(1, 2); }\n}\n",
			want: "package a;\n\nimport static java.lang.Math.max;\n\nclass A {\n    int f() { return max(1, 2); }\n}\n",
		},
		{
			name: "names in comments and literals do not count",
			in:   "package a;\n\nimport java.util.List;\n\nclass A {\n    // List\n    /* List */\n    String s = \"List\";\n    char c = 'L';\n    String t = \"\"\"\n        List\n        \"\"\";\n}\n",
			want: "package a;\n\nclass A {\n    // List\n    /* List */\n    String s = \"List\";\n    char c = 'L';\n    String t = \"\"\"\n        List\n        \"\"\";\n}\n",
		},
		{
			name: "annotation use counts",
			in:   "package a;\n\nimport org.lib.Marker;\n\n@Marker\nclass A {\n}\n",
			want: "package a;\n\nimport org.lib.Marker;\n\n@Marker\nclass A {\n}\n",
		},
		{
			name: "nested type import",
			in:   "package a;\n\nimport java.util.Map.Entry;\n\nclass A {\n    Entry<String, String> e;\n}\n",
			want: "package a;\n\nimport java.util.Map.Entry;\n\nclass A {\n    Entry<String, String> e;\n}\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := UnusedImports{}.Correct(File{Path: "a/A.java", Content: []byte(tt.in)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(out.Content))
			assert.Equal(t, "a/A.java", out.Path)
		})
	}
}

func TestImportedName(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"import java.util.List;\n", "List", true},
		{"  import static org.lib.Util.count;", "count", true},
		{"import java.util.*;", "*", true},
		{"import java.util.List; // list", "", false},
		{"importer.run();", "", false},
		{"class A {}", "", false},
	}
	for _, tt := range tests {
		got, ok := importedName(tt.line)
		assert.Equal(t, tt.ok, ok, tt.line)
		assert.Equal(t, tt.want, got, tt.line)
	}
}

func TestIdentifiers(t *testing.T) {
	ids := identifiers([]byte("int $x = a_b + \"q\\\"uoted\" + café; /* c */ y2"))
	for _, want := range []string{"int", "$x", "a_b", "café", "y2"} {
		assert.True(t, ids[want], want)
	}
	assert.False(t, ids["quoted"])
	assert.False(t, ids["c"])
}
