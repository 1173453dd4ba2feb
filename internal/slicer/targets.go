package slicer

import (
	"strings"

	"jslice/internal/ast"
	jerrors "jslice/internal/errors"
	"jslice/internal/resolve"
)

// TargetKind tells what a target names inside its type.
type TargetKind uint8

const (
	TargetMethod TargetKind = iota
	TargetConstructor
	TargetField
)

// Target is one member the slice must keep whole, written
// com.example.Foo#bar(int, String), com.example.Foo#<init>() or
// com.example.Foo#count.
type Target struct {
	Raw    string
	Type   string
	Member string
	Kind   TargetKind
	// Params are simple parameter type names without type arguments.
	Params []string
}

// ParseTarget parses a target signature.
func ParseTarget(s string) (Target, error) {
	raw := strings.TrimSpace(s)
	hash := strings.IndexByte(raw, '#')
	if hash <= 0 || hash == len(raw)-1 {
		return Target{}, jerrors.Newf(jerrors.TargetInvalid, "target %q: want Type#member", s)
	}
	t := Target{Raw: raw, Type: strings.ReplaceAll(raw[:hash], "$", ".")}
	member := raw[hash+1:]
	open := strings.IndexByte(member, '(')
	if open < 0 {
		t.Kind = TargetField
		t.Member = member
		return t, nil
	}
	if !strings.HasSuffix(member, ")") {
		return Target{}, jerrors.Newf(jerrors.TargetInvalid, "target %q: unbalanced parameter list", s)
	}
	t.Member = strings.TrimSpace(member[:open])
	t.Kind = TargetMethod
	if t.Member == "<init>" || t.Member == simpleName(t.Type) {
		t.Kind = TargetConstructor
		t.Member = "<init>"
	}
	if t.Member == "" {
		return Target{}, jerrors.Newf(jerrors.TargetInvalid, "target %q: missing member name", s)
	}
	for _, p := range splitParams(member[open+1 : len(member)-1]) {
		t.Params = append(t.Params, normalizeParam(p))
	}
	return t, nil
}

// ParseTargets parses every signature and reports all malformed ones at
// once.
func ParseTargets(raw []string) ([]Target, error) {
	var out []Target
	var bad []string
	for _, s := range raw {
		t, err := ParseTarget(s)
		if err != nil {
			bad = append(bad, s)
			continue
		}
		out = append(out, t)
	}
	if len(bad) > 0 {
		return nil, jerrors.Newf(jerrors.TargetInvalid, "malformed targets: %s", strings.Join(bad, ", ")).
			WithDetails(map[string]interface{}{"targets": bad})
	}
	return out, nil
}

func (t Target) String() string { return t.Raw }

// splitParams splits on top-level commas.
func splitParams(s string) []string {
	var out []string
	depth, start := 0, 0
	for i, c := range s {
		switch c {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	if last := strings.TrimSpace(s[start:]); last != "" || len(out) > 0 {
		out = append(out, s[start:])
	}
	return out
}

// normalizeParam reduces a parameter type to its simple erased name with
// array suffixes: java.util.List<String>... -> List[].
func normalizeParam(s string) string {
	var b strings.Builder
	depth := 0
	for _, c := range s {
		switch {
		case c == '<':
			depth++
		case c == '>':
			depth--
		case depth > 0 || c == ' ' || c == '\t' || c == '\n':
		default:
			b.WriteRune(c)
		}
	}
	out := strings.ReplaceAll(b.String(), "...", "[]")
	base, dims := out, ""
	if i := strings.IndexByte(out, '['); i >= 0 {
		base, dims = out[:i], out[i:]
	}
	return simpleName(base) + dims
}

func simpleName(qualified string) string {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[i+1:]
	}
	return qualified
}

// locate finds the declaration node a target names.
func locate(idx *resolve.Index, t Target) (ast.NodeID, bool) {
	td, ok := idx.TypeDecl(t.Type)
	if !ok {
		return ast.NoNode, false
	}
	a := idx.Arena()
	body := a.Child(td, ast.RoleBody)
	if body == ast.NoNode {
		return ast.NoNode, false
	}
	switch t.Kind {
	case TargetField:
		for _, f := range a.ChildrenOfKind(body, ast.KindFieldDecl) {
			for _, v := range a.ChildrenOfKind(f, ast.KindVarDeclarator) {
				if a.Node(v).Name == t.Member {
					return v, true
				}
			}
		}
		for _, c := range a.ChildrenOfKind(body, ast.KindEnumConstant) {
			if a.Node(c).Name == t.Member {
				return c, true
			}
		}
	case TargetMethod:
		for _, m := range a.ChildrenOfKind(body, ast.KindMethodDecl) {
			if a.Node(m).Name == t.Member && paramsMatch(a, m, t.Params) {
				return m, true
			}
		}
	case TargetConstructor:
		for _, m := range a.ChildrenOfKind(body, ast.KindConstructorDecl) {
			if paramsMatch(a, m, t.Params) {
				return m, true
			}
		}
	}
	return ast.NoNode, false
}

func paramsMatch(a *ast.Arena, callable ast.NodeID, want []string) bool {
	got := paramTypes(a, callable)
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

// paramTypes spells the declared parameter types of a callable the way
// normalizeParam spells target parameters.
func paramTypes(a *ast.Arena, callable ast.NodeID) []string {
	params := a.Child(callable, ast.RoleParameters)
	if params == ast.NoNode {
		return nil
	}
	var out []string
	for _, p := range a.ChildrenOfKind(params, ast.KindParameter) {
		n := a.Node(p)
		if a.ChildOfKind(p, ast.KindThis) != ast.NoNode {
			// receiver parameter
			continue
		}
		typ := a.Child(p, ast.RoleType)
		if typ == ast.NoNode {
			continue
		}
		s := normalizeParam(a.Text(typ)) + strings.Repeat("[]", n.Dims)
		if n.Text == "..." {
			s += "[]"
		}
		out = append(out, s)
	}
	return out
}

// notFound builds the error listing every target that names nothing.
func notFound(missing []Target) error {
	names := make([]string, len(missing))
	for i, t := range missing {
		names[i] = t.Raw
	}
	return jerrors.Newf(jerrors.TargetNotFound, "%d target(s) not found: %s", len(missing), strings.Join(names, ", ")).
		WithDetails(map[string]interface{}{"targets": names})
}
