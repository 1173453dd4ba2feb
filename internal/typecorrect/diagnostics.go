// Package typecorrect runs the type-correction oracle loop: it compiles the
// drafted slice with an external checker, reads the type mismatches the
// checker reports about synthetic declarations and rewrites those
// declarations until the checker has nothing left to say about them.
package typecorrect

import (
	"bufio"
	"io"
	"strings"
)

// DiagnosticKind classifies the checker messages the loop learns from.
type DiagnosticKind uint8

const (
	// Incompatible is "incompatible types: X cannot be converted to Y" or
	// its found/required form.
	Incompatible DiagnosticKind = iota
	// Incomparable is "incomparable types: X and Y".
	Incomparable
	// NotCompatible is "return type X is not compatible with Y".
	NotCompatible
	// BinaryOperator is "bad operand types for binary operator" followed
	// by first type and second type lines.
	BinaryOperator
	// ForEach is "for-each not applicable to expression type".
	ForEach
	// Constraints is an inference failure listing equality constraints
	// and lower bounds.
	Constraints
)

func (k DiagnosticKind) String() string {
	switch k {
	case Incompatible:
		return "incompatible"
	case Incomparable:
		return "incomparable"
	case NotCompatible:
		return "not-compatible"
	case BinaryOperator:
		return "binary-operator"
	case ForEach:
		return "for-each"
	case Constraints:
		return "constraints"
	}
	return "unknown"
}

// Diagnostic is one type mismatch. Found is the type the checker saw and
// Required the type the context demands; for binary operators they are
// the first and second operand types and for inference constraints the
// two constraint types.
type Diagnostic struct {
	Kind     DiagnosticKind
	Found    string
	Required string
	Op       string
	// Line is the checker line the diagnostic was read from.
	Line string
}

const (
	markIncompatible  = "incompatible types"
	markIncomparable  = "incomparable types:"
	markNotCompatible = "is not compatible with"
	markBinaryOp      = "bad operand types for binary operator"
	markForEach       = "for-each not applicable to expression type"
	markEquality      = "equality constraints:"
	markLowerBounds   = "lower bounds:"
)

// diagParser holds the state of the multi-line message forms.
type diagParser struct {
	out []Diagnostic

	// found/required on their own lines
	pendingIncompatible string
	found               string

	// binary operator
	binOp    string
	binFirst string
	binLine  string

	// for-each: the statement line comes first, then found:
	wantLoopLine bool
	loopType     string

	equality string
}

// ParseDiagnostics scans merged checker output for the type mismatches
// the loop can correct. Annotation tokens are dropped from types.
func ParseDiagnostics(r io.Reader) ([]Diagnostic, error) {
	p := &diagParser{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		p.line(sc.Text())
	}
	if err := sc.Err(); err != nil {
		return p.out, err
	}
	return p.out, nil
}

func (p *diagParser) emit(d Diagnostic) {
	if d.Found == "" || d.Required == "" {
		return
	}
	p.out = append(p.out, d)
}

func (p *diagParser) line(line string) {
	switch {
	case p.loopType != "":
		if strings.Contains(line, "^") || strings.Contains(line, "required: array or java.lang.Iterable") {
			return
		}
		if v, ok := label(line, "found"); ok {
			p.emit(Diagnostic{Kind: ForEach, Found: typeText(v), Required: p.loopType + "[]", Line: line})
		}
		p.loopType = ""
		return

	case p.wantLoopLine:
		p.wantLoopLine = false
		// for (Foo f : b.getFoos()) {
		if open := strings.IndexByte(line, '('); open >= 0 {
			rest := strings.TrimSpace(line[open+1:])
			if sp := strings.IndexByte(rest, ' '); sp > 0 {
				p.loopType = rest[:sp]
			}
		}
		return

	case strings.Contains(line, markForEach):
		p.wantLoopLine = true
		return

	case p.pendingIncompatible != "":
		if v, ok := label(line, "found"); ok {
			p.found = typeText(v)
			return
		}
		if v, ok := label(line, "required"); ok {
			p.emit(Diagnostic{Kind: Incompatible, Found: p.found, Required: typeText(v), Line: p.pendingIncompatible})
			p.pendingIncompatible, p.found = "", ""
			return
		}
		if strings.Contains(line, "error:") {
			p.pendingIncompatible, p.found = "", ""
		}
	}

	if v, ok := after(line, markIncompatible); ok {
		p.incompatible(line, strings.TrimPrefix(strings.TrimSpace(v), ":"))
		return
	}
	if v, ok := after(line, markIncomparable); ok {
		if i := strings.Index(v, " and "); i >= 0 {
			p.emit(Diagnostic{Kind: Incomparable, Found: typeText(v[:i]), Required: typeText(v[i+5:]), Line: line})
		}
		return
	}
	if i := strings.Index(line, markNotCompatible); i >= 0 {
		lhs := line[:i]
		if j := strings.LastIndex(lhs, "return type "); j >= 0 {
			lhs = lhs[j+len("return type "):]
		} else if j := strings.LastIndex(lhs, "error:"); j >= 0 {
			lhs = lhs[j+len("error:"):]
		}
		p.emit(Diagnostic{Kind: NotCompatible, Found: typeText(lhs), Required: typeText(line[i+len(markNotCompatible):]), Line: line})
		return
	}
	if v, ok := after(line, markBinaryOp); ok {
		p.binOp = strings.Trim(strings.TrimSpace(v), "'")
		p.binFirst = ""
		p.binLine = line
		return
	}
	if p.binOp != "" {
		if v, ok := label(line, "first type"); ok {
			p.binFirst = typeText(v)
			return
		}
		if v, ok := label(line, "second type"); ok {
			p.emit(Diagnostic{Kind: BinaryOperator, Op: p.binOp, Found: p.binFirst, Required: typeText(v), Line: p.binLine})
			p.binOp, p.binFirst, p.binLine = "", "", ""
			return
		}
	}
	if v, ok := after(line, markEquality); ok {
		p.equality = strings.TrimSpace(v)
		return
	}
	if v, ok := after(line, markLowerBounds); ok {
		p.constraints(line, p.equality, strings.TrimSpace(v))
		p.equality = ""
	}
}

// incompatible handles the one-line forms and opens the multi-line one.
func (p *diagParser) incompatible(line, rest string) {
	rest = strings.TrimSpace(rest)
	if i := strings.Index(rest, " cannot be converted to "); i >= 0 {
		p.emit(Diagnostic{Kind: Incompatible, Found: typeText(rest[:i]), Required: typeText(rest[i+len(" cannot be converted to "):]), Line: line})
		return
	}
	if v, ok := after(rest, "found"); ok {
		if j := strings.Index(v, "required"); j >= 0 {
			p.emit(Diagnostic{Kind: Incompatible, Found: typeText(strings.TrimPrefix(v[:j], ":")), Required: typeText(strings.TrimPrefix(v[j+len("required"):], ":")), Line: line})
			return
		}
	}
	if rest == "" {
		// found and required follow on their own lines
		p.pendingIncompatible = line
	}
}

// constraints keeps an inference failure only when exactly two distinct
// types are involved.
func (p *diagParser) constraints(line, first, second string) {
	seen := make(map[string]bool)
	var types []string
	for _, part := range append(strings.Split(first, ","), strings.Split(second, ",")...) {
		t := typeText(part)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		types = append(types, t)
	}
	if len(types) == 2 {
		p.emit(Diagnostic{Kind: Constraints, Found: types[0], Required: types[1], Line: line})
	}
}

func after(line, mark string) (string, bool) {
	i := strings.Index(line, mark)
	if i < 0 {
		return "", false
	}
	return line[i+len(mark):], true
}

// label returns the value of an indented "name: value" line. Older
// checkers pad the name: "found   : int".
func label(line, name string) (string, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, name) {
		return "", false
	}
	t = strings.TrimSpace(t[len(name):])
	if !strings.HasPrefix(t, ":") {
		return "", false
	}
	return t[1:], true
}

// typeText normalises a type spelled by the checker: whitespace is
// collapsed and annotation tokens are dropped, including type annotations
// inside a qualified name (java.util.@NonNull List).
func typeText(s string) string {
	var b strings.Builder
	glue := false
	for _, f := range strings.Fields(s) {
		if strings.HasPrefix(f, "@") {
			continue
		}
		if i := strings.Index(f, ".@"); i >= 0 {
			f = f[:i+1]
		}
		if b.Len() > 0 && !glue {
			b.WriteByte(' ')
		}
		b.WriteString(f)
		glue = strings.HasSuffix(f, ".")
	}
	return b.String()
}

// SimpleName reduces a checker type to the simple name corrections are
// keyed by: java.util.List<String>[] -> List[].
func SimpleName(t string) string {
	base, dims := t, ""
	if i := strings.IndexByte(t, '['); i >= 0 {
		base, dims = t[:i], t[i:]
	}
	if i := strings.IndexByte(base, '<'); i >= 0 {
		base = base[:i]
	}
	if i := strings.LastIndexByte(base, '.'); i >= 0 {
		base = base[i+1:]
	}
	return strings.TrimSpace(base) + dims
}
