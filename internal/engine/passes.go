package engine

import (
	"bytes"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CorrectionPass rewrites one output file after pruning. Passes run in
// order on every file, synthetic ones included.
type CorrectionPass interface {
	Name() string
	Correct(f File) (File, error)
}

// DefaultPasses are the passes an engine runs when none are configured.
func DefaultPasses() []CorrectionPass {
	return []CorrectionPass{UnusedImports{}}
}

// UnusedImports removes single-type and static imports whose simple name
// no longer appears in the file. On-demand imports are kept. Only imports
// written on a line of their own are considered.
type UnusedImports struct{}

func (UnusedImports) Name() string { return "unused-imports" }

func (UnusedImports) Correct(f File) (File, error) {
	lines := bytes.SplitAfter(f.Content, []byte("\n"))
	imports := make(map[int]string)
	var body bytes.Buffer
	for i, line := range lines {
		if name, ok := importedName(string(line)); ok {
			imports[i] = name
			body.WriteByte('\n')
			continue
		}
		body.Write(line)
	}
	if len(imports) == 0 {
		return f, nil
	}

	used := identifiers(body.Bytes())
	var out bytes.Buffer
	dropped := 0
	lastBlank, afterDrop := false, false
	for i, line := range lines {
		if name, ok := imports[i]; ok && name != "*" && !used[name] {
			dropped++
			afterDrop = true
			continue
		}
		blank := len(bytes.TrimSpace(line)) == 0 && len(line) > 0
		if blank && lastBlank && afterDrop {
			// the whole import block went away
			continue
		}
		out.Write(line)
		lastBlank = blank
		if !blank {
			afterDrop = false
		}
	}
	if dropped == 0 {
		return f, nil
	}
	f.Content = out.Bytes()
	return f, nil
}

// importedName returns the simple name a one-line import declaration
// brings into scope, "*" for on-demand imports.
func importedName(line string) (string, bool) {
	t := strings.TrimSpace(line)
	if !strings.HasPrefix(t, "import ") && !strings.HasPrefix(t, "import\t") {
		return "", false
	}
	semi := strings.IndexByte(t, ';')
	if semi < 0 || strings.TrimSpace(t[semi+1:]) != "" {
		return "", false
	}
	name := strings.TrimSpace(t[len("import"):semi])
	name = strings.TrimSpace(strings.TrimPrefix(name, "static "))
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = strings.TrimSpace(name[i+1:])
	}
	if name == "" {
		return "", false
	}
	return name, true
}

// identifiers collects the identifier tokens of Java source outside
// comments, string and character literals and text blocks.
func identifiers(src []byte) map[string]bool {
	out := make(map[string]bool)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return out
			}
			i += end + 4
		case bytes.HasPrefix(src[i:], []byte(`"""`)):
			i = skipTextBlock(src, i+3)
		case c == '"' || c == '\'':
			i = skipQuoted(src, i+1, c)
		default:
			r, size := utf8.DecodeRune(src[i:])
			if !identStart(r) {
				i += size
				continue
			}
			start := i
			for i < len(src) {
				r, size := utf8.DecodeRune(src[i:])
				if !identStart(r) && !unicode.IsDigit(r) {
					break
				}
				i += size
			}
			out[string(src[start:i])] = true
		}
	}
	return out
}

func identStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

// skipQuoted returns the offset after the literal closed by quote.
func skipQuoted(src []byte, i int, quote byte) int {
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
			continue
		case quote, '\n':
			return i + 1
		}
		i++
	}
	return i
}

func skipTextBlock(src []byte, i int) int {
	for i < len(src) {
		if src[i] == '\\' {
			i += 2
			continue
		}
		if bytes.HasPrefix(src[i:], []byte(`"""`)) {
			return i + 3
		}
		i++
	}
	return i
}
