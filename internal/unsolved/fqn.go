package unsolved

import (
	"strings"
)

// FQNSet is an ordered Candidate Identity Set: the fully-qualified names a
// type of unknown identity may have, together with the candidate sets of
// its type arguments. The first name is the preferred one.
type FQNSet struct {
	Erased   []string
	TypeArgs []FQNSet
	// Wildcard is "?", "? extends" or "? super" when the set stands for a
	// wildcard type argument. An unbounded wildcard has no names.
	Wildcard string
	// TypeVar marks the single name of a type variable.
	TypeVar bool
}

// UnboundedWildcard is the "?" type argument.
var UnboundedWildcard = FQNSet{Wildcard: "?"}

// NewFQNSet builds a set from names, dropping duplicates and keeping the
// first occurrence order.
func NewFQNSet(names ...string) FQNSet {
	return FQNSet{Erased: dedup(names)}
}

// Single is the set holding exactly one name.
func Single(name string) FQNSet {
	return FQNSet{Erased: []string{name}}
}

// Empty reports a set without names that is not a wildcard.
func (s FQNSet) Empty() bool { return len(s.Erased) == 0 && s.Wildcard == "" }

// IsWildcard reports the unbounded wildcard.
func (s FQNSet) IsWildcard() bool { return s.Wildcard == "?" && len(s.Erased) == 0 }

// First returns the preferred name, or "".
func (s FQNSet) First() string {
	if len(s.Erased) == 0 {
		return ""
	}
	return s.Erased[0]
}

// Contains reports whether name is a candidate.
func (s FQNSet) Contains(name string) bool {
	for _, n := range s.Erased {
		if n == name {
			return true
		}
	}
	return false
}

// IsSingle reports whether exactly one name remains.
func (s FQNSet) IsSingle() bool { return len(s.Erased) == 1 }

// WithTypeArgs returns a copy of s carrying args.
func (s FQNSet) WithTypeArgs(args []FQNSet) FQNSet {
	s.TypeArgs = args
	return s
}

// String spells the preferred candidate with its type arguments.
func (s FQNSet) String() string {
	var b strings.Builder
	if s.Wildcard != "" {
		b.WriteString(s.Wildcard)
		if len(s.Erased) > 0 {
			b.WriteByte(' ')
		}
	}
	b.WriteString(s.First())
	if len(s.TypeArgs) > 0 {
		b.WriteByte('<')
		for i, a := range s.TypeArgs {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	return b.String()
}

// intersect returns the names present in both a and b, in a's order.
func intersect(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, n := range b {
		in[n] = true
	}
	var out []string
	for _, n := range a {
		if in[n] {
			out = append(out, n)
		}
	}
	return out
}

func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	in := make(map[string]bool, len(a))
	for _, n := range a {
		in[n] = true
	}
	for _, n := range b {
		if !in[n] {
			return false
		}
	}
	return true
}

// simpleOf returns the last dotted segment of an erased name.
func simpleOf(name string) string {
	if i := strings.IndexByte(name, '<'); i >= 0 {
		name = name[:i]
	}
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}

// parentOf returns name without its last dotted segment.
func parentOf(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	return ""
}

// capitalize upper-cases the first byte of an identifier.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
