package typecorrect

import (
	"sort"
	"strings"

	"jslice/internal/javalang"
	"jslice/internal/unsolved"
)

// Corrections accumulates what the checker taught the loop: replacement
// types for synthetic types, and supertypes some types must have. Keys are
// simple names because the checker prints simple names. It implements
// enumerate.Corrections.
type Corrections struct {
	replace map[string]string
	extends map[string]string
}

// NewCorrections returns an empty correction set.
func NewCorrections() *Corrections {
	return &Corrections{replace: make(map[string]string), extends: make(map[string]string)}
}

// Replacement returns the type declared instead of the synthetic type
// simple.
func (c *Corrections) Replacement(simple string) (string, bool) {
	r, ok := c.replace[simple]
	return r, ok
}

// Supertype returns the type simple must extend or implement. Final JDK
// classes and the unconstrained placeholder are never returned.
func (c *Corrections) Supertype(simple string) (string, bool) {
	s, ok := c.extends[simple]
	if !ok || javalang.IsFinalJDKClass(s) || SimpleName(s) == unsolved.SyntheticUnconstrainedType {
		return "", false
	}
	return s, true
}

// Len returns the number of recorded corrections.
func (c *Corrections) Len() int { return len(c.replace) + len(c.extends) }

// Key spells the correction set canonically. Two sets with the same key
// render the same program.
func (c *Corrections) Key() string {
	var parts []string
	for k, v := range c.replace {
		parts = append(parts, "="+k+"->"+v)
	}
	for k, v := range c.extends {
		parts = append(parts, "<"+k+"->"+v)
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// Replacements returns a copy of the type replacements.
func (c *Corrections) Replacements() map[string]string {
	return copyMap(c.replace)
}

// Supertypes returns a copy of the supertype facts, unfiltered.
func (c *Corrections) Supertypes() map[string]string {
	return copyMap(c.extends)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Apply learns from one diagnostic and reports whether the set changed.
// qualify spells a correct type so it can be written into a synthetic
// file of any package; nil leaves types as the checker printed them.
func (c *Corrections) Apply(d Diagnostic, qualify func(string) string) bool {
	if qualify == nil {
		qualify = func(s string) string { return s }
	}
	before := c.Key()
	found, required := SimpleName(d.Found), SimpleName(d.Required)

	switch d.Kind {
	case Incompatible, Incomparable, NotCompatible, Constraints:
		switch {
		case d.Kind == Incompatible && required == "Throwable":
			// checked exceptions were reconciled already, so what is left
			// is unchecked
			c.extends[found] = "RuntimeException"
		case unsolved.IsSynthetic(required):
			c.change(required, qualify(d.Found))
		case unsolved.IsSynthetic(found):
			c.change(found, qualify(d.Required))
		default:
			if _, ok := c.extends[found]; !ok {
				c.extends[found] = qualify(d.Required)
			}
		}

	case ForEach:
		if unsolved.IsSynthetic(found) {
			c.change(found, qualify(d.Required))
		}

	case BinaryOperator:
		c.binary(d.Op, d.Found, d.Required)
	}
	return c.Key() != before
}

// binary makes both operands of op admissible.
func (c *Corrections) binary(op, first, second string) {
	admitted := javalang.TypesForOp(op)
	if len(admitted) == 0 {
		return
	}
	admits := func(t string) bool {
		for _, a := range admitted {
			if a == t {
				return true
			}
		}
		return false
	}
	change := func(t, to string) {
		if s := SimpleName(t); unsolved.IsSynthetic(s) {
			c.change(s, to)
		}
	}
	switch {
	case admits(first):
		change(second, first)
	case admits(second):
		change(first, second)
	default:
		change(first, admitted[0])
		change(second, admitted[0])
	}
}

// change records that the synthetic type incorrect must become correct.
// A second, different requirement turns a return type into an
// unconstrained type variable and any other type into a common supertype
// of both requirements.
func (c *Corrections) change(incorrect, correct string) {
	if incorrect == unsolved.SyntheticUnconstrainedType {
		return
	}
	prev, ok := c.replace[incorrect]
	if !ok || prev == correct {
		c.replace[incorrect] = correct
		return
	}
	if strings.HasSuffix(incorrect, unsolved.ReturnTypeSuffix) {
		c.replace[incorrect] = unsolved.SyntheticUnconstrainedType
		return
	}
	delete(c.replace, incorrect)
	c.extends[SimpleName(correct)] = incorrect
	c.extends[SimpleName(prev)] = incorrect
}
