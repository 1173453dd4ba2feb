package enumerate

import (
	"fmt"
	"strings"

	"jslice/internal/unsolved"
)

// Policy decides which alternative of every ambiguous group is written.
//
// BestEffort takes alternative 0 of every group. Candidate identities are
// ordered as the generator computed them (imports first, then the current
// package, then the unresolvable supertypes of enclosing types, nearest
// first) and groups are visited in registry insertion order, so two runs
// over the same input choose the same program.
type Policy uint8

const (
	BestEffort Policy = iota
	// All walks the cross product of every group's alternatives. Its
	// first combination is the best-effort one.
	All
	// InputCondition asks a Chooser for every group.
	InputCondition
)

func (p Policy) String() string {
	switch p {
	case All:
		return "all"
	case InputCondition:
		return "input-condition"
	}
	return "best-effort"
}

// ParsePolicy accepts best-effort, all and input-condition in any case.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "best-effort", "besteffort":
		return BestEffort, nil
	case "all":
		return All, nil
	case "input-condition", "inputcondition":
		return InputCondition, nil
	}
	return BestEffort, fmt.Errorf("unknown ambiguity policy %q (want best-effort, all or input-condition)", s)
}

// Chooser supplies the disambiguating facts of the input-condition
// policy. Choose returns the index of the alternative to keep, in
// [0, g.Len()), or false to fall back to the first one.
type Chooser interface {
	Choose(g unsolved.Alternates) (int, bool)
}

// ChooserFunc adapts a function to Chooser.
type ChooserFunc func(g unsolved.Alternates) (int, bool)

func (f ChooserFunc) Choose(g unsolved.Alternates) (int, bool) { return f(g) }

// IdentityChooser keeps, for every group, the first alternative whose
// identity appears in the list. Groups without a listed identity take
// their first alternative.
type IdentityChooser []string

func (c IdentityChooser) Choose(g unsolved.Alternates) (int, bool) {
	for _, want := range c {
		for i := 0; i < g.Len(); i++ {
			if Identity(g, i) == want {
				return i, true
			}
		}
	}
	return 0, false
}
