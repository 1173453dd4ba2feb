package unsolved

import (
	"errors"
	"fmt"

	"jslice/internal/ast"
)

// ErrFrozen is returned when a collapsed registry is asked to change.
var ErrFrozen = errors.New("unsolved: registry is frozen")

// Registry maps identity strings to the group currently claiming them.
// One registry exists per run; it is not safe for concurrent use.
//
// An identity belongs to at most one group. When a group narrows, the
// identities it gave up are released and member groups declared on it are
// re-keyed together with it.
type Registry struct {
	byID   map[string]Alternates
	keys   map[Alternates][]string
	order  []Alternates
	seq    int
	frozen bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]Alternates),
		keys: make(map[Alternates][]string),
	}
}

// Lookup returns the group claiming the first claimed id, or nil.
func (r *Registry) Lookup(ids []string) Alternates {
	for _, id := range ids {
		if g, ok := r.byID[id]; ok {
			return g
		}
	}
	return nil
}

// FindAndNarrow looks up the group claiming any of ids and narrows it to
// them. It returns nil when no group claims an id. A frozen registry
// reports ErrFrozen instead of narrowing.
func (r *Registry) FindAndNarrow(ids []string) (Alternates, error) {
	g := r.Lookup(ids)
	if g == nil {
		return nil, nil
	}
	current := g.Identities()
	if sameNames(current, ids) || len(intersect(current, ids)) == len(current) {
		return g, nil
	}
	if r.frozen {
		return g, fmt.Errorf("%w: narrowing %s", ErrFrozen, current[0])
	}
	if g.Narrow(ids) {
		r.rekey(g)
		if tg, ok := g.(*TypeGroup); ok {
			r.rekeyMembersOf(tg)
		}
	}
	return g, nil
}

// Add registers a new group. Identities already claimed by another group
// stay with that group.
func (r *Registry) Add(g Alternates) error {
	if r.frozen {
		return fmt.Errorf("%w: adding %s", ErrFrozen, first(g.Identities()))
	}
	if _, dup := r.keys[g]; dup {
		return nil
	}
	r.seq++
	setSeq(g, r.seq)
	r.order = append(r.order, g)
	r.keys[g] = nil
	r.rekey(g)
	return nil
}

// Remove drops a group and releases its identities.
func (r *Registry) Remove(g Alternates) error {
	if r.frozen {
		return fmt.Errorf("%w: removing %s", ErrFrozen, first(g.Identities()))
	}
	if _, ok := r.keys[g]; !ok {
		return nil
	}
	r.unkey(g)
	delete(r.keys, g)
	for i, x := range r.order {
		if x == g {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Replace substitutes with for every use of old in the registered groups
// and removes old.
func (r *Registry) Replace(old *TypeGroup, with MemberType) error {
	if r.frozen {
		return fmt.Errorf("%w: replacing %s", ErrFrozen, old.fqns[0])
	}
	for _, g := range r.order {
		switch v := g.(type) {
		case *TypeGroup:
			v.replace(old, with)
		case *FieldGroup:
			v.replace(old, with)
		case *MethodGroup:
			v.replace(old, with)
			r.rekey(v)
		}
	}
	return r.Remove(old)
}

// Update applies fn to a registered group and re-keys it, since fn may
// change the identities the group stands for.
func (r *Registry) Update(g Alternates, fn func()) error {
	if r.frozen {
		return fmt.Errorf("%w: updating %s", ErrFrozen, first(g.Identities()))
	}
	fn()
	if _, ok := r.keys[g]; ok {
		r.rekey(g)
	}
	return nil
}

// Groups returns every registered group in insertion order.
func (r *Registry) Groups() []Alternates { return append([]Alternates(nil), r.order...) }

// Types returns the type groups in insertion order.
func (r *Registry) Types() []*TypeGroup {
	var out []*TypeGroup
	for _, g := range r.order {
		if t, ok := g.(*TypeGroup); ok {
			out = append(out, t)
		}
	}
	return out
}

// Fields returns the field groups in insertion order.
func (r *Registry) Fields() []*FieldGroup {
	var out []*FieldGroup
	for _, g := range r.order {
		if f, ok := g.(*FieldGroup); ok {
			out = append(out, f)
		}
	}
	return out
}

// Methods returns the method groups in insertion order.
func (r *Registry) Methods() []*MethodGroup {
	var out []*MethodGroup
	for _, g := range r.order {
		if m, ok := g.(*MethodGroup); ok {
			out = append(out, m)
		}
	}
	return out
}

// MembersOf returns the field and method groups that may be declared in
// tg.
func (r *Registry) MembersOf(tg *TypeGroup) []Alternates {
	var out []Alternates
	for _, g := range r.order {
		switch v := g.(type) {
		case *FieldGroup:
			if declares(v.declaring, tg) {
				out = append(out, v)
			}
		case *MethodGroup:
			if declares(v.declaring, tg) {
				out = append(out, v)
			}
		}
	}
	return out
}

// Freeze rejects every later change.
func (r *Registry) Freeze() { r.frozen = true }

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool { return r.frozen }

// Len returns the number of registered groups.
func (r *Registry) Len() int { return len(r.order) }

// DependentNodes returns the union of every group's must-preserve nodes,
// sorted.
func (r *Registry) DependentNodes() []ast.NodeID {
	set := make(map[ast.NodeID]bool)
	for _, g := range r.order {
		for _, id := range g.DependentNodes() {
			set[id] = true
		}
	}
	return sortedNodes(set)
}

func (r *Registry) unkey(g Alternates) {
	for _, id := range r.keys[g] {
		if r.byID[id] == g {
			delete(r.byID, id)
		}
	}
	r.keys[g] = nil
}

func (r *Registry) rekey(g Alternates) {
	r.unkey(g)
	var claimed []string
	for _, id := range g.Identities() {
		if _, taken := r.byID[id]; taken {
			continue
		}
		r.byID[id] = g
		claimed = append(claimed, id)
	}
	r.keys[g] = claimed
}

func (r *Registry) rekeyMembersOf(tg *TypeGroup) {
	for _, m := range r.MembersOf(tg) {
		r.rekey(m)
	}
}

func setSeq(g Alternates, seq int) {
	switch v := g.(type) {
	case *TypeGroup:
		v.seq = seq
	case *FieldGroup:
		v.seq = seq
	case *MethodGroup:
		v.seq = seq
	}
}

func first(ids []string) string {
	if len(ids) == 0 {
		return "<empty>"
	}
	return ids[0]
}
