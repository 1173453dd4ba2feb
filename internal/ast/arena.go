package ast

import (
	"fmt"
	"sort"
)

// Arena owns every node of every unit of one run.
type Arena struct {
	nodes  []Node
	units  []*Unit
	byPath map[string]UnitID
}

// NewArena returns an empty arena.
func NewArena() *Arena {
	return &Arena{byPath: make(map[string]UnitID)}
}

// Append moves a parsed file into the arena, rebasing its node ids, and
// returns the new unit. Files are expected to be appended in a fixed
// order so that ids are reproducible between runs.
func (a *Arena) Append(f *File) *Unit {
	if len(f.Nodes) == 0 {
		panic(fmt.Sprintf("ast: file %s has no nodes", f.Path))
	}
	base := NodeID(len(a.nodes))
	uid := UnitID(len(a.units))
	for _, n := range f.Nodes {
		n.ID += base
		if n.Parent != NoNode {
			n.Parent += base
		}
		children := make([]NodeID, len(n.Children))
		for i, c := range n.Children {
			children[i] = c + base
		}
		n.Children = children
		n.Unit = uid
		a.nodes = append(a.nodes, n)
	}
	imports := make([]Import, len(f.Imports))
	for i, imp := range f.Imports {
		if imp.Node != NoNode {
			imp.Node += base
		}
		imports[i] = imp
	}
	u := &Unit{
		ID:      uid,
		Path:    f.Path,
		Source:  f.Source,
		Root:    base,
		Package: f.Package,
		Imports: imports,
	}
	a.units = append(a.units, u)
	a.byPath[f.Path] = uid
	return u
}

// Len returns the number of nodes in the arena.
func (a *Arena) Len() int { return len(a.nodes) }

// Node returns the node with the given id. It panics on an invalid id.
func (a *Arena) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(a.nodes) {
		panic(fmt.Sprintf("ast: node id %d out of range", id))
	}
	return &a.nodes[id]
}

// Valid reports whether id addresses a node in the arena.
func (a *Arena) Valid(id NodeID) bool {
	return id >= 0 && int(id) < len(a.nodes)
}

// Kind is shorthand for Node(id).Kind that tolerates NoNode.
func (a *Arena) Kind(id NodeID) Kind {
	if !a.Valid(id) {
		return KindOther
	}
	return a.nodes[id].Kind
}

// Units returns all units in append order.
func (a *Arena) Units() []*Unit { return a.units }

// Unit returns the unit with the given id.
func (a *Arena) Unit(id UnitID) *Unit { return a.units[id] }

// UnitByPath returns the unit parsed from a canonical path.
func (a *Arena) UnitByPath(path string) (*Unit, bool) {
	id, ok := a.byPath[path]
	if !ok {
		return nil, false
	}
	return a.units[id], true
}

// UnitOf returns the unit that owns a node.
func (a *Arena) UnitOf(id NodeID) *Unit {
	return a.units[a.Node(id).Unit]
}

// Parent returns the parent of id, or NoNode for a unit root.
func (a *Arena) Parent(id NodeID) NodeID {
	return a.Node(id).Parent
}

// Children returns the children of id in source order.
func (a *Arena) Children(id NodeID) []NodeID {
	return a.Node(id).Children
}

// Child returns the first child of id filling role, or NoNode.
func (a *Arena) Child(id NodeID, role Role) NodeID {
	for _, c := range a.nodes[id].Children {
		if a.nodes[c].Role == role {
			return c
		}
	}
	return NoNode
}

// ChildrenWithRole returns every child of id filling role.
func (a *Arena) ChildrenWithRole(id NodeID, role Role) []NodeID {
	var out []NodeID
	for _, c := range a.nodes[id].Children {
		if a.nodes[c].Role == role {
			out = append(out, c)
		}
	}
	return out
}

// ChildOfKind returns the first child of id with one of the kinds, or NoNode.
func (a *Arena) ChildOfKind(id NodeID, kinds ...Kind) NodeID {
	for _, c := range a.nodes[id].Children {
		for _, k := range kinds {
			if a.nodes[c].Kind == k {
				return c
			}
		}
	}
	return NoNode
}

// ChildrenOfKind returns every child of id with the given kind.
func (a *Arena) ChildrenOfKind(id NodeID, kind Kind) []NodeID {
	var out []NodeID
	for _, c := range a.nodes[id].Children {
		if a.nodes[c].Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

// Ancestor returns the nearest strict ancestor of id with one of the
// kinds, or NoNode.
func (a *Arena) Ancestor(id NodeID, kinds ...Kind) NodeID {
	for p := a.Node(id).Parent; p != NoNode; p = a.nodes[p].Parent {
		for _, k := range kinds {
			if a.nodes[p].Kind == k {
				return p
			}
		}
	}
	return NoNode
}

// AncestorWhere returns the nearest strict ancestor satisfying pred.
func (a *Arena) AncestorWhere(id NodeID, pred func(*Node) bool) NodeID {
	for p := a.Node(id).Parent; p != NoNode; p = a.nodes[p].Parent {
		if pred(&a.nodes[p]) {
			return p
		}
	}
	return NoNode
}

// EnclosingType returns the nearest type declaration strictly enclosing id.
// Anonymous class bodies are transparent: members declared in them report
// the surrounding named type.
func (a *Arena) EnclosingType(id NodeID) NodeID {
	for p := a.Node(id).Parent; p != NoNode; p = a.nodes[p].Parent {
		if a.nodes[p].Kind.IsTypeDecl() {
			return p
		}
	}
	return NoNode
}

// EnclosingCallable returns the nearest method, constructor, lambda or
// initializer strictly enclosing id.
func (a *Arena) EnclosingCallable(id NodeID) NodeID {
	return a.Ancestor(id, KindMethodDecl, KindConstructorDecl, KindLambda, KindInitializer, KindAnnotationMember)
}

// IsAncestor reports whether anc is id or one of its ancestors.
func (a *Arena) IsAncestor(anc, id NodeID) bool {
	for p := id; p != NoNode; p = a.nodes[p].Parent {
		if p == anc {
			return true
		}
	}
	return false
}

// Siblings returns the index of id among its parent's children and the
// children slice, or -1 for a root.
func (a *Arena) Siblings(id NodeID) (int, []NodeID) {
	p := a.Node(id).Parent
	if p == NoNode {
		return -1, nil
	}
	kids := a.nodes[p].Children
	for i, c := range kids {
		if c == id {
			return i, kids
		}
	}
	return -1, kids
}

// NextSibling returns the next non-comment sibling of id, or NoNode.
func (a *Arena) NextSibling(id NodeID) NodeID {
	i, kids := a.Siblings(id)
	if i < 0 {
		return NoNode
	}
	for _, c := range kids[i+1:] {
		if a.nodes[c].Kind != KindComment {
			return c
		}
	}
	return NoNode
}

// Text returns the source text of a node.
func (a *Arena) Text(id NodeID) string {
	n := a.Node(id)
	return string(a.units[n.Unit].Source[n.Start:n.End])
}

// Walk visits id and its descendants in pre-order. Returning false from
// fn skips the node's subtree.
func (a *Arena) Walk(id NodeID, fn func(NodeID) bool) {
	if !fn(id) {
		return
	}
	for _, c := range a.nodes[id].Children {
		a.Walk(c, fn)
	}
}

// TypeDecls returns every type declaration of a unit, outer types first
// and nested types after their enclosing type.
func (a *Arena) TypeDecls(u *Unit) []NodeID {
	var out []NodeID
	a.Walk(u.Root, func(id NodeID) bool {
		if a.nodes[id].Kind.IsTypeDecl() {
			out = append(out, id)
		}
		return true
	})
	return out
}

// QualifiedName returns the dotted qualified name of a type declaration,
// including enclosing type names. Local and anonymous types yield their
// simple name only.
func (a *Arena) QualifiedName(typeDecl NodeID) string {
	n := a.Node(typeDecl)
	name := n.Name
	for p := a.EnclosingType(typeDecl); p != NoNode; p = a.EnclosingType(p) {
		name = a.nodes[p].Name + "." + name
	}
	if pkg := a.units[n.Unit].Package; pkg != "" {
		return pkg + "." + name
	}
	return name
}

// IsInterfaceLike reports interfaces and annotation declarations.
func (a *Arena) IsInterfaceLike(typeDecl NodeID) bool {
	k := a.Kind(typeDecl)
	return k == KindInterfaceDecl || k == KindAnnotationDecl
}

// SortedUnits returns units sorted by path.
func (a *Arena) SortedUnits() []*Unit {
	out := make([]*Unit, len(a.units))
	copy(out, a.units)
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
