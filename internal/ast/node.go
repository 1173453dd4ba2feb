// Package ast holds parsed Java compilation units in an arena of nodes
// addressed by stable integer ids.
//
// Node ids are assigned once, in pre-order, when a unit is appended to the
// arena and are never reused. Everything that needs node identity (keep
// sets, post-process sets, must-preserve sets) stores NodeIDs, so editing a
// node never changes how it is looked up.
package ast

import "strings"

// NodeID identifies a node within one Arena.
type NodeID int32

// NoNode is the zero value for absent parents and children.
const NoNode NodeID = -1

// UnitID identifies a compilation unit within one Arena.
type UnitID int32

// Modifier is a bit set of Java modifiers.
type Modifier uint16

const (
	ModPublic Modifier = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModDefault
	ModNative
	ModSynchronized
	ModTransient
	ModVolatile
	ModStrictfp
	ModSealed
	ModNonSealed
)

var modifierWords = []struct {
	word string
	mod  Modifier
}{
	{"public", ModPublic},
	{"protected", ModProtected},
	{"private", ModPrivate},
	{"static", ModStatic},
	{"final", ModFinal},
	{"abstract", ModAbstract},
	{"default", ModDefault},
	{"native", ModNative},
	{"synchronized", ModSynchronized},
	{"transient", ModTransient},
	{"volatile", ModVolatile},
	{"strictfp", ModStrictfp},
	{"sealed", ModSealed},
	{"non-sealed", ModNonSealed},
}

// ModifierFromWord returns the modifier for a keyword, or 0.
func ModifierFromWord(w string) Modifier {
	for _, m := range modifierWords {
		if m.word == w {
			return m.mod
		}
	}
	return 0
}

// Has reports whether all bits of m2 are set.
func (m Modifier) Has(m2 Modifier) bool { return m&m2 == m2 }

func (m Modifier) String() string {
	var parts []string
	for _, mw := range modifierWords {
		if m&mw.mod != 0 {
			parts = append(parts, mw.word)
		}
	}
	return strings.Join(parts, " ")
}

// Node is one syntax node. Start and End are byte offsets into the owning
// unit's source. Lead is where the tokens that disappear together with the
// node begin; it equals Start except for initializer values, whose Lead
// covers the preceding "=".
type Node struct {
	ID       NodeID
	Kind     Kind
	Role     Role
	Parent   NodeID
	Children []NodeID
	Start    int
	End      int
	Lead     int
	Unit     UnitID

	// Name is the declared or referenced simple name: type, method, field,
	// parameter and variable names, the invoked member of a call or field
	// access, the dotted erased name of a class type, the key of an element
	// value pair, and the literal type of a literal.
	Name string
	// Text is the operator of binary, unary and assignment expressions,
	// "this" or "super" for explicit constructor calls, and the bound
	// keyword of a wildcard.
	Text string
	Mods Modifier
	// Dims counts array dimensions spelled on the node itself.
	Dims int
}

// Import is one import declaration of a unit.
type Import struct {
	Name     string
	Static   bool
	Asterisk bool
	Node     NodeID
}

// Identifier returns the last segment of the import name.
func (i Import) Identifier() string {
	if j := strings.LastIndexByte(i.Name, '.'); j >= 0 {
		return i.Name[j+1:]
	}
	return i.Name
}

// Qualifier returns the import name without its last segment.
func (i Import) Qualifier() string {
	if j := strings.LastIndexByte(i.Name, '.'); j >= 0 {
		return i.Name[:j]
	}
	return ""
}

// Unit is one compilation unit.
type Unit struct {
	ID      UnitID
	Path    string
	Source  []byte
	Root    NodeID
	Package string
	Imports []Import
}

// File is a parsed unit not yet placed in an arena. Its node ids are local
// (0-based) until Arena.Append rebases them.
type File struct {
	Path    string
	Source  []byte
	Nodes   []Node
	Package string
	Imports []Import
}

// Add appends a node under parent and returns its local id. The caller
// fills every field except ID, Parent and Children.
func (f *File) Add(parent NodeID, n Node) NodeID {
	id := NodeID(len(f.Nodes))
	n.ID = id
	n.Parent = parent
	n.Children = nil
	if n.Lead == 0 || n.Lead > n.Start {
		n.Lead = n.Start
	}
	f.Nodes = append(f.Nodes, n)
	if parent != NoNode {
		f.Nodes[parent].Children = append(f.Nodes[parent].Children, id)
	}
	return id
}

// Node returns a pointer to a local node of the file.
func (f *File) Node(id NodeID) *Node {
	return &f.Nodes[id]
}
