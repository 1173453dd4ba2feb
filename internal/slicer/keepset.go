package slicer

import (
	"github.com/RoaringBitmap/roaring/v2"

	"jslice/internal/ast"
)

// KeepSet is the append-only set of nodes the slice retains. Node ids are dense
// pre-order integers, so a compressed bitmap holds large slices cheaply.
type KeepSet struct {
	bitmap *roaring.Bitmap
}

// NewKeepSet returns an empty set.
func NewKeepSet() *KeepSet {
	return &KeepSet{bitmap: roaring.New()}
}

// Add inserts id and reports whether it was absent.
func (k *KeepSet) Add(id ast.NodeID) bool {
	if id < 0 {
		return false
	}
	return k.bitmap.CheckedAdd(uint32(id))
}

// Contains reports whether id is kept.
func (k *KeepSet) Contains(id ast.NodeID) bool {
	return id >= 0 && k.bitmap.Contains(uint32(id))
}

// Len returns the number of kept nodes.
func (k *KeepSet) Len() int {
	return int(k.bitmap.GetCardinality())
}

// IDs returns the kept nodes in ascending order.
func (k *KeepSet) IDs() []ast.NodeID {
	out := make([]ast.NodeID, 0, k.Len())
	it := k.bitmap.Iterator()
	for it.HasNext() {
		out = append(out, ast.NodeID(it.Next()))
	}
	return out
}

// Without returns a copy of k minus ids.
func (k *KeepSet) Without(ids []ast.NodeID) *KeepSet {
	c := &KeepSet{bitmap: k.bitmap.Clone()}
	for _, id := range ids {
		if id >= 0 {
			c.bitmap.Remove(uint32(id))
		}
	}
	return c
}
