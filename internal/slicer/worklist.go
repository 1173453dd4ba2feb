package slicer

import "jslice/internal/ast"

// worklist is a deque whose front is the end of the slice.
type worklist struct {
	items []ast.NodeID
}

// pushFront places ids before everything queued, keeping their order.
func (w *worklist) pushFront(ids ...ast.NodeID) {
	for i := len(ids) - 1; i >= 0; i-- {
		w.items = append(w.items, ids[i])
	}
}

// pushBack places ids after everything queued, keeping their order.
func (w *worklist) pushBack(ids ...ast.NodeID) {
	if len(ids) == 0 {
		return
	}
	grown := make([]ast.NodeID, 0, len(w.items)+len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		grown = append(grown, ids[i])
	}
	w.items = append(grown, w.items...)
}

func (w *worklist) pop() (ast.NodeID, bool) {
	if len(w.items) == 0 {
		return ast.NoNode, false
	}
	id := w.items[len(w.items)-1]
	w.items = w.items[:len(w.items)-1]
	return id, true
}

func (w *worklist) len() int { return len(w.items) }
