package slicer

import "jslice/internal/ast"

func toNodes(ids ...int32) []ast.NodeID {
	out := make([]ast.NodeID, len(ids))
	for i, id := range ids {
		out[i] = ast.NodeID(id)
	}
	return out
}

func toInts(ids []ast.NodeID) []int32 {
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}
