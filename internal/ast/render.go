package ast

import (
	"bytes"
	"sort"
	"strings"
)

// Edit selects which nodes of a unit survive rendering.
type Edit struct {
	// Keep reports whether a node survives. It is consulted for every node
	// whose parent survived; nil keeps everything.
	Keep func(NodeID) bool
	// Replace substitutes text for the [Start, End) span of a surviving node.
	Replace map[NodeID]string
}

type splice struct {
	start, end int
	text       string
}

// Render rebuilds the text of a unit from its original bytes. Text between
// surviving nodes is copied verbatim, so a unit whose nodes all survive
// renders byte-identical to its source. A dropped node takes its Lead
// tokens with it, and the whole line when nothing else was on it.
func (a *Arena) Render(u *Unit, e Edit) []byte {
	src := u.Source
	if r, ok := e.Replace[u.Root]; ok {
		return []byte(r)
	}

	var splices []splice
	var collect func(id NodeID)
	collect = func(id NodeID) {
		for _, c := range a.nodes[id].Children {
			n := &a.nodes[c]
			if e.Keep != nil && !e.Keep(c) {
				s, end := expandToLine(src, n.Lead, n.End)
				splices = append(splices, splice{start: s, end: end})
				continue
			}
			if r, ok := e.Replace[c]; ok {
				start, end := n.Start, n.End
				if strings.HasPrefix(r, ";") {
					// "m() ;" reads as "m();"
					for start > 0 && (src[start-1] == ' ' || src[start-1] == '\t') {
						start--
					}
				}
				if r == "" {
					// an emptied modifier list takes its separator along
					for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
						end++
					}
				}
				splices = append(splices, splice{start: start, end: end, text: r})
				continue
			}
			collect(c)
		}
	}
	collect(u.Root)

	sort.SliceStable(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	var buf bytes.Buffer
	buf.Grow(len(src))
	cursor := 0
	for _, sp := range splices {
		if sp.start < cursor {
			sp.start = cursor
		}
		if sp.end < sp.start {
			continue
		}
		buf.Write(src[cursor:sp.start])
		buf.WriteString(sp.text)
		cursor = sp.end
	}
	buf.Write(src[cursor:])
	return buf.Bytes()
}

// expandToLine widens [start, end) to whole lines when the span is the
// only non-blank content on them.
func expandToLine(src []byte, start, end int) (int, int) {
	ls := bytes.LastIndexByte(src[:start], '\n') + 1
	le := len(src)
	if i := bytes.IndexByte(src[end:], '\n'); i >= 0 {
		le = end + i
	}
	if !isBlank(src[ls:start]) || !isBlank(src[end:le]) {
		return start, end
	}
	if le < len(src) {
		le++
	}
	return ls, le
}

func isBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\r' {
			return false
		}
	}
	return true
}
