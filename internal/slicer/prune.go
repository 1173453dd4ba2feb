package slicer

import (
	"strings"

	"jslice/internal/ast"
	"jslice/internal/javalang"
)

// FailBody replaces the body of every kept callable whose body is not part
// of the slice.
const FailBody = "{ throw new Error(); }"

// PrunedUnit is the text of one compilation unit after pruning.
type PrunedUnit struct {
	Unit    *ast.Unit
	Path    string
	Content []byte
}

// Prune renders units keeping only the nodes in keep that are not in
// discard. Package and import declarations always survive; unused imports
// are left to later correction passes. Units with no kept type are
// omitted.
func Prune(a *ast.Arena, keep *KeepSet, discard []ast.NodeID, units []*ast.Unit) []PrunedUnit {
	kept := keep.Without(discard)
	var out []PrunedUnit
	for _, u := range units {
		if !hasKeptType(a, kept, u) {
			continue
		}
		p := &pruner{a: a, kept: kept, replace: make(map[ast.NodeID]string), force: make(map[ast.NodeID]bool)}
		p.plan(u.Root)
		out = append(out, PrunedUnit{
			Unit:    u,
			Path:    u.Path,
			Content: a.Render(u, ast.Edit{Keep: p.keep, Replace: p.replace}),
		})
	}
	return out
}

func hasKeptType(a *ast.Arena, kept *KeepSet, u *ast.Unit) bool {
	for _, c := range a.Children(u.Root) {
		if a.Kind(c).IsTypeDecl() && kept.Contains(c) {
			return true
		}
	}
	return false
}

type pruner struct {
	a       *ast.Arena
	kept    *KeepSet
	replace map[ast.NodeID]string
	// force keeps nodes outside the keep set that hold the tree together,
	// such as the empty body of a kept type.
	force map[ast.NodeID]bool
}

func (p *pruner) keep(id ast.NodeID) bool {
	switch p.a.Kind(id) {
	case ast.KindPackageDecl, ast.KindImportDecl:
		return true
	case ast.KindComment:
		return p.commentSurvives(id)
	}
	if _, ok := p.replace[id]; ok {
		return true
	}
	return p.kept.Contains(id) || p.force[id]
}

// commentSurvives keeps a comment when the next node after it survives,
// so documentation leaves with what it documents.
func (p *pruner) commentSurvives(id ast.NodeID) bool {
	for s := p.a.NextSibling(id); s != ast.NoNode; s = p.a.NextSibling(s) {
		if p.a.Kind(s) != ast.KindComment {
			return p.keep(s)
		}
	}
	return true
}

// plan walks the surviving tree and decides the placeholders.
func (p *pruner) plan(id ast.NodeID) {
	a := p.a
	n := a.Node(id)
	for _, c := range n.Children {
		cn := a.Node(c)
		if !p.kept.Contains(c) {
			p.absent(id, c, cn)
			continue
		}
		if n.Kind == ast.KindConstructorDecl && cn.Role == ast.RoleBody && p.partial(c) {
			// only the super(...) call was pulled in
			p.replace[c] = "{ " + a.Text(a.ChildOfKind(c, ast.KindExplicitCtorCall)) + " throw new Error(); }"
			continue
		}
		p.plan(c)
	}
}

// absent decides what replaces a child the slice did not keep.
func (p *pruner) absent(parent, c ast.NodeID, cn *ast.Node) {
	a := p.a
	pk := a.Kind(parent)
	switch {
	case cn.Role == ast.RoleBody && pk.IsTypeDecl():
		p.force[c] = true

	case cn.Kind == ast.KindVarDeclarator && pk == ast.KindFieldDecl:
		// int a = 1, b = 2; cannot lose one declarator
		p.force[c] = true
		p.plan(c)

	case cn.Role == ast.RoleBody && (pk == ast.KindMethodDecl || pk == ast.KindConstructorDecl):
		owner := a.EnclosingType(parent)
		mods := a.Node(parent).Mods
		if a.IsInterfaceLike(owner) && !mods.Has(ast.ModStatic) && !mods.Has(ast.ModPrivate) {
			p.replace[c] = ";"
			if mods.Has(ast.ModDefault) {
				p.dropModifier(parent, "default")
			}
			return
		}
		p.replace[c] = FailBody

	case cn.Role == ast.RoleValue && pk == ast.KindVarDeclarator && a.Kind(a.Parent(parent)) == ast.KindFieldDecl:
		field := a.Parent(parent)
		if !a.Node(field).Mods.Has(ast.ModFinal) && !a.IsInterfaceLike(a.EnclosingType(field)) {
			return
		}
		typ := "Object"
		if t := a.Child(field, ast.RoleType); t != ast.NoNode {
			typ = a.Text(t)
		}
		if a.Node(parent).Dims > 0 {
			typ += "[]"
		}
		p.replace[c] = javalang.DefaultValue(typ)
	}
}

// partial reports a kept block with statements that were not kept.
func (p *pruner) partial(block ast.NodeID) bool {
	for _, c := range p.a.Children(block) {
		if p.a.Kind(c) != ast.KindComment && !p.kept.Contains(c) {
			return true
		}
	}
	return false
}

// dropModifier rewrites the modifiers of decl without word, leaving out
// annotations that do not survive.
func (p *pruner) dropModifier(decl ast.NodeID, word string) {
	a := p.a
	mods := a.Child(decl, ast.RoleModifiers)
	if mods == ast.NoNode {
		return
	}
	m := a.Node(mods)
	src := a.UnitOf(mods).Source
	var b strings.Builder
	cursor := m.Start
	for _, c := range m.Children {
		cn := a.Node(c)
		if p.kept.Contains(c) {
			continue
		}
		b.Write(src[cursor:cn.Start])
		cursor = cn.End
	}
	b.Write(src[cursor:m.End])

	var words []string
	for _, f := range strings.Fields(b.String()) {
		if f != word {
			words = append(words, f)
		}
	}
	p.replace[mods] = strings.Join(words, " ")
}
