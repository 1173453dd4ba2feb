//go:build cgo

package javasrc

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"

	"jslice/internal/ast"
	slerrors "jslice/internal/errors"
)

// Parser wraps tree-sitter for Java. A Parser is not safe for concurrent
// use; the loader creates one per worker.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Java parser.
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(java.GetLanguage())
	return &Parser{parser: p}
}

// Available reports whether this build can parse Java.
func Available() bool { return true }

// Parse parses one compilation unit into a detached ast.File.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*ast.File, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, slerrors.New(slerrors.ParseFailed, path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line, col := firstError(root)
		return nil, slerrors.New(slerrors.ParseFailed, path,
			fmt.Errorf("syntax error near line %d column %d", line, col))
	}

	c := &converter{src: source, f: &ast.File{Path: path, Source: source}}
	c.convert(root, ast.NoNode, ast.RoleNone)
	return c.f, nil
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}

func firstError(n *sitter.Node) (int, int) {
	if n.IsError() || n.IsMissing() {
		pt := n.StartPoint()
		return int(pt.Row) + 1, int(pt.Column) + 1
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && c.HasError() {
			return firstError(c)
		}
	}
	pt := n.StartPoint()
	return int(pt.Row) + 1, int(pt.Column) + 1
}
