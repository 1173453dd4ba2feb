//go:build !cgo

package javasrc

import (
	"context"

	"jslice/internal/ast"
	slerrors "jslice/internal/errors"
)

// Parser is unavailable without cgo; tree-sitter is a C library.
type Parser struct{}

// NewParser returns a parser whose Parse always fails.
func NewParser() *Parser {
	return &Parser{}
}

// Available reports whether this build can parse Java.
func Available() bool { return false }

// Parse always returns a PARSER_UNAVAILABLE error.
func (p *Parser) Parse(ctx context.Context, path string, source []byte) (*ast.File, error) {
	return nil, slerrors.New(slerrors.ParserUnavailable, "Java parsing requires a cgo build (tree-sitter)", nil)
}

// Close is a no-op.
func (p *Parser) Close() {}
