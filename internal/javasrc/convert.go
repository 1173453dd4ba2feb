//go:build cgo

package javasrc

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"jslice/internal/ast"
)

// converter turns a tree-sitter Java tree into arena nodes. Only named
// nodes become ast nodes; identifiers that name the declaration or the
// member being accessed are folded into Node.Name.
type converter struct {
	src []byte
	f   *ast.File
}

type tsChild struct {
	node  *sitter.Node
	field string
}

func (c *converter) children(n *sitter.Node) []tsChild {
	var out []tsChild
	cur := sitter.NewTreeCursor(n)
	defer cur.Close()
	if !cur.GoToFirstChild() {
		return nil
	}
	for {
		out = append(out, tsChild{node: cur.CurrentNode(), field: cur.CurrentFieldName()})
		if !cur.GoToNextSibling() {
			break
		}
	}
	return out
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

var simpleKinds = map[string]ast.Kind{
	"program":                             ast.KindCompilationUnit,
	"line_comment":                        ast.KindComment,
	"block_comment":                       ast.KindComment,
	"class_declaration":                   ast.KindClassDecl,
	"interface_declaration":               ast.KindInterfaceDecl,
	"enum_declaration":                    ast.KindEnumDecl,
	"record_declaration":                  ast.KindRecordDecl,
	"annotation_type_declaration":         ast.KindAnnotationDecl,
	"class_body":                          ast.KindClassBody,
	"interface_body":                      ast.KindClassBody,
	"enum_body":                           ast.KindClassBody,
	"annotation_type_body":                ast.KindClassBody,
	"enum_constant":                       ast.KindEnumConstant,
	"field_declaration":                   ast.KindFieldDecl,
	"constant_declaration":                ast.KindFieldDecl,
	"variable_declarator":                 ast.KindVarDeclarator,
	"method_declaration":                  ast.KindMethodDecl,
	"constructor_declaration":             ast.KindConstructorDecl,
	"compact_constructor_declaration":     ast.KindConstructorDecl,
	"annotation_type_element_declaration": ast.KindAnnotationMember,
	"static_initializer":                  ast.KindInitializer,
	"annotation_argument_list":            ast.KindAnnotationArgs,
	"element_value_pair":                  ast.KindElementValuePair,
	"element_value_array_initializer":     ast.KindArrayInit,
	"formal_parameters":                   ast.KindParameters,
	"inferred_parameters":                 ast.KindParameters,
	"formal_parameter":                    ast.KindParameter,
	"receiver_parameter":                  ast.KindParameter,
	"type_parameters":                     ast.KindTypeParameters,
	"type_bound":                          ast.KindTypeBound,
	"superclass":                          ast.KindSuperclass,
	"extends_interfaces":                  ast.KindSuperclass,
	"super_interfaces":                    ast.KindSuperInterfaces,
	"throws":                              ast.KindThrows,
	"integral_type":                       ast.KindPrimitiveType,
	"floating_point_type":                 ast.KindPrimitiveType,
	"boolean_type":                        ast.KindPrimitiveType,
	"void_type":                           ast.KindPrimitiveType,
	"array_type":                          ast.KindArrayType,
	"type_arguments":                      ast.KindTypeArguments,
	"catch_type":                          ast.KindUnionType,
	"block":                               ast.KindBlock,
	"local_variable_declaration":          ast.KindLocalVarDecl,
	"expression_statement":                ast.KindExprStmt,
	"if_statement":                        ast.KindIf,
	"while_statement":                     ast.KindWhile,
	"do_statement":                        ast.KindDo,
	"for_statement":                       ast.KindFor,
	"enhanced_for_statement":              ast.KindForEach,
	"return_statement":                    ast.KindReturn,
	"throw_statement":                     ast.KindThrow,
	"try_statement":                       ast.KindTry,
	"try_with_resources_statement":        ast.KindTry,
	"resource_specification":              ast.KindResources,
	"resource":                            ast.KindResource,
	"catch_clause":                        ast.KindCatch,
	"catch_formal_parameter":              ast.KindCatchParam,
	"finally_clause":                      ast.KindFinally,
	"switch_expression":                   ast.KindSwitch,
	"switch_statement":                    ast.KindSwitch,
	"explicit_constructor_invocation":     ast.KindExplicitCtorCall,
	"identifier":                          ast.KindNameExpr,
	"field_access":                        ast.KindFieldAccess,
	"method_invocation":                   ast.KindMethodCall,
	"argument_list":                       ast.KindArguments,
	"object_creation_expression":          ast.KindObjectCreation,
	"lambda_expression":                   ast.KindLambda,
	"method_reference":                    ast.KindMethodRef,
	"binary_expression":                   ast.KindBinary,
	"unary_expression":                    ast.KindUnary,
	"update_expression":                   ast.KindUnary,
	"assignment_expression":               ast.KindAssign,
	"ternary_expression":                  ast.KindConditional,
	"instanceof_expression":               ast.KindInstanceOf,
	"cast_expression":                     ast.KindCast,
	"this":                                ast.KindThis,
	"super":                               ast.KindSuper,
	"class_literal":                       ast.KindClassLiteral,
	"array_access":                        ast.KindArrayAccess,
	"array_creation_expression":           ast.KindArrayCreation,
	"array_initializer":                   ast.KindArrayInit,
	"parenthesized_expression":            ast.KindParen,
	"marker_annotation":                   ast.KindAnnotation,
	"annotation":                          ast.KindAnnotation,
	"type_identifier":                     ast.KindClassType,
	"scoped_type_identifier":              ast.KindClassType,
	"generic_type":                        ast.KindClassType,
	"wildcard":                            ast.KindWildcard,
	"type_parameter":                      ast.KindTypeParameter,
	"spread_parameter":                    ast.KindParameter,
}

var literalTypes = map[string]string{
	"decimal_integer_literal":        "int",
	"hex_integer_literal":            "int",
	"octal_integer_literal":          "int",
	"binary_integer_literal":         "int",
	"decimal_floating_point_literal": "double",
	"hex_floating_point_literal":     "double",
	"true":                           "boolean",
	"false":                          "boolean",
	"character_literal":              "char",
	"string_literal":                 "String",
	"text_block":                     "String",
	"null_literal":                   "null",
}

// flattened node types contribute their children directly to the parent.
var flattened = map[string]bool{
	"type_list":              true,
	"enum_body_declarations": true,
	"annotated_type":         true,
	"interface_type_list":    true,
}

// nameFields are the tree-sitter fields whose identifier is folded into
// the parent's Name instead of becoming a node.
var nameFields = map[string]bool{
	"name":  true,
	"field": true,
	"key":   true,
}

func isIdentifierLike(t string) bool {
	switch t {
	case "identifier", "type_identifier", "scoped_identifier":
		return true
	}
	return false
}

func (c *converter) convert(n *sitter.Node, parent ast.NodeID, role ast.Role) ast.NodeID {
	t := n.Type()
	node := ast.Node{
		Role:  role,
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
	}

	if lt, ok := literalTypes[t]; ok {
		node.Kind = ast.KindLiteral
		node.Name = literalType(lt, c.text(n))
		return c.f.Add(parent, node)
	}

	kind, ok := simpleKinds[t]
	if !ok {
		kind = ast.KindOther
	}
	node.Kind = kind

	switch t {
	case "package_declaration":
		node.Kind = ast.KindPackageDecl
		for _, ch := range c.children(n) {
			if isIdentifierLike(ch.node.Type()) {
				node.Name = c.text(ch.node)
			}
		}
		c.f.Package = node.Name
		return c.f.Add(parent, node)

	case "import_declaration":
		node.Kind = ast.KindImportDecl
		imp := ast.Import{}
		for _, ch := range c.children(n) {
			switch {
			case isIdentifierLike(ch.node.Type()):
				imp.Name = c.text(ch.node)
			case ch.node.Type() == "asterisk":
				imp.Asterisk = true
			case !ch.node.IsNamed() && c.text(ch.node) == "static":
				imp.Static = true
			}
		}
		node.Name = imp.Name
		if imp.Static {
			node.Mods |= ast.ModStatic
		}
		if imp.Asterisk {
			node.Text = "*"
		}
		id := c.f.Add(parent, node)
		imp.Node = id
		c.f.Imports = append(c.f.Imports, imp)
		return id

	case "identifier":
		node.Name = c.text(n)
		return c.f.Add(parent, node)

	case "type_identifier":
		node.Name = c.text(n)
		return c.f.Add(parent, node)

	case "scoped_type_identifier":
		node.Name = c.erasedName(n)
		id := c.f.Add(parent, node)
		// annotations on a qualified type stay as children
		for _, ch := range c.children(n) {
			if ch.node.Type() == "marker_annotation" || ch.node.Type() == "annotation" {
				c.convert(ch.node, id, ast.RoleNone)
			}
		}
		return id

	case "generic_type":
		node.Name = c.erasedName(n)
		id := c.f.Add(parent, node)
		for _, ch := range c.children(n) {
			if ch.node.Type() == "type_arguments" {
				c.convert(ch.node, id, ast.RoleTypeArguments)
			}
		}
		return id

	case "integral_type", "floating_point_type", "boolean_type", "void_type":
		node.Name = c.text(n)
		return c.f.Add(parent, node)

	case "marker_annotation", "annotation":
		id := c.f.Add(parent, node)
		for _, ch := range c.children(n) {
			switch {
			case ch.field == "name":
				c.f.Node(id).Name = c.text(ch.node)
			case ch.field == "arguments":
				c.convert(ch.node, id, ast.RoleArguments)
			}
		}
		return id

	case "wildcard":
		id := c.f.Add(parent, node)
		for _, ch := range c.children(n) {
			if !ch.node.IsNamed() {
				if w := c.text(ch.node); w == "extends" || w == "super" {
					c.f.Node(id).Text = w
				}
				continue
			}
			c.convert(ch.node, id, ast.RoleBound)
		}
		return id

	case "type_parameter":
		id := c.f.Add(parent, node)
		for _, ch := range c.children(n) {
			if !ch.node.IsNamed() {
				continue
			}
			if isIdentifierLike(ch.node.Type()) && c.f.Node(id).Name == "" {
				c.f.Node(id).Name = c.text(ch.node)
				continue
			}
			c.convert(ch.node, id, ast.RoleNone)
		}
		return id

	case "spread_parameter":
		node.Text = "..."
		id := c.f.Add(parent, node)
		for _, ch := range c.children(n) {
			if !ch.node.IsNamed() {
				continue
			}
			switch ch.node.Type() {
			case "variable_declarator":
				for _, vc := range c.children(ch.node) {
					if vc.field == "name" {
						c.f.Node(id).Name = c.text(vc.node)
					}
				}
			case "modifiers":
				c.modifiers(ch.node, id)
			default:
				if ch.node.Type() == "marker_annotation" || ch.node.Type() == "annotation" {
					c.convert(ch.node, id, ast.RoleNone)
				} else {
					c.convert(ch.node, id, ast.RoleType)
				}
			}
		}
		return id

	case "lambda_expression":
		id := c.f.Add(parent, node)
		for _, ch := range c.children(n) {
			if !ch.node.IsNamed() {
				continue
			}
			if ch.field == "parameters" && ch.node.Type() == "identifier" {
				c.f.Add(id, ast.Node{
					Kind:  ast.KindParameter,
					Role:  ast.RoleParameters,
					Name:  c.text(ch.node),
					Start: int(ch.node.StartByte()),
					End:   int(ch.node.EndByte()),
				})
				continue
			}
			c.convert(ch.node, id, ast.RoleFromField(ch.field))
		}
		return id

	case "inferred_parameters":
		id := c.f.Add(parent, node)
		for _, ch := range c.children(n) {
			if ch.node.Type() == "identifier" {
				c.f.Add(id, ast.Node{
					Kind:  ast.KindParameter,
					Name:  c.text(ch.node),
					Start: int(ch.node.StartByte()),
					End:   int(ch.node.EndByte()),
				})
			}
		}
		return id

	case "method_reference":
		id := c.f.Add(parent, node)
		kids := c.children(n)
		seenColons := false
		for _, ch := range kids {
			if !ch.node.IsNamed() {
				switch c.text(ch.node) {
				case "::":
					seenColons = true
				case "new":
					c.f.Node(id).Name = "new"
				}
				continue
			}
			if seenColons && ch.node.Type() == "identifier" {
				c.f.Node(id).Name = c.text(ch.node)
				continue
			}
			if ch.node.Type() == "type_arguments" {
				c.convert(ch.node, id, ast.RoleTypeArguments)
				continue
			}
			c.convert(ch.node, id, ast.RoleObject)
		}
		return id

	case "explicit_constructor_invocation":
		id := c.f.Add(parent, node)
		for _, ch := range c.children(n) {
			if ch.field == "constructor" {
				c.f.Node(id).Text = c.text(ch.node)
				continue
			}
			if ch.node.IsNamed() {
				c.convert(ch.node, id, ast.RoleFromField(ch.field))
			}
		}
		return id

	case "block":
		if parent != ast.NoNode && c.f.Node(parent).Kind == ast.KindClassBody {
			// instance initializer
			init := c.f.Add(parent, ast.Node{Kind: ast.KindInitializer, Role: role, Start: node.Start, End: node.End})
			node.Role = ast.RoleBody
			id := c.f.Add(init, node)
			c.convertChildren(n, id)
			return init
		}
	}

	if isOperatorNode(t) {
		if op := n.ChildByFieldName("operator"); op != nil {
			node.Text = c.text(op)
		} else {
			node.Text = c.updateOperator(n)
		}
	}

	id := c.f.Add(parent, node)
	c.convertChildren(n, id)
	return id
}

func isOperatorNode(t string) bool {
	switch t {
	case "binary_expression", "unary_expression", "update_expression", "assignment_expression":
		return true
	}
	return false
}

func (c *converter) updateOperator(n *sitter.Node) string {
	for _, ch := range c.children(n) {
		if !ch.node.IsNamed() {
			if op := c.text(ch.node); op == "++" || op == "--" {
				return op
			}
		}
	}
	return ""
}

// convertChildren converts the named children of n under id, folding name
// identifiers, dimensions and modifiers into the parent node.
func (c *converter) convertChildren(n *sitter.Node, id ast.NodeID) {
	prevEnd := c.f.Node(id).Start
	for _, ch := range c.children(n) {
		cn := ch.node
		ct := cn.Type()
		if !cn.IsNamed() {
			if tok := c.text(cn); tok != "=" && tok != "default" {
				prevEnd = int(cn.EndByte())
			}
			continue
		}
		switch {
		case nameFields[ch.field] && isIdentifierLike(ct):
			c.f.Node(id).Name = c.text(cn)
		case ct == "dimensions":
			c.f.Node(id).Dims += strings.Count(c.text(cn), "[")
		case ct == "modifiers":
			c.modifiers(cn, id)
		case flattened[ct]:
			c.flatten(cn, id, ast.RoleFromField(ch.field))
		case ch.field == "value":
			vid := c.convert(cn, id, ast.RoleValue)
			if ct != "block" {
				c.f.Node(vid).Lead = prevEnd
			}
		default:
			c.convert(cn, id, ast.RoleFromField(ch.field))
		}
		prevEnd = int(cn.EndByte())
	}
}

// flatten attaches the named children of a transparent node to parent.
// The first type-like child inherits role.
func (c *converter) flatten(n *sitter.Node, parent ast.NodeID, role ast.Role) {
	for _, ch := range c.children(n) {
		if !ch.node.IsNamed() {
			continue
		}
		ct := ch.node.Type()
		switch {
		case ct == "marker_annotation" || ct == "annotation":
			c.convert(ch.node, parent, ast.RoleNone)
		case flattened[ct]:
			c.flatten(ch.node, parent, role)
		case ct == "dimensions":
			c.f.Node(parent).Dims += strings.Count(c.text(ch.node), "[")
		default:
			r := role
			if r == ast.RoleNone {
				r = ast.RoleFromField(ch.field)
			}
			c.convert(ch.node, parent, r)
		}
	}
}

// modifiers creates a Modifiers node holding the annotations and records
// keyword modifiers on both it and the owning declaration.
func (c *converter) modifiers(n *sitter.Node, owner ast.NodeID) {
	id := c.f.Add(owner, ast.Node{
		Kind:  ast.KindModifiers,
		Role:  ast.RoleModifiers,
		Start: int(n.StartByte()),
		End:   int(n.EndByte()),
	})
	var mods ast.Modifier
	for _, ch := range c.children(n) {
		if ch.node.IsNamed() {
			c.convert(ch.node, id, ast.RoleNone)
			continue
		}
		mods |= ast.ModifierFromWord(c.text(ch.node))
	}
	c.f.Node(id).Mods = mods
	c.f.Node(owner).Mods |= mods
}

// erasedName spells a class type without type arguments or annotations,
// e.g. Map.Entry<K, V> -> Map.Entry.
func (c *converter) erasedName(n *sitter.Node) string {
	switch n.Type() {
	case "type_identifier", "identifier":
		return c.text(n)
	case "generic_type", "annotated_type":
		for _, ch := range c.children(n) {
			switch ch.node.Type() {
			case "type_identifier", "scoped_type_identifier", "generic_type":
				return c.erasedName(ch.node)
			}
		}
	case "scoped_type_identifier":
		var parts []string
		for _, ch := range c.children(n) {
			switch ch.node.Type() {
			case "type_identifier", "identifier", "scoped_type_identifier", "generic_type":
				parts = append(parts, c.erasedName(ch.node))
			}
		}
		return strings.Join(parts, ".")
	}
	return c.text(n)
}

func literalType(base, text string) string {
	last := text[len(text)-1]
	switch base {
	case "int":
		if last == 'l' || last == 'L' {
			return "long"
		}
	case "double":
		if last == 'f' || last == 'F' {
			return "float"
		}
	}
	return base
}
