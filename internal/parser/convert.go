package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/crossframe-dev/reroute/internal/ast"
)

// kindTable maps tree-sitter grammar kinds onto the closed structural kind
// set. Grammar kinds absent from the table become KindOther; their children
// are still converted so rule predicates can reach nested matches.
var kindTable = map[string]ast.Kind{
	"program":                        ast.KindProgram,
	"import_statement":               ast.KindImport,
	"export_statement":               ast.KindExport,
	"function_declaration":           ast.KindFunction,
	"generator_function_declaration": ast.KindFunction,
	"function_expression":            ast.KindFunction,
	"arrow_function":                 ast.KindFunction,
	"lexical_declaration":            ast.KindVarDecl,
	"variable_declaration":           ast.KindVarDecl,
	"variable_declarator":            ast.KindVarBinding,
	"call_expression":                ast.KindCall,
	"member_expression":              ast.KindMember,
	"identifier":                     ast.KindIdent,
	"property_identifier":            ast.KindIdent,
	"shorthand_property_identifier":  ast.KindIdent,
	"string":                         ast.KindLiteral,
	"template_string":                ast.KindLiteral,
	"number":                         ast.KindLiteral,
	"true":                           ast.KindLiteral,
	"false":                          ast.KindLiteral,
	"null":                           ast.KindLiteral,
	"jsx_element":                    ast.KindElement,
	"jsx_self_closing_element":       ast.KindElement,
	"jsx_opening_element":            ast.KindElementOpen,
	"jsx_closing_element":            ast.KindElementClose,
	"jsx_attribute":                  ast.KindAttribute,
	"statement_block":                ast.KindBlock,
	"return_statement":               ast.KindReturn,
	"comment":                        ast.KindComment,
	"type_annotation":                ast.KindTypeAnnotation,
	"type_alias_declaration":         ast.KindTypeDecl,
	"interface_declaration":          ast.KindTypeDecl,
}

// fieldTable lists, per grammar kind, the fields worth carrying over onto
// converted children. Only fields some rule or the analyzer dispatches on
// are retained.
var fieldTable = map[string][]string{
	"import_statement":               {"source"},
	"export_statement":               {"declaration", "value"},
	"function_declaration":           {"name", "parameters", "body"},
	"generator_function_declaration": {"name", "parameters", "body"},
	"function_expression":            {"name", "parameters", "body"},
	"arrow_function":                 {"parameters", "body"},
	"variable_declarator":            {"name", "value", "type"},
	"call_expression":                {"function", "arguments"},
	"member_expression":              {"object", "property"},
	"jsx_opening_element":            {"name"},
	"jsx_closing_element":            {"name"},
	"jsx_self_closing_element":       {"name"},
	"jsx_element":                    {"open_tag", "close_tag"},
	"import_specifier":               {"name", "alias"},
	"export_specifier":               {"name", "alias"},
	"pair":                           {"key", "value"},
}

// convertNode maps a tree-sitter CST node (and its named descendants) into
// an owned structural node.
func convertNode(node *sitter.Node) *ast.Node {
	out := &ast.Node{
		Kind: kindFor(node.Kind()),
		Span: ast.Span{
			Start: uint(node.StartByte()),
			End:   uint(node.EndByte()),
			Line:  int(node.StartPosition().Row) + 1,
		},
	}

	count := node.NamedChildCount()
	if count == 0 {
		return out
	}

	out.Children = make([]*ast.Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		out.Children = append(out.Children, convertNode(child))
	}

	annotateFields(node, out)
	return out
}

func kindFor(tsKind string) ast.Kind {
	if k, ok := kindTable[tsKind]; ok {
		return k
	}
	return ast.KindOther
}

// annotateFields marks converted children with the grammar field they fill
// on their parent, matched by span because the CST and the converted tree
// walk named children in the same order.
func annotateFields(node *sitter.Node, out *ast.Node) {
	fields, ok := fieldTable[node.Kind()]
	if !ok {
		return
	}
	for _, field := range fields {
		fc := node.ChildByFieldName(field)
		if fc == nil {
			continue
		}
		start, end := uint(fc.StartByte()), uint(fc.EndByte())
		for _, c := range out.Children {
			if c.Span.Start == start && c.Span.End == end && c.Field == "" {
				c.Field = field
				break
			}
		}
	}
}
