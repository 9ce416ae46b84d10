package analyzer

import (
	"log"
	"strings"
	"unicode"

	"github.com/crossframe-dev/reroute/internal/ast"
)

// nextModulePaths is the fixed set of Framework-A-specific module paths.
// Any import of one of these (or any other "next/..." path) marks the
// module as framework-bound.
var nextModulePaths = map[string]bool{
	"next":         true,
	"next/image":   true,
	"next/link":    true,
	"next/head":    true,
	"next/router":  true,
	"next/dynamic": true,
	"next/script":  true,
	"next/app":     true,
}

// DataFetchingExports is the fixed set of data-fetching entry-point names.
var DataFetchingExports = map[string]bool{
	"getServerSideProps": true,
	"getStaticProps":     true,
	"getStaticPaths":     true,
}

// Import records one declared import: the module path plus the names it
// binds locally.
type Import struct {
	Source    string   `json:"source"`
	Default   string   `json:"default,omitempty"`
	Named     []string `json:"named,omitempty"`
	Namespace string   `json:"namespace,omitempty"`
}

// FactSheet is the read-only per-module fact sheet derived from one
// traversal. It is computed once per parse and never mutated afterwards.
type FactSheet struct {
	Imports         []Import        `json:"imports"`
	Exports         map[string]bool `json:"exports"`
	Components      map[string]bool `json:"components"`
	Hooks           map[string]bool `json:"hooks"`
	HasNextImports  bool            `json:"hasNextImports"`
	HasDataFetching bool            `json:"hasDataFetching"`
}

// Empty returns the default fact sheet.
func Empty() *FactSheet {
	return &FactSheet{
		Exports:    map[string]bool{},
		Components: map[string]bool{},
		Hooks:      map[string]bool{},
	}
}

// ImportOf returns the declared import of the given module path, if any.
func (f *FactSheet) ImportOf(source string) *Import {
	for i := range f.Imports {
		if f.Imports[i].Source == source {
			return &f.Imports[i]
		}
	}
	return nil
}

// Analyze derives a module fact sheet from a parsed tree in a single
// traversal without mutating it. It never panics outward: any traversal
// anomaly yields the default empty sheet.
func Analyze(tree *ast.Tree) (facts *FactSheet) {
	facts = Empty()
	if tree == nil || tree.Root == nil {
		return facts
	}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("Warning: analysis of %s failed: %v\n", tree.Filename, r)
			facts = Empty()
		}
	}()

	for _, stmt := range tree.Root.Children {
		switch stmt.Kind {
		case ast.KindImport:
			if imp, ok := importFacts(tree, stmt); ok {
				facts.Imports = append(facts.Imports, imp)
				if isNextModule(imp.Source) {
					facts.HasNextImports = true
				}
			}
		case ast.KindExport:
			for _, name := range exportedNames(tree, stmt) {
				facts.Exports[name] = true
				if DataFetchingExports[name] {
					facts.HasDataFetching = true
				}
			}
		}
	}

	// Components and hooks can be nested (e.g. declared inside a wrapper),
	// so these are detected over the full tree rather than top level only.
	ast.Walk(tree.Root, func(n *ast.Node) bool {
		switch n.Kind {
		case ast.KindFunction:
			if name := tree.Text(n.ChildByField("name")); name != "" {
				classifyBinding(tree, facts, name, n)
			}
		case ast.KindVarBinding:
			value := n.ChildByField("value")
			if value == nil || value.Kind != ast.KindFunction {
				return true
			}
			if name := tree.Text(n.ChildByField("name")); name != "" {
				classifyBinding(tree, facts, name, value)
			}
		}
		return true
	})

	return facts
}

func isNextModule(source string) bool {
	return nextModulePaths[source] || strings.HasPrefix(source, "next/")
}

// importFacts extracts the module path and bound names of one import
// statement.
func importFacts(tree *ast.Tree, stmt *ast.Node) (Import, bool) {
	sourceNode := stmt.ChildByField("source")
	if sourceNode == nil {
		return Import{}, false
	}
	imp := Import{Source: unquote(tree.Text(sourceNode))}

	// The import clause is the single non-source child ("import x, { y } from ...").
	for _, c := range stmt.Children {
		if c.Field == "source" {
			continue
		}
		for _, part := range c.Children {
			text := tree.Text(part)
			switch {
			case part.Kind == ast.KindIdent:
				imp.Default = text
			case strings.HasPrefix(text, "*"):
				if id := ast.Find(part, isIdent); id != nil {
					imp.Namespace = tree.Text(id)
				}
			default: // named imports
				for _, spec := range part.Children {
					if bound := boundName(tree, spec); bound != "" {
						imp.Named = append(imp.Named, bound)
					}
				}
			}
		}
	}
	return imp, true
}

// boundName returns the local name an import/export specifier binds: the
// alias when present, the name itself otherwise.
func boundName(tree *ast.Tree, spec *ast.Node) string {
	if alias := spec.ChildByField("alias"); alias != nil {
		return tree.Text(alias)
	}
	if name := spec.ChildByField("name"); name != nil {
		return tree.Text(name)
	}
	if spec.Kind == ast.KindIdent {
		return tree.Text(spec)
	}
	return ""
}

// exportedNames lists the names bound by one top-level export statement.
// `export default ...` contributes the name "default".
func exportedNames(tree *ast.Tree, stmt *ast.Node) []string {
	if strings.HasPrefix(tree.Text(stmt), "export default") {
		return []string{"default"}
	}

	decl := stmt.ChildByField("declaration")
	if decl == nil {
		// export { a, b as c }
		var names []string
		for _, c := range stmt.Children {
			for _, spec := range c.Children {
				if bound := boundName(tree, spec); bound != "" {
					names = append(names, bound)
				}
			}
		}
		return names
	}

	switch decl.Kind {
	case ast.KindFunction:
		if name := tree.Text(decl.ChildByField("name")); name != "" {
			return []string{name}
		}
	case ast.KindVarDecl:
		var names []string
		for _, binding := range decl.ChildrenOfKind(ast.KindVarBinding) {
			if name := tree.Text(binding.ChildByField("name")); name != "" {
				names = append(names, name)
			}
		}
		return names
	default:
		// class declarations and friends: first identifier is the name
		if id := ast.Find(decl, isIdent); id != nil {
			return []string{tree.Text(id)}
		}
	}
	return nil
}

// classifyBinding applies the component and hook naming conventions to a
// function-valued binding.
func classifyBinding(tree *ast.Tree, facts *FactSheet, name string, fn *ast.Node) {
	if isComponentName(name) && returnsMarkup(fn) {
		facts.Components[name] = true
	}
	if isHookName(name) {
		facts.Hooks[name] = true
	}
}

func isComponentName(name string) bool {
	r := []rune(name)
	return len(r) > 0 && unicode.IsUpper(r[0])
}

// isHookName matches the reusable-logic convention: "use" prefix with a
// PascalCase suffix (capitalized fourth character).
func isHookName(name string) bool {
	r := []rune(name)
	return len(r) >= 4 && strings.HasPrefix(name, "use") && unicode.IsUpper(r[3])
}

// returnsMarkup reports whether a function body yields a markup node:
// an explicit return statement holding one, or an expression-bodied
// arrow whose body is (or parenthesizes) one.
func returnsMarkup(fn *ast.Node) bool {
	body := fn.ChildByField("body")
	if body == nil {
		return false
	}
	if body.Kind != ast.KindBlock {
		// The expression body is the returned value itself.
		return ast.Find(body, isElement) != nil
	}
	markupReturn := ast.Find(body, func(n *ast.Node) bool {
		return n.Kind == ast.KindReturn && ast.Find(n, isElement) != nil
	})
	return markupReturn != nil
}

func isIdent(n *ast.Node) bool   { return n.Kind == ast.KindIdent }
func isElement(n *ast.Node) bool { return n.Kind == ast.KindElement }

// unquote strips the surrounding quotes from a string literal's source
// text.
func unquote(text string) string {
	if len(text) >= 2 {
		switch text[0] {
		case '\'', '"', '`':
			return text[1 : len(text)-1]
		}
	}
	return text
}
