package rewrite

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/crossframe-dev/reroute/internal/analyzer"
	"github.com/crossframe-dev/reroute/internal/ast"
	"github.com/crossframe-dev/reroute/internal/config"
	"github.com/crossframe-dev/reroute/internal/parser"
)

// TransformModule is the single-module entry point: parse, analyze,
// rewrite. On parse failure the original text is passed through verbatim
// with a warning, and the ParseError is returned for the caller's
// accounting.
func TransformModule(source []byte, filename string, opts config.ConversionOptions) (TransformResult, error) {
	tree, err := parser.Parse(source, filename, parser.OptionsForFile(filename))
	if err != nil {
		return TransformResult{
			Code:     string(source),
			Warnings: []string{fmt.Sprintf("Could not parse %s; passed through unchanged: %v", filename, err)},
		}, err
	}

	facts := analyzer.Analyze(tree)
	return Rewrite(tree, facts, opts, DefaultCatalog(opts)), nil
}

// TransformParsed rewrites an already-parsed tree. Used by the batch
// orchestrator, which parses through the shared front-end cache.
func TransformParsed(tree *ast.Tree, facts *analyzer.FactSheet, opts config.ConversionOptions) TransformResult {
	return Rewrite(tree, facts, opts, DefaultCatalog(opts))
}

// categoryOrder fixes the application order of rule categories.
var categoryOrder = []Category{
	CategoryImports,
	CategoryMarkup,
	CategoryRouting,
	CategoryDataFetching,
	CategoryCleanup,
}

// Rewrite applies the given ordered catalog to a parsed module. The walk
// per category is read-only; all mutations are collected as edits and
// applied to the source text in one final pass, so a rule can never
// observe a sibling mutated mid-traversal.
func Rewrite(tree *ast.Tree, facts *analyzer.FactSheet, opts config.ConversionOptions, catalog []Rule) TransformResult {
	ctx := newContext(tree, facts, opts)
	ctx.buildParents()

	for _, category := range categoryOrder {
		rules := rulesFor(catalog, category)
		if len(rules) == 0 {
			continue
		}
		if category == CategoryRouting {
			ctx.scanRouting()
		}
		runCategory(ctx, rules)
	}

	ctx.injectImports()

	if len(ctx.edits) == 0 {
		// No-op path: the input text comes back byte for byte.
		return TransformResult{Code: string(tree.Source), Changes: ctx.changes, Warnings: ctx.warnings}
	}

	code, rejected := applyEdits(tree.Source, ctx.edits)
	if len(rejected) > 0 {
		ctx.warnings = append(ctx.warnings, describeRejected(rejected))
	}
	return TransformResult{Code: code, Changes: ctx.changes, Warnings: ctx.warnings}
}

func rulesFor(catalog []Rule, category Category) []Rule {
	var out []Rule
	for _, r := range catalog {
		if r.Category == category {
			out = append(out, r)
		}
	}
	return out
}

// runCategory tries the category's rules against every node in pre-order.
// First match wins per node; the catalog is constructed so that rules of
// one category never overlap on a node, which the edit overlap guard
// additionally enforces at apply time.
func runCategory(ctx *Context, rules []Rule) {
	ast.Walk(ctx.Tree.Root, func(n *ast.Node) bool {
		for _, rule := range rules {
			if !rule.Match(ctx, n) {
				continue
			}
			changes, warnings := len(ctx.changes), len(ctx.warnings)
			rule.Apply(ctx, n)
			if d := (len(ctx.changes) - changes) + (len(ctx.warnings) - warnings); d != 1 {
				log.Printf("Warning: rule %s recorded %d entries for one firing (want exactly 1)\n", rule.Name, d)
			}
			break
		}
		return true
	})
}

// buildParents indexes each node's parent so attribute rules can reach
// their owning element.
func (c *Context) buildParents() {
	c.parents = map[*ast.Node]*ast.Node{}
	ast.Walk(c.Tree.Root, func(n *ast.Node) bool {
		for _, child := range n.Children {
			c.parents[child] = n
		}
		return true
	})
}

// scanRouting pre-computes, before the routing category runs, (a) which
// identifiers are bound from useRouter() and (b) which supporting
// bindings the member accesses will require. The binding rule reads both.
func (c *Context) scanRouting() {
	ast.Walk(c.Tree.Root, func(n *ast.Node) bool {
		if n.Kind == ast.KindVarBinding && isRouterHookCall(c, n.ChildByField("value")) {
			if name := n.ChildByField("name"); name != nil && name.Kind == ast.KindIdent {
				c.routerVars[c.Text(name)] = true
			}
		}
		return true
	})
	if len(c.routerVars) == 0 {
		return
	}
	ast.Walk(c.Tree.Root, func(n *ast.Node) bool {
		if n.Kind != ast.KindMember {
			return true
		}
		switch {
		case isRouterMember(c, n, "query"):
			c.needs[needSearchParams] = true
		case isRouterMember(c, n, "pathname"), isRouterMember(c, n, "asPath"):
			c.needs[needLocation] = true
		}
		return true
	})
}

// boundDefault returns the local name the module's default import binds,
// or the conventional fallback when the import is absent or unnamed.
func (c *Context) boundDefault(module, fallback string) string {
	if imp := c.Facts.ImportOf(module); imp != nil && imp.Default != "" {
		return imp.Default
	}
	return fallback
}

// attrElementTag returns the tag name of the element owning a markup
// attribute.
func (c *Context) attrElementTag(attr *ast.Node) string {
	owner := c.parents[attr]
	if owner == nil {
		return ""
	}
	switch owner.Kind {
	case ast.KindElementOpen:
		return c.Text(owner.ChildByField("name"))
	case ast.KindElement: // self-closing element holds attributes directly
		return c.Text(owner.ChildByField("name"))
	}
	return ""
}

// spanEdited reports whether a pending edit already covers any part of
// the span.
func (c *Context) spanEdited(span ast.Span) bool {
	for _, e := range c.edits {
		if span.Start < e.end && e.start < span.End {
			return true
		}
	}
	return false
}

// injectImports closes the run: every need recorded by a fired rule is
// satisfied exactly once per module, merging into an import this run
// already produced, extending an existing source import, or inserting a
// new statement after the module's import block.
func (c *Context) injectImports() {
	type moduleNeed struct {
		module string
		names  []string
	}

	// Deterministic need order keeps change entries stable across runs.
	ordered := []need{needNavigate, needLocation, needSearchParams, needLink, needHelmet, needUseQuery, needLazy}
	byModule := map[string]*moduleNeed{}
	var modules []string
	for _, n := range ordered {
		if !c.needs[n] {
			continue
		}
		target := injectionTable[n]
		entry, ok := byModule[target.Module]
		if !ok {
			entry = &moduleNeed{module: target.Module}
			byModule[target.Module] = entry
			modules = append(modules, target.Module)
		}
		entry.names = append(entry.names, target.Name)
	}
	sort.Strings(modules)

	for _, module := range modules {
		entry := byModule[module]
		missing := c.missingNames(module, entry.names)
		if len(missing) == 0 {
			continue
		}

		if provided := c.importProvides[module]; provided != nil {
			provided.names = append(provided.names, missing...)
			c.edits[provided.editIndex].text = renderImport(module, provided.names...)
			c.Change(fmt.Sprintf("Added %s to the %s import", strings.Join(missing, ", "), module))
			continue
		}

		if imp := c.Facts.ImportOf(module); imp != nil {
			if brace := c.namedImportBrace(module); brace != nil {
				c.Insert(brace.Span.End-1, ", "+strings.Join(missing, ", "))
				c.Change(fmt.Sprintf("Added %s to the %s import", strings.Join(missing, ", "), module))
				continue
			}
		}

		c.Insert(c.importInsertionPoint(), renderImport(module, missing...)+"\n")
		c.Change("Added " + renderImport(module, missing...))
	}
}

// missingNames filters out names already bound by an original import or a
// pending import edit for the module.
func (c *Context) missingNames(module string, names []string) []string {
	have := map[string]bool{}
	if imp := c.Facts.ImportOf(module); imp != nil {
		for _, n := range imp.Named {
			have[n] = true
		}
	}
	if provided := c.importProvides[module]; provided != nil {
		for _, n := range provided.names {
			have[n] = true
		}
	}
	var missing []string
	for _, n := range names {
		if !have[n] {
			missing = append(missing, n)
		}
	}
	return missing
}

// namedImportBrace locates the `{ ... }` clause of an original import of
// the module, if one exists to merge into.
func (c *Context) namedImportBrace(module string) *ast.Node {
	for _, stmt := range c.Tree.Root.ChildrenOfKind(ast.KindImport) {
		if importSource(c, stmt) != module {
			continue
		}
		for _, clause := range stmt.Children {
			if clause.Field == "source" {
				continue
			}
			for _, part := range clause.Children {
				if strings.HasPrefix(c.Text(part), "{") {
					return part
				}
			}
		}
	}
	return nil
}

// importInsertionPoint returns the offset just after the last top-level
// import statement, or the start of the module when none exist.
func (c *Context) importInsertionPoint() uint {
	var at uint
	src := c.Tree.Source
	for _, stmt := range c.Tree.Root.ChildrenOfKind(ast.KindImport) {
		end := stmt.Span.End
		if end < uint(len(src)) && src[end] == '\n' {
			end++
		}
		if end > at {
			at = end
		}
	}
	return at
}
