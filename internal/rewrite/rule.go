package rewrite

import (
	"github.com/crossframe-dev/reroute/internal/analyzer"
	"github.com/crossframe-dev/reroute/internal/ast"
	"github.com/crossframe-dev/reroute/internal/config"
)

// Category orders rule application. Within one transform the categories run
// strictly in declaration order; rules inside a category are tried in
// catalog order, first match wins per node.
type Category int

const (
	CategoryImports Category = iota
	CategoryMarkup
	CategoryRouting
	CategoryDataFetching
	CategoryCleanup
	CategoryInjection // import injection; engine-driven, closes the run
)

// need identifies a target-framework binding a fired rule depends on. The
// injection phase turns outstanding needs into import statements.
type need int

const (
	needNavigate need = iota
	needLocation
	needSearchParams
	needLink
	needHelmet
	needUseQuery
	needLazy
)

// injectionTable maps each need onto the module and named binding to
// import. Stable catalog keys; renames require a migration note.
var injectionTable = map[need]struct {
	Module string
	Name   string
}{
	needNavigate:     {"react-router-dom", "useNavigate"},
	needLocation:     {"react-router-dom", "useLocation"},
	needSearchParams: {"react-router-dom", "useSearchParams"},
	needLink:         {"react-router-dom", "Link"},
	needHelmet:       {"react-helmet", "Helmet"},
	needUseQuery:     {"@tanstack/react-query", "useQuery"},
	needLazy:         {"react", "lazy"},
}

// Rule is one stateless rewrite unit: a structural predicate and an apply
// step that records edits plus exactly one change or warning through the
// Context. Rules never mutate the tree.
type Rule struct {
	Name     string
	Category Category
	Match    func(*Context, *ast.Node) bool
	Apply    func(*Context, *ast.Node)
}

// TransformResult is the output of one module rewrite. Code is always
// syntactically valid target source; on the no-op path it is the input
// text unchanged.
type TransformResult struct {
	Code     string   `json:"code"`
	Changes  []string `json:"changes"`
	Warnings []string `json:"warnings"`
}

// Modified reports whether any rule fired a change.
func (r TransformResult) Modified() bool {
	return len(r.Changes) > 0
}

// Context carries the per-transform state rules read and write: the parsed
// tree, the fact sheet, the options snapshot, and the accumulating edits
// and messages. It also enforces change/warning exclusivity per firing.
type Context struct {
	Tree  *ast.Tree
	Facts *analyzer.FactSheet
	Opts  config.ConversionOptions

	edits    []edit
	changes  []string
	warnings []string
	needs    map[need]bool

	// routerVars holds identifiers bound from the routing hook, computed by
	// a pre-scan before the routing category runs.
	routerVars map[string]bool

	// importProvides records, per target module, the index of a pending
	// import edit produced this run and the names it binds, so the
	// injection phase merges into it instead of emitting a duplicate.
	importProvides map[string]*providedImport

	// parents indexes each node's parent, built once per transform.
	parents map[*ast.Node]*ast.Node
}

type providedImport struct {
	editIndex int
	names     []string
}

func newContext(tree *ast.Tree, facts *analyzer.FactSheet, opts config.ConversionOptions) *Context {
	return &Context{
		Tree:           tree,
		Facts:          facts,
		Opts:           opts,
		needs:          map[need]bool{},
		routerVars:     map[string]bool{},
		importProvides: map[string]*providedImport{},
	}
}

// Text returns a node's source text.
func (c *Context) Text(n *ast.Node) string {
	return c.Tree.Text(n)
}

// Replace records a replacement of the node's span.
func (c *Context) Replace(n *ast.Node, text string) {
	c.edits = append(c.edits, edit{start: n.Span.Start, end: n.Span.End, text: text})
}

// ReplaceSpan records a replacement of an arbitrary byte range.
func (c *Context) ReplaceSpan(start, end uint, text string) {
	c.edits = append(c.edits, edit{start: start, end: end, text: text})
}

// Insert records a pure insertion at the given offset.
func (c *Context) Insert(at uint, text string) {
	c.edits = append(c.edits, edit{start: at, end: at, text: text})
}

// Delete records removal of the node's span together with any immediately
// preceding run of spaces and tabs, keeping the emitted line tidy.
func (c *Context) Delete(n *ast.Node) {
	start := n.Span.Start
	for start > 0 {
		ch := c.Tree.Source[start-1]
		if ch != ' ' && ch != '\t' {
			break
		}
		start--
	}
	c.edits = append(c.edits, edit{start: start, end: n.Span.End})
}

// DeleteLine removes the node's span through the trailing newline.
func (c *Context) DeleteLine(n *ast.Node) {
	end := n.Span.End
	src := c.Tree.Source
	for end < uint(len(src)) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	if end < uint(len(src)) && src[end] == '\n' {
		end++
	}
	c.edits = append(c.edits, edit{start: n.Span.Start, end: end})
}

// Change records the single change entry for the current rule firing.
func (c *Context) Change(msg string) {
	c.changes = append(c.changes, msg)
}

// Warn records the single warning entry for the current rule firing.
func (c *Context) Warn(msg string) {
	c.warnings = append(c.warnings, msg)
}

// Need marks a target binding as required; the injection phase satisfies
// outstanding needs once per module.
func (c *Context) Need(n need) {
	c.needs[n] = true
}

// provideImport registers that the most recent edit rewrites an import to
// the given target module binding the given names.
func (c *Context) provideImport(module string, names ...string) {
	c.importProvides[module] = &providedImport{
		editIndex: len(c.edits) - 1,
		names:     names,
	}
}

// indentAt returns the leading whitespace of the line containing the
// offset, used when a replacement spans multiple generated lines.
func (c *Context) indentAt(offset uint) string {
	src := c.Tree.Source
	lineStart := offset
	for lineStart > 0 && src[lineStart-1] != '\n' {
		lineStart--
	}
	end := lineStart
	for end < offset && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[lineStart:end])
}
