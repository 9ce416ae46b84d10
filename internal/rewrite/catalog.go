package rewrite

import (
	"fmt"
	"strings"

	"github.com/crossframe-dev/reroute/internal/ast"
	"github.com/crossframe-dev/reroute/internal/config"
)

// Stable catalog keys. Renaming any entry requires a migration note for
// downstream consumers.

// importTargets maps each Framework-A module path onto the rewrite the
// imports category performs. next/image has no module equivalent: the
// import is removed and elements render as native <img>.
var importTargets = map[string]string{
	"next/image":   "",
	"next/link":    "react-router-dom",
	"next/head":    "react-helmet",
	"next/router":  "react-router-dom",
	"next/dynamic": "react",
}

// dataFetchHooks maps each data-fetching entry-point name onto the
// generated hook that replaces it and the cache key the hook queries
// under.
var dataFetchHooks = map[string]struct {
	Hook     string
	QueryKey string
}{
	"getServerSideProps": {Hook: "useServerData", QueryKey: "serverData"},
	"getStaticProps":     {Hook: "useStaticData", QueryKey: "staticData"},
	"getStaticPaths":     {Hook: "useStaticPaths", QueryKey: "staticPaths"},
}

// droppedImageAttrs are <Image> attributes with no <img> equivalent. Each
// occurrence is dropped with a warning naming the attribute.
var droppedImageAttrs = map[string]bool{
	"priority":    true,
	"placeholder": true,
	"blurDataURL": true,
	"quality":     true,
	"loader":      true,
	"fill":        true,
	"unoptimized": true,
}

// droppedLinkAttrs are <Link> attributes the target router has no use
// for.
var droppedLinkAttrs = map[string]bool{
	"prefetch":       true,
	"passHref":       true,
	"legacyBehavior": true,
	"scroll":         true,
	"shallow":        true,
}

// DefaultCatalog builds the ordered rule catalog for the nextjs → react
// pair, filtered by the options snapshot. The catalog is stateless and
// injected into the engine at call time; there is no process-wide rule
// registry.
func DefaultCatalog(opts config.ConversionOptions) []Rule {
	var rules []Rule

	// Imports. Each retargeting toggle also gates its import rule so a
	// disabled category never strands a rewritten import.
	if opts.ConvertMarkup {
		rules = append(rules,
			Rule{Name: "import-image", Category: CategoryImports, Match: matchImportOf("next/image"), Apply: applyImageImport},
			Rule{Name: "import-link", Category: CategoryImports, Match: matchImportOf("next/link"), Apply: applyLinkImport},
			Rule{Name: "import-head", Category: CategoryImports, Match: matchImportOf("next/head"), Apply: applyHeadImport},
			Rule{Name: "import-dynamic", Category: CategoryImports, Match: matchImportOf("next/dynamic"), Apply: applyDynamicImport},
		)
	}
	if opts.ConvertRouting {
		rules = append(rules,
			Rule{Name: "import-router", Category: CategoryImports, Match: matchImportOf("next/router"), Apply: applyRouterImport},
		)
	}
	rules = append(rules,
		Rule{Name: "import-unmapped", Category: CategoryImports, Match: matchUnmappedNextImport, Apply: applyUnmappedImport},
	)

	// Markup elements and attributes.
	if opts.ConvertMarkup {
		rules = append(rules,
			Rule{Name: "element-image", Category: CategoryMarkup, Match: matchElementBound("next/image", "Image"), Apply: applyImageElement},
			Rule{Name: "element-head", Category: CategoryMarkup, Match: matchElementBound("next/head", "Head"), Apply: applyHeadElement},
			Rule{Name: "attr-image-drop", Category: CategoryMarkup, Match: matchAttr("next/image", "Image", droppedImageAttrs), Apply: applyAttrDrop},
			Rule{Name: "attr-link-href", Category: CategoryMarkup, Match: matchAttr("next/link", "Link", map[string]bool{"href": true}), Apply: applyLinkHref},
			Rule{Name: "attr-link-drop", Category: CategoryMarkup, Match: matchAttr("next/link", "Link", droppedLinkAttrs), Apply: applyAttrDrop},
		)
	}

	// Routing member and call accesses. Exactly one target form exists per
	// matched access.
	if opts.ConvertRouting {
		rules = append(rules,
			Rule{Name: "routing-hook-binding", Category: CategoryRouting, Match: matchRouterBinding, Apply: applyRouterBinding},
			Rule{Name: "routing-back", Category: CategoryRouting, Match: matchRouterCall("back"), Apply: applyRouterBack},
			Rule{Name: "routing-push", Category: CategoryRouting, Match: matchRouterCall("push"), Apply: applyRouterPush},
			Rule{Name: "routing-replace", Category: CategoryRouting, Match: matchRouterCall("replace"), Apply: applyRouterReplace},
			Rule{Name: "routing-query", Category: CategoryRouting, Match: matchRouterMember("query"), Apply: applyRouterQuery},
			Rule{Name: "routing-pathname", Category: CategoryRouting, Match: matchRouterMember("pathname", "asPath"), Apply: applyRouterPathname},
		)
	}
	if opts.ConvertMarkup {
		rules = append(rules,
			Rule{Name: "call-dynamic", Category: CategoryRouting, Match: matchDynamicCall, Apply: applyDynamicCall},
		)
	}

	// Data-fetching exports.
	if opts.ConvertDataFetching {
		for _, entry := range []string{"getServerSideProps", "getStaticProps", "getStaticPaths"} {
			rules = append(rules, Rule{
				Name:     "datafetch-" + entry,
				Category: CategoryDataFetching,
				Match:    matchDataFetchExport(entry),
				Apply:    applyDataFetchExport(entry),
			})
		}
	}

	// Cleanup of syntax the caller asked not to preserve.
	if !opts.PreserveTypes {
		rules = append(rules, Rule{Name: "strip-types", Category: CategoryCleanup, Match: matchProgram, Apply: applyStripTypes})
	}
	if !opts.PreserveComments {
		rules = append(rules, Rule{Name: "strip-comments", Category: CategoryCleanup, Match: matchProgram, Apply: applyStripComments})
	}

	return rules
}

// --- imports ---

func matchImportOf(source string) func(*Context, *ast.Node) bool {
	return func(ctx *Context, n *ast.Node) bool {
		return n.Kind == ast.KindImport && importSource(ctx, n) == source
	}
}

func matchUnmappedNextImport(ctx *Context, n *ast.Node) bool {
	if n.Kind != ast.KindImport {
		return false
	}
	source := importSource(ctx, n)
	if source != "next" && !strings.HasPrefix(source, "next/") {
		return false
	}
	_, mapped := importTargets[source]
	return !mapped
}

func applyImageImport(ctx *Context, n *ast.Node) {
	ctx.DeleteLine(n)
	ctx.Change("Removed next/image import; image elements render as native <img>")
}

func applyLinkImport(ctx *Context, n *ast.Node) {
	bound := ctx.boundDefault("next/link", "Link")
	name := "Link"
	if bound != "Link" {
		name = "Link as " + bound
	}
	ctx.Replace(n, renderImport("react-router-dom", name))
	ctx.provideImport("react-router-dom", name)
	ctx.Change("Converted next/link import to react-router-dom")
}

func applyHeadImport(ctx *Context, n *ast.Node) {
	// The markup rule renames every bound element to <Helmet>, so the
	// import binds Helmet directly rather than aliasing the old name.
	ctx.Replace(n, renderImport("react-helmet", "Helmet"))
	ctx.provideImport("react-helmet", "Helmet")
	ctx.Change("Converted next/head import to react-helmet")
}

func applyRouterImport(ctx *Context, n *ast.Node) {
	// A useRouter() call outside a plain variable binding cannot be
	// rewritten mechanically; retargeting the import would strand it.
	if unboundRouterCall(ctx) != nil {
		ctx.Warn("useRouter() is used outside a plain variable binding; import left unchanged, convert the call manually")
		return
	}
	ctx.Replace(n, renderImport("react-router-dom", "useNavigate"))
	ctx.provideImport("react-router-dom", "useNavigate")
	ctx.Change("Converted next/router import to react-router-dom")
}

func applyDynamicImport(ctx *Context, n *ast.Node) {
	ctx.Replace(n, renderImport("react", "lazy"))
	ctx.provideImport("react", "lazy")
	ctx.Change("Converted next/dynamic import to React.lazy")
}

func applyUnmappedImport(ctx *Context, n *ast.Node) {
	ctx.Warn(fmt.Sprintf("No react equivalent for import %q; left unchanged", importSource(ctx, n)))
}

// --- markup ---

func matchElementBound(module, fallback string) func(*Context, *ast.Node) bool {
	return func(ctx *Context, n *ast.Node) bool {
		if n.Kind != ast.KindElement || ctx.Facts.ImportOf(module) == nil {
			return false
		}
		name := tagNameNode(n)
		return name != nil && ctx.Text(name) == ctx.boundDefault(module, fallback)
	}
}

func applyImageElement(ctx *Context, n *ast.Node) {
	name := tagNameNode(n)
	ctx.Replace(name, "img")
	if closing := closeTagNameNode(n); closing != nil {
		ctx.Replace(closing, "img")
	}
	if !hasAttr(ctx, n, "loading") {
		ctx.Insert(name.Span.End, ` loading="lazy"`)
	}
	ctx.Change(`Converted <` + ctx.boundDefault("next/image", "Image") + `> to native <img loading="lazy">`)
}

func applyHeadElement(ctx *Context, n *ast.Node) {
	name := tagNameNode(n)
	ctx.Replace(name, "Helmet")
	if closing := closeTagNameNode(n); closing != nil {
		ctx.Replace(closing, "Helmet")
	}
	ctx.Need(needHelmet)
	ctx.Change("Converted <" + ctx.boundDefault("next/head", "Head") + "> to <Helmet>")
}

func matchAttr(module, fallback string, names map[string]bool) func(*Context, *ast.Node) bool {
	return func(ctx *Context, n *ast.Node) bool {
		if n.Kind != ast.KindAttribute || ctx.Facts.ImportOf(module) == nil {
			return false
		}
		if tag := ctx.attrElementTag(n); tag != ctx.boundDefault(module, fallback) {
			return false
		}
		return names[attrName(ctx, n)]
	}
}

func applyAttrDrop(ctx *Context, n *ast.Node) {
	name := attrName(ctx, n)
	ctx.Delete(n)
	ctx.Warn(fmt.Sprintf("Dropped attribute %q: no equivalent on the target element", name))
}

func applyLinkHref(ctx *Context, n *ast.Node) {
	ctx.Replace(n.ChildOfKind(ast.KindIdent), "to")
	ctx.Change(`Converted <Link href> to <Link to>`)
}

// --- routing ---

func matchRouterBinding(ctx *Context, n *ast.Node) bool {
	if n.Kind != ast.KindVarDecl {
		return false
	}
	for _, binding := range n.ChildrenOfKind(ast.KindVarBinding) {
		if isRouterHookCall(ctx, binding.ChildByField("value")) {
			return true
		}
	}
	return false
}

func applyRouterBinding(ctx *Context, n *ast.Node) {
	var binding *ast.Node
	bindings := n.ChildrenOfKind(ast.KindVarBinding)
	for _, b := range bindings {
		if isRouterHookCall(ctx, b.ChildByField("value")) {
			binding = b
			break
		}
	}
	name := binding.ChildByField("name")
	if name == nil || name.Kind != ast.KindIdent {
		ctx.Warn("Destructured useRouter() binding left unchanged; convert it manually")
		return
	}

	declarators := []string{"navigate = useNavigate()"}
	if ctx.needs[needLocation] {
		declarators = append(declarators, "location = useLocation()")
	}
	if ctx.needs[needSearchParams] {
		declarators = append(declarators, "[searchParams] = useSearchParams()")
	}

	if len(bindings) > 1 {
		// Sibling declarators stay in place; only the hook binding changes.
		ctx.Replace(binding, strings.Join(declarators, ", "))
	} else {
		indent := ctx.indentAt(n.Span.Start)
		lines := make([]string, len(declarators))
		for i, d := range declarators {
			lines[i] = "const " + d + ";"
		}
		ctx.Replace(n, strings.Join(lines, "\n"+indent))
	}
	ctx.Need(needNavigate)
	ctx.Change("Converted useRouter() to useNavigate()")
}

func matchRouterCall(prop string) func(*Context, *ast.Node) bool {
	return func(ctx *Context, n *ast.Node) bool {
		if n.Kind != ast.KindCall {
			return false
		}
		return isRouterMember(ctx, n.ChildByField("function"), prop)
	}
}

func matchRouterMember(props ...string) func(*Context, *ast.Node) bool {
	return func(ctx *Context, n *ast.Node) bool {
		if n.Kind != ast.KindMember {
			return false
		}
		for _, prop := range props {
			if isRouterMember(ctx, n, prop) {
				return true
			}
		}
		return false
	}
}

func applyRouterPush(ctx *Context, n *ast.Node) {
	ctx.Replace(n.ChildByField("function"), "navigate")
	ctx.Need(needNavigate)
	ctx.Change("Converted router.push() to navigate()")
}

func applyRouterReplace(ctx *Context, n *ast.Node) {
	ctx.Replace(n.ChildByField("function"), "navigate")
	if args := n.ChildByField("arguments"); args != nil && len(args.Children) > 0 {
		ctx.Insert(args.Span.End-1, ", { replace: true }")
	}
	ctx.Need(needNavigate)
	ctx.Change("Converted router.replace() to navigate(..., { replace: true })")
}

func applyRouterBack(ctx *Context, n *ast.Node) {
	ctx.Replace(n, "navigate(-1)")
	ctx.Need(needNavigate)
	ctx.Change("Converted router.back() to navigate(-1)")
}

func applyRouterQuery(ctx *Context, n *ast.Node) {
	ctx.Replace(n, "searchParams")
	ctx.Need(needSearchParams)
	ctx.Change("Converted router.query to searchParams")
}

func applyRouterPathname(ctx *Context, n *ast.Node) {
	prop := ctx.Text(n.ChildByField("property"))
	ctx.Replace(n, "location.pathname")
	ctx.Need(needLocation)
	ctx.Change(fmt.Sprintf("Converted router.%s to location.pathname", prop))
}

func matchDynamicCall(ctx *Context, n *ast.Node) bool {
	if n.Kind != ast.KindCall || ctx.Facts.ImportOf("next/dynamic") == nil {
		return false
	}
	callee := n.ChildByField("function")
	return callee != nil && callee.Kind == ast.KindIdent &&
		ctx.Text(callee) == ctx.boundDefault("next/dynamic", "dynamic")
}

func applyDynamicCall(ctx *Context, n *ast.Node) {
	ctx.Replace(n.ChildByField("function"), "lazy")
	ctx.Need(needLazy)
	ctx.Change("Converted dynamic() to lazy()")
}

// --- data fetching ---

func matchDataFetchExport(entry string) func(*Context, *ast.Node) bool {
	return func(ctx *Context, n *ast.Node) bool {
		if n.Kind != ast.KindExport {
			return false
		}
		return dataFetchDeclName(ctx, n) == entry
	}
}

func applyDataFetchExport(entry string) func(*Context, *ast.Node) {
	target := dataFetchHooks[entry]
	return func(ctx *Context, n *ast.Node) {
		decl := n.ChildByField("declaration")
		// Keep the original function private and wrap it in the generated
		// caching hook.
		ctx.ReplaceSpan(n.Span.Start, decl.Span.Start, "")
		ctx.Insert(n.Span.End, fmt.Sprintf(
			"\n\nexport function %s() {\n  return useQuery({ queryKey: [%q], queryFn: %s });\n}",
			target.Hook, target.QueryKey, entry,
		))
		ctx.Need(needUseQuery)
		ctx.Change(fmt.Sprintf("Replaced exported %s with generated hook %s()", entry, target.Hook))
	}
}

// dataFetchDeclName returns the data-fetching entry name an export
// statement declares, or "".
func dataFetchDeclName(ctx *Context, n *ast.Node) string {
	decl := n.ChildByField("declaration")
	if decl == nil {
		return ""
	}
	switch decl.Kind {
	case ast.KindFunction:
		return ctx.Text(decl.ChildByField("name"))
	case ast.KindVarDecl:
		for _, binding := range decl.ChildrenOfKind(ast.KindVarBinding) {
			value := binding.ChildByField("value")
			if value != nil && value.Kind == ast.KindFunction {
				return ctx.Text(binding.ChildByField("name"))
			}
		}
	}
	return ""
}

// --- cleanup ---

func matchProgram(_ *Context, n *ast.Node) bool {
	return n.Kind == ast.KindProgram
}

func applyStripTypes(ctx *Context, _ *ast.Node) {
	count := 0
	ast.Walk(ctx.Tree.Root, func(n *ast.Node) bool {
		switch n.Kind {
		case ast.KindTypeDecl:
			if !ctx.spanEdited(n.Span) {
				ctx.DeleteLine(n)
				count++
			}
			return false
		case ast.KindTypeAnnotation:
			if !ctx.spanEdited(n.Span) {
				ctx.Delete(n)
				count++
			}
			return false
		}
		return true
	})
	if count == 0 {
		ctx.Warn("No type annotations found to strip")
		return
	}
	ctx.Change(fmt.Sprintf("Stripped %d type annotation(s)", count))
}

func applyStripComments(ctx *Context, _ *ast.Node) {
	count := 0
	ast.Walk(ctx.Tree.Root, func(n *ast.Node) bool {
		if n.Kind == ast.KindComment && !ctx.spanEdited(n.Span) {
			ctx.DeleteLine(n)
			count++
			return false
		}
		return true
	})
	if count == 0 {
		ctx.Warn("No comments found to strip")
		return
	}
	ctx.Change(fmt.Sprintf("Removed %d comment(s)", count))
}

// --- shared helpers ---

func renderImport(module string, names ...string) string {
	return "import { " + strings.Join(names, ", ") + " } from \"" + module + "\";"
}

func importSource(ctx *Context, n *ast.Node) string {
	return unquote(ctx.Text(n.ChildByField("source")))
}

func unquote(text string) string {
	if len(text) >= 2 {
		switch text[0] {
		case '\'', '"', '`':
			return text[1 : len(text)-1]
		}
	}
	return text
}

// tagNameNode returns the opening tag name of a markup element,
// regardless of whether the element is self-closing.
func tagNameNode(el *ast.Node) *ast.Node {
	if open := el.ChildByField("open_tag"); open != nil {
		return open.ChildByField("name")
	}
	return el.ChildByField("name")
}

func closeTagNameNode(el *ast.Node) *ast.Node {
	closing := el.ChildByField("close_tag")
	if closing == nil {
		return nil
	}
	if name := closing.ChildByField("name"); name != nil {
		return name
	}
	return closing.ChildOfKind(ast.KindIdent)
}

func elementAttrs(el *ast.Node) []*ast.Node {
	if open := el.ChildByField("open_tag"); open != nil {
		return open.ChildrenOfKind(ast.KindAttribute)
	}
	return el.ChildrenOfKind(ast.KindAttribute)
}

func attrName(ctx *Context, attr *ast.Node) string {
	return ctx.Text(attr.ChildOfKind(ast.KindIdent))
}

func hasAttr(ctx *Context, el *ast.Node, name string) bool {
	for _, attr := range elementAttrs(el) {
		if attrName(ctx, attr) == name {
			return true
		}
	}
	return false
}

func isRouterHookCall(ctx *Context, value *ast.Node) bool {
	if value == nil || value.Kind != ast.KindCall {
		return false
	}
	callee := value.ChildByField("function")
	return callee != nil && callee.Kind == ast.KindIdent && ctx.Text(callee) == "useRouter"
}

// unboundRouterCall locates a useRouter() call whose result is not bound
// to a plain identifier, such as an inline useRouter().push(...) or a
// destructured binding.
func unboundRouterCall(ctx *Context) *ast.Node {
	return ast.Find(ctx.Tree.Root, func(n *ast.Node) bool {
		if n.Kind != ast.KindCall || !isRouterHookCall(ctx, n) {
			return false
		}
		parent := ctx.parents[n]
		if parent == nil || parent.Kind != ast.KindVarBinding {
			return true
		}
		name := parent.ChildByField("name")
		return name == nil || name.Kind != ast.KindIdent
	})
}

func isRouterMember(ctx *Context, member *ast.Node, prop string) bool {
	if member == nil || member.Kind != ast.KindMember {
		return false
	}
	object := member.ChildByField("object")
	property := member.ChildByField("property")
	if object == nil || property == nil || object.Kind != ast.KindIdent {
		return false
	}
	return ctx.routerVars[ctx.Text(object)] && ctx.Text(property) == prop
}
