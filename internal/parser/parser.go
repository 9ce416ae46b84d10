package parser

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"unicode/utf8"

	"github.com/maypok86/otter"
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/crossframe-dev/reroute/internal/ast"
)

// MaxFileSize is the largest module the front-end will parse. Anything
// larger is almost certainly generated or vendored output.
const MaxFileSize = 10 * 1024 * 1024

// Options selects the concrete syntax accepted by the front-end.
type Options struct {
	// TypeScript enables type-annotation syntax.
	TypeScript bool
	// JSX enables markup-embedded syntax.
	JSX bool
}

// OptionsForFile derives syntax options from a filename extension.
func OptionsForFile(filename string) Options {
	switch filepath.Ext(filename) {
	case ".ts":
		return Options{TypeScript: true}
	case ".tsx":
		return Options{TypeScript: true, JSX: true}
	case ".jsx":
		return Options{JSX: true}
	default:
		return Options{JSX: true}
	}
}

// ParseError reports a module that could not be structurally parsed.
// The module falls back to verbatim passthrough downstream.
type ParseError struct {
	Filename string
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Filename, e.Message)
}

// Parser is the structural front-end. It is safe for concurrent use: each
// Parse call creates its own tree-sitter parser instance, and the content
// cache is concurrency-safe.
type Parser struct {
	cache otter.Cache[string, *ast.Tree]
}

// New creates a structural front-end with a content-addressed parse cache.
// Repeated conversion of unchanged files (watch mode) reuses cached trees.
func New() (*Parser, error) {
	cache, err := otter.MustBuilder[string, *ast.Tree](1024).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build parse cache: %w", err)
	}
	return &Parser{cache: cache}, nil
}

// Parse parses one module's source text into a structural tree.
// On malformed input it returns a *ParseError and no tree; it never
// returns a partial tree.
func (p *Parser) Parse(source []byte, filename string, opts Options) (*ast.Tree, error) {
	if len(source) > MaxFileSize {
		return nil, &ParseError{Filename: filename, Message: "file too large"}
	}
	if !utf8.Valid(source) {
		return nil, &ParseError{Filename: filename, Message: "source is not valid UTF-8"}
	}

	key := cacheKey(source, filename, opts)
	if p != nil {
		if tree, ok := p.cache.Get(key); ok {
			return tree, nil
		}
	}

	tree, err := parse(source, filename, opts)
	if err != nil {
		return nil, err
	}
	if p != nil {
		p.cache.Set(key, tree)
	}
	return tree, nil
}

// Close releases the parse cache.
func (p *Parser) Close() {
	p.cache.Close()
}

// Parse is the uncached package-level entry point, used where no Parser
// instance is in play (single-module transforms, tests).
func Parse(source []byte, filename string, opts Options) (*ast.Tree, error) {
	return parse(source, filename, opts)
}

func parse(source []byte, filename string, opts Options) (*ast.Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	parser.SetLanguage(language(opts))

	cst := parser.Parse(source, nil)
	if cst == nil {
		return nil, &ParseError{Filename: filename, Message: "tree-sitter returned no tree"}
	}
	defer cst.Close()

	root := cst.RootNode()
	if root.HasError() {
		return nil, &ParseError{
			Filename: filename,
			Message:  fmt.Sprintf("syntax error near line %d", firstErrorLine(root)),
		}
	}

	return &ast.Tree{
		Root:     convertNode(root),
		Source:   source,
		Filename: filename,
	}, nil
}

// language selects the tree-sitter dialect for the given options. The TSX
// grammar is the superset used whenever markup syntax is enabled; plain
// TypeScript keeps its own grammar because TSX changes how `<T>` casts parse.
func language(opts Options) *sitter.Language {
	if opts.TypeScript && !opts.JSX {
		return sitter.NewLanguage(typescript.LanguageTypescript())
	}
	return sitter.NewLanguage(typescript.LanguageTSX())
}

// firstErrorLine locates the first ERROR or missing node for diagnostics.
func firstErrorLine(node *sitter.Node) int {
	if node.IsError() || node.IsMissing() {
		return int(node.StartPosition().Row) + 1
	}
	for i := uint(0); i < node.ChildCount(); i++ {
		if line := firstErrorLine(node.Child(i)); line > 0 {
			return line
		}
	}
	return 0
}

// cacheKey includes the filename so two files with identical content get
// trees that report their own paths in diagnostics.
func cacheKey(source []byte, filename string, opts Options) string {
	sum := sha256.Sum256(source)
	key := filename + "\x00" + hex.EncodeToString(sum[:])
	if opts.TypeScript {
		key += "+ts"
	}
	if opts.JSX {
		key += "+jsx"
	}
	return key
}
