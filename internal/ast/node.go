package ast

// Kind tags a structural node. The set is closed: the parser maps every
// tree-sitter node onto exactly one Kind, and constructs the engine has no
// rules for collapse to KindOther (their children are still converted, so
// traversal reaches every rule-relevant descendant).
type Kind int

const (
	KindOther Kind = iota
	KindProgram
	KindImport
	KindExport
	KindFunction
	KindVarDecl
	KindVarBinding
	KindCall
	KindMember
	KindIdent
	KindLiteral
	KindElement
	KindElementOpen
	KindElementClose
	KindAttribute
	KindBlock
	KindReturn
	KindComment
	KindTypeAnnotation
	KindTypeDecl
)

var kindNames = map[Kind]string{
	KindOther:          "Other",
	KindProgram:        "Program",
	KindImport:         "Import",
	KindExport:         "Export",
	KindFunction:       "FunctionDef",
	KindVarDecl:        "VariableDecl",
	KindVarBinding:     "VariableBinding",
	KindCall:           "Call",
	KindMember:         "MemberAccess",
	KindIdent:          "Identifier",
	KindLiteral:        "Literal",
	KindElement:        "MarkupElement",
	KindElementOpen:    "MarkupOpenTag",
	KindElementClose:   "MarkupCloseTag",
	KindAttribute:      "MarkupAttribute",
	KindBlock:          "Block",
	KindReturn:         "ReturnStatement",
	KindComment:        "Comment",
	KindTypeAnnotation: "TypeAnnotation",
	KindTypeDecl:       "TypeDeclaration",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Other"
}

// Span is a half-open byte range into the module's source text, plus the
// starting line for diagnostics (1-indexed).
type Span struct {
	Start uint
	End   uint
	Line  int
}

// Node is one node of a parsed module tree. Nodes carry no text of their own;
// all text is derived from the span against the owning Tree's source, so a
// tree can never drift out of sync with the module it was parsed from.
type Node struct {
	Kind     Kind
	Span     Span
	Field    string // grammar field linking this node to its parent role ("source", "name", ...)
	Children []*Node
}

// Text returns the verbatim source text covered by the node.
func (n *Node) Text(src []byte) string {
	if n == nil || n.Span.End > uint(len(src)) || n.Span.Start > n.Span.End {
		return ""
	}
	return string(src[n.Span.Start:n.Span.End])
}

// ChildByField returns the first child bound to the given grammar field.
func (n *Node) ChildByField(field string) *Node {
	for _, c := range n.Children {
		if c.Field == field {
			return c
		}
	}
	return nil
}

// ChildOfKind returns the first direct child with the given kind.
func (n *Node) ChildOfKind(k Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// ChildrenOfKind returns all direct children with the given kind.
func (n *Node) ChildrenOfKind(k Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Walk visits the tree in pre-order. Returning false from the visitor stops
// descent into the current node's children but not the rest of the walk.
func Walk(n *Node, visit func(*Node) bool) {
	if n == nil {
		return
	}
	if !visit(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, visit)
	}
}

// Find returns the first descendant (including n itself) matching the
// predicate, in pre-order.
func Find(n *Node, match func(*Node) bool) *Node {
	var found *Node
	Walk(n, func(c *Node) bool {
		if found != nil {
			return false
		}
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

// Tree owns one module's parsed structure. Trees are acyclic and never
// shared across modules.
type Tree struct {
	Root     *Node
	Source   []byte
	Filename string
}

// Text returns the source text of a node within this tree.
func (t *Tree) Text(n *Node) string {
	return n.Text(t.Source)
}
