package parser

import (
	"bytes"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// nodeText returns the trimmed source text spanned by n.
func nodeText(src []byte, n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return string(bytes.TrimSpace(src[n.StartByte():n.EndByte()]))
}

// stringContent strips the quote characters tree-sitter leaves around a
// "string"-typed node's raw text.
func stringContent(src []byte, n *sitter.Node) string {
	return strings.Trim(nodeText(src, n), "\"'`")
}

// findChild returns the first direct named child of n with the given type.
func findChild(n *sitter.Node, typ string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == typ {
			return c
		}
	}
	return nil
}

// findChildren returns every direct named child of n with the given type.
func findChildren(n *sitter.Node, typ string) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == typ {
			out = append(out, c)
		}
	}
	return out
}

// walk visits every named node in the tree rooted at n, depth first.
func walk(n *sitter.Node, visit func(*sitter.Node)) {
	if n == nil {
		return
	}
	if n.IsNamed() {
		visit(n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		walk(n.NamedChild(i), visit)
	}
}

// position returns n's start as a 1-based line and a 0-based column, per
// spec §3.
func position(n *sitter.Node) (line, column int) {
	p := n.StartPoint()
	return int(p.Row) + 1, int(p.Column)
}
