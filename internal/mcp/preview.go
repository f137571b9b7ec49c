package mcp

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const previewLimit = 400

// previewText flattens markdown to plain text for the result summary. Code
// blocks are dropped, whitespace is collapsed, output is capped at limit runes.
func previewText(markdown string, limit int) string {
	md := goldmark.New()
	src := []byte(markdown)
	doc := md.Parser().Parse(text.NewReader(src))

	var parts []string
	collectText(doc, src, &parts)

	out := strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
	if limit > 0 {
		if r := []rune(out); len(r) > limit {
			out = string(r[:limit])
		}
	}
	return out
}

func collectText(node ast.Node, source []byte, parts *[]string) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Heading:
			*parts = append(*parts, string(n.Text(source)))
		case *ast.Paragraph:
			*parts = append(*parts, string(n.Text(source)))
		case *ast.TextBlock:
			*parts = append(*parts, string(n.Text(source)))
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			// skipped, previews are for prose
		default:
			if child.HasChildren() {
				collectText(child, source, parts)
			}
		}
	}
}
