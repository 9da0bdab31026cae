package indexer

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/kapu/contentful-constructor-go/internal/domain"
	"github.com/kapu/contentful-constructor-go/internal/util"
)

// FlattenRichText reduces a rich-text document tree to plain text by
// depth-first traversal over text leaves. Non-text nodes contribute nothing
// themselves but their children are still visited. Whitespace collapses and
// the result is truncated to maxLen with an ellipsis.
func FlattenRichText(root *domain.RichTextNode, maxLen int) string {
	if root == nil {
		return ""
	}

	var parts []string
	var walk func(n *domain.RichTextNode)
	walk = func(n *domain.RichTextNode) {
		if n == nil {
			return
		}
		if n.NodeType == "text" && n.Value != "" {
			parts = append(parts, n.Value)
		}
		for _, child := range n.Content {
			walk(child)
		}
	}
	walk(root)

	flat := util.CollapseWhitespace(strings.Join(parts, " "))
	return util.TruncateEllipsis(flat, maxLen)
}

// FlattenHTML extracts the visible text from a legacy HTML summary field.
// Malformed markup degrades to the raw string rather than failing the run.
func FlattenHTML(html string, maxLen int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return util.TruncateEllipsis(util.CollapseWhitespace(html), maxLen)
	}
	return util.TruncateEllipsis(util.CollapseWhitespace(doc.Text()), maxLen)
}
