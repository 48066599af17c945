// Package htmltext implements the out-of-core HTML<->plain-text
// collaborators used for JMAP §4.1.4 cross-conversion (§4.8, §9): when a
// multipart/alternative carries only one of the two representations, the
// other view is synthesised on demand rather than stored.
package htmltext

import (
	"strings"

	"golang.org/x/net/html"
)

func isSkippedElement(tag string) bool {
	switch tag {
	case "script", "style", "head", "title":
		return true
	}
	return false
}

// ToText renders an HTML document down to its visible text: block-level
// elements (p, div, br, li, tr, and the heading tags) each force a line
// break, script/style/head/title subtrees are dropped entirely, and
// consecutive whitespace collapses the way a browser's rendered text
// would.
func ToText(htmlSrc string) string {
	doc, err := html.Parse(strings.NewReader(htmlSrc))
	if err != nil {
		return htmlSrc
	}

	skip := make(map[*html.Node]bool)
	markSkipped(doc, skip)

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if skip[n] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			trimTrailingBlank(&b)
			b.WriteString("\n")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && isBlockElement(n.Data) {
			trimTrailingBlank(&b)
			b.WriteString("\n")
		}
	}
	walk(doc)

	return collapseBlankLines(b.String())
}

// ToHTML renders plain text as a minimal HTML fragment: special
// characters are entity-escaped and each line becomes its own paragraph.
func ToHTML(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var b strings.Builder
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(html.EscapeString(line))
		b.WriteString("</p>")
	}
	if b.Len() == 0 {
		return "<p></p>"
	}
	return b.String()
}

func markSkipped(n *html.Node, skip map[*html.Node]bool) {
	if n.Type == html.ElementNode && isSkippedElement(n.Data) {
		skip[n] = true
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		markSkipped(c, skip)
	}
}

func isBlockElement(tag string) bool {
	switch tag {
	case "p", "div", "br", "li", "tr", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote":
		return true
	}
	return false
}

func trimTrailingBlank(b *strings.Builder) {
	s := b.String()
	s = strings.TrimRight(s, " \t")
	b.Reset()
	b.WriteString(s)
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	var out []string
	blank := false
	for _, l := range lines {
		trimmed := strings.TrimSpace(l)
		if trimmed == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, trimmed)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
