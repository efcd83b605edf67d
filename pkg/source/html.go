package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"
)

// blockElements end the current line when opened and closed.
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true,
	"table": true, "ul": true, "ol": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"header": true, "footer": true, "blockquote": true, "pre": true,
}

// skippedElements carry no notice text.
var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true, "template": true,
}

func readHTMLFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("reading notice: %w", err)
	}
	defer f.Close()
	return HTMLText(f)
}

// HTMLText flattens an HTML notice to text. Block elements start new lines,
// table cells are separated by a space, and <b>/<strong> content is wrapped
// in ** markers.
func HTMLText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var builder strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			builder.WriteString(collapseSpace(n.Data))
			return
		case html.ElementNode:
			if skippedElements[n.Data] {
				return
			}
			if n.Data == "b" || n.Data == "strong" {
				if text := strings.TrimSpace(collapseSpace(nodeText(n))); text != "" {
					builder.WriteString("**" + text + "**")
				}
				return
			}
		}

		block := n.Type == html.ElementNode && blockElements[n.Data]
		if block {
			builder.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if block {
			builder.WriteByte('\n')
		}
		if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
			builder.WriteByte(' ')
		}
	}
	walk(doc)

	lines := strings.Split(builder.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimLeft(line, " ")
	}
	return tidy(strings.Join(lines, "\n")), nil
}

// nodeText returns the concatenated text below n.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var builder strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		builder.WriteString(nodeText(c))
	}
	return builder.String()
}

// collapseSpace folds each run of HTML whitespace into a single space.
func collapseSpace(s string) string {
	var builder strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				builder.WriteByte(' ')
			}
			space = true
		default:
			builder.WriteRune(r)
			space = false
		}
	}
	return builder.String()
}
