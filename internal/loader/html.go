package loader

import (
	"fmt"
	"html"
	"io"
	"strings"

	xhtml "golang.org/x/net/html"
)

// HTMLReader handles HTML files. Headings, preformatted blocks, links and
// element ids are rewritten as their Markdown equivalents so the rest of
// the pipeline treats every format the same way.
type HTMLReader struct{}

func (p *HTMLReader) ReadLines(r io.Reader, filename string) ([]string, error) {
	doc, err := xhtml.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var lines []string
	emit := func(block ...string) {
		if len(lines) > 0 && lines[len(lines)-1] != "" {
			lines = append(lines, "")
		}
		lines = append(lines, block...)
	}

	var walk func(*xhtml.Node)
	walk = func(n *xhtml.Node) {
		if n.Type == xhtml.ElementNode {
			if id := anchorID(n); id != "" {
				emit(fmt.Sprintf(`<a id="%s"></a>`, html.EscapeString(id)))
			}

			if level := headingLevel(n.Data); level > 0 {
				emit(strings.Repeat("#", level) + " " + strings.Join(strings.Fields(inlineText(n)), " "))
				return
			}

			switch n.Data {
			case "script", "style", "nav", "footer", "header":
				return
			case "pre":
				body := strings.TrimRight(textContent(n), "\n")
				fence := fenceFor(body)
				block := []string{fence + codeLanguage(n)}
				if body != "" {
					block = append(block, strings.Split(body, "\n")...)
				}
				emit(append(block, fence)...)
				return
			case "p", "li", "td", "blockquote":
				if t := inlineText(n); t != "" {
					emit(strings.Split(t, "\n")...)
				}
				return
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	body := findBody(doc)
	if body != nil {
		walk(body)
	} else {
		walk(doc)
	}

	return lines, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func anchorID(n *xhtml.Node) string {
	for _, a := range n.Attr {
		if a.Key == "id" || (a.Key == "name" && n.Data == "a") {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func attr(n *xhtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// fenceFor returns a backtick fence longer than any backtick run in body,
// so the body can never close the block early.
func fenceFor(body string) string {
	longest, run := 0, 0
	for i := 0; i < len(body); i++ {
		if body[i] != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(3, longest+1))
}

// codeLanguage reads a "language-xxx" class from a pre or its code child.
func codeLanguage(pre *xhtml.Node) string {
	nodes := []*xhtml.Node{pre}
	for c := pre.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xhtml.ElementNode && c.Data == "code" {
			nodes = append(nodes, c)
		}
	}
	for _, n := range nodes {
		for _, class := range strings.Fields(attr(n, "class")) {
			if lang, ok := strings.CutPrefix(class, "language-"); ok {
				return lang
			}
		}
	}
	return ""
}

// textContent returns the raw text under n, keeping whitespace.
func textContent(n *xhtml.Node) string {
	var buf strings.Builder
	var extract func(*xhtml.Node)
	extract = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

// inlineText flattens n to a single string, rendering hyperlinks as
// Markdown links.
func inlineText(n *xhtml.Node) string {
	var buf strings.Builder
	var extract func(*xhtml.Node)
	extract = func(n *xhtml.Node) {
		if n.Type == xhtml.TextNode {
			buf.WriteString(n.Data)
			return
		}
		if n.Type == xhtml.ElementNode && n.Data == "a" {
			if href := attr(n, "href"); href != "" {
				buf.WriteString("[" + strings.TrimSpace(textContent(n)) + "](" + href + ")")
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *xhtml.Node) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
