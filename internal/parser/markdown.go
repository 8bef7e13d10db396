package parser

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	xhtml "golang.org/x/net/html"

	"github.com/dgallion1/docaudit/internal/doctree"
)

// Parse fills in the segments, links and anchors of doc from its lines.
func Parse(doc *doctree.Document) {
	doc.Segments = ParseLines(doc.Lines)
	doc.Links, doc.Anchors = ExtractRefs(doc.Lines)
}

// ExtractRefs walks the goldmark AST of the given lines and returns the
// link destinations and the fragment anchors the document defines. Heading
// anchors use GitHub slugs; raw HTML contributes id and name attributes.
func ExtractRefs(lines []string) ([]doctree.Link, map[string]int) {
	src := []byte(strings.Join(lines, "\n"))
	doc := goldmark.New().Parser().Parse(text.NewReader(src))
	idx := newLineIndex(src)

	var links []doctree.Link
	anchors := make(map[string]int)
	slugCounts := make(map[string]int)

	addAnchor := func(name string, line int) {
		if name == "" {
			return
		}
		if _, exists := anchors[name]; !exists {
			anchors[name] = line
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			line := blockLine(node, idx)
			slug := Slug(string(node.Text(src)))
			if slug == "" {
				return ast.WalkContinue, nil
			}
			name := slug
			if c := slugCounts[slug]; c > 0 {
				name = fmt.Sprintf("%s-%d", slug, c)
			}
			slugCounts[slug]++
			addAnchor(name, line)

		case *ast.Link:
			links = append(links, doctree.Link{Target: string(node.Destination), Line: inlineLine(node, idx)})

		case *ast.Image:
			links = append(links, doctree.Link{Target: string(node.Destination), Line: inlineLine(node, idx)})

		case *ast.HTMLBlock:
			var buf bytes.Buffer
			segs := node.Lines()
			for i := 0; i < segs.Len(); i++ {
				seg := segs.At(i)
				buf.Write(seg.Value(src))
			}
			if node.HasClosure() {
				buf.Write(node.ClosureLine.Value(src))
			}
			scanHTML(buf.Bytes(), blockLine(node, idx), &links, addAnchor)

		case *ast.RawHTML:
			var buf bytes.Buffer
			for i := 0; i < node.Segments.Len(); i++ {
				seg := node.Segments.At(i)
				buf.Write(seg.Value(src))
			}
			line := 0
			if node.Segments.Len() > 0 {
				line = idx.line(node.Segments.At(0).Start)
			}
			scanHTML(buf.Bytes(), line, &links, addAnchor)
		}
		return ast.WalkContinue, nil
	})

	return links, anchors
}

// Slug converts heading text to the fragment GitHub generates for it.
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		}
	}
	return b.String()
}

// scanHTML records id/name anchors and a[href] links found in a raw HTML
// fragment that starts on line.
func scanHTML(fragment []byte, line int, links *[]doctree.Link, addAnchor func(string, int)) {
	z := xhtml.NewTokenizer(bytes.NewReader(fragment))
	current := line
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			return
		}
		raw := z.Raw()
		tokenLine := current
		current += bytes.Count(raw, []byte("\n"))

		if tt != xhtml.StartTagToken && tt != xhtml.SelfClosingTagToken {
			continue
		}
		tok := z.Token()
		for _, a := range tok.Attr {
			switch {
			case a.Key == "id":
				addAnchor(strings.TrimSpace(a.Val), tokenLine)
			case a.Key == "name" && tok.Data == "a":
				addAnchor(strings.TrimSpace(a.Val), tokenLine)
			case a.Key == "href" && tok.Data == "a":
				*links = append(*links, doctree.Link{Target: strings.TrimSpace(a.Val), Line: tokenLine})
			}
		}
	}
}

// lineIndex maps byte offsets in the joined source to 1-based lines.
type lineIndex []int

func newLineIndex(src []byte) lineIndex {
	starts := lineIndex{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

func (idx lineIndex) line(offset int) int {
	return sort.Search(len(idx), func(i int) bool { return idx[i] > offset })
}

func blockLine(n ast.Node, idx lineIndex) int {
	if lines := n.Lines(); lines != nil && lines.Len() > 0 {
		return idx.line(lines.At(0).Start)
	}
	return 0
}

// inlineLine finds the line of an inline node from its first text child,
// falling back to the enclosing block.
func inlineLine(n ast.Node, idx lineIndex) int {
	for c := n.FirstChild(); c != nil; c = c.FirstChild() {
		if t, ok := c.(*ast.Text); ok {
			return idx.line(t.Segment.Start)
		}
	}
	for p := n.Parent(); p != nil; p = p.Parent() {
		if p.Type() == ast.TypeBlock {
			if line := blockLine(p, idx); line > 0 {
				return line
			}
		}
	}
	return 0
}
