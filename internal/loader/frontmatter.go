package loader

import (
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/dgallion1/docaudit/internal/doctree"
)

// applyFrontMatter removes a leading YAML (---) or TOML (+++) block from
// doc.Lines and records how many lines it took. A block counts as front
// matter only when it decodes to a non-empty mapping, so a heading wrapped
// in thematic breaks stays part of the body.
func applyFrontMatter(doc *doctree.Document) {
	if len(doc.Lines) == 0 {
		return
	}
	first := strings.TrimSpace(doc.Lines[0])
	if first != "---" && first != "+++" {
		return
	}

	src := strings.Join(doc.Lines, "\n")
	var meta map[string]any
	body, err := frontmatter.Parse(strings.NewReader(src), &meta)
	if err != nil {
		doc.FrontMatterErr = fmt.Errorf("parse front matter: %w", err)
		return
	}
	if len(meta) == 0 {
		return
	}
	rest := string(body)
	if len(rest) == len(src) || !strings.HasSuffix(src, rest) {
		return
	}

	offset := len(doc.Lines)
	if rest != "" {
		offset -= strings.Count(rest, "\n") + 1
	}
	doc.Lines = doc.Lines[offset:]
	doc.LineOffset = offset
	if t, ok := meta["title"].(string); ok && strings.TrimSpace(t) != "" {
		doc.Title = strings.TrimSpace(t)
	}
}
