package parser

import (
	"testing"

	"github.com/dgallion1/docaudit/internal/doctree"
)

func TestExtractRefs_Links(t *testing.T) {
	input := `# Pattern Matching

See [switch](../Switch/Readme.md) and
the [guard section](#guards).

![diagram](img/flow.png)

` + "```java\n[not a link](nowhere.md)\n```" + `

## Guards
`
	links, _ := ExtractRefs(lines(input))

	want := []doctree.Link{
		{Target: "../Switch/Readme.md", Line: 3},
		{Target: "#guards", Line: 4},
		{Target: "img/flow.png", Line: 6},
	}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %+v", len(want), len(links), links)
	}
	for i, w := range want {
		if links[i] != w {
			t.Errorf("link[%d]: expected %+v, got %+v", i, w, links[i])
		}
	}
}

func TestExtractRefs_HeadingAnchors(t *testing.T) {
	input := "# Pattern Matching for `instanceof`\n\n## Example\n\n## Example\n\n## Java 17+ Notes\n"
	_, anchors := ExtractRefs(lines(input))

	want := map[string]int{
		"pattern-matching-for-instanceof": 1,
		"example":                         3,
		"example-1":                       5,
		"java-17-notes":                   7,
	}
	for name, line := range want {
		got, ok := anchors[name]
		if !ok {
			t.Errorf("expected anchor %q, anchors: %v", name, anchors)
			continue
		}
		if got != line {
			t.Errorf("anchor %q: expected line %d, got %d", name, line, got)
		}
	}
}

func TestExtractRefs_HTMLAnchors(t *testing.T) {
	input := "# Title\n\n<a name=\"legacy\"></a>\n\nText with <span id=\"inline-anchor\">x</span> and <a href=\"other.md\">link</a>.\n"
	links, anchors := ExtractRefs(lines(input))

	if _, ok := anchors["legacy"]; !ok {
		t.Errorf("expected html block anchor, got %v", anchors)
	}
	if _, ok := anchors["inline-anchor"]; !ok {
		t.Errorf("expected inline html anchor, got %v", anchors)
	}
	found := false
	for _, l := range links {
		if l.Target == "other.md" {
			found = true
			if l.Line != 5 {
				t.Errorf("expected html link on line 5, got %d", l.Line)
			}
		}
	}
	if !found {
		t.Errorf("expected html href to be collected, got %+v", links)
	}
}

func TestExtractRefs_MultiLineHTMLBlock(t *testing.T) {
	input := "# Title\n\n<div>\n<a name=\"first\"></a>\n<a id=\"second\" href=\"guide.md\">g</a>\n</div>\n\n<!--\n<a name=\"closing\"></a>\n-->\n"
	links, anchors := ExtractRefs(lines(input))

	for _, id := range []string{"first", "second"} {
		if _, ok := anchors[id]; !ok {
			t.Errorf("expected anchor %q from multi-line html block, got %v", id, anchors)
		}
	}
	found := false
	for _, l := range links {
		if l.Target == "guide.md" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected href from html block, got %+v", links)
	}
}

func TestExtractRefs_EmptyInput(t *testing.T) {
	links, anchors := ExtractRefs(nil)
	if len(links) != 0 {
		t.Errorf("expected no links, got %d", len(links))
	}
	if len(anchors) != 0 {
		t.Errorf("expected no anchors, got %d", len(anchors))
	}
}

func TestSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Pattern Matching", "pattern-matching"},
		{"Switch: Java 14 vs 17", "switch-java-14-vs-17"},
		{"`record` patterns", "record-patterns"},
		{"snake_case & dashes-ok", "snake_case--dashes-ok"},
		{"  Trim me ", "trim-me"},
		{"Über Größe", "über-größe"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slug(tt.in); got != tt.want {
			t.Errorf("Slug(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestParse_FillsDocument(t *testing.T) {
	doc := &doctree.Document{Lines: lines("# A\n[b](#a)\n```\nx\n```\n")}
	Parse(doc)
	if len(doc.Segments) != 2 {
		t.Errorf("expected 2 segments, got %d", len(doc.Segments))
	}
	if len(doc.Links) != 1 {
		t.Errorf("expected 1 link, got %d", len(doc.Links))
	}
	if _, ok := doc.Anchors["a"]; !ok {
		t.Errorf("expected anchor %q, got %v", "a", doc.Anchors)
	}
}
