package loader

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/fumiama/go-docx"
)

func TestDocxHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"heading 3", 3},
		{"Heading 6", 6},
		{"Heading7", 0},
		{"Heading10", 0},
		{"Title", 0},
		{"", 0},
	}
	for _, tt := range tests {
		para := &docx.Paragraph{Properties: &docx.ParagraphProperties{Style: &docx.Style{Val: tt.style}}}
		if got := docxHeadingLevel(para); got != tt.want {
			t.Errorf("docxHeadingLevel(%q): expected %d, got %d", tt.style, tt.want, got)
		}
	}

	if got := docxHeadingLevel(&docx.Paragraph{}); got != 0 {
		t.Errorf("expected 0 for paragraph without properties, got %d", got)
	}
}

func TestDOCXReader_ReadLines(t *testing.T) {
	doc := docx.New().WithDefaultTheme()
	doc.AddParagraph().Style("Heading1").AddText("Guide")
	doc.AddParagraph().AddText("Intro text.")
	doc.AddParagraph()
	doc.AddParagraph().Style("Heading 3").AddText("Details")

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}

	lines, err := (&DOCXReader{}).ReadLines(&buf, "guide.docx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"# Guide", "", "Intro text.", "", "### Details"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("expected %q, got %q", want, lines)
	}
}

func TestDOCXReader_InvalidInput(t *testing.T) {
	_, err := (&DOCXReader{}).ReadLines(strings.NewReader("not a zip"), "broken.docx")
	if err == nil {
		t.Fatal("expected error for non-docx input")
	}
}
