package parser

import (
	"strings"

	"github.com/dgallion1/docaudit/internal/doctree"
)

// ParseLines splits document lines into headings and fenced code blocks
// in a single forward pass. Lines that are neither are ignored. A fence
// still open at end of input yields a CodeBlock with Closed set to false.
func ParseLines(lines []string) []doctree.Segment {
	var (
		segments []doctree.Segment
		open     *doctree.CodeBlock
		fence    byte
		fenceLen int
		content  []string
	)

	for i, line := range lines {
		lineNo := i + 1

		if open != nil {
			if isClosingFence(line, fence, fenceLen) {
				open.Content = strings.Join(content, "\n")
				open.Closed = true
				segments = append(segments, *open)
				open, content = nil, nil
				continue
			}
			content = append(content, line)
			continue
		}

		if ch, n, info, ok := openingFence(line); ok {
			open = &doctree.CodeBlock{Language: firstWord(info), Line: lineNo}
			fence, fenceLen = ch, n
			continue
		}

		if level, text, ok := atxHeading(line); ok {
			segments = append(segments, doctree.Heading{Level: level, Text: text, Line: lineNo})
		}
	}

	if open != nil {
		open.Content = strings.Join(content, "\n")
		segments = append(segments, *open)
	}
	return segments
}

// trimIndent strips up to three leading spaces. ok is false when the line
// is indented further, which makes it indented code rather than a marker.
func trimIndent(line string) (string, bool) {
	s := strings.TrimLeft(line, " ")
	return s, len(line)-len(s) <= 3
}

// openingFence reports whether line opens a fenced block, returning the
// fence character, its run length and the info string.
func openingFence(line string) (byte, int, string, bool) {
	s, ok := trimIndent(line)
	if !ok || len(s) < 3 || (s[0] != '`' && s[0] != '~') {
		return 0, 0, "", false
	}
	ch := s[0]
	n := 0
	for n < len(s) && s[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, "", false
	}
	info := strings.TrimSpace(s[n:])
	if ch == '`' && strings.Contains(info, "`") {
		return 0, 0, "", false
	}
	return ch, n, info, true
}

// isClosingFence reports whether line consists solely of a fence made of
// ch at least n characters long.
func isClosingFence(line string, ch byte, n int) bool {
	s, ok := trimIndent(line)
	if !ok {
		return false
	}
	s = strings.TrimRight(s, " \t")
	if len(s) < n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != ch {
			return false
		}
	}
	return true
}

// atxHeading parses a "#"-prefixed heading line.
func atxHeading(line string) (int, string, bool) {
	s, ok := trimIndent(line)
	if !ok {
		return 0, "", false
	}
	level := 0
	for level < len(s) && s[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return 0, "", false
	}
	rest := s[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}

	text := strings.TrimSpace(rest)
	// Optional closing sequence: "## Title ##".
	if stripped := strings.TrimRight(text, "#"); stripped != text {
		switch {
		case stripped == "":
			text = ""
		case strings.HasSuffix(stripped, " ") || strings.HasSuffix(stripped, "\t"):
			text = strings.TrimSpace(stripped)
		}
	}
	return level, text, true
}

func firstWord(s string) string {
	if f := strings.Fields(s); len(f) > 0 {
		return f[0]
	}
	return ""
}
