package doctree

// Document is a single topic document loaded for checking.
type Document struct {
	Path       string   // File path of the document
	Topic      string   // Name of the topic folder containing it
	Title      string   // Front matter title, or the topic name
	Lines      []string // Body lines, front matter removed
	LineOffset int      // Lines consumed by front matter; add to body line numbers

	// FrontMatterErr is set when a front matter block was present but
	// could not be decoded. The block is then kept in Lines.
	FrontMatterErr error

	Segments []Segment      // Headings and code blocks in source order
	Links    []Link         // Link destinations outside code
	Anchors  map[string]int // Fragment targets -> 1-based line
}

// Segment is a parsed structural unit. Implemented only by Heading and
// CodeBlock; callers switch on the concrete type.
type Segment interface {
	segment()
	// StartLine is the 1-based line within Document.Lines.
	StartLine() int
}

// Heading is an ATX heading.
type Heading struct {
	Level int
	Text  string
	Line  int
}

// CodeBlock is a fenced code block. Closed is false when input ended
// before the closing fence.
type CodeBlock struct {
	Language string
	Content  string
	Closed   bool
	Line     int
}

func (Heading) segment()   {}
func (CodeBlock) segment() {}

func (h Heading) StartLine() int   { return h.Line }
func (c CodeBlock) StartLine() int { return c.Line }

// Link is a link or image destination found in the document body.
type Link struct {
	Target string
	Line   int
}

// Headings returns the heading segments of a document in order.
func (d *Document) Headings() []Heading {
	var out []Heading
	for _, s := range d.Segments {
		if h, ok := s.(Heading); ok {
			out = append(out, h)
		}
	}
	return out
}

// FileLine converts a body line number to a line in the original file.
func (d *Document) FileLine(line int) int {
	if line <= 0 {
		return 0
	}
	return line + d.LineOffset
}
