package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docaudit/internal/doctree"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// IOError reports a document that is missing or unreadable.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// LineReader converts raw document bytes into Markdown-equivalent lines.
type LineReader interface {
	ReadLines(r io.Reader, filename string) ([]string, error)
}

// SupportedExtensions lists file extensions the loader can read.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// Loader reads topic documents from disk. The zero value is ready to use.
type Loader struct {
	// PDFFallbackPdftotext enables the external pdftotext binary when the
	// Go PDF reader fails.
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate reader for a filename.
func (l *Loader) ForFile(filename string) (LineReader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".txt":
		return &TextReader{}, nil
	case ".html", ".htm":
		return &HTMLReader{}, nil
	case ".pdf":
		return &PDFReader{FallbackPdftotext: l.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXReader{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// LoadLines reads the file at path and returns its content as lines.
// Every call reads from disk.
func (l *Loader) LoadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()
	return l.ReadLines(f, path)
}

// ReadLines converts already-open content named filename into lines.
func (l *Loader) ReadLines(r io.Reader, filename string) ([]string, error) {
	lr, err := l.ForFile(filename)
	if err != nil {
		return nil, &IOError{Path: filename, Err: err}
	}
	lines, err := lr.ReadLines(r, filepath.Base(filename))
	if err != nil {
		return nil, &IOError{Path: filename, Err: err}
	}
	return lines, nil
}

// Load reads a topic document and strips its front matter.
func (l *Loader) Load(path, topic string) (*doctree.Document, error) {
	lines, err := l.LoadLines(path)
	if err != nil {
		return nil, err
	}
	return NewDocument(path, topic, lines), nil
}

// NewDocument builds a Document from lines that were read elsewhere.
func NewDocument(path, topic string, lines []string) *doctree.Document {
	doc := &doctree.Document{
		Path:  path,
		Topic: topic,
		Title: topic,
		Lines: lines,
	}
	applyFrontMatter(doc)
	return doc
}
