package pipeline

import (
	"os"
	"sync"

	"github.com/dgallion1/docaudit/internal/loader"
	"github.com/dgallion1/docaudit/internal/parser"
)

// FileResolver answers link-target questions from the filesystem. Anchors
// of each target are read once per resolver.
type FileResolver struct {
	loader *loader.Loader

	mu      sync.Mutex
	anchors map[string]map[string]int
}

func NewFileResolver(l *loader.Loader) *FileResolver {
	return &FileResolver{
		loader:  l,
		anchors: make(map[string]map[string]int),
	}
}

func (r *FileResolver) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (r *FileResolver) Anchors(path string) (map[string]int, error) {
	r.mu.Lock()
	cached, ok := r.anchors[path]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	lines, err := r.loader.LoadLines(path)
	if err != nil {
		return nil, err
	}
	doc := loader.NewDocument(path, "", lines)
	_, anchors := parser.ExtractRefs(doc.Lines)

	r.mu.Lock()
	r.anchors[path] = anchors
	r.mu.Unlock()
	return anchors, nil
}
