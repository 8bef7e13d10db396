package loader

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultDocumentNames are tried in order when no names are configured.
var DefaultDocumentNames = []string{"Readme.md", "README.md", "index.md"}

// Topic is one folder under the documentation root.
type Topic struct {
	Name string // Folder name
	Dir  string // Folder path
	Path string // Document path; empty when the folder has no document
	Err  error  // Set when the folder itself could not be read
}

// DiscoverOptions filters which topic folders are visited.
type DiscoverOptions struct {
	DocumentNames []string // Candidate file names, first match wins
	Include       []string // Glob patterns on folder names; empty means all
	Exclude       []string // Glob patterns on folder names
}

// Discover lists the topic folders directly under root, sorted by name.
// Hidden folders are skipped.
func Discover(root string, opts DiscoverOptions) ([]Topic, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, &IOError{Path: root, Err: err}
	}

	names := opts.DocumentNames
	if len(names) == 0 {
		names = DefaultDocumentNames
	}

	var topics []Topic
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if !selected(e.Name(), opts.Include, opts.Exclude) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		docPath, err := findDocument(dir, names)
		topics = append(topics, Topic{Name: e.Name(), Dir: dir, Path: docPath, Err: err})
	}

	sort.Slice(topics, func(i, j int) bool { return topics[i].Name < topics[j].Name })
	return topics, nil
}

// findDocument returns the first file in dir matching one of names,
// compared case-insensitively.
func findDocument(dir string, names []string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", &IOError{Path: dir, Err: err}
	}
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		lower := strings.ToLower(e.Name())
		if _, dup := files[lower]; !dup {
			files[lower] = e.Name()
		}
	}
	for _, n := range names {
		if actual, ok := files[strings.ToLower(n)]; ok {
			return filepath.Join(dir, actual), nil
		}
	}
	return "", nil
}

func selected(name string, include, exclude []string) bool {
	for _, pattern := range exclude {
		if ok, _ := path.Match(pattern, name); ok {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, pattern := range include {
		if ok, _ := path.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
