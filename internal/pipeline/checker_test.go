package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dgallion1/docaudit/internal/config"
	"github.com/dgallion1/docaudit/internal/report"
	"github.com/dgallion1/docaudit/internal/validate"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if content == "" {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func findingRules(findings []validate.Finding) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Rule
	}
	return out
}

func sampleTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"Alpha/Readme.md":   "# Alpha\n\nSee [beta](../Beta/README.md#usage).\n",
		"Beta/README.md":    "# Beta\n## Usage\n```go\nx := 1\n```\n",
		"Broken/Readme.md":  "# Broken\n### Skip\n```\nunclosed\n",
		"Empty/notes.txt":   "not a topic document\n",
		".hidden/Readme.md": "# Hidden\n### Skip\n",
	})
}

func TestChecker_Check(t *testing.T) {
	root := sampleTree(t)

	var discovered int
	var checked atomic.Int32
	c := &Checker{
		WorkerCount:  4,
		OnDiscovered: func(total int) { discovered = total },
		OnDocument:   func(report.DocumentResult) { checked.Add(1) },
	}
	rep, err := c.Check(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if discovered != 4 {
		t.Errorf("expected 4 discovered topics, got %d", discovered)
	}
	if checked.Load() != 4 {
		t.Errorf("expected 4 document callbacks, got %d", checked.Load())
	}
	if rep.Pass {
		t.Error("expected report to fail")
	}
	if len(rep.Documents) != 4 {
		t.Fatalf("expected 4 documents, got %d", len(rep.Documents))
	}

	wantPaths := []string{
		filepath.Join(root, "Alpha", "Readme.md"),
		filepath.Join(root, "Beta", "README.md"),
		filepath.Join(root, "Broken", "Readme.md"),
		filepath.Join(root, "Empty"),
	}
	for i, want := range wantPaths {
		if rep.Documents[i].Path != want {
			t.Errorf("document %d: expected path %q, got %q", i, want, rep.Documents[i].Path)
		}
	}

	if n := len(rep.Documents[0].Findings); n != 0 {
		t.Errorf("expected Alpha clean, got %v", rep.Documents[0].Findings)
	}
	if n := len(rep.Documents[1].Findings); n != 0 {
		t.Errorf("expected Beta clean, got %v", rep.Documents[1].Findings)
	}

	got := findingRules(rep.Documents[2].Findings)
	want := []string{validate.RuleHeadingLevelSkip, validate.RuleUnclosedCodeBlock, validate.RuleMissingCodeLanguage}
	if len(got) != len(want) {
		t.Fatalf("expected Broken findings %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("finding %d: expected %q, got %q", i, want[i], got[i])
		}
	}

	empty := rep.Documents[3]
	if len(empty.Findings) != 1 || empty.Findings[0].Rule != validate.RuleMissingDocument {
		t.Errorf("expected missing-document finding for Empty, got %v", empty.Findings)
	}
	if rep.Summary.Failed != 2 {
		t.Errorf("expected 2 failed documents, got %d", rep.Summary.Failed)
	}
}

func TestChecker_OrderIndependentOfWorkers(t *testing.T) {
	root := sampleTree(t)
	serial, err := (&Checker{WorkerCount: 1}).Check(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parallel, err := (&Checker{WorkerCount: 8}).Check(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(serial.Documents) != len(parallel.Documents) {
		t.Fatalf("expected same document count, got %d and %d", len(serial.Documents), len(parallel.Documents))
	}
	for i := range serial.Documents {
		if serial.Documents[i].Path != parallel.Documents[i].Path {
			t.Errorf("document %d: %q vs %q", i, serial.Documents[i].Path, parallel.Documents[i].Path)
		}
	}
}

func TestChecker_BrokenReference(t *testing.T) {
	root := writeTree(t, map[string]string{
		"Gamma/Readme.md": "# Gamma\n\n[gone](../Nope/Readme.md)\n[self](#missing)\n",
	})
	rep, err := (&Checker{}).Check(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := findingRules(rep.Documents[0].Findings)
	if len(got) != 2 || got[0] != validate.RuleBrokenReference || got[1] != validate.RuleBrokenReference {
		t.Errorf("expected two broken-reference findings, got %v", got)
	}

	off := false
	rep, err = (&Checker{Rules: config.Rules{CheckReferences: &off}}).Check(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got = findingRules(rep.Documents[0].Findings)
	if len(got) != 1 {
		t.Errorf("expected only the in-document reference checked, got %v", got)
	}
}

func TestChecker_DisabledMissingDocumentDropsTopic(t *testing.T) {
	root := sampleTree(t)
	c := &Checker{Rules: config.Rules{Disable: []string{validate.RuleMissingDocument}}}
	rep, err := c.Check(context.Background(), root)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rep.Documents) != 3 {
		t.Errorf("expected 3 documents, got %d", len(rep.Documents))
	}
}

func TestChecker_MissingRoot(t *testing.T) {
	_, err := (&Checker{}).Check(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestChecker_Cancelled(t *testing.T) {
	root := sampleTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (&Checker{}).Check(ctx, root); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestChecker_EmptyRoot(t *testing.T) {
	rep, err := (&Checker{}).Check(context.Background(), t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rep.Pass || rep.Summary.Documents != 0 {
		t.Errorf("expected empty passing report, got %+v", rep)
	}
}
