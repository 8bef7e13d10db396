package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docaudit/internal/validate"
)

func finding(doc, rule string, sev validate.Severity, line int) validate.Finding {
	return validate.Finding{Document: doc, Rule: rule, Severity: sev, Message: rule + " message", Line: line}
}

func TestAggregate_CleanAndErroring(t *testing.T) {
	results := []DocumentResult{
		{Path: "Clean/Readme.md"},
		{Path: "Broken/Readme.md", Findings: []validate.Finding{
			finding("Broken/Readme.md", validate.RuleUnclosedCodeBlock, validate.SeverityError, 4),
			finding("Broken/Readme.md", validate.RuleHeadingLevelSkip, validate.SeverityWarning, 2),
		}},
	}
	r := Aggregate(results)

	if r.Pass {
		t.Error("expected overall pass=false")
	}
	if len(r.Documents) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(r.Documents))
	}
	if r.Documents[0].Path != "Clean/Readme.md" || !r.Documents[0].Pass {
		t.Errorf("expected clean document first and passing, got %+v", r.Documents[0])
	}
	if len(r.Documents[0].Findings) != 0 {
		t.Errorf("expected no findings for clean document, got %v", r.Documents[0].Findings)
	}
	broken := r.Documents[1]
	if broken.Pass {
		t.Error("expected erroring document to fail")
	}
	if len(broken.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(broken.Findings))
	}
	if broken.Findings[0].Rule != validate.RuleUnclosedCodeBlock || broken.Findings[1].Rule != validate.RuleHeadingLevelSkip {
		t.Errorf("expected original finding order, got %v", broken.Findings)
	}
	want := Summary{Documents: 2, Failed: 1, Errors: 1, Warnings: 1}
	if r.Summary != want {
		t.Errorf("expected summary %+v, got %+v", want, r.Summary)
	}
}

func TestAggregate_WarningsPass(t *testing.T) {
	r := Aggregate([]DocumentResult{{Path: "A/Readme.md", Findings: []validate.Finding{
		finding("A/Readme.md", validate.RuleDuplicateHeading, validate.SeverityWarning, 5),
		finding("A/Readme.md", validate.RuleMissingCodeLanguage, validate.SeverityInfo, 7),
	}}})
	if !r.Pass {
		t.Error("expected warnings and infos to pass")
	}

	strict := r.Strict()
	if strict.Pass {
		t.Error("expected strict report to fail on warnings")
	}
	if strict.Summary.Failed != 1 {
		t.Errorf("expected 1 failed document in strict mode, got %d", strict.Summary.Failed)
	}
	if !r.Pass {
		t.Error("expected Strict to leave the original report untouched")
	}
}

func TestAggregate_LoadError(t *testing.T) {
	r := Aggregate([]DocumentResult{
		{Path: "Gone/Readme.md", Err: errors.New("read Gone/Readme.md: permission denied")},
		{Path: "Fine/Readme.md"},
	})
	if r.Pass {
		t.Error("expected unreadable document to fail the report")
	}
	got := r.Documents[0].Findings
	if len(got) != 1 || got[0].Rule != validate.RuleUnreadableDocument {
		t.Fatalf("expected unreadable-document finding, got %v", got)
	}
	if !r.Documents[1].Pass {
		t.Error("expected other documents to be unaffected")
	}
}

func TestAggregate_Empty(t *testing.T) {
	r := Aggregate(nil)
	if !r.Pass {
		t.Error("expected empty set to pass")
	}
	if r.Summary.Documents != 0 {
		t.Errorf("expected 0 documents, got %d", r.Summary.Documents)
	}
}

func TestReport_Findings(t *testing.T) {
	r := Aggregate([]DocumentResult{
		{Path: "A", Findings: []validate.Finding{finding("A", "r1", validate.SeverityInfo, 1)}},
		{Path: "B", Findings: []validate.Finding{finding("B", "r2", validate.SeverityInfo, 1), finding("B", "r3", validate.SeverityInfo, 2)}},
	})
	all := r.Findings()
	if len(all) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(all))
	}
	if all[0].Document != "A" || all[2].Rule != "r3" {
		t.Errorf("unexpected order: %v", all)
	}
}

func TestWriteJSON(t *testing.T) {
	r := Aggregate([]DocumentResult{{Path: "A/Readme.md"}})
	var buf bytes.Buffer
	if err := WriteJSON(&buf, r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded["pass"] != true {
		t.Errorf("expected pass=true in json, got %v", decoded["pass"])
	}
	docs, ok := decoded["documents"].([]any)
	if !ok || len(docs) != 1 {
		t.Fatalf("expected 1 document in json, got %v", decoded["documents"])
	}
	findings := docs[0].(map[string]any)["findings"]
	if findings == nil {
		t.Error("expected findings to encode as an empty array, got null")
	}
}

func TestWriteText(t *testing.T) {
	r := Aggregate([]DocumentResult{
		{Path: "Clean/Readme.md"},
		{Path: "Broken/Readme.md", Findings: []validate.Finding{
			finding("Broken/Readme.md", validate.RuleUnclosedCodeBlock, validate.SeverityError, 4),
			finding("Broken/Readme.md", validate.RuleMissingHeading, validate.SeverityWarning, 0),
		}},
	})

	var buf bytes.Buffer
	if err := WriteText(&buf, r, false, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Broken/Readme.md\n",
		"      4  error  unclosed-code-block message [unclosed-code-block]",
		"      -  warning  missing-heading message [missing-heading]",
		"FAIL: 2 documents, 1 failed, 1 error, 1 warning, 0 info",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Clean/Readme.md") {
		t.Errorf("expected clean document hidden without verbose, got:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Errorf("expected no ANSI codes with color disabled, got %q", out)
	}

	buf.Reset()
	if err := WriteText(&buf, r, false, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "Clean/Readme.md ok") {
		t.Errorf("expected clean document listed in verbose mode, got:\n%s", buf.String())
	}
}
