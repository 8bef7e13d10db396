package report

import (
	"github.com/dgallion1/docaudit/internal/validate"
)

// DocumentResult is the outcome of checking one document. Err is set when
// the document could not be loaded; Findings are then ignored.
type DocumentResult struct {
	Path     string
	Findings []validate.Finding
	Err      error
}

// DocumentReport groups the findings of one document.
type DocumentReport struct {
	Path     string             `json:"path"`
	Pass     bool               `json:"pass"`
	Findings []validate.Finding `json:"findings"`
}

// Summary counts documents and findings by severity.
type Summary struct {
	Documents int `json:"documents"`
	Failed    int `json:"failed"`
	Errors    int `json:"errors"`
	Warnings  int `json:"warnings"`
	Infos     int `json:"infos"`
}

// Report is the aggregated outcome for a documentation set.
type Report struct {
	Pass      bool             `json:"pass"`
	Summary   Summary          `json:"summary"`
	Documents []DocumentReport `json:"documents"`
}

// Aggregate merges per-document results, keeping their order and grouping.
// The report passes when no document has an error-severity finding. A
// load failure becomes an unreadable-document error for that document.
func Aggregate(results []DocumentResult) Report {
	docs := make([]DocumentReport, 0, len(results))
	for _, res := range results {
		findings := res.Findings
		if res.Err != nil {
			findings = []validate.Finding{{
				Document: res.Path,
				Rule:     validate.RuleUnreadableDocument,
				Severity: validate.SeverityError,
				Message:  res.Err.Error(),
			}}
		}
		if findings == nil {
			findings = []validate.Finding{}
		}
		docs = append(docs, DocumentReport{Path: res.Path, Findings: findings})
	}
	return build(docs, validate.SeverityError)
}

// Strict returns a copy of r where warnings also fail documents.
func (r Report) Strict() Report {
	return build(r.Documents, validate.SeverityError, validate.SeverityWarning)
}

func build(docs []DocumentReport, failing ...validate.Severity) Report {
	fails := make(map[validate.Severity]bool, len(failing))
	for _, s := range failing {
		fails[s] = true
	}

	out := Report{Pass: true, Documents: make([]DocumentReport, len(docs))}
	for i, d := range docs {
		d.Pass = true
		for _, f := range d.Findings {
			switch f.Severity {
			case validate.SeverityError:
				out.Summary.Errors++
			case validate.SeverityWarning:
				out.Summary.Warnings++
			case validate.SeverityInfo:
				out.Summary.Infos++
			}
			if fails[f.Severity] {
				d.Pass = false
			}
		}
		if !d.Pass {
			out.Summary.Failed++
			out.Pass = false
		}
		out.Documents[i] = d
	}
	out.Summary.Documents = len(docs)
	return out
}

// Findings returns every finding in report order.
func (r Report) Findings() []validate.Finding {
	var out []validate.Finding
	for _, d := range r.Documents {
		out = append(out, d.Findings...)
	}
	return out
}
