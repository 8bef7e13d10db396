package validate

import "fmt"

// Severity classifies a Finding.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// ParseSeverity accepts "error", "warning" or "info".
func ParseSeverity(s string) (Severity, error) {
	switch Severity(s) {
	case SeverityError, SeverityWarning, SeverityInfo:
		return Severity(s), nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Rule names.
const (
	RuleUnclosedCodeBlock   = "unclosed-code-block"
	RuleEmptyHeading        = "empty-heading"
	RuleDuplicateHeading    = "duplicate-heading"
	RuleHeadingLevelSkip    = "heading-level-skip"
	RuleMissingHeading      = "missing-heading"
	RuleMissingCodeLanguage = "missing-code-language"
	RuleBrokenReference     = "broken-reference"
	RuleInvalidFrontMatter  = "invalid-front-matter"

	// Produced outside Validate, for documents that never reached it.
	RuleMissingDocument    = "missing-document"
	RuleUnreadableDocument = "unreadable-document"
)

// DefaultSeverities maps every rule to its built-in severity.
var DefaultSeverities = map[string]Severity{
	RuleUnclosedCodeBlock:   SeverityError,
	RuleEmptyHeading:        SeverityError,
	RuleDuplicateHeading:    SeverityWarning,
	RuleHeadingLevelSkip:    SeverityWarning,
	RuleMissingHeading:      SeverityWarning,
	RuleMissingCodeLanguage: SeverityInfo,
	RuleBrokenReference:     SeverityError,
	RuleInvalidFrontMatter:  SeverityWarning,
	RuleMissingDocument:     SeverityError,
	RuleUnreadableDocument:  SeverityError,
}

// Finding is a single validation result for one document.
type Finding struct {
	Document string   `json:"document"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line,omitempty"`
}

func (f Finding) String() string {
	if f.Line > 0 {
		return fmt.Sprintf("%s:%d: %s [%s] %s", f.Document, f.Line, f.Severity, f.Rule, f.Message)
	}
	return fmt.Sprintf("%s: %s [%s] %s", f.Document, f.Severity, f.Rule, f.Message)
}
