package validate

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docaudit/internal/doctree"
)

// Resolver answers questions about files a document links to.
type Resolver interface {
	// Exists reports whether a file or directory exists at path.
	Exists(path string) bool
	// Anchors returns the fragment anchors defined by the document at path.
	Anchors(path string) (map[string]int, error)
}

// Options tunes a validation run. The zero value runs every rule at its
// default severity and skips cross-file reference checks.
type Options struct {
	Severities map[string]Severity // Per-rule severity overrides
	Disabled   map[string]bool     // Rules that never report
	Resolver   Resolver            // Needed for relative link checks
	Root       string              // Base for root-relative links ("/x.md")
}

// Severity returns the effective severity of rule under these options.
func (o Options) Severity(rule string) Severity {
	if s, ok := o.Severities[rule]; ok {
		return s
	}
	if s, ok := DefaultSeverities[rule]; ok {
		return s
	}
	return SeverityError
}

// Emit builds a finding for a rule checked outside Validate, such as a
// topic folder with no document. ok is false when the rule is disabled.
func (o Options) Emit(document, rule, message string) (f Finding, ok bool) {
	if o.Disabled[rule] {
		return Finding{}, false
	}
	return Finding{Document: document, Rule: rule, Severity: o.Severity(rule), Message: message}, true
}

// Validate runs every enabled rule over doc and returns the findings in
// document order. Rules never stop each other; a malformed document
// produces findings, not errors.
func Validate(doc *doctree.Document, opts Options) []Finding {
	v := &validator{doc: doc, opts: opts}

	if doc.FrontMatterErr != nil {
		v.report(RuleInvalidFrontMatter, 1, "%v", doc.FrontMatterErr)
	}

	var (
		prevLevel int
		headings  int
		seen      = make(map[headingKey]int)
	)
	for _, seg := range doc.Segments {
		switch s := seg.(type) {
		case doctree.Heading:
			headings++
			v.checkHeading(s, prevLevel, seen)
			prevLevel = s.Level
		case doctree.CodeBlock:
			v.checkCodeBlock(s)
		default:
			panic(fmt.Sprintf("validate: unhandled segment type %T", seg))
		}
	}

	if headings == 0 {
		v.report(RuleMissingHeading, 0, "document has no headings")
	}

	for _, link := range doc.Links {
		v.checkLink(link)
	}

	return v.findings
}

type headingKey struct {
	level int
	text  string
}

type validator struct {
	doc      *doctree.Document
	opts     Options
	findings []Finding
}

func (v *validator) report(rule string, line int, format string, args ...any) {
	if v.opts.Disabled[rule] {
		return
	}
	v.findings = append(v.findings, Finding{
		Document: v.doc.Path,
		Rule:     rule,
		Severity: v.opts.Severity(rule),
		Message:  fmt.Sprintf(format, args...),
		Line:     v.doc.FileLine(line),
	})
}

func (v *validator) checkHeading(h doctree.Heading, prevLevel int, seen map[headingKey]int) {
	if strings.TrimSpace(h.Text) == "" {
		v.report(RuleEmptyHeading, h.Line, "level %d heading has no text", h.Level)
	} else {
		key := headingKey{level: h.Level, text: h.Text}
		if first, dup := seen[key]; dup {
			v.report(RuleDuplicateHeading, h.Line, "duplicate heading %q (first at line %d)", h.Text, v.doc.FileLine(first))
		} else {
			seen[key] = h.Line
		}
	}

	if prevLevel > 0 && h.Level > prevLevel+1 {
		v.report(RuleHeadingLevelSkip, h.Line, "heading %q jumps from level %d to %d", h.Text, prevLevel, h.Level)
	}
}

func (v *validator) checkCodeBlock(cb doctree.CodeBlock) {
	if !cb.Closed {
		v.report(RuleUnclosedCodeBlock, cb.Line, "code block opened here is never closed")
	}
	if cb.Language == "" {
		v.report(RuleMissingCodeLanguage, cb.Line, "code block has no language tag")
	}
}

func (v *validator) checkLink(link doctree.Link) {
	target := strings.TrimSpace(link.Target)
	if target == "" {
		return
	}
	u, err := url.Parse(target)
	if err != nil {
		v.report(RuleBrokenReference, link.Line, "malformed link %q", target)
		return
	}
	if u.Scheme != "" || u.Host != "" {
		return
	}

	if u.Path == "" {
		if u.Fragment != "" && !hasAnchor(v.doc.Anchors, u.Fragment) {
			v.report(RuleBrokenReference, link.Line, "no section #%s in this document", u.Fragment)
		}
		return
	}

	r := v.opts.Resolver
	if r == nil {
		return
	}

	var path string
	if strings.HasPrefix(u.Path, "/") {
		if v.opts.Root == "" {
			return
		}
		path = filepath.Join(v.opts.Root, filepath.FromSlash(u.Path))
	} else {
		path = filepath.Join(filepath.Dir(v.doc.Path), filepath.FromSlash(u.Path))
	}

	if !r.Exists(path) {
		v.report(RuleBrokenReference, link.Line, "link target %q does not exist", u.Path)
		return
	}
	if u.Fragment == "" || !isMarkdown(path) {
		return
	}
	anchors, err := r.Anchors(path)
	if err != nil {
		v.report(RuleBrokenReference, link.Line, "cannot read link target %q: %v", u.Path, err)
		return
	}
	if !hasAnchor(anchors, u.Fragment) {
		v.report(RuleBrokenReference, link.Line, "no section #%s in %s", u.Fragment, u.Path)
	}
}

func hasAnchor(anchors map[string]int, fragment string) bool {
	if _, ok := anchors[fragment]; ok {
		return true
	}
	_, ok := anchors[strings.ToLower(fragment)]
	return ok
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
