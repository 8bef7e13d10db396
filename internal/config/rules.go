package config

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docaudit/internal/loader"
	"github.com/dgallion1/docaudit/internal/validate"
)

// RulesFileName is looked up in the checked root when no path is given.
const RulesFileName = ".docaudit.yaml"

// Rules is the per-documentation-set configuration file.
type Rules struct {
	DocumentNames   []string          `yaml:"document_names"`
	Include         []string          `yaml:"include"`
	Exclude         []string          `yaml:"exclude"`
	CheckReferences *bool             `yaml:"check_references"`
	Strict          bool              `yaml:"strict"`
	Severity        map[string]string `yaml:"severity"`
	Disable         []string          `yaml:"disable"`
}

// LoadRules reads rules from path. An empty path yields the defaults.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return Rules{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("read rules file: %w", err)
	}
	var r Rules
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, fmt.Errorf("invalid rules file %s: %w", path, err)
	}
	return r, nil
}

// FindRules returns explicit when set, else the rules file inside root if
// one exists, else "".
func FindRules(root, explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidate := filepath.Join(root, RulesFileName)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func (r Rules) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.DocumentNames, validation.Each(validation.Required)),
		validation.Field(&r.Include, validation.Each(validation.By(validGlob))),
		validation.Field(&r.Exclude, validation.Each(validation.By(validGlob))),
		validation.Field(&r.Severity, validation.By(validSeverities)),
		validation.Field(&r.Disable, validation.Each(validation.In(ruleNames()...))),
	)
}

// ReferencesEnabled reports whether cross-file links are checked.
func (r Rules) ReferencesEnabled() bool {
	return r.CheckReferences == nil || *r.CheckReferences
}

// ValidateOptions converts the rules into validator options. The caller
// supplies the resolver.
func (r Rules) ValidateOptions() validate.Options {
	opts := validate.Options{
		Severities: make(map[string]validate.Severity, len(r.Severity)),
		Disabled:   make(map[string]bool, len(r.Disable)),
	}
	for rule, s := range r.Severity {
		if sev, err := validate.ParseSeverity(s); err == nil {
			opts.Severities[rule] = sev
		}
	}
	for _, rule := range r.Disable {
		opts.Disabled[rule] = true
	}
	return opts
}

// DiscoverOptions converts the rules into topic discovery options.
func (r Rules) DiscoverOptions() loader.DiscoverOptions {
	return loader.DiscoverOptions{
		DocumentNames: r.DocumentNames,
		Include:       r.Include,
		Exclude:       r.Exclude,
	}
}

func ruleNames() []any {
	names := make([]string, 0, len(validate.DefaultSeverities))
	for name := range validate.DefaultSeverities {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]any, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

func validGlob(value any) error {
	s, _ := value.(string)
	if _, err := path.Match(s, ""); err != nil {
		return fmt.Errorf("bad pattern %q", s)
	}
	return nil
}

func validSeverities(value any) error {
	m, _ := value.(map[string]string)
	for rule, s := range m {
		if _, known := validate.DefaultSeverities[rule]; !known {
			return fmt.Errorf("unknown rule %q", rule)
		}
		if _, err := validate.ParseSeverity(s); err != nil {
			return fmt.Errorf("rule %q: %w", rule, err)
		}
	}
	return nil
}
