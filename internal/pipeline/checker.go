package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgallion1/docaudit/internal/config"
	"github.com/dgallion1/docaudit/internal/loader"
	"github.com/dgallion1/docaudit/internal/parser"
	"github.com/dgallion1/docaudit/internal/report"
	"github.com/dgallion1/docaudit/internal/validate"
)

// Checker runs the full load, parse and validate pass over a documentation
// root.
type Checker struct {
	Loader      *loader.Loader
	Rules       config.Rules
	WorkerCount int
	Log         *slog.Logger

	// OnDiscovered is called once with the number of topics found.
	OnDiscovered func(total int)
	// OnDocument is called after each topic is checked. Calls are
	// serialized but arrive in completion order.
	OnDocument func(res report.DocumentResult)
}

// Check validates every topic document under root. Results keep discovery
// order regardless of which worker finished first. An error is returned
// only when root itself cannot be listed or ctx is cancelled.
func (c *Checker) Check(ctx context.Context, root string) (report.Report, error) {
	log := c.logger().With("root", root)

	topics, err := loader.Discover(root, c.Rules.DiscoverOptions())
	if err != nil {
		return report.Report{}, fmt.Errorf("discover topics: %w", err)
	}
	log.Info("discovered topics", "topics", len(topics))
	if c.OnDiscovered != nil {
		c.OnDiscovered(len(topics))
	}

	opts := c.Rules.ValidateOptions()
	if c.Rules.ReferencesEnabled() {
		opts.Resolver = NewFileResolver(c.loader())
		opts.Root = root
	}

	results := make([]report.DocumentResult, len(topics))
	keep := make([]bool, len(topics))
	sem := make(chan struct{}, c.workers())
	var (
		wg     sync.WaitGroup
		hookMu sync.Mutex
	)

schedule:
	for i, t := range topics {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			break schedule
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			res, ok := c.checkTopic(t, opts, log)
			results[i], keep[i] = res, ok
			if ok && c.OnDocument != nil {
				hookMu.Lock()
				c.OnDocument(res)
				hookMu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return report.Report{}, err
	}

	kept := make([]report.DocumentResult, 0, len(results))
	for i, res := range results {
		if keep[i] {
			kept = append(kept, res)
		}
	}
	rep := report.Aggregate(kept)
	log.Info("check complete", "documents", rep.Summary.Documents, "failed", rep.Summary.Failed, "pass", rep.Pass)
	return rep, nil
}

func (c *Checker) checkTopic(t loader.Topic, opts validate.Options, log *slog.Logger) (report.DocumentResult, bool) {
	switch {
	case t.Err != nil:
		log.Warn("topic folder unreadable", "topic", t.Name, "error", t.Err)
		return report.DocumentResult{Path: t.Dir, Err: t.Err}, true
	case t.Path == "":
		f, ok := opts.Emit(t.Dir, validate.RuleMissingDocument, fmt.Sprintf("topic %q has no document", t.Name))
		if !ok {
			return report.DocumentResult{}, false
		}
		return report.DocumentResult{Path: t.Dir, Findings: []validate.Finding{f}}, true
	}
	res := CheckDocument(c.loader(), t.Path, t.Name, opts)
	if res.Err != nil {
		log.Warn("document unreadable", "document", t.Path, "error", res.Err)
	} else {
		log.Debug("document checked", "document", t.Path, "findings", len(res.Findings))
	}
	return res, true
}

// CheckDocument loads, parses and validates a single document.
func CheckDocument(l *loader.Loader, path, topic string, opts validate.Options) report.DocumentResult {
	doc, err := l.Load(path, topic)
	if err != nil {
		return report.DocumentResult{Path: path, Err: err}
	}
	parser.Parse(doc)
	return report.DocumentResult{Path: path, Findings: validate.Validate(doc, opts)}
}

func (c *Checker) loader() *loader.Loader {
	if c.Loader == nil {
		return &loader.Loader{}
	}
	return c.Loader
}

func (c *Checker) logger() *slog.Logger {
	if c.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.Log
}

func (c *Checker) workers() int {
	if c.WorkerCount <= 0 {
		return 1
	}
	return c.WorkerCount
}
