// Package cli implements the docaudit command line.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/dgallion1/docaudit/internal/config"
	"github.com/dgallion1/docaudit/internal/loader"
	"github.com/dgallion1/docaudit/internal/pipeline"
	"github.com/dgallion1/docaudit/internal/report"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitFail  = 1
	ExitUsage = 2
)

// Run checks the documentation root named in args and writes the report to
// stdout. Diagnostics and progress go to stderr.
func Run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("docaudit", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: docaudit [flags] [root]")
		fs.PrintDefaults()
	}
	rulesPath := fs.String("config", "", "Path to rules file (default: <root>/"+config.RulesFileName+")")
	format := fs.String("format", "text", "Output format: text or json")
	strict := fs.Bool("strict", false, "Fail on warnings as well as errors")
	noColor := fs.Bool("no-color", false, "Disable colored output")
	showProgress := fs.Bool("progress", false, "Show a progress bar on stderr")
	workers := fs.Int("workers", 8, "Documents checked in parallel")
	verbose := fs.Bool("v", false, "Verbose output and debug logging")
	pdftotext := fs.Bool("pdftotext", false, "Fall back to the pdftotext binary for unreadable PDFs")
	if err := fs.Parse(args); err != nil {
		return ExitUsage
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return ExitUsage
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "Unknown format %q\n", *format)
		return ExitUsage
	}

	root := "."
	if fs.NArg() == 1 {
		root = fs.Arg(0)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	rules, err := config.LoadRules(config.FindRules(root, *rulesPath))
	if err != nil {
		fmt.Fprintf(stderr, "Failed to load rules: %v\n", err)
		return ExitUsage
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	checker := &pipeline.Checker{
		Loader:      &loader.Loader{PDFFallbackPdftotext: *pdftotext},
		Rules:       rules,
		WorkerCount: *workers,
		Log:         log,
	}
	var bar *progressbar.ProgressBar
	if *showProgress {
		checker.OnDiscovered = func(total int) {
			if total > 0 {
				bar = newProgressBar(total, stderr)
			}
		}
		checker.OnDocument = func(report.DocumentResult) {
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}

	rep, err := checker.Check(ctx, root)
	if bar != nil {
		_ = bar.Finish()
		fmt.Fprintln(stderr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Check failed: %v\n", err)
		return ExitUsage
	}
	if *strict || rules.Strict {
		rep = rep.Strict()
	}

	switch *format {
	case "json":
		err = report.WriteJSON(stdout, rep)
	default:
		err = report.WriteText(stdout, rep, !*noColor && !color.NoColor, *verbose)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Failed to write report: %v\n", err)
		return ExitUsage
	}

	if !rep.Pass {
		return ExitFail
	}
	return ExitOK
}

func newProgressBar(total int, w io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(color.BlueString("checking")),
		progressbar.OptionSetItsString("docs"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
