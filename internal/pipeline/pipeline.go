// Package pipeline runs a repository through scan, extraction, section
// building, budget admission and formatting, then writes the document.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"repoctx/internal/budget"
	"repoctx/internal/clock"
	"repoctx/internal/config"
	"repoctx/internal/extractor"
	"repoctx/internal/generator"
	"repoctx/internal/scanner"
	"repoctx/internal/tokenizer"
)

// Tokenizer is what the pipeline needs from a token counter.
type Tokenizer interface {
	budget.Counter
	Name() string
}

// Options carries the run's collaborators. Zero values fall back to the
// wall clock, a discarding logger, no progress output and cl100k_base.
type Options struct {
	Clock     clock.Clock
	Logger    *slog.Logger
	Progress  io.Writer
	Tokenizer Tokenizer
}

// Result describes a finished run.
type Result struct {
	Document   string
	OutputPath string              // absolute
	Sections   []generator.Section // admitted, in document order
	Built      int                 // sections before admission
	Usage      budget.Usage
	Scan       *scanner.Result
	Report     *Report
}

// Run executes one generation. Invalid configuration, scan failures,
// tokenizer initialisation and the final write are fatal; files that cannot
// be read or parsed only produce warnings.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts = withDefaults(opts)
	logger := opts.Logger

	outputPath, err := filepath.Abs(cfg.OutputFile)
	if err != nil {
		return nil, fmt.Errorf("resolve output path %s: %w", cfg.OutputFile, err)
	}
	report := NewReport(opts.Clock, cfg.RepoPath, outputPath)
	res := &Result{OutputPath: outputPath, Report: report}

	h := report.BeginStage(StageTokenizer)
	tok := opts.Tokenizer
	if tok == nil {
		t, err := tokenizer.New()
		if err != nil {
			report.EndStage(h, nil, err)
			return nil, err
		}
		tok = t
	}
	report.EndStage(h, nil, nil)

	h = report.BeginStage(StageScan)
	scan, err := scanner.New(cfg, logger).Scan(ctx)
	if err != nil {
		report.EndStage(h, nil, err)
		return nil, fmt.Errorf("scan %s: %w", cfg.RepoPath, err)
	}
	report.EndStage(h, map[string]float64{
		"files":   float64(len(scan.Files)),
		"skipped": float64(scan.Skipped),
		"bytes":   float64(scan.Structure.TotalSize),
	}, nil)
	if scan.Skipped > 0 {
		report.AddSignal("files_skipped", StageScan, "warning", "", fmt.Sprintf("%d files could not be read as text", scan.Skipped))
	}
	res.Scan = scan
	progress(opts.Progress, "🔍 Scanned %d files (%d skipped)", len(scan.Files), scan.Skipped)

	h = report.BeginStage(StageExtract)
	analyses, attempted, err := extract(ctx, scan, logger, report)
	if err != nil {
		report.EndStage(h, nil, err)
		return nil, err
	}
	report.EndStage(h, map[string]float64{
		"attempted": float64(attempted),
		"analysed":  float64(len(analyses)),
		"failed":    float64(attempted - len(analyses)),
	}, nil)
	progress(opts.Progress, "🧩 Extracted declarations from %d/%d source files", len(analyses), attempted)

	h = report.BeginStage(StageBuild)
	sections := generator.NewBuilder(generator.Options{IncludeDeps: cfg.IncludeDeps}).Build(scan, analyses)
	res.Built = len(sections)
	report.EndStage(h, map[string]float64{"sections": float64(len(sections))}, nil)
	progress(opts.Progress, "🧱 Built %d sections", len(sections))

	h = report.BeginStage(StagePrioritize)
	admitted := budget.Prioritize(tok, sections, cfg.MaxTokens)
	res.Sections = admitted
	res.Usage = budget.Tally(tok, admitted, cfg.MaxTokens)
	report.EndStage(h, map[string]float64{
		"admitted": float64(len(admitted)),
		"tokens":   float64(res.Usage.Total),
	}, nil)
	if n := len(admitted); n > 0 && admitted[n-1].Truncated {
		report.AddSignal("section_truncated", StagePrioritize, "info", "", admitted[n-1].Title)
	}
	if dropped := len(sections) - len(admitted); dropped > 0 {
		report.AddSignal("sections_dropped", StagePrioritize, "info", "", fmt.Sprintf("%d sections did not fit the budget", dropped))
	}
	progress(opts.Progress, "⚖️  Admitted %d/%d sections (%d/%d tokens)", len(admitted), len(sections), res.Usage.Total, cfg.MaxTokens)

	h = report.BeginStage(StageFormat)
	header := generator.Header{
		GeneratedAt: opts.Clock.Now(),
		Repository:  cfg.RepoPath,
		MaxTokens:   cfg.MaxTokens,
	}
	if cfg.PinTokenizer {
		header.Tokenizer = tok.Name()
	}
	res.Document = generator.Format(header, admitted)
	report.EndStage(h, map[string]float64{"bytes": float64(len(res.Document))}, nil)

	h = report.BeginStage(StageWrite)
	if err := WriteFileAtomic(outputPath, []byte(res.Document)); err != nil {
		report.EndStage(h, nil, err)
		return nil, err
	}
	report.EndStage(h, nil, nil)
	progress(opts.Progress, "💾 Wrote %s", cfg.OutputFile)

	report.Finalize(res.Built, len(admitted), res.Usage.Total, cfg.MaxTokens)
	return res, nil
}

// extract analyses every primary source file. Parse failures are logged and
// recorded; the file's source section is still built later.
func extract(ctx context.Context, scan *scanner.Result, logger *slog.Logger, report *Report) (map[string]*extractor.Declarations, int, error) {
	ext, err := extractor.NewExtractor(config.PrimaryLanguage)
	if err != nil {
		return nil, 0, err
	}
	analyses := map[string]*extractor.Declarations{}
	attempted := 0
	for _, f := range scan.Files {
		if f.Kind != scanner.PrimarySource {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, attempted, err
		}
		attempted++
		decls, err := ext.Extract(f.RelPath, []byte(f.Content))
		if err != nil {
			logger.Warn("skipping analysis", "path", f.RelPath, "error", err)
			report.AddSignal("parse_failed", StageExtract, "warning", f.RelPath, err.Error())
			continue
		}
		analyses[f.RelPath] = decls
	}
	return analyses, attempted, nil
}

func withDefaults(opts Options) Options {
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Progress == nil {
		opts.Progress = io.Discard
	}
	return opts
}

func progress(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}
