// Package pipeline connects the log source, analyzer, and reporters into
// one batch run.
package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/crimson-sun/webhunt/internal/analyzer"
	"github.com/crimson-sun/webhunt/internal/logsource"
	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/report"
)

// Target pairs a reporter with its output path.
type Target struct {
	Reporter report.Reporter
	Path     string
}

// Pipeline runs the full read → analyze → report batch.
type Pipeline struct {
	source   *logsource.Source
	analyzer *analyzer.Analyzer
	targets  []Target
}

// New creates a Pipeline from the given components.
func New(source *logsource.Source, an *analyzer.Analyzer, targets []Target) *Pipeline {
	return &Pipeline{
		source:   source,
		analyzer: an,
		targets:  targets,
	}
}

// Run reads every log file under input, analyzes the merged event
// collection, and writes all configured reports. The analysis result is
// returned so callers can print their own summary.
func (p *Pipeline) Run(input string, topN int) (*model.AnalysisResult, error) {
	events, failures, filesRead, err := p.source.ReadAll(input)
	if err != nil {
		return nil, fmt.Errorf("pipeline read: %w", err)
	}
	slog.Info("logs parsed", "files", filesRead, "events", len(events), "failures", failures)

	result := p.analyzer.Analyze(events, topN)
	result.FilesRead = filesRead
	result.ParseFailures = failures

	for _, t := range p.targets {
		if err := t.Reporter.Generate(result, t.Path); err != nil {
			return nil, fmt.Errorf("pipeline report %s: %w", t.Path, err)
		}
		slog.Info("report written", "path", t.Path)
	}
	return result, nil
}
