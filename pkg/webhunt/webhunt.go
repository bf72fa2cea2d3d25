package webhunt

import (
	"github.com/crimson-sun/webhunt/internal/analyzer"
	"github.com/crimson-sun/webhunt/internal/logsource"
	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/parser"
	"github.com/crimson-sun/webhunt/internal/signature"
)

// Re-exported result types. The internal model package owns the
// definitions; callers only ever read them.
type (
	Event            = model.Event
	Timestamp        = model.Timestamp
	AddressProfile   = model.AddressProfile
	EndpointExposure = model.EndpointExposure
	ToolSighting     = model.ToolSighting
	AnalysisResult   = model.AnalysisResult
)

// Analyze reads every log file under path (a single file or a directory,
// gzip transparently handled) and returns the full analysis result.
func Analyze(path string, opts ...Option) (*AnalysisResult, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	source := logsource.New(parser.New(signature.New()), o.workers)
	events, failures, filesRead, err := source.ReadAll(path)
	if err != nil {
		return nil, err
	}

	result := analyzer.New(o.minRequests).Analyze(events, o.topN)
	result.FilesRead = filesRead
	result.ParseFailures = failures
	return result, nil
}

// AnalyzeEvents runs the analysis over an already-parsed event collection.
// Use this when events come from somewhere other than the filesystem.
func AnalyzeEvents(events []Event, opts ...Option) *AnalysisResult {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return analyzer.New(o.minRequests).Analyze(events, o.topN)
}

// defaultParser backs ParseLine; the catalog is safe for concurrent use.
var defaultParser = parser.New(signature.New())

// ParseLine parses one combined-format log line, annotating it with
// detected attack tags and tool classification. The second return is false
// when the line does not match the combined-log grammar.
func ParseLine(line string) (Event, bool) {
	return defaultParser.ParseLine(line)
}
