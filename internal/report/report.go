// Package report defines the renderer interface and the shared result
// projections. Reporters serialize an AnalysisResult verbatim — no score
// or classification is ever re-derived here.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crimson-sun/webhunt/internal/model"
)

// Reporter renders an analysis result to a file.
type Reporter interface {
	Generate(result *model.AnalysisResult, path string) error
}

// MaxEventDump caps the raw event dump in serialized reports. The result's
// internal event collection is never truncated; this is presentation only.
const MaxEventDump = 20000

// Summary is the compact overview block shared by the JSON and HTML
// renderers.
type Summary struct {
	RunID                 string               `json:"run_id"`
	FilesRead             int                  `json:"files_read"`
	ParsedEvents          int                  `json:"parsed_events"`
	ParseFailures         int                  `json:"parse_failures"`
	TopSuspiciousIPs      []string             `json:"top_suspicious_ips"`
	ToolsByFirstSeen      []model.ToolSighting `json:"tools_by_first_seen"`
	TopSQLiEndpoints      []string             `json:"top_sqli_endpoints"`
	InferredScrapeSection string               `json:"inferred_scrape_section,omitempty"`
}

// BuildSummary projects a result into its summary block.
func BuildSummary(r *model.AnalysisResult) Summary {
	ips := make([]string, 0, len(r.TopAddresses))
	for _, p := range r.TopAddresses {
		ips = append(ips, p.Address)
	}

	endpoints := r.Endpoints
	if len(endpoints) > 10 {
		endpoints = endpoints[:10]
	}
	names := make([]string, 0, len(endpoints))
	for _, ep := range endpoints {
		names = append(names, ep.Endpoint)
	}

	return Summary{
		RunID:                 r.RunID,
		FilesRead:             r.FilesRead,
		ParsedEvents:          r.ParsedEvents,
		ParseFailures:         r.ParseFailures,
		TopSuspiciousIPs:      ips,
		ToolsByFirstSeen:      r.ToolsFirstSeen,
		TopSQLiEndpoints:      names,
		InferredScrapeSection: r.ScrapeTarget,
	}
}

// CapEvents returns at most MaxEventDump events for serialization.
func CapEvents(events []model.Event) []model.Event {
	if len(events) > MaxEventDump {
		return events[:MaxEventDump]
	}
	return events
}

// WriteFile creates the target's directory if needed and writes data.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("report mkdir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("report write: %w", err)
	}
	return nil
}
