// Package jsonreport renders an analysis result as an indented JSON
// document: a summary block, full per-address detail, the ranked endpoint
// list, and a capped dump of raw events.
package jsonreport

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/report"
)

// document is the serialized report shape.
type document struct {
	Summary             report.Summary           `json:"summary"`
	TopIPsDetail        []model.AddressProfile   `json:"top_ips_detail"`
	VulnerableEndpoints []model.EndpointExposure `json:"vulnerable_endpoints"`
	Events              []model.Event            `json:"events"`
}

// Reporter writes JSON reports.
type Reporter struct{}

// New creates a JSON Reporter.
func New() *Reporter {
	return &Reporter{}
}

// Generate writes the report to path.
func (r *Reporter) Generate(result *model.AnalysisResult, path string) error {
	doc := document{
		Summary:             report.BuildSummary(result),
		TopIPsDetail:        result.TopAddresses,
		VulnerableEndpoints: result.Endpoints,
		Events:              report.CapEvents(result.Events),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("json report: %w", err)
	}
	return report.WriteFile(path, data)
}
