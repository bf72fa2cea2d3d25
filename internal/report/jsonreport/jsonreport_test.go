package jsonreport

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/crimson-sun/webhunt/internal/model"
)

func sampleResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		RunID:         "json-run",
		FilesRead:     1,
		ParsedEvents:  2,
		ParseFailures: 0,
		TopAddresses: []model.AddressProfile{
			{Address: "192.168.1.2", RequestCount: 60, Score: 5.82, Tools: []string{"sqlmap"}},
		},
		ToolsFirstSeen: []model.ToolSighting{
			{Tool: "sqlmap", FirstSeen: time.Date(2026, 1, 17, 11, 0, 0, 0, time.UTC)},
		},
		Endpoints: []model.EndpointExposure{
			{Endpoint: "/admin.php", Score: 300, Hits: 60},
		},
		ScrapeTarget: "/api/users",
		Events: []model.Event{
			{Address: "192.168.1.2", Target: "/admin.php?id=1", Status: 500, AttackTags: []string{"SQLi"}},
			{Address: "192.168.1.1", Target: "/index.php", Status: 200},
		},
	}
}

func TestGenerate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := New().Generate(sampleResult(), path); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	for _, key := range []string{"summary", "top_ips_detail", "vulnerable_endpoints", "events"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("report missing top-level key %q", key)
		}
	}

	var summary struct {
		RunID            string   `json:"run_id"`
		TopSuspiciousIPs []string `json:"top_suspicious_ips"`
		TopSQLiEndpoints []string `json:"top_sqli_endpoints"`
		ScrapeSection    string   `json:"inferred_scrape_section"`
	}
	if err := json.Unmarshal(doc["summary"], &summary); err != nil {
		t.Fatal(err)
	}
	if summary.RunID != "json-run" {
		t.Fatalf("run_id = %q", summary.RunID)
	}
	if len(summary.TopSuspiciousIPs) != 1 || summary.TopSuspiciousIPs[0] != "192.168.1.2" {
		t.Fatalf("top_suspicious_ips = %v", summary.TopSuspiciousIPs)
	}
	if summary.ScrapeSection != "/api/users" {
		t.Fatalf("inferred_scrape_section = %q", summary.ScrapeSection)
	}

	var events []map[string]any
	if err := json.Unmarshal(doc["events"], &events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0]["ip"] != "192.168.1.2" {
		t.Fatalf(`events[0]["ip"] = %v`, events[0]["ip"])
	}
	if ts, ok := events[0]["timestamp"]; !ok || ts != nil {
		t.Fatalf(`events[0]["timestamp"] = %v, want null for absent timestamp`, ts)
	}
}

func TestGenerateEmptyResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := New().Generate(&model.AnalysisResult{RunID: "empty"}, path); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("empty report is not valid JSON: %v", err)
	}
}
