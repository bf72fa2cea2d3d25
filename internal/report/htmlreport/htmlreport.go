// Package htmlreport renders an analysis result as a standalone HTML page.
package htmlreport

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strings"
	"time"

	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/report"
)

// Reporter writes HTML reports.
type Reporter struct{}

// New creates an HTML Reporter.
func New() *Reporter {
	return &Reporter{}
}

// page is the template context.
type page struct {
	Summary      report.Summary
	TopAddresses []model.AddressProfile
	Endpoints    []model.EndpointExposure
	ScrapeTarget string
}

// Generate writes the report to path.
func (r *Reporter) Generate(result *model.AnalysisResult, path string) error {
	endpoints := result.Endpoints
	if len(endpoints) > 10 {
		endpoints = endpoints[:10]
	}
	ctx := page{
		Summary:      report.BuildSummary(result),
		TopAddresses: result.TopAddresses,
		Endpoints:    endpoints,
		ScrapeTarget: result.ScrapeTarget,
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, ctx); err != nil {
		return fmt.Errorf("html report: %w", err)
	}
	return report.WriteFile(path, buf.Bytes())
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"joinTags": func(tags []string) string {
		return strings.Join(tags, ",")
	},
	"statusCodes": func(codes map[int]int) string {
		keys := make([]int, 0, len(codes))
		for code := range codes {
			keys = append(keys, code)
		}
		sort.Ints(keys)
		parts := make([]string, 0, len(keys))
		for _, code := range keys {
			parts = append(parts, fmt.Sprintf("%d:%d", code, codes[code]))
		}
		return strings.Join(parts, ", ")
	},
	"timefmt": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05 MST")
	},
}

var pageTemplate = template.Must(template.New("report").Funcs(templateFuncs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Web Log Recon Report</title>
<style>
* { margin: 0; padding: 0; box-sizing: border-box; }
body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; background: #f5f5f5; padding: 20px; }
.container { max-width: 1200px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 8px rgba(0,0,0,0.1); }
h1 { color: #2c3e50; margin-bottom: 20px; padding-bottom: 10px; border-bottom: 3px solid #3498db; }
h2 { color: #34495e; margin-top: 30px; margin-bottom: 15px; padding-bottom: 8px; border-bottom: 2px solid #ecf0f1; }
h3 { color: #7f8c8d; margin-top: 20px; margin-bottom: 10px; }
.summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(200px, 1fr)); gap: 15px; margin: 20px 0; }
.summary-item { background: #ecf0f1; padding: 15px; border-radius: 5px; text-align: center; }
.summary-item .label { font-size: 0.9em; color: #7f8c8d; margin-bottom: 5px; }
.summary-item .value { font-size: 1.6em; font-weight: bold; color: #2c3e50; }
table { width: 100%; border-collapse: collapse; margin: 15px 0; }
th, td { padding: 10px; text-align: left; border-bottom: 1px solid #ecf0f1; }
th { background: #34495e; color: white; }
tr:hover { background: #f8f9fa; }
code { background: #ecf0f1; padding: 2px 6px; border-radius: 3px; font-size: 0.9em; }
.score-high { color: #e74c3c; font-weight: bold; }
.empty { color: #95a5a6; font-style: italic; }
.footer { margin-top: 30px; color: #95a5a6; font-size: 0.85em; }
</style>
</head>
<body>
<div class="container">
<h1>Web Log Recon Report</h1>

<div class="summary">
<div class="summary-item"><div class="label">Files read</div><div class="value">{{.Summary.FilesRead}}</div></div>
<div class="summary-item"><div class="label">Parsed events</div><div class="value">{{.Summary.ParsedEvents}}</div></div>
<div class="summary-item"><div class="label">Parse failures</div><div class="value">{{.Summary.ParseFailures}}</div></div>
<div class="summary-item"><div class="label">Suspicious IPs</div><div class="value">{{len .TopAddresses}}</div></div>
</div>

<h2>Top suspicious IPs (auto-scored)</h2>
{{if .TopAddresses}}
<table>
<tr><th>Rank</th><th>IP</th><th>Score</th><th>Requests</th><th>Abnormal</th><th>Peak req/min</th><th>Tools</th></tr>
{{range $i, $p := .TopAddresses}}
<tr>
<td>{{inc $i}}</td>
<td><code>{{$p.Address}}</code></td>
<td class="score-high">{{printf "%.2f" $p.Score}}</td>
<td>{{$p.RequestCount}}</td>
<td>{{$p.AbnormalCount}}</td>
<td>{{$p.MaxPerMinute}}</td>
<td>{{joinTags $p.Tools}}</td>
</tr>
{{end}}
</table>
{{else}}
<p class="empty">No IPs found matching the minimum request threshold.</p>
{{end}}

<h2>Attacker tools (by first appearance)</h2>
{{if .Summary.ToolsByFirstSeen}}
<table>
<tr><th>Tool</th><th>First seen</th></tr>
{{range .Summary.ToolsByFirstSeen}}
<tr><td><code>{{.Tool}}</code></td><td>{{timefmt .FirstSeen}}</td></tr>
{{end}}
</table>
{{else}}
<p class="empty">No tool fingerprints found in User-Agent fields.</p>
{{end}}

<h2>Likely vulnerable SQLi endpoints (ranked)</h2>
{{if .Endpoints}}
<table>
<tr><th>Rank</th><th>Endpoint</th><th>Score</th><th>SQLi hits</th><th>SQLi+500</th><th>Unique payloads</th></tr>
{{range $i, $ep := .Endpoints}}
<tr>
<td>{{inc $i}}</td>
<td><code>{{$ep.Endpoint}}</code></td>
<td>{{printf "%.0f" $ep.Score}}</td>
<td>{{$ep.Hits}}</td>
<td>{{$ep.Hits5xx}}</td>
<td>{{$ep.UniquePayloads}}</td>
</tr>
{{end}}
</table>
{{else}}
<p class="empty">No SQLi signatures found.</p>
{{end}}

<h2>Inferred data-scraping section</h2>
{{if .ScrapeTarget}}
<p>Most likely section: <code>{{.ScrapeTarget}}</code> (identity/user-related endpoint repeatedly hit by top suspicious IPs)</p>
{{else}}
<p class="empty">Could not infer a scraping section.</p>
{{end}}

<h2>Per-IP detail</h2>
{{range .TopAddresses}}
<h3><code>{{.Address}}</code></h3>
<p>Requests: <strong>{{.RequestCount}}</strong> — Status codes: {{statusCodes .StatusCodes}}</p>
<table>
<tr><th>Path</th><th>Hits</th></tr>
{{range .TopPaths}}
<tr><td><code>{{.Path}}</code></td><td>{{.Count}}</td></tr>
{{end}}
</table>
{{if .AbnormalExamples}}
<p>Abnormal query examples:</p>
<table>
<tr><th>Tags</th><th>Request</th><th>Status</th></tr>
{{range .AbnormalExamples}}
<tr><td>{{joinTags .AttackTags}}</td><td><code>{{.Target}}</code></td><td>{{.Status}}</td></tr>
{{end}}
</table>
{{end}}
{{end}}

<div class="footer">Run ID {{.Summary.RunID}}</div>
</div>
</body>
</html>
`))
