// Package markdown renders an analysis result as a Markdown report.
package markdown

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/report"
)

// Reporter writes Markdown reports.
type Reporter struct{}

// New creates a markdown Reporter.
func New() *Reporter {
	return &Reporter{}
}

// Generate writes the report to path.
func (r *Reporter) Generate(result *model.AnalysisResult, path string) error {
	return report.WriteFile(path, []byte(render(result)))
}

func render(result *model.AnalysisResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Web Log Recon Report\n\n")
	fmt.Fprintf(&b, "- Run ID: `%s`\n", result.RunID)
	fmt.Fprintf(&b, "- Files read: **%d**\n", result.FilesRead)
	fmt.Fprintf(&b, "- Parsed events: **%d**\n", result.ParsedEvents)
	fmt.Fprintf(&b, "- Parse failures (non-matching lines): **%d**\n\n", result.ParseFailures)

	writeTopAddresses(&b, result.TopAddresses)
	writeTools(&b, result.ToolsFirstSeen)
	writeEndpoints(&b, result.Endpoints)
	writeScrapeSection(&b, result.ScrapeTarget)
	writeAddressDetails(&b, result.TopAddresses)

	return b.String()
}

func writeTopAddresses(b *strings.Builder, profiles []model.AddressProfile) {
	b.WriteString("## Top suspicious IPs (auto-scored)\n\n")
	if len(profiles) == 0 {
		b.WriteString("No IPs found matching the minimum request threshold.\n\n")
		return
	}
	b.WriteString("| Rank | IP | Score | Requests |\n|---:|---|---:|---:|\n")
	for i, p := range profiles {
		fmt.Fprintf(b, "| %d | %s | %.2f | %d |\n", i+1, p.Address, p.Score, p.RequestCount)
	}
	b.WriteString("\n")
}

func writeTools(b *strings.Builder, tools []model.ToolSighting) {
	b.WriteString("## Attacker tools (by first appearance in logs)\n\n")
	if len(tools) == 0 {
		b.WriteString("- No tool fingerprints found in User-Agent fields.\n\n")
		return
	}
	for _, t := range tools {
		fmt.Fprintf(b, "- **%s** — first seen: %s\n", t.Tool, t.FirstSeen.Format("2006-01-02T15:04:05Z07:00"))
	}
	b.WriteString("\n")
}

func writeEndpoints(b *strings.Builder, endpoints []model.EndpointExposure) {
	b.WriteString("## Likely vulnerable SQLi endpoints (ranked)\n\n")
	if len(endpoints) == 0 {
		b.WriteString("- No SQLi signatures found.\n\n")
		return
	}

	b.WriteString("| Rank | Endpoint | Score | SQLi hits | SQLi+500 | Unique payloads |\n|---:|---|---:|---:|---:|---:|\n")
	shown := endpoints
	if len(shown) > 10 {
		shown = shown[:10]
	}
	for i, ep := range shown {
		fmt.Fprintf(b, "| %d | `%s` | %.0f | %d | %d | %d |\n",
			i+1, ep.Endpoint, ep.Score, ep.Hits, ep.Hits5xx, ep.UniquePayloads)
	}
	b.WriteString("\n")

	top := endpoints[0]
	fmt.Fprintf(b, "### Example SQLi requests targeting `%s`\n\n", top.Endpoint)
	for _, target := range top.Examples {
		fmt.Fprintf(b, "- `%s`\n", target)
	}
	b.WriteString("\n")
}

func writeScrapeSection(b *strings.Builder, target string) {
	b.WriteString("## Inferred section used for data scraping\n\n")
	if target != "" {
		fmt.Fprintf(b, "- Most likely section: **`%s`** (identity/user-related endpoint repeatedly hit by top suspicious IPs)\n\n", target)
		return
	}
	b.WriteString("- Could not infer a scraping section (no strong identity endpoint hits among top suspicious IPs).\n\n")
}

func writeAddressDetails(b *strings.Builder, profiles []model.AddressProfile) {
	b.WriteString("## Per-IP movement (top suspicious IPs)\n\n")
	for _, p := range profiles {
		fmt.Fprintf(b, "### %s\n\n", p.Address)
		fmt.Fprintf(b, "- Requests: **%d**\n", p.RequestCount)
		fmt.Fprintf(b, "- Status codes: %s\n", formatStatusCodes(p.StatusCodes))

		b.WriteString("- Top endpoints:\n")
		for _, pc := range p.TopPaths {
			fmt.Fprintf(b, "  - `%s` — %d\n", pc.Path, pc.Count)
		}

		if len(p.AbnormalExamples) > 0 {
			b.WriteString("- Abnormal query examples:\n")
			for _, e := range p.AbnormalExamples {
				fmt.Fprintf(b, "  - **%s** `%s` (status %d)\n",
					strings.Join(e.AttackTags, ","), e.Target, e.Status)
			}
		}
		b.WriteString("\n")
	}
}

func formatStatusCodes(codes map[int]int) string {
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
}
