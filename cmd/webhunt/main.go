// Command webhunt performs offline forensic threat hunting over web
// server access logs and writes ranked Markdown/JSON/HTML reports.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/crimson-sun/webhunt/internal/analyzer"
	"github.com/crimson-sun/webhunt/internal/config"
	"github.com/crimson-sun/webhunt/internal/logging"
	"github.com/crimson-sun/webhunt/internal/logsource"
	"github.com/crimson-sun/webhunt/internal/parser"
	"github.com/crimson-sun/webhunt/internal/pipeline"
	"github.com/crimson-sun/webhunt/internal/report"
	"github.com/crimson-sun/webhunt/internal/report/htmlreport"
	"github.com/crimson-sun/webhunt/internal/report/jsonreport"
	"github.com/crimson-sun/webhunt/internal/report/markdown"
	"github.com/crimson-sun/webhunt/internal/signature"
)

const version = "1.0.0"

func main() {
	var (
		input       = flag.String("input", "", "path to access.log or folder of logs (.log/.gz supported)")
		mdOut       = flag.String("out", "report.md", "output report path")
		jsonOut     = flag.String("json", "", "optional JSON report output path")
		htmlOut     = flag.String("html", "", "optional HTML report output path")
		format      = flag.String("format", "", "output format: md, json, html, or all (overrides individual outputs)")
		topN        = flag.Int("top", config.DefaultTopN, "top N suspicious IPs to detail")
		minReq      = flag.Int("min-req", config.DefaultMinRequests, "minimum requests before scoring an IP")
		configFile  = flag.String("config", "", "configuration file (YAML)")
		quiet       = flag.Bool("quiet", false, "quiet mode")
		verbose     = flag.Bool("verbose", false, "verbose output")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("webhunt %s\n", version)
		return
	}
	if *input == "" {
		fmt.Fprintln(os.Stderr, "webhunt: -input is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "webhunt: %v\n", err)
		os.Exit(1)
	}

	// CLI flags take precedence over file and env values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "top":
			cfg.Analysis.TopN = *topN
		case "min-req":
			cfg.Analysis.MinRequests = *minReq
		}
	})
	cfg.Quiet = *quiet

	level := logging.ParseLevel(cfg.LogLevel)
	if *verbose {
		level = slog.LevelDebug
	}
	if *quiet {
		level = slog.LevelError
	}
	logging.Init(level)

	targets := buildTargets(*format, *mdOut, *jsonOut, *htmlOut, cfg.Output.Directory)
	if len(targets) == 0 {
		fmt.Fprintln(os.Stderr, "webhunt: no output format selected")
		os.Exit(2)
	}

	catalog := signature.New()
	source := logsource.New(parser.New(catalog), cfg.Performance.Workers)
	an := analyzer.New(cfg.Analysis.MinRequests)
	p := pipeline.New(source, an, targets)

	slog.Info("starting analysis", "input", *input, "min_requests", cfg.Analysis.MinRequests, "top", cfg.Analysis.TopN)
	result, err := p.Run(*input, cfg.Analysis.TopN)
	if err != nil {
		slog.Error("analysis failed", "error", err)
		os.Exit(1)
	}

	if !cfg.Quiet && len(result.TopAddresses) > 0 {
		top := result.TopAddresses[0]
		fmt.Fprintf(os.Stderr, "top suspicious IP: %s (score %.2f)\n", top.Address, top.Score)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Load(), nil
	}
	return config.FromFile(path)
}

// buildTargets maps the CLI's format selection to reporter/path pairs.
// -format all derives sibling paths from the markdown output name.
func buildTargets(format, mdOut, jsonOut, htmlOut, dir string) []pipeline.Target {
	reporters := map[string]report.Reporter{
		"md":   markdown.New(),
		"json": jsonreport.New(),
		"html": htmlreport.New(),
	}

	place := func(path string) string {
		if dir == "" || dir == "." || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(dir, path)
	}

	var targets []pipeline.Target
	switch format {
	case "all":
		base := strings.TrimSuffix(filepath.Base(mdOut), filepath.Ext(mdOut))
		for _, f := range []string{"md", "json", "html"} {
			targets = append(targets, pipeline.Target{Reporter: reporters[f], Path: place(base + "." + f)})
		}
	case "md", "json", "html":
		path := map[string]string{"md": mdOut, "json": jsonOut, "html": htmlOut}[format]
		if path == "" {
			path = "report." + format
		}
		targets = append(targets, pipeline.Target{Reporter: reporters[format], Path: place(path)})
	default:
		if mdOut != "" {
			targets = append(targets, pipeline.Target{Reporter: reporters["md"], Path: place(mdOut)})
		}
		if jsonOut != "" {
			targets = append(targets, pipeline.Target{Reporter: reporters["json"], Path: place(jsonOut)})
		}
		if htmlOut != "" {
			targets = append(targets, pipeline.Target{Reporter: reporters["html"], Path: place(htmlOut)})
		}
	}
	return targets
}
