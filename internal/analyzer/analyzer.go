// Package analyzer turns a parsed event collection into ranked address,
// endpoint, and tool summaries. Every aggregation preserves encounter
// order so that tie-breaks are stable and runs are reproducible.
package analyzer

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/signature"
)

// Composite score weights. Fixed design constants, not tuned per input.
const (
	weightVolume   = 0.002
	weight5xx      = 0.02
	weight4xx      = 0.01
	weightAbnormal = 0.05
	weightLogin    = 0.03
	weightIdentity = 0.02
	weightBurst    = 0.01
)

// Endpoint exposure score weights.
const (
	endpointWeightHits = 3
	endpointWeight5xx  = 2
)

const (
	maxTopPaths         = 10
	maxAbnormalExamples = 8
	maxEndpointExamples = 5
	payloadKeyLen       = 200
)

// Analyzer scores and ranks event collections.
type Analyzer struct {
	minRequests int
}

// New creates an Analyzer. Addresses with fewer than minRequests events
// are never profiled — a noise floor, not a security judgment.
func New(minRequests int) *Analyzer {
	return &Analyzer{minRequests: minRequests}
}

// Analyze runs the full analysis over the event collection and returns the
// terminal result. Empty input degrades to empty result lists, never an
// error. FilesRead and ParseFailures are stitched in by the caller that
// owns the read counters.
func (a *Analyzer) Analyze(events []model.Event, topN int) *model.AnalysisResult {
	byAddress := groupByAddress(events)

	profiles := a.scoreAddresses(byAddress)
	if topN < 0 {
		topN = 0
	}
	if topN > len(profiles) {
		topN = len(profiles)
	}
	top := profiles[:topN]

	return &model.AnalysisResult{
		RunID:          uuid.NewString(),
		ParsedEvents:   len(events),
		TopAddresses:   top,
		ToolsFirstSeen: toolsFirstSeen(events),
		Endpoints:      rankEndpoints(events),
		ScrapeTarget:   inferScrapeTarget(byAddress, top),
		Events:         events,
	}
}

// groupedEvents preserves first-occurrence address order alongside the
// lookup map, so downstream ranking never depends on map iteration order.
type groupedEvents struct {
	order  []string
	groups map[string][]model.Event
}

func groupByAddress(events []model.Event) groupedEvents {
	g := groupedEvents{groups: make(map[string][]model.Event)}
	for _, e := range events {
		if _, seen := g.groups[e.Address]; !seen {
			g.order = append(g.order, e.Address)
		}
		g.groups[e.Address] = append(g.groups[e.Address], e)
	}
	return g
}

// scoreAddresses profiles every address at or above the request floor and
// returns them sorted by score descending. The sort is stable: equal
// scores keep first-occurrence order.
func (a *Analyzer) scoreAddresses(g groupedEvents) []model.AddressProfile {
	var profiles []model.AddressProfile
	for _, address := range g.order {
		events := g.groups[address]
		if len(events) < a.minRequests {
			continue
		}
		profiles = append(profiles, profileAddress(address, events))
	}
	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Score > profiles[j].Score
	})
	return profiles
}

func profileAddress(address string, events []model.Event) model.AddressProfile {
	n := len(events)

	statusCodes := make(map[int]int)
	abnormal := 0
	logins := 0
	identities := 0
	perMinute := make(map[string]int)
	var examples []model.Event

	for _, e := range events {
		statusCodes[e.Status]++
		if e.Abnormal() {
			abnormal++
			if len(examples) < maxAbnormalExamples {
				examples = append(examples, e)
			}
		}
		if signature.IsLoginPath(e.Path) {
			logins++
		}
		if signature.IsIdentityPath(e.Path) {
			identities++
		}
		if e.HasTimestamp() {
			perMinute[e.Timestamp.Format("2006-01-02 15:04")]++
		}
	}

	s4xx, s5xx := 0, 0
	for code, count := range statusCodes {
		switch {
		case code >= 400 && code <= 499:
			s4xx += count
		case code >= 500 && code <= 599:
			s5xx += count
		}
	}

	maxRPM := 0
	for _, count := range perMinute {
		if count > maxRPM {
			maxRPM = count
		}
	}

	score := weightVolume*float64(n) +
		weight5xx*float64(s5xx) +
		weight4xx*float64(s4xx) +
		weightAbnormal*float64(abnormal) +
		weightLogin*float64(logins) +
		weightIdentity*float64(identities) +
		weightBurst*float64(maxRPM)

	return model.AddressProfile{
		Address:          address,
		RequestCount:     n,
		Score:            score,
		StatusCodes:      statusCodes,
		AbnormalCount:    abnormal,
		LoginAttempts:    logins,
		IdentityQueries:  identities,
		MaxPerMinute:     maxRPM,
		TopPaths:         topPaths(events, maxTopPaths),
		AbnormalExamples: examples,
		Tools:            distinctTools(events),
	}
}

// topPaths returns the limit most frequent paths, ties broken by
// first-seen order.
func topPaths(events []model.Event, limit int) []model.PathCount {
	var order []string
	counts := make(map[string]int)
	for _, e := range events {
		if _, seen := counts[e.Path]; !seen {
			order = append(order, e.Path)
		}
		counts[e.Path]++
	}

	paths := make([]model.PathCount, 0, len(order))
	for _, p := range order {
		paths = append(paths, model.PathCount{Path: p, Count: counts[p]})
	}
	sort.SliceStable(paths, func(i, j int) bool {
		return paths[i].Count > paths[j].Count
	})
	if len(paths) > limit {
		paths = paths[:limit]
	}
	return paths
}

// distinctTools returns the distinct non-empty tool names, sorted for
// reproducible serialization.
func distinctTools(events []model.Event) []string {
	seen := make(map[string]bool)
	var tools []string
	for _, e := range events {
		if e.Tool != "" && !seen[e.Tool] {
			seen[e.Tool] = true
			tools = append(tools, e.Tool)
		}
	}
	sort.Strings(tools)
	return tools
}

// toolsFirstSeen scans the whole collection for the earliest timestamped
// sighting of each tool, returned sorted ascending by timestamp.
func toolsFirstSeen(events []model.Event) []model.ToolSighting {
	var order []string
	earliest := make(map[string]time.Time)
	for _, e := range events {
		if e.Tool == "" || !e.HasTimestamp() {
			continue
		}
		first, seen := earliest[e.Tool]
		if !seen {
			order = append(order, e.Tool)
			earliest[e.Tool] = e.Timestamp.Time
			continue
		}
		if e.Timestamp.Before(first) {
			earliest[e.Tool] = e.Timestamp.Time
		}
	}

	sightings := make([]model.ToolSighting, 0, len(order))
	for _, tool := range order {
		sightings = append(sightings, model.ToolSighting{Tool: tool, FirstSeen: earliest[tool]})
	}
	sort.SliceStable(sightings, func(i, j int) bool {
		return sightings[i].FirstSeen.Before(sightings[j].FirstSeen)
	})
	return sightings
}

// endpointStats accumulates SQLi pressure for one path.
type endpointStats struct {
	hits     int
	hits5xx  int
	payloads map[string]bool
	examples []string
}

// rankEndpoints groups SQLi-tagged events by path and scores each path by
// hit volume, server errors, and payload variety. Sorted descending by
// score; ties keep first-occurrence order.
func rankEndpoints(events []model.Event) []model.EndpointExposure {
	var order []string
	stats := make(map[string]*endpointStats)

	for _, e := range events {
		if !hasTag(e, signature.TagSQLi) {
			continue
		}
		st, seen := stats[e.Path]
		if !seen {
			st = &endpointStats{payloads: make(map[string]bool)}
			stats[e.Path] = st
			order = append(order, e.Path)
		}
		st.hits++
		if e.Status >= 500 && e.Status <= 599 {
			st.hits5xx++
		}
		st.payloads[payloadKey(e.Target)] = true
		if len(st.examples) < maxEndpointExamples {
			st.examples = append(st.examples, e.Target)
		}
	}

	exposures := make([]model.EndpointExposure, 0, len(order))
	for _, path := range order {
		st := stats[path]
		exposures = append(exposures, model.EndpointExposure{
			Endpoint:       path,
			Score:          float64(endpointWeightHits*st.hits + endpointWeight5xx*st.hits5xx + len(st.payloads)),
			Hits:           st.hits,
			Hits5xx:        st.hits5xx,
			UniquePayloads: len(st.payloads),
			Examples:       st.examples,
		})
	}
	sort.SliceStable(exposures, func(i, j int) bool {
		return exposures[i].Score > exposures[j].Score
	})
	return exposures
}

// payloadKey is a coarse uniqueness key: the first 200 bytes of the raw
// request target.
func payloadKey(target string) string {
	if len(target) > payloadKeyLen {
		return target[:payloadKeyLen]
	}
	return target
}

func hasTag(e model.Event, tag string) bool {
	for _, t := range e.AttackTags {
		if t == tag {
			return true
		}
	}
	return false
}

// scrapeCandidate accumulates identity-endpoint traffic for one ranked
// address.
type scrapeCandidate struct {
	hits       int
	successes  int
	totalBytes int64
	samples    int
	pathOrder  []string
	pathHits   map[string]int
}

// inferScrapeTarget picks, among the already-ranked top addresses, the
// identity endpoint most plausibly used for bulk data harvesting.
// Candidates are compared by the tuple (hits, 2xx successes, mean bytes),
// higher winning on each component in order; true ties keep the
// higher-ranked address. Returns "" when no top address hit an identity
// endpoint.
func inferScrapeTarget(g groupedEvents, top []model.AddressProfile) string {
	best := ""
	var bestHits, bestSuccesses int
	var bestMeanBytes float64
	found := false

	for _, profile := range top {
		events, ok := g.groups[profile.Address]
		if !ok {
			continue
		}

		cand := scrapeCandidate{pathHits: make(map[string]int)}
		for _, e := range events {
			if !signature.IsIdentityPath(e.Path) {
				continue
			}
			cand.hits++
			if _, seen := cand.pathHits[e.Path]; !seen {
				cand.pathOrder = append(cand.pathOrder, e.Path)
			}
			cand.pathHits[e.Path]++
			if e.Status >= 200 && e.Status <= 299 {
				cand.successes++
			}
			cand.totalBytes += e.Bytes
			cand.samples++
		}
		if cand.hits == 0 {
			continue
		}

		meanBytes := float64(cand.totalBytes) / float64(cand.samples)
		if !found || tupleGreater(cand.hits, cand.successes, meanBytes, bestHits, bestSuccesses, bestMeanBytes) {
			found = true
			bestHits, bestSuccesses, bestMeanBytes = cand.hits, cand.successes, meanBytes
			best = mostHitPath(cand)
		}
	}
	return best
}

// tupleGreater compares (hits, successes, meanBytes) lexicographically.
func tupleGreater(h1, s1 int, b1 float64, h2, s2 int, b2 float64) bool {
	if h1 != h2 {
		return h1 > h2
	}
	if s1 != s2 {
		return s1 > s2
	}
	return b1 > b2
}

// mostHitPath returns the candidate's most frequently hit identity path,
// ties broken by first-seen order.
func mostHitPath(cand scrapeCandidate) string {
	best := ""
	bestCount := 0
	for _, path := range cand.pathOrder {
		if cand.pathHits[path] > bestCount {
			best = path
			bestCount = cand.pathHits[path]
		}
	}
	return best
}
