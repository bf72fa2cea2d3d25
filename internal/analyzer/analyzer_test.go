package analyzer

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/signature"
)

// sampleEvents builds the canonical three-address scenario: quiet browser
// traffic, a sqlmap SQLi burst, and a failed-login burst.
func sampleEvents() []model.Event {
	var events []model.Event

	// 5 normal browser requests from .1.
	for i := 0; i < 5; i++ {
		events = append(events, model.Event{
			Address:   "192.168.1.1",
			Timestamp: model.Timestamp{Time: time.Date(2026, 1, 17, 10, i, 0, 0, time.UTC)},
			Method:    "GET",
			Target:    "/index.php",
			Path:      "/index.php",
			Status:    200,
			Bytes:     1234,
			UserAgent: "Mozilla/5.0",
			Tool:      signature.ToolBrowser,
		})
	}

	// 60 SQLi attempts from .2, alternating 500/403.
	for i := 0; i < 60; i++ {
		status := 403
		if i%2 == 0 {
			status = 500
		}
		events = append(events, model.Event{
			Address:    "192.168.1.2",
			Timestamp:  model.Timestamp{Time: time.Date(2026, 1, 17, 11, 0, i, 0, time.UTC)},
			Method:     "GET",
			Target:     fmt.Sprintf("/admin.php?id=%d UNION SELECT * FROM users", i),
			Path:       "/admin.php",
			Query:      fmt.Sprintf("id=%d UNION SELECT * FROM users", i),
			Status:     status,
			Bytes:      789,
			UserAgent:  "sqlmap/1.0",
			Tool:       "sqlmap",
			AttackTags: []string{signature.TagSQLi},
		})
	}

	// 55 failed logins from .3.
	for i := 0; i < 55; i++ {
		events = append(events, model.Event{
			Address:   "192.168.1.3",
			Timestamp: model.Timestamp{Time: time.Date(2026, 1, 17, 12, 0, i, 0, time.UTC)},
			Method:    "POST",
			Target:    "/login.php",
			Path:      "/login.php",
			Status:    401,
			Bytes:     234,
			UserAgent: "Mozilla/5.0",
			Tool:      signature.ToolBrowser,
		})
	}

	return events
}

func TestAnalyzeBasic(t *testing.T) {
	result := New(5).Analyze(sampleEvents(), 3)

	assert.Equal(t, 120, result.ParsedEvents)
	assert.Len(t, result.TopAddresses, 3)
	assert.NotEmpty(t, result.RunID)
}

func TestMinRequestsThreshold(t *testing.T) {
	result := New(50).Analyze(sampleEvents(), 10)

	require.NotEmpty(t, result.TopAddresses)
	for _, p := range result.TopAddresses {
		assert.GreaterOrEqual(t, p.RequestCount, 50)
		assert.NotEqual(t, "192.168.1.1", p.Address, "below-floor address must never appear")
	}
}

func TestScoringAbnormalRequests(t *testing.T) {
	result := New(5).Analyze(sampleEvents(), 3)

	require.Len(t, result.TopAddresses, 3)
	// The SQLi burst ranks first: volume + errors + abnormal + burst.
	top := result.TopAddresses[0]
	assert.Equal(t, "192.168.1.2", top.Address)
	assert.Greater(t, top.Score, 1.0)
}

func TestVolumeIsolatesScore(t *testing.T) {
	// Identical per-request behavior, different volume: only the volume
	// term separates the scores.
	var events []model.Event
	for i := 0; i < 100; i++ {
		events = append(events, model.Event{
			Address:   "192.168.1.1",
			Timestamp: model.Timestamp{Time: time.Date(2026, 1, 17, 10, 0, i%60, 0, time.UTC)},
			Method:    "GET",
			Target:    "/index.php",
			Path:      "/index.php",
			Status:    200,
			Bytes:     1234,
			Tool:      signature.ToolBrowser,
		})
	}
	for i := 0; i < 10; i++ {
		events = append(events, model.Event{
			Address:   "192.168.1.2",
			Timestamp: model.Timestamp{Time: time.Date(2026, 1, 17, 10, 0, i, 0, time.UTC)},
			Method:    "GET",
			Target:    "/index.php",
			Path:      "/index.php",
			Status:    200,
			Bytes:     1234,
			Tool:      signature.ToolBrowser,
		})
	}

	result := New(1).Analyze(events, 10)

	scores := make(map[string]float64)
	for _, p := range result.TopAddresses {
		scores[p.Address] = p.Score
	}
	assert.Greater(t, scores["192.168.1.1"], scores["192.168.1.2"])
}

func TestToolSetIncludesSqlmap(t *testing.T) {
	result := New(50).Analyze(sampleEvents(), 10)

	for _, p := range result.TopAddresses {
		if p.Address == "192.168.1.2" {
			assert.Contains(t, p.Tools, "sqlmap")
			return
		}
	}
	t.Fatal("192.168.1.2 not in ranked addresses")
}

func TestVulnerableEndpointRanking(t *testing.T) {
	result := New(5).Analyze(sampleEvents(), 10)

	require.NotEmpty(t, result.Endpoints)
	assert.Equal(t, "/admin.php", result.Endpoints[0].Endpoint)

	// Scores are non-increasing.
	scores := make([]float64, 0, len(result.Endpoints))
	for _, ep := range result.Endpoints {
		scores = append(scores, ep.Score)
	}
	assert.True(t, sort.SliceIsSorted(scores, func(i, j int) bool {
		return scores[i] > scores[j]
	}) || isNonIncreasing(scores))

	// 60 hits, 30 with 5xx, 60 distinct payloads: 3*60 + 2*30 + 60.
	assert.Equal(t, float64(300), result.Endpoints[0].Score)
	assert.Equal(t, 60, result.Endpoints[0].Hits)
	assert.Equal(t, 30, result.Endpoints[0].Hits5xx)
	assert.Equal(t, 60, result.Endpoints[0].UniquePayloads)
	assert.LessOrEqual(t, len(result.Endpoints[0].Examples), 5)
}

func isNonIncreasing(s []float64) bool {
	for i := 1; i < len(s); i++ {
		if s[i] > s[i-1] {
			return false
		}
	}
	return true
}

func TestToolsFirstSeenSorted(t *testing.T) {
	result := New(5).Analyze(sampleEvents(), 10)

	require.NotEmpty(t, result.ToolsFirstSeen)
	for i := 1; i < len(result.ToolsFirstSeen); i++ {
		assert.False(t, result.ToolsFirstSeen[i].FirstSeen.Before(result.ToolsFirstSeen[i-1].FirstSeen))
	}

	// Browser traffic at 10:00 predates the sqlmap burst at 11:00.
	assert.Equal(t, signature.ToolBrowser, result.ToolsFirstSeen[0].Tool)
}

func TestStatusCodeHistogram(t *testing.T) {
	result := New(50).Analyze(sampleEvents(), 10)

	for _, p := range result.TopAddresses {
		if p.Address == "192.168.1.2" {
			assert.Equal(t, 30, p.StatusCodes[500])
			assert.Equal(t, 30, p.StatusCodes[403])
		}
	}
}

func TestTopPathsSorted(t *testing.T) {
	result := New(50).Analyze(sampleEvents(), 10)

	for _, p := range result.TopAddresses {
		require.NotEmpty(t, p.TopPaths)
		for i := 1; i < len(p.TopPaths); i++ {
			assert.LessOrEqual(t, p.TopPaths[i].Count, p.TopPaths[i-1].Count)
		}
	}
}

func TestTopPathsTieBreakFirstSeen(t *testing.T) {
	events := []model.Event{
		{Address: "a", Path: "/one", Status: 200},
		{Address: "a", Path: "/two", Status: 200},
		{Address: "a", Path: "/one", Status: 200},
		{Address: "a", Path: "/two", Status: 200},
	}
	result := New(1).Analyze(events, 1)

	require.Len(t, result.TopAddresses, 1)
	paths := result.TopAddresses[0].TopPaths
	require.Len(t, paths, 2)
	assert.Equal(t, "/one", paths[0].Path, "ties keep first-seen order")
}

func TestAbnormalExamplesCap(t *testing.T) {
	result := New(50).Analyze(sampleEvents(), 10)

	for _, p := range result.TopAddresses {
		assert.LessOrEqual(t, len(p.AbnormalExamples), 8)
		if p.Address == "192.168.1.2" {
			assert.Len(t, p.AbnormalExamples, 8)
			assert.Equal(t, 60, p.AbnormalCount)
		}
	}
}

func TestLoginProbeCounting(t *testing.T) {
	result := New(50).Analyze(sampleEvents(), 10)

	for _, p := range result.TopAddresses {
		if p.Address == "192.168.1.3" {
			assert.Equal(t, 55, p.LoginAttempts)
		}
	}
}

func TestBurstDetection(t *testing.T) {
	result := New(50).Analyze(sampleEvents(), 10)

	for _, p := range result.TopAddresses {
		if p.Address == "192.168.1.2" {
			// All 60 requests land inside minute 11:00.
			assert.Equal(t, 60, p.MaxPerMinute)
		}
	}
}

func TestScrapeTargetInference(t *testing.T) {
	var events []model.Event
	for i := 0; i < 20; i++ {
		events = append(events, model.Event{
			Address: "10.0.0.9",
			Path:    "/api/users",
			Target:  fmt.Sprintf("/api/users?page=%d", i),
			Status:  200,
			Bytes:   50000,
		})
	}
	result := New(1).Analyze(events, 5)

	assert.Equal(t, "/api/users", result.ScrapeTarget)
}

func TestScrapeTargetAbsent(t *testing.T) {
	events := []model.Event{
		{Address: "10.0.0.1", Path: "/index.php", Status: 200},
		{Address: "10.0.0.1", Path: "/index.php", Status: 200},
	}
	result := New(1).Analyze(events, 5)
	assert.Empty(t, result.ScrapeTarget)
}

func TestScrapeTargetTupleComparison(t *testing.T) {
	var events []model.Event
	// Address A: 10 identity hits, all 200, big responses.
	for i := 0; i < 10; i++ {
		events = append(events, model.Event{
			Address: "a", Path: "/profile", Target: "/profile", Status: 200, Bytes: 90000,
		})
	}
	// Address B: 10 identity hits but fewer successes.
	for i := 0; i < 10; i++ {
		status := 200
		if i%2 == 0 {
			status = 404
		}
		events = append(events, model.Event{
			Address: "b", Path: "/account", Target: "/account", Status: status, Bytes: 90000,
		})
	}
	result := New(1).Analyze(events, 5)

	assert.Equal(t, "/profile", result.ScrapeTarget, "equal hits resolve on success count")
}

func TestAnalyzeEmptyInput(t *testing.T) {
	result := New(50).Analyze(nil, 10)

	assert.Equal(t, 0, result.ParsedEvents)
	assert.Empty(t, result.TopAddresses)
	assert.Empty(t, result.ToolsFirstSeen)
	assert.Empty(t, result.Endpoints)
	assert.Empty(t, result.ScrapeTarget)
}

func TestRankingStableOnScoreTies(t *testing.T) {
	// Two addresses with identical behavior tie on score and keep
	// first-occurrence order.
	var events []model.Event
	for _, addr := range []string{"b", "a"} {
		for i := 0; i < 10; i++ {
			events = append(events, model.Event{Address: addr, Path: "/x", Status: 200})
		}
	}
	result := New(1).Analyze(events, 10)

	require.Len(t, result.TopAddresses, 2)
	assert.Equal(t, "b", result.TopAddresses[0].Address)
	assert.Equal(t, "a", result.TopAddresses[1].Address)
}
