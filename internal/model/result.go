package model

import "time"

// PathCount is a path and how many times it was requested.
type PathCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// AddressProfile holds the per-address statistics and composite score
// computed for one source address during an analysis run.
type AddressProfile struct {
	Address          string      `json:"ip"`
	RequestCount     int         `json:"request_count"`
	Score            float64     `json:"score"`
	StatusCodes      map[int]int `json:"status_codes"`
	AbnormalCount    int         `json:"abnormal_count"`
	LoginAttempts    int         `json:"login_attempts"`
	IdentityQueries  int         `json:"identity_queries"`
	MaxPerMinute     int         `json:"max_requests_per_minute"`
	TopPaths         []PathCount `json:"top_paths"`
	AbnormalExamples []Event     `json:"abnormal_examples"`
	Tools            []string    `json:"tools_used"`
}

// EndpointExposure ranks one path by SQL-injection pressure: how often it
// was hit with SQLi payloads, how often the server erred, and how varied
// the payloads were.
type EndpointExposure struct {
	Endpoint       string   `json:"endpoint"`
	Score          float64  `json:"score"`
	Hits           int      `json:"sqli_hits"`
	Hits5xx        int      `json:"sqli_500"`
	UniquePayloads int      `json:"unique_payloads"`
	Examples       []string `json:"examples"` // raw request targets, encounter order
}

// ToolSighting records when a client tool was first observed in the logs.
type ToolSighting struct {
	Tool      string    `json:"tool"`
	FirstSeen time.Time `json:"first_seen"`
}

// AnalysisResult is the terminal artifact of one analysis run. Reporters
// serialize it verbatim; nothing downstream re-derives a score or tag.
type AnalysisResult struct {
	RunID          string             `json:"run_id"`
	FilesRead      int                `json:"files_read"`
	ParsedEvents   int                `json:"parsed_events"`
	ParseFailures  int                `json:"parse_failures"`
	TopAddresses   []AddressProfile   `json:"top_suspicious_ips"`
	ToolsFirstSeen []ToolSighting     `json:"tools_first_seen"`
	Endpoints      []EndpointExposure `json:"vulnerable_endpoints"`
	ScrapeTarget   string             `json:"inferred_scrape_section,omitempty"`
	Events         []Event            `json:"-"` // full collection, never truncated here
}
