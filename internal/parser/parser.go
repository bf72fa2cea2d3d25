// Package parser turns raw combined-format access-log lines into
// structured events.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/crimson-sun/webhunt/internal/model"
	"github.com/crimson-sun/webhunt/internal/signature"
)

// combinedLine matches the Apache/Nginx combined log format:
//
//	1.2.3.4 - - [10/Apr/2021:12:01:55 +0000] "GET /path?q=1 HTTP/1.1" 200 1234 "-" "UA"
//
// The HTTP version and the trailing referer/user-agent pair are optional.
var combinedLine = regexp.MustCompile(`^(\S+)\s+\S+\s+\S+\s+\[([^\]]+)\]\s+"([A-Z]+)\s+(\S+)(?:\s+HTTP/[^"]*)?"\s+(\d{3})\s+(\S+)(?:\s+"([^"]*)"\s+"([^"]*)")?`)

// Timestamp layouts tried in order: canonical Apache format with a numeric
// UTC offset, then the same format without one.
var timestampLayouts = []string{
	"02/Jan/2006:15:04:05 -0700",
	"02/Jan/2006:15:04:05",
}

// Parser extracts events from raw log lines, annotating each with the
// signature catalog's attack tags and tool classification.
type Parser struct {
	catalog *signature.Catalog
}

// New creates a Parser backed by the given catalog.
func New(catalog *signature.Catalog) *Parser {
	return &Parser{catalog: catalog}
}

// ParseLine parses one raw log line. It returns the event and true on
// success, or a zero event and false when the line does not match the
// combined-format grammar. An unparseable timestamp or byte count does not
// fail the line: the event is still produced with a zero timestamp or zero
// byte count.
func (p *Parser) ParseLine(line string) (model.Event, bool) {
	m := combinedLine.FindStringSubmatch(line)
	if m == nil {
		return model.Event{}, false
	}

	address, ts, method, target := m[1], m[2], m[3], m[4]
	status, _ := strconv.Atoi(m[5])
	userAgent := m[8]

	path, query := splitTarget(target)

	return model.Event{
		Address:    address,
		Timestamp:  model.Timestamp{Time: parseTimestamp(ts)},
		Method:     method,
		Target:     target,
		Path:       path,
		Query:      query,
		Status:     status,
		Bytes:      parseBytes(m[6]),
		UserAgent:  userAgent,
		Referer:    m[7],
		Tool:       p.catalog.DetectTool(userAgent),
		AttackTags: p.catalog.DetectAttacks(target),
	}, true
}

// parseTimestamp returns the zero time when no layout matches.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseBytes treats "-", empty, and non-numeric tokens as zero.
func parseBytes(s string) int64 {
	if s == "-" || s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// splitTarget separates the raw request target into path and query at the
// first '?', keeping both halves in their original encoding. Hostile
// targets routinely carry malformed escapes that URL parsers reject, so no
// syntax validation happens here.
func splitTarget(target string) (path, query string) {
	path, query, _ = strings.Cut(target, "?")
	return path, query
}
