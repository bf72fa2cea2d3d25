// Package signature holds the fixed attack-pattern and client-tool catalog
// evaluated against every parsed request. Patterns are compiled once at
// init and the catalog itself is stateless apart from a bounded
// memoization cache, so one Catalog is safe to share across goroutines.
package signature

import (
	"regexp"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Attack tag labels, in catalog evaluation order.
const (
	TagSQLi      = "SQLi"
	TagTraversal = "Traversal/LFI"
	TagXSS       = "XSS"
	TagSSRF      = "SSRF"
	TagCMDi      = "CMDi/Shell"
	TagRCE       = "RCE"
	TagXXE       = "XXE"
	TagLDAP      = "LDAP Injection"
	TagNoSQL     = "NoSQL Injection"
)

// Tool classifications returned by DetectTool when no specific scanner
// signature matches.
const (
	ToolBrowser = "browser"
	ToolBot     = "bot"
)

// attackRule pairs a tag with its pattern group. Rules are evaluated in
// full, never short-circuited: a request may carry several tags at once.
type attackRule struct {
	tag     string
	pattern *regexp.Regexp
}

var attackRules = []attackRule{
	{TagSQLi, regexp.MustCompile(`(?i)(\bunion\b|\bselect\b|\binformation_schema\b|\bsleep\s*\(|\bbenchmark\s*\(|--|/\*|\*/|%27|'|\bor\s+1=1\b|\band\s+1=1\b)`)},
	{TagTraversal, regexp.MustCompile(`(?i)(\.\./|%2e%2e%2f|%2e%2e\\|/etc/passwd|win\.ini|\.\.\\|%5c%2e%2e)`)},
	{TagXSS, regexp.MustCompile(`(?i)(<script|%3cscript|onerror=|onload=|alert\s*\(|javascript:|<iframe|<img\s+src|eval\s*\(|<svg|onmouseover=)`)},
	{TagSSRF, regexp.MustCompile(`(?i)(https?://|%3a%2f%2f|169\.254\.169\.254|localhost|127\.0\.0\.1|0\.0\.0\.0|::1|\[::1\]|metadata\.google\.internal)`)},
	{TagCMDi, regexp.MustCompile(`(?i)(\bcat\b|\bwget\b|\bcurl\b|;|\|\||&&|\b/bin/sh\b|\bpowershell\b|\bexec\b|\bsystem\b|\$\(|` + "`" + `|<\(|>\()`)},
	{TagRCE, regexp.MustCompile(`(?i)(eval\(|exec\(|system\(|passthru\(|shell_exec\(|phpinfo\(|assert\(|preg_replace\s*\(.*/e["']?\s*,|create_function\()`)},
	{TagXXE, regexp.MustCompile(`(?i)(<!ENTITY\s+\w+\s+SYSTEM|<!DOCTYPE.*ENTITY|SYSTEM\s+["']file:|SYSTEM\s+["']http)`)},
	{TagLDAP, regexp.MustCompile(`(?i)(\*\)|\(\||&\(|\|\()`)},
	{TagNoSQL, regexp.MustCompile(`(?i)(\$ne|\$gt|\$lt|\$where|\$regex|\[\$)`)},
}

// scannerRule names a known scanning/automation tool and the user-agent
// pattern that identifies it. Order is priority order.
type scannerRule struct {
	name    string
	pattern *regexp.Regexp
}

var scannerRules = []scannerRule{
	{"sqlmap", regexp.MustCompile(`(?i)\bsqlmap\b`)},
	{"curl", regexp.MustCompile(`(?i)\bcurl/\d`)},
	{"python-requests", regexp.MustCompile(`(?i)\bpython-requests\b`)},
	{"go-http-client", regexp.MustCompile(`(?i)\bgo-http-client\b`)},
	{"nikto", regexp.MustCompile(`(?i)\bnikto\b`)},
	{"acunetix", regexp.MustCompile(`(?i)\bacunetix\b`)},
	{"nmap", regexp.MustCompile(`(?i)\bnmap\b`)},
	{"masscan", regexp.MustCompile(`(?i)\bmasscan\b`)},
	{"wget", regexp.MustCompile(`(?i)\bwget/\d`)},
	{"gobuster", regexp.MustCompile(`(?i)\bgobuster\b`)},
	{"dirbuster", regexp.MustCompile(`(?i)\bdirbuster\b`)},
	{"burpsuite", regexp.MustCompile(`(?i)\bburp\b`)},
	{"zaproxy", regexp.MustCompile(`(?i)\bzap\b`)},
	{"wpscan", regexp.MustCompile(`(?i)\bwpscan\b`)},
	{"metasploit", regexp.MustCompile(`(?i)\bmetasploit\b`)},
	{"nuclei", regexp.MustCompile(`(?i)\bnuclei\b`)},
	{"sqlninja", regexp.MustCompile(`(?i)\bsqlninja\b`)},
	{"havij", regexp.MustCompile(`(?i)\bhavij\b`)},
	{"httperf", regexp.MustCompile(`(?i)\bhttperf\b`)},
	{"jmeter", regexp.MustCompile(`(?i)\bjmeter\b`)},
}

var browserMarkers = []string{"Mozilla/", "Chrome/", "Safari/", "Firefox/"}

var botPattern = regexp.MustCompile(`(?i)(bot|crawler|spider|scraper|slurp|googlebot|bingbot|yandexbot|baiduspider|facebookexternalhit|twitterbot)`)

// Endpoint vocabularies shared with the analyzer.
var (
	identityPattern  = regexp.MustCompile(`(?i)(whoami|profile|account|user|users|customer|customers|admin|member)`)
	loginPattern     = regexp.MustCompile(`(?i)(login|signin|auth|token|session|oauth|sso|authenticate)`)
	apiPattern       = regexp.MustCompile(`(?i)(/api/|/rest/|/graphql|/v\d+/|\.json|\.xml)`)
	sensitivePattern = regexp.MustCompile(`(?i)(/export|/download|/backup|/dump|/database|/admin/users|/api/users|\.sql|\.db|\.bak)`)
	sessionPattern   = regexp.MustCompile(`(?i)(session|sessionid|sid|jsessionid|phpsessid)`)
)

// toolCacheSize bounds the user-agent memoization cache. Access logs reuse
// a small set of user-agent strings, so the hit rate is close to 1.
const toolCacheSize = 4096

// Catalog evaluates request targets and user-agents against the signature
// tables. The zero value is not usable; call New.
type Catalog struct {
	toolCache *lru.Cache[string, string]
}

// New creates a Catalog with a fresh tool-detection cache.
func New() *Catalog {
	cache, err := lru.New[string, string](toolCacheSize)
	if err != nil {
		// lru.New only fails on size <= 0.
		panic(err)
	}
	return &Catalog{toolCache: cache}
}

// DetectAttacks percent-decodes the raw request target and returns the
// tags of every attack category whose pattern group matches, in catalog
// evaluation order. An empty slice means no pattern matched.
func (c *Catalog) DetectAttacks(rawTarget string) []string {
	decoded := percentDecode(rawTarget)
	var tags []string
	for _, rule := range attackRules {
		if rule.pattern.MatchString(decoded) {
			tags = append(tags, rule.tag)
		}
	}
	return tags
}

// DetectTool classifies a user-agent string. It returns the first matching
// scanner name, else "browser" for browser-like strings, else "bot" for
// crawler-like strings, else "". An empty user-agent is always "".
func (c *Catalog) DetectTool(userAgent string) string {
	if userAgent == "" {
		return ""
	}
	if tool, ok := c.toolCache.Get(userAgent); ok {
		return tool
	}
	tool := classifyUserAgent(userAgent)
	c.toolCache.Add(userAgent, tool)
	return tool
}

func classifyUserAgent(userAgent string) string {
	for _, rule := range scannerRules {
		if rule.pattern.MatchString(userAgent) {
			return rule.name
		}
	}
	for _, marker := range browserMarkers {
		if strings.Contains(userAgent, marker) {
			return ToolBrowser
		}
	}
	if botPattern.MatchString(userAgent) {
		return ToolBot
	}
	return ""
}

// IsBotUserAgent reports whether the user-agent looks like a crawler.
func IsBotUserAgent(userAgent string) bool {
	return botPattern.MatchString(userAgent)
}

// IsAPIEndpoint reports whether the path looks like an API endpoint.
func IsAPIEndpoint(path string) bool {
	return apiPattern.MatchString(path)
}

// IsSensitiveEndpoint reports whether the path points at data-export or
// administrative surfaces.
func IsSensitiveEndpoint(path string) bool {
	return sensitivePattern.MatchString(path)
}

// HasSessionParameter reports whether the URL carries a session parameter.
func HasSessionParameter(url string) bool {
	return sessionPattern.MatchString(url)
}

// IsLoginPath reports whether the path matches the login/auth vocabulary.
func IsLoginPath(path string) bool {
	return loginPattern.MatchString(path)
}

// IsIdentityPath reports whether the path matches the identity/profile/
// account vocabulary.
func IsIdentityPath(path string) bool {
	return identityPattern.MatchString(path)
}

// percentDecode resolves %XX escapes in s. Malformed escapes are passed
// through unchanged and '+' is not treated as a space, so re-decoding an
// already-decoded string is a no-op unless it still contains valid
// escapes. net/url's unescapers reject malformed input outright, which is
// the wrong behavior for hostile log data.
func percentDecode(s string) string {
	if !strings.ContainsRune(s, '%') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, okHi := unhex(s[i+1])
			lo, okLo := unhex(s[i+2])
			if okHi && okLo {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
