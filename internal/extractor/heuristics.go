package extractor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// techCatalog lists common technology names checked against every page.
// Matching is case-insensitive substring; result order follows this list.
var techCatalog = []string{
	"JavaScript", "TypeScript", "Python", "Java", "Golang", "Rust", "C++", "C#",
	"Ruby", "PHP", "Kotlin", "Swift", "Scala", "Elixir",
	"React", "Angular", "Vue", "Svelte", "Next.js", "Node.js", "Express",
	"Django", "Flask", "FastAPI", "Spring", "Rails", "Laravel", ".NET",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "Elasticsearch", "Cassandra",
	"DynamoDB", "SQLite", "Kafka", "RabbitMQ", "GraphQL", "gRPC",
	"Docker", "Kubernetes", "Terraform", "Ansible", "Jenkins", "AWS", "GCP",
	"Azure", "Linux", "Git", "CI/CD", "Microservices", "REST",
}

// InferTechStack scans page text for every technology in the catalog plus the
// candidate's declared stack, returning the deduplicated matches in catalog
// order (profile-only techs follow, in profile order).
func InferTechStack(text string, profileTech []string) []string {
	lower := strings.ToLower(text)

	var found []string
	seen := make(map[string]bool)

	match := func(tech string) {
		key := strings.ToLower(tech)
		if seen[key] || tech == "" {
			return
		}
		if strings.Contains(lower, key) {
			seen[key] = true
			found = append(found, tech)
		}
	}

	for _, tech := range techCatalog {
		match(tech)
	}
	for _, tech := range profileTech {
		match(strings.TrimSpace(tech))
	}

	return found
}

// requirementHeaders are checked in priority order; the first one present in
// the page wins.
var requirementHeaders = []string{
	"requirements:",
	"qualifications:",
	"must have:",
	"what you'll need:",
	"what we're looking for:",
	"what you bring:",
	"skills:",
	"you have:",
	"about you:",
}

// requirementsMaxLen caps the extracted section, in runes.
const requirementsMaxLen = 1000

// ExtractRequirements returns up to 1000 characters following the first
// recognised section header, or "" when no header is present.
//
// The case fold only touches ASCII bytes: the headers are pure ASCII, and a
// full Unicode ToLower can change byte lengths, which would make the match
// index invalid in the original string.
func ExtractRequirements(text string) string {
	lower := asciiLower(text)
	for _, header := range requirementHeaders {
		idx := strings.Index(lower, header)
		if idx < 0 {
			continue
		}
		rest := text[idx+len(header):]
		return strings.TrimSpace(capRunes(rest, requirementsMaxLen))
	}
	return ""
}

// asciiLower lowercases A–Z in place, leaving every other byte untouched so
// byte offsets stay valid for the original string.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// capRunes truncates s to at most n runes, never splitting a multibyte rune.
func capRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

var (
	reDaysAgo  = regexp.MustCompile(`(?i)(\d+)\s*days?\s+ago`)
	reHoursAgo = regexp.MustCompile(`(?i)(\d+)\s*hours?\s+ago`)
	reToday    = regexp.MustCompile(`(?i)posted\s+today`)
	reYesterdy = regexp.MustCompile(`(?i)posted\s+yesterday`)
)

// InferPostedDate converts a relative posting phrase ("3 days ago",
// "posted yesterday") into an absolute date relative to now. No recognised
// phrase → nil, meaning unknown.
func InferPostedDate(text string, now time.Time) *time.Time {
	if m := reDaysAgo.FindStringSubmatch(text); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil {
			t := now.AddDate(0, 0, -days)
			return &t
		}
	}
	if m := reHoursAgo.FindStringSubmatch(text); m != nil {
		hours, err := strconv.Atoi(m[1])
		if err == nil {
			t := now.Add(-time.Duration(hours) * time.Hour)
			return &t
		}
	}
	if reToday.MatchString(text) {
		t := now
		return &t
	}
	if reYesterdy.MatchString(text) {
		t := now.AddDate(0, 0, -1)
		return &t
	}
	return nil
}

// datetimeAttr reads machine-readable posting dates: <time datetime=...> or
// an article:published_time meta tag, parsed leniently with dateparse.
func datetimeAttr(doc *goquery.Document) *time.Time {
	candidates := []string{}
	if dt, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		candidates = append(candidates, dt)
	}
	if dt, ok := doc.Find("meta[property='article:published_time']").Attr("content"); ok {
		candidates = append(candidates, dt)
	}
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if t, err := dateparse.ParseAny(c); err == nil {
			return &t
		}
	}
	return nil
}
