// Package search implements the candidate-URL feed: it runs each profile
// query against DuckDuckGo's HTML endpoint and returns the result links as
// SearchHits for the pipeline to visit.
package search

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

const (
	searchBaseURL = "https://html.duckduckgo.com/html/"
	httpTimeout   = 15 * time.Second
)

// Client queries the search engine with a shared HTTP client and a fixed
// politeness delay between queries. The delay throttles request rate against
// the upstream engine; it is not a correctness requirement.
type Client struct {
	client *http.Client
	delay  time.Duration
}

// NewClient constructs a search client pausing delay between queries.
func NewClient(delay time.Duration) *Client {
	return &Client{
		client: &http.Client{Timeout: httpTimeout},
		delay:  delay,
	}
}

// Search runs every query in order and returns up to maxResults hits,
// deduplicated by URL across queries. A failed query is logged and skipped —
// the remaining queries still run.
func (c *Client) Search(ctx context.Context, queries []string, maxResults int) ([]model.SearchHit, error) {
	seen := make(map[string]bool)
	var hits []model.SearchHit

	for i, q := range queries {
		if len(hits) >= maxResults {
			break
		}
		if i > 0 && c.delay > 0 {
			select {
			case <-time.After(c.delay):
			case <-ctx.Done():
				return hits, ctx.Err()
			}
		}

		batch, err := c.searchQuery(ctx, q)
		if err != nil {
			log.Printf("[search] Query %q failed: %v — continuing", q, err)
			continue
		}

		for _, h := range batch {
			if seen[h.URL] {
				continue
			}
			seen[h.URL] = true
			hits = append(hits, h)
			if len(hits) >= maxResults {
				break
			}
		}
	}

	return hits, nil
}

func (c *Client) searchQuery(ctx context.Context, query string) ([]model.SearchHit, error) {
	params := url.Values{}
	params.Set("q", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		searchBaseURL, strings.NewReader(params.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http POST: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search returned %d: %s", resp.StatusCode, string(body))
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}

	return ParseResults(doc), nil
}

// ParseResults extracts result links from a DuckDuckGo HTML results document.
// Split out from the HTTP round-trip so it can be exercised against fixtures.
func ParseResults(doc *goquery.Document) []model.SearchHit {
	var hits []model.SearchHit

	doc.Find("div.result").Each(func(_ int, s *goquery.Selection) {
		link := s.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return
		}
		target := resolveRedirect(href)
		if target == "" {
			return
		}

		hit := model.SearchHit{
			URL:     target,
			Title:   strings.TrimSpace(link.Text()),
			Snippet: strings.TrimSpace(s.Find("a.result__snippet").First().Text()),
		}
		if u, err := url.Parse(target); err == nil {
			hit.Site = u.Hostname()
		}
		hits = append(hits, hit)
	})

	return hits
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<target> redirect links.
// Plain links pass through; anything unparsable is dropped.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}
