// Package extractor turns a loaded page into a normalised JobRecord.
//
// Job boards disagree on markup, so every field is resolved through an
// ordered chain of selector candidates — the first candidate whose matched
// element has non-empty trimmed text wins. A record is only rejected when
// both title and company are unresolved; every other field degrades to its
// zero value.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/unlikelyUsual/job-listing-scraper/internal/browser"
	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

// ErrMissingFields reports a page where neither title nor company could be
// resolved — the record would be meaningless, so the caller drops it.
// Distinct from a parse error: the page was readable, just not a job listing
// we understand.
var ErrMissingFields = errors.New("page has neither title nor company")

var reWhitespace = regexp.MustCompile(`\s+`)

// Selector chains per field, tried in order. Generic selectors last.
var (
	titleSelectors = []string{
		"h1.job-title", "h1[class*='jobTitle']", "[data-testid='job-title']",
		".top-card-layout__title", ".jobsearch-JobInfoHeader-title",
		"h1", "h2.title",
	}
	companySelectors = []string{
		".company-name", "[data-testid='company-name']", "[data-company]",
		".topcard__org-name-link", ".jobsearch-CompanyInfoContainer a",
		"a[class*='company']", "[class*='companyName']", ".employer",
	}
	descriptionSelectors = []string{
		".job-description", "#job-description", "#jobDescriptionText",
		".description__text", "[class*='jobDescription']", "[class*='description']",
		"article",
	}
	locationSelectors = []string{
		".job-location", "[data-testid='job-location']", ".topcard__flavor--bullet",
		"[class*='location']", ".location",
	}
	salarySelectors = []string{
		".salary", "[class*='salary']", "[class*='compensation']",
		"[data-testid='salary']",
	}
)

// Extractor produces JobRecords. The candidate's declared tech stack widens
// the inference catalog so niche skills still get picked up.
type Extractor struct {
	profileTech []string
}

// New constructs an Extractor for one candidate profile.
func New(profileTech []string) *Extractor {
	return &Extractor{profileTech: profileTech}
}

// Extract parses the page and resolves every JobRecord field best-effort.
// Returns ErrMissingFields when both required fields are unresolved, or a
// parse error when the HTML itself is unreadable. It never mutates the page.
func (e *Extractor) Extract(page *browser.RawPage, now time.Time) (*model.JobRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.HTML))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := firstNonEmpty(doc, titleSelectors)
	company := firstNonEmpty(doc, companySelectors)
	if title == "" && company == "" {
		return nil, ErrMissingFields
	}

	rec := &model.JobRecord{
		Title:       title,
		Company:     company,
		CompanyURL:  companyLink(doc),
		JobURL:      page.URL,
		Description: firstNonEmpty(doc, descriptionSelectors),
		Location:    firstNonEmpty(doc, locationSelectors),
		SalaryRange: firstNonEmpty(doc, salarySelectors),
	}

	text := pageText(doc)
	rec.TechStack = InferTechStack(text, e.profileTech)
	rec.Requirements = ExtractRequirements(text)
	rec.PostedDate = postedDate(doc, text, now)

	return rec, nil
}

// firstNonEmpty walks the selector chain and returns the first matched
// element with non-empty trimmed text.
func firstNonEmpty(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		found := ""
		doc.Find(sel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
			if text := normalize(s.Text()); text != "" {
				found = text
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// companyLink resolves the company URL from the first company selector that
// matches an anchor carrying an href.
func companyLink(doc *goquery.Document) string {
	for _, sel := range companySelectors {
		node := doc.Find(sel).First()
		if href, ok := node.Attr("href"); ok && strings.TrimSpace(href) != "" {
			return strings.TrimSpace(href)
		}
	}
	return ""
}

// pageText flattens the document to plain text with scripts, styles and
// chrome stripped, whitespace collapsed.
func pageText(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return normalize(doc.Text())
	}
	clone := body.Clone()
	clone.Find("script, style, nav, header, footer, noscript").Remove()
	return normalize(clone.Text())
}

// postedDate prefers an explicit machine-readable datetime, then falls back
// to relative phrases in the page text. Unknown stays nil — an undated
// listing is not the same as one posted now.
func postedDate(doc *goquery.Document, text string, now time.Time) *time.Time {
	if dt := datetimeAttr(doc); dt != nil {
		return dt
	}
	return InferPostedDate(text, now)
}

func normalize(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}
