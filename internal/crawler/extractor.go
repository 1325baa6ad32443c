package crawler

import (
	"bytes"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	// minTitleRunes is the length a title candidate must exceed after
	// whitespace normalization.
	minTitleRunes = 5
	// minContentRunes is the length the normalized content must exceed.
	minContentRunes = 100
)

// nonContentSelector lists elements stripped before content extraction.
const nonContentSelector = "script, style, noscript, iframe, form, nav, header, footer, aside, button"

// defaultDateFormats are tried in order against date candidates. Go's parser
// accepts fractional seconds even when the layout omits them, so the RFC3339
// layout also covers millisecond timestamps.
var defaultDateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
}

// Extractor derives title, body text, and publication date from raw markup
// using ordered fallback strategies. It never rejects records for content
// quality beyond the emptiness rules; that is the validator's job.
type Extractor struct {
	dateFormats    []string
	contentPattern *regexp.Regexp
	now            func() time.Time
}

// NewExtractor builds an Extractor with the configured date formats, falling
// back to the default list when none are given.
func NewExtractor(dateFormats []string) *Extractor {
	if len(dateFormats) == 0 {
		dateFormats = defaultDateFormats
	}
	return &Extractor{
		dateFormats:    dateFormats,
		contentPattern: regexp.MustCompile(`(?i)(content|article|post|story|entry|body|text)`),
		now:            time.Now,
	}
}

// Extract parses raw markup and returns a record, or nil when either title or
// content extraction fails. A missing or unparseable date falls back to the
// crawl date; that is policy, not an error.
func (e *Extractor) Extract(body []byte, sourceURL string) *ExtractedRecord {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}

	title := e.extractTitle(doc)
	if title == "" {
		return nil
	}

	// Date candidates can live inside headers, so find them before the
	// non-content strip mutates the document.
	date := e.extractDate(doc)

	doc.Find(nonContentSelector).Remove()
	content := e.extractContent(doc)
	if content == "" {
		return nil
	}

	today := e.now().Format("2006-01-02")
	if date == "" {
		date = today
	}

	return &ExtractedRecord{
		Title:      title,
		Content:    content,
		Date:       date,
		SourceURL:  sourceURL,
		ScrapeDate: today,
	}
}

// titleStrategies are tried in order; the first candidate longer than
// minTitleRunes wins.
var titleStrategies = []struct {
	name string
	find func(doc *goquery.Document) string
}{
	{"heading", func(doc *goquery.Document) string {
		return doc.Find("h1").First().Text()
	}},
	{"social-meta", func(doc *goquery.Document) string {
		content, _ := doc.Find("meta[property='og:title']").First().Attr("content")
		return content
	}},
	{"document-title", func(doc *goquery.Document) string {
		return doc.Find("title").First().Text()
	}},
}

func (e *Extractor) extractTitle(doc *goquery.Document) string {
	for _, strategy := range titleStrategies {
		candidate := normalizeSpace(strategy.find(doc))
		if utf8.RuneCountInString(candidate) > minTitleRunes {
			return candidate
		}
	}
	return ""
}

func (e *Extractor) extractContent(doc *goquery.Document) string {
	containers := []struct {
		name string
		find func() *goquery.Selection
	}{
		{"article", func() *goquery.Selection { return doc.Find("article").First() }},
		{"main", func() *goquery.Selection { return doc.Find("main").First() }},
		{"content-class", func() *goquery.Selection { return e.findContentContainer(doc) }},
	}
	for _, container := range containers {
		sel := container.find()
		if sel == nil || sel.Length() == 0 {
			continue
		}
		text := blockText(sel)
		if utf8.RuneCountInString(text) > minContentRunes {
			return text
		}
	}
	return ""
}

// findContentContainer locates the first div or section whose class or id
// looks content-like.
func (e *Extractor) findContentContainer(doc *goquery.Document) *goquery.Selection {
	return doc.Find("div, section").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		id, _ := s.Attr("id")
		return e.contentPattern.MatchString(class) || e.contentPattern.MatchString(id)
	}).First()
}

// blockText concatenates paragraph and block-level text inside sel, falling
// back to the container's own text when it holds no block elements.
func blockText(sel *goquery.Selection) string {
	blocks := sel.Find("p, h2, h3, h4, li, blockquote")
	if blocks.Length() == 0 {
		return normalizeSpace(sel.Text())
	}
	parts := make([]string, 0, blocks.Length())
	blocks.Each(func(_ int, block *goquery.Selection) {
		if text := normalizeSpace(block.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, " ")
}

func (e *Extractor) extractDate(doc *goquery.Document) string {
	for _, candidate := range dateCandidates(doc) {
		if formatted, ok := e.parseDate(candidate); ok {
			return formatted
		}
	}
	return ""
}

// dateCandidates gathers date strings in fallback order: explicit time
// element, date-like class names, then published-time meta tags.
func dateCandidates(doc *goquery.Document) []string {
	var candidates []string

	timeEl := doc.Find("time").First()
	if timeEl.Length() > 0 {
		if dt, ok := timeEl.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
			candidates = append(candidates, dt)
		}
		candidates = append(candidates, timeEl.Text())
	}

	classEl := doc.Find("[class*='date'], [class*='Date'], [class*='posted'], [class*='publish']").First()
	if classEl.Length() > 0 {
		candidates = append(candidates, classEl.Text())
	}

	for _, selector := range []string{
		"meta[property='article:published_time']",
		"meta[property='og:published_time']",
		"meta[name='date']",
	} {
		if content, ok := doc.Find(selector).First().Attr("content"); ok {
			candidates = append(candidates, content)
		}
	}

	return candidates
}

// parseDate tries the configured layouts in order and reformats the first
// match as YYYY-MM-DD.
func (e *Extractor) parseDate(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	for _, layout := range e.dateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format("2006-01-02"), true
		}
	}
	return "", false
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
