package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrMissingBaseURL marks a misconfigured crawl target. It is the only
// condition that aborts the run for that target.
var ErrMissingBaseURL = errors.New("crawl target has no base URL")

// PageFetcher fetches a single URL. Implemented by *Fetcher; swapped for a
// fake in tests.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) FetchAttempt
}

// frontierEntry is one unit of crawl work. Depth is tracked explicitly per
// entry rather than inferred from URL structure.
type frontierEntry struct {
	url   string
	depth int
}

// Engine drives the depth-bounded traversal of one or more crawl targets.
// All targets of a run share the same visited set, so a page linked from two
// sites is still fetched only once.
type Engine struct {
	cfg       Config
	fetcher   PageFetcher
	detector  *BlockDetector
	extractor *Extractor
	visited   *VisitedSet
	logger    *zap.Logger
}

// NewEngine wires an Engine with a fresh visited set.
func NewEngine(cfg Config, fetcher PageFetcher, detector *BlockDetector, extractor *Extractor, logger *zap.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		fetcher:   fetcher,
		detector:  detector,
		extractor: extractor,
		visited:   NewVisitedSet(),
		logger:    logger,
	}
}

// PagesAttempted returns how many distinct URLs the engine has tried so far.
func (e *Engine) PagesAttempted() int {
	return e.visited.Len()
}

// Run crawls one target: the seed page, then depth level by depth level, its
// discovered children. Each level runs on a bounded worker pool; the next
// level starts only after the current one drains. Sibling results carry no
// ordering guarantee. Partial results survive failures and cancellation.
func (e *Engine) Run(ctx context.Context, target CrawlTarget) ([]ExtractedRecord, error) {
	if target.BaseURL == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingBaseURL, target.Name)
	}
	base, err := url.Parse(target.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q for target %q", target.BaseURL, target.Name)
	}
	policy := NewURLPolicy(base, e.cfg.InclusionPatterns, e.cfg.ExclusionPatterns)

	var (
		mu      sync.Mutex
		records []ExtractedRecord
	)
	frontier := []frontierEntry{{url: target.BaseURL, depth: 0}}

	for len(frontier) > 0 && ctx.Err() == nil {
		var (
			nextMu sync.Mutex
			next   []frontierEntry
		)
		sem := make(chan struct{}, e.cfg.MaxWorkers)
		var wg sync.WaitGroup

		for _, entry := range frontier {
			if ctx.Err() != nil {
				break
			}
			wg.Add(1)
			sem <- struct{}{}
			go func(entry frontierEntry) {
				defer wg.Done()
				defer func() { <-sem }()

				record, links := e.crawlPage(ctx, target, policy, entry)
				if record != nil {
					mu.Lock()
					records = append(records, *record)
					mu.Unlock()
				}
				if len(links) > 0 {
					nextMu.Lock()
					for _, link := range links {
						next = append(next, frontierEntry{url: link, depth: entry.depth + 1})
					}
					nextMu.Unlock()
				}
			}(entry)
		}
		wg.Wait()
		frontier = next
	}

	e.logger.Info("target crawl finished",
		zap.String("target", target.Name),
		zap.String("category", target.Category),
		zap.Int("records", len(records)),
	)
	return records, nil
}

// crawlPage runs the fetch-detect-extract path for one frontier entry and
// returns the extracted record (if any) plus the child links to enqueue.
func (e *Engine) crawlPage(ctx context.Context, target CrawlTarget, policy *URLPolicy, entry frontierEntry) (*ExtractedRecord, []string) {
	normalized, err := NormalizeURL(entry.url)
	if err != nil {
		e.logger.Warn("skipping unparseable url", zap.String("url", entry.url), zap.Error(err))
		return nil, nil
	}
	if !e.visited.MarkIfNew(normalized) {
		return nil, nil
	}

	attempt := e.fetcher.Fetch(ctx, normalized)
	if !attempt.Succeeded() {
		e.logger.Warn("fetch did not succeed",
			zap.String("url", normalized),
			zap.String("outcome", string(attempt.Outcome)),
			zap.Int("attempts", attempt.Attempts),
		)
		return nil, nil
	}
	if e.detector.IsBlocked(attempt.StatusCode, attempt.Body) {
		TotalBlockedPages.Inc()
		e.logger.Warn("block indicator detected, abandoning url",
			zap.String("url", normalized),
			zap.Int("status", attempt.StatusCode),
		)
		return nil, nil
	}

	record := e.extractor.Extract(attempt.Body, normalized)
	if record != nil {
		record.Category = target.Category
		record.Priority = target.Priority
		TotalExtractedRecords.Inc()
		e.logger.Debug("record extracted",
			zap.String("url", normalized),
			zap.String("title", record.Title),
			zap.Int("depth", entry.depth),
		)
	}

	// The seed page always contributes links; deeper pages only when they
	// yielded a record, and never past the depth bound.
	expand := target.IncludeMicrosites &&
		entry.depth < e.cfg.MaxDepth &&
		(entry.depth == 0 || record != nil)
	if !expand {
		return record, nil
	}
	return record, e.discoverLinks(attempt.Body, normalized, policy)
}

// discoverLinks resolves every anchor on the page to an absolute URL and
// keeps those the URL policy admits.
func (e *Engine) discoverLinks(body []byte, pageURL string, policy *URLPolicy) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, anchor *goquery.Selection) {
		href, _ := anchor.Attr("href")
		ref, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !policy.Allow(resolved) {
			return
		}
		resolved.Fragment = ""
		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links
}
