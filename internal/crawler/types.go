// Package crawler implements the crawl-and-extract engine: depth-bounded
// traversal of configured sites, polite fetching, block detection, and
// heuristic field extraction.
package crawler

// CrawlTarget describes one configured site to collect from. Targets are
// built from the sources config and are immutable for the duration of a run.
type CrawlTarget struct {
	BaseURL           string
	Name              string
	Category          string
	Priority          int
	IncludeMicrosites bool
}

// Outcome classifies the terminal result of a fetch.
type Outcome string

// Terminal fetch outcomes.
const (
	OutcomeSuccess      Outcome = "success"
	OutcomeTimeout      Outcome = "timeout"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeBlocked      Outcome = "blocked"
)

// FetchAttempt is the result of fetching a single URL, including however many
// retries the fetcher spent on it. It is never persisted beyond the fetch.
type FetchAttempt struct {
	URL        string
	Attempts   int
	StatusCode int
	Body       []byte
	Outcome    Outcome
	Err        error
}

// Succeeded reports whether the fetch produced a usable response body.
func (a FetchAttempt) Succeeded() bool {
	return a.Outcome == OutcomeSuccess
}

// ExtractedRecord is one article-shaped record pulled out of a fetched page.
// Title and Content are always non-empty; Date is formatted YYYY-MM-DD or
// falls back to the crawl date.
type ExtractedRecord struct {
	Title      string
	Content    string
	Date       string
	SourceURL  string
	ScrapeDate string
	Category   string
	Priority   int
}
