package crawler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalRequests tracks the number of HTTP requests dispatched, retries included.
	TotalRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_requests_total",
		Help: "The total number of HTTP requests sent.",
	})
	// TotalRequestErrors tracks fetches that ended in a terminal failure.
	TotalRequestErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_request_errors_total",
		Help: "The total number of fetches that failed after retries.",
	})
	// TotalRateLimitHits tracks 429 responses.
	TotalRateLimitHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_rate_limit_hits_total",
		Help: "The total number of rate limited responses.",
	})
	// TotalBlockedPages tracks pages abandoned because of anti-bot signals.
	TotalBlockedPages = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_blocked_pages_total",
		Help: "The total number of pages skipped due to block indicators.",
	})
	// TotalExtractedRecords tracks records produced by the extractor.
	TotalExtractedRecords = promauto.NewCounter(prometheus.CounterOpts{
		Name: "collector_extracted_records_total",
		Help: "The total number of records extracted from fetched pages.",
	})
)
