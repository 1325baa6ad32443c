package crawler

import (
	"context"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Fetcher performs single HTTP GETs with a randomized pre-request delay,
// rotating headers, and bounded retry with exponential backoff. It never
// returns an error to the caller; exhausted retries yield a terminal
// FetchAttempt and the caller decides whether to skip or abort.
type Fetcher struct {
	cfg     Config
	retry   *retryPolicy
	limiter *rate.Limiter
	base    *colly.Collector
	logger  *zap.Logger
}

// NewFetcher builds a Fetcher around a shared base collector. Each request
// clones the collector, so retries and concurrent fetches never share state.
func NewFetcher(cfg Config, logger *zap.Logger) *Fetcher {
	base := colly.NewCollector()
	base.AllowURLRevisit = true
	base.ParseHTTPErrorResponse = true
	base.IgnoreRobotsTxt = !cfg.RespectRobots
	base.WithTransport(&http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          64,
		MaxIdleConnsPerHost:   8,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: cfg.Timeout,
	})

	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Fetcher{
		cfg:     cfg,
		retry:   newRetryPolicy(cfg.MaxRetries, cfg.BackoffBase, cfg.BackoffMax),
		limiter: rate.NewLimiter(limit, 1),
		base:    base,
		logger:  logger,
	}
}

// Fetch retrieves rawURL, retrying timeouts, 5xx and 429 responses up to the
// configured ceiling. Malformed URLs and other 4xx statuses fail immediately.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) FetchAttempt {
	attempt := FetchAttempt{URL: rawURL}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		attempt.Outcome = OutcomeNetworkError
		attempt.Err = err
		f.logger.Warn("refusing malformed url", zap.String("url", rawURL), zap.Error(err))
		return attempt
	}

	for try := 0; ; try++ {
		attempt.Attempts = try + 1

		if err := f.pause(ctx); err != nil {
			attempt.Outcome = OutcomeNetworkError
			attempt.Err = err
			return attempt
		}
		if err := f.limiter.Wait(ctx); err != nil {
			attempt.Outcome = OutcomeNetworkError
			attempt.Err = err
			return attempt
		}

		status, body, reqErr := f.doRequest(ctx, rawURL)
		attempt.StatusCode = status
		attempt.Body = body
		attempt.Err = reqErr
		TotalRequests.Inc()

		if reqErr == nil && status < http.StatusBadRequest {
			attempt.Outcome = OutcomeSuccess
			attempt.Err = nil
			f.logger.Debug("fetch succeeded",
				zap.String("url", rawURL),
				zap.Int("status", status),
				zap.Int("attempts", attempt.Attempts),
			)
			return attempt
		}

		if status == http.StatusTooManyRequests {
			TotalRateLimitHits.Inc()
		}

		retryable := f.retry.RetryableStatus(status)
		if reqErr != nil {
			retryable = f.retry.RetryableError(reqErr)
		}
		if !retryable || try >= f.cfg.MaxRetries {
			attempt.Outcome = classifyFailure(status, reqErr)
			TotalRequestErrors.Inc()
			f.logger.Warn("fetch failed",
				zap.String("url", rawURL),
				zap.Int("status", status),
				zap.Int("attempts", attempt.Attempts),
				zap.String("outcome", string(attempt.Outcome)),
				zap.Error(reqErr),
			)
			return attempt
		}

		backoff := f.retry.Backoff(try)
		f.logger.Debug("retrying fetch",
			zap.String("url", rawURL),
			zap.Int("status", status),
			zap.Int("attempt", attempt.Attempts),
			zap.Duration("backoff", backoff),
		)
		if err := sleepContext(ctx, backoff); err != nil {
			attempt.Outcome = OutcomeNetworkError
			attempt.Err = err
			return attempt
		}
	}
}

// doRequest runs one GET through a cloned collector and captures the
// response status, body, and any transport error.
func (f *Fetcher) doRequest(ctx context.Context, rawURL string) (int, []byte, error) {
	c := f.base.Clone()
	c.AllowURLRevisit = true
	c.ParseHTTPErrorResponse = true
	c.UserAgent = f.cfg.UserAgents[rand.Intn(len(f.cfg.UserAgents))]
	if f.cfg.Timeout > 0 {
		c.SetRequestTimeout(f.cfg.Timeout)
	}

	var (
		status int
		body   []byte
		cbErr  error
	)

	c.OnRequest(func(r *colly.Request) {
		if f.cfg.AcceptHeader != "" {
			r.Headers.Set("Accept", f.cfg.AcceptHeader)
		}
		if f.cfg.AcceptLanguage != "" {
			r.Headers.Set("Accept-Language", f.cfg.AcceptLanguage)
		}
	})
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = append([]byte(nil), r.Body...)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
			if len(r.Body) > 0 {
				body = append([]byte(nil), r.Body...)
			}
		}
		cbErr = err
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Visit(rawURL)
	}()

	select {
	case <-ctx.Done():
		return status, body, ctx.Err()
	case visitErr := <-done:
		if cbErr != nil {
			return status, body, cbErr
		}
		return status, body, visitErr
	}
}

// pause sleeps for a random duration inside the configured delay range.
func (f *Fetcher) pause(ctx context.Context) error {
	if f.cfg.DelayMax <= 0 {
		return nil
	}
	delay := f.cfg.DelayMin
	if span := f.cfg.DelayMax - f.cfg.DelayMin; span > 0 {
		delay += time.Duration(rand.Int63n(int64(span)))
	}
	return sleepContext(ctx, delay)
}

func classifyFailure(status int, err error) Outcome {
	switch {
	case status == http.StatusTooManyRequests:
		return OutcomeBlocked
	case isTimeout(err):
		return OutcomeTimeout
	default:
		return OutcomeNetworkError
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
