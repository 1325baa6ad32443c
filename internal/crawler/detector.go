package crawler

import (
	"bytes"
	"net/http"
	"strings"
)

// defaultBlockIndicators are phrases that mark a page as an anti-bot or
// rate-limit interstitial rather than real content.
var defaultBlockIndicators = []string{
	"captcha",
	"rate limit",
	"access denied",
	"too many requests",
	"unusual traffic",
	"verify you are a human",
}

// BlockDetector inspects fetch responses for anti-bot signals. A blocked
// response is a soft failure: the URL is abandoned for this run while the
// crawl continues elsewhere.
type BlockDetector struct {
	indicators [][]byte
}

// NewBlockDetector builds a detector from the configured indicator phrases,
// falling back to the default set when none are given.
func NewBlockDetector(indicators []string) *BlockDetector {
	if len(indicators) == 0 {
		indicators = defaultBlockIndicators
	}
	lowered := make([][]byte, 0, len(indicators))
	for _, phrase := range indicators {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" {
			continue
		}
		lowered = append(lowered, bytes.ToLower([]byte(phrase)))
	}
	return &BlockDetector{indicators: lowered}
}

// IsBlocked reports whether the response is a block or rate-limit page:
// HTTP 429, or any known indicator phrase in the body text.
func (d *BlockDetector) IsBlocked(statusCode int, body []byte) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	if len(body) == 0 {
		return false
	}
	lowerBody := bytes.ToLower(body)
	for _, phrase := range d.indicators {
		if bytes.Contains(lowerBody, phrase) {
			return true
		}
	}
	return false
}
