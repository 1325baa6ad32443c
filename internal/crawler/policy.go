package crawler

import (
	"net/url"
	"strings"
)

// defaultExclusionPatterns filter out navigation, account, feed, and static
// asset paths that never hold article content.
var defaultExclusionPatterns = []string{
	"/login", "/signin", "/sign-in", "/register", "/account", "/cart",
	"/search", "?page=", "/page/",
	"/feed", "/rss", "/sitemap",
	".pdf", ".jpg", ".jpeg", ".png", ".gif", ".svg", ".css", ".js",
	".zip", ".mp4", ".mp3",
}

// defaultInclusionPatterns are the thematic keywords a child path must carry
// to be worth fetching.
var defaultInclusionPatterns = []string{
	"research", "report", "policy", "transport", "publication", "study", "news",
}

// URLPolicy decides which discovered links a crawl may follow. A link passes
// only if it shares the seed's host, avoids every exclusion pattern, and
// matches at least one inclusion pattern.
type URLPolicy struct {
	host      string
	inclusion []string
	exclusion []string
}

// NewURLPolicy builds a policy scoped to the seed URL's host.
func NewURLPolicy(base *url.URL, inclusion, exclusion []string) *URLPolicy {
	if len(inclusion) == 0 {
		inclusion = defaultInclusionPatterns
	}
	if len(exclusion) == 0 {
		exclusion = defaultExclusionPatterns
	}
	return &URLPolicy{
		host:      strings.ToLower(base.Hostname()),
		inclusion: lowerAll(inclusion),
		exclusion: lowerAll(exclusion),
	}
}

// Allow reports whether u may be fetched under this policy.
func (p *URLPolicy) Allow(u *url.URL) bool {
	if u == nil || !strings.EqualFold(u.Hostname(), p.host) {
		return false
	}
	path := strings.ToLower(u.Path)
	if u.RawQuery != "" {
		path += "?" + strings.ToLower(u.RawQuery)
	}
	for _, pattern := range p.exclusion {
		if strings.Contains(path, pattern) {
			return false
		}
	}
	for _, pattern := range p.inclusion {
		if strings.Contains(path, pattern) {
			return true
		}
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(strings.ToLower(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
