package crawler

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// longParagraph comfortably exceeds the minimum content length.
var longParagraph = strings.Repeat("Road freight volumes continued to grow across the corridor. ", 4)

func pageHTML(head, body string) []byte {
	return []byte(fmt.Sprintf("<html><head>%s</head><body>%s</body></html>", head, body))
}

func TestExtract_TitleStrategies(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)
	article := fmt.Sprintf("<article><p>%s</p></article>", longParagraph)

	t.Run("heading wins", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(
			"<title>Site Title | Section</title>",
			"<h1>Rail Electrification Study</h1>"+article,
		), "https://example.org/research/rail")
		require.NotNil(t, rec)
		require.Equal(t, "Rail Electrification Study", rec.Title)
	})

	t.Run("short heading falls back to og:title", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(
			"<meta property='og:title' content='Bus Network Redesign Report'>",
			"<h1>News</h1>"+article,
		), "https://example.org/research/bus")
		require.NotNil(t, rec)
		require.Equal(t, "Bus Network Redesign Report", rec.Title)
	})

	t.Run("document title is last resort", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(
			"<title>Freight Corridor Analysis</title>",
			article,
		), "https://example.org/research/freight")
		require.NotNil(t, rec)
		require.Equal(t, "Freight Corridor Analysis", rec.Title)
	})

	t.Run("no usable title", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML("<title>News</title>", article), "https://example.org/x")
		require.Nil(t, rec)
	})

	t.Run("title whitespace normalized", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(
			"",
			"<h1>  Metro \n   Expansion   Plan </h1>"+article,
		), "https://example.org/research/metro")
		require.NotNil(t, rec)
		require.Equal(t, "Metro Expansion Plan", rec.Title)
	})
}

func TestExtract_ContentStrategies(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)
	head := "<title>Port Capacity Review</title>"

	t.Run("article element", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(head, fmt.Sprintf(
			"<article><p>%s</p><p>Second paragraph.</p></article>", longParagraph,
		)), "https://example.org/research/ports")
		require.NotNil(t, rec)
		require.Contains(t, rec.Content, "Road freight volumes")
		require.Contains(t, rec.Content, "Second paragraph.")
	})

	t.Run("main fallback", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(head, fmt.Sprintf(
			"<main><p>%s</p></main>", longParagraph,
		)), "https://example.org/research/ports")
		require.NotNil(t, rec)
		require.Contains(t, rec.Content, "Road freight volumes")
	})

	t.Run("content-like class fallback", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(head, fmt.Sprintf(
			"<div class='post-content'><p>%s</p></div>", longParagraph,
		)), "https://example.org/research/ports")
		require.NotNil(t, rec)
		require.Contains(t, rec.Content, "Road freight volumes")
	})

	t.Run("non-content elements stripped", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(head, fmt.Sprintf(
			"<article><nav><p>Home About Contact</p></nav><p>%s</p><footer><p>All rights reserved</p></footer></article>",
			longParagraph,
		)), "https://example.org/research/ports")
		require.NotNil(t, rec)
		require.NotContains(t, rec.Content, "Home About Contact")
		require.NotContains(t, rec.Content, "All rights reserved")
	})

	t.Run("length boundary", func(t *testing.T) {
		t.Parallel()
		exactly100 := strings.Repeat("x", 100)
		rec := e.Extract(pageHTML(head, fmt.Sprintf("<article><p>%s</p></article>", exactly100)),
			"https://example.org/research/short")
		require.Nil(t, rec, "content of exactly 100 runes must be rejected")

		over := strings.Repeat("x", 101)
		rec = e.Extract(pageHTML(head, fmt.Sprintf("<article><p>%s</p></article>", over)),
			"https://example.org/research/short")
		require.NotNil(t, rec)
	})

	t.Run("no content container", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(head, fmt.Sprintf("<div class='sidebar'><p>%s</p></div>", longParagraph)),
			"https://example.org/research/none")
		require.Nil(t, rec)
	})
}

func TestExtract_DateStrategies(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)
	article := fmt.Sprintf("<h1>Transit Funding Outlook</h1><article><p>%s</p></article>", longParagraph)

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"time datetime attribute",
			"<time datetime='2023-03-05T10:00:00.000Z'>March 5</time>" + article,
			"2023-03-05",
		},
		{
			"time element text",
			"<time>2023-03-05</time>" + article,
			"2023-03-05",
		},
		{
			"date-like class",
			"<span class='post-date'>March 5, 2023</span>" + article,
			"2023-03-05",
		},
		{
			"day-first format",
			"<span class='published'>05/03/2023</span>" + article,
			"2023-03-05",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := e.Extract(pageHTML("", tc.body), "https://example.org/research/x")
			require.NotNil(t, rec)
			require.Equal(t, tc.want, rec.Date)
		})
	}

	t.Run("published_time meta", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(
			"<meta property='article:published_time' content='2023-03-05T10:00:00Z'>",
			article,
		), "https://example.org/research/x")
		require.NotNil(t, rec)
		require.Equal(t, "2023-03-05", rec.Date)
	})

	t.Run("date inside stripped header still found", func(t *testing.T) {
		t.Parallel()
		rec := e.Extract(pageHTML(
			"",
			"<header><time datetime='2023-03-05'>5 March</time></header>"+article,
		), "https://example.org/research/x")
		require.NotNil(t, rec)
		require.Equal(t, "2023-03-05", rec.Date)
	})
}

func TestExtract_DateFallsBackToCrawlDate(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)
	e.now = func() time.Time { return time.Date(2023, 6, 14, 9, 30, 0, 0, time.UTC) }

	rec := e.Extract(pageHTML(
		"",
		fmt.Sprintf("<h1>Cycling Infrastructure Review</h1><article><p>%s</p></article>", longParagraph),
	), "https://example.org/research/cycling")
	require.NotNil(t, rec)
	require.Equal(t, "2023-06-14", rec.Date)
	require.Equal(t, "2023-06-14", rec.ScrapeDate)
}

func TestExtract_RecordFields(t *testing.T) {
	t.Parallel()

	e := NewExtractor(nil)
	rec := e.Extract(pageHTML(
		"",
		fmt.Sprintf("<h1>Airport Access Study</h1><time datetime='2022-11-01'></time><article><p>%s</p></article>", longParagraph),
	), "https://example.org/research/airport")
	require.NotNil(t, rec)
	require.Equal(t, "https://example.org/research/airport", rec.SourceURL)
	require.Equal(t, "2022-11-01", rec.Date)
	require.NotEmpty(t, rec.ScrapeDate)
}
