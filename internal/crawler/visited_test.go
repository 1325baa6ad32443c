package crawler

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVisitedSet_MarkIfNew(t *testing.T) {
	t.Parallel()

	set := NewVisitedSet()
	require.True(t, set.MarkIfNew("http://example.com/a"))
	require.False(t, set.MarkIfNew("http://example.com/a"))
	require.True(t, set.MarkIfNew("http://example.com/b"))
	require.Equal(t, 2, set.Len())
}

func TestVisitedSet_RejectsEmptyURL(t *testing.T) {
	t.Parallel()

	set := NewVisitedSet()
	require.False(t, set.MarkIfNew(""))
	require.Equal(t, 0, set.Len())
}

func TestVisitedSet_ConcurrentMarking(t *testing.T) {
	t.Parallel()

	set := NewVisitedSet()
	const workers = 32
	const urls = 50

	var wg sync.WaitGroup
	wins := make(chan string, workers*urls)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < urls; i++ {
				url := fmt.Sprintf("http://example.com/page-%d", i)
				if set.MarkIfNew(url) {
					wins <- url
				}
			}
		}()
	}
	wg.Wait()
	close(wins)

	// Every URL must be won exactly once regardless of interleaving.
	counts := make(map[string]int)
	for url := range wins {
		counts[url]++
	}
	require.Len(t, counts, urls)
	for url, n := range counts {
		require.Equal(t, 1, n, "url %s marked new %d times", url, n)
	}
}
