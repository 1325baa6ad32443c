package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases host", "http://Example.COM/Path", "http://example.com/Path"},
		{"strips default http port", "http://example.com:80/a", "http://example.com/a"},
		{"strips default https port", "https://example.com:443/a", "https://example.com/a"},
		{"drops fragment", "http://example.com/a#section", "http://example.com/a"},
		{"adds root path", "http://example.com", "http://example.com/"},
		{"sorts query params", "http://example.com/a?b=2&a=1", "http://example.com/a?a=1&b=2"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeURL(tc.in)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeURL_Rejects(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "not a url at all://", "ftp://example.com/x", "mailto:x@example.com", "/relative/only"} {
		_, err := NormalizeURL(raw)
		require.Error(t, err, "expected error for %q", raw)
	}
}
