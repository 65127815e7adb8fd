package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractHandle(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"x.com", "https://x.com/example", "example"},
		{"twitter.com", "https://twitter.com/elonmusk", "elonmusk"},
		{"www prefix", "https://www.twitter.com/jack", "jack"},
		{"plain http", "http://x.com/example", "example"},
		{"uppercase domain", "HTTPS://X.COM/Example", "Example"},
		{"trailing path", "https://x.com/example/status/123", "example"},
		{"query string", "https://x.com/example?lang=en", "example"},
		{"fragment", "https://x.com/example#top", "example"},
		{"surrounding whitespace", "  https://x.com/example \n", "example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractHandle(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractHandle_Invalid(t *testing.T) {
	for _, input := range []string{
		"",
		"not-a-url",
		"https://example.com/someone",
		"https://x.com/",
		"ftp://x.com/example",
		"https://mobile.twitter.com/example",
	} {
		t.Run(input, func(t *testing.T) {
			_, err := ExtractHandle(input)
			require.Error(t, err)

			var parseErr *ParseError
			assert.ErrorAs(t, err, &parseErr)
			assert.Contains(t, err.Error(), "could not extract screen name")
		})
	}
}
