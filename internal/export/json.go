package export

import (
	"encoding/json"
	"io"

	"github.com/jonathan/tweet-scraper/internal/types"
)

// writeJSON writes the full records as a pretty-printed array. Non-ASCII and HTML
// characters are written literally.
func writeJSON(w io.Writer, tweets []types.NormalizedTweet) error {
	if tweets == nil {
		tweets = []types.NormalizedTweet{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(tweets)
}
