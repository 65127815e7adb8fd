package export

import (
	"encoding/csv"
	"io"

	"github.com/jonathan/tweet-scraper/internal/types"
)

// writeCSV writes the header row followed by one flattened row per tweet.
// Nil optional fields are written as empty cells.
func writeCSV(w io.Writer, tweets []types.NormalizedTweet) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.ExportColumns); err != nil {
		return err
	}
	for _, row := range flatten(tweets) {
		if err := cw.Write(row.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
