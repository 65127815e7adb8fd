package observability

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseLevel maps a level name to a log.Level. WARNING and CRITICAL are accepted as
// aliases of warn and fatal; anything unrecognized is info.
func ParseLevel(name string) log.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "warning":
		return log.WarnLevel
	case "critical":
		return log.FatalLevel
	}
	level, err := log.ParseLevel(name)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// NewLogger creates the run logger. It is built once in the entry point and passed down.
func NewLogger(w io.Writer, level string) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Level:           ParseLevel(level),
		Prefix:          "tweet_scraper",
	})
}
