// Package observability provides logger construction and formatted run summaries for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/tweet-scraper/internal/pipeline"
	"github.com/jonathan/tweet-scraper/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n-3]) + "..."
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintProfiles outputs one line per input URL with its outcome.
func (p *Printer) PrintProfiles(report *pipeline.Report) {
	if report == nil || len(report.Profiles) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Since:    %s\n", report.Since.Format("2006-01-02T15:04:05Z07:00")))
	sb.WriteString(fmt.Sprintf("Profiles: %d (%d failed)\n\n", len(report.Profiles), report.Failed()))

	for _, profile := range report.Profiles {
		name := profile.Handle
		if name == "" {
			name = profile.URL
		}
		if profile.Err != nil {
			sb.WriteString(fmt.Sprintf("✗ %s [%s] %v\n", name, profile.Stage, profile.Err))
			continue
		}
		line := fmt.Sprintf("✓ %s: %d tweet(s)", name, len(profile.Tweets))
		if len(profile.Shapes) > 0 {
			shapes := make([]string, len(profile.Shapes))
			for i, s := range profile.Shapes {
				shapes[i] = string(s)
			}
			line += fmt.Sprintf(" (%s)", strings.Join(shapes, ", "))
		}
		sb.WriteString(line + "\n")
	}

	p.printBox("SCRAPED PROFILES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintTopTweets outputs the newest tweets of the aggregate.
func (p *Printer) PrintTopTweets(tweets []types.NormalizedTweet) {
	if len(tweets) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total tweets: %d\n\n", len(tweets)))

	count := min(len(tweets), maxItemsToShow)
	for i := 0; i < count; i++ {
		tweet := tweets[i]
		sb.WriteString(fmt.Sprintf("#%d  @%s  %s\n", i+1, tweet.SourceProfile, tweet.CreatedAt))
		text := strings.Join(strings.Fields(tweet.FullText), " ")
		sb.WriteString(fmt.Sprintf("    %s\n", truncate(text, 50)))
		sb.WriteString(fmt.Sprintf("    ♥ %d  ↻ %d  ↩ %d", tweet.FavoriteCount, tweet.RetweetCount, tweet.ReplyCount))
		if tweet.ViewsCount != nil {
			sb.WriteString(fmt.Sprintf("  views %d", *tweet.ViewsCount))
		}
		sb.WriteString("\n")
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(tweets) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more tweets", len(tweets)-maxItemsToShow))
	}

	p.printBox("NEWEST TWEETS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExport outputs where the export was written.
func (p *Printer) PrintExport(format, path string, count int) {
	content := fmt.Sprintf("Format:  %s\nRecords: %d\nPath:    %s", format, count, path)
	p.printBox("EXPORT", content)
}
