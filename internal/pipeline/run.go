// Package pipeline provides the orchestration of a scrape run: per-profile fetch and
// normalization with failure isolation, followed by aggregation into one ordered result.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/jonathan/tweet-scraper/internal/fetch"
	"github.com/jonathan/tweet-scraper/internal/ingestion"
	"github.com/jonathan/tweet-scraper/internal/parsing"
	"github.com/jonathan/tweet-scraper/internal/timeutil"
	"github.com/jonathan/tweet-scraper/internal/types"
)

// Stages at which a profile can fail.
const (
	StageHandle    = "handle"
	StageFetch     = "fetch"
	StageNormalize = "normalize"
)

// Fetcher retrieves the raw timeline payload for a handle.
type Fetcher interface {
	Timeline(ctx context.Context, handle string, count int) (json.RawMessage, error)
}

// ProgressEvent represents a progress update during a run
type ProgressEvent struct {
	Step    string `json:"step"`
	URL     string `json:"url"`
	Message string `json:"message"`
	RunID   string `json:"run_id,omitempty"`
	Count   int    `json:"count"`
}

// ProgressCallback is called when run progress occurs
type ProgressCallback func(event ProgressEvent)

// Options holds configuration for a Scraper
type Options struct {
	Count      int
	RunID      string
	OnProgress ProgressCallback
}

// ProfileResult is the outcome for one input URL. Err is set, together with the Stage it
// happened in, when the profile contributed nothing because of a failure.
type ProfileResult struct {
	URL    string
	Handle string
	Shapes []parsing.Shape
	Tweets []types.NormalizedTweet
	Stage  string
	Err    error
}

// Report is the aggregated result of a run.
type Report struct {
	Since    time.Time
	Profiles []ProfileResult
	Tweets   []types.NormalizedTweet
}

// Failed returns the number of profiles that failed.
func (r *Report) Failed() int {
	n := 0
	for _, p := range r.Profiles {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// Scraper runs the fetch and normalize steps for a list of profile URLs.
type Scraper struct {
	fetcher Fetcher
	logger  *log.Logger
	opts    Options
}

// NewScraper creates a Scraper. A zero Count uses fetch.DefaultCount.
func NewScraper(fetcher Fetcher, logger *log.Logger, opts Options) *Scraper {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.Count <= 0 {
		opts.Count = fetch.DefaultCount
	}
	return &Scraper{fetcher: fetcher, logger: logger, opts: opts}
}

func (s *Scraper) emitProgress(step, url, message string, count int) {
	if s.opts.OnProgress != nil {
		s.opts.OnProgress(ProgressEvent{
			Step:    step,
			URL:     url,
			Message: message,
			RunID:   s.opts.RunID,
			Count:   count,
		})
	}
}

// ScrapeProfile fetches and normalizes one profile. Tweets are filtered by since, sorted
// newest first and tagged with the profile handle. Failures are returned in the result.
func (s *Scraper) ScrapeProfile(ctx context.Context, url string, since time.Time) ProfileResult {
	result := ProfileResult{URL: url}

	handle, err := ingestion.ExtractHandle(url)
	if err != nil {
		return s.fail(result, StageHandle, err)
	}
	result.Handle = handle

	body, err := s.fetcher.Timeline(ctx, handle, s.opts.Count)
	if err != nil {
		return s.fail(result, StageFetch, err)
	}
	s.emitProgress(StageFetch, url, fmt.Sprintf("fetched timeline for %s", handle), len(body))

	payload, err := parsing.Detect(body)
	if err != nil {
		return s.fail(result, StageNormalize, err)
	}
	result.Shapes = payload.Shapes()
	s.logger.Debug("detected payload", "handle", handle, "payload", payload)

	tweets := parsing.Normalize(payload, since)
	for i := range tweets {
		tweets[i].SourceProfile = handle
	}
	result.Tweets = tweets

	s.logger.Info("scraped profile", "handle", handle, "candidates", payload.Len(), "kept", len(tweets))
	s.emitProgress(StageNormalize, url, fmt.Sprintf("kept %d tweet(s) for %s", len(tweets), handle), len(tweets))
	return result
}

func (s *Scraper) fail(result ProfileResult, stage string, err error) ProfileResult {
	result.Stage = stage
	result.Err = err
	s.logger.Error("skipping profile", "url", result.URL, "stage", stage, "err", err)
	s.emitProgress(stage, result.URL, err.Error(), 0)
	return result
}

// Run scrapes every URL in order. A failing URL contributes zero tweets and never stops the
// batch. The aggregate is stable-sorted newest first by the re-parsed created_at value;
// values that no longer parse sort last.
func (s *Scraper) Run(ctx context.Context, urls []string, since time.Time) *Report {
	report := &Report{Since: since}

	for _, url := range urls {
		result := s.ScrapeProfile(ctx, url, since)
		report.Profiles = append(report.Profiles, result)
		report.Tweets = append(report.Tweets, result.Tweets...)
	}

	SortAggregate(report.Tweets)
	return report
}

// SortAggregate stable-sorts tweets newest first by re-parsing CreatedAt.
func SortAggregate(tweets []types.NormalizedTweet) {
	parsing.SortNewestFirst(tweets, reparsedInstant)
}

func reparsedInstant(t types.NormalizedTweet) time.Time {
	instant, ok := timeutil.ParseTimestamp(t.CreatedAt)
	if !ok {
		return time.Time{}
	}
	return instant
}
