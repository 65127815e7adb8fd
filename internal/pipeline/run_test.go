package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/tweet-scraper/internal/fetch"
	"github.com/jonathan/tweet-scraper/internal/ingestion"
	"github.com/jonathan/tweet-scraper/internal/parsing"
	"github.com/jonathan/tweet-scraper/internal/types"
)

type stubFetcher struct {
	bodies map[string]string
	errs   map[string]error
	calls  []string
	counts []int
}

func (f *stubFetcher) Timeline(_ context.Context, handle string, count int) (json.RawMessage, error) {
	f.calls = append(f.calls, handle)
	f.counts = append(f.counts, count)
	if err, ok := f.errs[handle]; ok {
		return nil, err
	}
	return json.RawMessage(f.bodies[handle]), nil
}

var since = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestRun_IsolatesFailures(t *testing.T) {
	fetcher := &stubFetcher{
		bodies: map[string]string{
			"alice": `{"tweets": [
				{"created_at": "Wed Mar 06 10:00:39 +0000 2024", "full_text": "a1", "id_str": "1"},
				{"created_at": "Fri Mar 08 09:00:00 +0000 2024", "full_text": "a2", "id_str": "2"}
			]}`,
		},
		errs: map[string]error{
			"bob": &fetch.NetworkError{URL: "https://example.test", Message: "unexpected status", StatusCode: 503},
		},
	}

	s := NewScraper(fetcher, nil, Options{})
	report := s.Run(context.Background(), []string{
		"https://twitter.com/alice",
		"https://example.com/not-a-profile",
		"https://x.com/bob",
	}, since)

	require.Len(t, report.Profiles, 3)
	assert.Equal(t, 2, report.Failed())
	assert.Equal(t, []string{"alice", "bob"}, fetcher.calls)

	assert.NoError(t, report.Profiles[0].Err)
	assert.Equal(t, []parsing.Shape{parsing.ShapeList}, report.Profiles[0].Shapes)

	assert.Equal(t, StageHandle, report.Profiles[1].Stage)
	var parseErr *ingestion.ParseError
	assert.ErrorAs(t, report.Profiles[1].Err, &parseErr)

	assert.Equal(t, StageFetch, report.Profiles[2].Stage)
	var netErr *fetch.NetworkError
	assert.ErrorAs(t, report.Profiles[2].Err, &netErr)

	require.Len(t, report.Tweets, 2)
	assert.Equal(t, "a2", report.Tweets[0].FullText)
	assert.Equal(t, "a1", report.Tweets[1].FullText)
	for _, tw := range report.Tweets {
		assert.Equal(t, "alice", tw.SourceProfile)
	}
}

func TestRun_EndToEndSingleTweet(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"example": `{"tweets":[{"created_at":"Wed Mar 06 10:00:39 +0000 2024","full_text":"hi","id_str":"1"}]}`,
	}}

	report := NewScraper(fetcher, nil, Options{}).Run(context.Background(),
		[]string{"https://twitter.com/example"}, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))

	require.Len(t, report.Tweets, 1)
	tw := report.Tweets[0]
	assert.Equal(t, "hi", tw.FullText)
	assert.Equal(t, "1", tw.ConversationID)
	assert.Equal(t, 0, tw.BookmarkCount)
	assert.Equal(t, "example", tw.SourceProfile)
}

func TestRun_GlobalOrderAcrossProfiles(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"a": `{"tweets": [
			{"created_at": "2024-03-05T10:00:00Z", "full_text": "a-old"},
			{"created_at": "2024-03-09T10:00:00Z", "full_text": "a-new"}
		]}`,
		"b": `{"tweets": [
			{"created_at": "2024-03-07T10:00:00Z", "full_text": "b-mid"},
			{"created_at": "2024-03-09T10:00:00Z", "full_text": "b-tie"}
		]}`,
	}}

	report := NewScraper(fetcher, nil, Options{}).Run(context.Background(),
		[]string{"https://twitter.com/a", "https://twitter.com/b"}, since)

	var texts []string
	for _, tw := range report.Tweets {
		texts = append(texts, tw.FullText)
	}
	assert.Equal(t, []string{"a-new", "b-tie", "b-mid", "a-old"}, texts)
}

func TestRun_SinceFilter(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{
		"a": `{"tweets": [
			{"created_at": "2024-02-28T23:59:59Z", "full_text": "before"},
			{"created_at": "2024-03-01T00:00:00Z", "full_text": "boundary"}
		]}`,
	}}

	report := NewScraper(fetcher, nil, Options{}).Run(context.Background(), []string{"https://twitter.com/a"}, since)

	require.Len(t, report.Tweets, 1)
	assert.Equal(t, "boundary", report.Tweets[0].FullText)
}

func TestRun_NormalizeFailure(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{"a": `not json`}}

	report := NewScraper(fetcher, nil, Options{}).Run(context.Background(), []string{"https://twitter.com/a"}, since)

	require.Len(t, report.Profiles, 1)
	assert.Equal(t, StageNormalize, report.Profiles[0].Stage)
	assert.Error(t, report.Profiles[0].Err)
	assert.Empty(t, report.Tweets)
}

func TestRun_NoURLs(t *testing.T) {
	report := NewScraper(&stubFetcher{}, nil, Options{}).Run(context.Background(), nil, since)
	assert.Empty(t, report.Profiles)
	assert.Empty(t, report.Tweets)
	assert.Equal(t, 0, report.Failed())
}

func TestNewScraper_DefaultCount(t *testing.T) {
	fetcher := &stubFetcher{bodies: map[string]string{"a": `{}`}}

	NewScraper(fetcher, nil, Options{}).ScrapeProfile(context.Background(), "https://twitter.com/a", since)
	NewScraper(fetcher, nil, Options{Count: 20}).ScrapeProfile(context.Background(), "https://twitter.com/a", since)

	assert.Equal(t, []int{fetch.DefaultCount, 20}, fetcher.counts)
}

func TestScrapeProfile_Progress(t *testing.T) {
	fetcher := &stubFetcher{
		bodies: map[string]string{"a": `{"tweets": [{"created_at": "2024-03-05T10:00:00Z", "full_text": "x"}]}`},
		errs:   map[string]error{"b": errors.New("boom")},
	}

	var events []ProgressEvent
	s := NewScraper(fetcher, nil, Options{
		RunID:      "run-1",
		OnProgress: func(e ProgressEvent) { events = append(events, e) },
	})
	s.Run(context.Background(), []string{"https://twitter.com/a", "https://twitter.com/b"}, since)

	require.Len(t, events, 3)
	assert.Equal(t, StageFetch, events[0].Step)
	assert.Equal(t, StageNormalize, events[1].Step)
	assert.Equal(t, 1, events[1].Count)
	assert.Equal(t, StageFetch, events[2].Step)
	assert.Equal(t, "boom", events[2].Message)
	for _, e := range events {
		assert.Equal(t, "run-1", e.RunID)
	}
}

func TestSortAggregate_UnparseableSinks(t *testing.T) {
	tweets := []types.NormalizedTweet{
		{CreatedAt: "garbage", FullText: "bad"},
		{CreatedAt: "Wed Mar 06 10:00:39 +0000 2024", FullText: "old"},
		{CreatedAt: "2024-03-07T00:00:00+02:00", FullText: "new"},
	}

	SortAggregate(tweets)

	assert.Equal(t, "new", tweets[0].FullText)
	assert.Equal(t, "old", tweets[1].FullText)
	assert.Equal(t, "bad", tweets[2].FullText)
}
