package parsing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTweet_AllFields(t *testing.T) {
	tweet := mustObject(t, `{
		"created_at": "Wed Mar 06 10:00:39 +0000 2024",
		"conversation_id_str": "999",
		"id_str": "1",
		"full_text": "hello — world",
		"text": "ignored",
		"bookmark_count": 1,
		"favorite_count": 2,
		"reply_count": 3,
		"retweet_count": 4,
		"views_count": 5,
		"entities": {"hashtags": [{"text": "go"}]},
		"user": {"name": "Example", "screen_name": "example", "followers_count": 10, "url": "https://example.com"}
	}`)

	got, ok := NormalizeTweet(tweet, nil)
	require.True(t, ok)

	assert.Equal(t, "Wed Mar 06 10:00:39 +0000 2024", got.CreatedAt)
	assert.True(t, got.CreatedAtInstant.Equal(time.Date(2024, 3, 6, 10, 0, 39, 0, time.UTC)))
	assert.Equal(t, "999", got.ConversationID)
	assert.Equal(t, "hello — world", got.FullText)
	assert.Equal(t, 1, got.BookmarkCount)
	assert.Equal(t, 2, got.FavoriteCount)
	assert.Equal(t, 3, got.ReplyCount)
	assert.Equal(t, 4, got.RetweetCount)
	require.NotNil(t, got.ViewsCount)
	assert.Equal(t, 5, *got.ViewsCount)
	assert.JSONEq(t, `{"hashtags": [{"text": "go"}]}`, string(got.Entities))

	assert.Equal(t, "Example", got.User.Name)
	assert.Equal(t, "example", got.User.ScreenName)
	require.NotNil(t, got.User.FollowersCount)
	assert.Equal(t, 10, *got.User.FollowersCount)
	require.NotNil(t, got.User.URL)
	assert.Equal(t, "https://example.com", *got.User.URL)
}

func TestNormalizeTweet_FlattenPreservesScalars(t *testing.T) {
	tweet := mustObject(t, `{
		"created_at": "2024-03-06T10:00:39Z",
		"conversation_id_str": "42",
		"full_text": "round trip",
		"bookmark_count": 6, "favorite_count": 7, "reply_count": 8, "retweet_count": 9,
		"impression_count": "1000",
		"user": {"name": "N", "screen_name": "sn", "followers_count": 11, "url": "https://u"}
	}`)

	got, ok := NormalizeTweet(tweet, nil)
	require.True(t, ok)

	row := got.Flatten()
	assert.Equal(t, got.CreatedAt, row.CreatedAt)
	assert.Equal(t, "42", row.ConversationID)
	assert.Equal(t, "round trip", row.FullText)
	assert.Equal(t, 6, row.BookmarkCount)
	assert.Equal(t, 7, row.FavoriteCount)
	assert.Equal(t, 8, row.ReplyCount)
	assert.Equal(t, 9, row.RetweetCount)
	assert.Equal(t, 1000, *row.ViewsCount)
	assert.Equal(t, "N", row.UserName)
	assert.Equal(t, "sn", row.UserScreenName)
	assert.Equal(t, 11, *row.UserFollowersCount)
	assert.Equal(t, "https://u", *row.UserURL)
}

func TestNormalizeTweet_Defaults(t *testing.T) {
	got, ok := NormalizeTweet(mustObject(t, `{"created_at": "2024-03-06T10:00:39Z"}`), nil)
	require.True(t, ok)

	assert.Equal(t, "", got.ConversationID)
	assert.Equal(t, "", got.FullText)
	assert.Zero(t, got.BookmarkCount)
	assert.Zero(t, got.FavoriteCount)
	assert.Zero(t, got.ReplyCount)
	assert.Zero(t, got.RetweetCount)
	assert.Nil(t, got.ViewsCount)
	assert.JSONEq(t, `{}`, string(got.Entities))
	assert.Equal(t, "", got.User.Name)
	assert.Equal(t, "", got.User.ScreenName)
	assert.Nil(t, got.User.FollowersCount)
	assert.Nil(t, got.User.URL)
}

func TestNormalizeTweet_DroppedWithoutTimestamp(t *testing.T) {
	for _, body := range []string{
		`{"full_text": "no date"}`,
		`{"created_at": ""}`,
		`{"created_at": null}`,
		`{"created_at": 1709719239}`,
		`{"created_at": "sometime last week"}`,
	} {
		_, ok := NormalizeTweet(mustObject(t, body), nil)
		assert.False(t, ok, body)
	}
}

func TestNormalizeTweet_ConversationIDFallbacks(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"conversation_id_str": "c", "id_str": "s", "id": 1}`, "c"},
		{`{"conversation_id_str": "", "id_str": "s", "id": 1}`, "s"},
		{`{"id_str": "s", "id": 1}`, "s"},
		{`{"id": 1234567890123}`, "1234567890123"},
		{`{"id": "abc"}`, "abc"},
		{`{}`, ""},
	}

	for _, tt := range tests {
		tweet := mustObject(t, tt.body)
		tweet["created_at"] = []byte(`"2024-03-06T10:00:39Z"`)

		got, ok := NormalizeTweet(tweet, nil)
		require.True(t, ok)
		assert.Equal(t, tt.want, got.ConversationID, tt.body)
	}
}

func TestNormalizeTweet_TextFallback(t *testing.T) {
	got, ok := NormalizeTweet(mustObject(t, `{"created_at": "2024-03-06", "text": "short"}`), nil)
	require.True(t, ok)
	assert.Equal(t, "short", got.FullText)

	got, ok = NormalizeTweet(mustObject(t, `{"created_at": "2024-03-06", "full_text": "", "text": "short"}`), nil)
	require.True(t, ok)
	assert.Equal(t, "short", got.FullText)
}

func TestNormalizeTweet_CountCoercion(t *testing.T) {
	got, ok := NormalizeTweet(mustObject(t, `{
		"created_at": "2024-03-06",
		"bookmark_count": "3",
		"favorite_count": null,
		"reply_count": "lots",
		"retweet_count": 2.7
	}`), nil)
	require.True(t, ok)

	assert.Equal(t, 3, got.BookmarkCount)
	assert.Equal(t, 0, got.FavoriteCount)
	assert.Equal(t, 0, got.ReplyCount)
	assert.Equal(t, 2, got.RetweetCount)
}

func TestNormalizeTweet_ViewsProbing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want *int
	}{
		{"impression_count string", `{"impression_count": "42"}`, intPtr(42)},
		{"views_count int", `{"views_count": 7}`, intPtr(7)},
		{"view_count wins over later keys", `{"view_count": 3, "impressions": 9}`, intPtr(3)},
		{"invalid earlier key skipped", `{"views_count": "n/a", "impressions": 9}`, intPtr(9)},
		{"float rejected", `{"views_count": 4.5}`, nil},
		{"negative string rejected", `{"views_count": "-4"}`, nil},
		{"none present", `{}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tweet := mustObject(t, tt.body)
			tweet["created_at"] = []byte(`"2024-03-06"`)

			got, ok := NormalizeTweet(tweet, nil)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.ViewsCount)
		})
	}
}

func TestNormalizeTweet_FalsyEntitiesBecomeEmptyMap(t *testing.T) {
	for _, entities := range []string{`null`, `{}`, `[]`, `""`, `0`} {
		tweet := mustObject(t, `{"created_at": "2024-03-06"}`)
		tweet["entities"] = []byte(entities)

		got, ok := NormalizeTweet(tweet, nil)
		require.True(t, ok)
		assert.JSONEq(t, `{}`, string(got.Entities), entities)
	}
}

func TestNormalizeUser_SideTableWins(t *testing.T) {
	tweet := mustObject(t, `{"user": {"name": "Embedded"}}`)
	side := mustObject(t, `{"name": "Side", "screen_name": "side"}`)

	assert.Equal(t, "Side", NormalizeUser(tweet, side).Name)
	assert.Equal(t, "Embedded", NormalizeUser(tweet, nil).Name)
	assert.Equal(t, "Embedded", NormalizeUser(tweet, RawObject{}).Name)
}

func TestNormalizeUser_FollowersMustBeInteger(t *testing.T) {
	for _, followers := range []string{`"10"`, `10.5`, `null`, `true`} {
		user := mustObject(t, `{}`)
		user["followers_count"] = []byte(followers)
		assert.Nil(t, NormalizeUser(nil, user).FollowersCount, followers)
	}
}

func TestNormalizeUser_URLFallbacks(t *testing.T) {
	tests := []struct {
		name string
		user string
		want *string
	}{
		{"direct url", `{"url": "https://direct"}`, strPtr("https://direct")},
		{"expanded url", `{"url": null, "entities": {"url": {"urls": [{"expanded_url": "https://expanded", "url": "https://t.co/x"}]}}}`, strPtr("https://expanded")},
		{"short url fallback", `{"entities": {"url": {"urls": [{"url": "https://t.co/x"}]}}}`, strPtr("https://t.co/x")},
		{"empty direct url", `{"url": "", "entities": {"url": {"urls": [{"expanded_url": "https://expanded"}]}}}`, strPtr("https://expanded")},
		{"empty urls list", `{"entities": {"url": {"urls": []}}}`, nil},
		{"malformed entities", `{"entities": {"url": "nope"}}`, nil},
		{"nothing", `{}`, nil},
		{"empty url kept", `{"url": ""}`, strPtr("")},
		{"empty url with empty urls list", `{"url": "", "entities": {"url": {"urls": []}}}`, strPtr("")},
		{"empty url, fallback without urls", `{"url": "", "entities": {"url": {"urls": [{"display_url": "x"}]}}}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeUser(nil, mustObject(t, tt.user))
			assert.Equal(t, tt.want, got.URL)
		})
	}
}

func TestNormalize_FilterInclusiveSince(t *testing.T) {
	p, err := Detect([]byte(`{"tweets": [
		{"created_at": "2024-03-04T23:59:59Z", "full_text": "before"},
		{"created_at": "2024-03-05T00:00:00Z", "full_text": "boundary"},
		{"created_at": "2024-03-06T00:00:00Z", "full_text": "after"}
	]}`))
	require.NoError(t, err)

	since := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	got := Normalize(p, since)

	require.Len(t, got, 2)
	assert.Equal(t, "after", got[0].FullText)
	assert.Equal(t, "boundary", got[1].FullText)
}

func TestNormalize_SortsNewestFirstStable(t *testing.T) {
	p, err := Detect([]byte(`{"tweets": [
		{"created_at": "2024-03-02T00:00:00Z", "full_text": "t3"},
		{"created_at": "2024-03-04T00:00:00Z", "full_text": "t1"},
		{"created_at": "2024-03-03T00:00:00Z", "full_text": "t2a"},
		{"created_at": "2024-03-03T00:00:00Z", "full_text": "t2b"},
		{"full_text": "dropped"}
	]}`))
	require.NoError(t, err)

	got := Normalize(p, time.Time{})

	texts := make([]string, 0, len(got))
	for _, tw := range got {
		texts = append(texts, tw.FullText)
	}
	assert.Equal(t, []string{"t1", "t2a", "t2b", "t3"}, texts)
}

func TestNormalize_UsesSideTable(t *testing.T) {
	p, err := Detect([]byte(`{"globalObjects": {
		"tweets": {"1": {"created_at": "2024-03-06", "user_id_str": "7", "user": {"name": "Inline"}}},
		"users": {"7": {"name": "Side", "screen_name": "side", "followers_count": 3}}
	}}`))
	require.NoError(t, err)

	got := Normalize(p, time.Time{})
	require.Len(t, got, 1)
	assert.Equal(t, "Side", got[0].User.Name)
	assert.Equal(t, "side", got[0].User.ScreenName)
	assert.Equal(t, 3, *got[0].User.FollowersCount)
}

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func TestNormalizeTweet_NegativeCountsClampToZero(t *testing.T) {
	tweet := mustObject(t, `{
		"created_at": "2024-03-06T10:00:00Z",
		"favorite_count": -3, "retweet_count": "-7", "reply_count": 2, "bookmark_count": -0.5
	}`)

	got, ok := NormalizeTweet(tweet, nil)
	require.True(t, ok)
	assert.Equal(t, 0, got.FavoriteCount)
	assert.Equal(t, 0, got.RetweetCount)
	assert.Equal(t, 2, got.ReplyCount)
	assert.Equal(t, 0, got.BookmarkCount)
}
