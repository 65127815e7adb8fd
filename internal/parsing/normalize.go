package parsing

import (
	"encoding/json"
	"slices"
	"time"

	"github.com/jonathan/tweet-scraper/internal/timeutil"
	"github.com/jonathan/tweet-scraper/internal/types"
)

// viewKeys are probed in order for the view count.
var viewKeys = []string{"views_count", "view_count", "impression_count", "impressions"}

var emptyEntities = json.RawMessage(`{}`)

// NormalizeTweet builds a canonical record from a tweet-like object.
// user is the side-table user object, or nil to read the tweet's own "user" field.
// It reports false when created_at is missing or cannot be parsed.
func NormalizeTweet(tweet, user RawObject) (types.NormalizedTweet, bool) {
	createdAt, ok := tweet.String("created_at")
	if !ok || createdAt == "" {
		return types.NormalizedTweet{}, false
	}
	instant, ok := timeutil.ParseTimestamp(createdAt)
	if !ok {
		return types.NormalizedTweet{}, false
	}

	return types.NormalizedTweet{
		BookmarkCount:    tweet.Count("bookmark_count"),
		CreatedAt:        createdAt,
		CreatedAtInstant: instant,
		ConversationID:   firstText(tweet, "conversation_id_str", "id_str", "id"),
		Entities:         entities(tweet),
		FavoriteCount:    tweet.Count("favorite_count"),
		FullText:         firstText(tweet, "full_text", "text"),
		ReplyCount:       tweet.Count("reply_count"),
		RetweetCount:     tweet.Count("retweet_count"),
		ViewsCount:       viewsCount(tweet),
		User:             NormalizeUser(tweet, user),
	}, true
}

// NormalizeUser builds the author block from user, or from the tweet's "user" field when user is empty.
func NormalizeUser(tweet, user RawObject) types.NormalizedUser {
	if len(user) == 0 {
		user, _ = tweet.Object("user")
	}

	name, _ := user.String("name")
	screenName, _ := user.String("screen_name")

	var followers *int
	if n, ok := user.Int("followers_count"); ok {
		followers = &n
	}

	return types.NormalizedUser{
		Name:           name,
		FollowersCount: followers,
		ScreenName:     screenName,
		URL:            userURL(user),
	}
}

// userURL reads "url", falling back to entities.url.urls[0].expanded_url (then .url).
// An empty "url" with no usable fallback stays an empty string.
func userURL(user RawObject) *string {
	direct, hasDirect := user.String("url")
	if hasDirect && direct != "" {
		return &direct
	}
	if u, ok := entityURL(user); ok {
		return u
	}
	if hasDirect {
		return &direct
	}
	return nil
}

// entityURL reports false when the user carries no entities.url.urls[0] object.
func entityURL(user RawObject) (*string, bool) {
	node, ok := user.Object("entities")
	if !ok {
		return nil, false
	}
	if node, ok = node.Object("url"); !ok {
		return nil, false
	}
	urls, ok := node.Array("urls")
	if !ok || len(urls) == 0 {
		return nil, false
	}
	first, ok := ParseObject(urls[0])
	if !ok {
		return nil, false
	}
	if u, ok := first.String("expanded_url"); ok && u != "" {
		return &u, true
	}
	if u, ok := first.String("url"); ok {
		return &u, true
	}
	return nil, true
}

func firstText(obj RawObject, keys ...string) string {
	for _, key := range keys {
		if s, ok := obj.Text(key); ok {
			return s
		}
	}
	return ""
}

func entities(tweet RawObject) json.RawMessage {
	if !tweet.Truthy("entities") {
		return emptyEntities
	}
	raw, _ := tweet.Raw("entities")
	return slices.Clone(raw)
}

func viewsCount(tweet RawObject) *int {
	for _, key := range viewKeys {
		if n, ok := tweet.Digits(key); ok {
			return &n
		}
	}
	return nil
}

// Normalize normalizes every candidate in the payload, keeps those created at or after since
// and returns them newest first. Ties keep payload order.
func Normalize(p *Payload, since time.Time) []types.NormalizedTweet {
	var out []types.NormalizedTweet
	for c := range p.Tweets() {
		user, _ := p.UserFor(c.Tweet)
		tweet, ok := NormalizeTweet(c.Tweet, user)
		if !ok {
			continue
		}
		if tweet.CreatedAtInstant.Before(since) {
			continue
		}
		out = append(out, tweet)
	}
	SortNewestFirst(out, func(t types.NormalizedTweet) time.Time { return t.CreatedAtInstant })
	return out
}

// SortNewestFirst stable-sorts tweets by the instant returned from key, newest first.
func SortNewestFirst(tweets []types.NormalizedTweet, key func(types.NormalizedTweet) time.Time) {
	slices.SortStableFunc(tweets, func(a, b types.NormalizedTweet) int {
		return key(b).Compare(key(a))
	})
}
