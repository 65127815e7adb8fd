package parsing

import (
	"encoding/json"
	"fmt"
	"iter"
	"strings"
)

// Shape names a response layout recognised by Detect.
type Shape string

const (
	// ShapeLegacy is globalObjects.tweets, a map from id to tweet object.
	ShapeLegacy Shape = "legacy"
	// ShapeList is a top-level "tweets" array.
	ShapeList Shape = "list"
	// ShapeTimeline is timeline.instructions[].(addEntries.)entries[].content.item.tweet_results.result.legacy.
	ShapeTimeline Shape = "timeline"
	// ShapeEmbedded is the embedded page data: props.pageProps.timeline.entries[].content.tweet.
	ShapeEmbedded Shape = "embedded"
)

// Candidate is one tweet-like object found in a payload.
type Candidate struct {
	Shape Shape
	Tweet RawObject
}

// Payload is a decoded endpoint response. Each field holds the tweet-like objects found under
// one shape; a payload may match several shapes and all of them are used.
type Payload struct {
	Legacy   []RawObject
	List     []RawObject
	Timeline []RawObject
	Embedded []RawObject

	// Users is the globalObjects.users side table keyed by user id.
	Users map[string]json.RawMessage
}

// Detect decodes a response body and collects the tweet-like objects of every recognised shape.
// Malformed siblings are skipped; the only error is a body that is not valid JSON.
// A valid JSON value that is not an object yields an empty payload.
func Detect(body []byte) (*Payload, error) {
	if !json.Valid(body) {
		return nil, &ParseError{Message: "response body is not valid JSON"}
	}

	p := &Payload{}
	root, ok := ParseObject(body)
	if !ok {
		return p, nil
	}

	p.Legacy, p.Users = detectLegacy(root)
	p.List = detectList(root)
	p.Timeline = detectTimeline(root)
	p.Embedded = detectEmbedded(root)
	return p, nil
}

// Tweets yields every candidate in shape order: legacy, list, timeline, embedded.
func (p *Payload) Tweets() iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		groups := []struct {
			shape  Shape
			tweets []RawObject
		}{
			{ShapeLegacy, p.Legacy},
			{ShapeList, p.List},
			{ShapeTimeline, p.Timeline},
			{ShapeEmbedded, p.Embedded},
		}
		for _, g := range groups {
			for _, tweet := range g.tweets {
				if !yield(Candidate{Shape: g.shape, Tweet: tweet}) {
					return
				}
			}
		}
	}
}

// Len returns the total number of candidates across all shapes.
func (p *Payload) Len() int {
	return len(p.Legacy) + len(p.List) + len(p.Timeline) + len(p.Embedded)
}

// Shapes returns the shapes that produced at least one candidate.
func (p *Payload) Shapes() []Shape {
	var shapes []Shape
	if len(p.Legacy) > 0 {
		shapes = append(shapes, ShapeLegacy)
	}
	if len(p.List) > 0 {
		shapes = append(shapes, ShapeList)
	}
	if len(p.Timeline) > 0 {
		shapes = append(shapes, ShapeTimeline)
	}
	if len(p.Embedded) > 0 {
		shapes = append(shapes, ShapeEmbedded)
	}
	return shapes
}

// UserFor returns the side-table user referenced by the tweet's user_id or user_id_str.
func (p *Payload) UserFor(tweet RawObject) (RawObject, bool) {
	if len(p.Users) == 0 {
		return nil, false
	}
	id, ok := tweet.Text("user_id")
	if !ok {
		id, ok = tweet.Text("user_id_str")
	}
	if !ok {
		return nil, false
	}
	raw, ok := p.Users[id]
	if !ok {
		return nil, false
	}
	user, ok := ParseObject(raw)
	if !ok || len(user) == 0 {
		return nil, false
	}
	return user, true
}

func detectLegacy(root RawObject) ([]RawObject, map[string]json.RawMessage) {
	globals, ok := root.Object("globalObjects")
	if !ok {
		return nil, nil
	}

	var users map[string]json.RawMessage
	if rawUsers, ok := globals.Object("users"); ok {
		users = rawUsers
	}

	rawTweets, ok := globals.Raw("tweets")
	if !ok {
		return nil, users
	}
	members, ok := parseOrderedObject(rawTweets)
	if !ok {
		return nil, users
	}

	var tweets []RawObject
	for _, m := range members {
		if tweet, ok := ParseObject(m.Value); ok {
			tweets = append(tweets, tweet)
		}
	}
	return tweets, users
}

func detectList(root RawObject) []RawObject {
	items, ok := root.Array("tweets")
	if !ok {
		return nil
	}
	var tweets []RawObject
	for _, item := range items {
		if tweet, ok := ParseObject(item); ok {
			tweets = append(tweets, tweet)
		}
	}
	return tweets
}

func detectTimeline(root RawObject) []RawObject {
	timeline, ok := root.Object("timeline")
	if !ok {
		return nil
	}
	instructions, ok := timeline.Array("instructions")
	if !ok {
		return nil
	}

	var tweets []RawObject
	for _, rawInstruction := range instructions {
		instruction, ok := ParseObject(rawInstruction)
		if !ok {
			continue
		}
		for _, rawEntry := range instructionEntries(instruction) {
			if legacy, ok := entryLegacy(rawEntry); ok {
				tweets = append(tweets, legacy)
			}
		}
	}
	return tweets
}

// instructionEntries returns addEntries.entries, falling back to entries when the former is
// absent or empty.
func instructionEntries(instruction RawObject) []json.RawMessage {
	if add, ok := instruction.Object("addEntries"); ok {
		if entries, ok := add.Array("entries"); ok && len(entries) > 0 {
			return entries
		}
	}
	entries, _ := instruction.Array("entries")
	return entries
}

// entryLegacy walks content.item.tweet_results.result.legacy.
func entryLegacy(rawEntry json.RawMessage) (RawObject, bool) {
	node, ok := ParseObject(rawEntry)
	if !ok {
		return nil, false
	}
	for _, key := range []string{"content", "item", "tweet_results", "result", "legacy"} {
		if node, ok = node.Object(key); !ok {
			return nil, false
		}
	}
	return node, true
}

func detectEmbedded(root RawObject) []RawObject {
	node, ok := root.Object("props")
	if !ok {
		return nil
	}
	for _, key := range []string{"pageProps", "timeline"} {
		if node, ok = node.Object(key); !ok {
			return nil
		}
	}
	entries, ok := node.Array("entries")
	if !ok {
		return nil
	}

	var tweets []RawObject
	for _, rawEntry := range entries {
		entry, ok := ParseObject(rawEntry)
		if !ok {
			continue
		}
		content, ok := entry.Object("content")
		if !ok {
			continue
		}
		if tweet, ok := content.Object("tweet"); ok {
			tweets = append(tweets, tweet)
		}
	}
	return tweets
}

// String summarises the payload for debug logging.
func (p *Payload) String() string {
	parts := make([]string, 0, 4)
	for _, s := range p.Shapes() {
		parts = append(parts, string(s))
	}
	if len(parts) == 0 {
		return "payload{no tweets}"
	}
	return fmt.Sprintf("payload{%s: %d tweets}", strings.Join(parts, ","), p.Len())
}
