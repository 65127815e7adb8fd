package export

import (
	"encoding/xml"
	"io"

	"github.com/jonathan/tweet-scraper/internal/types"
)

type xmlDocument struct {
	XMLName xml.Name   `xml:"tweets"`
	Tweets  []xmlTweet `xml:"tweet"`
}

// xmlTweet mirrors the record's scalar fields. Pointer fields are omitted when nil;
// empty strings still produce an (empty) element.
type xmlTweet struct {
	BookmarkCount  int     `xml:"bookmark_count"`
	CreatedAt      string  `xml:"created_at"`
	ConversationID string  `xml:"conversation_id_str"`
	FavoriteCount  int     `xml:"favorite_count"`
	FullText       string  `xml:"full_text"`
	ReplyCount     int     `xml:"reply_count"`
	RetweetCount   int     `xml:"retweet_count"`
	ViewsCount     *int    `xml:"views_count,omitempty"`
	User           xmlUser `xml:"user"`
}

type xmlUser struct {
	Name           string  `xml:"name"`
	FollowersCount *int    `xml:"followers_count,omitempty"`
	ScreenName     string  `xml:"screen_name"`
	URL            *string `xml:"url,omitempty"`
}

// writeXML writes a <tweets> document with one <tweet> element per record.
func writeXML(w io.Writer, tweets []types.NormalizedTweet) error {
	doc := xmlDocument{Tweets: make([]xmlTweet, 0, len(tweets))}
	for _, t := range tweets {
		doc.Tweets = append(doc.Tweets, xmlTweet{
			BookmarkCount:  t.BookmarkCount,
			CreatedAt:      t.CreatedAt,
			ConversationID: t.ConversationID,
			FavoriteCount:  t.FavoriteCount,
			FullText:       t.FullText,
			ReplyCount:     t.ReplyCount,
			RetweetCount:   t.RetweetCount,
			ViewsCount:     t.ViewsCount,
			User: xmlUser{
				Name:           t.User.Name,
				FollowersCount: t.User.FollowersCount,
				ScreenName:     t.User.ScreenName,
				URL:            t.User.URL,
			},
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
