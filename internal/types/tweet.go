// Package types provides type definitions for the canonical tweet records shared by the
// normalizer, the aggregation pipeline and the exporters.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"strconv"
	"time"
)

// NormalizedUser is the author block attached to every NormalizedTweet.
type NormalizedUser struct {
	Name           string  `json:"name"`
	FollowersCount *int    `json:"followers_count"`
	ScreenName     string  `json:"screen_name"`
	URL            *string `json:"url"`
}

// NormalizedTweet is the uniform record produced from any of the supported response shapes.
// CreatedAtInstant is always set; records whose timestamp cannot be parsed are never built.
type NormalizedTweet struct {
	BookmarkCount    int             `json:"bookmark_count"`
	CreatedAt        string          `json:"created_at"`
	CreatedAtInstant time.Time       `json:"-"`
	ConversationID   string          `json:"conversation_id_str"`
	Entities         json.RawMessage `json:"entities"`
	FavoriteCount    int             `json:"favorite_count"`
	FullText         string          `json:"full_text"`
	ReplyCount       int             `json:"reply_count"`
	RetweetCount     int             `json:"retweet_count"`
	ViewsCount       *int            `json:"views_count"`
	User             NormalizedUser  `json:"user"`
	SourceProfile    string          `json:"_source_profile,omitempty"`
}

// ExportRow is the flat projection of a NormalizedTweet used by tabular exporters.
// Nested entities are dropped and user fields are prefixed with "user_".
type ExportRow struct {
	BookmarkCount      int
	CreatedAt          string
	ConversationID     string
	FavoriteCount      int
	FullText           string
	ReplyCount         int
	RetweetCount       int
	ViewsCount         *int
	UserName           string
	UserFollowersCount *int
	UserScreenName     string
	UserURL            *string
}

// ExportColumns is the header row shared by the csv, excel and html exporters.
var ExportColumns = []string{
	"bookmark_count",
	"created_at",
	"conversation_id_str",
	"favorite_count",
	"full_text",
	"reply_count",
	"retweet_count",
	"views_count",
	"user_name",
	"user_followers_count",
	"user_screen_name",
	"user_url",
}

// Flatten projects the tweet onto an ExportRow.
func (t NormalizedTweet) Flatten() ExportRow {
	return ExportRow{
		BookmarkCount:      t.BookmarkCount,
		CreatedAt:          t.CreatedAt,
		ConversationID:     t.ConversationID,
		FavoriteCount:      t.FavoriteCount,
		FullText:           t.FullText,
		ReplyCount:         t.ReplyCount,
		RetweetCount:       t.RetweetCount,
		ViewsCount:         t.ViewsCount,
		UserName:           t.User.Name,
		UserFollowersCount: t.User.FollowersCount,
		UserScreenName:     t.User.ScreenName,
		UserURL:            t.User.URL,
	}
}

// Strings returns the row as text cells in ExportColumns order.
// Nil optional fields become empty strings.
func (r ExportRow) Strings() []string {
	return []string{
		strconv.Itoa(r.BookmarkCount),
		r.CreatedAt,
		r.ConversationID,
		strconv.Itoa(r.FavoriteCount),
		r.FullText,
		strconv.Itoa(r.ReplyCount),
		strconv.Itoa(r.RetweetCount),
		optionalInt(r.ViewsCount),
		r.UserName,
		optionalInt(r.UserFollowersCount),
		r.UserScreenName,
		optionalString(r.UserURL),
	}
}

// Values returns the row as typed cells in ExportColumns order, with nil for absent fields.
func (r ExportRow) Values() []any {
	return []any{
		r.BookmarkCount,
		r.CreatedAt,
		r.ConversationID,
		r.FavoriteCount,
		r.FullText,
		r.ReplyCount,
		r.RetweetCount,
		derefInt(r.ViewsCount),
		r.UserName,
		derefInt(r.UserFollowersCount),
		r.UserScreenName,
		derefString(r.UserURL),
	}
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func optionalString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func derefInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func derefString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
