// Package ingestion turns user input into profile handles: it parses profile URLs and reads
// URL list files.
package ingestion

import (
	"fmt"
	"regexp"
	"strings"
)

// profileURLPattern matches http(s)://[www.]twitter.com/<handle> and http(s)://[www.]x.com/<handle>.
// The handle runs up to the next '/', '?' or '#'.
var profileURLPattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?(?:twitter\.com|x\.com)/([^/?#]+)`)

// ParseError is returned when a profile URL does not match a supported domain.
type ParseError struct {
	URL     string
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error for %q: %s", e.URL, e.Message)
}

// ExtractHandle returns the profile handle from a profile URL such as
// https://x.com/example or https://www.twitter.com/example?lang=en.
func ExtractHandle(profileURL string) (string, error) {
	match := profileURLPattern.FindStringSubmatch(strings.TrimSpace(profileURL))
	if match == nil {
		return "", &ParseError{
			URL:     profileURL,
			Message: "could not extract screen name from URL",
		}
	}
	return match[1], nil
}
