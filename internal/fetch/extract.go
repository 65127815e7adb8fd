package fetch

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// embeddedSelectors locate a JSON document inside an HTML page, in priority order:
// the Next.js data blob served to browsers, then the <pre> Chrome wraps raw JSON in.
var embeddedSelectors = []string{
	"script#__NEXT_DATA__",
	"body > pre",
}

// ExtractJSON returns body when it is valid JSON, otherwise the first JSON document embedded
// in it as an HTML page. It reports false when neither exists.
func ExtractJSON(body []byte) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		return trimmed, true
	}
	if !bytes.Contains(bytes.ToLower(trimmed), []byte("<html")) &&
		!bytes.Contains(trimmed, []byte("<script")) &&
		!bytes.Contains(trimmed, []byte("<pre")) {
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(trimmed))
	if err != nil {
		return nil, false
	}
	for _, selector := range embeddedSelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" && json.Valid([]byte(text)) {
			return json.RawMessage(text), true
		}
	}
	return nil, false
}
