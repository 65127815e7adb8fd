package export

import (
	"html/template"
	"io"

	"github.com/jonathan/tweet-scraper/internal/types"
)

var pageTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Twitter Tweets Scraper - Export</title>
    <style>
        body {
            font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
            margin: 2rem;
        }
        table {
            border-collapse: collapse;
            width: 100%;
        }
        th, td {
            border: 1px solid #ddd;
            padding: 0.5rem;
            vertical-align: top;
        }
        th {
            background-color: #f4f4f4;
        }
    </style>
</head>
<body>
<h1>Twitter Tweets Export</h1>
<p>Total tweets: <span id="total">{{.Total}}</span></p>
<table>
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

type pageData struct {
	Total   int
	Columns []string
	Rows    [][]string
}

// writeHTML writes a standalone page with the total count and an escaped table of flattened rows.
func writeHTML(w io.Writer, tweets []types.NormalizedTweet) error {
	data := pageData{
		Total:   len(tweets),
		Columns: types.ExportColumns,
		Rows:    make([][]string, 0, len(tweets)),
	}
	for _, row := range flatten(tweets) {
		data.Rows = append(data.Rows, row.Strings())
	}
	return pageTemplate.Execute(w, data)
}
