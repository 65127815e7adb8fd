// Package export writes aggregated tweet records to disk as json, csv, excel, xml or html.
package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jonathan/tweet-scraper/internal/schemas"
	"github.com/jonathan/tweet-scraper/internal/types"
)

// Format is an export format tag.
type Format string

const (
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
	FormatXML   Format = "xml"
	FormatHTML  Format = "html"
)

// Formats lists every supported format tag.
var Formats = []Format{FormatJSON, FormatCSV, FormatExcel, FormatXML, FormatHTML}

// UnsupportedFormatError is returned for an unknown format tag.
type UnsupportedFormatError struct {
	Format string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported export format: %q", e.Format)
}

// ParseFormat resolves a case-insensitive format tag.
func ParseFormat(tag string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(tag)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", &UnsupportedFormatError{Format: tag}
}

// Extension returns the file extension used for default output names.
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return string(f)
}

// writerFunc writes all tweets to w in one format.
type writerFunc func(w io.Writer, tweets []types.NormalizedTweet) error

var writers = map[Format]writerFunc{
	FormatJSON:  writeJSON,
	FormatCSV:   writeCSV,
	FormatExcel: writeExcel,
	FormatXML:   writeXML,
	FormatHTML:  writeHTML,
}

// Exporter writes tweet records to files.
type Exporter struct {
	logger *log.Logger
}

// New creates an Exporter. A nil logger discards output.
func New(logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Exporter{logger: logger}
}

// Export writes tweets to path in the given format, creating missing parent directories.
// An unknown format fails with *UnsupportedFormatError before anything touches the filesystem.
func (e *Exporter) Export(tweets []types.NormalizedTweet, format string, path string) error {
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	write := writers[f]

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	// At debug level the JSON export is also checked against the tweets schema.
	var written bytes.Buffer
	w := io.Writer(out)
	selfCheck := f == FormatJSON && e.logger.GetLevel() <= log.DebugLevel
	if selfCheck {
		w = io.MultiWriter(out, &written)
	}

	if err := write(w, tweets); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write %s export to %s: %w", f, path, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", path, err)
	}

	if selfCheck {
		e.checkJSON(written.Bytes(), path)
	}
	e.logger.Info("exported tweets", "count", len(tweets), "format", string(f), "path", path)
	return nil
}

// checkJSON logs whether a written JSON export matches the embedded tweets schema.
func (e *Exporter) checkJSON(data []byte, path string) {
	if err := schemas.Validate(schemas.Tweets, data); err != nil {
		e.logger.Warn("json export does not match the tweets schema", "path", path, "err", err)
		return
	}
	e.logger.Debug("json export matches the tweets schema", "path", path)
}

// flatten projects tweets onto export rows.
func flatten(tweets []types.NormalizedTweet) []types.ExportRow {
	rows := make([]types.ExportRow, 0, len(tweets))
	for _, t := range tweets {
		rows = append(rows, t.Flatten())
	}
	return rows
}
