package export

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/tweet-scraper/internal/types"
)

// SheetName is the worksheet holding the exported rows.
const SheetName = "tweets"

// writeExcel writes an xlsx workbook with a header row and one row per tweet.
func writeExcel(w io.Writer, tweets []types.NormalizedTweet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	header := make([]any, len(types.ExportColumns))
	for i, col := range types.ExportColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, row := range flatten(tweets) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row.Values()
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return err
		}
	}

	return f.Write(w)
}
