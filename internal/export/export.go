// Package export renders the annotated table as a spreadsheet or CSV. Clock
// columns are written in HHMM form; derived values stay numeric and absent
// values are empty cells.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/coatline/boothlag/internal/models"
	"github.com/coatline/boothlag/internal/utils"
)

// SheetName is the single worksheet written by WriteXLSX.
const SheetName = "records"

// XLSXFilename is the attachment name used for spreadsheet downloads.
const XLSXFilename = "paint_records.xlsx"

// Header lists the exported columns in order.
var Header = []string{
	"batchId", "slot", "stage", "date", "operator",
	"timeInBooth", "timeStart", "timeEnd",
	"processingDuration", "lagDuration",
	"recommendedLag", "avoidableLag", "lagToDurationRatio",
}

// cells returns one row; nil marks an empty cell.
func cells(rec models.AnnotatedRecord) []any {
	row := []any{
		rec.BatchID,
		rec.Slot,
		string(rec.Stage),
		nil,
		nil,
		clock(rec.TimeInBooth),
		clock(rec.TimeStart),
		clock(rec.TimeEnd),
		number(rec.ProcessingDuration),
		number(rec.LagDuration),
		number(rec.RecommendedLag),
		number(rec.AvoidableLag),
		number(rec.LagToDurationRatio),
	}
	if rec.Date != nil {
		row[3] = rec.Date.String()
	}
	if rec.Operator != nil {
		row[4] = *rec.Operator
	}
	return row
}

func clock(v *float64) any {
	if v == nil {
		return nil
	}
	return utils.FormatClock(v)
}

func number(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

// WriteXLSX writes table as a single-sheet workbook.
func WriteXLSX(w io.Writer, table []models.AnnotatedRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, rec := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := cells(rec)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteCSV writes table as CSV with a Header row.
func WriteCSV(w io.Writer, table []models.AnnotatedRecord) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, rec := range table {
		values := cells(rec)
		row := make([]string, len(values))
		for i, v := range values {
			row[i] = text(v)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func text(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}
