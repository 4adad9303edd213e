package repo

import (
	"fmt"
	"strconv"

	"github.com/coatline/boothlag/internal/models"
)

// Columns is the flat-file header, in order.
var Columns = []string{
	"batchId", "slot", "stage", "date", "operator",
	"timeInBooth", "timeStart", "timeEnd",
	"processingDuration", "lagDuration",
}

func encodeRow(rec models.StageRecord) []string {
	row := []string{
		strconv.Itoa(rec.BatchID),
		rec.Slot,
		string(rec.Stage),
		"",
		"",
		formatFloat(rec.TimeInBooth),
		formatFloat(rec.TimeStart),
		formatFloat(rec.TimeEnd),
		formatFloat(rec.ProcessingDuration()),
		formatFloat(rec.LagDuration()),
	}
	if rec.Date != nil {
		row[3] = rec.Date.String()
	}
	if rec.Operator != nil {
		row[4] = *rec.Operator
	}
	return row
}

// decodeRow reads a stored row. The two duration columns are derived from the
// clock columns and ignored on read.
func decodeRow(row []string) (models.StageRecord, error) {
	if len(row) != len(Columns) {
		return models.StageRecord{}, fmt.Errorf("expected %d columns, got %d", len(Columns), len(row))
	}
	batchID, err := strconv.Atoi(row[0])
	if err != nil {
		return models.StageRecord{}, fmt.Errorf("batchId %q: %w", row[0], err)
	}
	rec := models.StageRecord{BatchID: batchID, Slot: row[1], Stage: models.Stage(row[2])}

	if row[3] != "" {
		date, err := models.ParseDate(row[3])
		if err != nil {
			return models.StageRecord{}, err
		}
		rec.Date = &date
	}
	if row[4] != "" {
		operator := row[4]
		rec.Operator = &operator
	}
	if rec.TimeInBooth, err = parseFloat(row[5]); err != nil {
		return models.StageRecord{}, fmt.Errorf("timeInBooth: %w", err)
	}
	if rec.TimeStart, err = parseFloat(row[6]); err != nil {
		return models.StageRecord{}, fmt.Errorf("timeStart: %w", err)
	}
	if rec.TimeEnd, err = parseFloat(row[7]); err != nil {
		return models.StageRecord{}, fmt.Errorf("timeEnd: %w", err)
	}
	return rec, nil
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

func parseFloat(raw string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
