package engine

import (
	"time"

	"github.com/coatline/boothlag/internal/models"
)

func f64(v float64) *float64 { return &v }

func day(d int) *models.Date {
	date := models.NewDate(2024, time.March, 1).AddDate(0, 0, d)
	return &models.Date{Time: date}
}

// timed builds a record whose lag and duration are exactly lag and duration hours.
func timed(batch int, slot string, stage models.Stage, date *models.Date, duration, lag float64) models.StageRecord {
	inBooth := 8.0
	start := inBooth + lag
	end := start + duration
	return models.StageRecord{
		BatchID:     batch,
		Slot:        slot,
		Stage:       stage,
		Date:        date,
		TimeInBooth: f64(inBooth),
		TimeStart:   f64(start),
		TimeEnd:     f64(end),
	}
}
