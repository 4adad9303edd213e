package engine

import (
	"testing"
	"time"

	"github.com/coatline/boothlag/internal/models"
)

func TestApplyWindowAnchorsAtLatestDate(t *testing.T) {
	records := []models.StageRecord{
		timed(1, "T1", models.StagePrimer, day(0), 2, 1),
		timed(2, "T1", models.StagePrimer, day(50), 2, 1),
		timed(3, "T1", models.StagePrimer, day(10), 2, 1),
		timed(4, "T1", models.StagePrimer, day(9), 2, 1),
		{BatchID: 5, Slot: "T1", Stage: models.StagePrimer},
	}

	w := ApplyWindow(records, DefaultWindow, time.Now())
	if !w.Latest.Equal(day(50).Time) {
		t.Fatalf("expected latest %v, got %v", day(50), w.Latest)
	}
	if !w.Cutoff.Equal(day(10).Time) {
		t.Fatalf("expected cutoff %v, got %v", day(10), w.Cutoff)
	}
	if len(w.Records) != 2 {
		t.Fatalf("expected records on day 50 and day 10 (inclusive cutoff), got %d", len(w.Records))
	}
	for _, rec := range w.Records {
		if rec.BatchID != 2 && rec.BatchID != 3 {
			t.Fatalf("unexpected windowed record %d", rec.BatchID)
		}
	}
}

func TestApplyWindowWithoutDates(t *testing.T) {
	now := time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)
	records := []models.StageRecord{{BatchID: 1, Slot: "T1", Stage: models.StagePrimer}}

	w := ApplyWindow(records, DefaultWindow, now)
	if !w.Latest.Equal(now) {
		t.Fatalf("expected fallback anchor at now, got %v", w.Latest)
	}
	if len(w.Records) != 0 {
		t.Fatalf("undated records must not enter the window")
	}
}

func TestWindowPointsGroupsBySlotAndStage(t *testing.T) {
	w := Window{Records: []models.StageRecord{
		timed(1, "T1", models.StagePrimer, day(0), 2, 1),
		timed(1, "T1", models.StageTopcoat, day(0), 3, 1),
		timed(2, "T2", models.StagePrimer, day(0), 4, 1),
		{BatchID: 3, Slot: "T1", Stage: models.StagePrimer, Date: day(0)},
	}}

	points := w.Points()
	if len(points[models.GroupKey{Slot: "T1", Stage: models.StagePrimer}]) != 1 {
		t.Fatalf("expected one T1/primer point")
	}
	if len(points[models.GroupKey{Slot: "T2", Stage: models.StagePrimer}]) != 1 {
		t.Fatalf("expected one T2/primer point")
	}
	if got := w.Slots(); len(got) != 2 || got[0] != "T1" || got[1] != "T2" {
		t.Fatalf("unexpected slots %v", got)
	}
}
