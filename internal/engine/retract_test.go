package engine

import (
	"reflect"
	"testing"

	"github.com/coatline/boothlag/internal/models"
)

func TestRetractRemovesLastEntryPair(t *testing.T) {
	records := []models.StageRecord{
		timed(1, "T1", models.StagePrimer, day(0), 2, 1),
		timed(2, "T1", models.StagePrimer, day(0), 2, 1),
		timed(1, "T2", models.StagePrimer, day(0), 2, 1),
		timed(2, "T1", models.StageTopcoat, day(0), 2, 1),
	}

	kept, removed := Retract(records)
	if removed != 2 {
		t.Fatalf("expected 2 records removed, got %d", removed)
	}
	want := []models.StageRecord{records[0], records[2]}
	if !reflect.DeepEqual(kept, want) {
		t.Fatalf("unexpected remaining records: %+v", kept)
	}
}

func TestRetractEmptyLedger(t *testing.T) {
	kept, removed := Retract(nil)
	if removed != 0 || len(kept) != 0 {
		t.Fatalf("expected no-op on empty ledger")
	}
}
