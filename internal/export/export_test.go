package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/coatline/boothlag/internal/models"
)

func f64(v float64) *float64 { return &v }

func sampleTable() []models.AnnotatedRecord {
	date := models.NewDate(2024, time.March, 7)
	operator := "MK"
	return []models.AnnotatedRecord{
		{
			StageRecord: models.StageRecord{
				BatchID: 7, Slot: "A3", Stage: models.StagePrimer,
				Date: &date, Operator: &operator,
				TimeInBooth: f64(8), TimeStart: f64(8.5), TimeEnd: f64(9.75),
			},
			ProcessingDuration: f64(1.25),
			LagDuration:        f64(0.5),
			RecommendedLag:     f64(0.25),
			AvoidableLag:       f64(0.25),
			LagToDurationRatio: f64(0.4),
		},
		{StageRecord: models.StageRecord{BatchID: 7, Slot: "A3", Stage: models.StageTopcoat}},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleTable()); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	want := []string{"7", "A3", "primer", "07/03/24", "MK", "0800", "0830", "0945", "1.25", "0.5", "0.25", "0.25", "0.4"}
	for i, v := range want {
		if rows[1][i] != v {
			t.Fatalf("column %s = %q, want %q", Header[i], rows[1][i], v)
		}
	}
	for i := 3; i < len(Header); i++ {
		if rows[2][i] != "" {
			t.Fatalf("expected empty %s for skipped stage, got %q", Header[i], rows[2][i])
		}
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleTable()); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("get rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][0] != "batchId" || rows[0][len(Header)-1] != "lagToDurationRatio" {
		t.Fatalf("unexpected header %v", rows[0])
	}
	if rows[1][5] != "0800" || rows[1][7] != "0945" {
		t.Fatalf("expected clock-encoded times, got %v", rows[1][5:8])
	}
	if rows[1][8] != "1.25" {
		t.Fatalf("expected numeric duration, got %q", rows[1][8])
	}
	if rows[2][2] != "topcoat" {
		t.Fatalf("unexpected skipped-stage row %v", rows[2])
	}
}
