package engine

import "github.com/coatline/boothlag/internal/models"

// Retract removes every record sharing the (batch, slot) pair of the last
// record, undoing the most recent entry line. It returns the remaining records
// and how many were removed; an empty ledger is returned unchanged.
func Retract(records []models.StageRecord) ([]models.StageRecord, int) {
	if len(records) == 0 {
		return records, 0
	}
	last := records[len(records)-1]
	kept := make([]models.StageRecord, 0, len(records))
	for _, rec := range records {
		if rec.SameEntry(last) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept, len(records) - len(kept)
}
