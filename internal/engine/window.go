package engine

import (
	"time"

	"github.com/coatline/boothlag/internal/models"
)

// DefaultWindow is the trailing history length used to learn frontiers.
const DefaultWindow = 40 * 24 * time.Hour

// Window is the subset of the ledger recent enough to learn from.
type Window struct {
	Latest  time.Time
	Cutoff  time.Time
	Records []models.StageRecord
}

// ApplyWindow keeps records dated on or after the latest record date minus
// length. When no record carries a date, the window is anchored at now.
// Undated records never enter the window.
func ApplyWindow(records []models.StageRecord, length time.Duration, now time.Time) Window {
	latest, ok := latestDate(records)
	if !ok {
		latest = now
	}
	w := Window{Latest: latest, Cutoff: latest.Add(-length)}
	for _, rec := range records {
		if rec.Date == nil || rec.Date.Before(w.Cutoff) {
			continue
		}
		w.Records = append(w.Records, rec)
	}
	return w
}

// Slots returns the distinct slots in the window in first-seen order.
func (w Window) Slots() []string {
	seen := make(map[string]struct{})
	var slots []string
	for _, rec := range w.Records {
		if _, ok := seen[rec.Slot]; ok {
			continue
		}
		seen[rec.Slot] = struct{}{}
		slots = append(slots, rec.Slot)
	}
	return slots
}

// Points groups the window's (processing duration, lag) pairs by (slot, stage).
// Records missing either value contribute nothing.
func (w Window) Points() map[models.GroupKey][]models.Point {
	groups := make(map[models.GroupKey][]models.Point)
	for _, rec := range w.Records {
		duration, lag := rec.ProcessingDuration(), rec.LagDuration()
		if duration == nil || lag == nil {
			continue
		}
		key := models.GroupKey{Slot: rec.Slot, Stage: rec.Stage}
		groups[key] = append(groups[key], models.Point{Duration: *duration, Lag: *lag})
	}
	return groups
}

func latestDate(records []models.StageRecord) (time.Time, bool) {
	var latest time.Time
	found := false
	for _, rec := range records {
		if rec.Date == nil {
			continue
		}
		if !found || rec.Date.After(latest) {
			latest = rec.Date.Time
			found = true
		}
	}
	return latest, found
}
