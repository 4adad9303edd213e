package models

// Stage names one of the three sequential coating steps, assigned by position
// within an entry line.
type Stage string

const (
	StagePrimer  Stage = "primer"
	StageTopcoat Stage = "topcoat"
	StageExtra   Stage = "extra"
)

// Stages lists the stages in entry-line order.
var Stages = []Stage{StagePrimer, StageTopcoat, StageExtra}

// StageRecord is one (batch, slot, stage) row of the ledger. Optional fields are
// nil when the operator skipped the stage or entered the placeholder.
type StageRecord struct {
	BatchID     int      `json:"batchId"`
	Slot        string   `json:"slot"`
	Stage       Stage    `json:"stage"`
	Date        *Date    `json:"date"`
	Operator    *string  `json:"operator"`
	TimeInBooth *float64 `json:"timeInBooth"`
	TimeStart   *float64 `json:"timeStart"`
	TimeEnd     *float64 `json:"timeEnd"`
}

// ProcessingDuration is TimeEnd - TimeStart in hours.
func (r StageRecord) ProcessingDuration() *float64 {
	return diff(r.TimeEnd, r.TimeStart)
}

// LagDuration is TimeStart - TimeInBooth in hours.
func (r StageRecord) LagDuration() *float64 {
	return diff(r.TimeStart, r.TimeInBooth)
}

// SameEntry reports whether r and other came from the same (batch, slot) entry.
func (r StageRecord) SameEntry(other StageRecord) bool {
	return r.BatchID == other.BatchID && r.Slot == other.Slot
}

// AnnotatedRecord is a StageRecord plus the values derived on every analysis pass.
type AnnotatedRecord struct {
	StageRecord
	ProcessingDuration *float64 `json:"processingDuration"`
	LagDuration        *float64 `json:"lagDuration"`
	RecommendedLag     *float64 `json:"recommendedLag"`
	AvoidableLag       *float64 `json:"avoidableLag"`
	LagToDurationRatio *float64 `json:"lagToDurationRatio"`
}

func diff(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a - *b
	return &v
}
