package engine

import (
	"sort"

	"github.com/coatline/boothlag/internal/models"
)

// Interpolate reads the frontier as a piecewise-linear function at duration,
// clamping to the end values outside the observed range. ok is false for an
// empty frontier.
func Interpolate(frontier models.Frontier, duration float64) (float64, bool) {
	n := len(frontier)
	if n == 0 {
		return 0, false
	}
	if duration <= frontier[0].Duration {
		return frontier[0].Lag, true
	}
	if duration >= frontier[n-1].Duration {
		return frontier[n-1].Lag, true
	}

	// First vertex strictly right of duration; its predecessor is at or left of it.
	i := sort.Search(n, func(i int) bool { return frontier[i].Duration > duration })
	left, right := frontier[i-1], frontier[i]
	t := (duration - left.Duration) / (right.Duration - left.Duration)
	return left.Lag + t*(right.Lag-left.Lag), true
}

// Recommend derives recommended lag, avoidable lag, and the lag/duration ratio
// for one record against its group's frontier.
func Recommend(rec models.StageRecord, frontier models.Frontier) models.AnnotatedRecord {
	out := models.AnnotatedRecord{
		StageRecord:        rec,
		ProcessingDuration: rec.ProcessingDuration(),
		LagDuration:        rec.LagDuration(),
	}

	if out.ProcessingDuration != nil {
		if lag, ok := Interpolate(frontier, *out.ProcessingDuration); ok {
			out.RecommendedLag = &lag
		}
	}
	if out.LagDuration != nil && out.RecommendedLag != nil {
		avoidable := *out.LagDuration - *out.RecommendedLag
		if avoidable < 0 {
			avoidable = 0
		}
		out.AvoidableLag = &avoidable
	}
	if out.LagDuration != nil && out.ProcessingDuration != nil && *out.ProcessingDuration != 0 {
		ratio := *out.LagDuration / *out.ProcessingDuration
		out.LagToDurationRatio = &ratio
	}
	return out
}

// Annotate applies Recommend to every record in the ledger, windowed or not.
func Annotate(records []models.StageRecord, frontiers models.FrontierSet) []models.AnnotatedRecord {
	table := make([]models.AnnotatedRecord, 0, len(records))
	for _, rec := range records {
		frontier := frontiers[models.GroupKey{Slot: rec.Slot, Stage: rec.Stage}]
		table = append(table, Recommend(rec, frontier))
	}
	return table
}
