// Package summary rolls the annotated table up into per-(slot, stage)
// avoidable-lag totals so the worst offenders surface first.
package summary

import (
	"sort"

	"github.com/coatline/boothlag/internal/models"
)

// GroupSummary aggregates one (slot, stage) group.
type GroupSummary struct {
	Slot             string       `json:"slot"`
	Stage            models.Stage `json:"stage"`
	Records          int          `json:"records"`
	WindowedPoints   int          `json:"windowedPoints"`
	FrontierVertices int          `json:"frontierVertices"`
	Recommended      int          `json:"recommended"`
	TotalAvoidable   float64      `json:"totalAvoidableLag"`
	MeanAvoidable    *float64     `json:"meanAvoidableLag"`
	LastSeen         *models.Date `json:"lastSeen"`
}

// Summarize aggregates analysis by group, ordered by total avoidable lag
// descending, then slot and stage order.
func Summarize(analysis models.Analysis) []GroupSummary {
	if len(analysis.Table) == 0 {
		return nil
	}

	groups := make(map[models.GroupKey]*GroupSummary)
	for _, rec := range analysis.Table {
		key := models.GroupKey{Slot: rec.Slot, Stage: rec.Stage}
		agg := ensureGroup(groups, key)
		agg.Records++
		if rec.Date != nil {
			if agg.LastSeen == nil || rec.Date.After(agg.LastSeen.Time) {
				d := *rec.Date
				agg.LastSeen = &d
			}
			if !rec.Date.Before(analysis.Cutoff) && rec.ProcessingDuration != nil && rec.LagDuration != nil {
				agg.WindowedPoints++
			}
		}
		if rec.AvoidableLag != nil {
			agg.Recommended++
			agg.TotalAvoidable += *rec.AvoidableLag
		}
	}

	summaries := make([]GroupSummary, 0, len(groups))
	for key, agg := range groups {
		agg.FrontierVertices = len(analysis.Frontiers[key])
		if agg.Recommended > 0 {
			mean := agg.TotalAvoidable / float64(agg.Recommended)
			agg.MeanAvoidable = &mean
		}
		summaries = append(summaries, *agg)
	}

	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i], summaries[j]
		if a.TotalAvoidable != b.TotalAvoidable {
			return a.TotalAvoidable > b.TotalAvoidable
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return stageOrder(a.Stage) < stageOrder(b.Stage)
	})
	return summaries
}

func ensureGroup(m map[models.GroupKey]*GroupSummary, key models.GroupKey) *GroupSummary {
	agg, ok := m[key]
	if !ok {
		agg = &GroupSummary{Slot: key.Slot, Stage: key.Stage}
		m[key] = agg
	}
	return agg
}

func stageOrder(stage models.Stage) int {
	for i, s := range models.Stages {
		if s == stage {
			return i
		}
	}
	return len(models.Stages)
}
