package engine

import (
	"math"
	"testing"

	"github.com/coatline/boothlag/internal/models"
)

func TestInterpolateClampsAndInterpolates(t *testing.T) {
	frontier := models.Frontier(pts(2, 1, 4, 0.5, 6, 0.25))
	cases := []struct {
		x    float64
		want float64
	}{
		{0, 1},
		{2, 1},
		{3, 0.75},
		{4, 0.5},
		{5, 0.375},
		{6, 0.25},
		{100, 0.25},
	}
	for _, tc := range cases {
		got, ok := Interpolate(frontier, tc.x)
		if !ok {
			t.Fatalf("Interpolate(%v): expected ok", tc.x)
		}
		if math.Abs(got-tc.want) > eps {
			t.Fatalf("Interpolate(%v) = %v, want %v", tc.x, got, tc.want)
		}
	}
}

func TestInterpolateStaysWithinRange(t *testing.T) {
	frontier := models.Frontier(pts(0.5, 2.2, 1.5, 1.1, 2.5, 0.9, 4, 0.3))
	for x := -2.0; x <= 8; x += 0.05 {
		got, _ := Interpolate(frontier, x)
		if got > 2.2+eps || got < 0.3-eps {
			t.Fatalf("Interpolate(%v) = %v escapes [0.3, 2.2]", x, got)
		}
	}
}

func TestInterpolateEmptyFrontier(t *testing.T) {
	if _, ok := Interpolate(nil, 3); ok {
		t.Fatalf("expected no value from an empty frontier")
	}
}

func TestRecommendDerivedFields(t *testing.T) {
	frontier := models.Frontier(pts(2, 1, 4, 0.5))

	over := Recommend(timed(1, "T1", models.StagePrimer, day(0), 3, 2), frontier)
	if over.RecommendedLag == nil || math.Abs(*over.RecommendedLag-0.75) > eps {
		t.Fatalf("unexpected recommended lag %v", over.RecommendedLag)
	}
	if over.AvoidableLag == nil || math.Abs(*over.AvoidableLag-1.25) > eps {
		t.Fatalf("unexpected avoidable lag %v", over.AvoidableLag)
	}
	if over.LagToDurationRatio == nil || math.Abs(*over.LagToDurationRatio-2.0/3) > eps {
		t.Fatalf("unexpected ratio %v", over.LagToDurationRatio)
	}

	under := Recommend(timed(2, "T1", models.StagePrimer, day(0), 3, 0.1), frontier)
	if under.AvoidableLag == nil || *under.AvoidableLag != 0 {
		t.Fatalf("expected avoidable lag clamped to zero, got %v", under.AvoidableLag)
	}
}

func TestRecommendAbsentInputs(t *testing.T) {
	frontier := models.Frontier(pts(2, 1, 4, 0.5))

	rec := timed(1, "T1", models.StagePrimer, day(0), 3, 1)
	rec.TimeEnd = nil
	out := Recommend(rec, frontier)
	if out.ProcessingDuration != nil || out.RecommendedLag != nil || out.AvoidableLag != nil || out.LagToDurationRatio != nil {
		t.Fatalf("expected absent end to short-circuit derived values: %+v", out)
	}
	if out.LagDuration == nil {
		t.Fatalf("lag duration does not depend on end time")
	}

	noFrontier := Recommend(timed(1, "T1", models.StagePrimer, day(0), 3, 1), nil)
	if noFrontier.RecommendedLag != nil || noFrontier.AvoidableLag != nil {
		t.Fatalf("expected no recommendation without a frontier")
	}
	if noFrontier.LagToDurationRatio == nil {
		t.Fatalf("ratio does not depend on the frontier")
	}
}

func TestRecommendZeroDurationRatio(t *testing.T) {
	out := Recommend(timed(1, "T1", models.StagePrimer, day(0), 0, 1), nil)
	if out.LagToDurationRatio != nil {
		t.Fatalf("expected ratio absent for zero duration, got %v", *out.LagToDurationRatio)
	}
}

func TestAnnotateUsesGroupFrontier(t *testing.T) {
	frontiers := models.FrontierSet{
		{Slot: "T1", Stage: models.StagePrimer}: pts(2, 1, 4, 0.5),
	}
	table := Annotate([]models.StageRecord{
		timed(1, "T1", models.StagePrimer, day(0), 3, 1),
		timed(1, "T1", models.StageTopcoat, day(0), 3, 1),
		timed(2, "T2", models.StagePrimer, day(0), 3, 1),
	}, frontiers)

	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	if table[0].RecommendedLag == nil {
		t.Fatalf("expected T1/primer recommendation")
	}
	if table[1].RecommendedLag != nil || table[2].RecommendedLag != nil {
		t.Fatalf("expected other groups to have no recommendation")
	}
}
