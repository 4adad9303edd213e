package api

import (
	"context"
	"fmt"
	"time"

	"github.com/coatline/boothlag/internal/entry"
	"github.com/coatline/boothlag/internal/models"
	"github.com/coatline/boothlag/internal/summary"
	"github.com/coatline/boothlag/internal/utils"
)

func f64(v float64) *float64 { return &v }

func sampleAnalysis() models.Analysis {
	date := models.NewDate(2024, time.March, 7)
	key := models.GroupKey{Slot: "A3", Stage: models.StagePrimer}
	return models.Analysis{
		Table: []models.AnnotatedRecord{{
			StageRecord: models.StageRecord{
				BatchID: 101, Slot: "A3", Stage: models.StagePrimer, Date: &date,
				TimeInBooth: f64(8), TimeStart: f64(9), TimeEnd: f64(11),
			},
			ProcessingDuration: f64(2),
			LagDuration:        f64(1),
			RecommendedLag:     f64(0.5),
			AvoidableLag:       f64(0.5),
			LagToDurationRatio: f64(0.5),
		}},
		Frontiers: models.FrontierSet{
			key: {{Duration: 2, Lag: 0.5}, {Duration: 4, Lag: 0.25}},
			{Slot: "A3", Stage: models.StageTopcoat}: nil,
		},
		Cutoff:   date.AddDate(0, 0, -40),
		Windowed: 1,
	}
}

type stubBackend struct {
	lines []string
	keys  []string
	err   error
}

func (s *stubBackend) AddLine(_ context.Context, line, key string) (models.LineResult, error) {
	s.lines = append(s.lines, line)
	s.keys = append(s.keys, key)
	if s.err != nil {
		return models.LineResult{}, s.err
	}
	if line == "bad" {
		return models.LineResult{Outcome: models.OutcomeRejected},
			utils.NewAppError("stub", "invalid line", fmt.Errorf("%w: header", entry.ErrMalformedLine))
	}
	return models.LineResult{Outcome: models.OutcomeAppended, Appended: 1, Analysis: sampleAnalysis()}, nil
}

func (s *stubBackend) Table(context.Context) (models.Analysis, error) {
	if s.err != nil {
		return models.Analysis{}, s.err
	}
	return sampleAnalysis(), nil
}

func (s *stubBackend) Summary(ctx context.Context) ([]summary.GroupSummary, error) {
	analysis, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Summarize(analysis), nil
}
