package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coatline/boothlag/internal/cache"
	"github.com/coatline/boothlag/internal/engine"
	"github.com/coatline/boothlag/internal/entry"
	"github.com/coatline/boothlag/internal/metrics"
	"github.com/coatline/boothlag/internal/models"
	"github.com/coatline/boothlag/internal/summary"
	"github.com/coatline/boothlag/internal/utils"
)

const idempotencyPrefix = "boothlag:idem:"

// LedgerStore defines the persistence operations the service needs.
type LedgerStore interface {
	Load(ctx context.Context) ([]models.StageRecord, error)
	Append(ctx context.Context, records []models.StageRecord) error
	Replace(ctx context.Context, records []models.StageRecord) error
}

// LagService is the single entry point for ledger mutations and views. Every
// call holds mu across load, mutate, reload and analyze so concurrent callers
// never interleave appends and retractions.
type LagService struct {
	logger    *slog.Logger
	ledger    LedgerStore
	pipeline  *engine.Pipeline
	cache     cache.Provider
	ttl       time.Duration
	latencies *utils.LatencyTracker

	mu sync.Mutex
}

// NewLagService constructs the service facade. A nil provider disables
// idempotency keys.
func NewLagService(logger *slog.Logger, ledger LedgerStore, pipeline *engine.Pipeline, provider cache.Provider, ttl time.Duration) *LagService {
	if logger == nil {
		logger = slog.Default()
	}
	if provider == nil {
		provider = cache.NoopProvider{}
	}
	if pipeline == nil {
		pipeline = engine.NewPipeline(logger, engine.DefaultParams())
	}
	return &LagService{
		logger:    logger,
		ledger:    ledger,
		pipeline:  pipeline,
		cache:     provider,
		ttl:       ttl,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// AddLine applies one entry line (a record line or the retraction directive)
// and returns the refreshed view. A non-empty key that was already claimed
// within the TTL skips the mutation and reports OutcomeDuplicate.
func (s *LagService) AddLine(ctx context.Context, line, key string) (models.LineResult, error) {
	const op = "LagService.AddLine"

	s.mu.Lock()
	defer s.mu.Unlock()

	claimed := false
	if key != "" {
		ok, err := s.cache.SetNX(ctx, idempotencyPrefix+key, []byte(line), s.ttl)
		switch {
		case err != nil:
			s.logger.Warn("idempotency check failed, proceeding", slog.String("key", key), slog.Any("error", err))
		case !ok:
			metrics.ObserveLine(string(models.OutcomeDuplicate))
			s.logger.Info("duplicate submission", slog.String("key", key))
			analysis, err := s.analyze(ctx)
			if err != nil {
				return models.LineResult{}, utils.NewAppError(op, "failed to load ledger", err)
			}
			return models.LineResult{Outcome: models.OutcomeDuplicate, Analysis: analysis}, nil
		default:
			claimed = true
		}
	}

	result, err := s.apply(ctx, line)
	if err != nil {
		if claimed {
			if delErr := s.cache.Del(ctx, idempotencyPrefix+key); delErr != nil {
				s.logger.Warn("failed to release idempotency key", slog.String("key", key), slog.Any("error", delErr))
			}
		}
		if errors.Is(err, entry.ErrMalformedLine) {
			metrics.ObserveLine(string(models.OutcomeRejected))
			s.logger.Info("line rejected", slog.String("line", line), slog.Any("error", err))
			return models.LineResult{Outcome: models.OutcomeRejected}, utils.NewAppError(op, "invalid line", err)
		}
		metrics.ObserveLine(metrics.OutcomeError)
		s.logger.Error("line failed", slog.Any("error", err))
		return models.LineResult{}, utils.NewAppError(op, "failed to update ledger", err)
	}

	metrics.ObserveLine(string(result.Outcome))
	s.logger.Info("line applied",
		slog.String("outcome", string(result.Outcome)),
		slog.Int("appended", result.Appended),
		slog.Int("retracted", result.Retracted))
	return result, nil
}

func (s *LagService) apply(ctx context.Context, line string) (models.LineResult, error) {
	snapshot, err := s.ledger.Load(ctx)
	if err != nil {
		return models.LineResult{}, err
	}
	change, err := s.pipeline.Apply(snapshot, line)
	if err != nil {
		return models.LineResult{}, err
	}

	result := models.LineResult{Appended: len(change.Appended), Retracted: change.Retracted}
	switch {
	case change.Retract && change.Retracted == 0:
		result.Outcome = models.OutcomeNoop
	case change.Retract:
		if err := s.ledger.Replace(ctx, change.Ledger); err != nil {
			return models.LineResult{}, err
		}
		result.Outcome = models.OutcomeRetracted
	default:
		if err := s.ledger.Append(ctx, change.Appended); err != nil {
			return models.LineResult{}, err
		}
		result.Outcome = models.OutcomeAppended
	}

	if result.Analysis, err = s.analyze(ctx); err != nil {
		return models.LineResult{}, err
	}
	return result, nil
}

// Table returns the current annotated view without mutating the ledger.
func (s *LagService) Table(ctx context.Context) (models.Analysis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis, err := s.analyze(ctx)
	if err != nil {
		s.logger.Error("table failed", slog.Any("error", err))
		return models.Analysis{}, utils.NewAppError("LagService.Table", "failed to load ledger", err)
	}
	return analysis, nil
}

// Summary returns per-group avoidable-lag aggregates of the current view.
func (s *LagService) Summary(ctx context.Context) ([]summary.GroupSummary, error) {
	analysis, err := s.Table(ctx)
	if err != nil {
		return nil, err
	}
	return summary.Summarize(analysis), nil
}

// SetParams forwards reloaded engine tuning to the pipeline.
func (s *LagService) SetParams(params engine.Params) {
	s.pipeline.SetParams(params)
}

// LatencyP95 returns the current p95 load-and-analyze latency.
func (s *LagService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}

// analyze reloads the ledger and recomputes the view; callers hold mu.
func (s *LagService) analyze(ctx context.Context) (models.Analysis, error) {
	start := time.Now()
	snapshot, err := s.ledger.Load(ctx)
	if err != nil {
		return models.Analysis{}, err
	}
	analysis := s.pipeline.Analyze(snapshot)
	duration := time.Since(start)

	learned := 0
	for _, f := range analysis.Frontiers {
		if len(f) > 0 {
			learned++
		}
	}
	metrics.ObserveAnalysis(duration, len(snapshot), learned)

	s.latencies.Observe(duration)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}
	return analysis, nil
}
