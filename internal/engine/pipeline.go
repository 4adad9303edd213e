package engine

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/coatline/boothlag/internal/entry"
	"github.com/coatline/boothlag/internal/models"
)

// Params tunes frontier learning.
type Params struct {
	Window     time.Duration
	Buffer     float64
	MinSupport int
}

// DefaultParams returns the 40-day window, 5-minute buffer, 2-point support defaults.
func DefaultParams() Params {
	return Params{Window: DefaultWindow, Buffer: DefaultBuffer, MinSupport: MinHullSupport}
}

func (p Params) normalised() Params {
	def := DefaultParams()
	if p.Window <= 0 {
		p.Window = def.Window
	}
	if p.Buffer < 0 {
		p.Buffer = def.Buffer
	}
	if p.MinSupport < MinHullSupport {
		p.MinSupport = MinHullSupport
	}
	return p
}

// Change describes how a line altered the ledger.
type Change struct {
	Ledger    []models.StageRecord
	Appended  []models.StageRecord
	Retracted int
	Retract   bool
}

// Pipeline turns ledger snapshots into annotated views. It holds no ledger
// state; every call recomputes windowing and frontiers from the snapshot given.
type Pipeline struct {
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	params Params
}

// NewPipeline constructs a Pipeline with the given tuning.
func NewPipeline(logger *slog.Logger, params Params) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, now: time.Now, params: params.normalised()}
}

// Params returns the active tuning.
func (p *Pipeline) Params() Params {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.params
}

// SetParams swaps the tuning used by subsequent analyses.
func (p *Pipeline) SetParams(params Params) {
	params = params.normalised()
	p.mu.Lock()
	p.params = params
	p.mu.Unlock()
	p.logger.Info("engine parameters updated",
		slog.Duration("window", params.Window),
		slog.Float64("buffer_hours", params.Buffer),
		slog.Int("min_support", params.MinSupport))
}

// Apply computes the ledger that results from feeding line into snapshot.
// The snapshot is never modified. Parse failures return an error wrapping
// entry.ErrMalformedLine and no change.
func (p *Pipeline) Apply(snapshot []models.StageRecord, line string) (Change, error) {
	parsed, err := entry.Parse(line)
	if err != nil {
		return Change{}, err
	}
	if parsed.Retract {
		kept, removed := Retract(snapshot)
		return Change{Ledger: kept, Retracted: removed, Retract: true}, nil
	}
	next := slices.Concat(snapshot, parsed.Records)
	return Change{Ledger: next, Appended: parsed.Records}, nil
}

// Analyze windows the snapshot, learns frontiers, and annotates every record.
func (p *Pipeline) Analyze(snapshot []models.StageRecord) models.Analysis {
	params := p.Params()
	window := ApplyWindow(snapshot, params.Window, p.now())
	frontiers := BuildFrontiers(window, params.Buffer, params.MinSupport)

	learned := 0
	for _, f := range frontiers {
		if len(f) > 0 {
			learned++
		}
	}
	p.logger.Debug("analysis complete",
		slog.Int("records", len(snapshot)),
		slog.Int("windowed", len(window.Records)),
		slog.Int("groups", len(frontiers)),
		slog.Int("frontiers", learned),
		slog.Time("cutoff", window.Cutoff))

	return models.Analysis{
		Table:     Annotate(snapshot, frontiers),
		Frontiers: frontiers,
		Cutoff:    window.Cutoff,
		Windowed:  len(window.Records),
	}
}
