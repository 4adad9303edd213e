package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/coatline/boothlag/internal/api"
	"github.com/coatline/boothlag/internal/config"
	"github.com/coatline/boothlag/internal/engine"
	"github.com/coatline/boothlag/internal/models"
	"github.com/coatline/boothlag/internal/repo"
	"github.com/coatline/boothlag/internal/services"
	"github.com/coatline/boothlag/internal/summary"
	"github.com/coatline/boothlag/internal/utils"
)

// backend is an api.Backend that owns resources to release.
type backend interface {
	api.Backend
	Close() error
}

type localBackend struct {
	*services.LagService
	ledger repo.Ledger
}

func (b *localBackend) Close() error { return b.ledger.Close() }

// openLocal runs the service in-process against the configured ledger. Logs
// go to stderr, below warn only when verbose.
func openLocal(configPath string, verbose bool) (backend, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	ledger, err := repo.Open(cfg.Ledger.Driver, cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger: %w", err)
	}
	level := "warn"
	if verbose {
		level = cfg.Logging.Level
	}
	logger := utils.NewLoggerTo(os.Stderr, level, cfg.Logging.JSON)
	pipeline := engine.NewPipeline(logger, cfg.EngineParams())
	svc := services.NewLagService(logger, ledger, pipeline, nil, 0)
	return &localBackend{LagService: svc, ledger: ledger}, nil
}

// remoteBackend talks to a running engine over gRPC.
type remoteBackend struct {
	conn   *grpc.ClientConn
	client *api.LagEngineClient
}

func openRemote(addr string) (backend, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", addr, err)
	}
	return &remoteBackend{conn: conn, client: api.NewLagEngineClient(conn)}, nil
}

func (b *remoteBackend) Close() error { return b.conn.Close() }

func (b *remoteBackend) AddLine(ctx context.Context, line, key string) (models.LineResult, error) {
	if key != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, api.IdempotencyMetadataKey, key)
	}
	out, err := b.client.AddLine(ctx, line)
	if err != nil {
		return models.LineResult{}, err
	}
	var resp api.AnalysisResponse
	if err := api.FromStruct(out, &resp); err != nil {
		return models.LineResult{}, err
	}
	return models.LineResult{Outcome: resp.Outcome, Analysis: analysisFrom(resp)}, nil
}

func (b *remoteBackend) Table(ctx context.Context) (models.Analysis, error) {
	out, err := b.client.GetTable(ctx)
	if err != nil {
		return models.Analysis{}, err
	}
	var resp api.AnalysisResponse
	if err := api.FromStruct(out, &resp); err != nil {
		return models.Analysis{}, err
	}
	return analysisFrom(resp), nil
}

func (b *remoteBackend) Summary(ctx context.Context) ([]summary.GroupSummary, error) {
	out, err := b.client.GetSummary(ctx)
	if err != nil {
		return nil, err
	}
	var resp api.SummaryResponse
	if err := api.FromStruct(out, &resp); err != nil {
		return nil, err
	}
	return resp.Groups, nil
}

func analysisFrom(resp api.AnalysisResponse) models.Analysis {
	frontiers := make(models.FrontierSet)
	for slot, stages := range resp.Frontiers {
		for stage, frontier := range stages {
			frontiers[models.GroupKey{Slot: slot, Stage: stage}] = frontier
		}
	}
	analysis := models.Analysis{Table: resp.Table, Frontiers: frontiers, Windowed: resp.Windowed}
	if cutoff, err := models.ParseDate(resp.Cutoff); err == nil {
		analysis.Cutoff = cutoff.Time
	}
	return analysis
}

func withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 30*time.Second)
}
