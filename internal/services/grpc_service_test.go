package services

import (
	"context"
	"errors"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/coatline/boothlag/internal/api"
	"github.com/coatline/boothlag/internal/repo"
)

func TestGRPCServiceAddLine(t *testing.T) {
	ledger := repo.NewMemoryLedger()
	handler := NewGRPCService(newService(ledger, nil))

	out, err := handler.AddLine(context.Background(), wrapperspb.String(lineA))
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	var resp api.AnalysisResponse
	if err := api.FromStruct(out, &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != api.StatusOK || resp.Outcome != "appended" || len(resp.Table) != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}
	if _, ok := resp.Frontiers["A3"]["extra"]; !ok {
		t.Fatalf("expected every stage of A3 in frontiers, got %v", resp.Frontiers)
	}
}

func TestGRPCServiceStatusCodes(t *testing.T) {
	handler := NewGRPCService(newService(repo.NewMemoryLedger(), nil))
	ctx := context.Background()

	if _, err := handler.AddLine(ctx, nil); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("nil request: expected InvalidArgument, got %v", err)
	}
	if _, err := handler.AddLine(ctx, wrapperspb.String("bogus")); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("malformed line: expected InvalidArgument, got %v", err)
	}

	broken := NewGRPCService(newService(&failingLedger{loadErr: errors.New("locked")}, nil))
	if _, err := broken.GetTable(ctx, &emptypb.Empty{}); status.Code(err) != codes.Internal {
		t.Fatalf("load failure: expected Internal, got %v", err)
	}
	if _, err := broken.GetSummary(ctx, &emptypb.Empty{}); status.Code(err) != codes.Internal {
		t.Fatalf("load failure: expected Internal, got %v", err)
	}
}

func TestGRPCServiceIdempotencyMetadata(t *testing.T) {
	ledger := repo.NewMemoryLedger()
	handler := NewGRPCService(NewLagService(nil, ledger, nil, cacheForTest(), 0))
	ctx := metadata.NewIncomingContext(context.Background(),
		metadata.Pairs(api.IdempotencyMetadataKey, "key-1"))

	for i := 0; i < 2; i++ {
		if _, err := handler.AddLine(ctx, wrapperspb.String(lineB)); err != nil {
			t.Fatalf("add line %d: %v", i, err)
		}
	}
	stored, _ := ledger.Load(context.Background())
	if len(stored) != 1 {
		t.Fatalf("expected the repeated key to be ignored, got %d records", len(stored))
	}
}
