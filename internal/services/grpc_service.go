package services

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/coatline/boothlag/internal/api"
	"github.com/coatline/boothlag/internal/entry"
	"github.com/coatline/boothlag/internal/utils"
)

// GRPCService exposes a LagService over the LagEngine gRPC API.
type GRPCService struct {
	svc api.Backend
}

// NewGRPCService wraps svc for registration with api.NewServer.
func NewGRPCService(svc api.Backend) *GRPCService {
	return &GRPCService{svc: svc}
}

// AddLine applies one entry line. The idempotency key travels in the
// "idempotency-key" metadata entry.
func (g *GRPCService) AddLine(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request cannot be nil")
	}
	result, err := g.svc.AddLine(ctx, req.GetValue(), idempotencyKey(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(api.NewAnalysisResponse(result.Analysis, result.Outcome))
}

// GetTable returns the current annotated view.
func (g *GRPCService) GetTable(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	analysis, err := g.svc.Table(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(api.NewAnalysisResponse(analysis, ""))
}

// GetSummary returns per-group avoidable-lag aggregates.
func (g *GRPCService) GetSummary(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	groups, err := g.svc.Summary(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(api.NewSummaryResponse(groups))
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(api.IdempotencyMetadataKey)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func toStatus(err error) error {
	if errors.Is(err, entry.ErrMalformedLine) {
		return status.Error(codes.InvalidArgument, utils.Message(err))
	}
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, utils.Message(err))
}

func encode(v any) (*structpb.Struct, error) {
	out, err := api.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	return out, nil
}
