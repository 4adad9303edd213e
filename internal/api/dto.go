package api

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/coatline/boothlag/internal/models"
	"github.com/coatline/boothlag/internal/summary"
)

// StatusOK and StatusError are the envelope status values.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// AddLineRequest is the body of POST /addLine.
type AddLineRequest struct {
	Line string `json:"line" binding:"required"`
}

// AnalysisResponse is the annotated table plus frontiers keyed slot -> stage.
type AnalysisResponse struct {
	Status    string                                       `json:"status"`
	Outcome   models.Outcome                               `json:"outcome,omitempty"`
	Table     []models.AnnotatedRecord                     `json:"table"`
	Frontiers map[string]map[models.Stage]models.Frontier `json:"frontiers"`
	Cutoff    string                                       `json:"windowCutoff"`
	Windowed  int                                          `json:"windowedRecords"`
}

// SummaryResponse wraps the per-group summary.
type SummaryResponse struct {
	Status string                 `json:"status"`
	Groups []summary.GroupSummary `json:"groups"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// NewAnalysisResponse builds the response envelope for analysis.
func NewAnalysisResponse(analysis models.Analysis, outcome models.Outcome) AnalysisResponse {
	table := analysis.Table
	if table == nil {
		table = []models.AnnotatedRecord{}
	}
	return AnalysisResponse{
		Status:    StatusOK,
		Outcome:   outcome,
		Table:     table,
		Frontiers: analysis.Frontiers.BySlot(),
		Cutoff:    models.Date{Time: analysis.Cutoff}.String(),
		Windowed:  analysis.Windowed,
	}
}

// NewSummaryResponse builds the summary envelope.
func NewSummaryResponse(groups []summary.GroupSummary) SummaryResponse {
	if groups == nil {
		groups = []summary.GroupSummary{}
	}
	return SummaryResponse{Status: StatusOK, Groups: groups}
}

// ToStruct converts a JSON-encodable value into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, fmt.Errorf("convert payload: %w", err)
	}
	return out, nil
}

// FromStruct decodes a protobuf Struct into v through its JSON form.
func FromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return fmt.Errorf("payload is nil")
	}
	data, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
