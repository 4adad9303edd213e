// Package entry turns operator-entered lines into stage records.
//
// A line reads "<batchId> <slot>;<stage1>;<stage2>;<stage3>". Each stage
// segment is either the skip marker "~" or whitespace-separated fields:
// date operator timeInBooth timeStart timeEnd. Any field may be the
// placeholder "x"; trailing fields may be omitted.
package entry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/coatline/boothlag/internal/models"
	"github.com/coatline/boothlag/internal/utils"
)

const (
	// RetractDirective on a line of its own undoes the most recent entry.
	RetractDirective = "xxx"
	// SkipMarker marks a stage that was not run.
	SkipMarker = "~"

	maxStageFields = 5
)

// ErrMalformedLine wraps every parse failure.
var ErrMalformedLine = errors.New("malformed line")

// Line is the parsed form of one raw input line.
type Line struct {
	Retract bool
	Records []models.StageRecord
}

// IsRetraction reports whether raw is the retraction directive.
func IsRetraction(raw string) bool {
	return strings.TrimSpace(raw) == RetractDirective
}

// Parse classifies raw as a retraction directive or a data line.
func Parse(raw string) (Line, error) {
	if IsRetraction(raw) {
		return Line{Retract: true}, nil
	}
	records, err := ParseLine(raw)
	if err != nil {
		return Line{}, err
	}
	return Line{Records: records}, nil
}

// ParseLine parses a data line into 0-3 stage records, one per segment.
func ParseLine(raw string) ([]models.StageRecord, error) {
	line := strings.TrimSpace(raw)
	if line == "" {
		return nil, fmt.Errorf("%w: empty line", ErrMalformedLine)
	}

	parts := strings.Split(line, ";")
	header := strings.Fields(parts[0])
	if len(header) != 2 {
		return nil, fmt.Errorf("%w: header %q must be \"<batchId> <slot>\"", ErrMalformedLine, strings.TrimSpace(parts[0]))
	}
	batchID, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, fmt.Errorf("%w: batch id %q is not an integer", ErrMalformedLine, header[0])
	}
	slot := header[1]

	segments := parts[1:]
	if len(segments) > len(models.Stages) {
		return nil, fmt.Errorf("%w: %d stage segments, at most %d allowed", ErrMalformedLine, len(segments), len(models.Stages))
	}

	records := make([]models.StageRecord, 0, len(segments))
	for i, segment := range segments {
		rec := models.StageRecord{BatchID: batchID, Slot: slot, Stage: models.Stages[i]}
		if err := parseSegment(strings.TrimSpace(segment), &rec); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedLine, rec.Stage, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseSegment(segment string, rec *models.StageRecord) error {
	if segment == SkipMarker {
		return nil
	}
	tokens := strings.Fields(segment)
	if len(tokens) == 0 {
		return errors.New("empty stage segment")
	}
	if len(tokens) > maxStageFields {
		return fmt.Errorf("%d fields, at most %d allowed", len(tokens), maxStageFields)
	}

	field := func(i int) string {
		if i < len(tokens) {
			return tokens[i]
		}
		return ""
	}

	if raw := field(0); raw != "" && !utils.IsPlaceholder(raw) {
		date, err := models.ParseDate(raw)
		if err != nil {
			return err
		}
		rec.Date = &date
	}
	if raw := field(1); raw != "" && !utils.IsPlaceholder(raw) {
		operator := raw
		rec.Operator = &operator
	}

	var err error
	if rec.TimeInBooth, err = utils.ParseClock(field(2)); err != nil {
		return fmt.Errorf("timeInBooth: %w", err)
	}
	if rec.TimeStart, err = utils.ParseClock(field(3)); err != nil {
		return fmt.Errorf("timeStart: %w", err)
	}
	if rec.TimeEnd, err = utils.ParseClock(field(4)); err != nil {
		return fmt.Errorf("timeEnd: %w", err)
	}
	return nil
}
