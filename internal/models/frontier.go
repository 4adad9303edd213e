package models

import "time"

// Point is one (processing duration, lag) coordinate in hours.
type Point struct {
	Duration float64
	Lag      float64
}

// MarshalJSON renders a point as a two-element [duration, lag] array.
func (p Point) MarshalJSON() ([]byte, error) {
	return marshalPair(p.Duration, p.Lag)
}

// UnmarshalJSON accepts the [duration, lag] array form.
func (p *Point) UnmarshalJSON(data []byte) error {
	x, y, err := unmarshalPair(data)
	if err != nil {
		return err
	}
	p.Duration, p.Lag = x, y
	return nil
}

// Frontier is a buffered lower envelope, strictly ascending in Duration and
// read as a piecewise-linear function. An empty Frontier yields no recommendation.
type Frontier []Point

// GroupKey identifies a (slot, stage) group.
type GroupKey struct {
	Slot  string
	Stage Stage
}

// FrontierSet holds one frontier per windowed group.
type FrontierSet map[GroupKey]Frontier

// BySlot nests the set as slot -> stage -> points, the shape returned to callers.
func (s FrontierSet) BySlot() map[string]map[Stage]Frontier {
	out := make(map[string]map[Stage]Frontier, len(s))
	for key, frontier := range s {
		stages, ok := out[key.Slot]
		if !ok {
			stages = make(map[Stage]Frontier, len(Stages))
			out[key.Slot] = stages
		}
		if frontier == nil {
			frontier = Frontier{}
		}
		stages[key.Stage] = frontier
	}
	return out
}

// Analysis is the annotated view of one ledger snapshot.
type Analysis struct {
	Table     []AnnotatedRecord
	Frontiers FrontierSet
	Cutoff    time.Time
	Windowed  int
}
