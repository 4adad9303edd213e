package engine

import (
	"math"
	"slices"

	"github.com/coatline/boothlag/internal/models"
)

const (
	// DefaultBuffer is the safety margin (5 minutes, in hours) added above the
	// empirical minimum lag.
	DefaultBuffer = 5.0 / 60
	// MinHullSupport is the number of distinct points a group needs before a
	// frontier is learned.
	MinHullSupport = 2
)

// BuildFrontiers learns one frontier per (slot, stage) for every slot present in
// the window. Groups without enough support map to an empty frontier.
func BuildFrontiers(w Window, buffer float64, minSupport int) models.FrontierSet {
	points := w.Points()
	set := make(models.FrontierSet)
	for _, slot := range w.Slots() {
		for _, stage := range models.Stages {
			key := models.GroupKey{Slot: slot, Stage: stage}
			set[key] = BuildFrontier(points[key], buffer, minSupport)
		}
	}
	return set
}

// BuildFrontier extracts the buffered lower staircase from a point cloud:
// dedupe, convex hull, sort hull vertices by duration, keep each vertex whose
// lag does not exceed the last kept lag, then add buffer to every lag.
func BuildFrontier(points []models.Point, buffer float64, minSupport int) models.Frontier {
	if minSupport < MinHullSupport {
		minSupport = MinHullSupport
	}
	unique := dedupePoints(points)
	if len(unique) < minSupport {
		return nil
	}

	vertices, ok := convexHull(unique)
	if !ok || len(vertices) < 2 {
		return nil
	}
	slices.SortFunc(vertices, comparePoints)

	kept := []models.Point{vertices[0]}
	for _, v := range vertices[1:] {
		if v.Lag <= kept[len(kept)-1].Lag {
			kept = append(kept, v)
		}
	}

	frontier := make(models.Frontier, len(kept))
	for i, p := range kept {
		frontier[i] = models.Point{Duration: p.Duration, Lag: p.Lag + buffer}
	}
	return frontier
}

func dedupePoints(points []models.Point) []models.Point {
	seen := make(map[models.Point]struct{}, len(points))
	unique := make([]models.Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		unique = append(unique, p)
	}
	return unique
}

// convexHull returns hull vertices via Andrew's monotone chain. Collinear
// interior points are dropped, so a collinear cloud collapses to its two
// endpoints. Non-finite coordinates report ok=false.
func convexHull(points []models.Point) ([]models.Point, bool) {
	for _, p := range points {
		if !finite(p.Duration) || !finite(p.Lag) {
			return nil, false
		}
	}
	sorted := slices.Clone(points)
	slices.SortFunc(sorted, comparePoints)
	if len(sorted) < 3 {
		return sorted, true
	}

	hull := make([]models.Point, 0, 2*len(sorted))
	for _, p := range sorted {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lowerLen := len(hull) + 1
	for i := len(sorted) - 2; i >= 0; i-- {
		p := sorted[i]
		for len(hull) >= lowerLen && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1], true
}

func cross(o, a, b models.Point) float64 {
	return (a.Duration-o.Duration)*(b.Lag-o.Lag) - (a.Lag-o.Lag)*(b.Duration-o.Duration)
}

// comparePoints orders by duration, then lag, so that among equal durations
// the lowest lag is visited first.
func comparePoints(a, b models.Point) int {
	switch {
	case a.Duration < b.Duration:
		return -1
	case a.Duration > b.Duration:
		return 1
	case a.Lag < b.Lag:
		return -1
	case a.Lag > b.Lag:
		return 1
	default:
		return 0
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
