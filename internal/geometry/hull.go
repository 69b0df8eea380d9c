// Point set geometry: convex hulls and boundary tracing
package geometry

import (
	"fmt"
	"math"
	"sort"

	"generic-imaging/internal/pixel"
)

// Point is a location in the image plane.
type Point struct {
	X, Y float64
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Turn is the orientation of three consecutive points.
type Turn int

const (
	Collinear Turn = iota
	CounterClockwise
	Clockwise
)

// TurnOf classifies a -> b -> c by the sign of (b-a) x (c-a).
func TurnOf(a, b, c Point) Turn {
	cross := (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
	switch {
	case cross > 0:
		return CounterClockwise
	case cross < 0:
		return Clockwise
	}
	return Collinear
}

// LowestPoint returns the point with the smallest Y, ties broken by the
// smallest X.
func LowestPoint(points []Point) Point {
	lowest := points[0]
	for _, p := range points[1:] {
		if p.Y < lowest.Y || (p.Y == lowest.Y && p.X < lowest.X) {
			lowest = p
		}
	}
	return lowest
}

// SortedPointSet removes duplicates and orders the points by polar angle
// around the lowest point, nearer points first on equal angles.
func SortedPointSet(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}

	lowest := LowestPoint(points)
	seen := make(map[Point]struct{}, len(points))
	set := make([]Point, 0, len(points))
	for _, p := range points {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		set = append(set, p)
	}

	angle := func(p Point) float64 { return math.Atan2(p.Y-lowest.Y, p.X-lowest.X) }
	dist := func(p Point) float64 { return math.Hypot(p.X-lowest.X, p.Y-lowest.Y) }
	sort.Slice(set, func(i, j int) bool {
		ai, aj := angle(set[i]), angle(set[j])
		if ai != aj {
			return ai < aj
		}
		return dist(set[i]) < dist(set[j])
	})
	return set
}

// AllCollinear reports whether every point lies on the line through the
// first two.
func AllCollinear(points []Point) bool {
	if len(points) < 2 {
		return true
	}
	for _, c := range points[2:] {
		if TurnOf(points[0], points[1], c) != Collinear {
			return false
		}
	}
	return true
}

// ConvexHull runs a Graham scan. The result is closed: its first point is
// repeated at the end. A collinear triple replaces the middle vertex with
// the new one without further backtracking.
func ConvexHull(points []Point) ([]Point, error) {
	sorted := SortedPointSet(points)
	if len(sorted) < 3 {
		return nil, fmt.Errorf("%w: convex hull needs 3 distinct points, got %d", pixel.ErrConfig, len(sorted))
	}
	if AllCollinear(sorted) {
		return nil, fmt.Errorf("%w: all points are collinear", pixel.ErrConfig)
	}

	stack := []Point{sorted[0], sorted[1]}
	for i := 2; i < len(sorted); {
		head := sorted[i]
		middle := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			stack = append(stack, middle, head)
			i++
			continue
		}

		switch TurnOf(stack[len(stack)-1], middle, head) {
		case CounterClockwise:
			stack = append(stack, middle, head)
			i++
		case Clockwise:
			// retry head against the shorter stack
		case Collinear:
			stack = append(stack, head)
			i++
		}
	}

	return append(stack, sorted[0]), nil
}

// ConvexHullXY builds points from parallel coordinate slices.
func ConvexHullXY(xs, ys []float64) ([]Point, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d xs and %d ys", pixel.ErrShapeMismatch, len(xs), len(ys))
	}
	points := make([]Point, len(xs))
	for i := range xs {
		points[i] = Pt(xs[i], ys[i])
	}
	return ConvexHull(points)
}
