package geometry

import (
	"fmt"
	"image"

	"generic-imaging/internal/pixel"
)

// Moore neighbourhood in search order, starting left and turning
// counter-clockwise in image coordinates.
var mooreDirections = [8]image.Point{
	{-1, 0},
	{-1, 1},
	{0, 1},
	{1, 1},
	{1, 0},
	{1, -1},
	{0, -1},
	{-1, -1},
}

// TraceBoundary walks the inner boundary of an 8-connected point set and
// returns the boundary points ending with the start point, which is the
// first occupied cell in row-major order. A single point is returned as is.
func TraceBoundary(area []image.Point) ([]image.Point, error) {
	switch len(area) {
	case 0:
		return nil, fmt.Errorf("%w: empty point set", pixel.ErrState)
	case 1:
		return []image.Point{area[0]}, nil
	}

	bounds := image.Rectangle{Min: area[0], Max: area[0]}
	for _, p := range area[1:] {
		bounds.Min.X = min(bounds.Min.X, p.X)
		bounds.Min.Y = min(bounds.Min.Y, p.Y)
		bounds.Max.X = max(bounds.Max.X, p.X)
		bounds.Max.Y = max(bounds.Max.Y, p.Y)
	}

	// one cell of padding on every side keeps neighbour lookups in range
	origin := bounds.Min.Sub(image.Pt(1, 1))
	w := bounds.Dx() + 3
	h := bounds.Dy() + 3
	grid := make([]bool, w*h)
	for _, p := range area {
		q := p.Sub(origin)
		grid[q.Y*w+q.X] = true
	}

	start := image.Pt(-1, -1)
	for i, set := range grid {
		if set {
			start = image.Pt(i%w, i/w)
			break
		}
	}

	dir := 7
	lastDir := dir
	hit := start
	var boundary []image.Point
	for {
		next := hit.Add(mooreDirections[dir])
		if grid[next.Y*w+next.X] {
			hit = next
			boundary = append(boundary, hit.Add(origin))
			if dir%2 == 0 {
				dir = (dir + 7) % 8
			} else {
				dir = (dir + 6) % 8
			}
			lastDir = dir
			if hit == start {
				return boundary, nil
			}
			continue
		}

		dir = (dir + 1) % 8
		if dir == lastDir {
			return nil, fmt.Errorf("%w: no connected neighbour around %v", pixel.ErrState, hit.Add(origin))
		}
	}
}
