// Sparse Hough-space accumulator for line votes
package hough

import (
	"fmt"
	"image"
	"math"

	"generic-imaging/internal/pixel"
)

// ErrNoPeak is returned when a query finds no positive vote.
var ErrNoPeak = fmt.Errorf("%w: no peak in hough space", pixel.ErrState)

// Peak is a voted position, its orientation in degrees and its weight.
type Peak struct {
	X, Y     int
	Rotation float64
	Weight   float64
}

// Accumulator stores one vote slot per orientation step for each touched
// coordinate and tracks the overall best vote as it is written.
type Accumulator struct {
	cells  map[image.Point][]float64
	width  int
	height int
	minRot float64
	maxRot float64
	step   float64
	best   Peak
	found  bool
}

// NewAccumulator covers a width x height plane and orientations from
// minRot to maxRot in steps of step degrees.
func NewAccumulator(width, height int, minRot, maxRot, step float64) (*Accumulator, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: hough plane %dx%d", pixel.ErrConfig, width, height)
	}
	if step <= 0 || maxRot <= minRot {
		return nil, fmt.Errorf("%w: rotation range [%v,%v] step %v", pixel.ErrConfig, minRot, maxRot, step)
	}

	a := &Accumulator{
		cells:  make(map[image.Point][]float64, width+height+1),
		width:  width,
		height: height,
		minRot: minRot,
		maxRot: maxRot,
		step:   step,
	}
	if a.NumRotations() < 1 {
		return nil, fmt.Errorf("%w: step %v larger than rotation range", pixel.ErrConfig, step)
	}
	return a, nil
}

// NumRotations is the number of orientation slots per coordinate.
func (a *Accumulator) NumRotations() int {
	return int((a.maxRot-a.minRot)/a.step + 0.5)
}

// Rotation converts a slot index into degrees.
func (a *Accumulator) Rotation(idx int) float64 {
	return float64(idx)*a.step + a.minRot
}

// Set stores a vote.
func (a *Accumulator) Set(x, y, idx int, v float64) error {
	if idx < 0 || idx >= a.NumRotations() {
		return fmt.Errorf("%w: rotation index %d of %d", pixel.ErrBounds, idx, a.NumRotations())
	}

	p := image.Pt(x, y)
	slots, ok := a.cells[p]
	if !ok {
		slots = make([]float64, a.NumRotations())
		a.cells[p] = slots
	}
	slots[idx] = v

	if v > a.best.Weight {
		a.best = Peak{X: x, Y: y, Rotation: a.Rotation(idx), Weight: v}
		a.found = true
	}
	return nil
}

// Value returns a stored vote, zero for untouched cells.
func (a *Accumulator) Value(x, y, idx int) float64 {
	slots, ok := a.cells[image.Pt(x, y)]
	if !ok || idx < 0 || idx >= len(slots) {
		return 0
	}
	return slots[idx]
}

// Len is the number of touched coordinates.
func (a *Accumulator) Len() int {
	return len(a.cells)
}

// Best returns the highest vote written so far.
func (a *Accumulator) Best() (Peak, error) {
	if !a.found {
		return Peak{}, ErrNoPeak
	}
	return a.best, nil
}

// scan visits every stored vote with x in [xMin, xMax] and y in
// [yMin, yMax], columns outer.
func (a *Accumulator) scan(xMin, xMax, yMin, yMax int, visit func(x, y, idx int, v float64)) {
	for x := xMin; x <= xMax; x++ {
		for y := yMin; y <= yMax; y++ {
			slots, ok := a.cells[image.Pt(x, y)]
			if !ok {
				continue
			}
			for idx, v := range slots {
				visit(x, y, idx, v)
			}
		}
	}
}

// BestInRegion returns the strongest positive vote inside the inclusive
// region. Earlier votes win ties.
func (a *Accumulator) BestInRegion(xMin, xMax, yMin, yMax int) (Peak, error) {
	return a.NthBestInRegion(1, xMin, xMax, yMin, yMax)
}

// NthBestInRegion returns the n-th strongest positive vote inside the
// inclusive region.
func (a *Accumulator) NthBestInRegion(n, xMin, xMax, yMin, yMax int) (Peak, error) {
	if n < 1 {
		return Peak{}, fmt.Errorf("%w: rank %d must be at least 1", pixel.ErrConfig, n)
	}

	ranked := make([]Peak, 0, n)
	a.scan(xMin, xMax, yMin, yMax, func(x, y, idx int, v float64) {
		if v <= 0 || (len(ranked) == n && v <= ranked[n-1].Weight) {
			return
		}
		pos := len(ranked)
		for pos > 0 && v > ranked[pos-1].Weight {
			pos--
		}
		if len(ranked) < n {
			ranked = append(ranked, Peak{})
		}
		copy(ranked[pos+1:], ranked[pos:len(ranked)-1])
		ranked[pos] = Peak{X: x, Y: y, Rotation: a.Rotation(idx), Weight: v}
	})

	if len(ranked) < n {
		return Peak{}, fmt.Errorf("%w: only %d votes in region", ErrNoPeak, len(ranked))
	}
	return ranked[n-1], nil
}

// BestInRegionForRotation restricts BestInRegion to orientations within
// [rotMin, rotMax], treating orientations 180 degrees apart as the same line.
func (a *Accumulator) BestInRegionForRotation(xMin, xMax, yMin, yMax int, rotMin, rotMax float64) (Peak, error) {
	var best Peak
	found := false
	a.scan(xMin, xMax, yMin, yMax, func(x, y, idx int, v float64) {
		rot := a.Rotation(idx)
		wrapped := rot
		if wrapped > rotMax {
			wrapped -= 180
		} else if wrapped < rotMin {
			wrapped += 180
		}
		if wrapped < rotMin || wrapped > rotMax || v <= 0 || (found && v <= best.Weight) {
			return
		}
		best = Peak{X: x, Y: y, Rotation: rot, Weight: v}
		found = true
	})

	if !found {
		return Peak{}, ErrNoPeak
	}
	return best, nil
}

// ToImage renders the strongest vote per coordinate raised to expoScale,
// normalised so the global maximum becomes 255.
func (a *Accumulator) ToImage(f pixel.Factory, expoScale float64) (pixel.Buffer, error) {
	out, err := f.Image(a.height, a.width, pixel.Greyscale)
	if err != nil {
		return nil, err
	}

	scaled := make(map[image.Point]float64, len(a.cells))
	total := 0.0
	for p, slots := range a.cells {
		peak := 0.0
		for _, v := range slots {
			peak = math.Max(peak, v)
		}
		s := math.Pow(peak, expoScale)
		scaled[p] = s
		total = math.Max(total, s)
	}

	scale := 1.0
	if total > 1e-6 {
		scale = 255 / total
	}
	for p, s := range scaled {
		if p.X < 0 || p.Y < 0 || p.X >= a.width || p.Y >= a.height {
			continue
		}
		out.SetValue(p.X, p.Y, 0, s*scale)
	}
	return out, nil
}
