// Structuring elements for morphology and neighbourhood walks
package morph

import (
	"fmt"
	"image"

	"generic-imaging/internal/pixel"
)

// Mask is an odd-sized boolean structuring element.
type Mask struct {
	size int
	on   []bool
}

// NewMask builds a mask from square rows of booleans.
func NewMask(rows [][]bool) (*Mask, error) {
	n := len(rows)
	if n == 0 || n%2 == 0 {
		return nil, fmt.Errorf("%w: mask size %d must be odd", pixel.ErrConfig, n)
	}

	on := make([]bool, 0, n*n)
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: mask row %d has %d entries, want %d", pixel.ErrConfig, i, len(row), n)
		}
		on = append(on, row...)
	}
	return &Mask{size: n, on: on}, nil
}

// Square returns a fully set size x size mask.
func Square(size int) (*Mask, error) {
	if size < 1 || size%2 == 0 {
		return nil, fmt.Errorf("%w: mask size %d must be odd", pixel.ErrConfig, size)
	}
	on := make([]bool, size*size)
	for i := range on {
		on[i] = true
	}
	return &Mask{size: size, on: on}, nil
}

var (
	// N4 is the plus-shaped 4-neighbourhood including the centre.
	N4 = &Mask{size: 3, on: []bool{
		false, true, false,
		true, true, true,
		false, true, false,
	}}

	// N8 is the full 3x3 neighbourhood.
	N8 = &Mask{size: 3, on: []bool{
		true, true, true,
		true, true, true,
		true, true, true,
	}}
)

func (m *Mask) Size() int {
	return m.size
}

// Contains reports whether the relative offset (dx, dy) is part of the mask.
func (m *Mask) Contains(dx, dy int) bool {
	r := m.size / 2
	if dx < -r || dx > r || dy < -r || dy > r {
		return false
	}
	return m.on[(dy+r)*m.size+dx+r]
}

// Offsets lists the set relative offsets in row-major order, centre excluded.
func (m *Mask) Offsets() []image.Point {
	r := m.size / 2
	pts := make([]image.Point, 0, len(m.on))
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if (dx != 0 || dy != 0) && m.on[(dy+r)*m.size+dx+r] {
				pts = append(pts, image.Pt(dx, dy))
			}
		}
	}
	return pts
}
