// Distance metrics and their neighbour cost masks
package distance

import (
	"fmt"
	"math"

	"generic-imaging/internal/pixel"
)

// Metric prices a step of (dx, dy) cells.
type Metric interface {
	Name() string
	Cost(dx, dy int) float64
}

// Manhattan is the city-block metric |dx|+|dy|.
type Manhattan struct{}

func (Manhattan) Name() string { return "manhattan" }

func (Manhattan) Cost(dx, dy int) float64 {
	return math.Abs(float64(dx)) + math.Abs(float64(dy))
}

// Chessboard is max(|dx|, |dy|).
type Chessboard struct{}

func (Chessboard) Name() string { return "chessboard" }

func (Chessboard) Cost(dx, dy int) float64 {
	return math.Max(math.Abs(float64(dx)), math.Abs(float64(dy)))
}

// Euclidean is sqrt(dx²+dy²).
type Euclidean struct{}

func (Euclidean) Name() string { return "euclidean" }

func (Euclidean) Cost(dx, dy int) float64 {
	return math.Hypot(float64(dx), float64(dy))
}

// MetricByName resolves "manhattan", "chessboard" or "euclidean".
func MetricByName(name string) (Metric, error) {
	switch name {
	case "manhattan":
		return Manhattan{}, nil
	case "chessboard":
		return Chessboard{}, nil
	case "euclidean":
		return Euclidean{}, nil
	}
	return nil, fmt.Errorf("%w: unknown metric %q", pixel.ErrConfig, name)
}

// Mask is an immutable odd-sized grid of neighbour costs centred on zero.
type Mask struct {
	size  int
	costs []float64
}

// NewMask evaluates m over a size x size neighbourhood.
func NewMask(m Metric, size int) (*Mask, error) {
	if size < 3 || size%2 == 0 {
		return nil, fmt.Errorf("%w: mask size %d must be odd and at least 3", pixel.ErrConfig, size)
	}

	r := size / 2
	costs := make([]float64, size*size)
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			costs[(dy+r)*size+dx+r] = m.Cost(dx, dy)
		}
	}
	costs[r*size+r] = 0
	return &Mask{size: size, costs: costs}, nil
}

func (m *Mask) Size() int {
	return m.size
}

// Radius is the distance from the centre to an edge.
func (m *Mask) Radius() int {
	return m.size / 2
}

// At returns the cost of the relative offset (dx, dy).
func (m *Mask) At(dx, dy int) float64 {
	r := m.size / 2
	return m.costs[(dy+r)*m.size+dx+r]
}
