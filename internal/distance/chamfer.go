package distance

import (
	"fmt"
	"math"

	"generic-imaging/internal/pixel"
)

// ChamferConfig selects the contour value and the cost metric.
type ChamferConfig struct {
	Contour float64
	Metric  Metric
}

// Chamfer computes an approximate distance map in two raster passes.
type Chamfer struct {
	cfg      ChamferConfig
	factory  pixel.Factory
	forward  [3][3]float64
	backward [3][3]float64
}

// NewChamfer builds the two causal half masks for cfg.Metric. Results are
// allocated through f; pick a floating point factory to keep fractional
// distances.
func NewChamfer(cfg ChamferConfig, f pixel.Factory) (*Chamfer, error) {
	if cfg.Metric == nil {
		return nil, fmt.Errorf("%w: chamfer needs a metric", pixel.ErrConfig)
	}
	base, err := NewMask(cfg.Metric, 3)
	if err != nil {
		return nil, err
	}

	ch := &Chamfer{cfg: cfg, factory: f}
	inf := math.Inf(1)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			cost := base.At(dx, dy)
			ch.forward[dx+1][dy+1] = cost
			ch.backward[dx+1][dy+1] = cost

			// the forward scan has not reached the right column or the cell below
			if dx == 1 || (dx == 0 && dy == 1) {
				ch.forward[dx+1][dy+1] = inf
			}
			if dx == -1 || (dx == 0 && dy == -1) {
				ch.backward[dx+1][dy+1] = inf
			}
		}
	}
	return ch, nil
}

// Apply returns a GREYSCALE distance map of src, zero on contour cells.
func (ch *Chamfer) Apply(src pixel.Buffer) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Binary); err != nil {
		return nil, fmt.Errorf("chamfer distance: %w", err)
	}

	w, h := src.Width(), src.Height()
	dist := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if src.Value(x, y, 0) == ch.cfg.Contour {
				dist[y*w+x] = 0
			} else {
				dist[y*w+x] = math.Inf(1)
			}
		}
	}

	relax := func(x, y int, mask *[3][3]float64) {
		i := y*w + x
		if dist[i] <= 0 {
			return
		}
		best := dist[i]
		for dx := -1; dx <= 1; dx++ {
			nx := x + dx
			if nx < 0 || nx >= w {
				continue
			}
			for dy := -1; dy <= 1; dy++ {
				ny := y + dy
				if ny < 0 || ny >= h {
					continue
				}
				if d := dist[ny*w+nx] + mask[dx+1][dy+1]; d < best {
					best = d
				}
			}
		}
		dist[i] = best
	}

	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			relax(x, y, &ch.forward)
		}
	}
	for x := w - 1; x >= 0; x-- {
		for y := h - 1; y >= 0; y-- {
			relax(x, y, &ch.backward)
		}
	}

	out, err := ch.factory.Image(h, w, pixel.Greyscale)
	if err != nil {
		return nil, err
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetValue(x, y, 0, dist[y*w+x])
		}
	}
	return out, nil
}
