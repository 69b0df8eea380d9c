// Seeded region growing and adaptive local thresholding
package segment

import (
	"fmt"
	"image"

	"generic-imaging/internal/morph"
	"generic-imaging/internal/pixel"
)

// RegionConfig configures region growing. Lower and Upper are inclusive.
// A nil Neighbors selects the 8-neighbourhood.
type RegionConfig struct {
	Seeds     []image.Point
	Lower     float64
	Upper     float64
	Neighbors *morph.Mask
}

// DefaultRegionConfig accepts the upper half of the byte range.
func DefaultRegionConfig(seeds ...image.Point) RegionConfig {
	return RegionConfig{Seeds: seeds, Lower: 127, Upper: 255, Neighbors: morph.N8}
}

type cellState int8

const (
	undecided cellState = iota
	accepted
	rejected
)

// RegionGrowing floods outward from seeds over cells within [Lower, Upper].
type RegionGrowing struct {
	cfg     RegionConfig
	offsets []image.Point
	factory pixel.Factory
}

// NewRegionGrowing validates cfg and precomputes the neighbour offsets.
func NewRegionGrowing(cfg RegionConfig, f pixel.Factory) (*RegionGrowing, error) {
	if cfg.Lower > cfg.Upper {
		return nil, fmt.Errorf("%w: lower threshold %v above upper %v", pixel.ErrConfig, cfg.Lower, cfg.Upper)
	}
	if cfg.Neighbors == nil {
		cfg.Neighbors = morph.N8
	}
	seeds := make([]image.Point, len(cfg.Seeds))
	copy(seeds, cfg.Seeds)
	cfg.Seeds = seeds
	return &RegionGrowing{cfg: cfg, offsets: cfg.Neighbors.Offsets(), factory: f}, nil
}

// Apply returns a BINARY mask of the grown region. Seeds outside the image
// are ignored. Every cell is decided at most once.
func (rg *RegionGrowing) Apply(src pixel.Buffer) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Greyscale); err != nil {
		return nil, fmt.Errorf("region growing: %w", err)
	}

	w, h := src.Width(), src.Height()
	state := make([]cellState, w*h)
	inRange := func(x, y int) bool {
		v := src.Value(x, y, 0)
		return rg.cfg.Lower <= v && v <= rg.cfg.Upper
	}

	stack := make([]image.Point, 0, len(rg.cfg.Seeds))
	for _, p := range rg.cfg.Seeds {
		if p.X < 0 || p.Y < 0 || p.X >= w || p.Y >= h {
			continue
		}
		if inRange(p.X, p.Y) {
			state[p.Y*w+p.X] = accepted
			stack = append(stack, p)
		} else {
			state[p.Y*w+p.X] = rejected
		}
	}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, o := range rg.offsets {
			nx, ny := p.X+o.X, p.Y+o.Y
			if nx < 0 || ny < 0 || nx >= w || ny >= h || state[ny*w+nx] != undecided {
				continue
			}
			if inRange(nx, ny) {
				state[ny*w+nx] = accepted
				stack = append(stack, image.Pt(nx, ny))
			} else {
				state[ny*w+nx] = rejected
			}
		}
	}

	out, err := rg.factory.Image(h, w, pixel.Binary)
	if err != nil {
		return nil, err
	}
	// undecided cells end up as background
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := pixel.BinaryUnset
			if state[y*w+x] == accepted {
				v = pixel.BinarySet
			}
			out.SetValue(x, y, 0, v)
		}
	}
	return out, nil
}
