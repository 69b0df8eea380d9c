package morph

import (
	"fmt"

	"generic-imaging/internal/pixel"
)

// BackgroundFunc classifies a full channel vector as background.
type BackgroundFunc func(vals []float64) bool

// GenericConfig configures multi-channel morphology. A nil Background
// treats pixels with every channel at its layout maximum as background.
type GenericConfig struct {
	Mask       *Mask
	Background BackgroundFunc
}

// Generic dilates foreground colours of any layout into background cells.
type Generic struct {
	mask       *Mask
	background BackgroundFunc
	factory    pixel.Factory
}

// NewGeneric validates cfg and fixes it for the lifetime of the operation.
func NewGeneric(cfg GenericConfig, f pixel.Factory) (*Generic, error) {
	if cfg.Mask == nil {
		return nil, fmt.Errorf("%w: generic morph needs a mask", pixel.ErrConfig)
	}
	return &Generic{mask: cfg.Mask, background: cfg.Background, factory: f}, nil
}

// AtLayoutMax is the default background predicate for layout l.
func AtLayoutMax(l *pixel.Layout) BackgroundFunc {
	return func(vals []float64) bool {
		for c, v := range vals {
			if v != l.Max(c) {
				return false
			}
		}
		return true
	}
}

// Apply copies src, then for every foreground cell of src writes its
// channel vector onto each masked neighbour that is background in src.
// It is a single sweep, columns outer, so the last writer wins.
func (g *Generic) Apply(src pixel.Buffer) (pixel.Buffer, error) {
	background := g.background
	if background == nil {
		background = AtLayoutMax(src.Layout())
	}

	out, err := pixel.CreateCopy(src, g.factory)
	if err != nil {
		return nil, err
	}

	w, h := src.Width(), src.Height()
	r := g.mask.Size() / 2
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			vals := src.Values(x, y)
			if background(vals) {
				continue
			}
			for dx := -r; dx <= r; dx++ {
				for dy := -r; dy <= r; dy++ {
					nx, ny := x+dx, y+dy
					if !g.mask.Contains(dx, dy) || nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					if background(src.Values(nx, ny)) {
						out.SetValues(nx, ny, vals)
					}
				}
			}
		}
	}
	return out, nil
}
