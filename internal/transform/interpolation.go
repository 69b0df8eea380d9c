// Sub-pixel sampling and affine resampling of single-channel buffers
package transform

import (
	"math"

	"generic-imaging/internal/pixel"
)

// Interpolator samples channel 0 of src at a fractional position.
type Interpolator interface {
	Interpolate(src pixel.Buffer, x, y float64) float64
	BackgroundValue() float64
}

// Bilinear blends the four surrounding pixels. On the last row or column
// it falls back to the top-left neighbour; outside the image it returns
// Background.
type Bilinear struct {
	Background float64
}

func (b Bilinear) BackgroundValue() float64 {
	return b.Background
}

func (b Bilinear) Interpolate(src pixel.Buffer, x, y float64) float64 {
	w, h := src.Width(), src.Height()
	fx, fy := math.Floor(x), math.Floor(y)
	x1, y1 := int(fx), int(fy)
	if x1 < 0 || y1 < 0 || x1 >= w || y1 >= h {
		return b.Background
	}

	x2, y2 := x1+1, y1+1
	if x2 >= w || y2 >= h {
		return src.Value(x1, y1, 0)
	}

	dx, dy := x-fx, y-fy
	top := src.Value(x1, y1, 0)*(1-dx) + src.Value(x2, y1, 0)*dx
	bottom := src.Value(x1, y2, 0)*(1-dx) + src.Value(x2, y2, 0)*dx
	return top*(1-dy) + bottom*dy
}

// NearestNeighbor returns the pixel closest to the position.
type NearestNeighbor struct {
	Background float64
}

func (n NearestNeighbor) BackgroundValue() float64 {
	return n.Background
}

func (n NearestNeighbor) Interpolate(src pixel.Buffer, x, y float64) float64 {
	xi, yi := int(math.Floor(x+0.5)), int(math.Floor(y+0.5))
	if xi < 0 || yi < 0 || xi >= src.Width() || yi >= src.Height() {
		return n.Background
	}
	return src.Value(xi, yi, 0)
}
