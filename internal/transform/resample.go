package transform

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"generic-imaging/internal/pixel"
)

// Mapping sends destination pixel coordinates to source coordinates with a
// 3x3 homogeneous matrix.
type Mapping struct {
	m *mat.Dense
}

// Identity maps every pixel onto itself.
func Identity() *Mapping {
	return &Mapping{m: mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1})}
}

// Rigid rotates by degrees about the centre of a w x h image and then
// translates by (tx, ty).
func Rigid(tx, ty, degrees float64, w, h int) *Mapping {
	midX, midY := float64(w)/2, float64(h)/2
	rad := -degrees * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)

	untranslate := mat.NewDense(3, 3, []float64{1, 0, -tx, 0, 1, -ty, 0, 0, 1})
	recentre := mat.NewDense(3, 3, []float64{1, 0, midX, 0, 1, midY, 0, 0, 1})
	rotate := mat.NewDense(3, 3, []float64{cos, sin, 0, -sin, cos, 0, 0, 0, 1})
	centre := mat.NewDense(3, 3, []float64{1, 0, -midX, 0, 1, -midY, 0, 0, 1})

	var m mat.Dense
	m.Product(untranslate, recentre, rotate, centre)
	return &Mapping{m: &m}
}

// Affine inverts forward, a 3x3 source-to-destination matrix.
func Affine(forward mat.Matrix) (*Mapping, error) {
	if r, c := forward.Dims(); r != 3 || c != 3 {
		return nil, fmt.Errorf("%w: affine matrix is %dx%d, want 3x3", pixel.ErrConfig, r, c)
	}

	var inv mat.Dense
	if err := inv.Inverse(forward); err != nil {
		return nil, fmt.Errorf("%w: affine matrix not invertible: %v", pixel.ErrConfig, err)
	}
	return &Mapping{m: &inv}, nil
}

// Inverse builds a mapping straight from a destination-to-source matrix.
func Inverse(backward mat.Matrix) (*Mapping, error) {
	if r, c := backward.Dims(); r != 3 || c != 3 {
		return nil, fmt.Errorf("%w: affine matrix is %dx%d, want 3x3", pixel.ErrConfig, r, c)
	}
	return &Mapping{m: mat.DenseCopyOf(backward)}, nil
}

// Source maps a destination coordinate.
func (m *Mapping) Source(x, y float64) (float64, float64) {
	d := m.m
	sx := d.At(0, 0)*x + d.At(0, 1)*y + d.At(0, 2)
	sy := d.At(1, 0)*x + d.At(1, 1)*y + d.At(1, 2)
	w := d.At(2, 0)*x + d.At(2, 1)*y + d.At(2, 2)
	if w != 1 && w != 0 {
		sx, sy = sx/w, sy/w
	}
	return sx, sy
}

// Resampler renders a source buffer through a mapping.
type Resampler struct {
	interp  Interpolator
	factory pixel.Factory
}

// NewResampler checks that the interpolator's background is a grey level.
func NewResampler(interp Interpolator, f pixel.Factory) (*Resampler, error) {
	if interp == nil {
		return nil, fmt.Errorf("%w: resampler needs an interpolator", pixel.ErrConfig)
	}
	if bg := interp.BackgroundValue(); bg < 0 || bg > 255 {
		return nil, fmt.Errorf("%w: background %v outside 0..255", pixel.ErrConfig, bg)
	}
	return &Resampler{interp: interp, factory: f}, nil
}

// Apply returns a GREYSCALE buffer the size of src where each pixel is the
// interpolated source value rounded half up.
func (r *Resampler) Apply(src pixel.Buffer, m *Mapping) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Greyscale, pixel.Binary); err != nil {
		return nil, fmt.Errorf("resample: %w", err)
	}

	out, err := r.factory.Image(src.Height(), src.Width(), pixel.Greyscale)
	if err != nil {
		return nil, err
	}

	err = pixel.Apply(out, func(x, y int) {
		sx, sy := m.Source(float64(x), float64(y))
		out.SetValue(x, y, 0, math.Floor(r.interp.Interpolate(src, sx, sy)+0.5))
	}, pixel.WithParallel(pixel.ParallelSafe(src, out)))
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}
