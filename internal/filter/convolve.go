// Kernel convolution and mask based edge detection
package filter

import (
	"fmt"
	"math"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"generic-imaging/internal/pixel"
)

// checkKernel requires an odd number of rows, each of odd length. Rows may
// differ in length; every row is centred on the pixel.
func checkKernel(k [][]float64) error {
	if len(k) == 0 || len(k)%2 == 0 {
		return fmt.Errorf("%w: kernel needs an odd number of rows, got %d", pixel.ErrConfig, len(k))
	}
	for i, row := range k {
		if len(row)%2 == 0 {
			return fmt.Errorf("%w: kernel row %d has even length %d", pixel.ErrConfig, i, len(row))
		}
	}
	return nil
}

// weigh returns the weighted sum of channel c around (x, y) and the sum of
// the kernel entries that fell inside the image.
func weigh(src pixel.Buffer, k [][]float64, x, y, c int) (sum, weight float64) {
	w, h := src.Width(), src.Height()
	ry := len(k) / 2
	for dy := -ry; dy <= ry; dy++ {
		ny := y + dy
		if ny < 0 || ny >= h {
			continue
		}
		row := k[dy+ry]
		rx := len(row) / 2
		for dx := -rx; dx <= rx; dx++ {
			nx := x + dx
			if nx < 0 || nx >= w {
				continue
			}
			sum += src.Value(nx, ny, c) * row[dx+rx]
			weight += row[dx+rx]
		}
	}
	return sum, weight
}

// ConvolveConfig describes a convolution. With Normalize set every result
// is divided by the sum of the kernel entries inside the image, so
// borders are not darkened.
type ConvolveConfig struct {
	Kernel     [][]float64
	Normalize  bool
	Iterations int
}

// Convolve applies a kernel to every channel.
type Convolve struct {
	kernel     [][]float64
	normalize  bool
	iterations int
	factory    pixel.Factory
}

// NewConvolve copies the kernel so later changes by the caller are not seen.
// Iterations below 1 run once.
func NewConvolve(cfg ConvolveConfig, f pixel.Factory) (*Convolve, error) {
	if err := checkKernel(cfg.Kernel); err != nil {
		return nil, err
	}
	kernel := make([][]float64, len(cfg.Kernel))
	for i, row := range cfg.Kernel {
		kernel[i] = append([]float64(nil), row...)
	}
	return &Convolve{
		kernel:     kernel,
		normalize:  cfg.Normalize,
		iterations: max(cfg.Iterations, 1),
		factory:    f,
	}, nil
}

// Apply convolves src, feeding each iteration's result into the next.
func (cv *Convolve) Apply(src pixel.Buffer) (pixel.Buffer, error) {
	cur, err := cv.pass(src)
	if err != nil {
		return nil, err
	}
	for i := 1; i < cv.iterations; i++ {
		next, err := cv.pass(cur)
		cur.Release()
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

func (cv *Convolve) pass(src pixel.Buffer) (pixel.Buffer, error) {
	out, err := cv.factory.Image(src.Height(), src.Width(), src.Layout())
	if err != nil {
		return nil, err
	}

	ch := pixel.Channels(src)
	var zeroWeight atomic.Bool
	err = pixel.Apply(out, func(x, y int) {
		for c := 0; c < ch; c++ {
			sum, weight := weigh(src, cv.kernel, x, y, c)
			if cv.normalize {
				if weight == 0 {
					zeroWeight.Store(true)
					continue
				}
				sum /= weight
			}
			out.SetValue(x, y, c, sum)
		}
	}, pixel.WithParallel(pixel.ParallelSafe(src, out)))
	if err == nil && zeroWeight.Load() {
		err = fmt.Errorf("%w: kernel weights sum to zero but normalisation is on", pixel.ErrState)
	}
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}

// Gradient masks for EdgeDetection.
var (
	Sobel = [][][]float64{
		{{-1, 0, 1}, {-2, 0, 2}, {-1, 0, 1}},
		{{-1, -2, -1}, {0, 0, 0}, {1, 2, 1}},
	}
	Prewitt = [][][]float64{
		{{-1, 0, 1}, {-1, 0, 1}, {-1, 0, 1}},
		{{-1, -1, -1}, {0, 0, 0}, {1, 1, 1}},
	}
	Laplace = [][][]float64{
		{{0, 1, 0}, {1, -4, 1}, {0, 1, 0}},
	}
)

// EdgeDetection sums the absolute responses of several unnormalised masks
// and rescales the result so the strongest edge is 255.
type EdgeDetection struct {
	masks   [][][]float64
	factory pixel.Factory
}

func NewEdgeDetection(masks [][][]float64, f pixel.Factory) (*EdgeDetection, error) {
	if len(masks) == 0 {
		return nil, fmt.Errorf("%w: edge detection needs at least one mask", pixel.ErrConfig)
	}
	for _, m := range masks {
		if err := checkKernel(m); err != nil {
			return nil, err
		}
	}
	return &EdgeDetection{masks: masks, factory: f}, nil
}

// Apply returns a GREYSCALE gradient magnitude image. An image without any
// gradient fails with ErrState.
func (e *EdgeDetection) Apply(src pixel.Buffer) (pixel.Buffer, error) {
	if err := pixel.RequireLayout(src, pixel.Greyscale, pixel.Binary); err != nil {
		return nil, fmt.Errorf("edge detection: %w", err)
	}

	w, h := src.Width(), src.Height()
	grad := make([]float64, w*h)
	rowMax := make([]float64, h)
	rows := func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < w; x++ {
				g := 0.0
				for _, m := range e.masks {
					sum, _ := weigh(src, m, x, y, 0)
					g += math.Abs(sum)
				}
				grad[y*w+x] = g
				rowMax[y] = max(rowMax[y], g)
			}
		}
	}
	if src.SupportsParallelAccess() {
		pixel.ParallelRows(h, rows)
	} else {
		rows(0, h)
	}

	peak := 0.0
	for _, m := range rowMax {
		peak = max(peak, m)
	}
	if peak == 0 {
		return nil, fmt.Errorf("%w: image has no gradient", pixel.ErrState)
	}
	log.WithField("peak", peak).Debug("edge gradient rescaled")

	out, err := e.factory.Image(h, w, pixel.Greyscale)
	if err != nil {
		return nil, err
	}
	err = pixel.Apply(out, func(x, y int) {
		out.SetValue(x, y, 0, grad[y*w+x]*255/peak)
	}, pixel.WithParallel(true))
	if err != nil {
		out.Release()
		return nil, err
	}
	return out, nil
}
