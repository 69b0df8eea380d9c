package segment

import (
	"fmt"
	"math"

	log "github.com/sirupsen/logrus"

	"generic-imaging/internal/pixel"
)

// ErrNotConverged is returned when the threshold iteration hits its cap.
var ErrNotConverged = fmt.Errorf("%w: adaptive threshold did not converge", pixel.ErrState)

// ThresholdConfig configures adaptive local thresholding.
type ThresholdConfig struct {
	ClusterSize   int
	Overlap       float64
	Epsilon       int
	Foreground    float64
	Background    float64
	MaxIterations int
}

// DefaultThresholdConfig returns 30 pixel clusters with a quarter overlap.
func DefaultThresholdConfig() ThresholdConfig {
	return ThresholdConfig{
		ClusterSize:   30,
		Overlap:       0.25,
		Epsilon:       2,
		Foreground:    pixel.BinarySet,
		Background:    pixel.BinaryUnset,
		MaxIterations: 1000,
	}
}

// ThresholdResult carries the segmentation and the final per-cluster
// thresholds, indexed [cluster x][cluster y].
type ThresholdResult struct {
	Image      pixel.Buffer
	Thresholds [][]int
	Iterations int
}

// AdaptiveThreshold segments each cluster against its own threshold and
// refines the thresholds from overlapping neighbourhood means.
type AdaptiveThreshold struct {
	cfg     ThresholdConfig
	factory pixel.Factory
}

// NewAdaptiveThreshold validates cfg.
func NewAdaptiveThreshold(cfg ThresholdConfig, f pixel.Factory) (*AdaptiveThreshold, error) {
	switch {
	case cfg.ClusterSize < 1:
		return nil, fmt.Errorf("%w: cluster size %d", pixel.ErrConfig, cfg.ClusterSize)
	case cfg.Overlap < 0 || cfg.Overlap > 1:
		return nil, fmt.Errorf("%w: overlap %v outside [0,1]", pixel.ErrConfig, cfg.Overlap)
	case cfg.Epsilon < 0:
		return nil, fmt.Errorf("%w: epsilon %d", pixel.ErrConfig, cfg.Epsilon)
	case cfg.MaxIterations < 1:
		return nil, fmt.Errorf("%w: max iterations %d", pixel.ErrConfig, cfg.MaxIterations)
	case cfg.Foreground == cfg.Background:
		return nil, fmt.Errorf("%w: foreground and background are both %v", pixel.ErrConfig, cfg.Foreground)
	}
	return &AdaptiveThreshold{cfg: cfg, factory: f}, nil
}

// Apply iterates until the summed threshold change is at most Epsilon.
// Exceeding MaxIterations releases the partial result and fails with
// ErrNotConverged.
func (at *AdaptiveThreshold) Apply(src pixel.Buffer) (*ThresholdResult, error) {
	if pixel.Channels(src) != 1 {
		return nil, fmt.Errorf("adaptive threshold: %w: %s", pixel.ErrType, src.Layout().Name())
	}

	w, h := src.Width(), src.Height()
	cs := at.cfg.ClusterSize
	nx := (w + cs - 1) / cs
	ny := (h + cs - 1) / cs

	// labels are kept apart from the output so that Foreground and
	// Background need not survive a store in the factory's sample type
	fg := make([]bool, w*h)

	thresholds := make([][]int, nx)
	for i := range thresholds {
		thresholds[i] = make([]int, ny)
		for j := range thresholds[i] {
			thresholds[i][j] = 128
		}
	}

	iterations := 0
	for dist := math.MaxInt; dist > at.cfg.Epsilon; {
		if iterations == at.cfg.MaxIterations {
			return nil, fmt.Errorf("%w after %d iterations (last change %d)", ErrNotConverged, iterations, dist)
		}
		iterations++
		dist = 0

		for cx := 0; cx < nx; cx++ {
			for cy := 0; cy < ny; cy++ {
				x0, y0 := cx*cs, cy*cs
				segment(src, fg, x0, y0, min(x0+cs, w), min(y0+cs, h), thresholds[cx][cy])

				mx0, mx1 := at.window(cx, x0, w)
				my0, my1 := at.window(cy, y0, h)
				fgMean := meanWhere(src, fg, mx0, my0, mx1, my1, true)
				bgMean := meanWhere(src, fg, mx0, my0, mx1, my1, false)

				next := int((fgMean+bgMean)/2 + 0.5)
				dist += abs(thresholds[cx][cy] - next)
				thresholds[cx][cy] = next
			}
		}
	}

	log.WithFields(log.Fields{
		"clusters":   nx * ny,
		"iterations": iterations,
	}).Debug("adaptive threshold converged")

	out, err := at.factory.Image(h, w, pixel.Binary)
	if err != nil {
		return nil, err
	}
	err = pixel.Apply(out, func(x, y int) {
		if fg[y*w+x] {
			out.SetValue(x, y, 0, at.cfg.Foreground)
		} else {
			out.SetValue(x, y, 0, at.cfg.Background)
		}
	}, pixel.WithParallel(true))
	if err != nil {
		out.Release()
		return nil, err
	}
	return &ThresholdResult{Image: out, Thresholds: thresholds, Iterations: iterations}, nil
}

// segment labels the cluster [x0,x1) x [y0,y1) of the row-major mask fg.
func segment(src pixel.Buffer, fg []bool, x0, y0, x1, y1, threshold int) {
	t := float64(threshold)
	w := src.Width()
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			fg[y*w+x] = src.Value(x, y, 0) > t
		}
	}
}

// window is the overlapping neighbourhood [start, end) of cluster index c
// along an axis of length n. A cluster on the leading edge only overlaps
// forward.
func (at *AdaptiveThreshold) window(c, origin, n int) (int, int) {
	cs := float64(at.cfg.ClusterSize)
	ov := at.cfg.Overlap

	factor := 2.0
	start := int(float64(c)*cs - cs*(1-ov) + 0.5)
	if start < 0 {
		start = 0
		factor = 1
	}
	end := int(float64(origin) + cs*(1+factor*ov) + 0.5)
	return start, min(end, n)
}

func meanWhere(src pixel.Buffer, fg []bool, x0, y0, x1, y1 int, want bool) float64 {
	w := src.Width()
	sum, n := 0.0, 0
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if fg[y*w+x] == want {
				sum += src.Value(x, y, 0)
				n++
			}
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
