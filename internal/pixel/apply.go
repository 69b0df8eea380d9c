// Bulk iteration over buffers with optional row fan-out
package pixel

import (
	"fmt"
	"image"
	"runtime"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// PixelFunc is invoked once per visited coordinate.
type PixelFunc func(x, y int)

type applyConfig struct {
	rect     image.Rectangle
	hasRect  bool
	strideX  int
	strideY  int
	parallel bool
}

// ApplyOption configures Apply.
type ApplyOption func(*applyConfig)

// WithRect restricts iteration to r (Max exclusive).
func WithRect(r image.Rectangle) ApplyOption {
	return func(c *applyConfig) {
		c.rect = r
		c.hasRect = true
	}
}

// WithStride samples every sx-th column of every sy-th row.
func WithStride(sx, sy int) ApplyOption {
	return func(c *applyConfig) {
		c.strideX = sx
		c.strideY = sy
	}
}

// WithParallel requests row fan-out. It is honoured only when the buffer
// supports parallel access.
func WithParallel(parallel bool) ApplyOption {
	return func(c *applyConfig) {
		c.parallel = parallel
	}
}

// ParallelSafe reports whether every buffer supports concurrent access.
// Callbacks that read other buffers than the one passed to Apply gate
// their fan-out on it.
func ParallelSafe(bufs ...Buffer) bool {
	for _, b := range bufs {
		if !b.SupportsParallelAccess() {
			return false
		}
	}
	return true
}

// Apply calls fn for every selected coordinate of b.
func Apply(b Buffer, fn PixelFunc, opts ...ApplyOption) error {
	cfg := applyConfig{strideX: 1, strideY: 1}
	for _, opt := range opts {
		opt(&cfg)
	}

	bounds := image.Rect(0, 0, b.Width(), b.Height())
	rect := bounds
	if cfg.hasRect {
		if cfg.rect.Empty() || !cfg.rect.In(bounds) {
			return fmt.Errorf("%w: rect %v in %v", ErrBounds, cfg.rect, bounds)
		}
		rect = cfg.rect
	}
	if cfg.strideX < 1 || cfg.strideY < 1 {
		return fmt.Errorf("%w: stride (%d,%d)", ErrConfig, cfg.strideX, cfg.strideY)
	}

	rows := make([]int, 0, rect.Dy()/cfg.strideY+1)
	for y := rect.Min.Y; y < rect.Max.Y; y += cfg.strideY {
		rows = append(rows, y)
	}

	visitRows := func(rs []int) {
		for _, y := range rs {
			for x := rect.Min.X; x < rect.Max.X; x += cfg.strideX {
				fn(x, y)
			}
		}
	}

	if cfg.parallel && !b.SupportsParallelAccess() {
		log.WithField("buffer", Describe(b)).Debug("parallel apply not supported, running sequentially")
		cfg.parallel = false
	}

	workers := runtime.GOMAXPROCS(0)
	if !cfg.parallel || workers < 2 || len(rows) < 2 {
		visitRows(rows)
		return nil
	}

	ParallelRows(len(rows), func(start, end int) {
		visitRows(rows[start:end])
	})
	return nil
}

// ParallelRows splits [0, n) into contiguous chunks, one per worker, and
// waits for all of them.
func ParallelRows(n int, fn func(start, end int)) {
	workers := min(runtime.GOMAXPROCS(0), n)
	if workers <= 1 {
		fn(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		g.Go(func() error {
			fn(start, end)
			return nil
		})
	}
	_ = g.Wait()
}
