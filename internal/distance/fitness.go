package distance

import (
	"fmt"
	"image"

	"generic-imaging/internal/pixel"
)

// Fitness scores how well a candidate matches a binary reference on the
// reference's contour. The contour cells are those at distance zero in the
// chamfer map of the reference. Lower is better and zero is a perfect
// match.
type Fitness struct {
	chamfer *Chamfer
	// ROI limits the comparison. The zero rectangle means the whole image.
	ROI image.Rectangle
}

func NewFitness(ch *Chamfer) (*Fitness, error) {
	if ch == nil {
		return nil, fmt.Errorf("%w: fitness needs a chamfer transform", pixel.ErrConfig)
	}
	return &Fitness{chamfer: ch}, nil
}

// Evaluate returns the summed squared difference between candidate and
// reference over the reference's contour cells. The candidate must be
// GREYSCALE or BINARY, the reference BINARY, both of the same size.
func (fn *Fitness) Evaluate(candidate, reference pixel.Buffer) (float64, error) {
	if err := pixel.RequireLayout(candidate, pixel.Greyscale, pixel.Binary); err != nil {
		return 0, fmt.Errorf("fitness candidate: %w", err)
	}
	if candidate.Width() != reference.Width() || candidate.Height() != reference.Height() {
		return 0, fmt.Errorf("%w: candidate %s, reference %s", pixel.ErrShapeMismatch,
			pixel.Describe(candidate), pixel.Describe(reference))
	}

	bounds := image.Rect(0, 0, candidate.Width(), candidate.Height())
	roi := bounds
	if fn.ROI != (image.Rectangle{}) {
		if fn.ROI.Empty() || !fn.ROI.In(bounds) {
			return 0, fmt.Errorf("%w: roi %v in %v", pixel.ErrBounds, fn.ROI, bounds)
		}
		roi = fn.ROI
	}

	dist, err := fn.chamfer.Apply(reference)
	if err != nil {
		return 0, err
	}
	defer dist.Release()

	total := 0.0
	for y := roi.Min.Y; y < roi.Max.Y; y++ {
		for x := roi.Min.X; x < roi.Max.X; x++ {
			if dist.Value(x, y, 0) != 0 {
				continue
			}
			d := reference.Value(x, y, 0) - candidate.Value(x, y, 0)
			total += d * d
		}
	}
	return total, nil
}
